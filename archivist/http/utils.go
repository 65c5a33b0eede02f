package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/bobinette/archivist/errors"
)

// encodeError writes an error as an HTTP response. It handles the status code
// and reason contained in the error.
func encodeError(_ context.Context, err error, w http.ResponseWriter) {
	statusCode := errors.CodeOf(err)
	body := map[string]interface{}{
		"error": err.Error(),
	}
	if reason := errors.ReasonOf(err); reason != "" {
		body["reason"] = reason
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// Server defines the interface to register the http handlers.
type Server interface {
	RegisterHandler(path, method string, f http.Handler)
}

func param(ctx context.Context, name string) (string, error) {
	params, _ := ctx.Value("params").(map[string]string)
	v := params[name]
	if v == "" {
		return "", errors.New("missing parameter: "+name, errors.Validation(errors.ReasonInvalidRequest))
	}
	return v, nil
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.New("invalid body", errors.Validation(errors.ReasonInvalidRequest), errors.WithCause(err))
	}
	return nil
}

// decodeOptionalJSON is decodeJSON for routes where the body may be empty.
func decodeOptionalJSON(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == io.EOF {
		return nil
	} else if err != nil {
		return errors.New("invalid body", errors.Validation(errors.ReasonInvalidRequest), errors.WithCause(err))
	}
	return nil
}

func decodeEmptyRequest(_ context.Context, r *http.Request) (interface{}, error) {
	defer r.Body.Close()

	return nil, nil
}

func decodeIDRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	defer r.Body.Close()

	return param(ctx, "id")
}
