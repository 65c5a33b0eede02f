package http

import (
	"context"
	"net/http"
	"strconv"

	kithttp "github.com/go-kit/kit/transport/http"

	"github.com/bobinette/archivist/errors"
	"github.com/bobinette/archivist/jwt"
	"github.com/bobinette/archivist/users"

	"github.com/bobinette/archivist/archivist"
	"github.com/bobinette/archivist/archivist/endpoints"
	"github.com/bobinette/archivist/archivist/services"
)

func RegisterDocumentEndpoints(srv Server, service *services.DocumentService, jwtKey []byte, principals archivist.PrincipalRepository) {
	opts := []kithttp.ServerOption{
		kithttp.ServerErrorEncoder(encodeError),
		kithttp.ServerBefore(jwt.ToHTTPContext()),
	}

	authenticator := users.NewAuthenticator(principals)
	jwtMiddleware := jwt.Middleware(jwtKey)

	// Create endpoint
	ep := endpoints.NewDocumentEndpoint(service)

	searchHandler := kithttp.NewServer(
		jwtMiddleware(authenticator.Authenticated(ep.Search)),
		decodeSearchDocumentRequest,
		kithttp.EncodeJSONResponse,
		opts...,
	)

	uploadHandler := kithttp.NewServer(
		jwtMiddleware(authenticator.Authenticated(ep.Upload)),
		decodeUploadDocumentRequest,
		kithttp.EncodeJSONResponse,
		opts...,
	)

	getHandler := kithttp.NewServer(
		jwtMiddleware(authenticator.Authenticated(ep.Get)),
		decodeIDRequest,
		kithttp.EncodeJSONResponse,
		opts...,
	)

	confidentialityHandler := kithttp.NewServer(
		jwtMiddleware(authenticator.Authenticated(ep.SetConfidentiality)),
		decodeConfidentialityRequest,
		kithttp.EncodeJSONResponse,
		opts...,
	)

	auditHandler := kithttp.NewServer(
		jwtMiddleware(authenticator.Authenticated(ep.AuditTrail)),
		decodeIDRequest,
		kithttp.EncodeJSONResponse,
		opts...,
	)

	reindexHandler := kithttp.NewServer(
		jwtMiddleware(authenticator.Admin(ep.Reindex)),
		decodeEmptyRequest,
		kithttp.EncodeJSONResponse,
		opts...,
	)

	// Register all handlers
	srv.RegisterHandler("/archivist/documents", "GET", searchHandler)
	srv.RegisterHandler("/archivist/documents", "POST", uploadHandler)
	srv.RegisterHandler("/archivist/documents/:id", "GET", getHandler)
	srv.RegisterHandler("/archivist/documents/:id/confidentiality", "PUT", confidentialityHandler)
	srv.RegisterHandler("/archivist/documents/:id/audit", "GET", auditHandler)
	srv.RegisterHandler("/archivist/index", "POST", reindexHandler)
}

func decodeSearchDocumentRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	defer r.Body.Close()

	req := endpoints.SearchDocumentRequest{}
	req.Q = r.URL.Query().Get("q")

	limit := r.URL.Query().Get("limit")
	if limit != "" {
		var err error
		req.Limit, err = strconv.Atoi(limit)
		if err != nil {
			return nil, errors.New("invalid parameter: limit", errors.Validation(errors.ReasonInvalidRequest), errors.WithCause(err))
		}
	}

	return req, nil
}

func decodeUploadDocumentRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	defer r.Body.Close()

	var draft services.Draft
	if err := decodeJSON(r, &draft); err != nil {
		return nil, err
	}

	return draft, nil
}

func decodeConfidentialityRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	defer r.Body.Close()

	id, err := param(ctx, "id")
	if err != nil {
		return nil, err
	}

	var req endpoints.ConfidentialityRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}

	req.DocumentID = id
	return req, nil
}
