package http

import (
	"context"
	"net/http"

	kithttp "github.com/go-kit/kit/transport/http"

	"github.com/bobinette/archivist/jwt"
	"github.com/bobinette/archivist/users"

	"github.com/bobinette/archivist/archivist"
	"github.com/bobinette/archivist/archivist/endpoints"
	"github.com/bobinette/archivist/archivist/services"
)

func RegisterLifecycleEndpoints(
	srv Server,
	service *services.LifecycleService,
	documents *services.DocumentService,
	jwtKey []byte,
	principals archivist.PrincipalRepository,
) {
	opts := []kithttp.ServerOption{
		kithttp.ServerErrorEncoder(encodeError),
		kithttp.ServerBefore(jwt.ToHTTPContext()),
	}

	authenticator := users.NewAuthenticator(principals)
	jwtMiddleware := jwt.Middleware(jwtKey)

	// Create endpoint
	ep := endpoints.NewLifecycleEndpoint(service, documents)

	checkOutHandler := kithttp.NewServer(
		jwtMiddleware(authenticator.Authenticated(ep.CheckOut)),
		decodeCheckOutRequest,
		kithttp.EncodeJSONResponse,
		opts...,
	)

	checkInHandler := kithttp.NewServer(
		jwtMiddleware(authenticator.Authenticated(ep.CheckIn)),
		decodeIDRequest,
		kithttp.EncodeJSONResponse,
		opts...,
	)

	cancelHandler := kithttp.NewServer(
		jwtMiddleware(authenticator.Authenticated(ep.CancelCheckout)),
		decodeIDRequest,
		kithttp.EncodeJSONResponse,
		opts...,
	)

	infoHandler := kithttp.NewServer(
		jwtMiddleware(authenticator.Authenticated(ep.CheckoutInfo)),
		decodeIDRequest,
		kithttp.EncodeJSONResponse,
		opts...,
	)

	uploadHandler := kithttp.NewServer(
		jwtMiddleware(authenticator.Authenticated(ep.UploadVersion)),
		decodeUploadVersionRequest,
		kithttp.EncodeJSONResponse,
		opts...,
	)

	historyHandler := kithttp.NewServer(
		jwtMiddleware(authenticator.Authenticated(ep.History)),
		decodeIDRequest,
		kithttp.EncodeJSONResponse,
		opts...,
	)

	permissionHandler := kithttp.NewServer(
		jwtMiddleware(authenticator.Authenticated(ep.CanUpload)),
		decodeIDRequest,
		kithttp.EncodeJSONResponse,
		opts...,
	)

	checkoutsHandler := kithttp.NewServer(
		jwtMiddleware(authenticator.Authenticated(ep.Checkouts)),
		decodeCheckoutsRequest,
		kithttp.EncodeJSONResponse,
		opts...,
	)

	// Register all handlers
	srv.RegisterHandler("/archivist/documents/:id/checkout", "POST", checkOutHandler)
	srv.RegisterHandler("/archivist/documents/:id/checkout", "DELETE", cancelHandler)
	srv.RegisterHandler("/archivist/documents/:id/checkout", "GET", infoHandler)
	srv.RegisterHandler("/archivist/documents/:id/checkin", "POST", checkInHandler)
	srv.RegisterHandler("/archivist/documents/:id/versions", "POST", uploadHandler)
	srv.RegisterHandler("/archivist/documents/:id/versions", "GET", historyHandler)
	srv.RegisterHandler("/archivist/documents/:id/versions/permission", "GET", permissionHandler)
	srv.RegisterHandler("/archivist/checkouts", "GET", checkoutsHandler)
}

func decodeCheckOutRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	defer r.Body.Close()

	id, err := param(ctx, "id")
	if err != nil {
		return nil, err
	}

	req := endpoints.CheckOutRequest{DocumentID: id}
	if err := decodeOptionalJSON(r, &req); err != nil {
		return nil, err
	}
	req.DocumentID = id
	return req, nil
}

func decodeUploadVersionRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	defer r.Body.Close()

	id, err := param(ctx, "id")
	if err != nil {
		return nil, err
	}

	var req services.UploadRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}

	req.DocumentID = id
	return req, nil
}

func decodeCheckoutsRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	defer r.Body.Close()

	return r.URL.Query().Get("department"), nil
}
