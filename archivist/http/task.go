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

func RegisterTaskEndpoints(srv Server, service *services.TaskService, jwtKey []byte, principals archivist.PrincipalRepository) {
	opts := []kithttp.ServerOption{
		kithttp.ServerErrorEncoder(encodeError),
		kithttp.ServerBefore(jwt.ToHTTPContext()),
	}

	authenticator := users.NewAuthenticator(principals)
	jwtMiddleware := jwt.Middleware(jwtKey)

	ep := endpoints.NewTaskEndpoint(service)

	listHandler := kithttp.NewServer(
		jwtMiddleware(authenticator.Authenticated(ep.List)),
		decodeNothing,
		kithttp.EncodeJSONResponse,
		opts...,
	)

	createHandler := kithttp.NewServer(
		jwtMiddleware(authenticator.Authenticated(ep.Create)),
		decodeCreateTaskRequest,
		kithttp.EncodeJSONResponse,
		opts...,
	)

	srv.RegisterHandler("/archivist/tasks", "GET", listHandler)
	srv.RegisterHandler("/archivist/tasks", "POST", createHandler)
}

// RegisterFeatureEndpoints serves the presentation switches. It requires a
// valid token but no principal lookup.
func RegisterFeatureEndpoints(srv Server, features endpoints.Features, jwtKey []byte) {
	opts := []kithttp.ServerOption{
		kithttp.ServerErrorEncoder(encodeError),
		kithttp.ServerBefore(jwt.ToHTTPContext()),
	}

	handler := kithttp.NewServer(
		jwt.Middleware(jwtKey)(endpoints.NewFeaturesEndpoint(features)),
		decodeNothing,
		kithttp.EncodeJSONResponse,
		opts...,
	)

	srv.RegisterHandler("/archivist/features", "GET", handler)
}

func decodeNothing(ctx context.Context, r *http.Request) (interface{}, error) {
	defer r.Body.Close()
	return nil, nil
}

func decodeCreateTaskRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	defer r.Body.Close()

	var task archivist.Task
	if err := decodeJSON(r, &task); err != nil {
		return nil, err
	}

	return task, nil
}
