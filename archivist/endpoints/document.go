package endpoints

import (
	"context"

	"github.com/bobinette/archivist/errors"

	"github.com/bobinette/archivist/archivist"
	"github.com/bobinette/archivist/archivist/services"
	"github.com/bobinette/archivist/users"
)

// Variables and functions for specific errors
var (
	errInvalidRequest = errors.New("invalid request", errors.Validation(errors.ReasonInvalidRequest))
)

type DocumentEndpoint struct {
	service *services.DocumentService
}

func NewDocumentEndpoint(service *services.DocumentService) *DocumentEndpoint {
	return &DocumentEndpoint{
		service: service,
	}
}

type SearchDocumentRequest struct {
	Q     string
	Limit int
}

func (ep *DocumentEndpoint) Search(ctx context.Context, r interface{}) (interface{}, error) {
	user, err := users.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	req, ok := r.(SearchDocumentRequest)
	if !ok {
		return nil, errInvalidRequest
	}

	docs, err := ep.service.Search(user, req.Q, req.Limit)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"data": docs,
	}, nil
}

func (ep *DocumentEndpoint) Upload(ctx context.Context, r interface{}) (interface{}, error) {
	user, err := users.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	draft, ok := r.(services.Draft)
	if !ok {
		return nil, errInvalidRequest
	}

	doc, err := ep.service.Upload(user, draft)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"data": doc,
	}, nil
}

func (ep *DocumentEndpoint) Get(ctx context.Context, r interface{}) (interface{}, error) {
	user, err := users.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	id, ok := r.(string)
	if !ok {
		return nil, errInvalidRequest
	}

	doc, err := ep.service.Get(user, id)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"data": doc,
	}, nil
}

type ConfidentialityRequest struct {
	DocumentID string          `json:"-"`
	Level      archivist.Level `json:"confidentiality"`
	Assignees  []string        `json:"assignees"`
}

func (ep *DocumentEndpoint) SetConfidentiality(ctx context.Context, r interface{}) (interface{}, error) {
	user, err := users.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	req, ok := r.(ConfidentialityRequest)
	if !ok {
		return nil, errInvalidRequest
	}

	doc, err := ep.service.SetConfidentiality(user, req.DocumentID, req.Level, req.Assignees)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"data": doc,
	}, nil
}

func (ep *DocumentEndpoint) AuditTrail(ctx context.Context, r interface{}) (interface{}, error) {
	user, err := users.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	id, ok := r.(string)
	if !ok {
		return nil, errInvalidRequest
	}

	entries, err := ep.service.AuditTrail(user, id)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"data": entries,
	}, nil
}

// Reindex rebuilds the search index. The route is restricted to admins by
// the transport.
func (ep *DocumentEndpoint) Reindex(ctx context.Context, r interface{}) (interface{}, error) {
	n, err := ep.service.Reindex()
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"data": map[string]interface{}{
			"indexed": n,
		},
	}, nil
}
