package endpoints

import (
	"context"

	"github.com/bobinette/archivist/archivist"
	"github.com/bobinette/archivist/archivist/services"
	"github.com/bobinette/archivist/users"
)

// LifecycleEndpoint exposes checkouts and versions. Every call first reads
// the document through the document service so that documents the caller
// cannot see are reported as not found.
type LifecycleEndpoint struct {
	service   *services.LifecycleService
	documents *services.DocumentService
}

func NewLifecycleEndpoint(service *services.LifecycleService, documents *services.DocumentService) *LifecycleEndpoint {
	return &LifecycleEndpoint{
		service:   service,
		documents: documents,
	}
}

type CheckOutRequest struct {
	DocumentID string `json:"-"`
	Notes      string `json:"notes"`
}

func (ep *LifecycleEndpoint) visible(ctx context.Context, id string) (archivist.Principal, error) {
	user, err := users.FromContext(ctx)
	if err != nil {
		return archivist.Principal{}, err
	}

	if _, err := ep.documents.Get(user, id); err != nil {
		return archivist.Principal{}, err
	}
	return user, nil
}

func (ep *LifecycleEndpoint) CheckOut(ctx context.Context, r interface{}) (interface{}, error) {
	req, ok := r.(CheckOutRequest)
	if !ok {
		return nil, errInvalidRequest
	}

	user, err := ep.visible(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}

	doc, err := ep.service.CheckOut(req.DocumentID, user.ID, req.Notes)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"data": doc,
	}, nil
}

func (ep *LifecycleEndpoint) CheckIn(ctx context.Context, r interface{}) (interface{}, error) {
	id, ok := r.(string)
	if !ok {
		return nil, errInvalidRequest
	}

	user, err := ep.visible(ctx, id)
	if err != nil {
		return nil, err
	}

	doc, err := ep.service.CheckIn(id, user.ID)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"data": doc,
	}, nil
}

func (ep *LifecycleEndpoint) CancelCheckout(ctx context.Context, r interface{}) (interface{}, error) {
	id, ok := r.(string)
	if !ok {
		return nil, errInvalidRequest
	}

	user, err := ep.visible(ctx, id)
	if err != nil {
		return nil, err
	}

	doc, err := ep.service.CancelCheckoutAs(user, id)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"data": doc,
	}, nil
}

func (ep *LifecycleEndpoint) CheckoutInfo(ctx context.Context, r interface{}) (interface{}, error) {
	id, ok := r.(string)
	if !ok {
		return nil, errInvalidRequest
	}

	if _, err := ep.visible(ctx, id); err != nil {
		return nil, err
	}

	info, err := ep.service.CheckoutInfo(id)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"data": info,
	}, nil
}

func (ep *LifecycleEndpoint) UploadVersion(ctx context.Context, r interface{}) (interface{}, error) {
	req, ok := r.(services.UploadRequest)
	if !ok {
		return nil, errInvalidRequest
	}

	user, err := ep.visible(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}

	// The uploader is always the caller
	req.UserID = user.ID
	version, err := ep.service.UploadNewVersion(req)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"data": map[string]interface{}{
			"success":    true,
			"newVersion": version,
		},
	}, nil
}

func (ep *LifecycleEndpoint) History(ctx context.Context, r interface{}) (interface{}, error) {
	id, ok := r.(string)
	if !ok {
		return nil, errInvalidRequest
	}

	if _, err := ep.visible(ctx, id); err != nil {
		return nil, err
	}

	records, err := ep.service.VersionHistory(id)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"data":    records,
		"current": ep.service.LatestVersion(id),
	}, nil
}

func (ep *LifecycleEndpoint) CanUpload(ctx context.Context, r interface{}) (interface{}, error) {
	id, ok := r.(string)
	if !ok {
		return nil, errInvalidRequest
	}

	user, err := ep.visible(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed, reason := ep.service.CanUploadVersion(id, user.ID)
	return map[string]interface{}{
		"data": map[string]interface{}{
			"canUpload": allowed,
			"reason":    reason,
		},
	}, nil
}

func (ep *LifecycleEndpoint) Checkouts(ctx context.Context, r interface{}) (interface{}, error) {
	user, err := users.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	department, ok := r.(string)
	if !ok {
		return nil, errInvalidRequest
	}

	docs, err := ep.service.CheckedOutBy(user.ID, department)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"data": docs,
	}, nil
}
