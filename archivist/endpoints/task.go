package endpoints

import (
	"context"

	"github.com/bobinette/archivist/archivist"
	"github.com/bobinette/archivist/archivist/services"
	"github.com/bobinette/archivist/users"
)

type TaskEndpoint struct {
	service *services.TaskService
}

func NewTaskEndpoint(service *services.TaskService) *TaskEndpoint {
	return &TaskEndpoint{
		service: service,
	}
}

func (ep *TaskEndpoint) List(ctx context.Context, r interface{}) (interface{}, error) {
	user, err := users.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	tasks, err := ep.service.Visible(user)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"data": tasks,
	}, nil
}

func (ep *TaskEndpoint) Create(ctx context.Context, r interface{}) (interface{}, error) {
	user, err := users.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	task, ok := r.(archivist.Task)
	if !ok {
		return nil, errInvalidRequest
	}

	task, err = ep.service.Create(user, task)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"data": task,
	}, nil
}
