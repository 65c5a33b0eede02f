package services

import (
	"strings"

	"github.com/bobinette/archivist/archivist"
	"github.com/bobinette/archivist/archivist/access"
	"github.com/bobinette/archivist/errors"
)

type TaskService struct {
	repository archivist.TaskRepository
}

func NewTaskService(repo archivist.TaskRepository) *TaskService {
	return &TaskService{
		repository: repo,
	}
}

// Visible returns the tasks whose level does not exceed the clearance of p.
func (s *TaskService) Visible(p archivist.Principal) ([]archivist.Task, error) {
	tasks, err := s.repository.List()
	if err != nil {
		return nil, err
	}
	return access.FilterTasks(p, tasks), nil
}

// Create stores a new task. Only task managers and admins create tasks, and
// they cannot create a task above their own clearance.
func (s *TaskService) Create(p archivist.Principal, task archivist.Task) (archivist.Task, error) {
	if task.ID != "" {
		return archivist.Task{}, errors.New("id already set", errors.Validation(errors.ReasonInvalidRequest))
	}
	if strings.TrimSpace(task.Title) == "" {
		return archivist.Task{}, errors.New("missing task title", errors.Validation(errors.ReasonInvalidRequest))
	}
	if task.Confidentiality != "" && !task.Confidentiality.Valid() {
		return archivist.Task{}, errors.New("invalid confidentiality level", errors.Validation(errors.ReasonInvalidLevel))
	}

	caps := access.Resolve(p)
	if !caps.ManageTasks && !caps.Admin {
		return archivist.Task{}, errors.New("you do not have permission to create tasks", errors.Permission(errors.ReasonForbidden))
	}
	if !access.TaskVisible(p, task) {
		return archivist.Task{}, errors.New("task level is above your clearance", errors.Validation(errors.ReasonInvalidLevel))
	}

	task.CreatedBy = p.ID
	task.Confidentiality = task.Confidentiality.Or(archivist.DefaultLevel)
	if task.Status == "" {
		task.Status = "pending"
	}
	if err := s.repository.Upsert(&task); err != nil {
		return archivist.Task{}, err
	}
	return task, nil
}
