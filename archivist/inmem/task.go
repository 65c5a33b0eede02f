package inmem

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobinette/archivist/archivist"
)

type TaskRepository struct {
	mu    sync.Locker
	tasks []archivist.Task
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{
		mu:    &sync.Mutex{},
		tasks: make([]archivist.Task, 0),
	}
}

func (r *TaskRepository) List() ([]archivist.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]archivist.Task{}, r.tasks...), nil
}

func (r *TaskRepository) Upsert(task *archivist.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if task.ID == "" {
		task.ID = uuid.New().String()
		task.CreatedAt = time.Now()
	}

	for i, t := range r.tasks {
		if t.ID == task.ID {
			r.tasks[i] = *task
			return nil
		}
	}
	r.tasks = append(r.tasks, *task)
	return nil
}
