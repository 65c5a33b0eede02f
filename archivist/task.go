package archivist

import (
	"time"
)

type Task struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	AssignedTo   string `json:"assignedTo,omitempty"`
	CreatedBy    string `json:"createdBy,omitempty"`
	DepartmentID string `json:"departmentId"`
	Status       string `json:"status"`
	Priority     string `json:"priority"`

	// Confidentiality may be empty, in which case DefaultLevel applies.
	Confidentiality Level `json:"confidentialityLevel,omitempty"`

	DueDate   *time.Time `json:"dueDate,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type TaskRepository interface {
	List() ([]Task, error)
	Upsert(*Task) error
}
