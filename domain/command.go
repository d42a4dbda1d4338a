package domain

import "time"

// MoveCommand relocates a task into a section at a given position. Order may
// exceed the section's current size; over-large values simply place the task
// at the logical end.
type MoveCommand struct {
	TaskID    string `json:"taskId"`
	SectionID string `json:"sectionId"`
	Order     int    `json:"order"`
}

// CreateTask carries the fields for a new task. The order is always assigned
// by the service (append to the end of the section).
type CreateTask struct {
	SectionID  string     `json:"sectionId"`
	Title      string     `json:"title"`
	Notes      string     `json:"notes"`
	AssigneeID string     `json:"assigneeId"`
	Priority   int        `json:"priority"`
	DueDate    *time.Time `json:"dueDate"`
}

// TaskUpdate carries partial updates for a task. Order and section membership
// are deliberately absent; relocation goes through the Mover.
type TaskUpdate struct {
	Title      *string    `json:"title"`
	Notes      *string    `json:"notes"`
	AssigneeID *string    `json:"assigneeId"`
	Priority   *int       `json:"priority"`
	DueDate    *time.Time `json:"dueDate"`
	Completed  *bool      `json:"completed"`
}

// CreateSection carries the fields for a new section within a project.
type CreateSection struct {
	ProjectID string `json:"projectId"`
	Name      string `json:"name"`
}
