package domain

import "time"

// Project is the top of the board hierarchy.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Section is an ordered list of tasks within a project.
type Section struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Name      string `json:"name"`
	Order     int    `json:"order"`
}

// Task represents a single board item. It belongs to exactly one section at a
// time; Order defines its position among the section's tasks. Order and
// SectionID are mutated only by the Mover so the sibling uniqueness invariant
// cannot be bypassed through generic updates.
type Task struct {
	ID         string     `json:"id"`
	SectionID  string     `json:"sectionId"`
	Title      string     `json:"title"`
	Notes      string     `json:"notes,omitempty"`
	Order      int        `json:"order"`
	Completed  bool       `json:"completed,omitempty"`
	AssigneeID string     `json:"assigneeId,omitempty"`
	Priority   int        `json:"priority,omitempty"`
	DueDate    *time.Time `json:"dueDate,omitempty"`
	Version    int64      `json:"-"`
}

// Snapshot captures the fields of a task that change classification compares.
type Snapshot struct {
	SectionID  string
	AssigneeID string
	Completed  bool
}

// Snapshot returns the task's current classification-relevant state.
func (t Task) Snapshot() Snapshot {
	return Snapshot{SectionID: t.SectionID, AssigneeID: t.AssigneeID, Completed: t.Completed}
}

// BoardSection is a section together with its tasks, both in ascending order.
type BoardSection struct {
	Section Section `json:"section"`
	Tasks   []Task  `json:"tasks"`
}
