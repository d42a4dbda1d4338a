package domain

// Automation trigger kinds, one per change event plus the creation events
// raised by the services.
const (
	TriggerTaskCreated    = "task-created"
	TriggerTaskAssigned   = "task-assigned"
	TriggerTaskCompleted  = "task-completed"
	TriggerTaskMoved      = "task-moved"
	TriggerSectionCreated = "section-created"
)

// ChangeEvent is a transient signal describing a state transition. Events are
// produced by classification or by the services, handed to the dispatcher and
// never persisted.
type ChangeEvent interface {
	changeEvent()
}

// TaskMoved fires when a task changes sections.
type TaskMoved struct {
	TaskID        string
	FromSectionID string
	ToSectionID   string
	Order         int
	AssigneeID    string
}

// TaskAssigned fires when a task gains an assignee or the assignee changes.
// Un-assignment fires nothing.
type TaskAssigned struct {
	TaskID             string
	AssigneeID         string
	PreviousAssigneeID string
}

// TaskCompleted fires on the false-to-true completion transition only.
// Reopening a task fires nothing.
type TaskCompleted struct {
	TaskID     string
	AssigneeID string
}

// TaskCreated fires when a new task is inserted.
type TaskCreated struct {
	TaskID    string
	SectionID string
	Title     string
}

// SectionCreated fires when a new section is inserted.
type SectionCreated struct {
	SectionID string
	ProjectID string
	Name      string
}

func (TaskMoved) changeEvent()      {}
func (TaskAssigned) changeEvent()   {}
func (TaskCompleted) changeEvent()  {}
func (TaskCreated) changeEvent()    {}
func (SectionCreated) changeEvent() {}

// Dispatcher delivers change events to the notification and automation
// collaborators. Delivery is best-effort and must never fail the caller.
type Dispatcher interface {
	Dispatch(events []ChangeEvent, actorID string)
}
