package domain

import "context"

// Store defines the persistence operations the board services require.
// Lookups return nil without error when the row is absent; the services map
// that to ErrNotFound. Version-checked updates return ErrConcurrencyConflict
// when a newer version is already persisted.
type Store interface {
	GetProject(ctx context.Context, id string) (*Project, error)
	InsertProject(ctx context.Context, p Project) error

	GetSection(ctx context.Context, id string) (*Section, error)
	InsertSection(ctx context.Context, s Section) error
	ListSections(ctx context.Context, projectID string) ([]Section, error)
	// MaxSectionOrder returns -1 when the project has no sections.
	MaxSectionOrder(ctx context.Context, projectID string) (int, error)

	GetTask(ctx context.Context, id string) (*Task, error)
	InsertTask(ctx context.Context, t Task) error
	UpdateTask(ctx context.Context, t Task) error
	DeleteTask(ctx context.Context, id string) error
	ListTasks(ctx context.Context, sectionID string) ([]Task, error)
	// MaxTaskOrder returns -1 when the section has no tasks.
	MaxTaskOrder(ctx context.Context, sectionID string) (int, error)
	ShiftOrders(ctx context.Context, sectionID string, minOrder int, excludeTaskID string) error

	Board(ctx context.Context, projectID string) ([]BoardSection, error)

	// Transact runs fn against a store bound to a single transaction. The
	// shift-then-place sequence relies on this so no concurrent move can
	// observe a partially shifted section.
	Transact(ctx context.Context, fn func(tx Store) error) error
}
