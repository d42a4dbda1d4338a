package api

import (
	"context"

	"taskdeck-api/domain"
)

// Mover relocates tasks; the only path allowed to change order or section.
type Mover interface {
	Move(ctx context.Context, cmd domain.MoveCommand, actorID string) (domain.Task, error)
}

// Tasks handles the task lifecycle outside of relocation.
type Tasks interface {
	Create(ctx context.Context, in domain.CreateTask, actorID string) (domain.Task, error)
	Update(ctx context.Context, id string, upd domain.TaskUpdate, actorID string) (domain.Task, error)
	Delete(ctx context.Context, id string) error
}

// Sections handles section creation.
type Sections interface {
	Create(ctx context.Context, in domain.CreateSection, actorID string) (domain.Section, error)
}

// Projects handles project creation and board reads.
type Projects interface {
	Create(ctx context.Context, name string) (domain.Project, error)
	Board(ctx context.Context, projectID string) ([]domain.BoardSection, error)
}
