package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// TaskService handles task lifecycle outside of relocation. Generic updates
// cannot touch order or section membership; those fields belong to the Mover.
type TaskService struct {
	st Store
	d  Dispatcher
}

func NewTaskService(st Store, d Dispatcher) TaskService { return TaskService{st: st, d: d} }

// Create inserts a task at the end of the section. The append order is read
// inside the insert transaction so two concurrent creates cannot claim the
// same slot.
func (s TaskService) Create(ctx context.Context, in CreateTask, actorID string) (Task, error) {
	section, err := s.st.GetSection(ctx, in.SectionID)
	if err != nil {
		return Task{}, err
	}
	if section == nil {
		return Task{}, fmt.Errorf("section %s: %w", in.SectionID, ErrNotFound)
	}

	task := Task{
		ID:         uuid.NewString(),
		SectionID:  in.SectionID,
		Title:      in.Title,
		Notes:      in.Notes,
		AssigneeID: in.AssigneeID,
		Priority:   in.Priority,
		DueDate:    in.DueDate,
		Version:    1,
	}
	err = s.st.Transact(ctx, func(tx Store) error {
		order, err := NewOrderAssigner(tx).AppendOrder(ctx, in.SectionID)
		if err != nil {
			return err
		}
		task.Order = order
		return tx.InsertTask(ctx, task)
	})
	if err != nil {
		return Task{}, err
	}

	events := []ChangeEvent{TaskCreated{TaskID: task.ID, SectionID: task.SectionID, Title: task.Title}}
	if task.AssigneeID != "" {
		events = append(events, TaskAssigned{TaskID: task.ID, AssigneeID: task.AssigneeID})
	}
	s.d.Dispatch(events, actorID)
	return task, nil
}

// Update applies a partial update and dispatches the implied events. A
// concurrent writer invalidates the version check; the update is reloaded and
// retried a bounded number of times.
func (s TaskService) Update(ctx context.Context, id string, upd TaskUpdate, actorID string) (Task, error) {
	for attempt := 0; attempt < moveRetries; attempt++ {
		task, err := s.st.GetTask(ctx, id)
		if err != nil {
			return Task{}, err
		}
		if task == nil {
			return Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
		}
		before := task.Snapshot()
		next := *task
		if upd.Title != nil {
			next.Title = *upd.Title
		}
		if upd.Notes != nil {
			next.Notes = *upd.Notes
		}
		if upd.AssigneeID != nil {
			next.AssigneeID = *upd.AssigneeID
		}
		if upd.Priority != nil {
			next.Priority = *upd.Priority
		}
		if upd.DueDate != nil {
			next.DueDate = upd.DueDate
		}
		if upd.Completed != nil {
			next.Completed = *upd.Completed
		}

		if err := s.st.UpdateTask(ctx, next); err != nil {
			if errors.Is(err, ErrConcurrencyConflict) {
				log.WithFields(log.Fields{"task": id, "attempt": attempt + 1}).Warn("update lost a concurrent write, retrying")
				continue
			}
			return Task{}, err
		}
		next.Version++

		s.d.Dispatch(Classify(before, next), actorID)
		return next, nil
	}
	return Task{}, fmt.Errorf("update task %s: %w", id, ErrConcurrencyConflict)
}

// Delete removes the task. Sibling orders keep their gaps; ordering only has
// to stay consistent for ascending sort, not contiguous.
func (s TaskService) Delete(ctx context.Context, id string) error {
	task, err := s.st.GetTask(ctx, id)
	if err != nil {
		return err
	}
	if task == nil {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return s.st.DeleteTask(ctx, id)
}
