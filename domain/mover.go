package domain

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// moveRetries bounds the optimistic-concurrency retry loop before the
// conflict surfaces to the caller.
const moveRetries = 3

// Mover relocates tasks between and within sections. It is the only component
// allowed to mutate a task's order or section membership.
type Mover struct {
	st Store
	d  Dispatcher
}

func NewMover(st Store, d Dispatcher) Mover { return Mover{st: st, d: d} }

// Move places the task at cmd.Order inside cmd.SectionID, shifting every
// destination sibling at or beyond that position up by one to open the slot.
// The shift and the placement run in a single transaction with a version
// check on the moving task; a lost race is retried a bounded number of times.
// The gap left in the source section is never compacted.
func (m Mover) Move(ctx context.Context, cmd MoveCommand, actorID string) (Task, error) {
	for attempt := 0; attempt < moveRetries; attempt++ {
		task, err := m.st.GetTask(ctx, cmd.TaskID)
		if err != nil {
			return Task{}, err
		}
		if task == nil {
			return Task{}, fmt.Errorf("task %s: %w", cmd.TaskID, ErrNotFound)
		}
		section, err := m.st.GetSection(ctx, cmd.SectionID)
		if err != nil {
			return Task{}, err
		}
		if section == nil {
			return Task{}, fmt.Errorf("section %s: %w", cmd.SectionID, ErrNotFound)
		}

		// Re-moving a task onto its current position must not disturb any
		// sibling, so the shift is skipped entirely.
		if task.SectionID == cmd.SectionID && task.Order == cmd.Order {
			return *task, nil
		}

		before := task.Snapshot()
		moved := *task
		moved.SectionID = cmd.SectionID
		moved.Order = cmd.Order

		err = m.st.Transact(ctx, func(tx Store) error {
			if err := tx.ShiftOrders(ctx, cmd.SectionID, cmd.Order, task.ID); err != nil {
				return err
			}
			return tx.UpdateTask(ctx, moved)
		})
		if errors.Is(err, ErrConcurrencyConflict) {
			log.WithFields(log.Fields{"task": cmd.TaskID, "attempt": attempt + 1}).Warn("move lost a concurrent update, retrying")
			continue
		}
		if err != nil {
			return Task{}, err
		}
		moved.Version++

		m.d.Dispatch(Classify(before, moved), actorID)
		return moved, nil
	}
	return Task{}, fmt.Errorf("move task %s: %w", cmd.TaskID, ErrConcurrencyConflict)
}
