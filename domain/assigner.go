package domain

import "context"

// OrderAssigner computes order values for tasks created without an explicit
// position.
type OrderAssigner struct{ st Store }

func NewOrderAssigner(st Store) OrderAssigner { return OrderAssigner{st: st} }

// AppendOrder returns the order placing a new task at the end of the section:
// max sibling order plus one, or zero when the section is empty.
func (a OrderAssigner) AppendOrder(ctx context.Context, sectionID string) (int, error) {
	max, err := a.st.MaxTaskOrder(ctx, sectionID)
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}
