package domain

import (
	"context"
	"sort"
)

// fakeStore is an in-memory Store with the same absent-row and version-check
// conventions as the real adapter.
type fakeStore struct {
	projects map[string]Project
	sections map[string]Section
	tasks    map[string]Task

	// conflicts makes the next n UpdateTask calls fail with
	// ErrConcurrencyConflict to exercise the retry loops.
	conflicts  int
	shiftCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		projects: map[string]Project{},
		sections: map[string]Section{},
		tasks:    map[string]Task{},
	}
}

func (f *fakeStore) GetProject(ctx context.Context, id string) (*Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeStore) InsertProject(ctx context.Context, p Project) error {
	f.projects[p.ID] = p
	return nil
}

func (f *fakeStore) GetSection(ctx context.Context, id string) (*Section, error) {
	s, ok := f.sections[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f *fakeStore) InsertSection(ctx context.Context, s Section) error {
	f.sections[s.ID] = s
	return nil
}

func (f *fakeStore) ListSections(ctx context.Context, projectID string) ([]Section, error) {
	out := []Section{}
	for _, s := range f.sections {
		if s.ProjectID == projectID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (f *fakeStore) MaxSectionOrder(ctx context.Context, projectID string) (int, error) {
	max := -1
	for _, s := range f.sections {
		if s.ProjectID == projectID && s.Order > max {
			max = s.Order
		}
	}
	return max, nil
}

func (f *fakeStore) GetTask(ctx context.Context, id string) (*Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (f *fakeStore) InsertTask(ctx context.Context, t Task) error {
	f.tasks[t.ID] = t
	return nil
}

func (f *fakeStore) UpdateTask(ctx context.Context, t Task) error {
	if f.conflicts > 0 {
		f.conflicts--
		return ErrConcurrencyConflict
	}
	cur, ok := f.tasks[t.ID]
	if !ok || cur.Version != t.Version {
		return ErrConcurrencyConflict
	}
	t.Version++
	f.tasks[t.ID] = t
	return nil
}

func (f *fakeStore) DeleteTask(ctx context.Context, id string) error {
	delete(f.tasks, id)
	return nil
}

func (f *fakeStore) ListTasks(ctx context.Context, sectionID string) ([]Task, error) {
	out := []Task{}
	for _, t := range f.tasks {
		if t.SectionID == sectionID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (f *fakeStore) MaxTaskOrder(ctx context.Context, sectionID string) (int, error) {
	max := -1
	for _, t := range f.tasks {
		if t.SectionID == sectionID && t.Order > max {
			max = t.Order
		}
	}
	return max, nil
}

func (f *fakeStore) ShiftOrders(ctx context.Context, sectionID string, minOrder int, excludeTaskID string) error {
	f.shiftCalls++
	for id, t := range f.tasks {
		if t.SectionID == sectionID && t.ID != excludeTaskID && t.Order >= minOrder {
			t.Order++
			f.tasks[id] = t
		}
	}
	return nil
}

func (f *fakeStore) Board(ctx context.Context, projectID string) ([]BoardSection, error) {
	sections, _ := f.ListSections(ctx, projectID)
	out := make([]BoardSection, 0, len(sections))
	for _, s := range sections {
		tasks, _ := f.ListTasks(ctx, s.ID)
		out = append(out, BoardSection{Section: s, Tasks: tasks})
	}
	return out, nil
}

// Transact snapshots the mutable state and restores it when fn fails, so an
// aborted shift rolls back the way the real store's transaction does.
func (f *fakeStore) Transact(ctx context.Context, fn func(tx Store) error) error {
	tasks := make(map[string]Task, len(f.tasks))
	for id, t := range f.tasks {
		tasks[id] = t
	}
	sections := make(map[string]Section, len(f.sections))
	for id, s := range f.sections {
		sections[id] = s
	}
	if err := fn(f); err != nil {
		f.tasks = tasks
		f.sections = sections
		return err
	}
	return nil
}

// fakeDispatcher records dispatched events for assertions.
type fakeDispatcher struct {
	events []ChangeEvent
	actors []string
}

func (d *fakeDispatcher) Dispatch(events []ChangeEvent, actorID string) {
	d.events = append(d.events, events...)
	d.actors = append(d.actors, actorID)
}
