package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"

	log "github.com/sirupsen/logrus"

	"taskdeck-api/domain"
)

type sinkCall struct {
	userID, kind, reference string
}

type fakeSink struct {
	mu    sync.Mutex
	calls []sinkCall
	err   error
}

func (f *fakeSink) Notify(ctx context.Context, userID, kind, message, reference string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sinkCall{userID: userID, kind: kind, reference: reference})
	return f.err
}

type engineCall struct {
	trigger string
	payload map[string]string
	actorID string
}

type fakeEngine struct {
	mu    sync.Mutex
	calls []engineCall
	err   error
}

func (f *fakeEngine) Fire(ctx context.Context, trigger string, payload map[string]string, actorID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, engineCall{trigger: trigger, payload: payload, actorID: actorID})
	return f.err
}

func TestDispatchRoutesEvents(t *testing.T) {
	sink := &fakeSink{}
	engine := &fakeEngine{}
	d := New(sink, engine, log.New())

	d.Dispatch([]domain.ChangeEvent{
		domain.TaskMoved{TaskID: "t1", FromSectionID: "A", ToSectionID: "B", Order: 0, AssigneeID: "u2"},
		domain.TaskAssigned{TaskID: "t1", AssigneeID: "u2"},
		domain.TaskCompleted{TaskID: "t1", AssigneeID: "u2"},
		domain.TaskCreated{TaskID: "t2", SectionID: "A", Title: "x"},
		domain.SectionCreated{SectionID: "C", ProjectID: "p1", Name: "done"},
	}, "u1")
	d.Close()

	if len(sink.calls) != 3 {
		t.Fatalf("expected 3 notifications, got %v", sink.calls)
	}
	kinds := map[string]bool{}
	for _, c := range sink.calls {
		if c.userID != "u2" {
			t.Fatalf("notification should target the assignee: %+v", c)
		}
		kinds[c.kind] = true
	}
	if !kinds[KindMoved] || !kinds[KindAssigned] || !kinds[KindCompleted] {
		t.Fatalf("unexpected kinds: %v", kinds)
	}

	if len(engine.calls) != 5 {
		t.Fatalf("expected 5 triggers, got %v", engine.calls)
	}
	triggers := map[string]bool{}
	for _, c := range engine.calls {
		if c.actorID != "u1" {
			t.Fatalf("trigger should carry the actor: %+v", c)
		}
		triggers[c.trigger] = true
	}
	for _, want := range []string{
		domain.TriggerTaskMoved, domain.TriggerTaskAssigned, domain.TriggerTaskCompleted,
		domain.TriggerTaskCreated, domain.TriggerSectionCreated,
	} {
		if !triggers[want] {
			t.Fatalf("missing trigger %s in %v", want, triggers)
		}
	}
}

func TestDispatchIsolatesSinkFailure(t *testing.T) {
	sink := &fakeSink{err: errors.New("notification backend down")}
	engine := &fakeEngine{}
	d := New(sink, engine, log.New())

	d.Dispatch([]domain.ChangeEvent{
		domain.TaskAssigned{TaskID: "t1", AssigneeID: "u2"},
		domain.TaskCompleted{TaskID: "t1", AssigneeID: "u2"},
	}, "u1")
	d.Close()

	// The failing sink must not stop delivery to the automation engine or to
	// subsequent events.
	if len(engine.calls) != 2 {
		t.Fatalf("expected 2 triggers despite sink failure, got %v", engine.calls)
	}
	if len(sink.calls) != 2 {
		t.Fatalf("expected both notification attempts, got %v", sink.calls)
	}
}

func TestDispatchIsolatesEngineFailure(t *testing.T) {
	sink := &fakeSink{}
	engine := &fakeEngine{err: errors.New("automation backend down")}
	d := New(sink, engine, log.New())

	d.Dispatch([]domain.ChangeEvent{domain.TaskAssigned{TaskID: "t1", AssigneeID: "u2"}}, "u1")
	d.Close()

	if len(sink.calls) != 1 {
		t.Fatalf("expected notification despite engine failure, got %v", sink.calls)
	}
}

func TestDispatchAfterCloseStillDelivers(t *testing.T) {
	sink := &fakeSink{}
	engine := &fakeEngine{}
	d := New(sink, engine, log.New())
	d.Close()

	done := make(chan struct{})
	go func() {
		d.Dispatch([]domain.ChangeEvent{domain.TaskCreated{TaskID: "t1", SectionID: "A"}}, "u1")
		close(done)
	}()
	<-done
	// Delivery is detached; nothing to assert beyond the absence of a panic
	// or a blocked caller.
}

func TestDispatchEmptyIsNoop(t *testing.T) {
	d := New(&fakeSink{}, &fakeEngine{}, log.New())
	d.Dispatch(nil, "u1")
	d.Close()
}
