package dispatch

import (
	"context"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"taskdeck-api/domain"
)

type job struct {
	events  []domain.ChangeEvent
	actorID string
}

// Dispatcher fans change events out to the notification and automation
// collaborators from a worker pool. Delivery is best-effort: a failing or
// slow collaborator is logged and skipped, and never affects the operation
// that produced the events. Workers run on a detached context so delivery
// survives the request that triggered it.
type Dispatcher struct {
	sink   NotificationSink
	engine AutomationEngine
	logger *log.Logger

	jobs        chan job
	callTimeout time.Duration
	handoff     time.Duration
	wg          sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// New starts the dispatcher's workers. Worker count, buffer size and timeouts
// come from the environment with sensible defaults.
func New(sink NotificationSink, engine AutomationEngine, logger *log.Logger) *Dispatcher {
	if logger == nil {
		panic("logger is required")
	}
	workers := envInt("DISPATCH_WORKERS", 4)
	buffer := envInt("DISPATCH_BUFFER", 1024)

	d := &Dispatcher{
		sink:        sink,
		engine:      engine,
		logger:      logger,
		jobs:        make(chan job, buffer),
		callTimeout: envDur("DISPATCH_CALL_TIMEOUT", 5*time.Second),
		handoff:     envDur("DISPATCH_HANDOFF_TIMEOUT", 10*time.Millisecond),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	logger.Infof("event dispatcher started, workers: %d, buffer: %d", workers, buffer)
	return d
}

// Dispatch hands events to the worker pool. A saturated queue falls back to a
// detached goroutine so the caller never blocks on collaborator latency.
func (d *Dispatcher) Dispatch(events []domain.ChangeEvent, actorID string) {
	if len(events) == 0 {
		return
	}
	j := job{events: events, actorID: actorID}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		go d.deliverAll(j)
		return
	}
	select {
	case d.jobs <- j:
		d.mu.Unlock()
		return
	default:
		d.mu.Unlock()
	}

	timer := time.NewTimer(d.handoff)
	defer timer.Stop()
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		go d.deliverAll(j)
		return
	}
	select {
	case d.jobs <- j:
		d.mu.Unlock()
	case <-timer.C:
		d.mu.Unlock()
		d.logger.Warn("dispatch buffer saturated, delivering detached")
		go d.deliverAll(j)
	}
}

// Close drains queued jobs and stops the workers.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for j := range d.jobs {
		d.deliverAll(j)
	}
}

func (d *Dispatcher) deliverAll(j job) {
	for _, ev := range j.events {
		d.deliver(ev, j.actorID)
	}
}

// deliver routes one event to its interested collaborators. Each collaborator
// call gets its own bounded timeout on a background context, detached from
// the request that committed the change.
func (d *Dispatcher) deliver(ev domain.ChangeEvent, actorID string) {
	ctx, cancel := context.WithTimeout(context.Background(), d.callTimeout)
	defer cancel()

	switch ev := ev.(type) {
	case domain.TaskMoved:
		if ev.AssigneeID != "" {
			d.notify(ctx, ev.AssigneeID, KindMoved, "task moved", ev.TaskID)
		}
		d.fire(ctx, domain.TriggerTaskMoved, map[string]string{
			"taskId":      ev.TaskID,
			"fromSection": ev.FromSectionID,
			"toSection":   ev.ToSectionID,
			"order":       strconv.Itoa(ev.Order),
			"timestamp":   strconv.FormatInt(nextTimestamp(), 10),
		}, actorID)
	case domain.TaskAssigned:
		d.notify(ctx, ev.AssigneeID, KindAssigned, "task assigned to you", ev.TaskID)
		d.fire(ctx, domain.TriggerTaskAssigned, map[string]string{
			"taskId":           ev.TaskID,
			"assigneeId":       ev.AssigneeID,
			"previousAssignee": ev.PreviousAssigneeID,
			"timestamp":        strconv.FormatInt(nextTimestamp(), 10),
		}, actorID)
	case domain.TaskCompleted:
		if ev.AssigneeID != "" {
			d.notify(ctx, ev.AssigneeID, KindCompleted, "task completed", ev.TaskID)
		}
		d.fire(ctx, domain.TriggerTaskCompleted, map[string]string{
			"taskId":    ev.TaskID,
			"timestamp": strconv.FormatInt(nextTimestamp(), 10),
		}, actorID)
	case domain.TaskCreated:
		d.fire(ctx, domain.TriggerTaskCreated, map[string]string{
			"taskId":    ev.TaskID,
			"sectionId": ev.SectionID,
			"title":     ev.Title,
			"timestamp": strconv.FormatInt(nextTimestamp(), 10),
		}, actorID)
	case domain.SectionCreated:
		d.fire(ctx, domain.TriggerSectionCreated, map[string]string{
			"sectionId": ev.SectionID,
			"projectId": ev.ProjectID,
			"name":      ev.Name,
			"timestamp": strconv.FormatInt(nextTimestamp(), 10),
		}, actorID)
	default:
		d.logger.Warnf("unknown change event %T", ev)
	}
}

func (d *Dispatcher) notify(ctx context.Context, userID, kind, message, reference string) {
	if err := d.sink.Notify(ctx, userID, kind, message, reference); err != nil {
		d.logger.WithError(err).WithFields(log.Fields{"user": userID, "kind": kind, "reference": reference}).Error("notification sink failed")
	}
}

func (d *Dispatcher) fire(ctx context.Context, trigger string, payload map[string]string, actorID string) {
	if err := d.engine.Fire(ctx, trigger, payload, actorID); err != nil {
		d.logger.WithError(err).WithFields(log.Fields{"trigger": trigger, "actor": actorID}).Error("automation engine failed")
	}
}
