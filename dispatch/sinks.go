package dispatch

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Notification kinds delivered to the notification sink.
const (
	KindAssigned  = "assigned"
	KindCompleted = "completed"
	KindMoved     = "moved"
)

// NotificationSink receives user-facing notifications. Errors are captured
// and logged by the dispatcher, never propagated.
type NotificationSink interface {
	Notify(ctx context.Context, userID, kind, message, reference string) error
}

// AutomationEngine receives automation triggers with a flat payload. Errors
// are captured and logged by the dispatcher, never propagated.
type AutomationEngine interface {
	Fire(ctx context.Context, trigger string, payload map[string]string, actorID string) error
}

// LogNotificationSink is the fallback sink used when no notification backend
// is configured.
type LogNotificationSink struct{ Logger *log.Logger }

func (s LogNotificationSink) Notify(ctx context.Context, userID, kind, message, reference string) error {
	s.Logger.WithFields(log.Fields{"user": userID, "kind": kind, "reference": reference}).Info(message)
	return nil
}

// LogAutomationEngine is the fallback engine used when no automation backend
// is configured.
type LogAutomationEngine struct{ Logger *log.Logger }

func (e LogAutomationEngine) Fire(ctx context.Context, trigger string, payload map[string]string, actorID string) error {
	e.Logger.WithFields(log.Fields{"trigger": trigger, "actor": actorID, "payload": payload}).Info("automation trigger")
	return nil
}
