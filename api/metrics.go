package api

import (
	"time"

	log "github.com/sirupsen/logrus"
)

type moveRequestMetrics struct {
	logger         *log.Logger
	start          time.Time
	decodeDuration time.Duration
	moveDuration   time.Duration
	taskID         string
	order          int
	errorStage     string
}

func newMoveRequestMetrics(logger *log.Logger) *moveRequestMetrics {
	return &moveRequestMetrics{logger: logger, start: time.Now()}
}

func (m *moveRequestMetrics) ObserveDecode(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.decodeDuration = duration
}

func (m *moveRequestMetrics) ObserveMove(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.moveDuration = duration
}

func (m *moveRequestMetrics) SetPlacement(taskID string, order int) {
	m.taskID = taskID
	m.order = order
}

func (m *moveRequestMetrics) SetErrorStage(stage string) {
	if stage == "" {
		return
	}
	m.errorStage = stage
}

func (m *moveRequestMetrics) Log(status int, err error) {
	if m == nil || m.logger == nil {
		return
	}

	fields := log.Fields{
		"route":    "/api/tasks/:id/move",
		"status":   status,
		"total_ms": durationToMillis(time.Since(m.start)),
	}
	if m.decodeDuration > 0 {
		fields["decode_ms"] = durationToMillis(m.decodeDuration)
	}
	if m.moveDuration > 0 {
		fields["move_ms"] = durationToMillis(m.moveDuration)
	}
	if m.taskID != "" {
		fields["task"] = m.taskID
		fields["order"] = m.order
	}
	if m.errorStage != "" {
		fields["error_stage"] = m.errorStage
	}
	if err != nil {
		fields["error"] = err.Error()
	}

	m.logger.WithFields(fields).Info("move.request.metrics")
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
