package audit

import (
	"context"
	"log/slog"
)

// LogSink writes audit events to the structured log. Default sink when no
// Kafka brokers are configured.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Write(_ context.Context, event Event) error {
	s.log.Info("audit",
		"action", event.Action,
		"worker_uuid", event.WorkerID,
		"actor_uuid", event.ActorID,
		"shift_id", event.ShiftID,
		"workplace", event.Workplace,
		"outcome", event.Outcome,
		"request_id", event.RequestID,
		"timestamp", event.Timestamp,
	)
	return nil
}
