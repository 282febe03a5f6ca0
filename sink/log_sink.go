package sink

import (
	"context"
	"log/slog"
	"wa-gateway/domain/event"
)

// LogSink writes every lifecycle event to the structured log.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{log: log.With("component", "lifecycle")}
}

func (s *LogSink) Consume(_ context.Context, e event.LifecycleEvent) error {
	switch evt := e.(type) {
	case event.ChallengePresented:
		s.log.Info("Pairing challenge presented", "data_url_bytes", len(evt.DataURL))
	case event.AuthFailed:
		s.log.Warn(evt.Data(), "reason", evt.Reason)
	case event.Disconnected:
		s.log.Warn(evt.Data(), "reason", evt.Reason)
	case event.StatusMessage:
		s.log.Debug(evt.Text)
	default:
		s.log.Info(e.Data(), "event", e.Name())
	}
	return nil
}
