package whatsapp

import (
	"context"
	"fmt"
	"log/slog"

	waLog "go.mau.fi/whatsmeow/util/log"
)

// slogAdapter lets the protocol client log through the gateway logger.
type slogAdapter struct {
	log *slog.Logger
}

func newLogAdapter(log *slog.Logger, module string) waLog.Logger {
	return slogAdapter{log: log.With("module", module)}
}

func (l slogAdapter) Errorf(msg string, args ...interface{}) {
	l.logf(slog.LevelError, msg, args...)
}

func (l slogAdapter) Warnf(msg string, args ...interface{}) {
	l.logf(slog.LevelWarn, msg, args...)
}

func (l slogAdapter) Infof(msg string, args ...interface{}) {
	l.logf(slog.LevelInfo, msg, args...)
}

func (l slogAdapter) Debugf(msg string, args ...interface{}) {
	l.logf(slog.LevelDebug, msg, args...)
}

func (l slogAdapter) Sub(module string) waLog.Logger {
	return slogAdapter{log: l.log.With("sub", module)}
}

func (l slogAdapter) logf(level slog.Level, msg string, args ...interface{}) {
	ctx := context.Background()
	if !l.log.Enabled(ctx, level) {
		return
	}
	l.log.Log(ctx, level, fmt.Sprintf(msg, args...))
}
