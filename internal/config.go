package internal

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	charmLog "github.com/charmbracelet/log"
	"github.com/mama165/sdk-go/logs"
)

const (
	DefaultPort = 8000

	LogFormatJSON   = "json"
	LogFormatPretty = "pretty"
)

// LookupFunc reads one environment variable, os.LookupEnv in production.
type LookupFunc func(key string) (string, bool)

// ResolvePort picks "<appName>-APP_PORT" first, then APP_PORT, then
// DefaultPort. The first variable cannot be expressed as a struct tag since
// its name depends on APP_NAME.
func ResolvePort(appName string, lookup LookupFunc) (int, error) {
	for _, key := range []string{appName + "-APP_PORT", "APP_PORT"} {
		raw, ok := lookup(key)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		port, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || port <= 0 || port > 65535 {
			return 0, fmt.Errorf("%s must be a valid port, got %q", key, raw)
		}
		return port, nil
	}
	return DefaultPort, nil
}

// NewLogger builds the process logger. The pretty format is meant for a
// terminal, json for everything else.
func NewLogger(level, format string, w io.Writer) *slog.Logger {
	if strings.EqualFold(format, LogFormatPretty) {
		pretty := charmLog.NewWithOptions(w, charmLog.Options{
			Level:           charmLevel(level),
			ReportTimestamp: true,
		})
		return slog.New(pretty)
	}
	return logs.GetLoggerFromString(level)
}

func charmLevel(level string) charmLog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return charmLog.DebugLevel
	case "WARN", "WARNING":
		return charmLog.WarnLevel
	case "ERROR":
		return charmLog.ErrorLevel
	default:
		return charmLog.InfoLevel
	}
}
