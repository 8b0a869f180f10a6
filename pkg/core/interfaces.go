package core

import (
	"fmt"
	"log/slog"
	"strings"
)

// Logger interface for renderer logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// SlogLogger implements Logger on top of a structured slog.Logger.
// Each Printf call becomes one info record with trailing newlines trimmed.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger wraps l. A nil l uses slog.Default().
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	if l == nil {
		l = slog.Default()
	}
	return &SlogLogger{logger: l}
}

// NewDefaultLogger creates a logger writing through the process-wide slog default
func NewDefaultLogger() Logger {
	return NewSlogLogger(nil)
}

func (sl *SlogLogger) Printf(format string, args ...interface{}) {
	sl.logger.Info(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

// NopLogger discards everything; used by tests and quiet entry points
type NopLogger struct{}

func (NopLogger) Printf(string, ...interface{}) {}
