package logger

import (
	"log/slog"
)

// Logger is the interface for structured logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// New creates a logger backed by the standard library's slog.
func New(handler slog.Handler) Logger {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &slogLogger{logger: slog.New(handler)}
}

// Noop returns a logger that discards all log messages.
func Noop() Logger {
	return &noopLogger{}
}

// slogLogger adapts slog.Logger to the Logger interface.
type slogLogger struct {
	logger *slog.Logger
}

func (l *slogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *slogLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *slogLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *slogLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

// With returns a new logger with the given key-value pairs added to all log messages.
func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{logger: l.logger.With(args...)}
}

// noopLogger discards everything.
type noopLogger struct{}

func (n *noopLogger) Debug(msg string, args ...any) {}
func (n *noopLogger) Info(msg string, args ...any)  {}
func (n *noopLogger) Warn(msg string, args ...any)  {}
func (n *noopLogger) Error(msg string, args ...any) {}

// With returns the same noop logger.
func (n *noopLogger) With(args ...any) Logger { return n }
