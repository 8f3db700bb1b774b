// Package logger implements a logging adapter using log/slog.
package logger

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"go.trai.ch/stash/internal/core/ports"
)

// Logger implements ports.Logger using log/slog. Every line carries a
// component attribute naming the cache subsystem that emitted it.
type Logger struct {
	mu     sync.RWMutex
	logger *slog.Logger
}

// New creates a new Logger writing to stderr.
func New() ports.Logger {
	return &Logger{
		logger: slog.New(newHandler(os.Stderr)),
	}
}

func newHandler(w io.Writer) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
}

// SetOutput updates the logger's output destination. Thread-safe.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger = slog.New(newHandler(w))
}

// Info logs an informational message.
func (l *Logger) Info(msg, component string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Info(msg, "component", component)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg, component string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Warn(msg, "component", component)
}

// Error logs an error.
func (l *Logger) Error(err error, component string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Error("operation failed", "error", err, "component", component)
}
