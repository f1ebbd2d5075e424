package vmix

import (
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(NewLogger(os.Stderr, slog.LevelWarn))
}

// NewLogger creates a text logger writing to w.
// It standardizes common keys (e.g., "error" -> "err").
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	})).With("component", "vmix")
}

// NopLogger returns a logger that discards everything.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SetLogger replaces the package logger. nil restores a no-op logger.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = NopLogger()
	}
	logger.Store(l)
}

// Logger returns the package logger.
func Logger() *slog.Logger {
	return logger.Load()
}
