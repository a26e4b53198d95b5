package logging

import (
	"log/slog"
	"os"
)

// NewLogger creates a structured logger for the given environment.
// Production logs JSON at Info level, anything else logs human-readable
// text at Debug level. Logs go to stderr so the run summary printed on
// stdout stays scriptable.
func NewLogger(env string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
