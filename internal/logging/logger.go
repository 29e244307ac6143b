// internal/logging/logger.go
package logging

import (
	"io"
	"log/slog"
)

// New returns the logger for one invocation, writing to w.
// A quiet run logs nothing: unknown or empty levels mean warn, and
// anything but "json" is text. main passes stderr since stdout carries
// the printed tag mask.
func New(level, format string, w io.Writer) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
