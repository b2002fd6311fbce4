// Package logging builds the slog loggers used by the token tools.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// ParseLevel maps debug, info, warn and error to slog levels. Anything else
// is info.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates an isolated logger writing to outW. The format is "json" or
// text for anything else. The global logger is left untouched.
func New(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(levelStr)}
	var handler slog.Handler
	if strings.EqualFold(formatStr, "json") {
		handler = slog.NewJSONHandler(outW, handlerOpts)
	} else {
		handler = slog.NewTextHandler(outW, handlerOpts)
	}
	return slog.New(handler)
}
