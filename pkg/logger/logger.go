// Package logger builds the slog loggers used by the storefront and the dev
// backend and carries request-scoped fields through context.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Output formats understood by NewWithWriter.
const (
	FormatJSON = "json"
	FormatText = "text"
)

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// New writes JSON to stderr. Stdout is reserved for command output.
func New(serviceName, level string) *slog.Logger {
	return NewWithWriter(serviceName, level, FormatJSON, os.Stderr)
}

// NewWithWriter builds a logger tagged with service. Unknown formats fall
// back to JSON and unknown levels to info. Debug adds source locations.
func NewWithWriter(serviceName, level, format string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{Level: lvl, AddSource: lvl <= slog.LevelDebug}

	var h slog.Handler = slog.NewJSONHandler(w, opts)
	if strings.EqualFold(format, FormatText) {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h).With(slog.String("service", serviceName))
}

// ParseLevel is case-insensitive and defaults to info.
func ParseLevel(level string) slog.Level {
	if lvl, ok := levels[strings.ToLower(strings.TrimSpace(level))]; ok {
		return lvl
	}
	return slog.LevelInfo
}

// Discard drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
