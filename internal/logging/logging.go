// Package logging builds the slog logger shared by the CLI and the replay
// engine: human-readable text on the console, JSON lines in an optional
// log file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Options selects the sinks and level.
type Options struct {
	// Level is debug, info, warn or error. Unknown values mean info.
	Level string

	// Verbose forces debug on every sink.
	Verbose bool

	// Console receives text output. Nil disables it.
	Console io.Writer

	// File receives JSON lines. Nil disables it.
	File io.Writer
}

// New returns a logger writing to the sinks in opts. With no sinks the
// logger discards everything.
func New(opts Options) *slog.Logger {
	lvl := parseLevel(opts.Level)
	if opts.Verbose {
		lvl = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}

	var handlers []slog.Handler
	if opts.Console != nil {
		handlers = append(handlers, slog.NewTextHandler(opts.Console, handlerOpts))
	}
	if opts.File != nil {
		handlers = append(handlers, NewZerologHandler(opts.File, lvl))
	}
	if len(handlers) == 0 {
		return Discard()
	}
	return slog.New(NewMultiHandler(handlers...))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OpenFile opens path for appending, creating parent directories.
func OpenFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
