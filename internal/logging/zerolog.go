package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/rs/zerolog"
)

// ZerologHandler is a slog.Handler that writes JSON lines through zerolog.
// Group names are flattened into dotted keys.
type ZerologHandler struct {
	logger zerolog.Logger
	level  slog.Leveler
	attrs  []qualifiedAttr
	groups []string
}

type qualifiedAttr struct {
	prefix string
	attr   slog.Attr
}

// NewZerologHandler writes records at or above level to w.
func NewZerologHandler(w io.Writer, level slog.Leveler) *ZerologHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &ZerologHandler{logger: zerolog.New(w), level: level}
}

func (h *ZerologHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *ZerologHandler) Handle(_ context.Context, r slog.Record) error {
	ev := h.logger.WithLevel(zerologLevel(r.Level))
	if ev == nil {
		return nil
	}
	if !r.Time.IsZero() {
		ev.Time(zerolog.TimestampFieldName, r.Time)
	}
	for _, qa := range h.attrs {
		addAttr(ev, qa.prefix, qa.attr)
	}
	prefix := h.prefix()
	r.Attrs(func(a slog.Attr) bool {
		addAttr(ev, prefix, a)
		return true
	})
	ev.Msg(r.Message)
	return nil
}

func (h *ZerologHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := h.clone()
	prefix := h.prefix()
	for _, a := range attrs {
		next.attrs = append(next.attrs, qualifiedAttr{prefix: prefix, attr: a})
	}
	return next
}

func (h *ZerologHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.groups = append(next.groups, name)
	return next
}

func (h *ZerologHandler) clone() *ZerologHandler {
	return &ZerologHandler{
		logger: h.logger,
		level:  h.level,
		attrs:  append([]qualifiedAttr(nil), h.attrs...),
		groups: append([]string(nil), h.groups...),
	}
}

func (h *ZerologHandler) prefix() string {
	return strings.Join(h.groups, ".")
}

func addAttr(ev *zerolog.Event, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	key := a.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	} else if key == "" {
		key = prefix
	}

	switch a.Value.Kind() {
	case slog.KindGroup:
		for _, ga := range a.Value.Group() {
			addAttr(ev, key, ga)
		}
	case slog.KindString:
		ev.Str(key, a.Value.String())
	case slog.KindInt64:
		ev.Int64(key, a.Value.Int64())
	case slog.KindUint64:
		ev.Uint64(key, a.Value.Uint64())
	case slog.KindFloat64:
		ev.Float64(key, a.Value.Float64())
	case slog.KindBool:
		ev.Bool(key, a.Value.Bool())
	case slog.KindDuration:
		ev.Str(key, a.Value.Duration().String())
	case slog.KindTime:
		ev.Time(key, a.Value.Time())
	default:
		if err, ok := a.Value.Any().(error); ok {
			ev.AnErr(key, err)
			return
		}
		ev.Interface(key, a.Value.Any())
	}
}

func zerologLevel(l slog.Level) zerolog.Level {
	switch {
	case l < slog.LevelInfo:
		return zerolog.DebugLevel
	case l < slog.LevelWarn:
		return zerolog.InfoLevel
	case l < slog.LevelError:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
