// Package logging configures slog for the console binaries and mirrors log
// records into the in-memory log buffer shown by the Logging panel.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Sink receives mirrored records. *state.AppState implements it.
type Sink interface {
	AddLog(level, label, message string)
}

// ParseLevel converts a string log level to slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup installs a JSON slog handler on w as the default logger. When sink
// is non-nil every enabled record is also appended to it.
func Setup(w io.Writer, level string, sink Sink) *slog.Logger {
	var h slog.Handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	if sink != nil {
		h = NewMirror(h, sink)
	}
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

// Mirror is a slog.Handler that forwards to an inner handler and copies each
// record into a Sink. The "component" attribute becomes the entry label.
type Mirror struct {
	inner slog.Handler
	sink  Sink
	attrs []slog.Attr
}

// NewMirror wraps inner.
func NewMirror(inner slog.Handler, sink Sink) *Mirror {
	return &Mirror{inner: inner, sink: sink}
}

func (m *Mirror) Enabled(ctx context.Context, level slog.Level) bool {
	return m.inner.Enabled(ctx, level)
}

func (m *Mirror) Handle(ctx context.Context, r slog.Record) error {
	label := "Main"
	var b strings.Builder
	b.WriteString(r.Message)
	write := func(a slog.Attr) bool {
		if a.Key == "component" {
			label = a.Value.String()
			return true
		}
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value.Any())
		return true
	}
	for _, a := range m.attrs {
		write(a)
	}
	r.Attrs(write)
	m.sink.AddLog(r.Level.String(), label, b.String())
	return m.inner.Handle(ctx, r)
}

func (m *Mirror) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &Mirror{inner: m.inner.WithAttrs(attrs), sink: m.sink}
	next.attrs = append(append([]slog.Attr(nil), m.attrs...), attrs...)
	return next
}

// WithGroup is passed through; grouped attributes are mirrored unqualified.
func (m *Mirror) WithGroup(name string) slog.Handler {
	return &Mirror{inner: m.inner.WithGroup(name), sink: m.sink, attrs: m.attrs}
}
