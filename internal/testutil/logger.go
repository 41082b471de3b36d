// Package testutil provides test utilities for structured logging.
package testutil

import (
	"context"
	"log/slog"
	"sync"
	"testing"
)

// NewTestLogger returns a logger that writes to t.Log().
// Logs only appear on test failure or when running with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// Recorder keeps every record logged through a logger from NewRecordingLogger.
type Recorder struct {
	mu      sync.Mutex
	records []slog.Record
}

// Messages returns the messages logged at level or above, in order.
func (r *Recorder) Messages(level slog.Level) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, rec := range r.records {
		if rec.Level >= level {
			out = append(out, rec.Message)
		}
	}
	return out
}

// NewRecordingLogger returns a debug logger whose records are kept in the
// returned Recorder and also written to t.Log().
func NewRecordingLogger(t testing.TB) (*slog.Logger, *Recorder) {
	t.Helper()
	rec := &Recorder{}
	inner := slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(&recordingHandler{Handler: inner, rec: rec}), rec
}

type recordingHandler struct {
	slog.Handler
	rec *Recorder
}

func (h *recordingHandler) Handle(ctx context.Context, r slog.Record) error {
	h.rec.mu.Lock()
	h.rec.records = append(h.rec.records, r.Clone())
	h.rec.mu.Unlock()
	return h.Handler.Handle(ctx, r)
}

func (h *recordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &recordingHandler{Handler: h.Handler.WithAttrs(attrs), rec: h.rec}
}

func (h *recordingHandler) WithGroup(name string) slog.Handler {
	return &recordingHandler{Handler: h.Handler.WithGroup(name), rec: h.rec}
}
