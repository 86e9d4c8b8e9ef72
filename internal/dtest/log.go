package dtest

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/neilotoole/slogt"
)

// NewLogger returns a logger that writes through t,
// so output is only shown for failing or verbose tests.
//
// Goroutines started by the test may outlive it.
// Once t's cleanup runs, their records are dropped
// instead of reaching a finished t.
func NewLogger(t *testing.T) *slog.Logger {
	t.Helper()

	g := new(logGate)
	t.Cleanup(g.shut)

	return slog.New(gatedHandler{
		g: g,
		h: slogt.New(t, slogt.Text()).Handler(),
	})
}

type logGate struct {
	mu     sync.Mutex
	closed bool
}

func (g *logGate) shut() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
}

// gatedHandler forwards to h until its gate is shut.
// Derived handlers share the gate.
type gatedHandler struct {
	g *logGate
	h slog.Handler
}

func (h gatedHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.h.Enabled(ctx, l)
}

func (h gatedHandler) Handle(ctx context.Context, r slog.Record) error {
	h.g.mu.Lock()
	defer h.g.mu.Unlock()

	if h.g.closed {
		return nil
	}
	return h.h.Handle(ctx, r)
}

func (h gatedHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return gatedHandler{g: h.g, h: h.h.WithAttrs(attrs)}
}

func (h gatedHandler) WithGroup(name string) slog.Handler {
	return gatedHandler{g: h.g, h: h.h.WithGroup(name)}
}
