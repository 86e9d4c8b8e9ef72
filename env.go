package drift

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/gordian-engine/drift/internal/dtrace"
	"github.com/jonboulle/clockwork"
)

// Env is the scheduling environment shared by a tree of sequences.
// It carries the root context, the logger, and the clock
// used by every time-based operator.
//
// Canceling the root context stops every producer started under the Env.
type Env struct {
	ctx context.Context
	log *slog.Logger

	clock  clockwork.Clock
	tracer dtrace.Tracer

	traceCompletions   bool
	strictBackpressure bool

	nextID atomic.Uint64
}

// EnvConfig is the configuration for an [Env].
type EnvConfig struct {
	// The clock used for delays.
	// If nil, the real clock is used.
	// Tests generally set a *clockwork.FakeClock.
	Clock clockwork.Clock

	// Every sequence records a span, from creation until it
	// completes, fails, or is torn down.
	// If nil, tracing is disabled.
	TracerProvider dtrace.TracerProvider

	// When set, the stack of the first completion of each sequence
	// is captured and reported in any later [*AlreadyCompletedError].
	// This is useful while debugging but costs a stack capture per sequence.
	TraceCompletions bool

	// By default, a relay skips waiting on release signals
	// while any cursor of the downstream sequence is actively pulling.
	// With StrictBackpressure, relays always wait
	// until the value they emitted has been consumed.
	StrictBackpressure bool
}

// validate panics if there are any illegal settings in the configuration.
func (c EnvConfig) validate(ctx context.Context, log *slog.Logger) {
	var panicErrs error

	if ctx == nil {
		panicErrs = errors.Join(
			panicErrs,
			errors.New("BUG: NewEnv: context must not be nil"),
		)
	}

	if log == nil {
		panicErrs = errors.Join(
			panicErrs,
			errors.New("BUG: NewEnv: logger must not be nil (use slog.New(slog.DiscardHandler) to silence output)"),
		)
	}

	if panicErrs != nil {
		panic(panicErrs)
	}
}

// NewEnv returns a new Env rooted at ctx.
func NewEnv(ctx context.Context, log *slog.Logger, cfg EnvConfig) *Env {
	cfg.validate(ctx, log)

	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	tp := cfg.TracerProvider
	if tp == nil {
		tp = dtrace.NopTracerProvider()
	}

	return &Env{
		ctx: ctx,
		log: log,

		clock:  clock,
		tracer: tp.Tracer(dtrace.InstrumentationName),

		traceCompletions:   cfg.TraceCompletions,
		strictBackpressure: cfg.StrictBackpressure,
	}
}

// Clock returns the clock used by e.
func (e *Env) Clock() clockwork.Clock {
	return e.clock
}

// Delay blocks until d has elapsed on e's clock or ctx is done.
func (e *Env) Delay(ctx context.Context, d time.Duration) error {
	t := e.clock.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return context.Cause(ctx)
	case <-t.Chan():
		return nil
	}
}

// Yield lets other goroutines run before a busy producer continues.
// It returns the context's cause if ctx is already done.
func (e *Env) Yield(ctx context.Context) error {
	runtime.Gosched()
	if err := ctx.Err(); err != nil {
		return context.Cause(ctx)
	}
	return nil
}

// startSource returns the context, logger, and span for a new sequence.
func (e *Env) startSource(op string) (context.Context, *slog.Logger, dtrace.Span) {
	id := e.nextID.Add(1)
	ctx, span := e.tracer.Start(
		e.ctx, "drift."+op,
		dtrace.WithAttributes(dtrace.SequenceAttrs(op, id)...),
	)
	return ctx, e.log.With("op", op, "sid", id), span
}
