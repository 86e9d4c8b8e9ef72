package drifttest

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/gordian-engine/drift"
	"github.com/gordian-engine/drift/internal/dtest"
	"github.com/jonboulle/clockwork"
)

// Fixture is an [*drift.Env] on a fake clock,
// with its logger writing through the test.
type Fixture struct {
	Log *slog.Logger

	Clock *clockwork.FakeClock

	Env *drift.Env
}

// NewFixture returns a Fixture rooted at ctx.
// cfg.Clock is overwritten with the fixture's fake clock.
func NewFixture(t *testing.T, ctx context.Context, cfg drift.EnvConfig) *Fixture {
	t.Helper()

	log := dtest.NewLogger(t)
	clock := clockwork.NewFakeClock()
	cfg.Clock = clock

	return &Fixture{
		Log:   log,
		Clock: clock,
		Env:   drift.NewEnv(ctx, log, cfg),
	}
}

// AdvanceWhenBlocked waits until n goroutines are blocked on the fixture's clock,
// then advances it by d.
func (f *Fixture) AdvanceWhenBlocked(t *testing.T, ctx context.Context, n int, d time.Duration) {
	t.Helper()

	waitCtx, cancel := context.WithTimeout(ctx, dtest.ScheduleDuration)
	defer cancel()

	if err := f.Clock.BlockUntilContext(waitCtx, n); err != nil {
		t.Fatalf("waiting for %d blocked clock waiters: %v", n, err)
	}
	f.Clock.Advance(d)
}
