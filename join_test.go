package drift_test

import (
	"context"
	"testing"
	"time"

	"github.com/gordian-engine/drift"
	"github.com/gordian-engine/drift/dfuture"
	"github.com/gordian-engine/drift/internal/dtest"
	"github.com/stretchr/testify/require"
)

func TestJoin(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fx := newFixture(t, ctx)
	l, le := drift.NewSubject[int](fx.Env)
	r, re := drift.NewSubject[string](fx.Env)

	window := 10 * time.Second
	j := drift.Join(
		l, r,
		func(int) time.Duration { return window },
		func(string) time.Duration { return window },
		pair,
	)

	// Waits until the join has moved past the emitted value.
	emitTaken := func(rel *dfuture.Future[struct{}]) {
		t.Helper()
		_ = dtest.ReceiveSoon(t, rel.Done())
	}

	rel, err := le.Emit(1)
	require.NoError(t, err)
	emitTaken(rel)

	rel, err = re.Emit("a")
	require.NoError(t, err)
	emitTaken(rel)

	// "a" arrived while 1's window was open.
	v, ok, err := j.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "1a", v)

	// Close the windows of 1 and "a".
	fx.AdvanceWhenBlocked(t, ctx, 2, window)

	next := nextSoon(ctx, j)
	dtest.NotSending(t, next.Done())

	// Nothing is open on the left, so "b" pairs with nothing yet.
	rel, err = re.Emit("b")
	require.NoError(t, err)
	emitTaken(rel)
	dtest.NotSending(t, next.Done())

	// 2 arrives inside "b"'s window.
	rel, err = le.Emit(2)
	require.NoError(t, err)
	emitTaken(rel)

	_ = dtest.ReceiveSoon(t, next.Done())
	v, err = next.Result()
	require.NoError(t, err)
	require.Equal(t, "2b", v)

	require.NoError(t, le.Complete())
	require.NoError(t, re.Complete())

	// Join ends once the windows of "b" and 2 close.
	end := dfuture.Go(ctx, j.Advance)
	dtest.NotSending(t, end.Done())

	fx.AdvanceWhenBlocked(t, ctx, 2, window)

	_ = dtest.ReceiveSoon(t, end.Done())
	ok, err = end.Result()
	require.NoError(t, err)
	require.False(t, ok)
}
