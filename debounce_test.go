package drift_test

import (
	"context"
	"testing"
	"time"

	"github.com/gordian-engine/drift"
	"github.com/gordian-engine/drift/internal/dtest"
	"github.com/stretchr/testify/require"
)

func TestDebounce_burstKeepsLast(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fx := newFixture(t, ctx)
	src, e := drift.NewSubject[int](fx.Env)

	d := drift.Debounce(src, 10*time.Millisecond)

	for i := 1; i <= 3; i++ {
		_, err := e.Emit(i)
		require.NoError(t, err)
	}

	// One pending delay per value.
	fx.AdvanceWhenBlocked(t, ctx, 3, 10*time.Millisecond)
	require.NoError(t, e.Complete())

	vs, err := drift.Collect(ctx, d)
	require.NoError(t, err)
	require.Equal(t, []int{3}, vs)
}

func TestDebounce_quietValuesPassThrough(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fx := newFixture(t, ctx)
	src, e := drift.NewSubject[int](fx.Env)

	d := drift.Debounce(src, 10*time.Millisecond)

	for i := 1; i <= 2; i++ {
		_, err := e.Emit(i)
		require.NoError(t, err)

		next := nextSoon(ctx, d)
		fx.AdvanceWhenBlocked(t, ctx, 1, 9*time.Millisecond)
		dtest.NotSending(t, next.Done())

		fx.Clock.Advance(time.Millisecond)
		_ = dtest.ReceiveSoon(t, next.Done())
		v, err := next.Result()
		require.NoError(t, err)
		require.Equal(t, i, v)
	}

	require.NoError(t, e.Complete())
	ok, err := d.Advance(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDebounce_finalValueAlwaysEmitted(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fx := newFixture(t, ctx)
	src, e := drift.NewSubject[int](fx.Env)

	d := drift.Debounce(src, time.Second)

	_, err := e.Emit(1)
	require.NoError(t, err)
	fx.AdvanceWhenBlocked(t, ctx, 1, 500*time.Millisecond)

	// 2 supersedes 1, and the source ends before 2's delay elapses.
	_, err = e.Emit(2)
	require.NoError(t, err)
	require.NoError(t, e.Complete())

	all := nextSoon(ctx, d)
	fx.AdvanceWhenBlocked(t, ctx, 2, time.Second)

	_ = dtest.ReceiveSoon(t, all.Done())
	v, err := all.Result()
	require.NoError(t, err)
	require.Equal(t, 2, v)

	ok, err := d.Advance(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}
