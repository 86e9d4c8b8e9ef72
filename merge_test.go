package drift_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/gordian-engine/drift"
	"github.com/gordian-engine/drift/drifttest"
	"github.com/gordian-engine/drift/internal/dtest"
	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fx := newFixture(t, ctx)

	seq := drift.Merge(fx.Env,
		drift.Just(fx.Env, 1, 2),
		drift.Range(fx.Env, 3, 5),
		drift.Empty[int](fx.Env),
	)
	drifttest.AssertHotColdConsumersSeeValues(t, ctx, []int{1, 2, 3, 4}, seq)
}

func TestMerge_interleavesAsEmitted(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fx := newFixture(t, ctx)

	a, ae := drift.NewSubject[string](fx.Env)
	b, be := drift.NewSubject[string](fx.Env)
	seq := drift.Merge(fx.Env, a, b)

	for _, step := range []struct {
		e *drift.Emitter[string]
		v string
	}{
		{e: be, v: "b1"},
		{e: ae, v: "a1"},
		{e: be, v: "b2"},
	} {
		_, err := step.e.Emit(step.v)
		require.NoError(t, err)

		v, ok, err := seq.Next(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, step.v, v)
	}

	// Merge completes only when every input has completed.
	require.NoError(t, ae.Complete())
	next := nextSoon(ctx, seq)
	dtest.NotSending(t, next.Done())

	require.NoError(t, be.Complete())
	_ = dtest.ReceiveSoon(t, next.Done())
	_, err := next.Result()
	require.EqualError(t, err, "sequence ended")
}

func TestMerge_failsOnFirstFailure(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fx := newFixture(t, ctx)

	boom := errors.New("boom")
	seq := drift.Merge(fx.Env, drift.Never[int](fx.Env), drift.Throw[int](fx.Env, boom))

	_, err := drift.Collect(ctx, seq)
	require.ErrorIs(t, err, boom)
}

func TestMerge_none(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fx := newFixture(t, ctx)

	vs, err := drift.Collect(ctx, drift.Merge[int](fx.Env))
	require.NoError(t, err)
	require.Empty(t, vs)
}

func TestFlatMap(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fx := newFixture(t, ctx)

	seq := drift.FlatMap(drift.Just(fx.Env, 1, 2, 3), func(v int) drift.Iterator[int] {
		return drift.Just(fx.Env, v, v*10, v*100)
	})

	vs, err := drift.Collect(ctx, seq)
	require.NoError(t, err)
	require.ElementsMatch(t, []int{1, 10, 100, 2, 20, 200, 3, 30, 300}, vs)

	// Values of one inner sequence keep their relative order.
	for _, v := range []int{1, 2, 3} {
		require.Less(t, slices.Index(vs, v), slices.Index(vs, v*10))
		require.Less(t, slices.Index(vs, v*10), slices.Index(vs, v*100))
	}
}

func TestFlatMap_innerFailure(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fx := newFixture(t, ctx)

	boom := errors.New("boom")
	seq := drift.FlatMap(drift.Just(fx.Env, 1, 2), func(v int) drift.Iterator[int] {
		if v == 2 {
			return drift.Throw[int](fx.Env, boom)
		}
		return drift.Never[int](fx.Env)
	})

	_, err := drift.Collect(ctx, seq)
	require.ErrorIs(t, err, boom)
}

func TestFlatten(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fx := newFixture(t, ctx)

	inner := drift.Just(fx.Env, "x", "y")
	seq := drift.Flatten(drift.Just(fx.Env, inner, drift.Just(fx.Env, "z"), inner))

	drifttest.AssertHotColdConsumersSeeValues(t, ctx, []string{"x", "y", "z", "x", "y"}, seq)
}

func TestMapAsyncUnordered_completionOrder(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fx := newFixture(t, ctx)

	gates := map[int]chan struct{}{
		1: make(chan struct{}),
		2: make(chan struct{}),
		3: make(chan struct{}),
	}

	seq := drift.MapAsyncUnordered(drift.Just(fx.Env, 1, 2, 3), func(ctx context.Context, v int) (int, error) {
		select {
		case <-ctx.Done():
			return 0, context.Cause(ctx)
		case <-gates[v]:
			return v * 10, nil
		}
	})

	for _, v := range []int{3, 1, 2} {
		close(gates[v])

		got, ok, err := seq.Next(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, v*10, got)
	}

	ok, err := seq.Advance(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMapAsyncUnordered_failure(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fx := newFixture(t, ctx)

	boom := errors.New("boom")
	seq := drift.MapAsyncUnordered(drift.Just(fx.Env, 1, 2, 3), func(_ context.Context, v int) (int, error) {
		if v == 2 {
			return 0, boom
		}
		return v, nil
	})

	_, err := drift.Collect(ctx, seq)
	require.ErrorIs(t, err, boom)
}
