package drift_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gordian-engine/drift"
	"github.com/gordian-engine/drift/drifttest"
	"github.com/stretchr/testify/require"
)

func TestGroupBy(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fx := newFixture(t, ctx)

	seq := drift.GroupBy(drift.Range(fx.Env, 1, 7), func(v int) bool { return v%2 == 0 })
	drifttest.AssertHotColdConsumersSeeGroups(t, ctx, [][]int{{1, 3, 5}, {2, 4, 6}}, seq)
}

func TestGroupBy_partitionsInFirstSeenOrder(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fx := newFixture(t, ctx)
	src, e := drift.NewSubject[string](fx.Env)

	groups := drift.GroupBy(src, func(s string) string { return s[:1] })

	_, err := e.Emit("b1")
	require.NoError(t, err)

	first, ok, err := groups.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	for _, v := range []string{"a1", "b2", "a2", "c1"} {
		_, err := e.Emit(v)
		require.NoError(t, err)
	}
	require.NoError(t, e.Complete())

	rest, err := drift.Collect(ctx, groups)
	require.NoError(t, err)
	require.Len(t, rest, 2)

	var got [][]string
	for _, g := range append([]*drift.Sequence[string]{first}, rest...) {
		vs, err := drift.Collect(ctx, g)
		require.NoError(t, err)
		got = append(got, vs)
	}

	require.Equal(t, [][]string{{"b1", "b2"}, {"a1", "a2"}, {"c1"}}, got)
}

func TestGroupBy_failurePropagatesToPartitions(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fx := newFixture(t, ctx)
	src, e := drift.NewSubject[int](fx.Env)

	groups := drift.GroupBy(src, func(v int) int { return v })

	_, err := e.Emit(1)
	require.NoError(t, err)

	part, ok, err := groups.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	boom := errors.New("boom")
	require.NoError(t, e.Fail(boom))

	vs, err := drift.Collect(ctx, part)
	require.ErrorIs(t, err, boom)
	require.Equal(t, []int{1}, vs)

	_, err = groups.Advance(ctx)
	require.ErrorIs(t, err, boom)
}
