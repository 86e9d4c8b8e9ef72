package drifttest

import (
	"context"
	"sync"
	"testing"

	"github.com/gordian-engine/drift"
	"github.com/stretchr/testify/require"
)

// AssertHotColdConsumersSeeValues checks that every value of seq
// is observed both by a cold clone drained on its own
// and, split between them, by two goroutines sharing seq's handle.
//
// Ordering is not checked, since seq may interleave concurrent producers.
func AssertHotColdConsumersSeeValues[T any](
	t *testing.T, ctx context.Context, expected []T, seq *drift.Sequence[T],
) {
	t.Helper()

	cold := seq.Clone()
	defer cold.Close()

	hot := drainHot(t, ctx, seq, func(_ context.Context, v T) (T, error) {
		return v, nil
	})
	require.ElementsMatch(t, expected, hot, "hot consumers")

	var coldSeen []T
	for {
		v, ok, err := cold.Next(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
		coldSeen = append(coldSeen, v)
	}
	require.ElementsMatch(t, expected, coldSeen, "cold consumer")
}

// AssertHotColdConsumersSeeGroups is like [AssertHotColdConsumersSeeValues]
// for a sequence of sequences,
// comparing the values of each inner sequence in order.
func AssertHotColdConsumersSeeGroups[T any](
	t *testing.T, ctx context.Context, expected [][]T, seq *drift.Sequence[*drift.Sequence[T]],
) {
	t.Helper()

	cold := seq.Clone()
	defer cold.Close()

	hot := drainHot(t, ctx, seq, func(ctx context.Context, g *drift.Sequence[T]) ([]T, error) {
		return drift.Collect(ctx, g)
	})
	require.ElementsMatch(t, expected, hot, "hot consumers")

	var coldSeen [][]T
	for {
		g, ok, err := cold.Next(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
		vs, err := drift.Collect(ctx, g)
		require.NoError(t, err)
		coldSeen = append(coldSeen, vs)
	}
	require.ElementsMatch(t, expected, coldSeen, "cold consumer")
}

// drainHot calls Next on seq from two goroutines until it ends,
// returning everything either of them observed, mapped through f.
func drainHot[T, U any](
	t *testing.T,
	ctx context.Context,
	seq *drift.Sequence[T],
	f func(context.Context, T) (U, error),
) []U {
	t.Helper()

	var (
		mu   sync.Mutex
		seen []U
		errs = make(chan error, 2)
		wg   sync.WaitGroup
	)

	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				v, ok, err := seq.Next(ctx)
				if err != nil {
					errs <- err
					return
				}
				if !ok {
					return
				}

				u, err := f(ctx, v)
				if err != nil {
					errs <- err
					return
				}

				mu.Lock()
				seen = append(seen, u)
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	return seen
}
