package drift

import (
	"context"

	"github.com/gordian-engine/drift/dfuture"
	"golang.org/x/sync/errgroup"
)

// Merge returns a sequence interleaving the values of every seq
// in the order they are emitted.
// It completes once every seq completes, and fails on the first failure.
func Merge[T any](env *Env, seqs ...*Sequence[T]) *Sequence[T] {
	producers := make([]Producer[T], len(seqs))
	for i, seq := range seqs {
		up := seq.Clone()
		producers[i] = func(ctx context.Context, e *Emitter[T]) error {
			return e.Forward(ctx, up)
		}
	}
	if len(producers) == 0 {
		return Empty[T](env)
	}
	return create(env, "merge", producers...)
}

// FlatMap returns a sequence of every value of every iterator
// f returns for the values of seq.
//
// The iterators are drained concurrently,
// so values from different iterators may interleave;
// the values of any one iterator keep their order.
// FlatMap takes ownership of the iterators f returns.
func FlatMap[T, U any](seq *Sequence[T], f func(T) Iterator[U]) *Sequence[U] {
	up := seq.Clone()
	return create(seq.Env(), "flat_map", func(ctx context.Context, e *Emitter[U]) error {
		g, gCtx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return relay(gCtx, e, up, func(_ context.Context, v T) error {
				inner := f(v)
				g.Go(func() error {
					return e.Forward(gCtx, inner)
				})
				return nil
			})
		})
		return g.Wait()
	})
}

// Flatten returns a sequence of every value of every inner sequence of seq.
func Flatten[T any](seq *Sequence[*Sequence[T]]) *Sequence[T] {
	return FlatMap(seq, func(inner *Sequence[T]) Iterator[T] {
		return inner.Clone()
	})
}

// MapAsyncUnordered starts f for every value of seq
// and emits the results in the order they finish.
// The sequence fails with the first error any f returns.
func MapAsyncUnordered[T, U any](
	seq *Sequence[T],
	f func(context.Context, T) (U, error),
) *Sequence[U] {
	up := seq.Clone()
	return create(seq.Env(), "map_async_unordered", func(ctx context.Context, e *Emitter[U]) error {
		var futs []*dfuture.Future[U]
		err := relay(ctx, e, up, func(ctx context.Context, v T) error {
			fut := dfuture.Go(ctx, func(ctx context.Context) (U, error) {
				return f(ctx, v)
			})
			futs = append(futs, fut)
			e.EmitFuture(fut)
			return nil
		})
		if err != nil {
			return err
		}

		_, err = dfuture.All(ctx, futs...)
		return err
	})
}
