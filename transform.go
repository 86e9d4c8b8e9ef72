package drift

import (
	"context"
	"errors"

	"github.com/eapache/queue"
)

// errStopRelay ends a relay early without failing its sequence.
var errStopRelay = errors.New("drift: relay stopped")

// Map returns a sequence of f applied to every value of seq
// emitted after the call.
func Map[T, U any](seq *Sequence[T], f func(T) U) *Sequence[U] {
	up := seq.Clone()
	return create(seq.Env(), "map", func(ctx context.Context, e *Emitter[U]) error {
		return relay(ctx, e, up, func(ctx context.Context, v T) error {
			return e.send(ctx, f(v))
		})
	})
}

// Filter returns a sequence of the values of seq for which keep returns true.
func Filter[T any](seq *Sequence[T], keep func(T) bool) *Sequence[T] {
	up := seq.Clone()
	return create(seq.Env(), "filter", func(ctx context.Context, e *Emitter[T]) error {
		return relay(ctx, e, up, func(ctx context.Context, v T) error {
			if !keep(v) {
				return nil
			}
			return e.send(ctx, v)
		})
	})
}

// Scan returns a sequence of running accumulations over seq.
// The accumulator is seeded with the first value, which is emitted as is;
// every later value v emits f(acc, v), which becomes the new accumulator.
func Scan[T any](seq *Sequence[T], f func(acc, v T) T) *Sequence[T] {
	up := seq.Clone()
	return create(seq.Env(), "scan", func(ctx context.Context, e *Emitter[T]) error {
		var acc T
		seeded := false
		return relay(ctx, e, up, func(ctx context.Context, v T) error {
			if seeded {
				acc = f(acc, v)
			} else {
				acc = v
				seeded = true
			}
			return e.send(ctx, acc)
		})
	})
}

// Take returns a sequence of at most the first n values of seq.
// The upstream cursor is closed as soon as n values have been taken.
func Take[T any](seq *Sequence[T], n int) *Sequence[T] {
	up := seq.Clone()
	return create(seq.Env(), "take", func(ctx context.Context, e *Emitter[T]) error {
		if n <= 0 {
			up.Close()
			return nil
		}

		taken := 0
		err := relay(ctx, e, up, func(ctx context.Context, v T) error {
			if err := e.send(ctx, v); err != nil {
				return err
			}
			taken++
			if taken >= n {
				return errStopRelay
			}
			return nil
		})
		if errors.Is(err, errStopRelay) {
			return nil
		}
		return err
	})
}

// TakeLast returns a sequence of the last n values of seq,
// emitted once seq completes.
func TakeLast[T any](seq *Sequence[T], n int) *Sequence[T] {
	up := seq.Clone()
	return create(seq.Env(), "take_last", func(ctx context.Context, e *Emitter[T]) error {
		q := queue.New()
		err := relay(ctx, e, up, func(_ context.Context, v T) error {
			if n <= 0 {
				return nil
			}
			if q.Length() == n {
				q.Remove()
			}
			q.Add(v)
			return nil
		})
		if err != nil {
			return err
		}

		for q.Length() > 0 {
			if _, err := e.Emit(q.Remove().(T)); err != nil {
				return err
			}
		}
		return nil
	})
}
