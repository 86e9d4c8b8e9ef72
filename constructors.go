package drift

import (
	"context"
	"iter"
	"time"
)

// Empty returns a sequence that completes without emitting.
func Empty[T any](env *Env) *Sequence[T] {
	return create(env, "empty", func(context.Context, *Emitter[T]) error {
		return nil
	})
}

// Throw returns a sequence that fails with err without emitting.
func Throw[T any](env *Env, err error) *Sequence[T] {
	return create(env, "throw", func(context.Context, *Emitter[T]) error {
		return err
	})
}

// Never returns a sequence that neither emits nor ends
// until all its handles are closed.
func Never[T any](env *Env) *Sequence[T] {
	return create(env, "never", func(ctx context.Context, _ *Emitter[T]) error {
		<-ctx.Done()
		return context.Cause(ctx)
	})
}

// Just returns a sequence emitting vs in order and then completing.
func Just[T any](env *Env, vs ...T) *Sequence[T] {
	return create(env, "just", func(_ context.Context, e *Emitter[T]) error {
		for _, v := range vs {
			if _, err := e.Emit(v); err != nil {
				return err
			}
		}
		return nil
	})
}

// FromSlice is like [Just] but takes a slice.
func FromSlice[T any](env *Env, vs []T) *Sequence[T] {
	return Just(env, vs...)
}

// FromSeq returns a sequence emitting each value of vs.
// vs is pulled only as fast as the sequence is consumed
// while no cursor is actively pulling.
func FromSeq[T any](env *Env, vs iter.Seq[T]) *Sequence[T] {
	return create(env, "from_seq", func(ctx context.Context, e *Emitter[T]) error {
		for v := range vs {
			if err := e.send(ctx, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// FromChannel returns a sequence emitting every value received on ch.
// The sequence completes when ch is closed.
func FromChannel[T any](env *Env, ch <-chan T) *Sequence[T] {
	return create(env, "from_channel", func(ctx context.Context, e *Emitter[T]) error {
		for {
			select {
			case <-ctx.Done():
				return context.Cause(ctx)

			case v, ok := <-ch:
				if !ok {
					return nil
				}
				if err := e.send(ctx, v); err != nil {
					return err
				}
			}
		}
	})
}

// Interval returns a sequence emitting 0, 1, 2, ...
// with d between emissions, measured on env's clock.
// It never completes.
func Interval(env *Env, d time.Duration) *Sequence[int] {
	return create(env, "interval", func(ctx context.Context, e *Emitter[int]) error {
		for i := 0; ; i++ {
			if err := env.Delay(ctx, d); err != nil {
				return err
			}
			if err := e.send(ctx, i); err != nil {
				return err
			}
		}
	})
}

// Timer returns a sequence emitting v once after d, and then completing.
func Timer[T any](env *Env, v T, d time.Duration) *Sequence[T] {
	return create(env, "timer", func(ctx context.Context, e *Emitter[T]) error {
		if err := env.Delay(ctx, d); err != nil {
			return err
		}
		_, err := e.Emit(v)
		return err
	})
}

// Range returns a sequence emitting n, n+1, ..., max-1.
func Range(env *Env, n, max int) *Sequence[int] {
	return create(env, "range", func(ctx context.Context, e *Emitter[int]) error {
		for ; n < max; n++ {
			if err := e.send(ctx, n); err != nil {
				return err
			}
			if err := env.Yield(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

// Repeat returns a sequence emitting v the given number of times.
// A negative count repeats forever.
func Repeat[T any](env *Env, v T, times int) *Sequence[T] {
	return RepeatSequence(env, []T{v}, times)
}

// RepeatSequence returns a sequence emitting all of vs, in order,
// the given number of times.
// A negative count repeats forever.
func RepeatSequence[T any](env *Env, vs []T, times int) *Sequence[T] {
	return create(env, "repeat", func(ctx context.Context, e *Emitter[T]) error {
		if len(vs) == 0 {
			return nil
		}
		for i := 0; times < 0 || i < times; i++ {
			for _, v := range vs {
				if err := e.send(ctx, v); err != nil {
					return err
				}
				if err := env.Yield(ctx); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
