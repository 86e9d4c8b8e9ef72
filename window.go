package drift

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
)

// errWindowSourceDone stops the signal reader of a window
// whose source has already ended.
var errWindowSourceDone = errors.New("drift: window source finished")

// Window splits seq into consecutive windows,
// opening a new one every time signal emits.
//
// The first window opens immediately.
// If signal ends before seq, the last window receives the rest of seq.
// Once seq ends, the open window completes (or fails)
// and signal is no longer read.
//
// As with [GroupBy], window handles are shared by every cursor
// of the returned sequence.
func Window[T, S any](seq *Sequence[T], signal *Sequence[S]) *Sequence[*Sequence[T]] {
	env := seq.Env()
	up := seq.Clone()
	sig := signal.Clone()

	return create(env, "window", func(ctx context.Context, e *Emitter[*Sequence[T]]) error {
		var (
			mu       sync.Mutex
			cur      *Emitter[T]
			finished bool
		)

		first, cur := newSubject[T](env, "window_part")
		if _, err := e.Emit(first); err != nil {
			return err
		}

		g, gCtx := errgroup.WithContext(ctx)
		sigCtx, cancelSig := context.WithCancelCause(gCtx)
		defer cancelSig(nil)

		g.Go(func() error {
			err := relay(gCtx, e, up, func(_ context.Context, v T) error {
				mu.Lock()
				defer mu.Unlock()
				_, err := cur.Emit(v)
				return err
			})

			mu.Lock()
			finished = true
			last := cur
			mu.Unlock()

			if err != nil {
				_ = last.Fail(err)
				return err
			}

			_ = last.Complete()
			cancelSig(errWindowSourceDone)
			return nil
		})

		g.Go(func() error {
			err := relay(sigCtx, e, sig, func(context.Context, S) error {
				mu.Lock()
				defer mu.Unlock()

				if finished {
					return errStopRelay
				}

				_ = cur.Complete()

				var next *Sequence[T]
				next, cur = newSubject[T](env, "window_part")
				_, err := e.Emit(next)
				return err
			})

			if errors.Is(err, errStopRelay) || errors.Is(err, errWindowSourceDone) {
				return nil
			}
			return err
		})

		return g.Wait()
	})
}

// Buffer is like [Window], but emits each window's values as a slice
// once the window closes.
func Buffer[T, S any](seq *Sequence[T], signal *Sequence[S]) *Sequence[[]T] {
	wins := Window(seq, signal)
	return create(seq.Env(), "buffer", func(ctx context.Context, e *Emitter[[]T]) error {
		return relay(ctx, e, wins, func(ctx context.Context, w *Sequence[T]) error {
			vs, err := Collect(ctx, w)
			if err != nil {
				return err
			}
			if vs == nil {
				vs = []T{}
			}
			return e.send(ctx, vs)
		})
	})
}

// Sample emits the last value of seq within each window delimited by signal.
// Windows without any values are skipped.
func Sample[T, S any](seq *Sequence[T], signal *Sequence[S]) *Sequence[T] {
	wins := Window(seq, signal)
	return create(seq.Env(), "sample", func(ctx context.Context, e *Emitter[T]) error {
		return relay(ctx, e, wins, func(ctx context.Context, w *Sequence[T]) error {
			v, ok, err := Last(ctx, w)
			if err != nil || !ok {
				return err
			}
			return e.send(ctx, v)
		})
	})
}
