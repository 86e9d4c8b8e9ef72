package drift

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Debounce emits a value of seq only if no newer value arrives within d.
// The final value of seq, if any, is always emitted,
// d after it arrived.
func Debounce[T any](seq *Sequence[T], d time.Duration) *Sequence[T] {
	env := seq.Env()
	up := seq.Clone()
	return create(env, "debounce", func(ctx context.Context, e *Emitter[T]) error {
		// Stamp of the newest value seen so far.
		var latest atomic.Uint64

		g, gCtx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return relay(gCtx, e, up, func(_ context.Context, v T) error {
				stamp := latest.Add(1)
				g.Go(func() error {
					if err := env.Delay(gCtx, d); err != nil {
						return err
					}
					if latest.Load() != stamp {
						return nil
					}
					_, err := e.Emit(v)
					return err
				})
				return nil
			})
		})
		return g.Wait()
	})
}
