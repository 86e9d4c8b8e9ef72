package drift

import (
	"context"
	"sync"

	"github.com/gordian-engine/drift/dfuture"
)

// Zip pairs the values of left and right in order, combining each pair with f.
// It completes as soon as either side completes.
//
// Both sides are advanced concurrently on every round,
// so when one side ends, the other may already have been advanced once more;
// that value is never emitted.
func Zip[L, R, O any](left *Sequence[L], right *Sequence[R], f func(L, R) O) *Sequence[O] {
	l := left.Clone()
	r := right.Clone()
	return create(left.Env(), "zip", func(ctx context.Context, e *Emitter[O]) error {
		defer attach(e, l)()
		defer attach(e, r)()

		for {
			oks, err := dfuture.All(
				ctx,
				dfuture.Go(ctx, l.Advance),
				dfuture.Go(ctx, r.Advance),
			)
			if err != nil {
				return err
			}
			if !oks[0] || !oks[1] {
				return nil
			}

			if err := e.send(ctx, f(l.Current(), r.Current())); err != nil {
				return err
			}
		}
	})
}

// CombineLatest emits f of the latest values of left and right
// every time either side emits, once both sides have emitted at least once.
// It completes once both sides complete.
func CombineLatest[L, R, O any](left *Sequence[L], right *Sequence[R], f func(L, R) O) *Sequence[O] {
	l := left.Clone()
	r := right.Clone()

	var (
		mu         sync.Mutex
		lv         L
		rv         R
		hasL, hasR bool
	)

	return create(
		left.Env(), "combine_latest",
		func(ctx context.Context, e *Emitter[O]) error {
			return relay(ctx, e, l, func(ctx context.Context, v L) error {
				mu.Lock()
				lv, hasL = v, true
				ready := hasR
				var out O
				if ready {
					out = f(lv, rv)
				}
				mu.Unlock()

				if !ready {
					return nil
				}
				return e.send(ctx, out)
			})
		},
		func(ctx context.Context, e *Emitter[O]) error {
			return relay(ctx, e, r, func(ctx context.Context, v R) error {
				mu.Lock()
				rv, hasR = v, true
				ready := hasL
				var out O
				if ready {
					out = f(lv, rv)
				}
				mu.Unlock()

				if !ready {
					return nil
				}
				return e.send(ctx, out)
			})
		},
	)
}
