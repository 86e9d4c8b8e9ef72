package drift

import (
	"context"
	"errors"
	"time"

	"github.com/gordian-engine/drift/internal/dcell"
	"golang.org/x/sync/errgroup"
)

// errWindowClosed ends the pairing reader of a join window.
var errWindowClosed = errors.New("drift: join window closed")

// borrowed hides a *Sequence from relay,
// so that relay neither registers nor closes it.
type borrowed[T any] struct {
	s *Sequence[T]
}

func (b borrowed[T]) Advance(ctx context.Context) (bool, error) { return b.s.Advance(ctx) }
func (b borrowed[T]) Current() T                                { return b.s.Current() }

// Join pairs values of left and right that coincide in time.
//
// Each left value l opens a window lasting leftWindow(l),
// during which every right value emitted is combined with l through f.
// Right values open windows the same way, paired with later left values.
// A value is paired with values that arrive while its window is open;
// values arriving after the window closes are ignored for that pairing.
//
// The result completes once both sides complete
// and every open window has closed.
func Join[L, R, O any](
	left *Sequence[L],
	right *Sequence[R],
	leftWindow func(L) time.Duration,
	rightWindow func(R) time.Duration,
	f func(L, R) O,
) *Sequence[O] {
	env := left.Env()
	l := left.Clone()
	r := right.Clone()

	return create(env, "join", func(ctx context.Context, e *Emitter[O]) error {
		// Both cursors stay open until every window is done,
		// since windows clone them to find values arriving later.
		defer attach(e, l)()
		defer attach(e, r)()

		g, gCtx := errgroup.WithContext(ctx)

		g.Go(func() error {
			return relay(gCtx, e, borrowed[L]{s: l}, func(_ context.Context, lv L) error {
				openJoinWindow(gCtx, g, env, leftWindow(lv), r.Clone(), func(ctx context.Context, rv R) error {
					return e.send(ctx, f(lv, rv))
				})
				return nil
			})
		})

		g.Go(func() error {
			return relay(gCtx, e, borrowed[R]{s: r}, func(_ context.Context, rv R) error {
				openJoinWindow(gCtx, g, env, rightWindow(rv), l.Clone(), func(ctx context.Context, lv L) error {
					return e.send(ctx, f(lv, rv))
				})
				return nil
			})
		})

		return g.Wait()
	})
}

// openJoinWindow pairs every value arriving on other with pair
// until d elapses.
// other is closed when the window closes.
func openJoinWindow[T any](
	ctx context.Context,
	g *errgroup.Group,
	env *Env,
	d time.Duration,
	other *Sequence[T],
	pair func(context.Context, T) error,
) {
	open := dcell.New(true)
	winCtx, cancel := context.WithCancelCause(ctx)

	g.Go(func() error {
		if err := env.Delay(ctx, d); err != nil {
			cancel(err)
			return err
		}
		open.Store(false)
		cancel(errWindowClosed)
		return nil
	})

	g.Go(func() error {
		defer other.Close()

		for {
			v, ok, err := other.Next(winCtx)
			if errors.Is(err, errWindowClosed) {
				return nil
			}
			if err != nil || !ok {
				return err
			}

			if !open.Load() {
				return nil
			}
			if err := pair(winCtx, v); err != nil {
				if errors.Is(err, errWindowClosed) {
					return nil
				}
				return err
			}
		}
	})
}
