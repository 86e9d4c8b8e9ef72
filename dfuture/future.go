package dfuture

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Future is a value of type T that becomes available at most once.
type Future[T any] struct {
	once sync.Once
	done chan struct{}

	val T
	err error
}

// New returns an unsettled future.
func New[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolved returns a future already resolved with v.
func Resolved[T any](v T) *Future[T] {
	f := New[T]()
	f.Resolve(v)
	return f
}

// Rejected returns a future already rejected with err.
func Rejected[T any](err error) *Future[T] {
	f := New[T]()
	f.Reject(err)
	return f
}

// Go runs fn in a new goroutine and returns a future
// settled with fn's result.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := New[T]()
	go func() {
		v, err := fn(ctx)
		if err != nil {
			f.Reject(err)
			return
		}
		f.Resolve(v)
	}()
	return f
}

// Resolve settles f with v.
// It reports whether this call settled f;
// calls after the first have no effect.
func (f *Future[T]) Resolve(v T) bool {
	settled := false
	f.once.Do(func() {
		f.val = v
		close(f.done)
		settled = true
	})
	return settled
}

// Reject settles f with err, which must not be nil.
// It reports whether this call settled f.
func (f *Future[T]) Reject(err error) bool {
	if err == nil {
		panic(errors.New("BUG: dfuture: Reject called with nil error"))
	}
	settled := false
	f.once.Do(func() {
		f.err = err
		close(f.done)
		settled = true
	})
	return settled
}

// Done returns a channel that is closed once f is settled.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Settled reports whether f has been resolved or rejected.
func (f *Future[T]) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Result returns the settled value and error.
// It panics if f is not yet settled.
func (f *Future[T]) Result() (T, error) {
	if !f.Settled() {
		panic(errors.New("BUG: dfuture: Result called before future settled"))
	}
	return f.val, f.err
}

// Wait blocks until f is settled or ctx is done.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-ctx.Done():
		var zero T
		return zero, context.Cause(ctx)
	case <-f.done:
		return f.val, f.err
	}
}

// All waits for every future in fs and returns their values in order.
// It returns as soon as any future is rejected, with that error.
func All[T any](ctx context.Context, fs ...*Future[T]) ([]T, error) {
	out := make([]T, len(fs))

	g, gCtx := errgroup.WithContext(ctx)
	for i, f := range fs {
		g.Go(func() error {
			v, err := f.Wait(gCtx)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
