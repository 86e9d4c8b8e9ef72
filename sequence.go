package drift

import (
	"context"
	"iter"
	"runtime"
)

// Iterator is the pull capability that operators consume.
// [*Sequence] is the primary implementation.
type Iterator[T any] interface {
	// Advance reports whether a value is available,
	// blocking until one is or the iterator ends.
	Advance(ctx context.Context) (bool, error)

	// Current returns the value made available by the last Advance.
	Current() T
}

// Sequence is a handle to one cursor over an asynchronous sequence of values.
//
// A single handle may be shared by several goroutines calling [*Sequence.Next];
// each value is then delivered to exactly one of them.
// Advance followed by Current is only meaningful
// when one goroutine owns the handle.
//
// Use [*Sequence.Clone] for an independent cursor.
// Handles should be closed when no longer needed;
// a handle that becomes unreachable is closed automatically.
type Sequence[T any] struct {
	c *cursor[T]
}

func newSequence[T any](c *cursor[T]) *Sequence[T] {
	s := &Sequence[T]{c: c}
	runtime.AddCleanup(s, (*cursor[T]).close, c)
	return s
}

// Advance moves s to its next value.
//
// It returns true when a value is available through [*Sequence.Current],
// false once the sequence has completed,
// and the failure error if the sequence failed.
// Advancing also releases the previous value to its producer.
func (s *Sequence[T]) Advance(ctx context.Context) (bool, error) {
	_, ok, err := s.c.advance(ctx)
	runtime.KeepAlive(s)
	return ok, err
}

// Current returns the value s was last advanced to.
//
// Current panics with [ErrNotReady] if no value is available,
// or with [ErrCompleted] if the sequence has ended.
func (s *Sequence[T]) Current() T {
	v := s.c.current()
	runtime.KeepAlive(s)
	return v
}

// Next advances s and returns the value it moved to, in one step.
// It is safe for concurrent use.
func (s *Sequence[T]) Next(ctx context.Context) (T, bool, error) {
	v, ok, err := s.c.advance(ctx)

	// The cleanup registered in newSequence must not close the cursor
	// while a caller is blocked on it.
	runtime.KeepAlive(s)

	return v, ok, err
}

// Clone returns a new handle reading the same production from s's position.
//
// The clone shares everything already buffered after that position,
// and every value emitted later.
// If s currently holds a value, the clone's first advance moves past it.
func (s *Sequence[T]) Clone() *Sequence[T] {
	return newSequence(s.c.clone())
}

// Close releases s.
// The value s holds, if any, is released to its producer.
//
// Once every handle of a sequence is closed,
// the sequence's producers are stopped.
// Close is idempotent.
func (s *Sequence[T]) Close() {
	s.c.close()
}

// All returns an iterator over the remaining values of s.
// A failure, including cancellation of ctx, is yielded once as the final pair.
func (s *Sequence[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			v, ok, err := s.Next(ctx)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if !ok {
				return
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

// Env returns the environment s was created in.
func (s *Sequence[T]) Env() *Env {
	return s.c.src.env
}
