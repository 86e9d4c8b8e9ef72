package drift

import "context"

// Producer is the body of a sequence created with [New].
//
// A producer emits values through e until it returns.
// The context is canceled once every handle to the sequence is closed,
// or when the Env's root context is canceled.
type Producer[T any] func(ctx context.Context, e *Emitter[T]) error

// New returns a sequence fed by the given producers,
// each running in its own goroutine.
//
// The sequence completes once every producer returns nil
// and every value passed to [*Emitter.EmitFuture] has been emitted.
// If any producer returns an error, the others are canceled
// and the sequence fails with the first error.
// A producer may also complete or fail the sequence directly
// through its emitter.
func New[T any](env *Env, producers ...Producer[T]) *Sequence[T] {
	return create(env, "new", producers...)
}

func create[T any](env *Env, op string, producers ...Producer[T]) *Sequence[T] {
	s, seq := newSource[T](env, op)
	go s.run(&Emitter[T]{src: s}, producers)
	return seq
}

// NewSubject returns a sequence with no producer goroutines,
// and the emitter that drives it.
// The sequence only ends through [*Emitter.Complete] or [*Emitter.Fail].
func NewSubject[T any](env *Env) (*Sequence[T], *Emitter[T]) {
	return newSubject[T](env, "subject")
}

func newSubject[T any](env *Env, op string) (*Sequence[T], *Emitter[T]) {
	s, seq := newSource[T](env, op)
	return seq, &Emitter[T]{src: s}
}
