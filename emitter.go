package drift

import (
	"context"
	"errors"

	"github.com/gordian-engine/drift/dfuture"
)

// Emitter is the write side of a sequence,
// handed to each [Producer] and returned from [NewSubject].
// It is safe for concurrent use.
type Emitter[T any] struct {
	src *source[T]
}

// Emit appends v to the sequence and wakes any waiting cursors.
//
// The returned future resolves once a cursor advances past v.
// Producers that want to throttle themselves to their consumers wait on it.
//
// If the sequence has already completed or failed,
// Emit returns an [*AlreadyCompletedError].
func (e *Emitter[T]) Emit(v T) (*dfuture.Future[struct{}], error) {
	s := e.src
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != latchPending {
		return nil, &AlreadyCompletedError{
			Op:              "emit",
			Sequence:        s.op,
			FirstCompletion: s.firstDone,
		}
	}

	it := &item[T]{
		val:     v,
		release: dfuture.New[struct{}](),
	}
	s.tail.Append(it)
	s.wakeLocked()

	return it.release, nil
}

// EmitFuture emits the value of f once it resolves.
// If f is rejected, the sequence fails with f's error.
//
// The returned future resolves when the value is consumed,
// and is rejected if the value could not be emitted.
//
// A sequence created with [New] does not complete
// while values handed to EmitFuture are still outstanding.
func (e *Emitter[T]) EmitFuture(f *dfuture.Future[T]) *dfuture.Future[struct{}] {
	s := e.src
	out := dfuture.New[struct{}]()

	s.pending.Add(1)
	go func() {
		rel, err := e.awaitAndEmit(f)
		s.pending.Done()
		if err != nil {
			out.Reject(err)
			return
		}

		select {
		case <-rel.Done():
			out.Resolve(struct{}{})
		case <-s.ctx.Done():
			out.Reject(context.Cause(s.ctx))
		}
	}()

	return out
}

func (e *Emitter[T]) awaitAndEmit(f *dfuture.Future[T]) (*dfuture.Future[struct{}], error) {
	v, err := f.Wait(e.src.ctx)
	if err != nil {
		if e.src.ctx.Err() == nil {
			// Losing the race to another terminal transition is fine.
			_ = e.Fail(err)
		}
		return nil, err
	}

	// The sequence may have completed while f was outstanding;
	// Emit checks again under the lock.
	return e.Emit(v)
}

// Complete marks the sequence as successfully finished.
// Cursors that have consumed every buffered value then report the end.
//
// Complete returns an [*AlreadyCompletedError]
// if the sequence had already completed or failed.
func (e *Emitter[T]) Complete() error {
	return e.src.terminate("complete", nil)
}

// Fail marks the sequence as failed with err.
// Cursors observe the failure, wrapped in a [*SourceFailedError],
// after consuming every buffered value.
//
// Fail returns an [*AlreadyCompletedError]
// if the sequence had already completed or failed.
func (e *Emitter[T]) Fail(err error) error {
	if err == nil {
		panic(errors.New("BUG: Emitter.Fail called with nil error"))
	}
	return e.src.terminate("fail", err)
}

// Hot reports whether any cursor of the sequence is currently pulling.
func (e *Emitter[T]) Hot() bool {
	return e.src.hot.Load()
}

// Forward relays every value of it into the sequence,
// returning when it ends or ctx is done.
//
// Forward takes ownership of it:
// if it is a [*Sequence], it is closed when Forward returns,
// and it is detached whenever this sequence has no active cursors.
// While no cursor of this sequence is pulling,
// Forward waits for each value to be consumed before pulling the next.
func (e *Emitter[T]) Forward(ctx context.Context, it Iterator[T]) error {
	return relay(ctx, e, it, e.send)
}

// send emits v and, unless the sequence is hot,
// waits until a consumer has taken it.
func (e *Emitter[T]) send(ctx context.Context, v T) error {
	rel, err := e.Emit(v)
	if err != nil {
		return err
	}

	s := e.src
	if !s.env.strictBackpressure && s.hot.Load() {
		return nil
	}

	_, err = rel.Wait(ctx)
	return err
}

// relay pulls every value from up and passes it to each,
// registering up with e's sequence for detach propagation
// and closing it on return if it is a *Sequence.
func relay[T, U any](
	ctx context.Context,
	e *Emitter[U],
	up Iterator[T],
	each func(context.Context, T) error,
) error {
	if seq, ok := up.(*Sequence[T]); ok {
		defer attach(e, seq)()
	}

	for {
		ok, err := up.Advance(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		if err := each(ctx, up.Current()); err != nil {
			return err
		}
	}
}

// attach registers up for detach propagation from e's sequence.
// The returned function undoes the registration and closes up.
func attach[T, U any](e *Emitter[U], up *Sequence[T]) (detach func()) {
	e.src.adopt(up.c)
	return func() {
		e.src.disown(up.c)
		up.Close()
	}
}
