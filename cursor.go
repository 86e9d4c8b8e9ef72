package drift

import (
	"context"

	"github.com/gordian-engine/drift/internal/dqueue"
)

// cursor is one read position over a source's shared buffer.
// Every field is guarded by src.mu.
type cursor[T any] struct {
	src *source[T]
	id  uint

	buf dqueue.Queue[*item[T]]

	// The head of buf was handed out by the last advance
	// and is popped by the next one.
	holding bool

	// Counted in the source's active set.
	active bool

	closed bool
}

// advance moves the cursor to the next value,
// blocking until one is available or the source reaches a terminal state.
// The value is read under the same lock that found it,
// so concurrent callers sharing the cursor never see each other's values.
func (c *cursor[T]) advance(ctx context.Context) (T, bool, error) {
	var zero T
	s := c.src

	s.mu.Lock()
	if c.closed {
		s.mu.Unlock()
		return zero, false, ErrSequenceClosed
	}

	for {
		// Another goroutine sharing the cursor may have claimed
		// the head while this one was waiting.
		if c.holding {
			it := c.buf.Pop()
			c.holding = false
			it.release.Resolve(struct{}{})
		}

		if !c.active {
			c.active = true
			s.activateLocked(c.id)
		}

		if !c.buf.IsEmpty() {
			c.holding = true
			v := c.buf.Peek().val
			s.mu.Unlock()
			return v, true, nil
		}

		switch s.state {
		case latchCompleted:
			s.mu.Unlock()
			return zero, false, nil
		case latchFailed:
			err := s.err
			s.mu.Unlock()
			return zero, false, err
		}

		wake := s.wake
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return zero, false, context.Cause(ctx)
		case <-wake:
		}

		s.mu.Lock()
		if c.closed {
			s.mu.Unlock()
			return zero, false, ErrSequenceClosed
		}
	}
}

func (c *cursor[T]) current() T {
	s := c.src
	s.mu.Lock()
	defer s.mu.Unlock()

	if !c.holding {
		if c.buf.IsEmpty() && s.state != latchPending {
			panic(ErrCompleted)
		}
		panic(ErrNotReady)
	}
	return c.buf.Peek().val
}

func (c *cursor[T]) clone() *cursor[T] {
	s := c.src
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.closed {
		panic(ErrSequenceClosed)
	}

	n := s.newCursorLocked(c.buf.Fork())
	n.holding = c.holding
	return n
}

// deactivate detaches c from its family's active set
// without closing it; the next advance re-activates it.
func (c *cursor[T]) deactivate() {
	s := c.src
	s.mu.Lock()
	if c.closed || !c.active {
		s.mu.Unlock()
		return
	}
	c.active = false
	ups := s.deactivateLocked(c.id)
	s.mu.Unlock()

	for _, u := range ups {
		u.deactivate()
	}
}

func (c *cursor[T]) close() {
	s := c.src
	s.mu.Lock()
	if c.closed {
		s.mu.Unlock()
		return
	}
	c.closed = true

	if c.holding {
		c.buf.Pop().release.Resolve(struct{}{})
		c.holding = false
	}
	c.buf.Release()

	var ups []upstream
	if c.active {
		c.active = false
		ups = s.deactivateLocked(c.id)
	}

	s.open.Clear(c.id)
	last := s.open.Count() == 0
	if last {
		s.tornDown = true
	}

	// Other goroutines sharing this cursor may be waiting in advance.
	s.wakeLocked()
	s.mu.Unlock()

	for _, u := range ups {
		u.deactivate()
	}

	if last {
		s.teardown()
	}
}
