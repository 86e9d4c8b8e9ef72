package drift

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/bits-and-blooms/bitset"
	"github.com/gordian-engine/drift/dfuture"
	"github.com/gordian-engine/drift/internal/dcell"
	"github.com/gordian-engine/drift/internal/dqueue"
	"github.com/gordian-engine/drift/internal/dtrace"
	"golang.org/x/sync/errgroup"
)

// item is one emitted value and its release signal.
type item[T any] struct {
	val     T
	release *dfuture.Future[struct{}]
}

type latch uint8

const (
	latchPending latch = iota
	latchCompleted
	latchFailed
)

// errTornDown is the cancellation cause of a source's context
// once every handle of the source has been closed.
var errTornDown = errors.New("drift: every handle of the sequence was closed")

// source is the production state shared by every cursor of one sequence.
// All fields below mu are guarded by it.
type source[T any] struct {
	env *Env
	log *slog.Logger
	op  string

	// Producers run under ctx.
	// It is canceled with errTornDown once the last handle closes.
	ctx    context.Context
	cancel context.CancelCauseFunc

	// Ended, under mu, at the first terminal transition or teardown.
	span      dtrace.Span
	spanEnded bool

	// Whether any cursor of the family has been advanced and not yet detached.
	// Read without mu by relays deciding whether to wait on release signals.
	hot *dcell.Cell[bool]

	// Tracks values handed to EmitFuture that have not been emitted yet,
	// so automatic completion does not overtake them.
	pending sync.WaitGroup

	mu sync.Mutex

	tail dqueue.Appender[*item[T]]

	state     latch
	err       error
	firstDone []byte

	// Closed and replaced on every append, terminal transition, and close,
	// waking every cursor blocked in advance.
	wake chan struct{}

	// Cursor ids with an open handle, and cursor ids currently active.
	open, active bitset.BitSet

	// Cursors on other sequences that relays feeding this one are reading from.
	upstreams map[upstream]struct{}

	tornDown bool
}

// upstream is a cursor that a relay reads from,
// as seen from the sequence the relay feeds.
type upstream interface {
	deactivate()
}

func newSource[T any](env *Env, op string) (*source[T], *Sequence[T]) {
	spanCtx, log, span := env.startSource(op)
	ctx, cancel := context.WithCancelCause(spanCtx)

	q := dqueue.New[*item[T]]()
	s := &source[T]{
		env: env,
		log: log,
		op:  op,

		ctx:    ctx,
		cancel: cancel,
		span:   span,

		hot: dcell.New(false),

		tail: q.Appender(),

		wake: make(chan struct{}),

		upstreams: make(map[upstream]struct{}),
	}

	s.mu.Lock()
	c := s.newCursorLocked(q)
	s.mu.Unlock()

	return s, newSequence(c)
}

func (s *source[T]) newCursorLocked(q dqueue.Queue[*item[T]]) *cursor[T] {
	id, ok := s.open.NextClear(0)
	if !ok {
		id = s.open.Len()
	}
	s.open.Set(id)

	return &cursor[T]{
		src: s,
		id:  id,
		buf: q,
	}
}

// wakeLocked wakes every cursor waiting for a change.
func (s *source[T]) wakeLocked() {
	close(s.wake)
	s.wake = make(chan struct{})
}

func (s *source[T]) activateLocked(id uint) {
	s.active.Set(id)
	if s.active.Count() == 1 {
		s.hot.Store(true)
	}
}

// deactivateLocked clears id from the active set.
// If that leaves the family without active cursors,
// the family goes cold and the upstream cursors to propagate to are returned.
// The caller must call deactivate on them after releasing mu.
func (s *source[T]) deactivateLocked(id uint) []upstream {
	s.active.Clear(id)
	if s.active.Count() != 0 {
		return nil
	}

	s.hot.Store(false)

	if len(s.upstreams) == 0 {
		return nil
	}
	ups := make([]upstream, 0, len(s.upstreams))
	for u := range s.upstreams {
		ups = append(ups, u)
	}
	s.log.Debug("No active cursors; detaching upstreams", "n", len(ups))
	return ups
}

func (s *source[T]) adopt(u upstream) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upstreams[u] = struct{}{}
}

func (s *source[T]) disown(u upstream) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.upstreams, u)
}

// terminate latches the source as completed (err == nil) or failed.
func (s *source[T]) terminate(op string, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != latchPending {
		return &AlreadyCompletedError{
			Op:              op,
			Sequence:        s.op,
			FirstCompletion: s.firstDone,
		}
	}

	if err == nil {
		s.state = latchCompleted
	} else {
		s.state = latchFailed
		s.err = sourceFailure(s.op, err)
		s.log.Debug("Sequence failed", "err", err)
	}

	if s.env.traceCompletions {
		s.firstDone = debug.Stack()
	}

	if err != nil {
		s.span.AddEvent("failed", dtrace.WithAttributes(dtrace.ErrorAttr(err)))
		dtrace.SpanError(s.span, err)
	}
	s.endSpanLocked()

	s.wakeLocked()
	return nil
}

func (s *source[T]) endSpanLocked() {
	if s.spanEnded {
		return
	}
	s.spanEnded = true
	s.span.End()
}

// run drives the producers and latches the outcome once they all return.
func (s *source[T]) run(e *Emitter[T], producers []Producer[T]) {
	g, gCtx := errgroup.WithContext(s.ctx)
	for _, p := range producers {
		g.Go(func() error {
			return p(gCtx, e)
		})
	}
	err := g.Wait()

	if err == nil {
		s.pending.Wait()
	}

	s.mu.Lock()
	if s.state != latchPending {
		s.mu.Unlock()
		if err != nil {
			s.log.Debug("Producer failed after sequence completed", "err", err)
		}
		return
	}
	if s.tornDown {
		s.mu.Unlock()
		s.log.Debug("Producers stopped after teardown", "cause", context.Cause(s.ctx))
		return
	}
	s.mu.Unlock()

	// A producer may still latch concurrently through its emitter,
	// which is fine; whichever transition lands first wins.
	_ = s.terminate("complete", err)
}

// teardown stops the producers of a source that has no open handles left.
func (s *source[T]) teardown() {
	s.log.Debug("Tearing down sequence")
	s.cancel(errTornDown)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.spanEnded {
		s.span.AddEvent("teardown")
		s.endSpanLocked()
	}
}
