package drift

import (
	"errors"
	"fmt"
)

// ErrNotReady is the panic value when [*Sequence.Current] is called
// before an advance has reported a value.
var ErrNotReady = errors.New("drift: current called before advance reported a value")

// ErrCompleted is the panic value when [*Sequence.Current] is called
// after the sequence has reached its end.
var ErrCompleted = errors.New("drift: current called on a finished sequence")

// ErrSequenceClosed is returned from [*Sequence.Advance] and [*Sequence.Next]
// after the handle has been closed.
// Cloning a closed handle panics with this value.
var ErrSequenceClosed = errors.New("drift: sequence handle is closed")

// AlreadyCompletedError is returned from [*Emitter] methods
// called after the sequence has completed or failed.
type AlreadyCompletedError struct {
	// The operation that was attempted, such as "emit" or "complete".
	Op string

	// The operator name of the sequence.
	Sequence string

	// The stack at the first terminal transition.
	// Only set when [EnvConfig.TraceCompletions] is true.
	FirstCompletion []byte
}

func (e *AlreadyCompletedError) Error() string {
	msg := fmt.Sprintf("drift: %s on already completed %s sequence", e.Op, e.Sequence)
	if len(e.FirstCompletion) > 0 {
		msg += "\nfirst completed at:\n" + string(e.FirstCompletion)
	}
	return msg
}

// SourceFailedError is the error every cursor observes
// after a producer of its sequence returned an error.
//
// A failure relayed through several operators is wrapped only once,
// so Sequence names the operator where the failure originated.
type SourceFailedError struct {
	Sequence string
	Cause    error
}

func (e *SourceFailedError) Error() string {
	return fmt.Sprintf("drift: %s sequence failed: %v", e.Sequence, e.Cause)
}

func (e *SourceFailedError) Unwrap() error {
	return e.Cause
}

// sourceFailure wraps err in a *SourceFailedError,
// unless err already carries one.
func sourceFailure(op string, err error) error {
	var sf *SourceFailedError
	if errors.As(err, &sf) {
		return err
	}
	return &SourceFailedError{Sequence: op, Cause: err}
}
