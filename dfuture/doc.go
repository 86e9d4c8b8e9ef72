// Package dfuture contains a single-resolution future,
// the primitive drift uses for release signals
// and for values that become available later.
//
// A [Future] is settled exactly once, either resolved with a value
// or rejected with an error.
// Observers select on [*Future.Done] or block in [*Future.Wait].
package dfuture
