// Package drift contains composable, pull-driven asynchronous sequences.
//
// A [Sequence] is a cursor over values produced over time by one or more
// [Producer] goroutines. Consumers pull values with [*Sequence.Advance]
// and [*Sequence.Current], or with [*Sequence.Next].
//
// Every value is buffered in a log shared by all clones of a sequence.
// [*Sequence.Clone] returns an independent cursor over the same production,
// so a clone taken before any advance replays everything ("cold"),
// while several goroutines calling Next on one handle
// split the values between them ("hot").
//
// Each emitted value carries a release signal,
// resolved once a consumer advances past it.
// When no cursor of a sequence is actively pulling,
// operators relaying values into that sequence wait on the release signal
// before pulling further upstream, so unconsumed pipelines do not buffer without bound.
//
// The operators in this package (such as [Map], [Merge], [Window], and [Join])
// are all built on the same producer and emitter machinery
// that is available to callers through [New] and [NewSubject].
//
// All timing goes through an [Env], which carries the clock,
// the root context, and the logger shared by every sequence built on it.
package drift
