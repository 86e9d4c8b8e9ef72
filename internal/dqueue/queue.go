// Package dqueue contains the forkable FIFO buffer
// that sits underneath every drift sequence.
package dqueue

import "errors"

// ErrEmptyQueue is the panic value for Peek or Pop on an empty [Queue].
// Callers are expected to check [*Queue.IsEmpty] first.
var ErrEmptyQueue = errors.New("dqueue: peek or pop on empty queue")

// node is one link of the list.
// Like dchan.Multicast, the list has a single append point
// and many readers, each consuming at its own pace.
type node[T any] struct {
	next *node[T]
	val  T
}

// tail is the append point shared by every fork of a queue.
// It is never retired, since other forks may still need it.
type tail[T any] struct {
	last *node[T]
}

// Queue is a FIFO of values with an independent read position
// and a shared append position.
//
// The head always points at the most recently consumed node.
// A fresh queue points at a sentinel, so the first Pop
// never returns a placeholder value.
//
// Queue is not safe for concurrent use;
// callers must serialize access to every fork sharing a tail.
//
// Nodes before the slowest fork's head are garbage collected;
// a fork that never reads retains everything appended after it was made.
type Queue[T any] struct {
	head *node[T]
	tail *tail[T]
}

// New returns an empty queue.
func New[T any]() Queue[T] {
	sentinel := new(node[T])
	return Queue[T]{
		head: sentinel,
		tail: &tail[T]{last: sentinel},
	}
}

// Append adds v to the end of the queue.
// The value becomes visible to every fork sharing this queue's tail.
func (q *Queue[T]) Append(v T) {
	q.Appender().Append(v)
}

// IsEmpty reports whether q has no unread values.
// Emptiness is judged from q's own head, never from the tail.
func (q *Queue[T]) IsEmpty() bool {
	return q.head == nil || q.head.next == nil
}

// Peek returns the next unread value without consuming it.
// Peek panics with [ErrEmptyQueue] if q is empty.
func (q *Queue[T]) Peek() T {
	if q.IsEmpty() {
		panic(ErrEmptyQueue)
	}
	return q.head.next.val
}

// Pop consumes and returns the next unread value.
// Pop panics with [ErrEmptyQueue] if q is empty.
func (q *Queue[T]) Pop() T {
	if q.IsEmpty() {
		panic(ErrEmptyQueue)
	}
	n := q.head.next
	q.head = n
	return n.val
}

// Fork returns a new queue that shares q's tail
// but reads from its own copy of q's head.
func (q Queue[T]) Fork() Queue[T] {
	return q
}

// Appender returns a handle that can append to q's tail
// without holding a read position.
func (q *Queue[T]) Appender() Appender[T] {
	return Appender[T]{tail: q.tail}
}

// Release drops q's read position,
// so q no longer keeps unread nodes alive.
// A released queue is empty, and appends through other forks
// do not make it non-empty again.
func (q *Queue[T]) Release() {
	q.head = nil
}

// Appender appends to a shared tail.
// The zero value is not usable; obtain one from [*Queue.Appender].
type Appender[T any] struct {
	tail *tail[T]
}

// Append adds v after the current last node.
func (a Appender[T]) Append(v T) {
	n := &node[T]{val: v}
	a.tail.last.next = n
	a.tail.last = n
}
