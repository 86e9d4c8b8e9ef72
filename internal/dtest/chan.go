package dtest

import (
	"testing"
	"time"
)

// ScheduleDuration is how long the channel helpers wait
// before deciding something did not happen.
const ScheduleDuration = 100 * time.Millisecond

// ReceiveSoon returns the value received from ch,
// failing the test if nothing arrives within ScheduleDuration.
func ReceiveSoon[T any](t *testing.T, ch <-chan T) T {
	t.Helper()

	select {
	case v := <-ch:
		return v
	case <-time.After(ScheduleDuration):
		t.Fatalf("no receive within %s", ScheduleDuration)
	}

	panic("unreachable")
}

// SendSoon sends v on ch,
// failing the test if the send blocks longer than ScheduleDuration.
func SendSoon[T any](t *testing.T, ch chan<- T, v T) {
	t.Helper()

	select {
	case ch <- v:
	case <-time.After(ScheduleDuration):
		t.Fatalf("send blocked longer than %s", ScheduleDuration)
	}
}

// IsSending asserts that a receive from ch is immediately ready.
// It is intended for channels that are closed to signal readiness.
func IsSending[T any](t *testing.T, ch <-chan T) {
	t.Helper()

	select {
	case <-ch:
	default:
		t.Fatal("channel was not ready to receive")
	}
}

// NotSending asserts that nothing is received from ch
// within a short interval.
func NotSending[T any](t *testing.T, ch <-chan T) {
	t.Helper()

	select {
	case <-ch:
		t.Fatal("channel unexpectedly ready to receive")
	case <-time.After(10 * time.Millisecond):
	}
}
