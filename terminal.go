package drift

import "context"

// Collect returns every value seq emits after the call, once it completes.
// seq itself is not advanced.
func Collect[T any](ctx context.Context, seq *Sequence[T]) ([]T, error) {
	c := seq.Clone()
	defer c.Close()

	var out []T
	for {
		v, ok, err := c.Next(ctx)
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, v)
	}
}

// First returns the first value seq emits after the call.
// The bool is false if seq completes without emitting.
func First[T any](ctx context.Context, seq *Sequence[T]) (T, bool, error) {
	c := seq.Clone()
	defer c.Close()

	return c.Next(ctx)
}

// Last returns the final value of seq, once it completes.
// The bool is false if seq completes without emitting after the call.
func Last[T any](ctx context.Context, seq *Sequence[T]) (T, bool, error) {
	c := seq.Clone()
	defer c.Close()

	var (
		last T
		seen bool
	)
	for {
		v, ok, err := c.Next(ctx)
		if err != nil {
			return last, seen, err
		}
		if !ok {
			return last, seen, nil
		}
		last, seen = v, true
	}
}

// Reduce folds seq with f, seeding the accumulator with the first value.
// The bool is false if seq completes without emitting.
func Reduce[T any](ctx context.Context, seq *Sequence[T], f func(acc, v T) T) (T, bool, error) {
	s := Scan(seq, f)
	defer s.Close()

	return Last(ctx, s)
}
