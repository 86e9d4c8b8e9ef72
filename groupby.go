package drift

import "context"

// GroupBy partitions the values of seq by key.
//
// The returned sequence emits one partition the first time each key is seen.
// Every value of seq is emitted on exactly one partition.
// All partitions complete when seq completes,
// and fail with seq's error if it fails.
//
// A partition handle is shared by every cursor of the returned sequence;
// clone it to read it independently.
func GroupBy[T any, K comparable](seq *Sequence[T], key func(T) K) *Sequence[*Sequence[T]] {
	env := seq.Env()
	up := seq.Clone()
	return create(env, "group_by", func(ctx context.Context, e *Emitter[*Sequence[T]]) error {
		groups := make(map[K]*Emitter[T])

		err := relay(ctx, e, up, func(_ context.Context, v T) error {
			k := key(v)
			g, ok := groups[k]
			if !ok {
				var part *Sequence[T]
				part, g = newSubject[T](env, "group")
				groups[k] = g

				if _, err := e.Emit(part); err != nil {
					return err
				}
			}

			_, err := g.Emit(v)
			return err
		})

		for _, g := range groups {
			if err != nil {
				_ = g.Fail(err)
			} else {
				_ = g.Complete()
			}
		}

		return err
	})
}
