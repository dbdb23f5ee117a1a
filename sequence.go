package relayr

import (
	"context"

	"github.com/cockroachdb/errors"
	json "github.com/goccy/go-json"
)

// Seq is a lazy, finite, single-use sequence of values.
//
// Relation listings (a user's devices, a transmitter's devices, ...)
// return a Seq so that children are fetched one at a time: the listing
// call is issued on the first Next, and every yielded child costs one
// further hydration request. N children therefore cost N+1 requests —
// freshness over request volume, by contract.
//
// A Seq cannot be restarted. Once exhausted, Next keeps returning
// ok=false without issuing further calls; an error is likewise
// terminal. Call the relation method again for a fresh sequence.
type Seq[T any] struct {
	next func() (T, bool, error)
	done bool
}

func newSeq[T any](next func() (T, bool, error)) *Seq[T] {
	return &Seq[T]{next: next}
}

// Next returns the next value. ok is false when the sequence is
// exhausted. After an error or exhaustion the sequence is terminal.
func (s *Seq[T]) Next() (value T, ok bool, err error) {
	var zero T
	if s.done {
		return zero, false, nil
	}
	value, ok, err = s.next()
	if err != nil || !ok {
		s.done = true
	}
	if err != nil {
		return zero, false, err
	}
	return value, ok, nil
}

// Collect drains the sequence into a slice. On error it returns the
// values yielded so far alongside the error.
func (s *Seq[T]) Collect() ([]T, error) {
	var out []T
	for {
		v, ok, err := s.Next()
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, v)
	}
}

// relationSeq builds the Seq behind a one-to-many relation. list issues
// the listing call; build turns one raw listing entry into the yielded
// value, typically by extracting the child's ID (see entryID; the
// backend is not consistent about the field name) and hydrating a
// fresh proxy.
func relationSeq[T any](
	ctx context.Context,
	list func(context.Context) (json.RawMessage, error),
	build func(context.Context, json.RawMessage) (T, error),
) *Seq[T] {
	var items []json.RawMessage
	fetched := false
	idx := 0

	return newSeq(func() (T, bool, error) {
		var zero T
		if !fetched {
			raw, err := list(ctx)
			if err != nil {
				return zero, false, err
			}
			if len(raw) > 0 {
				if err := json.Unmarshal(raw, &items); err != nil {
					return zero, false, errors.Wrap(err, "decode relation listing")
				}
			}
			fetched = true
		}
		if idx >= len(items) {
			return zero, false, nil
		}
		entry := items[idx]
		idx++

		v, err := build(ctx, entry)
		if err != nil {
			return zero, false, err
		}
		return v, true, nil
	})
}

// entryID pulls the child ID out of one listing entry.
func entryID(entry json.RawMessage, idKey string) (string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(entry, &fields); err != nil {
		return "", errors.Wrap(err, "decode relation entry")
	}
	raw, ok := fields[idKey]
	if !ok {
		return "", errors.Newf("relation entry has no %q field", idKey)
	}
	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		return "", errors.Wrapf(err, "decode relation entry field %q", idKey)
	}
	return id, nil
}
