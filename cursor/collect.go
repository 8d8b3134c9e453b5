package cursor

import (
	"errors"
	"iter"

	"github.com/viant/geofeat/feature"
)

// Count drains r, closes it and returns the number of records produced.
func Count(r Reader) (count int64, err error) {
	defer func() { err = errors.Join(err, r.Close()) }()
	for {
		ok, err := r.HasNext()
		if err != nil {
			return count, err
		}
		if !ok {
			return count, nil
		}
		if _, err := r.Next(); err != nil {
			return count, err
		}
		count++
	}
}

// Collect drains r into a slice and closes it.
func Collect(r Reader) (out []*feature.Feature, err error) {
	defer func() { err = errors.Join(err, r.Close()) }()
	for {
		ok, err := r.HasNext()
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		f, err := r.Next()
		if err != nil {
			return out, err
		}
		out = append(out, f)
	}
}

// All returns an iterator over r. The cursor is closed when iteration ends,
// including when the loop body breaks early. An iteration error, or else a
// close error after exhaustion, is yielded once, last.
func All(r Reader) iter.Seq2[*feature.Feature, error] {
	return func(yield func(*feature.Feature, error) bool) {
		for {
			ok, err := r.HasNext()
			if err != nil {
				_ = r.Close()
				yield(nil, err)
				return
			}
			if !ok {
				if err := r.Close(); err != nil {
					yield(nil, err)
				}
				return
			}
			f, err := r.Next()
			if err != nil {
				_ = r.Close()
				yield(nil, err)
				return
			}
			if !yield(f, nil) {
				_ = r.Close()
				return
			}
		}
	}
}
