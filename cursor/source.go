package cursor

import (
	"github.com/viant/geofeat/feature"
)

// PullFunc yields the next record; ok is false once the sequence is exhausted.
type PullFunc func() (f *feature.Feature, ok bool, err error)

type source struct {
	pull     PullFunc
	release  func() error
	pending  *feature.Feature
	done     bool
	closed   bool
	released bool
}

// FromFunc adapts a pull function into a Reader. release, when not nil, is
// called exactly once by Close, even when the cursor was never advanced.
func FromFunc(pull PullFunc, release func() error) Reader {
	return &source{pull: pull, release: release}
}

// FromSlice returns a Reader over features.
func FromSlice(features []*feature.Feature) Reader {
	i := 0
	return FromFunc(func() (*feature.Feature, bool, error) {
		if i >= len(features) {
			return nil, false, nil
		}
		f := features[i]
		i++
		return f, true, nil
	}, nil)
}

func (s *source) HasNext() (bool, error) {
	if s.closed {
		return false, feature.ErrCursorClosed
	}
	if s.pending != nil {
		return true, nil
	}
	if s.done {
		return false, nil
	}
	f, ok, err := s.pull()
	if err != nil {
		return false, err
	}
	if !ok {
		s.done = true
		return false, nil
	}
	s.pending = f
	return true, nil
}

func (s *source) Next() (*feature.Feature, error) {
	if s.closed {
		return nil, feature.ErrCursorClosed
	}
	if s.pending == nil {
		return nil, feature.ErrNoRecord
	}
	f := s.pending
	s.pending = nil
	return f, nil
}

func (s *source) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.pending = nil
	if s.release == nil || s.released {
		return nil
	}
	s.released = true
	return s.release()
}
