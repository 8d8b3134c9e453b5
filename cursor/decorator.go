package cursor

import (
	"github.com/paulmach/orb"
	"github.com/viant/geofeat/feature"
	"github.com/viant/geofeat/filter"
)

// filtered drops upstream records rejected by accept. It buffers one record
// of lookahead.
type filtered struct {
	upstream Reader
	accept   func(f *feature.Feature) (bool, error)
	pending  *feature.Feature
	done     bool
	closed   bool
}

func (c *filtered) HasNext() (bool, error) {
	if c.closed {
		return false, feature.ErrCursorClosed
	}
	if c.pending != nil {
		return true, nil
	}
	if c.done {
		return false, nil
	}
	for {
		ok, err := c.upstream.HasNext()
		if err != nil {
			return false, err
		}
		if !ok {
			c.done = true
			return false, nil
		}
		f, err := c.upstream.Next()
		if err != nil {
			return false, err
		}
		keep, err := c.accept(f)
		if err != nil {
			return false, err
		}
		if keep {
			c.pending = f
			return true, nil
		}
	}
}

func (c *filtered) Next() (*feature.Feature, error) {
	if c.closed {
		return nil, feature.ErrCursorClosed
	}
	if c.pending == nil {
		return nil, feature.ErrNoRecord
	}
	f := c.pending
	c.pending = nil
	return f, nil
}

func (c *filtered) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.pending = nil
	return c.upstream.Close()
}

// Intersecting keeps records whose geometry envelope intersects bound.
// Records without geometry are dropped.
func Intersecting(upstream Reader, bound orb.Bound) Reader {
	return &filtered{upstream: upstream, accept: func(f *feature.Feature) (bool, error) {
		b, ok := f.Bound()
		if !ok {
			return false, nil
		}
		return b.Intersects(bound), nil
	}}
}

// Where keeps records satisfying flt. A trivial filter returns upstream as is.
func Where(upstream Reader, flt filter.Filter) Reader {
	if filter.IsTrueOrNil(flt) {
		return upstream
	}
	return &filtered{upstream: upstream, accept: flt.Evaluate}
}

type skip struct {
	upstream  Reader
	remaining int
	closed    bool
}

// Skip discards the first n records before yielding any.
func Skip(upstream Reader, n int) Reader {
	if n <= 0 {
		return upstream
	}
	return &skip{upstream: upstream, remaining: n}
}

func (c *skip) HasNext() (bool, error) {
	if c.closed {
		return false, feature.ErrCursorClosed
	}
	for c.remaining > 0 {
		ok, err := c.upstream.HasNext()
		if err != nil || !ok {
			return false, err
		}
		if _, err := c.upstream.Next(); err != nil {
			return false, err
		}
		c.remaining--
	}
	return c.upstream.HasNext()
}

func (c *skip) Next() (*feature.Feature, error) {
	if c.closed {
		return nil, feature.ErrCursorClosed
	}
	if c.remaining > 0 {
		return nil, feature.ErrNoRecord
	}
	return c.upstream.Next()
}

func (c *skip) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.upstream.Close()
}

type take struct {
	upstream  Reader
	remaining int
	closed    bool
}

// Take stops after n records regardless of what upstream still holds.
func Take(upstream Reader, n int) Reader {
	if n < 0 {
		n = 0
	}
	return &take{upstream: upstream, remaining: n}
}

func (c *take) HasNext() (bool, error) {
	if c.closed {
		return false, feature.ErrCursorClosed
	}
	if c.remaining <= 0 {
		return false, nil
	}
	return c.upstream.HasNext()
}

func (c *take) Next() (*feature.Feature, error) {
	if c.closed {
		return nil, feature.ErrCursorClosed
	}
	if c.remaining <= 0 {
		return nil, feature.ErrNoRecord
	}
	f, err := c.upstream.Next()
	if err != nil {
		return nil, err
	}
	c.remaining--
	return f, nil
}

func (c *take) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.upstream.Close()
}
