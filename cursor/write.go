package cursor

import (
	"github.com/viant/geofeat/feature"
)

type updatable struct {
	Reader
	sink    Sink
	current *feature.Feature
	closed  bool
}

// Updatable adds in-place rewrite capability to a read pipeline.
func Updatable(r Reader, sink Sink) Writer {
	return &updatable{Reader: r, sink: sink}
}

func (c *updatable) HasNext() (bool, error) {
	if c.closed {
		return false, feature.ErrCursorClosed
	}
	return c.Reader.HasNext()
}

func (c *updatable) Next() (*feature.Feature, error) {
	if c.closed {
		return nil, feature.ErrCursorClosed
	}
	f, err := c.Reader.Next()
	if err != nil {
		return nil, err
	}
	c.current = f
	return f, nil
}

func (c *updatable) Write() error {
	if c.closed {
		return feature.ErrCursorClosed
	}
	if c.current == nil {
		return feature.ErrNotPositioned
	}
	return c.sink.Update(c.current)
}

func (c *updatable) Remove() error {
	if c.closed {
		return feature.ErrCursorClosed
	}
	if c.current == nil {
		return feature.ErrNotPositioned
	}
	if err := c.sink.Remove(c.current); err != nil {
		return err
	}
	c.current = nil
	return nil
}

func (c *updatable) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.current = nil
	return c.Reader.Close()
}

type appending struct {
	inserter Inserter
	newID    func() string
	current  *feature.Feature
	closed   bool
}

// Appending returns a creation-only cursor. HasNext is always true while the
// cursor is open; Next hands out a blank feature with a fresh id, and Write
// inserts it. Pre-existing records are never produced.
func Appending(inserter Inserter, newID func() string) Appender {
	return &appending{inserter: inserter, newID: newID}
}

func (c *appending) HasNext() (bool, error) {
	if c.closed {
		return false, feature.ErrCursorClosed
	}
	return true, nil
}

func (c *appending) Next() (*feature.Feature, error) {
	if c.closed {
		return nil, feature.ErrCursorClosed
	}
	c.current = feature.New(c.newID(), nil)
	return c.current, nil
}

func (c *appending) Write() error {
	if c.closed {
		return feature.ErrCursorClosed
	}
	if c.current == nil {
		return feature.ErrNotPositioned
	}
	if err := c.inserter.Insert(c.current); err != nil {
		return err
	}
	c.current = nil
	return nil
}

func (c *appending) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.current = nil
	return c.inserter.Close()
}
