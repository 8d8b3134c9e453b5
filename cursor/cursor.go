package cursor

import (
	"github.com/viant/geofeat/feature"
)

// Reader is a read-only cursor.
type Reader interface {
	// HasNext reports whether Next will return a record. It may block on the
	// backing store and can be called repeatedly without advancing.
	HasNext() (bool, error)
	// Next returns the record announced by the preceding HasNext.
	Next() (*feature.Feature, error)
	// Close releases the cursor and everything beneath it. Closing twice is a no-op.
	Close() error
}

// Writer is a cursor that can rewrite or delete the record last returned by Next.
type Writer interface {
	Reader
	// Write persists the current record, as modified by the caller.
	Write() error
	// Remove deletes the current record from the store.
	Remove() error
}

// Appender hands out blank records; Write inserts the record last returned by Next.
type Appender interface {
	Reader
	Write() error
}

// Sink applies in-place mutations for a Writer.
type Sink interface {
	Update(f *feature.Feature) error
	Remove(f *feature.Feature) error
}

// Inserter stores new records for an Appender.
type Inserter interface {
	Insert(f *feature.Feature) error
	Close() error
}
