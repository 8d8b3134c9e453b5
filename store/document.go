package store

import (
	"math"

	"github.com/paulmach/orb"
)

// Document is a record in its native form.
type Document struct {
	// ID is the primary key of the record.
	ID string

	// Body is the JSON-encoded record.
	Body string

	// Envelope fills the envelope columns; nil leaves them NULL.
	Envelope *orb.Bound
}

// Predicate is a WHERE fragment with positional arguments.
type Predicate struct {
	SQL  string
	Args []any
}

// IsZero reports whether the predicate selects everything.
func (p Predicate) IsZero() bool { return p.SQL == "" }

// FindOptions controls a native find.
type FindOptions struct {
	Where Predicate
	Skip  *int
	Limit *int
}

// EmptyBound is the envelope of an empty collection: min above max.
func EmptyBound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{math.Inf(1), math.Inf(1)},
		Max: orb.Point{math.Inf(-1), math.Inf(-1)},
	}
}

// IsEmptyBound reports whether b contains no point.
func IsEmptyBound(b orb.Bound) bool {
	return b.Min.X() > b.Max.X() || b.Min.Y() > b.Max.Y()
}
