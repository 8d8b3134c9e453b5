package query

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/paulmach/orb"
	"github.com/viant/geofeat/filter"
)

// ErrInvalid is returned by Validate for malformed queries.
var ErrInvalid = errors.New("invalid query")

// Query describes what a caller wants from a dataset. It is immutable once
// constructed; use New with options.
type Query struct {
	bounds *orb.Bound
	filter filter.Filter
	offset *int
	limit  *int
}

// Option configures a Query.
type Option func(q *Query)

// WithBounds restricts results to features intersecting b.
func WithBounds(b orb.Bound) Option {
	return func(q *Query) { q.bounds = &b }
}

// WithFilter restricts results to features satisfying f.
func WithFilter(f filter.Filter) Option {
	return func(q *Query) { q.filter = f }
}

// WithOffset skips the first n matching features.
func WithOffset(n int) Option {
	return func(q *Query) { q.offset = &n }
}

// WithLimit caps the number of returned features.
func WithLimit(n int) Option {
	return func(q *Query) { q.limit = &n }
}

// New builds a query. With no options it selects all features.
func New(opts ...Option) Query {
	var q Query
	for _, opt := range opts {
		opt(&q)
	}
	return q
}

// Bounds returns the spatial clause.
func (q Query) Bounds() (orb.Bound, bool) {
	if q.bounds == nil {
		return orb.Bound{}, false
	}
	return *q.bounds, true
}

// Filter returns the predicate clause; nil when unset.
func (q Query) Filter() filter.Filter { return q.filter }

// Offset returns the offset clause.
func (q Query) Offset() (int, bool) {
	if q.offset == nil {
		return 0, false
	}
	return *q.offset, true
}

// Limit returns the limit clause.
func (q Query) Limit() (int, bool) {
	if q.limit == nil {
		return 0, false
	}
	return *q.limit, true
}

// All reports whether no clause is set.
func (q Query) All() bool {
	return q.bounds == nil && q.filter == nil && q.offset == nil && q.limit == nil
}

// Validate rejects negative offset or limit.
func (q Query) Validate() error {
	if q.offset != nil && *q.offset < 0 {
		return fmt.Errorf("%w: negative offset %d", ErrInvalid, *q.offset)
	}
	if q.limit != nil && *q.limit < 0 {
		return fmt.Errorf("%w: negative limit %d", ErrInvalid, *q.limit)
	}
	if q.bounds != nil && (isNaN(q.bounds.Min) || isNaN(q.bounds.Max)) {
		return fmt.Errorf("%w: bounds contain NaN", ErrInvalid)
	}
	return nil
}

func (q Query) String() string {
	if q.All() {
		return "all"
	}
	var parts []string
	if q.bounds != nil {
		parts = append(parts, fmt.Sprintf("bounds=[%g %g, %g %g]", q.bounds.Min.X(), q.bounds.Min.Y(), q.bounds.Max.X(), q.bounds.Max.Y()))
	}
	if q.filter != nil {
		parts = append(parts, "filter="+q.filter.String())
	}
	if q.offset != nil {
		parts = append(parts, fmt.Sprintf("offset=%d", *q.offset))
	}
	if q.limit != nil {
		parts = append(parts, fmt.Sprintf("limit=%d", *q.limit))
	}
	return strings.Join(parts, " ")
}

// IsNullBounds reports whether b constrains nothing: it is empty (min > max)
// or it covers the whole plane.
func IsNullBounds(b orb.Bound) bool {
	if b.Min.X() > b.Max.X() || b.Min.Y() > b.Max.Y() {
		return true
	}
	return math.IsInf(b.Min.X(), -1) && math.IsInf(b.Min.Y(), -1) &&
		math.IsInf(b.Max.X(), 1) && math.IsInf(b.Max.Y(), 1)
}

// Universe is the bound covering the whole plane.
func Universe() orb.Bound {
	return orb.Bound{
		Min: orb.Point{math.Inf(-1), math.Inf(-1)},
		Max: orb.Point{math.Inf(1), math.Inf(1)},
	}
}

func isNaN(p orb.Point) bool { return math.IsNaN(p.X()) || math.IsNaN(p.Y()) }
