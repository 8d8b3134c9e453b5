package query

import (
	"github.com/viant/geofeat/cursor"
	"github.com/viant/geofeat/filter"
)

// Plan tracks, for one query execution, which clauses the backing store has
// already applied. Clauses that were not pushed down are enforced in
// software by Apply. A Plan is call-scoped and must not be shared.
type Plan struct {
	query     Query
	bounded   bool
	offsetted bool
	limited   bool
}

// NewPlan starts a plan with nothing pushed down.
func NewPlan(q Query) *Plan { return &Plan{query: q} }

// Query returns the planned query.
func (p *Plan) Query() Query { return p.query }

// Bounded records that the store applied the bounds clause.
func (p *Plan) Bounded() *Plan { p.bounded = true; return p }

// Offsetted records that the store applied the offset clause.
func (p *Plan) Offsetted() *Plan { p.offsetted = true; return p }

// Limited records that the store applied the limit clause.
func (p *Plan) Limited() *Plan { p.limited = true; return p }

// IsBounded reports whether bounds were pushed down.
func (p *Plan) IsBounded() bool { return p.bounded }

// IsOffsetted reports whether the offset was pushed down.
func (p *Plan) IsOffsetted() bool { return p.offsetted }

// IsLimited reports whether the limit was pushed down.
func (p *Plan) IsLimited() bool { return p.limited }

// Filtered reports whether Apply re-evaluates a predicate.
func (p *Plan) Filtered() bool { return !filter.IsTrueOrNil(p.query.filter) }

// Apply decorates r with software enforcement of every clause the store did
// not apply, in the fixed order bounds, predicate, offset, limit, so that
// offset and limit always count filtered records.
func (p *Plan) Apply(r cursor.Reader) cursor.Reader {
	if b, ok := p.query.Bounds(); ok && !p.bounded && !IsNullBounds(b) {
		r = cursor.Intersecting(r, b)
	}
	if p.Filtered() {
		r = cursor.Where(r, p.query.filter)
	}
	if n, ok := p.query.Offset(); ok && !p.offsetted {
		r = cursor.Skip(r, n)
	}
	if n, ok := p.query.Limit(); ok && !p.limited {
		r = cursor.Take(r, n)
	}
	return r
}

// AdjustCount applies the query's offset and limit to a raw match count, so
// the result equals the number of records Apply would let through.
func AdjustCount(raw int64, q Query) int64 {
	count := raw
	if n, ok := q.Offset(); ok {
		count -= int64(n)
		if count < 0 {
			count = 0
		}
	}
	if n, ok := q.Limit(); ok && int64(n) < count {
		count = int64(n)
	}
	return count
}
