package query

import (
	"fmt"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/geofeat/cursor"
	"github.com/viant/geofeat/feature"
	"github.com/viant/geofeat/filter"
)

func TestQuery_All(t *testing.T) {
	assert.True(t, New().All())
	assert.False(t, New(WithLimit(0)).All())
	assert.False(t, New(WithFilter(filter.True)).All())
	assert.Equal(t, "all", New().String())
	assert.Equal(t, "offset=2 limit=3", New(WithOffset(2), WithLimit(3)).String())
}

func TestQuery_Validate(t *testing.T) {
	assert.NoError(t, New(WithOffset(0), WithLimit(0)).Validate())
	assert.ErrorIs(t, New(WithOffset(-1)).Validate(), ErrInvalid)
	assert.ErrorIs(t, New(WithLimit(-5)).Validate(), ErrInvalid)
	nan := orb.Bound{Min: orb.Point{math.NaN(), 0}, Max: orb.Point{1, 1}}
	assert.ErrorIs(t, New(WithBounds(nan)).Validate(), ErrInvalid)
}

func TestIsNullBounds(t *testing.T) {
	assert.True(t, IsNullBounds(Universe()))
	assert.True(t, IsNullBounds(orb.Bound{Min: orb.Point{2, 2}, Max: orb.Point{1, 1}}))
	assert.False(t, IsNullBounds(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1, 1}}))
	assert.False(t, IsNullBounds(orb.Bound{Min: orb.Point{1, 1}, Max: orb.Point{1, 1}}), "a point bound still constrains")
}

func grid(n int) []*feature.Feature {
	out := make([]*feature.Feature, n)
	for i := range out {
		f := feature.New(fmt.Sprintf("f%d", i+1), orb.Point{float64(i), float64(i % 3)})
		f.Put("even", i%2 == 0)
		out[i] = f
	}
	return out
}

// reference evaluates a query the slow, obvious way.
func reference(features []*feature.Feature, q Query) []string {
	var out []string
	b, hasBounds := q.Bounds()
	for _, f := range features {
		if hasBounds {
			fb, _ := f.Bound()
			if !fb.Intersects(b) {
				continue
			}
		}
		if flt := q.Filter(); flt != nil {
			ok, _ := flt.Evaluate(f)
			if !ok {
				continue
			}
		}
		out = append(out, f.ID)
	}
	if n, ok := q.Offset(); ok {
		if n >= len(out) {
			out = nil
		} else {
			out = out[n:]
		}
	}
	if n, ok := q.Limit(); ok && n < len(out) {
		out = out[:n]
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func collectIDs(t *testing.T, r cursor.Reader) []string {
	t.Helper()
	features, err := cursor.Collect(r)
	require.NoError(t, err)
	var out []string
	for _, f := range features {
		out = append(out, f.ID)
	}
	return out
}

func TestPlan_ApplyMatchesReference(t *testing.T) {
	features := grid(12)
	bound := orb.Bound{Min: orb.Point{2, 0}, Max: orb.Point{9, 1}}
	even := filter.MustCompile(`properties.even == true`)

	var queries []Query
	for _, off := range []int{-1, 0, 1, 3, 20} {
		for _, lim := range []int{-1, 0, 2, 5, 20} {
			for _, withBounds := range []bool{false, true} {
				for _, withFilter := range []bool{false, true} {
					var opts []Option
					if off >= 0 {
						opts = append(opts, WithOffset(off))
					}
					if lim >= 0 {
						opts = append(opts, WithLimit(lim))
					}
					if withBounds {
						opts = append(opts, WithBounds(bound))
					}
					if withFilter {
						opts = append(opts, WithFilter(even))
					}
					queries = append(queries, New(opts...))
				}
			}
		}
	}

	for _, q := range queries {
		t.Run(q.String(), func(t *testing.T) {
			got := collectIDs(t, NewPlan(q).Apply(cursor.FromSlice(features)))
			assert.Equal(t, reference(features, q), got)
			assert.EqualValues(t, len(got), AdjustCount(int64(len(reference(features, New(boundsAndFilter(q)...)))), q))
		})
	}
}

func boundsAndFilter(q Query) []Option {
	var opts []Option
	if b, ok := q.Bounds(); ok {
		opts = append(opts, WithBounds(b))
	}
	if f := q.Filter(); f != nil {
		opts = append(opts, WithFilter(f))
	}
	return opts
}

func TestPlan_PushedDownClausesAreSkipped(t *testing.T) {
	features := grid(10)
	q := New(WithBounds(orb.Bound{Min: orb.Point{100, 100}, Max: orb.Point{200, 200}}), WithOffset(2), WithLimit(2))

	// The store claims to have applied everything; Apply must not re-enforce it.
	p := NewPlan(q).Bounded().Offsetted().Limited()
	assert.True(t, p.IsBounded() && p.IsOffsetted() && p.IsLimited())
	src := cursor.FromSlice(features)
	assert.Same(t, src, p.Apply(src))

	// Nothing pushed down: bounds matches nothing.
	assert.Empty(t, collectIDs(t, NewPlan(q).Apply(cursor.FromSlice(features))))
}

func TestPlan_PredicateAlwaysRechecked(t *testing.T) {
	q := New(WithFilter(filter.MustCompile(`id == "f4"`)), WithLimit(1))
	p := NewPlan(q).Bounded().Offsetted()
	assert.True(t, p.Filtered())
	assert.Equal(t, []string{"f4"}, collectIDs(t, p.Apply(cursor.FromSlice(grid(10)))))
}

func TestPlan_NullBoundsNotEnforced(t *testing.T) {
	q := New(WithBounds(Universe()))
	assert.Len(t, collectIDs(t, NewPlan(q).Apply(cursor.FromSlice(grid(4)))), 4)
}

func TestAdjustCount(t *testing.T) {
	testCases := []struct {
		description string
		raw         int64
		q           Query
		want        int64
	}{
		{description: "raw", raw: 10, q: New(), want: 10},
		{description: "offset", raw: 10, q: New(WithOffset(3)), want: 7},
		{description: "offset past end", raw: 2, q: New(WithOffset(3)), want: 0},
		{description: "limit", raw: 10, q: New(WithLimit(4)), want: 4},
		{description: "limit above raw", raw: 3, q: New(WithLimit(4)), want: 3},
		{description: "both", raw: 10, q: New(WithOffset(2), WithLimit(2)), want: 2},
		{description: "both tail", raw: 10, q: New(WithOffset(9), WithLimit(5)), want: 1},
		{description: "both past end", raw: 10, q: New(WithOffset(12), WithLimit(5)), want: 0},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.want, AdjustCount(tc.raw, tc.q))
		})
	}
}
