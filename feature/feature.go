package feature

import (
	"github.com/paulmach/orb"
)

// Feature is a single vector record: an identifier, an optional geometry and
// a set of named attributes.
type Feature struct {
	// ID is the record identifier. Append cursors assign one when empty.
	ID string

	// Geometry is the spatial part of the record; nil for attribute-only records.
	Geometry orb.Geometry

	// Properties holds the non-spatial attributes.
	Properties map[string]any
}

// New creates a feature with an empty property set.
func New(id string, geometry orb.Geometry) *Feature {
	return &Feature{ID: id, Geometry: geometry, Properties: map[string]any{}}
}

// Get returns the named property, or nil when absent.
func (f *Feature) Get(key string) any {
	if f.Properties == nil {
		return nil
	}
	return f.Properties[key]
}

// Put sets the named property.
func (f *Feature) Put(key string, value any) *Feature {
	if f.Properties == nil {
		f.Properties = map[string]any{}
	}
	f.Properties[key] = value
	return f
}

// Bound returns the envelope of the geometry. ok is false when the feature
// has no geometry.
func (f *Feature) Bound() (bound orb.Bound, ok bool) {
	if f == nil || f.Geometry == nil {
		return orb.Bound{}, false
	}
	return f.Geometry.Bound(), true
}

// Clone returns a shallow copy with its own property map.
func (f *Feature) Clone() *Feature {
	out := &Feature{ID: f.ID, Geometry: f.Geometry}
	if f.Properties != nil {
		out.Properties = make(map[string]any, len(f.Properties))
		for k, v := range f.Properties {
			out.Properties[k] = v
		}
	}
	return out
}
