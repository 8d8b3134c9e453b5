package mapper

import (
	"context"

	"github.com/paulmach/orb"
	"github.com/viant/geofeat/feature"
	"github.com/viant/geofeat/store"
)

// GeoJSON keeps geometry only inside the document. Bounds are evaluated by
// the geojson_intersects SQL function and the extent is computed by scanning
// every document.
type GeoJSON struct{}

func (GeoJSON) EncodeBounds(b orb.Bound, _ Dataset) (store.Predicate, error) {
	return store.Predicate{
		SQL:  `geojson_intersects(doc, ?, ?, ?, ?) = 1`,
		Args: []any{b.Min.X(), b.Min.Y(), b.Max.X(), b.Max.Y()},
	}, nil
}

func (m GeoJSON) ComputeBounds(ctx context.Context, c *store.Collection, ds Dataset) (orb.Bound, error) {
	rows, err := c.Find(ctx, store.FindOptions{})
	if err != nil {
		return orb.Bound{}, err
	}
	defer rows.Close()
	extent := store.EmptyBound()
	for {
		doc, ok, err := rows.Next()
		if err != nil {
			return orb.Bound{}, err
		}
		if !ok {
			break
		}
		f, err := m.Decode(doc, ds)
		if err != nil {
			return orb.Bound{}, err
		}
		if b, ok := f.Bound(); ok {
			extent = extent.Union(b)
		}
	}
	return extent, rows.Close()
}

func (GeoJSON) Encode(f *feature.Feature, ds Dataset) (store.Document, error) {
	body, err := encodeBody(f, ds)
	if err != nil {
		return store.Document{}, err
	}
	return store.Document{ID: f.ID, Body: body}, nil
}

func (GeoJSON) Decode(doc store.Document, ds Dataset) (*feature.Feature, error) {
	return decodeBody(doc, ds)
}
