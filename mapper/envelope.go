package mapper

import (
	"context"

	"github.com/paulmach/orb"
	"github.com/viant/geofeat/feature"
	"github.com/viant/geofeat/store"
)

// Envelope stores the geometry envelope in the indexed bbox columns and
// pushes bounds down as a plain range predicate.
type Envelope struct{}

func (Envelope) EncodeBounds(b orb.Bound, _ Dataset) (store.Predicate, error) {
	return store.Predicate{
		SQL:  `maxx >= ? AND minx <= ? AND maxy >= ? AND miny <= ?`,
		Args: []any{b.Min.X(), b.Max.X(), b.Min.Y(), b.Max.Y()},
	}, nil
}

func (Envelope) ComputeBounds(ctx context.Context, c *store.Collection, _ Dataset) (orb.Bound, error) {
	return c.Extent(ctx)
}

func (Envelope) Encode(f *feature.Feature, ds Dataset) (store.Document, error) {
	body, err := encodeBody(f, ds)
	if err != nil {
		return store.Document{}, err
	}
	doc := store.Document{ID: f.ID, Body: body}
	if b, ok := f.Bound(); ok {
		doc.Envelope = &b
	}
	return doc, nil
}

func (Envelope) Decode(doc store.Document, ds Dataset) (*feature.Feature, error) {
	return decodeBody(doc, ds)
}
