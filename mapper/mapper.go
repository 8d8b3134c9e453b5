package mapper

import (
	"context"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/viant/geofeat/feature"
	"github.com/viant/geofeat/store"
)

// ErrUnsupported is returned by EncodeBounds when the mapper cannot express
// the bound natively; callers enforce it in software instead.
var ErrUnsupported = errors.New("mapper: clause not supported natively")

// Dataset is the view of a dataset a mapper may consult.
type Dataset interface {
	Name() string
	CRS() string
}

// Mapper encodes features and spatial constraints into the store's native form.
type Mapper interface {
	// EncodeBounds returns a predicate selecting documents whose geometry
	// envelope intersects b.
	EncodeBounds(b orb.Bound, ds Dataset) (store.Predicate, error)

	// ComputeBounds returns the envelope of every document in the collection.
	ComputeBounds(ctx context.Context, c *store.Collection, ds Dataset) (orb.Bound, error)

	// Encode converts a feature into a document.
	Encode(f *feature.Feature, ds Dataset) (store.Document, error)

	// Decode converts a document into a feature.
	Decode(doc store.Document, ds Dataset) (*feature.Feature, error)
}

const (
	// NameEnvelope selects the Envelope mapper.
	NameEnvelope = "envelope"
	// NameGeoJSON selects the GeoJSON mapper.
	NameGeoJSON = "geojson"
)

// ByName returns the mapper registered under name; "" selects Envelope.
func ByName(name string) (Mapper, error) {
	switch name {
	case "", NameEnvelope:
		return Envelope{}, nil
	case NameGeoJSON:
		return GeoJSON{}, nil
	}
	return nil, fmt.Errorf("mapper: unknown mapper %q", name)
}
