package mapper

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb/geojson"
	"github.com/viant/geofeat/feature"
	"github.com/viant/geofeat/store"
)

// document is the GeoJSON Feature body stored for each record. A nil
// geometry serialises as null.
type document struct {
	Type       string            `json:"type"`
	ID         string            `json:"id"`
	Geometry   *geojson.Geometry `json:"geometry"`
	Properties map[string]any    `json:"properties"`
}

// MarshalGeoJSON renders f as a GeoJSON Feature object.
func MarshalGeoJSON(f *feature.Feature) ([]byte, error) {
	doc := document{Type: "Feature", ID: f.ID, Properties: f.Properties}
	if f.Geometry != nil {
		doc.Geometry = geojson.NewGeometry(f.Geometry)
	}
	if doc.Properties == nil {
		doc.Properties = map[string]any{}
	}
	return json.Marshal(doc)
}

func encodeBody(f *feature.Feature, ds Dataset) (string, error) {
	if f == nil {
		return "", &feature.MappingError{Err: fmt.Errorf("%s: nil feature", ds.Name())}
	}
	if f.ID == "" {
		return "", &feature.MappingError{Err: fmt.Errorf("%s: feature id is empty", ds.Name())}
	}
	data, err := MarshalGeoJSON(f)
	if err != nil {
		return "", &feature.MappingError{ID: f.ID, Err: err}
	}
	return string(data), nil
}

func decodeBody(doc store.Document, ds Dataset) (*feature.Feature, error) {
	var body document
	if err := json.Unmarshal([]byte(doc.Body), &body); err != nil {
		return nil, &feature.MappingError{ID: doc.ID, Err: fmt.Errorf("%s: %w", ds.Name(), err)}
	}
	f := feature.New(doc.ID, nil)
	if body.Geometry != nil {
		f.Geometry = body.Geometry.Geometry()
	}
	if body.Properties != nil {
		f.Properties = body.Properties
	}
	return f, nil
}
