// Package mapper translates between features and store documents.
//
// A Mapper owns the storage layout of a dataset: how a feature is encoded
// into a document, how a bounding box becomes a native predicate, and how the
// envelope of a whole collection is computed. Envelope keeps the geometry
// envelope in indexed columns; GeoJSON keeps geometry only inside the
// document and filters with the geojson_intersects SQL function.
package mapper
