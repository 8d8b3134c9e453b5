// Package feature defines the record type exchanged by datasets and cursors,
// the dataset schema, and the error kinds surfaced by the query pipeline.
package feature
