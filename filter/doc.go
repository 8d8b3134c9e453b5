// Package filter provides the predicate clause of a query. Predicates are
// evaluated in software against decoded features; expressions use CEL with
// the variables id (string), properties (map) and geometry (geometry type
// name, empty when the feature has none).
package filter
