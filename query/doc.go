// Package query holds the store-agnostic query descriptor and the per-call
// plan that records which clauses the backing store already applied.
package query
