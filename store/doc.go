// Package store is the native SQLite side of the adapter. Each collection is
// a table holding one JSON document per record plus optional envelope
// columns. The package exposes native cursors, counts with pushed-down
// predicates and LIMIT/OFFSET, and a cached collection extent.
//
// Features:
//   - Auto-created collection tables and triggers
//   - Extent persistence in feature_extent and cache invalidation on writes
//   - Optional SCN change log (see featsync)
package store
