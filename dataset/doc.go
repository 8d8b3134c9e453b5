// Package dataset is the facade over a feature collection: it plans each
// query, pushes the clauses the store can evaluate down to SQLite, and
// enforces the remainder in software, so every result equals what a pure
// in-memory evaluation of the query would produce.
//
// A Workspace opens a database file and hands out Datasets:
//
//	ws, err := dataset.Open("features.sqlite")
//	ds, err := ws.Create(ctx, "roads")
//	r, err := ds.Read(ctx, query.New(query.WithBounds(b), query.WithLimit(10)))
//	defer r.Close()
package dataset
