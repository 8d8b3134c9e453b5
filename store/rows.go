package store

import (
	"database/sql"

	"github.com/paulmach/orb"
	"github.com/viant/geofeat/feature"
)

// Rows is the native cursor returned by Collection.Find.
type Rows struct {
	rows   *sql.Rows
	closed bool
}

// Next advances to the next document. ok is false once the rows are exhausted.
func (r *Rows) Next() (doc Document, ok bool, err error) {
	if r.closed {
		return Document{}, false, nil
	}
	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return Document{}, false, feature.NewStoreError("iterate", err)
		}
		return Document{}, false, nil
	}
	var minx, miny, maxx, maxy sql.NullFloat64
	if err := r.rows.Scan(&doc.ID, &doc.Body, &minx, &miny, &maxx, &maxy); err != nil {
		return Document{}, false, feature.NewStoreError("scan", err)
	}
	if minx.Valid && miny.Valid && maxx.Valid && maxy.Valid {
		doc.Envelope = &orb.Bound{Min: orb.Point{minx.Float64, miny.Float64}, Max: orb.Point{maxx.Float64, maxy.Float64}}
	}
	return doc, true, nil
}

// Close releases the statement. Subsequent calls are no-ops.
func (r *Rows) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return feature.NewStoreError("close", r.rows.Close())
}
