package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/viant/geofeat/feature"
)

var (
	// ErrNotFound is returned by Replace and Delete when no record has the id.
	ErrNotFound = errors.New("store: record not found")
	// ErrNoID is returned when a document without an id is inserted.
	ErrNoID = errors.New("store: document id must be set")
)

// Collection is a named set of documents backed by one table.
type Collection struct {
	db    *sql.DB
	name  string
	table string
	key   string
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// Table returns the backing table name.
func (c *Collection) Table() string { return c.table }

// DB returns the database the collection lives in.
func (c *Collection) DB() *sql.DB { return c.db }

// Count returns the number of documents matching where.
func (c *Collection) Count(ctx context.Context, where Predicate) (int64, error) {
	query := `SELECT COUNT(*) FROM ` + c.table + whereClause(where)
	var n int64
	if err := c.db.QueryRowContext(ctx, query, where.Args...).Scan(&n); err != nil {
		return 0, feature.NewStoreError("count", err)
	}
	return n, nil
}

// Find opens a native cursor over documents in insertion order. The caller
// must close the returned Rows.
func (c *Collection) Find(ctx context.Context, opts FindOptions) (*Rows, error) {
	var b strings.Builder
	b.WriteString(`SELECT id, doc, minx, miny, maxx, maxy FROM `)
	b.WriteString(c.table)
	b.WriteString(whereClause(opts.Where))
	b.WriteString(` ORDER BY rowid`)
	args := append([]any(nil), opts.Where.Args...)
	switch {
	case opts.Limit != nil:
		b.WriteString(` LIMIT ?`)
		args = append(args, *opts.Limit)
		if opts.Skip != nil {
			b.WriteString(` OFFSET ?`)
			args = append(args, *opts.Skip)
		}
	case opts.Skip != nil:
		b.WriteString(` LIMIT -1 OFFSET ?`)
		args = append(args, *opts.Skip)
	}
	rows, err := c.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, feature.NewStoreError("find", err)
	}
	return &Rows{rows: rows}, nil
}

// Get returns the document with id; ok is false when it does not exist.
func (c *Collection) Get(ctx context.Context, id string) (doc Document, ok bool, err error) {
	rows, err := c.Find(ctx, FindOptions{Where: Predicate{SQL: `id = ?`, Args: []any{id}}})
	if err != nil {
		return Document{}, false, err
	}
	defer rows.Close()
	return rows.Next()
}

// Insert adds a document. The id must be set and unused.
func (c *Collection) Insert(ctx context.Context, doc Document) error {
	if doc.ID == "" {
		return ErrNoID
	}
	minx, miny, maxx, maxy := envelopeArgs(doc.Envelope)
	_, err := c.db.ExecContext(ctx, `INSERT INTO `+c.table+`(id, doc, minx, miny, maxx, maxy) VALUES(?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Body, minx, miny, maxx, maxy)
	return feature.NewStoreError("insert", err)
}

// InsertMany adds documents in one transaction.
func (c *Collection) InsertMany(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return feature.NewStoreError("insert", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+c.table+`(id, doc, minx, miny, maxx, maxy) VALUES(?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return feature.NewStoreError("insert", err)
	}
	defer stmt.Close()

	for i, d := range docs {
		if d.ID == "" {
			return fmt.Errorf("%w: document %d of %d", ErrNoID, i+1, len(docs))
		}
		minx, miny, maxx, maxy := envelopeArgs(d.Envelope)
		if _, err := stmt.ExecContext(ctx, d.ID, d.Body, minx, miny, maxx, maxy); err != nil {
			return feature.NewStoreError("insert", err)
		}
	}
	return feature.NewStoreError("insert", tx.Commit())
}

// Replace rewrites the document with the same id.
func (c *Collection) Replace(ctx context.Context, doc Document) error {
	minx, miny, maxx, maxy := envelopeArgs(doc.Envelope)
	res, err := c.db.ExecContext(ctx, `UPDATE `+c.table+` SET doc = ?, minx = ?, miny = ?, maxx = ?, maxy = ? WHERE id = ?`,
		doc.Body, minx, miny, maxx, maxy, doc.ID)
	if err != nil {
		return feature.NewStoreError("replace", err)
	}
	return affected(res, "replace")
}

// Delete removes the document with id.
func (c *Collection) Delete(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM `+c.table+` WHERE id = ?`, id)
	if err != nil {
		return feature.NewStoreError("delete", err)
	}
	return affected(res, "delete")
}

// Extent aggregates the envelope columns. A collection without envelopes
// reports EmptyBound.
func (c *Collection) Extent(ctx context.Context) (orb.Bound, error) {
	var minx, miny, maxx, maxy sql.NullFloat64
	err := c.db.QueryRowContext(ctx, `SELECT MIN(minx), MIN(miny), MAX(maxx), MAX(maxy) FROM `+c.table+` WHERE minx IS NOT NULL`).
		Scan(&minx, &miny, &maxx, &maxy)
	if err != nil {
		return orb.Bound{}, feature.NewStoreError("extent", err)
	}
	if !minx.Valid {
		return EmptyBound(), nil
	}
	return orb.Bound{Min: orb.Point{minx.Float64, miny.Float64}, Max: orb.Point{maxx.Float64, maxy.Float64}}, nil
}

func whereClause(p Predicate) string {
	if p.IsZero() {
		return ""
	}
	return ` WHERE ` + p.SQL
}

func envelopeArgs(b *orb.Bound) (minx, miny, maxx, maxy any) {
	if b == nil || IsEmptyBound(*b) {
		return nil, nil, nil, nil
	}
	return b.Min.X(), b.Min.Y(), b.Max.X(), b.Max.Y()
}

func affected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return feature.NewStoreError(op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
