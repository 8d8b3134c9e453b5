package dataset

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/viant/geofeat/cursor"
	"github.com/viant/geofeat/feature"
	"github.com/viant/geofeat/mapper"
	"github.com/viant/geofeat/query"
	"github.com/viant/geofeat/store"
)

// CRS is the coordinate reference system of every dataset.
const CRS = "EPSG:4326"

// ErrClosed is returned by operations on a closed dataset.
var ErrClosed = fmt.Errorf("%w: dataset is closed", feature.ErrMisuse)

// Dataset is a queryable feature collection. It keeps no per-call state, so
// cursors may be created concurrently; each cursor is owned by its caller.
type Dataset struct {
	name    string
	coll    *store.Collection
	mapper  mapper.Mapper
	schema  *feature.Schema
	lenient bool
	logger  *Logger
	closed  atomic.Bool
}

func newDataset(coll *store.Collection, o options) *Dataset {
	return &Dataset{
		name:    coll.Name(),
		coll:    coll,
		mapper:  o.mapper,
		schema:  o.schema,
		lenient: o.lenient,
		logger:  o.logger.WithDataset(coll.Name()),
	}
}

// Name returns the dataset name.
func (d *Dataset) Name() string { return d.name }

// CRS returns the coordinate reference system identifier.
func (d *Dataset) CRS() string { return CRS }

// Schema returns the dataset schema; a dataset opened without one reports a
// schema that accepts every feature.
func (d *Dataset) Schema(ctx context.Context) (*feature.Schema, error) {
	if d.closed.Load() {
		return nil, ErrClosed
	}
	if d.schema != nil {
		return d.schema, nil
	}
	return feature.NewSchema(d.name, "")
}

// Bounds returns the envelope of every feature. The result is cached and
// persisted until the collection changes. An empty dataset reports a bound
// with min above max.
func (d *Dataset) Bounds(ctx context.Context) (orb.Bound, error) {
	if d.closed.Load() {
		return orb.Bound{}, ErrClosed
	}
	return d.coll.CachedExtent(ctx, func(ctx context.Context) (orb.Bound, error) {
		return d.mapper.ComputeBounds(ctx, d.coll, d)
	})
}

// Count returns the number of features Read(q) would produce.
func (d *Dataset) Count(ctx context.Context, q query.Query) (int64, error) {
	if err := d.check(q); err != nil {
		return 0, err
	}
	recordQuery("count")
	if q.All() && !d.lenient {
		return d.coll.Count(ctx, store.Predicate{})
	}
	plan := query.NewPlan(q)
	where, err := d.encodeBounds(plan)
	if err != nil {
		return 0, err
	}
	if plan.Filtered() || d.lenient || !d.boundsSatisfied(plan) {
		r, err := d.read(ctx, q, "count")
		if err != nil {
			return 0, err
		}
		return cursor.Count(r)
	}
	raw, err := d.coll.Count(ctx, where)
	if err != nil {
		return 0, err
	}
	return query.AdjustCount(raw, q), nil
}

// Read opens a read-only cursor over the features matching q.
func (d *Dataset) Read(ctx context.Context, q query.Query) (cursor.Reader, error) {
	if err := d.check(q); err != nil {
		return nil, err
	}
	recordQuery("read")
	return d.read(ctx, q, "read")
}

// Update opens a cursor over the features matching q whose records can be
// rewritten or removed in place.
func (d *Dataset) Update(ctx context.Context, q query.Query) (cursor.Writer, error) {
	if err := d.check(q); err != nil {
		return nil, err
	}
	recordQuery("update")
	r, err := d.read(ctx, q, "update")
	if err != nil {
		return nil, err
	}
	return cursor.Updatable(r, &sink{ctx: ctx, ds: d}), nil
}

// Append opens a creation-only cursor. Filtering clauses of q are ignored;
// the cursor never yields stored records.
func (d *Dataset) Append(ctx context.Context, q query.Query) (cursor.Appender, error) {
	if err := d.check(q); err != nil {
		return nil, err
	}
	recordQuery("append")
	cursorOpened()
	return cursor.Appending(&inserter{ctx: ctx, ds: d}, uuid.NewString), nil
}

// Insert encodes and stores features in one transaction.
func (d *Dataset) Insert(ctx context.Context, features ...*feature.Feature) error {
	if d.closed.Load() {
		return ErrClosed
	}
	docs := make([]store.Document, 0, len(features))
	for _, f := range features {
		doc, err := d.encode(f)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}
	return d.coll.InsertMany(ctx, docs)
}

// Rebuild drops the persisted envelope, recomputes it and returns the number
// of stored features.
func (d *Dataset) Rebuild(ctx context.Context) (int64, error) {
	if d.closed.Load() {
		return 0, ErrClosed
	}
	if err := d.coll.ResetExtent(ctx); err != nil {
		return 0, err
	}
	if _, err := d.Bounds(ctx); err != nil {
		return 0, err
	}
	return d.coll.Count(ctx, store.Predicate{})
}

// Close marks the dataset closed. Outstanding cursors stay usable and must
// be closed by their owners. Closing twice is a no-op.
func (d *Dataset) Close() error {
	d.closed.Store(true)
	return nil
}

func (d *Dataset) check(q query.Query) error {
	if d.closed.Load() {
		return ErrClosed
	}
	return q.Validate()
}

func (d *Dataset) read(ctx context.Context, q query.Query, op string) (cursor.Reader, error) {
	plan := query.NewPlan(q)
	opts, err := d.pushDown(plan)
	if err != nil {
		d.logger.LogQuery(ctx, op, plan, err)
		return nil, err
	}
	rows, err := d.coll.Find(ctx, opts)
	if err != nil {
		d.logger.LogQuery(ctx, op, plan, err)
		return nil, err
	}
	d.logger.LogQuery(ctx, op, plan, nil)
	cursorOpened()
	return plan.Apply(d.decode(ctx, rows, op)), nil
}

// pushDown translates every clause the store can evaluate into find options
// and marks it on the plan. Offset and limit are delegated only when no
// software clause runs before them.
func (d *Dataset) pushDown(plan *query.Plan) (store.FindOptions, error) {
	q := plan.Query()
	where, err := d.encodeBounds(plan)
	if err != nil {
		return store.FindOptions{}, err
	}
	opts := store.FindOptions{Where: where}
	if _, ok := q.Bounds(); ok {
		recordClause("bounds", plan.IsBounded())
	}
	if plan.Filtered() {
		recordClause("filter", false)
	}
	delegate := !plan.Filtered() && d.boundsSatisfied(plan) && !d.lenient
	if n, ok := q.Offset(); ok {
		if delegate {
			opts.Skip = &n
			plan.Offsetted()
		}
		recordClause("offset", delegate)
	}
	if n, ok := q.Limit(); ok {
		if delegate {
			opts.Limit = &n
			plan.Limited()
		}
		recordClause("limit", delegate)
	}
	return opts, nil
}

// encodeBounds pushes the bounds clause down when the mapper supports it.
// Null bounds constrain nothing and are satisfied trivially.
func (d *Dataset) encodeBounds(plan *query.Plan) (store.Predicate, error) {
	b, ok := plan.Query().Bounds()
	if !ok {
		return store.Predicate{}, nil
	}
	if query.IsNullBounds(b) {
		plan.Bounded()
		return store.Predicate{}, nil
	}
	where, err := d.mapper.EncodeBounds(b, d)
	if errors.Is(err, mapper.ErrUnsupported) {
		return store.Predicate{}, nil
	}
	if err != nil {
		return store.Predicate{}, err
	}
	plan.Bounded()
	return where, nil
}

func (d *Dataset) boundsSatisfied(plan *query.Plan) bool {
	_, ok := plan.Query().Bounds()
	return !ok || plan.IsBounded()
}

func (d *Dataset) decode(ctx context.Context, rows *store.Rows, op string) cursor.Reader {
	pull := func() (*feature.Feature, bool, error) {
		for {
			doc, ok, err := rows.Next()
			if err != nil || !ok {
				return nil, false, err
			}
			f, err := d.mapper.Decode(doc, d)
			if err == nil {
				return f, true, nil
			}
			if d.lenient && feature.IsMappingError(err) {
				d.logger.LogSkipped(ctx, doc.ID, err)
				recordSkipped()
				continue
			}
			return nil, false, err
		}
	}
	release := func() error {
		err := rows.Close()
		cursorClosed()
		d.logger.LogCursorClosed(ctx, op, err)
		return err
	}
	return cursor.FromFunc(pull, release)
}

func (d *Dataset) encode(f *feature.Feature) (store.Document, error) {
	if err := d.schema.Validate(f); err != nil {
		return store.Document{}, err
	}
	return d.mapper.Encode(f, d)
}

type sink struct {
	ctx context.Context
	ds  *Dataset
}

func (s *sink) Update(f *feature.Feature) error {
	doc, err := s.ds.encode(f)
	if err != nil {
		return err
	}
	return s.ds.coll.Replace(s.ctx, doc)
}

func (s *sink) Remove(f *feature.Feature) error {
	return s.ds.coll.Delete(s.ctx, f.ID)
}

type inserter struct {
	ctx context.Context
	ds  *Dataset
}

func (i *inserter) Insert(f *feature.Feature) error {
	doc, err := i.ds.encode(f)
	if err != nil {
		return err
	}
	return i.ds.coll.Insert(i.ctx, doc)
}

func (i *inserter) Close() error {
	cursorClosed()
	i.ds.logger.LogCursorClosed(i.ctx, "append", nil)
	return nil
}
