package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/viant/geofeat/engine"
	"github.com/viant/geofeat/feature"
	"golang.org/x/sync/singleflight"
)

var (
	generations = xsync.NewMapOf[string, uint64]()
	extentGroup singleflight.Group
)

func init() {
	engine.OnInvalidate(InvalidateExtent)
}

// ExtentState is the persisted envelope row of a collection. Version is
// bumped by the collection triggers inside the writing transaction; Valid is
// false until an envelope computed at that version is saved.
type ExtentState struct {
	Bound   orb.Bound
	Version int64
	Valid   bool
}

// InvalidateExtent advances the in-process generation of collection so that
// later CachedExtent calls do not join a computation started before the
// change. Collection triggers call it through feat_invalidate.
func InvalidateExtent(collection string) {
	generations.Compute(collection, func(old uint64, _ bool) (uint64, bool) {
		return old + 1, false
	})
}

func cacheKey(dbPath, collection string) string {
	return dbPath + "|" + collection
}

func generation(collection string) uint64 {
	g, _ := generations.Load(collection)
	return g
}

// CachedExtent returns the persisted envelope when it is valid, otherwise it
// calls compute and saves the result unless the collection changed after the
// persisted version was read.
func (c *Collection) CachedExtent(ctx context.Context, compute func(ctx context.Context) (orb.Bound, error)) (orb.Bound, error) {
	key := c.key + "#" + strconv.FormatUint(generation(c.name), 10)
	v, err, _ := extentGroup.Do(key, func() (any, error) {
		st, err := c.LoadExtent(ctx)
		if err != nil {
			return orb.Bound{}, err
		}
		if st.Valid {
			return st.Bound, nil
		}
		b, err := compute(ctx)
		if err != nil {
			return orb.Bound{}, err
		}
		if _, err := c.SaveExtent(ctx, b, st.Version); err != nil {
			return orb.Bound{}, err
		}
		return b, nil
	})
	if err != nil {
		return orb.Bound{}, err
	}
	return v.(orb.Bound), nil
}

// LoadExtent reads the persisted envelope row. A collection without a row
// reports version 0 and an invalid state.
func (c *Collection) LoadExtent(ctx context.Context) (ExtentState, error) {
	var minx, miny, maxx, maxy sql.NullFloat64
	var empty, valid int
	var st ExtentState
	err := c.db.QueryRowContext(ctx, `SELECT minx, miny, maxx, maxy, empty, version, valid FROM feature_extent WHERE collection = ?`, c.name).
		Scan(&minx, &miny, &maxx, &maxy, &empty, &st.Version, &valid)
	if err == sql.ErrNoRows {
		return st, nil
	}
	if err != nil {
		return st, feature.NewStoreError("load extent", err)
	}
	if valid == 0 {
		return st, nil
	}
	if empty != 0 {
		st.Bound, st.Valid = EmptyBound(), true
		return st, nil
	}
	if !minx.Valid || !miny.Valid || !maxx.Valid || !maxy.Valid {
		return st, nil
	}
	st.Bound = orb.Bound{Min: orb.Point{minx.Float64, miny.Float64}, Max: orb.Point{maxx.Float64, maxy.Float64}}
	st.Valid = true
	return st, nil
}

// SaveExtent persists b as the envelope at version. It reports false without
// error when the collection has moved past version.
func (c *Collection) SaveExtent(ctx context.Context, b orb.Bound, version int64) (bool, error) {
	var minx, miny, maxx, maxy any
	empty := 1
	if !IsEmptyBound(b) {
		minx, miny, maxx, maxy = b.Min.X(), b.Min.Y(), b.Max.X(), b.Max.Y()
		empty = 0
	}
	res, err := c.db.ExecContext(ctx, `INSERT INTO feature_extent(collection, minx, miny, maxx, maxy, empty, version, valid)
VALUES(?, ?, ?, ?, ?, ?, ?, 1)
ON CONFLICT(collection) DO UPDATE SET
    minx = excluded.minx, miny = excluded.miny, maxx = excluded.maxx, maxy = excluded.maxy,
    empty = excluded.empty, valid = 1
WHERE feature_extent.version = excluded.version`,
		c.name, minx, miny, maxx, maxy, empty, version)
	if err != nil {
		return false, feature.NewStoreError("save extent", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, feature.NewStoreError("save extent", err)
	}
	return n > 0, nil
}

// ResetExtent invalidates the persisted envelope; a computation already in
// flight will not save its result.
func (c *Collection) ResetExtent(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `UPDATE feature_extent SET version = version + 1, valid = 0 WHERE collection = ?`, c.name); err != nil {
		return feature.NewStoreError("reset extent", fmt.Errorf("%s: %w", c.name, err))
	}
	InvalidateExtent(c.name)
	return nil
}
