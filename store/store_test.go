package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/geofeat/engine"
	"github.com/viant/geofeat/featsync"
	"github.com/viant/geofeat/feature"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := engine.Open(engine.DSN(filepath.Join(t.TempDir(), "store.sqlite")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func pointDoc(i int) Document {
	b := orb.Point{float64(i), float64(i)}.Bound()
	return Document{
		ID:       fmt.Sprintf("f%d", i),
		Body:     fmt.Sprintf(`{"id":"f%d"}`, i),
		Envelope: &b,
	}
}

func seed(t *testing.T, c *Collection, n int) {
	t.Helper()
	docs := make([]Document, 0, n)
	for i := 1; i <= n; i++ {
		docs = append(docs, pointDoc(i))
	}
	require.NoError(t, c.InsertMany(context.Background(), docs))
}

func ids(t *testing.T, rows *Rows) []string {
	t.Helper()
	defer rows.Close()
	var out []string
	for {
		doc, ok, err := rows.Next()
		require.NoError(t, err)
		if !ok {
			return out
		}
		out = append(out, doc.ID)
	}
}

func intPtr(v int) *int { return &v }

func TestStore_Collections(t *testing.T) {
	ctx := context.Background()
	s, err := New(openTestDB(t))
	require.NoError(t, err)

	_, err = s.CreateCollection(ctx, "roads")
	require.NoError(t, err)
	_, err = s.CreateCollection(ctx, "rivers")
	require.NoError(t, err)
	_, err = s.CreateCollection(ctx, "roads")
	require.NoError(t, err, "create is idempotent")

	names, err := s.Collections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"roads", "rivers"}, names)

	_, ok, err := s.Collection(ctx, "lakes")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.DropCollection(ctx, "roads"))
	names, err = s.Collections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"rivers"}, names)

	_, err = s.CreateCollection(ctx, "bad name")
	assert.Error(t, err)
}

func TestCollection_CRUD(t *testing.T) {
	ctx := context.Background()
	s, err := New(openTestDB(t))
	require.NoError(t, err)
	c, err := s.CreateCollection(ctx, "roads")
	require.NoError(t, err)

	require.NoError(t, c.Insert(ctx, pointDoc(1)))
	assert.Error(t, c.Insert(ctx, pointDoc(1)), "duplicate id")

	doc, ok, err := c.Get(ctx, "f1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"id":"f1"}`, doc.Body)
	require.NotNil(t, doc.Envelope)
	assert.Equal(t, orb.Point{1, 1}, doc.Envelope.Min)

	doc.Body = `{"id":"f1","v":2}`
	doc.Envelope = nil
	require.NoError(t, c.Replace(ctx, doc))
	doc, ok, err = c.Get(ctx, "f1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"id":"f1","v":2}`, doc.Body)
	assert.Nil(t, doc.Envelope)

	assert.ErrorIs(t, c.Replace(ctx, Document{ID: "missing", Body: "{}"}), ErrNotFound)
	require.NoError(t, c.Delete(ctx, "f1"))
	assert.ErrorIs(t, c.Delete(ctx, "f1"), ErrNotFound)

	n, err := c.Count(ctx, Predicate{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCollection_Find(t *testing.T) {
	ctx := context.Background()
	s, err := New(openTestDB(t))
	require.NoError(t, err)
	c, err := s.CreateCollection(ctx, "points")
	require.NoError(t, err)
	seed(t, c, 6)

	inBox := Predicate{SQL: `maxx >= ? AND minx <= ?`, Args: []any{2.0, 5.0}}
	testCases := []struct {
		description string
		opts        FindOptions
		expect      []string
	}{
		{description: "all", expect: []string{"f1", "f2", "f3", "f4", "f5", "f6"}},
		{description: "where", opts: FindOptions{Where: inBox}, expect: []string{"f2", "f3", "f4", "f5"}},
		{description: "skip only", opts: FindOptions{Skip: intPtr(4)}, expect: []string{"f5", "f6"}},
		{description: "limit only", opts: FindOptions{Limit: intPtr(2)}, expect: []string{"f1", "f2"}},
		{description: "skip and limit", opts: FindOptions{Skip: intPtr(1), Limit: intPtr(2)}, expect: []string{"f2", "f3"}},
		{description: "where skip limit", opts: FindOptions{Where: inBox, Skip: intPtr(1), Limit: intPtr(2)}, expect: []string{"f3", "f4"}},
		{description: "skip past end", opts: FindOptions{Skip: intPtr(10)}},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			rows, err := c.Find(ctx, tc.opts)
			require.NoError(t, err)
			assert.Equal(t, tc.expect, ids(t, rows))
		})
	}

	n, err := c.Count(ctx, inBox)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
}

func TestRows_CloseIdempotent(t *testing.T) {
	ctx := context.Background()
	s, err := New(openTestDB(t))
	require.NoError(t, err)
	c, err := s.CreateCollection(ctx, "points")
	require.NoError(t, err)
	seed(t, c, 2)

	rows, err := c.Find(ctx, FindOptions{})
	require.NoError(t, err)
	require.NoError(t, rows.Close())
	require.NoError(t, rows.Close())
	_, ok, err := rows.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCollection_ExtentInvalidation(t *testing.T) {
	ctx := context.Background()
	s, err := New(openTestDB(t))
	require.NoError(t, err)
	c, err := s.CreateCollection(ctx, "extent_iv")
	require.NoError(t, err)

	b, err := c.CachedExtent(ctx, c.Extent)
	require.NoError(t, err)
	assert.True(t, IsEmptyBound(b))

	seed(t, c, 3)
	st, err := c.LoadExtent(ctx)
	require.NoError(t, err)
	assert.False(t, st.Valid, "insert trigger must invalidate the persisted extent")

	calls := 0
	compute := func(ctx context.Context) (orb.Bound, error) {
		calls++
		return c.Extent(ctx)
	}
	b, err = c.CachedExtent(ctx, compute)
	require.NoError(t, err)
	assert.Equal(t, orb.Bound{Min: orb.Point{1, 1}, Max: orb.Point{3, 3}}, b)

	persisted, err := c.LoadExtent(ctx)
	require.NoError(t, err)
	require.True(t, persisted.Valid)
	assert.Equal(t, b, persisted.Bound)

	_, err = c.CachedExtent(ctx, compute)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "second call is served from the persisted row")

	require.NoError(t, c.Delete(ctx, "f3"))
	b, err = c.CachedExtent(ctx, compute)
	require.NoError(t, err)
	assert.Equal(t, orb.Bound{Min: orb.Point{1, 1}, Max: orb.Point{2, 2}}, b)
	assert.Equal(t, 2, calls)

	require.NoError(t, c.ResetExtent(ctx))
	st, err = c.LoadExtent(ctx)
	require.NoError(t, err)
	assert.False(t, st.Valid)
}

func TestCollection_ExtentDuringWriteTransaction(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	s, err := New(db)
	require.NoError(t, err)
	c, err := s.CreateCollection(ctx, "extent_tx")
	require.NoError(t, err)
	require.NoError(t, c.Insert(ctx, pointDoc(1)))

	b, err := c.CachedExtent(ctx, c.Extent)
	require.NoError(t, err)
	require.Equal(t, orb.Point{1, 1}, b.Max)

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()
	_, err = tx.ExecContext(ctx, `INSERT INTO _feat_extent_tx(id, doc, minx, miny, maxx, maxy) VALUES('f50', '{}', 50, 50, 50, 50)`)
	require.NoError(t, err)

	b, err = c.CachedExtent(ctx, c.Extent)
	require.NoError(t, err)
	assert.Equal(t, orb.Point{1, 1}, b.Max, "uncommitted rows are not visible")

	require.NoError(t, tx.Commit())
	b, err = c.CachedExtent(ctx, c.Extent)
	require.NoError(t, err)
	assert.Equal(t, orb.Point{50, 50}, b.Max)
}

func TestCollection_SaveExtentAfterChange(t *testing.T) {
	ctx := context.Background()
	s, err := New(openTestDB(t))
	require.NoError(t, err)
	c, err := s.CreateCollection(ctx, "extent_stale")
	require.NoError(t, err)
	require.NoError(t, c.Insert(ctx, pointDoc(1)))

	st, err := c.LoadExtent(ctx)
	require.NoError(t, err)
	stale, err := c.Extent(ctx)
	require.NoError(t, err)

	require.NoError(t, c.Insert(ctx, pointDoc(7)))
	saved, err := c.SaveExtent(ctx, stale, st.Version)
	require.NoError(t, err)
	assert.False(t, saved, "an envelope computed before a write must not be saved")

	st, err = c.LoadExtent(ctx)
	require.NoError(t, err)
	assert.False(t, st.Valid)

	b, err := c.CachedExtent(ctx, c.Extent)
	require.NoError(t, err)
	assert.Equal(t, orb.Bound{Min: orb.Point{1, 1}, Max: orb.Point{7, 7}}, b)
}

func TestStore_ChangeLog(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	s, err := New(db, WithChangeLog(true))
	require.NoError(t, err)
	c, err := s.CreateCollection(ctx, "logged")
	require.NoError(t, err)

	require.NoError(t, c.Insert(ctx, pointDoc(1)))
	require.NoError(t, c.Replace(ctx, pointDoc(1)))
	require.NoError(t, c.Delete(ctx, "f1"))

	entries, err := featsync.Changes(ctx, db, "logged", 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	var ops []string
	for i, e := range entries {
		assert.EqualValues(t, i+1, e.SCN)
		assert.Equal(t, "f1", e.FeatureID)
		ops = append(ops, e.Op)
	}
	assert.Equal(t, []string{"insert", "update", "delete"}, ops)
	assert.Contains(t, string(entries[0].Payload), `"f1"`)

	tail, err := featsync.Changes(ctx, db, "logged", 2, 0)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, "delete", tail[0].Op)

	last, err := featsync.LastSCN(ctx, db, "logged")
	require.NoError(t, err)
	assert.EqualValues(t, 3, last)
}

func TestCollection_InsertRequiresID(t *testing.T) {
	ctx := context.Background()
	s, err := New(openTestDB(t))
	require.NoError(t, err)
	c, err := s.CreateCollection(ctx, "no_id")
	require.NoError(t, err)

	err = c.Insert(ctx, Document{Body: `{}`})
	assert.ErrorIs(t, err, ErrNoID)
	assert.False(t, feature.IsStoreError(err))

	err = c.InsertMany(ctx, []Document{pointDoc(1), {Body: `{}`}})
	assert.ErrorIs(t, err, ErrNoID)
	n, err := c.Count(ctx, Predicate{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, n, "a rejected batch is rolled back")
}
