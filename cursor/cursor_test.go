package cursor

import (
	"errors"
	"fmt"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/geofeat/feature"
	"github.com/viant/geofeat/filter"
)

// tracked is a native-like source that counts releases and can fail after
// producing a given number of records.
type tracked struct {
	features []*feature.Feature
	failAt   int
	err      error
	pos      int
	releases int
}

func (s *tracked) reader() Reader {
	return FromFunc(func() (*feature.Feature, bool, error) {
		if s.err != nil && s.pos == s.failAt {
			return nil, false, &feature.StoreError{Op: "next", Err: s.err}
		}
		if s.pos >= len(s.features) {
			return nil, false, nil
		}
		f := s.features[s.pos]
		s.pos++
		return f, true, nil
	}, func() error {
		s.releases++
		return nil
	})
}

func points(n int) []*feature.Feature {
	out := make([]*feature.Feature, n)
	for i := range out {
		out[i] = feature.New(fmt.Sprintf("f%d", i+1), orb.Point{float64(i), float64(i)})
	}
	return out
}

func ids(t *testing.T, r Reader) []string {
	t.Helper()
	features, err := Collect(r)
	require.NoError(t, err)
	out := make([]string, len(features))
	for i, f := range features {
		out[i] = f.ID
	}
	return out
}

func TestSource_NextRequiresHasNext(t *testing.T) {
	src := &tracked{features: points(2)}
	r := src.reader()
	_, err := r.Next()
	assert.ErrorIs(t, err, feature.ErrNoRecord)
	assert.ErrorIs(t, err, feature.ErrMisuse)

	ok, err := r.HasNext()
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = r.HasNext()
	require.NoError(t, err)
	require.True(t, ok, "HasNext must not advance")
	f, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "f1", f.ID)
	_, err = r.Next()
	assert.ErrorIs(t, err, feature.ErrNoRecord)
	require.NoError(t, r.Close())
}

func TestClose_Idempotent(t *testing.T) {
	src := &tracked{features: points(3)}
	r := Take(Skip(Where(Intersecting(src.reader(), orb.Bound{Max: orb.Point{10, 10}}), filter.True), 1), 1)
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.Equal(t, 1, src.releases, "never-advanced cursor must still release once")

	_, err := r.HasNext()
	assert.ErrorIs(t, err, feature.ErrCursorClosed)
	_, err = r.Next()
	assert.ErrorIs(t, err, feature.ErrCursorClosed)
}

func TestClose_AfterExhaustion(t *testing.T) {
	src := &tracked{features: points(2)}
	r := Where(src.reader(), filter.MustCompile(`id != "f1"`))
	assert.Equal(t, []string{"f2"}, ids(t, r))
	require.NoError(t, r.Close())
	assert.Equal(t, 1, src.releases)
}

func TestDecorators(t *testing.T) {
	inside := orb.Bound{Min: orb.Point{2, 2}, Max: orb.Point{6, 6}}
	testCases := []struct {
		description string
		build       func(Reader) Reader
		want        []string
	}{
		{description: "intersecting", build: func(r Reader) Reader { return Intersecting(r, inside) }, want: []string{"f3", "f4", "f5", "f6", "f7"}},
		{description: "where", build: func(r Reader) Reader { return Where(r, filter.MustCompile(`id == "f4"`)) }, want: []string{"f4"}},
		{description: "skip", build: func(r Reader) Reader { return Skip(r, 8) }, want: []string{"f9", "f10"}},
		{description: "skip past end", build: func(r Reader) Reader { return Skip(r, 20) }, want: []string{}},
		{description: "take", build: func(r Reader) Reader { return Take(r, 2) }, want: []string{"f1", "f2"}},
		{description: "take zero", build: func(r Reader) Reader { return Take(r, 0) }, want: []string{}},
		{description: "offset and limit", build: func(r Reader) Reader { return Take(Skip(r, 2), 2) }, want: []string{"f3", "f4"}},
		{description: "limit applies to filtered stream", build: func(r Reader) Reader {
			return Take(Skip(Intersecting(r, inside), 1), 3)
		}, want: []string{"f4", "f5", "f6"}},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			src := &tracked{features: points(10)}
			got := ids(t, tc.build(src.reader()))
			if len(tc.want) == 0 {
				assert.Empty(t, got)
			} else {
				assert.Equal(t, tc.want, got)
			}
			assert.Equal(t, 1, src.releases)
		})
	}
}

func TestDecorators_DropFeaturesWithoutGeometry(t *testing.T) {
	features := []*feature.Feature{feature.New("a", nil), feature.New("b", orb.Point{1, 1})}
	got := ids(t, Intersecting(FromSlice(features), orb.Bound{Max: orb.Point{2, 2}}))
	assert.Equal(t, []string{"b"}, got)
}

func TestDecorators_PropagateStoreError(t *testing.T) {
	boom := errors.New("connection reset")
	src := &tracked{features: points(5), failAt: 3, err: boom}
	r := Take(Skip(Where(src.reader(), filter.True), 1), 10)

	var seen []string
	var err error
	for {
		var ok bool
		ok, err = r.HasNext()
		if err != nil || !ok {
			break
		}
		f, nerr := r.Next()
		require.NoError(t, nerr)
		seen = append(seen, f.ID)
	}
	require.Error(t, err)
	assert.True(t, feature.IsStoreError(err))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"f2", "f3"}, seen)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.Equal(t, 1, src.releases)
}

func TestWhere_EvalErrorSurfaces(t *testing.T) {
	r := Where(FromSlice(points(1)), filter.MustCompile(`properties.missing == "x"`))
	_, err := r.HasNext()
	require.Error(t, err)
	require.NoError(t, r.Close())
}

type recordingSink struct {
	updated []string
	removed []string
	err     error
}

func (s *recordingSink) Update(f *feature.Feature) error {
	if s.err != nil {
		return s.err
	}
	s.updated = append(s.updated, f.ID)
	return nil
}

func (s *recordingSink) Remove(f *feature.Feature) error {
	s.removed = append(s.removed, f.ID)
	return nil
}

func TestUpdatable(t *testing.T) {
	src := &tracked{features: points(3)}
	sink := &recordingSink{}
	w := Updatable(Skip(src.reader(), 1), sink)

	assert.ErrorIs(t, w.Write(), feature.ErrNotPositioned)

	for {
		ok, err := w.HasNext()
		require.NoError(t, err)
		if !ok {
			break
		}
		f, err := w.Next()
		require.NoError(t, err)
		if f.ID == "f2" {
			f.Put("touched", true)
			require.NoError(t, w.Write())
		} else {
			require.NoError(t, w.Remove())
			assert.ErrorIs(t, w.Remove(), feature.ErrNotPositioned)
		}
	}
	assert.Equal(t, []string{"f2"}, sink.updated)
	assert.Equal(t, []string{"f3"}, sink.removed)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.Equal(t, 1, src.releases)
	assert.ErrorIs(t, w.Write(), feature.ErrCursorClosed)
}

type recordingInserter struct {
	inserted []*feature.Feature
	closes   int
}

func (i *recordingInserter) Insert(f *feature.Feature) error {
	i.inserted = append(i.inserted, f)
	return nil
}

func (i *recordingInserter) Close() error {
	i.closes++
	return nil
}

func TestAppending(t *testing.T) {
	ins := &recordingInserter{}
	n := 0
	a := Appending(ins, func() string { n++; return fmt.Sprintf("new-%d", n) })

	for i := 0; i < 2; i++ {
		ok, err := a.HasNext()
		require.NoError(t, err)
		require.True(t, ok)
		f, err := a.Next()
		require.NoError(t, err)
		assert.Empty(t, f.Properties, "append cursors hand out blank records")
		assert.Nil(t, f.Geometry)
		f.Geometry = orb.Point{float64(i), 0}
		require.NoError(t, a.Write())
		assert.ErrorIs(t, a.Write(), feature.ErrNotPositioned)
	}
	require.Len(t, ins.inserted, 2)
	assert.Equal(t, "new-1", ins.inserted[0].ID)

	require.NoError(t, a.Close())
	require.NoError(t, a.Close())
	assert.Equal(t, 1, ins.closes)
	_, err := a.HasNext()
	assert.ErrorIs(t, err, feature.ErrCursorClosed)
}

func TestAll_BreakCloses(t *testing.T) {
	src := &tracked{features: points(5)}
	var got []string
	for f, err := range All(src.reader()) {
		require.NoError(t, err)
		got = append(got, f.ID)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"f1", "f2"}, got)
	assert.Equal(t, 1, src.releases)
}

func TestAll_YieldsCloseError(t *testing.T) {
	closeErr := errors.New("release failed")
	features := points(2)
	pos := 0
	r := FromFunc(func() (*feature.Feature, bool, error) {
		if pos >= len(features) {
			return nil, false, nil
		}
		pos++
		return features[pos-1], true, nil
	}, func() error { return closeErr })

	var got []string
	var errs []error
	for f, err := range All(r) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		got = append(got, f.ID)
	}
	assert.Equal(t, []string{"f1", "f2"}, got)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], closeErr)
}

func TestCount(t *testing.T) {
	src := &tracked{features: points(7)}
	n, err := Count(Skip(src.reader(), 2))
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
	assert.Equal(t, 1, src.releases)
}
