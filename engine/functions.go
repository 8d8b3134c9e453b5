package engine

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	sqlite "modernc.org/sqlite"
)

var (
	registerOnce sync.Once

	listenersMu sync.RWMutex
	listeners   []func(collection string)
)

// RegisterFunctions registers geojson_intersects and feat_invalidate with the
// driver so they are available on new connections opened after this call.
// Note: existing open connections will not see new functions.
func RegisterFunctions() {
	registerOnce.Do(func() {
		_ = sqlite.RegisterDeterministicScalarFunction("geojson_intersects", 5, geoJSONIntersectsImpl)
		_ = sqlite.RegisterScalarFunction("feat_invalidate", 1, invalidateImpl)
	})
}

// OnInvalidate subscribes fn to feat_invalidate calls issued by collection triggers.
func OnInvalidate(fn func(collection string)) {
	listenersMu.Lock()
	listeners = append(listeners, fn)
	listenersMu.Unlock()
}

// invalidateImpl implements SQL scalar feat_invalidate(collection TEXT) → INT.
func invalidateImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 1 {
		return int64(0), nil
	}
	name, ok := asString(args[0])
	if !ok {
		return int64(0), nil
	}
	listenersMu.RLock()
	defer listenersMu.RUnlock()
	for _, fn := range listeners {
		fn(name)
	}
	return int64(len(listeners)), nil
}

// geoJSONIntersectsImpl implements
// geojson_intersects(doc TEXT, minx, miny, maxx, maxy REAL) → INT.
// It returns 1 when the document's geometry envelope intersects the box.
func geoJSONIntersectsImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 5 {
		return nil, fmt.Errorf("geojson_intersects: expected 5 arguments, got %d", len(args))
	}
	doc, ok := asString(args[0])
	if !ok {
		return int64(0), nil
	}
	var box [4]float64
	for i := range box {
		v, err := asFloat(args[i+1])
		if err != nil {
			return nil, fmt.Errorf("geojson_intersects: %w", err)
		}
		box[i] = v
	}
	var parsed struct {
		Geometry *geojson.Geometry `json:"geometry"`
	}
	if err := json.Unmarshal([]byte(doc), &parsed); err != nil || parsed.Geometry == nil {
		return int64(0), nil
	}
	g := parsed.Geometry.Geometry()
	if g == nil {
		return int64(0), nil
	}
	query := orb.Bound{Min: orb.Point{box[0], box[1]}, Max: orb.Point{box[2], box[3]}}
	if g.Bound().Intersects(query) {
		return int64(1), nil
	}
	return int64(0), nil
}

func asString(v driver.Value) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case []byte:
		return string(val), true
	default:
		return "", false
	}
}

func asFloat(v driver.Value) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case int64:
		return float64(val), nil
	case []byte:
		return strconv.ParseFloat(string(val), 64)
	case string:
		return strconv.ParseFloat(val, 64)
	default:
		return 0, fmt.Errorf("unsupported coordinate type %T", v)
	}
}
