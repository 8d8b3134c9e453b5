package featvtab

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/viant/geofeat/cursor"
	"github.com/viant/geofeat/dataset"
	"github.com/viant/geofeat/filter"
	"github.com/viant/geofeat/mapper"
	"github.com/viant/geofeat/query"
	"modernc.org/sqlite/vtab"
)

const (
	colID = iota
	colDoc
	colBBox
	colFilter
)

const (
	idxBBox = 1 << iota
	idxFilter
)

// Module implements vtab.Module for the feat virtual table.
type Module struct {
	db   *sql.DB
	opts []dataset.Option
}

// Table represents a single feat virtual table bound to one dataset.
type Table struct {
	db      *sql.DB
	opts    []dataset.Option
	dataset string
}

type row struct {
	id  string
	doc string
}

// Cursor scans features of a dataset query.
type Cursor struct {
	table *Table
	rows  []row
	pos   int
}

// Register registers the feat virtual table module with the provided *sql.DB.
// opts configure the datasets the tables read from.
func Register(db *sql.DB, opts ...dataset.Option) error {
	mod := &Module{db: db, opts: opts}
	if err := vtab.RegisterModule(db, "feat", mod); err != nil {
		if !strings.Contains(err.Error(), "already registered") {
			return err
		}
	}
	return nil
}

// Create initializes a feat table; the first module argument names the dataset.
func (m *Module) Create(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.Connect(ctx, args)
}

// Connect attaches to an existing feat table.
func (m *Module) Connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	if len(args) < 4 {
		return nil, fmt.Errorf("feat: expected USING feat(<dataset>), got %d args", len(args))
	}
	if err := ctx.EnableConstraintSupport(); err != nil {
		return nil, fmt.Errorf("feat: EnableConstraintSupport failed: %w", err)
	}
	if err := ctx.Declare(fmt.Sprintf("CREATE TABLE %s(id TEXT, doc TEXT, bbox HIDDEN, filter HIDDEN)", args[2])); err != nil {
		return nil, err
	}
	name := strings.Trim(strings.TrimSpace(args[3]), `'"`)
	return &Table{db: m.db, opts: m.opts, dataset: name}, nil
}

// BestIndex consumes bbox MATCH and filter = constraints; both are evaluated
// by the dataset, so SQLite must not re-check them.
func (t *Table) BestIndex(info *vtab.IndexInfo) error {
	var bbox, flt *vtab.Constraint
	for i := range info.Constraints {
		c := &info.Constraints[i]
		if !c.Usable {
			continue
		}
		switch {
		case c.Column == colBBox && (c.Op == vtab.OpMATCH || c.Op == vtab.OpEQ):
			bbox = c
		case c.Column == colFilter && c.Op == vtab.OpEQ:
			flt = c
		}
	}
	next := 0
	if bbox != nil {
		bbox.ArgIndex = next
		bbox.Omit = true
		next++
		info.IdxNum |= idxBBox
	}
	if flt != nil {
		flt.ArgIndex = next
		flt.Omit = true
		info.IdxNum |= idxFilter
	}
	return nil
}

// Open allocates a new cursor.
func (t *Table) Open() (vtab.Cursor, error) { return &Cursor{table: t}, nil }

// Disconnect cleans up per-connection resources.
func (t *Table) Disconnect() error { return nil }

// Destroy leaves the dataset untouched.
func (t *Table) Destroy() error { return nil }

// Filter runs the dataset query described by idxNum/vals.
func (c *Cursor) Filter(idxNum int, _ string, vals []vtab.Value) error {
	c.rows = nil
	c.pos = 0
	var opts []query.Option
	arg := 0
	if idxNum&idxBBox != 0 {
		if arg >= len(vals) {
			return fmt.Errorf("feat: missing bbox argument")
		}
		b, err := parseBBox(vals[arg])
		if err != nil {
			return err
		}
		opts = append(opts, query.WithBounds(b))
		arg++
	}
	if idxNum&idxFilter != 0 {
		if arg >= len(vals) {
			return fmt.Errorf("feat: missing filter argument")
		}
		expr, err := asString(vals[arg], "filter")
		if err != nil {
			return err
		}
		flt, err := filter.Compile(expr)
		if err != nil {
			return err
		}
		opts = append(opts, query.WithFilter(flt))
	}
	rows, err := c.table.read(context.Background(), query.New(opts...))
	if err != nil {
		return err
	}
	c.rows = rows
	return nil
}

func (t *Table) read(ctx context.Context, q query.Query) ([]row, error) {
	ws, err := dataset.New(t.db, t.opts...)
	if err != nil {
		return nil, err
	}
	ds, err := ws.Get(ctx, t.dataset)
	if err != nil {
		return nil, err
	}
	defer ds.Close()
	r, err := ds.Read(ctx, q)
	if err != nil {
		return nil, err
	}
	var out []row
	for f, err := range cursor.All(r) {
		if err != nil {
			return nil, err
		}
		doc, err := mapper.MarshalGeoJSON(f)
		if err != nil {
			return nil, err
		}
		out = append(out, row{id: f.ID, doc: string(doc)})
	}
	return out, nil
}

// Next advances the cursor.
func (c *Cursor) Next() error {
	if c.pos < len(c.rows) {
		c.pos++
	}
	return nil
}

// Eof reports end-of-rows.
func (c *Cursor) Eof() bool { return c.pos >= len(c.rows) }

// Column returns the value of a column in the current row.
func (c *Cursor) Column(col int) (vtab.Value, error) {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return nil, fmt.Errorf("feat: Column out of range (pos=%d,len=%d)", c.pos, len(c.rows))
	}
	switch col {
	case colID:
		return c.rows[c.pos].id, nil
	case colDoc:
		return c.rows[c.pos].doc, nil
	case colBBox, colFilter:
		return nil, nil
	}
	return nil, fmt.Errorf("feat: unsupported column %d", col)
}

// Rowid returns the current rowid.
func (c *Cursor) Rowid() (int64, error) {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return 0, fmt.Errorf("feat: Rowid out of range (pos=%d,len=%d)", c.pos, len(c.rows))
	}
	return int64(c.pos + 1), nil
}

// Close releases resources.
func (c *Cursor) Close() error { c.rows = nil; c.pos = 0; return nil }

// parseBBox accepts 'minx,miny,maxx,maxy' or a JSON array of four numbers.
func parseBBox(v vtab.Value) (orb.Bound, error) {
	raw, err := asString(v, "bbox")
	if err != nil {
		return orb.Bound{}, err
	}
	raw = strings.Trim(strings.TrimSpace(raw), "[]")
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return orb.Bound{}, fmt.Errorf("feat: bbox must be minx,miny,maxx,maxy")
	}
	var c [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("feat: invalid bbox coordinate %q: %w", p, err)
		}
		c[i] = f
	}
	return orb.Bound{Min: orb.Point{c[0], c[1]}, Max: orb.Point{c[2], c[3]}}, nil
}

func asString(v vtab.Value, column string) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case []byte:
		return string(val), nil
	case nil:
		return "", fmt.Errorf("feat: %s is nil", column)
	default:
		return "", fmt.Errorf("feat: unsupported %s type %T", column, v)
	}
}
