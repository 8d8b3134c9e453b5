package featadmin

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/viant/geofeat/dataset"
	"modernc.org/sqlite/vtab"
)

// Module provides administrative operations via a virtual table.
// Usage:
//
//	CREATE VIRTUAL TABLE feat_admin USING feat_admin(op);
//	SELECT op FROM feat_admin WHERE op MATCH 'roads'; -- rebuild extent
//
// Returns a single row with op='reindexed:<count>' on success.
type Module struct {
	db   *sql.DB
	opts []dataset.Option
}

type Table struct {
	db   *sql.DB
	opts []dataset.Option
}

type Cursor struct {
	table *Table
	rows  []string
	pos   int
}

// Register installs the feat_admin module. opts configure the datasets it
// rebuilds, e.g. the mapper that computes their envelope.
func Register(db *sql.DB, opts ...dataset.Option) error {
	if err := vtab.RegisterModule(db, "feat_admin", &Module{db: db, opts: opts}); err != nil {
		if !strings.Contains(err.Error(), "already registered") {
			return err
		}
	}
	return nil
}

func (m *Module) Create(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.Connect(ctx, args)
}

func (m *Module) Connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	if len(args) < 3 {
		return nil, fmt.Errorf("feat_admin: need at least 3 args")
	}
	// Single TEXT column `op` reporting results.
	if err := ctx.Declare(fmt.Sprintf("CREATE TABLE %s(op)", args[2])); err != nil {
		return nil, err
	}
	return &Table{db: m.db, opts: m.opts}, nil
}

func (t *Table) BestIndex(info *vtab.IndexInfo) error {
	for i := range info.Constraints {
		c := &info.Constraints[i]
		if !c.Usable {
			continue
		}
		if c.Column == 0 && c.Op == vtab.OpMATCH {
			c.ArgIndex = 1
			info.IdxNum = 1
			break
		}
	}
	return nil
}

func (t *Table) Open() (vtab.Cursor, error) { return &Cursor{table: t}, nil }
func (t *Table) Disconnect() error          { return nil }
func (t *Table) Destroy() error             { return nil }

func (c *Cursor) Filter(idxNum int, idxStr string, vals []vtab.Value) error {
	c.rows = nil
	c.pos = 0
	if idxNum != 1 || len(vals) == 0 || vals[0] == nil {
		return nil
	}
	name, ok := vals[0].(string)
	if !ok {
		return fmt.Errorf("feat_admin: MATCH expects collection name as TEXT")
	}
	n, err := reindex(c.table.db, name, c.table.opts)
	if err != nil {
		return err
	}
	c.rows = []string{fmt.Sprintf("reindexed:%d", n)}
	return nil
}

func (c *Cursor) Next() error {
	if c.pos < len(c.rows) {
		c.pos++
	}
	return nil
}

func (c *Cursor) Eof() bool { return c.pos >= len(c.rows) }

func (c *Cursor) Column(col int) (vtab.Value, error) {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return nil, fmt.Errorf("feat_admin: Column out of range")
	}
	if col == 0 {
		return c.rows[c.pos], nil
	}
	return nil, nil
}

func (c *Cursor) Rowid() (int64, error) { return int64(c.pos + 1), nil }
func (c *Cursor) Close() error          { c.rows = nil; c.pos = 0; return nil }

// reindex drops and recomputes the persisted extent of a collection.
func reindex(db *sql.DB, name string, opts []dataset.Option) (int64, error) {
	ctx := context.Background()
	ws, err := dataset.New(db, opts...)
	if err != nil {
		return 0, err
	}
	ds, err := ws.Get(ctx, name)
	if err != nil {
		return 0, err
	}
	defer ds.Close()
	return ds.Rebuild(ctx)
}
