package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/viant/geofeat/engine"
	"github.com/viant/geofeat/store"
)

// ErrNotFound is returned by Workspace.Get for an unknown dataset.
var ErrNotFound = errors.New("dataset: not found")

// Workspace hands out datasets stored in one SQLite database.
type Workspace struct {
	db      *sql.DB
	owned   bool
	store   *store.Store
	options options

	closeOnce sync.Once
	closeErr  error
}

// Open opens (or creates) the database file at path.
func Open(path string, opts ...Option) (*Workspace, error) {
	db, err := engine.Open(engine.DSN(path))
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	ws, err := New(db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	ws.owned = true
	return ws, nil
}

// New creates a workspace over an open database. The caller keeps ownership
// of db; it must have been opened with engine.Open.
func New(db *sql.DB, opts ...Option) (*Workspace, error) {
	o := newOptions(options{}, opts)
	s, err := store.New(db, store.WithChangeLog(o.changeLog))
	if err != nil {
		return nil, err
	}
	return &Workspace{db: db, store: s, options: o}, nil
}

// DB returns the underlying database.
func (w *Workspace) DB() *sql.DB { return w.db }

// Names lists the datasets in creation order.
func (w *Workspace) Names(ctx context.Context) ([]string, error) {
	return w.store.Collections(ctx)
}

// Get opens an existing dataset. opts override the workspace defaults.
func (w *Workspace) Get(ctx context.Context, name string, opts ...Option) (*Dataset, error) {
	coll, ok, err := w.store.Collection(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return newDataset(coll, newOptions(w.options, opts)), nil
}

// Create creates the dataset if needed and opens it.
func (w *Workspace) Create(ctx context.Context, name string, opts ...Option) (*Dataset, error) {
	coll, err := w.store.CreateCollection(ctx, name)
	if err != nil {
		return nil, err
	}
	w.options.logger.InfoContext(ctx, "dataset ready", "dataset", name)
	return newDataset(coll, newOptions(w.options, opts)), nil
}

// Drop deletes the dataset and everything stored in it.
func (w *Workspace) Drop(ctx context.Context, name string) error {
	return w.store.DropCollection(ctx, name)
}

// Close releases the database when the workspace opened it.
func (w *Workspace) Close() error {
	w.closeOnce.Do(func() {
		if w.owned {
			w.closeErr = w.db.Close()
		}
	})
	return w.closeErr
}
