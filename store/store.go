package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/viant/geofeat/feature"
)

// Option configures a Store.
type Option func(s *Store)

// WithChangeLog installs SCN change-log triggers on every collection the
// store creates.
func WithChangeLog(enabled bool) Option {
	return func(s *Store) { s.changeLog = enabled }
}

// Store manages feature collections in one SQLite database.
type Store struct {
	db        *sql.DB
	changeLog bool

	dbPathOnce sync.Once
	dbPath     string
}

// New creates a Store. It ensures the shared extent table exists in the
// provided database.
func New(db *sql.DB, opts ...Option) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("store: db is nil")
	}
	if err := EnsureSchema(db); err != nil {
		return nil, feature.NewStoreError("schema", err)
	}
	s := &Store{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB { return s.db }

// Collections lists collection names in creation order.
func (s *Store) Collections(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name LIKE '\_feat\_%' ESCAPE '\' ORDER BY rowid`)
	if err != nil {
		return nil, feature.NewStoreError("collections", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var table string
		if err := rows.Scan(&table); err != nil {
			return nil, feature.NewStoreError("collections", err)
		}
		if name := CollectionName(table); name != "" {
			out = append(out, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, feature.NewStoreError("collections", err)
	}
	return out, nil
}

// Collection returns an existing collection. ok is false when it does not exist.
func (s *Store) Collection(ctx context.Context, name string) (c *Collection, ok bool, err error) {
	if err := ValidateName(name); err != nil {
		return nil, false, err
	}
	var n int
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, TableName(name)).Scan(&n)
	if err != nil {
		return nil, false, feature.NewStoreError("lookup", err)
	}
	if n == 0 {
		return nil, false, nil
	}
	return s.newCollection(ctx, name), true, nil
}

// CreateCollection creates the collection table and its triggers when they do
// not exist yet, and returns the collection.
func (s *Store) CreateCollection(ctx context.Context, name string) (*Collection, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	stmts := []string{collectionDDL(TableName(name))}
	stmts = append(stmts, invalidationTriggers(name)...)
	if s.changeLog {
		stmts = append(stmts, changeLogDDL(name)...)
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return nil, feature.NewStoreError("create", err)
		}
	}
	return s.newCollection(ctx, name), nil
}

// DropCollection removes the collection table, its triggers and its persisted extent.
func (s *Store) DropCollection(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, TableName(name))); err != nil {
		return feature.NewStoreError("drop", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM feature_extent WHERE collection = ?`, name); err != nil {
		return feature.NewStoreError("drop", err)
	}
	InvalidateExtent(name)
	return nil
}

func (s *Store) newCollection(ctx context.Context, name string) *Collection {
	return &Collection{
		db:    s.db,
		name:  name,
		table: TableName(name),
		key:   cacheKey(s.cachedDbPath(ctx), name),
	}
}

// cachedDbPath resolves the main database file once; it keys extent caches so
// two databases with equally named collections do not collide.
func (s *Store) cachedDbPath(ctx context.Context) string {
	s.dbPathOnce.Do(func() {
		path, err := resolveDbPath(ctx, s.db)
		if err != nil || path == "" {
			path = fmt.Sprintf("db:%p", s.db)
		}
		s.dbPath = path
	})
	return s.dbPath
}

func resolveDbPath(ctx context.Context, db *sql.DB) (string, error) {
	rows, err := db.QueryContext(ctx, `SELECT name, file FROM pragma_database_list`)
	if err != nil {
		return "", err
	}
	defer rows.Close()
	for rows.Next() {
		var name, file string
		if err := rows.Scan(&name, &file); err != nil {
			return "", err
		}
		if name == "main" {
			return file, nil
		}
	}
	return "", rows.Err()
}
