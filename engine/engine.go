package engine

import (
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

var memorySeq atomic.Uint64

// Open opens a SQLite database using the modernc.org/sqlite driver. SQL
// functions are registered first so every pooled connection sees them.
//
// For file-based databases, pass a path like "./db.sqlite" (see DSN). A bare
// ":memory:" gives each pooled connection its own empty database; use
// DSN(":memory:") to share one in-memory database across the pool.
func Open(dsn string) (*sql.DB, error) {
	RegisterFunctions()
	return sql.Open("sqlite", dsn)
}

// DSN returns a data source name for a database file with WAL journaling and
// a busy timeout, which lets a cursor keep reading while another connection
// rewrites records.
//
// ":memory:" maps to a new named shared-cache in-memory database. Its
// connections read uncommitted so an open cursor does not lock out writers;
// the database lives while the pool keeps a connection open.
func DSN(path string) string {
	if path == ":memory:" {
		return fmt.Sprintf("file:geofeat-mem-%d?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=read_uncommitted(1)", memorySeq.Add(1))
	}
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}
