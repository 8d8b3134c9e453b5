package store

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/viant/geofeat/featsync"
)

const tablePrefix = "_feat_"

const extentSchema = `
CREATE TABLE IF NOT EXISTS feature_extent (
    collection TEXT PRIMARY KEY,
    minx REAL,
    miny REAL,
    maxx REAL,
    maxy REAL,
    empty INTEGER NOT NULL DEFAULT 0,
    version INTEGER NOT NULL DEFAULT 0,
    valid INTEGER NOT NULL DEFAULT 0
);
`

var namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// EnsureSchema creates the shared feature_extent table in the provided
// database if it does not already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(extentSchema)
	return err
}

// TableName returns the table backing a collection.
func TableName(collection string) string { return tablePrefix + collection }

// CollectionName reverses TableName; it returns "" for foreign tables.
func CollectionName(table string) string {
	if !strings.HasPrefix(table, tablePrefix) {
		return ""
	}
	return strings.TrimPrefix(table, tablePrefix)
}

// ValidateName rejects names that are not plain identifiers; collection names
// are interpolated into SQL.
func ValidateName(collection string) error {
	if !namePattern.MatchString(collection) {
		return fmt.Errorf("store: invalid collection name %q", collection)
	}
	return nil
}

func collectionDDL(table string) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    id   TEXT PRIMARY KEY,
    doc  TEXT NOT NULL,
    minx REAL,
    miny REAL,
    maxx REAL,
    maxy REAL
);
CREATE INDEX IF NOT EXISTS %s_env ON %s(minx, maxx, miny, maxy);
`, table, table, table)
}

// invalidationTriggers advance the persisted extent version within the
// writing transaction and notify the process through feat_invalidate.
func invalidationTriggers(collection string) []string {
	table := TableName(collection)
	lit := quoteLiteral(collection)
	body := `INSERT INTO feature_extent(collection, version, valid) VALUES(` + lit + `, 1, 0)
    ON CONFLICT(collection) DO UPDATE SET version = version + 1, valid = 0;
    SELECT feat_invalidate(` + lit + `);`
	return []string{
		fmt.Sprintf(`CREATE TRIGGER IF NOT EXISTS %s_ins AFTER INSERT ON %s BEGIN %s END;`, table, table, body),
		fmt.Sprintf(`CREATE TRIGGER IF NOT EXISTS %s_upd AFTER UPDATE ON %s BEGIN %s END;`, table, table, body),
		fmt.Sprintf(`CREATE TRIGGER IF NOT EXISTS %s_del AFTER DELETE ON %s BEGIN %s END;`, table, table, body),
	}
}

func changeLogDDL(collection string) []string {
	stmts := []string{featsync.LogTableDDL(), featsync.SeqTableDDL()}
	return append(stmts, featsync.SQLiteChangeLogTriggers(collection, TableName(collection), "", "")...)
}

// quoteLiteral returns SQL string literal with single quotes escaped for safe embedding.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
