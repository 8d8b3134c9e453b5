package featsync

import (
	"fmt"
	"strings"
)

const (
	// DefaultLogTable captures row-level SCN events for every collection.
	DefaultLogTable = "feature_change_log"

	// DefaultSeqTable stores the next SCN per collection.
	DefaultSeqTable = "feature_scn"
)

// LogTableDDL returns the DDL for feature_change_log.
func LogTableDDL() string {
	return `CREATE TABLE IF NOT EXISTS ` + DefaultLogTable + ` (
    collection TEXT NOT NULL,
    scn        INTEGER NOT NULL,
    op         TEXT NOT NULL,
    feature_id TEXT NOT NULL,
    payload    BLOB NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY(collection, scn)
);`
}

// SeqTableDDL returns the DDL for tracking the next SCN per collection.
func SeqTableDDL() string {
	return `CREATE TABLE IF NOT EXISTS ` + DefaultSeqTable + ` (
    collection TEXT PRIMARY KEY,
    next_scn   INTEGER NOT NULL
);`
}

// SQLiteChangeLogTriggers returns AFTER INSERT/UPDATE/DELETE triggers that
// record changes of table into the log under the collection name. Empty
// seqTable or logTable select the defaults.
func SQLiteChangeLogTriggers(collection, table, seqTable, logTable string) []string {
	if seqTable == "" {
		seqTable = DefaultSeqTable
	}
	if logTable == "" {
		logTable = DefaultLogTable
	}
	base := sanitizeIdentifier(table)
	name := quote(collection)
	payload := func(alias string) string {
		if alias == "OLD" {
			return `json_object('id', OLD.id)`
		}
		return fmt.Sprintf(`json_object('id', %[1]s.id, 'doc', %[1]s.doc)`, alias)
	}
	advance := fmt.Sprintf(`INSERT INTO %s(collection, next_scn)
    VALUES (%s, 1)
    ON CONFLICT(collection) DO UPDATE SET next_scn = next_scn + 1;`, seqTable, name)
	scnExpr := fmt.Sprintf(`(SELECT next_scn FROM %s WHERE collection = %s)`, seqTable, name)

	trigger := func(suffix, event, op, alias string) string {
		return fmt.Sprintf(`CREATE TRIGGER IF NOT EXISTS %s_%s AFTER %s ON %s
BEGIN
    %s
    INSERT INTO %s(collection, scn, op, feature_id, payload)
    VALUES (%s, %s, '%s', %s.id, %s);
END;`, base, suffix, event, table, advance, logTable, name, scnExpr, op, alias, payload(alias))
	}
	return []string{
		trigger("ai", "INSERT", "insert", "NEW"),
		trigger("au", "UPDATE", "update", "NEW"),
		trigger("ad", "DELETE", "delete", "OLD"),
	}
}

func sanitizeIdentifier(name string) string {
	if name == "" {
		return ""
	}
	replacer := strings.NewReplacer(".", "_", "-", "_")
	return replacer.Replace(name)
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
