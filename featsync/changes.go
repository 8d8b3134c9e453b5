package featsync

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Changes returns log entries of collection with SCN greater than since,
// ordered by SCN. limit <= 0 returns all of them.
func Changes(ctx context.Context, db *sql.DB, collection string, since int64, limit int) ([]LogEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.QueryContext(ctx, `SELECT collection, scn, op, feature_id, payload, created_at
FROM `+DefaultLogTable+`
WHERE collection = ? AND scn > ?
ORDER BY scn
LIMIT ?`, collection, since, limit)
	if err != nil {
		return nil, fmt.Errorf("featsync: query changes: %w", err)
	}
	defer rows.Close()
	var out []LogEntry
	for rows.Next() {
		var e LogEntry
		var payload, created any
		if err := rows.Scan(&e.Collection, &e.SCN, &e.Op, &e.FeatureID, &payload, &created); err != nil {
			return nil, fmt.Errorf("featsync: scan change: %w", err)
		}
		switch v := payload.(type) {
		case []byte:
			e.Payload = append([]byte(nil), v...)
		case string:
			e.Payload = []byte(v)
		}
		e.CreatedAt = asTime(created)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("featsync: iterate changes: %w", err)
	}
	return out, nil
}

// LastSCN returns the most recent SCN recorded for collection, or 0.
func LastSCN(ctx context.Context, db *sql.DB, collection string) (int64, error) {
	var scn sql.NullInt64
	err := db.QueryRowContext(ctx, `SELECT next_scn FROM `+DefaultSeqTable+` WHERE collection = ?`, collection).Scan(&scn)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("featsync: last scn: %w", err)
	}
	return scn.Int64, nil
}

func asTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if ts, err := time.Parse(time.DateTime, t); err == nil {
			return ts
		}
	}
	return time.Time{}
}
