package featsync

import "time"

// LogEntry mirrors a single row in feature_change_log.
type LogEntry struct {
	Collection string
	SCN        int64
	Op         string
	FeatureID  string
	Payload    []byte
	CreatedAt  time.Time
}

// SyncState describes the latest SCN a replica applied for a collection.
type SyncState struct {
	Collection string
	LastSCN    int64
	UpdatedAt  time.Time
}
