// Package featsync defines an SCN-numbered change log for feature
// collections. Triggers installed on a collection table append one row per
// insert, update or delete to feature_change_log; Changes reads the log back
// so downstream replicas can catch up from a known SCN.
package featsync
