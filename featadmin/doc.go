// Package featadmin exposes maintenance operations on feature collections
// through the feat_admin SQLite virtual table.
package featadmin
