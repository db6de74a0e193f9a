// Package domain defines the storage gateway the projection handlers write
// through. Collections are addressed by table name; conflict targets are the
// natural-key columns of each collection.
package domain

import "context"

// Store applies whole-call writes against named collections. Implementations
// must be safe under concurrent upserts to the same key; last-write-wins is
// acceptable.
type Store interface {
	// Insert appends rows assumed to be new.
	Insert(ctx context.Context, collection string, rows any) error
	// Upsert inserts rows, replacing existing rows that collide on the
	// conflict columns.
	Upsert(ctx context.Context, collection string, rows any, conflictColumns []string) error
	// DeleteMatching removes rows matching all column/value pairs. Deleting
	// nothing is not an error.
	DeleteMatching(ctx context.Context, collection string, match map[string]any) error
}
