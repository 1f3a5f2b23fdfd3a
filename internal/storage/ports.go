package storage

import (
	"context"

	"cashledger/internal/core"
)

// EntryStore persists ledger entries. Entries are never hard-deleted: removal
// is a status change to Inactive.
type EntryStore interface {
	FetchAll(ctx context.Context) ([]core.Entry, error)
	InsertOne(ctx context.Context, e core.Entry) error
	InsertMany(ctx context.Context, entries []core.Entry) error
	// UpdateOne replaces the stored entry with the same ID.
	UpdateOne(ctx context.Context, e core.Entry) error
	SetStatus(ctx context.Context, ids []string, status core.Status) error
	// ArchiveAndInsert marks every active entry Inactive and inserts entries
	// as one unit: either both happen or neither does.
	ArchiveAndInsert(ctx context.Context, entries []core.Entry) error
}
