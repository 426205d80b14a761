// Package repository persists participant snapshots. Each refresh appends a
// full snapshot; readers only ever want the latest one.
package repository

import (
	"context"

	"github.com/pakafest/dashboard/internal/domain/model"
)

// Store provides read/write access to snapshot history.
type Store interface {
	// Save persists a snapshot. An empty snapshot ID is assigned by the
	// store.
	Save(ctx context.Context, snap *model.Snapshot) error

	// Latest returns the most recent snapshot, or ErrNoSnapshot when
	// nothing has been synced yet.
	Latest(ctx context.Context) (*model.Snapshot, error)

	// Count returns the number of stored snapshots.
	Count(ctx context.Context) (int, error)
}
