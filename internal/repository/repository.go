package repository

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no snapshot matches a lookup
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is one encoded graph stored under a name. Data holds the exact
// bytes a codec wrote, including any envelope.
type Snapshot struct {
	ID        string
	Name      string
	Format    string
	Envelope  string // compression and sealing applied to Data, empty for none
	NodeCount int
	EdgeCount int
	Data      []byte
	CreatedAt time.Time
}

// SnapshotStore defines the interface for snapshot persistence
type SnapshotStore interface {
	// Save stores s, assigning ID and CreatedAt when they are zero
	Save(ctx context.Context, s *Snapshot) error

	// Read operations
	Get(ctx context.Context, id string) (*Snapshot, error)
	Latest(ctx context.Context, name string) (*Snapshot, error)
	// List returns snapshots newest first without Data. An empty name lists all.
	List(ctx context.Context, name string) ([]*Snapshot, error)

	Delete(ctx context.Context, id string) error

	// Close releases resources
	Close() error
}
