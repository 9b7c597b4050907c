// Package storage provides storage abstractions for the utilization archive.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwulff/abyss-go/internal/domain"
)

// Store is the interface for persistent storage.
type Store interface {
	// Utilization snapshots
	SaveSnapshot(ctx context.Context, snapshot *Snapshot) error
	GetSnapshot(ctx context.Context, schedule int) (*Snapshot, error)
	ListSnapshots(ctx context.Context) ([]*SnapshotInfo, error)
	DeleteSnapshotsBefore(ctx context.Context, before time.Time) (int, error)

	// Fetch state
	GetFetchState(ctx context.Context, source string) (*domain.FetchState, error)
	SaveFetchState(ctx context.Context, state *domain.FetchState) error

	// Configuration
	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
	DeleteConfig(ctx context.Context, key string) error

	// Lifecycle
	Close() error
}

// Snapshot is an archived utilization table. There is at most one snapshot
// per schedule; saving again replaces it.
type Snapshot struct {
	ID        string
	Schedule  int
	FetchedAt time.Time
	Rows      []domain.UtilizationRow
}

// NewSnapshot creates a snapshot of table stamped with a new id and the
// current time.
func NewSnapshot(table domain.UtilizationTable) *Snapshot {
	return &Snapshot{
		ID:        uuid.NewString(),
		Schedule:  table.Schedule,
		FetchedAt: time.Now().UTC(),
		Rows:      table.Rows,
	}
}

// Table returns the snapshot as a utilization table.
func (s *Snapshot) Table() domain.UtilizationTable {
	return domain.UtilizationTable{Schedule: s.Schedule, Rows: s.Rows}
}

// SnapshotInfo summarises a snapshot without its rows.
type SnapshotInfo struct {
	ID        string
	Schedule  int
	FetchedAt time.Time
	RowCount  int
}

// ErrNotFound is returned when a record is not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e ErrNotFound) Error() string {
	return e.Resource + " not found: " + e.ID
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	_, ok := err.(ErrNotFound)
	return ok
}
