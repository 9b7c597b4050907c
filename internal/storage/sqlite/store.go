// Package sqlite provides a SQLite implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jwulff/abyss-go/internal/domain"
	"github.com/jwulff/abyss-go/internal/storage"

	_ "modernc.org/sqlite"
)

// Store is a SQLite implementation of storage.Store.
type Store struct {
	db *sql.DB
}

// NewMemoryStore creates an in-memory SQLite store.
func NewMemoryStore() (*Store, error) {
	return newStore(":memory:")
}

// NewFileStore creates a file-based SQLite store, creating the parent
// directory if needed.
func NewFileStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return newStore(path)
}

func newStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return store, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Snapshot methods

func (s *Store) SaveSnapshot(ctx context.Context, snapshot *storage.Snapshot) error {
	rowsJSON, err := json.Marshal(snapshot.Rows)
	if err != nil {
		return fmt.Errorf("failed to marshal rows: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO snapshots (schedule, id, fetched_at, row_count, rows)
		VALUES (?, ?, ?, ?, ?)
	`, snapshot.Schedule, snapshot.ID, snapshot.FetchedAt.UTC(), len(snapshot.Rows), string(rowsJSON))
	return err
}

func (s *Store) GetSnapshot(ctx context.Context, schedule int) (*storage.Snapshot, error) {
	var snapshot storage.Snapshot
	var rowsJSON string

	err := s.db.QueryRowContext(ctx, `
		SELECT schedule, id, fetched_at, rows FROM snapshots WHERE schedule = ?
	`, schedule).Scan(&snapshot.Schedule, &snapshot.ID, &snapshot.FetchedAt, &rowsJSON)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound{Resource: "snapshot", ID: strconv.Itoa(schedule)}
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(rowsJSON), &snapshot.Rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rows: %w", err)
	}
	return &snapshot, nil
}

func (s *Store) ListSnapshots(ctx context.Context) ([]*storage.SnapshotInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, schedule, fetched_at, row_count FROM snapshots ORDER BY schedule DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []*storage.SnapshotInfo
	for rows.Next() {
		var info storage.SnapshotInfo
		if err := rows.Scan(&info.ID, &info.Schedule, &info.FetchedAt, &info.RowCount); err != nil {
			return nil, err
		}
		infos = append(infos, &info)
	}
	return infos, rows.Err()
}

func (s *Store) DeleteSnapshotsBefore(ctx context.Context, before time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM snapshots WHERE fetched_at < ?
	`, before.UTC())
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}

// Fetch state methods

func (s *Store) SaveFetchState(ctx context.Context, state *domain.FetchState) error {
	dataJSON, err := json.Marshal(state.LastData)
	if err != nil {
		return fmt.Errorf("failed to marshal last_data: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO fetch_state (source, last_run, last_data, error_count, last_error)
		VALUES (?, ?, ?, ?, ?)
	`, state.Source, state.LastRun.UTC(), string(dataJSON), state.ErrorCount, state.LastError)
	return err
}

func (s *Store) GetFetchState(ctx context.Context, source string) (*domain.FetchState, error) {
	var state domain.FetchState
	var dataJSON string

	err := s.db.QueryRowContext(ctx, `
		SELECT source, last_run, last_data, error_count, last_error
		FROM fetch_state WHERE source = ?
	`, source).Scan(&state.Source, &state.LastRun, &dataJSON, &state.ErrorCount, &state.LastError)

	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound{Resource: "fetch_state", ID: source}
	}
	if err != nil {
		return nil, err
	}

	if dataJSON != "" {
		if err := json.Unmarshal([]byte(dataJSON), &state.LastData); err != nil {
			return nil, fmt.Errorf("failed to unmarshal last_data: %w", err)
		}
	}

	return &state, nil
}

// Config methods

func (s *Store) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", storage.ErrNotFound{Resource: "config", ID: key}
	}
	return value, err
}

func (s *Store) SetConfig(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO config (key, value, updated_at)
		VALUES (?, ?, ?)
	`, key, value, time.Now().UTC())
	return err
}

func (s *Store) DeleteConfig(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM config WHERE key = ?", key)
	return err
}

// Verify interface compliance
var _ storage.Store = (*Store)(nil)
