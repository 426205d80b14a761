package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/pakafest/dashboard/internal/domain/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
    id              TEXT PRIMARY KEY,
    participants    TEXT NOT NULL,
    server_time     TEXT NOT NULL DEFAULT '',
    counter         INTEGER NOT NULL DEFAULT 0,
    counter_deleted INTEGER NOT NULL DEFAULT 0,
    counter_total   INTEGER NOT NULL DEFAULT 0,
    synced_at       TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_synced_at ON snapshots(synced_at);
`

// SQLiteStore implements Store on a local SQLite file. Participants are
// stored as one JSON document per snapshot: the collection is only ever read
// and written wholesale, so a row-per-participant schema would buy nothing.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed creates) the snapshot database at
// path. Use ":memory:" for tests.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create snapshot schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Save persists a snapshot, assigning an ID when the caller left it empty.
func (s *SQLiteStore) Save(ctx context.Context, snap *model.Snapshot) error {
	if snap == nil {
		return errors.New("nil snapshot")
	}
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if snap.SyncedAt.IsZero() {
		snap.SyncedAt = time.Now().UTC()
	}

	participants, err := json.Marshal(snap.Participants)
	if err != nil {
		return fmt.Errorf("encode participants: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, participants, server_time, counter, counter_deleted, counter_total, synced_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, string(participants), snap.ServerTime,
		snap.Counter, snap.CounterDeleted, snap.CounterTotal,
		snap.SyncedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// Latest returns the most recently synced snapshot.
func (s *SQLiteStore) Latest(ctx context.Context) (*model.Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, participants, server_time, counter, counter_deleted, counter_total, synced_at
		 FROM snapshots ORDER BY synced_at DESC LIMIT 1`)

	var (
		snap         model.Snapshot
		participants string
		syncedAt     string
	)
	err := row.Scan(&snap.ID, &participants, &snap.ServerTime,
		&snap.Counter, &snap.CounterDeleted, &snap.CounterTotal, &syncedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	if err := json.Unmarshal([]byte(participants), &snap.Participants); err != nil {
		return nil, fmt.Errorf("decode participants: %w", err)
	}
	if ts, err := time.Parse(time.RFC3339Nano, syncedAt); err == nil {
		snap.SyncedAt = ts
	}
	return &snap, nil
}

// Count returns the number of stored snapshots.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count snapshots: %w", err)
	}
	return n, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
