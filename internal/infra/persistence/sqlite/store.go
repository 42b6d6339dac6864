// Package sqlite persists workspace snapshots to an embedded SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"idfworkspace/pkg/domain"
)

var _ domain.SnapshotStore = (*Store)(nil)

const schemaDDL = `CREATE TABLE IF NOT EXISTS snapshots (
	name TEXT PRIMARY KEY,
	payload BLOB NOT NULL,
	saved_at TEXT NOT NULL
)`

// payload is the JSON document stored per row.
type payload struct {
	Strictness domain.StrictnessLevel `json:"strictness"`
	Records    []domain.StreamRecord  `json:"records"`
}

// Store keeps one row per snapshot name.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "idfws.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create snapshots table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Save upserts snap.
func (s *Store) Save(ctx context.Context, snap domain.Snapshot) error {
	if err := domain.ValidateSnapshotName(snap.Name); err != nil {
		return err
	}
	data, err := json.Marshal(payload{Strictness: snap.Strictness, Records: snap.Records})
	if err != nil {
		return fmt.Errorf("encode %s: %w", snap.Name, err)
	}
	savedAt := snap.SavedAt.UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots(name,payload,saved_at) VALUES(?,?,?)
		 ON CONFLICT(name) DO UPDATE SET payload=excluded.payload, saved_at=excluded.saved_at`,
		snap.Name, data, savedAt); err != nil {
		return fmt.Errorf("upsert %s: %w", snap.Name, err)
	}
	return nil
}

// Load reads the named snapshot.
func (s *Store) Load(ctx context.Context, name string) (domain.Snapshot, error) {
	var (
		data    []byte
		savedAt string
	)
	err := s.db.QueryRowContext(ctx, `SELECT payload, saved_at FROM snapshots WHERE name = ?`, name).Scan(&data, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Snapshot{}, fmt.Errorf("%s: %w", name, domain.ErrSnapshotNotFound)
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("select %s: %w", name, err)
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode %s: %w", name, err)
	}
	ts, err := time.Parse(time.RFC3339Nano, savedAt)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode %s saved_at: %w", name, err)
	}
	return domain.Snapshot{Name: name, Strictness: p.Strictness, Records: p.Records, SavedAt: ts}, nil
}

// List returns snapshot names in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM snapshots ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Delete removes the named snapshot and reports whether it existed.
func (s *Store) Delete(ctx context.Context, name string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE name = ?`, name)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
