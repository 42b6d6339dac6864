// Package postgres persists workspace snapshots to PostgreSQL through the
// pgx database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"idfworkspace/pkg/domain"
)

var _ domain.SnapshotStore = (*Store)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost:5432/idfws?sslmode=disable"

	schemaDDL = `CREATE TABLE IF NOT EXISTS snapshots (
		name TEXT PRIMARY KEY,
		payload JSONB NOT NULL,
		saved_at TIMESTAMPTZ NOT NULL
	)`
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

type payload struct {
	Strictness domain.StrictnessLevel `json:"strictness"`
	Records    []domain.StreamRecord  `json:"records"`
}

// Store keeps one row per snapshot name.
type Store struct {
	db *sql.DB
}

// NewStore opens dsn (defaultDSN when empty), pings it and ensures the
// snapshots table exists.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure snapshots table: %w", err)
	}
	return &Store{db: db}, nil
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
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (name, payload, saved_at) VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, saved_at = EXCLUDED.saved_at`,
		snap.Name, string(data), snap.SavedAt.UTC()); err != nil {
		return fmt.Errorf("upsert %s: %w", snap.Name, err)
	}
	return nil
}

// Load reads the named snapshot.
func (s *Store) Load(ctx context.Context, name string) (domain.Snapshot, error) {
	var (
		data    []byte
		savedAt time.Time
	)
	err := s.db.QueryRowContext(ctx, `SELECT payload, saved_at FROM snapshots WHERE name = $1`, name).Scan(&data, &savedAt)
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
	return domain.Snapshot{Name: name, Strictness: p.Strictness, Records: p.Records, SavedAt: savedAt.UTC()}, nil
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
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// collation may differ from byte order
	slices.Sort(names)
	return names, nil
}

// Delete removes the named snapshot and reports whether it existed.
func (s *Store) Delete(ctx context.Context, name string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE name = $1`, name)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// OverrideSQLOpen swaps the function used to open connections and returns a
// restore func. Tests use it to inject a stub database.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
