// Package memory provides an in-process snapshot store for tests and
// ephemeral sessions.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"idfworkspace/pkg/domain"
)

var _ domain.SnapshotStore = (*Store)(nil)

// Store keeps snapshots in a map guarded by a mutex. Values are deep-copied
// on the way in and out.
type Store struct {
	mu    sync.RWMutex
	snaps map[string]domain.Snapshot
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{snaps: make(map[string]domain.Snapshot)}
}

// Save stores snap under snap.Name, replacing any previous version.
func (s *Store) Save(_ context.Context, snap domain.Snapshot) error {
	if err := domain.ValidateSnapshotName(snap.Name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[snap.Name] = snap.Clone()
	return nil
}

// Load returns the named snapshot.
func (s *Store) Load(_ context.Context, name string) (domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[name]
	if !ok {
		return domain.Snapshot{}, fmt.Errorf("%s: %w", name, domain.ErrSnapshotNotFound)
	}
	return snap.Clone(), nil
}

// List returns snapshot names in lexical order.
func (s *Store) List(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.snaps)), nil
}

// Delete removes the named snapshot and reports whether it existed.
func (s *Store) Delete(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.snaps[name]
	delete(s.snaps, name)
	return ok, nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
