// Package blobsnap stores workspace snapshots as IDF text in a blob store.
// Each snapshot lives under snapshots/<name>.idf with its strictness and
// save time carried as blob metadata.
package blobsnap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"idfworkspace/internal/blob"
	"idfworkspace/pkg/domain"
	"idfworkspace/pkg/idf"
	"idfworkspace/pkg/schema"
)

var _ domain.SnapshotStore = (*Store)(nil)

const (
	prefix = "snapshots/"
	suffix = ".idf"

	metaStrictness = "strictness"
	metaSavedAt    = "saved-at"
)

// Store adapts a blob.Store to the snapshot contract.
type Store struct {
	blobs    blob.Store
	provider schema.Provider
}

// New wraps blobs. A non-nil provider annotates written fields with their
// schema names.
func New(blobs blob.Store, provider schema.Provider) *Store {
	return &Store{blobs: blobs, provider: provider}
}

func key(name string) string { return prefix + name + suffix }

// Save writes snap as IDF text, replacing any previous version.
func (s *Store) Save(ctx context.Context, snap domain.Snapshot) error {
	if err := domain.ValidateSnapshotName(snap.Name); err != nil {
		return err
	}
	text, err := idf.Marshal(snap.Records, s.provider)
	if err != nil {
		return fmt.Errorf("encode %s: %w", snap.Name, err)
	}
	_, err = s.blobs.Put(ctx, key(snap.Name), bytes.NewReader(text), blob.PutOptions{
		ContentType: "text/plain; charset=utf-8",
		Overwrite:   true,
		Metadata: map[string]string{
			metaStrictness: snap.Strictness.String(),
			metaSavedAt:    snap.SavedAt.UTC().Format(time.RFC3339Nano),
		},
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", snap.Name, err)
	}
	return nil
}

// Load reads and decodes the named snapshot.
func (s *Store) Load(ctx context.Context, name string) (domain.Snapshot, error) {
	info, rc, err := s.blobs.Get(ctx, key(name))
	if errors.Is(err, blob.ErrNotFound) {
		return domain.Snapshot{}, fmt.Errorf("%s: %w", name, domain.ErrSnapshotNotFound)
	}
	if err != nil {
		return domain.Snapshot{}, err
	}
	defer func() { _ = rc.Close() }()
	text, err := io.ReadAll(rc)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("read %s: %w", name, err)
	}
	records, err := idf.Unmarshal(text)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode %s: %w", name, err)
	}
	snap := domain.Snapshot{Name: name, Records: records}
	if snap.Strictness, err = domain.ParseStrictness(info.Metadata[metaStrictness]); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode %s: %w", name, err)
	}
	if raw := info.Metadata[metaSavedAt]; raw != "" {
		if snap.SavedAt, err = time.Parse(time.RFC3339Nano, raw); err != nil {
			return domain.Snapshot{}, fmt.Errorf("decode %s saved-at: %w", name, err)
		}
	} else {
		snap.SavedAt = info.LastModified
	}
	return snap, nil
}

// List returns snapshot names in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	infos, err := s.blobs.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, info := range infos {
		name, ok := strings.CutSuffix(strings.TrimPrefix(info.Key, prefix), suffix)
		if ok && name != "" && !strings.Contains(name, "/") {
			names = append(names, name)
		}
	}
	return names, nil
}

// Delete removes the named snapshot and reports whether it existed.
func (s *Store) Delete(ctx context.Context, name string) (bool, error) {
	return s.blobs.Delete(ctx, key(name))
}

// Close is a no-op; the blob store has no handle to release.
func (s *Store) Close() error { return nil }
