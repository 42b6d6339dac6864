package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrSnapshotNotFound is returned by snapshot stores for unknown names.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshot is a named, serialized workspace.
type Snapshot struct {
	Name       string          `json:"name"`
	Strictness StrictnessLevel `json:"strictness"`
	Records    []StreamRecord  `json:"records"`
	SavedAt    time.Time       `json:"saved_at"`
}

// SnapshotStore is a minimal abstraction over durable backends holding
// workspace snapshots. Saving an existing name replaces it.
type SnapshotStore interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context, name string) (Snapshot, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) (bool, error)
	Close() error
}

// ValidateSnapshotName rejects names that cannot serve as a key in every
// backend: empty names, path separators and surrounding whitespace.
func ValidateSnapshotName(name string) error {
	switch {
	case name == "":
		return errors.New("snapshot name required")
	case strings.TrimSpace(name) != name:
		return fmt.Errorf("snapshot name %q has surrounding whitespace", name)
	case strings.ContainsAny(name, `/\`) || strings.Contains(name, ".."):
		return fmt.Errorf("snapshot name %q contains a path separator", name)
	}
	return nil
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Records = make([]StreamRecord, len(s.Records))
	for i, r := range s.Records {
		r.Fields = append([]string(nil), r.Fields...)
		out.Records[i] = r
	}
	return out
}
