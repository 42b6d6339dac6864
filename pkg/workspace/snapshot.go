package workspace

import (
	"time"

	"idfworkspace/pkg/domain"
	"idfworkspace/pkg/schema"
)

// Snapshot captures the workspace as a named snapshot stamped with at.
func (w *Workspace) Snapshot(name string, at time.Time) domain.Snapshot {
	return domain.Snapshot{
		Name:       name,
		Strictness: w.level,
		Records:    w.RecordStream(),
		SavedAt:    at.UTC(),
	}
}

// FromSnapshot rebuilds a workspace at the snapshot's strictness level.
// Options are applied first; the snapshot level wins over WithStrictness.
func FromSnapshot(provider schema.Provider, snap domain.Snapshot, opts ...Option) (*Workspace, error) {
	opts = append(opts, WithStrictness(snap.Strictness))
	return FromRecordStream(provider, snap.Records, opts...)
}
