// Package storetest holds the behavioural contract every snapshot store
// driver must satisfy.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idfworkspace/pkg/domain"
)

// Sample returns a small snapshot with names, a numeric field, an empty
// field and a handle reference.
func Sample(name string) domain.Snapshot {
	zone := "3f2504e0-4f89-41d3-9a0c-0305e82c3301"
	return domain.Snapshot{
		Name:       name,
		Strictness: domain.StrictnessDraft,
		SavedAt:    time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC),
		Records: []domain.StreamRecord{
			{Handle: "9a7b1c2d-0000-4000-8000-000000000001", Type: "Version", Fields: []string{"9.4"}},
			{Handle: zone, Type: "Zone", Fields: []string{"Core", "Autocalculate"}},
			{Handle: "9a7b1c2d-0000-4000-8000-000000000003", Type: "Surface", Fields: []string{"Wall", zone, ""}},
		},
	}
}

// Run exercises open's store through save, overwrite, load, list and delete.
func Run(t *testing.T, open func(t *testing.T) domain.SnapshotStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("save and load", func(t *testing.T) {
		store := open(t)
		snap := Sample("base")
		require.NoError(t, store.Save(ctx, snap))
		got, err := store.Load(ctx, "base")
		require.NoError(t, err)
		assert.Equal(t, snap.Name, got.Name)
		assert.Equal(t, snap.Strictness, got.Strictness)
		assert.Equal(t, snap.Records, got.Records)
		assert.True(t, snap.SavedAt.Equal(got.SavedAt), "saved_at %v != %v", got.SavedAt, snap.SavedAt)
	})

	t.Run("overwrite", func(t *testing.T) {
		store := open(t)
		require.NoError(t, store.Save(ctx, Sample("base")))
		next := Sample("base")
		next.Strictness = domain.StrictnessFinal
		next.Records = next.Records[:2]
		require.NoError(t, store.Save(ctx, next))
		got, err := store.Load(ctx, "base")
		require.NoError(t, err)
		assert.Equal(t, domain.StrictnessFinal, got.Strictness)
		assert.Len(t, got.Records, 2)
	})

	t.Run("list and delete", func(t *testing.T) {
		store := open(t)
		for _, name := range []string{"b", "a", "c"} {
			require.NoError(t, store.Save(ctx, Sample(name)))
		}
		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, names)

		ok, err := store.Delete(ctx, "b")
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = store.Delete(ctx, "b")
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = store.Load(ctx, "b")
		require.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("invalid names", func(t *testing.T) {
		store := open(t)
		for _, name := range []string{"", " padded", "a/b", `a\b`, ".."} {
			require.Error(t, store.Save(ctx, Sample(name)), name)
		}
		_, err := store.Load(ctx, "never-saved")
		require.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})
}
