package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idfworkspace/pkg/domain"
)

func countEdges(w *Workspace) int {
	n := 0
	for _, h := range w.Handles() {
		n += w.NumSources(h)
	}
	return n
}

func TestCloneIsIndependent(t *testing.T) {
	w := newTestWorkspace(t)
	buildWall(t, w)
	before := w.ValidityReport(domain.StrictnessFinal)

	c := w.Clone(false)
	assert.Equal(t, w.NumObjects(), c.NumObjects())
	assert.Equal(t, countEdges(w), countEdges(c))
	assert.Equal(t, w.StrictnessLevel(), c.StrictnessLevel())
	for _, h := range c.Handles() {
		assert.False(t, w.IsMember(h), "clone reuses handle %s", h)
		for _, target := range c.Targets(h) {
			assert.True(t, c.IsMember(target))
		}
	}
	assertClosed(t, c)

	zone, ok := c.ObjectByTypeAndName("Zone", "Office")
	require.True(t, ok)
	require.NoError(t, c.Remove(zone.Handle))
	_, err := c.SetName(c.Handles()[1], "Renamed")
	require.NoError(t, err)

	assert.Equal(t, before, w.ValidityReport(domain.StrictnessFinal))
	_, ok = w.ObjectByTypeAndName("Zone", "Office")
	assert.True(t, ok)
}

func TestCloneKeepsHandlesAndOrder(t *testing.T) {
	w := newTestWorkspace(t)
	wall, zone, _, _ := buildWall(t, w)
	require.NoError(t, w.Order().Move(wall, 0))

	c := w.Clone(true)
	assert.Equal(t, w.Handles(), c.Handles())
	assert.True(t, c.Order().IsDirectOrder())
	assert.Equal(t, []domain.Handle{zone}, c.Targets(wall)[:1])

	extra := mustAdd(t, c, rec("Zone", "Extra"))
	assert.False(t, w.IsMember(extra))
}

func TestCloneDoesNotCarryWatchers(t *testing.T) {
	w := newTestWorkspace(t)
	wt := NewWatcher(w, Hooks{})
	c := w.Clone(false)
	mustAdd(t, c, rec("Zone", "Z"))
	assert.False(t, wt.Dirty())
}

func TestCloneSubsetDropsOutgoingEdges(t *testing.T) {
	w := newTestWorkspace(t)
	wall, zone, construction, _ := buildWall(t, w)
	require.NoError(t, w.SetStrictnessLevel(domain.StrictnessFinal))

	sub, err := w.CloneSubset([]domain.Handle{construction, wall, zone, wall}, true)
	require.NoError(t, err)
	assert.Equal(t, 3, sub.NumObjects())
	assert.Equal(t, []domain.Handle{construction, zone, wall}, sub.Handles())
	assert.Equal(t, []domain.Handle{zone, construction}, sub.Targets(wall))
	r, _ := sub.Object(construction)
	assert.True(t, r.Field(1).IsEmpty(), "material is outside the subset")
	assertClosed(t, sub)

	// the subset has no Version record
	assert.Equal(t, domain.StrictnessDraft, sub.StrictnessLevel())

	_, err = w.CloneSubset([]domain.Handle{domain.NewHandle()}, false)
	assert.True(t, domain.IsNotFound(err))
}

func TestCloneSubsetKeepsSourceLevelWhenValid(t *testing.T) {
	w := newTestWorkspace(t)
	version := mustAdd(t, w, rec("Version", "9.6"))
	zone := mustAdd(t, w, rec("Zone", "Z"))
	require.NoError(t, w.SetStrictnessLevel(domain.StrictnessFinal))

	sub, err := w.CloneSubset([]domain.Handle{version, zone}, false)
	require.NoError(t, err)
	assert.Equal(t, domain.StrictnessFinal, sub.StrictnessLevel())
}
