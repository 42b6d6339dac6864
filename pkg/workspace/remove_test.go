package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idfworkspace/pkg/domain"
)

func buildWall(t *testing.T, w *Workspace) (wall, zone, construction, brick domain.Handle) {
	t.Helper()
	hs, err := w.AddObjects([]domain.Record{
		rec("Version", "9.6"),
		rec("Material", "Brick", "0.1"),
		rec("Construction", "Ext Wall", "Brick"),
		rec("Zone", "Office"),
		rec("Surface", "Wall", "Office", "Ext Wall"),
	})
	require.NoError(t, err)
	return hs[4], hs[3], hs[2], hs[1]
}

func TestRemoveClearsIncomingReferences(t *testing.T) {
	w := newTestWorkspace(t)
	wall, zone, _, _ := buildWall(t, w)

	require.NoError(t, w.Remove(zone))
	assert.False(t, w.IsMember(zone))
	r, ok := w.Object(wall)
	require.True(t, ok)
	assert.True(t, r.Field(1).IsEmpty())
	assert.Empty(t, w.ObjectsByReference("ZoneNames"))
	assertClosed(t, w)
}

func TestRemoveForbiddenByFieldPolicy(t *testing.T) {
	w := newTestWorkspace(t)
	wall, _, construction, _ := buildWall(t, w)

	err := w.Remove(construction)
	var integrity domain.IntegrityError
	require.ErrorAs(t, err, &integrity)
	assert.True(t, w.IsMember(construction))
	assert.Equal(t, 5, w.NumObjects())

	require.NoError(t, w.RemoveObjects([]domain.Handle{wall, construction}))
	assert.Equal(t, 3, w.NumObjects())
	assertClosed(t, w)
}

func TestRemoveAtFinalProtectsRequiredData(t *testing.T) {
	w := newTestWorkspace(t)
	hs, err := w.AddObjects([]domain.Record{rec("Version", "9.6"), rec("Zone", "Office")})
	require.NoError(t, err)
	version, zone := hs[0], hs[1]
	wall := mustAdd(t, w, rec("Surface", "Wall", "Office"))
	require.NoError(t, w.SetStrictnessLevel(domain.StrictnessFinal))

	var integrity domain.IntegrityError
	require.ErrorAs(t, w.Remove(zone), &integrity, "required field would be emptied")
	require.ErrorAs(t, w.Remove(version), &integrity, "required object type would vanish")
	assert.Equal(t, 3, w.NumObjects())

	require.NoError(t, w.RemoveObjects([]domain.Handle{wall, zone}))
	assert.True(t, w.IsValid(domain.StrictnessFinal))
}

func TestRemoveRejectsUnknownHandles(t *testing.T) {
	w := newTestWorkspace(t)
	zone := mustAdd(t, w, rec("Zone", "Z"))

	err := w.RemoveObjects([]domain.Handle{zone, domain.NewHandle()})
	assert.True(t, domain.IsNotFound(err))
	assert.ErrorIs(t, w.Remove(domain.NullHandle), domain.ErrNullHandle)
	assert.True(t, w.IsMember(zone))
	assert.NoError(t, w.RemoveObjects(nil))
	assert.NoError(t, w.RemoveObjects([]domain.Handle{zone, zone}))
	assert.Zero(t, w.NumObjects())
}

func TestRemoveKeepsForwardedEligibility(t *testing.T) {
	w := newTestWorkspace(t)
	node := mustAdd(t, w, rec("Node", "N"))

	meter := mustAdd(t, w, rec("Meter", "M", "N"))
	r, _ := w.Object(meter)
	assert.True(t, r.Field(1).IsEmpty(), "node is not connected yet")

	port := mustAdd(t, w, rec("Port", "P", "N"))
	assert.True(t, w.CanBeTarget(node, []string{"ConnectedNodes"}))
	require.NoError(t, w.SetString(meter, 1, "N"))
	assert.Equal(t, []domain.Handle{node}, w.Targets(meter))

	var integrity domain.IntegrityError
	require.ErrorAs(t, w.Remove(port), &integrity)
	require.ErrorAs(t, w.SetPointer(port, 1, domain.NullHandle), &integrity)

	second := mustAdd(t, w, rec("Port", "P2", "N"))
	require.NoError(t, w.Remove(port))
	assert.True(t, w.CanBeTarget(node, []string{"ConnectedNodes"}))
	require.NoError(t, w.RemoveObjects([]domain.Handle{second, meter}))
	assert.False(t, w.CanBeTarget(node, []string{"ConnectedNodes"}))
	assertClosed(t, w)
}
