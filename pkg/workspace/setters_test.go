package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idfworkspace/pkg/domain"
)

func TestSetFieldRejectsInvalidValues(t *testing.T) {
	w := newTestWorkspace(t)
	zone := mustAdd(t, w, rec("Zone", "Z", "1"))

	var integrity domain.IntegrityError
	require.ErrorAs(t, w.SetString(zone, 1, "plenty"), &integrity)
	r, _ := w.Object(zone)
	f, _ := r.Field(1).AsNumber()
	assert.InDelta(t, 1.0, f, 1e-12)

	require.NoError(t, w.SetString(zone, 1, "AUTOCALCULATE"))
	require.NoError(t, w.SetString(zone, 1, "3.5"))
	r, _ = w.Object(zone)
	f, ok := r.Field(1).AsNumber()
	require.True(t, ok)
	assert.InDelta(t, 3.5, f, 1e-12)

	var schemaErr domain.SchemaError
	require.ErrorAs(t, w.SetNumber(zone, 5, 1), &schemaErr)
	assert.ErrorIs(t, w.SetNumber(domain.NullHandle, 1, 1), domain.ErrNullHandle)
	assert.True(t, domain.IsNotFound(w.SetNumber(domain.NewHandle(), 1, 1)))
}

func TestSetPointer(t *testing.T) {
	w := newTestWorkspace(t)
	wall, zone, _, brick := buildWall(t, w)
	other := mustAdd(t, w, rec("Zone", "Lab"))

	require.NoError(t, w.SetPointer(wall, 1, other))
	assert.Equal(t, []domain.Handle{wall}, w.Sources(other))
	assert.Empty(t, w.Sources(zone))

	var integrity domain.IntegrityError
	require.ErrorAs(t, w.SetPointer(wall, 1, brick), &integrity, "a material is not a zone")
	require.ErrorAs(t, w.SetPointer(wall, 1, domain.NewHandle()), &integrity)
	require.ErrorAs(t, w.SetString(wall, 1, "Nowhere"), &integrity)
	assert.Equal(t, []domain.Handle{wall}, w.Sources(other))

	require.NoError(t, w.SetString(wall, 1, "office"))
	assert.Equal(t, []domain.Handle{wall}, w.Sources(zone))
	require.NoError(t, w.SetPointer(wall, 1, domain.NullHandle))
	assert.Empty(t, w.Sources(zone))
	assertClosed(t, w)
}

func TestSetFieldOnNameRenames(t *testing.T) {
	w := newTestWorkspace(t)
	mustAdd(t, w, rec("Zone", "A"))
	b := mustAdd(t, w, rec("Zone", "B"))
	require.NoError(t, w.SetString(b, 0, "a"))
	assert.Equal(t, "a 1", nameOf(t, w, b))
}

func TestExtensibleGroups(t *testing.T) {
	w := newTestWorkspace(t)
	hs, err := w.AddObjects([]domain.Record{
		rec("Material", "Brick", "0.1"),
		rec("Material", "Foam", "0.05"),
		rec("Construction", "Wall"),
	})
	require.NoError(t, err)
	brick, foam, wall := hs[0], hs[1], hs[2]

	require.NoError(t, w.PushExtensibleGroup(wall, domain.Str("Brick")))
	require.NoError(t, w.PushExtensibleGroup(wall, domain.Ref(foam)))
	assert.Equal(t, []domain.Handle{brick, foam}, w.Targets(wall))

	var schemaErr domain.SchemaError
	require.ErrorAs(t, w.PushExtensibleGroup(wall, domain.Str("a"), domain.Str("b")), &schemaErr)
	require.ErrorAs(t, w.PushExtensibleGroup(brick), &schemaErr)
	var integrity domain.IntegrityError
	require.ErrorAs(t, w.PushExtensibleGroup(wall, domain.Str("Missing")), &integrity)

	popped, err := w.PopExtensibleGroup(wall)
	require.NoError(t, err)
	require.Len(t, popped, 1)
	assert.True(t, popped[0].Equal(domain.Ref(foam)))
	assert.Empty(t, w.Sources(foam))

	mustAdd(t, w, rec("Version", "9.6"))
	require.NoError(t, w.SetStrictnessLevel(domain.StrictnessFinal))
	_, err = w.PopExtensibleGroup(wall)
	require.ErrorAs(t, err, &integrity, "at least one layer is required")
	assert.Equal(t, []domain.Handle{brick}, w.Targets(wall))

	require.NoError(t, w.PushExtensibleGroup(wall, domain.Ref(foam)))
	require.NoError(t, w.PushExtensibleGroup(wall, domain.Ref(brick)))
	require.ErrorAs(t, w.PushExtensibleGroup(wall, domain.Ref(foam)), &integrity, "at most three layers")
	r, _ := w.Object(wall)
	assert.Equal(t, 4, r.NumFields())
	assertClosed(t, w)
}
