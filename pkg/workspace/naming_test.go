package workspace

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idfworkspace/pkg/domain"
)

func TestSplitSuffix(t *testing.T) {
	cases := []struct {
		in   string
		base string
		sep  string
		n    int
		ok   bool
	}{
		{"Zone 12", "Zone", " ", 12, true},
		{"Zone_3", "Zone", "_", 3, true},
		{"Zone", "Zone", " ", 0, false},
		{"Zone 0", "Zone 0", " ", 0, false},
		{"Zone 1a", "Zone 1a", " ", 0, false},
		{"Zone ", "Zone ", " ", 0, false},
		{"Level 2 Zone 4", "Level 2 Zone", " ", 4, true},
	}
	for _, tc := range cases {
		base, sep, n, ok := splitSuffix(tc.in)
		assert.Equal(t, tc.base, base, tc.in)
		assert.Equal(t, tc.sep, sep, tc.in)
		assert.Equal(t, tc.n, n, tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
	}
}

func TestNextInSeries(t *testing.T) {
	series := []string{"Zone 1", "Zone 3", "Zone"}
	assert.Equal(t, "Zone 2", nextInSeries("Zone", series, true))
	assert.Equal(t, "Zone 4", nextInSeries("Zone", series, false))
	assert.Equal(t, "Zone 1", nextInSeries("Zone", nil, true))
	assert.Equal(t, "Zone_5", nextInSeries("Zone", []string{"Zone_4"}, false))
}

func TestAddUnnamedZonesTakeSuccessiveSuffixes(t *testing.T) {
	w := newTestWorkspace(t)
	var names []string
	for range 3 {
		h := mustAdd(t, w, rec("Zone"))
		names = append(names, nameOf(t, w, h))
	}
	assert.Equal(t, []string{"Zone 1", "Zone 2", "Zone 3"}, names)
}

func TestAddObjectsRenamesClashingNamesInOrder(t *testing.T) {
	w := newTestWorkspace(t)
	hs, err := w.AddObjects([]domain.Record{rec("Zone", "X"), rec("Zone", "X"), rec("Zone", "X")})
	require.NoError(t, err)
	require.Len(t, hs, 3)
	assert.Equal(t, "X", nameOf(t, w, hs[0]))
	assert.Equal(t, "X 1", nameOf(t, w, hs[1]))
	assert.Equal(t, "X 2", nameOf(t, w, hs[2]))
}

func TestNameConflictsIgnoreCase(t *testing.T) {
	w := newTestWorkspace(t)
	mustAdd(t, w, rec("Zone", "core zone"))
	h := mustAdd(t, w, rec("Zone", "Core Zone"))
	assert.Equal(t, "Core Zone 1", nameOf(t, w, h))
}

func TestNameConflictsFollowSharedReferenceLists(t *testing.T) {
	w := newTestWorkspace(t)
	mustAdd(t, w, rec("Material", "Brick", "0.1"))
	noMass := mustAdd(t, w, rec("Material:NoMass", "Brick", "0.5"))
	assert.Equal(t, "Brick 1", nameOf(t, w, noMass), "types sharing MaterialName must not share names")

	node := mustAdd(t, w, rec("Node", "Brick"))
	assert.Equal(t, "Brick", nameOf(t, w, node), "unrelated types may share a name")
	assert.True(t, w.IsValid(domain.StrictnessDraft))
}

func TestNoRenameRejectsTheBatch(t *testing.T) {
	w := newTestWorkspace(t)
	mustAdd(t, w, rec("Zone", "X"))
	_, err := w.AddObjects([]domain.Record{rec("Zone", "Y"), rec("Zone", "X")}, NoRename())
	var conflict domain.NameConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "X", conflict.Name)
	assert.Equal(t, 1, w.NumObjects())
}

func TestNextName(t *testing.T) {
	w := newTestWorkspace(t)
	name, err := w.NextName("Zone", false)
	require.NoError(t, err)
	assert.Equal(t, "Zone 1", name)

	h := mustAdd(t, w, rec("Zone"))
	require.Equal(t, "Zone 1", nameOf(t, w, h))
	_, err = w.SetName(h, "Zone 2")
	require.NoError(t, err)

	name, err = w.NextName("zone", false)
	require.NoError(t, err)
	assert.Equal(t, "Zone 3", name)
	name, err = w.NextName("Zone", true)
	require.NoError(t, err)
	assert.Equal(t, "Zone 1", name)

	noMass, err := w.NextName("Material:NoMass", true)
	require.NoError(t, err)
	assert.Equal(t, "Material NoMass 1", noMass)

	_, err = w.NextName("Bogus", true)
	var schemaErr domain.SchemaError
	assert.True(t, errors.As(err, &schemaErr))
}

func TestNextNameForSpansTypes(t *testing.T) {
	w := newTestWorkspace(t)
	mustAdd(t, w, rec("Zone", "Plant 1"))
	mustAdd(t, w, rec("Node", "Plant 2"))
	assert.Equal(t, "Plant 3", w.NextNameFor("Plant", false))
	assert.Equal(t, "Plant 3", w.NextNameFor("Plant 1", true))
}

func TestSetNameResolvesConflicts(t *testing.T) {
	w := newTestWorkspace(t)
	mustAdd(t, w, rec("Zone", "East"))
	west := mustAdd(t, w, rec("Zone", "West"))

	applied, err := w.SetName(west, "EAST")
	require.NoError(t, err)
	assert.Equal(t, "EAST 1", applied)

	applied, err = w.SetName(west, "West")
	require.NoError(t, err)
	assert.Equal(t, "West", applied)
	assert.Len(t, w.ObjectsByName("west", true), 1)

	version := mustAdd(t, w, rec("Version", "9.6"))
	_, err = w.SetName(version, "V")
	var schemaErr domain.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}
