package workspace

import (
	"testing"

	"github.com/stretchr/testify/require"

	"idfworkspace/pkg/domain"
	"idfworkspace/pkg/schema"
)

// testCatalog is a small building-model schema exercising every feature the
// workspace understands: names, reference lists, forwarding, extensible
// groups, removal policies and collection constraints.
func testCatalog() *schema.Static {
	return schema.MustStatic(
		schema.TypeDef{
			Name:     "Version",
			Fields:   []schema.FieldDef{schema.Alpha("Version Identifier")},
			Unique:   true,
			Required: true,
		},
		schema.TypeDef{
			Name:       "Zone",
			Named:      true,
			Fields:     []schema.FieldDef{schema.Alpha("Name"), schema.Numeric("Multiplier", "Autocalculate")},
			References: []string{"ZoneNames"},
		},
		schema.TypeDef{
			Name:       "Material",
			Named:      true,
			Fields:     []schema.FieldDef{schema.Alpha("Name"), schema.Numeric("Thickness").Require()},
			References: []string{"MaterialName"},
		},
		schema.TypeDef{
			Name:       "Material:NoMass",
			Named:      true,
			Fields:     []schema.FieldDef{schema.Alpha("Name"), schema.Numeric("Thermal Resistance")},
			References: []string{"MaterialName"},
		},
		schema.TypeDef{
			Name:       "Construction",
			Named:      true,
			Fields:     []schema.FieldDef{schema.Alpha("Name")},
			Extensible: []schema.FieldDef{schema.Reference("Layer", "MaterialName")},
			MinGroups:  1,
			MaxGroups:  3,
			References: []string{"ConstructionNames"},
		},
		schema.TypeDef{
			Name:  "Surface",
			Named: true,
			Fields: []schema.FieldDef{
				schema.Alpha("Name"),
				schema.Reference("Zone Name", "ZoneNames").Require(),
				schema.Reference("Construction Name", "ConstructionNames").Forbid(),
			},
		},
		schema.TypeDef{
			Name:       "Node",
			Named:      true,
			Fields:     []schema.FieldDef{schema.Alpha("Name")},
			References: []string{"Nodes"},
		},
		schema.TypeDef{
			Name:   "Port",
			Named:  true,
			Fields: []schema.FieldDef{schema.Alpha("Name"), schema.Reference("Node", "Nodes").Forward("ConnectedNodes")},
		},
		schema.TypeDef{
			Name:   "Meter",
			Named:  true,
			Fields: []schema.FieldDef{schema.Alpha("Name"), schema.Reference("Watched Node", "ConnectedNodes")},
		},
		schema.TypeDef{
			Name:   "Note",
			Fields: []schema.FieldDef{schema.Alpha("Text"), schema.Reference("Subject", schema.AllObjects)},
		},
	)
}

func newTestWorkspace(t *testing.T, opts ...Option) *Workspace {
	t.Helper()
	w, err := New(testCatalog(), opts...)
	require.NoError(t, err)
	return w
}

func rec(objectType string, fields ...string) domain.Record {
	values := make([]domain.Value, len(fields))
	for i, f := range fields {
		values[i] = domain.Str(f)
	}
	return domain.NewRecord(objectType, values...)
}

func mustAdd(t *testing.T, w *Workspace, r domain.Record) domain.Handle {
	t.Helper()
	h, err := w.Add(r)
	require.NoError(t, err)
	return h
}

func nameOf(t *testing.T, w *Workspace, h domain.Handle) string {
	t.Helper()
	name, ok := w.Name(h)
	require.True(t, ok, "record %s has no name", h)
	return name
}

// assertClosed checks that every reference field points at an attached
// record and that the reference index agrees with the field data.
func assertClosed(t *testing.T, w *Workspace) {
	t.Helper()
	edges := 0
	for _, r := range w.Objects() {
		for i, v := range r.Fields {
			target, ok := v.AsReference()
			if !ok {
				continue
			}
			edges++
			require.True(t, w.IsMember(target), "%s field %d dangles", r.Handle, i)
			require.Contains(t, w.SourceIndices(r.Handle, target), i)
		}
	}
	indexed := 0
	for _, h := range w.Handles() {
		indexed += w.NumSources(h)
	}
	require.Equal(t, edges, indexed, "reference index out of step with field data")
}
