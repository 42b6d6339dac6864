package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func construction() TypeDef {
	return TypeDef{
		Name:       "Construction",
		Named:      true,
		Fields:     []FieldDef{Alpha("Name")},
		Extensible: []FieldDef{Reference("Layer", "MaterialName"), Numeric("Weight", "autosize")},
		MinGroups:  1,
		References: []string{"ConstructionNames"},
	}
}

func TestTypeDefFieldMapping(t *testing.T) {
	def := construction()
	assert.Equal(t, 1, def.NumFields())
	assert.Equal(t, 2, def.ExtensibleGroupSize())
	assert.True(t, def.HasName())

	f, ok := def.Field(3)
	require.True(t, ok)
	assert.Equal(t, "Layer", f.Name)
	f, ok = def.Field(4)
	require.True(t, ok)
	assert.Equal(t, "Weight", f.Name)
	_, ok = def.Field(-1)
	assert.False(t, ok)

	assert.True(t, def.FieldIsReference(1))
	assert.False(t, def.FieldIsReference(2))
	assert.Equal(t, []string{"MaterialName"}, def.ReferenceListsOf(5))
	assert.Nil(t, def.ReferenceListsOf(0))
	assert.True(t, f.AcceptsKey("AutoSize"))
	assert.False(t, f.AcceptsKey("autocalculate"))
}

func TestTypeDefGroups(t *testing.T) {
	def := construction()
	assert.True(t, def.AcceptsFieldCount(10))
	groups, partial := def.Groups(1)
	assert.Zero(t, groups)
	assert.Zero(t, partial)
	groups, partial = def.Groups(4)
	assert.Equal(t, 1, groups)
	assert.Equal(t, 1, partial)

	plain := TypeDef{Name: "Zone", Fields: []FieldDef{Alpha("Name")}}
	assert.True(t, plain.AcceptsFieldCount(1))
	assert.False(t, plain.AcceptsFieldCount(2))
	assert.False(t, plain.HasName())
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "Material NoMass", (&TypeDef{Name: "Material:NoMass"}).BaseName())
	assert.Equal(t, "Zone List", (&TypeDef{Name: "Zone_List"}).BaseName())
	assert.Equal(t, "Space", (&TypeDef{Name: "Zone", DefaultName: "Space"}).BaseName())
}

func TestFieldChaining(t *testing.T) {
	base := Reference("Node", "Nodes")
	fwd := base.Forward("ConnectedNodes").Require().Forbid()
	assert.Empty(t, base.References, "chaining does not alias")
	assert.Equal(t, []string{"ConnectedNodes"}, fwd.References)
	assert.True(t, fwd.Required)
	assert.Equal(t, RemovalForbidden, fwd.OnRemove)
	assert.Equal(t, "forbidden", fwd.OnRemove.String())
	assert.Equal(t, "reference", fwd.Kind.String())
}

func TestIntersects(t *testing.T) {
	assert.True(t, Intersects([]string{"A", "B"}, []string{"B"}))
	assert.False(t, Intersects([]string{"A"}, []string{"B"}))
	assert.True(t, Intersects([]string{AllObjects}, []string{"B"}))
	assert.False(t, Intersects(nil, []string{"B"}))
	a := &TypeDef{Name: "Material", References: []string{"MaterialName"}}
	b := &TypeDef{Name: "Material:NoMass", References: []string{"MaterialName"}}
	assert.True(t, a.SharesReferenceList(b))
}

func TestNewStaticValidates(t *testing.T) {
	s, err := NewStatic(construction(), TypeDef{Name: "Zone", Named: true, Fields: []FieldDef{Alpha("Name")}})
	require.NoError(t, err)
	def, ok := s.ObjectType(" zone ")
	require.True(t, ok)
	assert.Equal(t, "Zone", def.Name)
	require.Len(t, s.ObjectTypes(), 2)
	assert.Equal(t, "Construction", s.ObjectTypes()[0].Name)

	bad := []TypeDef{
		{Name: ""},
		{Name: "A", Named: true, Fields: []FieldDef{Numeric("N")}},
		{Name: "B", MinGroups: 2, MaxGroups: 1, Extensible: []FieldDef{Alpha("x")}},
		{Name: "C", MinGroups: 1},
		{Name: "D", Fields: []FieldDef{{Name: "x", Kind: KindAlpha, ObjectLists: []string{"L"}}}},
	}
	for _, def := range bad {
		_, err := NewStatic(def)
		assert.Error(t, err, def.Name)
	}
	_, err = NewStatic(TypeDef{Name: "Zone"}, TypeDef{Name: "ZONE"})
	assert.Error(t, err)
	assert.Panics(t, func() { MustStatic(TypeDef{}) })
}
