package schema

import (
	"fmt"
	"strings"
)

// Static is an immutable, in-memory Catalog.
type Static struct {
	types map[string]*TypeDef
	order []*TypeDef
}

// NewStatic validates defs and builds a catalog preserving their order.
func NewStatic(defs ...TypeDef) (*Static, error) {
	s := &Static{types: make(map[string]*TypeDef, len(defs))}
	for i := range defs {
		def := defs[i]
		if err := validateTypeDef(&def); err != nil {
			return nil, err
		}
		key := strings.ToLower(def.Name)
		if _, dup := s.types[key]; dup {
			return nil, fmt.Errorf("duplicate object type %q", def.Name)
		}
		s.types[key] = &def
		s.order = append(s.order, &def)
	}
	return s, nil
}

// MustStatic is NewStatic for fixtures; it panics on invalid definitions.
func MustStatic(defs ...TypeDef) *Static {
	s, err := NewStatic(defs...)
	if err != nil {
		panic(err)
	}
	return s
}

// ObjectType implements Provider.
func (s *Static) ObjectType(name string) (*TypeDef, bool) {
	def, ok := s.types[strings.ToLower(strings.TrimSpace(name))]
	return def, ok
}

// ObjectTypes implements Catalog.
func (s *Static) ObjectTypes() []*TypeDef {
	out := make([]*TypeDef, len(s.order))
	copy(out, s.order)
	return out
}

func validateTypeDef(def *TypeDef) error {
	if strings.TrimSpace(def.Name) == "" {
		return fmt.Errorf("object type name required")
	}
	if def.Named {
		if len(def.Fields) == 0 || def.Fields[0].Kind != KindAlpha {
			return fmt.Errorf("object type %q: named types need an alpha field 0", def.Name)
		}
	}
	if def.MinGroups < 0 || def.MaxGroups < 0 {
		return fmt.Errorf("object type %q: negative group bounds", def.Name)
	}
	if def.MaxGroups > 0 && def.MinGroups > def.MaxGroups {
		return fmt.Errorf("object type %q: min groups %d exceeds max %d", def.Name, def.MinGroups, def.MaxGroups)
	}
	if (def.MinGroups > 0 || def.MaxGroups > 0) && len(def.Extensible) == 0 {
		return fmt.Errorf("object type %q: group bounds without extensible fields", def.Name)
	}
	for i, f := range append(append([]FieldDef(nil), def.Fields...), def.Extensible...) {
		if f.Kind != KindReference && (len(f.ObjectLists) > 0 || len(f.References) > 0) {
			return fmt.Errorf("object type %q field %d (%s): reference lists on a %s field", def.Name, i, f.Name, f.Kind)
		}
	}
	return nil
}
