// Package schema describes object types for the workspace: their fields,
// which fields hold references, and which reference lists they belong to.
// The workspace consults a Provider and never mutates it.
package schema

import (
	"slices"
	"strings"
)

// AllObjects is the reference list that matches every record.
const AllObjects = "AllObjects"

// Kind is the data kind a field accepts.
type Kind uint8

const (
	// KindAlpha accepts free text.
	KindAlpha Kind = iota
	// KindNumeric accepts numbers and the field's keywords.
	KindNumeric
	// KindReference accepts a pointer to another record.
	KindReference
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindReference:
		return "reference"
	default:
		return "alpha"
	}
}

// RemovalPolicy decides what happens to a reference field when its target is removed.
type RemovalPolicy uint8

const (
	// RemovalNulls clears the field.
	RemovalNulls RemovalPolicy = iota
	// RemovalForbidden refuses removal of the target while the field points at it.
	RemovalForbidden
)

func (p RemovalPolicy) String() string {
	if p == RemovalForbidden {
		return "forbidden"
	}
	return "nulls"
}

// FieldDef describes one field slot.
type FieldDef struct {
	Name     string
	Kind     Kind
	Required bool
	// ObjectLists are the reference lists a reference field may point into.
	ObjectLists []string
	// References are the reference lists the field's target is registered under
	// while the field points at it.
	References []string
	// Keys are keywords accepted by numeric fields in place of a number.
	Keys     []string
	OnRemove RemovalPolicy
}

// Alpha returns a text field definition.
func Alpha(name string) FieldDef { return FieldDef{Name: name, Kind: KindAlpha} }

// Numeric returns a numeric field definition accepting the given keywords.
func Numeric(name string, keys ...string) FieldDef {
	return FieldDef{Name: name, Kind: KindNumeric, Keys: keys}
}

// Reference returns a reference field definition pointing into lists.
func Reference(name string, lists ...string) FieldDef {
	return FieldDef{Name: name, Kind: KindReference, ObjectLists: lists}
}

// Require marks the field required.
func (f FieldDef) Require() FieldDef {
	f.Required = true
	return f
}

// Forward registers the field's target under lists.
func (f FieldDef) Forward(lists ...string) FieldDef {
	f.References = append(slices.Clone(f.References), lists...)
	return f
}

// Forbid makes removal of the field's target fail instead of clearing the field.
func (f FieldDef) Forbid() FieldDef {
	f.OnRemove = RemovalForbidden
	return f
}

// IsReference reports whether the field holds a pointer.
func (f FieldDef) IsReference() bool { return f.Kind == KindReference }

// AcceptsKey reports whether s is one of the field's keywords.
func (f FieldDef) AcceptsKey(s string) bool {
	for _, k := range f.Keys {
		if strings.EqualFold(k, s) {
			return true
		}
	}
	return false
}

// TypeDef describes one object type. When Named is set, field 0 is the name.
// Extensible holds the template of the repeating field group appended after
// Fields; MaxGroups of zero means unbounded.
type TypeDef struct {
	Name        string
	Named       bool
	Fields      []FieldDef
	Extensible  []FieldDef
	MinGroups   int
	MaxGroups   int
	References  []string
	Unique      bool
	Required    bool
	DefaultName string
}

// NumFields returns the number of normal (non-extensible) fields.
func (t *TypeDef) NumFields() int { return len(t.Fields) }

// ExtensibleGroupSize returns the size of the repeating group, or 0.
func (t *TypeDef) ExtensibleGroupSize() int { return len(t.Extensible) }

// IsExtensible reports whether the type has a repeating tail.
func (t *TypeDef) IsExtensible() bool { return len(t.Extensible) > 0 }

// HasName reports whether records of the type carry a name in field 0.
func (t *TypeDef) HasName() bool { return t.Named && len(t.Fields) > 0 }

// Field returns the definition governing index i, mapping extensible indices
// onto the group template.
func (t *TypeDef) Field(i int) (FieldDef, bool) {
	if i < 0 {
		return FieldDef{}, false
	}
	if i < len(t.Fields) {
		return t.Fields[i], true
	}
	if len(t.Extensible) == 0 {
		return FieldDef{}, false
	}
	return t.Extensible[(i-len(t.Fields))%len(t.Extensible)], true
}

// FieldIsReference reports whether index i holds a pointer.
func (t *TypeDef) FieldIsReference(i int) bool {
	f, ok := t.Field(i)
	return ok && f.IsReference()
}

// ReferenceListsOf returns the lists the field at i may point into.
func (t *TypeDef) ReferenceListsOf(i int) []string {
	f, ok := t.Field(i)
	if !ok || !f.IsReference() {
		return nil
	}
	return f.ObjectLists
}

// ForwardedListsOf returns the lists the field at i registers its target under.
func (t *TypeDef) ForwardedListsOf(i int) []string {
	f, ok := t.Field(i)
	if !ok || !f.IsReference() {
		return nil
	}
	return f.References
}

// AcceptsFieldCount reports whether n field slots fit the type's shape.
func (t *TypeDef) AcceptsFieldCount(n int) bool {
	if n <= len(t.Fields) {
		return true
	}
	return t.IsExtensible()
}

// Groups splits a field count into complete extensible groups and a remainder.
func (t *TypeDef) Groups(n int) (groups, partial int) {
	if !t.IsExtensible() || n <= len(t.Fields) {
		return 0, 0
	}
	tail := n - len(t.Fields)
	return tail / len(t.Extensible), tail % len(t.Extensible)
}

// BaseName is the name auto-assigned records of the type start from.
func (t *TypeDef) BaseName() string {
	if t.DefaultName != "" {
		return t.DefaultName
	}
	return strings.NewReplacer(":", " ", "_", " ").Replace(t.Name)
}

// SharesReferenceList reports whether the two types belong to a common list.
func (t *TypeDef) SharesReferenceList(other *TypeDef) bool {
	return Intersects(t.References, other.References)
}

// Provider resolves object types by name, case-insensitively.
type Provider interface {
	ObjectType(name string) (*TypeDef, bool)
}

// Catalog is a Provider that can enumerate its types. Collection rules
// (required and unique object types) need a Catalog.
type Catalog interface {
	Provider
	ObjectTypes() []*TypeDef
}

// Intersects reports whether a and b share an element. AllObjects intersects
// any non-empty list.
func Intersects(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	for _, x := range a {
		if x == AllObjects {
			return true
		}
		for _, y := range b {
			if x == y || y == AllObjects {
				return true
			}
		}
	}
	return false
}
