package workspace

import (
	"fmt"

	"idfworkspace/pkg/domain"
	"idfworkspace/pkg/schema"
)

// RequiredObjectRule flags required object types with no records. It needs a
// schema.Catalog; other providers cannot enumerate their types.
func RequiredObjectRule() Rule {
	return requiredObjectRule{}
}

type requiredObjectRule struct{}

func (requiredObjectRule) Name() string { return "required_object" }

func (requiredObjectRule) Level() domain.StrictnessLevel { return domain.StrictnessFinal }

func (r requiredObjectRule) Evaluate(view View, scope Scope) []domain.Violation {
	catalog, ok := view.Schema().(schema.Catalog)
	if !scope.Collection() || !ok {
		return nil
	}
	var out []domain.Violation
	for _, def := range catalog.ObjectTypes() {
		if !def.Required || view.NumObjectsOfType(def.Name) > 0 {
			continue
		}
		out = append(out, domain.Violation{
			Rule:       r.Name(),
			Category:   domain.CategoryRequiredObject,
			Level:      r.Level(),
			ObjectType: def.Name,
			Field:      -1,
			Message:    fmt.Sprintf("at least one %s is required", def.Name),
		})
	}
	return out
}

// UniqueObjectRule flags unique object types with more than one record. The
// violation is reported against every record after the first.
func UniqueObjectRule() Rule {
	return uniqueObjectRule{}
}

type uniqueObjectRule struct{}

func (uniqueObjectRule) Name() string { return "unique_object" }

func (uniqueObjectRule) Level() domain.StrictnessLevel { return domain.StrictnessFinal }

func (r uniqueObjectRule) Evaluate(view View, scope Scope) []domain.Violation {
	catalog, ok := view.Schema().(schema.Catalog)
	if !scope.Collection() || !ok {
		return nil
	}
	var out []domain.Violation
	for _, def := range catalog.ObjectTypes() {
		if !def.Unique || view.NumObjectsOfType(def.Name) < 2 {
			continue
		}
		recs := view.ObjectsByType(def.Name)
		for _, rec := range recs[1:] {
			out = append(out, domain.Violation{
				Rule:       r.Name(),
				Category:   domain.CategoryUniqueObject,
				Level:      r.Level(),
				Handle:     rec.Handle,
				ObjectType: def.Name,
				Field:      -1,
				Message:    fmt.Sprintf("%s is unique but %d exist", def.Name, len(recs)),
			})
		}
	}
	return out
}
