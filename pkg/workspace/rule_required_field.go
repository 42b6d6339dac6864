package workspace

import (
	"fmt"

	"idfworkspace/pkg/domain"
)

// RequiredFieldRule flags empty required fields, including those of every
// present extensible group.
func RequiredFieldRule() Rule {
	return requiredFieldRule{}
}

type requiredFieldRule struct{}

func (requiredFieldRule) Name() string { return "required_field" }

func (requiredFieldRule) Level() domain.StrictnessLevel { return domain.StrictnessFinal }

func (r requiredFieldRule) Evaluate(view View, scope Scope) []domain.Violation {
	rec, def, ok := objectInScope(view, scope)
	if !ok {
		return nil
	}
	n := max(def.NumFields(), len(rec.Fields))
	var out []domain.Violation
	for i := 0; i < n; i++ {
		fd, ok := def.Field(i)
		if !ok || !fd.Required || !rec.Field(i).IsEmpty() {
			continue
		}
		out = append(out, domain.Violation{
			Rule:       r.Name(),
			Category:   domain.CategoryRequiredField,
			Level:      r.Level(),
			Handle:     rec.Handle,
			ObjectType: rec.Type,
			Field:      i,
			Message:    fmt.Sprintf("%s is required", fd.Name),
		})
	}
	return out
}
