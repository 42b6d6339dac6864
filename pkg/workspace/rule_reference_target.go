package workspace

import (
	"fmt"
	"strings"

	"idfworkspace/pkg/domain"
)

// ReferenceTargetRule flags reference fields whose target is missing or is
// not registered under any of the field's reference lists.
func ReferenceTargetRule() Rule {
	return referenceTargetRule{}
}

type referenceTargetRule struct{}

func (referenceTargetRule) Name() string { return "reference_target" }

func (referenceTargetRule) Level() domain.StrictnessLevel { return domain.StrictnessDraft }

func (r referenceTargetRule) Evaluate(view View, scope Scope) []domain.Violation {
	rec, def, ok := objectInScope(view, scope)
	if !ok {
		return nil
	}
	var out []domain.Violation
	for i, v := range rec.Fields {
		target, isRef := v.AsReference()
		if !isRef || !def.FieldIsReference(i) {
			continue
		}
		if _, attached := view.Object(target); !attached {
			out = append(out, r.violation(rec, i, fmt.Sprintf("target %s is not in the workspace", target)))
			continue
		}
		lists := def.ReferenceListsOf(i)
		if len(lists) > 0 && !view.CanBeTarget(target, lists) {
			out = append(out, r.violation(rec, i, fmt.Sprintf("target %s is not in reference lists [%s]", target, strings.Join(lists, ", "))))
		}
	}
	return out
}

func (r referenceTargetRule) violation(rec domain.Record, field int, msg string) domain.Violation {
	return domain.Violation{
		Rule:       r.Name(),
		Category:   domain.CategoryReference,
		Level:      r.Level(),
		Handle:     rec.Handle,
		ObjectType: rec.Type,
		Field:      field,
		Message:    msg,
	}
}
