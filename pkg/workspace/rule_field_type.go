package workspace

import (
	"fmt"

	"idfworkspace/pkg/domain"
	"idfworkspace/pkg/schema"
)

// FieldTypeRule flags field data that does not fit the field's kind, and
// fields beyond the end of a non-extensible type.
func FieldTypeRule() Rule {
	return fieldTypeRule{}
}

type fieldTypeRule struct{}

func (fieldTypeRule) Name() string { return "field_type" }

func (fieldTypeRule) Level() domain.StrictnessLevel { return domain.StrictnessDraft }

func (r fieldTypeRule) Evaluate(view View, scope Scope) []domain.Violation {
	rec, def, ok := objectInScope(view, scope)
	if !ok {
		return nil
	}
	var out []domain.Violation
	for i, v := range rec.Fields {
		if v.IsEmpty() {
			continue
		}
		fd, ok := def.Field(i)
		if !ok {
			out = append(out, r.violation(rec, i, "field is beyond the end of the object type"))
			continue
		}
		switch fd.Kind {
		case schema.KindNumeric:
			if s, isStr := v.AsString(); isStr && !fd.AcceptsKey(s) {
				out = append(out, r.violation(rec, i, fmt.Sprintf("%s expects a number, got %q", fd.Name, s)))
			} else if v.Kind() == domain.KindReference {
				out = append(out, r.violation(rec, i, fmt.Sprintf("%s expects a number, got a reference", fd.Name)))
			}
		case schema.KindReference:
			if v.Kind() != domain.KindReference {
				out = append(out, r.violation(rec, i, fmt.Sprintf("%s expects a reference, got %q", fd.Name, v.Text())))
			}
		default:
			if v.Kind() == domain.KindReference {
				out = append(out, r.violation(rec, i, fmt.Sprintf("%s expects text, got a reference", fd.Name)))
			}
		}
	}
	return out
}

func (r fieldTypeRule) violation(rec domain.Record, field int, msg string) domain.Violation {
	return domain.Violation{
		Rule:       r.Name(),
		Category:   domain.CategoryFieldType,
		Level:      r.Level(),
		Handle:     rec.Handle,
		ObjectType: rec.Type,
		Field:      field,
		Message:    msg,
	}
}
