package workspace

import (
	"fmt"

	"idfworkspace/pkg/domain"
)

// NameConflictRule flags records sharing a name with a record of the same
// type or of a type in a common reference list.
func NameConflictRule() Rule {
	return nameConflictRule{}
}

type nameConflictRule struct{}

func (nameConflictRule) Name() string { return "name_conflict" }

func (nameConflictRule) Level() domain.StrictnessLevel { return domain.StrictnessDraft }

func (r nameConflictRule) Evaluate(view View, scope Scope) []domain.Violation {
	rec, def, ok := objectInScope(view, scope)
	if !ok || !def.HasName() {
		return nil
	}
	conflicts := view.NameConflicts(rec.Handle)
	if len(conflicts) == 0 {
		return nil
	}
	name, _ := rec.Field(0).AsString()
	return []domain.Violation{{
		Rule:       r.Name(),
		Category:   domain.CategoryNameConflict,
		Level:      r.Level(),
		Handle:     rec.Handle,
		ObjectType: rec.Type,
		Field:      0,
		Message:    fmt.Sprintf("name %q is shared with %d other object(s)", name, len(conflicts)),
	}}
}
