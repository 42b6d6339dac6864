package workspace

import (
	"fmt"

	"idfworkspace/pkg/domain"
)

// ExtensibleGroupsRule flags partial extensible groups and group counts
// outside the type's bounds.
func ExtensibleGroupsRule() Rule {
	return extensibleGroupsRule{}
}

type extensibleGroupsRule struct{}

func (extensibleGroupsRule) Name() string { return "extensible_groups" }

func (extensibleGroupsRule) Level() domain.StrictnessLevel { return domain.StrictnessFinal }

func (r extensibleGroupsRule) Evaluate(view View, scope Scope) []domain.Violation {
	rec, def, ok := objectInScope(view, scope)
	if !ok || !def.IsExtensible() {
		return nil
	}
	groups, partial := def.Groups(len(rec.Fields))
	var msgs []string
	if partial != 0 {
		msgs = append(msgs, fmt.Sprintf("last extensible group has %d of %d fields", partial, def.ExtensibleGroupSize()))
	}
	if groups < def.MinGroups {
		msgs = append(msgs, fmt.Sprintf("%d extensible group(s), at least %d required", groups, def.MinGroups))
	}
	if def.MaxGroups > 0 && groups > def.MaxGroups {
		msgs = append(msgs, fmt.Sprintf("%d extensible group(s), at most %d allowed", groups, def.MaxGroups))
	}
	out := make([]domain.Violation, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, domain.Violation{
			Rule:       r.Name(),
			Category:   domain.CategoryExtensibleGroups,
			Level:      r.Level(),
			Handle:     rec.Handle,
			ObjectType: rec.Type,
			Field:      -1,
			Message:    msg,
		})
	}
	return out
}
