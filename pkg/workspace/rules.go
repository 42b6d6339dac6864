package workspace

import (
	"slices"

	"idfworkspace/pkg/domain"
	"idfworkspace/pkg/schema"
)

// View is the read-only surface rules evaluate against.
type View interface {
	Schema() schema.Provider
	Handles() []domain.Handle
	Object(h domain.Handle) (domain.Record, bool)
	TypeDefOf(h domain.Handle) (*schema.TypeDef, bool)
	CanBeTarget(h domain.Handle, lists []string) bool
	NameConflicts(h domain.Handle) []domain.Handle
	NumObjectsOfType(objectType string) int
	ObjectsByType(objectType string) []domain.Record
}

// Scope selects what a rule inspects: a single record, or the workspace as a
// whole when Handle is null.
type Scope struct {
	Handle domain.Handle
}

// Collection reports whether the scope is the whole workspace.
func (s Scope) Collection() bool { return s.Handle.IsNull() }

// Rule is one validity check, enforced at Level and every stricter level.
// Object rules ignore collection scopes and collection rules ignore object scopes.
type Rule interface {
	Name() string
	Level() domain.StrictnessLevel
	Evaluate(view View, scope Scope) []domain.Violation
}

// RulesEngine orchestrates rule evaluation.
type RulesEngine struct {
	rules []Rule
}

// NewRulesEngine constructs an engine with no rules.
func NewRulesEngine() *RulesEngine {
	return &RulesEngine{}
}

// NewDefaultRulesEngine builds an engine with the built-in rule set.
func NewDefaultRulesEngine() *RulesEngine {
	engine := NewRulesEngine()
	engine.Register(FieldTypeRule())
	engine.Register(ReferenceTargetRule())
	engine.Register(NameConflictRule())
	engine.Register(RequiredFieldRule())
	engine.Register(ExtensibleGroupsRule())
	engine.Register(RequiredObjectRule())
	engine.Register(UniqueObjectRule())
	return engine
}

// Register appends a rule to the engine.
func (e *RulesEngine) Register(rule Rule) {
	e.rules = append(e.rules, rule)
}

// Rules returns the registered rules in evaluation order.
func (e *RulesEngine) Rules() []Rule {
	return slices.Clone(e.rules)
}

// Evaluate runs the rules active at level against each handle in turn and,
// when collection is set, against the workspace as a whole.
func (e *RulesEngine) Evaluate(view View, handles []domain.Handle, level domain.StrictnessLevel, collection bool) domain.Report {
	report := domain.Report{Level: level}
	active := make([]Rule, 0, len(e.rules))
	for _, rule := range e.rules {
		if rule.Level() <= level {
			active = append(active, rule)
		}
	}
	if len(active) == 0 {
		return report
	}
	for _, h := range handles {
		for _, rule := range active {
			report.Violations = append(report.Violations, rule.Evaluate(view, Scope{Handle: h})...)
		}
	}
	if collection {
		for _, rule := range active {
			report.Violations = append(report.Violations, rule.Evaluate(view, Scope{})...)
		}
	}
	return report
}

func (e *RulesEngine) clone() *RulesEngine {
	return &RulesEngine{rules: slices.Clone(e.rules)}
}

// objectInScope resolves an object scope to its record and type.
func objectInScope(view View, scope Scope) (domain.Record, *schema.TypeDef, bool) {
	if scope.Collection() {
		return domain.Record{}, nil, false
	}
	rec, ok := view.Object(scope.Handle)
	if !ok {
		return domain.Record{}, nil, false
	}
	def, ok := view.TypeDefOf(scope.Handle)
	if !ok {
		return domain.Record{}, nil, false
	}
	return rec, def, true
}

// RuleFunc adapts a function into a Rule.
type RuleFunc struct {
	RuleName  string
	RuleLevel domain.StrictnessLevel
	Fn        func(view View, scope Scope) []domain.Violation
}

// Name implements Rule.
func (r RuleFunc) Name() string { return r.RuleName }

// Level implements Rule.
func (r RuleFunc) Level() domain.StrictnessLevel { return r.RuleLevel }

// Evaluate implements Rule.
func (r RuleFunc) Evaluate(view View, scope Scope) []domain.Violation {
	if r.Fn == nil {
		return nil
	}
	return r.Fn(view, scope)
}
