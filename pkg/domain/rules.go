package domain

import (
	"fmt"
	"strings"
)

// Category classifies a validity violation.
type Category string

// Violation categories reported by the built-in rules.
const (
	CategoryFieldType        Category = "field data type"
	CategoryReference        Category = "reference does not resolve"
	CategoryNameConflict     Category = "name conflict"
	CategoryRequiredField    Category = "required field empty"
	CategoryExtensibleGroups Category = "extensible group count mismatch"
	CategoryRequiredObject   Category = "required object missing"
	CategoryUniqueObject     Category = "unique object duplicated"
	CategoryCustom           Category = "custom"
)

// Violation is a single rule failure. Field is -1 for object or collection
// level findings; Handle is null for collection level findings.
type Violation struct {
	Rule       string
	Category   Category
	Level      StrictnessLevel
	Handle     Handle
	ObjectType string
	Field      int
	Message    string
}

func (v Violation) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", v.Level, v.Category)
	if v.ObjectType != "" {
		fmt.Fprintf(&b, " %s", v.ObjectType)
	}
	if !v.Handle.IsNull() {
		fmt.Fprintf(&b, " %s", v.Handle)
	}
	if v.Field >= 0 {
		fmt.Fprintf(&b, " field %d", v.Field)
	}
	if v.Message != "" {
		fmt.Fprintf(&b, ": %s", v.Message)
	}
	return b.String()
}

// Report aggregates violations in evaluation order.
type Report struct {
	Level      StrictnessLevel
	Violations []Violation
}

// Merge appends violations from another report.
func (r *Report) Merge(other Report) {
	r.Violations = append(r.Violations, other.Violations...)
}

// Add appends a single violation.
func (r *Report) Add(v Violation) {
	r.Violations = append(r.Violations, v)
}

// Empty reports whether no violations were recorded.
func (r Report) Empty() bool { return len(r.Violations) == 0 }

// Len returns the number of violations.
func (r Report) Len() int { return len(r.Violations) }

// ForHandle returns the violations recorded against h.
func (r Report) ForHandle(h Handle) []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Handle == h {
			out = append(out, v)
		}
	}
	return out
}

// ByCategory returns the violations of the given category.
func (r Report) ByCategory(c Category) []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Category == c {
			out = append(out, v)
		}
	}
	return out
}

func (r Report) String() string {
	if r.Empty() {
		return fmt.Sprintf("valid at %s", r.Level)
	}
	lines := make([]string, 0, len(r.Violations)+1)
	lines = append(lines, fmt.Sprintf("%d violation(s) at %s:", len(r.Violations), r.Level))
	for _, v := range r.Violations {
		lines = append(lines, "  "+v.String())
	}
	return strings.Join(lines, "\n")
}
