package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrictnessParse(t *testing.T) {
	for _, level := range StrictnessLevels {
		parsed, err := ParseStrictness(level.String())
		require.NoError(t, err)
		assert.Equal(t, level, parsed)
	}
	level, err := ParseStrictness(" FINAL ")
	require.NoError(t, err)
	assert.Equal(t, StrictnessFinal, level)
	level, err = ParseStrictness("")
	require.NoError(t, err)
	assert.Equal(t, StrictnessDraft, level)
	_, err = ParseStrictness("pedantic")
	assert.Error(t, err)

	assert.Less(t, StrictnessNone, StrictnessDraft)
	assert.Less(t, StrictnessDraft, StrictnessFinal)
	assert.False(t, StrictnessLevel(9).Valid())
	_, err = StrictnessLevel(9).MarshalText()
	assert.Error(t, err)
}

func TestReport(t *testing.T) {
	h := NewHandle()
	r := Report{Level: StrictnessFinal}
	assert.True(t, r.Empty())
	assert.Equal(t, "valid at final", r.String())

	r.Add(Violation{Rule: "required_field", Category: CategoryRequiredField, Level: StrictnessFinal, Handle: h, ObjectType: "Material", Field: 1, Message: "Thickness is required"})
	r.Merge(Report{Violations: []Violation{{Rule: "required_object", Category: CategoryRequiredObject, Level: StrictnessFinal, ObjectType: "Version", Field: -1}}})
	assert.Equal(t, 2, r.Len())
	assert.Len(t, r.ForHandle(h), 1)
	assert.Len(t, r.ByCategory(CategoryRequiredObject), 1)
	assert.Contains(t, r.String(), "2 violation(s) at final:")
	assert.Contains(t, r.String(), "Material "+h.String()+" field 1: Thickness is required")
}

func TestErrors(t *testing.T) {
	h := NewHandle()
	err := error(IntegrityError{Op: "remove", Handle: h, Reason: "forbidden", Report: Report{Level: StrictnessDraft, Violations: []Violation{{}}}})
	assert.Equal(t, "remove refused for "+h.String()+": forbidden (1 violation(s) at draft)", err.Error())

	wrapped := errors.Join(errors.New("context"), NotFoundError{Handle: h})
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsNotFound(ErrNullHandle))

	assert.Contains(t, SchemaError{Type: "Bogus", Index: 2}.Error(), "unknown object type \"Bogus\"")
	assert.Contains(t, NameConflictError{Type: "Zone", Name: "A"}.Error(), "\"A\"")
}
