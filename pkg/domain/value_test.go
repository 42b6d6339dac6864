package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueConstructorsCollapseToEmpty(t *testing.T) {
	assert.True(t, Str("").IsEmpty())
	assert.True(t, Ref(NullHandle).IsEmpty())
	assert.True(t, Empty().Equal(Value{}))
	assert.Equal(t, "<empty>", Empty().String())
	assert.Equal(t, KindEmpty, Value{}.Kind())
}

func TestValueText(t *testing.T) {
	h := NewHandle()
	assert.Equal(t, "Office", Str("Office").Text())
	assert.Equal(t, "0.1", Num(0.1).Text())
	assert.Equal(t, "1e+21", Num(1e21).Text())
	assert.Equal(t, "-3", Num(-3).Text())
	assert.Equal(t, h.String(), Ref(h).Text())
	assert.Equal(t, "", Empty().Text())
}

func TestValueAccessors(t *testing.T) {
	s, ok := Str("x").AsString()
	assert.True(t, ok)
	assert.Equal(t, "x", s)
	_, ok = Num(1).AsString()
	assert.False(t, ok)

	f, ok := Num(2.5).AsNumber()
	assert.True(t, ok)
	assert.InDelta(t, 2.5, f, 0)

	h := NewHandle()
	got, ok := Ref(h).AsReference()
	assert.True(t, ok)
	assert.Equal(t, h, got)
	assert.Equal(t, "reference", Ref(h).Kind().String())
}

func TestValueEquality(t *testing.T) {
	assert.True(t, Str("Zone").EqualFold(Str("ZONE")))
	assert.False(t, Str("Zone").Equal(Str("ZONE")))
	assert.False(t, Str("1").Equal(Num(1)))
	assert.True(t, Num(1).EqualFold(Num(1.0)))
	h := NewHandle()
	assert.True(t, Ref(h).Equal(Ref(h)))
	assert.False(t, Ref(h).Equal(Ref(NewHandle())))
}

func TestParseNumber(t *testing.T) {
	f, ok := ParseNumber(" 12.5 ")
	assert.True(t, ok)
	assert.InDelta(t, 12.5, f, 0)
	_, ok = ParseNumber("autosize")
	assert.False(t, ok)
	f, ok = ParseNumber(FormatNumber(0.30000000000000004))
	assert.True(t, ok)
	assert.Equal(t, 0.30000000000000004, f)
}

func TestRecordHelpers(t *testing.T) {
	r := NewRecord("Zone", Str("A"), Num(1))
	assert.False(t, r.Initialized())
	assert.Equal(t, 2, r.NumFields())
	assert.True(t, r.Field(5).IsEmpty())
	assert.True(t, r.Field(-1).IsEmpty())

	c := r.Clone()
	c.Fields[0] = Str("B")
	assert.Equal(t, "A", r.Field(0).Text())
}
