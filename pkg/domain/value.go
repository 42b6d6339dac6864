package domain

import (
	"strconv"
	"strings"
)

// ValueKind enumerates the shapes a field value can take.
type ValueKind uint8

const (
	// KindEmpty marks an absent value.
	KindEmpty ValueKind = iota
	// KindString marks free text, including keywords such as "autosize".
	KindString
	// KindNumber marks a numeric value.
	KindNumber
	// KindReference marks a pointer to another record.
	KindReference
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindReference:
		return "reference"
	default:
		return "empty"
	}
}

// Value is a single field value. The zero Value is empty.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	ref  Handle
}

// Empty returns the absent value.
func Empty() Value { return Value{} }

// Str wraps text. The empty string collapses to Empty.
func Str(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{kind: KindString, str: s}
}

// Num wraps a number.
func Num(f float64) Value { return Value{kind: KindNumber, num: f} }

// Ref wraps a handle. The null handle collapses to Empty.
func Ref(h Handle) Value {
	if h.IsNull() {
		return Value{}
	}
	return Value{kind: KindReference, ref: h}
}

// Kind returns the value's shape.
func (v Value) Kind() ValueKind { return v.kind }

// IsEmpty reports whether the value is absent.
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// AsString returns the text held by a string value.
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

// AsNumber returns the number held by a numeric value.
func (v Value) AsNumber() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// AsReference returns the target of a reference value.
func (v Value) AsReference() (Handle, bool) {
	return v.ref, v.kind == KindReference
}

// Text renders the value in its serial form.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return FormatNumber(v.num)
	case KindReference:
		return v.ref.String()
	default:
		return ""
	}
}

// Equal compares kind and content. Strings compare case-sensitively.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindNumber:
		return v.num == other.num
	case KindReference:
		return v.ref == other.ref
	default:
		return true
	}
}

// EqualFold is Equal with case-insensitive string comparison.
func (v Value) EqualFold(other Value) bool {
	if v.kind == KindString && other.kind == KindString {
		return strings.EqualFold(v.str, other.str)
	}
	return v.Equal(other)
}

func (v Value) String() string {
	if v.kind == KindEmpty {
		return "<empty>"
	}
	return v.Text()
}

// FormatNumber renders f with the shortest representation that parses back exactly.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ParseNumber parses a serial number, tolerating surrounding whitespace.
func ParseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
