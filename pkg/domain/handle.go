package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Handle identifies a record within a workspace. The zero value is the null
// handle and denotes a detached record or an empty reference.
type Handle uuid.UUID

// NullHandle is the handle carried by detached records.
var NullHandle Handle

// NewHandle returns a fresh random handle.
func NewHandle() Handle {
	return Handle(uuid.New())
}

// ParseHandle accepts both the braced form produced by String and a bare UUID.
func ParseHandle(s string) (Handle, error) {
	trimmed := strings.TrimSpace(s)
	trimmed = strings.TrimPrefix(trimmed, "{")
	trimmed = strings.TrimSuffix(trimmed, "}")
	id, err := uuid.Parse(trimmed)
	if err != nil {
		return NullHandle, fmt.Errorf("parse handle %q: %w", s, err)
	}
	return Handle(id), nil
}

// MustParseHandle is ParseHandle for fixtures; it panics on malformed input.
func MustParseHandle(s string) Handle {
	h, err := ParseHandle(s)
	if err != nil {
		panic(err)
	}
	return h
}

// IsNull reports whether h is the null handle.
func (h Handle) IsNull() bool { return h == NullHandle }

// String renders the handle as {xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx}.
func (h Handle) String() string {
	return "{" + uuid.UUID(h).String() + "}"
}

// Less orders handles bytewise; used only to make map iteration deterministic.
func (h Handle) Less(other Handle) bool {
	for i := range h {
		if h[i] != other[i] {
			return h[i] < other[i]
		}
	}
	return false
}

// MarshalText implements encoding.TextMarshaler.
func (h Handle) MarshalText() ([]byte, error) {
	if h.IsNull() {
		return []byte{}, nil
	}
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Handle) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*h = NullHandle
		return nil
	}
	parsed, err := ParseHandle(string(b))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
