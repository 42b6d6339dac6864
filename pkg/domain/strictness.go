package domain

import (
	"fmt"
	"strings"
)

// StrictnessLevel selects which validity rules are enforced. Levels are ordered;
// every rule active at a level is also active at every stricter level.
type StrictnessLevel int

const (
	// StrictnessNone enforces only referential closure.
	StrictnessNone StrictnessLevel = iota
	// StrictnessDraft adds field typing, reference eligibility and name uniqueness.
	StrictnessDraft
	// StrictnessFinal adds required fields, extensible group shape and collection rules.
	StrictnessFinal
)

// StrictnessLevels lists every level from most to least permissive.
var StrictnessLevels = []StrictnessLevel{StrictnessNone, StrictnessDraft, StrictnessFinal}

func (l StrictnessLevel) String() string {
	switch l {
	case StrictnessNone:
		return "none"
	case StrictnessDraft:
		return "draft"
	case StrictnessFinal:
		return "final"
	default:
		return fmt.Sprintf("strictness(%d)", int(l))
	}
}

// Valid reports whether l is a known level.
func (l StrictnessLevel) Valid() bool {
	return l >= StrictnessNone && l <= StrictnessFinal
}

// ParseStrictness parses a level name case-insensitively.
func ParseStrictness(s string) (StrictnessLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return StrictnessNone, nil
	case "draft", "":
		return StrictnessDraft, nil
	case "final":
		return StrictnessFinal, nil
	default:
		return StrictnessNone, fmt.Errorf("unknown strictness level %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l StrictnessLevel) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid strictness level %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *StrictnessLevel) UnmarshalText(b []byte) error {
	parsed, err := ParseStrictness(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
