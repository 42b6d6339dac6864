package domain

// Record is one schema-typed object. Records returned by a workspace are
// detached copies; mutations go through workspace setters.
type Record struct {
	Handle Handle
	Type   string
	Fields []Value
}

// NewRecord builds a detached record.
func NewRecord(objectType string, fields ...Value) Record {
	return Record{Type: objectType, Fields: fields}
}

// Field returns field i, or Empty when i is out of range.
func (r Record) Field(i int) Value {
	if i < 0 || i >= len(r.Fields) {
		return Empty()
	}
	return r.Fields[i]
}

// NumFields returns the number of populated field slots.
func (r Record) NumFields() int { return len(r.Fields) }

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := r
	out.Fields = append([]Value(nil), r.Fields...)
	return out
}

// Initialized reports whether the record carries a handle.
func (r Record) Initialized() bool { return !r.Handle.IsNull() }

// StreamRecord is the serialization form of a record: every field rendered as text.
type StreamRecord struct {
	Handle string   `json:"handle,omitempty"`
	Type   string   `json:"type"`
	Fields []string `json:"fields"`
}
