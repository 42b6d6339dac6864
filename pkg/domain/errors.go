package domain

import (
	"errors"
	"fmt"
)

// ErrReentrantMutation is returned when a watcher callback tries to mutate the
// workspace that is notifying it.
var ErrReentrantMutation = errors.New("workspace mutation from watcher callback")

// ErrNullHandle is returned when an operation receives the null handle.
var ErrNullHandle = errors.New("null handle")

// SchemaError reports an object type unknown to the schema provider, or a
// record whose shape the schema cannot accommodate.
type SchemaError struct {
	Type   string
	Index  int
	Reason string
}

func (e SchemaError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("schema: object type %q (batch index %d): %s", e.Type, e.Index, e.Reason)
	}
	return fmt.Sprintf("schema: unknown object type %q (batch index %d)", e.Type, e.Index)
}

// NotFoundError reports a handle that is not attached to the workspace.
type NotFoundError struct {
	Handle Handle
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("object %s not found", e.Handle)
}

// IntegrityError reports a mutation refused because it would break
// referential integrity, a removal policy, or validity at the workspace's
// strictness level. The workspace is unchanged when it is returned.
type IntegrityError struct {
	Op     string
	Handle Handle
	Reason string
	Report Report
}

func (e IntegrityError) Error() string {
	msg := fmt.Sprintf("%s refused", e.Op)
	if !e.Handle.IsNull() {
		msg += " for " + e.Handle.String()
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if !e.Report.Empty() {
		msg += fmt.Sprintf(" (%d violation(s) at %s)", e.Report.Len(), e.Report.Level)
	}
	return msg
}

// NameConflictError reports a name clash that could not be resolved because
// automatic renaming was disabled.
type NameConflictError struct {
	Type string
	Name string
}

func (e NameConflictError) Error() string {
	return fmt.Sprintf("name %q conflicts with an existing %s", e.Name, e.Type)
}

// IsNotFound reports whether err carries a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}
