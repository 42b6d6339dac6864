package workspace

import (
	"fmt"
	"log/slog"
	"time"

	"idfworkspace/pkg/domain"
	"idfworkspace/pkg/schema"
)

// SetField sets field i of the record at h. Reference fields accept a
// reference to an attached record, or text naming one (by handle or by name
// within the field's reference lists). Setting the name field resolves
// conflicts as SetName does. The change is undone and an error returned if
// the record would violate the workspace's strictness level.
func (w *Workspace) SetField(h domain.Handle, i int, v domain.Value) (err error) {
	defer w.observe("set_field", time.Now(), &err)
	if err := w.guard(); err != nil {
		return err
	}
	e, err := w.entryFor(h)
	if err != nil {
		return err
	}
	if e.def.HasName() && i == 0 {
		_, err := w.setName(e, v.Text())
		return err
	}
	return w.setField(e, i, v)
}

// SetString sets a text or keyword value.
func (w *Workspace) SetString(h domain.Handle, i int, s string) error {
	return w.SetField(h, i, domain.Str(s))
}

// SetNumber sets a numeric value.
func (w *Workspace) SetNumber(h domain.Handle, i int, f float64) error {
	return w.SetField(h, i, domain.Num(f))
}

// SetPointer points reference field i of h at target. The null handle clears it.
func (w *Workspace) SetPointer(h domain.Handle, i int, target domain.Handle) error {
	return w.SetField(h, i, domain.Ref(target))
}

// SetName renames the record at h and returns the name actually applied,
// which carries a fresh suffix when the requested one clashes.
func (w *Workspace) SetName(h domain.Handle, name string) (applied string, err error) {
	defer w.observe("set_name", time.Now(), &err)
	if err := w.guard(); err != nil {
		return "", err
	}
	e, err := w.entryFor(h)
	if err != nil {
		return "", err
	}
	return w.setName(e, name)
}

func (w *Workspace) setName(e *entry, name string) (string, error) {
	if !e.def.HasName() {
		return "", domain.SchemaError{Type: e.def.Name, Index: -1, Reason: "object type has no name field"}
	}
	if name != "" && len(w.conflicting(name, e.def, e.rec.Handle)) > 0 {
		renamed := nextInSeries(name, w.conflictSeries(e.def, name, e.rec.Handle), false)
		w.logger.Info("renamed object to avoid name conflict",
			slog.String("type", e.def.Name),
			slog.String("from", name),
			slog.String("to", renamed))
		name = renamed
	}
	if err := w.setField(e, 0, domain.Str(name)); err != nil {
		return "", err
	}
	return name, nil
}

func (w *Workspace) setField(e *entry, i int, v domain.Value) error {
	fd, ok := e.def.Field(i)
	if !ok || (i >= len(e.rec.Fields) && i >= e.def.NumFields()) {
		return domain.SchemaError{Type: e.def.Name, Index: -1, Reason: fmt.Sprintf("field %d is out of range", i)}
	}
	v = coerce(fd, v)
	if fd.IsReference() && !v.IsEmpty() {
		t, err := w.resolveSetterTarget(fd, v)
		if err != nil {
			return domain.IntegrityError{Op: "set field", Handle: e.rec.Handle, Reason: err.Error()}
		}
		v = domain.Ref(t)
	}
	old := e.rec.Field(i)
	oldLen := len(e.rec.Fields)
	affected := []domain.Handle{e.rec.Handle}
	if prev, ok := old.AsReference(); ok && len(fd.References) > 0 {
		// the old target loses the lists this field forwarded it into
		affected = append(affected, w.Sources(prev)...)
	}
	w.recordFieldSet(e, i, v)
	if report := w.checkRecords(affected, false); !report.Empty() {
		w.recordFieldSet(e, i, old)
		if len(e.rec.Fields) > oldLen {
			e.rec.Fields = e.rec.Fields[:oldLen]
		}
		return domain.IntegrityError{Op: "set field", Handle: e.rec.Handle, Reason: "record would be invalid at " + w.level.String(), Report: report}
	}
	w.notify(eventChanged, []domain.Handle{e.rec.Handle})
	return nil
}

func (w *Workspace) resolveSetterTarget(fd schema.FieldDef, v domain.Value) (domain.Handle, error) {
	if h, ok := v.AsReference(); ok {
		if !w.IsMember(h) {
			return domain.NullHandle, fmt.Errorf("target %s is not in the workspace", h)
		}
		return h, nil
	}
	text := v.Text()
	if h, err := domain.ParseHandle(text); err == nil {
		if !w.IsMember(h) {
			return domain.NullHandle, fmt.Errorf("target %s is not in the workspace", h)
		}
		return h, nil
	}
	if h, ok := w.lookupByNameAndReference(text, fd.ObjectLists); ok {
		return h, nil
	}
	return domain.NullHandle, fmt.Errorf("no object named %q can be referenced from %s", text, fd.Name)
}

// PushExtensibleGroup appends one extensible group to the record at h.
// Missing trailing values are left empty.
func (w *Workspace) PushExtensibleGroup(h domain.Handle, values ...domain.Value) (err error) {
	defer w.observe("push_extensible_group", time.Now(), &err)
	if err := w.guard(); err != nil {
		return err
	}
	e, err := w.entryFor(h)
	if err != nil {
		return err
	}
	size := e.def.ExtensibleGroupSize()
	if size == 0 {
		return domain.SchemaError{Type: e.def.Name, Index: -1, Reason: "object type is not extensible"}
	}
	if len(values) > size {
		return domain.SchemaError{Type: e.def.Name, Index: -1, Reason: fmt.Sprintf("%d values for a group of %d", len(values), size)}
	}
	start := max(len(e.rec.Fields), e.def.NumFields())
	group := make([]domain.Value, size)
	for j := range group {
		fd, _ := e.def.Field(start + j)
		if j < len(values) {
			group[j] = coerce(fd, values[j])
		}
		if fd.IsReference() && !group[j].IsEmpty() {
			t, err := w.resolveSetterTarget(fd, group[j])
			if err != nil {
				return domain.IntegrityError{Op: "push extensible group", Handle: h, Reason: err.Error()}
			}
			group[j] = domain.Ref(t)
		}
	}
	oldLen := len(e.rec.Fields)
	for j, v := range group {
		w.recordFieldSet(e, start+j, v)
	}
	if report := w.checkRecords([]domain.Handle{h}, false); !report.Empty() {
		w.truncate(e, oldLen)
		return domain.IntegrityError{Op: "push extensible group", Handle: h, Reason: "record would be invalid at " + w.level.String(), Report: report}
	}
	w.notify(eventChanged, []domain.Handle{h})
	return nil
}

// PopExtensibleGroup removes the last extensible group of the record at h and
// returns its values.
func (w *Workspace) PopExtensibleGroup(h domain.Handle) (values []domain.Value, err error) {
	defer w.observe("pop_extensible_group", time.Now(), &err)
	if err := w.guard(); err != nil {
		return nil, err
	}
	e, err := w.entryFor(h)
	if err != nil {
		return nil, err
	}
	size := e.def.ExtensibleGroupSize()
	if size == 0 {
		return nil, domain.SchemaError{Type: e.def.Name, Index: -1, Reason: "object type is not extensible"}
	}
	groups, partial := e.def.Groups(len(e.rec.Fields))
	if groups == 0 && partial == 0 {
		return nil, domain.IntegrityError{Op: "pop extensible group", Handle: h, Reason: "no extensible groups"}
	}
	drop := size
	if partial != 0 {
		drop = partial
	}
	oldLen := len(e.rec.Fields)
	popped := append([]domain.Value(nil), e.rec.Fields[oldLen-drop:]...)
	w.truncate(e, oldLen-drop)
	if report := w.checkRecords([]domain.Handle{h}, false); !report.Empty() {
		for j, v := range popped {
			w.recordFieldSet(e, oldLen-drop+j, v)
		}
		return nil, domain.IntegrityError{Op: "pop extensible group", Handle: h, Reason: "record would be invalid at " + w.level.String(), Report: report}
	}
	w.notify(eventChanged, []domain.Handle{h})
	return popped, nil
}

// truncate shortens e to n fields, unlinking dropped references.
func (w *Workspace) truncate(e *entry, n int) {
	for i := len(e.rec.Fields) - 1; i >= n; i-- {
		w.recordFieldSet(e, i, domain.Empty())
	}
	e.rec.Fields = e.rec.Fields[:n]
}

func (w *Workspace) entryFor(h domain.Handle) (*entry, error) {
	if h.IsNull() {
		return nil, domain.ErrNullHandle
	}
	e, ok := w.objects[h]
	if !ok {
		return nil, domain.NotFoundError{Handle: h}
	}
	return e, nil
}

// checkRecords evaluates the active rules against hs and, when collection is
// set, the collection rules.
func (w *Workspace) checkRecords(hs []domain.Handle, collection bool) domain.Report {
	return w.rules.Evaluate(w, hs, w.level, collection)
}
