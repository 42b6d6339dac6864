package workspace

import (
	"fmt"
	"slices"
	"time"

	"idfworkspace/pkg/domain"
	"idfworkspace/pkg/schema"
)

// Swap exchanges the type and field data of the records at a and b while
// their handles stay put, so every record pointing at a now points at what
// was b's data. Every source of a must be able to point at b's type and vice
// versa, or nothing changes. References between the pair follow the data.
// With keepLinks, reference fields the incoming data leaves empty are filled
// with the targets the handle held before, where the field accepts them.
func (w *Workspace) Swap(a, b domain.Handle, keepLinks bool) (err error) {
	defer w.observe("swap", time.Now(), &err)
	if err := w.guard(); err != nil {
		return err
	}
	ea, err := w.entryFor(a)
	if err != nil {
		return err
	}
	eb, err := w.entryFor(b)
	if err != nil {
		return err
	}
	if a == b {
		return nil
	}
	if err := w.checkRetarget(ea, eb.def, a, b); err != nil {
		return err
	}
	if err := w.checkRetarget(eb, ea.def, a, b); err != nil {
		return err
	}

	defA, fieldsA := ea.def, slices.Clone(ea.rec.Fields)
	defB, fieldsB := eb.def, slices.Clone(eb.rec.Fields)
	toA := swapPairRefs(fieldsB, a, b)
	toB := swapPairRefs(fieldsA, a, b)
	if keepLinks {
		toA = w.carryTargets(defB, toA, fieldsA, a, b)
		toB = w.carryTargets(defA, toB, fieldsB, a, b)
	}
	affected := append([]domain.Handle{a, b}, w.Sources(a)...)
	affected = append(affected, w.Sources(b)...)

	w.replaceData(ea, defB, toA)
	w.replaceData(eb, defA, toB)
	if report := w.checkRecords(affected, true); !report.Empty() {
		w.replaceData(ea, defA, fieldsA)
		w.replaceData(eb, defB, fieldsB)
		return domain.IntegrityError{Op: "swap", Handle: a, Reason: "swap would leave the workspace invalid at " + w.level.String(), Report: report}
	}
	w.notify(eventChanged, []domain.Handle{a, b})
	return nil
}

// checkRetarget verifies that every incoming edge of e from outside the pair
// accepts a record of type def.
func (w *Workspace) checkRetarget(e *entry, def *schema.TypeDef, a, b domain.Handle) error {
	member := slices.Clone(def.References)
	for ed := range e.sources {
		member = append(member, w.objects[ed.source].def.ForwardedListsOf(ed.field)...)
	}
	for ed := range e.sources {
		if ed.source == a || ed.source == b {
			continue
		}
		src := w.objects[ed.source]
		lists := src.def.ReferenceListsOf(ed.field)
		if len(lists) == 0 || schema.Intersects(lists, member) {
			continue
		}
		return domain.IntegrityError{
			Op:     "swap",
			Handle: e.rec.Handle,
			Reason: fmt.Sprintf("%s field %d of %s cannot point at a %s", src.def.Name, ed.field, ed.source, def.Name),
		}
	}
	return nil
}

func swapPairRefs(fields []domain.Value, a, b domain.Handle) []domain.Value {
	out := slices.Clone(fields)
	for i, v := range out {
		switch t, _ := v.AsReference(); t {
		case a:
			out[i] = domain.Ref(b)
		case b:
			out[i] = domain.Ref(a)
		}
	}
	return out
}

// carryTargets fills empty reference fields of incoming with the targets held
// in previous, first compatible field first. Targets inside the pair are skipped.
func (w *Workspace) carryTargets(def *schema.TypeDef, incoming, previous []domain.Value, a, b domain.Handle) []domain.Value {
	out := slices.Clone(incoming)
	taken := make(map[int]bool)
	for _, v := range previous {
		t, ok := v.AsReference()
		if !ok || t == a || t == b || slices.ContainsFunc(out, func(x domain.Value) bool { return x.Equal(v) }) {
			continue
		}
		n := max(len(out), def.NumFields())
		for i := 0; i < n; i++ {
			if taken[i] || !def.FieldIsReference(i) || !fieldAt(out, i).IsEmpty() {
				continue
			}
			lists := def.ReferenceListsOf(i)
			if len(lists) > 0 && !w.CanBeTarget(t, lists) {
				continue
			}
			for len(out) <= i {
				out = append(out, domain.Empty())
			}
			out[i] = v
			taken[i] = true
			break
		}
	}
	return out
}
