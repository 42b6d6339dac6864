package workspace

import (
	"fmt"
	"slices"
	"time"

	"idfworkspace/pkg/domain"
	"idfworkspace/pkg/schema"
)

// Remove detaches the record at h. Fields of other records pointing at it are
// cleared; removal is refused when one of those fields forbids it, or when
// the workspace is held at Final and the removal would empty a required field
// or leave a required object type without records.
func (w *Workspace) Remove(h domain.Handle) error {
	return w.RemoveObjects([]domain.Handle{h})
}

// RemoveObjects is Remove over an atomic batch: either every handle is
// removed or none is.
func (w *Workspace) RemoveObjects(hs []domain.Handle) (err error) {
	defer w.observe("remove_objects", time.Now(), &err)
	if err := w.guard(); err != nil {
		return err
	}
	if len(hs) == 0 {
		return nil
	}
	doomed := make(handleSet, len(hs))
	var ordered []domain.Handle
	for _, h := range hs {
		if h.IsNull() {
			return domain.ErrNullHandle
		}
		if _, ok := w.objects[h]; !ok {
			return domain.NotFoundError{Handle: h}
		}
		if _, dup := doomed[h]; dup {
			continue
		}
		doomed.add(h)
		ordered = append(ordered, h)
	}
	if err := w.checkRemovable(doomed); err != nil {
		return err
	}

	w.notify(eventRemoved, ordered)

	changed := make(handleSet)
	for _, h := range ordered {
		e := w.objects[h]
		w.removeEdges(e)
		for ed := range e.sources {
			if _, gone := doomed[ed.source]; gone {
				continue
			}
			src := w.objects[ed.source]
			w.recordFieldSet(src, ed.field, domain.Empty())
			changed.add(ed.source)
		}
	}
	for _, h := range ordered {
		w.detach(w.objects[h])
	}
	w.notify(eventChanged, w.sorted(changed))
	return nil
}

func (w *Workspace) checkRemovable(doomed handleSet) error {
	if err := w.checkForwarding(doomed); err != nil {
		return err
	}
	final := w.level >= domain.StrictnessFinal
	for h := range doomed {
		e := w.objects[h]
		for ed := range e.sources {
			if _, gone := doomed[ed.source]; gone {
				continue
			}
			src := w.objects[ed.source]
			fd, _ := src.def.Field(ed.field)
			if fd.OnRemove == schema.RemovalForbidden {
				return domain.IntegrityError{Op: "remove", Handle: h, Reason: fmt.Sprintf("%s field %d (%s) of %s forbids removing its target", src.def.Name, ed.field, fd.Name, ed.source)}
			}
			if final && fd.Required {
				return domain.IntegrityError{Op: "remove", Handle: h, Reason: fmt.Sprintf("required %s field %d (%s) of %s would be emptied", src.def.Name, ed.field, fd.Name, ed.source)}
			}
		}
	}
	if !final {
		return nil
	}
	removedByType := make(map[*schema.TypeDef]int)
	for h := range doomed {
		removedByType[w.objects[h].def]++
	}
	for def, n := range removedByType {
		if def.Required && w.NumObjectsOfType(def.Name) == n {
			return domain.IntegrityError{Op: "remove", Reason: fmt.Sprintf("at least one %s is required", def.Name)}
		}
	}
	return nil
}

// checkForwarding refuses a removal that would drop a surviving record out of
// a forwarded reference list some surviving source still reaches it through.
func (w *Workspace) checkForwarding(doomed handleSet) error {
	if w.level < domain.StrictnessDraft {
		return nil
	}
	lost := make(map[domain.Handle]map[string]int)
	for h := range doomed {
		e := w.objects[h]
		for i, v := range e.rec.Fields {
			t, ok := v.AsReference()
			if !ok {
				continue
			}
			if _, gone := doomed[t]; gone {
				continue
			}
			for _, list := range e.def.ForwardedListsOf(i) {
				if lost[t] == nil {
					lost[t] = make(map[string]int)
				}
				lost[t][list]++
			}
		}
	}
	for t, lists := range lost {
		remains := func(list string) bool {
			return list == schema.AllObjects || w.refLists[list][t]-lists[list] > 0
		}
		for ed := range w.objects[t].sources {
			if _, gone := doomed[ed.source]; gone {
				continue
			}
			src := w.objects[ed.source]
			need := src.def.ReferenceListsOf(ed.field)
			if len(need) == 0 || slices.ContainsFunc(need, remains) {
				continue
			}
			return domain.IntegrityError{Op: "remove", Handle: t, Reason: fmt.Sprintf("%s field %d of %s would lose its target %s", src.def.Name, ed.field, ed.source, t)}
		}
	}
	return nil
}
