package workspace

import (
	"slices"
	"strings"

	"idfworkspace/pkg/domain"
	"idfworkspace/pkg/schema"
)

// Sources returns the records with at least one field pointing at h, in Order.
func (w *Workspace) Sources(h domain.Handle) []domain.Handle {
	e, ok := w.objects[h]
	if !ok {
		return nil
	}
	set := make(handleSet, len(e.sources))
	for ed := range e.sources {
		set.add(ed.source)
	}
	return w.sorted(set)
}

// Targets returns the distinct records h points at, in field order.
func (w *Workspace) Targets(h domain.Handle) []domain.Handle {
	e, ok := w.objects[h]
	if !ok {
		return nil
	}
	var out []domain.Handle
	seen := make(handleSet)
	for _, v := range e.rec.Fields {
		t, ok := v.AsReference()
		if !ok {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen.add(t)
		out = append(out, t)
	}
	return out
}

// SourceIndices returns the fields of source that point at target.
func (w *Workspace) SourceIndices(source, target domain.Handle) []int {
	e, ok := w.objects[target]
	if !ok {
		return nil
	}
	var out []int
	for ed := range e.sources {
		if ed.source == source {
			out = append(out, ed.field)
		}
	}
	slices.Sort(out)
	return out
}

// NumSources returns the number of incoming edges of h.
func (w *Workspace) NumSources(h domain.Handle) int {
	e, ok := w.objects[h]
	if !ok {
		return 0
	}
	return len(e.sources)
}

// newHandle issues a handle never seen by this workspace.
func (w *Workspace) newHandle() domain.Handle {
	for {
		h := domain.NewHandle()
		if _, used := w.issued[h]; !used {
			w.issued.add(h)
			return h
		}
	}
}

// claimHandle keeps h when it was never issued here, otherwise issues a fresh one.
func (w *Workspace) claimHandle(h domain.Handle) domain.Handle {
	if h.IsNull() {
		return w.newHandle()
	}
	if _, used := w.issued[h]; used {
		return w.newHandle()
	}
	w.issued.add(h)
	return h
}

// attach registers e in every index except the reference index; edges are
// installed separately once all records of a batch are attached.
func (w *Workspace) attach(e *entry) {
	h := e.rec.Handle
	w.seq++
	e.seq = w.seq
	if e.sources == nil {
		e.sources = make(map[edge]struct{})
	}
	w.objects[h] = e
	w.indexType(e)
	w.indexName(e)
	for _, list := range e.def.References {
		w.bumpList(list, h, 1)
	}
	w.order.insert(h)
}

// detach removes e from every index. Its edges must already be gone.
func (w *Workspace) detach(e *entry) {
	h := e.rec.Handle
	w.unindexType(e)
	w.unindexName(e)
	for _, list := range e.def.References {
		w.bumpList(list, h, -1)
	}
	delete(w.objects, h)
	w.order.erase(h)
}

// installEdges links every reference field of e.
func (w *Workspace) installEdges(e *entry) {
	for i, v := range e.rec.Fields {
		if t, ok := v.AsReference(); ok {
			w.link(e, i, t)
		}
	}
}

// removeEdges unlinks every reference field of e, keeping the field values.
func (w *Workspace) removeEdges(e *entry) {
	for i, v := range e.rec.Fields {
		if t, ok := v.AsReference(); ok {
			w.unlink(e, i, t)
		}
	}
}

func (w *Workspace) link(src *entry, field int, target domain.Handle) {
	te, ok := w.objects[target]
	if !ok {
		return
	}
	te.sources[edge{source: src.rec.Handle, field: field}] = struct{}{}
	for _, list := range src.def.ForwardedListsOf(field) {
		w.bumpList(list, target, 1)
	}
}

func (w *Workspace) unlink(src *entry, field int, target domain.Handle) {
	te, ok := w.objects[target]
	if !ok {
		return
	}
	ed := edge{source: src.rec.Handle, field: field}
	if _, ok := te.sources[ed]; !ok {
		return
	}
	delete(te.sources, ed)
	for _, list := range src.def.ForwardedListsOf(field) {
		w.bumpList(list, target, -1)
	}
}

// recordFieldSet removes the old edge, installs the new one and only then
// commits the value, so the reference index never lags the field data.
func (w *Workspace) recordFieldSet(e *entry, field int, v domain.Value) {
	if old, ok := e.rec.Field(field).AsReference(); ok {
		w.unlink(e, field, old)
	}
	if t, ok := v.AsReference(); ok {
		w.link(e, field, t)
	}
	nameField := e.def.HasName() && field == 0
	if nameField {
		w.unindexName(e)
	}
	for len(e.rec.Fields) <= field {
		e.rec.Fields = append(e.rec.Fields, domain.Empty())
	}
	e.rec.Fields[field] = v
	if nameField {
		w.indexName(e)
	}
}

// replaceData swaps the type and fields held at e's handle, rebuilding its
// outgoing edges and its type, name and intrinsic list registrations.
// Incoming edges stay on the handle.
func (w *Workspace) replaceData(e *entry, def *schema.TypeDef, fields []domain.Value) {
	w.removeEdges(e)
	w.unindexType(e)
	w.unindexName(e)
	for _, list := range e.def.References {
		w.bumpList(list, e.rec.Handle, -1)
	}
	e.def = def
	e.rec.Type = def.Name
	e.rec.Fields = fields
	w.indexType(e)
	w.indexName(e)
	for _, list := range def.References {
		w.bumpList(list, e.rec.Handle, 1)
	}
	w.installEdges(e)
	w.order.invalidate()
}

func (w *Workspace) indexType(e *entry) {
	addToIndex(w.byType, strings.ToLower(e.def.Name), e.rec.Handle)
}

func (w *Workspace) unindexType(e *entry) {
	removeFromIndex(w.byType, strings.ToLower(e.def.Name), e.rec.Handle)
}

func (w *Workspace) indexName(e *entry) {
	name, ok := e.name()
	if !ok {
		return
	}
	addToIndex(w.byName, strings.ToLower(name), e.rec.Handle)
	addToIndex(w.byBase, strings.ToLower(baseName(name)), e.rec.Handle)
}

func (w *Workspace) unindexName(e *entry) {
	name, ok := e.name()
	if !ok {
		return
	}
	removeFromIndex(w.byName, strings.ToLower(name), e.rec.Handle)
	removeFromIndex(w.byBase, strings.ToLower(baseName(name)), e.rec.Handle)
}

func (w *Workspace) bumpList(list string, h domain.Handle, delta int) {
	members, ok := w.refLists[list]
	if !ok {
		if delta <= 0 {
			return
		}
		members = make(map[domain.Handle]int)
		w.refLists[list] = members
	}
	n := members[h] + delta
	if n <= 0 {
		delete(members, h)
		if len(members) == 0 {
			delete(w.refLists, list)
		}
		return
	}
	members[h] = n
}

func addToIndex(idx map[string]handleSet, key string, h domain.Handle) {
	set, ok := idx[key]
	if !ok {
		set = make(handleSet)
		idx[key] = set
	}
	set.add(h)
}

func removeFromIndex(idx map[string]handleSet, key string, h domain.Handle) {
	set, ok := idx[key]
	if !ok {
		return
	}
	delete(set, h)
	if len(set) == 0 {
		delete(idx, key)
	}
}
