package workspace

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"idfworkspace/pkg/domain"
	"idfworkspace/pkg/schema"
)

// AddOption tunes a batch add.
type AddOption func(*addConfig)

type addConfig struct {
	keepHandles bool
	noRename    bool
}

// KeepHandles keeps the handles carried by input records when they are free
// in this workspace. References between batch records by handle are honoured
// either way.
func KeepHandles() AddOption {
	return func(c *addConfig) { c.keepHandles = true }
}

// NoRename fails the batch with a NameConflictError instead of renaming.
func NoRename() AddOption {
	return func(c *addConfig) { c.noRename = true }
}

// target is a resolved reference: a batch position, or an attached handle.
type target struct {
	batch  int
	handle domain.Handle
}

type pending struct {
	index    int
	input    domain.Record
	def      *schema.TypeDef
	insert   bool
	fields   []domain.Value
	refs     map[int]target
	existing bool
	handle   domain.Handle
	entry    *entry
}

func (p *pending) name() string {
	if !p.def.HasName() || len(p.fields) == 0 {
		return ""
	}
	s, _ := p.fields[0].AsString()
	return s
}

func (p *pending) setName(name string) {
	if len(p.fields) == 0 {
		p.fields = append(p.fields, domain.Empty())
	}
	p.fields[0] = domain.Str(name)
}

// Add attaches a detached record and returns its handle.
func (w *Workspace) Add(rec domain.Record, opts ...AddOption) (domain.Handle, error) {
	hs, err := w.AddObjects([]domain.Record{rec}, opts...)
	if err != nil {
		return domain.NullHandle, err
	}
	return hs[0], nil
}

// AddObjects attaches a batch atomically and returns the handles in input
// order. References inside the batch may name other batch records by handle
// or by name; unresolvable references are cleared. Names that clash are
// renamed to the next free suffix. On error nothing is attached.
func (w *Workspace) AddObjects(recs []domain.Record, opts ...AddOption) (hs []domain.Handle, err error) {
	defer w.observe("add_objects", time.Now(), &err)
	return w.addBatch(recs, nil, opts)
}

// Insert returns the handle of an equivalent attached record if one exists,
// otherwise adds rec. Equivalent means same type, equal data fields, and no
// conflicting reference fields.
func (w *Workspace) Insert(rec domain.Record) (domain.Handle, error) {
	hs, err := w.InsertObjects([]domain.Record{rec})
	if err != nil {
		return domain.NullHandle, err
	}
	return hs[0], nil
}

// InsertObjects is Insert over an atomic batch.
func (w *Workspace) InsertObjects(recs []domain.Record) (hs []domain.Handle, err error) {
	defer w.observe("insert_objects", time.Now(), &err)
	return w.addBatch(nil, recs, nil)
}

// AddAndInsertObjects adds toAdd and inserts toInsert as one atomic batch.
// Handles are returned for toAdd followed by toInsert.
func (w *Workspace) AddAndInsertObjects(toAdd, toInsert []domain.Record) (hs []domain.Handle, err error) {
	defer w.observe("add_and_insert_objects", time.Now(), &err)
	return w.addBatch(toAdd, toInsert, nil)
}

func (w *Workspace) addBatch(toAdd, toInsert []domain.Record, opts []AddOption) ([]domain.Handle, error) {
	if err := w.guard(); err != nil {
		return nil, err
	}
	var cfg addConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(toAdd)+len(toInsert) == 0 {
		return nil, nil
	}
	batch, err := w.stage(toAdd, toInsert)
	if err != nil {
		return nil, err
	}
	w.resolveReferences(batch)
	w.matchEquivalents(batch)
	for _, p := range batch {
		if !p.existing {
			if cfg.keepHandles {
				p.handle = w.claimHandle(p.input.Handle)
			} else {
				p.handle = w.newHandle()
			}
		}
	}
	if err := w.assignNames(batch, cfg.noRename); err != nil {
		w.releaseHandles(batch)
		return nil, err
	}
	added := w.attachBatch(batch)
	report := w.rules.Evaluate(w, added, w.level, true)
	if !report.Empty() {
		w.rollbackBatch(batch)
		w.logger.Info("batch rejected",
			slog.Int("records", len(batch)),
			slog.Int("violations", report.Len()),
			slog.String("level", w.level.String()))
		return nil, domain.IntegrityError{Op: "add", Reason: "batch would leave the workspace invalid at " + w.level.String(), Report: report}
	}
	w.notify(eventAdded, added)
	out := make([]domain.Handle, len(batch))
	for i, p := range batch {
		out[i] = p.handle
	}
	return out, nil
}

// stage checks every record against the schema before anything is touched.
func (w *Workspace) stage(toAdd, toInsert []domain.Record) ([]*pending, error) {
	batch := make([]*pending, 0, len(toAdd)+len(toInsert))
	byInput := make(map[domain.Handle]int)
	appendRecs := func(recs []domain.Record, insert bool) error {
		for _, rec := range recs {
			i := len(batch)
			def, ok := w.provider.ObjectType(rec.Type)
			if !ok {
				return domain.SchemaError{Type: rec.Type, Index: i}
			}
			if !def.AcceptsFieldCount(len(rec.Fields)) {
				return domain.SchemaError{Type: rec.Type, Index: i, Reason: fmt.Sprintf("%d fields given, type has %d", len(rec.Fields), def.NumFields())}
			}
			if !rec.Handle.IsNull() {
				if _, dup := byInput[rec.Handle]; dup {
					return domain.SchemaError{Type: rec.Type, Index: i, Reason: "handle " + rec.Handle.String() + " appears twice in the batch"}
				}
				byInput[rec.Handle] = i
			}
			fields := make([]domain.Value, len(rec.Fields))
			for j, v := range rec.Fields {
				fd, _ := def.Field(j)
				fields[j] = coerce(fd, v)
			}
			batch = append(batch, &pending{index: i, input: rec, def: def, insert: insert, fields: fields, refs: make(map[int]target)})
		}
		return nil
	}
	if err := appendRecs(toAdd, false); err != nil {
		return nil, err
	}
	if err := appendRecs(toInsert, true); err != nil {
		return nil, err
	}
	return batch, nil
}

// coerce normalizes a value to the field's kind where the conversion is lossless.
// Text left in a numeric field is kept for the field_type rule to judge.
func coerce(fd schema.FieldDef, v domain.Value) domain.Value {
	switch fd.Kind {
	case schema.KindNumeric:
		if v.Kind() == domain.KindReference {
			return domain.Str(v.Text())
		}
		if s, ok := v.AsString(); ok {
			if f, ok := domain.ParseNumber(s); ok {
				return domain.Num(f)
			}
		}
	case schema.KindReference:
		if v.Kind() == domain.KindNumber {
			return domain.Str(v.Text())
		}
	default:
		if v.Kind() != domain.KindString && !v.IsEmpty() {
			return domain.Str(v.Text())
		}
	}
	return v
}

// resolveReferences turns every non-empty reference field into a target:
// first a batch record by handle or name, then an attached record. Fields
// that resolve to nothing are cleared.
func (w *Workspace) resolveReferences(batch []*pending) {
	byInput := make(map[domain.Handle]int)
	for i, p := range batch {
		if !p.input.Handle.IsNull() {
			byInput[p.input.Handle] = i
		}
	}
	for _, p := range batch {
		for i, v := range p.fields {
			if v.IsEmpty() || !p.def.FieldIsReference(i) {
				continue
			}
			t, ok := w.resolveOne(batch, byInput, p.def.ReferenceListsOf(i), v)
			if !ok {
				w.logger.Warn("clearing unresolved reference",
					slog.String("type", p.def.Name),
					slog.Int("field", i),
					slog.String("value", v.Text()))
				p.fields[i] = domain.Empty()
				continue
			}
			p.refs[i] = t
		}
	}
}

func (w *Workspace) resolveOne(batch []*pending, byInput map[domain.Handle]int, lists []string, v domain.Value) (target, bool) {
	h, isRef := v.AsReference()
	if !isRef {
		if parsed, err := domain.ParseHandle(v.Text()); err == nil {
			h, isRef = parsed, true
		}
	}
	if isRef {
		if i, ok := byInput[h]; ok {
			return target{batch: i}, true
		}
		if w.IsMember(h) {
			return target{batch: -1, handle: h}, true
		}
		return target{}, false
	}
	name := v.Text()
	for i, p := range batch {
		if strings.EqualFold(p.name(), name) && (len(lists) == 0 || schema.Intersects(lists, p.def.References)) {
			return target{batch: i}, true
		}
	}
	if h, ok := w.lookupByNameAndReference(name, lists); ok {
		return target{batch: -1, handle: h}, true
	}
	return target{}, false
}

// matchEquivalents maps insert records onto equivalent attached records.
func (w *Workspace) matchEquivalents(batch []*pending) {
	for _, p := range batch {
		if !p.insert {
			continue
		}
		var candidates []domain.Handle
		if name := p.name(); name != "" {
			for _, h := range w.sorted(w.byName[strings.ToLower(name)]) {
				if strings.EqualFold(w.objects[h].def.Name, p.def.Name) {
					candidates = append(candidates, h)
				}
			}
		} else {
			candidates = w.sorted(w.byType[strings.ToLower(p.def.Name)])
		}
		for _, h := range candidates {
			if w.equivalent(batch, p, w.objects[h]) {
				p.existing = true
				p.handle = h
				break
			}
		}
	}
}

// equivalent compares p with an attached record. An empty name on a named
// type matches any name, since it would be filled automatically.
func (w *Workspace) equivalent(batch []*pending, p *pending, e *entry) bool {
	n := max(len(p.fields), len(e.rec.Fields))
	for i := 0; i < n; i++ {
		mine, theirs := fieldAt(p.fields, i), e.rec.Field(i)
		if i == 0 && p.def.HasName() && mine.IsEmpty() {
			continue
		}
		if p.def.FieldIsReference(i) {
			t, ok := p.refs[i]
			if !ok || theirs.IsEmpty() {
				continue
			}
			h := t.handle
			if t.batch >= 0 {
				other := batch[t.batch]
				if !other.existing {
					return false
				}
				h = other.handle
			}
			if existing, _ := theirs.AsReference(); existing != h {
				return false
			}
			continue
		}
		if !mine.EqualFold(theirs) {
			return false
		}
	}
	return true
}

func fieldAt(fields []domain.Value, i int) domain.Value {
	if i < 0 || i >= len(fields) {
		return domain.Empty()
	}
	return fields[i]
}

// assignNames fills empty names and renames clashing ones. The series a
// clashing name is renamed within spans the workspace and the whole batch.
func (w *Workspace) assignNames(batch []*pending, noRename bool) error {
	var fresh []*pending
	for _, p := range batch {
		if !p.existing && p.def.HasName() {
			fresh = append(fresh, p)
		}
	}
	for k, p := range fresh {
		name := p.name()
		if name == "" {
			base := p.def.BaseName()
			series := w.conflictSeries(p.def, base, domain.NullHandle)
			for _, q := range fresh {
				if q != p && q.name() != "" && strings.EqualFold(baseName(q.name()), baseName(base)) && potentialConflict(p.def, q.def) {
					series = append(series, q.name())
				}
			}
			p.setName(nextInSeries(base, series, true))
			continue
		}
		if !w.clashes(name, p.def, fresh[:k]) {
			continue
		}
		if noRename {
			return domain.NameConflictError{Type: p.def.Name, Name: name}
		}
		series := w.conflictSeries(p.def, name, domain.NullHandle)
		for _, q := range fresh {
			if q.name() != "" && strings.EqualFold(baseName(q.name()), baseName(name)) && potentialConflict(p.def, q.def) {
				series = append(series, q.name())
			}
		}
		renamed := nextInSeries(name, series, false)
		w.logger.Info("renamed object to avoid name conflict",
			slog.String("type", p.def.Name),
			slog.String("from", name),
			slog.String("to", renamed))
		p.setName(renamed)
	}
	return nil
}

func (w *Workspace) clashes(name string, def *schema.TypeDef, earlier []*pending) bool {
	if len(w.conflicting(name, def, domain.NullHandle)) > 0 {
		return true
	}
	for _, q := range earlier {
		if strings.EqualFold(q.name(), name) && potentialConflict(def, q.def) {
			return true
		}
	}
	return false
}

// attachBatch attaches every new record, then installs all edges so batch
// records can point at one another.
func (w *Workspace) attachBatch(batch []*pending) []domain.Handle {
	var added []domain.Handle
	for _, p := range batch {
		if p.existing {
			continue
		}
		fields := make([]domain.Value, len(p.fields))
		copy(fields, p.fields)
		for i, t := range p.refs {
			h := t.handle
			if t.batch >= 0 {
				h = batch[t.batch].handle
			}
			fields[i] = domain.Ref(h)
		}
		p.entry = &entry{rec: domain.Record{Handle: p.handle, Type: p.def.Name, Fields: fields}, def: p.def}
		w.attach(p.entry)
		added = append(added, p.handle)
	}
	for _, p := range batch {
		if p.entry != nil {
			w.installEdges(p.entry)
		}
	}
	return added
}

// rollbackBatch undoes attachBatch without notifying anyone.
func (w *Workspace) rollbackBatch(batch []*pending) {
	for _, p := range batch {
		if p.entry != nil {
			w.removeEdges(p.entry)
		}
	}
	for _, p := range batch {
		if p.entry != nil {
			w.detach(p.entry)
			p.entry = nil
		}
	}
	w.releaseHandles(batch)
}

// releaseHandles forgets handles issued to a batch that never became visible.
func (w *Workspace) releaseHandles(batch []*pending) {
	for _, p := range batch {
		if !p.existing && !p.handle.IsNull() {
			delete(w.issued, p.handle)
			p.handle = domain.NullHandle
		}
	}
}
