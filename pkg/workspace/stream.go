package workspace

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"idfworkspace/pkg/domain"
	"idfworkspace/pkg/schema"
)

// RecordStream serializes every record in Order. Reference fields carry the
// target's name when that name identifies it unambiguously on reload,
// otherwise the target's handle.
func (w *Workspace) RecordStream() []domain.StreamRecord {
	hs := w.Handles()
	out := make([]domain.StreamRecord, 0, len(hs))
	for _, h := range hs {
		e := w.objects[h]
		sr := domain.StreamRecord{
			Handle: h.String(),
			Type:   e.def.Name,
			Fields: make([]string, len(e.rec.Fields)),
		}
		for i, v := range e.rec.Fields {
			if t, ok := v.AsReference(); ok {
				sr.Fields[i] = w.referenceText(t, e.def.ReferenceListsOf(i))
				continue
			}
			sr.Fields[i] = v.Text()
		}
		out = append(out, sr)
	}
	return out
}

func (w *Workspace) referenceText(t domain.Handle, lists []string) string {
	te := w.objects[t]
	name, named := te.name()
	if !named || len(w.byName[strings.ToLower(name)]) != 1 {
		return t.String()
	}
	if _, err := domain.ParseHandle(name); err == nil {
		return t.String()
	}
	if len(lists) > 0 && !schema.Intersects(lists, te.def.References) {
		return t.String()
	}
	return name
}

// FromRecordStream builds a workspace from stream. Records keep their
// handles where given. The whole stream is added as one batch at
// StrictnessNone and the workspace is then raised to the level requested by
// opts, failing if it is not valid there.
func FromRecordStream(provider schema.Provider, stream []domain.StreamRecord, opts ...Option) (*Workspace, error) {
	if provider == nil {
		return nil, errors.New("workspace: schema provider required")
	}
	w := newWorkspace(provider)
	for _, opt := range opts {
		opt(w)
	}
	if !w.level.Valid() {
		return nil, fmt.Errorf("workspace: invalid strictness level %d", int(w.level))
	}
	start := time.Now()
	recs := make([]domain.Record, 0, len(stream))
	for i, sr := range stream {
		rec := domain.Record{Type: sr.Type, Fields: make([]domain.Value, len(sr.Fields))}
		if sr.Handle != "" {
			h, err := domain.ParseHandle(sr.Handle)
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", i, err)
			}
			rec.Handle = h
		}
		for j, f := range sr.Fields {
			rec.Fields[j] = domain.Str(f)
		}
		recs = append(recs, rec)
	}
	level := w.level
	w.level = domain.StrictnessNone
	if _, err := w.AddObjects(recs, KeepHandles()); err != nil {
		return nil, err
	}
	if err := w.SetStrictnessLevel(level); err != nil {
		return nil, err
	}
	w.metrics.Observe("from_record_stream", true, time.Since(start))
	return w, nil
}
