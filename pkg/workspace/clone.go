package workspace

import (
	"time"

	"idfworkspace/pkg/domain"
)

// Clone deep-copies the workspace. Unless keepHandles is set every record
// gets a fresh handle and references are rewritten to the new handles. The
// clone shares the schema, logger, metrics and a copy of the rules, but no
// watchers.
func (w *Workspace) Clone(keepHandles bool) *Workspace {
	start := time.Now()
	c := w.cloneShell()
	c.level = w.level
	w.copyInto(c, w.Handles(), keepHandles)
	w.metrics.Observe("clone", true, time.Since(start))
	return c
}

// CloneSubset copies only the records at hs and the edges among them; edges
// leaving the subset are cleared. The clone takes the source's strictness
// level when it is valid at it, otherwise the strictest level it is valid at.
func (w *Workspace) CloneSubset(hs []domain.Handle, keepHandles bool) (c *Workspace, err error) {
	defer w.observe("clone_subset", time.Now(), &err)
	seen := make(handleSet, len(hs))
	subset := make([]domain.Handle, 0, len(hs))
	for _, h := range hs {
		if h.IsNull() {
			return nil, domain.ErrNullHandle
		}
		if !w.IsMember(h) {
			return nil, domain.NotFoundError{Handle: h}
		}
		if _, dup := seen[h]; dup {
			continue
		}
		seen.add(h)
		subset = append(subset, h)
	}
	w.order.sortHandles(subset)
	c = w.cloneShell()
	c.level = domain.StrictnessNone
	w.copyInto(c, subset, keepHandles)
	for level := w.level; level > domain.StrictnessNone; level-- {
		if c.IsValid(level) {
			c.level = level
			break
		}
	}
	return c, nil
}

func (w *Workspace) cloneShell() *Workspace {
	c := newWorkspace(w.provider)
	c.logger = w.logger
	c.metrics = w.metrics
	c.rules = w.rules.clone()
	return c
}

// copyInto attaches copies of the records at hs, in that order, to c.
func (w *Workspace) copyInto(c *Workspace, hs []domain.Handle, keepHandles bool) {
	remap := make(map[domain.Handle]domain.Handle, len(hs))
	for _, h := range hs {
		if keepHandles {
			remap[h] = c.claimHandle(h)
		} else {
			remap[h] = c.newHandle()
		}
	}
	entries := make([]*entry, 0, len(hs))
	for _, h := range hs {
		src := w.objects[h]
		fields := make([]domain.Value, len(src.rec.Fields))
		for i, v := range src.rec.Fields {
			t, ok := v.AsReference()
			if !ok {
				fields[i] = v
				continue
			}
			if mapped, in := remap[t]; in {
				fields[i] = domain.Ref(mapped)
			}
		}
		e := &entry{rec: domain.Record{Handle: remap[h], Type: src.rec.Type, Fields: fields}, def: src.def}
		c.attach(e)
		entries = append(entries, e)
	}
	for _, e := range entries {
		c.installEdges(e)
	}
	if w.order.typeOrder != nil {
		c.order.setTypeOrder(w.order.typeOrder)
	}
	if w.order.isDirect {
		direct := make([]domain.Handle, 0, len(hs))
		for _, h := range hs {
			direct = append(direct, remap[h])
		}
		c.order.direct = direct
		c.order.isDirect = true
		c.order.invalidate()
	}
}
