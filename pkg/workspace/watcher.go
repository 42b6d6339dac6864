package workspace

import (
	"slices"

	"idfworkspace/pkg/domain"
)

// Hooks are the callbacks a Watcher forwards notifications to. Any may be nil.
// Callbacks run synchronously on the mutating goroutine and must not mutate
// the workspace; such calls fail with domain.ErrReentrantMutation.
type Hooks struct {
	OnChange        func()
	OnObjectAdded   func(h domain.Handle)
	OnObjectRemoved func(h domain.Handle)
	OnObjectChanged func(h domain.Handle)
}

// Watcher observes one workspace. For every mutation it receives a change
// notification followed by the specific added, removed or changed
// notifications. Removal is announced while the record is still attached.
type Watcher struct {
	ws       *Workspace
	hooks    Hooks
	enabled  bool
	dirty    bool
	added    bool
	removed  bool
	changed  bool
	attached bool
}

// NewWatcher registers an enabled watcher against ws.
func NewWatcher(ws *Workspace, hooks Hooks) *Watcher {
	wt := &Watcher{ws: ws, hooks: hooks, enabled: true, attached: true}
	ws.watchers = append(ws.watchers, wt)
	return wt
}

// Workspace returns the observed workspace.
func (wt *Watcher) Workspace() *Workspace { return wt.ws }

// Dirty reports whether any change was seen since the last ClearState.
func (wt *Watcher) Dirty() bool { return wt.dirty }

// ObjectAdded reports whether a record was added since the last ClearState.
func (wt *Watcher) ObjectAdded() bool { return wt.added }

// ObjectRemoved reports whether a record was removed since the last ClearState.
func (wt *Watcher) ObjectRemoved() bool { return wt.removed }

// ObjectChanged reports whether a record's fields changed since the last ClearState.
func (wt *Watcher) ObjectChanged() bool { return wt.changed }

// ClearState resets every flag.
func (wt *Watcher) ClearState() {
	wt.dirty, wt.added, wt.removed, wt.changed = false, false, false, false
}

// Enabled reports whether notifications are delivered.
func (wt *Watcher) Enabled() bool { return wt.enabled }

// Enable resumes delivery.
func (wt *Watcher) Enable() { wt.enabled = true }

// Disable suppresses delivery and flag updates without unregistering.
func (wt *Watcher) Disable() { wt.enabled = false }

// Close unregisters the watcher.
func (wt *Watcher) Close() {
	if !wt.attached {
		return
	}
	wt.attached = false
	wt.ws.watchers = slices.DeleteFunc(wt.ws.watchers, func(x *Watcher) bool { return x == wt })
}

type eventKind uint8

const (
	eventAdded eventKind = iota
	eventRemoved
	eventChanged
)

// notify delivers one change notification to every enabled watcher, then the
// specific notification for each handle, all in registration order.
func (w *Workspace) notify(kind eventKind, hs []domain.Handle) {
	if len(hs) == 0 || len(w.watchers) == 0 {
		return
	}
	w.notifying++
	defer func() { w.notifying-- }()
	watchers := slices.Clone(w.watchers)
	for _, wt := range watchers {
		if !wt.enabled {
			continue
		}
		wt.dirty = true
		if wt.hooks.OnChange != nil {
			wt.hooks.OnChange()
		}
	}
	for _, h := range hs {
		for _, wt := range watchers {
			if !wt.enabled {
				continue
			}
			switch kind {
			case eventAdded:
				wt.added = true
				if wt.hooks.OnObjectAdded != nil {
					wt.hooks.OnObjectAdded(h)
				}
			case eventRemoved:
				wt.removed = true
				if wt.hooks.OnObjectRemoved != nil {
					wt.hooks.OnObjectRemoved(h)
				}
			case eventChanged:
				wt.changed = true
				if wt.hooks.OnObjectChanged != nil {
					wt.hooks.OnObjectChanged(h)
				}
			}
		}
	}
}
