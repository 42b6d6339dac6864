package workspace

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idfworkspace/pkg/domain"
)

type eventLog struct {
	events []string
}

func (l *eventLog) hooks(w *Workspace, tag string) Hooks {
	return Hooks{
		OnChange: func() { l.events = append(l.events, tag+":change") },
		OnObjectAdded: func(h domain.Handle) {
			l.events = append(l.events, fmt.Sprintf("%s:added:%s", tag, nameOrType(w, h)))
		},
		OnObjectRemoved: func(h domain.Handle) {
			l.events = append(l.events, fmt.Sprintf("%s:removed:%s:%t", tag, nameOrType(w, h), w.IsMember(h)))
		},
		OnObjectChanged: func(h domain.Handle) {
			l.events = append(l.events, fmt.Sprintf("%s:changed:%s", tag, nameOrType(w, h)))
		},
	}
}

func nameOrType(w *Workspace, h domain.Handle) string {
	if name, ok := w.Name(h); ok {
		return name
	}
	return "?"
}

func TestWatcherNotificationOrder(t *testing.T) {
	w := newTestWorkspace(t)
	log := &eventLog{}
	NewWatcher(w, log.hooks(w, "a"))
	NewWatcher(w, log.hooks(w, "b"))

	_, err := w.AddObjects([]domain.Record{rec("Zone", "Z"), rec("Surface", "S", "Z")})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"a:change", "b:change",
		"a:added:Z", "b:added:Z",
		"a:added:S", "b:added:S",
	}, log.events)

	log.events = nil
	zone, _ := w.ObjectByTypeAndName("Zone", "Z")
	require.NoError(t, w.Remove(zone.Handle))
	assert.Equal(t, []string{
		"a:change", "b:change",
		"a:removed:Z:true", "b:removed:Z:true",
		"a:change", "b:change",
		"a:changed:S", "b:changed:S",
	}, log.events)
}

func TestWatcherFlags(t *testing.T) {
	w := newTestWorkspace(t)
	wt := NewWatcher(w, Hooks{})
	assert.False(t, wt.Dirty())

	h := mustAdd(t, w, rec("Zone", "Z"))
	assert.True(t, wt.Dirty())
	assert.True(t, wt.ObjectAdded())
	assert.False(t, wt.ObjectRemoved())

	wt.ClearState()
	assert.False(t, wt.Dirty())
	assert.False(t, wt.ObjectAdded())

	require.NoError(t, w.SetNumber(h, 1, 2))
	assert.True(t, wt.ObjectChanged())
	assert.False(t, wt.ObjectAdded())

	wt.ClearState()
	wt.Disable()
	require.NoError(t, w.Remove(h))
	assert.False(t, wt.Dirty(), "disabled watchers see nothing")
	assert.False(t, wt.Enabled())

	wt.Enable()
	mustAdd(t, w, rec("Zone", "Y"))
	assert.True(t, wt.ObjectAdded())

	wt.ClearState()
	wt.Close()
	mustAdd(t, w, rec("Zone", "X"))
	assert.False(t, wt.Dirty())
	assert.Same(t, w, wt.Workspace())
}

func TestWatcherCannotMutateFromCallback(t *testing.T) {
	w := newTestWorkspace(t)
	var nested error
	var removeErr error
	NewWatcher(w, Hooks{
		OnObjectAdded: func(domain.Handle) {
			_, nested = w.Add(rec("Zone", "Nested"))
		},
		OnObjectRemoved: func(h domain.Handle) {
			removeErr = w.Remove(h)
		},
	})

	h := mustAdd(t, w, rec("Zone", "Z"))
	assert.ErrorIs(t, nested, domain.ErrReentrantMutation)
	assert.Equal(t, 1, w.NumObjects())

	require.NoError(t, w.Remove(h))
	assert.ErrorIs(t, removeErr, domain.ErrReentrantMutation)

	mustAdd(t, w, rec("Zone", "After"))
	assert.Equal(t, 1, w.NumObjects(), "guard is released once notification ends")
}
