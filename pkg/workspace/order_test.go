package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idfworkspace/pkg/domain"
)

func TestOrderDefaultsToInsertion(t *testing.T) {
	w := newTestWorkspace(t)
	a := mustAdd(t, w, rec("Zone", "A"))
	b := mustAdd(t, w, rec("Node", "B"))
	c := mustAdd(t, w, rec("Zone", "C"))
	assert.Equal(t, []domain.Handle{a, b, c}, w.Handles())
	assert.False(t, w.Order().IsDirectOrder())
	assert.True(t, w.Order().Less(a, c))
	assert.False(t, w.Order().Less(c, a))

	i, ok := w.Order().IndexOf(b)
	require.True(t, ok)
	assert.Equal(t, 1, i)
}

func TestOrderByType(t *testing.T) {
	w := newTestWorkspace(t)
	a := mustAdd(t, w, rec("Zone", "A"))
	b := mustAdd(t, w, rec("Node", "B"))
	c := mustAdd(t, w, rec("Zone", "C"))
	note := mustAdd(t, w, rec("Note", "n"))

	require.NoError(t, w.Order().SetTypeOrder([]string{"node", "Zone"}))
	assert.Equal(t, []domain.Handle{b, a, c, note}, w.Handles())
	assert.Equal(t, []string{"node", "Zone"}, w.Order().TypeOrder())

	d := mustAdd(t, w, rec("Node", "D"))
	assert.Equal(t, []domain.Handle{b, d, a, c, note}, w.Handles())
	assert.Equal(t, []domain.Handle{d, a}, w.Order().Sort([]domain.Handle{a, d}))

	require.NoError(t, w.Order().Reset())
	assert.Equal(t, []domain.Handle{a, b, c, note, d}, w.Handles())
}

func TestDirectOrder(t *testing.T) {
	w := newTestWorkspace(t)
	a := mustAdd(t, w, rec("Zone", "A"))
	b := mustAdd(t, w, rec("Zone", "B"))
	c := mustAdd(t, w, rec("Zone", "C"))

	require.NoError(t, w.Order().SetDirectOrder([]domain.Handle{c, a}))
	assert.True(t, w.Order().IsDirectOrder())
	assert.Equal(t, []domain.Handle{c, a, b}, w.Handles())

	d := mustAdd(t, w, rec("Zone", "D"))
	assert.Equal(t, []domain.Handle{c, a, b, d}, w.Handles())

	require.NoError(t, w.Order().Move(d, 1))
	assert.Equal(t, []domain.Handle{c, d, a, b}, w.Handles())

	require.NoError(t, w.Remove(a))
	assert.Equal(t, []domain.Handle{c, d, b}, w.Handles())

	assert.Error(t, w.Order().SetDirectOrder([]domain.Handle{c, c}))
	assert.True(t, domain.IsNotFound(w.Order().SetDirectOrder([]domain.Handle{domain.NewHandle()})))
	assert.True(t, domain.IsNotFound(w.Order().Move(domain.NewHandle(), 0)))

	stray := domain.NewHandle()
	assert.Equal(t, []domain.Handle{b, stray}, w.Order().Sort([]domain.Handle{stray, b}))
}

func TestDirectOrderPositionsFollowAppends(t *testing.T) {
	w := newTestWorkspace(t)
	a := mustAdd(t, w, rec("Zone", "A"))
	b := mustAdd(t, w, rec("Zone", "B"))
	require.NoError(t, w.Order().SetDirectOrder([]domain.Handle{b, a}))

	i, ok := w.Order().IndexOf(a)
	require.True(t, ok)
	assert.Equal(t, 1, i)

	c := mustAdd(t, w, rec("Zone", "C"))
	i, ok = w.Order().IndexOf(c)
	require.True(t, ok)
	assert.Equal(t, 2, i)
	assert.Equal(t, []domain.Handle{b, a, c}, w.Order().Sort([]domain.Handle{c, a, b}))

	require.NoError(t, w.Remove(b))
	i, ok = w.Order().IndexOf(c)
	require.True(t, ok)
	assert.Equal(t, 1, i)
	_, ok = w.Order().IndexOf(b)
	assert.False(t, ok)
}

func TestOrderCannotChangeFromCallback(t *testing.T) {
	w := newTestWorkspace(t)
	first := mustAdd(t, w, rec("Zone", "First"))
	var moveErr, directErr, typeErr, resetErr error
	NewWatcher(w, Hooks{
		OnObjectAdded: func(h domain.Handle) {
			moveErr = w.Order().Move(h, 0)
			directErr = w.Order().SetDirectOrder([]domain.Handle{h, first})
			typeErr = w.Order().SetTypeOrder([]string{"Zone"})
			resetErr = w.Order().Reset()
		},
	})

	second := mustAdd(t, w, rec("Zone", "Second"))
	assert.ErrorIs(t, moveErr, domain.ErrReentrantMutation)
	assert.ErrorIs(t, directErr, domain.ErrReentrantMutation)
	assert.ErrorIs(t, typeErr, domain.ErrReentrantMutation)
	assert.ErrorIs(t, resetErr, domain.ErrReentrantMutation)
	assert.False(t, w.Order().IsDirectOrder())
	assert.Equal(t, []domain.Handle{first, second}, w.Handles())
}
