package workspace

import (
	"fmt"
	"slices"
	"strings"

	"idfworkspace/pkg/domain"
)

// Order is the total order over a workspace's handles used for every listing
// and for serialization. By default records appear in insertion order. A type
// order ranks records by object type first; a direct order lists handles
// explicitly, and records added later are appended to it.
type Order struct {
	w         *Workspace
	direct    []domain.Handle
	isDirect  bool
	typeOrder []string
	typeRank  map[string]int
	cache     []domain.Handle
	pos       map[domain.Handle]int
	valid     bool
}

func newOrder(w *Workspace) *Order {
	return &Order{w: w}
}

// Order returns the workspace order.
func (w *Workspace) Order() *Order { return w.order }

// Handles returns every attached handle in order.
func (o *Order) Handles() []domain.Handle {
	if !o.valid {
		o.rebuild()
	}
	return slices.Clone(o.cache)
}

// IsDirectOrder reports whether an explicit handle order is in effect.
func (o *Order) IsDirectOrder() bool { return o.isDirect }

// SetDirectOrder installs an explicit order. Every handle must be attached and
// appear once; attached handles not listed keep their relative order after the
// listed ones.
func (o *Order) SetDirectOrder(hs []domain.Handle) error {
	if err := o.w.guard(); err != nil {
		return err
	}
	seen := make(handleSet, len(hs))
	for _, h := range hs {
		if !o.w.IsMember(h) {
			return domain.NotFoundError{Handle: h}
		}
		if _, dup := seen[h]; dup {
			return fmt.Errorf("handle %s listed twice", h)
		}
		seen.add(h)
	}
	direct := slices.Clone(hs)
	for _, h := range o.Handles() {
		if _, ok := seen[h]; !ok {
			direct = append(direct, h)
		}
	}
	o.direct = direct
	o.isDirect = true
	o.invalidate()
	return nil
}

// SetTypeOrder ranks records by object type; unlisted types follow in
// insertion order. It replaces any direct order.
func (o *Order) SetTypeOrder(types []string) error {
	if err := o.w.guard(); err != nil {
		return err
	}
	o.setTypeOrder(types)
	return nil
}

func (o *Order) setTypeOrder(types []string) {
	o.typeOrder = slices.Clone(types)
	o.typeRank = make(map[string]int, len(types))
	for i, t := range types {
		key := strings.ToLower(t)
		if _, ok := o.typeRank[key]; !ok {
			o.typeRank[key] = i
		}
	}
	o.direct = nil
	o.isDirect = false
	o.invalidate()
}

// TypeOrder returns the type order in effect, if any.
func (o *Order) TypeOrder() []string { return slices.Clone(o.typeOrder) }

// Reset restores insertion order.
func (o *Order) Reset() error {
	if err := o.w.guard(); err != nil {
		return err
	}
	o.direct = nil
	o.isDirect = false
	o.typeOrder = nil
	o.typeRank = nil
	o.invalidate()
	return nil
}

// IndexOf returns the position of h.
func (o *Order) IndexOf(h domain.Handle) (int, bool) {
	i, ok := o.positions()[h]
	return i, ok
}

// Move places h at index, switching to a direct order.
func (o *Order) Move(h domain.Handle, index int) error {
	if err := o.w.guard(); err != nil {
		return err
	}
	if !o.w.IsMember(h) {
		return domain.NotFoundError{Handle: h}
	}
	current := o.Handles()
	current = slices.DeleteFunc(current, func(x domain.Handle) bool { return x == h })
	index = max(0, min(index, len(current)))
	current = slices.Insert(current, index, h)
	o.direct = current
	o.isDirect = true
	o.invalidate()
	return nil
}

// Sort returns hs ordered by position. Handles not attached sort last.
func (o *Order) Sort(hs []domain.Handle) []domain.Handle {
	out := slices.Clone(hs)
	o.sortHandles(out)
	return out
}

// Less reports whether a comes before b.
func (o *Order) Less(a, b domain.Handle) bool {
	ia, oka := o.IndexOf(a)
	ib, okb := o.IndexOf(b)
	if !oka {
		return false
	}
	return !okb || ia < ib
}

func (o *Order) insert(h domain.Handle) {
	if !o.isDirect {
		o.invalidate()
		return
	}
	o.direct = append(o.direct, h)
	if o.valid {
		o.pos[h] = len(o.cache)
		o.cache = append(o.cache, h)
	}
}

func (o *Order) erase(h domain.Handle) {
	if o.isDirect {
		if i := slices.Index(o.direct, h); i >= 0 {
			o.direct = slices.Delete(o.direct, i, i+1)
		}
	}
	o.invalidate()
}

func (o *Order) invalidate() {
	o.valid = false
	o.cache = nil
	o.pos = nil
}

// positions maps every attached handle to its index, rebuilt once per
// invalidation.
func (o *Order) positions() map[domain.Handle]int {
	if !o.valid {
		o.rebuild()
	}
	return o.pos
}

func (o *Order) rebuild() {
	if o.isDirect {
		o.cache = slices.Clone(o.direct)
	} else {
		hs := make([]domain.Handle, 0, len(o.w.objects))
		for h := range o.w.objects {
			hs = append(hs, h)
		}
		slices.SortFunc(hs, o.compareImplicit)
		o.cache = hs
	}
	o.pos = make(map[domain.Handle]int, len(o.cache))
	for i, h := range o.cache {
		o.pos[h] = i
	}
	o.valid = true
}

func (o *Order) compareImplicit(a, b domain.Handle) int {
	ea, eb := o.w.objects[a], o.w.objects[b]
	if o.typeRank != nil {
		ra, rb := o.rank(ea), o.rank(eb)
		if ra != rb {
			return ra - rb
		}
	}
	switch {
	case ea.seq < eb.seq:
		return -1
	case ea.seq > eb.seq:
		return 1
	default:
		return 0
	}
}

func (o *Order) rank(e *entry) int {
	if r, ok := o.typeRank[strings.ToLower(e.def.Name)]; ok {
		return r
	}
	return len(o.typeRank)
}

// sortHandles sorts hs in place by position.
func (o *Order) sortHandles(hs []domain.Handle) {
	if len(hs) < 2 {
		return
	}
	if !o.isDirect {
		slices.SortFunc(hs, func(a, b domain.Handle) int {
			_, oka := o.w.objects[a]
			_, okb := o.w.objects[b]
			switch {
			case !oka && !okb:
				return 0
			case !oka:
				return 1
			case !okb:
				return -1
			}
			return o.compareImplicit(a, b)
		})
		return
	}
	pos := o.positions()
	slices.SortFunc(hs, func(a, b domain.Handle) int {
		pa, oka := pos[a]
		pb, okb := pos[b]
		switch {
		case !oka && !okb:
			return 0
		case !oka:
			return 1
		case !okb:
			return -1
		}
		return pa - pb
	})
}
