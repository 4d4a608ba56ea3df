package quadtree

import (
	"github.com/TomTonic/spatialindex/errs"
	"github.com/TomTonic/spatialindex/geom"
)

// CheckInvariants walks the whole tree and returns the first violation found
// (spec.md §4, "Debug invariant assertions"; SPEC_FULL.md's fail-fast style
// over a collect-everything validator). Never called from a hot path — an
// opt-in debugging aid only.
func (t *Tree[V]) CheckInvariants() error {
	if t.root == nil {
		if t.size != 0 {
			return errs.ErrInvariantViolation
		}
		return nil
	}
	n, err := t.checkNode(t.root)
	if err != nil {
		return err
	}
	if n != t.size {
		return errs.ErrInvariantViolation
	}
	return nil
}

// checkNode validates n against its own recorded center/radius and returns
// the number of entries found at or below it.
func (t *Tree[V]) checkNode(n *qnode[V]) (int, error) {
	if n.radius <= 0 {
		return 0, errs.ErrInvariantViolation
	}
	if n.isLeaf {
		for _, e := range n.entries {
			if !geom.FitsInNode(e.point, n.center, n.radius) {
				return 0, errs.ErrInvariantViolation
			}
		}
		return len(n.entries), nil
	}
	if len(n.slots) != 1<<uint(t.cfg.Dims) {
		return 0, errs.ErrInvariantViolation
	}
	total := 0
	for idx := range n.slots {
		s := &n.slots[idx]
		switch s.kind {
		case slotEmpty:
			continue
		case slotEntry:
			if !geom.FitsInNode(s.point, n.center, n.radius) {
				return 0, errs.ErrInvariantViolation
			}
			if geom.QuadrantOf(s.point, n.center) != idx {
				return 0, errs.ErrInvariantViolation
			}
			total++
		case slotSub:
			if s.sub == nil {
				return 0, errs.ErrInvariantViolation
			}
			wantCenter := geom.ChildCenter(n.center, n.radius, idx, t.cfg.Dims)
			if !s.sub.center.Equal(wantCenter) || s.sub.radius != n.radius/2 {
				return 0, errs.ErrInvariantViolation
			}
			n2, err := t.checkNode(s.sub)
			if err != nil {
				return 0, err
			}
			if n2 == 0 {
				// a subnode with no entries at all should have been
				// collapsed back to empty on removal (spec.md §4.3.5).
				return 0, errs.ErrInvariantViolation
			}
			total += n2
		default:
			return 0, errs.ErrInvariantViolation
		}
	}
	if n.presence != nil {
		for idx := range n.slots {
			want := n.slots[idx].kind != slotEmpty
			if n.presence.get(idx) != want {
				return 0, errs.ErrInvariantViolation
			}
		}
	}
	if n.childBoxes != nil {
		for idx := range n.slots {
			want := geom.HypercubeBox(geom.ChildCenter(n.center, n.radius, idx, t.cfg.Dims), n.radius/2)
			if !n.childBoxes[idx].Equal(want) {
				return 0, errs.ErrInvariantViolation
			}
		}
	}
	return total, nil
}
