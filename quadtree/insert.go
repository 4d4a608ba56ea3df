package quadtree

import (
	"github.com/TomTonic/spatialindex/errs"
	"github.com/TomTonic/spatialindex/geom"
)

// Insert adds (p, value) to the tree (spec.md §4.3.2). Multimap semantics:
// an identical point with a different value coexists alongside it.
func (t *Tree[V]) Insert(p geom.Point, value V) error {
	if p.Dim() != t.cfg.Dims {
		return errs.ErrDimensionMismatch
	}
	t.ensureRoot(p)
	if !geom.FitsInNode(p, t.root.center, t.root.radius) {
		return errs.ErrOutOfDomain
	}
	t.insertAt(t.root, p, value)
	t.size++
	return nil
}

// insertAt places (p, value) into the subtree rooted at n, splitting a
// leaf into a directory on overflow (spec.md §4.3.2, §4.3.6) and bumping
// n's subtree entry count.
func (t *Tree[V]) insertAt(n *qnode[V], p geom.Point, value V) {
	if n.isLeaf {
		if len(n.entries) < t.cfg.MaxNodeCapacity || allCoincident(n.entries, p) {
			n.entries = append(n.entries, qentry[V]{point: p.Clone(), value: value})
			n.nValues++
			return
		}
		t.splitLeaf(n)
		t.insertAt(n, p, value)
		return
	}
	t.placeInDirectory(n, p, value)
	n.nValues++
}

// splitLeaf converts a full, non-coincident leaf into a directory and
// redistributes its entries (spec.md §4.3.2).
func (t *Tree[V]) splitLeaf(n *qnode[V]) {
	entries := n.entries
	n.isLeaf = false
	n.entries = nil
	nSlots := 1 << uint(t.cfg.Dims)
	n.slots = make([]slot[V], nSlots)
	if t.cfg.Variant >= VariantHC {
		n.presence = newPresenceBits(nSlots)
	}
	if t.cfg.Variant == VariantHC2 {
		n.childBoxes = precomputeChildBoxes(n, t.cfg.Dims)
	}
	for _, e := range entries {
		t.placeInDirectory(n, e.point, e.value)
	}
}

// placeInDirectory routes (p, value) into n's packed slot array without
// touching n.nValues (the caller owns that count): empty slots take the
// entry directly; a colliding single-entry slot spawns a subnode; a
// subnode slot recurses.
func (t *Tree[V]) placeInDirectory(n *qnode[V], p geom.Point, value V) {
	idx := geom.QuadrantOf(p, n.center)
	s := &n.slots[idx]
	switch s.kind {
	case slotEmpty:
		s.kind = slotEntry
		s.point = p.Clone()
		s.value = value
		if n.presence != nil {
			n.presence.set(idx)
		}
	case slotEntry:
		sub := t.newChildNode(n, idx)
		if s.point.Equal(p) || !canSubdivide(n.radius) {
			sub.entries = append(sub.entries,
				qentry[V]{point: s.point, value: s.value},
				qentry[V]{point: p.Clone(), value: value})
			sub.nValues = 2
		} else {
			t.insertAt(sub, s.point, s.value)
			t.insertAt(sub, p, value)
		}
		s.kind = slotSub
		s.point = nil
		s.sub = sub
	case slotSub:
		t.insertAt(s.sub, p, value)
	}
}
