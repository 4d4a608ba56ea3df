package quadtree

import "github.com/TomTonic/spatialindex/geom"

// Remove deletes the first entry at exactly p whose value satisfies match
// (spec.md §4.3.3). Returns the removed value and whether anything was
// removed.
func (t *Tree[V]) Remove(p geom.Point, match func(V) bool) (V, bool) {
	var zero V
	if t.root == nil {
		return zero, false
	}
	val, ok := t.removeAt(t.root, p, match, nil)
	if ok {
		t.size--
	}
	return val, ok
}

// removeAt removes the matching entry from the subtree rooted at n,
// attempting a leaf/directory merge at every directory ancestor on the way
// back up the call stack (spec.md §4.3.3: "After merging, check the
// grandparent recursively" falls directly out of the recursive unwind). If
// path is non-nil, every visited node is appended to it (used by Update's
// fast-reinsertion search).
func (t *Tree[V]) removeAt(n *qnode[V], p geom.Point, match func(V) bool, path *[]*qnode[V]) (V, bool) {
	var zero V
	if path != nil {
		*path = append(*path, n)
	}
	if n.isLeaf {
		for i, e := range n.entries {
			if e.point.Equal(p) && match(e.value) {
				val := e.value
				n.entries = append(n.entries[:i], n.entries[i+1:]...)
				n.nValues--
				return val, true
			}
		}
		return zero, false
	}
	idx := geom.QuadrantOf(p, n.center)
	s := &n.slots[idx]
	switch s.kind {
	case slotEmpty:
		return zero, false
	case slotEntry:
		if !s.point.Equal(p) || !match(s.value) {
			return zero, false
		}
		val := s.value
		s.kind = slotEmpty
		s.point = nil
		n.nValues--
		if n.presence != nil {
			n.presence.clear(idx)
		}
		t.tryMerge(n)
		return val, true
	case slotSub:
		val, ok := t.removeAt(s.sub, p, match, path)
		if ok {
			n.nValues--
			if s.sub.isLeaf && len(s.sub.entries) == 0 {
				s.kind = slotEmpty
				s.sub = nil
				t.nNodes--
				if n.presence != nil {
					n.presence.clear(idx)
				}
			}
			t.tryMerge(n)
		}
		return val, ok
	}
	return zero, false
}

// tryMerge collapses n back into a leaf if the combined entry count of its
// direct entries and leaf children is within capacity (spec.md §4.3.3).
// Directory children block the merge: "Directory children are never
// merged into a leaf — merging only happens at the leaf/directory
// boundary."
func (t *Tree[V]) tryMerge(n *qnode[V]) bool {
	if n.isLeaf {
		return false
	}
	total := 0
	for i := range n.slots {
		switch n.slots[i].kind {
		case slotEntry:
			total++
		case slotSub:
			if !n.slots[i].sub.isLeaf {
				return false
			}
			total += len(n.slots[i].sub.entries)
		}
	}
	if total > t.cfg.MaxNodeCapacity {
		return false
	}
	entries := make([]qentry[V], 0, total)
	for i := range n.slots {
		switch n.slots[i].kind {
		case slotEntry:
			entries = append(entries, qentry[V]{point: n.slots[i].point, value: n.slots[i].value})
		case slotSub:
			entries = append(entries, n.slots[i].sub.entries...)
			t.nNodes--
		}
	}
	n.isLeaf = true
	n.slots = nil
	n.presence = nil
	n.childBoxes = nil
	n.entries = entries
	return true
}
