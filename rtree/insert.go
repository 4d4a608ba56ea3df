package rtree

import (
	"sort"

	"github.com/TomTonic/spatialindex/geom"
)

// reinsertGuard marks, per level, whether forced reinsertion has already
// been used during the current top-level Insert call (spec.md §4.2.1: "A
// per-insert boolean-per-level set marks levels that have already been
// reinserted this call to forbid recursion").
type reinsertGuard struct {
	used map[int]bool
}

func newReinsertGuard() *reinsertGuard {
	return &reinsertGuard{used: make(map[int]bool)}
}

func (g *reinsertGuard) tryUse(level int) bool {
	if g.used[level] {
		return false
	}
	g.used[level] = true
	return true
}

// Insert adds (box, value) to the tree (spec.md §4.2.1). Multimap
// semantics: identical boxes with different values coexist.
func (t *Tree[V]) Insert(box geom.Box, value V) error {
	if err := t.checkDims(box); err != nil {
		return err
	}
	guard := newReinsertGuard()
	leaf := t.chooseSubtreeForLevel(box, 0)
	t.appendEntry(leaf, entry[V]{box: box.Clone(), value: value}, guard)
	t.size++
	return nil
}

// chooseSubtreeForLevel descends from the root to the given level (0 =
// leaf), at each directory picking the child requiring least overlap
// enlargement (ties: smallest area enlargement, then smallest current
// area) — spec.md §4.2.1 step 1.
func (t *Tree[V]) chooseSubtreeForLevel(box geom.Box, level int) nodeIndex {
	cur := t.root
	curLevel := t.depth - 1
	for curLevel > level {
		cur = t.chooseBestChild(cur, box)
		curLevel--
	}
	return cur
}

func (t *Tree[V]) chooseBestChild(dir nodeIndex, box geom.Box) nodeIndex {
	n := t.arena.get(dir)
	siblingBoxes := make([]geom.Box, len(n.children))
	for i, c := range n.children {
		siblingBoxes[i] = t.arena.get(c).box
	}

	best := -1
	var bestOverlapEnl, bestAreaEnl, bestArea float64
	for i := range n.children {
		orig := siblingBoxes[i]
		enlarged := orig.Union(box)
		var overlapBefore, overlapAfter float64
		for j := range n.children {
			if j == i {
				continue
			}
			overlapBefore += orig.OverlapArea(siblingBoxes[j])
			overlapAfter += enlarged.OverlapArea(siblingBoxes[j])
		}
		overlapEnl := overlapAfter - overlapBefore
		areaEnl := enlarged.Area() - orig.Area()
		area := orig.Area()
		if best == -1 ||
			overlapEnl < bestOverlapEnl ||
			(overlapEnl == bestOverlapEnl && areaEnl < bestAreaEnl) ||
			(overlapEnl == bestOverlapEnl && areaEnl == bestAreaEnl && area < bestArea) {
			best = i
			bestOverlapEnl, bestAreaEnl, bestArea = overlapEnl, areaEnl, area
		}
	}
	return n.children[best]
}

// appendEntry adds e to leaf's entry list and handles overflow.
func (t *Tree[V]) appendEntry(leaf nodeIndex, e entry[V], guard *reinsertGuard) {
	n := t.arena.get(leaf)
	n.entries = append(n.entries, e)
	t.recomputeBox(leaf)
	if len(n.entries) > t.cfg.NodeMaxData {
		t.overflowTreatment(leaf, 0, guard)
	} else {
		t.propagateBoxUpward(n.parent)
	}
}

// appendChild adds child (living at parentLevel-1) to parent's child list
// and handles overflow.
func (t *Tree[V]) appendChild(parent nodeIndex, parentLevel int, child nodeIndex, guard *reinsertGuard) {
	n := t.arena.get(parent)
	n.children = append(n.children, child)
	t.arena.reindexParent(child, parent)
	t.recomputeBox(parent)
	if len(n.children) > t.cfg.NodeMaxDir {
		t.overflowTreatment(parent, parentLevel, guard)
	} else {
		t.propagateBoxUpward(n.parent)
	}
}

// overflowTreatment implements spec.md §4.2.1 step 3.
func (t *Tree[V]) overflowTreatment(idx nodeIndex, level int, guard *reinsertGuard) {
	if guard.tryUse(level) {
		t.forcedReinsert(idx, level, guard)
		return
	}
	t.splitNode(idx, level, guard)
}

// forcedReinsert removes the p farthest-from-center entries/children of
// idx and reinserts each from the root at the same level.
func (t *Tree[V]) forcedReinsert(idx nodeIndex, level int, guard *reinsertGuard) {
	n := t.arena.get(idx)
	center := n.box.Center()
	t.stats.ReinsertCount++

	if n.isLeaf {
		entries := n.entries
		order := make([]int, len(entries))
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(i, j int) bool {
			return geom.CenterDistance(center, entries[order[i]].box) >
				geom.CenterDistance(center, entries[order[j]].box)
		})
		p := reinsertCount(len(entries), t.cfg.ReinsertFraction)
		toReinsert := make([]entry[V], p)
		for i, idx2 := range order[:p] {
			toReinsert[i] = entries[idx2]
		}
		kept := make([]entry[V], 0, len(entries)-p)
		removed := make(map[int]bool, p)
		for _, idx2 := range order[:p] {
			removed[idx2] = true
		}
		for i, e := range entries {
			if !removed[i] {
				kept = append(kept, e)
			}
		}
		n.entries = kept
		t.recomputeBox(idx)
		t.propagateBoxUpward(n.parent)
		for _, e := range toReinsert {
			leaf2 := t.chooseSubtreeForLevel(e.box, 0)
			t.appendEntry(leaf2, e, guard)
		}
		return
	}

	children := n.children
	childBoxes := make([]geom.Box, len(children))
	for i, c := range children {
		childBoxes[i] = t.arena.get(c).box
	}
	order := make([]int, len(children))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return geom.CenterDistance(center, childBoxes[order[i]]) >
			geom.CenterDistance(center, childBoxes[order[j]])
	})
	p := reinsertCount(len(children), t.cfg.ReinsertFraction)
	removed := make(map[int]bool, p)
	for _, idx2 := range order[:p] {
		removed[idx2] = true
	}
	var toReinsert []nodeIndex
	kept := make([]nodeIndex, 0, len(children)-p)
	for i, c := range children {
		if removed[i] {
			toReinsert = append(toReinsert, c)
		} else {
			kept = append(kept, c)
		}
	}
	n.children = kept
	t.recomputeBox(idx)
	t.propagateBoxUpward(n.parent)
	for _, c := range toReinsert {
		cbox := t.arena.get(c).box
		parent2 := t.chooseSubtreeForLevel(cbox, level)
		t.appendChild(parent2, level, c, guard)
	}
}

func reinsertCount(n int, fraction float64) int {
	p := int(float64(n) * fraction)
	if p < 1 {
		p = 1
	}
	if p >= n {
		p = n - 1
	}
	return p
}

// splitNode implements spec.md §4.2.1 step 3's split branch + step 4's
// propagation.
func (t *Tree[V]) splitNode(idx nodeIndex, level int, guard *reinsertGuard) {
	n := t.arena.get(idx)
	t.stats.SplitCount++

	if n.isLeaf {
		boxes := make([]geom.Box, len(n.entries))
		for i, e := range n.entries {
			boxes[i] = e.box
		}
		dec := chooseSplit(boxes, t.cfg.NodeMinData, t.cfg.NodeMaxData)
		ordered := reorder(n.entries, dec.order)
		sibling := t.arena.alloc(true)
		t.arena.get(idx).entries = append([]entry[V]{}, ordered[:dec.splitPoint]...)
		t.arena.get(sibling).entries = append([]entry[V]{}, ordered[dec.splitPoint:]...)
		t.recomputeBox(idx)
		t.recomputeBox(sibling)
		t.nNodes++
		t.propagateSplitUp(idx, sibling, level, guard)
		return
	}

	boxes := make([]geom.Box, len(n.children))
	for i, c := range n.children {
		boxes[i] = t.arena.get(c).box
	}
	dec := chooseSplit(boxes, t.cfg.NodeMinDir, t.cfg.NodeMaxDir)
	ordered := reorder(n.children, dec.order)
	sibling := t.arena.alloc(false)
	group1 := append([]nodeIndex{}, ordered[:dec.splitPoint]...)
	group2 := append([]nodeIndex{}, ordered[dec.splitPoint:]...)
	t.arena.get(idx).children = group1
	t.arena.get(sibling).children = group2
	for _, c := range group2 {
		t.arena.reindexParent(c, sibling)
	}
	t.recomputeBox(idx)
	t.recomputeBox(sibling)
	t.nNodes++
	t.propagateSplitUp(idx, sibling, level, guard)
}

// propagateSplitUp inserts sibling alongside original in original's parent
// (creating a new root if original was the root) — spec.md §4.2.1 step 4.
func (t *Tree[V]) propagateSplitUp(original, sibling nodeIndex, level int, guard *reinsertGuard) {
	parent := t.arena.get(original).parent
	if parent == nilIndex {
		newRoot := t.arena.alloc(false)
		t.arena.get(newRoot).children = []nodeIndex{original, sibling}
		t.arena.reindexParent(original, newRoot)
		t.arena.reindexParent(sibling, newRoot)
		t.recomputeBox(newRoot)
		t.root = newRoot
		t.depth++
		t.nNodes++
		return
	}
	t.appendChild(parent, level+1, sibling, guard)
}
