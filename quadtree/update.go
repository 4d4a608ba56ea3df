package quadtree

import (
	"github.com/TomTonic/spatialindex/errs"
	"github.com/TomTonic/spatialindex/geom"
)

// Update relocates the first entry at oldPoint whose value satisfies match
// to newPoint (spec.md §4.3.4). Returns true if an entry was found and
// relocated. The removal records every visited ancestor; reinsertion then
// walks that path from the leaf upward and absorbs the entry at the first
// ancestor whose hypercube still contains newPoint (the fast path avoids a
// full root descent when the new key stays nearby). Path nodes that the
// removal's merges detached from the tree are skipped; the root is always
// on the path, so the walk ends there at the latest. A newPoint outside the
// root's hypercube is rejected with ErrOutOfDomain before anything is
// removed.
func (t *Tree[V]) Update(oldPoint, newPoint geom.Point, match func(V) bool) (bool, error) {
	if t.root == nil {
		return false, nil
	}
	if oldPoint.Dim() != t.cfg.Dims || newPoint.Dim() != t.cfg.Dims {
		return false, errs.ErrDimensionMismatch
	}
	if !geom.FitsInNode(newPoint, t.root.center, t.root.radius) {
		return false, errs.ErrOutOfDomain
	}
	var path []*qnode[V]
	val, ok := t.removeAt(t.root, oldPoint, match, &path)
	if !ok {
		return false, nil
	}
	last := 0
	for last+1 < len(path) && !path[last].isLeaf {
		s := &path[last].slots[geom.QuadrantOf(oldPoint, path[last].center)]
		if s.kind != slotSub || s.sub != path[last+1] {
			break
		}
		last++
	}
	for i := last; i >= 0; i-- {
		n := path[i]
		if geom.FitsInNode(newPoint, n.center, n.radius) {
			t.insertAt(n, newPoint, val)
			return true, nil
		}
	}
	return false, errs.ErrOutOfDomain
}
