package quadtree

import (
	"github.com/TomTonic/spatialindex/geom"
	"github.com/TomTonic/spatialindex/knn"
)

// expander adapts a Tree to knn.Expander (spec.md §4.6) over *qnode[V]:
// Expand pushes every occupied child's closest/farthest-possible distance
// and every entry's actual distance.
type expander[V any] struct {
	t         *Tree[V]
	center    geom.Point
	entryDist geom.PointDistance
	nodeBound geom.BoxDistance
	filter    func(geom.Point, V) bool
}

func (e *expander[V]) Root() (*qnode[V], bool) {
	if e.t.root == nil || e.t.size == 0 {
		return nil, false
	}
	return e.t.root, true
}

func (e *expander[V]) Expand(n *qnode[V], pushNode func(*qnode[V], float64), pushEntry func(geom.Point, V, float64)) {
	if n.isLeaf {
		for _, en := range n.entries {
			if e.filter != nil && !e.filter(en.point, en.value) {
				continue
			}
			e.t.stats.DistanceCalls++
			pushEntry(en.point, en.value, e.entryDist(e.center, en.point))
		}
		return
	}
	for idx := n.nextOccupied(0); idx < len(n.slots); idx = n.nextOccupied(idx + 1) {
		s := &n.slots[idx]
		switch s.kind {
		case slotEntry:
			if e.filter != nil && !e.filter(s.point, s.value) {
				continue
			}
			e.t.stats.DistanceCalls++
			pushEntry(s.point, s.value, e.entryDist(e.center, s.point))
		case slotSub:
			box := e.t.childBox(n, idx)
			pushNode(s.sub, e.nodeBound(e.center, box))
		}
	}
}

// NearestNeighbors returns a best-first iterator over entries in
// non-decreasing distance from center under dist (spec.md §4.6). dist nil
// defaults to geom.L2.
func (t *Tree[V]) NearestNeighbors(center geom.Point, k int, dist geom.PointDistance, filter func(geom.Point, V) bool) *knn.Iterator[*qnode[V], geom.Point, V] {
	if dist == nil {
		dist = geom.L2
	}
	exp := &expander[V]{t: t, center: center, entryDist: dist, nodeBound: geom.EdgeDistance, filter: filter}
	return knn.New[*qnode[V], geom.Point, V](exp, k)
}

// FarthestNeighbors reuses the same machinery to enumerate entries
// farthest-first (spec.md §4.5's "far-neighbor wrapper"). dist nil
// defaults to geom.L2 as the underlying (pre-inversion) metric.
func (t *Tree[V]) FarthestNeighbors(center geom.Point, k int, dist geom.PointDistance, filter func(geom.Point, V) bool) *knn.Iterator[*qnode[V], geom.Point, V] {
	if dist == nil {
		dist = geom.L2
	}
	exp := &expander[V]{
		t:         t,
		center:    center,
		entryDist: geom.FarNeighborPoint(dist),
		nodeBound: geom.FarNeighbor(geom.FarEdgeDistance),
		filter:    filter,
	}
	return knn.New[*qnode[V], geom.Point, V](exp, k)
}
