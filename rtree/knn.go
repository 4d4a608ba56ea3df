package rtree

import (
	"github.com/TomTonic/spatialindex/geom"
	"github.com/TomTonic/spatialindex/knn"
)

// expander adapts a Tree to knn.Expander (spec.md §4.6): Root yields the
// tree's root node, Expand pushes every child's closest/farthest-possible
// distance (depending on mode) and every leaf entry's actual distance.
type expander[V any] struct {
	t         *Tree[V]
	center    geom.Point
	entryDist geom.BoxDistance
	nodeBound geom.BoxDistance
	filter    func(geom.Box, V) bool
}

func (e *expander[V]) Root() (nodeIndex, bool) {
	if e.t.size == 0 {
		return nilIndex, false
	}
	return e.t.root, true
}

func (e *expander[V]) Expand(n nodeIndex, pushNode func(nodeIndex, float64), pushEntry func(geom.Box, V, float64)) {
	node := e.t.arena.get(n)
	if node.isLeaf {
		for _, en := range node.entries {
			if e.filter != nil && !e.filter(en.box, en.value) {
				continue
			}
			e.t.stats.DistanceCalls++
			pushEntry(en.box, en.value, e.entryDist(e.center, en.box))
		}
		return
	}
	for _, c := range node.children {
		cbox := e.t.arena.get(c).box
		pushNode(c, e.nodeBound(e.center, cbox))
	}
}

// NearestNeighbors returns a best-first iterator over entries in
// non-decreasing distance from center under dist (spec.md §4.6). dist nil
// defaults to geom.EdgeDistance. filter nil admits every entry.
func (t *Tree[V]) NearestNeighbors(center geom.Point, k int, dist geom.BoxDistance, filter func(geom.Box, V) bool) *knn.Iterator[nodeIndex, geom.Box, V] {
	if dist == nil {
		dist = geom.EdgeDistance
	}
	exp := &expander[V]{t: t, center: center, entryDist: dist, nodeBound: geom.EdgeDistance, filter: filter}
	return knn.New[nodeIndex, geom.Box, V](exp, k)
}

// FarthestNeighbors reuses the same best-first machinery to enumerate
// entries farthest-first (spec.md §4.5's "far-neighbor wrapper"). dist nil
// defaults to geom.EdgeDistance as the underlying (pre-inversion) metric.
func (t *Tree[V]) FarthestNeighbors(center geom.Point, k int, dist geom.BoxDistance, filter func(geom.Box, V) bool) *knn.Iterator[nodeIndex, geom.Box, V] {
	if dist == nil {
		dist = geom.EdgeDistance
	}
	exp := &expander[V]{
		t:         t,
		center:    center,
		entryDist: geom.FarNeighbor(dist),
		nodeBound: geom.FarNeighbor(geom.FarEdgeDistance),
		filter:    filter,
	}
	return knn.New[nodeIndex, geom.Box, V](exp, k)
}
