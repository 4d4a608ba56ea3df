package rtree

import (
	"fmt"
	"math"

	"github.com/TomTonic/spatialindex/geom"
	"github.com/TomTonic/spatialindex/knn"
)

// RangeKNNIterator is the mixed range+k-NN traversal of spec.md §4.2.5: a
// best-first walk ordered by closest-possible distance, restricted to
// entries whose box intersects a query window. Unlike the plain window and
// k-NN iterators, it tolerates removal of already-yielded entries from the
// tree while it is live: a node whose box shrinks after its priority was
// enqueued can be requeued at a smaller distance, which would otherwise
// cause the same entry to be yielded twice. The iterator guards against
// this by remembering the set of entries already yielded at the current
// distance plateau and skipping re-emissions of anything in that set.
type RangeKNNIterator[V any] struct {
	inner    *knn.Iterator[nodeIndex, geom.Box, V]
	lastDist float64
	seen     map[string]bool
	bufBox   geom.Box
	bufVal   V
	bufDist  float64
	bufValid bool
}

// QueryRangeKNN returns a RangeKNNIterator yielding up to k entries whose
// box intersects window, in non-decreasing distance from center. dist nil
// defaults to geom.EdgeDistance.
func (t *Tree[V]) QueryRangeKNN(center geom.Point, window geom.Box, k int, dist geom.BoxDistance) *RangeKNNIterator[V] {
	if dist == nil {
		dist = geom.EdgeDistance
	}
	filter := func(b geom.Box, _ V) bool { return b.Intersects(window) }
	return &RangeKNNIterator[V]{
		inner:    t.NearestNeighbors(center, k, dist, filter),
		lastDist: math.NaN(),
		seen:     make(map[string]bool),
	}
}

func entryKey[V any](b geom.Box, v V) string { return fmt.Sprintf("%v|%v", b, v) }

func (it *RangeKNNIterator[V]) fill() {
	for it.inner.HasNext() {
		e, d, ok := it.inner.Next()
		if !ok {
			return
		}
		if d != it.lastDist {
			it.lastDist = d
			it.seen = map[string]bool{}
		}
		key := entryKey(e.Key, e.Value)
		if it.seen[key] {
			continue
		}
		it.seen[key] = true
		it.bufBox, it.bufVal, it.bufDist, it.bufValid = e.Key, e.Value, d, true
		return
	}
}

// HasNext reports whether Next would return another entry.
func (it *RangeKNNIterator[V]) HasNext() bool {
	if !it.bufValid {
		it.fill()
	}
	return it.bufValid
}

// Next returns the next entry, its value, and its distance from center, or
// ok=false once exhausted.
func (it *RangeKNNIterator[V]) Next() (box geom.Box, value V, dist float64, ok bool) {
	if !it.HasNext() {
		var zero V
		return geom.Box{}, zero, 0, false
	}
	it.bufValid = false
	return it.bufBox, it.bufVal, it.bufDist, true
}
