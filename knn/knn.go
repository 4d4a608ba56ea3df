// Package knn implements the best-first k-nearest-neighbor search protocol
// shared by every tree engine in this module (spec.md §4.6): a min-heap of
// pending nodes ordered by closest-possible distance, and a bounded
// min-max heap of the best k candidates seen so far. It knows nothing about
// R*-tree or quadtree internals; each tree supplies an Expander that knows
// how to walk its own node type.
package knn

import (
	"math"

	mmheap "github.com/TomTonic/spatialindex/heap"
)

// Entry is a yielded (key, value) pair.
type Entry[K any, V any] struct {
	Key   K
	Value V
}

// Expander lets Iterator walk a tree of node type N without depending on
// its concrete shape. Expand is called once per popped node: it must call
// pushNode for every child node (with its closest-possible distance to the
// query center) and pushEntry for every leaf entry (with its actual
// distance), applying any user filter itself before calling pushEntry.
type Expander[N any, K any, V any] interface {
	Root() (N, bool)
	Expand(n N, pushNode func(child N, bound float64), pushEntry func(key K, value V, dist float64))
}

// Iterator is the resumable best-first k-NN cursor. hasNext()/next() match
// spec.md §6's query surface; Reset reuses the internal heaps across calls
// (spec.md §5: "pools distance-entry objects across resets").
type Iterator[N any, K any, V any] struct {
	exp         Expander[N, K, V]
	nodes       *mmheap.NodeHeap[N]
	cands       *mmheap.CandidateHeap[Entry[K, V]]
	k           int
	remaining   int
	maxNodeDist float64
	started     bool
	exhausted   bool
}

// New constructs a k-NN iterator over exp, yielding up to k entries.
func New[N any, K any, V any](exp Expander[N, K, V], k int) *Iterator[N, K, V] {
	it := &Iterator[N, K, V]{
		nodes: mmheap.NewNodeHeap[N](16),
		cands: mmheap.NewCandidateHeap[Entry[K, V]](k + 1),
	}
	it.Reset(exp, k)
	return it
}

// Reset rebinds the iterator to a new expander/center/k, reusing its
// internal heaps.
func (it *Iterator[N, K, V]) Reset(exp Expander[N, K, V], k int) {
	it.exp = exp
	it.k = k
	it.remaining = k
	it.maxNodeDist = math.Inf(1)
	it.started = false
	it.exhausted = k <= 0
	it.nodes.Reset()
	it.cands.Reset()
}

func sanitize(dist float64) float64 {
	if math.IsNaN(dist) {
		// Open Question 4 (DESIGN.md): a NaN distance is treated as +Inf so
		// the offending entry/node sorts last instead of aborting the query.
		return math.Inf(1)
	}
	return dist
}

func (it *Iterator[N, K, V]) pushNode(n N, dist float64) {
	dist = sanitize(dist)
	if dist <= it.maxNodeDist {
		it.nodes.Push(n, dist)
	}
}

func (it *Iterator[N, K, V]) pushEntry(key K, value V, dist float64) {
	dist = sanitize(dist)
	if dist > it.maxNodeDist {
		return
	}
	it.cands.Push(Entry[K, V]{Key: key, Value: value}, dist)
	if it.cands.Len() > it.k {
		it.cands.PopMax()
	}
	if it.cands.Len() >= it.k {
		if worst, ok := it.cands.PeekMax(); ok {
			it.maxNodeDist = math.Min(it.maxNodeDist, worst.Dist)
		}
	}
}

func (it *Iterator[N, K, V]) ensureStarted() {
	if it.started {
		return
	}
	it.started = true
	if root, ok := it.exp.Root(); ok {
		it.nodes.Push(root, 0)
	}
}

// HasNext reports whether Next would return another entry.
func (it *Iterator[N, K, V]) HasNext() bool {
	if it.exhausted {
		return false
	}
	it.ensureStarted()
	for {
		if it.remaining == 0 {
			it.exhausted = true
			return false
		}
		bestCand, hasCand := it.cands.PeekMin()
		bestNode, hasNode := it.nodes.Peek()
		switch {
		case hasCand && (!hasNode || bestCand.Dist <= bestNode.Dist):
			return true
		case hasNode:
			it.expandOne()
			continue
		default:
			it.exhausted = true
			return false
		}
	}
}

func (it *Iterator[N, K, V]) expandOne() {
	n, _ := it.nodes.Pop()
	it.exp.Expand(n.Node, it.pushNode, it.pushEntry)
}

// Next returns the next-closest entry and its distance, or ok=false if the
// iterator is exhausted.
func (it *Iterator[N, K, V]) Next() (entry Entry[K, V], dist float64, ok bool) {
	if !it.HasNext() {
		return entry, 0, false
	}
	c, _ := it.cands.PopMin()
	it.remaining--
	return c.Entry, c.Dist, true
}
