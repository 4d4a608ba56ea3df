// Package heap provides the two priority queues the best-first k-NN search
// (spec.md §4.6) is built on: a plain min-heap of pending nodes keyed by
// their closest-possible distance, and a bounded min-max heap of the best
// k candidates seen so far. NodeHeap is built on container/heap, the
// idiomatic stdlib choice for a priority queue — none of the example repos
// carry or depend on a third-party heap library, so there is no ecosystem
// package to prefer here (see DESIGN.md). CandidateHeap is a slice kept
// sorted by distance (see candheap.go).
package heap

import "container/heap"

// NodeEntry is a pending node paired with the closest-possible distance
// from the query point to its bounding volume.
type NodeEntry[N any] struct {
	Node N
	Dist float64
}

type nodeSlice[N any] []NodeEntry[N]

func (s nodeSlice[N]) Len() int            { return len(s) }
func (s nodeSlice[N]) Less(i, j int) bool  { return s[i].Dist < s[j].Dist }
func (s nodeSlice[N]) Swap(i, j int)       { s[i], s[j] = s[j], s[i] }
func (s *nodeSlice[N]) Push(x any)         { *s = append(*s, x.(NodeEntry[N])) }
func (s *nodeSlice[N]) Pop() any {
	old := *s
	n := len(old)
	item := old[n-1]
	*s = old[:n-1]
	return item
}

// NodeHeap is a min-heap of pending nodes ordered by Dist.
type NodeHeap[N any] struct {
	s nodeSlice[N]
}

// NewNodeHeap returns an empty node heap, optionally reusing cap slots of
// backing storage (the k-NN iterator pools this across Reset calls).
func NewNodeHeap[N any](capHint int) *NodeHeap[N] {
	return &NodeHeap[N]{s: make(nodeSlice[N], 0, capHint)}
}

// Len reports the number of pending nodes.
func (h *NodeHeap[N]) Len() int { return len(h.s) }

// Push adds a node at the given bound distance.
func (h *NodeHeap[N]) Push(n N, dist float64) {
	heap.Push(&h.s, NodeEntry[N]{Node: n, Dist: dist})
}

// Peek returns the smallest-distance entry without removing it.
func (h *NodeHeap[N]) Peek() (NodeEntry[N], bool) {
	if len(h.s) == 0 {
		var zero NodeEntry[N]
		return zero, false
	}
	return h.s[0], true
}

// Pop removes and returns the smallest-distance entry.
func (h *NodeHeap[N]) Pop() (NodeEntry[N], bool) {
	if len(h.s) == 0 {
		var zero NodeEntry[N]
		return zero, false
	}
	return heap.Pop(&h.s).(NodeEntry[N]), true
}

// Reset empties the heap while keeping its backing array.
func (h *NodeHeap[N]) Reset() {
	h.s = h.s[:0]
}
