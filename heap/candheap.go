package heap

import "sort"

// Candidate is a leaf entry discovered during best-first search, paired
// with its actual distance to the query point.
type Candidate[E any] struct {
	Entry E
	Dist  float64
}

// CandidateHeap is the bounded "min-max heap of candidates" from spec.md
// §4.6: it supports peeking/popping the smallest (to yield results in
// non-decreasing distance order) and peeking/popping the largest (to evict
// the worst candidate once more than k are held). It is implemented as a
// slice kept sorted by Dist rather than a textbook min-max heap: with k
// bounded to the small sizes k-NN queries actually use, an O(k) insertion
// is simpler to get right than an interleaved min/max heap and has the
// same asymptotic behavior that matters here (bounded by k, not by the
// size of the tree).
type CandidateHeap[E any] struct {
	s []Candidate[E]
}

// NewCandidateHeap returns an empty candidate heap, optionally reusing cap
// slots of backing storage.
func NewCandidateHeap[E any](capHint int) *CandidateHeap[E] {
	return &CandidateHeap[E]{s: make([]Candidate[E], 0, capHint)}
}

// Len reports the number of held candidates.
func (h *CandidateHeap[E]) Len() int { return len(h.s) }

// Push inserts a candidate, keeping h.s sorted ascending by Dist.
func (h *CandidateHeap[E]) Push(e E, dist float64) {
	i := sort.Search(len(h.s), func(i int) bool { return h.s[i].Dist >= dist })
	h.s = append(h.s, Candidate[E]{})
	copy(h.s[i+1:], h.s[i:])
	h.s[i] = Candidate[E]{Entry: e, Dist: dist}
}

// PeekMin returns the smallest-distance candidate without removing it.
func (h *CandidateHeap[E]) PeekMin() (Candidate[E], bool) {
	if len(h.s) == 0 {
		var zero Candidate[E]
		return zero, false
	}
	return h.s[0], true
}

// PeekMax returns the largest-distance candidate without removing it.
func (h *CandidateHeap[E]) PeekMax() (Candidate[E], bool) {
	if len(h.s) == 0 {
		var zero Candidate[E]
		return zero, false
	}
	return h.s[len(h.s)-1], true
}

// PopMin removes and returns the smallest-distance candidate.
func (h *CandidateHeap[E]) PopMin() (Candidate[E], bool) {
	c, ok := h.PeekMin()
	if ok {
		h.s = h.s[1:]
	}
	return c, ok
}

// PopMax removes the largest-distance candidate (used to bound the heap to
// k entries after a push).
func (h *CandidateHeap[E]) PopMax() (Candidate[E], bool) {
	c, ok := h.PeekMax()
	if ok {
		h.s = h.s[:len(h.s)-1]
	}
	return c, ok
}

// Reset empties the heap while keeping its backing array.
func (h *CandidateHeap[E]) Reset() {
	h.s = h.s[:0]
}
