// Package critbit implements the 1-D and k-D crit-bit trie engines of
// spec.md §3/§4.1: a binary trie branching only at the bit positions where
// two stored keys actually differ, so its depth is bounded by key count
// rather than key width. Values are tagged-union "slots" (see node.go)
// rather than the teacher's unsafe.Pointer-cast node kinds.
package critbit

import (
	"github.com/TomTonic/spatialindex/errs"
	"github.com/TomTonic/spatialindex/keyenc"
)

// Tree is a crit-bit trie over fixed-width keys. Width is in bits; keys
// shorter than ceil(width/8) bytes are treated as zero-padded on the
// right, matching FromBytes/FromInt64's big-endian, left-justified layout.
type Tree[V any] struct {
	width int
	size  int
	root  slot[V]
}

// New constructs an empty crit-bit trie over keys of the given bit width.
// width must be at least 1 (spec.md §7: "constructing a 1-D trie with
// width < 1... fails").
func New[V any](width int) (*Tree[V], error) {
	if width < 1 {
		return nil, errs.ErrConfiguration
	}
	return &Tree[V]{width: width}, nil
}

// Width reports the configured key width in bits.
func (t *Tree[V]) Width() int { return t.width }

// Size reports the number of stored entries.
func (t *Tree[V]) Size() int { return t.size }

// Put inserts or overwrites key with value, returning the previous value
// and whether one existed (spec.md §4.1.1).
func (t *Tree[V]) Put(key keyenc.Key, value V) (old V, had bool) {
	if t.root.kind == slotEmpty {
		t.root = slot[V]{kind: slotLeaf, key: key.Clone(), value: value}
		t.size++
		return old, false
	}

	// Pass 1: blind descent to find some existing key, using only posDiff
	// bit tests (no validity check) — the classic crit-bit insertion trick.
	// The structure of the trie guarantees this lands on a leaf that shares
	// the longest possible prefix with key among all stored keys.
	cur := &t.root
	for cur.kind == slotSub {
		bit := getBit(key, cur.sub.posDiff)
		cur = childSlot(cur.sub, bit)
	}

	diff := firstDiffBit(key, cur.key, t.width)
	if diff == -1 {
		old = cur.value
		cur.value = value
		return old, true
	}

	// Pass 2: re-descend from the root, this time stopping at the
	// shallowest point where the new critical bit belongs (the first node
	// whose own posDiff is not strictly less than diff).
	pp := &t.root
	for pp.kind == slotSub && pp.sub.posDiff < diff {
		bit := getBit(key, pp.sub.posDiff)
		pp = childSlot(pp.sub, bit)
	}

	displaced := *pp
	newLeaf := slot[V]{kind: slotLeaf, key: key.Clone(), value: value}
	n := &node[V]{posDiff: diff}
	if getBit(key, diff) == 1 {
		n.hi = newLeaf
		n.lo = displaced
	} else {
		n.lo = newLeaf
		n.hi = displaced
	}
	*pp = slot[V]{kind: slotSub, sub: n}
	t.size++
	return old, false
}

// Get returns the value stored for key, if any.
func (t *Tree[V]) Get(key keyenc.Key) (V, bool) {
	cur := t.root
	for cur.kind == slotSub {
		bit := getBit(key, cur.sub.posDiff)
		cur = *childSlot(cur.sub, bit)
	}
	if cur.kind == slotLeaf && cur.key.Equal(key) {
		return cur.value, true
	}
	var zero V
	return zero, false
}

// Contains reports whether key is present.
func (t *Tree[V]) Contains(key keyenc.Key) bool {
	_, ok := t.Get(key)
	return ok
}

// Remove deletes key, returning its value and whether it was present
// (spec.md §4.1.2). On finding the matching leaf, the slot that held its
// parent node is overwritten with the sibling slot, collapsing that node
// away — there is no posFirstBit/infix field to reassign (DESIGN.md, Open
// Question 1).
func (t *Tree[V]) Remove(key keyenc.Key) (V, bool) {
	var zero V
	switch t.root.kind {
	case slotEmpty:
		return zero, false
	case slotLeaf:
		if t.root.key.Equal(key) {
			v := t.root.value
			t.root = slot[V]{}
			t.size--
			return v, true
		}
		return zero, false
	}

	pp := &t.root
	for {
		n := pp.sub
		bit := getBit(key, n.posDiff)
		child, sib := childSlot(n, bit), childSlot(n, 1-bit)
		if child.kind == slotLeaf {
			if !child.key.Equal(key) {
				return zero, false
			}
			v := child.value
			*pp = *sib
			t.size--
			return v, true
		}
		pp = child
	}
}
