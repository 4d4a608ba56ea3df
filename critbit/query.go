package critbit

import "github.com/TomTonic/spatialindex/keyenc"

// RangeIterator yields every stored entry whose key falls in [min,max]
// (inclusive, lexicographic order), in key order, resumable like Iterator
// (spec.md §4.1.4). It prunes whole subtrees using boundKey: since every
// key beneath a node shares that node's implied prefix, the most extreme
// key reachable through a given child is computable on demand from any
// representative key in that child's subtree, without a stored infix.
type RangeIterator[V any] struct {
	min, max   keyenc.Key
	width      int
	stack      []frame[V]
	singleKey  keyenc.Key
	singleVal  V
	singlePend bool
	bufKey     keyenc.Key
	bufVal     V
	bufValid   bool
}

// Query returns an iterator over every entry with key in [min,max].
func (t *Tree[V]) Query(min, max keyenc.Key) *RangeIterator[V] {
	it := &RangeIterator[V]{min: min, max: max, width: t.width}
	switch t.root.kind {
	case slotLeaf:
		if inRange(t.root.key, min, max) {
			it.singlePend = true
			it.singleKey = t.root.key
			it.singleVal = t.root.value
		}
	case slotSub:
		it.stack = []frame[V]{{n: t.root.sub, state: readLower}}
	}
	return it
}

func inRange(key, min, max keyenc.Key) bool {
	return min.LessThanOrEqual(key) && key.LessThanOrEqual(max)
}

// childOverlapsRange reports whether the subtree reached via n's child at
// bit `bit` could possibly contain a key in [min,max]: it builds that
// child's most extreme possible low/high keys (shared prefix from a
// representative key, the fixed decision bit, then all-zero / all-one for
// the remaining undetermined bits) and checks the two ranges for overlap.
func childOverlapsRange[V any](n *node[V], bit int, min, max keyenc.Key, width int) bool {
	s := *childSlot(n, bit)
	repr := representative(s)
	lo := boundKey(repr, width, n.posDiff, bit, 0)
	hi := boundKey(repr, width, n.posDiff, bit, 1)
	return lo.LessThanOrEqual(max) && min.LessThanOrEqual(hi)
}

// HasNext reports whether Next would return another entry. Buffers one
// lookahead entry since a pruned-but-nonempty stack does not guarantee a
// surviving in-range leaf.
func (it *RangeIterator[V]) HasNext() bool {
	if it.singlePend || it.bufValid {
		return true
	}
	if k, v, ok := it.advance(); ok {
		it.bufKey, it.bufVal, it.bufValid = k, v, true
	}
	return it.bufValid
}

// Next returns the next in-range entry in key order, or ok=false once
// exhausted.
func (it *RangeIterator[V]) Next() (key keyenc.Key, value V, ok bool) {
	if it.singlePend {
		it.singlePend = false
		return it.singleKey.Clone(), it.singleVal, true
	}
	if it.bufValid {
		it.bufValid = false
		return it.bufKey, it.bufVal, true
	}
	return it.advance()
}

// advance runs the stack machine forward until it either yields an
// in-range leaf or empties the stack.
func (it *RangeIterator[V]) advance() (key keyenc.Key, value V, ok bool) {
	for len(it.stack) > 0 {
		idx := len(it.stack) - 1
		n := it.stack[idx].n
		switch it.stack[idx].state {
		case readLower:
			it.stack[idx].state = readUpper
			if !childOverlapsRange(n, 0, it.min, it.max, it.width) {
				continue
			}
			s := n.lo
			if s.kind == slotLeaf {
				if inRange(s.key, it.min, it.max) {
					return s.key.Clone(), s.value, true
				}
				continue
			}
			it.stack = append(it.stack, frame[V]{n: s.sub, state: readLower})
		case readUpper:
			it.stack[idx].state = returnToParent
			if !childOverlapsRange(n, 1, it.min, it.max, it.width) {
				continue
			}
			s := n.hi
			if s.kind == slotLeaf {
				if inRange(s.key, it.min, it.max) {
					return s.key.Clone(), s.value, true
				}
				continue
			}
			it.stack = append(it.stack, frame[V]{n: s.sub, state: readLower})
		case returnToParent:
			it.stack = it.stack[:idx]
		}
	}
	var zero V
	return nil, zero, false
}

// MaskIterator yields every entry whose key k satisfies (k|minMask)==k
// (every bit set in minMask is also set in k) and (k&maxMask)==k (every
// bit set in k is also set in maxMask) — spec.md §4.1.4's mask query. Like
// RangeIterator, it prunes whole subtrees rather than scanning every leaf:
// childFeasibleMask tests the bits a subtree's representative key already
// has fixed (everything up to the node's own posDiff, the prefix the
// spec's `((-1) << (totalBits-currentDepth))` restriction isolates)
// against the masks, and only the bits still free beyond that are left
// for the leaf-level check to resolve.
type MaskIterator[V any] struct {
	minMask, maxMask keyenc.Key
	width            int
	stack            []frame[V]
	singleKey        keyenc.Key
	singleVal        V
	singlePend       bool
	bufKey           keyenc.Key
	bufVal           V
	bufValid         bool
}

// QueryWithMask returns an iterator over every entry whose key matches the
// given min/max bitmasks.
func (t *Tree[V]) QueryWithMask(minMask, maxMask keyenc.Key) *MaskIterator[V] {
	it := &MaskIterator[V]{minMask: minMask, maxMask: maxMask, width: t.width}
	switch t.root.kind {
	case slotLeaf:
		if matchesMask(t.root.key, minMask, maxMask) {
			it.singlePend = true
			it.singleKey = t.root.key
			it.singleVal = t.root.value
		}
	case slotSub:
		it.stack = []frame[V]{{n: t.root.sub, state: readLower}}
	}
	return it
}

// childFeasibleMask reports whether some key beneath n's child at bit
// `bit` could still satisfy the masks. Every key in that subtree agrees
// with repr on bits [0,n.posDiff] (n.posDiff itself fixed to `bit` by
// construction), so a required-1 minMask bit or a disallowed-1 maxMask
// bit landing in that already-fixed prefix settles the question for the
// whole subtree; bits beyond the prefix are still free and cannot be
// ruled out here.
func childFeasibleMask[V any](n *node[V], bit int, minMask, maxMask keyenc.Key, width int) bool {
	s := *childSlot(n, bit)
	repr := representative(s)
	limit := n.posDiff
	if limit > width-1 {
		limit = width - 1
	}
	for p := 0; p <= limit; p++ {
		kb := getBit(repr, p)
		if getBit(minMask, p) == 1 && kb == 0 {
			return false
		}
		if !maxMaskAllowsOne(maxMask, p) && kb == 1 {
			return false
		}
	}
	return true
}

// maxMaskAllowsOne reports whether maxMask permits a 1 bit at pos,
// matching matchesMask's convention that a maxMask shorter than the key
// imposes no constraint on the missing trailing bytes.
func maxMaskAllowsOne(maxMask keyenc.Key, pos int) bool {
	if pos/8 >= len(maxMask) {
		return true
	}
	return getBit(maxMask, pos) == 1
}

func matchesMask(key, minMask, maxMask keyenc.Key) bool {
	for i := 0; i < len(key); i++ {
		var minB, maxB byte
		if i < len(minMask) {
			minB = minMask[i]
		}
		if i < len(maxMask) {
			maxB = maxMask[i]
		} else {
			maxB = 0xFF
		}
		if key[i]|minB != key[i] {
			return false
		}
		if key[i]&maxB != key[i] {
			return false
		}
	}
	return true
}

// HasNext reports whether Next would return another entry.
func (it *MaskIterator[V]) HasNext() bool {
	if it.singlePend || it.bufValid {
		return true
	}
	if k, v, ok := it.advance(); ok {
		it.bufKey, it.bufVal, it.bufValid = k, v, true
	}
	return it.bufValid
}

// Next returns the next mask-matching entry, or ok=false once exhausted.
func (it *MaskIterator[V]) Next() (key keyenc.Key, value V, ok bool) {
	if it.singlePend {
		it.singlePend = false
		return it.singleKey.Clone(), it.singleVal, true
	}
	if it.bufValid {
		it.bufValid = false
		return it.bufKey, it.bufVal, true
	}
	return it.advance()
}

// advance runs the stack machine forward until it either yields a
// mask-matching leaf or empties the stack.
func (it *MaskIterator[V]) advance() (key keyenc.Key, value V, ok bool) {
	for len(it.stack) > 0 {
		idx := len(it.stack) - 1
		n := it.stack[idx].n
		switch it.stack[idx].state {
		case readLower:
			it.stack[idx].state = readUpper
			if !childFeasibleMask(n, 0, it.minMask, it.maxMask, it.width) {
				continue
			}
			s := n.lo
			if s.kind == slotLeaf {
				if matchesMask(s.key, it.minMask, it.maxMask) {
					return s.key.Clone(), s.value, true
				}
				continue
			}
			it.stack = append(it.stack, frame[V]{n: s.sub, state: readLower})
		case readUpper:
			it.stack[idx].state = returnToParent
			if !childFeasibleMask(n, 1, it.minMask, it.maxMask, it.width) {
				continue
			}
			s := n.hi
			if s.kind == slotLeaf {
				if matchesMask(s.key, it.minMask, it.maxMask) {
					return s.key.Clone(), s.value, true
				}
				continue
			}
			it.stack = append(it.stack, frame[V]{n: s.sub, state: readLower})
		case returnToParent:
			it.stack = it.stack[:idx]
		}
	}
	var zero V
	return nil, zero, false
}
