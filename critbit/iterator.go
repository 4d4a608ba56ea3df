package critbit

import "github.com/TomTonic/spatialindex/keyenc"

// frameState is one of the three visit states spec.md §4.1.5/§9 calls for:
// a frame must read its lo child, then its hi child, then pop back to its
// parent.
type frameState byte

const (
	readLower frameState = iota
	readUpper
	returnToParent
)

type frame[V any] struct {
	n     *node[V]
	state frameState
}

// Iterator walks every entry of a Tree in key order, resumable across
// calls: all traversal state lives in an explicit stack rather than on the
// goroutine stack, so a caller can pause between Next calls indefinitely
// (spec.md §4.1.5).
type Iterator[V any] struct {
	stack        []frame[V]
	singleKey    keyenc.Key
	singleVal    V
	singlePend   bool
}

// Iterator returns a fresh in-order iterator over every entry.
func (t *Tree[V]) Iterator() *Iterator[V] {
	it := &Iterator[V]{}
	switch t.root.kind {
	case slotLeaf:
		it.singlePend = true
		it.singleKey = t.root.key
		it.singleVal = t.root.value
	case slotSub:
		it.stack = []frame[V]{{n: t.root.sub, state: readLower}}
	}
	return it
}

// HasNext reports whether Next would return another entry. Valid only
// because every internal node's lo and hi are always populated (slotLeaf
// or slotSub, never slotEmpty) for a tree of size >= 2 — see node.go.
func (it *Iterator[V]) HasNext() bool {
	return it.singlePend || len(it.stack) > 0
}

// Next returns the next entry in key order, or ok=false once exhausted.
func (it *Iterator[V]) Next() (key keyenc.Key, value V, ok bool) {
	if it.singlePend {
		it.singlePend = false
		return it.singleKey.Clone(), it.singleVal, true
	}
	for len(it.stack) > 0 {
		idx := len(it.stack) - 1
		switch it.stack[idx].state {
		case readLower:
			it.stack[idx].state = readUpper
			s := it.stack[idx].n.lo
			if s.kind == slotLeaf {
				return s.key.Clone(), s.value, true
			}
			it.stack = append(it.stack, frame[V]{n: s.sub, state: readLower})
		case readUpper:
			it.stack[idx].state = returnToParent
			s := it.stack[idx].n.hi
			if s.kind == slotLeaf {
				return s.key.Clone(), s.value, true
			}
			it.stack = append(it.stack, frame[V]{n: s.sub, state: readLower})
		case returnToParent:
			it.stack = it.stack[:idx]
		}
	}
	var zero V
	return nil, zero, false
}
