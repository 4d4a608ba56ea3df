package rtree

import "github.com/TomTonic/spatialindex/geom"

type qFrameState byte

const (
	qEnterChildren qFrameState = iota
	qDone
)

type qFrame struct {
	idx   nodeIndex
	pos   int
	state qFrameState
}

// WindowIterator is the resumable depth-stack window-query traversal of
// spec.md §4.2.3: visits every directory child whose box intersects the
// query box, and emits leaf entries matching the per-entry predicate
// (intersection for queryIntersect, exact equality for queryExactBox).
type WindowIterator[V any] struct {
	t        *Tree[V]
	query    geom.Box
	match    func(geom.Box) bool
	stack    []qFrame
	bufBox   geom.Box
	bufVal   V
	bufValid bool
}

// QueryIntersect returns an iterator over every entry whose box intersects
// query.
func (t *Tree[V]) QueryIntersect(query geom.Box) *WindowIterator[V] {
	return t.newWindowIterator(query, func(b geom.Box) bool { return b.Intersects(query) })
}

// QueryExactBox returns an iterator over every entry whose box exactly
// equals query.
func (t *Tree[V]) QueryExactBox(query geom.Box) *WindowIterator[V] {
	return t.newWindowIterator(query, func(b geom.Box) bool { return b.Equal(query) })
}

func (t *Tree[V]) newWindowIterator(query geom.Box, match func(geom.Box) bool) *WindowIterator[V] {
	return &WindowIterator[V]{
		t:     t,
		query: query,
		match: match,
		stack: []qFrame{{idx: t.root}},
	}
}

func (it *WindowIterator[V]) advance() (geom.Box, V, bool) {
	for len(it.stack) > 0 {
		top := &it.stack[len(it.stack)-1]
		n := it.t.arena.get(top.idx)
		if n.isLeaf {
			for top.pos < len(n.entries) {
				e := n.entries[top.pos]
				top.pos++
				if it.match(e.box) {
					return e.box, e.value, true
				}
			}
			it.stack = it.stack[:len(it.stack)-1]
			continue
		}
		advanced := false
		for top.pos < len(n.children) {
			c := n.children[top.pos]
			top.pos++
			if it.t.arena.get(c).box.Intersects(it.query) {
				it.stack = append(it.stack, qFrame{idx: c})
				advanced = true
				break
			}
		}
		if !advanced && top.pos >= len(n.children) {
			it.stack = it.stack[:len(it.stack)-1]
		}
	}
	var zero V
	return geom.Box{}, zero, false
}

// HasNext reports whether Next would return another entry.
func (it *WindowIterator[V]) HasNext() bool {
	if it.bufValid {
		return true
	}
	if b, v, ok := it.advance(); ok {
		it.bufBox, it.bufVal, it.bufValid = b, v, true
	}
	return it.bufValid
}

// Next returns the next matching entry, or ok=false once exhausted.
func (it *WindowIterator[V]) Next() (box geom.Box, value V, ok bool) {
	if !it.HasNext() {
		var zero V
		return geom.Box{}, zero, false
	}
	it.bufValid = false
	return it.bufBox, it.bufVal, true
}
