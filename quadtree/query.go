package quadtree

import "github.com/TomTonic/spatialindex/geom"

type qqFrame[V any] struct {
	n   *qnode[V]
	pos int
}

// WindowIterator is the resumable depth-stack window-query traversal of
// spec.md §4.3.5: visits only directory children whose hypercube overlaps
// the query box, testing each entry point against match.
type WindowIterator[V any] struct {
	t        *Tree[V]
	query    geom.Box
	match    func(geom.Point) bool
	stack    []qqFrame[V]
	bufPt    geom.Point
	bufVal   V
	bufValid bool
}

// QueryIntersect returns an iterator over every entry whose point lies
// inside query.
func (t *Tree[V]) QueryIntersect(query geom.Box) *WindowIterator[V] {
	return t.newWindowIterator(query, func(p geom.Point) bool { return query.ContainsPoint(p) })
}

// QueryExactPoint returns an iterator over every entry exactly at p
// (multimap lookup expressed through the window interface).
func (t *Tree[V]) QueryExactPoint(p geom.Point) *WindowIterator[V] {
	return t.newWindowIterator(geom.PointBox(p), func(q geom.Point) bool { return q.Equal(p) })
}

func (t *Tree[V]) newWindowIterator(query geom.Box, match func(geom.Point) bool) *WindowIterator[V] {
	it := &WindowIterator[V]{t: t, query: query, match: match}
	if t.root != nil {
		it.stack = []qqFrame[V]{{n: t.root}}
	}
	return it
}

func (it *WindowIterator[V]) advance() (geom.Point, V, bool) {
	for len(it.stack) > 0 {
		top := &it.stack[len(it.stack)-1]
		n := top.n
		if n.isLeaf {
			for top.pos < len(n.entries) {
				e := n.entries[top.pos]
				top.pos++
				if it.match(e.point) {
					return e.point, e.value, true
				}
			}
			it.stack = it.stack[:len(it.stack)-1]
			continue
		}
		advanced := false
		for top.pos < len(n.slots) {
			idx := top.pos
			top.pos++
			s := &n.slots[idx]
			switch s.kind {
			case slotEmpty:
				continue
			case slotEntry:
				if it.match(s.point) {
					return s.point, s.value, true
				}
				continue
			case slotSub:
				if it.t.childBox(n, idx).Intersects(it.query) {
					it.stack = append(it.stack, qqFrame[V]{n: s.sub})
					advanced = true
				}
			}
			if advanced {
				break
			}
		}
		if !advanced && top.pos >= len(n.slots) {
			it.stack = it.stack[:len(it.stack)-1]
		}
	}
	var zero V
	return nil, zero, false
}

// HasNext reports whether Next would return another entry.
func (it *WindowIterator[V]) HasNext() bool {
	if it.bufValid {
		return true
	}
	if p, v, ok := it.advance(); ok {
		it.bufPt, it.bufVal, it.bufValid = p, v, true
	}
	return it.bufValid
}

// Next returns the next matching (point, value), or ok=false once
// exhausted.
func (it *WindowIterator[V]) Next() (point geom.Point, value V, ok bool) {
	if !it.HasNext() {
		var zero V
		return nil, zero, false
	}
	it.bufValid = false
	return it.bufPt, it.bufVal, true
}
