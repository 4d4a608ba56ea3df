package quadtree

import "github.com/TomTonic/spatialindex/geom"

// slotKind tags what a directory node's child slot currently holds.
type slotKind byte

const (
	slotEmpty slotKind = iota
	slotEntry
	slotSub
)

// qentry is a stored (key, value) pair; multiple entries with an identical
// point coexist (multimap semantics, spec.md §4.3.6).
type qentry[V any] struct {
	point geom.Point
	value V
}

// slot is one of a directory node's 2^Dims packed children (spec.md
// §4.3.2): empty, a single entry stored directly (no subnode allocation
// for the common singleton case), or a subnode.
type slot[V any] struct {
	kind  slotKind
	point geom.Point
	value V
	sub   *qnode[V]
}

// qnode is a PR-Quadtree node: an axis-aligned hypercube [center-radius,
// center+radius] that is either a leaf (flat, possibly-overflowing entry
// list) or a directory (packed slot array), never both (spec.md §3 "A node
// is in one of two modes").
type qnode[V any] struct {
	center  geom.Point
	radius  float64
	isLeaf  bool
	entries []qentry[V]
	slots   []slot[V]
	nValues int

	presence   presenceBits // non-nil only for the `-hc`/`-hc2` variants
	childBoxes []geom.Box   // non-nil only for the `-hc2` variant: per-slot cached hypercube box
}

func (t *Tree[V]) newNode(center geom.Point, radius float64) *qnode[V] {
	t.nNodes++
	return &qnode[V]{center: center, radius: radius, isLeaf: true}
}

// newChildNode allocates the subnode occupying parent's slot idx.
func (t *Tree[V]) newChildNode(parent *qnode[V], idx int) *qnode[V] {
	center := geom.ChildCenter(parent.center, parent.radius, idx, t.cfg.Dims)
	return t.newNode(center, parent.radius/2)
}

// childBox returns the hypercube box of parent's slot idx, using the
// cached value for the `-hc2` variant instead of recomputing it.
func (t *Tree[V]) childBox(n *qnode[V], idx int) geom.Box {
	if n.childBoxes != nil {
		return n.childBoxes[idx]
	}
	c := geom.ChildCenter(n.center, n.radius, idx, t.cfg.Dims)
	return geom.HypercubeBox(c, n.radius/2)
}

func precomputeChildBoxes[V any](n *qnode[V], dims int) []geom.Box {
	boxes := make([]geom.Box, len(n.slots))
	for i := range boxes {
		c := geom.ChildCenter(n.center, n.radius, i, dims)
		boxes[i] = geom.HypercubeBox(c, n.radius/2)
	}
	return boxes
}

// nextOccupied returns the smallest slot index >= pos that is not empty,
// or len(n.slots) if none remain. The `-hc`/`-hc2` variants use the
// presence bitmask instead of scanning every slot kind.
func (n *qnode[V]) nextOccupied(pos int) int {
	if n.presence != nil {
		for i := pos; i < len(n.slots); i++ {
			if n.presence.get(i) {
				return i
			}
		}
		return len(n.slots)
	}
	for i := pos; i < len(n.slots); i++ {
		if n.slots[i].kind != slotEmpty {
			return i
		}
	}
	return len(n.slots)
}

func allCoincident[V any](entries []qentry[V], p geom.Point) bool {
	for _, e := range entries {
		if !e.point.Equal(p) {
			return false
		}
	}
	return true
}

// canSubdivide reports whether a child of radius parentRadius/2 is still a
// usable, non-degenerate hypercube (spec.md's failure model: a subnode
// radius collapsing toward machine epsilon is a sign two near-coincident
// but not-quite-equal points can no longer be separated by splitting).
func canSubdivide(parentRadius float64) bool {
	next := parentRadius / 2
	return next > 0
}
