// Package rtree implements the R*-tree engine of spec.md §4.2: a balanced
// hierarchy of bounding boxes with forced-reinsertion overflow handling,
// margin-minimizing splits, and an optional STR (§4.4) bulk loader. Nodes
// live in a NodeArena addressed by index rather than by owning pointer
// (spec.md §9's explicit re-architecture of the source's parent
// back-pointer reassignment into "a pure field write").
package rtree

import "github.com/TomTonic/spatialindex/geom"

// nodeIndex addresses a node inside a NodeArena. nilIndex marks "no node".
type nodeIndex int32

const nilIndex nodeIndex = -1

// entry is a leaf's (key, value) pair; key is always stored as its Box
// (a Point key is represented as a degenerate Box with Min==Max).
type entry[V any] struct {
	box   geom.Box
	value V
}

// rnode is either a directory node (children populated) or a leaf node
// (entries populated) — never both, tagged by isLeaf. Modeled as a single
// struct rather than an interface hierarchy: spec.md's "Directory
// node"/"Leaf node" differ only in payload type, and arena slots need a
// uniform element type.
type rnode[V any] struct {
	isLeaf   bool
	box      geom.Box
	parent   nodeIndex
	children []nodeIndex
	entries  []entry[V]
}

// NodeArena owns every node of a tree by value in a single slice; nodes
// reference each other by nodeIndex, so moving a node between parents is a
// plain field write and cycles are structurally impossible (spec.md §9).
type NodeArena[V any] struct {
	nodes []rnode[V]
	free  []nodeIndex
}

func newArena[V any]() *NodeArena[V] {
	return &NodeArena[V]{}
}

func (a *NodeArena[V]) alloc(isLeaf bool) nodeIndex {
	n := rnode[V]{isLeaf: isLeaf, parent: nilIndex}
	if len(a.free) > 0 {
		idx := a.free[len(a.free)-1]
		a.free = a.free[:len(a.free)-1]
		a.nodes[idx] = n
		return idx
	}
	a.nodes = append(a.nodes, n)
	return nodeIndex(len(a.nodes) - 1)
}

func (a *NodeArena[V]) free_(idx nodeIndex) {
	a.free = append(a.free, idx)
}

func (a *NodeArena[V]) get(idx nodeIndex) *rnode[V] {
	return &a.nodes[idx]
}

// reindexParent sets child's parent to p. A pure field write, per spec.md
// §9 — no pointer graph to repair.
func (a *NodeArena[V]) reindexParent(child, p nodeIndex) {
	a.nodes[child].parent = p
}
