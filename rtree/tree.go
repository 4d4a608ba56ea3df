package rtree

import (
	"github.com/TomTonic/spatialindex/errs"
	"github.com/TomTonic/spatialindex/geom"
)

// Config tunes the R*-tree's node capacities and the forced-reinsertion
// fraction. Defaults match spec.md §3: NODE_MAX_* = 10, NODE_MIN_* = 2.
type Config struct {
	Dims             int
	NodeMaxDir       int
	NodeMaxData      int
	NodeMinDir       int
	NodeMinData      int
	ReinsertFraction float64 // p, Open Question 3: tunable, default 0.30
}

// DefaultConfig returns the spec's default node capacities for the given
// dimensionality.
func DefaultConfig(dims int) Config {
	return Config{
		Dims:             dims,
		NodeMaxDir:       10,
		NodeMaxData:      10,
		NodeMinDir:       2,
		NodeMinData:      2,
		ReinsertFraction: 0.30,
	}
}

func (c Config) validate() error {
	if c.Dims < 1 || c.NodeMaxDir < 2 || c.NodeMaxData < 2 ||
		c.NodeMinDir < 1 || c.NodeMinData < 1 ||
		c.NodeMinDir > c.NodeMaxDir/2 || c.NodeMinData > c.NodeMaxData/2 ||
		c.ReinsertFraction <= 0 || c.ReinsertFraction >= 1 {
		return errs.ErrConfiguration
	}
	return nil
}

// Stats reports bulk tree structure, grounded on spec.md §6's Stats
// surface + SPEC_FULL.md's distance-invocation counter supplement.
type Stats struct {
	Size              int
	Depth             int
	NNodes            int
	SplitCount        int
	ReinsertCount     int
	DistanceCalls     int
}

// Tree is an R*-tree over Dims-dimensional boxes, mapping each to a value
// (multimap semantics: identical keys with different values coexist).
type Tree[V any] struct {
	arena  *NodeArena[V]
	root   nodeIndex
	cfg    Config
	size   int
	depth  int // leaf level == 0; root is at level depth-1
	nNodes int
	stats  Stats
}

// New constructs an empty R*-tree.
func New[V any](cfg Config) (*Tree[V], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	arena := newArena[V]()
	root := arena.alloc(true)
	t := &Tree[V]{arena: arena, root: root, cfg: cfg, depth: 1, nNodes: 1}
	return t, nil
}

// Dims reports the configured dimensionality.
func (t *Tree[V]) Dims() int { return t.cfg.Dims }

// Size reports the number of stored entries.
func (t *Tree[V]) Size() int { return t.size }

// Depth reports the tree's depth (leaf level 0, root at depth-1).
func (t *Tree[V]) Depth() int { return t.depth }

// Stats returns a snapshot of bulk tree statistics.
func (t *Tree[V]) Stats() Stats {
	s := t.stats
	s.Size = t.size
	s.Depth = t.depth
	s.NNodes = t.nNodes
	return s
}

func (t *Tree[V]) checkDims(b geom.Box) error {
	if b.Dim() != t.cfg.Dims {
		return errs.ErrDimensionMismatch
	}
	return nil
}

// recomputeBox sets n's box to the union of its children's/entries' boxes.
func (t *Tree[V]) recomputeBox(idx nodeIndex) {
	n := t.arena.get(idx)
	var box geom.Box
	first := true
	if n.isLeaf {
		for _, e := range n.entries {
			if first {
				box = e.box.Clone()
				first = false
			} else {
				box = box.Union(e.box)
			}
		}
	} else {
		for _, c := range n.children {
			cb := t.arena.get(c).box
			if first {
				box = cb.Clone()
				first = false
			} else {
				box = box.Union(cb)
			}
		}
	}
	n.box = box
}

// propagateBoxUpward recomputes the MBB of idx and every ancestor.
func (t *Tree[V]) propagateBoxUpward(idx nodeIndex) {
	for idx != nilIndex {
		t.recomputeBox(idx)
		idx = t.arena.get(idx).parent
	}
}
