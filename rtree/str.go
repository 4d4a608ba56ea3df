package rtree

import (
	"math"
	"sort"

	"github.com/TomTonic/spatialindex/errs"
	"github.com/TomTonic/spatialindex/geom"
)

// LoadSTR bulk-loads a new R*-tree from a fixed set of (box, value) pairs
// using Sort-Tile-Recursive packing (spec.md §4.4): entries are recursively
// sorted and sliced into slabs, cycling dimensions, until each slab holds
// at most NodeMaxData entries; slabs become leaves, and leaves are grouped
// bottom-up into directory nodes of at most NodeMaxDir children until a
// single root remains. Unlike incremental Insert, this never splits or
// reinserts — the packing itself keeps node occupancy bounded.
func LoadSTR[V any](cfg Config, boxes []geom.Box, values []V) (*Tree[V], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if len(boxes) != len(values) {
		return nil, errs.ErrDimensionMismatch
	}
	arena := newArena[V]()
	t := &Tree[V]{arena: arena, cfg: cfg, size: len(boxes)}

	if len(boxes) == 0 {
		t.root = arena.alloc(true)
		t.depth = 1
		t.nNodes = 1
		return t, nil
	}
	for _, b := range boxes {
		if b.Dim() != cfg.Dims {
			return nil, errs.ErrDimensionMismatch
		}
	}

	idx := make([]int, len(boxes))
	for i := range idx {
		idx[i] = i
	}
	leafGroups := strPartition(idx, boxes, 0, cfg.Dims, cfg.NodeMaxData)

	level := make([]nodeIndex, len(leafGroups))
	for i, group := range leafGroups {
		n := arena.alloc(true)
		entries := make([]entry[V], len(group))
		for j, gi := range group {
			entries[j] = entry[V]{box: boxes[gi].Clone(), value: values[gi]}
		}
		arena.get(n).entries = entries
		t.recomputeBox(n)
		level[i] = n
	}
	t.nNodes = len(level)
	t.depth = 1

	for len(level) > 1 {
		groups := chunkIndices(len(level), cfg.NodeMaxDir)
		next := make([]nodeIndex, len(groups))
		for i, g := range groups {
			n := arena.alloc(false)
			children := make([]nodeIndex, len(g))
			for j, gi := range g {
				children[j] = level[gi]
				arena.reindexParent(level[gi], n)
			}
			arena.get(n).children = children
			t.recomputeBox(n)
			next[i] = n
		}
		t.nNodes += len(next)
		t.depth++
		level = next
	}
	t.root = level[0]
	return t, nil
}

// strPartition recursively sorts idx by the center of dim, slices it into
// ⌈leafCount^(1/(dims-dim))⌉ slabs, and recurses on the next dimension
// until dim reaches the last one, where it chunks directly into
// leaf-sized groups (spec.md §4.4 steps 1-3, generalized from 2 to dims
// dimensions by cycling through all of them instead of just two).
func strPartition(idx []int, boxes []geom.Box, dim, dims, leafCap int) [][]int {
	sortByCenterDim(idx, boxes, dim%dims)
	if dim == dims-1 {
		return chunkSlice(idx, leafCap)
	}
	leafCount := ceilDiv(len(idx), leafCap)
	remaining := dims - dim
	slabs := ceilRoot(leafCount, remaining)
	slabSize := ceilDiv(len(idx), slabs)
	parts := chunkSlice(idx, slabSize)
	var out [][]int
	for _, part := range parts {
		out = append(out, strPartition(part, boxes, dim+1, dims, leafCap)...)
	}
	return out
}

func sortByCenterDim(idx []int, boxes []geom.Box, dim int) {
	sort.Slice(idx, func(i, j int) bool {
		bi, bj := boxes[idx[i]], boxes[idx[j]]
		ci := (bi.Min[dim] + bi.Max[dim]) / 2
		cj := (bj.Min[dim] + bj.Max[dim]) / 2
		return ci < cj
	})
}

func chunkSlice(idx []int, size int) [][]int {
	if size < 1 {
		size = 1
	}
	var out [][]int
	for len(idx) > 0 {
		if size >= len(idx) {
			out = append(out, idx)
			break
		}
		out = append(out, idx[:size])
		idx = idx[size:]
	}
	return out
}

func chunkIndices(n, size int) [][]int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return chunkSlice(idx, size)
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}

// ceilRoot returns ⌈n^(1/k)⌉ for n,k >= 1.
func ceilRoot(n, k int) int {
	if k <= 1 {
		return n
	}
	r := int(math.Ceil(math.Pow(float64(n), 1/float64(k))))
	if r < 1 {
		r = 1
	}
	return r
}
