// Package spatialindex is the top-level facade over the tree engines in
// this module (spec.md §6): a single Config/Stats shape, a PointIndex/
// BoxIndex interface pair, and a Factory that names a concrete engine by
// string (matching the teacher's New[T]()/NewArrayBased[T]() pair in
// multimap.go, generalized to several concrete engines instead of one).
package spatialindex

import "github.com/TomTonic/spatialindex/geom"

// Config configures any engine constructed through Factory. Only the
// fields relevant to the chosen engine are consulted; the rest are
// ignored, matching the teacher's preference for one plain settings
// struct over per-engine option types.
type Config struct {
	Dims            int  // required by every engine
	MaxNodeCapacity int  // rtree/quadtree node fan-out; 0 selects each engine's default
	BitsPerDim      int  // critbit kd-tree/ph-tree per-dimension quantization width; 0 selects 32
	Center          geom.Point // quadtree root hint; nil picks from the first insert
	Radius          float64    // quadtree root hint, required alongside Center
	Align           bool       // quadtree: snap Center/Radius to powers of two
	ReinsertFraction float64   // rtree forced-reinsertion fraction p; 0 selects the spec default (0.30)
}

// Stats reports bulk structure for any engine (spec.md §6), with the
// SPEC_FULL.md distance-invocation counter supplement. Fields that don't
// apply to a given engine stay zero.
type Stats struct {
	Size          int
	NNodes        int
	Depth         int
	SplitCount    int
	ReinsertCount int
	DistanceCalls int
}

// Result is one entry yielded by a window or k-NN query: Point is set by
// point-keyed engines, Box by box-keyed ones, and Dist is populated (and
// meaningful) only for k-NN/farthest-first results.
type Result[V any] struct {
	Point geom.Point
	Box   geom.Box
	Value V
	Dist  float64
}
