package spatialindex

import (
	"fmt"

	"github.com/TomTonic/spatialindex/errs"
	"github.com/TomTonic/spatialindex/geom"
	"github.com/TomTonic/spatialindex/quadtree"
)

// Factory constructs one of the eight named engines (spec.md §6, resolved
// routing in SPEC_FULL.md) from a single Config. Since the concrete return
// type differs by name (PointIndex, PointMap, or BoxIndex), Factory returns
// it as any; callers type-assert to the interface the chosen name
// implements — mirroring the teacher's own New[T]()/NewArrayBased[T]() pair
// in multimap.go, generalized from one implementation to several named
// ones.
//
// Names:
//
//	"array"                  PointIndex[V] (point-keyed naive reference)
//	"array-box"              BoxIndex[V]   (box-keyed naive reference)
//	"kd-tree"                PointIndex[V] (crit-bit, multimap semantics)
//	"ph-tree"                PointMap[V]   (crit-bit, single-value semantics)
//	"quadtree"               PointIndex[V] (PR-Quadtree, plain)
//	"quadtree-hc"            PointIndex[V] (PR-Quadtree, presence bitmask)
//	"quadtree-hc2"           PointIndex[V] (PR-Quadtree, + cached child boxes)
//	"rstar-tree"             BoxIndex[V]   (R*-tree, incremental)
//
// "str-packed-rstar-tree" is constructed via FactorySTR instead, since it
// requires the full set of (box, value) pairs up front.
func Factory[V comparable](name string, cfg Config) (any, error) {
	switch name {
	case "array":
		return newArrayPointIndex[V](cfg.Dims), nil
	case "array-box":
		return newArrayBoxIndex[V](cfg.Dims), nil
	case "kd-tree":
		return newKDMultimapIndex[V](cfg)
	case "ph-tree":
		return newPHTreeIndex[V](cfg)
	case "quadtree":
		return newQuadtreeIndex[V](cfg, quadtree.VariantPlain)
	case "quadtree-hc":
		return newQuadtreeIndex[V](cfg, quadtree.VariantHC)
	case "quadtree-hc2":
		return newQuadtreeIndex[V](cfg, quadtree.VariantHC2)
	case "rstar-tree":
		return newRStarIndex[V](cfg)
	default:
		return nil, fmt.Errorf("spatialindex: unknown engine %q: %w", name, errs.ErrConfiguration)
	}
}

// FactorySTR bulk-loads the "str-packed-rstar-tree" engine (spec.md §4.4)
// from a fixed set of (box, value) pairs via Sort-Tile-Recursive packing.
// The result supports every BoxIndex operation afterward, same as an
// incrementally-built rstar-tree.
func FactorySTR[V any](cfg Config, boxes []geom.Box, values []V) (BoxIndex[V], error) {
	return newSTRPackedIndex(cfg, boxes, values)
}
