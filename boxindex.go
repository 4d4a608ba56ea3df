package spatialindex

import (
	"github.com/TomTonic/spatialindex/geom"
	"github.com/TomTonic/spatialindex/knn"
	"github.com/TomTonic/spatialindex/rtree"
)

// BoxIndex is the facade over the R*-tree engine's two factory variants
// (spec.md §4.2, §4.4): incremental insertion ("rstar-tree") and one-shot
// STR bulk loading ("str-packed-rstar-tree"). Both support every operation
// below afterward — bulk loading only changes how the tree is built.
type BoxIndex[V any] interface {
	Insert(b geom.Box, value V) error
	Remove(b geom.Box, match func(V) bool) (V, bool)
	Get(b geom.Box) []V
	Size() int
	Stats() Stats
	QueryWindow(query geom.Box) []Result[V]
	NearestNeighbors(center geom.Point, k int, dist geom.BoxDistance) []Result[V]
	FarthestNeighbors(center geom.Point, k int, dist geom.BoxDistance) []Result[V]
	// QueryRangeKNN combines a window predicate with best-first ranking
	// (spec.md §4.2.5): only entries intersecting window are considered,
	// yielded in non-decreasing distance from center.
	QueryRangeKNN(center geom.Point, window geom.Box, k int, dist geom.BoxDistance) []Result[V]
}

func drainBoxIterator[N any, V any](it *knn.Iterator[N, geom.Box, V]) []Result[V] {
	var out []Result[V]
	for it.HasNext() {
		e, d, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, Result[V]{Box: e.Key, Value: e.Value, Dist: d})
	}
	return out
}

// rstarIndex adapts rtree.Tree to BoxIndex.
type rstarIndex[V any] struct {
	t *rtree.Tree[V]
}

func rtreeConfigFrom(cfg Config) rtree.Config {
	rcfg := rtree.DefaultConfig(cfg.Dims)
	if cfg.MaxNodeCapacity > 0 {
		rcfg.NodeMaxDir = cfg.MaxNodeCapacity
		rcfg.NodeMaxData = cfg.MaxNodeCapacity
	}
	if cfg.ReinsertFraction > 0 {
		rcfg.ReinsertFraction = cfg.ReinsertFraction
	}
	return rcfg
}

func newRStarIndex[V any](cfg Config) (*rstarIndex[V], error) {
	t, err := rtree.New[V](rtreeConfigFrom(cfg))
	if err != nil {
		return nil, err
	}
	return &rstarIndex[V]{t: t}, nil
}

// newSTRPackedIndex bulk-loads an R*-tree from boxes/values via Sort-Tile-
// Recursive packing (spec.md §4.4); the resulting Tree supports every
// operation an incrementally-built one does.
func newSTRPackedIndex[V any](cfg Config, boxes []geom.Box, values []V) (*rstarIndex[V], error) {
	t, err := rtree.LoadSTR[V](rtreeConfigFrom(cfg), boxes, values)
	if err != nil {
		return nil, err
	}
	return &rstarIndex[V]{t: t}, nil
}

func (r *rstarIndex[V]) Insert(b geom.Box, value V) error { return r.t.Insert(b, value) }

func (r *rstarIndex[V]) Remove(b geom.Box, match func(V) bool) (V, bool) {
	return r.t.Remove(b, match)
}

func (r *rstarIndex[V]) Get(b geom.Box) []V {
	var out []V
	it := r.t.QueryExactBox(b)
	for it.HasNext() {
		_, v, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out
}

func (r *rstarIndex[V]) Size() int { return r.t.Size() }

func (r *rstarIndex[V]) Stats() Stats {
	s := r.t.Stats()
	return Stats{
		Size: s.Size, NNodes: s.NNodes, Depth: s.Depth,
		SplitCount: s.SplitCount, ReinsertCount: s.ReinsertCount, DistanceCalls: s.DistanceCalls,
	}
}

func (r *rstarIndex[V]) QueryWindow(query geom.Box) []Result[V] {
	var out []Result[V]
	it := r.t.QueryIntersect(query)
	for it.HasNext() {
		b, v, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, Result[V]{Box: b, Value: v})
	}
	return out
}

func (r *rstarIndex[V]) NearestNeighbors(center geom.Point, k int, dist geom.BoxDistance) []Result[V] {
	return drainBoxIterator(r.t.NearestNeighbors(center, k, dist, nil))
}

func (r *rstarIndex[V]) FarthestNeighbors(center geom.Point, k int, dist geom.BoxDistance) []Result[V] {
	return drainBoxIterator(r.t.FarthestNeighbors(center, k, dist, nil))
}

// CheckInvariants delegates to the underlying R*-tree's debug checker
// (spec.md §4, "Debug invariant assertions").
func (r *rstarIndex[V]) CheckInvariants() error { return r.t.CheckInvariants() }

func (r *rstarIndex[V]) QueryRangeKNN(center geom.Point, window geom.Box, k int, dist geom.BoxDistance) []Result[V] {
	var out []Result[V]
	it := r.t.QueryRangeKNN(center, window, k, dist)
	for it.HasNext() {
		b, v, d, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, Result[V]{Box: b, Value: v, Dist: d})
	}
	return out
}
