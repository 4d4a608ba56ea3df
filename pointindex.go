package spatialindex

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/TomTonic/spatialindex/critbit"
	"github.com/TomTonic/spatialindex/errs"
	"github.com/TomTonic/spatialindex/geom"
	"github.com/TomTonic/spatialindex/keyenc"
	"github.com/TomTonic/spatialindex/knn"
	"github.com/TomTonic/spatialindex/quadtree"
)

// PointIndex is the multimap-semantics facade over every point-keyed
// engine (quadtree's three variants, crit-bit's kd-tree variant): inserting
// an already-present point adds a second entry alongside it rather than
// overwriting (spec.md §3).
type PointIndex[V any] interface {
	Insert(p geom.Point, value V) error
	Get(p geom.Point) []V
	Remove(p geom.Point, match func(V) bool) (V, bool)
	Size() int
	Stats() Stats
	QueryWindow(query geom.Box) []Result[V]
	NearestNeighbors(center geom.Point, k int, dist geom.PointDistance) []Result[V]
	FarthestNeighbors(center geom.Point, k int, dist geom.PointDistance) []Result[V]
}

// PointMap is the single-value-overwrite facade the crit-bit ph-tree
// variant exposes (spec.md §3's "rare single-map variant"): re-inserting an
// existing point replaces its value instead of coexisting with it.
type PointMap[V any] interface {
	Put(p geom.Point, value V) (old V, had bool, err error)
	Get(p geom.Point) (V, bool)
	Remove(p geom.Point) (V, bool)
	Size() int
}

// drainPointIterator flattens a point-keyed best-first iterator into a
// plain slice; N (the engine's internal node type) is inferred and need
// not be nameable here.
func drainPointIterator[N any, V any](it *knn.Iterator[N, geom.Point, V]) []Result[V] {
	var out []Result[V]
	for it.HasNext() {
		e, d, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, Result[V]{Point: e.Key, Value: e.Value, Dist: d})
	}
	return out
}

// quadtreeIndex adapts quadtree.Tree to PointIndex.
type quadtreeIndex[V any] struct {
	t *quadtree.Tree[V]
}

func newQuadtreeIndex[V any](cfg Config, variant quadtree.Variant) (*quadtreeIndex[V], error) {
	qcfg := quadtree.DefaultConfig(cfg.Dims)
	qcfg.Variant = variant
	if cfg.MaxNodeCapacity > 0 {
		qcfg.MaxNodeCapacity = cfg.MaxNodeCapacity
	}
	if cfg.Center != nil {
		qcfg.Center = cfg.Center
		qcfg.Radius = cfg.Radius
		qcfg.Align = cfg.Align
	}
	t, err := quadtree.New[V](qcfg)
	if err != nil {
		return nil, err
	}
	return &quadtreeIndex[V]{t: t}, nil
}

func (q *quadtreeIndex[V]) Insert(p geom.Point, value V) error { return q.t.Insert(p, value) }
func (q *quadtreeIndex[V]) Get(p geom.Point) []V               { return q.t.Get(p) }
func (q *quadtreeIndex[V]) Remove(p geom.Point, match func(V) bool) (V, bool) {
	return q.t.Remove(p, match)
}
func (q *quadtreeIndex[V]) Size() int { return q.t.Size() }
func (q *quadtreeIndex[V]) Stats() Stats {
	s := q.t.Stats()
	return Stats{Size: s.Size, NNodes: s.NNodes, Depth: s.MaxDepth, DistanceCalls: s.DistanceCalls}
}

func (q *quadtreeIndex[V]) QueryWindow(query geom.Box) []Result[V] {
	var out []Result[V]
	it := q.t.QueryIntersect(query)
	for it.HasNext() {
		p, v, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, Result[V]{Point: p, Value: v})
	}
	return out
}

func (q *quadtreeIndex[V]) NearestNeighbors(center geom.Point, k int, dist geom.PointDistance) []Result[V] {
	return drainPointIterator(q.t.NearestNeighbors(center, k, dist, nil))
}

func (q *quadtreeIndex[V]) FarthestNeighbors(center geom.Point, k int, dist geom.PointDistance) []Result[V] {
	return drainPointIterator(q.t.FarthestNeighbors(center, k, dist, nil))
}

// CheckInvariants delegates to the underlying quadtree's debug checker
// (spec.md §4, "Debug invariant assertions").
func (q *quadtreeIndex[V]) CheckInvariants() error { return q.t.CheckInvariants() }

// encodePointExact turns p into a byte-exact, comparable string key:
// geom.Point is a slice and so cannot be compared with ==, but the kd-tree
// adapter needs to tell distinct points that share a quantized bucket
// apart, so it keys on this exact encoding instead of the point itself.
func encodePointExact(p geom.Point) string {
	b := make([]byte, 8*len(p))
	for i, c := range p {
		binary.BigEndian.PutUint64(b[i*8:i*8+8], math.Float64bits(c))
	}
	return string(b)
}

func decodePointExact(s string, dims int) geom.Point {
	p := make(geom.Point, dims)
	for i := 0; i < dims; i++ {
		bits := binary.BigEndian.Uint64([]byte(s[i*8 : i*8+8]))
		p[i] = math.Float64frombits(bits)
	}
	return p
}

// pointValue is the bucket element stored at each quantized trie leaf: the
// exact-point encoding (to re-check quantization collisions and recover
// the original coordinates a lossy bucket can't by itself) paired with the
// caller's value. Several pointValues can share one leaf, both because
// distinct exact points can quantize to the same bucket and because the
// multimap semantics (spec.md §3) let the same point be inserted more than
// once.
type pointValue[V comparable] struct {
	coords string
	value  V
}

// kdMultimapIndex adapts a crit-bit k-D interleaved trie to PointIndex:
// spec.md §3's "kd-tree" factory variant. Points are bucketed by a lossy
// bitsPerDim-per-axis quantization (spec.md §4.1.3); Get/Remove/QueryWindow
// all resolve through the trie itself (Get/Put/Remove for exact lookups,
// QueryKD's dimension-aware pruning for box queries, spec.md §4.1.4 ¶2),
// with an exact-coordinate recheck against each surviving bucket to undo
// the quantization's lossiness — the same "quantize to prune, then verify
// exactly" shape quadtree's own bucketing leaves use.
type kdMultimapIndex[V comparable] struct {
	dims       int
	bitsPerDim int
	kd         *critbit.KDTree[[]pointValue[V]]
	size       int
}

func newKDMultimapIndex[V comparable](cfg Config) (*kdMultimapIndex[V], error) {
	bitsPerDim := cfg.BitsPerDim
	if bitsPerDim == 0 {
		bitsPerDim = 32
	}
	kd, err := critbit.NewKD[[]pointValue[V]](cfg.Dims, bitsPerDim)
	if err != nil {
		return nil, err
	}
	return &kdMultimapIndex[V]{dims: cfg.Dims, bitsPerDim: bitsPerDim, kd: kd}, nil
}

// quantize reduces p to its per-dimension bitsPerDim-bit unsigned codes
// (the top bits of the monotone total-order float encoding, spec.md
// §4.1.3), the coordinate form critbit.KDTree indexes on.
func (k *kdMultimapIndex[V]) quantize(p geom.Point) []uint64 {
	coords := make([]uint64, k.dims)
	for i, c := range p {
		coords[i] = keyenc.EncodeFloat64(c) >> uint(64-k.bitsPerDim)
	}
	return coords
}

func (k *kdMultimapIndex[V]) Insert(p geom.Point, value V) error {
	if p.Dim() != k.dims {
		return errs.ErrDimensionMismatch
	}
	q := k.quantize(p)
	pv := pointValue[V]{coords: encodePointExact(p), value: value}
	bucket, had, err := k.kd.Get(q)
	if err != nil {
		return err
	}
	if had {
		bucket = append(bucket, pv)
	} else {
		bucket = []pointValue[V]{pv}
	}
	if _, _, err := k.kd.Put(q, bucket); err != nil {
		return err
	}
	k.size++
	return nil
}

func (k *kdMultimapIndex[V]) Get(p geom.Point) []V {
	if p.Dim() != k.dims {
		return nil
	}
	bucket, ok, err := k.kd.Get(k.quantize(p))
	if err != nil || !ok {
		return nil
	}
	exact := encodePointExact(p)
	var out []V
	for _, pv := range bucket {
		if pv.coords == exact {
			out = append(out, pv.value)
		}
	}
	return out
}

func (k *kdMultimapIndex[V]) Remove(p geom.Point, match func(V) bool) (V, bool) {
	var zero V
	if p.Dim() != k.dims {
		return zero, false
	}
	q := k.quantize(p)
	bucket, ok, err := k.kd.Get(q)
	if err != nil || !ok {
		return zero, false
	}
	exact := encodePointExact(p)
	for i, pv := range bucket {
		if pv.coords != exact || !match(pv.value) {
			continue
		}
		bucket[i] = bucket[len(bucket)-1]
		bucket = bucket[:len(bucket)-1]
		if len(bucket) == 0 {
			k.kd.Remove(q)
		} else {
			k.kd.Put(q, bucket)
		}
		k.size--
		return pv.value, true
	}
	return zero, false
}

func (k *kdMultimapIndex[V]) Size() int    { return k.size }
func (k *kdMultimapIndex[V]) Stats() Stats { return Stats{Size: k.size} }

// QueryWindow quantizes query's corners into a coordinate range and drives
// critbit.KDTree.QueryKD to prune whole subtrees that cannot overlap it,
// then exactly re-checks each surviving bucket's points against query
// (quantization only ever widens the candidate set, never narrows it, so
// every true match survives the trie pass and the exact check discards
// false positives the lossy bucketing let through).
func (k *kdMultimapIndex[V]) QueryWindow(query geom.Box) []Result[V] {
	minQ := k.quantize(query.Min)
	maxQ := k.quantize(query.Max)
	it, err := k.kd.QueryKD(minQ, maxQ)
	if err != nil {
		return nil
	}
	var out []Result[V]
	for it.HasNext() {
		_, bucket, ok := it.Next()
		if !ok {
			break
		}
		for _, pv := range bucket {
			p := decodePointExact(pv.coords, k.dims)
			if query.ContainsPoint(p) {
				out = append(out, Result[V]{Point: p, Value: pv.value})
			}
		}
	}
	return out
}

// NearestNeighbors runs a naive linear scan over every stored point: the
// crit-bit kd-tree variant has no node-bounding-box structure to drive a
// best-first search over (its interleaved key gives range-query pruning
// only), so spec.md's shared best-first k-NN protocol does not apply here
// — the fallback is the same "naive linear scan" spec.md §8 uses as the
// differential-testing reference for the real trees.
func (k *kdMultimapIndex[V]) NearestNeighbors(center geom.Point, n int, dist geom.PointDistance) []Result[V] {
	return linearScanKNN(k.points(), center, n, dist, false)
}

func (k *kdMultimapIndex[V]) FarthestNeighbors(center geom.Point, n int, dist geom.PointDistance) []Result[V] {
	return linearScanKNN(k.points(), center, n, dist, true)
}

// CheckInvariants validates the underlying trie and cross-checks that its
// stored buckets (the only read path — see the type doc comment) sum to
// the tracked entry count.
func (k *kdMultimapIndex[V]) CheckInvariants() error {
	if err := k.kd.CheckInvariants(); err != nil {
		return err
	}
	total := 0
	it := k.kd.Iterator()
	for it.HasNext() {
		_, bucket, ok := it.Next()
		if !ok {
			break
		}
		total += len(bucket)
	}
	if total != k.size {
		return errs.ErrInvariantViolation
	}
	return nil
}

func (k *kdMultimapIndex[V]) points() []Result[V] {
	out := make([]Result[V], 0, k.size)
	it := k.kd.Iterator()
	for it.HasNext() {
		_, bucket, ok := it.Next()
		if !ok {
			break
		}
		for _, pv := range bucket {
			out = append(out, Result[V]{Point: decodePointExact(pv.coords, k.dims), Value: pv.value})
		}
	}
	return out
}

// linearScanKNN sorts pts by distance from center (ascending for
// nearest-first, descending for farthest-first) and returns the first n.
func linearScanKNN[V any](pts []Result[V], center geom.Point, n int, dist geom.PointDistance, farthest bool) []Result[V] {
	if dist == nil {
		dist = geom.L2
	}
	for i := range pts {
		pts[i].Dist = dist(center, pts[i].Point)
	}
	sort.Slice(pts, func(i, j int) bool {
		if farthest {
			return pts[i].Dist > pts[j].Dist
		}
		return pts[i].Dist < pts[j].Dist
	})
	if n >= 0 && n < len(pts) {
		pts = pts[:n]
	}
	return pts
}

// phTreeIndex adapts a crit-bit single-value k-D trie to PointMap: spec.md
// §3's "ph-tree" factory variant (single-value overwrite semantics).
type phTreeIndex[V any] struct {
	kd         *critbit.KDTree[V]
	bitsPerDim int
}

func newPHTreeIndex[V any](cfg Config) (*phTreeIndex[V], error) {
	bitsPerDim := cfg.BitsPerDim
	if bitsPerDim == 0 {
		bitsPerDim = 32
	}
	kd, err := critbit.NewKD[V](cfg.Dims, bitsPerDim)
	if err != nil {
		return nil, err
	}
	return &phTreeIndex[V]{kd: kd, bitsPerDim: bitsPerDim}, nil
}

func (p *phTreeIndex[V]) coords(pt geom.Point) []uint64 {
	coords := make([]uint64, len(pt))
	for i, c := range pt {
		coords[i] = keyenc.EncodeFloat64(c) >> uint(64-p.bitsPerDim)
	}
	return coords
}

func (p *phTreeIndex[V]) Put(pt geom.Point, value V) (V, bool, error) {
	return p.kd.Put(p.coords(pt), value)
}

func (p *phTreeIndex[V]) Get(pt geom.Point) (V, bool) {
	v, ok, err := p.kd.Get(p.coords(pt))
	if err != nil {
		var zero V
		return zero, false
	}
	return v, ok
}

func (p *phTreeIndex[V]) Remove(pt geom.Point) (V, bool) {
	v, ok, err := p.kd.Remove(p.coords(pt))
	if err != nil {
		var zero V
		return zero, false
	}
	return v, ok
}

func (p *phTreeIndex[V]) Size() int { return p.kd.Size() }

// CheckInvariants delegates to the underlying k-D trie.
func (p *phTreeIndex[V]) CheckInvariants() error { return p.kd.CheckInvariants() }
