package spatialindex

import (
	"github.com/dolthub/maphash"

	"github.com/TomTonic/spatialindex/errs"
	"github.com/TomTonic/spatialindex/geom"
)

// arrayPointIndex is the naive linear-scan PointIndex (spec.md §6's
// "array" factory variant): a flat slice of (point, value) pairs, grounded
// directly on the teacher's arrayBasedMultiMap (array_based.go) but without
// its mutex (spec.md's Non-goals exclude concurrent multi-writer mutation).
// It exists as the differential-testing reference every real tree is
// checked against (spec.md §8: "equals the set computed by the naive
// linear scan").
type arrayPointIndex[V any] struct {
	dims  int
	items []pointItem[V]
}

type pointItem[V any] struct {
	point geom.Point
	value V
}

func newArrayPointIndex[V any](dims int) *arrayPointIndex[V] {
	return &arrayPointIndex[V]{dims: dims}
}

func (a *arrayPointIndex[V]) Insert(p geom.Point, value V) error {
	if p.Dim() != a.dims {
		return errs.ErrDimensionMismatch
	}
	a.items = append(a.items, pointItem[V]{point: p.Clone(), value: value})
	return nil
}

func (a *arrayPointIndex[V]) Get(p geom.Point) []V {
	var out []V
	for _, it := range a.items {
		if it.point.Equal(p) {
			out = append(out, it.value)
		}
	}
	return out
}

func (a *arrayPointIndex[V]) Remove(p geom.Point, match func(V) bool) (V, bool) {
	var zero V
	for i, it := range a.items {
		if it.point.Equal(p) && match(it.value) {
			a.items[i] = a.items[len(a.items)-1]
			a.items = a.items[:len(a.items)-1]
			return it.value, true
		}
	}
	return zero, false
}

func (a *arrayPointIndex[V]) Size() int    { return len(a.items) }
func (a *arrayPointIndex[V]) Stats() Stats { return Stats{Size: len(a.items)} }

func (a *arrayPointIndex[V]) QueryWindow(query geom.Box) []Result[V] {
	var out []Result[V]
	for _, it := range a.items {
		if query.ContainsPoint(it.point) {
			out = append(out, Result[V]{Point: it.point, Value: it.value})
		}
	}
	return out
}

func (a *arrayPointIndex[V]) NearestNeighbors(center geom.Point, k int, dist geom.PointDistance) []Result[V] {
	return linearScanKNN(a.points(), center, k, dist, false)
}

func (a *arrayPointIndex[V]) FarthestNeighbors(center geom.Point, k int, dist geom.PointDistance) []Result[V] {
	return linearScanKNN(a.points(), center, k, dist, true)
}

// CheckInvariants always succeeds: a flat slice has no structural invariant
// beyond what Go's slice semantics already guarantee. Present only so
// differential tests can call CheckInvariants uniformly across every
// factory-routed engine.
func (a *arrayPointIndex[V]) CheckInvariants() error { return nil }

func (a *arrayPointIndex[V]) points() []Result[V] {
	out := make([]Result[V], len(a.items))
	for i, it := range a.items {
		out[i] = Result[V]{Point: it.point, Value: it.value}
	}
	return out
}

// arrayBoxIndex is the naive linear-scan BoxIndex counterpart.
type arrayBoxIndex[V any] struct {
	dims  int
	items []boxItem[V]
}

type boxItem[V any] struct {
	box   geom.Box
	value V
}

func newArrayBoxIndex[V any](dims int) *arrayBoxIndex[V] {
	return &arrayBoxIndex[V]{dims: dims}
}

func (a *arrayBoxIndex[V]) Insert(b geom.Box, value V) error {
	if b.Dim() != a.dims {
		return errs.ErrDimensionMismatch
	}
	a.items = append(a.items, boxItem[V]{box: b.Clone(), value: value})
	return nil
}

func (a *arrayBoxIndex[V]) Get(b geom.Box) []V {
	var out []V
	for _, it := range a.items {
		if it.box.Equal(b) {
			out = append(out, it.value)
		}
	}
	return out
}

func (a *arrayBoxIndex[V]) Remove(b geom.Box, match func(V) bool) (V, bool) {
	var zero V
	for i, it := range a.items {
		if it.box.Equal(b) && match(it.value) {
			a.items[i] = a.items[len(a.items)-1]
			a.items = a.items[:len(a.items)-1]
			return it.value, true
		}
	}
	return zero, false
}

func (a *arrayBoxIndex[V]) Size() int    { return len(a.items) }
func (a *arrayBoxIndex[V]) Stats() Stats { return Stats{Size: len(a.items)} }

func (a *arrayBoxIndex[V]) QueryWindow(query geom.Box) []Result[V] {
	var out []Result[V]
	for _, it := range a.items {
		if it.box.Intersects(query) {
			out = append(out, Result[V]{Box: it.box, Value: it.value})
		}
	}
	return out
}

func (a *arrayBoxIndex[V]) NearestNeighbors(center geom.Point, k int, dist geom.BoxDistance) []Result[V] {
	return linearScanBoxKNN(a.boxes(), center, k, dist, false)
}

func (a *arrayBoxIndex[V]) FarthestNeighbors(center geom.Point, k int, dist geom.BoxDistance) []Result[V] {
	return linearScanBoxKNN(a.boxes(), center, k, dist, true)
}

// QueryRangeKNN filters to boxes intersecting window, then ranks the
// survivors by dist from center (spec.md §4.2.5's reference behavior).
func (a *arrayBoxIndex[V]) QueryRangeKNN(center geom.Point, window geom.Box, k int, dist geom.BoxDistance) []Result[V] {
	var within []Result[V]
	for _, it := range a.items {
		if it.box.Intersects(window) {
			within = append(within, Result[V]{Box: it.box, Value: it.value})
		}
	}
	return linearScanBoxKNN(within, center, k, dist, false)
}

// CheckInvariants always succeeds; see arrayPointIndex.CheckInvariants.
func (a *arrayBoxIndex[V]) CheckInvariants() error { return nil }

func (a *arrayBoxIndex[V]) boxes() []Result[V] {
	out := make([]Result[V], len(a.items))
	for i, it := range a.items {
		out[i] = Result[V]{Box: it.box, Value: it.value}
	}
	return out
}

func linearScanBoxKNN[V any](items []Result[V], center geom.Point, k int, dist geom.BoxDistance, farthest bool) []Result[V] {
	if dist == nil {
		dist = geom.EdgeDistance
	}
	for i := range items {
		items[i].Dist = dist(center, items[i].Box)
	}
	sortResultsByDist(items, farthest)
	if k >= 0 && k < len(items) {
		items = items[:k]
	}
	return items
}

func sortResultsByDist[V any](items []Result[V], farthest bool) {
	// Insertion sort: these slices are the naive reference path, already
	// O(n) per query; spec.md places no ordering-performance requirement
	// on it, only correctness against the real trees' output.
	for i := 1; i < len(items); i++ {
		for j := i; j > 0; j-- {
			less := items[j].Dist < items[j-1].Dist
			if farthest {
				less = items[j].Dist > items[j-1].Dist
			}
			if !less {
				break
			}
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}

// seenValues is an O(1)-amortized value-identity set (Add reports whether a
// value is new); grounded on the teacher's transitive use of dolthub/maphash
// through Set3, used here directly instead of via Set3 since these values
// aren't otherwise Set3-backed. No function in this package constructs
// one.
type seenValues[V comparable] struct {
	hasher maphash.Hasher[V]
	seen   map[uint64]struct{}
}

func newSeenValues[V comparable]() *seenValues[V] {
	return &seenValues[V]{hasher: maphash.NewHasher[V](), seen: make(map[uint64]struct{})}
}

// Add reports whether v was newly added (true) or already present (false).
func (s *seenValues[V]) Add(v V) bool {
	h := s.hasher.Hash(v)
	if _, ok := s.seen[h]; ok {
		return false
	}
	s.seen[h] = struct{}{}
	return true
}
