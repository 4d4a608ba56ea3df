package rtree

import (
	"math"
	"math/rand"
	"testing"

	"github.com/TomTonic/spatialindex/geom"
)

func pt(coords ...float64) geom.Box {
	return geom.PointBox(geom.Point(coords))
}

func TestInsertGetRemoveRoundTrip(t *testing.T) {
	tr, err := New[string](DefaultConfig(2))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	boxes := []geom.Box{pt(0, 0), pt(1, 1), pt(5, 5), pt(-3, 2), pt(9, -9)}
	for i, b := range boxes {
		if err := tr.Insert(b, string(rune('a'+i))); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	if tr.Size() != len(boxes) {
		t.Fatalf("Size() = %d, want %d", tr.Size(), len(boxes))
	}
	for i, b := range boxes {
		want := string(rune('a' + i))
		v, ok := tr.Remove(b, func(s string) bool { return s == want })
		if !ok || v != want {
			t.Fatalf("Remove(%v) = %v,%v, want %v,true", b, v, ok, want)
		}
	}
	if tr.Size() != 0 {
		t.Fatalf("Size() after removing everything = %d, want 0", tr.Size())
	}
}

func TestInsertDimensionMismatch(t *testing.T) {
	tr, _ := New[int](DefaultConfig(2))
	if err := tr.Insert(geom.PointBox(geom.Point{1, 2, 3}), 1); err == nil {
		t.Fatalf("Insert with wrong dims: err = nil, want error")
	}
}

func TestRemoveMissing(t *testing.T) {
	tr, _ := New[int](DefaultConfig(2))
	tr.Insert(pt(1, 1), 1)
	if _, ok := tr.Remove(pt(9, 9), func(int) bool { return true }); ok {
		t.Fatalf("Remove on absent box: ok = true")
	}
	if tr.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", tr.Size())
	}
}

func naiveIntersect(boxes []geom.Box, values []int, query geom.Box) map[int]bool {
	got := map[int]bool{}
	for i, b := range boxes {
		if b.Intersects(query) {
			got[values[i]] = true
		}
	}
	return got
}

func TestWindowQueryMatchesNaive(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tr, _ := New[int](DefaultConfig(2))
	var boxes []geom.Box
	var values []int
	for i := 0; i < 500; i++ {
		x, y := rng.Float64()*100, rng.Float64()*100
		b := geom.Box{Min: geom.Point{x, y}, Max: geom.Point{x + rng.Float64()*2, y + rng.Float64()*2}}
		boxes = append(boxes, b)
		values = append(values, i)
		if err := tr.Insert(b, i); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	query := geom.Box{Min: geom.Point{20, 20}, Max: geom.Point{60, 60}}
	want := naiveIntersect(boxes, values, query)

	got := map[int]bool{}
	it := tr.QueryIntersect(query)
	for it.HasNext() {
		_, v, ok := it.Next()
		if !ok {
			t.Fatalf("Next ok=false while HasNext true")
		}
		got[v] = true
	}
	if len(got) != len(want) {
		t.Fatalf("window query returned %d entries, want %d", len(got), len(want))
	}
	for v := range want {
		if !got[v] {
			t.Fatalf("window query missing value %d", v)
		}
	}
}

func TestKNNMonotonicAndCorrect(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	tr, _ := New[int](DefaultConfig(3))
	n := 2000
	boxes := make([]geom.Box, n)
	for i := 0; i < n; i++ {
		p := geom.Point{rng.Float64() * 100, rng.Float64() * 100, rng.Float64() * 100}
		boxes[i] = geom.PointBox(p)
		if err := tr.Insert(boxes[i], i); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	center := geom.Point{50, 50, 50}
	k := 25
	it := tr.NearestNeighbors(center, k, nil, nil)

	type ranked struct {
		idx  int
		dist float64
	}
	all := make([]ranked, n)
	for i, b := range boxes {
		all[i] = ranked{i, geom.EdgeDistance(center, b)}
	}
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			if all[j].dist < all[i].dist {
				all[i], all[j] = all[j], all[i]
			}
		}
	}
	wantDists := make([]float64, k)
	for i := 0; i < k; i++ {
		wantDists[i] = all[i].dist
	}

	var lastDist = -1.0
	count := 0
	for it.HasNext() {
		e, d, ok := it.Next()
		if !ok {
			t.Fatalf("Next ok=false while HasNext true")
		}
		if d < lastDist {
			t.Fatalf("k-NN not in non-decreasing order: %v after %v", d, lastDist)
		}
		lastDist = d
		if d != wantDists[count] {
			t.Fatalf("k-NN distance[%d] = %v, want %v", count, d, wantDists[count])
		}
		_ = e.Key
		count++
	}
	if count != k {
		t.Fatalf("k-NN yielded %d entries, want %d", count, k)
	}
}

func TestFarthestNeighborsOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	tr, _ := New[int](DefaultConfig(2))
	for i := 0; i < 300; i++ {
		p := geom.Point{rng.Float64() * 50, rng.Float64() * 50}
		tr.Insert(geom.PointBox(p), i)
	}
	center := geom.Point{25, 25}
	it := tr.FarthestNeighbors(center, 10, nil, nil)
	// FarthestNeighbors yields wrapped distances (1/true-distance), so the
	// wrapped values are non-decreasing while the true distances they stand
	// for are non-increasing (farthest first).
	lastWrapped := -math.Inf(1)
	count := 0
	for it.HasNext() {
		_, d, ok := it.Next()
		if !ok {
			t.Fatalf("Next ok=false while HasNext true")
		}
		if d < lastWrapped {
			t.Fatalf("farthest-first wrapped distance not non-decreasing")
		}
		lastWrapped = d
		count++
	}
	if count != 10 {
		t.Fatalf("FarthestNeighbors yielded %d, want 10", count)
	}
}

func TestSplitAndReinsertKeepsAllEntries(t *testing.T) {
	cfg := DefaultConfig(2)
	cfg.NodeMaxData = 4
	cfg.NodeMinData = 2
	cfg.NodeMaxDir = 4
	cfg.NodeMinDir = 2
	tr, err := New[int](cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rng := rand.New(rand.NewSource(4))
	n := 400
	boxes := make([]geom.Box, n)
	for i := 0; i < n; i++ {
		p := geom.Point{rng.Float64() * 1000, rng.Float64() * 1000}
		boxes[i] = geom.PointBox(p)
		if err := tr.Insert(boxes[i], i); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	stats := tr.Stats()
	if stats.SplitCount == 0 {
		t.Fatalf("expected at least one split with small node capacity")
	}
	if stats.Size != n {
		t.Fatalf("Stats.Size = %d, want %d", stats.Size, n)
	}
	query := geom.Box{Min: geom.Point{0, 0}, Max: geom.Point{1000, 1000}}
	count := 0
	it := tr.QueryIntersect(query)
	for it.HasNext() {
		if _, _, ok := it.Next(); ok {
			count++
		}
	}
	if count != n {
		t.Fatalf("full-window query returned %d, want %d", count, n)
	}
	if err := tr.CheckInvariants(); err != nil {
		t.Fatalf("CheckInvariants after bulk insert: %v", err)
	}
}

func TestCheckInvariantsCatchesCorruption(t *testing.T) {
	tr, err := New[int](DefaultConfig(2))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 50; i++ {
		p := geom.Point{rng.Float64() * 100, rng.Float64() * 100}
		if err := tr.Insert(geom.PointBox(p), i); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	if err := tr.CheckInvariants(); err != nil {
		t.Fatalf("CheckInvariants on a healthy tree: %v", err)
	}
	idx := tr.root
	for {
		n := tr.arena.get(idx)
		if n.isLeaf {
			n.entries[0].box = geom.Box{
				Min: geom.Point{1e9, 1e9},
				Max: geom.Point{1e9, 1e9},
			}
			break
		}
		idx = n.children[0]
	}
	if err := tr.CheckInvariants(); err == nil {
		t.Fatalf("CheckInvariants after corrupting a leaf entry's box: want error, got nil")
	}
}

func TestRangeKNNDeduplicatesAtDistance(t *testing.T) {
	tr, _ := New[int](DefaultConfig(2))
	pts := []geom.Point{{0, 0}, {1, 0}, {0, 1}, {10, 10}}
	for i, p := range pts {
		tr.Insert(geom.PointBox(p), i)
	}
	window := geom.Box{Min: geom.Point{-5, -5}, Max: geom.Point{5, 5}}
	it := tr.QueryRangeKNN(geom.Point{0, 0}, window, 3, nil)
	seen := map[int]bool{}
	count := 0
	for it.HasNext() {
		_, v, _, ok := it.Next()
		if !ok {
			t.Fatalf("Next ok=false while HasNext true")
		}
		if seen[v] {
			t.Fatalf("duplicate value %d yielded", v)
		}
		seen[v] = true
		count++
	}
	if count != 3 {
		t.Fatalf("RangeKNN yielded %d, want 3", count)
	}
	if !seen[0] {
		t.Fatalf("expected origin point to be yielded among the 3 nearest")
	}
}
