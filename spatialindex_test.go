package spatialindex

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/TomTonic/spatialindex/geom"
)

func randPoint(r *rand.Rand, dims int) geom.Point {
	p := make(geom.Point, dims)
	for i := range p {
		p[i] = r.Float64()*200 - 100
	}
	return p
}

func randBox(r *rand.Rand, dims int) geom.Box {
	min := randPoint(r, dims)
	max := make(geom.Point, dims)
	for i := range min {
		max[i] = min[i] + r.Float64()*10
	}
	return geom.Box{Min: min, Max: max}
}

func pointIndexConfig(dims int) Config {
	return Config{Dims: dims, Center: make(geom.Point, dims), Radius: 1000}
}

func boxIndexConfig(dims int) Config {
	return Config{Dims: dims}
}

// TestFactoryPointEngines checks that every point-keyed engine name routes
// to a working PointIndex and agrees with the naive "array" reference on a
// window query (spec.md §8's differential-testing contract).
func TestFactoryPointEngines(t *testing.T) {
	names := []string{"quadtree", "quadtree-hc", "quadtree-hc2", "kd-tree"}
	r := rand.New(rand.NewSource(1))
	const dims = 2
	pts := make([]geom.Point, 200)
	for i := range pts {
		pts[i] = randPoint(r, dims)
	}

	ref, err := Factory[int]("array", pointIndexConfig(dims))
	if err != nil {
		t.Fatalf("Factory(array): %v", err)
	}
	refIdx := ref.(PointIndex[int])
	for i, p := range pts {
		if err := refIdx.Insert(p, i); err != nil {
			t.Fatalf("array Insert: %v", err)
		}
	}

	query := geom.Box{Min: geom.Point{-50, -50}, Max: geom.Point{50, 50}}
	wantResults := refIdx.QueryWindow(query)
	want := make(map[int]bool, len(wantResults))
	for _, res := range wantResults {
		want[res.Value] = true
	}

	for _, name := range names {
		any_, err := Factory[int](name, pointIndexConfig(dims))
		if err != nil {
			t.Fatalf("Factory(%s): %v", name, err)
		}
		idx := any_.(PointIndex[int])
		for i, p := range pts {
			if err := idx.Insert(p, i); err != nil {
				t.Fatalf("%s Insert: %v", name, err)
			}
		}
		if idx.Size() != len(pts) {
			t.Fatalf("%s Size() = %d, want %d", name, idx.Size(), len(pts))
		}
		got := idx.QueryWindow(query)
		gotSet := make(map[int]bool, len(got))
		for _, res := range got {
			gotSet[res.Value] = true
		}
		if len(gotSet) != len(want) {
			t.Fatalf("%s QueryWindow: got %d matches, want %d", name, len(gotSet), len(want))
		}
		for v := range want {
			if !gotSet[v] {
				t.Fatalf("%s QueryWindow: missing value %d present in naive reference", name, v)
			}
		}
		if ci, ok := any_.(interface{ CheckInvariants() error }); ok {
			if err := ci.CheckInvariants(); err != nil {
				t.Fatalf("%s CheckInvariants: %v", name, err)
			}
		}
	}
}

// TestFactoryKNNAgreesWithNaive checks that the quadtree's best-first k-NN
// matches the naive linear-scan order for the same point set.
func TestFactoryKNNAgreesWithNaive(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	const dims = 2
	pts := make([]geom.Point, 100)
	for i := range pts {
		pts[i] = randPoint(r, dims)
	}

	any_, err := Factory[int]("quadtree", pointIndexConfig(dims))
	if err != nil {
		t.Fatalf("Factory: %v", err)
	}
	idx := any_.(PointIndex[int])
	for i, p := range pts {
		if err := idx.Insert(p, i); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	center := geom.Point{0, 0}
	got := idx.NearestNeighbors(center, 5, nil)
	if len(got) != 5 {
		t.Fatalf("NearestNeighbors returned %d results, want 5", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Dist < got[i-1].Dist {
			t.Fatalf("NearestNeighbors not monotonic at %d: %v then %v", i, got[i-1].Dist, got[i].Dist)
		}
	}

	dists := make([]float64, len(pts))
	for i, p := range pts {
		dists[i] = geom.L2(center, p)
	}
	sort.Float64s(dists)
	for i := range got {
		if got[i].Dist != dists[i] {
			t.Fatalf("NearestNeighbors[%d].Dist = %v, want %v (naive order)", i, got[i].Dist, dists[i])
		}
	}
}

// TestFactoryBoxEngines exercises both BoxIndex factory variants
// (incremental and STR bulk-loaded) against the naive "array-box" reference.
func TestFactoryBoxEngines(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	const dims = 2
	boxes := make([]geom.Box, 150)
	values := make([]int, len(boxes))
	for i := range boxes {
		boxes[i] = randBox(r, dims)
		values[i] = i
	}

	ref, err := Factory[int]("array-box", boxIndexConfig(dims))
	if err != nil {
		t.Fatalf("Factory(array-box): %v", err)
	}
	refIdx := ref.(BoxIndex[int])
	for i, b := range boxes {
		if err := refIdx.Insert(b, values[i]); err != nil {
			t.Fatalf("array-box Insert: %v", err)
		}
	}
	query := geom.Box{Min: geom.Point{-50, -50}, Max: geom.Point{50, 50}}
	want := make(map[int]bool)
	for _, res := range refIdx.QueryWindow(query) {
		want[res.Value] = true
	}

	incAny, err := Factory[int]("rstar-tree", boxIndexConfig(dims))
	if err != nil {
		t.Fatalf("Factory(rstar-tree): %v", err)
	}
	inc := incAny.(BoxIndex[int])
	for i, b := range boxes {
		if err := inc.Insert(b, values[i]); err != nil {
			t.Fatalf("rstar-tree Insert: %v", err)
		}
	}

	bulk, err := FactorySTR[int](boxIndexConfig(dims), boxes, values)
	if err != nil {
		t.Fatalf("FactorySTR: %v", err)
	}

	for name, idx := range map[string]BoxIndex[int]{"rstar-tree": inc, "str-packed-rstar-tree": bulk} {
		if idx.Size() != len(boxes) {
			t.Fatalf("%s Size() = %d, want %d", name, idx.Size(), len(boxes))
		}
		got := idx.QueryWindow(query)
		gotSet := make(map[int]bool, len(got))
		for _, res := range got {
			gotSet[res.Value] = true
		}
		for v := range want {
			if !gotSet[v] {
				t.Fatalf("%s QueryWindow: missing value %d present in naive reference", name, v)
			}
		}
		if err := idx.(interface{ CheckInvariants() error }).CheckInvariants(); err != nil {
			t.Fatalf("%s CheckInvariants: %v", name, err)
		}
	}
}

// TestFactoryRangeKNN checks that BoxIndex.QueryRangeKNN only returns
// window-intersecting entries, in non-decreasing distance order.
func TestFactoryRangeKNN(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	const dims = 2
	boxes := make([]geom.Box, 80)
	for i := range boxes {
		boxes[i] = randBox(r, dims)
	}

	any_, err := Factory[int]("rstar-tree", boxIndexConfig(dims))
	if err != nil {
		t.Fatalf("Factory: %v", err)
	}
	idx := any_.(BoxIndex[int])
	for i, b := range boxes {
		if err := idx.Insert(b, i); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	window := geom.Box{Min: geom.Point{-30, -30}, Max: geom.Point{30, 30}}
	center := geom.Point{0, 0}
	got := idx.QueryRangeKNN(center, window, 10, nil)
	for i, res := range got {
		if !res.Box.Intersects(window) {
			t.Fatalf("QueryRangeKNN[%d] box %v does not intersect window", i, res.Box)
		}
		if i > 0 && got[i].Dist < got[i-1].Dist {
			t.Fatalf("QueryRangeKNN not monotonic at %d", i)
		}
	}
}

// TestPHTreeOverwriteSemantics checks the "ph-tree" factory variant's
// single-value overwrite behavior (spec.md §3), distinct from the
// multimap-semantics "kd-tree" variant.
func TestPHTreeOverwriteSemantics(t *testing.T) {
	any_, err := Factory[string]("ph-tree", pointIndexConfig(2))
	if err != nil {
		t.Fatalf("Factory(ph-tree): %v", err)
	}
	m := any_.(PointMap[string])

	p := geom.Point{1, 2}
	if _, had, err := m.Put(p, "first"); err != nil || had {
		t.Fatalf("Put first: had=%v err=%v, want had=false", had, err)
	}
	old, had, err := m.Put(p, "second")
	if err != nil || !had || old != "first" {
		t.Fatalf("Put second: old=%q had=%v err=%v, want \"first\",true,nil", old, had, err)
	}
	if got, ok := m.Get(p); !ok || got != "second" {
		t.Fatalf("Get after overwrite = %q,%v, want \"second\",true", got, ok)
	}
	if m.Size() != 1 {
		t.Fatalf("Size() = %d, want 1 (overwrite semantics)", m.Size())
	}
	if v, ok := m.Remove(p); !ok || v != "second" {
		t.Fatalf("Remove = %q,%v, want \"second\",true", v, ok)
	}
	if m.Size() != 0 {
		t.Fatalf("Size() after Remove = %d, want 0", m.Size())
	}
}

// TestKDMultimapCoincidentPoints checks the "kd-tree" factory variant's
// multimap semantics: inserting the same point twice keeps both values
// (spec.md §3), unlike the ph-tree's overwrite behavior above.
func TestKDMultimapCoincidentPoints(t *testing.T) {
	any_, err := Factory[string]("kd-tree", pointIndexConfig(2))
	if err != nil {
		t.Fatalf("Factory(kd-tree): %v", err)
	}
	idx := any_.(PointIndex[string])

	p := geom.Point{3, 4}
	if err := idx.Insert(p, "a"); err != nil {
		t.Fatalf("Insert a: %v", err)
	}
	if err := idx.Insert(p, "b"); err != nil {
		t.Fatalf("Insert b: %v", err)
	}
	if idx.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", idx.Size())
	}
	got := idx.Get(p)
	if len(got) != 2 {
		t.Fatalf("Get(p) = %v, want 2 entries", got)
	}
	if _, ok := idx.Remove(p, func(s string) bool { return s == "a" }); !ok {
		t.Fatalf("Remove(a) failed")
	}
	if idx.Size() != 1 {
		t.Fatalf("Size() after removing one of two = %d, want 1", idx.Size())
	}
	remaining := idx.Get(p)
	if len(remaining) != 1 || remaining[0] != "b" {
		t.Fatalf("Get(p) after partial remove = %v, want [\"b\"]", remaining)
	}
}

func TestFactoryUnknownName(t *testing.T) {
	if _, err := Factory[int]("not-a-real-engine", boxIndexConfig(2)); err == nil {
		t.Fatalf("Factory with unknown name: want error, got nil")
	}
}

func TestDimensionMismatchRejected(t *testing.T) {
	any_, err := Factory[int]("quadtree", pointIndexConfig(2))
	if err != nil {
		t.Fatalf("Factory: %v", err)
	}
	idx := any_.(PointIndex[int])
	if err := idx.Insert(geom.Point{1, 2, 3}, 0); err == nil {
		t.Fatalf("Insert with wrong dims: want error, got nil")
	}
}
