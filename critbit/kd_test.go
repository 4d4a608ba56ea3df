package critbit

import "testing"

func TestKDPutGetRoundTrip(t *testing.T) {
	tr, err := NewKD[string](3, 16)
	if err != nil {
		t.Fatalf("NewKD: %v", err)
	}
	points := [][]uint64{
		{1, 2, 3},
		{100, 200, 300},
		{0, 0, 0},
		{65535, 1, 65535},
	}
	for i, p := range points {
		if _, _, err := tr.Put(p, "v"); err != nil {
			t.Fatalf("Put(%v): %v", p, err)
		}
		if tr.Size() != i+1 {
			t.Fatalf("Size() = %d, want %d", tr.Size(), i+1)
		}
	}
	for _, p := range points {
		v, ok, err := tr.Get(p)
		if err != nil || !ok || v != "v" {
			t.Fatalf("Get(%v) = %v,%v,%v", p, v, ok, err)
		}
	}
}

func TestKDDimensionMismatch(t *testing.T) {
	tr, _ := NewKD[int](3, 16)
	if _, _, err := tr.Put([]uint64{1, 2}, 1); err == nil {
		t.Fatalf("Put with wrong dim count: err = nil, want ErrDimensionMismatch")
	}
}

func TestKDInvalidConfig(t *testing.T) {
	if _, err := NewKD[int](0, 16); err == nil {
		t.Fatalf("NewKD(0,16) err = nil, want error")
	}
	if _, err := NewKD[int](5, 20); err == nil {
		t.Fatalf("NewKD(5,20) err = nil, want error (5*20 > 64)")
	}
}

func TestKDRemove(t *testing.T) {
	tr, _ := NewKD[int](2, 32)
	p := []uint64{10, 20}
	tr.Put(p, 1)
	v, ok, err := tr.Remove(p)
	if err != nil || !ok || v != 1 {
		t.Fatalf("Remove(%v) = %v,%v,%v", p, v, ok, err)
	}
	if tr.Size() != 0 {
		t.Fatalf("Size() after Remove = %d, want 0", tr.Size())
	}
}

func TestKDCoordsRoundTrip(t *testing.T) {
	tr, _ := NewKD[int](2, 8)
	p := []uint64{200, 37}
	key, err := tr.merge(p)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	got := tr.Coords(key)
	if len(got) != 2 || got[0] != p[0] || got[1] != p[1] {
		t.Fatalf("Coords round trip = %v, want %v", got, p)
	}
}

func drainKD[V any](it *KDRangeIterator[V]) [][]uint64 {
	var out [][]uint64
	for it.HasNext() {
		c, _, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, append([]uint64(nil), c...))
	}
	return out
}

func TestKDQueryKDRange(t *testing.T) {
	tr, _ := NewKD[string](2, 8)
	points := [][]uint64{{10, 10}, {10, 200}, {200, 10}, {50, 60}, {0, 0}, {255, 255}}
	for _, p := range points {
		if _, _, err := tr.Put(p, "v"); err != nil {
			t.Fatalf("Put(%v): %v", p, err)
		}
	}
	it, err := tr.QueryKD([]uint64{0, 0}, []uint64{100, 100})
	if err != nil {
		t.Fatalf("QueryKD: %v", err)
	}
	got := drainKD(it)
	want := map[[2]uint64]bool{{10, 10}: true, {50, 60}: true, {0, 0}: true}
	if len(got) != len(want) {
		t.Fatalf("QueryKD returned %d points, want %d (%v)", len(got), len(want), got)
	}
	for _, c := range got {
		if !want[[2]uint64{c[0], c[1]}] {
			t.Fatalf("QueryKD returned unexpected point %v", c)
		}
	}
}

func TestKDQueryKDSinglePoint(t *testing.T) {
	tr, _ := NewKD[string](2, 8)
	tr.Put([]uint64{5, 5}, "only")
	it, err := tr.QueryKD([]uint64{0, 0}, []uint64{10, 10})
	if err != nil {
		t.Fatalf("QueryKD: %v", err)
	}
	got := drainKD(it)
	if len(got) != 1 || got[0][0] != 5 || got[0][1] != 5 {
		t.Fatalf("QueryKD on single-entry tree = %v, want [[5 5]]", got)
	}
	if it2, _ := tr.QueryKD([]uint64{6, 6}, []uint64{10, 10}); len(drainKD(it2)) != 0 {
		t.Fatalf("QueryKD should exclude the single entry when out of range")
	}
}

func TestKDQueryKDDimensionMismatch(t *testing.T) {
	tr, _ := NewKD[int](3, 16)
	if _, err := tr.QueryKD([]uint64{1, 2}, []uint64{1, 2, 3}); err == nil {
		t.Fatalf("QueryKD with wrong dim count: err = nil, want ErrDimensionMismatch")
	}
}

func TestKDQueryKDAgreesWithLinearScan(t *testing.T) {
	tr, _ := NewKD[int](3, 6)
	var points [][]uint64
	idx := 0
	for a := uint64(0); a < 8; a += 2 {
		for b := uint64(0); b < 8; b += 3 {
			for c := uint64(0); c < 8; c += 5 {
				p := []uint64{a, b, c}
				tr.Put(p, idx)
				points = append(points, p)
				idx++
			}
		}
	}
	minC, maxC := []uint64{1, 1, 1}, []uint64{6, 6, 6}
	it, err := tr.QueryKD(minC, maxC)
	if err != nil {
		t.Fatalf("QueryKD: %v", err)
	}
	got := map[[3]uint64]bool{}
	for _, c := range drainKD(it) {
		got[[3]uint64{c[0], c[1], c[2]}] = true
	}
	wantCount := 0
	for _, p := range points {
		inRange := true
		for d := range p {
			if p[d] < minC[d] || p[d] > maxC[d] {
				inRange = false
			}
		}
		if inRange {
			wantCount++
			if !got[[3]uint64{p[0], p[1], p[2]}] {
				t.Fatalf("QueryKD missed in-range point %v", p)
			}
		}
	}
	if len(got) != wantCount {
		t.Fatalf("QueryKD returned %d points, want %d", len(got), wantCount)
	}
}
