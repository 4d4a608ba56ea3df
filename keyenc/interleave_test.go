package keyenc

import (
	"math/rand"
	"testing"
)

func TestMergeSplitUint64RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	cases := []struct{ k, w int }{{2, 32}, {3, 16}, {4, 16}, {8, 8}, {1, 64}}
	for _, c := range cases {
		dims := make([]uint64, c.k)
		mask := uint64(1)<<uint(c.w) - 1
		if c.w == 64 {
			mask = ^uint64(0)
		}
		for i := range dims {
			dims[i] = rng.Uint64() & mask
		}
		merged := MergeUint64(dims, c.w)
		got := SplitUint64(merged, c.k, c.w)
		for i := range dims {
			if got[i] != dims[i] {
				t.Fatalf("k=%d w=%d: dim %d round-tripped to %d, want %d (merged=%#x)", c.k, c.w, i, got[i], dims[i], merged)
			}
		}
	}
}

func TestMergeUint64BitPlacement(t *testing.T) {
	// Bit b of dims[d] must land at output position b*k+d (MSB-first):
	// setting only dims[1]'s top bit in a k=2,w=4 interleave should set
	// exactly output bit 1 (the second-from-MSB of the 8-bit result).
	merged := MergeUint64([]uint64{0, 0b1000}, 4)
	if merged != 0b01000000 {
		t.Fatalf("MergeUint64 placed dims[1]'s top bit at the wrong position: got %08b", merged)
	}
}

func TestDimAndDepthForBit(t *testing.T) {
	k := 3
	for pos := 0; pos < 6*k; pos++ {
		dim, depth := DimAndDepthForBit(pos, k)
		if dim != pos%k || depth != pos/k {
			t.Fatalf("DimAndDepthForBit(%d,%d) = (%d,%d), want (%d,%d)", pos, k, dim, depth, pos%k, pos/k)
		}
	}
}

func TestDimAndDepthForBitCoversEachDimensionInTurn(t *testing.T) {
	// Interleaving round-robins across dimensions, so k consecutive
	// positions must name every dimension exactly once before repeating.
	k := 4
	for round := 0; round < 3; round++ {
		seen := make(map[int]bool)
		for d := 0; d < k; d++ {
			dim, depth := DimAndDepthForBit(round*k+d, k)
			if depth != round {
				t.Fatalf("position %d: depth = %d, want %d", round*k+d, depth, round)
			}
			seen[dim] = true
		}
		if len(seen) != k {
			t.Fatalf("round %d: expected all %d dimensions to appear exactly once, saw %d", round, k, len(seen))
		}
	}
}
