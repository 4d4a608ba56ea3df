package keyenc

import "math"

// EncodeFloat64 maps a double x to a uint64 whose unsigned order matches the
// IEEE-754 total order of x, with -0.0 and +0.0 coalesced to the same code.
//
// Non-negative doubles already have their sign bit clear, so their raw bit
// pattern is monotonically increasing with x and lives in the lower half of
// the uint64 range; setting the sign bit shifts that whole range above every
// negative code. Negative doubles have their sign bit set and their raw bit
// pattern is monotonically DEcreasing with x (larger magnitude -> larger
// unsigned bits, but a larger-magnitude negative number is smaller); flipping
// every bit both clears the sign bit (landing in the lower half) and reverses
// that descending order back into the ascending order we need.
//
// The branch is taken on the numeric sign of x (x >= 0), not on the raw sign
// bit: -0.0 satisfies x >= 0, so it is encoded exactly like +0.0.
func EncodeFloat64(x float64) uint64 {
	bits := math.Float64bits(x)
	if x >= 0 {
		return bits | (1 << 63)
	}
	return ^bits
}

// DecodeFloat64 is the inverse of EncodeFloat64.
func DecodeFloat64(code uint64) float64 {
	if code&(1<<63) != 0 {
		return math.Float64frombits(code &^ (1 << 63))
	}
	return math.Float64frombits(^code)
}
