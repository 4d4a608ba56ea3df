package critbit

import "github.com/TomTonic/spatialindex/keyenc"

// getBit returns bit pos (0-based, most significant bit first, counted
// across the whole key) of k, or 0 if pos falls past the end of k.
func getBit(k keyenc.Key, pos int) int {
	byteIdx := pos / 8
	if byteIdx >= len(k) {
		return 0
	}
	mask := byte(0x80) >> uint(pos%8)
	if k[byteIdx]&mask != 0 {
		return 1
	}
	return 0
}

// setBit sets (v=1) or clears (v=0) bit pos of k in place. k must already
// be at least pos/8+1 bytes long.
func setBit(k keyenc.Key, pos int, v int) {
	byteIdx := pos / 8
	mask := byte(0x80) >> uint(pos%8)
	if v != 0 {
		k[byteIdx] |= mask
	} else {
		k[byteIdx] &^= mask
	}
}

// firstDiffBit returns the first bit position (0-based, MSB-first) at
// which a and b differ, within [0,width), or -1 if they are equal over
// that range (spec.md §4.1: "compare"; returns -1 for equal).
func firstDiffBit(a, b keyenc.Key, width int) int {
	for pos := 0; pos < width; pos++ {
		if getBit(a, pos) != getBit(b, pos) {
			return pos
		}
	}
	return -1
}

// bytesForWidth returns how many bytes are needed to hold width bits.
func bytesForWidth(width int) int {
	return (width + 7) / 8
}

// boundKey builds a key that shares repr's bits in [0,pos), has bit (value
// bit) at position pos, and has every bit after pos set to fill (0 or 1).
// Used by the range query (spec.md §4.1.4) to compute the most extreme key
// reachable through a given child without needing an explicit stored
// infix: every key in repr's subtree already shares bits [0,pos) with repr
// by construction (that is exactly what distinguishes a crit-bit subtree).
func boundKey(repr keyenc.Key, width, pos, bit, fill int) keyenc.Key {
	out := make(keyenc.Key, bytesForWidth(width))
	copy(out, repr)
	setBit(out, pos, bit)
	for p := pos + 1; p < width; p++ {
		setBit(out, p, fill)
	}
	return out
}
