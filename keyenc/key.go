// Package keyenc turns ordinary Go values into byte-sequence Keys whose
// lexicographic (bytewise) order matches the value's natural order. This is
// the wire format the crit-bit trie indexes: arbitrary-length 1-D keys, or
// (via MergeUint64/SplitUint64) k-D points reduced to one interleaved 1-D key.
package keyenc

import (
	"encoding/binary"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Key is an alias for a byte slice used as a map key representation.
// Use the provided constructors to build Keys from primitive types or
// normalized strings.
//
// Integer encoding policy
// -----------------------
// FromInt64 and FromUint64 produce an 8-byte big-endian representation
// (most-significant byte first). To ensure consistent, order-preserving
// comparisons between signed and unsigned values, both constructors add
// an offset of `1<<63` before encoding: FromInt64 converts its argument
// to `uint64` first, FromUint64 takes its argument as-is; in both cases
// the offset is added and the resulting unsigned 64-bit value is written
// big-endian into the Key.
//
// This mapping has two useful properties:
//   - Lexicographic byte-wise comparison of Keys corresponds to numeric
//     ordering of the original values (taking signedness into account).
//   - Signed and unsigned values are directly comparable: `FromInt64(0)`
//     equals `FromUint64(0)`.
//
// The smallest `int64` value (`math.MinInt64`) maps to `0` and negative
// signed values compare before zero/positive values as expected for
// numeric ordering.
type Key []byte

// FromBytes returns a copy of the provided byte slice as a Key. If b is
// nil this returns an empty (zero-length) Key (not nil).
func FromBytes(b []byte) Key {
	if b == nil {
		return []byte{}
	}
	kb := make([]byte, len(b))
	copy(kb, b)
	return Key(kb)
}

// FromString returns a Key produced from the provided string after
// normalizing it to Unicode NFC. The resulting Key contains the UTF-8
// encoding of the normalized string. (FromString does not alter case or
// trim spaces.)
func FromString(s string) Key {
	s = norm.NFC.String(s) // normalize to NFC
	return FromBytes([]byte(s))
}

// FromInt64 converts an int64 to an 8-byte big-endian Key. The value is
// shifted by 1<<63 so that lexicographic key order matches numeric order.
func FromInt64(i int64) Key {
	var b [8]byte
	const offset = uint64(1) << 63
	u := uint64(i) + offset
	binary.BigEndian.PutUint64(b[:], u)
	return FromBytes(b[:])
}

// FromUint64 converts a uint64 to an 8-byte big-endian Key (MSB first).
func FromUint64(u uint64) Key {
	var b [8]byte
	const offset = uint64(1) << 63
	binary.BigEndian.PutUint64(b[:], u+offset)
	return FromBytes(b[:])
}

// Bytes returns a copy of the Key as a byte slice.
func (k Key) Bytes() []byte {
	if k == nil {
		return nil
	}
	b := make([]byte, len(k))
	copy(b, k)
	return b
}

// Clone returns an independent copy of the Key. If k is nil, Clone returns nil.
func (k Key) Clone() Key {
	if k == nil {
		return nil
	}
	kb := make([]byte, len(k))
	copy(kb, k)
	return Key(kb)
}

// String returns the Key as a string consisting of uppercase hex tuples per byte,
// separated by commas and surrounded by `[]` (e.g. `[01,AB,00]`).
func (k Key) String() string {
	if len(k) == 0 {
		return "[]"
	}
	var sb strings.Builder
	sb.WriteByte('[')
	const hex = "0123456789ABCDEF"
	for i, b := range k {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteByte(hex[b>>4])
		sb.WriteByte(hex[b&0x0F])
	}
	sb.WriteByte(']')
	return sb.String()
}

// Equal reports whether k and other have the same contents.
func (k Key) Equal(other Key) bool {
	if len(k) != len(other) {
		return false
	}
	for i := range k {
		if k[i] != other[i] {
			return false
		}
	}
	return true
}

// LessThan reports whether k is lexicographically less than other.
func (k Key) LessThan(other Key) bool {
	for i := 0; i < len(k) && i < len(other); i++ {
		if k[i] < other[i] {
			return true
		} else if k[i] > other[i] {
			return false
		}
	}
	return len(k) < len(other)
}

// LessThanOrEqual reports whether k is lexicographically less than or equal
// to other (a shorter key that is a prefix of a longer one counts as less).
func (k Key) LessThanOrEqual(other Key) bool {
	return k.LessThan(other) || k.Equal(other)
}

// IsEmpty returns whether the Key is empty or nil.
func (k Key) IsEmpty() bool { return len(k) == 0 }
