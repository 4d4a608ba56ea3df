package critbit

import (
	"encoding/binary"

	"github.com/TomTonic/spatialindex/errs"
	"github.com/TomTonic/spatialindex/keyenc"
)

// KDTree is the k-D crit-bit variant (spec.md §4.1.3): a point of k
// dimensions is reduced to one interleaved 1-D key (keyenc.MergeUint64) and
// indexed by an ordinary 1-D Tree. Each dimension contributes bitsPerDim
// bits; the merged key is bitsPerDim*k bits wide, which must not exceed 64
// (the merge codec packs into a single uint64).
type KDTree[V any] struct {
	dims        int
	bitsPerDim  int
	inner       *Tree[V]
}

// NewKD constructs a k-D crit-bit trie. dims must be >= 1 and
// bitsPerDim*dims must be in [1,64] (spec.md §7).
func NewKD[V any](dims, bitsPerDim int) (*KDTree[V], error) {
	if dims < 1 || bitsPerDim < 1 || bitsPerDim*dims > 64 {
		return nil, errs.ErrConfiguration
	}
	inner, err := New[V](bitsPerDim * dims)
	if err != nil {
		return nil, err
	}
	return &KDTree[V]{dims: dims, bitsPerDim: bitsPerDim, inner: inner}, nil
}

// Dims reports the configured point dimensionality.
func (t *KDTree[V]) Dims() int { return t.dims }

// Size reports the number of stored points.
func (t *KDTree[V]) Size() int { return t.inner.Size() }

// merge interleaves coords into one raw big-endian 8-byte key. Unlike
// keyenc.FromUint64, this does not apply the signed/unsigned cross-width
// offset: a KDTree only ever compares merged keys against other merged
// keys from the same tree, so plain unsigned big-endian order is both
// sufficient and trivially invertible by Coords.
//
// MergeUint64 packs its totalBits=dims*bitsPerDim result into the
// low-order bits of the uint64; the Tree indexes bits MSB-first starting
// at byte 0, so the merged value is shifted up to occupy the top
// totalBits bits of the 64-bit word before encoding (and shifted back down
// in Coords).
func (t *KDTree[V]) merge(coords []uint64) (keyenc.Key, error) {
	if len(coords) != t.dims {
		return nil, errs.ErrDimensionMismatch
	}
	merged := keyenc.MergeUint64(coords, t.bitsPerDim)
	totalBits := t.dims * t.bitsPerDim
	merged <<= uint(64 - totalBits)
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], merged)
	return keyenc.FromBytes(b[:]), nil
}

// Put inserts or overwrites the point given by coords (one per dimension,
// already quantized to bitsPerDim-bit unsigned codes) with value.
func (t *KDTree[V]) Put(coords []uint64, value V) (old V, had bool, err error) {
	key, err := t.merge(coords)
	if err != nil {
		return old, false, err
	}
	old, had = t.inner.Put(key, value)
	return old, had, nil
}

// Get returns the value stored at coords, if any.
func (t *KDTree[V]) Get(coords []uint64) (V, bool, error) {
	key, err := t.merge(coords)
	if err != nil {
		var zero V
		return zero, false, err
	}
	v, ok := t.inner.Get(key)
	return v, ok, nil
}

// Remove deletes the point at coords.
func (t *KDTree[V]) Remove(coords []uint64) (V, bool, error) {
	key, err := t.merge(coords)
	if err != nil {
		var zero V
		return zero, false, err
	}
	v, ok := t.inner.Remove(key)
	return v, ok, nil
}

// Coords splits a merged interleaved key back into per-dimension codes.
func (t *KDTree[V]) Coords(key keyenc.Key) []uint64 {
	var b [8]byte
	copy(b[:], key)
	merged := binary.BigEndian.Uint64(b[:])
	totalBits := t.dims * t.bitsPerDim
	merged >>= uint(64 - totalBits)
	return keyenc.SplitUint64(merged, t.dims, t.bitsPerDim)
}

// Iterator walks every stored point in merged-key order.
func (t *KDTree[V]) Iterator() *Iterator[V] { return t.inner.Iterator() }

// CheckInvariants delegates to the underlying 1-D trie (spec.md §4,
// "Debug invariant assertions"); the interleaving itself has nothing
// further to validate beyond what Tree.CheckInvariants already checks.
func (t *KDTree[V]) CheckInvariants() error { return t.inner.CheckInvariants() }
