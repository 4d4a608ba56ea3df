package critbit

import (
	set3 "github.com/TomTonic/Set3"

	"github.com/TomTonic/spatialindex/keyenc"
)

// MultiMap is a crit-bit trie whose leaves hold a Set3 of values per key
// (the root package's "kd-tree" engine is built on KDTree, not on this
// type), grounded directly on the
// teacher's multi_map.go kvp{key, val *set3.Set3[T]} shape — just
// re-hosted on a real crit-bit Tree instead of multi_map.go's linear scan
// over a slice.
type MultiMap[T comparable] struct {
	tree *Tree[*set3.Set3[T]]
}

// NewMultiMap constructs an empty multimap over keys of the given bit
// width.
func NewMultiMap[T comparable](width int) (*MultiMap[T], error) {
	tree, err := New[*set3.Set3[T]](width)
	if err != nil {
		return nil, err
	}
	return &MultiMap[T]{tree: tree}, nil
}

// PutValue adds v to the set of values stored at key, creating the key's
// entry if it does not already exist.
func (m *MultiMap[T]) PutValue(key keyenc.Key, v T) {
	if set, ok := m.tree.Get(key); ok {
		set.Add(v)
		return
	}
	set := set3.Empty[T]()
	set.Add(v)
	m.tree.Put(key, set)
}

// RemoveValue removes v from the set of values stored at key. No-op if key
// is absent.
func (m *MultiMap[T]) RemoveValue(key keyenc.Key, v T) {
	if set, ok := m.tree.Get(key); ok {
		set.Remove(v)
	}
}

// ContainsKey reports whether key has any associated values.
func (m *MultiMap[T]) ContainsKey(key keyenc.Key) bool {
	return m.tree.Contains(key)
}

// RemoveKey deletes key and every value associated with it.
func (m *MultiMap[T]) RemoveKey(key keyenc.Key) {
	m.tree.Remove(key)
}

// GetValuesFor returns a clone of the set of values stored at key, or an
// empty set if key is absent.
func (m *MultiMap[T]) GetValuesFor(key keyenc.Key) *set3.Set3[T] {
	if set, ok := m.tree.Get(key); ok {
		return set.Clone()
	}
	return set3.EmptyWithCapacity[T](0)
}

// Size returns the number of distinct keys stored.
func (m *MultiMap[T]) Size() int { return m.tree.Size() }

// GetValuesBetweenInclusive returns the union of every value set whose key
// falls in [from,to].
func (m *MultiMap[T]) GetValuesBetweenInclusive(from, to keyenc.Key) *set3.Set3[T] {
	result := set3.Empty[T]()
	it := m.tree.Query(from, to)
	for it.HasNext() {
		_, set, _ := it.Next()
		result.AddAll(set)
	}
	return result
}

// CheckInvariants delegates to the underlying trie (spec.md §4, "Debug
// invariant assertions"); per-key value sets are opaque Set3 instances with
// no further structural invariant this package can check without a
// grounded enumeration API.
func (m *MultiMap[T]) CheckInvariants() error { return m.tree.CheckInvariants() }
