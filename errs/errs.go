// Package errs defines the sentinel errors every tree engine and facade in
// this module returns for caller-facing failures (spec.md §7). Internal
// invariant violations that can only follow from a bug in this module — an
// impossible node tag, an out-of-range slot index — still panic, matching
// the teacher's own use of panic for "this should be impossible" situations
// (see TomTonic-multimap's art_node.go asNode5/asNode51/asNode256/asLeaf).
package errs

import "errors"

// ErrConfiguration is returned by a constructor given an invalid dimension,
// width, or node-capacity setting.
var ErrConfiguration = errors.New("spatialindex: invalid configuration")

// ErrDimensionMismatch is returned when a caller-supplied point or box has
// the wrong number of coordinates for the tree being queried.
var ErrDimensionMismatch = errors.New("spatialindex: dimension mismatch")

// ErrUnsupportedOperation is returned when an operation is invoked that the
// concrete iterator or tree variant does not support (e.g. Remove on an
// iterator other than the mixed range+k-NN iterator).
var ErrUnsupportedOperation = errors.New("spatialindex: unsupported operation")

// ErrIteratorExhausted is returned by Next after the iterator has already
// yielded its last entry.
var ErrIteratorExhausted = errors.New("spatialindex: iterator exhausted")

// ErrInvariantViolation is returned only by the opt-in CheckInvariants
// debug pass (spec.md §7, §9); it is never raised on a normal hot path.
var ErrInvariantViolation = errors.New("spatialindex: invariant violation")

// ErrOutOfDomain is returned by the quadtree when a key lies outside the
// root hypercube's fixed extent (spec.md §4.3.1: the root's center/radius
// are fixed at construction or on first insert and never grow afterward).
var ErrOutOfDomain = errors.New("spatialindex: key outside quadtree root domain")
