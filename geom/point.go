// Package geom holds the shared geometric types and distance helpers that
// every tree engine in this module builds on: points, axis-aligned boxes,
// and the point-to-box / point-to-point distance functions the k-NN search
// protocol is parametrized over.
package geom

import "math"

// Point is a finite sequence of real-valued coordinates of fixed length d.
type Point []float64

// Clone returns an independent copy of p.
func (p Point) Clone() Point {
	if p == nil {
		return nil
	}
	c := make(Point, len(p))
	copy(c, p)
	return c
}

// Equal reports whether p and other have identical coordinates.
func (p Point) Equal(other Point) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Dim returns the number of coordinates in p.
func (p Point) Dim() int { return len(p) }

// EPSMul is the multiplicative tolerance absorbing IEEE-754 rounding at
// quadtree hypercube boundaries (spec.md §3, §9: "fits_in_node").
const EPSMul = 1 + 1e-12

// L2 returns the Euclidean distance between two points of equal dimension.
func L2(a, b Point) float64 {
	return math.Sqrt(L2Squared(a, b))
}

// L2Squared avoids the square root; useful for sort-comparisons where only
// relative order matters.
func L2Squared(a, b Point) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
