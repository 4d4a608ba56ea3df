package geom

// Box is an axis-aligned box given by its Min and Max corner points, with
// the caller-owed invariant Min[i] <= Max[i] in every dimension (spec.md §3:
// "the index does not enforce nor repair violations").
type Box struct {
	Min Point
	Max Point
}

// Dim returns the dimensionality of the box.
func (b Box) Dim() int { return len(b.Min) }

// Clone returns an independent copy of b.
func (b Box) Clone() Box {
	return Box{Min: b.Min.Clone(), Max: b.Max.Clone()}
}

// Equal reports whether two boxes have identical corners.
func (b Box) Equal(other Box) bool {
	return b.Min.Equal(other.Min) && b.Max.Equal(other.Max)
}

// PointBox returns the degenerate box whose Min and Max both equal p; used
// to store point keys in a box-keyed tree (R*-tree, quadtree).
func PointBox(p Point) Box {
	return Box{Min: p, Max: p}
}

// Contains reports whether b fully contains other.
func (b Box) Contains(other Box) bool {
	for i := range b.Min {
		if other.Min[i] < b.Min[i] || other.Max[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether b contains p.
func (b Box) ContainsPoint(p Point) bool {
	for i := range b.Min {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Intersects reports whether b and other share at least one point.
func (b Box) Intersects(other Box) bool {
	for i := range b.Min {
		if b.Max[i] < other.Min[i] || b.Min[i] > other.Max[i] {
			return false
		}
	}
	return true
}

// Union returns the smallest box enclosing both b and other.
func Union(a, b Box) Box {
	d := a.Dim()
	min := make(Point, d)
	max := make(Point, d)
	for i := 0; i < d; i++ {
		min[i] = minF(a.Min[i], b.Min[i])
		max[i] = maxF(a.Max[i], b.Max[i])
	}
	return Box{Min: min, Max: max}
}

// Union returns the smallest box enclosing both b and other.
func (b Box) Union(other Box) Box {
	return Union(b, other)
}

// Extend returns a new Box covering both b and other; b itself is left
// unchanged (Point is a slice header callers may still hold).
func (b Box) Extend(other Box) Box {
	return Union(b, other)
}

// Area returns the product of b's per-dimension extents (the hypervolume).
func (b Box) Area() float64 {
	area := 1.0
	for i := range b.Min {
		area *= b.Max[i] - b.Min[i]
	}
	return area
}

// Margin returns the sum of b's per-dimension extents, used by the R*-tree
// split axis heuristic (spec.md §4.2.1: "smallest total margin sum").
func (b Box) Margin() float64 {
	var m float64
	for i := range b.Min {
		m += b.Max[i] - b.Min[i]
	}
	return m
}

// OverlapArea returns the hypervolume of the intersection of a and b, or 0
// if they do not overlap.
func OverlapArea(a, b Box) float64 {
	area := 1.0
	for i := range a.Min {
		lo := maxF(a.Min[i], b.Min[i])
		hi := minF(a.Max[i], b.Max[i])
		if hi <= lo {
			return 0
		}
		area *= hi - lo
	}
	return area
}

// OverlapArea returns the hypervolume of the intersection of b and other, or
// 0 if they do not overlap.
func (b Box) OverlapArea(other Box) float64 {
	return OverlapArea(b, other)
}

// Center returns the midpoint of b.
func (b Box) Center() Point {
	c := make(Point, b.Dim())
	for i := range b.Min {
		c[i] = (b.Min[i] + b.Max[i]) / 2
	}
	return c
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
