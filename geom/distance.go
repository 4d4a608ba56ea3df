package geom

import "math"

// PointDistance measures the distance between two points. L2 (below) is the
// default; callers may plug in any non-negative, symmetric function.
type PointDistance func(a, b Point) float64

// BoxDistance measures the distance from a query point to a box. EdgeDistance
// is the default for box-keyed k-NN; CenterDistance is the alternative named
// in spec.md §4.5.
type BoxDistance func(center Point, b Box) float64

// EdgeDistance is zero if center lies inside b, else the Euclidean distance
// from center to the nearest point on b's boundary.
func EdgeDistance(center Point, b Box) float64 {
	return math.Sqrt(EdgeDistanceSquared(center, b))
}

// EdgeDistanceSquared avoids the square root; this is also the "closest
// possible distance" lower bound the k-NN search (spec.md §4.6) needs for
// node bounding boxes, since it never overestimates the true distance to any
// point that could be stored within b.
func EdgeDistanceSquared(center Point, b Box) float64 {
	var sum float64
	for i := range center {
		v := center[i]
		switch {
		case v < b.Min[i]:
			d := b.Min[i] - v
			sum += d * d
		case v > b.Max[i]:
			d := v - b.Max[i]
			sum += d * d
		}
	}
	return sum
}

// CenterDistance is the Euclidean distance from center to b's midpoint.
func CenterDistance(center Point, b Box) float64 {
	return L2(center, b.Center())
}

// FarEdgeDistance is the Euclidean distance from center to b's farthest
// corner: an upper bound on the distance from center to any point
// contained in b. Used as the node-pruning bound for farthest-first search
// (geom.FarNeighbor): a lower bound on 1/d for every entry in a subtree
// requires an upper bound on the true distance d.
func FarEdgeDistance(center Point, b Box) float64 {
	return math.Sqrt(FarEdgeDistanceSquared(center, b))
}

// FarEdgeDistanceSquared avoids the square root.
func FarEdgeDistanceSquared(center Point, b Box) float64 {
	var sum float64
	for i := range center {
		d := math.Max(center[i]-b.Min[i], b.Max[i]-center[i])
		sum += d * d
	}
	return sum
}

// FarNeighbor wraps a BoxDistance so that best-first search (spec.md §4.5,
// "Far-neighbor wrapper") over the same min-heap machinery enumerates
// farthest-first instead of nearest-first: 1/0 distances (exact containment)
// are mapped to +Inf so they still sort last under farthest-first order.
func FarNeighbor(d BoxDistance) BoxDistance {
	return func(center Point, b Box) float64 {
		v := d(center, b)
		if v == 0 {
			return math.Inf(1)
		}
		return 1 / v
	}
}

// FarNeighborPoint is FarNeighbor's point-to-point counterpart, used by the
// quadtree (which keys entries by Point rather than Box) to repurpose the
// same best-first iterator for farthest-first enumeration.
func FarNeighborPoint(d PointDistance) PointDistance {
	return func(a, b Point) float64 {
		v := d(a, b)
		if v == 0 {
			return math.Inf(1)
		}
		return 1 / v
	}
}
