package rtree

import (
	"math"
	"sort"

	"github.com/TomTonic/spatialindex/geom"
)

// splitDecision names the chosen distribution for a node split: order is a
// permutation of [0,len) and splitPoint divides it into the two groups.
type splitDecision struct {
	order      []int
	splitPoint int
}

func sortedIndices(boxes []geom.Box, axis int, byMin bool) []int {
	order := make([]int, len(boxes))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		if byMin {
			return boxes[order[i]].Min[axis] < boxes[order[j]].Min[axis]
		}
		return boxes[order[i]].Max[axis] < boxes[order[j]].Max[axis]
	})
	return order
}

func unionAt(boxes []geom.Box, idxs []int) geom.Box {
	b := boxes[idxs[0]].Clone()
	for _, i := range idxs[1:] {
		b = b.Union(boxes[i])
	}
	return b
}

// chooseSplit implements spec.md §4.2.1's split algorithm: pick the axis
// with the smallest total margin sum over every valid distribution, then
// on that axis pick the distribution with the smallest overlap (ties
// broken by smaller total area).
func chooseSplit(boxes []geom.Box, minCount, maxCount int) splitDecision {
	dims := boxes[0].Dim()
	lastSplit := maxCount - minCount + 1

	bestAxisMargin := math.Inf(1)
	var bestByMin, bestByMax []int
	for axis := 0; axis < dims; axis++ {
		byMin := sortedIndices(boxes, axis, true)
		byMax := sortedIndices(boxes, axis, false)
		marginSum := 0.0
		for _, order := range [2][]int{byMin, byMax} {
			for split := minCount; split <= lastSplit; split++ {
				b1 := unionAt(boxes, order[:split])
				b2 := unionAt(boxes, order[split:])
				marginSum += b1.Margin() + b2.Margin()
			}
		}
		if marginSum < bestAxisMargin {
			bestAxisMargin = marginSum
			bestByMin, bestByMax = byMin, byMax
		}
	}

	bestOverlap := math.Inf(1)
	bestArea := math.Inf(1)
	var bestOrder []int
	bestSplit := minCount
	for _, order := range [2][]int{bestByMin, bestByMax} {
		for split := minCount; split <= lastSplit; split++ {
			b1 := unionAt(boxes, order[:split])
			b2 := unionAt(boxes, order[split:])
			overlap := b1.OverlapArea(b2)
			area := b1.Area() + b2.Area()
			if overlap < bestOverlap || (overlap == bestOverlap && area < bestArea) {
				bestOverlap = overlap
				bestArea = area
				bestOrder = order
				bestSplit = split
			}
		}
	}
	return splitDecision{order: bestOrder, splitPoint: bestSplit}
}

// reorder returns a new slice holding s's elements permuted by order.
func reorder[T any](s []T, order []int) []T {
	out := make([]T, len(s))
	for i, idx := range order {
		out[i] = s[idx]
	}
	return out
}
