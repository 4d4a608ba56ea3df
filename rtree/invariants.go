package rtree

import (
	"github.com/TomTonic/spatialindex/errs"
	"github.com/TomTonic/spatialindex/geom"
)

// CheckInvariants walks the whole tree and returns the first violation found
// (spec.md §4, "Debug invariant assertions"). Never called from a hot path —
// an opt-in debugging aid only.
func (t *Tree[V]) CheckInvariants() error {
	size, err := t.checkNode(t.root, nilIndex, t.depth-1)
	if err != nil {
		return err
	}
	if size != t.size {
		return errs.ErrInvariantViolation
	}
	return nil
}

// checkNode validates the subtree rooted at idx, expected to sit at level
// (leaf level 0) and parented by wantParent. It returns the number of
// entries in the subtree.
func (t *Tree[V]) checkNode(idx nodeIndex, wantParent nodeIndex, level int) (int, error) {
	n := t.arena.get(idx)
	if n.parent != wantParent {
		return 0, errs.ErrInvariantViolation
	}
	isRoot := wantParent == nilIndex
	if n.isLeaf {
		if level != 0 {
			return 0, errs.ErrInvariantViolation
		}
		if !isRoot && (len(n.entries) < t.cfg.NodeMinData || len(n.entries) > t.cfg.NodeMaxData) {
			return 0, errs.ErrInvariantViolation
		}
		var union geom.Box
		for i, e := range n.entries {
			if !n.box.Contains(e.box) {
				return 0, errs.ErrInvariantViolation
			}
			if i == 0 {
				union = e.box.Clone()
			} else {
				union = union.Union(e.box)
			}
		}
		if len(n.entries) > 0 && !boxEqualTight(n.box, union) {
			return 0, errs.ErrInvariantViolation
		}
		return len(n.entries), nil
	}
	if level <= 0 {
		return 0, errs.ErrInvariantViolation
	}
	if !isRoot && (len(n.children) < t.cfg.NodeMinDir || len(n.children) > t.cfg.NodeMaxDir) {
		return 0, errs.ErrInvariantViolation
	}
	if isRoot && len(n.children) < 1 {
		return 0, errs.ErrInvariantViolation
	}
	total := 0
	var union geom.Box
	for i, c := range n.children {
		cn := t.arena.get(c)
		if !n.box.Contains(cn.box) {
			return 0, errs.ErrInvariantViolation
		}
		sub, err := t.checkNode(c, idx, level-1)
		if err != nil {
			return 0, err
		}
		total += sub
		if i == 0 {
			union = cn.box.Clone()
		} else {
			union = union.Union(cn.box)
		}
	}
	if len(n.children) > 0 && !boxEqualTight(n.box, union) {
		return 0, errs.ErrInvariantViolation
	}
	return total, nil
}

// boxEqualTight compares coordinates within the quadtree's same IEEE-754
// tolerance (geom.EPSMul) rather than requiring bit-exact equality, since a
// node's stored box is recomputed by repeated Union calls whose accumulated
// rounding can differ in the last bit from a single fresh union.
func boxEqualTight(a, b geom.Box) bool {
	for i := range a.Min {
		tol := (b.Max[i] - b.Min[i]) * (geom.EPSMul - 1)
		if tol < 1e-9 {
			tol = 1e-9
		}
		if abs(a.Min[i]-b.Min[i]) > tol || abs(a.Max[i]-b.Max[i]) > tol {
			return false
		}
	}
	return true
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
