package critbit

import (
	"github.com/TomTonic/spatialindex/errs"
	"github.com/TomTonic/spatialindex/keyenc"
)

// CheckInvariants walks the whole trie and returns the first violation found
// (spec.md §4, "Debug invariant assertions"). Never called from a hot path —
// an opt-in debugging aid only.
func (t *Tree[V]) CheckInvariants() error {
	n, err := checkSlot(t.root, -1)
	if err != nil {
		return err
	}
	if n != t.size {
		return errs.ErrInvariantViolation
	}
	return nil
}

// checkSlot validates s, whose posDiff (if a subnode) must be strictly
// greater than parentPosDiff, and returns the number of leaves beneath it.
func checkSlot[V any](s slot[V], parentPosDiff int) (int, error) {
	switch s.kind {
	case slotEmpty:
		return 0, nil
	case slotLeaf:
		return 1, nil
	case slotSub:
		if s.sub == nil {
			return 0, errs.ErrInvariantViolation
		}
		if s.sub.posDiff <= parentPosDiff {
			return 0, errs.ErrInvariantViolation
		}
		if s.sub.lo.kind == slotEmpty || s.sub.hi.kind == slotEmpty {
			return 0, errs.ErrInvariantViolation
		}
		loKeys, err := collectKeys(s.sub.lo, nil)
		if err != nil {
			return 0, err
		}
		for _, k := range loKeys {
			if getBit(k, s.sub.posDiff) != 0 {
				return 0, errs.ErrInvariantViolation
			}
		}
		hiKeys, err := collectKeys(s.sub.hi, nil)
		if err != nil {
			return 0, err
		}
		for _, k := range hiKeys {
			if getBit(k, s.sub.posDiff) != 1 {
				return 0, errs.ErrInvariantViolation
			}
		}
		loN, err := checkSlot(s.sub.lo, s.sub.posDiff)
		if err != nil {
			return 0, err
		}
		hiN, err := checkSlot(s.sub.hi, s.sub.posDiff)
		if err != nil {
			return 0, err
		}
		return loN + hiN, nil
	default:
		return 0, errs.ErrInvariantViolation
	}
}

// collectKeys gathers every leaf key beneath s, used only by the invariant
// checker to verify posDiff partitioning (not on any hot path).
func collectKeys[V any](s slot[V], out []keyenc.Key) ([]keyenc.Key, error) {
	switch s.kind {
	case slotEmpty:
		return out, nil
	case slotLeaf:
		return append(out, s.key), nil
	case slotSub:
		var err error
		out, err = collectKeys(s.sub.lo, out)
		if err != nil {
			return nil, err
		}
		out, err = collectKeys(s.sub.hi, out)
		if err != nil {
			return nil, err
		}
		return out, nil
	default:
		return nil, errs.ErrInvariantViolation
	}
}
