// Package combiner provides concrete qnode.ScoreCombiner implementations
// used by ranking AND/OR nodes to merge child scores (spec.md §6.2).
package combiner

import "github.com/orneryd/nornicdb/internal/qnode"

// Sum adds every child score. Associative and commutative, so validate's
// flatten/sort passes may freely reorder and merge nodes using it.
type Sum struct{}

func (Sum) Name() string { return "sum" }
func (Sum) Apply(scores []qnode.Score) qnode.Score {
	var total qnode.Score
	for _, s := range scores {
		total += s
	}
	return total
}
func (Sum) IsAssociative() bool { return true }
func (Sum) IsCommutative() bool { return true }

// Max takes the highest child score. Associative and commutative.
type Max struct{}

func (Max) Name() string { return "max" }
func (Max) Apply(scores []qnode.Score) qnode.Score {
	var best qnode.Score
	has := false
	for _, s := range scores {
		if !has || s > best {
			best, has = s, true
		}
	}
	return best
}
func (Max) IsAssociative() bool { return true }
func (Max) IsCommutative() bool { return true }

// Product multiplies every child score together, used for AND nodes that
// want joint-probability-style scoring rather than additive scoring.
type Product struct{}

func (Product) Name() string { return "product" }
func (Product) Apply(scores []qnode.Score) qnode.Score {
	total := qnode.Score(1)
	for _, s := range scores {
		total *= s
	}
	return total
}
func (Product) IsAssociative() bool { return true }
func (Product) IsCommutative() bool { return true }

// FirstNonZero returns the first non-zero child score in order, a
// non-commutative combiner: reordering children changes its result, so
// validate's sort pass must skip nodes configured with it (spec.md §4.3
// step 7).
type FirstNonZero struct{}

func (FirstNonZero) Name() string { return "first" }
func (FirstNonZero) Apply(scores []qnode.Score) qnode.Score {
	for _, s := range scores {
		if s != 0 {
			return s
		}
	}
	return 0
}
func (FirstNonZero) IsAssociative() bool { return false }
func (FirstNonZero) IsCommutative() bool { return false }

// New constructs a named combiner, mirroring the name-based factory
// contract scoring resources use (spec.md §6.2).
func New(name string) (qnode.ScoreCombiner, bool) {
	switch name {
	case "sum":
		return Sum{}, true
	case "max":
		return Max{}, true
	case "product":
		return Product{}, true
	case "first":
		return FirstNonZero{}, true
	default:
		return nil, false
	}
}
