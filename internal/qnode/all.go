package qnode

import "context"

// AllNode matches every document between an inverted file's min and max
// document ids. Validation produces one whenever De Morgan pushdown
// flips a NOT whose operand degenerated to EmptySet (spec.md §4.3 step
// 4): "not nothing" is vacuously every document, not no document.
type AllNode struct {
	NodeBase
	File InvertedFile
}

func NewAll(file InvertedFile) *AllNode {
	return &AllNode{NodeBase: NewNodeBase(), File: file}
}

func (n *AllNode) LowerBound(ctx context.Context, g DocumentID, mode Mode) (DocumentID, bool, error) {
	if n.File == nil {
		return g, true, nil
	}
	max, err := n.File.GetMaxDocumentID(ctx)
	if err != nil {
		return 0, false, err
	}
	if g > max {
		return 0, false, nil
	}
	min, err := n.File.GetMinDocumentID(ctx)
	if err != nil {
		return 0, false, err
	}
	if g < min {
		g = min
	}
	return g, true, nil
}

func (n *AllNode) Evaluate(ctx context.Context, d DocumentID, mode Mode) (bool, error) {
	found, ok, err := n.LowerBound(ctx, d, mode)
	return ok && found == d, err
}

func (n *AllNode) EvaluateScore(ctx context.Context, d DocumentID, mode Mode) (Score, bool, error) {
	matched, err := n.Evaluate(ctx, d, mode)
	if err != nil || !matched {
		return 0, false, err
	}
	return 1, true, nil
}

func (n *AllNode) LowerBoundScore(ctx context.Context, g DocumentID, mode Mode) (DocumentID, Score, bool, error) {
	d, ok, err := n.LowerBound(ctx, g, mode)
	if err != nil || !ok {
		return 0, 0, false, err
	}
	return d, 1, true, nil
}

func (n *AllNode) Retrieve(ctx context.Context, mode Mode) (ResultSet, error) {
	return retrieveByLowerBound(ctx, n, mode)
}

func (n *AllNode) Reevaluate(ctx context.Context, d DocumentID) (bool, uint32, LocationIterator, error) {
	return true, 1, nil, nil
}

func (n *AllNode) CanonicalString() string { return "#all()" }
