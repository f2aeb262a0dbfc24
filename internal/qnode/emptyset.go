package qnode

import "context"

// EmptySetNode matches no document. Validation produces one whenever a
// TermLeaf's tokens are absent from the index (spec.md §4.3 step 4); its
// parents prune accordingly (OR drops it, AND collapses to EmptySet, NOT
// flips to "matches everything").
type EmptySetNode struct {
	NodeBase
}

func NewEmptySet() *EmptySetNode {
	return &EmptySetNode{NodeBase: NewNodeBase()}
}

func (n *EmptySetNode) Evaluate(ctx context.Context, d DocumentID, mode Mode) (bool, error) {
	return false, nil
}

func (n *EmptySetNode) LowerBound(ctx context.Context, g DocumentID, mode Mode) (DocumentID, bool, error) {
	return 0, false, nil
}

func (n *EmptySetNode) EvaluateScore(ctx context.Context, d DocumentID, mode Mode) (Score, bool, error) {
	return 0, false, nil
}

func (n *EmptySetNode) LowerBoundScore(ctx context.Context, g DocumentID, mode Mode) (DocumentID, Score, bool, error) {
	return 0, 0, false, nil
}

func (n *EmptySetNode) Retrieve(ctx context.Context, mode Mode) (ResultSet, error) {
	return nil, nil
}

func (n *EmptySetNode) Reevaluate(ctx context.Context, d DocumentID) (bool, uint32, LocationIterator, error) {
	return false, 0, nil, nil
}

func (n *EmptySetNode) CanonicalString() string { return "#empty()" }
