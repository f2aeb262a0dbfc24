package qnode

import "context"

// NotNode has no positive index scan of its own (spec.md §4.2.7): its
// LowerBound simply echoes back the candidate it was asked about, because
// a NOT can only be driven by an enclosing AND (see AndNotNode, which is
// what validation actually produces via De Morgan pushdown — spec.md
// §4.3 step 4). NotNode exists for completeness and for subtrees where
// pushdown was not possible.
type NotNode struct {
	NodeBase
}

func NewNot(child Node) *NotNode {
	n := &NotNode{NodeBase: NewNodeBase()}
	n.SetChildren([]Node{child})
	return n
}

func (n *NotNode) child() Node { return n.Children()[0] }

func (n *NotNode) Evaluate(ctx context.Context, d DocumentID, mode Mode) (bool, error) {
	matched, err := n.child().Evaluate(ctx, d, mode.WithoutRough())
	if err != nil {
		return false, err
	}
	return !matched, nil
}

// LowerBound cannot narrow the search on its own; it reports g itself as
// the "next candidate", leaving the enclosing AND to verify it via
// Evaluate. This matches spec.md §4.2.7: NOT is not self-scanning.
func (n *NotNode) LowerBound(ctx context.Context, g DocumentID, mode Mode) (DocumentID, bool, error) {
	return g, true, nil
}

func (n *NotNode) EvaluateScore(ctx context.Context, d DocumentID, mode Mode) (Score, bool, error) {
	matched, err := n.Evaluate(ctx, d, mode)
	if err != nil || !matched {
		return 0, false, err
	}
	return 0, true, nil
}

func (n *NotNode) LowerBoundScore(ctx context.Context, g DocumentID, mode Mode) (DocumentID, Score, bool, error) {
	return g, 0, true, nil
}

func (n *NotNode) Retrieve(ctx context.Context, mode Mode) (ResultSet, error) {
	return nil, nil
}

func (n *NotNode) Reevaluate(ctx context.Context, d DocumentID) (bool, uint32, LocationIterator, error) {
	matched, err := n.Evaluate(ctx, d, 0)
	return matched, 0, nil, err
}

func (n *NotNode) CanonicalString() string {
	return "#not(" + n.child().CanonicalString() + ")"
}
