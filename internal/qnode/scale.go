package qnode

import (
	"context"
	"fmt"
)

// ScaleNode multiplies its child's score by a fixed Factor without
// affecting boolean membership.
type ScaleNode struct {
	NodeBase
	Factor Score
}

func NewScale(child Node, factor Score) *ScaleNode {
	n := &ScaleNode{NodeBase: NewNodeBase(), Factor: factor}
	n.SetChildren([]Node{child})
	return n
}

func (n *ScaleNode) child() Node { return n.Children()[0] }

func (n *ScaleNode) Evaluate(ctx context.Context, d DocumentID, mode Mode) (bool, error) {
	return n.child().Evaluate(ctx, d, mode)
}

func (n *ScaleNode) LowerBound(ctx context.Context, g DocumentID, mode Mode) (DocumentID, bool, error) {
	return n.child().LowerBound(ctx, g, mode)
}

func (n *ScaleNode) EvaluateScore(ctx context.Context, d DocumentID, mode Mode) (Score, bool, error) {
	s, ok, err := n.child().EvaluateScore(ctx, d, mode)
	if err != nil || !ok {
		return 0, false, err
	}
	return s * n.Factor, true, nil
}

func (n *ScaleNode) LowerBoundScore(ctx context.Context, g DocumentID, mode Mode) (DocumentID, Score, bool, error) {
	d, s, ok, err := n.child().LowerBoundScore(ctx, g, mode)
	if err != nil || !ok {
		return 0, 0, false, err
	}
	return d, s * n.Factor, true, nil
}

func (n *ScaleNode) Retrieve(ctx context.Context, mode Mode) (ResultSet, error) {
	rs, err := n.child().Retrieve(ctx, mode)
	if err != nil {
		return nil, err
	}
	if mode.IsRanking() {
		for i := range rs {
			rs[i].Score *= n.Factor
		}
	}
	return rs, nil
}

func (n *ScaleNode) Reevaluate(ctx context.Context, d DocumentID) (bool, uint32, LocationIterator, error) {
	return n.child().Reevaluate(ctx, d)
}

func (n *ScaleNode) CanonicalString() string {
	return fmt.Sprintf("#scale[%v](%s)", n.Factor, n.child().CanonicalString())
}
