package qnode

import (
	"context"
	"fmt"
)

// EndNode matches documents where at least one child position is within
// K of the document's length, looked up via DocumentLengthFile (spec.md
// §4.2.9). It is the trailing-boundary test OrderedDistanceNode attaches
// via SetEndNode for WordOrderedDistance matching.
type EndNode struct {
	NodeBase
	K       int
	Lengths DocumentLengthFile
}

func NewEnd(child Node, k int, lengths DocumentLengthFile) *EndNode {
	n := &EndNode{NodeBase: NewNodeBase(), K: k, Lengths: lengths}
	n.SetChildren([]Node{child})
	return n
}

func (n *EndNode) child() Node { return n.Children()[0] }

func (n *EndNode) LowerBound(ctx context.Context, g DocumentID, mode Mode) (DocumentID, bool, error) {
	if found, failed, known := n.CheckMemoLowerBound(g); known {
		return found, !failed, nil
	}
	candidate := g
	for {
		if ctx.Err() != nil {
			return 0, false, ctx.Err()
		}
		d, ok, err := n.child().LowerBound(ctx, candidate, mode.WithRough())
		if err != nil || !ok {
			n.RecordResult(g, 0, false, mode.IsRough(), false)
			return 0, false, err
		}
		matched, _, _, err := n.Reevaluate(ctx, d)
		if err != nil {
			return 0, false, err
		}
		if matched {
			n.RecordResult(g, d, true, mode.IsRough(), false)
			return d, true, nil
		}
		candidate = d + 1
	}
}

func (n *EndNode) Evaluate(ctx context.Context, d DocumentID, mode Mode) (bool, error) {
	if result, known := n.CheckMemo(d); known {
		return result, nil
	}
	found, ok, err := n.LowerBound(ctx, d, mode)
	if err != nil {
		return false, err
	}
	return ok && found == d, nil
}

func (n *EndNode) Reevaluate(ctx context.Context, d DocumentID) (bool, uint32, LocationIterator, error) {
	matched, _, it, err := n.child().Reevaluate(ctx, d)
	if err != nil || !matched {
		return false, 0, nil, err
	}
	if it == nil {
		return true, 1, nil, nil
	}
	defer it.Release()
	length := uint32(0)
	if n.Lengths != nil {
		if l, err := n.Lengths.Length(ctx, d); err == nil {
			length = l
		}
	}
	var tf uint32
	for {
		l, ok := it.Next()
		if !ok {
			break
		}
		if int(length)-int(l) <= n.K {
			tf++
		}
	}
	return tf > 0, tf, nil, nil
}

func (n *EndNode) EvaluateScore(ctx context.Context, d DocumentID, mode Mode) (Score, bool, error) {
	matched, err := n.Evaluate(ctx, d, mode.WithoutRough())
	if err != nil || !matched {
		return 0, false, err
	}
	_, tf, _, err := n.Reevaluate(ctx, d)
	if err != nil {
		return 0, false, err
	}
	return Score(tf), true, nil
}

func (n *EndNode) LowerBoundScore(ctx context.Context, g DocumentID, mode Mode) (DocumentID, Score, bool, error) {
	d, ok, err := n.LowerBound(ctx, g, mode.WithoutRough())
	if err != nil || !ok {
		return 0, 0, false, err
	}
	s, scored, err := n.EvaluateScore(ctx, d, mode)
	return d, s, scored, err
}

func (n *EndNode) Retrieve(ctx context.Context, mode Mode) (ResultSet, error) {
	return retrieveByLowerBound(ctx, n, mode)
}

func (n *EndNode) CanonicalString() string {
	return fmt.Sprintf("#end[%d](%s)", n.K, n.child().CanonicalString())
}
