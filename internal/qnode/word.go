package qnode

import "context"

// WordNode applies a word-boundary constraint to its child, using the
// boundary token's posting list — the empty string in the dual-index
// boundary list (spec.md §4.2.9). Reevaluate only requires that the
// boundary token occurs somewhere in document d: it does not compare the
// boundary token's positions with the child's matched positions, and
// CheckPre/CheckPost do not select a side (either one set enables the
// document-level check). The validate package does not construct
// WordNodes.
type WordNode struct {
	NodeBase
	Boundary InvertedList // the boundary token's posting list ("" key)
	CheckPre  bool
	CheckPost bool
}

func NewWord(child Node, boundary InvertedList, checkPre, checkPost bool) *WordNode {
	n := &WordNode{NodeBase: NewNodeBase(), Boundary: boundary, CheckPre: checkPre, CheckPost: checkPost}
	n.SetChildren([]Node{child})
	return n
}

func (n *WordNode) child() Node { return n.Children()[0] }

func (n *WordNode) LowerBound(ctx context.Context, g DocumentID, mode Mode) (DocumentID, bool, error) {
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

func (n *WordNode) Evaluate(ctx context.Context, d DocumentID, mode Mode) (bool, error) {
	if result, known := n.CheckMemo(d); known {
		return result, nil
	}
	found, ok, err := n.LowerBound(ctx, d, mode)
	if err != nil {
		return false, err
	}
	return ok && found == d, nil
}

// Reevaluate: if no boundary list is configured (non-dual index), the
// word-boundary constraint cannot be checked and the match passes through
// unchecked — dual-only semantics, matching spec.md §4.1.3.
func (n *WordNode) Reevaluate(ctx context.Context, d DocumentID) (bool, uint32, LocationIterator, error) {
	matched, tf, it, err := n.child().Reevaluate(ctx, d)
	if err != nil || !matched {
		return false, 0, nil, err
	}
	if n.Boundary == nil || (!n.CheckPre && !n.CheckPost) {
		return true, tf, it, nil
	}
	boundaryDoc, btf, ok, err := n.Boundary.LowerBound(ctx, d)
	if err != nil {
		return false, 0, nil, err
	}
	if !ok || boundaryDoc != d || btf == 0 {
		return false, 0, nil, nil
	}
	return true, tf, it, nil
}

func (n *WordNode) EvaluateScore(ctx context.Context, d DocumentID, mode Mode) (Score, bool, error) {
	matched, err := n.Evaluate(ctx, d, mode.WithoutRough())
	if err != nil || !matched {
		return 0, false, err
	}
	return n.child().EvaluateScore(ctx, d, mode)
}

func (n *WordNode) LowerBoundScore(ctx context.Context, g DocumentID, mode Mode) (DocumentID, Score, bool, error) {
	d, ok, err := n.LowerBound(ctx, g, mode.WithoutRough())
	if err != nil || !ok {
		return 0, 0, false, err
	}
	s, scored, err := n.EvaluateScore(ctx, d, mode)
	return d, s, scored, err
}

func (n *WordNode) Retrieve(ctx context.Context, mode Mode) (ResultSet, error) {
	return retrieveByLowerBound(ctx, n, mode)
}

func (n *WordNode) CanonicalString() string {
	return "#word(" + n.child().CanonicalString() + ")"
}
