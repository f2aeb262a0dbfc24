package qnode

import "context"

// AndNotNode is the form validation actually produces for "A and not B"
// via De Morgan pushdown (spec.md §4.3 step 4, §8.4 scenario 6): a
// positive child scanned normally, and a set of excluded children that
// are only ever Evaluate()'d, never scanned. It behaves like AndNode
// intersected with the complement of an OR of the excluded children.
type AndNotNode struct {
	NodeBase
	Positive Node
	Excluded []Node
}

func NewAndNot(positive Node, excluded ...Node) *AndNotNode {
	n := &AndNotNode{NodeBase: NewNodeBase(), Positive: positive, Excluded: excluded}
	n.SetChildren(append([]Node{positive}, excluded...))
	return n
}

func (n *AndNotNode) excludedMatches(ctx context.Context, d DocumentID) (bool, error) {
	for _, e := range n.Excluded {
		matched, err := e.Evaluate(ctx, d, 0)
		if err != nil {
			return false, err
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}

func (n *AndNotNode) LowerBound(ctx context.Context, g DocumentID, mode Mode) (DocumentID, bool, error) {
	if found, failed, known := n.CheckMemoLowerBound(g); known {
		return found, !failed, nil
	}
	candidate := g
	for {
		if ctx.Err() != nil {
			return 0, false, ctx.Err()
		}
		d, ok, err := n.Positive.LowerBound(ctx, candidate, mode)
		if err != nil {
			return 0, false, err
		}
		if !ok {
			n.RecordResult(g, 0, false, mode.IsRough(), false)
			return 0, false, nil
		}
		excluded, err := n.excludedMatches(ctx, d)
		if err != nil {
			return 0, false, err
		}
		if !excluded {
			n.RecordResult(g, d, true, mode.IsRough(), false)
			return d, true, nil
		}
		candidate = d + 1
	}
}

func (n *AndNotNode) Evaluate(ctx context.Context, d DocumentID, mode Mode) (bool, error) {
	if result, known := n.CheckMemo(d); known {
		return result, nil
	}
	found, ok, err := n.LowerBound(ctx, d, mode)
	if err != nil {
		return false, err
	}
	return ok && found == d, nil
}

func (n *AndNotNode) EvaluateScore(ctx context.Context, d DocumentID, mode Mode) (Score, bool, error) {
	matched, err := n.Evaluate(ctx, d, mode.WithoutRough())
	if err != nil || !matched {
		return 0, false, err
	}
	return n.Positive.EvaluateScore(ctx, d, mode)
}

func (n *AndNotNode) LowerBoundScore(ctx context.Context, g DocumentID, mode Mode) (DocumentID, Score, bool, error) {
	d, ok, err := n.LowerBound(ctx, g, mode.WithoutRough())
	if err != nil || !ok {
		return 0, 0, false, err
	}
	s, scored, err := n.Positive.EvaluateScore(ctx, d, mode)
	return d, s, scored, err
}

func (n *AndNotNode) Retrieve(ctx context.Context, mode Mode) (ResultSet, error) {
	var out ResultSet
	g := DocumentID(1)
	for {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		d, ok, err := n.LowerBound(ctx, g, mode)
		if err != nil {
			return out, err
		}
		if !ok {
			break
		}
		entry := ResultEntry{Doc: d}
		if mode.IsRanking() {
			if s, scored, err := n.Positive.EvaluateScore(ctx, d, mode); err != nil {
				return out, err
			} else if scored {
				entry.Score = s
			}
		}
		out = append(out, entry)
		g = d + 1
	}
	return out, nil
}

func (n *AndNotNode) Reevaluate(ctx context.Context, d DocumentID) (bool, uint32, LocationIterator, error) {
	excluded, err := n.excludedMatches(ctx, d)
	if err != nil || excluded {
		return false, 0, nil, err
	}
	return n.Positive.Reevaluate(ctx, d)
}

func (n *AndNotNode) CanonicalString() string {
	return joinChildren("#and-not", n.Children())
}
