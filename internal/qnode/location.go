package qnode

import (
	"context"
	"fmt"
)

// LocationNode matches documents where at least one of its child's
// positions equals exactly K (spec.md §4.2.9).
type LocationNode struct {
	NodeBase
	K Location
}

func NewLocation(child Node, k Location) *LocationNode {
	n := &LocationNode{NodeBase: NewNodeBase(), K: k}
	n.SetChildren([]Node{child})
	return n
}

func (n *LocationNode) child() Node { return n.Children()[0] }

func (n *LocationNode) LowerBound(ctx context.Context, g DocumentID, mode Mode) (DocumentID, bool, error) {
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

func (n *LocationNode) Evaluate(ctx context.Context, d DocumentID, mode Mode) (bool, error) {
	if result, known := n.CheckMemo(d); known {
		return result, nil
	}
	found, ok, err := n.LowerBound(ctx, d, mode)
	if err != nil {
		return false, err
	}
	return ok && found == d, nil
}

func (n *LocationNode) Reevaluate(ctx context.Context, d DocumentID) (bool, uint32, LocationIterator, error) {
	matched, _, it, err := n.child().Reevaluate(ctx, d)
	if err != nil || !matched {
		return false, 0, nil, err
	}
	if it == nil {
		return true, 1, nil, nil
	}
	defer it.Release()
	var tf uint32
	for {
		l, ok := it.Next()
		if !ok {
			break
		}
		if l == n.K {
			tf++
		}
	}
	return tf > 0, tf, nil, nil
}

func (n *LocationNode) EvaluateScore(ctx context.Context, d DocumentID, mode Mode) (Score, bool, error) {
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

func (n *LocationNode) LowerBoundScore(ctx context.Context, g DocumentID, mode Mode) (DocumentID, Score, bool, error) {
	d, ok, err := n.LowerBound(ctx, g, mode.WithoutRough())
	if err != nil || !ok {
		return 0, 0, false, err
	}
	s, scored, err := n.EvaluateScore(ctx, d, mode)
	return d, s, scored, err
}

func (n *LocationNode) Retrieve(ctx context.Context, mode Mode) (ResultSet, error) {
	return retrieveByLowerBound(ctx, n, mode)
}

func (n *LocationNode) CanonicalString() string {
	return fmt.Sprintf("#loc[%d](%s)", n.K, n.child().CanonicalString())
}

// retrieveByLowerBound is the shared bulk-retrieve loop used by the
// simpler node variants (Location, End, Word, All).
func retrieveByLowerBound(ctx context.Context, n Node, mode Mode) (ResultSet, error) {
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
			if s, scored, err := n.EvaluateScore(ctx, d, mode); err != nil {
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
