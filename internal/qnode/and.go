package qnode

import (
	"context"
	"strings"
)

// AndNode is a boolean/ranking conjunction. LowerBound drives children
// document-at-a-time (spec.md §4.2.6): start from g, repeatedly ask the
// last child that disagreed for its own LowerBound, and recheck earlier
// children against that candidate, until every child agrees on one
// DocumentID. Children are driven in rough mode; outside rough mode the
// agreed candidate is then re-checked precisely via Reevaluate.
type AndNode struct {
	NodeBase
}

func NewAnd(children ...Node) *AndNode {
	n := &AndNode{NodeBase: NewNodeBase()}
	n.SetChildren(children)
	return n
}

func (n *AndNode) LowerBound(ctx context.Context, g DocumentID, mode Mode) (DocumentID, bool, error) {
	if found, failed, known := n.CheckMemoLowerBound(g); known {
		return found, !failed, nil
	}
	children := n.Children()
	if len(children) == 0 {
		n.RecordResult(g, 0, false, mode.IsRough(), false)
		return 0, false, nil
	}

	childMode := mode.WithRough()
	candidate := g
	for {
		if ctx.Err() != nil {
			return 0, false, ctx.Err()
		}
		agreed := true
		for _, c := range children {
			d, ok, err := c.LowerBound(ctx, candidate, childMode)
			if err != nil {
				return 0, false, err
			}
			if !ok {
				n.RecordResult(g, 0, false, mode.IsRough(), false)
				return 0, false, nil
			}
			if d != candidate {
				candidate = d
				agreed = false
				break
			}
		}
		if agreed {
			if !mode.IsRough() {
				matched, _, _, err := n.Reevaluate(ctx, candidate)
				if err != nil {
					return 0, false, err
				}
				if !matched {
					candidate++
					continue
				}
			}
			n.RecordResult(g, candidate, true, mode.IsRough(), false)
			return candidate, true, nil
		}
	}
}

func (n *AndNode) Evaluate(ctx context.Context, d DocumentID, mode Mode) (bool, error) {
	if result, known := n.CheckMemo(d); known {
		return result, nil
	}
	found, ok, err := n.LowerBound(ctx, d, mode)
	if err != nil {
		return false, err
	}
	return ok && found == d, nil
}

func (n *AndNode) EvaluateScore(ctx context.Context, d DocumentID, mode Mode) (Score, bool, error) {
	matched, err := n.Evaluate(ctx, d, mode.WithoutRough())
	if err != nil || !matched {
		return 0, false, err
	}
	return n.combineChildScores(ctx, d, mode)
}

func (n *AndNode) LowerBoundScore(ctx context.Context, g DocumentID, mode Mode) (DocumentID, Score, bool, error) {
	d, ok, err := n.LowerBound(ctx, g, mode.WithoutRough())
	if err != nil || !ok {
		return 0, 0, false, err
	}
	s, scored, err := n.combineChildScores(ctx, d, mode)
	return d, s, scored, err
}

func (n *AndNode) combineChildScores(ctx context.Context, d DocumentID, mode Mode) (Score, bool, error) {
	children := n.Children()
	scores := n.ScoreBuf[:0]
	for _, c := range children {
		s, ok, err := c.EvaluateScore(ctx, d, mode)
		if err != nil {
			return 0, false, err
		}
		if ok {
			scores = append(scores, s)
		}
	}
	n.ScoreBuf = scores
	if len(scores) == 0 {
		return 0, false, nil
	}
	if n.Combiner == nil {
		var sum Score
		for _, s := range scores {
			sum += s
		}
		return sum, true, nil
	}
	return n.Combiner.Apply(scores), true, nil
}

func (n *AndNode) Retrieve(ctx context.Context, mode Mode) (ResultSet, error) {
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
			if s, scored, err := n.combineChildScores(ctx, d, mode); err != nil {
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

func (n *AndNode) Reevaluate(ctx context.Context, d DocumentID) (bool, uint32, LocationIterator, error) {
	var tf uint32
	for _, c := range n.Children() {
		matched, childTF, _, err := c.Reevaluate(ctx, d)
		if err != nil {
			return false, 0, nil, err
		}
		if !matched {
			return false, 0, nil, nil
		}
		tf += childTF
	}
	return true, tf, nil, nil
}

func (n *AndNode) CanonicalString() string {
	return joinChildren("#and", n.Children())
}

func joinChildren(op string, children []Node) string {
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = c.CanonicalString()
	}
	return op + "(" + strings.Join(parts, ",") + ")"
}
