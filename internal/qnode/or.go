package qnode

import "context"

// OrNode evaluates children document-at-a-time, picking the smallest
// DocumentID among children that pass (spec.md §4.2.5). Scores are
// combined from child scores via the OR combiner (contrast AtomicOrNode,
// which computes one score over merged child TFs instead).
//
// ShortWord marks an OR built from short-word expansion (spec.md §3.3,
// §4.2.2): its rough and precise answers coincide by construction, so its
// memo is written even under rough evaluation.
type OrNode struct {
	NodeBase
	ShortWord bool
}

func NewOr(children ...Node) *OrNode {
	n := &OrNode{NodeBase: NewNodeBase()}
	n.SetChildren(children)
	return n
}

func (n *OrNode) IsShortWordOr() bool { return n.ShortWord }

func (n *OrNode) LowerBound(ctx context.Context, g DocumentID, mode Mode) (DocumentID, bool, error) {
	if found, failed, known := n.CheckMemoLowerBound(g); known {
		return found, !failed, nil
	}
	children := n.Children()
	var best DocumentID
	haveBest := false
	for _, c := range children {
		if ctx.Err() != nil {
			return 0, false, ctx.Err()
		}
		d, ok, err := c.LowerBound(ctx, g, mode.WithRough())
		if err != nil {
			return 0, false, err
		}
		if !ok {
			continue
		}
		if !haveBest || d < best {
			best = d
			haveBest = true
		}
	}
	n.RecordResult(g, best, haveBest, mode.IsRough(), n.ShortWord)
	return best, haveBest, nil
}

func (n *OrNode) Evaluate(ctx context.Context, d DocumentID, mode Mode) (bool, error) {
	if result, known := n.CheckMemo(d); known {
		return result, nil
	}
	found, ok, err := n.LowerBound(ctx, d, mode)
	if err != nil {
		return false, err
	}
	return ok && found == d, nil
}

// matchingChildren returns the children that accept d, each with its
// ranking-mode score, recomputed precisely (not rough) since the caller
// already knows d matches.
func (n *OrNode) matchingChildren(ctx context.Context, d DocumentID, mode Mode) ([]Score, error) {
	scores := n.ScoreBuf[:0]
	for _, c := range n.Children() {
		matched, err := c.Evaluate(ctx, d, mode.WithoutRough())
		if err != nil {
			return nil, err
		}
		if !matched {
			continue
		}
		s, ok, err := c.EvaluateScore(ctx, d, mode)
		if err != nil {
			return nil, err
		}
		if ok {
			scores = append(scores, s)
		}
	}
	n.ScoreBuf = scores
	return scores, nil
}

func (n *OrNode) EvaluateScore(ctx context.Context, d DocumentID, mode Mode) (Score, bool, error) {
	matched, err := n.Evaluate(ctx, d, mode.WithoutRough())
	if err != nil || !matched {
		return 0, false, err
	}
	scores, err := n.matchingChildren(ctx, d, mode)
	if err != nil {
		return 0, false, err
	}
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

func (n *OrNode) LowerBoundScore(ctx context.Context, g DocumentID, mode Mode) (DocumentID, Score, bool, error) {
	d, ok, err := n.LowerBound(ctx, g, mode.WithoutRough())
	if err != nil || !ok {
		return 0, 0, false, err
	}
	s, scored, err := n.EvaluateScore(ctx, d, mode)
	return d, s, scored, err
}

func (n *OrNode) Retrieve(ctx context.Context, mode Mode) (ResultSet, error) {
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

func (n *OrNode) Reevaluate(ctx context.Context, d DocumentID) (bool, uint32, LocationIterator, error) {
	var maxTF uint32
	matched := false
	for _, c := range n.Children() {
		m, tf, _, err := c.Reevaluate(ctx, d)
		if err != nil {
			return false, 0, nil, err
		}
		if m {
			matched = true
			if tf > maxTF {
				maxTF = tf
			}
		}
	}
	return matched, maxTF, nil, nil
}

func (n *OrNode) CanonicalString() string {
	return joinChildren("#or", n.Children())
}
