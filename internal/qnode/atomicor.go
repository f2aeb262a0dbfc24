package qnode

import "context"

// AtomicOrNode is an OR whose score is a single calculator application
// over the union of child TFs, not a combiner over child scores (spec.md
// §4.2.5, glossary "AtomicOR"). Children are evaluated document-at-a-time
// exactly like OrNode; Reevaluate merges child position iterators via
// orLocationListIterator.
//
// ShortWord mirrors OrNode.ShortWord. When ShortWord is true and the mode
// bit CalAtomicOrTFByAddChildTF is set, TF is the sum of child TFs instead
// of the union-of-positions count — a deliberately preserved mode bit
// (spec.md §9 Open Questions); do not simplify this to always-sum.
type AtomicOrNode struct {
	NodeBase
	ShortWord bool
}

func NewAtomicOr(children ...Node) *AtomicOrNode {
	n := &AtomicOrNode{NodeBase: NewNodeBase()}
	n.SetChildren(children)
	return n
}

func (n *AtomicOrNode) IsShortWordOr() bool { return n.ShortWord }

func (n *AtomicOrNode) LowerBound(ctx context.Context, g DocumentID, mode Mode) (DocumentID, bool, error) {
	if found, failed, known := n.CheckMemoLowerBound(g); known {
		return found, !failed, nil
	}
	var best DocumentID
	haveBest := false
	for _, c := range n.Children() {
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

func (n *AtomicOrNode) Evaluate(ctx context.Context, d DocumentID, mode Mode) (bool, error) {
	if result, known := n.CheckMemo(d); known {
		return result, nil
	}
	found, ok, err := n.LowerBound(ctx, d, mode)
	if err != nil {
		return false, err
	}
	return ok && found == d, nil
}

// unionTF computes TF for document d by merging every matching child's
// LocationIterator, or by summing TFs when shortWordOr && mode requests
// CalAtomicOrTFByAddChildTF (spec.md §9).
func (n *AtomicOrNode) unionTF(ctx context.Context, d DocumentID, mode Mode) (uint32, bool, error) {
	its := n.IteratorBuf[:0]
	var sumTF uint32
	matched := false
	allHavePositions := true
	for _, c := range n.Children() {
		m, tf, it, err := c.Reevaluate(ctx, d)
		if err != nil {
			return 0, false, err
		}
		if !m {
			continue
		}
		matched = true
		sumTF += tf
		if it == nil {
			allHavePositions = false
			continue
		}
		its = append(its, it)
	}
	n.IteratorBuf = its
	if !matched {
		return 0, false, nil
	}
	if n.ShortWord && mode.Has(CalAtomicOrTFByAddChildTF) {
		return sumTF, true, nil
	}
	if !allHavePositions || len(its) == 0 {
		// Safe upper bound when positions are unavailable: the max of
		// child TFs, never the sum (spec.md §9 Open Questions — preserve
		// this exact semantics).
		var maxTF uint32
		for _, c := range n.Children() {
			m, tf, _, err := c.Reevaluate(ctx, d)
			if err != nil {
				return 0, false, err
			}
			if m && tf > maxTF {
				maxTF = tf
			}
		}
		return maxTF, true, nil
	}
	merged := newOrLocationListIterator(its)
	defer merged.Release()
	var count uint32
	for {
		if _, ok := merged.Next(); !ok {
			break
		}
		count++
	}
	return count, true, nil
}

func (n *AtomicOrNode) EvaluateScore(ctx context.Context, d DocumentID, mode Mode) (Score, bool, error) {
	matched, err := n.Evaluate(ctx, d, mode.WithoutRough())
	if err != nil || !matched {
		return 0, false, err
	}
	tf, ok, err := n.unionTF(ctx, d, mode)
	if err != nil || !ok {
		return 0, false, err
	}
	if n.Calculator == nil {
		return Score(tf), true, nil
	}
	s, scored := n.Calculator.FirstStep(tf, d)
	return s, scored, nil
}

func (n *AtomicOrNode) LowerBoundScore(ctx context.Context, g DocumentID, mode Mode) (DocumentID, Score, bool, error) {
	d, ok, err := n.LowerBound(ctx, g, mode.WithoutRough())
	if err != nil || !ok {
		return 0, 0, false, err
	}
	s, scored, err := n.EvaluateScore(ctx, d, mode)
	return d, s, scored, err
}

func (n *AtomicOrNode) Retrieve(ctx context.Context, mode Mode) (ResultSet, error) {
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
		tf, tfOK, err := n.unionTF(ctx, d, mode)
		if err != nil {
			return out, err
		}
		if tfOK {
			entry.TF = tf
		}
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

func (n *AtomicOrNode) Reevaluate(ctx context.Context, d DocumentID) (bool, uint32, LocationIterator, error) {
	tf, ok, err := n.unionTF(ctx, d, 0)
	if err != nil || !ok {
		return false, 0, nil, err
	}
	return true, tf, nil, nil
}

func (n *AtomicOrNode) CanonicalString() string {
	return joinChildren("#syn", n.Children())
}
