package qnode

import (
	"context"
	"fmt"
)

// SimpleTokenLeafNode wraps one InvertedList iterator: the leaf produced
// by validation for each index token a TermLeaf tokenized to (spec.md
// §4.2.3). LowerBound advances the iterator to the first posting with
// DocID >= g; Reevaluate exposes that posting's LocationIterator for
// position composition by an enclosing OrderedDistance/Window/AtomicOr.
type SimpleTokenLeafNode struct {
	NodeBase

	Key  string
	List InvertedList

	currentTF  uint32
	currentSet bool
}

// NewSimpleTokenLeaf wraps list under key, ready for validate-time
// calculator assignment.
func NewSimpleTokenLeaf(key string, list InvertedList) *SimpleTokenLeafNode {
	return &SimpleTokenLeafNode{NodeBase: NewNodeBase(), Key: key, List: list}
}

func (n *SimpleTokenLeafNode) LowerBound(ctx context.Context, g DocumentID, mode Mode) (DocumentID, bool, error) {
	if found, failed, known := n.CheckMemoLowerBound(g); known {
		return found, !failed, nil
	}
	doc, tf, ok, err := n.List.LowerBound(ctx, g)
	if err != nil {
		return 0, false, err
	}
	n.currentTF = tf
	n.currentSet = ok
	n.RecordResult(g, doc, ok, mode.IsRough(), false)
	if !ok {
		return 0, false, nil
	}
	return doc, true, nil
}

func (n *SimpleTokenLeafNode) Evaluate(ctx context.Context, d DocumentID, mode Mode) (bool, error) {
	if result, known := n.CheckMemo(d); known {
		return result, nil
	}
	found, ok, err := n.LowerBound(ctx, d, mode)
	if err != nil {
		return false, err
	}
	return ok && found == d, nil
}

func (n *SimpleTokenLeafNode) EvaluateScore(ctx context.Context, d DocumentID, mode Mode) (Score, bool, error) {
	matched, err := n.Evaluate(ctx, d, mode)
	if err != nil || !matched {
		return 0, false, err
	}
	if n.Calculator == nil {
		return Score(n.currentTF), true, nil
	}
	s, ok := n.Calculator.FirstStep(n.currentTF, d)
	return s, ok, nil
}

func (n *SimpleTokenLeafNode) LowerBoundScore(ctx context.Context, g DocumentID, mode Mode) (DocumentID, Score, bool, error) {
	d, ok, err := n.LowerBound(ctx, g, mode)
	if err != nil || !ok {
		return 0, 0, false, err
	}
	if n.Calculator == nil {
		return d, Score(n.currentTF), true, nil
	}
	s, scored := n.Calculator.FirstStep(n.currentTF, d)
	return d, s, scored, nil
}

func (n *SimpleTokenLeafNode) Retrieve(ctx context.Context, mode Mode) (ResultSet, error) {
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
		entry := ResultEntry{Doc: d, TF: n.currentTF}
		if mode.IsRanking() && n.Calculator != nil {
			if s, scored := n.Calculator.FirstStep(n.currentTF, d); scored {
				entry.Score = s
			}
		}
		out = append(out, entry)
		g = d + 1
	}
	return out, nil
}

// Reevaluate returns the current posting's LocationIterator, assuming a
// rough pass already matched d (i.e. d == n.Upper).
func (n *SimpleTokenLeafNode) Reevaluate(ctx context.Context, d DocumentID) (bool, uint32, LocationIterator, error) {
	if !n.currentSet || n.Upper != d {
		matched, err := n.Evaluate(ctx, d, 0)
		if err != nil || !matched {
			return false, 0, nil, err
		}
	}
	it, _ := n.List.Locations()
	return true, n.currentTF, it, nil
}

func (n *SimpleTokenLeafNode) CanonicalString() string {
	return fmt.Sprintf("#tok(%s)", n.Key)
}
