package qnode

import (
	"context"
	"fmt"
)

// odChild pairs a child node with its expected offset from the first
// child's matching start position (spec.md §4.2.4).
type odChild struct {
	Offset int
	Node   Node
}

// OrderedDistanceNode is the positional AND that reconstitutes a
// multi-token term: children are (expected_offset, SimpleTokenLeaf)
// pairs, and a document matches only if, for some starting position p of
// the first child, every other child has a position at p+offset_i-offset_1
// (spec.md §4.2.4). It is the "glue" that makes a TermLeaf's tokenization
// behave like a single term match.
//
// WordOrderedDistance (spec.md §3.2) is the same evaluator used with a
// trailing Word-boundary End constraint; End, if non-nil, is checked as
// an extra position at EndOffset beyond the first child's start.
type OrderedDistanceNode struct {
	NodeBase

	children   []odChild
	end        Node
	endOffset  int
	termString string
}

// NewOrderedDistance builds a positional AND over children at the given
// offsets (parallel slices; offsets[i] applies to children[i]).
func NewOrderedDistance(children []Node, offsets []int) *OrderedDistanceNode {
	n := &OrderedDistanceNode{NodeBase: NewNodeBase()}
	pairs := make([]odChild, len(children))
	for i, c := range children {
		pairs[i] = odChild{Offset: offsets[i], Node: c}
	}
	n.children = pairs
	n.SetChildren(children)
	return n
}

func (n *OrderedDistanceNode) EndNode() Node        { return n.end }
func (n *OrderedDistanceNode) SetEndNode(e Node)    { n.end = e }
func (n *OrderedDistanceNode) SetEndOffset(o int)   { n.endOffset = o }
func (n *OrderedDistanceNode) TermString() string   { return n.termString }
func (n *OrderedDistanceNode) SetTermString(s string) { n.termString = s }

// roughLowerBound returns the first document >= g that every position
// child accepts, using rough evaluation per child (spec.md §4.2.4: "rough-evaluate each child
// first").
func (n *OrderedDistanceNode) roughLowerBound(ctx context.Context, g DocumentID, mode Mode) (DocumentID, bool, error) {
	candidate := g
	for {
		if ctx.Err() != nil {
			return 0, false, ctx.Err()
		}
		agreed := true
		for _, c := range n.children {
			d, ok, err := c.Node.LowerBound(ctx, candidate, mode.WithRough())
			if err != nil {
				return 0, false, err
			}
			if !ok {
				return 0, false, nil
			}
			if d != candidate {
				candidate = d
				agreed = false
				break
			}
		}
		if agreed {
			return candidate, true, nil
		}
	}
}

func (n *OrderedDistanceNode) LowerBound(ctx context.Context, g DocumentID, mode Mode) (DocumentID, bool, error) {
	if found, failed, known := n.CheckMemoLowerBound(g); known {
		return found, !failed, nil
	}
	candidate := g
	for {
		d, ok, err := n.roughLowerBound(ctx, candidate, mode)
		if err != nil || !ok {
			n.RecordResult(g, 0, false, mode.IsRough(), false)
			return 0, false, err
		}
		if mode.IsRough() {
			n.RecordResult(g, d, true, true, false)
			return d, true, nil
		}
		matched, _, _, err := n.Reevaluate(ctx, d)
		if err != nil {
			return 0, false, err
		}
		if matched {
			n.RecordResult(g, d, true, false, false)
			return d, true, nil
		}
		candidate = d + 1
	}
}

func (n *OrderedDistanceNode) Evaluate(ctx context.Context, d DocumentID, mode Mode) (bool, error) {
	if result, known := n.CheckMemo(d); known {
		return result, nil
	}
	found, ok, err := n.LowerBound(ctx, d, mode)
	if err != nil {
		return false, err
	}
	return ok && found == d, nil
}

// Reevaluate implements the position-alignment check of spec.md §4.2.4:
// for each candidate start position of the first child, verify every
// other child (and, if present, the end constraint) has a position at
// start+offset_i-offset_1. If a child lacks a position list, the match is
// accepted without a position check for that child — deliberately, per
// spec.md §9 Open Questions; do not remove this fallback.
func (n *OrderedDistanceNode) Reevaluate(ctx context.Context, d DocumentID) (bool, uint32, LocationIterator, error) {
	if len(n.children) == 0 {
		return false, 0, nil, nil
	}
	type childPositions struct {
		offset    int
		positions []Location
		noPos     bool
	}
	cps := make([]childPositions, 0, len(n.children)+1)
	for _, c := range n.children {
		matched, _, it, err := c.Node.Reevaluate(ctx, d)
		if err != nil {
			return false, 0, nil, err
		}
		if !matched {
			return false, 0, nil, nil
		}
		cp := childPositions{offset: c.Offset}
		if it == nil {
			cp.noPos = true
		} else {
			for {
				loc, ok := it.Next()
				if !ok {
					break
				}
				cp.positions = append(cp.positions, loc)
			}
			it.Release()
		}
		cps = append(cps, cp)
	}
	if n.end != nil {
		matched, _, it, err := n.end.Reevaluate(ctx, d)
		if err != nil {
			return false, 0, nil, err
		}
		if !matched {
			return false, 0, nil, nil
		}
		cp := childPositions{offset: n.children[0].Offset + n.endOffset}
		if it == nil {
			cp.noPos = true
		} else {
			for {
				loc, ok := it.Next()
				if !ok {
					break
				}
				cp.positions = append(cp.positions, loc)
			}
			it.Release()
		}
		cps = append(cps, cp)
	}

	first := cps[0]
	base1 := first.offset
	if first.noPos {
		// Without the first child's positions we cannot anchor a scan;
		// treat the whole match as position-less (matched, TF unknown
		// precisely — fall back to per-list TF, spec.md §4.2.5).
		return true, 1, nil, nil
	}
	var matchStarts uint32
	for _, p := range first.positions {
		allAlign := true
		for i := 1; i < len(cps); i++ {
			cp := cps[i]
			if cp.noPos {
				continue
			}
			want := p + Location(cp.offset-base1)
			found := false
			for _, q := range cp.positions {
				if q == want {
					found = true
					break
				}
			}
			if !found {
				allAlign = false
				break
			}
		}
		if allAlign {
			matchStarts++
		}
	}
	if matchStarts == 0 {
		return false, 0, nil, nil
	}
	return true, matchStarts, nil, nil
}

func (n *OrderedDistanceNode) EvaluateScore(ctx context.Context, d DocumentID, mode Mode) (Score, bool, error) {
	matched, err := n.Evaluate(ctx, d, mode.WithoutRough())
	if err != nil || !matched {
		return 0, false, err
	}
	_, tf, _, err := n.Reevaluate(ctx, d)
	if err != nil {
		return 0, false, err
	}
	if n.Calculator == nil {
		return Score(tf), true, nil
	}
	s, ok := n.Calculator.FirstStep(tf, d)
	return s, ok, nil
}

func (n *OrderedDistanceNode) LowerBoundScore(ctx context.Context, g DocumentID, mode Mode) (DocumentID, Score, bool, error) {
	d, ok, err := n.LowerBound(ctx, g, mode.WithoutRough())
	if err != nil || !ok {
		return 0, 0, false, err
	}
	s, scored, err := n.EvaluateScore(ctx, d, mode)
	return d, s, scored, err
}

func (n *OrderedDistanceNode) Retrieve(ctx context.Context, mode Mode) (ResultSet, error) {
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
		_, tf, _, err := n.Reevaluate(ctx, d)
		if err != nil {
			return out, err
		}
		entry := ResultEntry{Doc: d, TF: tf}
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

func (n *OrderedDistanceNode) CanonicalString() string {
	s := "#dist("
	for i, c := range n.children {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("%d:%s", c.Offset, c.Node.CanonicalString())
	}
	s += ")"
	return s
}
