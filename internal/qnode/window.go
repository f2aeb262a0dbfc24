package qnode

import (
	"context"
	"fmt"
)

// WindowTFPolicy selects how WindowNode counts matching position pairs
// into a TF value (spec.md §4.2.8).
type WindowTFPolicy int

const (
	// WindowTFAllCombinations counts every (p1,p2) pair within distance.
	WindowTFAllCombinations WindowTFPolicy = iota
	// WindowTFUniqueStart counts at most one match per distinct p1.
	WindowTFUniqueStart
	// WindowTFNonOverlapping counts matches greedily without reusing a
	// position in more than one pair.
	WindowTFNonOverlapping
)

// WindowNode requires exactly two children and a [minDist, maxDist]
// option (spec.md §4.2.8). Ordered requires p2-p1 in range; unordered
// requires |p2-p1| in range.
type WindowNode struct {
	NodeBase
	Ordered  bool
	MinDist  int
	MaxDist  int
	TFPolicy WindowTFPolicy
}

func NewWindow(a, b Node, ordered bool, minDist, maxDist int) *WindowNode {
	n := &WindowNode{NodeBase: NewNodeBase(), Ordered: ordered, MinDist: minDist, MaxDist: maxDist}
	n.SetChildren([]Node{a, b})
	return n
}

func (n *WindowNode) left() Node  { return n.Children()[0] }
func (n *WindowNode) right() Node { return n.Children()[1] }

func (n *WindowNode) LowerBound(ctx context.Context, g DocumentID, mode Mode) (DocumentID, bool, error) {
	if found, failed, known := n.CheckMemoLowerBound(g); known {
		return found, !failed, nil
	}
	candidate := g
	for {
		if ctx.Err() != nil {
			return 0, false, ctx.Err()
		}
		dl, okl, err := n.left().LowerBound(ctx, candidate, mode.WithRough())
		if err != nil || !okl {
			n.RecordResult(g, 0, false, mode.IsRough(), false)
			return 0, false, err
		}
		dr, okr, err := n.right().LowerBound(ctx, dl, mode.WithRough())
		if err != nil || !okr {
			n.RecordResult(g, 0, false, mode.IsRough(), false)
			return 0, false, err
		}
		if dr != dl {
			candidate = dr
			continue
		}
		if mode.IsRough() {
			n.RecordResult(g, dl, true, true, false)
			return dl, true, nil
		}
		matched, _, _, err := n.Reevaluate(ctx, dl)
		if err != nil {
			return 0, false, err
		}
		if matched {
			n.RecordResult(g, dl, true, false, false)
			return dl, true, nil
		}
		candidate = dl + 1
	}
}

func (n *WindowNode) Evaluate(ctx context.Context, d DocumentID, mode Mode) (bool, error) {
	if result, known := n.CheckMemo(d); known {
		return result, nil
	}
	found, ok, err := n.LowerBound(ctx, d, mode)
	if err != nil {
		return false, err
	}
	return ok && found == d, nil
}

func (n *WindowNode) inRange(dist int) bool {
	if n.Ordered {
		return dist >= n.MinDist && dist <= n.MaxDist
	}
	if dist < 0 {
		dist = -dist
	}
	return dist >= n.MinDist && dist <= n.MaxDist
}

func (n *WindowNode) Reevaluate(ctx context.Context, d DocumentID) (bool, uint32, LocationIterator, error) {
	_, _, itA, err := n.left().Reevaluate(ctx, d)
	if err != nil {
		return false, 0, nil, err
	}
	_, _, itB, err := n.right().Reevaluate(ctx, d)
	if err != nil {
		return false, 0, nil, err
	}
	if itA == nil || itB == nil {
		// Position-less fallback: accept without a distance check.
		return true, 1, nil, nil
	}
	var posA, posB []Location
	for {
		l, ok := itA.Next()
		if !ok {
			break
		}
		posA = append(posA, l)
	}
	itA.Release()
	for {
		l, ok := itB.Next()
		if !ok {
			break
		}
		posB = append(posB, l)
	}
	itB.Release()

	var tf uint32
	usedB := make(map[int]bool)
	for _, p1 := range posA {
		matchedThisStart := false
		for j, p2 := range posB {
			if n.TFPolicy == WindowTFNonOverlapping && usedB[j] {
				continue
			}
			if n.inRange(int(p2) - int(p1)) {
				tf++
				matchedThisStart = true
				if n.TFPolicy == WindowTFNonOverlapping {
					usedB[j] = true
					break
				}
				if n.TFPolicy == WindowTFUniqueStart {
					break
				}
			}
		}
		_ = matchedThisStart
	}
	if tf == 0 {
		return false, 0, nil, nil
	}
	return true, tf, nil, nil
}

func (n *WindowNode) EvaluateScore(ctx context.Context, d DocumentID, mode Mode) (Score, bool, error) {
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

func (n *WindowNode) LowerBoundScore(ctx context.Context, g DocumentID, mode Mode) (DocumentID, Score, bool, error) {
	d, ok, err := n.LowerBound(ctx, g, mode.WithoutRough())
	if err != nil || !ok {
		return 0, 0, false, err
	}
	s, scored, err := n.EvaluateScore(ctx, d, mode)
	return d, s, scored, err
}

func (n *WindowNode) Retrieve(ctx context.Context, mode Mode) (ResultSet, error) {
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

func (n *WindowNode) CanonicalString() string {
	kind := "uwin"
	if n.Ordered {
		kind = "owin"
	}
	return fmt.Sprintf("#%s[%d:%d](%s,%s)", kind, n.MinDist, n.MaxDist,
		n.left().CanonicalString(), n.right().CanonicalString())
}
