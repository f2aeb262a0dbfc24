package qnode

import (
	"context"
	"fmt"
	"sort"
)

// BooleanResultLeafNode wraps a precomputed, ascending-sorted document
// list as a leaf — e.g. the materialized output of a subquery or a
// planner-pushed probe (spec.md §4.4's IN/Exists rewrite) folded back
// into the query tree for document-at-a-time composition.
type BooleanResultLeafNode struct {
	NodeBase
	Docs []DocumentID
}

func NewBooleanResultLeaf(docs []DocumentID) *BooleanResultLeafNode {
	sorted := append([]DocumentID(nil), docs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return &BooleanResultLeafNode{NodeBase: NewNodeBase(), Docs: sorted}
}

func (n *BooleanResultLeafNode) LowerBound(ctx context.Context, g DocumentID, mode Mode) (DocumentID, bool, error) {
	if found, failed, known := n.CheckMemoLowerBound(g); known {
		return found, !failed, nil
	}
	idx := sort.Search(len(n.Docs), func(i int) bool { return n.Docs[i] >= g })
	ok := idx < len(n.Docs)
	var d DocumentID
	if ok {
		d = n.Docs[idx]
	}
	n.RecordResult(g, d, ok, mode.IsRough(), false)
	return d, ok, nil
}

func (n *BooleanResultLeafNode) Evaluate(ctx context.Context, d DocumentID, mode Mode) (bool, error) {
	if result, known := n.CheckMemo(d); known {
		return result, nil
	}
	found, ok, err := n.LowerBound(ctx, d, mode)
	return ok && found == d, err
}

func (n *BooleanResultLeafNode) EvaluateScore(ctx context.Context, d DocumentID, mode Mode) (Score, bool, error) {
	matched, err := n.Evaluate(ctx, d, mode)
	if err != nil || !matched {
		return 0, false, err
	}
	return 1, true, nil
}

func (n *BooleanResultLeafNode) LowerBoundScore(ctx context.Context, g DocumentID, mode Mode) (DocumentID, Score, bool, error) {
	d, ok, err := n.LowerBound(ctx, g, mode)
	if err != nil || !ok {
		return 0, 0, false, err
	}
	return d, 1, true, nil
}

func (n *BooleanResultLeafNode) Retrieve(ctx context.Context, mode Mode) (ResultSet, error) {
	out := make(ResultSet, len(n.Docs))
	for i, d := range n.Docs {
		out[i] = ResultEntry{Doc: d}
	}
	return out, nil
}

func (n *BooleanResultLeafNode) Reevaluate(ctx context.Context, d DocumentID) (bool, uint32, LocationIterator, error) {
	matched, err := n.Evaluate(ctx, d, 0)
	return matched, 1, nil, err
}

func (n *BooleanResultLeafNode) CanonicalString() string {
	return fmt.Sprintf("#result(%d docs)", len(n.Docs))
}

// RankingResultLeafNode is BooleanResultLeafNode's ranking counterpart: a
// precomputed, ascending-sorted (DocumentID, Score) list.
type RankingResultLeafNode struct {
	NodeBase
	Results ResultSet
}

func NewRankingResultLeaf(results ResultSet) *RankingResultLeafNode {
	sorted := append(ResultSet(nil), results...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Doc < sorted[j].Doc })
	return &RankingResultLeafNode{NodeBase: NewNodeBase(), Results: sorted}
}

func (n *RankingResultLeafNode) LowerBound(ctx context.Context, g DocumentID, mode Mode) (DocumentID, bool, error) {
	if found, failed, known := n.CheckMemoLowerBound(g); known {
		return found, !failed, nil
	}
	idx := sort.Search(len(n.Results), func(i int) bool { return n.Results[i].Doc >= g })
	ok := idx < len(n.Results)
	var d DocumentID
	if ok {
		d = n.Results[idx].Doc
	}
	n.RecordResult(g, d, ok, mode.IsRough(), false)
	return d, ok, nil
}

func (n *RankingResultLeafNode) Evaluate(ctx context.Context, d DocumentID, mode Mode) (bool, error) {
	if result, known := n.CheckMemo(d); known {
		return result, nil
	}
	found, ok, err := n.LowerBound(ctx, d, mode)
	return ok && found == d, err
}

func (n *RankingResultLeafNode) entry(d DocumentID) (ResultEntry, bool) {
	idx := sort.Search(len(n.Results), func(i int) bool { return n.Results[i].Doc >= d })
	if idx < len(n.Results) && n.Results[idx].Doc == d {
		return n.Results[idx], true
	}
	return ResultEntry{}, false
}

func (n *RankingResultLeafNode) EvaluateScore(ctx context.Context, d DocumentID, mode Mode) (Score, bool, error) {
	e, ok := n.entry(d)
	if !ok {
		return 0, false, nil
	}
	return e.Score, true, nil
}

func (n *RankingResultLeafNode) LowerBoundScore(ctx context.Context, g DocumentID, mode Mode) (DocumentID, Score, bool, error) {
	d, ok, err := n.LowerBound(ctx, g, mode)
	if err != nil || !ok {
		return 0, 0, false, err
	}
	e, _ := n.entry(d)
	return d, e.Score, true, nil
}

func (n *RankingResultLeafNode) Retrieve(ctx context.Context, mode Mode) (ResultSet, error) {
	return append(ResultSet(nil), n.Results...), nil
}

func (n *RankingResultLeafNode) Reevaluate(ctx context.Context, d DocumentID) (bool, uint32, LocationIterator, error) {
	e, ok := n.entry(d)
	return ok, e.TF, nil, nil
}

func (n *RankingResultLeafNode) CanonicalString() string {
	return fmt.Sprintf("#rankresult(%d docs)", len(n.Results))
}
