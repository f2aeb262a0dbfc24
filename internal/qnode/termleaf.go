package qnode

import (
	"context"
	"fmt"

	"github.com/orneryd/nornicdb/internal/ftserrors"
)

// TermLeafNode is the pre-validation leaf produced by the query parser: a
// raw term string, the language set it should be tokenized under, and a
// match mode fixed at parse time (spec.md §3.2). Validate replaces every
// TermLeafNode with a SimpleTokenLeaf or an OrderedDistance (possibly
// wrapped in an Or across alternates), paired with a Rough subtree; a
// TermLeafNode left in the tree past validation is a bug, not a query
// that failed to match, so its evaluators refuse to run.
type TermLeafNode struct {
	NodeBase
	Term      string
	Languages []string
	Match     MatchMode
}

func NewTermLeaf(term string, languages []string, match MatchMode) *TermLeafNode {
	return &TermLeafNode{NodeBase: NewNodeBase(), Term: term, Languages: languages, Match: match}
}

func (n *TermLeafNode) LowerBound(ctx context.Context, g DocumentID, mode Mode) (DocumentID, bool, error) {
	return 0, false, fmt.Errorf("term leaf %q reached evaluation unvalidated: %w", n.Term, ftserrors.ErrQueryValidateFail)
}

func (n *TermLeafNode) Evaluate(ctx context.Context, d DocumentID, mode Mode) (bool, error) {
	return false, fmt.Errorf("term leaf %q reached evaluation unvalidated: %w", n.Term, ftserrors.ErrQueryValidateFail)
}

func (n *TermLeafNode) EvaluateScore(ctx context.Context, d DocumentID, mode Mode) (Score, bool, error) {
	return 0, false, fmt.Errorf("term leaf %q reached evaluation unvalidated: %w", n.Term, ftserrors.ErrQueryValidateFail)
}

func (n *TermLeafNode) LowerBoundScore(ctx context.Context, g DocumentID, mode Mode) (DocumentID, Score, bool, error) {
	return 0, 0, false, fmt.Errorf("term leaf %q reached evaluation unvalidated: %w", n.Term, ftserrors.ErrQueryValidateFail)
}

func (n *TermLeafNode) Retrieve(ctx context.Context, mode Mode) (ResultSet, error) {
	return nil, fmt.Errorf("term leaf %q reached evaluation unvalidated: %w", n.Term, ftserrors.ErrQueryValidateFail)
}

func (n *TermLeafNode) Reevaluate(ctx context.Context, d DocumentID) (bool, uint32, LocationIterator, error) {
	return false, 0, nil, fmt.Errorf("term leaf %q reached evaluation unvalidated: %w", n.Term, ftserrors.ErrQueryValidateFail)
}

func (n *TermLeafNode) CanonicalString() string {
	return fmt.Sprintf("#term[%s:%s](%q)", n.Match.String(), joinLangs(n.Languages), n.Term)
}

func joinLangs(langs []string) string {
	if len(langs) == 0 {
		return "*"
	}
	out := langs[0]
	for _, l := range langs[1:] {
		out += "," + l
	}
	return out
}
