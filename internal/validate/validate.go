// Package validate implements Query::validate (spec.md §4.3): the
// eight-pass rewrite that turns a parsed, TermLeaf-bearing query tree into
// an executable tree of SimpleTokenLeaf/OrderedDistance/AND/OR nodes
// backed by a concrete InvertedFile.
package validate

import (
	"context"
	"fmt"
	"sort"

	"github.com/orneryd/nornicdb/internal/ftserrors"
	"github.com/orneryd/nornicdb/internal/qnode"
	"github.com/orneryd/nornicdb/internal/querystring"
	"github.com/orneryd/nornicdb/internal/token"
)

// Options configures the rewrite passes that have tunable thresholds.
type Options struct {
	OrFlattenThreshold  int
	ShortWordRangeLimit int
	Calculator          qnode.ScoreCalculator
	Combiner            qnode.ScoreCombiner
}

func DefaultOptions() Options {
	return Options{OrFlattenThreshold: 64, ShortWordRangeLimit: 256}
}

// Validate runs all eight passes in order and returns the executable
// root node, or a wrapped ftserrors.ErrQueryValidateFail if any TermLeaf
// cannot be covered.
func Validate(ctx context.Context, root qnode.Node, file qnode.InvertedFile, tok token.Tokenizer, opts Options) (qnode.Node, error) {
	root, err := eraseTermLeaves(ctx, root, file, tok, opts)
	if err != nil {
		return nil, err
	}
	assignScoring(ctx, root, file, opts)
	root = flatten(root, opts)
	shared := make(map[string]qnode.Node)
	root = share(root, shared, qnode.Mode(0))
	sortTree(root, opts)
	reserveScoreBuffers(root)
	return root, nil
}

// eraseTermLeaves implements passes 1-4: tokenize every TermLeaf, select
// its best covering path, build its rough AND subtree, and replace it
// in-place with the precise subtree (propagating EmptySet).
func eraseTermLeaves(ctx context.Context, n qnode.Node, file qnode.InvertedFile, tok token.Tokenizer, opts Options) (qnode.Node, error) {
	if tl, ok := n.(*qnode.TermLeafNode); ok {
		return eraseOne(ctx, tl, file, tok, opts)
	}
	children := n.Children()
	if len(children) == 0 {
		return n, nil
	}
	newChildren := make([]qnode.Node, 0, len(children))
	for _, c := range children {
		rewritten, err := eraseTermLeaves(ctx, c, file, tok, opts)
		if err != nil {
			return nil, err
		}
		newChildren = append(newChildren, rewritten)
	}
	return pruneEmpty(n, newChildren, file)
}

// pruneEmpty implements the EmptySet-propagation rule of spec.md §4.3
// step 4: an OR drops an EmptySet child, an AND collapses entirely to
// EmptySet if any child is EmptySet, a NOT/AND-NOT flips.
func pruneEmpty(n qnode.Node, children []qnode.Node, file qnode.InvertedFile) (qnode.Node, error) {
	switch n.(type) {
	case *qnode.OrNode, *qnode.AtomicOrNode:
		kept := children[:0]
		for _, c := range children {
			if !isEmptySet(c) {
				kept = append(kept, c)
			}
		}
		if len(kept) == 0 {
			return qnode.NewEmptySet(), nil
		}
		n.SetChildren(kept)
		return n, nil
	case *qnode.AndNode:
		for _, c := range children {
			if isEmptySet(c) {
				return qnode.NewEmptySet(), nil
			}
		}
		n.SetChildren(children)
		return n, nil
	case *qnode.NotNode:
		if isEmptySet(children[0]) {
			return qnode.NewAll(file), nil
		}
		n.SetChildren(children)
		return n, nil
	case *qnode.AndNotNode:
		if isEmptySet(children[0]) {
			return qnode.NewEmptySet(), nil
		}
		n.SetChildren(children)
		return n, nil
	default:
		n.SetChildren(children)
		return n, nil
	}
}

func isEmptySet(n qnode.Node) bool {
	_, ok := n.(*qnode.EmptySetNode)
	return ok
}

// eraseOne replaces a single TermLeaf with its precise subtree, attaching
// the rough AND as RoughNode for the benefit of validation/cost-estimate
// callers further up (spec.md §4.3 step 3).
func eraseOne(ctx context.Context, tl *qnode.TermLeafNode, file qnode.InvertedFile, tok token.Tokenizer, opts Options) (qnode.Node, error) {
	tokMode := token.QueryMode
	alts, err := tok.TokenizeMulti(ctx, tl.Term, tokMode)
	if err != nil {
		return nil, fmt.Errorf("tokenizing term %q: %w", tl.Term, err)
	}
	if len(alts) == 0 {
		return qnode.NewEmptySet(), nil
	}

	path, short, err := selectBestPath(ctx, alts, file, tok.MinTokenCharLen())
	if err != nil {
		return nil, err
	}
	if len(path.Tokens) == 0 {
		return qnode.NewEmptySet(), nil
	}

	var precise qnode.Node
	if short {
		precise, err = buildShortWordAtomicOr(ctx, path, file, opts)
	} else {
		precise, err = buildOrderedDistance(ctx, path, file)
	}
	if err != nil {
		return nil, err
	}
	if precise == nil {
		return qnode.NewEmptySet(), nil
	}

	rough := buildRoughAnd(path, file)
	if base := precise.Base(); base != nil {
		base.RoughNode = rough
	}
	return precise, nil
}

// selectBestPath implements pass 2 (spec.md §4.3 step 2): among the
// tokenization alternatives, pick the one covering the full term length
// with the smallest total document frequency, consulting the inverted
// file's actual per-key DF rather than approximating it. short reports
// whether the chosen path is a short-word (length < the tokenizer's own
// MinTokenCharLen) single-token path, which callers route to the
// AtomicOr range-scan form instead of OrderedDistance.
func selectBestPath(ctx context.Context, alts []token.Result, file qnode.InvertedFile, minTokenCharLen int) (best token.Result, short bool, err error) {
	var bestDF uint64
	found := false
	for _, alt := range alts {
		if len(alt.Tokens) == 0 {
			continue
		}
		var df uint64
		for _, t := range alt.Tokens {
			tokDF, err := file.GetDocumentFrequency(ctx, t.Text)
			if err != nil {
				return token.Result{}, false, err
			}
			df += uint64(tokDF)
		}
		if !found || df < bestDF {
			best, bestDF, found = alt, df, true
		}
	}
	if !found {
		return token.Result{}, false, fmt.Errorf("no tokenization covers term: %w", ftserrors.ErrQueryValidateFail)
	}
	short = len(best.Tokens) == 1 && best.Tokens[0].CharLen < minTokenCharLen
	return best, short, nil
}

// buildOrderedDistance implements the normal-word branch of pass 1: an
// OrderedDistance over the path's tokens, each looked up as a
// SimpleTokenLeaf, offset by its character start.
func buildOrderedDistance(ctx context.Context, path token.Result, file qnode.InvertedFile) (qnode.Node, error) {
	children := make([]qnode.Node, 0, len(path.Tokens))
	offsets := make([]int, 0, len(path.Tokens))
	for i, t := range path.Tokens {
		list, ok, err := file.GetInvertedList(ctx, t.Text, qnode.Search)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		children = append(children, qnode.NewSimpleTokenLeaf(t.Text, list))
		offsets = append(offsets, path.Starts[i])
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return qnode.NewOrderedDistance(children, offsets), nil
}

// buildShortWordAtomicOr implements the short-word branch: a range scan
// of the index from the short token up to ShortWordRangeLimit distinct
// keys sharing its prefix, unioned via AtomicOr (spec.md §4.3 step 1,
// §4.2.2).
func buildShortWordAtomicOr(ctx context.Context, path token.Result, file qnode.InvertedFile, opts Options) (qnode.Node, error) {
	prefix := path.Tokens[0].Text
	keys, err := file.RangeKeys(ctx, prefix, prefix+"\uffff", opts.ShortWordRangeLimit)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}
	children := make([]qnode.Node, 0, len(keys))
	for _, k := range keys {
		list, ok, err := file.GetInvertedList(ctx, k, qnode.Search)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		children = append(children, qnode.NewSimpleTokenLeaf(k, list))
	}
	if len(children) == 0 {
		return nil, nil
	}
	or := qnode.NewAtomicOr(children...)
	or.ShortWord = true
	return or, nil
}

// buildRoughAnd implements pass 3: an AND of the path's SimpleTokenLeaves
// used purely for cheap rough pre-filtering, sharing no state with the
// precise subtree's own memoization window.
func buildRoughAnd(path token.Result, file qnode.InvertedFile) qnode.Node {
	children := make([]qnode.Node, 0, len(path.Tokens))
	for _, t := range path.Tokens {
		if list, ok, err := file.GetInvertedList(context.Background(), t.Text, qnode.Search); err == nil && ok {
			children = append(children, qnode.NewSimpleTokenLeaf(t.Text, list))
		}
	}
	if len(children) == 0 {
		return qnode.NewEmptySet()
	}
	if len(children) == 1 {
		return children[0]
	}
	return qnode.NewAnd(children...)
}

// flatten implements pass 5: recursively collapse nested And/Or of the
// same kind, subject to the calculator/combiner compatibility rules and
// the OrFlattenThreshold fan-in cap.
func flatten(n qnode.Node, opts Options) qnode.Node {
	children := n.Children()
	for i, c := range children {
		children[i] = flatten(c, opts)
	}
	switch v := n.(type) {
	case *qnode.AndNode:
		var out []qnode.Node
		for _, c := range children {
			if inner, ok := c.(*qnode.AndNode); ok {
				out = append(out, inner.Children()...)
			} else {
				out = append(out, c)
			}
		}
		v.SetChildren(out)
		return v
	case *qnode.OrNode:
		var out []qnode.Node
		for _, c := range children {
			if inner, ok := c.(*qnode.OrNode); ok && len(out)+len(inner.Children()) <= opts.OrFlattenThreshold {
				out = append(out, inner.Children()...)
			} else {
				out = append(out, c)
			}
		}
		v.SetChildren(out)
		return v
	case *qnode.AtomicOrNode:
		var out []qnode.Node
		for _, c := range children {
			if inner, ok := c.(*qnode.AtomicOrNode); ok && sameCalculator(v, inner) && len(out)+len(inner.Children()) <= opts.OrFlattenThreshold {
				out = append(out, inner.Children()...)
			} else {
				out = append(out, c)
			}
		}
		v.SetChildren(out)
		return v
	default:
		n.SetChildren(children)
		return n
	}
}

// sameCalculator compares by scoring algorithm, not instance identity:
// assignScoring gives every node its own Clone()'d Calculator, so two
// AtomicOrNodes scoring with the same algorithm never share a pointer.
func sameCalculator(a, b *qnode.AtomicOrNode) bool {
	ac, bc := a.Base().Calculator, b.Base().Calculator
	if ac == nil || bc == nil {
		return ac == bc
	}
	return ac.Name() == bc.Name()
}

// assignScoring implements spec.md §5's "per-node duplicated Score
// calculator": every scoring-capable node gets its own Clone() of
// opts.Calculator, primed via Prepare with this node's own document
// frequency, and every AND/OR shares opts.Combiner directly (combiners are
// stateless, so sharing one instance across nodes is safe). Runs after
// eraseTermLeaves, before flatten, so flatten's dedup logic sees the final
// per-node calculators.
func assignScoring(ctx context.Context, n qnode.Node, file qnode.InvertedFile, opts Options) {
	for _, c := range n.Children() {
		assignScoring(ctx, c, file, opts)
	}
	if ep, ok := n.(qnode.EndNodeProvider); ok {
		if end := ep.EndNode(); end != nil {
			assignScoring(ctx, end, file, opts)
		}
	}

	base := n.Base()
	switch n.(type) {
	case *qnode.SimpleTokenLeafNode, *qnode.AtomicOrNode, *qnode.OrderedDistanceNode, *qnode.WindowNode:
		if base.Calculator == nil && opts.Calculator != nil {
			c := opts.Calculator.Clone()
			totalDF, err := file.GetTotalDocumentFrequency(ctx)
			if err != nil {
				totalDF = 0
			}
			c.Prepare(totalDF, estimateDF(ctx, n, file))
			base.Calculator = c
		}
	}
	switch n.(type) {
	case *qnode.AndNode, *qnode.OrNode:
		if base.Combiner == nil && opts.Combiner != nil {
			base.Combiner = opts.Combiner
		}
	}
}

// estimateDF sums the document frequency of a node's constituent
// SimpleTokenLeaf keys, the figure a cloned calculator's Prepare call uses
// to seed its per-node state (spec.md §4.2.10); SecondStep later refines
// against the merged posting count once evaluation has run.
func estimateDF(ctx context.Context, n qnode.Node, file qnode.InvertedFile) uint32 {
	if leaf, ok := n.(*qnode.SimpleTokenLeafNode); ok {
		df, err := file.GetDocumentFrequency(ctx, leaf.Key)
		if err != nil {
			return 0
		}
		return df
	}
	var total uint32
	for _, c := range n.Children() {
		total += estimateDF(ctx, c, file)
	}
	return total
}

// share implements pass 6: a post-order walk keyed by CanonicalString; a
// repeated subtree is replaced by the first occurrence. OR nodes only
// dedupe locally in boolean mode, since sharing would otherwise corrupt
// per-occurrence scores.
func share(n qnode.Node, seen map[string]qnode.Node, mode qnode.Mode) qnode.Node {
	children := n.Children()
	for i, c := range children {
		children[i] = share(c, seen, mode)
	}
	n.SetChildren(children)

	if or, ok := n.(*qnode.OrNode); ok && !mode.IsRanking() {
		dedupeOrChildren(or, seen)
	}

	key := n.CanonicalString()
	if existing, ok := seen[key]; ok {
		if od, ok := n.(*qnode.OrderedDistanceNode); ok {
			if existingOD, ok := existing.(*qnode.OrderedDistanceNode); ok {
				existingOD.SetEndNode(od.EndNode())
				existingOD.SetTermString(od.TermString())
			}
		}
		return existing
	}
	seen[key] = n
	return n
}

func dedupeOrChildren(or *qnode.OrNode, seen map[string]qnode.Node) {
	local := make(map[string]bool)
	out := or.Children()[:0]
	for _, c := range or.Children() {
		k := c.CanonicalString()
		if local[k] {
			continue
		}
		local[k] = true
		out = append(out, c)
	}
	or.SetChildren(out)
}

// sortTree implements pass 7: reorder children by sortFactor/DF. OR pushes
// regex-like (unbounded-cost) nodes to the end; AtomicOr always sorts by
// descending DF; ranking AND with a non-commutative combiner is left
// untouched.
func sortTree(n qnode.Node, opts Options) {
	children := n.Children()
	for _, c := range children {
		sortTree(c, opts)
	}
	switch v := n.(type) {
	case *qnode.AtomicOrNode:
		sort.SliceStable(children, func(i, j int) bool {
			return sortFactorOf(children[i]) > sortFactorOf(children[j])
		})
	case *qnode.OrNode:
		sort.SliceStable(children, func(i, j int) bool {
			ci, cj := isConstantCost(children[i]), isConstantCost(children[j])
			if ci != cj {
				return !ci // non-constant-cost first
			}
			return sortFactorOf(children[i]) > sortFactorOf(children[j])
		})
	case *qnode.AndNode:
		if v.Base().Combiner == nil || v.Base().Combiner.IsCommutative() {
			sort.SliceStable(children, func(i, j int) bool {
				return sortFactorOf(children[i]) < sortFactorOf(children[j])
			})
		}
	}
	n.SetChildren(children)
}

func sortFactorOf(n qnode.Node) int {
	b := n.Base()
	if b.SortFactor != 0 {
		return b.SortFactor
	}
	return int(b.EstimatedDocumentFrequency)
}

func isConstantCost(n qnode.Node) bool {
	_, isAtomicOr := n.(*qnode.AtomicOrNode)
	return isAtomicOr
}

// reserveScoreBuffers implements pass 8: preallocate each node's reusable
// Score/LocationIterator scratch buffer so AndNode.combineChildScores,
// OrNode.matchingChildren, and AtomicOrNode.unionTF reuse it on every
// EvaluateScore call instead of allocating a fresh slice.
func reserveScoreBuffers(n qnode.Node) {
	for _, c := range n.Children() {
		reserveScoreBuffers(c)
	}
	switch n.(type) {
	case *qnode.OrNode, *qnode.AndNode:
		n.Base().ScoreBuf = make([]qnode.Score, 0, len(n.Children()))
	case *qnode.AtomicOrNode:
		n.Base().IteratorBuf = make([]qnode.LocationIterator, 0, len(n.Children()))
	}
}

// CanonicalKey is exported for callers (the query-plan cache) that need
// the same hash the sharing pass uses.
func CanonicalKey(n qnode.Node) string {
	return querystring.Hash(n.CanonicalString())
}
