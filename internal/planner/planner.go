// Package planner implements the predicate combinator layer that sits
// above the query-tree core (spec.md §4.4): And/Or/Not/Choice/In/Exists
// predicates that decide, via Check, which parts of a filter can be
// pushed into a qnode query tree versus evaluated residually in Go.
//
// The type-switch tree rewriting below follows the predicate-pushdown
// shape of a conventional SQL optimizer's ApplyPredicatePushdown pass:
// each combinator recursively partitions its children into a pushable
// half and a residual half, then Generate turns the pushable half into
// an executable qnode.Node.
package planner

import (
	"github.com/orneryd/nornicdb/internal/qnode"
)

// Cost estimates a predicate's selectivity (Rate, in [0,1]) and fixed
// per-document evaluation overhead, the inputs Env.EstimateCost combines
// across And/Or/Not per spec.md §4.4.
type Cost struct {
	Rate     float64
	Overhead float64
}

// Env carries the candidate index files a predicate may be pushed into.
type Env struct {
	Files []qnode.InvertedFile
}

// Partition is the result of Check: the part of a predicate that can run
// inside the index (Checked), the part that must run residually
// (Residual, nil if none), and the index files capable of serving
// Checked.
type Partition struct {
	Checked    Predicate
	Residual   Predicate
	Candidates []qnode.InvertedFile
}

// fullyChecked reports whether a partition has no residual component.
func (p Partition) fullyChecked() bool { return p.Residual == nil }

// Predicate is one node of the planner's combinator tree.
type Predicate interface {
	// Check partitions the predicate into checked/residual parts against
	// env's candidate index files.
	Check(env *Env) Partition

	// EstimateCost folds this predicate's own overhead into the cost of
	// evaluating its children, per §4.4's AND-adds/OR-max/NOT-complement
	// rule.
	EstimateCost(env *Env) Cost

	// Generate emits the equivalent qnode.Node. ok is false when this
	// predicate (or a descendant) is residual and cannot be expressed as
	// a query-tree node; callers must apply it as a post-filter instead.
	Generate(env *Env) (node qnode.Node, ok bool)
}

// TermPredicate is a leaf matching documents containing term, fully
// indexable whenever any candidate file could plausibly serve it — the
// query core resolves the exact tokenization at validate time, so Check
// always reports it as checked.
type TermPredicate struct {
	Term      string
	Languages []string
	Match     qnode.MatchMode
}

func NewTerm(term string) *TermPredicate {
	return &TermPredicate{Term: term, Match: qnode.StringMode}
}

func (p *TermPredicate) Check(env *Env) Partition {
	return Partition{Checked: p, Candidates: env.Files}
}

func (p *TermPredicate) EstimateCost(env *Env) Cost {
	return Cost{Rate: termRateEstimate, Overhead: 1}
}

func (p *TermPredicate) Generate(env *Env) (qnode.Node, bool) {
	return qnode.NewTermLeaf(p.Term, p.Languages, p.Match), true
}

// termRateEstimate is the default selectivity assumed for a single term
// before any corpus statistics are consulted (roughly "one word in a
// hundred matches"), matching the conservative default a cost-based
// planner falls back to before ANALYZE-style stats exist.
const termRateEstimate = 0.01

// ResidualFunc is an arbitrary document predicate the planner cannot push
// into the index — evaluated in Go against a candidate result set.
type ResidualFunc func(doc qnode.DocumentID) bool

// ResidualPredicate wraps a ResidualFunc so it composes with the other
// combinators; Check always reports it fully residual.
type ResidualPredicate struct {
	Name string
	Fn   ResidualFunc
}

func NewResidual(name string, fn ResidualFunc) *ResidualPredicate {
	return &ResidualPredicate{Name: name, Fn: fn}
}

func (p *ResidualPredicate) Check(env *Env) Partition {
	return Partition{Residual: p}
}

func (p *ResidualPredicate) EstimateCost(env *Env) Cost {
	return Cost{Rate: 0.5, Overhead: 1}
}

func (p *ResidualPredicate) Generate(env *Env) (qnode.Node, bool) {
	return nil, false
}

// AndPredicate requires every child to match. Check pushes each child
// independently and keeps whichever file covers the most checked
// children, per §4.4's "chooses the file that maximizes the number of
// merged predicates" rule; children that can't use that file become
// residual alongside any already-residual children.
type AndPredicate struct {
	Children []Predicate
}

func NewAnd(children ...Predicate) *AndPredicate {
	return &AndPredicate{Children: children}
}

func (p *AndPredicate) Check(env *Env) Partition {
	parts := make([]Partition, len(p.Children))
	for i, c := range p.Children {
		parts[i] = c.Check(env)
	}

	best := bestFile(parts)

	var checked, residual []Predicate
	var candidates []qnode.InvertedFile
	for _, part := range parts {
		if part.Checked != nil && usesFile(part.Candidates, best) {
			checked = append(checked, part.Checked)
			candidates = part.Candidates
		} else if part.Checked != nil {
			residual = append(residual, part.Checked)
		}
		if part.Residual != nil {
			residual = append(residual, part.Residual)
		}
	}

	out := Partition{Candidates: candidates}
	if len(checked) > 0 {
		out.Checked = &AndPredicate{Children: checked}
	}
	if len(residual) > 0 {
		out.Residual = &AndPredicate{Children: residual}
	}
	return out
}

// bestFile picks the index file referenced by the most partitions,
// breaking ties toward the first one seen.
func bestFile(parts []Partition) qnode.InvertedFile {
	counts := make(map[qnode.InvertedFile]int)
	var order []qnode.InvertedFile
	for _, part := range parts {
		for _, f := range part.Candidates {
			if counts[f] == 0 {
				order = append(order, f)
			}
			counts[f]++
		}
	}
	var best qnode.InvertedFile
	bestCount := -1
	for _, f := range order {
		if counts[f] > bestCount {
			best, bestCount = f, counts[f]
		}
	}
	return best
}

func usesFile(candidates []qnode.InvertedFile, target qnode.InvertedFile) bool {
	if target == nil {
		return false
	}
	for _, f := range candidates {
		if f == target {
			return true
		}
	}
	return false
}

func (p *AndPredicate) EstimateCost(env *Env) Cost {
	var rate float64 = 1
	var overhead float64
	for _, c := range p.Children {
		cost := c.EstimateCost(env)
		rate *= cost.Rate
		overhead += cost.Overhead
	}
	return Cost{Rate: rate, Overhead: overhead}
}

func (p *AndPredicate) Generate(env *Env) (qnode.Node, bool) {
	nodes := make([]qnode.Node, 0, len(p.Children))
	ok := true
	for _, c := range p.Children {
		n, childOK := c.Generate(env)
		if !childOK {
			ok = false
			continue
		}
		nodes = append(nodes, n)
	}
	if len(nodes) == 0 {
		return qnode.NewAll(firstFile(env)), ok
	}
	if len(nodes) == 1 {
		return nodes[0], ok
	}
	return qnode.NewAnd(nodes...), ok
}

func firstFile(env *Env) qnode.InvertedFile {
	if len(env.Files) == 0 {
		return nil
	}
	return env.Files[0]
}

// OrPredicate requires any child to match. §4.4: OR only pushes if ALL
// children can be pushed to compatible indices; otherwise the whole OR
// becomes residual, since a partially-pushed OR would silently drop
// documents matched only by the unpushed arm.
type OrPredicate struct {
	Children []Predicate
}

func NewOr(children ...Predicate) *OrPredicate {
	return &OrPredicate{Children: children}
}

func (p *OrPredicate) Check(env *Env) Partition {
	parts := make([]Partition, len(p.Children))
	allChecked := true
	for i, c := range p.Children {
		parts[i] = c.Check(env)
		if !parts[i].fullyChecked() {
			allChecked = false
		}
	}
	if !allChecked {
		return Partition{Residual: p}
	}
	checked := make([]Predicate, len(parts))
	for i, part := range parts {
		checked[i] = part.Checked
	}
	return Partition{Checked: &OrPredicate{Children: checked}, Candidates: parts[0].Candidates}
}

func (p *OrPredicate) EstimateCost(env *Env) Cost {
	var rate float64
	var overhead float64
	for _, c := range p.Children {
		cost := c.EstimateCost(env)
		if cost.Rate > rate {
			rate = cost.Rate
		}
		overhead += cost.Overhead
	}
	return Cost{Rate: rate, Overhead: overhead}
}

func (p *OrPredicate) Generate(env *Env) (qnode.Node, bool) {
	nodes := make([]qnode.Node, 0, len(p.Children))
	for _, c := range p.Children {
		n, ok := c.Generate(env)
		if !ok {
			return nil, false
		}
		nodes = append(nodes, n)
	}
	if len(nodes) == 1 {
		return nodes[0], true
	}
	return qnode.NewOr(nodes...), true
}

// NotPredicate negates its operand. §4.4: pushed only if the operand is
// fully indexable; a partially-indexable operand would make De Morgan
// expansion unsound, so NOT of anything but a fully-checked child is
// entirely residual.
type NotPredicate struct {
	Child Predicate
}

func NewNot(child Predicate) *NotPredicate {
	return &NotPredicate{Child: child}
}

func (p *NotPredicate) Check(env *Env) Partition {
	part := p.Child.Check(env)
	if !part.fullyChecked() {
		return Partition{Residual: p}
	}
	return Partition{Checked: &NotPredicate{Child: part.Checked}, Candidates: part.Candidates}
}

func (p *NotPredicate) EstimateCost(env *Env) Cost {
	cost := p.Child.EstimateCost(env)
	return Cost{Rate: 1 - cost.Rate, Overhead: cost.Overhead}
}

func (p *NotPredicate) Generate(env *Env) (qnode.Node, bool) {
	n, ok := p.Child.Generate(env)
	if !ok {
		return nil, false
	}
	return qnode.NewNot(n), true
}

// ChoicePredicate picks the cheapest of several equivalent ways to
// express the same condition (e.g. different tokenizations of a phrase),
// resolved once at Check time by comparing EstimateCost.
type ChoicePredicate struct {
	Options []Predicate
}

func NewChoice(options ...Predicate) *ChoicePredicate {
	return &ChoicePredicate{Options: options}
}

func (p *ChoicePredicate) cheapest(env *Env) Predicate {
	best := p.Options[0]
	bestCost := best.EstimateCost(env)
	for _, opt := range p.Options[1:] {
		cost := opt.EstimateCost(env)
		if cost.Rate*cost.Overhead < bestCost.Rate*bestCost.Overhead {
			best, bestCost = opt, cost
		}
	}
	return best
}

func (p *ChoicePredicate) Check(env *Env) Partition {
	return p.cheapest(env).Check(env)
}

func (p *ChoicePredicate) EstimateCost(env *Env) Cost {
	best := p.cheapest(env)
	return best.EstimateCost(env)
}

func (p *ChoicePredicate) Generate(env *Env) (qnode.Node, bool) {
	return p.cheapest(env).Generate(env)
}

// InPredicate models membership against a value list. Per §4.4, IN
// (value list) expands to an OR of equalities; a value list small enough
// to expand is pushed as such, larger lists (above inExpansionLimit)
// fall back to a residual membership probe so a long IN list doesn't
// explode into an unbounded OR fan-in.
type InPredicate struct {
	Values []string
}

// inExpansionLimit caps how many OR branches an IN predicate expands to
// before falling back to a residual probe (mirrors the flatten pass's
// OrFlattenThreshold cap on OR fan-in).
const inExpansionLimit = 64

func NewIn(values []string) *InPredicate {
	return &InPredicate{Values: values}
}

func (p *InPredicate) expand() Predicate {
	children := make([]Predicate, len(p.Values))
	for i, v := range p.Values {
		children[i] = NewTerm(v)
	}
	return NewOr(children...)
}

func (p *InPredicate) Check(env *Env) Partition {
	if len(p.Values) > inExpansionLimit {
		return Partition{Residual: p}
	}
	return p.expand().Check(env)
}

func (p *InPredicate) EstimateCost(env *Env) Cost {
	if len(p.Values) > inExpansionLimit {
		return Cost{Rate: 0.5, Overhead: float64(len(p.Values))}
	}
	return p.expand().EstimateCost(env)
}

func (p *InPredicate) Generate(env *Env) (qnode.Node, bool) {
	if len(p.Values) > inExpansionLimit {
		return nil, false
	}
	return p.expand().Generate(env)
}

// ExistsPredicate reports whether any document matches its subquery.
// Per §4.4, Exists rewrites to a join in a relational planner; here,
// with a single document collection, it degenerates to "the subquery's
// result set is non-empty", which Generate cannot express as a
// document-at-a-time node and so always reports residual — the caller
// runs Sub and checks len(results) > 0.
type ExistsPredicate struct {
	Sub Predicate
}

func NewExists(sub Predicate) *ExistsPredicate {
	return &ExistsPredicate{Sub: sub}
}

func (p *ExistsPredicate) Check(env *Env) Partition {
	return Partition{Residual: p}
}

func (p *ExistsPredicate) EstimateCost(env *Env) Cost {
	cost := p.Sub.EstimateCost(env)
	return Cost{Rate: cost.Rate, Overhead: cost.Overhead + 1}
}

func (p *ExistsPredicate) Generate(env *Env) (qnode.Node, bool) {
	return nil, false
}

var (
	_ Predicate = (*TermPredicate)(nil)
	_ Predicate = (*ResidualPredicate)(nil)
	_ Predicate = (*AndPredicate)(nil)
	_ Predicate = (*OrPredicate)(nil)
	_ Predicate = (*NotPredicate)(nil)
	_ Predicate = (*ChoicePredicate)(nil)
	_ Predicate = (*InPredicate)(nil)
	_ Predicate = (*ExistsPredicate)(nil)
)
