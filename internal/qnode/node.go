package qnode

import "context"

// Node is the evaluation protocol every query-tree variant implements:
// boolean membership (Evaluate/LowerBound), ranked scoring
// (EvaluateScore/LowerBoundScore), bulk retrieval (Retrieve), and the
// precise re-check used once a rough pass has already accepted a document
// (Reevaluate). See spec.md §4.2.
type Node interface {
	// Evaluate reports whether document d satisfies this subtree.
	Evaluate(ctx context.Context, d DocumentID, mode Mode) (bool, error)
	// LowerBound returns the smallest DocumentID >= g satisfying this
	// subtree, or ok=false if none exists at or after g.
	LowerBound(ctx context.Context, g DocumentID, mode Mode) (d DocumentID, ok bool, err error)
	// EvaluateScore is Evaluate's ranking-mode counterpart.
	EvaluateScore(ctx context.Context, d DocumentID, mode Mode) (Score, bool, error)
	// LowerBoundScore is LowerBound's ranking-mode counterpart.
	LowerBoundScore(ctx context.Context, g DocumentID, mode Mode) (DocumentID, Score, bool, error)
	// Retrieve performs bulk document-at-a-time collection.
	Retrieve(ctx context.Context, mode Mode) (ResultSet, error)
	// Reevaluate precisely re-checks d, assuming a rough pass already
	// accepted it. It optionally reports TF and a LocationIterator for
	// position composition by an enclosing OrderedDistance/Window/AtomicOr.
	Reevaluate(ctx context.Context, d DocumentID) (matched bool, tf uint32, locs LocationIterator, err error)

	// Base exposes the shared memoization/scoring state every variant
	// embeds, so the generic evaluators in this package (the AND/OR/etc.
	// drivers) can read and update it without a type switch.
	Base() *NodeBase
	// CanonicalString renders this subtree per spec.md §6.4, the key used
	// for structural sharing and the planner's toSQL-equivalent emission.
	CanonicalString() string
	// Children returns this node's ordered child list, or nil for a leaf.
	Children() []Node
	// SetChildren replaces the child list (used by flatten/share/sort).
	SetChildren([]Node)
}

// EndNodeProvider is implemented only by OrderedDistanceNode, which alone
// carries a trailing position-constraint endNode (spec.md §3.2).
type EndNodeProvider interface {
	EndNode() Node
	SetEndNode(Node)
}

// TotalDocumentFrequencySetter is an optional per-variant capability; not
// every node needs to learn the collection's total DF. NodeBase implements
// it by storing the value, so every variant satisfies it.
type TotalDocumentFrequencySetter interface {
	SetTotalDocumentFrequency(uint32)
}

// ShortWordOrMarker identifies an OR node built from a short-word
// expansion (spec.md §4.2.2): such nodes memoize lower/upper even under
// rough evaluation, because their rough and precise answers coincide by
// construction.
type ShortWordOrMarker interface {
	IsShortWordOr() bool
}

// NodeBase holds the state every query-node variant shares: the
// memoized [Lower, Upper] answer window, the estimated document
// frequency and sort factor used by the validator's sorter, the scoring
// plug-ins, and the rough-subtree pointer. Every concrete variant embeds
// NodeBase and satisfies Node by delegating Base() to it.
type NodeBase struct {
	Lower DocumentID
	Upper DocumentID

	EstimatedDocumentFrequency uint32
	SortFactor                 int
	TermLength                 int
	TotalDocumentFrequency     uint32
	FirstStepStatus            FirstStepStatus
	NeedDF                     bool

	Calculator ScoreCalculator
	Combiner   ScoreCombiner

	RoughNode Node

	// ScoreBuf and IteratorBuf are per-node scratch buffers the validator's
	// reserveScoreBuffers pass preallocates (spec.md §4.3 step 8), so
	// AndNode/OrNode's score combining and AtomicOrNode's position-union do
	// not allocate a fresh slice on every EvaluateScore call.
	ScoreBuf    []Score
	IteratorBuf []LocationIterator

	children []Node
}

// NewNodeBase returns a NodeBase with an empty memoization window. Lower
// and Upper both zero is a safe "nothing memoized yet" sentinel because
// DocumentID is 1-origin: no real document ever equals 0.
func NewNodeBase() NodeBase {
	return NodeBase{}
}

// Base implements Node for embedders that don't need to override it.
func (b *NodeBase) Base() *NodeBase { return b }

// Children returns the child list.
func (b *NodeBase) Children() []Node { return b.children }

// SetChildren replaces the child list.
func (b *NodeBase) SetChildren(c []Node) { b.children = c }

// SetTotalDocumentFrequency implements TotalDocumentFrequencySetter by
// storing df in TotalDocumentFrequency; no variant overrides it.
func (b *NodeBase) SetTotalDocumentFrequency(df uint32) { b.TotalDocumentFrequency = df }

// IsShortWordOr is the default false implementation of ShortWordOrMarker.
func (b *NodeBase) IsShortWordOr() bool { return false }

// CheckMemo implements the memoization window test of spec.md §4.2.2 for
// a boolean Evaluate(d) call. known is true when the memo alone answers
// the query; result is only meaningful when known is true.
func (b *NodeBase) CheckMemo(d DocumentID) (result bool, known bool) {
	if d == b.Upper {
		return true, true
	}
	if (d < b.Upper || b.Upper == SentinelEnd) && d >= b.Lower {
		return false, true
	}
	return false, false
}

// CheckMemoLowerBound implements the memoization window test for a
// LowerBound(g) call: if the memoized window already covers g, the
// memoized Upper (or failure) answers it without descending.
func (b *NodeBase) CheckMemoLowerBound(g DocumentID) (found DocumentID, failed bool, known bool) {
	if g <= b.Lower {
		// g is before or at the start of the memoized window: we cannot
		// know the first answer >= g without descending unless the
		// window already starts exactly at g.
		if g == b.Lower {
			if b.Upper == SentinelEnd {
				return 0, true, true
			}
			return b.Upper, false, true
		}
		return 0, false, false
	}
	if g <= b.Upper && b.Upper != SentinelEnd {
		return b.Upper, false, true
	}
	if b.Upper == SentinelEnd && g >= b.Lower {
		return 0, true, true
	}
	return 0, false, false
}

// RecordResult updates the memoization window after a descent. rough
// reports whether the caller requested rough evaluation; per spec.md
// §3.3 the memo is skipped in rough mode unless shortWordOr is true (the
// rough and precise answers coincide by construction for those nodes).
func (b *NodeBase) RecordResult(g DocumentID, found DocumentID, ok bool, rough bool, shortWordOr bool) {
	if rough && !shortWordOr {
		return
	}
	b.Lower = g
	if ok {
		b.Upper = found
	} else {
		b.Upper = SentinelEnd
	}
}
