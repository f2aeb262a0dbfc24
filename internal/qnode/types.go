// Package qnode implements the query-node tree: the polymorphic operator
// model (AND, OR, NOT, AtomicOr, OrderedDistance, Window, Location, Word,
// term leaves) and its two evaluation contracts (boolean membership and
// ranked scoring), each following the rough/precise two-stage protocol
// described for NornicDB's full-text query core.
package qnode

import "math"

// DocumentID identifies a document within one inverted file. IDs are
// 1-origin; SentinelEnd is the reserved upper sentinel meaning "past end".
type DocumentID uint32

// SentinelEnd marks "no further document" — the Upper that RecordResult
// stores after a LowerBound that found nothing.
const SentinelEnd DocumentID = math.MaxUint32

// Location is a 1-origin position within a document.
type Location uint32

// Score is a ranked-evaluation result.
type Score float64

// Token is a unicode string plus its length in characters. The character
// length is tracked separately from len(Text) because normalization and
// stemming can change the rune count without the map key (Text) changing
// meaning for lookups: map keys compare on Text only.
type Token struct {
	Text    string
	CharLen int
}

// Mode is a bit set of evaluation mode flags. Unrecognized bits are
// ignored by every evaluator, so callers may pass a superset mode value
// without coordinating with every node variant.
type Mode uint32

const (
	// RoughEvaluation requests the superset "rough" traversal rather than
	// the precise one.
	RoughEvaluation Mode = 1 << iota
	// RankingMode requests score-carrying evaluation rather than plain
	// boolean membership.
	RankingMode
	// OrDocumentAtATime requests OR children be driven document-at-a-time
	// rather than all-at-once (used by bulk retrieve).
	OrDocumentAtATime
	// TokenizeQuery marks that term leaves still need tokenization
	// (pre-validate queries only; evaluators never see this set).
	TokenizeQuery
	// SkipNormalizing disables tokenizer normalization/expansion.
	SkipNormalizing
	// SkipExpansion disables multi-result tokenization (tokenize_multi
	// collapses to a single alternative).
	SkipExpansion
	// GetTFByMinEvaluation requests that a combinator compute TF from the
	// minimum-cost child only, rather than merging every child's TF.
	GetTFByMinEvaluation
	// GetDFByMinEvaluation requests DF estimation from the cheapest child.
	GetDFByMinEvaluation
	// GetDFByRoughEvaluation requests DF estimation via the rough subtree.
	GetDFByRoughEvaluation
	// CalAtomicOrTFByAddChildTF switches short-word AtomicOr's TF
	// computation from union-of-positions to sum-of-child-TFs. This is a
	// deliberate, preserved mode bit (see spec.md §9 Open Questions) —
	// never simplify it away.
	CalAtomicOrTFByAddChildTF
)

// Has reports whether all bits in want are set in m.
func (m Mode) Has(want Mode) bool { return m&want == want }

// WithRough returns m with RoughEvaluation set.
func (m Mode) WithRough() Mode { return m | RoughEvaluation }

// WithoutRough returns m with RoughEvaluation cleared.
func (m Mode) WithoutRough() Mode { return m &^ RoughEvaluation }

// IsRough reports whether m requests rough evaluation.
func (m Mode) IsRough() bool { return m.Has(RoughEvaluation) }

// IsRanking reports whether m requests score-carrying evaluation.
func (m Mode) IsRanking() bool { return m.Has(RankingMode) }

// MatchMode is a TermLeafNode's match semantics, fixed at parse time and
// resolved during validate into an executable subtree.
type MatchMode int

const (
	StringMode MatchMode = iota
	WordHead
	WordTail
	SimpleWord
	ExactWord
	MultiLanguageMode
)

// String renders a MatchMode using the canonical single-letter codes of
// spec.md §6.4 ("n", "h", "t", "s", "e", "a", "m").
func (m MatchMode) String() string {
	switch m {
	case StringMode:
		return "n"
	case WordHead:
		return "h"
	case WordTail:
		return "t"
	case SimpleWord:
		return "s"
	case ExactWord:
		return "e"
	case MultiLanguageMode:
		return "m"
	default:
		return "a"
	}
}

// IndexingType is the inverted file's storage strategy for tokens, as
// reported by InvertedFile.GetIndexingType.
type IndexingType int

const (
	Ngram IndexingType = iota
	Word
	Dual
)

// FirstStepStatus tracks whether a node's scoring first-step pass has run
// for the current retrieveScore call, so second_step is only invoked once
// the relevant subtree's first step has fully completed (spec.md §4.2.10).
type FirstStepStatus int

const (
	FirstStepNotStarted FirstStepStatus = iota
	FirstStepInProgress
	FirstStepDone
)
