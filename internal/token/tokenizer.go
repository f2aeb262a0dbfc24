// Package token implements the tokenizer family: N-gram, Blocked N-gram,
// and Dual (word + n-gram), each generalized from the single fixed
// word-splitter NornicDB's fulltext index used internally into a
// parameterized family driven by the tokenizer parameter grammar.
package token

import (
	"context"

	"github.com/orneryd/nornicdb/internal/qnode"
)

// Mode selects which of the three tokenization contracts a caller wants:
// documents are split for indexing, single-term queries for exact lookup,
// and simple queries into a minimal non-overlapping set of maximum-length
// n-grams (the Dual tokenizer's word path ignores the mode).
type Mode int

const (
	DocumentMode Mode = iota
	QueryMode
	SimpleQueryMode
)

// Result is one tokenization alternative: an ordered slice of tokens
// together with the character offsets ([Start,End)) each token covers in
// the original input, needed to rebuild OrderedDistance offsets during
// validation.
type Result struct {
	Tokens []qnode.Token
	Starts []int
	Ends   []int
}

// Tokenizer is the contract every family member satisfies. Tokenize
// returns the single best-effort tokenization; TokenizeMulti returns every
// plausible alternative (e.g. a Dual tokenizer's word-form and n-gram
// fallback) so the validator's best-path selection (spec.md §4.3.2) can
// choose among them. IsSupported reports whether the configured parameter
// set actually covers the call's mode (used by the validator before
// committing to a tokenizer for a given language).
type Tokenizer interface {
	Tokenize(ctx context.Context, text string, mode Mode) (Result, error)
	TokenizeMulti(ctx context.Context, text string, mode Mode) ([]Result, error)
	IsSupported(mode Mode) bool
	// MinTokenCharLen reports this tokenizer's own configured short-word
	// cutoff, so the validator's short-word classification (spec.md
	// §4.2.2, §4.3.1) reflects the tokenizer actually in use rather than
	// the package's MinTokenCharLen default.
	MinTokenCharLen() int
}

// MinTokenCharLen is the default short-word cutoff, reported by a
// DualTokenizer that has no n-gram sub-tokenizer. Tokens shorter than a
// tokenizer's own cutoff take the validator's short-word handling path
// (spec.md §4.2.2, §4.3.1).
const MinTokenCharLen = 2
