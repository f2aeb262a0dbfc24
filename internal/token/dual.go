package token

import (
	"context"
	"fmt"
	"strings"

	"github.com/orneryd/nornicdb/internal/ftserrors"
	"github.com/orneryd/nornicdb/internal/qnode"
)

// Feature is one entry of a Dual tokenizer's feature-extraction map
// (spec.md §4.1.3): a morpheme's term frequency within the document and
// its ranking cost, consumed by a Ranker selecting the top-K feature
// terms for a document summary or related-document query.
type Feature struct {
	TF   uint32
	Cost float64
}

// DualTokenizer produces both a word tokenization (via a registered
// morphological analyzer) and an n-gram tokenization per surface word,
// and records the boundary token ("") used by WordNode to test
// word-start/word-end constraints (spec.md §4.2.9).
type DualTokenizer struct {
	Ngram      *NgramTokenizer
	AnalyzerID string
	registry   *Registry
}

func NewDual(ngram *NgramTokenizer, analyzerID string, registry *Registry) *DualTokenizer {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &DualTokenizer{Ngram: ngram, AnalyzerID: analyzerID, registry: registry}
}

func (t *DualTokenizer) IsSupported(mode Mode) bool { return true }

// MinTokenCharLen delegates to the n-gram sub-tokenizer when present,
// since that is the fallback path short-word classification exercises.
func (t *DualTokenizer) MinTokenCharLen() int {
	if t.Ngram != nil {
		return t.Ngram.MinTokenCharLen()
	}
	return MinTokenCharLen
}

func (t *DualTokenizer) analyze(text string) ([]Morpheme, error) {
	fn, err := t.registry.Analyzer(t.AnalyzerID)
	if err != nil {
		return nil, err
	}
	return fn(text), nil
}

// Tokenize returns the word-form tokens (one per surface morpheme). Use
// NgramsFor to obtain a given word token's constituent n-grams, and
// ExtractFeatures to obtain the TF/cost feature map for document mode.
func (t *DualTokenizer) Tokenize(ctx context.Context, text string, mode Mode) (Result, error) {
	morphemes, err := t.analyze(text)
	if err != nil {
		return Result{}, err
	}
	var res Result
	offset := 0
	for _, m := range morphemes {
		idx := strings.Index(text[offset:], m.Surface)
		if idx < 0 {
			continue
		}
		start := offset + idx
		end := start + len(m.Surface)
		offset = end
		res.Tokens = append(res.Tokens, qnode.Token{Text: m.Base, CharLen: len([]rune(m.Base))})
		res.Starts = append(res.Starts, start)
		res.Ends = append(res.Ends, end)
	}
	return res, nil
}

// TokenizeMulti returns the word tokenization as the primary alternative
// and a pure n-gram tokenization of the whole input as the fallback, so
// the validator can fall back to n-grams when a morpheme carries no
// usable index entries (e.g. an unknown proper noun).
func (t *DualTokenizer) TokenizeMulti(ctx context.Context, text string, mode Mode) ([]Result, error) {
	word, err := t.Tokenize(ctx, text, mode)
	if err != nil {
		return nil, err
	}
	alts := []Result{word}
	if t.Ngram != nil {
		if ngramRes, err := t.Ngram.Tokenize(ctx, text, mode); err == nil && len(ngramRes.Tokens) > 0 {
			alts = append(alts, ngramRes)
		}
	}
	return alts, nil
}

// NgramsFor returns the constituent n-grams of a single surface word, the
// per-token detail the Dual index stores alongside the word entry itself.
func (t *DualTokenizer) NgramsFor(ctx context.Context, word string) (Result, error) {
	if t.Ngram == nil {
		return Result{}, fmt.Errorf("dual tokenizer has no n-gram sub-tokenizer: %w", ftserrors.ErrInvalidTokenizerParameter)
	}
	return t.Ngram.Tokenize(ctx, word, DocumentMode)
}

// ExtractFeatures builds the morpheme -> (TF, cost) map used by a Ranker
// to select a document's top-K feature terms (spec.md §4.1.3). Cost is
// 1/(1+rune length of the base form), so shorter morphemes get a higher
// cost.
func (t *DualTokenizer) ExtractFeatures(ctx context.Context, text string) (map[string]Feature, error) {
	morphemes, err := t.analyze(text)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Feature, len(morphemes))
	for _, m := range morphemes {
		f := out[m.Base]
		f.TF++
		f.Cost = 1.0 / float64(1+len([]rune(m.Base)))
		out[m.Base] = f
	}
	return out, nil
}

// BoundaryToken is the reserved empty-string index key WordNode looks up
// to test word-boundary adjacency in a dual index (spec.md §4.2.9).
const BoundaryToken = ""
