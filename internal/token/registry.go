package token

import (
	"fmt"
	"sync"

	"github.com/orneryd/nornicdb/internal/ftserrors"
)

// Normalizer maps a surface string to its normalized form (case folding,
// width folding, diacritic stripping — whatever the registered resource
// implements).
type Normalizer func(text string) string

// Stemmer reduces a word token to its stem/lemma.
type Stemmer func(word string) string

// Morpheme is one morphological-analyzer output unit: a surface form, its
// normalized base, and a part-of-speech tag used by feature extraction's
// cost model.
type Morpheme struct {
	Surface string
	Base    string
	Pos     string
}

// Analyzer splits text into morphemes for the Dual tokenizer's word path.
type Analyzer func(text string) []Morpheme

// Registry is the single process-wide init-once holder for the three
// named resource-function pointers the tokenizer layer depends on
// (spec.md §9's "global state" note). Tokenizers hold a reference to it
// with a lifetime at least as long as any query using them; the registry
// itself is safe for concurrent registration and lookup.
type Registry struct {
	mu          sync.RWMutex
	normalizers map[string]Normalizer
	stemmers    map[string]Stemmer
	analyzers   map[string]Analyzer
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry instance.
func DefaultRegistry() *Registry { return defaultRegistry }

func NewRegistry() *Registry {
	return &Registry{
		normalizers: make(map[string]Normalizer),
		stemmers:    make(map[string]Stemmer),
		analyzers:   make(map[string]Analyzer),
	}
}

func (r *Registry) RegisterNormalizer(resourceID string, fn Normalizer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.normalizers[resourceID] = fn
}

func (r *Registry) RegisterStemmer(resourceID string, fn Stemmer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stemmers[resourceID] = fn
}

func (r *Registry) RegisterAnalyzer(resourceID string, fn Analyzer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analyzers[resourceID] = fn
}

func (r *Registry) Normalizer(resourceID string) (Normalizer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.normalizers[resourceID]
	if !ok {
		return nil, fmt.Errorf("normalizer resource %q: %w", resourceID, ftserrors.ErrGetNormalizerFail)
	}
	return fn, nil
}

func (r *Registry) Stemmer(resourceID string) (Stemmer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.stemmers[resourceID]
	if !ok {
		return nil, fmt.Errorf("stemmer resource %q: %w", resourceID, ftserrors.ErrGetNormalizerFail)
	}
	return fn, nil
}

func (r *Registry) Analyzer(resourceID string) (Analyzer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.analyzers[resourceID]
	if !ok {
		return nil, fmt.Errorf("analyzer resource %q: %w", resourceID, ftserrors.ErrGetNormalizerFail)
	}
	return fn, nil
}
