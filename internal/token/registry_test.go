package token_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/orneryd/nornicdb/internal/ftserrors"
	"github.com/orneryd/nornicdb/internal/token"
)

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := token.NewRegistry()
	r.RegisterNormalizer("lower", strings.ToLower)

	fn, err := r.Normalizer("lower")
	if err != nil {
		t.Fatal(err)
	}
	if fn("ABC") != "abc" {
		t.Errorf("normalizer result = %q, want abc", fn("ABC"))
	}
}

func TestRegistry_UnknownResourceFails(t *testing.T) {
	r := token.NewRegistry()
	_, err := r.Normalizer("missing")
	if !errors.Is(err, ftserrors.ErrGetNormalizerFail) {
		t.Errorf("err = %v, want ErrGetNormalizerFail", err)
	}
	_, err = r.Stemmer("missing")
	if !errors.Is(err, ftserrors.ErrGetNormalizerFail) {
		t.Errorf("err = %v, want ErrGetNormalizerFail", err)
	}
	_, err = r.Analyzer("missing")
	if !errors.Is(err, ftserrors.ErrGetNormalizerFail) {
		t.Errorf("err = %v, want ErrGetNormalizerFail", err)
	}
}

func TestDefaultRegistry_HasSimpleAnalyzer(t *testing.T) {
	analyze, err := token.DefaultRegistry().Analyzer(token.DefaultAnalyzerID)
	if err != nil {
		t.Fatal(err)
	}
	morphemes := analyze("The Cat Sat")
	if len(morphemes) == 0 {
		t.Fatal("expected at least one morpheme")
	}
	for _, m := range morphemes {
		if m.Surface != strings.ToLower(m.Surface) {
			t.Errorf("expected lowercased surface, got %q", m.Surface)
		}
	}
}
