package token_test

import (
	"context"
	"testing"

	"github.com/orneryd/nornicdb/internal/token"
)

func newDual(t *testing.T) *token.DualTokenizer {
	t.Helper()
	ngram, err := token.NewNgram(1, 2)
	if err != nil {
		t.Fatal(err)
	}
	return token.NewDual(ngram, token.DefaultAnalyzerID, token.DefaultRegistry())
}

func TestDualTokenizer_Tokenize(t *testing.T) {
	dual := newDual(t)
	res, err := dual.Tokenize(context.Background(), "the cat sat", token.DocumentMode)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"cat", "sat"}
	if len(res.Tokens) != len(want) {
		t.Fatalf("Tokens = %+v, want %v (stop word \"the\" dropped)", res.Tokens, want)
	}
	for i, w := range want {
		if res.Tokens[i].Text != w {
			t.Errorf("Tokens[%d] = %q, want %q", i, res.Tokens[i].Text, w)
		}
	}
}

func TestDualTokenizer_TokenizeMulti_FallsBackToNgram(t *testing.T) {
	dual := newDual(t)
	alts, err := dual.TokenizeMulti(context.Background(), "cat", token.QueryMode)
	if err != nil {
		t.Fatal(err)
	}
	if len(alts) != 2 {
		t.Fatalf("len(alts) = %d, want 2 (word path + n-gram fallback)", len(alts))
	}
	if alts[0].Tokens[0].Text != "cat" {
		t.Errorf("alts[0] = %+v, want word path with %q", alts[0], "cat")
	}
}

func TestDualTokenizer_NgramsFor(t *testing.T) {
	dual := newDual(t)
	res, err := dual.NgramsFor(context.Background(), "cat")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Tokens) == 0 {
		t.Fatal("expected n-grams for the surface word")
	}
}

func TestDualTokenizer_ExtractFeatures(t *testing.T) {
	dual := newDual(t)
	features, err := dual.ExtractFeatures(context.Background(), "cat sat cat")
	if err != nil {
		t.Fatal(err)
	}
	if features["cat"].TF != 2 {
		t.Errorf("features[cat].TF = %d, want 2", features["cat"].TF)
	}
	if features["sat"].TF != 1 {
		t.Errorf("features[sat].TF = %d, want 1", features["sat"].TF)
	}
}
