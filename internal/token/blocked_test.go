package token_test

import (
	"context"
	"testing"

	"github.com/orneryd/nornicdb/internal/token"
)

func TestClassifyRune(t *testing.T) {
	cases := []struct {
		r    rune
		want token.Block
	}{
		{'a', token.BlockASCII},
		{'5', token.BlockASCII},
		{'あ', token.BlockHiragana},
		{'ア', token.BlockKatakana},
		{'α', token.BlockGreek},
		{'д', token.BlockCyrillic},
		{'漢', token.BlockHan},
		{'!', token.BlockSymbol},
	}
	for _, c := range cases {
		if got := token.ClassifyRune(c.r); got != c.want {
			t.Errorf("ClassifyRune(%q) = %v, want %v", c.r, got, c.want)
		}
	}
}

func TestParseBlockedParams_DefaultRange(t *testing.T) {
	tok, err := token.ParseBlockedParams([]string{"ALL:2"})
	if err != nil {
		t.Fatal(err)
	}
	res, err := tok.Tokenize(context.Background(), "abcd", token.DocumentMode)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Tokens) == 0 {
		t.Fatal("expected at least one token")
	}
	for _, tk := range res.Tokens {
		if tk.CharLen > 2 {
			t.Errorf("token %q has CharLen %d, want <= 2", tk.Text, tk.CharLen)
		}
	}
}

func TestParseBlockedParams_UnknownBlockErrors(t *testing.T) {
	_, err := token.ParseBlockedParams([]string{"XYZ:2"})
	if err == nil {
		t.Error("expected an error for an unknown block name")
	}
}

func TestParseBlockedParams_ValidPairClause(t *testing.T) {
	tok, err := token.ParseBlockedParams([]string{"HIR:KAT"})
	if err != nil {
		t.Fatal(err)
	}
	if !tok.ValidPairs[[2]token.Block{token.BlockHiragana, token.BlockKatakana}] {
		t.Error("expected HIR:KAT to register a valid boundary pair")
	}
	if !tok.ValidPairs[[2]token.Block{token.BlockKatakana, token.BlockHiragana}] {
		t.Error("expected the pair to be registered symmetrically")
	}
}

func TestBlockedNgramTokenizer_CrossBoundaryPair(t *testing.T) {
	tok, err := token.ParseBlockedParams([]string{"HIR:1", "KAT:1", "HIR:KAT"})
	if err != nil {
		t.Fatal(err)
	}
	res, err := tok.Tokenize(context.Background(), "あア", token.DocumentMode)
	if err != nil {
		t.Fatal(err)
	}
	var sawBoundary bool
	for _, tk := range res.Tokens {
		if tk.Text == "あア" {
			sawBoundary = true
		}
	}
	if !sawBoundary {
		t.Errorf("tokens = %+v, want a cross-boundary 2-gram spanning the script change", res.Tokens)
	}
}

func TestBlockedNgramTokenizer_EmptyInput(t *testing.T) {
	tok, err := token.ParseBlockedParams([]string{"ALL:2"})
	if err != nil {
		t.Fatal(err)
	}
	res, err := tok.Tokenize(context.Background(), "", token.DocumentMode)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Tokens) != 0 {
		t.Errorf("expected no tokens for empty input, got %+v", res.Tokens)
	}
}
