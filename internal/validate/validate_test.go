package validate_test

import (
	"context"
	"testing"

	"github.com/orneryd/nornicdb/internal/invert"
	"github.com/orneryd/nornicdb/internal/qnode"
	"github.com/orneryd/nornicdb/internal/token"
	"github.com/orneryd/nornicdb/internal/validate"
)

func newFile(t *testing.T) *invert.MemoryInvertedFile {
	t.Helper()
	return invert.NewMemoryInvertedFile(qnode.Ngram, nil)
}

func ngram22(t *testing.T) *token.NgramTokenizer {
	t.Helper()
	tok, err := token.NewNgram(2, 2)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestValidate_TermLeafResolvesToOrderedDistance(t *testing.T) {
	file := newFile(t)
	file.IndexTerm("ca", 1, []qnode.Location{0})
	file.IndexTerm("at", 1, []qnode.Location{1})

	root := qnode.NewTermLeaf("cat", []string{"en"}, qnode.StringMode)
	validated, err := validate.Validate(context.Background(), root, file, ngram22(t), validate.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := validated.(*qnode.OrderedDistanceNode); !ok {
		t.Fatalf("validated = %T, want *qnode.OrderedDistanceNode", validated)
	}
	matched, err := validated.Evaluate(context.Background(), 1, qnode.Mode(0))
	if err != nil || !matched {
		t.Errorf("Evaluate(1) = (%v, %v), want (true, nil)", matched, err)
	}
}

func TestValidate_MissingTermBecomesEmptySet(t *testing.T) {
	file := newFile(t)
	root := qnode.NewTermLeaf("zzz", []string{"en"}, qnode.StringMode)
	validated, err := validate.Validate(context.Background(), root, file, ngram22(t), validate.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := validated.(*qnode.EmptySetNode); !ok {
		t.Fatalf("validated = %T, want *qnode.EmptySetNode", validated)
	}
}

func TestValidate_AndCollapsesToEmptySetWhenAnyTermMissing(t *testing.T) {
	file := newFile(t)
	file.IndexTerm("ca", 1, []qnode.Location{0})
	file.IndexTerm("at", 1, []qnode.Location{1})

	root := qnode.NewAnd(
		qnode.NewTermLeaf("cat", []string{"en"}, qnode.StringMode),
		qnode.NewTermLeaf("zzz", []string{"en"}, qnode.StringMode),
	)
	validated, err := validate.Validate(context.Background(), root, file, ngram22(t), validate.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := validated.(*qnode.EmptySetNode); !ok {
		t.Fatalf("validated = %T, want *qnode.EmptySetNode", validated)
	}
}

func TestValidate_OrDropsEmptySetChild(t *testing.T) {
	file := newFile(t)
	file.IndexTerm("ca", 1, []qnode.Location{0})
	file.IndexTerm("at", 1, []qnode.Location{1})

	root := qnode.NewOr(
		qnode.NewTermLeaf("cat", []string{"en"}, qnode.StringMode),
		qnode.NewTermLeaf("zzz", []string{"en"}, qnode.StringMode),
	)
	validated, err := validate.Validate(context.Background(), root, file, ngram22(t), validate.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := validated.(*qnode.EmptySetNode); ok {
		t.Fatal("expected the OR to survive with its one live child, not collapse to EmptySet")
	}
	matched, err := validated.Evaluate(context.Background(), 1, qnode.Mode(0))
	if err != nil || !matched {
		t.Errorf("Evaluate(1) = (%v, %v), want (true, nil)", matched, err)
	}
}

func TestValidate_NotOfMissingTermMatchesEverything(t *testing.T) {
	file := newFile(t)
	file.IndexTerm("xx", 3, []qnode.Location{0})

	root := qnode.NewNot(qnode.NewTermLeaf("zzz", []string{"en"}, qnode.StringMode))
	validated, err := validate.Validate(context.Background(), root, file, ngram22(t), validate.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	matched, err := validated.Evaluate(context.Background(), 3, qnode.Mode(0))
	if err != nil || !matched {
		t.Errorf("Evaluate(3) = (%v, %v), want (true, nil) (NOT of EmptySet matches everything)", matched, err)
	}
}

func TestValidate_ShortWordBuildsAtomicOr(t *testing.T) {
	file := newFile(t)
	file.IndexTerm("ab", 1, []qnode.Location{0})
	file.IndexTerm("abc", 1, []qnode.Location{1})

	// MinLen=3: a 2-character term falls short of the tokenizer's own
	// configured minimum, not the package-wide MinTokenCharLen default, so
	// this exercises the tokenizer-specific short-word threshold the
	// validator must consult (spec.md §4.2.2, §4.3.1).
	ngram34, err := token.NewNgram(3, 4)
	if err != nil {
		t.Fatal(err)
	}
	opts := validate.DefaultOptions()
	opts.ShortWordRangeLimit = 10
	root := qnode.NewTermLeaf("ab", []string{"en"}, qnode.StringMode)
	validated, err := validate.Validate(context.Background(), root, file, ngram34, opts)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := validated.(*qnode.AtomicOrNode); !ok {
		t.Fatalf("validated = %T, want *qnode.AtomicOrNode", validated)
	}
}

func TestValidate_ShortWordThresholdFollowsTokenizerMinLen(t *testing.T) {
	file := newFile(t)
	file.IndexTerm("a", 1, []qnode.Location{0})

	// With MinLen=1, a single-character term is never "short" relative to
	// its own tokenizer, so it must resolve to a plain SimpleTokenLeaf
	// rather than an AtomicOr range scan.
	ngram11, err := token.NewNgram(1, 1)
	if err != nil {
		t.Fatal(err)
	}
	opts := validate.DefaultOptions()
	opts.ShortWordRangeLimit = 10
	root := qnode.NewTermLeaf("a", []string{"en"}, qnode.StringMode)
	validated, err := validate.Validate(context.Background(), root, file, ngram11, opts)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := validated.(*qnode.AtomicOrNode); ok {
		t.Fatalf("validated = %T, want a plain leaf, not AtomicOr (MinLen=1 has no shorter term)", validated)
	}
}

func TestValidate_FlattenCollapsesNestedAnd(t *testing.T) {
	file := newFile(t)
	file.IndexTerm("ca", 1, []qnode.Location{0})
	file.IndexTerm("at", 1, []qnode.Location{1})
	file.IndexTerm("do", 1, []qnode.Location{2})
	file.IndexTerm("og", 1, []qnode.Location{3})

	inner := qnode.NewAnd(
		qnode.NewTermLeaf("cat", []string{"en"}, qnode.StringMode),
		qnode.NewTermLeaf("dog", []string{"en"}, qnode.StringMode),
	)
	root := qnode.NewAnd(inner)
	validated, err := validate.Validate(context.Background(), root, file, ngram22(t), validate.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	and, ok := validated.(*qnode.AndNode)
	if !ok {
		t.Fatalf("validated = %T, want *qnode.AndNode", validated)
	}
	for _, c := range and.Children() {
		if _, nested := c.(*qnode.AndNode); nested {
			t.Errorf("expected flatten to remove the nested AND, children = %+v", and.Children())
		}
	}
}

func TestValidate_ShareDedupesIdenticalSubtrees(t *testing.T) {
	file := newFile(t)
	file.IndexTerm("ca", 1, []qnode.Location{0})
	file.IndexTerm("at", 1, []qnode.Location{1})

	root := qnode.NewOr(
		qnode.NewTermLeaf("cat", []string{"en"}, qnode.StringMode),
		qnode.NewTermLeaf("cat", []string{"en"}, qnode.StringMode),
	)
	validated, err := validate.Validate(context.Background(), root, file, ngram22(t), validate.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	or, ok := validated.(*qnode.OrNode)
	if !ok {
		t.Fatalf("validated = %T, want *qnode.OrNode", validated)
	}
	if len(or.Children()) != 1 {
		t.Errorf("len(children) = %d, want 1 (duplicate subtree deduped by share)", len(or.Children()))
	}
}

func TestCanonicalKey_MatchesCanonicalStringHash(t *testing.T) {
	n := qnode.NewEmptySet()
	key := validate.CanonicalKey(n)
	if key == "" {
		t.Error("expected a non-empty canonical key")
	}
	if key != validate.CanonicalKey(qnode.NewEmptySet()) {
		t.Error("expected CanonicalKey to be deterministic for equal canonical strings")
	}
}
