package qnode_test

import (
	"context"
	"testing"

	"github.com/orneryd/nornicdb/internal/invert"
	"github.com/orneryd/nornicdb/internal/qnode"
)

func TestAtomicOrNode_MergesPositionsAcrossSynonyms(t *testing.T) {
	file := invert.NewMemoryInvertedFile(qnode.Ngram, nil)
	file.IndexTerm("cat", 1, []qnode.Location{1, 5})
	file.IndexTerm("feline", 1, []qnode.Location{9})

	or := qnode.NewAtomicOr(leafFor(t, file, "cat"), leafFor(t, file, "feline"))
	matched, err := or.Evaluate(context.Background(), 1, qnode.Mode(0))
	if err != nil || !matched {
		t.Fatalf("Evaluate(1) = (%v, %v), want (true, nil)", matched, err)
	}
	_, tf, _, err := or.Reevaluate(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if tf != 3 {
		t.Errorf("tf = %d, want 3 (union of 2 cat positions + 1 feline position)", tf)
	}
}

func TestAtomicOrNode_CanonicalString(t *testing.T) {
	file := invert.NewMemoryInvertedFile(qnode.Ngram, nil)
	file.IndexTerm("cat", 1, []qnode.Location{1})
	or := qnode.NewAtomicOr(leafFor(t, file, "cat"))
	if got, want := or.CanonicalString(), "#syn(#tok(cat))"; got != want {
		t.Errorf("CanonicalString() = %q, want %q", got, want)
	}
}
