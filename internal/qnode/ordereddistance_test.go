package qnode_test

import (
	"context"
	"testing"

	"github.com/orneryd/nornicdb/internal/invert"
	"github.com/orneryd/nornicdb/internal/qnode"
)

func TestOrderedDistanceNode_MatchesAdjacentPositions(t *testing.T) {
	file := invert.NewMemoryInvertedFile(qnode.Ngram, nil)
	// "fire truck": fi,ir,re,[space]t,tr,ru,uc,ck as 2-grams starting at 0,1,2,4,5,6,7,8
	file.IndexTerm("fi", 1, []qnode.Location{0})
	file.IndexTerm("re", 1, []qnode.Location{2})

	od := qnode.NewOrderedDistance(
		[]qnode.Node{leafFor(t, file, "fi"), leafFor(t, file, "re")},
		[]int{0, 2},
	)
	matched, err := od.Evaluate(context.Background(), 1, qnode.Mode(0))
	if err != nil || !matched {
		t.Fatalf("Evaluate(1) = (%v, %v), want (true, nil)", matched, err)
	}
}

func TestOrderedDistanceNode_RejectsMisalignedPositions(t *testing.T) {
	file := invert.NewMemoryInvertedFile(qnode.Ngram, nil)
	file.IndexTerm("fi", 1, []qnode.Location{0})
	file.IndexTerm("re", 1, []qnode.Location{9}) // far from offset 2

	od := qnode.NewOrderedDistance(
		[]qnode.Node{leafFor(t, file, "fi"), leafFor(t, file, "re")},
		[]int{0, 2},
	)
	matched, err := od.Evaluate(context.Background(), 1, qnode.Mode(0))
	if err != nil || matched {
		t.Fatalf("Evaluate(1) = (%v, %v), want (false, nil)", matched, err)
	}
}

func TestOrderedDistanceNode_CanonicalString(t *testing.T) {
	file := invert.NewMemoryInvertedFile(qnode.Ngram, nil)
	file.IndexTerm("fi", 1, []qnode.Location{0})
	file.IndexTerm("re", 1, []qnode.Location{2})
	od := qnode.NewOrderedDistance(
		[]qnode.Node{leafFor(t, file, "fi"), leafFor(t, file, "re")},
		[]int{0, 2},
	)
	want := "#dist(0:#tok(fi),2:#tok(re))"
	if got := od.CanonicalString(); got != want {
		t.Errorf("CanonicalString() = %q, want %q", got, want)
	}
}
