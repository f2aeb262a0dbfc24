package qnode_test

import (
	"context"
	"testing"

	"github.com/orneryd/nornicdb/internal/qnode"
)

func TestBooleanResultLeaf(t *testing.T) {
	leaf := qnode.NewBooleanResultLeaf([]qnode.DocumentID{5, 1, 3})
	ctx := context.Background()

	t.Run("sorts docs ascending", func(t *testing.T) {
		want := []qnode.DocumentID{1, 3, 5}
		for i, d := range want {
			if leaf.Docs[i] != d {
				t.Errorf("Docs[%d] = %d, want %d", i, leaf.Docs[i], d)
			}
		}
	})

	t.Run("LowerBound finds the ceiling", func(t *testing.T) {
		d, ok, err := leaf.LowerBound(ctx, 2, qnode.Mode(0))
		if err != nil {
			t.Fatal(err)
		}
		if !ok || d != 3 {
			t.Errorf("LowerBound(2) = (%d, %v), want (3, true)", d, ok)
		}
	})

	t.Run("LowerBound past the end fails", func(t *testing.T) {
		_, ok, err := leaf.LowerBound(ctx, 100, qnode.Mode(0))
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Error("expected no match past the end of the list")
		}
	})

	t.Run("Evaluate matches exact membership", func(t *testing.T) {
		ok, err := leaf.Evaluate(ctx, 3, qnode.Mode(0))
		if err != nil || !ok {
			t.Errorf("Evaluate(3) = (%v, %v), want (true, nil)", ok, err)
		}
		ok, err = leaf.Evaluate(ctx, 4, qnode.Mode(0))
		if err != nil || ok {
			t.Errorf("Evaluate(4) = (%v, %v), want (false, nil)", ok, err)
		}
	})

	t.Run("Retrieve returns every document", func(t *testing.T) {
		results, err := leaf.Retrieve(ctx, qnode.Mode(0))
		if err != nil {
			t.Fatal(err)
		}
		if len(results) != 3 {
			t.Fatalf("len(results) = %d, want 3", len(results))
		}
	})

	t.Run("CanonicalString reports the document count", func(t *testing.T) {
		if got := leaf.CanonicalString(); got != "#result(3 docs)" {
			t.Errorf("CanonicalString() = %q, want #result(3 docs)", got)
		}
	})
}

func TestRankingResultLeaf(t *testing.T) {
	leaf := qnode.NewRankingResultLeaf(qnode.ResultSet{
		{Doc: 3, Score: 1.5, TF: 2},
		{Doc: 1, Score: 0.5, TF: 1},
	})
	ctx := context.Background()

	t.Run("sorts entries by document id", func(t *testing.T) {
		if leaf.Results[0].Doc != 1 || leaf.Results[1].Doc != 3 {
			t.Errorf("Results = %+v, want sorted by Doc", leaf.Results)
		}
	})

	t.Run("EvaluateScore returns the stored score", func(t *testing.T) {
		score, ok, err := leaf.EvaluateScore(ctx, 3, qnode.Mode(0))
		if err != nil || !ok || score != 1.5 {
			t.Errorf("EvaluateScore(3) = (%v, %v, %v), want (1.5, true, nil)", score, ok, err)
		}
	})

	t.Run("EvaluateScore on an absent document misses", func(t *testing.T) {
		_, ok, err := leaf.EvaluateScore(ctx, 2, qnode.Mode(0))
		if err != nil || ok {
			t.Errorf("EvaluateScore(2) = (_, %v, %v), want (false, nil)", ok, err)
		}
	})

	t.Run("Reevaluate reports the stored TF", func(t *testing.T) {
		matched, tf, _, err := leaf.Reevaluate(ctx, 3)
		if err != nil || !matched || tf != 2 {
			t.Errorf("Reevaluate(3) = (%v, %d, _, %v), want (true, 2, nil)", matched, tf, err)
		}
	})

	t.Run("CanonicalString reports the document count", func(t *testing.T) {
		if got := leaf.CanonicalString(); got != "#rankresult(2 docs)" {
			t.Errorf("CanonicalString() = %q, want #rankresult(2 docs)", got)
		}
	})
}
