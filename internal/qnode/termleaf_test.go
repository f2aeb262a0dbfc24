package qnode_test

import (
	"context"
	"errors"
	"testing"

	"github.com/orneryd/nornicdb/internal/ftserrors"
	"github.com/orneryd/nornicdb/internal/qnode"
)

func TestTermLeafNode_UnvalidatedEvaluationFails(t *testing.T) {
	leaf := qnode.NewTermLeaf("cat", []string{"en"}, qnode.StringMode)
	ctx := context.Background()

	t.Run("LowerBound refuses to run", func(t *testing.T) {
		_, _, err := leaf.LowerBound(ctx, 1, qnode.Mode(0))
		if !errors.Is(err, ftserrors.ErrQueryValidateFail) {
			t.Errorf("err = %v, want wrapped ErrQueryValidateFail", err)
		}
	})

	t.Run("Evaluate refuses to run", func(t *testing.T) {
		_, err := leaf.Evaluate(ctx, 1, qnode.Mode(0))
		if !errors.Is(err, ftserrors.ErrQueryValidateFail) {
			t.Errorf("err = %v, want wrapped ErrQueryValidateFail", err)
		}
	})

	t.Run("Retrieve refuses to run", func(t *testing.T) {
		_, err := leaf.Retrieve(ctx, qnode.Mode(0))
		if !errors.Is(err, ftserrors.ErrQueryValidateFail) {
			t.Errorf("err = %v, want wrapped ErrQueryValidateFail", err)
		}
	})
}

func TestTermLeafNode_CanonicalString(t *testing.T) {
	leaf := qnode.NewTermLeaf("cat", []string{"en", "fr"}, qnode.ExactWord)
	got := leaf.CanonicalString()
	want := `#term[e:en,fr]("cat")`
	if got != want {
		t.Errorf("CanonicalString() = %q, want %q", got, want)
	}
}
