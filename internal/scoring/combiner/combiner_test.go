package combiner_test

import (
	"testing"

	"github.com/orneryd/nornicdb/internal/qnode"
	"github.com/orneryd/nornicdb/internal/scoring/combiner"
)

func TestNew(t *testing.T) {
	cases := []struct {
		name string
		ok   bool
	}{
		{"sum", true}, {"max", true}, {"product", true}, {"first", true}, {"nope", false},
	}
	for _, tc := range cases {
		c, ok := combiner.New(tc.name)
		if ok != tc.ok {
			t.Errorf("New(%q) ok = %v, want %v", tc.name, ok, tc.ok)
			continue
		}
		if ok && c.Name() != tc.name {
			t.Errorf("New(%q).Name() = %q, want %q", tc.name, c.Name(), tc.name)
		}
	}
}

func TestSum(t *testing.T) {
	c := combiner.Sum{}
	if got := c.Apply([]qnode.Score{1, 2, 3}); got != 6 {
		t.Errorf("Apply = %v, want 6", got)
	}
	if !c.IsAssociative() || !c.IsCommutative() {
		t.Error("Sum should be both associative and commutative")
	}
}

func TestMax(t *testing.T) {
	c := combiner.Max{}
	if got := c.Apply([]qnode.Score{1, 5, 3}); got != 5 {
		t.Errorf("Apply = %v, want 5", got)
	}
	if got := c.Apply(nil); got != 0 {
		t.Errorf("Apply(nil) = %v, want 0", got)
	}
}

func TestProduct(t *testing.T) {
	c := combiner.Product{}
	if got := c.Apply([]qnode.Score{2, 3, 4}); got != 24 {
		t.Errorf("Apply = %v, want 24", got)
	}
}

func TestFirstNonZero(t *testing.T) {
	c := combiner.FirstNonZero{}
	if got := c.Apply([]qnode.Score{0, 0, 5, 9}); got != 5 {
		t.Errorf("Apply = %v, want 5", got)
	}
	if c.IsAssociative() || c.IsCommutative() {
		t.Error("FirstNonZero must not be reported associative or commutative")
	}
}
