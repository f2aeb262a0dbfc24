package planner_test

import (
	"testing"

	"github.com/orneryd/nornicdb/internal/invert"
	"github.com/orneryd/nornicdb/internal/planner"
	"github.com/orneryd/nornicdb/internal/qnode"
)

func newEnv() *planner.Env {
	file := invert.NewMemoryInvertedFile(qnode.Ngram, nil)
	return &planner.Env{Files: []qnode.InvertedFile{file}}
}

func TestTermPredicate_AlwaysChecked(t *testing.T) {
	env := newEnv()
	p := planner.NewTerm("cat")
	part := p.Check(env)
	if part.Checked == nil || part.Residual != nil {
		t.Errorf("partition = %+v, want fully checked", part)
	}
	node, ok := p.Generate(env)
	if !ok || node == nil {
		t.Fatal("expected TermPredicate to generate a node")
	}
	if _, isTermLeaf := node.(*qnode.TermLeafNode); !isTermLeaf {
		t.Errorf("Generate() = %T, want *qnode.TermLeafNode", node)
	}
}

func TestResidualPredicate_NeverChecked(t *testing.T) {
	env := newEnv()
	p := planner.NewResidual("custom", func(d qnode.DocumentID) bool { return d%2 == 0 })
	part := p.Check(env)
	if part.Checked != nil || part.Residual == nil {
		t.Errorf("partition = %+v, want fully residual", part)
	}
	if _, ok := p.Generate(env); ok {
		t.Error("expected Generate to report ok=false for a residual predicate")
	}
}

func TestAndPredicate_AllCheckedGeneratesAndNode(t *testing.T) {
	env := newEnv()
	p := planner.NewAnd(planner.NewTerm("cat"), planner.NewTerm("dog"))
	part := p.Check(env)
	if part.Residual != nil {
		t.Errorf("expected fully checked AND, got residual %+v", part.Residual)
	}
	node, ok := p.Generate(env)
	if !ok {
		t.Fatal("expected AND of two checked terms to generate fully")
	}
	if _, isAnd := node.(*qnode.AndNode); !isAnd {
		t.Errorf("Generate() = %T, want *qnode.AndNode", node)
	}
}

func TestAndPredicate_ResidualChildSurvivesInResidual(t *testing.T) {
	env := newEnv()
	residual := planner.NewResidual("custom", func(d qnode.DocumentID) bool { return true })
	p := planner.NewAnd(planner.NewTerm("cat"), residual)
	part := p.Check(env)
	if part.Checked == nil {
		t.Error("expected the checked term to still be pushed")
	}
	if part.Residual == nil {
		t.Error("expected the residual child to surface in the partition")
	}
	_, ok := p.Generate(env)
	if ok {
		t.Error("expected Generate to report ok=false when a child is residual")
	}
}

func TestOrPredicate_PartialPushMakesWholeResidual(t *testing.T) {
	env := newEnv()
	residual := planner.NewResidual("custom", func(d qnode.DocumentID) bool { return true })
	p := planner.NewOr(planner.NewTerm("cat"), residual)
	part := p.Check(env)
	if part.Checked != nil || part.Residual == nil {
		t.Errorf("partition = %+v, want fully residual when any child is unpushable", part)
	}
}

func TestOrPredicate_AllCheckedGeneratesOrNode(t *testing.T) {
	env := newEnv()
	p := planner.NewOr(planner.NewTerm("cat"), planner.NewTerm("dog"))
	node, ok := p.Generate(env)
	if !ok {
		t.Fatal("expected OR of two checked terms to generate fully")
	}
	if _, isOr := node.(*qnode.OrNode); !isOr {
		t.Errorf("Generate() = %T, want *qnode.OrNode", node)
	}
}

func TestNotPredicate_ResidualOperandMakesNotResidual(t *testing.T) {
	env := newEnv()
	residual := planner.NewResidual("custom", func(d qnode.DocumentID) bool { return true })
	p := planner.NewNot(residual)
	part := p.Check(env)
	if part.Checked != nil {
		t.Error("expected NOT of a residual operand to be fully residual")
	}
}

func TestChoicePredicate_PicksCheapestOption(t *testing.T) {
	env := newEnv()
	expensive := planner.NewResidual("expensive", func(d qnode.DocumentID) bool { return true })
	cheap := planner.NewTerm("cat")
	p := planner.NewChoice(expensive, cheap)
	node, ok := p.Generate(env)
	if !ok {
		t.Fatal("expected Choice to pick the indexable option")
	}
	if _, isTermLeaf := node.(*qnode.TermLeafNode); !isTermLeaf {
		t.Errorf("Generate() = %T, want the cheap TermLeafNode", node)
	}
}

func TestInPredicate_ExpandsSmallListToOr(t *testing.T) {
	env := newEnv()
	p := planner.NewIn([]string{"cat", "dog", "bird"})
	node, ok := p.Generate(env)
	if !ok {
		t.Fatal("expected small IN list to generate fully")
	}
	if _, isOr := node.(*qnode.OrNode); !isOr {
		t.Errorf("Generate() = %T, want *qnode.OrNode", node)
	}
}

func TestInPredicate_LargeListFallsBackToResidual(t *testing.T) {
	env := newEnv()
	values := make([]string, 100)
	for i := range values {
		values[i] = "term"
	}
	p := planner.NewIn(values)
	part := p.Check(env)
	if part.Residual == nil {
		t.Error("expected an oversized IN list to be residual")
	}
	if _, ok := p.Generate(env); ok {
		t.Error("expected Generate to refuse an oversized IN list")
	}
}

func TestExistsPredicate_AlwaysResidual(t *testing.T) {
	env := newEnv()
	p := planner.NewExists(planner.NewTerm("cat"))
	part := p.Check(env)
	if part.Checked != nil || part.Residual == nil {
		t.Error("expected Exists to always be residual")
	}
	if _, ok := p.Generate(env); ok {
		t.Error("expected Exists Generate to report ok=false")
	}
}
