package calc_test

import (
	"testing"

	"github.com/orneryd/nornicdb/internal/qnode"
	"github.com/orneryd/nornicdb/internal/scoring/calc"
)

func TestNew(t *testing.T) {
	cases := []struct {
		name string
		want string
		ok   bool
	}{
		{"bm25", "bm25", true},
		{"tfidf", "tfidf", true},
		{"unit", "unit", true},
		{"nonexistent", "", false},
	}
	for _, tc := range cases {
		c, ok := calc.New(tc.name)
		if ok != tc.ok {
			t.Errorf("New(%q) ok = %v, want %v", tc.name, ok, tc.ok)
			continue
		}
		if ok && c.Name() != tc.want {
			t.Errorf("New(%q).Name() = %q, want %q", tc.name, c.Name(), tc.want)
		}
	}
}

func TestBM25Calculator_ZeroTFMisses(t *testing.T) {
	c := calc.NewBM25()
	_, ok := c.FirstStep(0, 1)
	if ok {
		t.Error("expected FirstStep(0, _) to report a miss")
	}
}

func TestBM25Calculator_HigherTFScoresHigher(t *testing.T) {
	c := calc.NewBM25()
	c.SetAverageDocumentLength(10)
	lo, _ := c.FirstStep(1, 1)
	hi, _ := c.FirstStep(5, 1)
	if hi <= lo {
		t.Errorf("FirstStep(5,_) = %v, want > FirstStep(1,_) = %v", hi, lo)
	}
}

func TestBM25Calculator_SecondStepRareTermsScoreHigher(t *testing.T) {
	c := calc.NewBM25()
	rare := c.SecondStep(1, 1, 1000)
	common := c.SecondStep(500, 1, 1000)
	if rare <= common {
		t.Errorf("rare-term IDF = %v, want > common-term IDF = %v", rare, common)
	}
}

func TestBM25Calculator_Clone(t *testing.T) {
	c := calc.NewBM25()
	c.SetAverageDocumentLength(42)
	c.Prepare(100, 5)
	cp := c.Clone()
	if cp.Name() != c.Name() {
		t.Errorf("clone Name() = %q, want %q", cp.Name(), c.Name())
	}
	if cp == qnode.ScoreCalculator(c) {
		t.Error("Clone() should return a distinct instance")
	}
}

func TestTFIDFCalculator(t *testing.T) {
	c := calc.NewTFIDF()
	stage1, ok := c.FirstStep(3, 1)
	if !ok || stage1 <= 0 {
		t.Errorf("FirstStep(3,_) = (%v,%v), want positive score", stage1, ok)
	}
	final := c.SecondStep(2, stage1, 100)
	if final <= 0 {
		t.Errorf("SecondStep(...) = %v, want positive", final)
	}
	if got := c.SecondStep(0, stage1, 100); got != stage1 {
		t.Errorf("SecondStep with df=0 should pass stage1 through unchanged, got %v", got)
	}
}

func TestUnitCalculator(t *testing.T) {
	c := calc.NewUnit()
	stage1, ok := c.FirstStep(7, 1)
	if !ok || stage1 != 7 {
		t.Errorf("FirstStep(7,_) = (%v,%v), want (7,true)", stage1, ok)
	}
	if got := c.SecondStep(10, stage1, 100); got != stage1 {
		t.Errorf("SecondStep should pass stage1 through unchanged, got %v", got)
	}
}
