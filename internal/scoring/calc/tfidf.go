package calc

import (
	"math"

	"github.com/orneryd/nornicdb/internal/qnode"
)

// TFIDFCalculator computes plain TF * IDF without BM25's length
// normalization or TF saturation, offered alongside BM25Calculator as a
// simpler named alternative (spec.md §6.2: "A calculator is identified by
// a name string").
type TFIDFCalculator struct {
	totalDF uint32
	df      uint32
}

func NewTFIDF() *TFIDFCalculator { return &TFIDFCalculator{} }

func (c *TFIDFCalculator) Name() string { return "tfidf" }

func (c *TFIDFCalculator) Prepare(totalDF, df uint32) {
	c.totalDF = totalDF
	c.df = df
}

func (c *TFIDFCalculator) SetDocumentLengthFile(qnode.DocumentLengthFile) {}
func (c *TFIDFCalculator) SetAverageDocumentLength(float64)              {}

func (c *TFIDFCalculator) FirstStep(tf uint32, d qnode.DocumentID) (qnode.Score, bool) {
	if tf == 0 {
		return 0, false
	}
	return qnode.Score(1 + math.Log(float64(tf))), true
}

func (c *TFIDFCalculator) SecondStep(df uint32, stage1 qnode.Score, totalDF uint32) qnode.Score {
	if df == 0 || totalDF == 0 {
		return stage1
	}
	idf := math.Log(float64(totalDF) / float64(df))
	return stage1 * qnode.Score(idf)
}

func (c *TFIDFCalculator) Clone() qnode.ScoreCalculator {
	cp := *c
	return &cp
}

// UnitCalculator scores every matching document by its raw TF and
// ignores DF — spec.md §8.4's "score = TF" baseline example, useful for
// tests.
type UnitCalculator struct{}

func NewUnit() *UnitCalculator { return &UnitCalculator{} }

func (c *UnitCalculator) Name() string                                   { return "unit" }
func (c *UnitCalculator) Prepare(totalDF, df uint32)                     {}
func (c *UnitCalculator) SetDocumentLengthFile(qnode.DocumentLengthFile) {}
func (c *UnitCalculator) SetAverageDocumentLength(float64)               {}

func (c *UnitCalculator) FirstStep(tf uint32, d qnode.DocumentID) (qnode.Score, bool) {
	if tf == 0 {
		return 0, false
	}
	return qnode.Score(tf), true
}

func (c *UnitCalculator) SecondStep(df uint32, stage1 qnode.Score, totalDF uint32) qnode.Score {
	return stage1
}

func (c *UnitCalculator) Clone() qnode.ScoreCalculator { return &UnitCalculator{} }

// New constructs a named calculator, mirroring spec.md §6.2's
// create(name) factory contract.
func New(name string) (qnode.ScoreCalculator, bool) {
	switch name {
	case "bm25":
		return NewBM25(), true
	case "tfidf":
		return NewTFIDF(), true
	case "unit":
		return NewUnit(), true
	default:
		return nil, false
	}
}
