// Package calc provides concrete qnode.ScoreCalculator implementations,
// generalizing the free-function BM25/TF-IDF math of the original
// full-text index into stateful per-node instances that satisfy the
// two-stage prepare/first_step/second_step scoring protocol (spec.md
// §4.2.10, §6.2).
package calc

import (
	"context"
	"math"

	"github.com/orneryd/nornicdb/internal/qnode"
)

// BM25 standard parameters, unchanged from the original index.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// BM25Calculator computes Lucene-style BM25 scores: stage-1 is the
// length-normalized TF term, finalized in stage 2 by multiplying in the
// IDF once the true document frequency is known.
type BM25Calculator struct {
	lengths     qnode.DocumentLengthFile
	avgLength   float64
	totalDF     uint32
	df          uint32
}

func NewBM25() *BM25Calculator { return &BM25Calculator{} }

func (c *BM25Calculator) Name() string { return "bm25" }

func (c *BM25Calculator) Prepare(totalDF, df uint32) {
	c.totalDF = totalDF
	c.df = df
}

func (c *BM25Calculator) SetDocumentLengthFile(f qnode.DocumentLengthFile) { c.lengths = f }

func (c *BM25Calculator) SetAverageDocumentLength(avg float64) { c.avgLength = avg }

// FirstStep computes the TF-normalization term; IDF is folded in during
// SecondStep since it depends on the true, possibly-merged df.
func (c *BM25Calculator) FirstStep(tf uint32, d qnode.DocumentID) (qnode.Score, bool) {
	if tf == 0 {
		return 0, false
	}
	docLen := c.avgLength
	if c.lengths != nil {
		if l, err := c.lengths.Length(context.Background(), d); err == nil && l > 0 {
			docLen = float64(l)
		}
	}
	if c.avgLength == 0 {
		c.avgLength = docLen
	}
	tfF := float64(tf)
	numerator := tfF * (bm25K1 + 1)
	denom := tfF + bm25K1*(1-bm25B+bm25B*(docLen/nonZero(c.avgLength)))
	return qnode.Score(numerator / denom), true
}

// SecondStep multiplies in the BM25 IDF term, using the Lucene +1
// smoothing variant that keeps IDF non-negative for very common terms.
func (c *BM25Calculator) SecondStep(df uint32, stage1 qnode.Score, totalDF uint32) qnode.Score {
	n := float64(totalDF)
	dfF := float64(df)
	idf := math.Log(1 + (n-dfF+0.5)/(dfF+0.5))
	if idf < 0 {
		idf = 0
	}
	return stage1 * qnode.Score(idf)
}

func (c *BM25Calculator) Clone() qnode.ScoreCalculator {
	cp := *c
	return &cp
}

func nonZero(f float64) float64 {
	if f == 0 {
		return 1
	}
	return f
}
