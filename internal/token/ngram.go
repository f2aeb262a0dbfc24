package token

import (
	"context"
	"fmt"

	"github.com/orneryd/nornicdb/internal/ftserrors"
	"github.com/orneryd/nornicdb/internal/qnode"
)

// NgramTokenizer splits text into overlapping runs of MinLen..MaxLen
// runes, the simplest member of the family and the fallback when no
// per-script blocking is configured. 1 <= MinLen <= MaxLen <= 8.
type NgramTokenizer struct {
	MinLen int
	MaxLen int
}

func NewNgram(minLen, maxLen int) (*NgramTokenizer, error) {
	if minLen < 1 || maxLen < minLen || maxLen > 8 {
		return nil, fmt.Errorf("ngram(%d,%d): %w", minLen, maxLen, ftserrors.ErrInvalidTokenizerParameter)
	}
	return &NgramTokenizer{MinLen: minLen, MaxLen: maxLen}, nil
}

func (t *NgramTokenizer) IsSupported(mode Mode) bool { return true }

// MinTokenCharLen returns this tokenizer's own configured MinLen.
func (t *NgramTokenizer) MinTokenCharLen() int { return t.MinLen }

// Tokenize emits (spec.md §4.1.1): in document mode, for every starting
// rune position the longest run of up to MaxLen runes available there
// (greedy longest-match), which is what indexing wants: maximal coverage
// with minimal posting count. In query mode it emits only MaxLen-length
// tokens, one per position, the minimal coverage suitable as an index
// lookup key. In simpleQuery mode it emits a minimal non-overlapping set
// of MaxLen tokens, advancing by MaxLen instead of one rune at a time.
func (t *NgramTokenizer) Tokenize(ctx context.Context, text string, mode Mode) (Result, error) {
	runes, offsets := runeOffsets(text)
	var res Result
	n := len(runes)
	emit := func(i, l int) {
		res.Tokens = append(res.Tokens, qnode.Token{Text: string(runes[i : i+l]), CharLen: l})
		res.Starts = append(res.Starts, offsets[i])
		res.Ends = append(res.Ends, offsets[i+l])
	}
	switch mode {
	case QueryMode:
		for i := 0; i+t.MaxLen <= n; i++ {
			emit(i, t.MaxLen)
		}
	case SimpleQueryMode:
		for i := 0; i+t.MaxLen <= n; i += t.MaxLen {
			emit(i, t.MaxLen)
		}
	default:
		for i := 0; i < n; {
			l := t.MaxLen
			if i+l > n {
				l = n - i
			}
			if l < t.MinLen {
				if n-i < t.MinLen {
					break
				}
				l = t.MinLen
			}
			emit(i, l)
			i++
		}
	}
	return res, nil
}

// TokenizeMulti returns one Result per length in [MinLen,MaxLen], each
// covering the whole input at that fixed n-gram length — the alternates
// the validator's best-path selection (spec.md §4.3.2) chooses among to
// minimize total document frequency while covering every character.
func (t *NgramTokenizer) TokenizeMulti(ctx context.Context, text string, mode Mode) ([]Result, error) {
	runes, offsets := runeOffsets(text)
	n := len(runes)
	var alts []Result
	for l := t.MinLen; l <= t.MaxLen; l++ {
		if l > n {
			continue
		}
		var res Result
		for i := 0; i+l <= n; i++ {
			res.Tokens = append(res.Tokens, qnode.Token{Text: string(runes[i : i+l]), CharLen: l})
			res.Starts = append(res.Starts, offsets[i])
			res.Ends = append(res.Ends, offsets[i+l])
		}
		if len(res.Tokens) > 0 {
			alts = append(alts, res)
		}
	}
	if len(alts) == 0 && n > 0 {
		// shorter than MinLen: emit the whole input as one short token so
		// the short-word path (spec.md §4.2.2) has something to work with.
		alts = append(alts, Result{
			Tokens: []qnode.Token{{Text: string(runes), CharLen: n}},
			Starts: []int{0},
			Ends:   []int{len(text)},
		})
	}
	return alts, nil
}

// runeOffsets decodes text into runes and the byte offset each rune
// starts at, plus one trailing sentinel offset equal to len(text).
func runeOffsets(text string) ([]rune, []int) {
	runes := make([]rune, 0, len(text))
	offsets := make([]int, 0, len(text)+1)
	for i, r := range text {
		runes = append(runes, r)
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(text))
	return runes, offsets
}
