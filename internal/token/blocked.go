package token

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/orneryd/nornicdb/internal/ftserrors"
	"github.com/orneryd/nornicdb/internal/qnode"
)

// Block is one of the thirteen Unicode character classes the Blocked
// N-gram tokenizer partitions input into (spec.md §4.1.2). OTH catches
// everything not claimed by a more specific class.
type Block int

const (
	BlockOther Block = iota
	BlockASCII
	BlockSymbol
	BlockDigit
	BlockAlpha
	BlockHiragana
	BlockKatakana
	BlockGreek
	BlockCyrillic
	BlockHalfwidth // KEI: halfwidth/fullwidth forms
	BlockHanja     // KAN: CJK-unified ideographs used in a non-Han reading context
	BlockHan       // HAN: CJK unified ideographs
	BlockGaiji     // GAI: private-use / unassigned
)

var blockNames = map[string]Block{
	"OTH": BlockOther,
	"ASC": BlockASCII,
	"SYM": BlockSymbol,
	"DIG": BlockDigit,
	"ALP": BlockAlpha,
	"HIR": BlockHiragana,
	"KAT": BlockKatakana,
	"GRK": BlockGreek,
	"RUS": BlockCyrillic,
	"KEI": BlockHalfwidth,
	"KAN": BlockHanja,
	"HAN": BlockHan,
	"GAI": BlockGaiji,
}

// ClassifyRune assigns a rune to one of the 13 blocks. Order matters:
// more specific ranges are tested before the ASCII/alpha/digit catch-alls.
func ClassifyRune(r rune) Block {
	switch {
	case r == unicode.ReplacementChar, !unicode.IsGraphic(r) && !unicode.IsSpace(r):
		return BlockGaiji
	case unicode.In(r, unicode.Hiragana):
		return BlockHiragana
	case unicode.In(r, unicode.Katakana):
		return BlockKatakana
	case unicode.In(r, unicode.Greek):
		return BlockGreek
	case unicode.In(r, unicode.Cyrillic):
		return BlockCyrillic
	case unicode.In(r, unicode.Han):
		return BlockHan
	case r >= 0xFF00 && r <= 0xFFEF:
		return BlockHalfwidth
	case r < 0x80 && (unicode.IsLetter(r) || unicode.IsDigit(r)):
		return BlockASCII
	case unicode.IsDigit(r):
		return BlockDigit
	case unicode.IsLetter(r):
		return BlockAlpha
	case unicode.IsPunct(r) || unicode.IsSymbol(r):
		return BlockSymbol
	default:
		return BlockOther
	}
}

// blockRange is one block's configured [min,max] token length.
type blockRange struct {
	min, max int
}

// BlockedNgramTokenizer is the character-class-aware n-gram tokenizer of
// spec.md §4.1.2. Ranges maps a Block to its [min,max]; ValidPairs records
// which (leftBlock,rightBlock) boundary crossings may still emit a 2-gram
// spanning the boundary.
type BlockedNgramTokenizer struct {
	Ranges     map[Block]blockRange
	ValidPairs map[[2]Block]bool
	defaultMin int
	defaultMax int
}

// ParseBlockedParams parses the "JAP:ALL:2 KAT:3 KAN:1:2" parameter
// grammar of spec.md §6 into a BlockedNgramTokenizer. The leading "JAP"
// literal is the family discriminator and is consumed by the caller
// before this is invoked; fields here start at the first block clause.
func ParseBlockedParams(fields []string) (*BlockedNgramTokenizer, error) {
	t := &BlockedNgramTokenizer{
		Ranges:     make(map[Block]blockRange),
		ValidPairs: make(map[[2]Block]bool),
		defaultMin: 1,
		defaultMax: 2,
	}
	for _, f := range fields {
		parts := strings.Split(f, ":")
		if len(parts) < 2 {
			return nil, fmt.Errorf("blocked tokenizer clause %q: %w", f, ftserrors.ErrInvalidTokenizerParameter)
		}
		first := parts[0]
		if b2, ok := blockNames[parts[1]]; ok && len(parts) == 2 {
			b1, ok1 := blockNames[first]
			if !ok1 {
				return nil, fmt.Errorf("unknown block %q: %w", first, ftserrors.ErrInvalidTokenizerParameter)
			}
			t.ValidPairs[[2]Block{b1, b2}] = true
			t.ValidPairs[[2]Block{b2, b1}] = true
			continue
		}
		min, max, err := parseRange(parts[1:])
		if err != nil {
			return nil, err
		}
		if first == "ALL" {
			t.defaultMin, t.defaultMax = min, max
			continue
		}
		b, ok := blockNames[first]
		if !ok {
			return nil, fmt.Errorf("unknown block %q: %w", first, ftserrors.ErrInvalidTokenizerParameter)
		}
		t.Ranges[b] = blockRange{min: min, max: max}
	}
	return t, nil
}

func parseRange(parts []string) (int, int, error) {
	min, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("tokenizer range %v: %w", parts, ftserrors.ErrInvalidTokenizerParameter)
	}
	max := min
	if len(parts) > 1 {
		max, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, 0, fmt.Errorf("tokenizer range %v: %w", parts, ftserrors.ErrInvalidTokenizerParameter)
		}
	}
	if min < 1 || max < min || max > 8 {
		return 0, 0, fmt.Errorf("tokenizer range [%d,%d]: %w", min, max, ftserrors.ErrInvalidTokenizerParameter)
	}
	return min, max, nil
}

func (t *BlockedNgramTokenizer) rangeFor(b Block) blockRange {
	if r, ok := t.Ranges[b]; ok {
		return r
	}
	return blockRange{min: t.defaultMin, max: t.defaultMax}
}

func (t *BlockedNgramTokenizer) IsSupported(mode Mode) bool { return true }

// MinTokenCharLen returns the default block's minimum length, the
// fallback threshold used by blocks with no explicit clause.
func (t *BlockedNgramTokenizer) MinTokenCharLen() int { return t.defaultMin }

// Tokenize cuts the input at block boundaries and, within each block,
// applies the per-block range the same way NgramTokenizer applies
// [MinLen,MaxLen]: document mode emits the longest in-block run at each
// position, query mode emits only max-length tokens one per position,
// simpleQuery mode emits a non-overlapping set of max-length tokens. A
// cross-boundary 2-gram is additionally emitted wherever the boundary
// pair is registered valid (spec.md §4.1.2), regardless of mode.
func (t *BlockedNgramTokenizer) Tokenize(ctx context.Context, text string, mode Mode) (Result, error) {
	runes, offsets := runeOffsets(text)
	n := len(runes)
	if n == 0 {
		return Result{}, nil
	}
	blocks := make([]Block, n)
	for i, r := range runes {
		blocks[i] = ClassifyRune(r)
	}
	var res Result
	emit := func(k, l int) {
		res.Tokens = append(res.Tokens, qnode.Token{Text: string(runes[k : k+l]), CharLen: l})
		res.Starts = append(res.Starts, offsets[k])
		res.Ends = append(res.Ends, offsets[k+l])
	}
	i := 0
	for i < n {
		b := blocks[i]
		j := i
		for j < n && blocks[j] == b {
			j++
		}
		rg := t.rangeFor(b)
		switch mode {
		case QueryMode:
			for k := i; k+rg.max <= j; k++ {
				emit(k, rg.max)
			}
		case SimpleQueryMode:
			for k := i; k+rg.max <= j; k += rg.max {
				emit(k, rg.max)
			}
		default:
			for k := i; k < j; {
				l := rg.max
				if k+l > j {
					l = j - k
				}
				if l < rg.min {
					if j-k < rg.min {
						break
					}
					l = rg.min
				}
				emit(k, l)
				k++
			}
		}
		if j < n && t.ValidPairs[[2]Block{blocks[j-1], blocks[j]}] {
			emit(j-1, 2)
		}
		i = j
	}
	return res, nil
}

// TokenizeMulti returns the single deterministic tokenization as its only
// alternative: block assignment is a function of the text alone, so there
// is no ambiguity for the validator to choose among.
func (t *BlockedNgramTokenizer) TokenizeMulti(ctx context.Context, text string, mode Mode) ([]Result, error) {
	res, err := t.Tokenize(ctx, text, mode)
	if err != nil || len(res.Tokens) == 0 {
		return nil, err
	}
	return []Result{res}, nil
}
