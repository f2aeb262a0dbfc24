package token

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/orneryd/nornicdb/internal/ftserrors"
)

// Parse builds a Tokenizer from the parameter-string grammar of spec.md
// §6.3: "tokenizer_name:params[ @NORMRSCID:int]". tokenizer_name selects
// the family ("ngram", "blocked", "dual"); params is family-specific;
// the optional trailing "@NORMRSCID:n" names the normalizer/analyzer
// resource id registered under r.
func Parse(spec string, r *Registry) (Tokenizer, error) {
	if r == nil {
		r = DefaultRegistry()
	}
	body, resourceID, _ := strings.Cut(spec, " @NORMRSCID:")
	name, rest, ok := strings.Cut(body, ":")
	if !ok {
		return nil, fmt.Errorf("tokenizer spec %q missing params: %w", spec, ftserrors.ErrInvalidTokenizerParameter)
	}
	switch name {
	case "ngram":
		return parseNgramSpec(rest)
	case "blocked":
		fields := splitBlockedFields(rest)
		if len(fields) == 0 || fields[0] != "JAP" {
			return nil, fmt.Errorf("blocked tokenizer spec %q missing JAP marker: %w", spec, ftserrors.ErrInvalidTokenizerParameter)
		}
		return ParseBlockedParams(fields[1:])
	case "dual":
		fields := splitBlockedFields(rest)
		if len(fields) == 0 || fields[0] != "JAP" {
			return nil, fmt.Errorf("dual tokenizer spec %q missing JAP marker: %w", spec, ftserrors.ErrInvalidTokenizerParameter)
		}
		blocked, err := ParseBlockedParams(fields[1:])
		if err != nil {
			return nil, err
		}
		ngram, err := NewNgram(1, 2)
		if err != nil {
			return nil, err
		}
		analyzerID := resourceID
		if analyzerID == "" {
			analyzerID = DefaultAnalyzerID
		}
		_ = blocked // the blocked clauses are only syntax-checked; the n-gram side always uses 1..2-grams
		return NewDual(ngram, analyzerID, r), nil
	default:
		return nil, fmt.Errorf("unknown tokenizer family %q: %w", name, ftserrors.ErrInvalidTokenizerParameter)
	}
}

func parseNgramSpec(rest string) (*NgramTokenizer, error) {
	parts := strings.Split(rest, ":")
	min, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("ngram spec %q: %w", rest, ftserrors.ErrInvalidTokenizerParameter)
	}
	max := min
	if len(parts) > 1 {
		max, err = strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("ngram spec %q: %w", rest, ftserrors.ErrInvalidTokenizerParameter)
		}
	}
	return NewNgram(min, max)
}

// splitBlockedFields turns "JAP:ALL:2:KAT:3:KAN:1:2" into
// ["JAP","ALL:2","KAT:3","KAN:1:2"] by regrouping around the block-name
// tokens, since the raw colon split doesn't align with clause boundaries.
func splitBlockedFields(rest string) []string {
	raw := strings.Split(rest, ":")
	if len(raw) == 0 {
		return nil
	}
	var out []string
	out = append(out, raw[0])
	i := 1
	for i < len(raw) {
		clause := []string{raw[i]}
		i++
		for i < len(raw) {
			if _, isBlock := blockNames[raw[i]]; isBlock && len(clause) >= 1 {
				break
			}
			clause = append(clause, raw[i])
			i++
		}
		out = append(out, strings.Join(clause, ":"))
	}
	return out
}
