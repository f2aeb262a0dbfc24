package token

import (
	"strings"
	"unicode"
)

// simpleWordStopWords mirrors the minimal, deliberately short stop-word
// list NornicDB's original fulltext index used: generic function words
// only, leaving domain terms untouched.
var simpleWordStopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true,
	"at": true, "be": true, "by": true, "for": true, "from": true,
	"has": true, "have": true, "he": true, "in": true, "is": true,
	"it": true, "its": true, "of": true, "on": true, "that": true,
	"the": true, "to": true, "was": true, "were": true, "will": true,
	"with": true, "this": true, "these": true, "those": true, "but": true,
	"or": true, "not": true, "can": true, "could": true, "would": true,
	"should": true, "may": true, "might": true, "must": true, "shall": true,
	"we": true, "you": true, "your": true, "my": true, "their": true,
	"been": true, "do": true, "does": true, "did": true,
}

// DefaultAnalyzerID is the resource id registered for SimpleWordAnalyze.
const DefaultAnalyzerID = "simple"

func init() {
	DefaultRegistry().RegisterAnalyzer(DefaultAnalyzerID, SimpleWordAnalyze)
	DefaultRegistry().RegisterNormalizer(DefaultAnalyzerID, strings.ToLower)
}

// SimpleWordAnalyze is the fallback morphological analyzer used when no
// language-specific resource is registered: it splits on non-letter,
// non-digit runes and drops generic stop words, exactly as the original
// fulltext index's word splitter did.
func SimpleWordAnalyze(text string) []Morpheme {
	text = strings.ToLower(text)
	var out []Morpheme
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		word := text[start:end]
		if !simpleWordStopWords[word] {
			out = append(out, Morpheme{Surface: word, Base: word, Pos: "WORD"})
		}
		start = -1
	}
	for i, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(text))
	return out
}
