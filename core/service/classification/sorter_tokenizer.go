package classification

import (
	"regexp"

	"golang.org/x/text/cases"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// tokenPattern matches maximal runs of word characters; single-character runs are skipped.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Tokenizer turns raw text into normalized terms (unigrams and adjacent bigrams).
//
// Text is NFKC-normalized and case-folded, split into word tokens of at least two
// characters, stop words are dropped, and bigrams are formed over the surviving tokens.
// A Tokenizer is stateless after construction and safe for concurrent use.
type Tokenizer struct {
	stopWords map[string]struct{}
	minN      int
	maxN      int
}

// NewTokenizer creates a tokenizer producing n-grams in [minN, maxN].
func NewTokenizer(minN, maxN int) *Tokenizer {
	if minN < 1 {
		minN = 1
	}
	if maxN < minN {
		maxN = minN
	}
	return &Tokenizer{
		stopWords: englishStopWords,
		minN:      minN,
		maxN:      maxN,
	}
}

// Words returns the normalized word tokens of text with stop words removed.
func (t *Tokenizer) Words(text string) []string {
	normalized := normalize(text)
	raw := tokenPattern.FindAllString(normalized, -1)

	words := make([]string, 0, len(raw))
	for _, w := range raw {
		if _, stop := t.stopWords[w]; stop {
			continue
		}
		words = append(words, w)
	}
	return words
}

// Terms returns every n-gram of text in document order: all unigrams first, then bigrams, etc.
func (t *Tokenizer) Terms(text string) []string {
	words := t.Words(text)
	if len(words) == 0 {
		return nil
	}

	var terms []string
	for n := t.minN; n <= t.maxN; n++ {
		for i := 0; i+n <= len(words); i++ {
			if n == 1 {
				terms = append(terms, words[i])
				continue
			}
			gram := words[i]
			for _, w := range words[i+1 : i+n] {
				gram += " " + w
			}
			terms = append(terms, gram)
		}
	}
	return terms
}

func normalize(text string) string {
	// transform.Chain keeps state, so a fresh chain is built per call.
	chain := transform.Chain(norm.NFKC, cases.Fold())
	out, _, err := transform.String(chain, text)
	if err != nil {
		return text
	}
	return out
}
