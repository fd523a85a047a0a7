package classification

import (
	"fmt"
	"math"
	"sort"
)

// DefaultMaxFeatures caps the vocabulary size.
const DefaultMaxFeatures = 3000

// Extractor is a TF-IDF feature extractor over unigrams and bigrams.
//
// After Fit the vocabulary and idf table are read-only, so Transform is safe for
// concurrent use. Fit itself must not run concurrently with Transform.
type Extractor struct {
	tokenizer   *Tokenizer
	maxFeatures int

	vocabulary map[string]int
	terms      []string
	idf        []float64
	fitted     bool
}

// NewExtractor creates an unfitted extractor. maxFeatures <= 0 selects DefaultMaxFeatures.
func NewExtractor(maxFeatures int) *Extractor {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}
	return &Extractor{
		tokenizer:   NewTokenizer(1, 2),
		maxFeatures: maxFeatures,
	}
}

// Fit learns the vocabulary and idf weights from docs, replacing any prior state.
func (e *Extractor) Fit(docs []string) error {
	if len(docs) == 0 {
		return fmt.Errorf("fit extractor: %w: no documents", ErrInvalidCorpus)
	}

	termFreq := make(map[string]int)
	docFreq := make(map[string]int)
	firstSeen := make(map[string]int)
	var order []string

	for _, doc := range docs {
		terms := e.tokenizer.Terms(doc)
		seen := make(map[string]struct{}, len(terms))
		for _, t := range terms {
			if _, ok := firstSeen[t]; !ok {
				firstSeen[t] = len(order)
				order = append(order, t)
			}
			termFreq[t]++
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				docFreq[t]++
			}
		}
	}

	if len(order) == 0 {
		return fmt.Errorf("fit extractor: %w: corpus yields no terms", ErrInvalidCorpus)
	}

	selected := make([]string, len(order))
	copy(selected, order)
	sort.SliceStable(selected, func(i, j int) bool {
		a, b := selected[i], selected[j]
		if termFreq[a] != termFreq[b] {
			return termFreq[a] > termFreq[b]
		}
		return firstSeen[a] < firstSeen[b]
	})
	if len(selected) > e.maxFeatures {
		selected = selected[:e.maxFeatures]
	}
	sort.Strings(selected)

	n := float64(len(docs))
	vocabulary := make(map[string]int, len(selected))
	idf := make([]float64, len(selected))
	for i, t := range selected {
		vocabulary[t] = i
		idf[i] = math.Log((1+n)/(1+float64(docFreq[t]))) + 1
	}

	e.vocabulary = vocabulary
	e.terms = selected
	e.idf = idf
	e.fitted = true
	return nil
}

// Transform maps doc to an L2-normalized TF-IDF vector. Unknown terms are ignored;
// a document with no known terms yields the zero vector.
func (e *Extractor) Transform(doc string) (Vector, error) {
	if !e.fitted {
		return Vector{}, ErrNotFitted
	}

	counts := make(map[int]int)
	for _, t := range e.tokenizer.Terms(doc) {
		if idx, ok := e.vocabulary[t]; ok {
			counts[idx]++
		}
	}

	indices := make([]int, 0, len(counts))
	for idx := range counts {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	values := make([]float64, len(indices))
	var sq float64
	for k, idx := range indices {
		w := float64(counts[idx]) * e.idf[idx]
		values[k] = w
		sq += w * w
	}
	if sq > 0 {
		norm := math.Sqrt(sq)
		for k := range values {
			values[k] /= norm
		}
	}

	return Vector{Dim: len(e.terms), Indices: indices, Values: values}, nil
}

// FitTransform fits on docs and returns their vectors.
func (e *Extractor) FitTransform(docs []string) ([]Vector, error) {
	if err := e.Fit(docs); err != nil {
		return nil, err
	}
	return e.TransformAll(docs)
}

// TransformAll transforms every document in order.
func (e *Extractor) TransformAll(docs []string) ([]Vector, error) {
	out := make([]Vector, len(docs))
	for i, d := range docs {
		v, err := e.Transform(d)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// VocabularySize returns the number of terms, 0 before Fit.
func (e *Extractor) VocabularySize() int { return len(e.terms) }

// Fitted reports whether Fit has completed.
func (e *Extractor) Fitted() bool { return e.fitted }

// Terms returns a copy of the vocabulary in index order.
func (e *Extractor) Terms() []string {
	out := make([]string, len(e.terms))
	copy(out, e.terms)
	return out
}

// IDF returns the idf weight of term, and false if it is not in the vocabulary.
func (e *Extractor) IDF(term string) (float64, bool) {
	idx, ok := e.vocabulary[term]
	if !ok {
		return 0, false
	}
	return e.idf[idx], true
}
