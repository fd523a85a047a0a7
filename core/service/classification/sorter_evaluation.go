package classification

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// EvalConfig controls the held-out evaluation split.
type EvalConfig struct {
	TestSize    float64
	Seed        int64
	MaxFeatures int
	SVM         SVMConfig
}

// DefaultEvalConfig holds out 20% of the corpus with seed 42.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		TestSize:    0.2,
		Seed:        42,
		MaxFeatures: DefaultMaxFeatures,
		SVM:         DefaultSVMConfig(),
	}
}

// ClassMetrics are per-class precision, recall and F1.
type ClassMetrics struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Report is the outcome of one evaluation run.
type Report struct {
	TrainSize int            `json:"train_size"`
	TestSize  int            `json:"test_size"`
	Accuracy  float64        `json:"accuracy"`
	Classes   []ClassMetrics `json:"classes"`
	MacroF1   float64        `json:"macro_f1"`
}

// Evaluate shuffles the corpus with cfg.Seed, trains a fresh extractor and
// classifier on the training part and scores the held-out part.
func Evaluate(corpus Corpus, cfg EvalConfig) (*Report, error) {
	if err := corpus.Validate(); err != nil {
		return nil, err
	}
	if cfg.TestSize <= 0 || cfg.TestSize >= 1 {
		return nil, fmt.Errorf("evaluate: test size %v out of range (0,1)", cfg.TestSize)
	}

	train, test := splitCorpus(corpus, cfg.TestSize, cfg.Seed)
	if len(test) == 0 || len(train) == 0 {
		return nil, fmt.Errorf("evaluate: %w: corpus too small to split", ErrInvalidCorpus)
	}

	extractor := NewExtractor(cfg.MaxFeatures)
	vectors, err := extractor.FitTransform(train.Documents())
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	classifier := NewClassifier(cfg.SVM)
	if err := classifier.Train(vectors, train.Labels()); err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	predicted := make([]string, len(test))
	for i, s := range test {
		v, err := extractor.Transform(s.Document())
		if err != nil {
			return nil, fmt.Errorf("evaluate: %w", err)
		}
		predicted[i], err = classifier.Predict(v)
		if err != nil {
			return nil, fmt.Errorf("evaluate: %w", err)
		}
	}

	report := scoreReport(test.Labels(), predicted)
	report.TrainSize = len(train)
	report.TestSize = len(test)
	return report, nil
}

// splitCorpus returns (train, test) using a seeded permutation; the test part
// takes ceil(testSize*n) records.
func splitCorpus(corpus Corpus, testSize float64, seed int64) (Corpus, Corpus) {
	n := len(corpus)
	nTest := int(math.Ceil(testSize * float64(n)))
	if nTest >= n {
		nTest = n - 1
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	test := make(Corpus, 0, nTest)
	train := make(Corpus, 0, n-nTest)
	for k, idx := range perm {
		if k < nTest {
			test = append(test, corpus[idx])
		} else {
			train = append(train, corpus[idx])
		}
	}
	return train, test
}

func scoreReport(truth, predicted []string) *Report {
	labelSet := make(map[string]struct{})
	for i := range truth {
		labelSet[truth[i]] = struct{}{}
		labelSet[predicted[i]] = struct{}{}
	}
	labels := make([]string, 0, len(labelSet))
	for l := range labelSet {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	correct := 0
	tp := make(map[string]int)
	predCount := make(map[string]int)
	support := make(map[string]int)
	for i := range truth {
		support[truth[i]]++
		predCount[predicted[i]]++
		if truth[i] == predicted[i] {
			correct++
			tp[truth[i]]++
		}
	}

	report := &Report{Accuracy: float64(correct) / float64(len(truth))}
	var f1Sum float64
	for _, l := range labels {
		m := ClassMetrics{Label: l, Support: support[l]}
		if predCount[l] > 0 {
			m.Precision = float64(tp[l]) / float64(predCount[l])
		}
		if support[l] > 0 {
			m.Recall = float64(tp[l]) / float64(support[l])
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		f1Sum += m.F1
		report.Classes = append(report.Classes, m)
	}
	if len(labels) > 0 {
		report.MacroF1 = f1Sum / float64(len(labels))
	}
	return report
}

// Render writes the report as a text table.
func (r *Report) Render(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Label", "Precision", "Recall", "F1", "Support"})
	for _, m := range r.Classes {
		table.Append([]string{
			m.Label,
			formatScore(m.Precision),
			formatScore(m.Recall),
			formatScore(m.F1),
			strconv.Itoa(m.Support),
		})
	}
	table.SetFooter([]string{"accuracy", formatScore(r.Accuracy), "macro f1", formatScore(r.MacroF1), strconv.Itoa(r.TestSize)})
	table.Render()
}

func formatScore(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}
