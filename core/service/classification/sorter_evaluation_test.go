package classification

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitCorpus(t *testing.T) {
	req := require.New(t)
	corpus := ReferenceCorpus()

	train, test := splitCorpus(corpus, 0.2, 42)
	req.Len(train, 16)
	req.Len(test, 4)

	train2, test2 := splitCorpus(corpus, 0.2, 42)
	req.Equal(train, train2)
	req.Equal(test, test2)
}

func TestEvaluate_Stable(t *testing.T) {
	req := require.New(t)

	r1, err := Evaluate(ReferenceCorpus(), DefaultEvalConfig())
	req.NoError(err)
	r2, err := Evaluate(ReferenceCorpus(), DefaultEvalConfig())
	req.NoError(err)

	req.Equal(r1, r2)
	req.Equal(16, r1.TrainSize)
	req.Equal(4, r1.TestSize)
	req.GreaterOrEqual(r1.Accuracy, 0.0)
	req.LessOrEqual(r1.Accuracy, 1.0)

	support := 0
	for _, m := range r1.Classes {
		support += m.Support
	}
	req.Equal(4, support)
}

func TestEvaluate_BadTestSize(t *testing.T) {
	cfg := DefaultEvalConfig()
	cfg.TestSize = 1.5

	_, err := Evaluate(ReferenceCorpus(), cfg)

	require.Error(t, err)
}

func TestScoreReport(t *testing.T) {
	req := require.New(t)

	r := scoreReport(
		[]string{"A", "A", "B", "C"},
		[]string{"A", "B", "B", "B"},
	)

	req.InDelta(0.5, r.Accuracy, 1e-12)
	req.Len(r.Classes, 3)
	req.Equal("A", r.Classes[0].Label)
	req.InDelta(1.0, r.Classes[0].Precision, 1e-12)
	req.InDelta(0.5, r.Classes[0].Recall, 1e-12)
	req.InDelta(1.0/3.0, r.Classes[1].Precision, 1e-12)
	req.InDelta(0.0, r.Classes[2].F1, 1e-12)
}

func TestReport_Render(t *testing.T) {
	var buf bytes.Buffer
	r := scoreReport([]string{"A", "B"}, []string{"A", "A"})

	r.Render(&buf)

	require.Contains(t, buf.String(), "PRECISION")
	require.Contains(t, buf.String(), "0.50")
}
