package classification

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func newReferencePipeline(t *testing.T) *Pipeline {
	t.Helper()
	p, err := NewPipeline(ReferenceCorpus(), DefaultModelConfig())
	require.NoError(t, err)
	return p
}

func TestPipeline_ReferencePredictions(t *testing.T) {
	p := newReferencePipeline(t)

	tests := []struct {
		text string
		want string
	}{
		{"Server outage: unexpected downtime on cluster A", "Urgent"},
		{"Exclusive: You have been selected for a prize!", "Spam"},
		{"Candidate submission: new resume for developer role", "Custom"},
		{"Please approve my leave for next Thursday", "Routine"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := p.Classify(tt.text)
			require.NoError(t, err)
			if got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestPipeline_TrainingSetFit(t *testing.T) {
	p := newReferencePipeline(t)

	for _, s := range ReferenceCorpus() {
		got, err := p.Classify(s.Document())
		require.NoError(t, err)
		if got != s.Label {
			t.Errorf("Classify(%q) = %q, want %q", s.Subject, got, s.Label)
		}
	}
}

func TestPipeline_BlankInput(t *testing.T) {
	p := newReferencePipeline(t)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := p.Classify(text)
		require.ErrorIs(t, err, ErrInvalidInput)
		_, err = p.ClassifyWithConfidence(text)
		require.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestPipeline_UnseenTokensStayInLabelSpace(t *testing.T) {
	req := require.New(t)
	p := newReferencePipeline(t)

	pred, err := p.ClassifyWithConfidence("zzqxw nonsense token not in corpus")
	req.NoError(err)
	req.Contains(p.Labels(), pred.Label)
	req.Equal(0, pred.KnownTerms)
}

func TestPipeline_ProbabilityDistribution(t *testing.T) {
	req := require.New(t)
	p := newReferencePipeline(t)

	pred, err := p.ClassifyWithConfidence("Server outage: unexpected downtime on cluster A")
	req.NoError(err)
	req.Equal("Urgent", pred.Label)
	req.Len(pred.Probabilities, 4)

	var sum float64
	best := ""
	for label, prob := range pred.Probabilities {
		req.GreaterOrEqual(prob, 0.0)
		req.LessOrEqual(prob, 1.0)
		sum += prob
		if best == "" || prob > pred.Probabilities[best] {
			best = label
		}
	}
	req.InDelta(1.0, sum, 1e-9)
	req.Equal(pred.Label, best)
	req.Equal(pred.Probabilities["Urgent"], pred.Confidence)
}

func TestPipeline_Deterministic(t *testing.T) {
	req := require.New(t)
	a := newReferencePipeline(t)
	b := newReferencePipeline(t)

	req.Equal(a.Info().Version, b.Info().Version)
	for _, text := range []string{
		"Reminder: Project report is due by end of day",
		"Weekly newsletter: department updates and events",
		"Get a free loan now",
	} {
		pa, err := a.ClassifyWithConfidence(text)
		req.NoError(err)
		pb, err := b.ClassifyWithConfidence(text)
		req.NoError(err)
		req.Equal(pa.Label, pb.Label)
		req.Equal(pa.Scores, pb.Scores)
		req.Equal(pa.Probabilities, pb.Probabilities)
	}
}

func TestPipeline_Info(t *testing.T) {
	req := require.New(t)
	p := newReferencePipeline(t)

	info := p.Info()

	req.Equal([]string{"Custom", "Routine", "Spam", "Urgent"}, info.Labels)
	req.Equal(252, info.VocabularySize)
	req.Equal(20, info.CorpusSize)
	req.Len(info.Version, 12)
}

func TestPipeline_InvalidCorpus(t *testing.T) {
	_, err := NewPipeline(Corpus{{Subject: "only", Body: "one", Label: "A"}}, DefaultModelConfig())
	if !errors.Is(err, ErrInvalidCorpus) {
		t.Errorf("NewPipeline() error = %v, want ErrInvalidCorpus", err)
	}
}

func TestPipeline_Reload(t *testing.T) {
	req := require.New(t)
	p := newReferencePipeline(t)
	before := p.Info()

	_, err := p.Reload(Corpus{})
	req.ErrorIs(err, ErrInvalidCorpus)
	req.Equal(before.Version, p.Info().Version)

	info, err := p.Reload(Corpus{
		{Subject: "server down", Body: "outage now", Label: "Ops"},
		{Subject: "free prize", Body: "win money", Label: "Junk"},
	})
	req.NoError(err)
	req.NotEqual(before.Version, info.Version)
	req.Equal([]string{"Junk", "Ops"}, p.Labels())

	got, err := p.Classify("server outage")
	req.NoError(err)
	req.Equal("Ops", got)
}

func TestPipeline_ConcurrentReadsDuringReload(t *testing.T) {
	p := newReferencePipeline(t)
	labels := map[string]bool{"Custom": true, "Routine": true, "Spam": true, "Urgent": true}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				got, err := p.Classify("Urgent: Server downtime alert")
				if err != nil || !labels[got] {
					t.Errorf("Classify() = %q, %v", got, err)
					return
				}
			}
		}()
	}
	for i := 0; i < 3; i++ {
		if _, err := p.Reload(ReferenceCorpus()); err != nil {
			t.Errorf("Reload() error = %v", err)
		}
	}
	wg.Wait()
}
