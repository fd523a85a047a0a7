package classification

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Pipeline owns the serving model. Reads are lock-free over an immutable
// snapshot; Reload publishes a new snapshot atomically.
type Pipeline struct {
	cfg   ModelConfig
	model atomic.Pointer[TrainedModel]
}

// NewPipeline trains a model on corpus and returns a ready pipeline.
func NewPipeline(corpus Corpus, cfg ModelConfig) (*Pipeline, error) {
	m, err := TrainModel(corpus, cfg)
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}
	p := &Pipeline{cfg: cfg}
	p.model.Store(m)
	return p, nil
}

// Classify returns the predicted label for text.
func (p *Pipeline) Classify(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrInvalidInput
	}
	return p.model.Load().Predict(text)
}

// ClassifyWithConfidence returns the label with per-class probabilities.
func (p *Pipeline) ClassifyWithConfidence(text string) (*Prediction, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrInvalidInput
	}
	return p.model.Load().PredictWithConfidence(text)
}

// Reload retrains on corpus and swaps the new model in. On error the current model is kept.
func (p *Pipeline) Reload(corpus Corpus) (ModelInfo, error) {
	m, err := TrainModel(corpus, p.cfg)
	if err != nil {
		return p.Info(), fmt.Errorf("reload pipeline: %w", err)
	}
	p.model.Store(m)
	return m.Info(), nil
}

// Info describes the model currently serving.
func (p *Pipeline) Info() ModelInfo {
	return p.model.Load().Info()
}

// Labels returns the closed label set of the serving model.
func (p *Pipeline) Labels() []string {
	return p.model.Load().classifier.Classes()
}
