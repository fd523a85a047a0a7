package classification

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// ModelConfig configures feature extraction and training.
type ModelConfig struct {
	MaxFeatures int
	SVM         SVMConfig
}

// DefaultModelConfig returns the production defaults.
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		MaxFeatures: DefaultMaxFeatures,
		SVM:         DefaultSVMConfig(),
	}
}

// TrainedModel is an immutable fitted extractor plus trained classifier.
type TrainedModel struct {
	extractor  *Extractor
	classifier *Classifier
	version    string
	corpusSize int
	trainedAt  time.Time
}

// TrainModel validates corpus, fits the extractor on every document and trains the classifier.
func TrainModel(corpus Corpus, cfg ModelConfig) (*TrainedModel, error) {
	if err := corpus.Validate(); err != nil {
		return nil, err
	}

	extractor := NewExtractor(cfg.MaxFeatures)
	vectors, err := extractor.FitTransform(corpus.Documents())
	if err != nil {
		return nil, err
	}

	classifier := NewClassifier(cfg.SVM)
	if err := classifier.Train(vectors, corpus.Labels()); err != nil {
		return nil, err
	}

	return &TrainedModel{
		extractor:  extractor,
		classifier: classifier,
		version:    fingerprint(corpus, extractor.maxFeatures, classifier.cfg),
		corpusSize: len(corpus),
		trainedAt:  time.Now(),
	}, nil
}

// Predict classifies text without calibration.
func (m *TrainedModel) Predict(text string) (string, error) {
	v, err := m.extractor.Transform(text)
	if err != nil {
		return "", err
	}
	return m.classifier.Predict(v)
}

// PredictWithConfidence classifies text and returns calibrated probabilities and raw margins.
func (m *TrainedModel) PredictWithConfidence(text string) (*Prediction, error) {
	v, err := m.extractor.Transform(text)
	if err != nil {
		return nil, err
	}
	label, probs, err := m.classifier.PredictWithConfidence(v)
	if err != nil {
		return nil, err
	}
	margins, err := m.classifier.DecisionFunction(v)
	if err != nil {
		return nil, err
	}
	scores := make(map[string]float64, len(margins))
	for k, class := range m.classifier.classes {
		scores[class] = margins[k]
	}
	return &Prediction{
		Label:         label,
		Confidence:    probs[label],
		Probabilities: probs,
		Scores:        scores,
		KnownTerms:    v.NNZ(),
		ModelVersion:  m.version,
	}, nil
}

// Info describes the model.
func (m *TrainedModel) Info() ModelInfo {
	return ModelInfo{
		Version:        m.version,
		Labels:         m.classifier.Classes(),
		VocabularySize: m.extractor.VocabularySize(),
		CorpusSize:     m.corpusSize,
		TrainedAt:      m.trainedAt,
	}
}

// Prediction is the result of one classification.
type Prediction struct {
	Label         string             `json:"label"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities"`
	Scores        map[string]float64 `json:"scores"`
	KnownTerms    int                `json:"known_terms"`
	ModelVersion  string             `json:"model_version"`
}

// ModelInfo is a read-only summary of a trained model.
type ModelInfo struct {
	Version        string    `json:"version"`
	Labels         []string  `json:"labels"`
	VocabularySize int       `json:"vocabulary_size"`
	CorpusSize     int       `json:"corpus_size"`
	TrainedAt      time.Time `json:"trained_at"`
}

func fingerprint(corpus Corpus, maxFeatures int, svm SVMConfig) string {
	h := sha256.New()
	for _, s := range corpus {
		h.Write([]byte(s.Document()))
		h.Write([]byte{0})
		h.Write([]byte(s.Label))
		h.Write([]byte{0})
	}
	fmt.Fprintf(h, "%d|%s|%s|%d|%s",
		maxFeatures,
		strconv.FormatFloat(svm.C, 'g', -1, 64),
		svm.Weighting,
		svm.MaxIter,
		strconv.FormatFloat(svm.Tolerance, 'g', -1, 64),
	)
	return hex.EncodeToString(h.Sum(nil))[:12]
}
