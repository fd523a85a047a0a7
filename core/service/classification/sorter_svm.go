package classification

import (
	"fmt"
	"math"
	"sort"
)

// ClassWeighting selects how per-class penalties are derived.
type ClassWeighting string

const (
	// WeightingNone gives every sample the same penalty C.
	WeightingNone ClassWeighting = "none"
	// WeightingBalanced scales C by n / (k * count(class)).
	WeightingBalanced ClassWeighting = "balanced"
)

// SVMConfig holds the linear SVM solver parameters.
type SVMConfig struct {
	C         float64
	Weighting ClassWeighting
	MaxIter   int
	Tolerance float64
}

// DefaultSVMConfig returns C=1, balanced weighting, 1000 passes and 1e-4 tolerance.
func DefaultSVMConfig() SVMConfig {
	return SVMConfig{
		C:         1.0,
		Weighting: WeightingBalanced,
		MaxIter:   1000,
		Tolerance: 1e-4,
	}
}

func (c SVMConfig) withDefaults() SVMConfig {
	d := DefaultSVMConfig()
	if c.C <= 0 {
		c.C = d.C
	}
	if c.Weighting == "" {
		c.Weighting = d.Weighting
	}
	if c.MaxIter <= 0 {
		c.MaxIter = d.MaxIter
	}
	if c.Tolerance <= 0 {
		c.Tolerance = d.Tolerance
	}
	return c
}

// binaryModel is one one-vs-rest hyperplane.
type binaryModel struct {
	weights []float64
	bias    float64
	passes  int
}

func (m binaryModel) decision(v Vector) float64 {
	return v.DotDense(m.weights) + m.bias
}

// Classifier is a one-vs-rest linear SVM with Platt-calibrated probabilities.
// A trained Classifier is read-only and safe for concurrent prediction.
type Classifier struct {
	cfg     SVMConfig
	classes []string
	models  []binaryModel
	sigmoid plattSigmoid
	dim     int
	trained bool
}

// NewClassifier creates an untrained classifier.
func NewClassifier(cfg SVMConfig) *Classifier {
	return &Classifier{cfg: cfg.withDefaults()}
}

// Train fits one hyperplane per class, replacing any prior state.
func (c *Classifier) Train(vectors []Vector, labels []string) error {
	if len(vectors) != len(labels) {
		return fmt.Errorf("train classifier: %w: %d vectors, %d labels", ErrDimensionMismatch, len(vectors), len(labels))
	}
	if len(vectors) == 0 {
		return fmt.Errorf("train classifier: %w: no samples", ErrInvalidCorpus)
	}

	dim := vectors[0].Dim
	counts := make(map[string]int)
	for i, v := range vectors {
		if v.Dim != dim {
			return fmt.Errorf("train classifier: %w: sample %d has dimension %d, want %d", ErrDimensionMismatch, i, v.Dim, dim)
		}
		if labels[i] == "" {
			return fmt.Errorf("train classifier: %w: sample %d has an empty label", ErrInvalidCorpus, i)
		}
		counts[labels[i]]++
	}
	if len(counts) < 2 {
		return fmt.Errorf("train classifier: %w: need at least 2 distinct labels, got %d", ErrInvalidCorpus, len(counts))
	}

	classes := make([]string, 0, len(counts))
	for l := range counts {
		classes = append(classes, l)
	}
	sort.Strings(classes)

	penalties := samplePenalties(c.cfg, labels, counts)

	models := make([]binaryModel, len(classes))
	for k, class := range classes {
		y := make([]float64, len(labels))
		for i, l := range labels {
			if l == class {
				y[i] = 1
			} else {
				y[i] = -1
			}
		}
		models[k] = trainBinary(vectors, y, penalties, dim, c.cfg.MaxIter, c.cfg.Tolerance)
	}

	// pooled one-vs-rest decision values feed a single calibration sigmoid
	decisions := make([]float64, 0, len(classes)*len(vectors))
	targets := make([]bool, 0, len(classes)*len(vectors))
	for k, class := range classes {
		for i, v := range vectors {
			decisions = append(decisions, models[k].decision(v))
			targets = append(targets, labels[i] == class)
		}
	}

	c.classes = classes
	c.models = models
	c.sigmoid = fitPlatt(decisions, targets)
	c.dim = dim
	c.trained = true
	return nil
}

func samplePenalties(cfg SVMConfig, labels []string, counts map[string]int) []float64 {
	n := float64(len(labels))
	k := float64(len(counts))
	out := make([]float64, len(labels))
	for i, l := range labels {
		if cfg.Weighting == WeightingBalanced {
			out[i] = cfg.C * n / (k * float64(counts[l]))
		} else {
			out[i] = cfg.C
		}
	}
	return out
}

// trainBinary solves the L1-loss SVM dual by cyclic coordinate descent.
// The bias is treated as an extra constant feature of value 1.
func trainBinary(x []Vector, y, upper []float64, dim, maxIter int, eps float64) binaryModel {
	n := len(x)
	alpha := make([]float64, n)
	w := make([]float64, dim)
	var b float64

	qii := make([]float64, n)
	for i, v := range x {
		qii[i] = v.SquaredNorm() + 1
	}

	pass := 0
	for ; pass < maxIter; pass++ {
		maxPG := math.Inf(-1)
		minPG := math.Inf(1)

		for i := 0; i < n; i++ {
			g := y[i]*(x[i].DotDense(w)+b) - 1

			var pg float64
			switch {
			case alpha[i] == 0:
				pg = math.Min(g, 0)
			case alpha[i] == upper[i]:
				pg = math.Max(g, 0)
			default:
				pg = g
			}
			maxPG = math.Max(maxPG, pg)
			minPG = math.Min(minPG, pg)

			if pg != 0 {
				old := alpha[i]
				alpha[i] = math.Min(math.Max(old-g/qii[i], 0), upper[i])
				d := (alpha[i] - old) * y[i]
				x[i].addScaledTo(w, d)
				b += d
			}
		}

		if maxPG-minPG < eps {
			break
		}
	}

	return binaryModel{weights: w, bias: b, passes: pass}
}

// Classes returns the sorted label set.
func (c *Classifier) Classes() []string {
	out := make([]string, len(c.classes))
	copy(out, c.classes)
	return out
}

// Trained reports whether Train has completed.
func (c *Classifier) Trained() bool { return c.trained }

// DecisionFunction returns one signed margin per class, aligned with Classes.
func (c *Classifier) DecisionFunction(v Vector) ([]float64, error) {
	if !c.trained {
		return nil, ErrNotTrained
	}
	if v.Dim != c.dim {
		return nil, fmt.Errorf("decision function: %w: vector dimension %d, model dimension %d", ErrDimensionMismatch, v.Dim, c.dim)
	}
	out := make([]float64, len(c.models))
	for k, m := range c.models {
		out[k] = m.decision(v)
	}
	return out, nil
}

// Predict returns the class with the largest margin. Ties go to the first class in sorted order.
func (c *Classifier) Predict(v Vector) (string, error) {
	scores, err := c.DecisionFunction(v)
	if err != nil {
		return "", err
	}
	return c.classes[argmax(scores)], nil
}

// PredictWithConfidence returns the predicted class and a probability per class summing to 1.
func (c *Classifier) PredictWithConfidence(v Vector) (string, map[string]float64, error) {
	scores, err := c.DecisionFunction(v)
	if err != nil {
		return "", nil, err
	}
	probs := c.sigmoid.distribution(scores)
	out := make(map[string]float64, len(c.classes))
	for k, class := range c.classes {
		out[class] = probs[k]
	}
	return c.classes[argmax(scores)], out, nil
}

func argmax(xs []float64) int {
	best := 0
	for i := 1; i < len(xs); i++ {
		if xs[i] > xs[best] {
			best = i
		}
	}
	return best
}
