package classification

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func vec(dim int, pairs ...float64) Vector {
	v := Vector{Dim: dim}
	for i := 0; i+1 < len(pairs); i += 2 {
		v.Indices = append(v.Indices, int(pairs[i]))
		v.Values = append(v.Values, pairs[i+1])
	}
	return v
}

func TestClassifier_TrainErrors(t *testing.T) {
	tests := []struct {
		name    string
		vectors []Vector
		labels  []string
		wantErr error
	}{
		{
			name:    "length mismatch",
			vectors: []Vector{vec(2, 0, 1)},
			labels:  []string{"a", "b"},
			wantErr: ErrDimensionMismatch,
		},
		{
			name:    "single class",
			vectors: []Vector{vec(2, 0, 1), vec(2, 1, 1)},
			labels:  []string{"a", "a"},
			wantErr: ErrInvalidCorpus,
		},
		{
			name:    "empty label",
			vectors: []Vector{vec(2, 0, 1), vec(2, 1, 1)},
			labels:  []string{"a", ""},
			wantErr: ErrInvalidCorpus,
		},
		{
			name:    "mixed dimensions",
			vectors: []Vector{vec(2, 0, 1), vec(3, 1, 1)},
			labels:  []string{"a", "b"},
			wantErr: ErrDimensionMismatch,
		},
		{
			name:    "no samples",
			wantErr: ErrInvalidCorpus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewClassifier(DefaultSVMConfig()).Train(tt.vectors, tt.labels)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Train() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestClassifier_NotTrained(t *testing.T) {
	c := NewClassifier(DefaultSVMConfig())
	require.False(t, c.Trained())

	_, err := c.Predict(vec(2, 0, 1))

	require.ErrorIs(t, err, ErrNotTrained)
	require.NoError(t, c.Train([]Vector{vec(2, 0, 1), vec(2, 1, 1)}, []string{"a", "b"}))
	require.True(t, c.Trained())
}

func TestClassifier_SeparableData(t *testing.T) {
	req := require.New(t)
	c := NewClassifier(DefaultSVMConfig())

	vectors := []Vector{
		vec(3, 0, 1), vec(3, 0, 0.9, 2, 0.1),
		vec(3, 1, 1), vec(3, 1, 0.8, 2, 0.2),
	}
	labels := []string{"left", "left", "right", "right"}
	req.NoError(c.Train(vectors, labels))
	req.Equal([]string{"left", "right"}, c.Classes())

	got, err := c.Predict(vec(3, 0, 1))
	req.NoError(err)
	req.Equal("left", got)

	got, probs, err := c.PredictWithConfidence(vec(3, 1, 1))
	req.NoError(err)
	req.Equal("right", got)
	req.Greater(probs["right"], probs["left"])

	_, err = c.Predict(vec(5, 0, 1))
	req.ErrorIs(err, ErrDimensionMismatch)
}

func TestClassifier_TieGoesToFirstClass(t *testing.T) {
	req := require.New(t)
	c := &Classifier{
		cfg:     DefaultSVMConfig(),
		classes: []string{"a", "b"},
		models: []binaryModel{
			{weights: []float64{1, 0}, bias: 0.5},
			{weights: []float64{0, 1}, bias: 0.5},
		},
		sigmoid: defaultSigmoid,
		dim:     2,
		trained: true,
	}

	got, err := c.Predict(vec(2))
	req.NoError(err)
	req.Equal("a", got)

	got, probs, err := c.PredictWithConfidence(vec(2, 0, 1, 1, 1))
	req.NoError(err)
	req.Equal("a", got)
	req.InDelta(0.5, probs["a"], 1e-12)
}

func TestArgmax(t *testing.T) {
	tests := []struct {
		xs   []float64
		want int
	}{
		{[]float64{1, 2, 3}, 2},
		{[]float64{3, 3, 1}, 0},
		{[]float64{-1, -0.5, -0.5}, 1},
	}
	for _, tt := range tests {
		if got := argmax(tt.xs); got != tt.want {
			t.Errorf("argmax(%v) = %d, want %d", tt.xs, got, tt.want)
		}
	}
}

func TestPlatt_Monotone(t *testing.T) {
	req := require.New(t)
	dec := []float64{-2, -1.5, -1, -0.8, 0.9, 1.1, 1.6}
	pos := []bool{false, false, false, false, true, true, true}

	s := fitPlatt(dec, pos)

	req.Less(s.A, 0.0)
	req.Less(s.prob(-1), s.prob(1))

	dist := s.distribution([]float64{-1, 0.5, 2})
	var sum float64
	for _, p := range dist {
		req.GreaterOrEqual(p, 0.0)
		req.LessOrEqual(p, 1.0)
		sum += p
	}
	req.InDelta(1.0, sum, 1e-9)
}

func TestPlatt_DegenerateFallsBack(t *testing.T) {
	require.Equal(t, defaultSigmoid, fitPlatt([]float64{1, 2}, []bool{true, true}))
}
