package classification

import "math"

// Vector is a sparse feature vector. Indices are strictly increasing.
type Vector struct {
	Dim     int
	Indices []int
	Values  []float64
}

// NNZ returns the number of stored entries.
func (v Vector) NNZ() int { return len(v.Indices) }

// IsZero reports whether the vector has no non-zero entries.
func (v Vector) IsZero() bool {
	for _, x := range v.Values {
		if x != 0 {
			return false
		}
	}
	return true
}

// Norm returns the Euclidean norm.
func (v Vector) Norm() float64 {
	return math.Sqrt(v.SquaredNorm())
}

// SquaredNorm returns v·v.
func (v Vector) SquaredNorm() float64 {
	var s float64
	for _, x := range v.Values {
		s += x * x
	}
	return s
}

// DotDense returns v·w for a dense weight slice.
func (v Vector) DotDense(w []float64) float64 {
	var s float64
	for k, i := range v.Indices {
		s += v.Values[k] * w[i]
	}
	return s
}

// addScaledTo performs w += scale * v.
func (v Vector) addScaledTo(w []float64, scale float64) {
	for k, i := range v.Indices {
		w[i] += scale * v.Values[k]
	}
}
