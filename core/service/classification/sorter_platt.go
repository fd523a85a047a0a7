package classification

import "math"

const (
	plattMaxIter = 100
	plattMinStep = 1e-10
	plattSigma   = 1e-12
	plattEps     = 1e-5
)

// plattSigmoid maps a margin f to P(y=1|f) = 1 / (1 + exp(A*f + B)).
type plattSigmoid struct {
	A float64
	B float64
}

// defaultSigmoid is used when fitting produces a non-increasing curve.
var defaultSigmoid = plattSigmoid{A: -1, B: 0}

func (s plattSigmoid) prob(f float64) float64 {
	fApB := s.A*f + s.B
	if fApB >= 0 {
		e := math.Exp(-fApB)
		return e / (1 + e)
	}
	return 1 / (1 + math.Exp(fApB))
}

// distribution applies the sigmoid to every margin and normalizes the result to sum to 1.
func (s plattSigmoid) distribution(scores []float64) []float64 {
	out := make([]float64, len(scores))
	var sum float64
	for i, f := range scores {
		out[i] = s.prob(f)
		sum += out[i]
	}
	if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		for i := range out {
			out[i] = 1 / float64(len(out))
		}
		return out
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// fitPlatt fits A and B by Newton's method with backtracking line search on
// regularized targets. The result is forced to be increasing in f.
func fitPlatt(dec []float64, positive []bool) plattSigmoid {
	var prior1, prior0 float64
	for _, p := range positive {
		if p {
			prior1++
		} else {
			prior0++
		}
	}
	if prior1 == 0 || prior0 == 0 {
		return defaultSigmoid
	}

	hiTarget := (prior1 + 1) / (prior1 + 2)
	loTarget := 1 / (prior0 + 2)
	t := make([]float64, len(dec))
	for i, p := range positive {
		if p {
			t[i] = hiTarget
		} else {
			t[i] = loTarget
		}
	}

	a := 0.0
	b := math.Log((prior0 + 1) / (prior1 + 1))
	fval := plattObjective(dec, t, a, b)

	for iter := 0; iter < plattMaxIter; iter++ {
		h11, h22, h21 := plattSigma, plattSigma, 0.0
		g1, g2 := 0.0, 0.0
		for i, f := range dec {
			fApB := f*a + b
			var p, q float64
			if fApB >= 0 {
				e := math.Exp(-fApB)
				p = e / (1 + e)
				q = 1 / (1 + e)
			} else {
				e := math.Exp(fApB)
				p = 1 / (1 + e)
				q = e / (1 + e)
			}
			d2 := p * q
			h11 += f * f * d2
			h22 += d2
			h21 += f * d2
			d1 := t[i] - p
			g1 += f * d1
			g2 += d1
		}

		if math.Abs(g1) < plattEps && math.Abs(g2) < plattEps {
			break
		}

		det := h11*h22 - h21*h21
		dA := -(h22*g1 - h21*g2) / det
		dB := -(-h21*g1 + h11*g2) / det
		gd := g1*dA + g2*dB

		step := 1.0
		for step >= plattMinStep {
			newA := a + step*dA
			newB := b + step*dB
			newF := plattObjective(dec, t, newA, newB)
			if newF < fval+0.0001*step*gd {
				a, b, fval = newA, newB, newF
				break
			}
			step /= 2
		}
		if step < plattMinStep {
			break
		}
	}

	if !(a < 0) || math.IsNaN(b) || math.IsInf(b, 0) {
		return defaultSigmoid
	}
	return plattSigmoid{A: a, B: b}
}

func plattObjective(dec, t []float64, a, b float64) float64 {
	var f float64
	for i, d := range dec {
		fApB := d*a + b
		if fApB >= 0 {
			f += t[i]*fApB + math.Log1p(math.Exp(-fApB))
		} else {
			f += (t[i]-1)*fApB + math.Log1p(math.Exp(fApB))
		}
	}
	return f
}
