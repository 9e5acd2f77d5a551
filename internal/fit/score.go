package fit

import (
	"math"

	"graph-decoder/internal/critical"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Weights scales the penalty terms of the error functional.
type Weights struct {
	Regularization float64 // Sum of squared parameters
	Smoothness     float64 // Mean squared first difference of predictions
	Critical       float64 // Deviation at critical points
}

// DefaultWeights returns the standard penalty weights.
func DefaultWeights() Weights {
	return Weights{
		Regularization: 0.01,
		Smoothness:     0.1,
		Critical:       0.2,
	}
}

// Score evaluates candidate c against samples (x, y) and critical points.
// Lower is better. A non-finite result is reported as +Inf so the candidate
// is never preferred over a finite one.
func Score(c Candidate, x, y []float64, cps []critical.Point, w Weights) float64 {
	if len(x) == 0 || len(x) != len(y) {
		return math.Inf(1)
	}

	predicted := c.EvalAll(x)

	residual := make([]float64, len(y))
	floats.SubTo(residual, y, predicted)
	floats.Mul(residual, residual)
	mse := stat.Mean(residual, nil)

	regularization := floats.Dot(c[:], c[:])

	var smoothness float64
	if n := len(predicted); n > 1 {
		diff := make([]float64, n-1)
		floats.SubTo(diff, predicted[1:], predicted[:n-1])
		floats.Mul(diff, diff)
		smoothness = stat.Mean(diff, nil)
	}

	total := mse +
		w.Regularization*regularization +
		w.Smoothness*smoothness +
		w.Critical*CriticalError(c, cps)

	if math.IsNaN(total) || math.IsInf(total, 0) {
		return math.Inf(1)
	}
	return total
}

// CriticalError sums the deviation of c from each critical point.
// Intercepts on the X axis only penalize the predicted height.
func CriticalError(c Candidate, cps []critical.Point) float64 {
	var sum float64
	for _, cp := range cps {
		pred := c.Eval(cp.X)
		switch cp.Kind {
		case critical.Maximum, critical.Minimum, critical.YIntercept:
			sum += math.Abs(pred - cp.Y)
		case critical.XIntercept:
			sum += math.Abs(pred)
		}
	}
	return sum
}
