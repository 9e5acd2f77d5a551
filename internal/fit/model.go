// Package fit fits the cubic model f(x) = (a·x³ + b·x² + c·x + d)/4 to
// sampled points with a population-based stochastic search.
package fit

import (
	"fmt"
	"math"
)

// Candidate holds the model parameters a, b, c and d.
type Candidate [4]float64

// Eval returns the model value at x.
func (c Candidate) Eval(x float64) float64 {
	return (c[0]*x*x*x + c[1]*x*x + c[2]*x + c[3]) / 4
}

// EvalAll returns the model value at every x.
func (c Candidate) EvalAll(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = c.Eval(x)
	}
	return out
}

// Finite reports whether every parameter is a finite number.
func (c Candidate) Finite() bool {
	for _, p := range c {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return false
		}
	}
	return true
}

func (c Candidate) String() string {
	return fmt.Sprintf("f(x) = (%.3fx³ + %.3fx² + %.3fx + %.3f)/4", c[0], c[1], c[2], c[3])
}
