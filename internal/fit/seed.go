package fit

import (
	"fmt"

	"graph-decoder/internal/critical"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// EstimateSeed derives a rough starting candidate from the sample spread and
// nudges it towards detected extrema. The heuristic can divide by a
// near-zero prediction, so ok is false whenever the result is not finite
// and the candidate must then be discarded.
func EstimateSeed(x, y []float64, cps []critical.Point) (c Candidate, ok bool) {
	if len(x) == 0 || len(x) != len(y) {
		return Candidate{}, false
	}

	xMean := stat.Mean(x, nil)
	yMean := stat.Mean(y, nil)
	xRange := floats.Max(x) - floats.Min(x)
	yRange := floats.Max(y) - floats.Min(y)

	a := yRange / (xRange * xRange * xRange)
	b := -3 * a * xMean
	cc := 3 * a * xMean * xMean
	d := yMean - (a*xMean*xMean*xMean + b*xMean*xMean + cc*xMean)

	cubic := func(px float64) float64 { return a*px*px*px + b*px*px + cc*px + d }
	for _, cp := range cps {
		if cp.Kind != critical.Maximum && cp.Kind != critical.Minimum {
			continue
		}
		a *= cp.Y / cubic(cp.X)
		d += cp.Y - cubic(cp.X)
	}

	c = Candidate{a, b, cc, d}
	return c, c.Finite()
}

// LeastSquaresSeed solves the unpenalized least squares fit of the model to
// (x, y) by QR decomposition. It needs at least four samples with distinct
// enough X values for the system to have full rank.
func LeastSquaresSeed(x, y []float64) (Candidate, error) {
	n := len(x)
	if n != len(y) {
		return Candidate{}, fmt.Errorf("%d x values but %d y values: %w", n, len(y), ErrInvalidInput)
	}
	if n < 4 {
		return Candidate{}, fmt.Errorf("need at least 4 samples, got %d: %w", n, ErrInvalidInput)
	}

	// The model divides by 4, so solve against 4y
	A := mat.NewDense(n, 4, nil)
	B := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		xi := x[i]
		A.Set(i, 0, xi*xi*xi)
		A.Set(i, 1, xi*xi)
		A.Set(i, 2, xi)
		A.Set(i, 3, 1)
		B.SetVec(i, 4*y[i])
	}

	var qr mat.QR
	qr.Factorize(A)

	var params mat.VecDense
	if err := qr.SolveVecTo(&params, false, B); err != nil {
		return Candidate{}, fmt.Errorf("least squares: %w", err)
	}

	c := Candidate{params.AtVec(0), params.AtVec(1), params.AtVec(2), params.AtVec(3)}
	if !c.Finite() {
		return Candidate{}, fmt.Errorf("least squares produced %v", c)
	}
	return c, nil
}
