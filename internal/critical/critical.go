// Package critical finds local extrema and axis crossings of a sampled curve.
package critical

import (
	"fmt"

	"graph-decoder/pkg/geometry"
)

// Kind identifies the category of a critical point.
type Kind int

const (
	Maximum Kind = iota
	Minimum
	XIntercept
	YIntercept
)

func (k Kind) String() string {
	switch k {
	case Maximum:
		return "max"
	case Minimum:
		return "min"
	case XIntercept:
		return "x_intercept"
	case YIntercept:
		return "y_intercept"
	default:
		return "unknown"
	}
}

// Point is a critical point of a curve in mathematical coordinates.
// XIntercept points always have Y == 0 and YIntercept points X == 0.
type Point struct {
	Kind Kind    `json:"kind"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Max creates a local maximum at (x, y).
func Max(x, y float64) Point { return Point{Kind: Maximum, X: x, Y: y} }

// Min creates a local minimum at (x, y).
func Min(x, y float64) Point { return Point{Kind: Minimum, X: x, Y: y} }

// XAt creates an x-axis crossing at (x, 0).
func XAt(x float64) Point { return Point{Kind: XIntercept, X: x} }

// YAt creates a y-axis crossing at (0, y).
func YAt(y float64) Point { return Point{Kind: YIntercept, Y: y} }

func (p Point) String() string {
	return fmt.Sprintf("%s: (%.2f, %.2f)", p.Kind, p.X, p.Y)
}

// Find scans an ordered point sequence in a single left-to-right pass.
// At each index it reports a strict interior extremum, then the x- and
// y-axis crossings of the pair starting at that index. Plateaus produce no
// extremum, and pairs whose interpolation would divide by zero are skipped.
// The output order depends only on the input.
func Find(points []geometry.Point2D) []Point {
	var out []Point
	n := len(points)

	for i := 0; i < n; i++ {
		p := points[i]

		if i > 0 && i < n-1 {
			prev, next := points[i-1], points[i+1]
			switch {
			case prev.Y < p.Y && p.Y > next.Y:
				out = append(out, Max(p.X, p.Y))
			case prev.Y > p.Y && p.Y < next.Y:
				out = append(out, Min(p.X, p.Y))
			}
		}

		if i == n-1 {
			break
		}
		q := points[i+1]

		if p.Y*q.Y <= 0 {
			if x, ok := geometry.ZeroCrossing(p.X, p.Y, q.X, q.Y); ok {
				out = append(out, XAt(x))
			}
		}
		if p.X*q.X <= 0 {
			if y, ok := geometry.ZeroCrossing(p.Y, p.X, q.Y, q.X); ok {
				out = append(out, YAt(y))
			}
		}
	}

	return out
}

// Count returns how many points of each kind are in cps.
func Count(cps []Point) map[Kind]int {
	counts := make(map[Kind]int, 4)
	for _, cp := range cps {
		counts[cp.Kind]++
	}
	return counts
}
