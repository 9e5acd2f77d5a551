package geometry

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// ParallelEpsilon is the determinant magnitude below which two lines are
// treated as parallel.
const ParallelEpsilon = 1e-10

// Segment is a line segment between two points, as returned by a
// probabilistic Hough transform.
type Segment struct {
	A Point2D `json:"a"`
	B Point2D `json:"b"`
}

// NewSegment creates a segment from endpoint coordinates.
func NewSegment(x1, y1, x2, y2 float64) Segment {
	return Segment{A: Point2D{X: x1, Y: y1}, B: Point2D{X: x2, Y: y2}}
}

// Midpoint returns the midpoint of the segment.
func (s Segment) Midpoint() Point2D {
	return Point2D{X: (s.A.X + s.B.X) / 2, Y: (s.A.Y + s.B.Y) / 2}
}

// Length returns the segment length.
func (s Segment) Length() float64 {
	return s.A.Distance(s.B)
}

// AngleDegrees returns the undirected angle of the segment against the
// X axis, folded into [0, 90].
func (s Segment) AngleDegrees() float64 {
	angle := math.Abs(math.Atan2(s.B.Y-s.A.Y, s.B.X-s.A.X) * 180 / math.Pi)
	if angle > 90 {
		angle = 180 - angle
	}
	return angle
}

// Intersect returns the intersection of the infinite lines through s and
// other, solved with the standard two-line determinant formula. The second
// return value is false when the lines are parallel (|det| < ParallelEpsilon).
func Intersect(s, other Segment) (Point2D, bool) {
	x1, y1 := s.A.X, s.A.Y
	x2, y2 := s.B.X, s.B.Y
	x3, y3 := other.A.X, other.A.Y
	x4, y4 := other.B.X, other.B.Y

	denom := (x1-x2)*(y3-y4) - (y1-y2)*(x3-x4)
	if math.Abs(denom) < ParallelEpsilon {
		return Point2D{}, false
	}

	a := x1*y2 - y1*x2
	b := x3*y4 - y3*x4
	return Point2D{
		X: (a*(x3-x4) - (x1-x2)*b) / denom,
		Y: (a*(y3-y4) - (y1-y2)*b) / denom,
	}, true
}

// MeanSpacing returns the mean pairwise distance between the given line
// positions, counting only pairs further apart than minSeparation so that
// duplicate detections of the same ruling are ignored. ok is false when
// fewer than two positions exist or no pair qualifies.
func MeanSpacing(positions []float64, minSeparation float64) (spacing float64, ok bool) {
	if len(positions) < 2 {
		return 0, false
	}

	var distances []float64
	for i := 0; i < len(positions); i++ {
		for j := i + 1; j < len(positions); j++ {
			d := math.Abs(positions[i] - positions[j])
			if d > minSeparation {
				distances = append(distances, d)
			}
		}
	}
	if len(distances) == 0 {
		return 0, false
	}
	return stat.Mean(distances, nil), true
}

// ZeroCrossing linearly interpolates the abscissa at which the line through
// (u0, v0) and (u1, v1) reaches v = 0. It returns false when v0 == v1, where
// the interpolation would divide by zero.
func ZeroCrossing(u0, v0, u1, v1 float64) (float64, bool) {
	if v1 == v0 {
		return 0, false
	}
	return u0 - v0*(u1-u0)/(v1-v0), true
}
