package geometry

import "math"

// Simplify thins an open polyline with Douglas-Peucker: a vertex survives
// only if it lies more than epsilon from the chord of the span it splits.
// The endpoints always survive. Paths of two points or fewer, and a
// non-positive epsilon, are returned unchanged.
func Simplify(path []Point2D, epsilon float64) []Point2D {
	if len(path) <= 2 || epsilon <= 0 {
		return path
	}

	keep := make([]bool, len(path))
	keep[0], keep[len(path)-1] = true, true

	type span struct{ lo, hi int }
	pending := []span{{0, len(path) - 1}}
	for len(pending) > 0 {
		s := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		far, farDist := -1, epsilon
		for i := s.lo + 1; i < s.hi; i++ {
			if d := chordDistance(path[i], path[s.lo], path[s.hi]); d > farDist {
				far, farDist = i, d
			}
		}
		if far < 0 {
			continue
		}
		keep[far] = true
		pending = append(pending, span{s.lo, far}, span{far, s.hi})
	}

	out := make([]Point2D, 0, len(path))
	for i, k := range keep {
		if k {
			out = append(out, path[i])
		}
	}
	return out
}

// PathLength returns the total length of a polyline.
func PathLength(points []Point2D) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += points[i].Distance(points[i-1])
	}
	return total
}

// chordDistance is the distance from p to the line through a and b, or to
// a itself when the chord is degenerate.
func chordDistance(p, a, b Point2D) float64 {
	l := a.Distance(b)
	if l == 0 {
		return p.Distance(a)
	}
	cross := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
	return math.Abs(cross) / l
}
