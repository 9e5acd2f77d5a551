// Package pointset reads and writes sampled function point sets stored as
// JSON, including their critical point descriptions.
package pointset

import (
	"encoding/json"
	"fmt"
	"os"

	"graph-decoder/internal/critical"
	"graph-decoder/pkg/geometry"
)

// Point is one sample of a point set.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Set is a sampled function with optional critical point descriptions.
type Set struct {
	FunctionType   string     `json:"function_type"`
	Label          string     `json:"label"`
	XRange         [2]float64 `json:"x_range"`
	StepSize       float64    `json:"step_size"`
	Samples        []Point    `json:"points"`
	CriticalPoints []string   `json:"critical_points,omitempty"`
}

// FromPoints creates a set from ordered points in mathematical units.
// The X range spans the first and last point.
func FromPoints(functionType, label string, points []geometry.Point2D, cps []critical.Point) *Set {
	s := &Set{
		FunctionType:   functionType,
		Label:          label,
		Samples:        make([]Point, len(points)),
		CriticalPoints: Describe(cps),
	}
	for i, p := range points {
		s.Samples[i] = Point{X: p.X, Y: p.Y}
	}
	if n := len(points); n > 0 {
		s.XRange = [2]float64{points[0].X, points[n-1].X}
		if n > 1 {
			s.StepSize = (points[n-1].X - points[0].X) / float64(n-1)
		}
	}
	return s
}

// Load reads a point set from a JSON file.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s Set
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &s, nil
}

// Save writes the point set to a JSON file.
func (s *Set) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// XY returns the sample coordinates as separate slices.
func (s *Set) XY() (x, y []float64) {
	return geometry.SplitXY(s.Points())
}

// Points returns the samples as geometry points.
func (s *Set) Points() []geometry.Point2D {
	out := make([]geometry.Point2D, len(s.Samples))
	for i, p := range s.Samples {
		out[i] = geometry.Point2D{X: p.X, Y: p.Y}
	}
	return out
}

// Critical parses the stored critical point descriptions.
func (s *Set) Critical() ([]critical.Point, error) {
	var out []critical.Point
	for _, d := range s.CriticalPoints {
		cps, err := ParseDescription(d)
		if err != nil {
			return nil, err
		}
		out = append(out, cps...)
	}
	return out, nil
}
