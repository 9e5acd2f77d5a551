// Package calibration detects the coordinate axes and grid spacing of a
// plotted graph and maps pixel coordinates to mathematical units.
package calibration

import (
	"errors"

	"graph-decoder/pkg/geometry"
)

// ErrNotFound is returned when no usable pair of axes could be detected.
// Points from such an image cannot be converted to mathematical units.
var ErrNotFound = errors.New("calibration not found")

// Calibration maps pixel coordinates to mathematical coordinates.
// It is created once per image and not modified afterwards.
type Calibration struct {
	Origin geometry.Point2D `json:"origin"`  // Pixel position of (0, 0)
	ScaleX float64          `json:"scale_x"` // Pixels per unit along X, > 0
	ScaleY float64          `json:"scale_y"` // Pixels per unit along Y, > 0

	// AxisLines holds the main horizontal axis followed by the main vertical axis.
	AxisLines []geometry.Segment `json:"axis_lines"`

	HorizontalLines []geometry.Segment `json:"horizontal_lines,omitempty"`
	VerticalLines   []geometry.Segment `json:"vertical_lines,omitempty"`

	// Set when the scale was measured from line spacing rather than defaulted.
	ScaleXEstimated bool `json:"scale_x_estimated"`
	ScaleYEstimated bool `json:"scale_y_estimated"`
}

// Confident reports whether both scales were measured from the grid.
// A calibration with a defaulted scale still has a valid origin, but its
// units are pixels and results derived from it are low confidence.
func (c *Calibration) Confident() bool {
	return c.ScaleXEstimated && c.ScaleYEstimated
}

// ToUnits converts a pixel position to mathematical coordinates.
// Pixel rows grow downward, so Y is inverted.
func (c *Calibration) ToUnits(px geometry.Point2D) geometry.Point2D {
	return geometry.Point2D{
		X: (px.X - c.Origin.X) / c.ScaleX,
		Y: (c.Origin.Y - px.Y) / c.ScaleY,
	}
}

// ToPixel converts mathematical coordinates back to a pixel position.
func (c *Calibration) ToPixel(pt geometry.Point2D) geometry.Point2D {
	return geometry.Point2D{
		X: pt.X*c.ScaleX + c.Origin.X,
		Y: c.Origin.Y - pt.Y*c.ScaleY,
	}
}

// WithScale returns a copy of c with explicit per-axis scales, marked as
// estimated. Non-positive values keep the existing scale.
func (c *Calibration) WithScale(scaleX, scaleY float64) *Calibration {
	out := *c
	if scaleX > 0 {
		out.ScaleX = scaleX
		out.ScaleXEstimated = true
	}
	if scaleY > 0 {
		out.ScaleY = scaleY
		out.ScaleYEstimated = true
	}
	return &out
}
