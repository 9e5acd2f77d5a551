package calibration

import "math"

// Options holds the tunables for grid and axis detection.
type Options struct {
	// Canny edge detector thresholds
	CannyLow  float32
	CannyHigh float32

	// Probabilistic Hough transform parameters
	HoughRho       float32 // Distance resolution in pixels
	HoughTheta     float32 // Angle resolution in radians
	HoughThreshold int     // Accumulator threshold
	MinLineLength  float32 // Shorter segments are rejected
	MaxLineGap     float32 // Maximum gap joined within one segment

	// Orientation classification (degrees against the X axis)
	HorizontalMaxAngle float64 // Below this a segment is horizontal
	VerticalMinAngle   float64 // Above this a segment is vertical

	// Scale estimation
	MinLineSeparation float64 // Pairs closer than this are the same ruling
	DefaultScale      float64 // Pixels per unit when spacing is unknown

	Debug bool // Log detection details
}

// DefaultOptions returns default grid detection parameters.
// These are tuned for rendered plots with solid axes and a light grid.
func DefaultOptions() Options {
	return Options{
		CannyLow:  50,
		CannyHigh: 150,

		HoughRho:       1,
		HoughTheta:     math.Pi / 180,
		HoughThreshold: 50,
		MinLineLength:  100,
		MaxLineGap:     10,

		HorizontalMaxAngle: 20,
		VerticalMinAngle:   70,

		MinLineSeparation: 10,
		DefaultScale:      1.0,
	}
}

// WithLineLimits returns a copy of opts with custom Hough segment limits.
// Small images need a shorter minimum length than the default.
func (o Options) WithLineLimits(minLength, maxGap float32) Options {
	o.MinLineLength = minLength
	o.MaxLineGap = maxGap
	return o
}

// WithAngles returns a copy of opts with custom orientation thresholds.
func (o Options) WithAngles(horizontalMax, verticalMin float64) Options {
	o.HorizontalMaxAngle = horizontalMax
	o.VerticalMinAngle = verticalMin
	return o
}
