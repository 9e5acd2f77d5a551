package calibration

import (
	"fmt"
	"image"
	"log"
	"math"

	"graph-decoder/internal/raster"
	"graph-decoder/pkg/geometry"

	"gocv.io/x/gocv"
)

// CalibrateImage detects the grid of a Go image.Image.
func CalibrateImage(img image.Image, opts Options) (*Calibration, error) {
	mat := raster.ToMat(img)
	defer mat.Close()
	return Calibrate(mat, opts)
}

// Calibrate detects the main axes and grid spacing in a BGR or grayscale
// image. It returns ErrNotFound when the axes cannot be located.
func Calibrate(img gocv.Mat, opts Options) (*Calibration, error) {
	if img.Empty() {
		return nil, fmt.Errorf("empty input image: %w", ErrNotFound)
	}

	segments := DetectSegments(img, opts)
	if opts.Debug {
		log.Printf("Grid: %d raw segments in %dx%d image", len(segments), img.Cols(), img.Rows())
	}

	return FromSegments(segments, img.Cols(), img.Rows(), opts)
}

// DetectSegments runs Canny edge detection followed by the probabilistic
// Hough transform and returns the raw line segments.
func DetectSegments(img gocv.Mat, opts Options) []geometry.Segment {
	gray := raster.Gray(img)
	defer gray.Close()

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, opts.CannyLow, opts.CannyHigh)

	lines := gocv.NewMat()
	defer lines.Close()
	gocv.HoughLinesPWithParams(edges, &lines, opts.HoughRho, opts.HoughTheta,
		opts.HoughThreshold, opts.MinLineLength, opts.MaxLineGap)

	segments := make([]geometry.Segment, 0, lines.Rows())
	for i := 0; i < lines.Rows(); i++ {
		v := lines.GetVeciAt(i, 0)
		segments = append(segments, geometry.NewSegment(
			float64(v[0]), float64(v[1]), float64(v[2]), float64(v[3])))
	}
	return segments
}

// FromSegments builds a calibration from detected line segments of an image
// with the given size. Segments between the horizontal and vertical angle
// thresholds are discarded as noise.
func FromSegments(segments []geometry.Segment, width, height int, opts Options) (*Calibration, error) {
	horizontal, vertical := ClassifySegments(segments, opts)
	if len(horizontal) == 0 || len(vertical) == 0 {
		return nil, fmt.Errorf("%d horizontal and %d vertical lines: %w",
			len(horizontal), len(vertical), ErrNotFound)
	}

	mainH := mainAxis(horizontal, float64(height)/2, func(s geometry.Segment) float64 { return s.Midpoint().Y })
	mainV := mainAxis(vertical, float64(width)/2, func(s geometry.Segment) float64 { return s.Midpoint().X })

	origin, ok := geometry.Intersect(mainH, mainV)
	if !ok {
		return nil, fmt.Errorf("axes are parallel: %w", ErrNotFound)
	}

	cal := &Calibration{
		Origin:          origin,
		ScaleX:          opts.DefaultScale,
		ScaleY:          opts.DefaultScale,
		AxisLines:       []geometry.Segment{mainH, mainV},
		HorizontalLines: horizontal,
		VerticalLines:   vertical,
	}

	// Vertical lines are spaced along X, horizontal lines along Y
	if s, ok := geometry.MeanSpacing(positions(vertical, func(p geometry.Point2D) float64 { return p.X }), opts.MinLineSeparation); ok {
		cal.ScaleX = s
		cal.ScaleXEstimated = true
	}
	if s, ok := geometry.MeanSpacing(positions(horizontal, func(p geometry.Point2D) float64 { return p.Y }), opts.MinLineSeparation); ok {
		cal.ScaleY = s
		cal.ScaleYEstimated = true
	}

	if cal.ScaleX <= 0 || cal.ScaleY <= 0 {
		return nil, fmt.Errorf("non-positive scale %.3f x %.3f: %w", cal.ScaleX, cal.ScaleY, ErrNotFound)
	}

	if opts.Debug {
		log.Printf("Grid: %d horizontal, %d vertical, origin=(%.1f,%.1f) scale=(%.2f,%.2f) confident=%v",
			len(horizontal), len(vertical), origin.X, origin.Y, cal.ScaleX, cal.ScaleY, cal.Confident())
	}

	return cal, nil
}

// ClassifySegments splits segments into horizontal and vertical sets by
// angle. Zero-length and intermediate-angle segments are dropped.
func ClassifySegments(segments []geometry.Segment, opts Options) (horizontal, vertical []geometry.Segment) {
	for _, s := range segments {
		if s.Length() == 0 {
			continue
		}
		angle := s.AngleDegrees()
		switch {
		case angle < opts.HorizontalMaxAngle:
			horizontal = append(horizontal, s)
		case angle > opts.VerticalMinAngle:
			vertical = append(vertical, s)
		}
	}
	return horizontal, vertical
}

// mainAxis returns the line whose position is closest to center.
// Ties keep the earliest line.
func mainAxis(lines []geometry.Segment, center float64, pos func(geometry.Segment) float64) geometry.Segment {
	best := lines[0]
	bestDist := math.Abs(pos(best) - center)
	for _, l := range lines[1:] {
		if d := math.Abs(pos(l) - center); d < bestDist {
			best = l
			bestDist = d
		}
	}
	return best
}

// positions returns one coordinate of each line's midpoint.
func positions(lines []geometry.Segment, coord func(geometry.Point2D) float64) []float64 {
	out := make([]float64, len(lines))
	for i, l := range lines {
		out[i] = coord(l.Midpoint())
	}
	return out
}
