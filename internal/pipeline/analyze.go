// Package pipeline ties grid calibration, curve extraction, critical point
// detection and curve fitting together and runs the fit in the background.
package pipeline

import (
	"errors"
	"fmt"
	"image"

	"graph-decoder/internal/calibration"
	"graph-decoder/internal/critical"
	"graph-decoder/internal/curve"
	"graph-decoder/internal/fit"
	"graph-decoder/internal/raster"
	"graph-decoder/pkg/geometry"

	"gocv.io/x/gocv"
)

// ErrNoCurve is returned when an image yields no curve points to fit.
var ErrNoCurve = errors.New("no curve found")

// Status classifies the outcome of analysing an image.
type Status int

const (
	StatusOK            Status = iota // Calibrated and a curve was found
	StatusLowConfidence               // A curve was found but a scale was defaulted
	StatusNoCalibration               // No axes; points cannot be converted
	StatusNoCurve                     // Calibrated but no curve points
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusLowConfidence:
		return "low confidence"
	case StatusNoCalibration:
		return "no calibration"
	case StatusNoCurve:
		return "no curve"
	default:
		return "unknown"
	}
}

// ScaleRefiner replaces grid-spacing scales with measured ones, for
// example from axis tick labels.
type ScaleRefiner interface {
	Refine(img gocv.Mat, cal *calibration.Calibration) (*calibration.Calibration, error)
}

// Options configures image analysis.
type Options struct {
	Grid  calibration.Options
	Curve curve.Options

	// Ticks, if set, refines the calibration before extraction.
	Ticks ScaleRefiner
}

// DefaultOptions returns the default analysis options.
func DefaultOptions() Options {
	return Options{
		Grid:  calibration.DefaultOptions(),
		Curve: curve.DefaultOptions(),
	}
}

// Analysis holds everything derived from one image before fitting.
type Analysis struct {
	Status      Status
	Calibration *calibration.Calibration // nil for StatusNoCalibration
	Points      []geometry.Point2D       // Mathematical units, increasing X
	Critical    []critical.Point
}

// Usable reports whether the analysis has points that can be fitted.
func (a *Analysis) Usable() bool {
	return a.Status == StatusOK || a.Status == StatusLowConfidence
}

// Err returns the sentinel error matching the status, or nil when usable.
func (a *Analysis) Err() error {
	switch a.Status {
	case StatusNoCalibration:
		return calibration.ErrNotFound
	case StatusNoCurve:
		return ErrNoCurve
	}
	return nil
}

// Job builds an optimizer job from the analysis. It refuses analyses
// without fittable points.
func (a *Analysis) Job(cfg fit.Config, seed SeedMode) (Job, error) {
	if err := a.Err(); err != nil {
		return Job{}, fmt.Errorf("%s: %w", a.Status, err)
	}
	x, y := geometry.SplitXY(a.Points)
	return Job{X: x, Y: y, Critical: a.Critical, Config: cfg, Seed: seed}, nil
}

// AnalyzeImage analyses a decoded Go image.
func AnalyzeImage(img image.Image, opts Options) *Analysis {
	mat := raster.ToMat(img)
	defer mat.Close()
	return Analyze(mat, opts)
}

// Analyze calibrates img, extracts its curve and finds critical points.
// Failures are reported through Status rather than an error.
func Analyze(img gocv.Mat, opts Options) *Analysis {
	cal, err := calibration.Calibrate(img, opts.Grid)
	if err != nil {
		Logf("Pipeline: calibration failed: %v", err)
		return &Analysis{Status: StatusNoCalibration}
	}

	if opts.Ticks != nil {
		refined, err := opts.Ticks.Refine(img, cal)
		if err != nil {
			Logf("Pipeline: keeping grid scale: %v", err)
		} else {
			cal = refined
		}
	}

	points, err := curve.Extract(img, cal, opts.Curve)
	if err != nil {
		Logf("Pipeline: curve extraction failed: %v", err)
		return &Analysis{Status: StatusNoCurve, Calibration: cal}
	}

	a := &Analysis{
		Calibration: cal,
		Points:      points,
		Critical:    critical.Find(points),
	}
	a.Status = classify(cal, len(points))

	Logf("Pipeline: %s, %d points, %d critical points", a.Status, len(a.Points), len(a.Critical))
	return a
}

func classify(cal *calibration.Calibration, points int) Status {
	switch {
	case cal == nil:
		return StatusNoCalibration
	case points == 0:
		return StatusNoCurve
	case !cal.Confident():
		return StatusLowConfidence
	default:
		return StatusOK
	}
}
