package ocr

import (
	"errors"
	"image"
	"log"
	"math"
	"sort"
	"strconv"
	"strings"

	"graph-decoder/internal/calibration"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"
)

// ErrNoLabels is returned when no tick label could be read on either axis.
var ErrNoLabels = errors.New("no tick labels read")

// Recognizer reads the text in a region of an image.
type Recognizer interface {
	RecognizeRegion(img gocv.Mat, bounds image.Rectangle) (string, error)
}

// TickOptions controls where tick labels are looked for.
type TickOptions struct {
	LabelWidth  int // Crop width in pixels
	LabelHeight int // Crop height in pixels
	Gap         int // Distance between the axis and the crop

	// Lines closer than this to the axis are its own ruling, labelled 0.
	MinAxisDistance float64

	// Lines closer than this to each other are merged.
	MergeDistance float64

	MinLabels int // Readings needed per axis

	Debug bool
}

// DefaultTickOptions returns defaults for labels drawn just below the
// X axis and just left of the Y axis.
func DefaultTickOptions() TickOptions {
	return TickOptions{
		LabelWidth:      40,
		LabelHeight:     20,
		Gap:             2,
		MinAxisDistance: 10,
		MergeDistance:   5,
		MinLabels:       2,
	}
}

// TickReader refines a calibration from numeric tick labels.
type TickReader struct {
	rec  Recognizer
	opts TickOptions
}

// NewTickReader creates a tick reader using rec for text recognition.
func NewTickReader(rec Recognizer, opts TickOptions) *TickReader {
	return &TickReader{rec: rec, opts: opts}
}

// Refine reads the labels next to the grid lines of cal and returns a copy
// of cal whose scales are measured in label units. An axis without enough
// readable labels keeps its scale. ErrNoLabels is returned, together with
// an unchanged copy, when neither axis could be read.
func (r *TickReader) Refine(img gocv.Mat, cal *calibration.Calibration) (*calibration.Calibration, error) {
	var xs, ys []float64
	for _, l := range cal.VerticalLines {
		xs = append(xs, l.Midpoint().X)
	}
	for _, l := range cal.HorizontalLines {
		ys = append(ys, l.Midpoint().Y)
	}

	var xEst, yEst []float64
	for _, px := range r.ticks(xs, cal.Origin.X) {
		rect := image.Rect(int(px)-r.opts.LabelWidth/2, int(cal.Origin.Y)+r.opts.Gap,
			int(px)+r.opts.LabelWidth/2, int(cal.Origin.Y)+r.opts.Gap+r.opts.LabelHeight)
		if v, ok := r.read(img, rect); ok {
			xEst = append(xEst, (px-cal.Origin.X)/v)
		}
	}
	for _, py := range r.ticks(ys, cal.Origin.Y) {
		rect := image.Rect(int(cal.Origin.X)-r.opts.Gap-r.opts.LabelWidth, int(py)-r.opts.LabelHeight/2,
			int(cal.Origin.X)-r.opts.Gap, int(py)+r.opts.LabelHeight/2)
		if v, ok := r.read(img, rect); ok {
			yEst = append(yEst, (cal.Origin.Y-py)/v)
		}
	}

	sx, okX := MedianScale(xEst, r.opts.MinLabels)
	sy, okY := MedianScale(yEst, r.opts.MinLabels)
	if r.opts.Debug {
		log.Printf("Ticks: %d x readings (scale %.3f), %d y readings (scale %.3f)", len(xEst), sx, len(yEst), sy)
	}
	if !okX && !okY {
		return cal.WithScale(0, 0), ErrNoLabels
	}
	return cal.WithScale(sx, sy), nil
}

// ticks returns the merged line positions that are not the axis itself.
func (r *TickReader) ticks(positions []float64, axis float64) []float64 {
	sorted := append([]float64(nil), positions...)
	sort.Float64s(sorted)

	var out []float64
	for _, p := range sorted {
		if math.Abs(p-axis) < r.opts.MinAxisDistance {
			continue
		}
		if n := len(out); n > 0 && p-out[n-1] < r.opts.MergeDistance {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (r *TickReader) read(img gocv.Mat, rect image.Rectangle) (float64, bool) {
	text, err := r.rec.RecognizeRegion(img, rect)
	if err != nil {
		if r.opts.Debug {
			log.Printf("Ticks: OCR at %v failed: %v", rect, err)
		}
		return 0, false
	}
	v, ok := ParseTickValue(text)
	if !ok || v == 0 {
		return 0, false
	}
	return v, true
}

// ParseTickValue parses a recognized tick label such as "-2", "0.5" or
// "−1.5" (Unicode minus).
func ParseTickValue(text string) (float64, bool) {
	s := strings.TrimSpace(text)
	s = strings.ReplaceAll(s, "−", "-")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.TrimSuffix(s, ".")
	if s == "" || s == "-" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// MedianScale returns the median of the positive estimates, or false when
// fewer than minCount remain. Negative estimates come from labels on the
// wrong side of the axis and are ignored.
func MedianScale(estimates []float64, minCount int) (float64, bool) {
	var valid []float64
	for _, e := range estimates {
		if e > 0 && !math.IsInf(e, 0) {
			valid = append(valid, e)
		}
	}
	if len(valid) == 0 || len(valid) < minCount {
		return 0, false
	}
	sort.Float64s(valid)
	return stat.Quantile(0.5, stat.Empirical, valid, nil), true
}
