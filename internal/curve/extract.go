// Package curve isolates the plotted curve in a graph image and returns it
// as an ordered point sequence.
package curve

import (
	"fmt"
	"image"
	"log"
	"sort"

	"graph-decoder/internal/calibration"
	"graph-decoder/internal/raster"
	"graph-decoder/pkg/geometry"

	"gocv.io/x/gocv"
)

// Extract returns the dominant curve of img in mathematical coordinates,
// ordered by strictly increasing X. An image without any contour yields an
// empty slice and no error. A nil calibration returns
// calibration.ErrNotFound since pixel positions cannot be converted.
func Extract(img gocv.Mat, cal *calibration.Calibration, opts Options) ([]geometry.Point2D, error) {
	if cal == nil {
		return nil, fmt.Errorf("curve extraction: %w", calibration.ErrNotFound)
	}

	pixels := ExtractPixels(img, opts)
	points := make([]geometry.Point2D, len(pixels))
	for i, p := range pixels {
		points[i] = cal.ToUnits(p)
	}
	return points, nil
}

// ExtractPixels returns the dominant curve of img in pixel coordinates,
// sorted by X with one point per pixel column.
func ExtractPixels(img gocv.Mat, opts Options) []geometry.Point2D {
	if img.Empty() {
		return nil
	}

	mask := Binarize(img, opts)
	defer mask.Close()

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxNone)
	defer contours.Close()

	if contours.Size() == 0 {
		return nil
	}

	// The plotted curve is assumed to be the longest outline
	best := -1
	var bestLen float64
	for i := 0; i < contours.Size(); i++ {
		l := gocv.ArcLength(contours.At(i), false)
		if best < 0 || l > bestLen {
			best = i
			bestLen = l
		}
	}

	approx := gocv.ApproxPolyDP(contours.At(best), opts.ApproxFraction*bestLen, false)
	defer approx.Close()

	points := collapseColumns(approx.ToPoints())

	if opts.Debug {
		log.Printf("Curve: %d contours, longest %.1fpx, %d points after approximation",
			contours.Size(), bestLen, len(points))
	}

	return points
}

// Binarize converts img to a cleaned binary mask where curve pixels are 255.
// The caller must close the returned Mat.
func Binarize(img gocv.Mat, opts Options) gocv.Mat {
	gray := raster.Gray(img)

	if opts.BlurSize > 1 {
		gocv.GaussianBlur(gray, &gray, image.Point{opts.BlurSize, opts.BlurSize}, 0, 0, gocv.BorderDefault)
	}

	mask := gocv.NewMat()
	gocv.AdaptiveThreshold(gray, &mask, 255, gocv.AdaptiveThresholdGaussian,
		gocv.ThresholdBinaryInv, opts.BlockSize, opts.C)
	gray.Close()

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{3, 3})
	defer kernel.Close()

	// Close small gaps
	for i := 0; i < opts.CleanupIterations; i++ {
		gocv.MorphologyEx(mask, &mask, gocv.MorphClose, kernel)
	}

	// Remove speckle noise
	for i := 0; i < opts.CleanupIterations; i++ {
		gocv.MorphologyEx(mask, &mask, gocv.MorphOpen, kernel)
	}

	return mask
}

// collapseColumns merges points sharing a pixel column into one point at
// the mean row and returns them sorted by X.
func collapseColumns(pts []image.Point) []geometry.Point2D {
	type column struct {
		sum   float64
		count int
	}
	cols := make(map[int]*column, len(pts))
	for _, p := range pts {
		c, ok := cols[p.X]
		if !ok {
			c = &column{}
			cols[p.X] = c
		}
		c.sum += float64(p.Y)
		c.count++
	}

	out := make([]geometry.Point2D, 0, len(cols))
	for x, c := range cols {
		out = append(out, geometry.Point2D{X: float64(x), Y: c.sum / float64(c.count)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].X < out[j].X })
	return out
}
