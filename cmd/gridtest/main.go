// Command gridtest runs grid calibration and curve extraction on a graph
// image and prints what was detected.
package main

import (
	"flag"
	"fmt"
	"os"

	"graph-decoder/internal/calibration"
	"graph-decoder/internal/curve"
	"graph-decoder/internal/ocr"
	"graph-decoder/internal/raster"
	"graph-decoder/pkg/geometry"
)

func main() {
	imagePath := flag.String("image", "", "Path to graph image")
	minLength := flag.Float64("min-length", 100, "Minimum Hough segment length in pixels")
	maxGap := flag.Float64("max-gap", 10, "Maximum Hough segment gap in pixels")
	hMax := flag.Float64("h-max", 20, "Segments flatter than this angle (degrees) are horizontal")
	vMin := flag.Float64("v-min", 70, "Segments steeper than this angle (degrees) are vertical")
	blockSize := flag.Int("block", 11, "Adaptive threshold block size for curve extraction (odd)")
	threshC := flag.Float64("c", 2, "Adaptive threshold constant for curve extraction")
	ticks := flag.Bool("ticks", false, "Refine the scale from axis tick labels")
	verbose := flag.Bool("v", false, "List every detected line")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: gridtest -image <path> [-min-length 100] [-max-gap 10] [-ticks] [-v]")
		os.Exit(1)
	}

	img, format, err := raster.Load(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}
	bounds := img.Bounds()
	fmt.Printf("Loaded %s image: %dx%d pixels\n", format, bounds.Dx(), bounds.Dy())

	mat := raster.ToMat(img)
	defer mat.Close()

	opts := calibration.DefaultOptions().
		WithLineLimits(float32(*minLength), float32(*maxGap)).
		WithAngles(*hMax, *vMin)
	opts.Debug = true
	fmt.Printf("\nDetection parameters:\n")
	fmt.Printf("  Canny: %.0f-%.0f\n", opts.CannyLow, opts.CannyHigh)
	fmt.Printf("  Hough: threshold %d, min length %.0f, max gap %.0f\n",
		opts.HoughThreshold, opts.MinLineLength, opts.MaxLineGap)
	fmt.Printf("  Angles: horizontal < %.0f, vertical > %.0f\n", opts.HorizontalMaxAngle, opts.VerticalMinAngle)

	segments := calibration.DetectSegments(mat, opts)
	horizontal, vertical := calibration.ClassifySegments(segments, opts)
	fmt.Printf("\n%d segments: %d horizontal, %d vertical, %d discarded\n",
		len(segments), len(horizontal), len(vertical), len(segments)-len(horizontal)-len(vertical))
	if *verbose {
		printLines("Horizontal", horizontal)
		printLines("Vertical", vertical)
	}

	cal, err := calibration.FromSegments(segments, mat.Cols(), mat.Rows(), opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Calibration failed: %v\n", err)
		os.Exit(2)
	}

	if *ticks {
		engine, err := ocr.NewEngine()
		if err != nil {
			fmt.Fprintf(os.Stderr, "OCR unavailable: %v\n", err)
		} else {
			tickOpts := ocr.DefaultTickOptions()
			tickOpts.Debug = true
			if refined, err := ocr.NewTickReader(engine, tickOpts).Refine(mat, cal); err == nil {
				cal = refined
			} else {
				fmt.Printf("Tick labels: %v\n", err)
			}
			engine.Close()
		}
	}

	fmt.Printf("\nOrigin: (%.1f, %.1f)\n", cal.Origin.X, cal.Origin.Y)
	fmt.Printf("Scale X: %.3f px/unit (estimated: %v)\n", cal.ScaleX, cal.ScaleXEstimated)
	fmt.Printf("Scale Y: %.3f px/unit (estimated: %v)\n", cal.ScaleY, cal.ScaleYEstimated)

	curveOpts := curve.DefaultOptions().WithThreshold(*blockSize, float32(*threshC))
	fmt.Printf("\nCurve threshold: block %d, C %.1f\n", curveOpts.BlockSize, curveOpts.C)
	pixels := curve.ExtractPixels(mat, curveOpts)
	if len(pixels) == 0 {
		fmt.Printf("\nNo curve found\n")
		return
	}
	box := geometry.BoundingBox(pixels)
	fmt.Printf("\nCurve: %d points, x %.0f-%.0f, y %.0f-%.0f px\n",
		len(pixels), box.X, box.X+box.Width, box.Y, box.Y+box.Height)
	first, last := cal.ToUnits(pixels[0]), cal.ToUnits(pixels[len(pixels)-1])
	fmt.Printf("  from (%.3f, %.3f) to (%.3f, %.3f)\n", first.X, first.Y, last.X, last.Y)
}

func printLines(label string, lines []geometry.Segment) {
	fmt.Printf("%s:\n", label)
	for _, l := range lines {
		fmt.Printf("  (%4.0f,%4.0f)-(%4.0f,%4.0f) len %6.1f angle %5.1f\n",
			l.A.X, l.A.Y, l.B.X, l.B.Y, l.Length(), l.AngleDegrees())
	}
}
