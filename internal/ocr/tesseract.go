// Package ocr reads numeric axis tick labels with Tesseract to turn grid
// spacing into real units.
package ocr

import (
	"fmt"
	"image"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"
)

// NumericChars is the character set of tick labels.
const NumericChars = "0123456789.-"

// Engine provides OCR using Tesseract.
type Engine struct {
	client *gosseract.Client
}

// NewEngine creates a new OCR engine restricted to numeric text.
func NewEngine() (*Engine, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage("eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}

	// Tick labels are not dictionary words
	_ = client.SetVariable("load_system_dawg", "false")
	_ = client.SetVariable("load_freq_dawg", "false")

	if err := client.SetWhitelist(NumericChars); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set whitelist: %w", err)
	}

	return &Engine{client: client}, nil
}

// Close releases OCR resources.
func (e *Engine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// RecognizeRegion performs OCR on a region of an image. The region is
// clipped to the image bounds.
func (e *Engine) RecognizeRegion(img gocv.Mat, bounds image.Rectangle) (string, error) {
	if img.Empty() {
		return "", fmt.Errorf("empty image")
	}

	bounds = bounds.Intersect(image.Rect(0, 0, img.Cols(), img.Rows()))
	if bounds.Empty() {
		return "", fmt.Errorf("invalid region bounds")
	}

	region := img.Region(bounds)
	defer region.Close()

	processed := preprocessForOCR(region)
	defer processed.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, processed)
	if err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	// PSM 7 = Treat the image as a single text line
	if err := e.client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		return "", fmt.Errorf("failed to set PSM: %w", err)
	}

	if err := e.client.SetImageFromBytes(buf.GetBytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}

	return strings.Join(strings.Fields(text), ""), nil
}

// preprocessForOCR upscales a label crop and binarizes it to dark text on
// a light background.
func preprocessForOCR(region gocv.Mat) gocv.Mat {
	h, w := region.Rows(), region.Cols()

	// Tesseract works best with glyphs at least ~30px tall
	var scaled gocv.Mat
	if minDim := min(h, w); minDim < 100 {
		scale := 100.0 / float64(minDim)
		scaled = gocv.NewMat()
		gocv.Resize(region, &scaled, image.Point{}, scale, scale, gocv.InterpolationCubic)
	} else {
		scaled = region.Clone()
	}

	gray := gocv.NewMat()
	if scaled.Channels() == 1 {
		scaled.CopyTo(&gray)
	} else {
		gocv.CvtColor(scaled, &gray, gocv.ColorBGRToGray)
	}
	scaled.Close()

	binary := gocv.NewMat()
	gocv.Threshold(gray, &binary, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
	gray.Close()

	// Light text on a dark plot background
	if whiteRatio := float64(gocv.CountNonZero(binary)) / float64(binary.Rows()*binary.Cols()); whiteRatio < 0.5 {
		gocv.BitwiseNot(binary, &binary)
	}

	result := gocv.NewMat()
	gocv.CvtColor(binary, &result, gocv.ColorGrayToBGR)
	binary.Close()

	return result
}
