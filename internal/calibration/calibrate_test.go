package calibration

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"graph-decoder/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// gridSegments returns segments for a 400x300 plot with rulings every 50px
// and axes through (200, 150).
func gridSegments() []geometry.Segment {
	var segs []geometry.Segment
	for y := 50.0; y < 300; y += 50 {
		segs = append(segs, geometry.NewSegment(0, y, 399, y))
	}
	for x := 50.0; x < 400; x += 50 {
		segs = append(segs, geometry.NewSegment(x, 0, x, 299))
	}
	return segs
}

func TestFromSegments(t *testing.T) {
	t.Parallel()
	opts := DefaultOptions()

	t.Run("origin at centered axes", func(t *testing.T) {
		t.Parallel()
		cal, err := FromSegments(gridSegments(), 400, 300, opts)
		require.NoError(t, err)

		assert.InDelta(t, 200, cal.Origin.X, 1e-9)
		assert.InDelta(t, 150, cal.Origin.Y, 1e-9)
		require.Len(t, cal.AxisLines, 2)
		assert.InDelta(t, 150, cal.AxisLines[0].Midpoint().Y, 1e-9)
		assert.InDelta(t, 200, cal.AxisLines[1].Midpoint().X, 1e-9)
		assert.True(t, cal.Confident())
		assert.Greater(t, cal.ScaleX, 0.0)
		assert.Greater(t, cal.ScaleY, 0.0)
	})

	t.Run("scale is mean pairwise spacing", func(t *testing.T) {
		t.Parallel()
		segs := []geometry.Segment{
			geometry.NewSegment(0, 100, 300, 100),
			geometry.NewSegment(0, 140, 300, 140),
			geometry.NewSegment(100, 0, 100, 300),
			geometry.NewSegment(160, 0, 160, 300),
			geometry.NewSegment(162, 0, 162, 300), // duplicate ruling
		}
		cal, err := FromSegments(segs, 300, 300, opts)
		require.NoError(t, err)

		// vertical pairs over 10px: 60, 62 (160/162 filtered)
		assert.InDelta(t, 61, cal.ScaleX, 1e-9)
		assert.InDelta(t, 40, cal.ScaleY, 1e-9)
	})

	t.Run("single line per axis defaults scale", func(t *testing.T) {
		t.Parallel()
		segs := []geometry.Segment{
			geometry.NewSegment(0, 100, 300, 100),
			geometry.NewSegment(150, 0, 150, 300),
		}
		cal, err := FromSegments(segs, 300, 200, opts)
		require.NoError(t, err)

		assert.Equal(t, 1.0, cal.ScaleX)
		assert.Equal(t, 1.0, cal.ScaleY)
		assert.False(t, cal.ScaleXEstimated)
		assert.False(t, cal.ScaleYEstimated)
		assert.False(t, cal.Confident())
	})

	t.Run("diagonal segments are noise", func(t *testing.T) {
		t.Parallel()
		segs := []geometry.Segment{
			geometry.NewSegment(0, 0, 100, 100),
			geometry.NewSegment(0, 100, 100, 0),
		}
		_, err := FromSegments(segs, 100, 100, opts)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("missing vertical axis", func(t *testing.T) {
		t.Parallel()
		segs := []geometry.Segment{geometry.NewSegment(0, 50, 100, 50)}
		_, err := FromSegments(segs, 100, 100, opts)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("no segments", func(t *testing.T) {
		t.Parallel()
		cal, err := FromSegments(nil, 100, 100, opts)
		assert.Nil(t, cal)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestClassifySegments(t *testing.T) {
	t.Parallel()

	segs := []geometry.Segment{
		geometry.NewSegment(0, 0, 100, 10),  // ~5.7 deg
		geometry.NewSegment(0, 0, 10, 100),  // ~84 deg
		geometry.NewSegment(0, 0, 100, 100), // 45 deg
		geometry.NewSegment(5, 5, 5, 5),     // degenerate
		geometry.NewSegment(100, 0, 0, 3),   // reversed, ~1.7 deg
	}
	h, v := ClassifySegments(segs, DefaultOptions())
	assert.Len(t, h, 2)
	assert.Len(t, v, 1)

	// Widening both bands to 45 degrees still leaves the diagonal out
	wide := DefaultOptions().WithAngles(45, 45)
	assert.Equal(t, 45.0, wide.HorizontalMaxAngle)
	assert.Equal(t, 45.0, wide.VerticalMinAngle)
	h, v = ClassifySegments(segs, wide)
	assert.Len(t, h, 2)
	assert.Len(t, v, 1)

	// Narrow bands drop the 5.7 and 84 degree segments
	h, v = ClassifySegments(segs, DefaultOptions().WithAngles(3, 88))
	assert.Len(t, h, 1)
	assert.Empty(t, v)
}

func TestCalibrationRoundTrip(t *testing.T) {
	t.Parallel()

	cals := []Calibration{
		{Origin: geometry.Point2D{X: 200, Y: 150}, ScaleX: 50, ScaleY: 50},
		{Origin: geometry.Point2D{X: 13.5, Y: 977.25}, ScaleX: 0.37, ScaleY: 123.4},
		{Origin: geometry.Point2D{X: -20, Y: 5}, ScaleX: 1, ScaleY: 1},
	}
	pixels := []geometry.Point2D{{X: 0, Y: 0}, {X: 399, Y: 299}, {X: 200, Y: 150}, {X: 17.25, Y: 1e4}}

	for _, cal := range cals {
		for _, px := range pixels {
			back := cal.ToPixel(cal.ToUnits(px))
			assert.InDelta(t, px.X, back.X, 1e-9)
			assert.InDelta(t, px.Y, back.Y, 1e-9)
		}
	}

	cal := cals[0]
	u := cal.ToUnits(geometry.Point2D{X: 250, Y: 100})
	assert.InDelta(t, 1, u.X, 1e-12)
	assert.InDelta(t, 1, u.Y, 1e-12, "pixel rows grow downward")
}

func TestWithScale(t *testing.T) {
	t.Parallel()

	cal := &Calibration{Origin: geometry.Point2D{X: 10, Y: 10}, ScaleX: 1, ScaleY: 1}
	scaled := cal.WithScale(25, 0)
	assert.Equal(t, 25.0, scaled.ScaleX)
	assert.True(t, scaled.ScaleXEstimated)
	assert.Equal(t, 1.0, scaled.ScaleY)
	assert.False(t, scaled.ScaleYEstimated)
	assert.Equal(t, 1.0, cal.ScaleX, "original is unchanged")
}

func TestCalibrateSyntheticGrid(t *testing.T) {
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), 300, 400, gocv.MatTypeCV8UC3)
	defer img.Close()

	grid := color.RGBA{R: 150, G: 150, B: 150, A: 255}
	for y := 25; y < 300; y += 50 {
		gocv.Line(&img, image.Pt(0, y), image.Pt(399, y), grid, 1)
	}
	for x := 25; x < 400; x += 50 {
		gocv.Line(&img, image.Pt(x, 0), image.Pt(x, 299), grid, 1)
	}
	black := color.RGBA{A: 255}
	gocv.Line(&img, image.Pt(0, 150), image.Pt(399, 150), black, 2)
	gocv.Line(&img, image.Pt(200, 0), image.Pt(200, 299), black, 2)

	cal, err := Calibrate(img, DefaultOptions())
	require.NoError(t, err)
	assert.InDelta(t, 200, cal.Origin.X, 3)
	assert.InDelta(t, 150, cal.Origin.Y, 3)
	assert.True(t, cal.ScaleXEstimated)
	assert.True(t, cal.ScaleYEstimated)
}

func TestCalibrateBlankImage(t *testing.T) {
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), 200, 200, gocv.MatTypeCV8UC3)
	defer img.Close()

	cal, err := Calibrate(img, DefaultOptions())
	assert.Nil(t, cal)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = CalibrateImage(image.NewGray(image.Rect(0, 0, 50, 50)), DefaultOptions())
	assert.ErrorIs(t, err, ErrNotFound)
}
