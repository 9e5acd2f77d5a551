package critical

import (
	"testing"

	"graph-decoder/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pts(xy ...float64) []geometry.Point2D {
	out := make([]geometry.Point2D, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, geometry.Point2D{X: xy[i], Y: xy[i+1]})
	}
	return out
}

func TestFindSawtooth(t *testing.T) {
	t.Parallel()

	got := Find(pts(0, 0, 1, 2, 2, -1, 3, 3, 4, 0))
	require.Len(t, got, 8)

	want := []Point{
		XAt(0),
		YAt(0),
		Max(1, 2),
		XAt(1 + 2.0/3.0),
		Min(2, -1),
		XAt(2.25),
		Max(3, 3),
		XAt(4),
	}
	for i := range want {
		assert.Equal(t, want[i].Kind, got[i].Kind, "index %d", i)
		assert.InDelta(t, want[i].X, got[i].X, 1e-9, "index %d", i)
		assert.InDelta(t, want[i].Y, got[i].Y, 1e-9, "index %d", i)
	}

	counts := Count(got)
	assert.Equal(t, 2, counts[Maximum])
	assert.Equal(t, 1, counts[Minimum])
	assert.Equal(t, 4, counts[XIntercept])
	assert.Equal(t, 1, counts[YIntercept])
}

func TestFindDeterministic(t *testing.T) {
	t.Parallel()

	in := pts(-2, -3, -1, 1, 0, 2, 1, -1, 2, 0.5, 3, 0.5, 4, -2)
	first := Find(in)
	second := Find(in)
	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

func TestFindInterceptsLieOnAxes(t *testing.T) {
	t.Parallel()

	for _, cp := range Find(pts(-3, 5, -1, -2, 0.5, 1, 2, -4, 3, 2)) {
		switch cp.Kind {
		case XIntercept:
			assert.Zero(t, cp.Y)
		case YIntercept:
			assert.Zero(t, cp.X)
		}
	}
}

func TestFindEdgeCases(t *testing.T) {
	t.Parallel()

	t.Run("empty and single", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, Find(nil))
		assert.Empty(t, Find(pts(1, 1)))
	})

	t.Run("plateau yields no extremum", func(t *testing.T) {
		t.Parallel()
		got := Find(pts(1, 1, 2, 3, 3, 3, 4, 1))
		assert.Zero(t, Count(got)[Maximum])
	})

	t.Run("flat zero run skips division", func(t *testing.T) {
		t.Parallel()
		// y stays at zero so every pair satisfies the sign test but has no slope
		got := Find(pts(1, 0, 2, 0, 3, 0))
		assert.Empty(t, got)
	})

	t.Run("vertical pair across y axis", func(t *testing.T) {
		t.Parallel()
		// x0 == x1 == 0 divides by zero for the y intercept
		assert.Empty(t, Find(pts(0, 1, 0, 2)))
	})

	t.Run("y intercept interpolation", func(t *testing.T) {
		t.Parallel()
		got := Find(pts(-1, 1, 1, 3))
		require.Len(t, got, 1)
		assert.Equal(t, YAt(2), got[0])
	})
}

func TestKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "max", Maximum.String())
	assert.Equal(t, "min", Minimum.String())
	assert.Equal(t, "x_intercept", XIntercept.String())
	assert.Equal(t, "y_intercept", YIntercept.String())
	assert.Equal(t, "unknown", Kind(42).String())
	assert.Equal(t, "max: (1.00, 2.50)", Max(1, 2.5).String())
}
