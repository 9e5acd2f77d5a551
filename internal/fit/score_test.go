package fit

import (
	"math"
	"math/rand"
	"testing"

	"graph-decoder/internal/critical"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidate(t *testing.T) {
	t.Parallel()

	c := Candidate{1, -2, 0.5, 4}
	assert.InDelta(t, (8.0-8+1+4)/4, c.Eval(2), 1e-12)
	assert.Equal(t, []float64{1, c.Eval(2)}, c.EvalAll([]float64{0, 2}))
	assert.True(t, c.Finite())
	assert.False(t, Candidate{math.NaN()}.Finite())
	assert.False(t, Candidate{0, 0, math.Inf(-1)}.Finite())
	assert.Equal(t, "f(x) = (1.000x³ + -2.000x² + 0.500x + 4.000)/4", c.String())
}

func TestScore(t *testing.T) {
	t.Parallel()

	truth := Candidate{1, 0, 0, 0}
	x, y := samples(truth, -1, 1, 11)

	t.Run("exact fit without penalties", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 0.0, Score(truth, x, y, nil, Weights{}))
	})

	t.Run("regularization floor", func(t *testing.T) {
		t.Parallel()
		w := Weights{Regularization: 0.01}
		assert.InDelta(t, 0.01, Score(truth, x, y, nil, w), 1e-12)
	})

	t.Run("smoothness is mean squared difference", func(t *testing.T) {
		t.Parallel()
		line := Candidate{0, 0, 4, 0} // f(x) = x
		xs := []float64{0, 1, 2, 4}
		ys := []float64{0, 1, 2, 4}
		got := Score(line, xs, ys, nil, Weights{Smoothness: 1})
		assert.InDelta(t, (1.0+1+4)/3, got, 1e-12)

		single := Score(line, []float64{3}, []float64{3}, nil, Weights{Smoothness: 1})
		assert.Equal(t, 0.0, single)
	})

	t.Run("default weights", func(t *testing.T) {
		t.Parallel()
		got := Score(truth, x, y, nil, DefaultWeights())
		assert.Greater(t, got, 0.01)
	})

	t.Run("non-finite scores are worst", func(t *testing.T) {
		t.Parallel()
		bad := []float64{1, math.NaN(), 3}
		assert.True(t, math.IsInf(Score(truth, []float64{1, 2, 3}, bad, nil, DefaultWeights()), 1))
		assert.True(t, math.IsInf(Score(Candidate{math.MaxFloat64}, []float64{1e200}, []float64{0}, nil, DefaultWeights()), 1))
		assert.True(t, math.IsInf(Score(truth, nil, nil, nil, DefaultWeights()), 1))
	})
}

func TestCriticalError(t *testing.T) {
	t.Parallel()

	c := Candidate{0, 0, 0, 4} // f(x) = 1
	cps := []critical.Point{
		critical.Max(0, 3),  // |1-3| = 2
		critical.Min(1, 1),  // 0
		critical.XAt(5),     // |1| = 1
		critical.YAt(-0.5),  // |1+0.5| = 1.5
	}
	assert.InDelta(t, 4.5, CriticalError(c, cps), 1e-12)
	assert.Zero(t, CriticalError(c, nil))

	x := []float64{0, 1}
	y := []float64{1, 1}
	assert.InDelta(t, 0.2*4.5, Score(c, x, y, cps, Weights{Critical: 0.2}), 1e-12)
}

func TestEstimateSeed(t *testing.T) {
	t.Parallel()

	x := []float64{-1, 1}
	y := []float64{-1, 1}

	c, ok := EstimateSeed(x, y, nil)
	require.True(t, ok)
	assert.Equal(t, Candidate{0.25, 0, 0, 0}, c)

	// A maximum where the seed predicts zero divides by zero
	_, ok = EstimateSeed(x, y, []critical.Point{critical.Max(0, 1)})
	assert.False(t, ok)

	// Intercepts do not adjust the seed
	c, ok = EstimateSeed(x, y, []critical.Point{critical.XAt(0)})
	require.True(t, ok)
	assert.Equal(t, Candidate{0.25, 0, 0, 0}, c)

	_, ok = EstimateSeed(nil, nil, nil)
	assert.False(t, ok)
}

func TestLeastSquaresSeed(t *testing.T) {
	t.Parallel()

	truth := Candidate{2, -1, 0.5, 3}
	x, y := samples(truth, -2, 3, 30)

	c, err := LeastSquaresSeed(x, y)
	require.NoError(t, err)
	for i := range truth {
		assert.InDelta(t, truth[i], c[i], 1e-9)
	}

	_, err = LeastSquaresSeed(x[:3], y[:3])
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = LeastSquaresSeed(x, y[:5])
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = LeastSquaresSeed(make([]float64, 10), y[:10])
	assert.Error(t, err)
}

func TestConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10000, cfg.TotalGenerations())

	seeded := cfg.WithSeeds(Candidate{1})
	assert.Len(t, seeded.Seeds, 1)
	assert.Empty(t, cfg.Seeds)

	bad := cfg
	bad.MutationRate = 1.5
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)
}

func TestInitialPopulationSeeds(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig().WithSeeds(Candidate{math.NaN()}, Candidate{9, 9, 9, 9})
	cfg.PopulationSize = 5
	pop := initialPopulation(rand.New(rand.NewSource(1)), cfg)

	require.Len(t, pop, 5)
	assert.Equal(t, Candidate{9, 9, 9, 9}, pop[0])
	for _, c := range pop[1:] {
		for _, p := range c {
			assert.LessOrEqual(t, math.Abs(p), cfg.InitRange)
		}
	}
}
