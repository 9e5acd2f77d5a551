package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"graph-decoder/internal/calibration"
	"graph-decoder/internal/curve"
	"graph-decoder/internal/fit"
	"graph-decoder/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultsFileMatchesCode(t *testing.T) {
	t.Parallel()
	cfg := MustLoadDefaultConfig()

	assert.Equal(t, calibration.DefaultOptions(), cfg.ApplyGrid(calibration.Options{}))
	assert.Equal(t, curve.DefaultOptions(), cfg.ApplyCurve(curve.Options{}))

	want := fit.DefaultConfig()
	assert.Equal(t, want, cfg.ApplyFit(fit.Config{}))

	assert.Equal(t, pipeline.DefaultPollInterval, cfg.GetPollInterval())
	assert.Equal(t, pipeline.SeedNone, cfg.GetSeedMode())
}

func TestLoadTuningConfig(t *testing.T) {
	t.Parallel()

	t.Run("partial overrides", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "tuning.json", `{"min_line_length": 40, "max_attempts": 5, "seed_mode": "lsq", "poll_interval": "5ms"}`)
		cfg, err := LoadTuningConfig(path)
		require.NoError(t, err)

		grid := cfg.ApplyGrid(calibration.DefaultOptions())
		assert.Equal(t, float32(40), grid.MinLineLength)
		assert.Equal(t, float32(10), grid.MaxLineGap)

		fc := cfg.ApplyFit(fit.DefaultConfig())
		assert.Equal(t, 5, fc.MaxAttempts)
		assert.Equal(t, 50, fc.PopulationSize)

		assert.Equal(t, pipeline.SeedLeastSquares, cfg.GetSeedMode())
		assert.Equal(t, 5*time.Millisecond, cfg.GetPollInterval())

		opts := cfg.ApplyAnalysis(pipeline.DefaultOptions())
		assert.Equal(t, float32(40), opts.Grid.MinLineLength)
	})

	t.Run("hough resolution and default scale", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "hough.json", `{"hough_rho": 2, "hough_theta_deg": 0.5, "default_scale": 25}`)
		cfg, err := LoadTuningConfig(path)
		require.NoError(t, err)

		grid := cfg.ApplyGrid(calibration.DefaultOptions())
		assert.Equal(t, float32(2), grid.HoughRho)
		assert.InDelta(t, math.Pi/360, float64(grid.HoughTheta), 1e-7)
		assert.Equal(t, 25.0, grid.DefaultScale)
		assert.Equal(t, 50, grid.HoughThreshold)
	})

	t.Run("wrong extension", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "tuning.yaml", `{}`)
		_, err := LoadTuningConfig(path)
		assert.ErrorContains(t, err, ".json extension")
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := LoadTuningConfig(filepath.Join(t.TempDir(), "none.json"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("too large", func(t *testing.T) {
		t.Parallel()
		body := `{"label": "` + strings.Repeat("x", 1024*1024) + `"}`
		path := writeConfig(t, "big.json", body)
		_, err := LoadTuningConfig(path)
		assert.ErrorContains(t, err, "too large")
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "bad.json", `{"max_attempts": "many"}`)
		_, err := LoadTuningConfig(path)
		assert.ErrorContains(t, err, "parse")
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"even block size":   `{"block_size": 10}`,
		"zero hough rho":    `{"hough_rho": 0}`,
		"hough theta":       `{"hough_theta_deg": 180}`,
		"negative scale":    `{"default_scale": -1}`,
		"even blur":         `{"blur_size": 4}`,
		"zero approx":       `{"approx_fraction": 0}`,
		"crossed angles":    `{"horizontal_max_angle": 80, "vertical_min_angle": 10}`,
		"mutation rate":     `{"mutation_rate": 2}`,
		"bad poll interval": `{"poll_interval": "soon"}`,
		"bad seed mode":     `{"seed_mode": "random"}`,
		"elite too large":   `{"elite_size": 60}`,
		"zero population":   `{"population_size": 0}`,
	}
	for name, body := range cases {
		body := body
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := LoadTuningConfig(writeConfig(t, "c.json", body))
			assert.ErrorContains(t, err, "invalid configuration")
		})
	}

	assert.NoError(t, EmptyTuningConfig().Validate())
}

func TestGetPollIntervalFallback(t *testing.T) {
	t.Parallel()

	bad := "-5ms"
	cfg := &TuningConfig{PollInterval: &bad}
	assert.Equal(t, pipeline.DefaultPollInterval, cfg.GetPollInterval())
}
