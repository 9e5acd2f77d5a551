// Package config loads optional tuning overrides for grid detection, curve
// extraction and the optimizer from JSON.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"graph-decoder/internal/fit"
	"graph-decoder/internal/pipeline"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig holds optional overrides for every numeric tunable.
// Nil fields keep the package defaults.
type TuningConfig struct {
	// Grid detection
	CannyLow           *float64 `json:"canny_low,omitempty"`
	CannyHigh          *float64 `json:"canny_high,omitempty"`
	HoughRho           *float64 `json:"hough_rho,omitempty"`       // pixels
	HoughThetaDegrees  *float64 `json:"hough_theta_deg,omitempty"` // converted to radians
	HoughThreshold     *int     `json:"hough_threshold,omitempty"`
	MinLineLength      *float64 `json:"min_line_length,omitempty"`
	MaxLineGap         *float64 `json:"max_line_gap,omitempty"`
	HorizontalMaxAngle *float64 `json:"horizontal_max_angle,omitempty"`
	VerticalMinAngle   *float64 `json:"vertical_min_angle,omitempty"`
	MinLineSeparation  *float64 `json:"min_line_separation,omitempty"`
	DefaultScale       *float64 `json:"default_scale,omitempty"` // pixels per unit without a grid

	// Curve extraction
	BlurSize          *int     `json:"blur_size,omitempty"`
	BlockSize         *int     `json:"block_size,omitempty"`
	ThresholdC        *float64 `json:"threshold_c,omitempty"`
	CleanupIterations *int     `json:"cleanup_iterations,omitempty"`
	ApproxFraction    *float64 `json:"approx_fraction,omitempty"`

	// Optimizer
	MaxAttempts          *int     `json:"max_attempts,omitempty"`
	PopulationSize       *int     `json:"population_size,omitempty"`
	MutationRate         *float64 `json:"mutation_rate,omitempty"`
	CrossoverRate        *float64 `json:"crossover_rate,omitempty"`
	EliteSize            *int     `json:"elite_size,omitempty"`
	BatchSize            *int     `json:"batch_size,omitempty"`
	TournamentSize       *int     `json:"tournament_size,omitempty"`
	LearningRate         *float64 `json:"learning_rate,omitempty"`
	LearningRateDecay    *float64 `json:"learning_rate_decay,omitempty"`
	StagnationLimit      *int     `json:"stagnation_limit,omitempty"`
	StagnationScale      *float64 `json:"stagnation_scale,omitempty"`
	ConvergenceThreshold *float64 `json:"convergence_threshold,omitempty"`
	InitRange            *float64 `json:"init_range,omitempty"`
	RegularizationWeight *float64 `json:"regularization_weight,omitempty"`
	SmoothnessWeight     *float64 `json:"smoothness_weight,omitempty"`
	CriticalWeight       *float64 `json:"critical_weight,omitempty"`
	RandSeed             *int64   `json:"rand_seed,omitempty"`

	// Pipeline
	PollInterval *string `json:"poll_interval,omitempty"` // duration string like "20ms"
	SeedMode     *string `json:"seed_mode,omitempty"`     // none, heuristic, lsq or all
}

// EmptyTuningConfig returns a TuningConfig with all fields unset.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file must have a .json extension and be at most 1MB.
// Omitted fields stay nil, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from
// DefaultConfigPath, searching the current directory and its parents.
// It panics if the file cannot be loaded and is meant for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks the values that are set.
func (c *TuningConfig) Validate() error {
	if c.BlockSize != nil && (*c.BlockSize < 3 || *c.BlockSize%2 == 0) {
		return fmt.Errorf("block_size must be odd and at least 3, got %d", *c.BlockSize)
	}
	if c.BlurSize != nil && *c.BlurSize > 1 && *c.BlurSize%2 == 0 {
		return fmt.Errorf("blur_size must be odd, got %d", *c.BlurSize)
	}
	if c.HoughRho != nil && *c.HoughRho <= 0 {
		return fmt.Errorf("hough_rho must be positive, got %f", *c.HoughRho)
	}
	if c.HoughThetaDegrees != nil && (*c.HoughThetaDegrees <= 0 || *c.HoughThetaDegrees > 90) {
		return fmt.Errorf("hough_theta_deg must be in (0, 90], got %f", *c.HoughThetaDegrees)
	}
	if c.DefaultScale != nil && *c.DefaultScale <= 0 {
		return fmt.Errorf("default_scale must be positive, got %f", *c.DefaultScale)
	}
	if c.ApproxFraction != nil && *c.ApproxFraction <= 0 {
		return fmt.Errorf("approx_fraction must be positive, got %f", *c.ApproxFraction)
	}
	if c.HorizontalMaxAngle != nil && c.VerticalMinAngle != nil && *c.HorizontalMaxAngle > *c.VerticalMinAngle {
		return fmt.Errorf("horizontal_max_angle %f exceeds vertical_min_angle %f", *c.HorizontalMaxAngle, *c.VerticalMinAngle)
	}
	if c.MutationRate != nil && (*c.MutationRate < 0 || *c.MutationRate > 1) {
		return fmt.Errorf("mutation_rate must be between 0 and 1, got %f", *c.MutationRate)
	}
	if c.PollInterval != nil && *c.PollInterval != "" {
		if _, err := time.ParseDuration(*c.PollInterval); err != nil {
			return fmt.Errorf("invalid poll_interval '%s': %w", *c.PollInterval, err)
		}
	}
	if c.SeedMode != nil {
		if _, err := pipeline.ParseSeedMode(*c.SeedMode); err != nil {
			return err
		}
	}
	return c.ApplyFit(fit.DefaultConfig()).Validate()
}
