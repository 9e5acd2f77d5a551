package config

import (
	"math"
	"time"

	"graph-decoder/internal/calibration"
	"graph-decoder/internal/curve"
	"graph-decoder/internal/fit"
	"graph-decoder/internal/pipeline"
)

// ApplyGrid overlays the grid detection fields that are set onto opts.
func (c *TuningConfig) ApplyGrid(opts calibration.Options) calibration.Options {
	if c.CannyLow != nil {
		opts.CannyLow = float32(*c.CannyLow)
	}
	if c.CannyHigh != nil {
		opts.CannyHigh = float32(*c.CannyHigh)
	}
	if c.HoughRho != nil {
		opts.HoughRho = float32(*c.HoughRho)
	}
	if c.HoughThetaDegrees != nil {
		opts.HoughTheta = float32(*c.HoughThetaDegrees) * (math.Pi / 180)
	}
	if c.HoughThreshold != nil {
		opts.HoughThreshold = *c.HoughThreshold
	}
	if c.MinLineLength != nil {
		opts.MinLineLength = float32(*c.MinLineLength)
	}
	if c.MaxLineGap != nil {
		opts.MaxLineGap = float32(*c.MaxLineGap)
	}
	if c.HorizontalMaxAngle != nil {
		opts.HorizontalMaxAngle = *c.HorizontalMaxAngle
	}
	if c.VerticalMinAngle != nil {
		opts.VerticalMinAngle = *c.VerticalMinAngle
	}
	setFloat(&opts.MinLineSeparation, c.MinLineSeparation)
	setFloat(&opts.DefaultScale, c.DefaultScale)
	return opts
}

// ApplyCurve overlays the curve extraction fields that are set onto opts.
func (c *TuningConfig) ApplyCurve(opts curve.Options) curve.Options {
	if c.BlurSize != nil {
		opts.BlurSize = *c.BlurSize
	}
	if c.BlockSize != nil {
		opts.BlockSize = *c.BlockSize
	}
	if c.ThresholdC != nil {
		opts.C = float32(*c.ThresholdC)
	}
	if c.CleanupIterations != nil {
		opts.CleanupIterations = *c.CleanupIterations
	}
	if c.ApproxFraction != nil {
		opts.ApproxFraction = *c.ApproxFraction
	}
	return opts
}

// ApplyFit overlays the optimizer fields that are set onto cfg.
func (c *TuningConfig) ApplyFit(cfg fit.Config) fit.Config {
	setInt(&cfg.MaxAttempts, c.MaxAttempts)
	setInt(&cfg.PopulationSize, c.PopulationSize)
	setInt(&cfg.EliteSize, c.EliteSize)
	setInt(&cfg.BatchSize, c.BatchSize)
	setInt(&cfg.TournamentSize, c.TournamentSize)
	setInt(&cfg.StagnationLimit, c.StagnationLimit)

	setFloat(&cfg.MutationRate, c.MutationRate)
	setFloat(&cfg.CrossoverRate, c.CrossoverRate)
	setFloat(&cfg.LearningRate, c.LearningRate)
	setFloat(&cfg.LearningRateDecay, c.LearningRateDecay)
	setFloat(&cfg.StagnationScale, c.StagnationScale)
	setFloat(&cfg.ConvergenceThreshold, c.ConvergenceThreshold)
	setFloat(&cfg.InitRange, c.InitRange)
	setFloat(&cfg.Weights.Regularization, c.RegularizationWeight)
	setFloat(&cfg.Weights.Smoothness, c.SmoothnessWeight)
	setFloat(&cfg.Weights.Critical, c.CriticalWeight)

	if c.RandSeed != nil {
		cfg.RandSeed = *c.RandSeed
	}
	return cfg
}

// ApplyAnalysis overlays grid and curve fields onto pipeline options.
func (c *TuningConfig) ApplyAnalysis(opts pipeline.Options) pipeline.Options {
	opts.Grid = c.ApplyGrid(opts.Grid)
	opts.Curve = c.ApplyCurve(opts.Curve)
	return opts
}

// GetPollInterval returns the snapshot poll interval, or
// pipeline.DefaultPollInterval when unset or invalid.
func (c *TuningConfig) GetPollInterval() time.Duration {
	if c.PollInterval == nil || *c.PollInterval == "" {
		return pipeline.DefaultPollInterval
	}
	d, err := time.ParseDuration(*c.PollInterval)
	if err != nil || d <= 0 {
		return pipeline.DefaultPollInterval
	}
	return d
}

// GetSeedMode returns the configured seed mode, or pipeline.SeedNone.
func (c *TuningConfig) GetSeedMode() pipeline.SeedMode {
	if c.SeedMode == nil {
		return pipeline.SeedNone
	}
	mode, err := pipeline.ParseSeedMode(*c.SeedMode)
	if err != nil {
		return pipeline.SeedNone
	}
	return mode
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
