package fit

import "fmt"

// Config holds the optimizer hyperparameters.
type Config struct {
	MaxAttempts    int     // Outer iterations; one snapshot each
	PopulationSize int     // Candidates per generation
	MutationRate   float64 // Probability a child is perturbed, in [0, 1]
	CrossoverRate  float64 // Reserved; reported but not used by the search
	EliteSize      int     // Best candidates copied unchanged
	BatchSize      int     // Inner iterations per outer iteration
	TournamentSize int     // Contestants per parent selection

	// Mutation step
	LearningRate      float64 // Initial Gaussian standard deviation
	LearningRateDecay float64 // Applied after StagnationLimit stagnant steps
	StagnationLimit   int
	StagnationScale   float64 // Stagnant steps that double the step size

	ConvergenceThreshold float64 // Stop once the best error is below this
	InitRange            float64 // Initial parameters drawn from [-InitRange, InitRange]

	Weights Weights

	// RandSeed seeds the random source. Zero seeds from the clock.
	RandSeed int64

	// Seeds are placed in the initial population ahead of the random
	// candidates. Non-finite seeds are ignored.
	Seeds []Candidate
}

// DefaultConfig returns the standard optimizer configuration.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:          1000,
		PopulationSize:       50,
		MutationRate:         0.1,
		CrossoverRate:        0.7,
		EliteSize:            2,
		BatchSize:            10,
		TournamentSize:       3,
		LearningRate:         0.01,
		LearningRateDecay:    0.95,
		StagnationLimit:      20,
		StagnationScale:      50,
		ConvergenceThreshold: 1e-6,
		InitRange:            5,
		Weights:              DefaultWeights(),
	}
}

// WithSeeds returns a copy of cfg with additional initial candidates.
func (c Config) WithSeeds(seeds ...Candidate) Config {
	c.Seeds = append(append([]Candidate(nil), c.Seeds...), seeds...)
	return c
}

// TotalGenerations returns the number of inner iterations in a full run.
func (c Config) TotalGenerations() int {
	return c.MaxAttempts * c.BatchSize
}

// Validate checks that the configuration can drive a search.
func (c Config) Validate() error {
	switch {
	case c.MaxAttempts < 1:
		return fmt.Errorf("max attempts %d < 1: %w", c.MaxAttempts, ErrInvalidConfig)
	case c.PopulationSize < 1:
		return fmt.Errorf("population size %d < 1: %w", c.PopulationSize, ErrInvalidConfig)
	case c.BatchSize < 1:
		return fmt.Errorf("batch size %d < 1: %w", c.BatchSize, ErrInvalidConfig)
	case c.TournamentSize < 1:
		return fmt.Errorf("tournament size %d < 1: %w", c.TournamentSize, ErrInvalidConfig)
	case c.EliteSize < 0 || c.EliteSize > c.PopulationSize:
		return fmt.Errorf("elite size %d outside [0, %d]: %w", c.EliteSize, c.PopulationSize, ErrInvalidConfig)
	case c.MutationRate < 0 || c.MutationRate > 1:
		return fmt.Errorf("mutation rate %.3f outside [0, 1]: %w", c.MutationRate, ErrInvalidConfig)
	case c.StagnationScale <= 0:
		return fmt.Errorf("stagnation scale %.3f <= 0: %w", c.StagnationScale, ErrInvalidConfig)
	}
	return nil
}
