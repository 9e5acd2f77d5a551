package fit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"graph-decoder/internal/critical"
)

var (
	// ErrInvalidInput is returned when the samples are empty or the X and
	// Y slices differ in length.
	ErrInvalidInput = errors.New("invalid optimizer input")

	// ErrInvalidConfig is returned for hyperparameters that cannot drive a search.
	ErrInvalidConfig = errors.New("invalid optimizer config")
)

// State is the terminal state of an optimization run.
type State int

const (
	Converged State = iota // Best error fell below the threshold
	Exhausted              // MaxAttempts outer iterations ran
	Stopped                // The context was cancelled
)

func (s State) String() string {
	switch s {
	case Converged:
		return "converged"
	case Exhausted:
		return "exhausted"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Snapshot is a progress report published after each outer iteration.
type Snapshot struct {
	Params     Candidate
	Error      float64
	Generation int
}

// Progress returns the completed share of total generations as a
// percentage in [0, 100].
func (s Snapshot) Progress(total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Min(100, math.Max(0, float64(s.Generation)/float64(total)*100))
}

// ProgressSink receives snapshots from a running optimizer.
// Publish is called from the optimizer goroutine and must not block for long.
type ProgressSink interface {
	Publish(Snapshot)
}

// SinkFunc adapts a function to a ProgressSink.
type SinkFunc func(Snapshot)

// Publish calls f(s).
func (f SinkFunc) Publish(s Snapshot) { f(s) }

// Result is the outcome of an optimization run. Params is always finite.
type Result struct {
	Params      Candidate
	Error       float64
	Generations int // Inner iterations executed
	State       State
}

// Optimizer fits a Candidate to samples by evolutionary search with
// elitism, tournament selection and adaptive Gaussian mutation.
type Optimizer struct {
	cfg Config
}

// NewOptimizer creates an optimizer with the given configuration.
func NewOptimizer(cfg Config) *Optimizer {
	return &Optimizer{cfg: cfg}
}

// Optimize searches for the candidate with the lowest Score on (x, y, cps).
// ctx is checked before every outer iteration; once it is done the run ends
// with State Stopped and no further snapshots. sink may be nil.
func (o *Optimizer) Optimize(ctx context.Context, x, y []float64, cps []critical.Point, sink ProgressSink) (Result, error) {
	if len(x) == 0 || len(y) == 0 {
		return Result{}, fmt.Errorf("no samples: %w", ErrInvalidInput)
	}
	if len(x) != len(y) {
		return Result{}, fmt.Errorf("%d x values but %d y values: %w", len(x), len(y), ErrInvalidInput)
	}
	if err := o.cfg.Validate(); err != nil {
		return Result{}, err
	}

	cfg := o.cfg
	seed := cfg.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	population := initialPopulation(rng, cfg)

	s := &searchState{
		bestErr:      math.Inf(1),
		learningRate: cfg.LearningRate,
	}

	result := Result{State: Exhausted}
	for outer := 0; outer < cfg.MaxAttempts; outer++ {
		if ctx.Err() != nil {
			result.State = Stopped
			break
		}

		converged := false
		for inner := 0; inner < cfg.BatchSize; inner++ {
			scores := scorePopulation(population, x, y, cps, cfg.Weights)
			s.observe(population, scores)
			population = nextGeneration(rng, population, scores, s.stagnation, s.learningRate, cfg)
			result.Generations++

			if s.stagnation > cfg.StagnationLimit {
				s.learningRate *= cfg.LearningRateDecay
				s.stagnation = 0
			}
			if s.bestErr < cfg.ConvergenceThreshold {
				converged = true
				break
			}
		}

		if sink != nil {
			sink.Publish(Snapshot{Params: s.best, Error: s.bestErr, Generation: outer * cfg.BatchSize})
		}

		if converged {
			result.State = Converged
			break
		}
	}

	result.Params = s.best
	result.Error = s.bestErr
	return result, nil
}

// searchState tracks the best-ever candidate across generations.
type searchState struct {
	best         Candidate
	bestErr      float64
	stagnation   int
	learningRate float64
}

// observe updates the best-ever candidate from a scored population.
// Only a finite score strictly below the current best replaces it.
func (s *searchState) observe(population []Candidate, scores []float64) {
	idx := argMin(scores)
	if idx >= 0 && scores[idx] < s.bestErr && population[idx].Finite() {
		s.best = population[idx]
		s.bestErr = scores[idx]
		s.stagnation = 0
		return
	}
	s.stagnation++
}

// initialPopulation places the finite seeds first and fills the rest with
// candidates drawn uniformly from [-InitRange, InitRange].
func initialPopulation(rng *rand.Rand, cfg Config) []Candidate {
	population := make([]Candidate, 0, cfg.PopulationSize)
	for _, seed := range cfg.Seeds {
		if len(population) == cfg.PopulationSize {
			break
		}
		if seed.Finite() {
			population = append(population, seed)
		}
	}
	for len(population) < cfg.PopulationSize {
		var c Candidate
		for i := range c {
			c[i] = (rng.Float64()*2 - 1) * cfg.InitRange
		}
		population = append(population, c)
	}
	return population
}

func scorePopulation(population []Candidate, x, y []float64, cps []critical.Point, w Weights) []float64 {
	scores := make([]float64, len(population))
	for i, c := range population {
		if !c.Finite() {
			scores[i] = math.Inf(1)
			continue
		}
		scores[i] = Score(c, x, y, cps, w)
	}
	return scores
}

// nextGeneration builds a new population from a scored one. The EliteSize
// lowest scores are copied unchanged; every other slot is a tournament
// winner, perturbed with probability MutationRate by Gaussian noise with
// standard deviation learningRate·(1 + stagnation/StagnationScale).
// The input population is not modified.
func nextGeneration(rng *rand.Rand, population []Candidate, scores []float64, stagnation int, learningRate float64, cfg Config) []Candidate {
	n := len(population)
	next := make([]Candidate, 0, n)

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return scores[order[i]] < scores[order[j]] })

	elites := cfg.EliteSize
	if elites > n {
		elites = n
	}
	for _, idx := range order[:elites] {
		next = append(next, population[idx])
	}

	sd := learningRate * (1 + float64(stagnation)/cfg.StagnationScale)
	for len(next) < n {
		child := population[tournament(rng, scores, cfg.TournamentSize)]
		if rng.Float64() < cfg.MutationRate {
			for i := range child {
				child[i] += rng.NormFloat64() * sd
			}
		}
		next = append(next, child)
	}

	return next
}

// tournament samples size indices uniformly with replacement and returns
// the one with the lowest score. Ties keep the first drawn.
func tournament(rng *rand.Rand, scores []float64, size int) int {
	winner := rng.Intn(len(scores))
	for k := 1; k < size; k++ {
		idx := rng.Intn(len(scores))
		if scores[idx] < scores[winner] {
			winner = idx
		}
	}
	return winner
}

// argMin returns the index of the smallest score, or -1 for an empty slice.
// NaN scores never win.
func argMin(scores []float64) int {
	best := -1
	for i, s := range scores {
		if math.IsNaN(s) {
			continue
		}
		if best < 0 || s < scores[best] {
			best = i
		}
	}
	return best
}
