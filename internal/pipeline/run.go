package pipeline

import (
	"context"
	"fmt"

	"graph-decoder/internal/critical"
	"graph-decoder/internal/fit"
)

// SeedMode selects which derived candidates are added to the initial
// population.
type SeedMode int

const (
	SeedNone         SeedMode = 0
	SeedHeuristic    SeedMode = 1 // fit.EstimateSeed
	SeedLeastSquares SeedMode = 2 // fit.LeastSquaresSeed
	SeedAll                   = SeedHeuristic | SeedLeastSquares
)

// ParseSeedMode parses none, heuristic, lsq or all.
func ParseSeedMode(s string) (SeedMode, error) {
	switch s {
	case "", "none":
		return SeedNone, nil
	case "heuristic":
		return SeedHeuristic, nil
	case "lsq":
		return SeedLeastSquares, nil
	case "all":
		return SeedAll, nil
	}
	return SeedNone, fmt.Errorf("unknown seed mode %q", s)
}

// Job is the input to one background optimization. The slices are handed
// over to the worker and must not be modified while it runs.
type Job struct {
	X, Y     []float64
	Critical []critical.Point
	Config   fit.Config
	Seed     SeedMode

	// OnSnapshot, if set, is called from the worker goroutine for every
	// snapshot in addition to queueing it.
	OnSnapshot func(fit.Snapshot)
}

// Run is a background optimization started by Start.
type Run struct {
	Queue *SnapshotQueue

	cancel context.CancelFunc
	done   chan struct{}
	result fit.Result
	err    error
}

// Start launches the optimizer for job in a new goroutine. Snapshots are
// published to the run's Queue, which is always closed when the worker
// returns, is stopped or fails.
func Start(ctx context.Context, job Job) *Run {
	ctx, cancel := context.WithCancel(ctx)
	r := &Run{
		Queue:  NewSnapshotQueue(),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go r.work(ctx, job)
	return r
}

func (r *Run) work(ctx context.Context, job Job) {
	defer close(r.done)
	defer r.cancel()
	defer r.Queue.Close()
	defer func() {
		if p := recover(); p != nil {
			r.err = fmt.Errorf("optimizer panic: %v", p)
			Logf("Pipeline: %v", r.err)
		}
	}()

	cfg := job.Config
	cfg.Seeds = append(append([]fit.Candidate(nil), cfg.Seeds...), seeds(job)...)

	var sink fit.ProgressSink = r.Queue
	if job.OnSnapshot != nil {
		sink = fit.SinkFunc(func(s fit.Snapshot) {
			r.Queue.Publish(s)
			job.OnSnapshot(s)
		})
	}

	Logf("Pipeline: optimizing %d points, %d critical points, %d seeds",
		len(job.X), len(job.Critical), len(cfg.Seeds))

	r.result, r.err = fit.NewOptimizer(cfg).Optimize(ctx, job.X, job.Y, job.Critical, sink)
	if r.err == nil {
		Logf("Pipeline: %s after %d generations, error=%.6g %s",
			r.result.State, r.result.Generations, r.result.Error, r.result.Params)
	}
}

// seeds derives the initial candidates requested by job.Seed. Seeds that
// cannot be computed are skipped.
func seeds(job Job) []fit.Candidate {
	var out []fit.Candidate
	if job.Seed&SeedHeuristic != 0 {
		if c, ok := fit.EstimateSeed(job.X, job.Y, job.Critical); ok {
			out = append(out, c)
		} else {
			Logf("Pipeline: heuristic seed is not finite, discarded")
		}
	}
	if job.Seed&SeedLeastSquares != 0 {
		if c, err := fit.LeastSquaresSeed(job.X, job.Y); err == nil {
			out = append(out, c)
		} else {
			Logf("Pipeline: least squares seed skipped: %v", err)
		}
	}
	return out
}

// Stop asks the worker to finish after its current batch.
func (r *Run) Stop() {
	r.cancel()
}

// Done is closed when the worker has returned.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the worker returns and reports its result.
func (r *Run) Wait() (fit.Result, error) {
	<-r.done
	return r.result, r.err
}
