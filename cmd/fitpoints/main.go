// Command fitpoints fits the cubic model to a point set JSON file, the same
// way graph-decoder fits points extracted from an image.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"graph-decoder/internal/config"
	"graph-decoder/internal/critical"
	"graph-decoder/internal/fit"
	"graph-decoder/internal/pipeline"
	"graph-decoder/internal/pointset"
	"graph-decoder/pkg/geometry"
)

func main() {
	pointsPath := flag.String("points", "", "Path to point set JSON")
	configPath := flag.String("config", "", "Tuning config JSON (optional)")
	seedFlag := flag.String("seed", "", "Initial seeds: none, heuristic, lsq or all")
	simplify := flag.Float64("simplify", 0, "Douglas-Peucker tolerance in units (0 = keep every point)")
	stored := flag.Bool("stored-critical", false, "Use the critical points stored in the file instead of detecting them")
	randSeed := flag.Int64("rand", 0, "Random seed (0 = time based)")
	flag.Parse()

	if *pointsPath == "" {
		fmt.Println("Usage: fitpoints -points <file.json> [-simplify 0.01] [-seed all] [-stored-critical]")
		os.Exit(1)
	}

	pipeline.SetLogger(nil)

	tuning := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		if tuning, err = config.LoadTuningConfig(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
	}

	set, err := pointset.Load(*pointsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load points: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %q (%s): %d points over [%g, %g]\n",
		set.Label, set.FunctionType, len(set.Samples), set.XRange[0], set.XRange[1])

	points := set.Points()
	if *simplify > 0 {
		points = geometry.Simplify(points, *simplify)
		fmt.Printf("Simplified to %d points (path length %.3f)\n", len(points), geometry.PathLength(points))
	}

	var cps []critical.Point
	if *stored {
		if cps, err = set.Critical(); err != nil {
			fmt.Fprintf(os.Stderr, "Bad critical points: %v\n", err)
			os.Exit(1)
		}
	} else {
		cps = critical.Find(points)
	}
	fmt.Printf("Critical points: %d\n", len(cps))
	for _, d := range pointset.Describe(cps) {
		fmt.Printf("  %s\n", d)
	}

	cfg := tuning.ApplyFit(fit.DefaultConfig())
	if *randSeed != 0 {
		cfg.RandSeed = *randSeed
	}

	seed := tuning.GetSeedMode()
	if *seedFlag != "" {
		if seed, err = pipeline.ParseSeedMode(*seedFlag); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}

	x, y := geometry.SplitXY(points)
	run := pipeline.Start(context.Background(), pipeline.Job{
		X: x, Y: y, Critical: cps, Config: cfg, Seed: seed,
	})

	total := cfg.TotalGenerations()
	_ = pipeline.Watch(context.Background(), run.Queue, tuning.GetPollInterval(), func(s fit.Snapshot) {
		fmt.Printf("\r[%5.1f%%] error %.6g", s.Progress(total), s.Error)
	})
	fmt.Println()

	res, err := run.Wait()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Optimization failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Result: %s after %d generations, error %.6g\n", res.State, res.Generations, res.Error)
	fmt.Printf("%s\n", res.Params)
}
