// Package main provides the graph-decoder command, which reconstructs a
// cubic function from a graph image.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"graph-decoder/internal/config"
	"graph-decoder/internal/fit"
	"graph-decoder/internal/ocr"
	"graph-decoder/internal/pipeline"
	"graph-decoder/internal/pointset"
	"graph-decoder/internal/raster"
	"graph-decoder/internal/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	imagePath := flag.String("image", "", "Path to graph image (PNG, JPEG, GIF, TIFF or BMP)")
	configPath := flag.String("config", "", "Tuning config JSON (optional)")
	seedFlag := flag.String("seed", "", "Initial seeds: none, heuristic, lsq or all (overrides config)")
	maxAttempts := flag.Int("max-attempts", 0, "Override optimizer outer iterations")
	ticks := flag.Bool("ticks", false, "Read axis tick labels with OCR to set the scale")
	outPath := flag.String("out", "", "Write decoded points as a point set JSON file")
	timeout := flag.Duration("timeout", 0, "Stop the fit after this long (0 = no limit)")
	debug := flag.Bool("debug", false, "Log detection details")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return 0
	}

	if *imagePath == "" && flag.NArg() > 0 {
		*imagePath = flag.Arg(0)
	}
	if *imagePath == "" {
		fmt.Println("Usage: graph-decoder -image <path> [-config tuning.json] [-seed all] [-ticks] [-out points.json]")
		return 1
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if !*debug {
		pipeline.SetLogger(nil)
	}

	tuning := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		tuning, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			return 1
		}
	}

	opts := tuning.ApplyAnalysis(pipeline.DefaultOptions())
	opts.Grid.Debug = *debug
	opts.Curve.Debug = *debug

	cfg := tuning.ApplyFit(fit.DefaultConfig())
	if *maxAttempts > 0 {
		cfg.MaxAttempts = *maxAttempts
	}

	seed := tuning.GetSeedMode()
	if *seedFlag != "" {
		var err error
		if seed, err = pipeline.ParseSeedMode(*seedFlag); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
	}

	img, format, err := raster.Load(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		return 1
	}
	bounds := img.Bounds()
	fmt.Printf("Loaded %s image: %dx%d pixels\n", format, bounds.Dx(), bounds.Dy())

	if *ticks {
		engine, err := ocr.NewEngine()
		if err != nil {
			fmt.Fprintf(os.Stderr, "OCR unavailable: %v\n", err)
			return 1
		}
		defer engine.Close()
		tickOpts := ocr.DefaultTickOptions()
		tickOpts.Debug = *debug
		opts.Ticks = ocr.NewTickReader(engine, tickOpts)
	}

	analysis := pipeline.AnalyzeImage(img, opts)
	fmt.Printf("Status: %s\n", analysis.Status)
	if cal := analysis.Calibration; cal != nil {
		fmt.Printf("Origin: (%.1f, %.1f) px, scale %.2f x %.2f px/unit\n",
			cal.Origin.X, cal.Origin.Y, cal.ScaleX, cal.ScaleY)
	}
	fmt.Printf("Points: %d\n", len(analysis.Points))
	for _, cp := range analysis.Critical {
		fmt.Printf("  %s\n", cp)
	}

	if *outPath != "" && len(analysis.Points) > 0 {
		set := pointset.FromPoints("decoded", *imagePath, analysis.Points, analysis.Critical)
		if err := set.Save(*outPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save points: %v\n", err)
			return 1
		}
		fmt.Printf("Points written to %s\n", *outPath)
	}

	job, err := analysis.Job(cfg, seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot fit: %v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	return fitAndReport(ctx, job, tuning.GetPollInterval())
}

// fitAndReport runs job in the background, prints progress until the
// worker finishes and returns the process exit code.
func fitAndReport(ctx context.Context, job pipeline.Job, interval time.Duration) int {
	r := pipeline.Start(ctx, job)
	total := job.Config.TotalGenerations()

	err := pipeline.Watch(context.Background(), r.Queue, interval, func(s fit.Snapshot) {
		fmt.Printf("\r[%5.1f%%] generation %d error %.6g", s.Progress(total), s.Generation, s.Error)
	})
	fmt.Println()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Watch failed: %v\n", err)
	}

	res, err := r.Wait()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Optimization failed: %v\n", err)
		return 1
	}

	fmt.Printf("Result: %s after %d generations\n", res.State, res.Generations)
	fmt.Printf("Error: %.6g\n", res.Error)
	fmt.Printf("%s\n", res.Params)
	return 0
}
