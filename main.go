package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pthm-cable/planetforge/batch"
	"github.com/pthm-cable/planetforge/body"
	"github.com/pthm-cable/planetforge/config"
	"github.com/pthm-cable/planetforge/export"
	"github.com/pthm-cable/planetforge/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	numGas := flag.Int("gas", 0, "Number of gas giants to generate")
	numStar := flag.Int("star", 0, "Number of stars to generate")
	numTerrestrial := flag.Int("terrestrial", 0, "Number of terrestrial planets to generate")
	numAsteroid := flag.Int("asteroid", 0, "Number of asteroids to generate")
	numRinged := flag.Int("ringed", 0, "Number of ring systems to generate")
	baseDir := flag.String("base-dir", "", "Directory for body folders (empty = use config)")
	workers := flag.Int("workers", -1, "Parallel workers (0 = GOMAXPROCS, -1 = use config)")
	resolution := flag.String("resolution", "", "Map resolution as WIDTHxHEIGHT (empty = use config)")
	format := flag.String("format", "", "Image format: png, jpeg, bmp or tiff (empty = use config)")
	seed := flag.Int64("seed", 0, "Batch RNG seed (0 = time-based)")
	start := flag.Int("start", 0, "First folder number (0 = continue after existing folders)")
	skipExisting := flag.Bool("skip-existing", false, "Skip folders whose manifest matches the planned body")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *baseDir != "" {
		cfg.Batch.BaseDir = *baseDir
	}
	if *workers >= 0 {
		cfg.Batch.Workers = *workers
	}
	if *skipExisting {
		cfg.Batch.SkipExisting = true
	}
	if *format != "" {
		cfg.Output.Format = *format
	}
	var width, height int
	if *resolution != "" {
		var err error
		width, height, err = parseResolution(*resolution)
		if err != nil {
			slog.Error("invalid resolution", "error", err)
			os.Exit(1)
		}
	}

	counts := batch.Counts{
		body.GasGiant:    *numGas,
		body.Star:        *numStar,
		body.Terrestrial: *numTerrestrial,
		body.Asteroid:    *numAsteroid,
		body.Ring:        *numRinged,
	}
	if counts.Total() == 0 {
		fmt.Fprintln(os.Stderr, "nothing to generate: pass at least one of -gas, -star, -terrestrial, -asteroid, -ringed")
		flag.Usage()
		os.Exit(2)
	}

	opts, err := export.OptionsFrom(cfg.Output)
	if err != nil {
		slog.Error("invalid output options", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	if err := batch.Prepare(cfg.Batch.BaseDir); err != nil {
		slog.Error("failed to prepare base directory", "error", err)
		os.Exit(1)
	}
	jobs, err := batch.NewPlanner(cfg, cfg.Batch.BaseDir, rngSeed, width, height, *start).Plan(counts)
	if err != nil {
		slog.Error("failed to plan batch", "error", err)
		os.Exit(1)
	}

	out, err := telemetry.NewOutputManager(cfg.Batch.BaseDir, cfg.Batch.Report, cfg.Batch.PerfReport)
	if err != nil {
		slog.Error("failed to create report files", "error", err)
		os.Exit(1)
	}
	if err := out.WriteConfig(cfg); err != nil {
		slog.Warn("failed to write config snapshot", "error", err)
	}

	runner := batch.NewRunner(cfg, opts, out)
	slog.Info("starting batch",
		"seed", rngSeed,
		"jobs", len(jobs),
		"workers", runner.Workers(),
		"base_dir", cfg.Batch.BaseDir,
	)

	outcomes := runner.Run(jobs)
	if err := out.Close(); err != nil {
		slog.Error("failed to close report files", "error", err)
	}

	for _, o := range outcomes {
		if o.Status == batch.StatusFailed {
			slog.Error(o.Message(), "outcome", o)
			continue
		}
		slog.Info(o.Message(), "outcome", o)
	}

	summary := batch.Summarize(outcomes)
	slog.Info("batch finished", "summary", summary, "perf", runner.Perf())
	if summary.Failed > 0 {
		os.Exit(1)
	}
}

// parseResolution parses WIDTHxHEIGHT.
func parseResolution(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("expected WIDTHxHEIGHT, got %q", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return 0, 0, fmt.Errorf("width: %w", err)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return 0, 0, fmt.Errorf("height: %w", err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("resolution must be positive, got %dx%d", w, h)
	}
	return w, h, nil
}
