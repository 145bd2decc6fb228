// Command body generates a single celestial body and writes its maps into
// one folder.
package main

import (
	"flag"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/planetforge/body"
	"github.com/pthm-cable/planetforge/config"
	"github.com/pthm-cable/planetforge/export"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	requestPath := flag.String("request", "", "Path to a request YAML; flags below override it")
	kind := flag.String("kind", "", "Body kind: terrestrial, gas, star, asteroid or ring")
	preset := flag.String("preset", "", "Preset name (empty = kind default)")
	seed := flag.Int64("seed", 0, "Generation seed")
	width := flag.Int("width", 0, "Map width (0 = use config)")
	height := flag.Int("height", 0, "Map height (0 = use config)")
	frames := flag.Int("frames", 0, "Animation frames for stars and rings (0 = use config)")
	speed := flag.Float64("speed", -1, "Animation time span (-1 = use config)")
	loop := flag.Bool("loop", false, "Make the animation loop seamlessly")
	outDir := flag.String("out", "body", "Output directory")
	format := flag.String("format", "", "Image format: png, jpeg, bmp or tiff (empty = use config)")
	dumpParams := flag.Bool("dump-params", false, "Print the resolved parameters as YAML and exit")

	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *format != "" {
		cfg.Output.Format = *format
	}

	var req body.Request
	if *requestPath != "" {
		data, err := os.ReadFile(*requestPath)
		if err != nil {
			slog.Error("failed to read request", "error", err)
			os.Exit(1)
		}
		if err := yaml.Unmarshal(data, &req); err != nil {
			slog.Error("failed to parse request", "error", err)
			os.Exit(1)
		}
	}

	if *kind != "" {
		k, err := body.ParseKind(*kind)
		if err != nil {
			slog.Error("invalid kind", "error", err)
			os.Exit(1)
		}
		req.Kind = k
	}
	if *preset != "" {
		req.Preset = *preset
	}
	if *seed != 0 {
		req.Seed = *seed
	}
	if *width > 0 {
		req.Width = *width
	}
	if *height > 0 {
		req.Height = *height
	}
	if *frames > 0 {
		req.Overrides.Frames = frames
	}
	if *speed >= 0 {
		req.Overrides.Speed = speed
	}
	if *loop {
		req.Overrides.Loop = loop
	}

	if *dumpParams {
		p, err := body.Resolve(cfg, req)
		if err != nil {
			slog.Error("failed to resolve request", "error", err)
			os.Exit(1)
		}
		if err := yaml.NewEncoder(os.Stdout).Encode(p); err != nil {
			slog.Error("failed to encode params", "error", err)
			os.Exit(1)
		}
		return
	}

	opts, err := export.OptionsFrom(cfg.Output)
	if err != nil {
		slog.Error("invalid output options", "error", err)
		os.Exit(1)
	}

	res, err := body.Generate(cfg, req)
	if err != nil {
		slog.Error("failed to generate body", "kind", req.Kind, "error", err)
		os.Exit(1)
	}
	paths, err := export.WriteResult(*outDir, string(res.Params.Kind), res, opts)
	if err != nil {
		slog.Error("failed to write body", "dir", *outDir, "error", err)
		os.Exit(1)
	}

	slog.Info("body generated",
		"kind", res.Params.Kind,
		"preset", res.Params.Preset,
		"seed", res.Params.Seed,
		"files", len(paths),
		"perf", res.Perf,
	)
}
