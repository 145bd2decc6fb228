// Package batch plans and runs many body generations in parallel, writing
// each body into its own numbered folder.
package batch

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pthm-cable/planetforge/body"
	"github.com/pthm-cable/planetforge/config"
	"github.com/pthm-cable/planetforge/stamp"
)

// Counts is the number of bodies to generate per kind.
type Counts map[body.Kind]int

// Total returns the number of requested bodies.
func (c Counts) Total() int {
	var n int
	for _, v := range c {
		n += v
	}
	return n
}

// Job is one planned body: its folder, request and the random inputs the
// request was derived from.
type Job struct {
	ID      string
	Dir     string
	Request body.Request
	Inputs  map[string]float64
}

// Planner turns counts into jobs with random per-kind parameters.
type Planner struct {
	cfg     *config.Config
	baseDir string
	rng     *rand.Rand
	width   int
	height  int
	start   int // First folder number; 0 continues after the highest existing
}

// NewPlanner creates a planner drawing parameters from seed. width and
// height of 0 use the configured resolution.
func NewPlanner(cfg *config.Config, baseDir string, seed int64, width, height, start int) *Planner {
	return &Planner{
		cfg:     cfg,
		baseDir: baseDir,
		rng:     stamp.NewRand(seed),
		width:   width,
		height:  height,
		start:   start,
	}
}

// Plan creates jobs in body.Kinds order. Folder numbers for each prefix
// continue after the highest existing <prefix>_<n> folder.
func (p *Planner) Plan(counts Counts) ([]Job, error) {
	var jobs []Job
	for _, kind := range body.Kinds {
		n := counts[kind]
		if n <= 0 {
			continue
		}
		prefix := p.prefix(kind)
		next := p.start
		if next <= 0 {
			var err error
			next, err = NextNumber(p.baseDir, prefix)
			if err != nil {
				return nil, err
			}
		}
		for i := 0; i < n; i++ {
			id := fmt.Sprintf("%s_%d", prefix, next+i)
			req, inputs := p.randomRequest(kind)
			jobs = append(jobs, Job{
				ID:      id,
				Dir:     filepath.Join(p.baseDir, id),
				Request: req,
				Inputs:  inputs,
			})
		}
	}
	return jobs, nil
}

func (p *Planner) prefix(kind body.Kind) string {
	if prefix, ok := p.cfg.Batch.Prefixes[string(kind)]; ok && prefix != "" {
		return prefix
	}
	return string(kind)
}

// randomRequest draws the per-kind parameters. Every kind gets a seed in
// [1, MaxSeed].
func (p *Planner) randomRequest(kind body.Kind) (body.Request, map[string]float64) {
	bc := p.cfg.Batch
	maxSeed := max(bc.MaxSeed, 1)
	req := body.Request{
		Kind:   kind,
		Seed:   1 + p.rng.Int64N(maxSeed),
		Width:  p.width,
		Height: p.height,
	}
	inputs := make(map[string]float64)

	switch kind {
	case body.GasGiant:
		names := p.cfg.Derived.GasPresetNames
		if len(names) > 0 {
			req.Preset = names[p.rng.IntN(len(names))]
		}
	case body.Star:
		temp := bc.StarTemperature.Uniform(p.rng)
		inputs["temperature"] = temp
		req.Preset = p.cfg.StarPresetFor(temp)
	case body.Terrestrial:
		frac := bc.OceanFraction.Uniform(p.rng)
		inputs["ocean_fraction"] = frac
		req.Overrides.OceanFraction = &frac
	case body.Asteroid:
		density := bc.AsteroidDensity.Uniform(p.rng)
		inputs["density"] = density
		req.Preset = p.cfg.Asteroids.DefaultPreset
		// Density 0.5 keeps the preset crater count.
		if preset, ok := p.cfg.Asteroids.Presets[req.Preset]; ok {
			count := int(float64(preset.CraterCount) * density * 2)
			req.Overrides.CraterCount = &count
		}
	case body.Ring:
		density := bc.RingDensity.Uniform(p.rng)
		inputs["ring_density"] = density
		req.Overrides.Density = &density
	}
	return req, inputs
}

// NextNumber returns one more than the highest n among directories named
// <prefix>_<n> in baseDir, or 1 when there are none. A missing baseDir
// counts as empty.
func NextNumber(baseDir, prefix string) (int, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 1, nil
		}
		return 0, fmt.Errorf("scanning %s: %w", baseDir, err)
	}
	highest := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		suffix, ok := strings.CutPrefix(e.Name(), prefix+"_")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil || n < 0 {
			continue
		}
		highest = max(highest, n)
	}
	return highest + 1, nil
}
