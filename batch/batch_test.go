package batch

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/pthm-cable/planetforge/body"
	"github.com/pthm-cable/planetforge/config"
	"github.com/pthm-cable/planetforge/export"
	"github.com/pthm-cable/planetforge/telemetry"
)

func init() {
	config.MustInit("")
}

func mkdirs(t *testing.T, base string, names ...string) {
	t.Helper()
	for _, n := range names {
		if err := os.MkdirAll(filepath.Join(base, n), 0755); err != nil {
			t.Fatal(err)
		}
	}
}

func TestNextNumber(t *testing.T) {
	base := t.TempDir()
	mkdirs(t, base, "gas_1", "gas_7", "gas_x", "star_3", "gasgiant_20")
	if err := os.WriteFile(filepath.Join(base, "gas_9"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		prefix string
		want   int
	}{
		{"gas", 8},
		{"star", 4},
		{"planet", 1},
	}
	for _, tt := range tests {
		got, err := NextNumber(base, tt.prefix)
		if err != nil {
			t.Fatalf("NextNumber(%q): %v", tt.prefix, err)
		}
		if got != tt.want {
			t.Errorf("NextNumber(%q) = %d, want %d", tt.prefix, got, tt.want)
		}
	}

	if got, err := NextNumber(filepath.Join(base, "missing"), "gas"); err != nil || got != 1 {
		t.Errorf("missing base dir = %d, %v; want 1, nil", got, err)
	}
}

func TestPlanContinuesNumbering(t *testing.T) {
	base := t.TempDir()
	mkdirs(t, base, "gas_3")

	p := NewPlanner(config.Cfg(), base, 1, 32, 16, 0)
	jobs, err := p.Plan(Counts{body.GasGiant: 2, body.Star: 1, body.Terrestrial: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var ids []string
	for _, j := range jobs {
		ids = append(ids, j.ID)
	}
	want := []string{"gas_4", "gas_5", "star_1", "planet_1"}
	if !slices.Equal(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
	if jobs[0].Dir != filepath.Join(base, "gas_4") {
		t.Errorf("dir = %s", jobs[0].Dir)
	}
}

func TestPlanRandomParameters(t *testing.T) {
	cfg := config.Cfg()
	p := NewPlanner(cfg, t.TempDir(), 7, 0, 0, 1)
	jobs, err := p.Plan(Counts{
		body.GasGiant:    10,
		body.Star:        10,
		body.Terrestrial: 10,
		body.Asteroid:    10,
		body.Ring:        10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 50 {
		t.Fatalf("planned %d jobs, want 50", len(jobs))
	}

	stars := []string{"red_giant", "main_sequence", "white_dwarf", "blue_star"}
	deimos := cfg.Asteroids.Presets["deimos"].CraterCount
	for _, j := range jobs {
		req := j.Request
		if req.Seed < 1 || req.Seed > cfg.Batch.MaxSeed {
			t.Errorf("%s: seed %d out of range", j.ID, req.Seed)
		}
		switch req.Kind {
		case body.GasGiant:
			if !slices.Contains(cfg.Derived.GasPresetNames, req.Preset) {
				t.Errorf("%s: unknown gas preset %q", j.ID, req.Preset)
			}
		case body.Star:
			if !slices.Contains(stars, req.Preset) {
				t.Errorf("%s: unknown star preset %q", j.ID, req.Preset)
			}
			if want := cfg.StarPresetFor(j.Inputs["temperature"]); want != req.Preset {
				t.Errorf("%s: preset %q does not match temperature, want %q", j.ID, req.Preset, want)
			}
		case body.Terrestrial:
			frac := *req.Overrides.OceanFraction
			if frac < cfg.Batch.OceanFraction.Min || frac > cfg.Batch.OceanFraction.Max {
				t.Errorf("%s: ocean fraction %v out of range", j.ID, frac)
			}
		case body.Asteroid:
			n := *req.Overrides.CraterCount
			lo := int(float64(deimos) * cfg.Batch.AsteroidDensity.Min * 2)
			hi := int(float64(deimos) * cfg.Batch.AsteroidDensity.Max * 2)
			if n < lo || n > hi {
				t.Errorf("%s: crater count %d outside [%d, %d]", j.ID, n, lo, hi)
			}
		case body.Ring:
			d := *req.Overrides.Density
			if d < cfg.Batch.RingDensity.Min || d > cfg.Batch.RingDensity.Max {
				t.Errorf("%s: ring density %v out of range", j.ID, d)
			}
		}
	}

	// The same planner seed reproduces the plan.
	again, err := NewPlanner(cfg, t.TempDir(), 7, 0, 0, 1).Plan(Counts{body.GasGiant: 10})
	if err != nil {
		t.Fatal(err)
	}
	for i := range again {
		if again[i].Request.Seed != jobs[i].Request.Seed || again[i].Request.Preset != jobs[i].Request.Preset {
			t.Errorf("job %d differs between identical plans", i)
		}
	}
}

func TestPoolKeepsOrderAndRecovers(t *testing.T) {
	var tasks []Task
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		tasks = append(tasks, Task{ID: id, Run: func() Outcome {
			if id == "c" {
				panic("boom")
			}
			return Outcome{Status: StatusOK}
		}})
	}

	outcomes := NewPool(3).Run(tasks)
	if len(outcomes) != 5 {
		t.Fatalf("got %d outcomes, want 5", len(outcomes))
	}
	for i, o := range outcomes {
		if o.ID != tasks[i].ID {
			t.Errorf("outcome %d has id %q, want %q", i, o.ID, tasks[i].ID)
		}
	}
	byID := ByID(outcomes)
	if byID["c"].Status != StatusFailed || !strings.Contains(byID["c"].Err.Error(), "boom") {
		t.Errorf("panic not recovered as failure: %+v", byID["c"])
	}
	if s := Summarize(outcomes); s.OK != 4 || s.Failed != 1 {
		t.Errorf("summary = %+v, want 4 ok and 1 failed", s)
	}
	if NewPool(0).Workers() < 1 {
		t.Error("default pool has no workers")
	}
}

func TestOutcomeMessage(t *testing.T) {
	tests := []struct {
		o    Outcome
		want string
	}{
		{Outcome{ID: "gas_1", Status: StatusOK}, "generated gas_1"},
		{Outcome{ID: "gas_2", Status: StatusSkipped}, "skipped existing gas_2"},
		{Outcome{ID: "gas_3", Status: StatusFailed, Err: errors.New("disk full")}, "failed to generate gas_3: disk full"},
	}
	for _, tt := range tests {
		if got := tt.o.Message(); got != tt.want {
			t.Errorf("Message() = %q, want %q", got, tt.want)
		}
	}
}

func smallJobs(base string) []Job {
	crater := 3
	return []Job{
		{
			ID:  "asteroid_1",
			Dir: filepath.Join(base, "asteroid_1"),
			Request: body.Request{
				Kind: body.Asteroid, Preset: "deimos", Seed: 5, Width: 32, Height: 16,
				Overrides: body.Overrides{CraterCount: &crater},
			},
		},
		{
			ID:      "ring_1",
			Dir:     filepath.Join(base, "ring_1"),
			Request: body.Request{Kind: body.Ring, Seed: 9, Width: 32, Height: 8},
		},
		{
			ID:      "star_1",
			Dir:     filepath.Join(base, "star_1"),
			Request: body.Request{Kind: body.Star, Preset: "yellow_dwarf", Seed: 2, Width: 16, Height: 16},
		},
	}
}

func TestRunnerWritesFoldersAndReport(t *testing.T) {
	base := t.TempDir()
	out, err := telemetry.NewOutputManager(base, "report.csv", "perf.csv")
	if err != nil {
		t.Fatal(err)
	}
	opts, err := export.OptionsFrom(config.Cfg().Output)
	if err != nil {
		t.Fatal(err)
	}

	cfg := *config.Cfg()
	cfg.Batch.Workers = 2
	r := NewRunner(&cfg, opts, out)
	outcomes := r.Run(smallJobs(base))
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}

	if outcomes[0].Status != StatusOK || outcomes[1].Status != StatusOK {
		t.Fatalf("expected two successes, got %v and %v", outcomes[0].Err, outcomes[1].Err)
	}
	// A bad preset fails only its own body.
	if outcomes[2].Status != StatusFailed || !errors.Is(outcomes[2].Err, body.ErrUnknownPreset) {
		t.Errorf("expected unknown preset failure, got %+v", outcomes[2])
	}

	for _, path := range []string{
		"asteroid_1/height_map.png",
		"asteroid_1/deimos.obj",
		"asteroid_1/manifest.yaml",
		"ring_1/rings.png",
		"ring_1/manifest.yaml",
	} {
		if _, err := os.Stat(filepath.Join(base, path)); err != nil {
			t.Errorf("missing %s: %v", path, err)
		}
	}
	if _, err := os.Stat(filepath.Join(base, "star_1")); !os.IsNotExist(err) {
		t.Errorf("failed body left a folder behind: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(base, "report.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("report has %d lines, want header plus 3 rows", len(lines))
	}
	if !strings.HasPrefix(lines[1], "asteroid_1,asteroid,deimos,5,ok,") {
		t.Errorf("unexpected first row %q", lines[1])
	}
	if !strings.HasPrefix(lines[3], "star_1,star,yellow_dwarf,2,failed,") {
		t.Errorf("unexpected failure row %q", lines[3])
	}

	if stats := r.Perf(); stats.Requests != 2 {
		t.Errorf("perf recorded %d requests, want 2", stats.Requests)
	}
}

func TestRunnerSkipsMatchingFolders(t *testing.T) {
	base := t.TempDir()
	opts, err := export.OptionsFrom(config.Cfg().Output)
	if err != nil {
		t.Fatal(err)
	}
	cfg := *config.Cfg()
	cfg.Batch.SkipExisting = true
	jobs := smallJobs(base)[:2]

	first := NewRunner(&cfg, opts, nil).Run(jobs)
	if s := Summarize(first); s.OK != 2 {
		t.Fatalf("first run summary = %+v", s)
	}

	// A changed seed no longer matches the manifest.
	jobs[1].Request.Seed++
	second := NewRunner(&cfg, opts, nil).Run(jobs)
	if second[0].Status != StatusSkipped {
		t.Errorf("unchanged body status = %s, want skipped", second[0].Status)
	}
	if second[1].Status != StatusOK {
		t.Errorf("changed body status = %s, want ok", second[1].Status)
	}

	m, err := ReadManifest(jobs[1].Dir)
	if err != nil {
		t.Fatal(err)
	}
	if m.Request.Seed != jobs[1].Request.Seed || m.Params.Ring == nil {
		t.Errorf("manifest not rewritten: %+v", m.Request)
	}
}
