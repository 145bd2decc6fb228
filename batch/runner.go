package batch

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pthm-cable/planetforge/body"
	"github.com/pthm-cable/planetforge/config"
	"github.com/pthm-cable/planetforge/export"
	"github.com/pthm-cable/planetforge/telemetry"
)

// Runner generates planned jobs on a worker pool and exports each result
// into its job folder.
type Runner struct {
	cfg          *config.Config
	opts         export.Options
	pool         *Pool
	skipExisting bool
	perf         *telemetry.PerfCollector
	out          *telemetry.OutputManager
}

// NewRunner creates a runner. out may be nil to disable the report files.
func NewRunner(cfg *config.Config, opts export.Options, out *telemetry.OutputManager) *Runner {
	return &Runner{
		cfg:          cfg,
		opts:         opts,
		pool:         NewPool(cfg.Batch.Workers),
		skipExisting: cfg.Batch.SkipExisting,
		perf:         telemetry.NewPerfCollector(0),
		out:          out,
	}
}

// Workers returns the pool size.
func (r *Runner) Workers() int { return r.pool.Workers() }

// Run executes every job and returns the outcomes in job order. Report rows
// are written after the pool drains, so the report order is deterministic.
func (r *Runner) Run(jobs []Job) []Outcome {
	tasks := make([]Task, len(jobs))
	for i, job := range jobs {
		tasks[i] = Task{ID: job.ID, Run: func() Outcome { return r.runJob(job) }}
	}
	outcomes := r.pool.Run(tasks)

	for _, o := range outcomes {
		if o.Status == StatusOK {
			r.perf.Record(o.Perf)
		}
		if err := r.out.WriteOutcome(o.Record()); err != nil {
			slog.Error("failed to write report row", "id", o.ID, "error", err)
		}
		if o.Status == StatusOK {
			if err := r.out.WritePerf(o.ID, o.Perf); err != nil {
				slog.Error("failed to write perf row", "id", o.ID, "error", err)
			}
		}
	}
	return outcomes
}

// Perf returns timing statistics over the finished jobs.
func (r *Runner) Perf() telemetry.PerfStats {
	return r.perf.Stats()
}

func (r *Runner) runJob(job Job) Outcome {
	o := Outcome{ID: job.ID, Kind: job.Request.Kind, Seed: job.Request.Seed, Preset: job.Request.Preset}

	timer := telemetry.StartTimer()
	timer.StartPhase(telemetry.PhaseResolve)
	params, err := body.Resolve(r.cfg, job.Request)
	if err != nil {
		return o.failed(err)
	}
	o.Preset = params.Preset

	if r.skipExisting && Matches(job.Dir, params) {
		o.Status = StatusSkipped
		return o
	}

	res, err := body.Run(params, timer)
	if err != nil {
		return o.failed(err)
	}

	timer.StartPhase(telemetry.PhaseExport)
	files, err := export.WriteResult(job.Dir, job.ID, res, r.opts)
	if err != nil {
		return o.failed(err)
	}
	if err := WriteManifest(job.Dir, Manifest{ID: job.ID, Request: job.Request, Inputs: job.Inputs, Params: params}); err != nil {
		return o.failed(err)
	}
	o.Files = files
	o.Perf = timer.Stop()
	o.Status = StatusOK
	return o
}

func (o Outcome) failed(err error) Outcome {
	o.Status = StatusFailed
	o.Err = err
	return o
}

// Prepare creates the base directory. Job folders are created on export.
func Prepare(baseDir string) error {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", baseDir, err)
	}
	return nil
}
