package batch

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/planetforge/body"
	"github.com/pthm-cable/planetforge/telemetry"
)

// Status of one batch job.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Outcome is the result of one job. Failures are per body; one failed body
// never aborts the batch.
type Outcome struct {
	ID     string
	Kind   body.Kind
	Preset string
	Seed   int64
	Status Status
	Err    error
	Files  []string
	Perf   telemetry.PerfSample
}

// Message is the human readable line for the outcome.
func (o Outcome) Message() string {
	switch o.Status {
	case StatusOK:
		return fmt.Sprintf("generated %s", o.ID)
	case StatusSkipped:
		return fmt.Sprintf("skipped existing %s", o.ID)
	default:
		return fmt.Sprintf("failed to generate %s: %v", o.ID, o.Err)
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (o Outcome) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("id", o.ID),
		slog.String("kind", string(o.Kind)),
		slog.Int64("seed", o.Seed),
		slog.String("status", string(o.Status)),
	}
	if o.Preset != "" {
		attrs = append(attrs, slog.String("preset", o.Preset))
	}
	if o.Status == StatusOK {
		attrs = append(attrs, slog.Int("files", len(o.Files)), slog.Any("perf", o.Perf))
	}
	if o.Err != nil {
		attrs = append(attrs, slog.String("error", o.Err.Error()))
	}
	return slog.GroupValue(attrs...)
}

// Record converts the outcome to a report row.
func (o Outcome) Record() telemetry.OutcomeRecord {
	rec := telemetry.OutcomeRecord{
		ID:      o.ID,
		Kind:    string(o.Kind),
		Preset:  o.Preset,
		Seed:    o.Seed,
		Status:  string(o.Status),
		TotalMS: o.Perf.Duration.Milliseconds(),
	}
	if o.Err != nil {
		rec.Error = o.Err.Error()
	}
	return rec
}

// Summary counts outcomes by status.
type Summary struct {
	OK      int
	Skipped int
	Failed  int
}

// Summarize counts outcomes by status.
func Summarize(outcomes []Outcome) Summary {
	var s Summary
	for _, o := range outcomes {
		switch o.Status {
		case StatusOK:
			s.OK++
		case StatusSkipped:
			s.Skipped++
		default:
			s.Failed++
		}
	}
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("ok", s.OK),
		slog.Int("skipped", s.Skipped),
		slog.Int("failed", s.Failed),
	)
}
