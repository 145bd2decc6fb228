package telemetry

import (
	"log/slog"
	"sync"
	"time"
)

// Phase names for a generation request.
const (
	PhaseResolve  = "resolve"
	PhaseNoise    = "noise"
	PhaseAssemble = "assemble"
	PhaseStamps   = "stamps"
	PhaseDerive   = "derive"
	PhaseCompose  = "compose"
	PhaseMesh     = "mesh"
	PhaseExport   = "export"
)

// Phases lists every phase in pipeline order.
var Phases = []string{
	PhaseResolve, PhaseNoise, PhaseAssemble, PhaseStamps,
	PhaseDerive, PhaseCompose, PhaseMesh, PhaseExport,
}

// PerfSample holds timing data for a single request.
type PerfSample struct {
	Duration time.Duration
	Phases   map[string]time.Duration
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfSample) LogValue() slog.Value {
	attrs := []slog.Attr{slog.Int64("total_ms", s.Duration.Milliseconds())}
	for _, phase := range Phases {
		if d, ok := s.Phases[phase]; ok {
			attrs = append(attrs, slog.Int64(phase+"_ms", d.Milliseconds()))
		}
	}
	return slog.GroupValue(attrs...)
}

// PhaseTimer splits one request's wall time into named phases. A phase runs
// until the next StartPhase or Stop; re-entering a phase accumulates.
type PhaseTimer struct {
	start      time.Time
	phaseStart time.Time
	lastPhase  string
	phases     map[string]time.Duration
}

// StartTimer begins timing a request.
func StartTimer() *PhaseTimer {
	now := time.Now()
	return &PhaseTimer{start: now, phaseStart: now, phases: make(map[string]time.Duration)}
}

// StartPhase ends the running phase, if any, and begins phase.
func (t *PhaseTimer) StartPhase(phase string) {
	now := time.Now()
	if t.lastPhase != "" {
		t.phases[t.lastPhase] += now.Sub(t.phaseStart)
	}
	t.phaseStart = now
	t.lastPhase = phase
}

// Stop ends the running phase and returns the finished sample. The timer
// may keep running phases; a later Stop includes them.
func (t *PhaseTimer) Stop() PerfSample {
	t.StartPhase("")
	phases := make(map[string]time.Duration, len(t.phases))
	for k, v := range t.phases {
		phases[k] = v
	}
	return PerfSample{Duration: time.Since(t.start), Phases: phases}
}

// PerfCollector aggregates request samples over a rolling window. It is safe
// for concurrent use by pool workers.
type PerfCollector struct {
	mu          sync.Mutex
	windowSize  int
	samples     []PerfSample
	writeIndex  int
	sampleCount int
}

// NewPerfCollector creates a new performance collector averaging over the
// last windowSize requests.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 64
	}
	return &PerfCollector{
		windowSize: windowSize,
		samples:    make([]PerfSample, windowSize),
	}
}

// Record adds a finished request sample.
func (p *PerfCollector) Record(s PerfSample) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.samples[p.writeIndex] = s
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	Requests    int
	AvgDuration time.Duration
	MinDuration time.Duration
	MaxDuration time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Phase percentages of the average request time
	PhasePct map[string]float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg: make(map[string]time.Duration),
			PhasePct: make(map[string]float64),
		}
	}

	var total, minD, maxD time.Duration
	phaseSum := make(map[string]time.Duration)
	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.Duration
		if i == 0 || s.Duration < minD {
			minD = s.Duration
		}
		if s.Duration > maxD {
			maxD = s.Duration
		}
		for phase, d := range s.Phases {
			phaseSum[phase] += d
		}
	}

	avg := total / time.Duration(p.sampleCount)
	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avg > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avg) * 100
		}
	}

	return PerfStats{
		Requests:    p.sampleCount,
		AvgDuration: avg,
		MinDuration: minD,
		MaxDuration: maxD,
		PhaseAvg:    phaseAvg,
		PhasePct:    phasePct,
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("requests", s.Requests),
		slog.Int64("avg_ms", s.AvgDuration.Milliseconds()),
		slog.Int64("min_ms", s.MinDuration.Milliseconds()),
		slog.Int64("max_ms", s.MaxDuration.Milliseconds()),
	}
	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, slog.Float64(phase+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfSampleCSV is a flat struct for CSV export of one request's timing.
type PerfSampleCSV struct {
	ID         string `csv:"id"`
	TotalMS    int64  `csv:"total_ms"`
	ResolveMS  int64  `csv:"resolve_ms"`
	NoiseMS    int64  `csv:"noise_ms"`
	AssembleMS int64  `csv:"assemble_ms"`
	StampsMS   int64  `csv:"stamps_ms"`
	DeriveMS   int64  `csv:"derive_ms"`
	ComposeMS  int64  `csv:"compose_ms"`
	MeshMS     int64  `csv:"mesh_ms"`
	ExportMS   int64  `csv:"export_ms"`
}

// ToCSV converts a sample to a flat CSV-friendly struct.
func (s PerfSample) ToCSV(id string) PerfSampleCSV {
	ms := func(phase string) int64 { return s.Phases[phase].Milliseconds() }
	return PerfSampleCSV{
		ID:         id,
		TotalMS:    s.Duration.Milliseconds(),
		ResolveMS:  ms(PhaseResolve),
		NoiseMS:    ms(PhaseNoise),
		AssembleMS: ms(PhaseAssemble),
		StampsMS:   ms(PhaseStamps),
		DeriveMS:   ms(PhaseDerive),
		ComposeMS:  ms(PhaseCompose),
		MeshMS:     ms(PhaseMesh),
		ExportMS:   ms(PhaseExport),
	}
}
