package telemetry

import (
	"sync"
	"testing"
	"time"
)

func TestPhaseTimer_BasicTiming(t *testing.T) {
	timer := StartTimer()
	timer.StartPhase(PhaseNoise)
	time.Sleep(200 * time.Microsecond)
	timer.StartPhase(PhaseDerive)
	time.Sleep(100 * time.Microsecond)
	timer.StartPhase(PhaseNoise)
	time.Sleep(100 * time.Microsecond)
	s := timer.Stop()

	if s.Duration <= 0 {
		t.Error("expected positive request duration")
	}
	if s.Phases[PhaseNoise] < 300*time.Microsecond {
		t.Errorf("expected noise phase to accumulate re-entries, got %v", s.Phases[PhaseNoise])
	}
	if _, ok := s.Phases[PhaseDerive]; !ok {
		t.Error("expected derive phase to be tracked")
	}
	if s.Phases[PhaseNoise]+s.Phases[PhaseDerive] > s.Duration {
		t.Error("phases should not exceed total duration")
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)
	for i := 1; i <= 10; i++ {
		pc.Record(PerfSample{
			Duration: time.Duration(i) * time.Millisecond,
			Phases:   map[string]time.Duration{PhaseNoise: time.Duration(i) * time.Millisecond / 2},
		})
	}

	stats := pc.Stats()
	if stats.Requests != 5 {
		t.Errorf("expected window of 5, got %d", stats.Requests)
	}
	// Window holds requests 6..10.
	if stats.AvgDuration != 8*time.Millisecond {
		t.Errorf("expected avg 8ms, got %v", stats.AvgDuration)
	}
	if stats.MinDuration != 6*time.Millisecond || stats.MaxDuration != 10*time.Millisecond {
		t.Errorf("expected min 6ms max 10ms, got %v %v", stats.MinDuration, stats.MaxDuration)
	}
	if pct := stats.PhasePct[PhaseNoise]; pct < 49.9 || pct > 50.1 {
		t.Errorf("expected noise at 50%%, got %f", pct)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	stats := NewPerfCollector(10).Stats()
	if stats.AvgDuration != 0 || stats.Requests != 0 {
		t.Error("expected zero stats with no samples")
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("expected initialized maps")
	}
}

func TestPerfCollector_Concurrent(t *testing.T) {
	pc := NewPerfCollector(100)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				pc.Record(PerfSample{Duration: time.Millisecond})
			}
		}()
	}
	wg.Wait()
	if got := pc.Stats().Requests; got != 80 {
		t.Errorf("expected 80 samples, got %d", got)
	}
}

func TestPerfSampleToCSV(t *testing.T) {
	s := PerfSample{
		Duration: 40 * time.Millisecond,
		Phases: map[string]time.Duration{
			PhaseNoise:  25 * time.Millisecond,
			PhaseExport: 10 * time.Millisecond,
		},
	}
	row := s.ToCSV("planet_3")
	if row.ID != "planet_3" || row.TotalMS != 40 || row.NoiseMS != 25 || row.ExportMS != 10 || row.MeshMS != 0 {
		t.Errorf("unexpected CSV row: %+v", row)
	}
}
