package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/planetforge/field"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeFieldStats(t *testing.T) {
	f := field.FromRows([][]float64{
		{0, 0.1, 0.2, 0.3, 0.4},
		{0.5, 0.6, 0.7, 0.8, 0.9},
	})
	s := ComputeFieldStats("asteroid_1", "height_map", f)

	if s.Body != "asteroid_1" || s.Map != "height_map" || s.W != 5 || s.H != 2 {
		t.Errorf("unexpected identity fields: %+v", s)
	}
	if s.Min != 0 || s.Max != 0.9 {
		t.Errorf("range = [%v,%v], want [0,0.9]", s.Min, s.Max)
	}
	if math.Abs(s.Mean-0.45) > 1e-12 {
		t.Errorf("mean = %v, want 0.45", s.Mean)
	}
	// Population std of 0..0.9 in steps of 0.1
	if math.Abs(s.Std-math.Sqrt(0.0825)) > 1e-9 {
		t.Errorf("std = %v, want %v", s.Std, math.Sqrt(0.0825))
	}
	if math.Abs(s.P50-0.45) > 1e-12 {
		t.Errorf("p50 = %v, want 0.45", s.P50)
	}
	if math.Abs(s.ZeroFraction-0.1) > 1e-12 {
		t.Errorf("zero fraction = %v, want 0.1", s.ZeroFraction)
	}
}

func TestComputeFieldStatsKeepsInput(t *testing.T) {
	f := field.FromRows([][]float64{{3, 1, 2}})
	ComputeFieldStats("b", "m", f)
	if f.Data[0] != 3 || f.Data[1] != 1 || f.Data[2] != 2 {
		t.Errorf("expected input order untouched, got %v", f.Data)
	}
}
