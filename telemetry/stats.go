package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/planetforge/field"
)

// FieldStats summarizes the distribution of one generated map.
type FieldStats struct {
	Body string  `csv:"body"`
	Map  string  `csv:"map"`
	W    int     `csv:"width"`
	H    int     `csv:"height"`
	Min  float64 `csv:"min"`
	Max  float64 `csv:"max"`
	Mean float64 `csv:"mean"`
	Std  float64 `csv:"std"`
	P10  float64 `csv:"p10"`
	P50  float64 `csv:"p50"`
	P90  float64 `csv:"p90"`

	// Share of cells at exactly zero (cloud gaps, ring gaps, unlit land)
	ZeroFraction float64 `csv:"zero_fraction"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation between closest ranks
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeFieldStats summarizes f under the given body and map names.
func ComputeFieldStats(body, name string, f *field.Field) FieldStats {
	s := FieldStats{Body: body, Map: name, W: f.W, H: f.H}
	if len(f.Data) == 0 {
		return s
	}

	s.Min, s.Max = f.MinMax()
	s.Mean, s.Std = stat.PopMeanStdDev(f.Data, nil)

	sorted := slices.Clone(f.Data)
	slices.Sort(sorted)
	s.P10 = Percentile(sorted, 0.10)
	s.P50 = Percentile(sorted, 0.50)
	s.P90 = Percentile(sorted, 0.90)

	var zeros int
	for _, v := range f.Data {
		if v == 0 {
			zeros++
		}
	}
	s.ZeroFraction = float64(zeros) / float64(len(f.Data))
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s FieldStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("map", s.Map),
		slog.Int("width", s.W),
		slog.Int("height", s.H),
		slog.Float64("min", s.Min),
		slog.Float64("max", s.Max),
		slog.Float64("mean", s.Mean),
		slog.Float64("std", s.Std),
		slog.Float64("p10", s.P10),
		slog.Float64("p50", s.P50),
		slog.Float64("p90", s.P90),
		slog.Float64("zero_fraction", s.ZeroFraction),
	)
}
