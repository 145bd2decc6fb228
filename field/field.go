// Package field provides the row-major scalar grid shared by every stage of
// the surface pipeline, plus the numeric passes that operate on whole grids
// (smoothing, normalization, contrast curves).
package field

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Field is an H×W grid of float64 samples stored in row-major order.
type Field struct {
	W, H int
	Data []float64
}

// New allocates a zeroed field. It panics on non-positive dimensions; callers
// validate resolution before allocating.
func New(w, h int) *Field {
	if w <= 0 || h <= 0 {
		panic(fmt.Sprintf("field: invalid dimensions %dx%d", w, h))
	}
	return &Field{W: w, H: h, Data: make([]float64, w*h)}
}

// FromRows builds a field from a slice of equally sized rows.
func FromRows(rows [][]float64) *Field {
	f := New(len(rows[0]), len(rows))
	for y, row := range rows {
		copy(f.Row(y), row)
	}
	return f
}

// Index returns the linear slice index for coordinates (x, y).
func (f *Field) Index(x, y int) int { return y*f.W + x }

// At returns the sample at (x, y).
func (f *Field) At(x, y int) float64 { return f.Data[y*f.W+x] }

// Set stores v at (x, y).
func (f *Field) Set(x, y int, v float64) { f.Data[y*f.W+x] = v }

// Add accumulates v into (x, y).
func (f *Field) Add(x, y int, v float64) { f.Data[y*f.W+x] += v }

// Row exposes row y of the backing slice.
func (f *Field) Row(y int) []float64 { return f.Data[y*f.W : (y+1)*f.W] }

// InBounds reports whether (x, y) lies inside the grid.
func (f *Field) InBounds(x, y int) bool {
	return x >= 0 && x < f.W && y >= 0 && y < f.H
}

// SameSize reports whether g has the same dimensions as f.
func (f *Field) SameSize(g *Field) bool { return f.W == g.W && f.H == g.H }

// Clone returns a deep copy.
func (f *Field) Clone() *Field {
	c := &Field{W: f.W, H: f.H, Data: make([]float64, len(f.Data))}
	copy(c.Data, f.Data)
	return c
}

// Fill sets every sample to v.
func (f *Field) Fill(v float64) {
	for i := range f.Data {
		f.Data[i] = v
	}
}

// Wrapped returns the sample at (x, y) with x wrapped horizontally and y
// clamped to the valid rows. Used for spherical lookups.
func (f *Field) Wrapped(x, y int) float64 {
	x = modInt(x, f.W)
	if y < 0 {
		y = 0
	} else if y >= f.H {
		y = f.H - 1
	}
	return f.Data[y*f.W+x]
}

// MinMax returns the smallest and largest samples.
func (f *Field) MinMax() (lo, hi float64) {
	return floats.Min(f.Data), floats.Max(f.Data)
}

// Normalize rescales the field in place to [0,1]. A flat field (max == min)
// becomes all zero and Normalize reports false.
func (f *Field) Normalize() bool {
	lo, hi := f.MinMax()
	span := hi - lo
	if span == 0 || math.IsNaN(span) {
		f.Fill(0)
		return false
	}
	// Divide per sample: multiplying by 1/span can leave the max below 1.
	for i, v := range f.Data {
		f.Data[i] = (v - lo) / span
	}
	return true
}

// Scale multiplies every sample by c.
func (f *Field) Scale(c float64) { floats.Scale(c, f.Data) }

// AddScaled accumulates alpha*g into f. Both fields must share dimensions.
func (f *Field) AddScaled(alpha float64, g *Field) {
	if !f.SameSize(g) {
		panic(fmt.Sprintf("field: size mismatch %dx%d vs %dx%d", f.W, f.H, g.W, g.H))
	}
	floats.AddScaled(f.Data, alpha, g.Data)
}

// Pow applies a power-law curve to every sample. Negative samples are clamped
// to zero first so fractional exponents stay real.
func (f *Field) Pow(exp float64) {
	for i, v := range f.Data {
		if v <= 0 {
			f.Data[i] = 0
			continue
		}
		f.Data[i] = math.Pow(v, exp)
	}
}

// Clamp01 limits every sample to [0,1].
func (f *Field) Clamp01() {
	for i, v := range f.Data {
		f.Data[i] = clamp01(v)
	}
}

// Apply replaces every sample with fn(sample).
func (f *Field) Apply(fn func(float64) float64) {
	for i, v := range f.Data {
		f.Data[i] = fn(v)
	}
}

// ScaleRows multiplies each row y by factor(y).
func (f *Field) ScaleRows(factor func(y int) float64) {
	for y := 0; y < f.H; y++ {
		floats.Scale(factor(y), f.Row(y))
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func modInt(a, m int) int {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}
