package noise

import (
	"errors"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/planetforge/field"
)

// ErrInvalidParameter reports noise or raster parameters that cannot be sampled.
var ErrInvalidParameter = errors.New("invalid parameter")

// Params holds the FBM parameters for one noise layer.
type Params struct {
	Scale       float64 `yaml:"scale"`       // Base frequency
	Octaves     int     `yaml:"octaves"`     // Number of summed octaves
	Persistence float64 `yaml:"persistence"` // Amplitude multiplier per octave
	Lacunarity  float64 `yaml:"lacunarity"`  // Frequency multiplier per octave
	Seed        int64   `yaml:"seed"`
	Time        float64 `yaml:"time"` // Position along the animation axis
	Basis       Basis   `yaml:"basis,omitempty"`
}

// Validate checks the parameters that would make sampling meaningless.
func (p Params) Validate() error {
	if p.Octaves < 1 {
		return fmt.Errorf("%w: octaves must be >= 1, got %d", ErrInvalidParameter, p.Octaves)
	}
	if !(p.Scale > 0) {
		return fmt.Errorf("%w: scale must be > 0, got %g", ErrInvalidParameter, p.Scale)
	}
	// Non-positive persistence can cancel the octaves out (AmplitudeSum == 0).
	if !(p.Persistence > 0) || math.IsInf(p.Persistence, 0) {
		return fmt.Errorf("%w: persistence must be finite and > 0, got %g", ErrInvalidParameter, p.Persistence)
	}
	return nil
}

// AmplitudeSum returns the sum of octave amplitudes, the bound on |FBM| when
// the basis is bounded by 1.
func AmplitudeSum(p Params) float64 {
	var sum float64
	amp := 1.0
	for o := 0; o < p.Octaves; o++ {
		sum += amp
		amp *= p.Persistence
	}
	return sum
}

// Sampler evaluates FBM at arbitrary mapped coordinates.
type Sampler struct {
	src    Source
	params Params
}

// NewSampler validates p and builds its noise source.
func NewSampler(p Params) (*Sampler, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	src, err := NewSource(p.Basis, p.Seed)
	if err != nil {
		return nil, err
	}
	return &Sampler{src: src, params: p}, nil
}

// FBM returns the raw octave sum at c. dims selects 3D (x, y, t) or
// 4D (x, y, z, t) evaluation.
func (s *Sampler) FBM(c r3.Vec, dims int) float64 {
	p := s.params
	var sum float64
	amp := 1.0
	freq := p.Scale
	tf := 1.0

	for o := 0; o < p.Octaves; o++ {
		q := r3.Scale(freq, c)
		if dims == 2 {
			sum += amp * s.src.Eval3(q.X, q.Y, p.Time*tf)
		} else {
			sum += amp * s.src.Eval4(q.X, q.Y, q.Z, p.Time*tf)
		}
		amp *= p.Persistence
		freq *= p.Lacunarity
		tf *= p.Lacunarity
	}
	return sum
}

// Sample evaluates FBM for every cell of a w×h raster under domain d.
// The output is the raw octave sum; callers normalize.
func Sample(d Domain, w, h int, p Params) (*field.Field, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: resolution must be positive, got %dx%d", ErrInvalidParameter, w, h)
	}
	s, err := NewSampler(p)
	if err != nil {
		return nil, err
	}

	f := field.New(w, h)
	dims := d.Dims()

	// Rows are independent; every cell is a pure function of its coordinates.
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for y := 0; y < h; y++ {
		g.Go(func() error {
			row := f.Row(y)
			for x := range row {
				row[x] = s.FBM(d.Map(float64(x), float64(y), w, h), dims)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return f, nil
}

// SampleNormalized samples and min-max normalizes to [0,1].
func SampleNormalized(d Domain, w, h int, p Params) (*field.Field, error) {
	f, err := Sample(d, w, h, p)
	if err != nil {
		return nil, err
	}
	f.Normalize()
	return f, nil
}

// SampleUnit samples and divides by AmplitudeSum, keeping the basis range
// (about [-1,1]) regardless of octave count.
func SampleUnit(d Domain, w, h int, p Params) (*field.Field, error) {
	f, err := Sample(d, w, h, p)
	if err != nil {
		return nil, err
	}
	f.Scale(1 / AmplitudeSum(p))
	return f, nil
}

// SampleLooped samples at p.Time folded into [0, period) and crossfades with
// the sample one period earlier, so that the sequence returns to its t=0 field
// as t approaches period.
func SampleLooped(d Domain, w, h int, p Params, period float64) (*field.Field, error) {
	if !(period > 0) {
		return nil, fmt.Errorf("%w: loop period must be > 0, got %g", ErrInvalidParameter, period)
	}
	t := math.Mod(p.Time, period)
	if t < 0 {
		t += period
	}
	s := t / period

	p.Time = t
	cur, err := Sample(d, w, h, p)
	if err != nil {
		return nil, err
	}
	if s == 0 {
		return cur, nil
	}

	p.Time = t - period
	prev, err := Sample(d, w, h, p)
	if err != nil {
		return nil, err
	}
	cur.Scale(1 - s)
	cur.AddScaled(s, prev)
	return cur, nil
}
