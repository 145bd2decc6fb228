// Package stamp places discrete localized features (craters, storms,
// starspots, ring gaps, light clusters) onto scalar fields.
package stamp

import (
	"math"
	"math/rand/v2"

	"github.com/pthm-cable/planetforge/field"
)

// Kind identifies how a stamp shapes and combines into the target.
type Kind string

const (
	KindCrater Kind = "crater" // Bowl with raised rim, additive
	KindStorm  Kind = "storm"  // Filled disc, max-combined
	KindSpot   Kind = "spot"   // Filled disc, max-combined
	KindGap    Kind = "gap"    // Row attenuation along the radial axis
	KindLight  Kind = "light"  // Gaussian cluster, max-combined
)

// Crater profile constants.
const (
	craterBowlFraction = 0.7  // Bowl radius as a fraction of R
	DefaultCraterDepth = -1.0 // Bowl value at the crater center
	DefaultCraterRim   = 0.5  // Rim value at the bowl edge
)

// Stamp is one localized perturbation. Center and radius are in raster cells.
type Stamp struct {
	Kind      Kind
	X, Y      float64 // Center; gaps only use Y
	Radius    float64 // Footprint radius; half width for gaps
	Intensity float64 // Crater depth, disc fill, or light peak
	Rim       float64 // Crater rim height
}

// NewRand returns the deterministic generator used for all placement.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), 0))
}

// Apply stamps s onto f in place.
func Apply(f *field.Field, s Stamp) {
	switch s.Kind {
	case KindCrater:
		crater(f, s)
	case KindStorm, KindSpot:
		disc(f, s)
	case KindGap:
		gap(f, s)
	case KindLight:
		light(f, s)
	}
}

// ApplyAll stamps in order.
func ApplyAll(f *field.Field, stamps []Stamp) {
	for _, s := range stamps {
		Apply(f, s)
	}
}

// CraterProfile returns the crater contribution at distance d from the center
// of a crater of radius r.
func CraterProfile(d, r, depth, rim float64) float64 {
	inner := r * craterBowlFraction
	switch {
	case d < inner:
		k := 1 - d/inner
		return depth * k * k
	case d < r:
		return rim * (1 - (d-inner)/(r-inner))
	default:
		return 0
	}
}

func crater(f *field.Field, s Stamp) {
	x0, x1, y0, y1 := bounds(f, s.X, s.Y, s.Radius)
	for y := y0; y <= y1; y++ {
		dy := float64(y) - s.Y
		for x := x0; x <= x1; x++ {
			dx := float64(x) - s.X
			d := math.Sqrt(dx*dx + dy*dy)
			if d >= s.Radius {
				continue
			}
			f.Add(x, y, CraterProfile(d, s.Radius, s.Intensity, s.Rim))
		}
	}
}

func disc(f *field.Field, s Stamp) {
	x0, x1, y0, y1 := bounds(f, s.X, s.Y, s.Radius)
	r2 := s.Radius * s.Radius
	for y := y0; y <= y1; y++ {
		dy := float64(y) - s.Y
		for x := x0; x <= x1; x++ {
			dx := float64(x) - s.X
			if dx*dx+dy*dy > r2 {
				continue
			}
			if s.Intensity > f.At(x, y) {
				f.Set(x, y, s.Intensity)
			}
		}
	}
}

// gap multiplies rows within the half width by their distance from the gap
// center over the half width: 0 at the center, 1 at the edge.
func gap(f *field.Field, s Stamp) {
	hw := s.Radius
	if hw <= 0 {
		return
	}
	for y := 0; y < f.H; y++ {
		d := math.Abs(float64(y) - s.Y)
		if d >= hw {
			continue
		}
		row := f.Row(y)
		for x := range row {
			row[x] *= d / hw
		}
	}
}

func light(f *field.Field, s Stamp) {
	r := s.Radius
	if r <= 0 {
		return
	}
	// Half-open box [c-r, c+r) clipped to the grid.
	x0 := max(0, int(s.X-r))
	x1 := min(f.W, int(s.X+r))
	y0 := max(0, int(s.Y-r))
	y1 := min(f.H, int(s.Y+r))
	sigma := r / 3
	denom := 2 * sigma * sigma

	for y := y0; y < y1; y++ {
		dy := float64(y) - s.Y
		for x := x0; x < x1; x++ {
			dx := float64(x) - s.X
			v := math.Exp(-(dx*dx+dy*dy)/denom) * s.Intensity
			if v > f.At(x, y) {
				f.Set(x, y, v)
			}
		}
	}
}

// bounds returns the inclusive cell box covering a disc, clipped to f.
func bounds(f *field.Field, cx, cy, r float64) (x0, x1, y0, y1 int) {
	x0 = max(0, int(math.Floor(cx-r)))
	x1 = min(f.W-1, int(math.Ceil(cx+r)))
	y0 = max(0, int(math.Floor(cy-r)))
	y1 = min(f.H-1, int(math.Ceil(cy+r)))
	return
}
