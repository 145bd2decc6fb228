package stamp

import (
	"math"
	"math/rand/v2"

	"github.com/pthm-cable/planetforge/field"
)

// Range is an inclusive [Min, Max] interval.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Uniform draws from r. A degenerate range returns Min.
func (r Range) Uniform(rng *rand.Rand) float64 {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// IntN draws an integer from the inclusive range.
func (r Range) IntN(rng *rand.Rand) int {
	lo, hi := int(r.Min), int(r.Max)
	if hi <= lo {
		return lo
	}
	return lo + rng.IntN(hi-lo+1)
}

// Craters scatters count craters whose square footprint (side = diameter drawn
// from sizes) lies fully inside a w×h raster.
func Craters(rng *rand.Rand, w, h, count int, sizes Range, depth, rim float64) []Stamp {
	out := make([]Stamp, 0, count)
	for i := 0; i < count; i++ {
		size := sizes.IntN(rng)
		if size < 1 {
			size = 1
		}
		x := rng.IntN(max(1, w-size+1))
		y := rng.IntN(max(1, h-size+1))
		half := size / 2
		out = append(out, Stamp{
			Kind:      KindCrater,
			X:         float64(x + half),
			Y:         float64(y + half),
			Radius:    float64(half),
			Intensity: depth,
			Rim:       rim,
		})
	}
	return out
}

// Storms scatters count filled discs anywhere on the raster with radius and
// fill drawn from their ranges.
func Storms(rng *rand.Rand, w, h, count int, radii, intensity Range) []Stamp {
	out := make([]Stamp, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, Stamp{
			Kind:      KindStorm,
			X:         float64(rng.IntN(w + 1)),
			Y:         float64(rng.IntN(h + 1)),
			Radius:    float64(radii.IntN(rng)),
			Intensity: intensity.Uniform(rng),
		})
	}
	return out
}

// StormMask draws storms into a zero mask and softens it with a blur whose
// sigma is a quarter of the largest radius.
func StormMask(w, h int, storms []Stamp, maxRadius float64, edge field.Edge) *field.Field {
	mask := field.New(w, h)
	ApplyAll(mask, storms)
	return mask.Blur(maxRadius/4, edge)
}

// Lights makes attempts random placements and keeps those whose center lies
// on land. Radius and intensity are drawn only for kept clusters.
func Lights(rng *rand.Rand, w, h, attempts int, land func(x, y int) bool, radii, intensity Range) []Stamp {
	var out []Stamp
	for i := 0; i < attempts; i++ {
		x, y := rng.IntN(w), rng.IntN(h)
		if !land(x, y) {
			continue
		}
		out = append(out, Stamp{
			Kind:      KindLight,
			X:         float64(x),
			Y:         float64(y),
			Radius:    float64(radii.IntN(rng)),
			Intensity: intensity.Uniform(rng),
		})
	}
	return out
}

// RingGaps converts normalized gap centers and full widths into gap stamps
// for a raster of height h.
func RingGaps(h int, centers, widths []float64) []Stamp {
	n := min(len(centers), len(widths))
	out := make([]Stamp, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Stamp{
			Kind:   KindGap,
			Y:      float64(int(centers[i] * float64(h))),
			Radius: float64(int(widths[i] * float64(h) / 2)),
		})
	}
	return out
}

// OrbitSpot is a starspot that circles the raster center on an ellipse.
type OrbitSpot struct {
	RX, RY    float64 // Orbit semi-axes in cells
	Phase     float64 // Angular offset in radians
	Radius    float64
	Intensity float64
}

// At positions the spot for the given orbit angle around (cx, cy).
func (o OrbitSpot) At(cx, cy, angle float64) Stamp {
	a := angle + o.Phase
	return Stamp{
		Kind:      KindSpot,
		X:         math.Floor(cx + math.Cos(a)*o.RX),
		Y:         math.Floor(cy + math.Sin(a)*o.RY),
		Radius:    o.Radius,
		Intensity: o.Intensity,
	}
}

// Starspots draws count orbiting spots once per request. Their positions are
// then a continuous function of the orbit angle.
func Starspots(rng *rand.Rand, w, h, count int, radii Range, featureScale float64, intensity Range) []OrbitSpot {
	out := make([]OrbitSpot, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, OrbitSpot{
			RX:        float64(rng.IntN(max(1, w/4))),
			RY:        float64(rng.IntN(max(1, h/4))),
			Phase:     rng.Float64() * 2 * math.Pi,
			Radius:    float64(radii.IntN(rng)) * featureScale,
			Intensity: intensity.Uniform(rng),
		})
	}
	return out
}
