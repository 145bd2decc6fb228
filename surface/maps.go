package surface

import (
	"image"
	"image/color"
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/planetforge/field"
	"github.com/pthm-cable/planetforge/noise"
	"github.com/pthm-cable/planetforge/stamp"
)

// EdgeFor picks the blur edge mode matching a sampling domain. Domains that
// wrap horizontally blur across the x seam.
func EdgeFor(d noise.Domain) field.Edge {
	switch d.(type) {
	case noise.Spherical, noise.Radial:
		return field.EdgeWrapX
	default:
		return field.EdgeReflect
	}
}

// Gray converts a [0,1] field to an 8-bit grayscale image.
func Gray(f *field.Field) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, f.W, f.H))
	for y := 0; y < f.H; y++ {
		row := f.Row(y)
		off := y * img.Stride
		for x, v := range row {
			img.Pix[off+x] = toByte(v * 255)
		}
	}
	return img
}

// PoleFade returns one factor per row: 1 on the equator falling linearly to 0
// on the first and last rows.
func PoleFade(h int) []float64 {
	out := make([]float64, h)
	if h < 3 {
		for y := range out {
			out[y] = 1
		}
		return out
	}
	mid := float64(h-1) / 2
	for y := range out {
		d := float64(min(y, h-1-y))
		out[y] = math.Min(1, d/mid)
	}
	return out
}

// ApplyPoleFade scales each row of f by PoleFade.
func ApplyPoleFade(f *field.Field) {
	fade := PoleFade(f.H)
	f.ScaleRows(func(y int) float64 { return fade[y] })
}

// FadeImage scales the color channels of each row by PoleFade, leaving alpha
// untouched.
func FadeImage(img *image.RGBA) {
	b := img.Bounds()
	fade := PoleFade(b.Dy())
	for y := 0; y < b.Dy(); y++ {
		k := fade[y]
		off := y * img.Stride
		for x := 0; x < b.Dx(); x++ {
			p := img.Pix[off+x*4 : off+x*4+3]
			for c := range p {
				p[c] = toByte(float64(p[c]) * k)
			}
		}
	}
}

// LatitudeCompensation scales rows by cos(lat)*0.5+0.5, with latitude running
// from -90° on the first row to +90° on the last.
func LatitudeCompensation(f *field.Field) {
	f.ScaleRows(func(y int) float64 {
		if f.H < 2 {
			return 1
		}
		lat := -math.Pi/2 + math.Pi*float64(y)/float64(f.H-1)
		return math.Cos(lat)*0.5 + 0.5
	})
}

// Reflectivity holds the specular value of each elevation band.
type Reflectivity struct {
	Ocean float64 `yaml:"ocean"`
	Snow  float64 `yaml:"snow"`
	Land  float64 `yaml:"land"`
}

// Specular assigns band reflectivity by elevation alone and normalizes.
func Specular(elev *field.Field, th Thresholds, r Reflectivity) *field.Field {
	out := field.New(elev.W, elev.H)
	for i, e := range elev.Data {
		switch {
		case e < th.Ocean:
			out.Data[i] = r.Ocean
		case e > th.Peak:
			out.Data[i] = r.Snow
		default:
			out.Data[i] = r.Land
		}
	}
	out.Normalize()
	return out
}

// LightParams configures population light scattering.
type LightParams struct {
	Density   float64     `yaml:"density"` // Placement attempts per cell
	Radius    stamp.Range `yaml:"radius"`
	Intensity stamp.Range `yaml:"intensity"`
	Sigma     float64     `yaml:"sigma"`
}

// Attempts returns the number of placement attempts for a w×h raster.
func (p LightParams) Attempts(w, h int) int {
	return max(1, int(float64(w*h)*p.Density))
}

// LightMap scatters light clusters on cells above the ocean threshold, blurs
// and normalizes. A planet with no land yields an all-zero map.
func LightMap(rng *rand.Rand, elev *field.Field, oceanThreshold float64, edge field.Edge, p LightParams) *field.Field {
	land := func(x, y int) bool { return elev.At(x, y) > oceanThreshold }
	lights := stamp.Lights(rng, elev.W, elev.H, p.Attempts(elev.W, elev.H), land, p.Radius, p.Intensity)

	out := field.New(elev.W, elev.H)
	stamp.ApplyAll(out, lights)
	out.Blur(p.Sigma, edge)
	out.Normalize()
	return out
}

// BumpParams configures the bump map sharpening chain.
type BumpParams struct {
	Sigma         float64 `yaml:"sigma"`          // Pre-blur
	UnsharpRadius float64 `yaml:"unsharp_radius"` // Unsharp mask blur sigma
	UnsharpAmount float64 `yaml:"unsharp_amount"` // 1.5 adds 150% of the detail
	Threshold     float64 `yaml:"threshold"`      // Minimum detail (in [0,1] units) to sharpen
	Contrast      float64 `yaml:"contrast"`       // Stretch about the mean
}

// Bump derives a sharpened bump map from an elevation field: blur,
// normalize, unsharp mask, then a contrast stretch about the mean. The result
// is clamped to [0,1].
func Bump(elev *field.Field, edge field.Edge, p BumpParams) *field.Field {
	out := elev.Clone()
	out.Blur(p.Sigma, edge)
	out.Normalize()

	soft := out.Clone()
	soft.Blur(p.UnsharpRadius, edge)
	for i, v := range out.Data {
		detail := v - soft.Data[i]
		if math.Abs(detail) >= p.Threshold {
			out.Data[i] = clamp01(v + detail*p.UnsharpAmount)
		}
	}

	mean := stat.Mean(out.Data, nil)
	out.Apply(func(v float64) float64 {
		return clamp01(mean + (v-mean)*p.Contrast)
	})
	return out
}

// Albedo tints a base color by a variation noise in [0,1], weighted by
// height: base + (n*2-1) * variation * 255 * height, clamped per channel.
func Albedo(height, variation *field.Field, base RGB, amount float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, height.W, height.H))
	for y := 0; y < height.H; y++ {
		for x := 0; x < height.W; x++ {
			shift := (variation.At(x, y)*2 - 1) * amount * 255 * height.At(x, y)
			img.SetRGBA(x, y, color.RGBA{
				R: toByte(float64(base[0]) + shift),
				G: toByte(float64(base[1]) + shift),
				B: toByte(float64(base[2]) + shift),
				A: 255,
			})
		}
	}
	return img
}

// Ramp maps each [0,1] cell to colors[int(v*(n-1))]. Only v == 1 reaches the
// last color.
func Ramp(f *field.Field, colors []RGB) *image.RGBA {
	n := len(colors)
	return paint(f, func(v float64) color.RGBA {
		return colors[int(clamp01(v)*float64(n-1))].RGBA()
	})
}

// RampClamped maps each [0,1] cell to colors[min(int(v*n), n-1)], giving
// every color an equal share of the range.
func RampClamped(f *field.Field, colors []RGB) *image.RGBA {
	n := len(colors)
	return paint(f, func(v float64) color.RGBA {
		return colors[min(int(clamp01(v)*float64(n)), n-1)].RGBA()
	})
}

func paint(f *field.Field, fn func(float64) color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.W, f.H))
	for y := 0; y < f.H; y++ {
		for x, v := range f.Row(y) {
			img.SetRGBA(x, y, fn(v))
		}
	}
	return img
}

// WithOceanFraction moves the ocean threshold to the elevation quantile that
// covers fraction of the cells, shifting the beach threshold with it.
// Fractions outside (0,1) leave the table unchanged.
func (t BiomeTable) WithOceanFraction(elev *field.Field, fraction float64) BiomeTable {
	if !(fraction > 0 && fraction < 1) {
		return t
	}
	sorted := slices.Clone(elev.Data)
	slices.Sort(sorted)
	q := stat.Quantile(fraction, stat.Empirical, sorted, nil)

	band := t.Thresholds.Beach - t.Thresholds.Ocean
	t.Thresholds.Ocean = q
	t.Thresholds.Beach = q + band
	return t
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
