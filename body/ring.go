package body

import (
	"image"
	"image/color"
	"math"

	"github.com/pthm-cable/planetforge/compose"
	"github.com/pthm-cable/planetforge/field"
	"github.com/pthm-cable/planetforge/noise"
	"github.com/pthm-cable/planetforge/stamp"
	"github.com/pthm-cable/planetforge/surface"
	"github.com/pthm-cable/planetforge/telemetry"
)

// ring builds the ring texture: rows run from the inner to the outer edge,
// columns around the ring. Animation moves the noise along its time axis.
func ring(p *Params, timer *telemetry.PhaseTimer) (*Result, error) {
	rp := p.Ring
	gaps := stamp.RingGaps(p.Height, rp.Gaps, rp.GapWidths)
	period := p.Animation.Period()

	timer.StartPhase(telemetry.PhaseNoise)
	pattern, err := ringPattern(p, gaps, period, 0)
	if err != nil {
		return nil, err
	}
	timer.StartPhase(telemetry.PhaseDerive)
	first := ringRGBA(pattern, rp.Colors, rp.Transparency)

	res := &Result{Params: p}
	res.addColor(MapRings, first)
	res.addGray(MapRingPattern, pattern, surface.Gray(pattern))

	if p.Animation.Frames > 1 {
		timer.StartPhase(telemetry.PhaseCompose)
		seq, err := compose.Animate(p.Animation, func(t float64) (image.Image, error) {
			if t == 0 {
				return first, nil
			}
			f, err := ringPattern(p, gaps, period, t)
			if err != nil {
				return nil, err
			}
			return ringRGBA(f, rp.Colors, rp.Transparency), nil
		})
		if err != nil {
			return nil, err
		}
		res.Frames = seq
	}
	return res, nil
}

// ringPattern returns the normalized density at time t: a flat density band
// cut by gaps, averaged with ring noise.
func ringPattern(p *Params, gaps []stamp.Stamp, period, t float64) (*field.Field, error) {
	rp := p.Ring
	w, h := p.Width, p.Height

	np := rp.Noise
	np.Time = t
	var texture *field.Field
	var err error
	if period > 0 {
		texture, err = noise.SampleLooped(noise.Radial{}, w, h, np, period)
		if err == nil {
			texture.Scale(1 / noise.AmplitudeSum(np))
		}
	} else {
		texture, err = noise.SampleUnit(noise.Radial{}, w, h, np)
	}
	if err != nil {
		return nil, err
	}

	density := field.New(w, h)
	density.Fill(rp.Density)
	stamp.ApplyAll(density, gaps)

	return surface.Assemble([]surface.Layer{
		{Field: density, Weight: 0.5},
		{Field: texture, Weight: 0.5},
	}, surface.Smoothing{}, nil)
}

// ringRGBA colors a normalized pattern with equal-share color bands. Color
// and alpha both fall off toward the inner and outer edges; alpha is further
// scaled by value and transparency.
func ringRGBA(f *field.Field, colors []surface.RGB, transparency float64) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.W, f.H))
	n := len(colors)
	half := float64(f.H) / 2
	for y := 0; y < f.H; y++ {
		radial := 1 - math.Abs((float64(y)-half)/half)
		for x, v := range f.Row(y) {
			c := colors[min(int(v*float64(n)), n-1)]
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(float64(c[0]) * radial),
				G: uint8(float64(c[1]) * radial),
				B: uint8(float64(c[2]) * radial),
				A: uint8(math.Max(0, math.Min(255, v*255*transparency*radial))),
			})
		}
	}
	return img
}
