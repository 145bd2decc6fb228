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

// starRenderer holds the per-request state shared by every frame. Spots are
// drawn once; each frame only moves them along their orbits.
type starRenderer struct {
	p      *Params
	spots  []stamp.OrbitSpot
	period float64
}

// star renders the t=0 surface and, for animated requests, the full frame
// sequence with rotating spots and pulsation.
func star(p *Params, timer *telemetry.PhaseTimer) (*Result, error) {
	sp := p.Star
	r := &starRenderer{
		p:      p,
		spots:  stamp.Starspots(stamp.NewRand(p.Seed), p.Width, p.Height, sp.SpotCount, sp.SpotRadius, sp.FeatureScale, sp.SpotIntensity),
		period: p.Animation.Period(),
	}

	timer.StartPhase(telemetry.PhaseNoise)
	intensity, err := r.intensity(0)
	if err != nil {
		return nil, err
	}
	timer.StartPhase(telemetry.PhaseDerive)
	first := tint(intensity, sp.BaseColor)

	res := &Result{Params: p, Height: intensity}
	res.addColor(MapStar, first)
	res.addGray(MapStarIntensity, intensity, surface.Gray(intensity))

	if p.Animation.Frames > 1 {
		timer.StartPhase(telemetry.PhaseCompose)
		seq, err := compose.Animate(p.Animation, func(t float64) (image.Image, error) {
			if t == 0 {
				return first, nil
			}
			f, err := r.intensity(t)
			if err != nil {
				return nil, err
			}
			return tint(f, sp.BaseColor), nil
		})
		if err != nil {
			return nil, err
		}
		res.Frames = seq
	}
	return res, nil
}

// intensity returns the blurred brightness field at time t. Values may exceed
// 1 while the star pulses outward.
func (r *starRenderer) intensity(t float64) (*field.Field, error) {
	sp := r.p.Star
	w, h := r.p.Width, r.p.Height

	gp := sp.Granules
	gp.Time = t
	var granules *field.Field
	var err error
	if r.period > 0 {
		granules, err = noise.SampleLooped(noise.Planar{}, w, h, gp, r.period)
	} else {
		granules, err = noise.Sample(noise.Planar{}, w, h, gp)
	}
	if err != nil {
		return nil, err
	}

	cx, cy := float64(w/2), float64(h/2)
	angle, pulsePhase := r.phase(t)
	spots := field.New(w, h)
	for _, o := range r.spots {
		stamp.Apply(spots, o.At(cx, cy, angle))
	}

	f, err := surface.Assemble([]surface.Layer{
		{Field: granules, Weight: sp.NoiseWeight},
		{Field: spots, Weight: sp.SpotWeight},
	}, surface.Smoothing{}, nil)
	if err != nil {
		return nil, err
	}

	pulse := 1 + sp.PulsationAmplitude*math.Sin(pulsePhase)
	radialFade(f, cx, cy, pulse)
	f.Blur(sp.Blur, field.EdgeReflect)
	return f, nil
}

// phase returns the spot orbit angle and the pulsation phase at t. A looping
// sequence rounds the rotation to whole turns per period, at least one when
// the star rotates, and pulses once per period, so t == period matches t == 0.
func (r *starRenderer) phase(t float64) (angle, pulse float64) {
	rot := r.p.Star.RotationSpeed
	if r.period <= 0 {
		return 2 * math.Pi * rot * t, 2 * math.Pi * t
	}
	turns := math.Round(rot * r.period)
	if turns == 0 && rot != 0 {
		turns = math.Copysign(1, rot)
	}
	s := t / r.period
	return 2 * math.Pi * turns * s, 2 * math.Pi * s
}

// radialFade darkens toward the corners: max(0, 1-d/dmax) * pulse, with dmax
// the distance from the center to the origin corner.
func radialFade(f *field.Field, cx, cy, pulse float64) {
	maxDist := math.Hypot(cx, cy)
	if maxDist == 0 {
		f.Scale(pulse)
		return
	}
	for y := 0; y < f.H; y++ {
		row := f.Row(y)
		for x := range row {
			d := math.Hypot(float64(x)-cx, float64(y)-cy)
			row[x] *= math.Max(0, 1-d/maxDist) * pulse
		}
	}
}

// tint scales the base color by intensity, clamping each channel.
func tint(f *field.Field, base surface.RGB) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.W, f.H))
	for y := 0; y < f.H; y++ {
		for x, v := range f.Row(y) {
			img.SetRGBA(x, y, color.RGBA{
				R: scaleChannel(base[0], v),
				G: scaleChannel(base[1], v),
				B: scaleChannel(base[2], v),
				A: 255,
			})
		}
	}
	return img
}

func scaleChannel(c uint8, v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, float64(c)*v)))
}
