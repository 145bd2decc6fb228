package body

import (
	"math"

	"github.com/pthm-cable/planetforge/compose"
	"github.com/pthm-cable/planetforge/field"
	"github.com/pthm-cable/planetforge/noise"
	"github.com/pthm-cable/planetforge/stamp"
	"github.com/pthm-cable/planetforge/surface"
	"github.com/pthm-cable/planetforge/telemetry"
)

// gasGiant builds latitude bands warped by turbulence, colors them through
// the preset ramp and keeps the bands sharp only inside storms.
func gasGiant(p *Params, timer *telemetry.PhaseTimer) (*Result, error) {
	gp := p.Gas
	w, h := p.Width, p.Height
	d := noise.Spherical{}
	edge := surface.EdgeFor(d)

	timer.StartPhase(telemetry.PhaseNoise)
	bandParams := gp.Bands
	bandParams.Scale *= math.Max(gp.BandFrequency, 1e-6)
	bandNoise, err := noise.SampleUnit(d, w, h, bandParams)
	if err != nil {
		return nil, err
	}
	turb, err := noise.SampleUnit(d, w, h, gp.TurbulenceMap)
	if err != nil {
		return nil, err
	}

	timer.StartPhase(telemetry.PhaseAssemble)
	bands := field.New(w, h)
	freq := 2 * math.Pi * gp.BandFrequency * gp.BandsPerUnit / float64(h)
	warp := gp.Turbulence * gp.Warp
	for y := 0; y < h; y++ {
		row := bands.Row(y)
		trow := turb.Row(y)
		for x := range row {
			row[x] = math.Sin(freq*float64(y) + warp*trow[x])
		}
	}
	pattern, err := surface.Assemble([]surface.Layer{
		{Field: bands, Weight: 1},
		{Field: bandNoise, Weight: gp.NoiseMix},
	}, surface.Smoothing{Edge: edge}, nil)
	if err != nil {
		return nil, err
	}

	timer.StartPhase(telemetry.PhaseStamps)
	storms := stamp.Storms(stamp.NewRand(p.Seed), w, h, gp.StormCount, gp.StormRadius, gp.StormIntensity)
	mask := stamp.StormMask(w, h, storms, gp.StormRadius.Max, edge)

	timer.StartPhase(telemetry.PhaseCompose)
	sharp := surface.Ramp(pattern, gp.Colors)
	soft := compose.Blur(sharp, gp.BackgroundBlur, edge)
	final, err := compose.Masked(sharp, soft, mask)
	if err != nil {
		return nil, err
	}

	res := &Result{Params: p, Height: pattern}
	res.addColor(MapSurface, final)
	res.addGray(MapHeight, pattern, surface.Gray(pattern))
	res.addGray(MapStormMask, mask, surface.Gray(mask))
	return res, nil
}
