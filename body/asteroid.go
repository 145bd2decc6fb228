package body

import (
	"github.com/pthm-cable/planetforge/mesh"
	"github.com/pthm-cable/planetforge/noise"
	"github.com/pthm-cable/planetforge/stamp"
	"github.com/pthm-cable/planetforge/surface"
	"github.com/pthm-cable/planetforge/telemetry"
)

// asteroid builds a cratered height field, its normal and albedo maps, and a
// displaced icosphere.
func asteroid(p *Params, timer *telemetry.PhaseTimer) (*Result, error) {
	ap := p.Asteroid
	w, h := p.Width, p.Height
	d := noise.Spherical{}
	edge := surface.EdgeFor(d)

	timer.StartPhase(telemetry.PhaseNoise)
	relief, err := noise.SampleNormalized(d, w, h, ap.Noise)
	if err != nil {
		return nil, err
	}
	variation, err := noise.SampleUnit(d, w, h, ap.AlbedoNoise)
	if err != nil {
		return nil, err
	}

	timer.StartPhase(telemetry.PhaseStamps)
	craters := stamp.Craters(stamp.NewRand(p.Seed), w, h, ap.CraterCount, ap.SizeRange, ap.CraterDepth, ap.CraterRim)

	timer.StartPhase(telemetry.PhaseAssemble)
	height, err := surface.Assemble(
		[]surface.Layer{{Field: relief, Weight: 1}},
		surface.Smoothing{Sigma: ap.Smoothing, Edge: edge},
		craters,
	)
	if err != nil {
		return nil, err
	}

	timer.StartPhase(telemetry.PhaseDerive)
	variation.Apply(func(v float64) float64 { return (v + 1) / 2 })
	albedo := surface.Albedo(height, variation, ap.BaseColor, ap.Variation)

	timer.StartPhase(telemetry.PhaseMesh)
	base, err := mesh.Icosphere(ap.Subdivisions)
	if err != nil {
		return nil, err
	}

	res := &Result{Params: p, Height: height, Mesh: mesh.Displace(base, height, ap.Displacement)}
	res.addGray(MapHeight, height, surface.Gray(height))
	res.addColor(MapNormal, surface.NormalMap(height))
	res.addColor(MapAlbedo, albedo)
	return res, nil
}
