package body

import (
	"github.com/pthm-cable/planetforge/compose"
	"github.com/pthm-cable/planetforge/noise"
	"github.com/pthm-cable/planetforge/stamp"
	"github.com/pthm-cable/planetforge/surface"
	"github.com/pthm-cable/planetforge/telemetry"
)

// terrestrial builds the Earth-like map set: elevation, pole-faded biome
// colors, normal, bump, specular, clouds and night lights.
func terrestrial(p *Params, timer *telemetry.PhaseTimer) (*Result, error) {
	tp := p.Terrestrial
	w, h := p.Width, p.Height
	d := noise.Spherical{}
	edge := surface.EdgeFor(d)

	timer.StartPhase(telemetry.PhaseNoise)
	raw, err := noise.SampleNormalized(d, w, h, tp.Elevation)
	if err != nil {
		return nil, err
	}
	temp, err := noise.SampleNormalized(d, w, h, tp.Temperature)
	if err != nil {
		return nil, err
	}
	moist, err := noise.SampleNormalized(d, w, h, tp.Moisture)
	if err != nil {
		return nil, err
	}

	timer.StartPhase(telemetry.PhaseAssemble)
	surface.LatitudeCompensation(raw)
	elev, err := surface.Assemble([]surface.Layer{{Field: raw, Weight: 1}}, surface.Smoothing{}, nil)
	if err != nil {
		return nil, err
	}
	// Only biome classification reads the smoothed elevation.
	smooth, err := surface.Assemble(
		[]surface.Layer{{Field: elev, Weight: 1}},
		surface.Smoothing{Sigma: tp.Smoothing, Edge: edge},
		nil,
	)
	if err != nil {
		return nil, err
	}

	timer.StartPhase(telemetry.PhaseDerive)
	table := tp.Biomes.WithOceanFraction(smooth, tp.OceanFraction)
	base := table.BiomeMap(smooth, temp, moist)
	surface.FadeImage(base)

	bump := surface.Bump(elev, edge, tp.Bump)
	spec := surface.Specular(elev, table.Thresholds, tp.Specular)
	lights := surface.LightMap(stamp.NewRand(p.Seed), elev, table.Thresholds.Ocean, edge, tp.Lights)

	timer.StartPhase(telemetry.PhaseNoise)
	clouds, err := surface.CloudMask(d, w, h, tp.Clouds)
	if err != nil {
		return nil, err
	}

	timer.StartPhase(telemetry.PhaseCompose)
	cloudRGBA := surface.CloudRGBA(clouds)
	preview := compose.Over(base, cloudRGBA)

	res := &Result{Params: p, Height: elev}
	res.addGray(MapHeight, elev, surface.Gray(elev))
	res.addColor(MapBase, base)
	res.addColor(MapNormal, surface.NormalMap(elev))
	res.addGray(MapBump, bump, surface.Gray(bump))
	res.addGray(MapSpecular, spec, surface.Gray(spec))
	res.addGray(MapCloud, clouds, surface.Gray(clouds))
	res.addColor(MapCloudRGBA, cloudRGBA)
	res.addGray(MapLight, lights, surface.Gray(lights))
	res.addColor(MapPreview, preview)
	return res, nil
}
