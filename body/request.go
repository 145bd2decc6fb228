package body

import (
	"fmt"

	"github.com/pthm-cable/planetforge/compose"
	"github.com/pthm-cable/planetforge/config"
	"github.com/pthm-cable/planetforge/noise"
	"github.com/pthm-cable/planetforge/stamp"
	"github.com/pthm-cable/planetforge/surface"
)

// Request is one body to generate. Zero width or height uses the configured
// output resolution; an empty preset uses the kind's default preset.
type Request struct {
	Kind      Kind      `yaml:"kind"`
	Preset    string    `yaml:"preset,omitempty"`
	Seed      int64     `yaml:"seed"`
	Width     int       `yaml:"width,omitempty"`
	Height    int       `yaml:"height,omitempty"`
	Overrides Overrides `yaml:"overrides,omitempty"`
}

// Overrides replace single preset values. Nil fields keep the preset value.
// The noise fields apply to the kind's primary layer: elevation, bands,
// granules, asteroid relief or ring texture.
type Overrides struct {
	Scale              *float64      `yaml:"scale,omitempty"`
	Octaves            *int          `yaml:"octaves,omitempty"`
	Persistence        *float64      `yaml:"persistence,omitempty"`
	Lacunarity         *float64      `yaml:"lacunarity,omitempty"`
	Basis              *noise.Basis  `yaml:"basis,omitempty"`
	OceanFraction      *float64      `yaml:"ocean_fraction,omitempty"`
	CraterCount        *int          `yaml:"crater_count,omitempty"`
	SizeRange          *stamp.Range  `yaml:"size_range,omitempty"`
	BaseColor          *surface.RGB  `yaml:"base_color,omitempty"`
	Variation          *float64      `yaml:"variation,omitempty"`
	Colors             []surface.RGB `yaml:"colors,omitempty"`
	BandFrequency      *float64      `yaml:"band_frequency,omitempty"`
	StormDensity       *float64      `yaml:"storm_density,omitempty"`
	Turbulence         *float64      `yaml:"turbulence,omitempty"`
	Gaps               []float64     `yaml:"gaps,omitempty"`
	GapWidths          []float64     `yaml:"gap_widths,omitempty"`
	Density            *float64      `yaml:"density,omitempty"`
	Transparency       *float64      `yaml:"transparency,omitempty"`
	SpotFrequency      *float64      `yaml:"spot_frequency,omitempty"`
	PulsationAmplitude *float64      `yaml:"pulsation_amplitude,omitempty"`
	RotationSpeed      *float64      `yaml:"rotation_speed,omitempty"`
	Frames             *int          `yaml:"frame_count,omitempty"`
	Speed              *float64      `yaml:"animation_speed,omitempty"`
	Loop               *bool         `yaml:"loop,omitempty"`
	Subdivisions       *int          `yaml:"subdivisions,omitempty"`
	Displacement       *float64      `yaml:"displacement,omitempty"`
}

// Params is a request with every value resolved from config, preset and
// overrides. Exactly one of the per-kind records is set.
type Params struct {
	Kind      Kind             `yaml:"kind"`
	Preset    string           `yaml:"preset,omitempty"`
	Seed      int64            `yaml:"seed"`
	Width     int              `yaml:"width"`
	Height    int              `yaml:"height"`
	Animation compose.Timeline `yaml:"animation"`

	Terrestrial *TerrestrialParams `yaml:"terrestrial,omitempty"`
	Gas         *GasParams         `yaml:"gas,omitempty"`
	Star        *StarParams        `yaml:"star,omitempty"`
	Asteroid    *AsteroidParams    `yaml:"asteroid,omitempty"`
	Ring        *RingParams        `yaml:"ring,omitempty"`
}

// TerrestrialParams drive the Earth-like pipeline.
type TerrestrialParams struct {
	Elevation     noise.Params         `yaml:"elevation"`
	Temperature   noise.Params         `yaml:"temperature"`
	Moisture      noise.Params         `yaml:"moisture"`
	Smoothing     float64              `yaml:"smoothing"`
	OceanFraction float64              `yaml:"ocean_fraction"`
	Biomes        surface.BiomeTable   `yaml:"biomes"`
	Specular      surface.Reflectivity `yaml:"specular"`
	Bump          surface.BumpParams   `yaml:"bump"`
	Lights        surface.LightParams  `yaml:"lights"`
	Clouds        surface.CloudParams  `yaml:"clouds"`
}

// GasParams drive the banded gas giant pipeline.
type GasParams struct {
	Colors         []surface.RGB `yaml:"colors"`
	BandFrequency  float64       `yaml:"band_frequency"`
	StormDensity   float64       `yaml:"storm_density"`
	Turbulence     float64       `yaml:"turbulence"`
	Bands          noise.Params  `yaml:"bands"`
	TurbulenceMap  noise.Params  `yaml:"turbulence_noise"`
	BandsPerUnit   float64       `yaml:"bands_per_unit"`
	Warp           float64       `yaml:"warp"`
	NoiseMix       float64       `yaml:"noise_mix"`
	StormCount     int           `yaml:"storm_count"`
	StormRadius    stamp.Range   `yaml:"storm_radius"`
	StormIntensity stamp.Range   `yaml:"storm_intensity"`
	BackgroundBlur float64       `yaml:"background_blur"`
}

// StarParams drive the star surface and its animation.
type StarParams struct {
	BaseColor          surface.RGB  `yaml:"base_color"`
	FeatureScale       float64      `yaml:"feature_scale"`
	SpotFrequency      float64      `yaml:"spot_frequency"`
	PulsationAmplitude float64      `yaml:"pulsation_amplitude"`
	RotationSpeed      float64      `yaml:"rotation_speed"`
	Granules           noise.Params `yaml:"granules"`
	SpotCount          int          `yaml:"spot_count"`
	SpotRadius         stamp.Range  `yaml:"spot_radius"`
	SpotIntensity      stamp.Range  `yaml:"spot_intensity"`
	NoiseWeight        float64      `yaml:"noise_weight"`
	SpotWeight         float64      `yaml:"spot_weight"`
	Blur               float64      `yaml:"blur"`
}

// AsteroidParams drive the cratered body pipeline and its mesh.
type AsteroidParams struct {
	Noise        noise.Params `yaml:"noise"`
	CraterCount  int          `yaml:"crater_count"`
	SizeRange    stamp.Range  `yaml:"size_range"`
	BaseColor    surface.RGB  `yaml:"base_color"`
	Variation    float64      `yaml:"variation"`
	Smoothing    float64      `yaml:"smoothing"`
	CraterDepth  float64      `yaml:"crater_depth"`
	CraterRim    float64      `yaml:"crater_rim"`
	AlbedoNoise  noise.Params `yaml:"albedo_noise"`
	Subdivisions int          `yaml:"subdivisions"`
	Displacement float64      `yaml:"displacement"`
}

// RingParams drive the ring texture pipeline.
type RingParams struct {
	Colors       []surface.RGB `yaml:"colors"`
	Gaps         []float64     `yaml:"gaps"`
	GapWidths    []float64     `yaml:"gap_widths"`
	Density      float64       `yaml:"density"`
	Transparency float64       `yaml:"transparency"`
	Noise        noise.Params  `yaml:"noise"`
}

// Seed offsets keep the layers of one request decorrelated.
const (
	seedElevation = iota
	seedTemperature
	seedMoisture
	seedCloudBase
	seedCloudDetail
	seedCloudGap
	seedTurbulence
	seedAlbedo
)

// Resolve merges config, preset and overrides into Params and validates
// everything a pipeline would otherwise fail on halfway through.
func Resolve(cfg *config.Config, req Request) (*Params, error) {
	p := &Params{
		Kind:      req.Kind,
		Seed:      req.Seed,
		Width:     req.Width,
		Height:    req.Height,
		Animation: cfg.Animation,
	}
	if p.Width == 0 {
		p.Width = cfg.Output.Width
	}
	if p.Height == 0 {
		p.Height = cfg.Output.Height
	}
	if p.Width <= 0 || p.Height <= 0 {
		return nil, fmt.Errorf("%w: resolution must be positive, got %dx%d", ErrInvalidParameter, p.Width, p.Height)
	}

	o := req.Overrides
	setInt(&p.Animation.Frames, o.Frames)
	setFloat(&p.Animation.Speed, o.Speed)
	if o.Loop != nil {
		p.Animation.Loop = *o.Loop
	}
	if err := p.Animation.Validate(); err != nil {
		return nil, err
	}

	var err error
	switch req.Kind {
	case Terrestrial:
		err = p.resolveTerrestrial(cfg, req)
	case GasGiant:
		err = p.resolveGas(cfg, req)
	case Star:
		err = p.resolveStar(cfg, req)
	case Asteroid:
		err = p.resolveAsteroid(cfg, req)
	case Ring:
		err = p.resolveRing(cfg, req)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownBodyType, req.Kind)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Params) resolveTerrestrial(cfg *config.Config, req Request) error {
	if req.Preset != "" && req.Preset != string(Terrestrial) {
		return fmt.Errorf("%w: terrestrial has no preset %q", ErrUnknownPreset, req.Preset)
	}
	tc := cfg.Terrestrial
	o := req.Overrides
	tp := &TerrestrialParams{
		Elevation:     overrideNoise(tc.Elevation, o, req.Seed+seedElevation),
		Temperature:   seeded(tc.Temperature, req.Seed+seedTemperature),
		Moisture:      seeded(tc.Moisture, req.Seed+seedMoisture),
		Smoothing:     tc.ElevationSmoothing,
		OceanFraction: tc.OceanFraction,
		Biomes:        tc.Biomes,
		Specular:      tc.Specular,
		Bump:          tc.Bump,
		Lights:        tc.Lights,
		Clouds:        tc.Clouds,
	}
	setFloat(&tp.OceanFraction, o.OceanFraction)
	tp.Clouds.Base = seeded(tp.Clouds.Base, req.Seed+seedCloudBase)
	tp.Clouds.Detail = seeded(tp.Clouds.Detail, req.Seed+seedCloudDetail)
	tp.Clouds.Gap = seeded(tp.Clouds.Gap, req.Seed+seedCloudGap)

	if tp.OceanFraction < 0 || tp.OceanFraction >= 1 {
		return fmt.Errorf("%w: ocean fraction must be in [0,1), got %g", ErrInvalidParameter, tp.OceanFraction)
	}
	if err := validateNoise(tp.Elevation, tp.Temperature, tp.Moisture, tp.Clouds.Base, tp.Clouds.Detail, tp.Clouds.Gap); err != nil {
		return err
	}
	p.Preset = string(Terrestrial)
	p.Terrestrial = tp
	return nil
}

func (p *Params) resolveGas(cfg *config.Config, req Request) error {
	gc := cfg.GasGiants
	name := presetName(req.Preset, gc.DefaultPreset)
	preset, ok := gc.Presets[name]
	if !ok {
		return fmt.Errorf("%w: gas giant %q", ErrUnknownPreset, name)
	}
	o := req.Overrides
	gp := &GasParams{
		Colors:         preset.Colors,
		BandFrequency:  preset.BandFrequency,
		StormDensity:   preset.StormDensity,
		Turbulence:     preset.Turbulence,
		Bands:          overrideNoise(gc.Bands, o, req.Seed),
		TurbulenceMap:  seeded(gc.Turbulence, req.Seed+seedTurbulence),
		BandsPerUnit:   gc.BandsPerUnit,
		Warp:           gc.Warp,
		NoiseMix:       gc.NoiseMix,
		StormRadius:    gc.StormRadius,
		StormIntensity: gc.StormIntensity,
		BackgroundBlur: gc.BackgroundBlur,
	}
	if o.Colors != nil {
		gp.Colors = o.Colors
	}
	setFloat(&gp.BandFrequency, o.BandFrequency)
	setFloat(&gp.StormDensity, o.StormDensity)
	setFloat(&gp.Turbulence, o.Turbulence)
	gp.StormCount = int(gp.StormDensity * gc.StormsPerUnit)

	if len(gp.Colors) == 0 {
		return fmt.Errorf("%w: gas giant %q has no colors", ErrInvalidParameter, name)
	}
	if gp.StormCount < 0 {
		return fmt.Errorf("%w: storm density must be >= 0, got %g", ErrInvalidParameter, gp.StormDensity)
	}
	if err := validateRange("storm radius", gp.StormRadius); err != nil {
		return err
	}
	if err := validateNoise(gp.Bands, gp.TurbulenceMap); err != nil {
		return err
	}
	p.Preset = name
	p.Gas = gp
	return nil
}

func (p *Params) resolveStar(cfg *config.Config, req Request) error {
	sc := cfg.Stars
	name := presetName(req.Preset, sc.DefaultPreset)
	preset, ok := sc.Presets[name]
	if !ok {
		return fmt.Errorf("%w: star %q", ErrUnknownPreset, name)
	}
	o := req.Overrides
	granules := sc.Granules
	granules.Scale = preset.GranuleScale
	sp := &StarParams{
		BaseColor:          preset.BaseColor,
		FeatureScale:       preset.FeatureScale,
		SpotFrequency:      preset.SpotFrequency,
		PulsationAmplitude: preset.PulsationAmplitude,
		RotationSpeed:      preset.RotationSpeed,
		Granules:           overrideNoise(granules, o, req.Seed),
		SpotRadius:         sc.SpotRadius,
		SpotIntensity:      sc.SpotIntensity,
		NoiseWeight:        sc.NoiseWeight,
		SpotWeight:         sc.SpotWeight,
		Blur:               sc.Blur,
	}
	if o.BaseColor != nil {
		sp.BaseColor = *o.BaseColor
	}
	setFloat(&sp.SpotFrequency, o.SpotFrequency)
	setFloat(&sp.PulsationAmplitude, o.PulsationAmplitude)
	setFloat(&sp.RotationSpeed, o.RotationSpeed)
	sp.SpotCount = int(sp.SpotFrequency * sc.SpotsPerUnit)

	if sp.SpotCount < 0 {
		return fmt.Errorf("%w: spot frequency must be >= 0, got %g", ErrInvalidParameter, sp.SpotFrequency)
	}
	if err := validateRange("spot radius", sp.SpotRadius); err != nil {
		return err
	}
	if err := validateNoise(sp.Granules); err != nil {
		return err
	}
	p.Preset = name
	p.Star = sp
	return nil
}

func (p *Params) resolveAsteroid(cfg *config.Config, req Request) error {
	ac := cfg.Asteroids
	name := presetName(req.Preset, ac.DefaultPreset)
	preset, ok := ac.Presets[name]
	if !ok {
		return fmt.Errorf("%w: asteroid %q", ErrUnknownPreset, name)
	}
	o := req.Overrides
	ap := &AsteroidParams{
		Noise:        overrideNoise(preset.Noise, o, req.Seed),
		CraterCount:  preset.CraterCount,
		SizeRange:    preset.SizeRange,
		BaseColor:    preset.BaseColor,
		Variation:    preset.Variation,
		Smoothing:    ac.Smoothing,
		CraterDepth:  ac.CraterDepth,
		CraterRim:    ac.CraterRim,
		AlbedoNoise:  seeded(ac.AlbedoNoise, req.Seed+seedAlbedo),
		Subdivisions: cfg.Mesh.Subdivisions,
		Displacement: cfg.Mesh.Displacement,
	}
	setInt(&ap.CraterCount, o.CraterCount)
	if o.SizeRange != nil {
		ap.SizeRange = *o.SizeRange
	}
	if o.BaseColor != nil {
		ap.BaseColor = *o.BaseColor
	}
	setFloat(&ap.Variation, o.Variation)
	setInt(&ap.Subdivisions, o.Subdivisions)
	setFloat(&ap.Displacement, o.Displacement)

	if ap.CraterCount < 0 {
		return fmt.Errorf("%w: crater count must be >= 0, got %d", ErrInvalidParameter, ap.CraterCount)
	}
	if err := validateRange("crater size", ap.SizeRange); err != nil {
		return err
	}
	if ap.Subdivisions < 0 {
		return fmt.Errorf("%w: subdivisions must be >= 0, got %d", ErrInvalidParameter, ap.Subdivisions)
	}
	if err := validateNoise(ap.Noise, ap.AlbedoNoise); err != nil {
		return err
	}
	p.Preset = name
	p.Asteroid = ap
	return nil
}

func (p *Params) resolveRing(cfg *config.Config, req Request) error {
	rc := cfg.Rings
	name := presetName(req.Preset, rc.DefaultPreset)
	preset, ok := rc.Presets[name]
	if !ok {
		return fmt.Errorf("%w: ring %q", ErrUnknownPreset, name)
	}
	o := req.Overrides
	ringNoise := rc.Noise
	ringNoise.Scale = preset.NoiseScale
	rp := &RingParams{
		Colors:       preset.Colors,
		Gaps:         preset.Gaps,
		GapWidths:    preset.GapWidths,
		Density:      preset.Density,
		Transparency: preset.Transparency,
		Noise:        overrideNoise(ringNoise, o, req.Seed),
	}
	if o.Colors != nil {
		rp.Colors = o.Colors
	}
	if o.Gaps != nil {
		rp.Gaps = o.Gaps
	}
	if o.GapWidths != nil {
		rp.GapWidths = o.GapWidths
	}
	setFloat(&rp.Density, o.Density)
	setFloat(&rp.Transparency, o.Transparency)

	if len(rp.Colors) == 0 {
		return fmt.Errorf("%w: ring %q has no colors", ErrInvalidParameter, name)
	}
	if len(rp.Gaps) != len(rp.GapWidths) {
		return fmt.Errorf("%w: %d gaps but %d gap widths", ErrInvalidParameter, len(rp.Gaps), len(rp.GapWidths))
	}
	if err := validateNoise(rp.Noise); err != nil {
		return err
	}
	p.Preset = name
	p.Ring = rp
	return nil
}

func presetName(requested, fallback string) string {
	if requested == "" {
		return fallback
	}
	return requested
}

func seeded(np noise.Params, seed int64) noise.Params {
	np.Seed = seed
	return np
}

func overrideNoise(np noise.Params, o Overrides, seed int64) noise.Params {
	np.Seed = seed
	setFloat(&np.Scale, o.Scale)
	setInt(&np.Octaves, o.Octaves)
	setFloat(&np.Persistence, o.Persistence)
	setFloat(&np.Lacunarity, o.Lacunarity)
	if o.Basis != nil {
		np.Basis = *o.Basis
	}
	return np
}

func validateNoise(layers ...noise.Params) error {
	for _, np := range layers {
		if err := np.Validate(); err != nil {
			return err
		}
		if _, err := noise.NewSource(np.Basis, np.Seed); err != nil {
			return err
		}
	}
	return nil
}

func validateRange(name string, r stamp.Range) error {
	if r.Min < 0 || r.Max < r.Min {
		return fmt.Errorf("%w: %s range [%g, %g] is invalid", ErrInvalidParameter, name, r.Min, r.Max)
	}
	return nil
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
