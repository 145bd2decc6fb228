// Package config provides configuration loading and access for the generators.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/planetforge/compose"
	"github.com/pthm-cable/planetforge/noise"
	"github.com/pthm-cable/planetforge/stamp"
	"github.com/pthm-cable/planetforge/surface"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all generation parameters.
type Config struct {
	Output      OutputConfig      `yaml:"output"`
	Terrestrial TerrestrialConfig `yaml:"terrestrial"`
	GasGiants   GasGiantConfig    `yaml:"gas_giants"`
	Stars       StarConfig        `yaml:"stars"`
	Asteroids   AsteroidConfig    `yaml:"asteroids"`
	Rings       RingConfig        `yaml:"rings"`
	Mesh        MeshConfig        `yaml:"mesh"`
	Animation   compose.Timeline  `yaml:"animation"`
	Batch       BatchConfig       `yaml:"batch"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// OutputConfig selects export formats.
type OutputConfig struct {
	Width        int    `yaml:"width"`
	Height       int    `yaml:"height"`
	Format       string `yaml:"format"`        // png, jpeg, bmp or tiff for opaque maps
	JPEGQuality  int    `yaml:"jpeg_quality"`  // 1-100
	FrameFormat  string `yaml:"frame_format"`  // gif or png (numbered frames)
	FrameDelay   int    `yaml:"frame_delay"`   // GIF delay in 1/100 s
	WriteStats   bool   `yaml:"write_stats"`   // stats.csv next to the maps
	MeshFileName string `yaml:"mesh_filename"` // Empty uses the preset name
}

// TerrestrialConfig holds the Earth-like planet pipeline.
type TerrestrialConfig struct {
	Elevation          noise.Params         `yaml:"elevation"`
	Temperature        noise.Params         `yaml:"temperature"`
	Moisture           noise.Params         `yaml:"moisture"`
	ElevationSmoothing float64              `yaml:"elevation_smoothing"` // Blur before classification
	OceanFraction      float64              `yaml:"ocean_fraction"`      // 0 keeps the fixed ocean threshold
	Biomes             surface.BiomeTable   `yaml:"biomes"`
	Specular           surface.Reflectivity `yaml:"specular"`
	Bump               surface.BumpParams   `yaml:"bump"`
	Lights             surface.LightParams  `yaml:"lights"`
	Clouds             surface.CloudParams  `yaml:"clouds"`
}

// GasPreset is one named gas giant look.
type GasPreset struct {
	Colors        []surface.RGB `yaml:"colors"`
	BandFrequency float64       `yaml:"band_frequency"`
	StormDensity  float64       `yaml:"storm_density"`
	Turbulence    float64       `yaml:"turbulence"`
}

// GasGiantConfig holds banded gas giant parameters.
type GasGiantConfig struct {
	Presets        map[string]GasPreset `yaml:"presets"`
	Bands          noise.Params         `yaml:"bands"`      // Scale is multiplied by band_frequency
	Turbulence     noise.Params         `yaml:"turbulence"` // Warps band phase
	BandsPerUnit   float64              `yaml:"bands_per_unit"`
	Warp           float64              `yaml:"warp"`      // Phase radians per unit turbulence
	NoiseMix       float64              `yaml:"noise_mix"` // Weight of raw band noise
	StormsPerUnit  float64              `yaml:"storms_per_unit"`
	StormRadius    stamp.Range          `yaml:"storm_radius"`
	StormIntensity stamp.Range          `yaml:"storm_intensity"`
	BackgroundBlur float64              `yaml:"background_blur"`
	DefaultPreset  string               `yaml:"default_preset"`
}

// StarPreset is one named stellar class.
type StarPreset struct {
	BaseColor          surface.RGB `yaml:"base_color"`
	FeatureScale       float64     `yaml:"feature_scale"`
	GranuleScale       float64     `yaml:"granule_scale"` // Granules across the image width
	SpotFrequency      float64     `yaml:"spot_frequency"`
	PulsationAmplitude float64     `yaml:"pulsation_amplitude"`
	RotationSpeed      float64     `yaml:"rotation_speed"`
}

// StarConfig holds star surface and animation parameters.
type StarConfig struct {
	Presets       map[string]StarPreset `yaml:"presets"`
	Granules      noise.Params          `yaml:"granules"` // Scale comes from the preset
	SpotsPerUnit  float64               `yaml:"spots_per_unit"`
	SpotRadius    stamp.Range           `yaml:"spot_radius"`
	SpotIntensity stamp.Range           `yaml:"spot_intensity"`
	NoiseWeight   float64               `yaml:"noise_weight"`
	SpotWeight    float64               `yaml:"spot_weight"`
	Blur          float64               `yaml:"blur"`
	DefaultPreset string                `yaml:"default_preset"`
}

// AsteroidPreset is one named asteroid body.
type AsteroidPreset struct {
	Noise       noise.Params `yaml:"noise"`
	CraterCount int          `yaml:"crater_count"`
	SizeRange   stamp.Range  `yaml:"size_range"` // Crater diameter in cells
	BaseColor   surface.RGB  `yaml:"base_color"`
	Variation   float64      `yaml:"variation"`
}

// AsteroidConfig holds cratered body parameters.
type AsteroidConfig struct {
	Presets       map[string]AsteroidPreset `yaml:"presets"`
	Smoothing     float64                   `yaml:"smoothing"`
	CraterDepth   float64                   `yaml:"crater_depth"`
	CraterRim     float64                   `yaml:"crater_rim"`
	AlbedoNoise   noise.Params              `yaml:"albedo_noise"`
	DefaultPreset string                    `yaml:"default_preset"`
}

// RingPreset is one named ring system.
type RingPreset struct {
	Colors       []surface.RGB `yaml:"colors"`
	Gaps         []float64     `yaml:"gaps"`       // Gap centers as a fraction of the ring height
	GapWidths    []float64     `yaml:"gap_widths"` // Full gap widths, same units
	Density      float64       `yaml:"density"`
	Transparency float64       `yaml:"transparency"`
	NoiseScale   float64       `yaml:"noise_scale"`
}

// RingConfig holds planetary ring parameters.
type RingConfig struct {
	Presets       map[string]RingPreset `yaml:"presets"`
	Noise         noise.Params          `yaml:"noise"` // Scale comes from the preset
	DefaultPreset string                `yaml:"default_preset"`
}

// MeshConfig holds displaced mesh settings.
type MeshConfig struct {
	Subdivisions int     `yaml:"subdivisions"`
	Displacement float64 `yaml:"displacement"`
}

// StarClass maps an effective temperature band to a star preset.
type StarClass struct {
	Below  float64 `yaml:"below"`
	Preset string  `yaml:"preset"`
}

// BatchConfig holds batch generation settings.
type BatchConfig struct {
	BaseDir         string            `yaml:"base_dir"`
	Workers         int               `yaml:"workers"` // 0 = GOMAXPROCS
	SkipExisting    bool              `yaml:"skip_existing"`
	Prefixes        map[string]string `yaml:"prefixes"` // Folder prefix per body kind
	MaxSeed         int64             `yaml:"max_seed"`
	StarTemperature stamp.Range       `yaml:"star_temperature"`
	StarClasses     []StarClass       `yaml:"star_classes"`
	AsteroidDensity stamp.Range       `yaml:"asteroid_density"`
	RingDensity     stamp.Range       `yaml:"ring_density"`
	OceanFraction   stamp.Range       `yaml:"ocean_fraction"`
	Report          string            `yaml:"report"`
	PerfReport      string            `yaml:"perf_report"`
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	GasPresetNames      []string
	StarPresetNames     []string
	AsteroidPresetNames []string
	RingPresetNames     []string
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file; preset maps merge by name
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.GasPresetNames = sortedKeys(c.GasGiants.Presets)
	c.Derived.StarPresetNames = sortedKeys(c.Stars.Presets)
	c.Derived.AsteroidPresetNames = sortedKeys(c.Asteroids.Presets)
	c.Derived.RingPresetNames = sortedKeys(c.Rings.Presets)

	// Star classes are matched in ascending temperature order
	sort.SliceStable(c.Batch.StarClasses, func(i, j int) bool {
		return c.Batch.StarClasses[i].Below < c.Batch.StarClasses[j].Below
	})

	if len(c.Terrestrial.Biomes.Colors) == 0 {
		c.Terrestrial.Biomes = surface.DefaultBiomeTable()
	}
}

// StarPresetFor returns the preset for an effective temperature. Temperatures
// above every class use the last one.
func (c *Config) StarPresetFor(temperature float64) string {
	classes := c.Batch.StarClasses
	for _, sc := range classes {
		if temperature < sc.Below {
			return sc.Preset
		}
	}
	if len(classes) == 0 {
		return c.Stars.DefaultPreset
	}
	return classes[len(classes)-1].Preset
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
