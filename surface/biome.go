package surface

import (
	"image"
	"image/color"

	"github.com/pthm-cable/planetforge/field"
)

// Biome labels a terrestrial surface class.
type Biome string

const (
	Ocean     Biome = "ocean"
	Beach     Biome = "beach"
	Snow      Biome = "snow"
	Mountain  Biome = "mountain"
	Forest    Biome = "forest"
	Desert    Biome = "desert"
	Grassland Biome = "grassland"
)

// RGB is an 8-bit color as it appears in config files.
type RGB [3]uint8

// RGBA returns the opaque color.
func (c RGB) RGBA() color.RGBA { return color.RGBA{R: c[0], G: c[1], B: c[2], A: 255} }

// Thresholds are the decision-tree cut points for Classify.
type Thresholds struct {
	Ocean             float64 `yaml:"ocean"`              // Elevation below this is ocean
	Beach             float64 `yaml:"beach"`              // Elevation below this is beach
	Peak              float64 `yaml:"peak"`               // Elevation above this is snow or mountain
	SnowTemperature   float64 `yaml:"snow_temperature"`   // Peaks colder than this are snow
	ForestMoisture    float64 `yaml:"forest_moisture"`    // Moister than this is forest
	DesertTemperature float64 `yaml:"desert_temperature"` // Hotter than this is desert
}

// BiomeTable pairs thresholds with the color of each biome.
type BiomeTable struct {
	Thresholds Thresholds    `yaml:"thresholds"`
	Colors     map[Biome]RGB `yaml:"colors"`
}

// DefaultBiomeTable returns the Earth-like table used when config omits one.
func DefaultBiomeTable() BiomeTable {
	return BiomeTable{
		Thresholds: Thresholds{
			Ocean:             0.40,
			Beach:             0.45,
			Peak:              0.80,
			SnowTemperature:   0.30,
			ForestMoisture:    0.70,
			DesertTemperature: 0.70,
		},
		Colors: map[Biome]RGB{
			Ocean:     {0, 0, 128},
			Beach:     {194, 178, 128},
			Forest:    {34, 139, 34},
			Grassland: {124, 252, 0},
			Mountain:  {139, 137, 137},
			Snow:      {255, 255, 255},
			Desert:    {210, 180, 140},
		},
	}
}

// Classify maps elevation, temperature and moisture to a biome. Every input,
// including values outside [0,1] and NaN, yields exactly one biome.
func (t BiomeTable) Classify(e, temp, moist float64) Biome {
	th := t.Thresholds
	switch {
	case e < th.Ocean:
		return Ocean
	case e < th.Beach:
		return Beach
	case e > th.Peak:
		if temp < th.SnowTemperature {
			return Snow
		}
		return Mountain
	case moist > th.ForestMoisture:
		return Forest
	case temp > th.DesertTemperature:
		return Desert
	default:
		return Grassland
	}
}

// Color returns the table color for b, or black when the table has none.
func (t BiomeTable) Color(b Biome) color.RGBA {
	c, ok := t.Colors[b]
	if !ok {
		return color.RGBA{A: 255}
	}
	return c.RGBA()
}

// BiomeMap classifies every cell and paints its color. All three fields must
// share dimensions.
func (t BiomeTable) BiomeMap(elev, temp, moist *field.Field) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, elev.W, elev.H))
	for y := 0; y < elev.H; y++ {
		for x := 0; x < elev.W; x++ {
			b := t.Classify(elev.At(x, y), temp.At(x, y), moist.At(x, y))
			img.SetRGBA(x, y, t.Color(b))
		}
	}
	return img
}

// Coverage counts cells per biome, for logging and reports.
func (t BiomeTable) Coverage(elev, temp, moist *field.Field) map[Biome]int {
	out := make(map[Biome]int)
	for i := range elev.Data {
		out[t.Classify(elev.Data[i], temp.Data[i], moist.Data[i])]++
	}
	return out
}
