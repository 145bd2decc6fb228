package surface

import (
	"image"
	"image/color"

	"github.com/pthm-cable/planetforge/field"
	"github.com/pthm-cable/planetforge/noise"
)

// CloudParams configures the cloud layer.
type CloudParams struct {
	Base         noise.Params `yaml:"base"`
	Detail       noise.Params `yaml:"detail"`
	Gap          noise.Params `yaml:"gap"`
	BaseWeight   float64      `yaml:"base_weight"`
	DetailWeight float64      `yaml:"detail_weight"`
	Density      float64      `yaml:"density"`       // Overall coverage multiplier
	GapFrequency float64      `yaml:"gap_frequency"` // Share of the gap layer that keeps cloud
	Smoothing    float64      `yaml:"smoothing"`     // Blur sigma
	Contrast     float64      `yaml:"contrast"`      // Power-law exponent; >1 sharpens
}

// CloudMask builds a [0,1] cloud cover field. Cells where the normalized gap
// layer falls below 1-GapFrequency are cleared to exactly zero before
// smoothing, which leaves visible holes in the cover.
func CloudMask(d noise.Domain, w, h int, p CloudParams) (*field.Field, error) {
	base, err := noise.SampleNormalized(d, w, h, p.Base)
	if err != nil {
		return nil, err
	}
	detail, err := noise.SampleNormalized(d, w, h, p.Detail)
	if err != nil {
		return nil, err
	}
	gaps, err := noise.SampleNormalized(d, w, h, p.Gap)
	if err != nil {
		return nil, err
	}

	cloud := field.New(w, h)
	cloud.AddScaled(p.BaseWeight, base)
	cloud.AddScaled(p.DetailWeight, detail)

	threshold := 1 - p.GapFrequency
	for i, g := range gaps.Data {
		if g < threshold {
			cloud.Data[i] = 0
		}
	}

	cloud.Scale(p.Density)
	cloud.Blur(p.Smoothing, EdgeFor(d))
	cloud.Normalize()
	cloud.Pow(p.Contrast)
	return cloud, nil
}

// CloudRGBA renders a cloud mask as white with alpha cloud*204+51, so even
// clear sky keeps a faint haze.
func CloudRGBA(mask *field.Field) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, mask.W, mask.H))
	for y := 0; y < mask.H; y++ {
		for x, v := range mask.Row(y) {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: toByte(v*204 + 51)})
		}
	}
	return img
}
