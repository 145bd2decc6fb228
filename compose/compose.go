// Package compose blends rendered layers and drives frame sequences over a
// time parameter.
package compose

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/pthm-cable/planetforge/field"
	"github.com/pthm-cable/planetforge/noise"
)

// Masked blends two images per pixel: a*m + b*(1-m), where m is the mask
// value in [0,1]. All inputs must cover the same w×h area.
func Masked(a, b image.Image, mask *field.Field) (*image.RGBA, error) {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Dx() != mask.W || ab.Dy() != mask.H || bb.Dx() != mask.W || bb.Dy() != mask.H {
		return nil, fmt.Errorf("%w: masked blend of %v and %v with %dx%d mask",
			noise.ErrInvalidParameter, ab.Size(), bb.Size(), mask.W, mask.H)
	}

	out := image.NewRGBA(image.Rect(0, 0, mask.W, mask.H))
	for y := 0; y < mask.H; y++ {
		for x := 0; x < mask.W; x++ {
			m := clamp01(mask.At(x, y))
			ca := color.RGBAModel.Convert(a.At(ab.Min.X+x, ab.Min.Y+y)).(color.RGBA)
			cb := color.RGBAModel.Convert(b.At(bb.Min.X+x, bb.Min.Y+y)).(color.RGBA)
			out.SetRGBA(x, y, color.RGBA{
				R: mix(ca.R, cb.R, m),
				G: mix(ca.G, cb.G, m),
				B: mix(ca.B, cb.B, m),
				A: mix(ca.A, cb.A, m),
			})
		}
	}
	return out, nil
}

// Over draws overlay on top of base using its alpha and returns a new image.
func Over(base, overlay image.Image) *image.RGBA {
	b := base.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), base, b.Min, draw.Src)
	draw.Draw(out, out.Bounds(), overlay, overlay.Bounds().Min, draw.Over)
	return out
}

func mix(a, b uint8, m float64) uint8 {
	return uint8(float64(a)*m + float64(b)*(1-m))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
