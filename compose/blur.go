package compose

import (
	"image"
	"image/color"

	"github.com/pthm-cable/planetforge/field"
)

// Blur returns a Gaussian-blurred copy of img. Each channel is blurred as a
// separate field with the given edge mode.
func Blur(img image.Image, sigma float64, edge field.Edge) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	var ch [4]*field.Field
	for i := range ch {
		ch[i] = field.New(w, h)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.RGBA)
			i := y*w + x
			ch[0].Data[i] = float64(c.R)
			ch[1].Data[i] = float64(c.G)
			ch[2].Data[i] = float64(c.B)
			ch[3].Data[i] = float64(c.A)
		}
	}
	for _, f := range ch {
		f.Blur(sigma, edge)
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < w*h; i++ {
		o := i * 4
		out.Pix[o+0] = channel(ch[0].Data[i])
		out.Pix[o+1] = channel(ch[1].Data[i])
		out.Pix[o+2] = channel(ch[2].Data[i])
		out.Pix[o+3] = channel(ch[3].Data[i])
	}
	return out
}

func channel(v float64) uint8 {
	return uint8(clamp01(v/255)*255 + 0.5)
}
