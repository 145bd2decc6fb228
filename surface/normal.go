package surface

import (
	"image"
	"image/color"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/planetforge/field"
)

// Normals computes a unit surface normal per cell from a height field.
// Gradients use central differences inside the grid and one-sided
// differences on the borders.
func Normals(f *field.Field) []r3.Vec {
	out := make([]r3.Vec, len(f.Data))
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			dx := gradient(f, x, y, 1, 0)
			dy := gradient(f, x, y, 0, 1)
			out[f.Index(x, y)] = r3.Unit(r3.Vec{X: -dx, Y: -dy, Z: 1})
		}
	}
	return out
}

// gradient returns the derivative along (sx, sy), a unit axis step.
func gradient(f *field.Field, x, y, sx, sy int) float64 {
	n := f.W
	i := x
	if sy != 0 {
		n = f.H
		i = y
	}
	if n < 2 {
		return 0
	}
	switch i {
	case 0:
		return f.At(x+sx, y+sy) - f.At(x, y)
	case n - 1:
		return f.At(x, y) - f.At(x-sx, y-sy)
	default:
		return (f.At(x+sx, y+sy) - f.At(x-sx, y-sy)) / 2
	}
}

// NormalMap encodes Normals into an opaque RGB texture, mapping each
// component from [-1,1] to [0,255].
func NormalMap(f *field.Field) *image.RGBA {
	normals := Normals(f)
	img := image.NewRGBA(image.Rect(0, 0, f.W, f.H))
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			n := normals[f.Index(x, y)]
			img.SetRGBA(x, y, color.RGBA{
				R: encodeComponent(n.X),
				G: encodeComponent(n.Y),
				B: encodeComponent(n.Z),
				A: 255,
			})
		}
	}
	return img
}

func encodeComponent(c float64) uint8 {
	return toByte((c*0.5 + 0.5) * 255)
}

// toByte truncates like a uint8 cast after clamping to the byte range.
func toByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
