package field

import "math"

// Edge selects how the blur samples outside the grid.
type Edge int

const (
	// EdgeReflect mirrors the grid about its border on both axes (d c b a | a b c d).
	EdgeReflect Edge = iota
	// EdgeWrapX wraps horizontally and reflects vertically, for longitude/latitude rasters.
	EdgeWrapX
)

// kernelTruncate is the kernel radius in standard deviations.
const kernelTruncate = 4.0

// Blur applies a separable Gaussian blur in place and returns f.
// sigma <= 0 leaves the field untouched.
func (f *Field) Blur(sigma float64, edge Edge) *Field {
	if sigma <= 0 {
		return f
	}
	kernel := gaussianKernel(sigma)
	radius := len(kernel) / 2
	tmp := make([]float64, len(f.Data))

	// Horizontal pass into tmp
	for y := 0; y < f.H; y++ {
		row := f.Row(y)
		out := tmp[y*f.W : (y+1)*f.W]
		for x := 0; x < f.W; x++ {
			var sum float64
			for k, w := range kernel {
				sx := x + k - radius
				if edge == EdgeWrapX {
					sx = modInt(sx, f.W)
				} else {
					sx = reflectIndex(sx, f.W)
				}
				sum += w * row[sx]
			}
			out[x] = sum
		}
	}

	// Vertical pass back into f
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			var sum float64
			for k, w := range kernel {
				sy := reflectIndex(y+k-radius, f.H)
				sum += w * tmp[sy*f.W+x]
			}
			f.Data[y*f.W+x] = sum
		}
	}
	return f
}

// gaussianKernel returns a normalized 1D kernel of odd length.
func gaussianKernel(sigma float64) []float64 {
	radius := int(kernelTruncate*sigma + 0.5)
	if radius < 1 {
		radius = 1
	}
	kernel := make([]float64, 2*radius+1)
	var sum float64
	for i := range kernel {
		d := float64(i - radius)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// reflectIndex folds i into [0,n) using half-sample symmetric reflection.
func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * n
	i = modInt(i, period)
	if i >= n {
		i = period - i - 1
	}
	return i
}
