package noise

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Domain maps raster coordinates onto the space the noise is sampled in.
// Map must be continuous; wrapping domains must return the same point (up to
// rounding) for x=0 and x=w.
type Domain interface {
	Map(x, y float64, w, h int) r3.Vec
	// Dims is 2 when only X and Y of the mapped point are meaningful.
	Dims() int
}

// Planar passes raster coordinates through, divided by the raster width so
// that Scale counts features across the image and aspect ratio is kept.
type Planar struct{}

// Map implements Domain.
func (Planar) Map(x, y float64, w, h int) r3.Vec {
	inv := 1 / float64(w)
	return r3.Vec{X: x * inv, Y: y * inv}
}

// Dims implements Domain.
func (Planar) Dims() int { return 2 }

// Spherical treats the raster as an equirectangular longitude/latitude map
// and samples on the unit sphere, so the x=0/x=W seam is continuous and each
// pole collapses to a single point.
type Spherical struct{}

// Map implements Domain.
func (Spherical) Map(x, y float64, w, h int) r3.Vec {
	theta := 2 * math.Pi * x / float64(w)
	phi := math.Pi * y / float64(h)
	sinPhi := math.Sin(phi)
	return r3.Vec{
		X: sinPhi * math.Cos(theta),
		Y: sinPhi * math.Sin(theta),
		Z: math.Cos(phi),
	}
}

// Dims implements Domain.
func (Spherical) Dims() int { return 3 }

// Radial maps rows to ring radius and columns to angle around the ring.
// The angle is embedded as (cos θ, sin θ) so the pattern wraps without a seam.
type Radial struct{}

// Map implements Domain.
func (Radial) Map(x, y float64, w, h int) r3.Vec {
	theta := 2 * math.Pi * x / float64(w)
	return r3.Vec{
		X: y / float64(h),
		Y: math.Cos(theta),
		Z: math.Sin(theta),
	}
}

// Dims implements Domain.
func (Radial) Dims() int { return 3 }
