// Package noise samples coherent multi-octave noise over planar, spherical and
// radial raster domains.
package noise

import (
	"fmt"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// Basis names a coherent noise implementation.
type Basis string

const (
	// BasisSimplex is OpenSimplex noise, the default.
	BasisSimplex Basis = "simplex"
	// BasisPerlin is classic gradient (Perlin) noise.
	BasisPerlin Basis = "perlin"
)

// Source evaluates a single octave of coherent noise in roughly [-1,1].
// Implementations must be safe for concurrent readers.
type Source interface {
	Eval3(x, y, z float64) float64
	Eval4(x, y, z, w float64) float64
}

// NewSource creates a seeded noise source for the given basis.
// An empty basis selects simplex.
func NewSource(basis Basis, seed int64) (Source, error) {
	switch basis {
	case "", BasisSimplex:
		return opensimplex.New(seed), nil
	case BasisPerlin:
		return newPerlinSource(seed), nil
	default:
		return nil, fmt.Errorf("%w: unknown noise basis %q", ErrInvalidParameter, basis)
	}
}

// perlinTimeSkew offsets the 3D lookup per unit of the fourth coordinate so
// time slices do not line up with lattice planes.
const perlinTimeSkew = 0.61803398875

// perlinSource adapts a single-octave Perlin generator to Source.
// Octaves are accumulated by the sampler, so the generator runs with n=1.
type perlinSource struct {
	p *perlin.Perlin
}

func newPerlinSource(seed int64) *perlinSource {
	return &perlinSource{p: perlin.NewPerlin(2, 2, 1, seed)}
}

// Eval3 returns 3D Perlin noise.
func (s *perlinSource) Eval3(x, y, z float64) float64 {
	return s.p.Noise3D(x, y, z)
}

// Eval4 emulates a fourth dimension by sliding the 3D lookup along a skewed
// axis. Continuous in w, which is all animation needs.
func (s *perlinSource) Eval4(x, y, z, w float64) float64 {
	return s.p.Noise3D(x+w*perlinTimeSkew, y, z+w)
}
