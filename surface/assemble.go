// Package surface assembles normalized scalar fields from noise layers and
// stamps, and derives the secondary maps (normals, biomes, specular, lights,
// clouds, bump, albedo) that make up a body's texture set.
package surface

import (
	"fmt"

	"github.com/pthm-cable/planetforge/field"
	"github.com/pthm-cable/planetforge/noise"
	"github.com/pthm-cable/planetforge/stamp"
)

// ErrInvalidParameter is shared with the noise package so callers can test a
// single sentinel for any bad input along the pipeline.
var ErrInvalidParameter = noise.ErrInvalidParameter

// Layer is one weighted contribution to an assembled field.
type Layer struct {
	Field  *field.Field
	Weight float64
}

// Smoothing configures the Gaussian pass applied before stamping.
type Smoothing struct {
	Sigma float64
	Edge  field.Edge
}

// Assemble sums the weighted layers, smooths the sum, applies stamps in order
// and normalizes the result to [0,1]. Stamping always finishes before the
// min/max scan. The input layers are left untouched.
func Assemble(layers []Layer, smoothing Smoothing, stamps []stamp.Stamp) (*field.Field, error) {
	if len(layers) == 0 {
		return nil, fmt.Errorf("%w: assemble needs at least one layer", ErrInvalidParameter)
	}
	first := layers[0].Field
	for i, l := range layers {
		if l.Field == nil {
			return nil, fmt.Errorf("%w: layer %d is nil", ErrInvalidParameter, i)
		}
		if !l.Field.SameSize(first) {
			return nil, fmt.Errorf("%w: layer %d is %dx%d, want %dx%d",
				ErrInvalidParameter, i, l.Field.W, l.Field.H, first.W, first.H)
		}
	}

	out := field.New(first.W, first.H)
	for _, l := range layers {
		out.AddScaled(l.Weight, l.Field)
	}
	out.Blur(smoothing.Sigma, smoothing.Edge)
	stamp.ApplyAll(out, stamps)
	out.Normalize()
	return out, nil
}
