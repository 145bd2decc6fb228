// Package mesh builds sphere meshes and displaces them by a height field.
package mesh

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/planetforge/field"
	"github.com/pthm-cable/planetforge/noise"
)

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Vertices []r3.Vec
	Faces    [][3]int
}

// Clone returns a copy that shares no storage with m.
func (m *Mesh) Clone() *Mesh {
	out := &Mesh{
		Vertices: make([]r3.Vec, len(m.Vertices)),
		Faces:    make([][3]int, len(m.Faces)),
	}
	copy(out.Vertices, m.Vertices)
	copy(out.Faces, m.Faces)
	return out
}

// Icosphere returns a unit icosahedron subdivided the given number of times.
// Each pass splits every triangle into four and pushes the new midpoints out
// to the unit sphere. Vertex count is 10*4^n + 2.
func Icosphere(subdivisions int) (*Mesh, error) {
	if subdivisions < 0 {
		return nil, fmt.Errorf("%w: subdivisions must be >= 0, got %d", noise.ErrInvalidParameter, subdivisions)
	}

	t := (1 + math.Sqrt(5)) / 2
	m := &Mesh{
		Vertices: []r3.Vec{
			{X: -1, Y: t}, {X: 1, Y: t}, {X: -1, Y: -t}, {X: 1, Y: -t},
			{Y: -1, Z: t}, {Y: 1, Z: t}, {Y: -1, Z: -t}, {Y: 1, Z: -t},
			{X: t, Z: -1}, {X: t, Z: 1}, {X: -t, Z: -1}, {X: -t, Z: 1},
		},
		Faces: [][3]int{
			{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
			{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
			{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
			{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
		},
	}
	for i, v := range m.Vertices {
		m.Vertices[i] = r3.Unit(v)
	}
	for i := 0; i < subdivisions; i++ {
		m = subdivide(m)
	}
	return m, nil
}

func subdivide(m *Mesh) *Mesh {
	verts := make([]r3.Vec, len(m.Vertices), len(m.Vertices)+len(m.Faces)*3/2)
	copy(verts, m.Vertices)
	faces := make([][3]int, 0, len(m.Faces)*4)
	midpoints := make(map[[2]int]int, len(m.Faces)*3/2)

	mid := func(a, b int) int {
		key := [2]int{min(a, b), max(a, b)}
		if i, ok := midpoints[key]; ok {
			return i
		}
		verts = append(verts, r3.Unit(r3.Scale(0.5, r3.Add(m.Vertices[a], m.Vertices[b]))))
		midpoints[key] = len(verts) - 1
		return len(verts) - 1
	}

	for _, f := range m.Faces {
		a, b, c := f[0], f[1], f[2]
		ab, bc, ca := mid(a, b), mid(b, c), mid(c, a)
		faces = append(faces,
			[3]int{a, ab, ca},
			[3]int{b, bc, ab},
			[3]int{c, ca, bc},
			[3]int{ab, bc, ca},
		)
	}
	return &Mesh{Vertices: verts, Faces: faces}
}

// UV returns the equirectangular texture coordinate of a direction:
// u = 0.5 + atan2(z, x)/2π, v = 0.5 - asin(y)/π.
func UV(dir r3.Vec) (u, v float64) {
	u = 0.5 + math.Atan2(dir.Z, dir.X)/(2*math.Pi)
	v = 0.5 - math.Asin(math.Max(-1, math.Min(1, dir.Y)))/math.Pi
	return u, v
}

// Displace returns a copy of base with every vertex pushed along its own
// direction by 1 + height*factor, height being the field sample at the
// vertex's UV. Columns wrap and rows clamp. Faces are copied unchanged.
func Displace(base *Mesh, heights *field.Field, factor float64) *Mesh {
	out := base.Clone()
	for i, v := range out.Vertices {
		n := r3.Norm(v)
		if n == 0 {
			continue
		}
		u, t := UV(r3.Scale(1/n, v))
		x := int(math.Floor(u * float64(heights.W)))
		y := int(math.Floor(t * float64(heights.H)))
		h := heights.Wrapped(x, y)
		out.Vertices[i] = r3.Scale(1+h*factor, v)
	}
	return out
}
