package body

import (
	"image"

	"github.com/pthm-cable/planetforge/compose"
	"github.com/pthm-cable/planetforge/field"
	"github.com/pthm-cable/planetforge/mesh"
	"github.com/pthm-cable/planetforge/telemetry"
)

// Map is one named output image. Field is the scalar source of gray maps and
// is nil for color maps.
type Map struct {
	Name  string
	Image image.Image
	Field *field.Field
}

// Result holds everything a request produced. Maps keep pipeline order.
type Result struct {
	Params *Params
	Maps   []Map
	Height *field.Field      // Primary scalar field, nil for rings
	Mesh   *mesh.Mesh        // Asteroids only
	Frames *compose.Sequence // Set when more than one frame was requested
	Perf   telemetry.PerfSample
}

// Map returns the named image.
func (r *Result) Map(name string) (image.Image, bool) {
	for _, m := range r.Maps {
		if m.Name == name {
			return m.Image, true
		}
	}
	return nil, false
}

// Stats summarizes every scalar map of the result.
func (r *Result) Stats(body string) []telemetry.FieldStats {
	var out []telemetry.FieldStats
	for _, m := range r.Maps {
		if m.Field != nil {
			out = append(out, telemetry.ComputeFieldStats(body, m.Name, m.Field))
		}
	}
	return out
}

func (r *Result) addGray(name string, f *field.Field, img image.Image) {
	r.Maps = append(r.Maps, Map{Name: name, Image: img, Field: f})
}

func (r *Result) addColor(name string, img image.Image) {
	r.Maps = append(r.Maps, Map{Name: name, Image: img})
}
