package surface

import (
	"errors"
	"image"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/planetforge/field"
	"github.com/pthm-cable/planetforge/noise"
	"github.com/pthm-cable/planetforge/stamp"
)

func rampField(w, h int) *field.Field {
	f := field.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f.Set(x, y, float64(x+y))
		}
	}
	return f
}

func TestAssembleNormalizes(t *testing.T) {
	a := rampField(16, 8)
	b := rampField(16, 8)
	b.Scale(-0.5)

	out, err := Assemble([]Layer{{a, 1}, {b, 0.5}}, Smoothing{Sigma: 1}, []stamp.Stamp{
		{Kind: stamp.KindCrater, X: 8, Y: 4, Radius: 3, Intensity: -1, Rim: 0.5},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lo, hi := out.MinMax()
	if lo != 0 || hi != 1 {
		t.Errorf("expected range [0,1], got [%f,%f]", lo, hi)
	}
	if a.At(3, 3) != 6 {
		t.Error("expected input layers untouched")
	}
}

func TestAssembleFlatFieldIsZero(t *testing.T) {
	f := field.New(8, 8)
	f.Fill(3)
	out, err := Assemble([]Layer{{f, 1}}, Smoothing{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range out.Data {
		if v != 0 {
			t.Fatalf("cell %d: expected 0 for flat field, got %f", i, v)
		}
	}
}

func TestAssembleErrors(t *testing.T) {
	if _, err := Assemble(nil, Smoothing{}, nil); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("no layers: expected ErrInvalidParameter, got %v", err)
	}
	_, err := Assemble([]Layer{{field.New(4, 4), 1}, {field.New(5, 4), 1}}, Smoothing{}, nil)
	if !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("size mismatch: expected ErrInvalidParameter, got %v", err)
	}
	if !errors.Is(err, noise.ErrInvalidParameter) {
		t.Error("expected the shared noise sentinel")
	}
}

func TestNormalsAreUnit(t *testing.T) {
	f, err := noise.SampleNormalized(noise.Planar{}, 32, 16, noise.Params{Scale: 6, Octaves: 4, Persistence: 0.5, Lacunarity: 2, Seed: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.Scale(40)
	for i, n := range Normals(f) {
		if math.Abs(r3.Norm(n)-1) > 1e-9 {
			t.Fatalf("normal %d has length %f", i, r3.Norm(n))
		}
		if n.Z <= 0 {
			t.Fatalf("normal %d points down: %v", i, n)
		}
	}
}

func TestNormalsFlatAndSlope(t *testing.T) {
	flat := field.New(4, 4)
	for _, n := range Normals(flat) {
		if n != (r3.Vec{Z: 1}) {
			t.Fatalf("expected straight-up normal on flat field, got %v", n)
		}
	}

	// Height rises one unit per column: gradient 1 everywhere, borders included.
	slope := field.New(5, 3)
	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			slope.Set(x, y, float64(x))
		}
	}
	want := r3.Unit(r3.Vec{X: -1, Z: 1})
	for i, n := range Normals(slope) {
		if r3.Norm(r3.Sub(n, want)) > 1e-12 {
			t.Errorf("cell %d: expected %v, got %v", i, want, n)
		}
	}
}

func TestNormalMapEncoding(t *testing.T) {
	img := NormalMap(field.New(2, 2))
	c := img.RGBAAt(0, 0)
	if c.R != 127 || c.G != 127 || c.B != 255 || c.A != 255 {
		t.Errorf("expected (127,127,255,255) for flat normal, got %v", c)
	}
}

func TestClassifyDecisionTree(t *testing.T) {
	table := DefaultBiomeTable()
	tests := []struct {
		name           string
		e, temp, moist float64
		want           Biome
	}{
		{"deep ocean", 0.1, 0.9, 0.9, Ocean},
		{"beach", 0.42, 0.5, 0.5, Beach},
		{"cold peak", 0.9, 0.1, 0.5, Snow},
		{"warm peak", 0.9, 0.5, 0.9, Mountain},
		{"wet lowland", 0.6, 0.9, 0.8, Forest},
		{"hot dry", 0.6, 0.8, 0.2, Desert},
		{"temperate", 0.6, 0.5, 0.5, Grassland},
		{"ocean edge is beach", 0.40, 0.5, 0.5, Beach},
		{"peak edge is not peak", 0.80, 0.1, 0.5, Grassland},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := table.Classify(tt.e, tt.temp, tt.moist); got != tt.want {
				t.Errorf("Classify(%v, %v, %v) = %s, want %s", tt.e, tt.temp, tt.moist, got, tt.want)
			}
		})
	}
}

func TestClassifyTotal(t *testing.T) {
	table := DefaultBiomeTable()
	valid := map[Biome]bool{Ocean: true, Beach: true, Snow: true, Mountain: true, Forest: true, Desert: true, Grassland: true}
	values := []float64{-1, 0, 0.1, 0.3, 0.4, 0.45, 0.5, 0.7, 0.8, 0.95, 1, 2, math.NaN()}
	for _, e := range values {
		for _, temp := range values {
			for _, m := range values {
				b := table.Classify(e, temp, m)
				if !valid[b] {
					t.Fatalf("Classify(%v, %v, %v) returned unknown biome %q", e, temp, m, b)
				}
				if _, ok := table.Colors[b]; !ok {
					t.Fatalf("biome %q has no color", b)
				}
			}
		}
	}
}

func TestSpecularBands(t *testing.T) {
	elev := field.FromRows([][]float64{{0.1, 0.5, 0.9}})
	refl := Specular(elev, DefaultBiomeTable().Thresholds, Reflectivity{Ocean: 0.8, Snow: 0.6, Land: 0.3})
	if math.Abs(refl.At(0, 0)-1) > 1e-12 || math.Abs(refl.At(2, 0)-0.6) > 1e-12 || refl.At(1, 0) != 0 {
		t.Errorf("expected ocean 1, snow 0.6, land 0 after normalization, got %v", refl.Data)
	}
}

func TestPoleFade(t *testing.T) {
	fade := PoleFade(9)
	if fade[0] != 0 || fade[8] != 0 {
		t.Errorf("expected 0 at both poles, got %f and %f", fade[0], fade[8])
	}
	if fade[4] != 1 {
		t.Errorf("expected 1 at equator, got %f", fade[4])
	}
	if fade[2] != 0.5 || fade[6] != 0.5 {
		t.Errorf("expected linear ramp, got %v", fade)
	}

	even := PoleFade(10)
	if even[0] != 0 || even[9] != 0 {
		t.Errorf("expected 0 at both poles, got %v", even)
	}
	for y := 1; y < 5; y++ {
		if even[y] <= even[y-1] {
			t.Errorf("expected increasing fade toward equator, got %v", even)
		}
	}
}

func TestFadeImageKeepsAlpha(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 5))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+3] = 100, 200
	}
	FadeImage(img)
	if c := img.RGBAAt(1, 0); c.R != 0 || c.A != 200 {
		t.Errorf("expected faded color and kept alpha on pole row, got %v", c)
	}
	if c := img.RGBAAt(1, 2); c.R != 100 {
		t.Errorf("expected equator row unchanged, got %v", c)
	}
}

func TestLatitudeCompensation(t *testing.T) {
	f := field.New(2, 5)
	f.Fill(1)
	LatitudeCompensation(f)
	if math.Abs(f.At(0, 0)-0.5) > 1e-12 || math.Abs(f.At(0, 4)-0.5) > 1e-12 {
		t.Errorf("expected 0.5 at poles, got %f and %f", f.At(0, 0), f.At(0, 4))
	}
	if f.At(0, 2) != 1 {
		t.Errorf("expected 1 at equator, got %f", f.At(0, 2))
	}
}

func TestLightMapOnlyOnLand(t *testing.T) {
	elev := field.New(60, 30)
	for y := 0; y < 30; y++ {
		for x := 0; x < 20; x++ {
			elev.Set(x, y, 0.9)
		}
	}
	p := LightParams{Density: 0.05, Radius: stamp.Range{Min: 2, Max: 3}, Intensity: stamp.Range{Min: 0.2, Max: 0.8}}
	lights := LightMap(stamp.NewRand(11), elev, 0.4, field.EdgeReflect, p)

	lo, hi := lights.MinMax()
	if lo != 0 || hi != 1 {
		t.Errorf("expected normalized light map, got [%f,%f]", lo, hi)
	}
	for y := 0; y < 30; y++ {
		for x := 30; x < 60; x++ {
			if lights.At(x, y) != 0 {
				t.Fatalf("expected no light over ocean at (%d,%d), got %f", x, y, lights.At(x, y))
			}
		}
	}
}

func TestLightMapAllOcean(t *testing.T) {
	p := LightParams{Density: 0.05, Radius: stamp.Range{Min: 2, Max: 3}, Intensity: stamp.Range{Min: 0.2, Max: 0.8}, Sigma: 2}
	lights := LightMap(stamp.NewRand(1), field.New(20, 10), 0.4, field.EdgeReflect, p)
	for _, v := range lights.Data {
		if v != 0 {
			t.Fatal("expected dark map with no land")
		}
	}
}

func TestCloudMaskGapsAndRange(t *testing.T) {
	p := CloudParams{
		Base:         noise.Params{Scale: 3, Octaves: 3, Persistence: 0.7, Lacunarity: 2, Seed: 1},
		Detail:       noise.Params{Scale: 6, Octaves: 2, Persistence: 0.5, Lacunarity: 2, Seed: 2},
		Gap:          noise.Params{Scale: 2, Octaves: 3, Persistence: 0.5, Lacunarity: 2.5, Seed: 3},
		BaseWeight:   0.6,
		DetailWeight: 0.4,
		Density:      0.6,
		GapFrequency: 0.4,
		Contrast:     1.5,
	}
	mask, err := CloudMask(noise.Spherical{}, 64, 32, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lo, hi := mask.MinMax()
	if lo != 0 || hi != 1 {
		t.Errorf("expected [0,1], got [%f,%f]", lo, hi)
	}

	gaps, _ := noise.SampleNormalized(noise.Spherical{}, 64, 32, p.Gap)
	for i, g := range gaps.Data {
		if g < 0.6 && mask.Data[i] != 0 {
			t.Fatalf("cell %d: expected exact zero inside gap, got %f", i, mask.Data[i])
		}
	}

	img := CloudRGBA(mask)
	if c := img.NRGBAAt(0, 0); c.R != 255 || c.A < 51 {
		t.Errorf("expected white cloud with alpha >= 51, got %v", c)
	}
}

func TestRamps(t *testing.T) {
	colors := []RGB{{0, 0, 0}, {100, 100, 100}, {200, 200, 200}}
	f := field.FromRows([][]float64{{0, 0.5, 0.99, 1}})

	ramp := Ramp(f, colors)
	if ramp.RGBAAt(1, 0).R != 100 || ramp.RGBAAt(2, 0).R != 100 || ramp.RGBAAt(3, 0).R != 200 {
		t.Errorf("unexpected Ramp colors: %v %v %v", ramp.RGBAAt(1, 0), ramp.RGBAAt(2, 0), ramp.RGBAAt(3, 0))
	}
	clamped := RampClamped(f, colors)
	if clamped.RGBAAt(0, 0).R != 0 || clamped.RGBAAt(1, 0).R != 100 || clamped.RGBAAt(2, 0).R != 200 || clamped.RGBAAt(3, 0).R != 200 {
		t.Errorf("unexpected RampClamped colors")
	}
}

func TestAlbedoClamps(t *testing.T) {
	height := field.FromRows([][]float64{{0, 1, 1}})
	variation := field.FromRows([][]float64{{1, 1, 0}})
	img := Albedo(height, variation, RGB{250, 100, 5}, 0.5)

	if c := img.RGBAAt(0, 0); c.R != 250 || c.G != 100 {
		t.Errorf("expected base color at zero height, got %v", c)
	}
	if c := img.RGBAAt(1, 0); c.R != 255 || c.G != 227 {
		t.Errorf("expected brightened and clamped, got %v", c)
	}
	if c := img.RGBAAt(2, 0); c.B != 0 {
		t.Errorf("expected darkened and clamped, got %v", c)
	}
}

func TestBumpRange(t *testing.T) {
	elev := rampField(32, 16)
	stamp.Apply(elev, stamp.Stamp{Kind: stamp.KindCrater, X: 16, Y: 8, Radius: 5, Intensity: -20, Rim: 10})
	bump := Bump(elev, field.EdgeReflect, BumpParams{Sigma: 1, UnsharpRadius: 2, UnsharpAmount: 1.5, Threshold: 3.0 / 255, Contrast: 1.3})
	lo, hi := bump.MinMax()
	if lo < 0 || hi > 1 {
		t.Errorf("expected bump within [0,1], got [%f,%f]", lo, hi)
	}
	if hi-lo < 0.5 {
		t.Errorf("expected contrast to be kept, got span %f", hi-lo)
	}
}

func TestWithOceanFraction(t *testing.T) {
	elev := field.New(10, 10)
	for i := range elev.Data {
		elev.Data[i] = float64(i) / 99
	}
	table := DefaultBiomeTable().WithOceanFraction(elev, 0.7)
	ocean := 0
	for _, e := range elev.Data {
		if table.Classify(e, 0.5, 0.5) == Ocean {
			ocean++
		}
	}
	if ocean < 68 || ocean > 72 {
		t.Errorf("expected about 70 ocean cells, got %d", ocean)
	}
	if d := table.Thresholds.Beach - table.Thresholds.Ocean; math.Abs(d-0.05) > 1e-12 {
		t.Errorf("expected beach band kept at 0.05, got %f", d)
	}

	same := DefaultBiomeTable().WithOceanFraction(elev, 0)
	if same.Thresholds.Ocean != 0.40 {
		t.Error("expected fraction 0 to leave the table unchanged")
	}
}

func TestEdgeFor(t *testing.T) {
	if EdgeFor(noise.Spherical{}) != field.EdgeWrapX || EdgeFor(noise.Radial{}) != field.EdgeWrapX {
		t.Error("expected wrapping domains to blur across the seam")
	}
	if EdgeFor(noise.Planar{}) != field.EdgeReflect {
		t.Error("expected planar domain to reflect")
	}
}
