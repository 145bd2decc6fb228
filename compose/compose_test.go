package compose

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/pthm-cable/planetforge/field"
	"github.com/pthm-cable/planetforge/noise"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestMasked(t *testing.T) {
	a := solid(3, 1, color.RGBA{R: 200, A: 255})
	b := solid(3, 1, color.RGBA{B: 100, A: 255})
	mask := field.FromRows([][]float64{{0, 0.5, 1}})

	out, err := Masked(a, b, mask)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c := out.RGBAAt(0, 0); c.R != 0 || c.B != 100 {
		t.Errorf("mask 0: expected b, got %v", c)
	}
	if c := out.RGBAAt(1, 0); c.R != 100 || c.B != 50 {
		t.Errorf("mask 0.5: expected even blend, got %v", c)
	}
	if c := out.RGBAAt(2, 0); c.R != 200 || c.B != 0 {
		t.Errorf("mask 1: expected a, got %v", c)
	}
}

func TestMaskedSizeMismatch(t *testing.T) {
	_, err := Masked(solid(3, 1, color.RGBA{}), solid(3, 1, color.RGBA{}), field.New(2, 1))
	if !errors.Is(err, noise.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestOver(t *testing.T) {
	base := solid(2, 1, color.RGBA{R: 255, A: 255})
	overlay := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	overlay.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 0})
	overlay.SetNRGBA(1, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	out := Over(base, overlay)
	if c := out.RGBAAt(0, 0); c != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("transparent overlay: expected base, got %v", c)
	}
	if c := out.RGBAAt(1, 0); c != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("opaque overlay: expected white, got %v", c)
	}
}

func TestTimeline(t *testing.T) {
	tl := Timeline{Frames: 4, Speed: 2}
	want := []float64{0, 0.5, 1, 1.5}
	for i, w := range want {
		if got := tl.Time(i); math.Abs(got-w) > 1e-12 {
			t.Errorf("frame %d: expected t=%f, got %f", i, w, got)
		}
	}
	if tl.Period() != 0 {
		t.Error("expected no period without loop")
	}
	tl.Loop = true
	if tl.Period() != 2 {
		t.Errorf("expected loop period 2, got %f", tl.Period())
	}
}

func TestTimelineValidate(t *testing.T) {
	tests := []struct {
		name string
		tl   Timeline
	}{
		{"zero frames", Timeline{Frames: 0, Speed: 1}},
		{"negative speed", Timeline{Frames: 2, Speed: -1}},
		{"nan speed", Timeline{Frames: 2, Speed: math.NaN()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.tl.Validate(); !errors.Is(err, noise.ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}

func TestAnimateOrdered(t *testing.T) {
	seq, err := Animate(Timeline{Frames: 8, Speed: 1}, func(tm float64) (image.Image, error) {
		v := uint8(tm * 200)
		return solid(1, 1, color.RGBA{R: v, A: 255}), nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seq.Len() != 8 {
		t.Fatalf("expected 8 frames, got %d", seq.Len())
	}
	for i, f := range seq.Frames {
		if f.T != float64(i)/8 {
			t.Errorf("frame %d: expected t=%f, got %f", i, float64(i)/8, f.T)
		}
		if got := f.Image.(*image.RGBA).RGBAAt(0, 0).R; got != uint8(f.T*200) {
			t.Errorf("frame %d rendered out of order", i)
		}
	}
	if len(seq.Images()) != 8 {
		t.Error("expected images in order")
	}
}

func TestAnimateError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Animate(Timeline{Frames: 3, Speed: 1}, func(tm float64) (image.Image, error) {
		if tm > 0.5 {
			return nil, boom
		}
		return solid(1, 1, color.RGBA{}), nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected render error, got %v", err)
	}
}
