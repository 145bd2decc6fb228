package compose

import (
	"fmt"
	"image"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/planetforge/noise"
)

// Timeline describes when frames are sampled.
type Timeline struct {
	Frames int     `yaml:"frames"`
	Speed  float64 `yaml:"speed"` // Time span covered by the whole sequence
	Loop   bool    `yaml:"loop"`  // Last frame blends back into the first
}

// Validate rejects timelines that cannot produce frames.
func (tl Timeline) Validate() error {
	if tl.Frames < 1 {
		return fmt.Errorf("%w: frame count must be >= 1, got %d", noise.ErrInvalidParameter, tl.Frames)
	}
	if math.IsNaN(tl.Speed) || math.IsInf(tl.Speed, 0) || tl.Speed < 0 {
		return fmt.Errorf("%w: animation speed must be finite and >= 0, got %g", noise.ErrInvalidParameter, tl.Speed)
	}
	return nil
}

// Time returns the time parameter of frame i: i/frames*speed.
func (tl Timeline) Time(i int) float64 {
	return float64(i) / float64(tl.Frames) * tl.Speed
}

// Period is the loop length handed to looping noise. Zero when the timeline
// does not loop or covers no time.
func (tl Timeline) Period() float64 {
	if !tl.Loop {
		return 0
	}
	return tl.Speed
}

// Frame is one rendered time step.
type Frame struct {
	T     float64
	Image image.Image
}

// Sequence is an ordered set of frames. Frames are never modified after
// Animate returns.
type Sequence struct {
	Frames []Frame
}

// Len returns the number of frames.
func (s *Sequence) Len() int { return len(s.Frames) }

// Images returns the frame images in order.
func (s *Sequence) Images() []image.Image {
	out := make([]image.Image, len(s.Frames))
	for i, f := range s.Frames {
		out[i] = f.Image
	}
	return out
}

// RenderFunc produces the image for time t.
type RenderFunc func(t float64) (image.Image, error)

// Animate renders every frame of tl. Frames are independent and render in
// parallel; the sequence is ordered by frame index regardless of completion
// order. The first render error aborts the sequence.
func Animate(tl Timeline, render RenderFunc) (*Sequence, error) {
	if err := tl.Validate(); err != nil {
		return nil, err
	}

	frames := make([]Frame, tl.Frames)
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range frames {
		g.Go(func() error {
			t := tl.Time(i)
			img, err := render(t)
			if err != nil {
				return fmt.Errorf("frame %d (t=%.4f): %w", i, t, err)
			}
			frames[i] = Frame{T: t, Image: img}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Sequence{Frames: frames}, nil
}
