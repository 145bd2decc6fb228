package export

import (
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"os"
	"path/filepath"

	"github.com/pthm-cable/planetforge/compose"
)

// Frame formats.
const (
	FramesGIF = "gif"
	FramesPNG = "png"
)

// WriteGIF encodes seq as a looping animated GIF. delay is per frame in
// hundredths of a second. Frames with transparency use a web-safe palette
// with one transparent entry; opaque frames use Plan 9.
func WriteGIF(w io.Writer, seq *compose.Sequence, delay int) error {
	if seq == nil || seq.Len() == 0 {
		return fmt.Errorf("writing gif: empty sequence")
	}
	anim := &gif.GIF{LoopCount: 0}
	for _, f := range seq.Frames {
		pal := color.Palette(palette.Plan9)
		disposal := byte(gif.DisposalNone)
		if o, ok := f.Image.(interface{ Opaque() bool }); ok && !o.Opaque() {
			pal = append(color.Palette{color.Transparent}, palette.WebSafe...)
			disposal = gif.DisposalBackground
		}
		b := f.Image.Bounds()
		p := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), pal)
		draw.FloydSteinberg.Draw(p, p.Bounds(), f.Image, b.Min)
		anim.Image = append(anim.Image, p)
		anim.Delay = append(anim.Delay, delay)
		anim.Disposal = append(anim.Disposal, disposal)
	}
	return gif.EncodeAll(w, anim)
}

// WriteFrames writes every frame as <name>_NNN.png in dir and returns the
// paths in frame order.
func WriteFrames(dir, name string, seq *compose.Sequence) ([]string, error) {
	paths := make([]string, 0, seq.Len())
	for i, f := range seq.Frames {
		path := filepath.Join(dir, fmt.Sprintf("%s_%03d.png", name, i))
		if err := writeImage(path, f.Image, PNG, 0); err != nil {
			return paths, fmt.Errorf("frame %d: %w", i, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeImage(path string, img image.Image, f Format, quality int) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(out, img, f, quality); err != nil {
		out.Close()
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	return out.Close()
}
