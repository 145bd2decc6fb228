package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pthm-cable/planetforge/body"
	"github.com/pthm-cable/planetforge/config"
	"github.com/pthm-cable/planetforge/telemetry"
)

// Options select how a result is written.
type Options struct {
	Format       Format
	JPEGQuality  int
	FrameFormat  string // gif or png
	FrameDelay   int
	WriteStats   bool
	MeshFileName string // Empty uses <preset>.obj
}

// OptionsFrom converts the output section of the config.
func OptionsFrom(oc config.OutputConfig) (Options, error) {
	f, err := ParseFormat(oc.Format)
	if err != nil {
		return Options{}, err
	}
	switch oc.FrameFormat {
	case FramesGIF, FramesPNG:
	default:
		return Options{}, fmt.Errorf("%w: frame format %q", ErrUnsupportedFormat, oc.FrameFormat)
	}
	return Options{
		Format:       f,
		JPEGQuality:  oc.JPEGQuality,
		FrameFormat:  oc.FrameFormat,
		FrameDelay:   oc.FrameDelay,
		WriteStats:   oc.WriteStats,
		MeshFileName: oc.MeshFileName,
	}, nil
}

// WriteResult writes every map, the frame sequence, the mesh and the stats
// of res into dir, creating it if needed. id names the body in the stats
// file. Returns the written paths.
func WriteResult(dir, id string, res *body.Result, opts Options) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	var paths []string
	for _, m := range res.Maps {
		f := For(m.Image, opts.Format)
		path := filepath.Join(dir, m.Name+f.Ext())
		if err := writeImage(path, m.Image, f, opts.JPEGQuality); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	if res.Frames != nil && res.Frames.Len() > 1 {
		name := string(res.Params.Kind) + "_animation"
		switch opts.FrameFormat {
		case FramesPNG:
			framePaths, err := WriteFrames(dir, name, res.Frames)
			paths = append(paths, framePaths...)
			if err != nil {
				return paths, err
			}
		default:
			path := filepath.Join(dir, name+".gif")
			if err := writeFile(path, func(f *os.File) error { return WriteGIF(f, res.Frames, opts.FrameDelay) }); err != nil {
				return paths, err
			}
			paths = append(paths, path)
		}
	}

	if res.Mesh != nil {
		name := opts.MeshFileName
		if name == "" {
			name = res.Params.Preset + ".obj"
		}
		path := filepath.Join(dir, name)
		if err := writeFile(path, func(f *os.File) error { return WriteOBJ(f, res.Mesh) }); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	if opts.WriteStats {
		if stats := res.Stats(id); len(stats) > 0 {
			path := filepath.Join(dir, "stats.csv")
			if err := telemetry.WriteFieldStats(path, stats); err != nil {
				return paths, err
			}
			paths = append(paths, path)
		}
	}
	return paths, nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
