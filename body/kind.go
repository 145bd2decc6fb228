// Package body runs the per-kind surface pipelines: terrestrial planets, gas
// giants, stars, asteroids and planetary rings.
package body

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/planetforge/noise"
)

var (
	// ErrInvalidParameter is the shared sentinel for bad numeric input.
	ErrInvalidParameter = noise.ErrInvalidParameter

	// ErrUnknownPreset reports a preset name missing from config.
	ErrUnknownPreset = errors.New("unknown preset")

	// ErrUnknownBodyType reports a body kind with no pipeline.
	ErrUnknownBodyType = errors.New("unknown body type")
)

// Kind selects a generation pipeline.
type Kind string

const (
	Terrestrial Kind = "terrestrial"
	GasGiant    Kind = "gas"
	Star        Kind = "star"
	Asteroid    Kind = "asteroid"
	Ring        Kind = "ring"
)

// Kinds lists every body kind in batch order.
var Kinds = []Kind{GasGiant, Star, Terrestrial, Asteroid, Ring}

// ParseKind accepts a kind name. "ringed" and "planet" are accepted as
// aliases used by folder prefixes.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "terrestrial", "planet":
		return Terrestrial, nil
	case "gas":
		return GasGiant, nil
	case "star":
		return Star, nil
	case "asteroid":
		return Asteroid, nil
	case "ring", "ringed":
		return Ring, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBodyType, s)
}

// Map names shared by the pipelines and the exporters.
const (
	MapHeight        = "height_map"
	MapNormal        = "normal_map"
	MapBase          = "base_map"
	MapBump          = "bump_map"
	MapSpecular      = "specular_map"
	MapCloud         = "cloud_map"
	MapCloudRGBA     = "translucent_cloud_map"
	MapLight         = "light_map"
	MapPreview       = "preview"
	MapSurface       = "surface"
	MapStormMask     = "storm_mask"
	MapAlbedo        = "albedo_map"
	MapRings         = "rings"
	MapRingPattern   = "ring_pattern"
	MapStar          = "star"
	MapStarIntensity = "star_intensity"
)
