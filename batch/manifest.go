package batch

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/planetforge/body"
)

// ManifestName is the file written into every body folder.
const ManifestName = "manifest.yaml"

// Manifest records what produced a body folder: the request, the random
// inputs it was drawn from, and the fully resolved parameters.
type Manifest struct {
	ID      string             `yaml:"id"`
	Request body.Request       `yaml:"request"`
	Inputs  map[string]float64 `yaml:"inputs,omitempty"`
	Params  *body.Params       `yaml:"params"`
}

// WriteManifest writes m to dir/manifest.yaml.
func WriteManifest(dir string, m Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, ManifestName), data, 0644)
}

// ReadManifest loads dir/manifest.yaml.
func ReadManifest(dir string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return m, err
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parsing %s: %w", ManifestName, err)
	}
	return m, nil
}

// Matches reports whether dir already holds a body generated from params.
// Resolved parameters are compared, so a changed config invalidates the
// folder even when the request is the same.
func Matches(dir string, params *body.Params) bool {
	m, err := ReadManifest(dir)
	if err != nil || m.Params == nil {
		return false
	}
	have, err := yaml.Marshal(m.Params)
	if err != nil {
		return false
	}
	want, err := yaml.Marshal(params)
	if err != nil {
		return false
	}
	return bytes.Equal(have, want)
}
