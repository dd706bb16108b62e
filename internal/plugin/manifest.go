package plugin

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magiconair/properties"
)

// Manifest attribute names.
const (
	AttrEntryPoint = "Game-Class"
	AttrTitle      = "Game-Title"
	AttrVersion    = "Game-Version"
	AttrLoader     = "Game-Loader"
)

// Manifest describes how to load a bundle.
type Manifest struct {
	EntryPoint string `json:"entry_point"`
	Title      string `json:"title"`
	Version    string `json:"version,omitempty"`
	Kind       string `json:"kind,omitempty"`
}

// Validate checks that the entry point and title are present.
func (m Manifest) Validate() error {
	var missing []string
	if m.EntryPoint == "" {
		missing = append(missing, AttrEntryPoint)
	}
	if m.Title == "" {
		missing = append(missing, AttrTitle)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: no %s", ErrManifestMissing, strings.Join(missing, ", "))
	}
	return nil
}

// ParseManifest reads a properties-style manifest. Both "Key: value" and
// "key=value" lines are accepted.
func ParseManifest(data []byte) (Manifest, error) {
	p, err := properties.Load(data, properties.UTF8)
	if err != nil {
		return Manifest{}, fmt.Errorf("%w: %v", ErrManifestMissing, err)
	}
	return manifestFromProperties(p), nil
}

// ManifestFromMap builds a manifest from attribute pairs.
func ManifestFromMap(attrs map[string]string) Manifest {
	return manifestFromProperties(properties.LoadMap(attrs))
}

func manifestFromProperties(p *properties.Properties) Manifest {
	get := func(key string) string {
		return strings.TrimSpace(p.GetString(key, ""))
	}
	return Manifest{
		EntryPoint: get(AttrEntryPoint),
		Title:      get(AttrTitle),
		Version:    get(AttrVersion),
		Kind:       get(AttrLoader),
	}
}

// SidecarPath returns the path of the properties file that may accompany a
// bundle: plugins/snake.zip -> plugins/snake.properties.
func SidecarPath(bundlePath string) string {
	return strings.TrimSuffix(bundlePath, filepath.Ext(bundlePath)) + ".properties"
}

// ReadSidecar loads the sidecar manifest of a bundle. It reports
// os.ErrNotExist when there is none.
func ReadSidecar(bundlePath string) (Manifest, error) {
	data, err := os.ReadFile(SidecarPath(bundlePath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Manifest{}, err
		}
		return Manifest{}, fmt.Errorf("failed to read sidecar manifest: %w", err)
	}
	return ParseManifest(data)
}
