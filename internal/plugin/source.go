package plugin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/exp/slices"
)

// DirectorySource scans a directory for bundle files. A missing directory is
// created empty.
type DirectorySource struct {
	Dir string
}

func (s DirectorySource) Bundles(_ context.Context, formats *Formats) ([]Bundle, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create plugins directory: %w", err)
	}
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read plugins directory: %w", err)
	}

	var bundles []Bundle
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		path := filepath.Join(s.Dir, entry.Name())
		if _, ok := formats.ForPath(path); !ok {
			continue
		}
		bundles = append(bundles, scannedBundle(path, formats))
	}
	return bundles, nil
}

// scannedBundle resolves a bundle found on disk from its embedded manifest.
func scannedBundle(path string, formats *Formats) Bundle {
	b := Bundle{Path: path, Persist: true}
	format, ok := formats.ForPath(path)
	if !ok {
		b.Err = ErrUnsupportedBundle
		return b
	}
	b.Loader = format
	b.Kind = format.Kind()
	b.Manifest, b.Err = format.EmbeddedManifest(path)
	return b
}

// PersistedSource reloads the games whose paths were stored by earlier
// directory scans. Entries without a path are skipped silently: those games
// only ever recorded scores. Skip filters names that are already loaded.
type PersistedSource struct {
	Store PathStore
	Skip  func(name string) bool
}

func (s PersistedSource) Bundles(ctx context.Context, formats *Formats) ([]Bundle, error) {
	known, err := s.Store.KnownGamesWithPaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read known games: %w", err)
	}

	names := make([]string, 0, len(known))
	for name, path := range known {
		if path == "" || (s.Skip != nil && s.Skip(name)) {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)

	bundles := make([]Bundle, 0, len(names))
	for _, name := range names {
		bundles = append(bundles, persistedBundle(name, known[name], formats))
	}
	return bundles, nil
}

// persistedBundle prefers a sidecar manifest and falls back to the embedded one.
func persistedBundle(name, path string, formats *Formats) Bundle {
	b := Bundle{Name: name, Path: path}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			b.Err = ErrBundleMissing
		} else {
			b.Err = err
		}
		return b
	}

	format, ok := formats.ForPath(path)
	if !ok {
		b.Err = ErrUnsupportedBundle
		return b
	}
	b.Loader = format
	b.Kind = format.Kind()

	m, err := ReadSidecar(path)
	switch {
	case err == nil:
		b.Manifest = m
	case errors.Is(err, os.ErrNotExist):
		b.Manifest, b.Err = format.EmbeddedManifest(path)
	default:
		b.Err = err
	}
	return b
}
