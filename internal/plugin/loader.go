package plugin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"arcade-go/internal/game"
)

// BundleLoader turns a bundle with a resolved manifest into a Factory.
type BundleLoader interface {
	Load(ctx context.Context, b Bundle) (*Factory, error)
}

// Format is a BundleLoader for one kind of bundle file.
type Format interface {
	BundleLoader
	Kind() string
	// Ext is the file extension handled, including the dot.
	Ext() string
	// EmbeddedManifest reads the manifest stored inside the bundle.
	EmbeddedManifest(path string) (Manifest, error)
}

// Formats maps file extensions to formats.
type Formats struct {
	byExt map[string]Format
}

func NewFormats(formats ...Format) *Formats {
	f := &Formats{byExt: make(map[string]Format)}
	for _, format := range formats {
		f.byExt[strings.ToLower(format.Ext())] = format
	}
	return f
}

// ForPath returns the format handling path's extension.
func (f *Formats) ForPath(path string) (Format, bool) {
	format, ok := f.byExt[strings.ToLower(filepath.Ext(path))]
	return format, ok
}

// Bundle is one load candidate produced by a Source.
type Bundle struct {
	// Name is the game name the source already knows, if any.
	Name     string
	Path     string
	Loader   BundleLoader
	Kind     string
	Manifest Manifest
	// Err is set when the source could not resolve the bundle.
	Err error
	// Persist records the bundle's path in the stats store once loaded.
	Persist bool
}

// Source yields bundles to load. It fails only when the source itself is
// unreadable; problems with individual bundles go in Bundle.Err.
type Source interface {
	Bundles(ctx context.Context, formats *Formats) ([]Bundle, error)
}

// Registrar receives loaded games.
type Registrar interface {
	Register(name string, g game.Game)
}

// PathStore persists and returns the load paths of known games.
type PathStore interface {
	RegisterGame(ctx context.Context, name, filePath string) error
	KnownGamesWithPaths(ctx context.Context) (map[string]string, error)
}

// LoadResult reports the outcome for one bundle.
type LoadResult struct {
	Name    string
	Path    string
	Kind    string
	Version string
	Err     error
	// PersistErr is set when the game loaded but its path could not be saved.
	PersistErr error
}

func (r LoadResult) OK() bool {
	return r.Err == nil
}

// Loader discovers bundles, instantiates them and registers the games.
type Loader struct {
	formats  *Formats
	registry Registrar
	paths    PathStore
	logger   *slog.Logger
}

func NewLoader(registry Registrar, paths PathStore, logger *slog.Logger, formats ...Format) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		formats:  NewFormats(formats...),
		registry: registry,
		paths:    paths,
		logger:   logger.With("component", "loader"),
	}
}

// Formats returns the formats the loader understands.
func (l *Loader) Formats() *Formats {
	return l.formats
}

// DiscoverAndLoad loads every bundle of src. A failing bundle never stops the
// others; the returned error is reserved for an unreadable source.
func (l *Loader) DiscoverAndLoad(ctx context.Context, src Source) ([]LoadResult, error) {
	bundles, err := src.Bundles(ctx, l.formats)
	if err != nil {
		return nil, fmt.Errorf("failed to read plugin source: %w", err)
	}

	results := make([]LoadResult, 0, len(bundles))
	for _, b := range bundles {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res := l.load(ctx, b)
		if res.OK() {
			l.logger.Info("game loaded", "name", res.Name, "kind", res.Kind, "version", res.Version, "path", res.Path)
		} else {
			l.logger.Warn("bundle skipped", "path", res.Path, "name", res.Name, "error", res.Err)
		}
		results = append(results, res)
	}
	return results, nil
}

func (l *Loader) load(ctx context.Context, b Bundle) (res LoadResult) {
	res = LoadResult{Name: b.Name, Path: b.Path, Kind: b.Kind}
	defer func() {
		if r := recover(); r != nil {
			res.Err = bundleErr("load", b.Path, fmt.Errorf("%w: panic: %v", ErrLoad, r))
		}
	}()

	if b.Err != nil {
		res.Err = bundleErr("resolve", b.Path, b.Err)
		return res
	}
	if err := b.Manifest.Validate(); err != nil {
		res.Err = bundleErr("read manifest", b.Path, err)
		return res
	}
	res.Name = b.Manifest.Title
	res.Version = b.Manifest.Version

	factory, err := b.Loader.Load(ctx, b)
	if err != nil {
		res.Err = bundleErr("load", b.Path, err)
		return res
	}
	if err := checkCapabilities(factory.Type); err != nil {
		res.Err = bundleErr("validate", b.Path, err)
		return res
	}
	g, err := instantiate(factory)
	if err != nil {
		res.Err = bundleErr("instantiate", b.Path, err)
		return res
	}
	if res.Version == "" {
		res.Version = g.Version()
	}

	l.registry.Register(b.Manifest.Title, g)

	if b.Persist && l.paths != nil {
		if err := l.paths.RegisterGame(ctx, b.Manifest.Title, b.Path); err != nil {
			l.logger.Warn("failed to persist game path", "name", b.Manifest.Title, "error", err)
			res.PersistErr = err
		}
	}
	return res
}

// Install copies a bundle, and its sidecar manifest if present, into dir and
// loads it from there.
func (l *Loader) Install(ctx context.Context, dir, path string) (LoadResult, error) {
	if _, ok := l.formats.ForPath(path); !ok {
		return LoadResult{}, bundleErr("install", path, ErrUnsupportedBundle)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return LoadResult{}, fmt.Errorf("failed to create plugins directory: %w", err)
	}

	dest := filepath.Join(dir, filepath.Base(path))
	if err := copyFile(path, dest); err != nil {
		return LoadResult{}, bundleErr("install", path, err)
	}
	sidecar := SidecarPath(path)
	if _, err := os.Stat(sidecar); err == nil {
		if err := copyFile(sidecar, SidecarPath(dest)); err != nil {
			return LoadResult{}, bundleErr("install", sidecar, err)
		}
	}

	results, err := l.DiscoverAndLoad(ctx, fileSource{path: dest})
	if err != nil {
		return LoadResult{}, err
	}
	return results[0], nil
}

// fileSource is a directory scan restricted to one file.
type fileSource struct {
	path string
}

func (s fileSource) Bundles(_ context.Context, formats *Formats) ([]Bundle, error) {
	return []Bundle{scannedBundle(s.path, formats)}, nil
}

func copyFile(src, dest string) error {
	if same, err := samePath(src, dest); err == nil && same {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrBundleMissing
		}
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return absA == absB, nil
}
