package plugin

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/exp/maps"

	"arcade-go/internal/game"
)

// BuiltinScheme prefixes the paths of compiled-in games.
const BuiltinScheme = "builtin:"

// Entry is one compiled-in game.
type Entry struct {
	Manifest Manifest
	// Instance returns a shared instance. Preferred over New when set.
	Instance func() game.Game
	New      func() game.Game
}

// Catalog is the table of games compiled into the binary, keyed by entry point.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewCatalog() *Catalog {
	return &Catalog{entries: make(map[string]Entry)}
}

// Add registers e under its manifest's entry point.
func (c *Catalog) Add(e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[e.Manifest.EntryPoint] = e
}

func (c *Catalog) get(entryPoint string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[entryPoint]
	return e, ok
}

func (c *Catalog) ids() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := maps.Keys(c.entries)
	slices.Sort(ids)
	return ids
}

// Kind implements Format for builtin bundles.
func (c *Catalog) Kind() string { return "builtin" }

func (c *Catalog) Load(_ context.Context, b Bundle) (*Factory, error) {
	e, ok := c.get(b.Manifest.EntryPoint)
	if !ok {
		return nil, fmt.Errorf("%w: no builtin game %q", ErrLoad, b.Manifest.EntryPoint)
	}
	f := &Factory{Type: gameType}
	if e.Instance != nil {
		f.Instance = func() any { return e.Instance() }
	}
	if e.New != nil {
		f.New = func() any { return e.New() }
	}
	return f, nil
}

// BuiltinSource yields every entry of a catalog.
type BuiltinSource struct {
	Catalog *Catalog
}

func (s BuiltinSource) Bundles(context.Context, *Formats) ([]Bundle, error) {
	ids := s.Catalog.ids()
	bundles := make([]Bundle, 0, len(ids))
	for _, id := range ids {
		e, _ := s.Catalog.get(id)
		bundles = append(bundles, Bundle{
			Path:     BuiltinScheme + id,
			Loader:   s.Catalog,
			Kind:     s.Catalog.Kind(),
			Manifest: e.Manifest,
		})
	}
	return bundles, nil
}
