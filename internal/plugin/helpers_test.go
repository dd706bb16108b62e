package plugin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"arcade-go/internal/game"
)

type testGame struct {
	game.Lifecycle
	name string
}

func (g *testGame) Start()                { g.Begin() }
func (g *testGame) Stop()                 { g.Finish(g.name, g.Stats()) }
func (g *testGame) Name() string          { return g.name }
func (g *testGame) Version() string       { return "0.1" }
func (g *testGame) Stats() map[string]any { return map[string]any{"score": 1} }

// halfGame has only part of the capability set.
type halfGame struct{}

func (halfGame) Start()       {}
func (halfGame) Name() string { return "half" }

// fakeFormat treats a ".game" file as a properties manifest and resolves the
// entry point against a table of constructors.
type fakeFormat struct {
	symbols map[string]any
}

func (fakeFormat) Kind() string { return "fake" }
func (fakeFormat) Ext() string  { return ".game" }

func (fakeFormat) EmbeddedManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	return ParseManifest(data)
}

func (f fakeFormat) Load(_ context.Context, b Bundle) (*Factory, error) {
	sym, ok := f.symbols[b.Manifest.EntryPoint]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLoad, b.Manifest.EntryPoint)
	}
	return factoryFromSymbol(sym)
}

func newFakeFormat() fakeFormat {
	shared := &testGame{name: "Shared"}
	return fakeFormat{symbols: map[string]any{
		"snake.New":    func() *testGame { return &testGame{name: "Snake"} },
		"pong.New":     func() game.Game { return &testGame{name: "Pong"} },
		"shared.Game":  &shared,
		"half.New":     func() halfGame { return halfGame{} },
		"broken.New":   func() *testGame { panic("constructor exploded") },
		"nil.New":      func() *testGame { return nil },
		"withArgs.New": func(string) *testGame { return nil },
	}}
}

type memPaths struct {
	mu    sync.Mutex
	paths map[string]string
	err   error
}

func newMemPaths() *memPaths {
	return &memPaths{paths: make(map[string]string)}
}

func (m *memPaths) RegisterGame(_ context.Context, name, filePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.paths[name]; !ok {
		m.paths[name] = filePath
	}
	return nil
}

func (m *memPaths) KnownGamesWithPaths(context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[string]string, len(m.paths))
	for k, v := range m.paths {
		out[k] = v
	}
	return out, nil
}

var errStoreDown = errors.New("store down")

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestRegistry(t *testing.T) *game.Registry {
	t.Helper()
	d := game.NewDispatcher(nil)
	t.Cleanup(d.Close)
	return game.NewRegistry(d, nil)
}

func resultFor(results []LoadResult, path string) (LoadResult, bool) {
	for _, r := range results {
		if r.Path == path {
			return r, true
		}
	}
	return LoadResult{}, false
}
