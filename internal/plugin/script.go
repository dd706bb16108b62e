package plugin

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"golang.org/x/exp/slices"

	"arcade-go/internal/game"
)

// ManifestEntry is the manifest file name inside script bundles.
const ManifestEntry = "MANIFEST.MF"

const defaultStopGrace = 2 * time.Second

// ScriptFormat runs Go source bundles through the yaegi interpreter. A bundle
// is a zip holding MANIFEST.MF and the .go files of one package; the entry
// point names that package. The package must export
//
//	func Name() string
//	func Version() string
//	func Play(stop <-chan struct{}) map[string]interface{}
//
// and may export Stats() map[string]interface{} for live stats.
type ScriptFormat struct {
	// StopGrace bounds how long Stop waits for Play to return.
	StopGrace time.Duration
	Logger    *slog.Logger
}

func (ScriptFormat) Kind() string { return "script" }
func (ScriptFormat) Ext() string  { return ".zip" }

func (ScriptFormat) EmbeddedManifest(bundlePath string) (Manifest, error) {
	r, err := zip.OpenReader(bundlePath)
	if err != nil {
		return Manifest{}, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name == ManifestEntry || f.Name == "META-INF/"+ManifestEntry {
			data, err := readZipFile(f)
			if err != nil {
				return Manifest{}, fmt.Errorf("failed to read %s: %w", ManifestEntry, err)
			}
			return ParseManifest(data)
		}
	}
	return Manifest{}, fmt.Errorf("%w: no %s in bundle", ErrManifestMissing, ManifestEntry)
}

func (s ScriptFormat) Load(ctx context.Context, b Bundle) (*Factory, error) {
	sources, err := scriptSources(b.Path)
	if err != nil {
		return nil, err
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	for _, src := range sources {
		if _, err := i.EvalWithContext(ctx, src.code); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoad, src.name, err)
		}
	}

	funcs, err := resolveScript(i, b.Manifest.EntryPoint)
	if err != nil {
		return nil, err
	}

	grace := s.StopGrace
	if grace <= 0 {
		grace = defaultStopGrace
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{
		Type: reflect.TypeOf((*scriptGame)(nil)),
		New: func() any {
			return &scriptGame{
				funcs:  funcs,
				grace:  grace,
				logger: logger.With("component", "script", "game", funcs.name()),
			}
		},
	}, nil
}

type scriptSource struct {
	name string
	code string
}

func scriptSources(bundlePath string) ([]scriptSource, error) {
	r, err := zip.OpenReader(bundlePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	defer r.Close()

	var sources []scriptSource
	for _, f := range r.File {
		if path.Ext(f.Name) != ".go" || strings.HasSuffix(f.Name, "_test.go") {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoad, f.Name, err)
		}
		sources = append(sources, scriptSource{name: f.Name, code: string(data)})
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: bundle contains no Go sources", ErrLoad)
	}
	slices.SortFunc(sources, func(a, b scriptSource) int {
		return strings.Compare(a.name, b.name)
	})
	return sources, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

type scriptFuncs struct {
	name    func() string
	version func() string
	play    func(stop <-chan struct{}) map[string]interface{}
	stats   func() map[string]interface{}
}

func resolveScript(i *interp.Interpreter, pkg string) (scriptFuncs, error) {
	var (
		funcs   scriptFuncs
		missing []string
	)
	lookup := func(sym string) (any, bool) {
		v, err := i.Eval(pkg + "." + sym)
		if err != nil || !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	}

	if v, ok := lookup("Name"); ok {
		funcs.name, _ = v.(func() string)
	}
	if funcs.name == nil {
		missing = append(missing, "Name() string")
	}
	if v, ok := lookup("Version"); ok {
		funcs.version, _ = v.(func() string)
	}
	if funcs.version == nil {
		missing = append(missing, "Version() string")
	}
	if v, ok := lookup("Play"); ok {
		funcs.play, _ = v.(func(<-chan struct{}) map[string]interface{})
	}
	if funcs.play == nil {
		missing = append(missing, "Play(<-chan struct{}) map[string]interface{}")
	}
	if v, ok := lookup("Stats"); ok {
		funcs.stats, _ = v.(func() map[string]interface{})
	}

	if len(missing) > 0 {
		return scriptFuncs{}, fmt.Errorf("%w: package %s lacks %s", ErrCapabilityMismatch, pkg, strings.Join(missing, ", "))
	}
	return funcs, nil
}

// scriptGame adapts interpreted functions to game.Game. Play runs on its own
// goroutine; its return value is the run's final stats. A Play call that
// outlives its run (see Stop) can no longer finish or record anything.
type scriptGame struct {
	game.Lifecycle

	funcs  scriptFuncs
	grace  time.Duration
	logger *slog.Logger

	mu   sync.Mutex
	run  uint64
	stop chan struct{}
	done chan struct{}
	last map[string]any
}

func (g *scriptGame) Name() string    { return g.funcs.name() }
func (g *scriptGame) Version() string { return g.funcs.version() }

func (g *scriptGame) Start() {
	g.mu.Lock()
	run, ok := g.BeginRun()
	if !ok {
		g.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	g.run, g.stop, g.done = run, stop, done
	g.last = nil
	g.mu.Unlock()

	go g.play(run, stop, done)
}

func (g *scriptGame) play(run uint64, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	var result map[string]interface{}
	func() {
		defer func() {
			if r := recover(); r != nil {
				g.logger.Error("script panicked", "error", fmt.Sprint(r))
			}
		}()
		result = g.funcs.play(stop)
	}()

	g.mu.Lock()
	current := g.run == run
	if current {
		g.last = copyStats(result)
	}
	g.mu.Unlock()

	if !current {
		g.logger.Warn("discarding result of abandoned run", "run", run)
		return
	}
	g.FinishRun(run, g.Name(), result)
}

// Stop signals Play to return and waits for it up to the grace period. A
// script that ignores the signal is finished with its live stats, or with no
// stats when it exports no Stats function.
func (g *scriptGame) Stop() {
	g.mu.Lock()
	run, stop, done := g.run, g.stop, g.done
	g.stop = nil
	g.mu.Unlock()

	if stop == nil || g.State() != game.StateRunning {
		return
	}
	close(stop)

	select {
	case <-done:
	case <-time.After(g.grace):
		g.logger.Warn("script ignored stop, finishing run", "run", run)
		g.FinishRun(run, g.Name(), g.Stats())
	}
}

func (g *scriptGame) Stats() map[string]any {
	if g.funcs.stats != nil {
		return copyStats(g.funcs.stats())
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return copyStats(g.last)
}

func copyStats(in map[string]interface{}) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
