// Package app assembles the arcade: stats store, game registry, listener
// dispatcher, plugin loader and the built-in game catalog.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"arcade-go/config"
	"arcade-go/internal/game"
	"arcade-go/internal/games/quiz"
	"arcade-go/internal/plugin"
	"arcade-go/internal/stats"
)

// Runtime owns every long-lived component of one arcade process.
type Runtime struct {
	Config     *config.Config
	Store      *stats.Store
	Dispatcher *game.Dispatcher
	Registry   *game.Registry
	Loader     *plugin.Loader
	Catalog    *plugin.Catalog
	Recorder   *stats.Recorder

	logger *slog.Logger
}

type options struct {
	catalog      *plugin.Catalog
	report       func(stats.Outcome)
	storeOptions []stats.Option
	scriptGrace  time.Duration
}

// Option customizes Open.
type Option func(*options)

// WithCatalog replaces the default built-in catalog.
func WithCatalog(c *plugin.Catalog) Option {
	return func(o *options) { o.catalog = c }
}

// WithReporter receives the outcome of every saved run.
func WithReporter(report func(stats.Outcome)) Option {
	return func(o *options) { o.report = report }
}

// WithStoreOptions passes extra options to the stats store.
func WithStoreOptions(opts ...stats.Option) Option {
	return func(o *options) { o.storeOptions = append(o.storeOptions, opts...) }
}

// WithScriptStopGrace bounds how long a script game gets to return after Stop.
func WithScriptStopGrace(d time.Duration) Option {
	return func(o *options) { o.scriptGrace = d }
}

// DefaultCatalog holds the games shipped inside the binary.
func DefaultCatalog() *plugin.Catalog {
	c := plugin.NewCatalog()
	c.Add(plugin.Entry{
		Manifest: plugin.Manifest{
			EntryPoint: quiz.EntryPoint,
			Title:      quiz.Title,
			Version:    quiz.Version,
		},
		Instance: quiz.Instance,
	})
	return c
}

// Open connects the stats store and wires the components. Nothing is loaded
// until Boot.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.catalog == nil {
		o.catalog = DefaultCatalog()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	storeOpts := append([]stats.Option{stats.WithLocation(loc), stats.WithLogger(logger)}, o.storeOptions...)
	store, err := stats.Open(ctx, cfg.DatabaseURL, storeOpts...)
	if err != nil {
		return nil, err
	}

	dispatcher := game.NewDispatcher(logger)
	registry := game.NewRegistry(dispatcher, logger)
	recorder := stats.NewRecorder(store, logger, o.report)
	registry.AddListener(recorder)

	loader := plugin.NewLoader(registry, store, logger,
		plugin.NativeFormat{},
		plugin.ScriptFormat{StopGrace: o.scriptGrace, Logger: logger},
	)

	return &Runtime{
		Config:     cfg,
		Store:      store,
		Dispatcher: dispatcher,
		Registry:   registry,
		Loader:     loader,
		Catalog:    o.catalog,
		Recorder:   recorder,
		logger:     logger.With("component", "app"),
	}, nil
}

// Boot creates the schema and loads games: built-ins first, then the plugins
// directory, then persisted paths of games not found by the scan.
func (r *Runtime) Boot(ctx context.Context) ([]plugin.LoadResult, error) {
	if err := r.Store.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	sources := []plugin.Source{
		plugin.BuiltinSource{Catalog: r.Catalog},
		plugin.DirectorySource{Dir: r.Config.PluginsDir},
		plugin.PersistedSource{
			Store: r.Store,
			Skip: func(name string) bool {
				_, ok := r.Registry.Get(name)
				return ok
			},
		},
	}

	var results []plugin.LoadResult
	for _, src := range sources {
		res, err := r.Loader.DiscoverAndLoad(ctx, src)
		results = append(results, res...)
		if err != nil {
			// An unreadable source never blocks the others.
			r.logger.Warn("plugin source unavailable", "source", fmt.Sprintf("%T", src), "error", err)
		}
	}

	r.logger.Debug("boot complete", "games", len(r.Registry.ListAvailable()))
	return results, nil
}

// Install copies a bundle into the plugins directory and loads it.
func (r *Runtime) Install(ctx context.Context, path string) (plugin.LoadResult, error) {
	return r.Loader.Install(ctx, r.Config.PluginsDir, path)
}

// Play stops whatever is running and starts name.
func (r *Runtime) Play(name string) (*game.Handle, error) {
	if stopped, ok := r.Registry.StopCurrent(); ok {
		r.logger.Info("stopped running game", "game", stopped)
	}
	return r.Registry.Start(name)
}

// Close stops the running game, waits for pending saves and closes the store.
func (r *Runtime) Close() error {
	r.Registry.StopCurrent()
	r.Dispatcher.Close()
	return r.Store.Close()
}
