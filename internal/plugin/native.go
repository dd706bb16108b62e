package plugin

import (
	"context"
	"fmt"
	goplugin "plugin"
)

const (
	manifestSymbol = "Manifest"
	instanceSymbol = "Instance"
)

// NativeFormat loads Go plugins built with -buildmode=plugin. The bundle
// exports its manifest as a Manifest variable (map[string]string or a
// properties string), the entry point symbol as a constructor or instance
// variable, and optionally an Instance accessor for a shared instance.
type NativeFormat struct{}

func (NativeFormat) Kind() string { return "native" }
func (NativeFormat) Ext() string  { return ".so" }

func (NativeFormat) EmbeddedManifest(path string) (Manifest, error) {
	p, err := goplugin.Open(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	sym, err := p.Lookup(manifestSymbol)
	if err != nil {
		return Manifest{}, fmt.Errorf("%w: no %s symbol", ErrManifestMissing, manifestSymbol)
	}
	return manifestFromSymbol(sym)
}

func manifestFromSymbol(sym any) (Manifest, error) {
	switch m := sym.(type) {
	case *map[string]string:
		return ManifestFromMap(*m), nil
	case map[string]string:
		return ManifestFromMap(m), nil
	case *string:
		return ParseManifest([]byte(*m))
	case string:
		return ParseManifest([]byte(m))
	}
	return Manifest{}, fmt.Errorf("%w: %s symbol has type %T", ErrManifestMissing, manifestSymbol, sym)
}

func (NativeFormat) Load(_ context.Context, b Bundle) (*Factory, error) {
	p, err := goplugin.Open(b.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	sym, err := p.Lookup(b.Manifest.EntryPoint)
	if err != nil {
		return nil, fmt.Errorf("%w: entry point %q not exported", ErrLoad, b.Manifest.EntryPoint)
	}
	factory, err := factoryFromSymbol(sym)
	if err != nil {
		return nil, err
	}

	if accessor, err := p.Lookup(instanceSymbol); err == nil {
		withSharedInstance(factory, accessor)
	}
	return factory, nil
}

// withSharedInstance installs an exported Instance function as the factory's
// shared accessor when it has the right shape.
func withSharedInstance(f *Factory, accessor any) {
	shared, err := factoryFromSymbol(accessor)
	if err != nil || shared.New == nil {
		return
	}
	f.Instance = shared.New
	if f.Type == nil || !f.Type.Implements(gameType) {
		f.Type = shared.Type
	}
}
