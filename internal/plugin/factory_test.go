package plugin

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arcade-go/internal/game"
)

func TestFactoryFromConstructor(t *testing.T) {
	f, err := factoryFromSymbol(func() *testGame { return &testGame{name: "Snake"} })
	require.NoError(t, err)
	assert.Nil(t, f.Instance)
	require.NoError(t, checkCapabilities(f.Type))

	a, err := instantiate(f)
	require.NoError(t, err)
	b, err := instantiate(f)
	require.NoError(t, err)
	assert.NotSame(t, a, b, "constructors build fresh instances")
}

func TestFactoryFromSharedVariable(t *testing.T) {
	shared := &testGame{name: "Shared"}
	f, err := factoryFromSymbol(&shared)
	require.NoError(t, err)
	require.NoError(t, checkCapabilities(f.Type))

	g, err := instantiate(f)
	require.NoError(t, err)
	assert.Same(t, shared, g)
}

func TestFactoryFromInterfaceVariable(t *testing.T) {
	var v game.Game = &testGame{name: "Iface"}
	f, err := factoryFromSymbol(&v)
	require.NoError(t, err)

	g, err := instantiate(f)
	require.NoError(t, err)
	assert.Equal(t, "Iface", g.Name())
}

func TestFactoryRejectsUnusableSymbols(t *testing.T) {
	var nilGame game.Game
	tests := []struct {
		name string
		sym  any
	}{
		{"nil", nil},
		{"constructor with arguments", func(string) *testGame { return nil }},
		{"plain value", 42},
		{"nil interface variable", &nilGame},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := factoryFromSymbol(tt.sym)
			assert.Error(t, err)
		})
	}
}

func TestCheckCapabilitiesListsMissingMethods(t *testing.T) {
	err := checkCapabilities(reflect.TypeOf(halfGame{}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCapabilityMismatch))
	assert.Contains(t, err.Error(), "Stop")
	assert.Contains(t, err.Error(), "AddListener")
	assert.NotContains(t, err.Error(), "Name,")

	assert.ErrorIs(t, checkCapabilities(nil), ErrCapabilityMismatch)
}

func TestInstantiatePrefersSharedInstance(t *testing.T) {
	shared := &testGame{name: "Shared"}
	built := 0
	f := &Factory{
		Type:     reflect.TypeOf(shared),
		Instance: func() any { return shared },
		New: func() any {
			built++
			return &testGame{}
		},
	}

	g, err := instantiate(f)
	require.NoError(t, err)
	assert.Same(t, shared, g)
	assert.Zero(t, built)
}

func TestInstantiateFailures(t *testing.T) {
	tests := []struct {
		name    string
		factory *Factory
	}{
		{"no accessor or constructor", &Factory{}},
		{"panicking constructor", &Factory{New: func() any { panic("boom") }}},
		{"nil instance", &Factory{New: func() any { return (*testGame)(nil) }}},
		{"wrong type", &Factory{Instance: func() any { return "not a game" }}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := instantiate(tt.factory)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInstantiation))
		})
	}
}

func TestManifestFromSymbol(t *testing.T) {
	attrs := map[string]string{AttrEntryPoint: "New", AttrTitle: "Pong"}
	m, err := manifestFromSymbol(&attrs)
	require.NoError(t, err)
	assert.Equal(t, "Pong", m.Title)

	text := "Game-Class: New\nGame-Title: Pong\n"
	m, err = manifestFromSymbol(&text)
	require.NoError(t, err)
	assert.Equal(t, "New", m.EntryPoint)

	_, err = manifestFromSymbol(3)
	assert.ErrorIs(t, err, ErrManifestMissing)
}

func TestWithSharedInstance(t *testing.T) {
	shared := &testGame{name: "Shared"}
	f, err := factoryFromSymbol(func() *testGame { return &testGame{name: "Fresh"} })
	require.NoError(t, err)

	withSharedInstance(f, func() *testGame { return shared })
	g, err := instantiate(f)
	require.NoError(t, err)
	assert.Same(t, shared, g)

	g2, err := instantiate(f)
	require.NoError(t, err)
	assert.Same(t, g, g2)
}
