package plugin

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseManifest(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Manifest
	}{
		{
			name:     "Jar style",
			input:    "Manifest-Version: 1.0\nGame-Class: snake\nGame-Title: Snake\n",
			expected: Manifest{EntryPoint: "snake", Title: "Snake"},
		},
		{
			name:     "Properties style",
			input:    "Game-Class=pong.New\nGame-Title = Pong\nGame-Version=2.1\nGame-Loader=native\n",
			expected: Manifest{EntryPoint: "pong.New", Title: "Pong", Version: "2.1", Kind: "native"},
		},
		{
			name:     "Title with spaces",
			input:    "Game-Class: tetris\nGame-Title: Falling Blocks  \n",
			expected: Manifest{EntryPoint: "tetris", Title: "Falling Blocks"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseManifest([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, m)
			assert.NoError(t, m.Validate())
		})
	}
}

func TestManifestValidate(t *testing.T) {
	tests := []struct {
		name     string
		manifest Manifest
	}{
		{"Empty", Manifest{}},
		{"No entry point", Manifest{Title: "Snake"}},
		{"No title", Manifest{EntryPoint: "snake"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.manifest.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrManifestMissing))
		})
	}
}

func TestManifestFromMap(t *testing.T) {
	m := ManifestFromMap(map[string]string{
		AttrEntryPoint: "Game",
		AttrTitle:      " Breakout ",
	})
	assert.Equal(t, Manifest{EntryPoint: "Game", Title: "Breakout"}, m)
}

func TestSidecar(t *testing.T) {
	dir := t.TempDir()
	bundle := writeFile(t, dir, "snake.zip", "not a zip")
	assert.Equal(t, dir+"/snake.properties", SidecarPath(bundle))

	_, err := ReadSidecar(bundle)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	writeFile(t, dir, "snake.properties", "Game-Class=snake\nGame-Title=Snake\n")
	m, err := ReadSidecar(bundle)
	require.NoError(t, err)
	assert.Equal(t, "Snake", m.Title)
}
