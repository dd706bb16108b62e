package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetExitCode(t *testing.T) {
	cause := errors.New("disk full")
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil", nil, ExitSuccess},
		{"plain error", cause, ExitGeneralError},
		{"game not found", GameNotFound("Snake", nil), ExitGameNotFound},
		{"storage", StorageError("save score", cause), ExitStorageError},
		{"wrapped twice", fmt.Errorf("play: %w", LoadFailed("snake.zip", cause)), ExitLoadFailed},
		{"config", ConfigError("bad timezone", cause), ExitConfigError},
		{"auth", AuthError("missing secret", nil), ExitAuthError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetExitCode(tt.err))
		})
	}
}

func TestArcadeErrorMessage(t *testing.T) {
	cause := errors.New("disk full")
	err := StorageError("failed to save score", cause)

	assert.Equal(t, "failed to save score: disk full", err.Error())
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "game not found: Snake", GameNotFound("Snake", nil).Error())
}
