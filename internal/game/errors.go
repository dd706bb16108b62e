package game

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("game not found")

// NotFoundError is returned by Registry.Start for names that were never registered.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %q", ErrNotFound, e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}
