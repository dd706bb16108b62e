package plugin

import (
	"errors"
	"fmt"
)

var (
	ErrManifestMissing    = errors.New("manifest missing or incomplete")
	ErrCapabilityMismatch = errors.New("bundle does not implement the game capability set")
	ErrInstantiation      = errors.New("bundle could not be instantiated")
	ErrBundleMissing      = errors.New("bundle file not found")
	ErrUnsupportedBundle  = errors.New("unsupported bundle format")
	ErrLoad               = errors.New("bundle code could not be loaded")
)

// BundleError ties a load failure to the bundle it happened on.
type BundleError struct {
	Path string
	Op   string
	Err  error
}

func (e *BundleError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *BundleError) Unwrap() error {
	return e.Err
}

func bundleErr(op, path string, err error) error {
	var be *BundleError
	if errors.As(err, &be) {
		return err
	}
	return &BundleError{Path: path, Op: op, Err: err}
}
