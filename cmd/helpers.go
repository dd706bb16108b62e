package cmd

import (
	"context"
	stderrors "errors"

	"github.com/spf13/cobra"

	"arcade-go/internal/app"
	"arcade-go/internal/errors"
	"arcade-go/internal/game"
	"arcade-go/internal/logging"
	"arcade-go/internal/plugin"
)

// openRuntime opens the stats store. With boot set it also loads every game
// and reports the bundles that failed; otherwise it only ensures the schema.
func openRuntime(ctx context.Context, boot bool, opts ...app.Option) (*app.Runtime, error) {
	rt, err := app.Open(ctx, cfg, logging.Logger, opts...)
	if err != nil {
		return nil, storageErr("open stats store", err)
	}

	if !boot {
		if err := rt.Store.EnsureSchema(ctx); err != nil {
			rt.Close()
			return nil, storageErr("create schema", err)
		}
		return rt, nil
	}

	results, err := rt.Boot(ctx)
	if err != nil {
		rt.Close()
		return nil, storageErr("boot", err)
	}
	reportLoadFailures(results)
	return rt, nil
}

func reportLoadFailures(results []plugin.LoadResult) {
	for _, res := range results {
		if !res.OK() {
			logWarning("Skipped %s: %v", describeBundle(res), res.Err)
		} else if res.PersistErr != nil {
			logWarning("Loaded %s but could not remember its path: %v", res.Name, res.PersistErr)
		}
	}
}

func describeBundle(res plugin.LoadResult) string {
	if res.Name != "" {
		return res.Name
	}
	return res.Path
}

// closeRuntime closes rt, keeping the first error.
func closeRuntime(rt *app.Runtime, err *error) {
	if cerr := rt.Close(); cerr != nil && *err == nil {
		*err = storageErr("close stats store", cerr)
	}
}

func storageErr(op string, err error) error {
	var arcadeErr *errors.ArcadeError
	if stderrors.As(err, &arcadeErr) {
		return err
	}
	return errors.StorageError(op, err)
}

func notFoundErr(name string, err error) error {
	if stderrors.Is(err, game.ErrNotFound) {
		return errors.GameNotFound(name, err)
	}
	return err
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
