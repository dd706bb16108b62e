package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"arcade-go/internal/api"
	"arcade-go/internal/auth"
	"arcade-go/internal/errors"
	"arcade-go/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve games, rankings and events over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) (err error) {
	if err := cfg.RequireJWT(); err != nil {
		return errors.ConfigError("serve needs token settings", err)
	}
	authService, err := auth.NewService([]byte(cfg.JWTSecret), cfg.JWTExpiration)
	if err != nil {
		return errors.AuthError("failed to create token service", err)
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := openRuntime(ctx, true)
	if err != nil {
		return err
	}
	defer closeRuntime(rt, &err)

	loc, err := cfg.Location()
	if err != nil {
		return errors.ConfigError("invalid timezone", err)
	}

	handler := api.NewHandler(rt.Registry, rt.Store, authService, api.Options{
		RankingSize: cfg.RankingSize,
		Location:    loc,
		Logger:      logging.Logger,
	})
	server := api.NewServer(handler, fmt.Sprintf(":%d", cfg.Port), cfg.ShutdownTimeout)

	logInfo("Serving on :%d (%d games)", cfg.Port, len(rt.Registry.ListAvailable()))
	return server.ListenAndServe(ctx)
}
