package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"arcade-go/config"
	"arcade-go/internal/errors"
	"arcade-go/internal/logging"
)

var (
	verbose    bool
	jsonOutput bool
	configPath string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "arcade",
	Short: "Terminal arcade with pluggable games and persistent high scores",
	Long: `arcade loads games from the plugins directory, lets you play them and keeps
every finished run in a stats database.

Games come from three places:
  - games built into the binary
  - bundles in the plugins directory (.so native plugins, .zip scripts)
  - bundles remembered from earlier scans`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return errors.ConfigError("failed to load configuration", err)
		}
		cfg = loaded
		logging.Setup(verbose || logging.IsDebugLevel(cfg.LogLevel), jsonOutput || cfg.LogJSON, os.Stderr)
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default ./config.yaml)")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Helper aliases for user-facing output (delegates to logging package)
var (
	logInfo    = logging.UserInfo
	logSuccess = logging.UserSuccess
	logWarning = logging.UserWarning
	logError   = logging.UserError
)
