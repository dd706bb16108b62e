package cmd

import (
	"github.com/spf13/cobra"

	"arcade-go/internal/errors"
)

var installCmd = &cobra.Command{
	Use:   "install <bundle>",
	Short: "Copy a game bundle into the plugins directory and load it",
	Long: `Copies a .so or .zip bundle, with its .properties sidecar manifest when one
sits next to it, into PLUGINS_DIR and loads it. Installed games are found
again by every later run.`,
	Args: cobra.ExactArgs(1),
	RunE: runInstall,
}

func init() {
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) (err error) {
	ctx := commandContext(cmd)

	rt, err := openRuntime(ctx, true)
	if err != nil {
		return err
	}
	defer closeRuntime(rt, &err)

	res, err := rt.Install(ctx, args[0])
	if err != nil {
		return errors.LoadFailed(args[0], err)
	}
	if !res.OK() {
		return errors.LoadFailed(args[0], res.Err)
	}
	if res.PersistErr != nil {
		logWarning("Installed %s but could not remember its path: %v", res.Name, res.PersistErr)
	}

	logSuccess("Installed %s %s (%s)", res.Name, res.Version, res.Kind)
	return nil
}
