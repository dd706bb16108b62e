package cmd

import (
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset <game>",
	Short: "Delete every recorded run of a game",
	Args:  cobra.ExactArgs(1),
	RunE:  runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) (err error) {
	ctx := commandContext(cmd)
	name := args[0]

	rt, err := openRuntime(ctx, false)
	if err != nil {
		return err
	}
	defer closeRuntime(rt, &err)

	n, err := rt.Store.DeleteHistory(ctx, name)
	if err != nil {
		return storageErr("delete history", err)
	}
	if n == 0 {
		logInfo("%s has no recorded runs.", name)
		return nil
	}
	logSuccess("Deleted %d runs of %s", n, name)
	return nil
}
