package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"arcade-go/internal/stats"
	"arcade-go/internal/tui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available games",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) (err error) {
	ctx := commandContext(cmd)
	rt, err := openRuntime(ctx, true)
	if err != nil {
		return err
	}
	defer closeRuntime(rt, &err)

	names := rt.Registry.ListAvailable()
	if len(names) == 0 {
		logInfo("No games found. Install one with: arcade install <bundle>")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tHIGH SCORE")
	fmt.Fprintln(w, "----\t-------\t----------")

	for _, name := range names {
		g, ok := rt.Registry.Get(name)
		if !ok {
			continue
		}
		high, err := rt.Store.HighScore(ctx, name)
		if err != nil {
			return storageErr("high score", err)
		}
		highStr := "-"
		if high != stats.NoScore {
			highStr = tui.FormatScore(high)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, g.Version(), highStr)
	}

	return w.Flush()
}
