package cmd

import (
	"github.com/spf13/cobra"

	"arcade-go/internal/app"
	"arcade-go/internal/game/ranking"
	"arcade-go/internal/logging"
	"arcade-go/internal/stats"
	"arcade-go/internal/tui"
)

var playCmd = &cobra.Command{
	Use:   "play [name]",
	Short: "Play a game (pick one interactively when no name is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) (err error) {
	ctx := commandContext(cmd)

	// Outcomes arrive on the dispatcher goroutine while the game owns the
	// terminal, so they are printed once the game screen is gone.
	outcomes := make(chan stats.Outcome, 16)
	rt, err := openRuntime(ctx, true, app.WithReporter(func(o stats.Outcome) {
		select {
		case outcomes <- o:
		default:
			logging.Warn("outcome dropped", "game", o.Stats.GameName)
		}
	}))
	if err != nil {
		return err
	}
	defer closeRuntime(rt, &err)

	name := ""
	if len(args) == 1 {
		name = args[0]
	} else {
		entries, err := gameEntries(cmd, rt)
		if err != nil {
			return err
		}
		result, err := tui.RunPicker(entries)
		if err != nil {
			return err
		}
		if result.Action != tui.ActionPlay {
			return nil
		}
		name = result.Game
	}

	handle, err := rt.Play(name)
	if err != nil {
		return notFoundErr(name, err)
	}

	runErr := tui.RunGame(handle, func() bool {
		current, ok := rt.Registry.Current()
		return ok && current == name
	})

	rt.Registry.StopCurrent()
	rt.Dispatcher.Wait()
	for {
		select {
		case o := <-outcomes:
			reportOutcome(o)
		default:
			return runErr
		}
	}
}

func gameEntries(cmd *cobra.Command, rt *app.Runtime) ([]tui.GameEntry, error) {
	ctx := commandContext(cmd)
	names := rt.Registry.ListAvailable()
	entries := make([]tui.GameEntry, 0, len(names))
	for _, name := range names {
		g, ok := rt.Registry.Get(name)
		if !ok {
			continue
		}
		high, err := rt.Store.HighScore(ctx, name)
		if err != nil {
			return nil, storageErr("high score", err)
		}
		entries = append(entries, tui.GameEntry{Name: name, Version: g.Version(), HighScore: high})
	}
	return entries, nil
}

// reportOutcome prints the status line of a finished run.
func reportOutcome(o stats.Outcome) {
	name := o.Stats.GameName
	if o.Err != nil {
		logError("%s: failed to save score: %v", name, o.Err)
		return
	}
	score := tui.FormatScore(o.Record.Score)
	if ranking.IsNewHigh(o.Record.Score, o.PreviousHigh) {
		logSuccess("%s: score %s saved, new high score!", name, score)
		return
	}
	logSuccess("%s: score %s saved", name, score)
}
