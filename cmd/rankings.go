package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"arcade-go/internal/errors"
	"arcade-go/internal/stats"
	"arcade-go/internal/tui"
)

const dateLayout = "2006-01-02"

var (
	rankingsLimit int
	historyFrom   string
	historyTo     string
)

var rankingsCmd = &cobra.Command{
	Use:   "rankings [game]",
	Short: "Show the best runs of one game or of every game",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRankings,
}

var historyCmd = &cobra.Command{
	Use:   "history <game>",
	Short: "Show every run of a game, optionally limited to a date range",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

var highscoreCmd = &cobra.Command{
	Use:   "highscore <game>",
	Short: "Show the high score of a game",
	Args:  cobra.ExactArgs(1),
	RunE:  runHighscore,
}

func init() {
	rankingsCmd.Flags().IntVarP(&rankingsLimit, "top", "n", 0, "Number of runs per game (default RANKING_SIZE)")
	historyCmd.Flags().StringVar(&historyFrom, "from", "", "First day, YYYY-MM-DD")
	historyCmd.Flags().StringVar(&historyTo, "to", "", "Last day, YYYY-MM-DD (default today)")

	rootCmd.AddCommand(rankingsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(highscoreCmd)
}

func runRankings(cmd *cobra.Command, args []string) (err error) {
	ctx := commandContext(cmd)
	n := rankingsLimit
	if n <= 0 {
		n = cfg.RankingSize
	}

	rt, err := openRuntime(ctx, false)
	if err != nil {
		return err
	}
	defer closeRuntime(rt, &err)

	loc, err := cfg.Location()
	if err != nil {
		return errors.ConfigError("invalid timezone", err)
	}

	if len(args) == 1 {
		records, err := rt.Store.TopN(ctx, args[0], n)
		if err != nil {
			return storageErr("top scores", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), tui.RenderRankings(args[0], records, loc))
		return nil
	}

	all, err := rt.Store.TopNAllGames(ctx, n)
	if err != nil {
		return storageErr("top scores", err)
	}
	if len(all) == 0 {
		logInfo("No games have been played yet.")
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), tui.RenderAllRankings(all, loc))
	return nil
}

func runHistory(cmd *cobra.Command, args []string) (err error) {
	ctx := commandContext(cmd)
	name := args[0]

	loc, err := cfg.Location()
	if err != nil {
		return errors.ConfigError("invalid timezone", err)
	}

	var from, to time.Time
	ranged := historyFrom != "" || historyTo != ""
	if ranged {
		if historyFrom == "" {
			return errors.New(errors.ExitGeneralError, "--from is required with --to")
		}
		if from, err = time.ParseInLocation(dateLayout, historyFrom, loc); err != nil {
			return errors.Wrap(errors.ExitGeneralError, "invalid --from date", err)
		}
		to = time.Now().In(loc)
		if historyTo != "" {
			if to, err = time.ParseInLocation(dateLayout, historyTo, loc); err != nil {
				return errors.Wrap(errors.ExitGeneralError, "invalid --to date", err)
			}
		}
	}

	rt, err := openRuntime(ctx, false)
	if err != nil {
		return err
	}
	defer closeRuntime(rt, &err)

	var records []stats.ScoreRecord
	if ranged {
		records, err = rt.Store.ScoresInRange(ctx, name, from, to)
	} else {
		records, err = rt.Store.AllScores(ctx, name)
	}
	if err != nil {
		return storageErr("history", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), tui.RenderHistory(name, records, loc))
	return nil
}

func runHighscore(cmd *cobra.Command, args []string) (err error) {
	ctx := commandContext(cmd)
	name := args[0]

	rt, err := openRuntime(ctx, false)
	if err != nil {
		return err
	}
	defer closeRuntime(rt, &err)

	high, err := rt.Store.HighScore(ctx, name)
	if err != nil {
		return storageErr("high score", err)
	}
	if high == stats.NoScore {
		logInfo("%s has no scores yet.", name)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), tui.FormatScore(high))
	return nil
}
