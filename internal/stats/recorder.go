package stats

import (
	"context"
	"log/slog"
	"time"

	"arcade-go/internal/game"
)

const defaultSaveTimeout = 10 * time.Second

// Outcome reports what happened to a finished run's stats.
type Outcome struct {
	Stats  game.GameStats
	Record ScoreRecord
	// PreviousHigh is the high score before this run, NoScore if none.
	PreviousHigh float64
	Err          error
}

// Recorder persists finished runs. It is registered as a global listener and
// therefore runs on the dispatcher goroutine, never on a game's loop.
type Recorder struct {
	store   StatsStore
	logger  *slog.Logger
	timeout time.Duration
	report  func(Outcome)
}

func NewRecorder(store StatsStore, logger *slog.Logger, report func(Outcome)) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		store:   store,
		logger:  logger.With("component", "recorder"),
		timeout: defaultSaveTimeout,
		report:  report,
	}
}

// OnGameFinished saves the run. A failed save is logged and reported; the run
// still counts as finished.
func (r *Recorder) OnGameFinished(stats game.GameStats) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	outcome := Outcome{Stats: stats, PreviousHigh: NoScore}
	if high, err := r.store.HighScore(ctx, stats.GameName); err == nil {
		outcome.PreviousHigh = high
	}

	record, err := r.store.RecordScore(ctx, stats.GameName, stats.Stats)
	if err != nil {
		r.logger.Error("failed to save game stats",
			"game", stats.GameName,
			"run_id", stats.RunID,
			"error", err)
		outcome.Err = err
	} else {
		r.logger.Info("game stats saved",
			"game", stats.GameName,
			"run_id", stats.RunID,
			"score", record.Score)
		outcome.Record = record
	}

	if r.report != nil {
		r.report(outcome)
	}
}
