package stats

import (
	"context"
	"encoding/json"
	"io"
	"time"
)

// GameHistory is one game's section of an export.
type GameHistory struct {
	Name      string        `json:"name"`
	FilePath  string        `json:"file_path,omitempty"`
	HighScore float64       `json:"high_score"`
	Scores    []ScoreRecord `json:"scores"`
}

// Snapshot is a full dump of the store.
type Snapshot struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Games       []GameHistory `json:"games"`
}

// Snapshot collects every game with its complete history.
func (s *Store) Snapshot(ctx context.Context) (*Snapshot, error) {
	games, err := s.Games(ctx)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		GeneratedAt: s.now().UTC(),
		Games:       make([]GameHistory, 0, len(games)),
	}
	for _, g := range games {
		scores, err := s.AllScores(ctx, g.Name)
		if err != nil {
			return nil, err
		}
		high, err := s.HighScore(ctx, g.Name)
		if err != nil {
			return nil, err
		}
		snap.Games = append(snap.Games, GameHistory{
			Name:      g.Name,
			FilePath:  g.FilePath,
			HighScore: high,
			Scores:    scores,
		})
	}
	return snap, nil
}

// WriteJSON encodes the snapshot as indented JSON.
func (snap *Snapshot) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}
