package stats

import "time"

// NoScore is returned by HighScore when a game has no recorded runs.
const NoScore = -1.0

// GameRecord is the persisted identity of a known game.
type GameRecord struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	FilePath string `db:"file_path" json:"file_path"`
}

// ScoreRecord is one finished run.
type ScoreRecord struct {
	ID         int64     `json:"id"`
	GameID     int64     `json:"game_id"`
	Score      float64   `json:"score"`
	RecordedAt time.Time `json:"recorded_at"`
}

// scoreRow mirrors the scores table; recorded_at is stored as unix millis.
type scoreRow struct {
	ID         int64   `db:"id"`
	GameID     int64   `db:"game_id"`
	Score      float64 `db:"score"`
	RecordedAt int64   `db:"recorded_at"`
}

func (r scoreRow) record() ScoreRecord {
	return ScoreRecord{
		ID:         r.ID,
		GameID:     r.GameID,
		Score:      r.Score,
		RecordedAt: fromMillis(r.RecordedAt),
	}
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}
