package stats

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	dialectSQLite   = "sqlite"
	dialectPostgres = "postgres"
)

func init() {
	sqlx.BindDriver(dialectSQLite, sqlx.QUESTION)
}

// StatsStore defines the persistence operations behind rankings and reloads
type StatsStore interface {
	EnsureSchema(ctx context.Context) error
	RegisterGame(ctx context.Context, name, filePath string) error
	RecordScore(ctx context.Context, gameName string, stats map[string]any) (ScoreRecord, error)

	TopN(ctx context.Context, gameName string, n int) ([]ScoreRecord, error)
	TopNAllGames(ctx context.Context, n int) (map[string][]ScoreRecord, error)
	AllScores(ctx context.Context, gameName string) ([]ScoreRecord, error)
	ScoresInRange(ctx context.Context, gameName string, start, end time.Time) ([]ScoreRecord, error)
	HighScore(ctx context.Context, gameName string) (float64, error)
	DeleteHistory(ctx context.Context, gameName string) (int64, error)

	KnownGamesWithPaths(ctx context.Context) (map[string]string, error)
	Games(ctx context.Context) ([]GameRecord, error)
}

var _ StatsStore = (*Store)(nil)

// Store is the SQL implementation of StatsStore. It speaks SQLite for file
// paths and Postgres for postgres:// URLs.
type Store struct {
	db       *sqlx.DB
	dialect  string
	now      func() time.Time
	location *time.Location
	logger   *slog.Logger
}

type Option func(*Store)

// WithClock overrides the clock used to stamp recorded scores.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLocation sets the time zone calendar-day ranges are evaluated in.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.location = loc
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open connects to the database named by dsn. It does not create the schema;
// call EnsureSchema for that.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	dialect, source, err := parseDSN(dsn)
	if err != nil {
		return nil, persistErr("open", err)
	}

	db, err := sqlx.Open(dialect, source)
	if err != nil {
		return nil, persistErr("open", err)
	}
	if dialect == dialectSQLite {
		// One writer at a time avoids SQLITE_BUSY under concurrent saves.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, persistErr("ping", err)
	}

	s := &Store{
		db:       db,
		dialect:  dialect,
		now:      time.Now,
		location: time.Local,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "stats", "dialect", dialect)
	return s, nil
}

func parseDSN(dsn string) (dialect, source string, err error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case dsn == "":
		return "", "", errors.New("database url is required")
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return dialectPostgres, dsn, nil
	}

	path := strings.TrimPrefix(dsn, "sqlite://")
	if path == ":memory:" {
		return dialectSQLite, path, nil
	}
	path = filepath.Clean(path)
	return dialectSQLite, "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Dialect reports "sqlite" or "postgres".
func (s *Store) Dialect() string {
	return s.dialect
}

// RegisterGame records a game's load path. Registering a known name is a no-op.
func (s *Store) RegisterGame(ctx context.Context, name, filePath string) error {
	query := s.db.Rebind(`
		INSERT INTO games (name, file_path)
		VALUES (?, ?)
		ON CONFLICT (name) DO NOTHING`)

	if _, err := s.db.ExecContext(ctx, query, name, filePath); err != nil {
		return persistErr("register game", err)
	}
	return nil
}

// RecordScore stores the score of a finished run, creating the game row on
// first use.
func (s *Store) RecordScore(ctx context.Context, gameName string, stats map[string]any) (ScoreRecord, error) {
	score, err := Score(stats)
	if err != nil {
		return ScoreRecord{}, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return ScoreRecord{}, persistErr("record score", err)
	}
	defer tx.Rollback()

	gameID, err := s.getOrCreateGame(ctx, tx, gameName)
	if err != nil {
		return ScoreRecord{}, persistErr("record score", err)
	}

	recordedAt := s.now()
	query := tx.Rebind(`
		INSERT INTO scores (game_id, score, recorded_at)
		VALUES (?, ?, ?)
		RETURNING id`)

	var id int64
	if err := tx.QueryRowxContext(ctx, query, gameID, score, toMillis(recordedAt)).Scan(&id); err != nil {
		return ScoreRecord{}, persistErr("record score", err)
	}
	if err := tx.Commit(); err != nil {
		return ScoreRecord{}, persistErr("record score", err)
	}

	s.logger.Debug("score recorded", "game", gameName, "score", score, "id", id)
	return ScoreRecord{
		ID:         id,
		GameID:     gameID,
		Score:      score,
		RecordedAt: fromMillis(toMillis(recordedAt)),
	}, nil
}

// getOrCreateGame relies on the unique name constraint, so concurrent first
// saves of the same game converge on one row.
func (s *Store) getOrCreateGame(ctx context.Context, tx *sqlx.Tx, name string) (int64, error) {
	insert := tx.Rebind(`
		INSERT INTO games (name, file_path)
		VALUES (?, '')
		ON CONFLICT (name) DO NOTHING`)
	if _, err := tx.ExecContext(ctx, insert, name); err != nil {
		return 0, fmt.Errorf("failed to create game: %w", err)
	}

	var id int64
	if err := tx.GetContext(ctx, &id, tx.Rebind(`SELECT id FROM games WHERE name = ?`), name); err != nil {
		return 0, fmt.Errorf("failed to get game: %w", err)
	}
	return id, nil
}

// TopN returns at most n scores, best first. Equal scores keep insertion order.
func (s *Store) TopN(ctx context.Context, gameName string, n int) ([]ScoreRecord, error) {
	if n <= 0 {
		return []ScoreRecord{}, nil
	}
	query := `
		SELECT s.id, s.game_id, s.score, s.recorded_at
		FROM scores s
		JOIN games g ON g.id = s.game_id
		WHERE g.name = ?
		ORDER BY s.score DESC, s.id ASC
		LIMIT ?`

	records, err := s.selectScores(ctx, query, gameName, n)
	if err != nil {
		return nil, persistErr("top scores", err)
	}
	return records, nil
}

// TopNAllGames returns TopN for every known game, including games with no runs.
func (s *Store) TopNAllGames(ctx context.Context, n int) (map[string][]ScoreRecord, error) {
	var names []string
	if err := s.db.SelectContext(ctx, &names, `SELECT name FROM games ORDER BY name`); err != nil {
		return nil, persistErr("top scores", err)
	}

	out := make(map[string][]ScoreRecord, len(names))
	for _, name := range names {
		records, err := s.TopN(ctx, name, n)
		if err != nil {
			return nil, err
		}
		out[name] = records
	}
	return out, nil
}

// AllScores returns the full history of a game, most recent first.
func (s *Store) AllScores(ctx context.Context, gameName string) ([]ScoreRecord, error) {
	query := `
		SELECT s.id, s.game_id, s.score, s.recorded_at
		FROM scores s
		JOIN games g ON g.id = s.game_id
		WHERE g.name = ?
		ORDER BY s.recorded_at DESC, s.id DESC`

	records, err := s.selectScores(ctx, query, gameName)
	if err != nil {
		return nil, persistErr("all scores", err)
	}
	return records, nil
}

// ScoresInRange returns the runs recorded between the calendar days of start
// and end, both inclusive, most recent first.
func (s *Store) ScoresInRange(ctx context.Context, gameName string, start, end time.Time) ([]ScoreRecord, error) {
	from := startOfDay(start, s.location)
	until := startOfDay(end, s.location).AddDate(0, 0, 1)
	if !until.After(from) {
		return []ScoreRecord{}, nil
	}

	query := `
		SELECT s.id, s.game_id, s.score, s.recorded_at
		FROM scores s
		JOIN games g ON g.id = s.game_id
		WHERE g.name = ? AND s.recorded_at >= ? AND s.recorded_at < ?
		ORDER BY s.recorded_at DESC, s.id DESC`

	records, err := s.selectScores(ctx, query, gameName, toMillis(from), toMillis(until))
	if err != nil {
		return nil, persistErr("scores in range", err)
	}
	return records, nil
}

// HighScore returns the best score of a game, or NoScore when there is none.
func (s *Store) HighScore(ctx context.Context, gameName string) (float64, error) {
	query := s.db.Rebind(`
		SELECT MAX(s.score)
		FROM scores s
		JOIN games g ON g.id = s.game_id
		WHERE g.name = ?`)

	var high sql.NullFloat64
	if err := s.db.GetContext(ctx, &high, query, gameName); err != nil {
		return 0, persistErr("high score", err)
	}
	if !high.Valid {
		return NoScore, nil
	}
	return high.Float64, nil
}

// DeleteHistory removes every score of a game and keeps the game itself.
func (s *Store) DeleteHistory(ctx context.Context, gameName string) (int64, error) {
	query := s.db.Rebind(`
		DELETE FROM scores
		WHERE game_id IN (SELECT id FROM games WHERE name = ?)`)

	res, err := s.db.ExecContext(ctx, query, gameName)
	if err != nil {
		return 0, persistErr("delete history", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, persistErr("delete history", err)
	}

	s.logger.Info("history deleted", "game", gameName, "count", n)
	return n, nil
}

// KnownGamesWithPaths maps every known game to its stored load path.
func (s *Store) KnownGamesWithPaths(ctx context.Context) (map[string]string, error) {
	games, err := s.Games(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(games))
	for _, g := range games {
		out[g.Name] = g.FilePath
	}
	return out, nil
}

// Games lists the stored game records by name.
func (s *Store) Games(ctx context.Context) ([]GameRecord, error) {
	var games []GameRecord
	if err := s.db.SelectContext(ctx, &games, `SELECT id, name, file_path FROM games ORDER BY name`); err != nil {
		return nil, persistErr("list games", err)
	}
	return games, nil
}

func (s *Store) selectScores(ctx context.Context, query string, args ...any) ([]ScoreRecord, error) {
	var rows []scoreRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	records := make([]ScoreRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.record())
	}
	return records, nil
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
