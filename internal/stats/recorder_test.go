package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"arcade-go/internal/game"
)

func TestRecorderSavesScore(t *testing.T) {
	s, _ := newTestStore(t)
	record(t, s, "Quiz", 10)

	var outcomes []Outcome
	rec := NewRecorder(s, nil, func(o Outcome) { outcomes = append(outcomes, o) })

	rec.OnGameFinished(game.NewGameStats("Quiz", map[string]any{"score": 42}, time.Now()))

	require.Len(t, outcomes, 1)
	assert.NoError(t, outcomes[0].Err)
	assert.Equal(t, 42.0, outcomes[0].Record.Score)
	assert.Equal(t, 10.0, outcomes[0].PreviousHigh)

	top, err := s.TopN(context.Background(), "Quiz", 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{42, 10}, scoresOf(top))
}

func TestRecorderReportsFailures(t *testing.T) {
	store := new(MockStatsStore)
	failure := &PersistenceError{Op: "record score", Err: errors.New("disk full")}
	store.On("HighScore", mock.Anything, "Quiz").Return(NoScore, nil)
	store.On("RecordScore", mock.Anything, "Quiz", mock.Anything).Return(ScoreRecord{}, failure)

	var got Outcome
	rec := NewRecorder(store, nil, func(o Outcome) { got = o })
	rec.OnGameFinished(game.NewGameStats("Quiz", map[string]any{"score": 1}, time.Now()))

	require.Error(t, got.Err)
	assert.True(t, errors.Is(got.Err, ErrPersistence))
	assert.Equal(t, "Quiz", got.Stats.GameName)
	store.AssertExpectations(t)
}

func TestRecorderWithoutReporter(t *testing.T) {
	s, _ := newTestStore(t)
	rec := NewRecorder(s, nil, nil)

	rec.OnGameFinished(game.NewGameStats("Quiz", map[string]any{"level": 2}, time.Now()))

	all, err := s.AllScores(context.Background(), "Quiz")
	require.NoError(t, err)
	assert.Empty(t, all)
}
