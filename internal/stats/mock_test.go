package stats

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockStatsStore is a mock implementation of StatsStore
type MockStatsStore struct {
	mock.Mock
}

func (m *MockStatsStore) EnsureSchema(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockStatsStore) RegisterGame(ctx context.Context, name, filePath string) error {
	return m.Called(ctx, name, filePath).Error(0)
}

func (m *MockStatsStore) RecordScore(ctx context.Context, gameName string, stats map[string]any) (ScoreRecord, error) {
	args := m.Called(ctx, gameName, stats)
	return args.Get(0).(ScoreRecord), args.Error(1)
}

func (m *MockStatsStore) TopN(ctx context.Context, gameName string, n int) ([]ScoreRecord, error) {
	args := m.Called(ctx, gameName, n)
	return args.Get(0).([]ScoreRecord), args.Error(1)
}

func (m *MockStatsStore) TopNAllGames(ctx context.Context, n int) (map[string][]ScoreRecord, error) {
	args := m.Called(ctx, n)
	return args.Get(0).(map[string][]ScoreRecord), args.Error(1)
}

func (m *MockStatsStore) AllScores(ctx context.Context, gameName string) ([]ScoreRecord, error) {
	args := m.Called(ctx, gameName)
	return args.Get(0).([]ScoreRecord), args.Error(1)
}

func (m *MockStatsStore) ScoresInRange(ctx context.Context, gameName string, start, end time.Time) ([]ScoreRecord, error) {
	args := m.Called(ctx, gameName, start, end)
	return args.Get(0).([]ScoreRecord), args.Error(1)
}

func (m *MockStatsStore) HighScore(ctx context.Context, gameName string) (float64, error) {
	args := m.Called(ctx, gameName)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockStatsStore) DeleteHistory(ctx context.Context, gameName string) (int64, error) {
	args := m.Called(ctx, gameName)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatsStore) KnownGamesWithPaths(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockStatsStore) Games(ctx context.Context) ([]GameRecord, error) {
	args := m.Called(ctx)
	return args.Get(0).([]GameRecord), args.Error(1)
}
