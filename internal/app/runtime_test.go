package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arcade-go/config"
	"arcade-go/internal/game"
	"arcade-go/internal/games/quiz"
	"arcade-go/internal/plugin"
	"arcade-go/internal/stats"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		PluginsDir:  filepath.Join(dir, "plugins"),
		DatabaseURL: filepath.Join(dir, "arcade.db"),
		Timezone:    "UTC",
		RankingSize: 3,
	}
}

func oneQuestionCatalog(points int) *plugin.Catalog {
	c := plugin.NewCatalog()
	c.Add(plugin.Entry{
		Manifest: plugin.Manifest{EntryPoint: quiz.EntryPoint, Title: quiz.Title, Version: quiz.Version},
		New: func() game.Game {
			return quiz.New(quiz.Question{Prompt: "Answer?", Answers: []string{"42"}, Points: points})
		},
	})
	return c
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRuntimePlayRecordsScore(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	var (
		mu       sync.Mutex
		outcomes []stats.Outcome
	)
	rt, err := Open(ctx, cfg, quietLogger(),
		WithCatalog(oneQuestionCatalog(42)),
		WithReporter(func(o stats.Outcome) {
			mu.Lock()
			outcomes = append(outcomes, o)
			mu.Unlock()
		}))
	require.NoError(t, err)
	defer rt.Close()

	results, err := rt.Boot(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].OK())
	assert.Equal(t, []string{quiz.Title}, rt.Registry.ListAvailable())

	handle, err := rt.Play(quiz.Title)
	require.NoError(t, err)
	assert.NotNil(t, handle.View)

	q, ok := handle.Game.(*quiz.Game)
	require.True(t, ok)
	correct, done := q.Answer("42")
	assert.True(t, correct)
	assert.True(t, done)

	rt.Dispatcher.Wait()

	top, err := rt.Store.TopN(ctx, quiz.Title, cfg.RankingSize)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, 42.0, top[0].Score)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, outcomes, 1)
	assert.NoError(t, outcomes[0].Err)
	assert.Equal(t, stats.NoScore, outcomes[0].PreviousHigh)

	_, running := rt.Registry.Current()
	assert.False(t, running, "a finished game is no longer current")
}

func TestRuntimeCloseSavesRunningGame(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	rt, err := Open(ctx, cfg, quietLogger(), WithCatalog(oneQuestionCatalog(10)))
	require.NoError(t, err)
	_, err = rt.Boot(ctx)
	require.NoError(t, err)

	_, err = rt.Play(quiz.Title)
	require.NoError(t, err)
	require.NoError(t, rt.Close())

	reopened, err := Open(ctx, cfg, quietLogger(), WithCatalog(oneQuestionCatalog(10)))
	require.NoError(t, err)
	defer reopened.Close()
	_, err = reopened.Boot(ctx)
	require.NoError(t, err)

	high, err := reopened.Store.HighScore(ctx, quiz.Title)
	require.NoError(t, err)
	assert.Equal(t, 0.0, high, "stopping an unanswered quiz saves a zero score")
}

func TestRuntimeBootSkipsBrokenBundles(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	rt, err := Open(ctx, cfg, quietLogger(), WithCatalog(oneQuestionCatalog(1)))
	require.NoError(t, err)
	defer rt.Close()

	// A persisted path that no longer exists must not stop the boot.
	require.NoError(t, rt.Store.EnsureSchema(ctx))
	require.NoError(t, rt.Store.RegisterGame(ctx, "Gone", filepath.Join(cfg.PluginsDir, "gone.zip")))

	results, err := rt.Boot(ctx)
	require.NoError(t, err)

	var failed []string
	for _, res := range results {
		if !res.OK() {
			failed = append(failed, res.Name)
		}
	}
	assert.Equal(t, []string{"Gone"}, failed)
	assert.Equal(t, []string{quiz.Title}, rt.Registry.ListAvailable())
}

func TestRuntimePlayUnknownGame(t *testing.T) {
	ctx := context.Background()
	rt, err := Open(ctx, testConfig(t), quietLogger(), WithCatalog(plugin.NewCatalog()))
	require.NoError(t, err)
	defer rt.Close()
	_, err = rt.Boot(ctx)
	require.NoError(t, err)

	_, err = rt.Play("Nope")
	assert.ErrorIs(t, err, game.ErrNotFound)
}

func TestDefaultCatalogSharesQuizInstance(t *testing.T) {
	ctx := context.Background()
	rt, err := Open(ctx, testConfig(t), quietLogger())
	require.NoError(t, err)
	defer rt.Close()
	_, err = rt.Boot(ctx)
	require.NoError(t, err)

	g, ok := rt.Registry.Get(quiz.Title)
	require.True(t, ok)
	assert.Same(t, quiz.Instance(), g)
}

func TestRuntimesShareQuizWithoutCrossTalk(t *testing.T) {
	ctx := context.Background()
	shared, ok := quiz.Instance().(*quiz.Game)
	require.True(t, ok)

	for i := 0; i < 2; i++ {
		rt, err := Open(ctx, testConfig(t), quietLogger())
		require.NoError(t, err)
		_, err = rt.Boot(ctx)
		require.NoError(t, err)

		_, err = rt.Play(quiz.Title)
		require.NoError(t, err)
		_, stopped := rt.Registry.StopCurrent()
		require.True(t, stopped)
		rt.Dispatcher.Wait()

		scores, err := rt.Store.AllScores(ctx, quiz.Title)
		require.NoError(t, err)
		assert.Len(t, scores, 1, "runtime %d records only its own run", i)
		assert.Equal(t, 0, shared.ListenerCount(), "runtime %d left listeners on the shared quiz", i)

		require.NoError(t, rt.Close())
	}
}
