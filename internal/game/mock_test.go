package game

import (
	"sync"

	"github.com/stretchr/testify/mock"
)

// MockListener is a testify mock of Listener.
type MockListener struct {
	mock.Mock
}

func (m *MockListener) OnGameFinished(stats GameStats) {
	m.Called(stats)
}

// fakeGame is a minimal game driven by the test.
type fakeGame struct {
	Lifecycle

	name    string
	version string

	mu     sync.Mutex
	score  int
	starts int
	stops  int
}

func newFakeGame(name string) *fakeGame {
	return &fakeGame{name: name, version: "1.0"}
}

func (g *fakeGame) Start() {
	g.mu.Lock()
	g.starts++
	g.mu.Unlock()
	g.Begin()
}

func (g *fakeGame) Stop() {
	g.mu.Lock()
	g.stops++
	g.mu.Unlock()
	g.Finish(g.name, g.Stats())
}

func (g *fakeGame) Name() string    { return g.name }
func (g *fakeGame) Version() string { return g.version }

func (g *fakeGame) Stats() map[string]any {
	g.mu.Lock()
	defer g.mu.Unlock()
	return map[string]any{"score": g.score}
}

func (g *fakeGame) setScore(score int) {
	g.mu.Lock()
	g.score = score
	g.mu.Unlock()
}

// win ends the run the way a terminal game condition would.
func (g *fakeGame) win(score int) (GameStats, bool) {
	g.setScore(score)
	return g.Finish(g.name, g.Stats())
}

type presentingGame struct {
	*fakeGame
}

func (g presentingGame) View() any { return "board" }

// recorder collects notifications for assertions.
type recorder struct {
	mu    sync.Mutex
	stats []GameStats
}

func (r *recorder) OnGameFinished(stats GameStats) {
	r.mu.Lock()
	r.stats = append(r.stats, stats)
	r.mu.Unlock()
}

func (r *recorder) received() []GameStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]GameStats, len(r.stats))
	copy(out, r.stats)
	return out
}
