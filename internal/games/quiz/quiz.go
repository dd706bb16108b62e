// Package quiz is the built-in sample game: a short terminal quiz.
package quiz

import (
	"strings"
	"sync"

	"arcade-go/internal/game"
)

const (
	EntryPoint = "quiz"
	Title      = "Quiz"
	Version    = "1.0.0"

	defaultPoints = 10
	// streakBonus is added for every consecutive correct answer after the first.
	streakBonus = 2
)

// Question is one prompt with its accepted answers.
type Question struct {
	Prompt  string
	Answers []string
	Points  int
}

func (q Question) accepts(answer string) bool {
	answer = normalize(answer)
	for _, a := range q.Answers {
		if normalize(a) == answer {
			return true
		}
	}
	return false
}

func (q Question) points() int {
	if q.Points > 0 {
		return q.Points
	}
	return defaultPoints
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// DefaultQuestions is the question set of the shipped quiz.
var DefaultQuestions = []Question{
	{Prompt: "Which keyword starts a goroutine?", Answers: []string{"go"}},
	{Prompt: "What does the built-in len return for a nil slice?", Answers: []string{"0", "zero"}},
	{Prompt: "Which package holds Printf?", Answers: []string{"fmt"}},
	{Prompt: "What is the zero value of a pointer?", Answers: []string{"nil"}},
	{Prompt: "Which statement defers a call until the function returns?", Answers: []string{"defer"}},
}

// Game is a quiz run. Start resets the run; answering the last question or
// calling Stop finishes it.
type Game struct {
	game.Lifecycle

	questions []Question

	mu       sync.Mutex
	index    int
	correct  int
	streak   int
	score    int
	answered int
}

// New returns a quiz over questions, or DefaultQuestions when none are given.
func New(questions ...Question) *Game {
	if len(questions) == 0 {
		questions = DefaultQuestions
	}
	return &Game{questions: questions}
}

var (
	sharedOnce sync.Once
	shared     *Game
)

// Instance returns the process-wide quiz.
func Instance() game.Game {
	sharedOnce.Do(func() { shared = New() })
	return shared
}

func (g *Game) Name() string    { return Title }
func (g *Game) Version() string { return Version }

func (g *Game) Start() {
	if !g.Begin() {
		return
	}
	g.mu.Lock()
	g.index, g.correct, g.streak, g.score, g.answered = 0, 0, 0, 0, 0
	g.mu.Unlock()
}

// Stop ends a running quiz with the score reached so far.
func (g *Game) Stop() {
	g.Finish(g.Name(), g.Stats())
}

func (g *Game) Stats() map[string]any {
	g.mu.Lock()
	defer g.mu.Unlock()
	return map[string]any{
		"score":    g.score,
		"correct":  g.correct,
		"answered": g.answered,
		"total":    len(g.questions),
	}
}

// Current returns the question being asked, or false once the run is over.
func (g *Game) Current() (Question, int, bool) {
	if g.State() != game.StateRunning {
		return Question{}, 0, false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.index >= len(g.questions) {
		return Question{}, g.index, false
	}
	return g.questions[g.index], g.index, true
}

// Answer grades answer against the current question and moves on. It reports
// whether the answer was right and whether the run is over.
func (g *Game) Answer(answer string) (correct, done bool) {
	if g.State() != game.StateRunning {
		return false, true
	}

	g.mu.Lock()
	if g.index >= len(g.questions) {
		g.mu.Unlock()
		return false, true
	}
	q := g.questions[g.index]
	correct = q.accepts(answer)
	if correct {
		g.score += q.points() + g.streak*streakBonus
		g.streak++
		g.correct++
	} else {
		g.streak = 0
	}
	g.answered++
	g.index++
	done = g.index >= len(g.questions)
	g.mu.Unlock()

	if done {
		g.Finish(g.Name(), g.Stats())
	}
	return correct, done
}

// View returns the terminal model for this run.
func (g *Game) View() any {
	return newModel(g)
}

var (
	_ game.Game      = (*Game)(nil)
	_ game.Presenter = (*Game)(nil)
)
