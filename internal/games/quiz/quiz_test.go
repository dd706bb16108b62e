package quiz

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arcade-go/internal/game"
)

func TestAnswerScoring(t *testing.T) {
	tests := []struct {
		name     string
		answers  []string
		expected int
	}{
		{"All wrong", []string{"x", "x", "x"}, 0},
		{"One right", []string{"a", "x", "x"}, 10},
		{"Streak bonus", []string{"a", "b", "c"}, 10 + 12 + 14},
		{"Broken streak", []string{"a", "x", "c"}, 20},
		{"Case and spacing", []string{"  A ", "B", "x"}, 22},
	}

	questions := []Question{
		{Prompt: "1", Answers: []string{"a"}},
		{Prompt: "2", Answers: []string{"b"}},
		{Prompt: "3", Answers: []string{"c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(questions...)
			g.Start()
			for _, a := range tt.answers {
				g.Answer(a)
			}
			assert.Equal(t, tt.expected, g.Stats()["score"])
			assert.Equal(t, game.StateFinished, g.State())
		})
	}
}

func TestFinishNotifiesOnce(t *testing.T) {
	g := New(Question{Prompt: "q", Answers: []string{"42"}, Points: 42})
	var got []game.GameStats
	g.AddListener(game.NewListener(func(s game.GameStats) { got = append(got, s) }))

	g.Start()
	correct, done := g.Answer("42")
	assert.True(t, correct)
	assert.True(t, done)
	g.Stop()

	require.Len(t, got, 1)
	assert.Equal(t, "Quiz", got[0].GameName)
	assert.Equal(t, 42, got[0].Stats["score"])
}

func TestStopMidRun(t *testing.T) {
	g := New()
	var got []game.GameStats
	g.AddListener(game.NewListener(func(s game.GameStats) { got = append(got, s) }))

	g.Stop()
	assert.Empty(t, got, "stop before start is a no-op")

	g.Start()
	g.Answer("go")
	g.Stop()
	g.Stop()

	require.Len(t, got, 1)
	assert.Equal(t, 10, got[0].Stats["score"])
	assert.Equal(t, 1, got[0].Stats["answered"])

	_, _, ok := g.Current()
	assert.False(t, ok)
	_, done := g.Answer("anything")
	assert.True(t, done)
}

func TestRestartResetsRun(t *testing.T) {
	g := New(Question{Prompt: "q", Answers: []string{"a"}})
	g.Start()
	g.Answer("a")
	require.Equal(t, 10, g.Stats()["score"])

	g.Start()
	assert.Equal(t, 0, g.Stats()["score"])
	q, index, ok := g.Current()
	require.True(t, ok)
	assert.Equal(t, 0, index)
	assert.Equal(t, "q", q.Prompt)
}

func TestInstanceIsShared(t *testing.T) {
	assert.Same(t, Instance(), Instance())
}

func TestModelPlaysThroughKeys(t *testing.T) {
	g := New(Question{Prompt: "Capital of France?", Answers: []string{"paris"}})
	g.Start()

	view, ok := g.View().(tea.Model)
	require.True(t, ok)
	assert.Contains(t, view.View(), "Capital of France?")

	var m tea.Model = view
	for _, r := range "Paris" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, game.StateFinished, g.State())
	assert.Contains(t, m.View(), "Final score: 10")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModelEscGivesUp(t *testing.T) {
	g := New()
	g.Start()
	m := g.View().(tea.Model)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, game.StateFinished, g.State())
}
