package quiz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	promptStyle   = lipgloss.NewStyle().Bold(true)
	rightStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	wrongStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	progressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

type model struct {
	game     *Game
	input    textinput.Model
	feedback string
	done     bool
}

func newModel(g *Game) *model {
	ti := textinput.New()
	ti.Placeholder = "your answer"
	ti.CharLimit = 64
	ti.Width = 40
	ti.Focus()
	return &model{game: g, input: ti}
}

func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		if m.done {
			return m, tea.Quit
		}
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.game.Stop()
			m.done = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) submit() (tea.Model, tea.Cmd) {
	q, _, ok := m.game.Current()
	if !ok {
		m.done = true
		return m, nil
	}
	answer := m.input.Value()
	correct, done := m.game.Answer(answer)
	if correct {
		m.feedback = rightStyle.Render("Correct!")
	} else {
		m.feedback = wrongStyle.Render(fmt.Sprintf("Wrong, it was %q", q.Answers[0]))
	}
	m.input.Reset()
	m.done = done
	return m, nil
}

func (m *model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(Title))
	b.WriteString("\n\n")

	stats := m.game.Stats()
	if m.done {
		fmt.Fprintf(&b, "%s\n\n", m.feedback)
		fmt.Fprintf(&b, "Final score: %v (%v/%v correct)\n\n", stats["score"], stats["correct"], stats["total"])
		b.WriteString(helpStyle.Render("press any key to return"))
		return b.String()
	}

	q, index, ok := m.game.Current()
	if !ok {
		b.WriteString(helpStyle.Render("press any key to return"))
		return b.String()
	}
	b.WriteString(progressStyle.Render(fmt.Sprintf("Question %d of %d · score %v", index+1, stats["total"], stats["score"])))
	b.WriteString("\n\n")
	b.WriteString(promptStyle.Render(q.Prompt))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	if m.feedback != "" {
		b.WriteString(m.feedback)
		b.WriteString("\n\n")
	}
	b.WriteString(helpStyle.Render("enter: answer · esc: give up"))
	return b.String()
}
