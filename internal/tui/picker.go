package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Action represents the action to take after picker selection
type Action int

const (
	ActionNone Action = iota
	ActionPlay
	ActionQuit
)

// GameEntry is one game shown by the picker.
type GameEntry struct {
	Name    string
	Version string
	// HighScore is NoScore when the game has never been played.
	HighScore float64
}

// PickerResult holds the result of the picker
type PickerResult struct {
	Action Action
	Game   string
}

type gameItem struct {
	entry GameEntry
}

func (i gameItem) Title() string {
	return i.entry.Name
}

func (i gameItem) Description() string {
	version := i.entry.Version
	if version == "" {
		version = "unversioned"
	}
	high := "no scores yet"
	if i.entry.HighScore != NoScore {
		high = "high score " + FormatScore(i.entry.HighScore)
	}
	return fmt.Sprintf("%s | %s", version, high)
}

func (i gameItem) FilterValue() string {
	return i.entry.Name
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)
)

// Model is the bubbletea model for the game picker
type Model struct {
	list     list.Model
	result   PickerResult
	quitting bool
}

// NewPicker creates a new game picker
func NewPicker(entries []GameEntry) Model {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = gameItem{entry: e}
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = selectedStyle
	delegate.Styles.SelectedDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	l := list.New(items, delegate, 60, 20)
	l.Title = "Arcade - Select Game"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	return Model{list: l}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-4)
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(gameItem); ok {
				m.result = PickerResult{Action: ActionPlay, Game: item.entry.Name}
				m.quitting = true
				return m, tea.Quit
			}

		case "q", "esc", "ctrl+c":
			m.result = PickerResult{Action: ActionQuit}
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	help := helpStyle.Render("[enter] Play  [/] Filter  [q] Quit")
	return m.list.View() + "\n" + help
}

// Result returns the picker result
func (m Model) Result() PickerResult {
	return m.result
}

// RunPicker runs the interactive game picker
func RunPicker(entries []GameEntry) (PickerResult, error) {
	if len(entries) == 0 {
		return PickerResult{Action: ActionQuit}, nil
	}

	p := tea.NewProgram(NewPicker(entries), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return PickerResult{}, err
	}
	return finalModel.(Model).Result(), nil
}
