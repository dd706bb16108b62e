package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/exp/maps"

	"arcade-go/internal/game"
)

const statsRefresh = 250 * time.Millisecond

var (
	statKeyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statValStyle = lipgloss.NewStyle().Bold(true)
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(statsRefresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// statsModel hosts games without their own view: it shows live stats until
// the game finishes or the player stops it.
type statsModel struct {
	handle  *game.Handle
	running func() bool
	stats   map[string]any
	stopped bool
	done    bool
}

func newStatsModel(handle *game.Handle, running func() bool) statsModel {
	return statsModel{handle: handle, running: running, stats: handle.Game.Stats()}
}

func (m statsModel) Init() tea.Cmd {
	return tick()
}

func (m statsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.stats = m.handle.Game.Stats()
		if !m.running() {
			m.done = true
			return m, tea.Quit
		}
		return m, tick()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.handle.Game.Stop()
			m.stopped = true
			m.stats = m.handle.Game.Stats()
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m statsModel) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("%s %s", m.handle.Name, m.handle.Game.Version())))
	sb.WriteString("\n")
	sb.WriteString(renderStats(m.stats))
	switch {
	case m.stopped:
		sb.WriteString(helpStyle.Render("stopped"))
	case m.done:
		sb.WriteString(helpStyle.Render("finished"))
	default:
		sb.WriteString(helpStyle.Render("[q] Stop"))
	}
	return sb.String() + "\n"
}

func renderStats(stats map[string]any) string {
	keys := maps.Keys(stats)
	slices.Sort(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(statKeyStyle.Render(k + ": "))
		sb.WriteString(statValStyle.Render(fmt.Sprint(stats[k])))
		sb.WriteString("\n")
	}
	return sb.String()
}

// RunGame hosts a started game until the player leaves it. A game that
// presents a tea.Model drives the screen itself; running is polled for the
// others and should report false once the game has finished.
func RunGame(handle *game.Handle, running func() bool) error {
	var m tea.Model
	if view, ok := handle.View.(tea.Model); ok {
		m = view
	} else {
		m = newStatsModel(handle, running)
	}

	if _, err := tea.NewProgram(m).Run(); err != nil {
		return fmt.Errorf("failed to run %s: %w", handle.Name, err)
	}
	return nil
}
