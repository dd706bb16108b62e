// Package tui provides the terminal screens of the arcade CLI.
//
// The picker lists the registered games and returns the one to play:
//
//	result, err := tui.RunPicker(entries)
//	if result.Action == tui.ActionPlay {
//	    // start result.Game
//	}
//
// RunGame hosts a started game: games that present a Bubble Tea model get
// the full screen, the others get a live stats view until they finish.
// RenderRankings and RenderHistory format stored scores as tables.
//
// Uses the Charm libraries:
//   - github.com/charmbracelet/bubbletea - TUI framework
//   - github.com/charmbracelet/bubbles - UI components
//   - github.com/charmbracelet/lipgloss - Styling
package tui
