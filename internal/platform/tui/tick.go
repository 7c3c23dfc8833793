// Package tui provides the Bubble Tea front end for toontrek.
// It handles the terminal UI loop, the map picker, run history and the
// SSH server.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent once a second to refresh the play clock.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends the next clock tick.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
