package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/toontrek/internal/game"
)

// Styles holds every lipgloss style the UI uses. Styles are built from a
// renderer so each SSH session gets colors matching its own terminal.
type Styles struct {
	Messages map[game.MessageKind]lipgloss.Style
	Echo     lipgloss.Style
	Log      lipgloss.Style
	Panel    lipgloss.Style
	Label    lipgloss.Style
	Title    lipgloss.Style
	Muted    lipgloss.Style
	Help     lipgloss.Style
	Cursor   lipgloss.Style
	LaffHigh lipgloss.Style
	LaffMid  lipgloss.Style
	LaffLow  lipgloss.Style
}

// NewStyles creates the UI styles for renderer r.
func NewStyles(r *lipgloss.Renderer) Styles {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return Styles{
		Messages: map[game.MessageKind]lipgloss.Style{
			game.Info:     r.NewStyle(),
			game.Warning:  r.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
			game.Retry:    r.NewStyle().Foreground(lipgloss.Color("245")),
			game.Damage:   r.NewStyle().Foreground(lipgloss.Color("9")),
			game.Event:    r.NewStyle().Foreground(lipgloss.Color("14")),
			game.GameOver: r.NewStyle().Foreground(lipgloss.Color("13")).Bold(true),
		},
		Echo: r.NewStyle().Foreground(lipgloss.Color("241")),
		Log: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		Panel: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		Label:    r.NewStyle().Foreground(lipgloss.Color("241")).Width(9),
		Title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("229")),
		Muted:    r.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		Help:     r.NewStyle().Foreground(lipgloss.Color("241")),
		Cursor:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("229")),
		LaffHigh: r.NewStyle().Foreground(lipgloss.Color("10")),
		LaffMid:  r.NewStyle().Foreground(lipgloss.Color("11")),
		LaffLow:  r.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

// Message renders one game message.
func (s Styles) Message(m game.Message) string {
	style, ok := s.Messages[m.Kind]
	if !ok {
		return m.Text
	}
	return style.Render(m.Text)
}

// Laff picks a style by how much laff is left.
func (s Styles) Laff(current, total int) lipgloss.Style {
	switch {
	case total <= 0 || current*4 <= total:
		return s.LaffLow
	case current*2 <= total:
		return s.LaffMid
	default:
		return s.LaffHigh
	}
}
