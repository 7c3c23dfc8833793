package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/toontrek/internal/game"
	"github.com/vovakirdan/toontrek/internal/registry"
	"github.com/vovakirdan/toontrek/internal/storage"
)

// History layout constants
const (
	minWidthForSidebar = 90  // Minimum width to show the map list sidebar
	sidebarWidth       = 28  // Width of map list sidebar
	maxRuns            = 100 // Max runs to load per map
)

// RunSource lists recorded runs. *storage.Store implements it.
type RunSource interface {
	LongestRuns(mapID string, limit int) ([]storage.Run, error)
}

// HistoryModel is the Bubble Tea model for the run history screen.
type HistoryModel struct {
	maps        []registry.MapInfo
	mapCursor   int
	runs        RunSource
	rows        []storage.Run
	loadErr     error
	table       table.Model
	help        help.Model
	keys        HistoryKeyMap
	styles      Styles
	width       int
	height      int
	embedded    bool
	quitting    bool
	goingBack   bool // True if user pressed back (not quit)
	showSidebar bool
}

// NewHistoryModel creates a new history model. runs may be nil, in which
// case every map shows as never played.
func NewHistoryModel(runs RunSource, styles Styles, width, height int) HistoryModel {
	h := help.New()
	h.ShowAll = false

	m := HistoryModel{
		maps:        registry.List(),
		runs:        runs,
		keys:        DefaultHistoryKeyMap(),
		help:        h,
		styles:      styles,
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}

	m.table = m.createTable()
	if len(m.maps) > 0 {
		m.loadRuns(m.maps[0].ID)
	}
	return m
}

// createTable creates a new table sized to the window.
func (m *HistoryModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Rounds", Width: 7},
		{Title: "Moves", Width: 6},
		{Title: "Ended", Width: 11},
		{Title: "Player", Width: 10},
		{Title: "Date", Width: 13},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 3)), // Leave room for header, help, and margins
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// loadRuns loads the longest runs for mapID.
func (m *HistoryModel) loadRuns(mapID string) {
	m.rows = nil
	m.loadErr = nil
	if m.runs != nil {
		m.rows, m.loadErr = m.runs.LongestRuns(mapID, maxRuns)
	}
	m.updateTableRows()
}

func (m *HistoryModel) updateTableRows() {
	rows := make([]table.Row, len(m.rows))
	for i, r := range m.rows {
		player := r.Player
		if player == "" {
			player = "-"
		}
		rows[i] = table.Row{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", r.Rounds),
			fmt.Sprintf("%d", r.Moves),
			endedText(r.Outcome),
			player,
			r.CreatedAt.Local().Format("Jan 02 15:04"),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

func endedText(outcome string) string {
	if o, ok := game.ParseOutcome(outcome); ok && o.Terminal() {
		return outcomeText(o)
	}
	return outcome
}

// leave ends a standalone history program. Embedded screens hand control
// back to their parent.
func (m HistoryModel) leave() tea.Cmd {
	if m.embedded {
		return nil
	}
	return tea.Quit
}

// Init initializes the history model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history screen.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, m.leave()

		case key.Matches(msg, m.keys.NextMap):
			if len(m.maps) > 0 {
				m.mapCursor = (m.mapCursor + 1) % len(m.maps)
				m.loadRuns(m.maps[m.mapCursor].ID)
			}
			return m, nil

		case key.Matches(msg, m.keys.PrevMap):
			if len(m.maps) > 0 {
				m.mapCursor = (m.mapCursor + len(m.maps) - 1) % len(m.maps)
				m.loadRuns(m.maps[m.mapCursor].ID)
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the history screen.
func (m HistoryModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	title := "LONGEST RUNS"
	if len(m.maps) > 0 {
		title = fmt.Sprintf("LONGEST RUNS - %s", m.maps[m.mapCursor].Title)
	}
	b.WriteString(m.styles.Title.Render(title))
	b.WriteString("\n\n")

	box := m.styles.Log.Render(m.tableContent())
	if m.showSidebar {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar(), "  ", box))
	} else {
		b.WriteString(m.tabs())
		b.WriteString("\n\n")
		b.WriteString(box)
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render(m.help.View(m.keys)))

	return b.String()
}

// sidebar renders the map list for wide windows.
func (m HistoryModel) sidebar() string {
	var s strings.Builder
	s.WriteString("Maps\n")
	s.WriteString(strings.Repeat("-", sidebarWidth-4))
	s.WriteString("\n")

	for i, info := range m.maps {
		line := "  " + info.Title
		if i == m.mapCursor {
			line = m.styles.Cursor.Render("> " + info.Title)
		}
		s.WriteString(line)
		s.WriteString("\n")
	}

	return m.styles.Panel.Width(sidebarWidth).Render(s.String())
}

// tabs renders the map list for narrow windows.
func (m HistoryModel) tabs() string {
	if len(m.maps) == 0 {
		return ""
	}
	return fmt.Sprintf("< %s >", m.styles.Cursor.Render(m.maps[m.mapCursor].Title))
}

// tableContent renders the table or an empty message.
func (m HistoryModel) tableContent() string {
	empty := m.styles.Muted.Padding(2, 4)
	switch {
	case m.loadErr != nil:
		return empty.Render("Could not load runs:\n" + m.loadErr.Error())
	case len(m.rows) == 0:
		return empty.Render("No runs recorded yet.\nFinish a game to see it here!")
	default:
		return m.table.View()
	}
}

// IsGoingBack returns true if user wants to go back to menu.
func (m HistoryModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m HistoryModel) IsQuitting() bool {
	return m.quitting
}

// RunHistory runs the history screen.
// Returns true if user wants to go back to menu, false if quitting.
func RunHistory(runs RunSource) (goBack bool, err error) {
	model := NewHistoryModel(runs, NewStyles(lipgloss.DefaultRenderer()), 100, 24)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}

	m, ok := finalModel.(HistoryModel)
	if !ok {
		return false, nil
	}
	return m.IsGoingBack(), nil
}
