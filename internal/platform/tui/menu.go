package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/toontrek/internal/registry"
)

// MenuItem represents a selectable map in the menu.
type MenuItem struct {
	MapID string
	Title string
	Best  int // most rounds survived, 0 when never played
}

// MenuModel is the Bubble Tea model for the map picker.
type MenuModel struct {
	items    []MenuItem
	cursor   int
	width    int
	height   int
	keys     MenuKeyMap
	help     help.Model
	styles   Styles
	embedded bool

	quitting    bool
	selected    *MenuItem // Set when user selects a map
	openHistory bool      // True if user pressed Tab for history
}

// NewMenuModel creates a new menu model. runs may be nil.
func NewMenuModel(runs RunSource, styles Styles, width, height int) MenuModel {
	maps := registry.List()
	items := make([]MenuItem, 0, len(maps))

	for _, info := range maps {
		item := MenuItem{MapID: info.ID, Title: info.Title}
		if runs != nil {
			if best, err := runs.LongestRuns(info.ID, 1); err == nil && len(best) > 0 {
				item.Best = best[0].Rounds
			}
		}
		items = append(items, item)
	}

	return MenuModel{
		items:  items,
		width:  width,
		height: height,
		keys:   DefaultMenuKeyMap(),
		help:   help.New(),
		styles: styles,
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	}

	return m, nil
}

// done ends a standalone menu program. Embedded menus hand control back
// to their parent instead.
func (m MenuModel) done() tea.Cmd {
	if m.embedded {
		return nil
	}
	return tea.Quit
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Select):
		if len(m.items) > 0 {
			selected := m.items[m.cursor]
			m.selected = &selected
			return m, m.done()
		}

	case key.Matches(msg, m.keys.History):
		m.openHistory = true
		return m, m.done()
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(m.styles.Title.Render("  T O O N T R E K  "))
	b.WriteString("\n\n")
	b.WriteString(m.styles.Muted.Render("Pick a map"))
	b.WriteString("\n\n")

	for i, item := range m.items {
		cursor := "  "
		title := item.Title
		if i == m.cursor {
			cursor = "> "
			title = m.styles.Cursor.Render(title)
		}

		line := cursor + title
		if item.Best > 0 {
			line += m.styles.Muted.Render(fmt.Sprintf("  best: %d rounds", item.Best))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render(m.help.View(m.keys)))
	b.WriteString("\n")

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, b.String())
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// WantsHistory returns true if user requested the run history.
func (m MenuModel) WantsHistory() bool {
	return m.openHistory
}
