package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vovakirdan/toontrek/internal/game"
	"github.com/vovakirdan/toontrek/internal/telemetry"
)

// Layout constants
const (
	statusWidth = 30 // Width of the status panel, padding included
	minLogWidth = 20
	minLogLines = 5
)

// GameModel is the Bubble Tea model for playing one map.
// The transcript scrolls in a viewport, input is typed into a text field
// and a side panel shows the toon's state.
type GameModel struct {
	cfg     GameConfig
	store   Recorder
	session *game.Session
	seed    int64

	input    textinput.Model
	viewport viewport.Model
	help     help.Model
	keys     GameKeyMap
	styles   Styles

	lines   []string
	width   int
	height  int
	started time.Time
	elapsed time.Duration
	runID   string
	err     error
	span    trace.Span // open while a round is being played

	recorded   bool
	embedded   bool // Running inside a SessionModel; back returns to the menu
	quitting   bool
	backToMenu bool
}

// NewGameModel creates a game model and opens the first round.
func NewGameModel(cfg GameConfig, store Recorder, styles Styles, width, height int) (GameModel, error) {
	ti := textinput.New()
	ti.Placeholder = "location"
	ti.CharLimit = 64
	ti.Focus()

	h := help.New()
	h.ShowAll = false

	m := GameModel{
		cfg:      cfg,
		store:    store,
		input:    ti,
		viewport: viewport.New(minLogWidth, minLogLines),
		help:     h,
		keys:     DefaultGameKeyMap(),
		styles:   styles,
	}
	m.resize(width, height)

	if err := m.startGame(); err != nil {
		return m, err
	}
	return m, nil
}

// startGame replaces the session with a fresh game.
func (m *GameModel) startGame() error {
	session, seed, err := m.cfg.NewSession()
	if err != nil {
		return err
	}

	m.endRound("abandoned")
	m.session = session
	m.seed = seed
	m.lines = nil
	m.runID = ""
	m.recorded = false
	m.err = nil
	m.started = time.Now()
	m.elapsed = 0
	m.keys.Restart.SetEnabled(false)
	m.input.Reset()
	m.input.Focus()

	m.beginRound()
	return nil
}

func (m *GameModel) beginRound() {
	msgs, err := m.session.Begin()
	if err != nil {
		m.err = err
		return
	}
	m.lines = append(m.lines, "")
	m.appendMessages(msgs)
	m.input.Prompt = m.session.Prompt()
	m.refresh()

	snap := m.session.Snapshot()
	_, m.span = telemetry.Tracer("tui").Start(context.Background(), "game.round",
		trace.WithAttributes(
			attribute.String("map", snap.Map),
			attribute.Int("round", snap.Rounds+1),
			attribute.String("location", snap.Location),
			attribute.String("player", m.cfg.Player),
		),
	)
}

// endRound closes the span of the round in flight with the given outcome.
func (m *GameModel) endRound(outcome string) {
	if m.span == nil {
		return
	}
	snap := m.session.Snapshot()
	m.span.SetAttributes(
		attribute.String("outcome", outcome),
		attribute.Int("pies", snap.Pies),
		attribute.Int("laff", snap.Laff.Current),
	)
	m.span.End()
	m.span = nil
}

func (m *GameModel) appendMessages(msgs []game.Message) {
	for _, msg := range msgs {
		m.lines = append(m.lines, m.styles.Message(msg))
	}
}

// submit feeds the typed line to the session.
func (m *GameModel) submit() {
	value := m.input.Value()
	m.lines = append(m.lines, m.styles.Echo.Render(m.input.Prompt+value))
	m.input.Reset()

	step, err := m.session.Submit(value)
	if err != nil {
		if m.span != nil {
			m.span.RecordError(err)
			m.span.SetStatus(codes.Error, err.Error())
		}
		m.err = err
		m.refresh()
		return
	}
	m.appendMessages(step.Messages)
	if step.RoundOver {
		m.endRound(step.Outcome.String())
	}

	switch {
	case !step.RoundOver:
		m.input.Prompt = m.session.Prompt()
		m.refresh()
	case step.Outcome.Terminal():
		m.appendMessages([]game.Message{{Kind: game.GameOver, Text: "END GAME."}})
		m.finish()
		m.refresh()
	default:
		m.beginRound()
	}
}

// finish stops the clock and records the run once.
func (m *GameModel) finish() {
	m.elapsed = time.Since(m.started).Truncate(time.Second)
	m.input.Blur()
	m.input.Prompt = ""
	m.keys.Restart.SetEnabled(true)

	if m.recorded {
		return
	}
	m.recorded = true
	run := RunFromSnapshot(m.cfg.MapID, m.seed, m.cfg.Player, m.session.Snapshot())
	m.runID = Record(m.store, m.cfg.logger(), run)
}

func (m GameModel) over() bool {
	return m.session == nil || m.session.Outcome().Terminal()
}

// resize lays out the transcript next to the status panel.
func (m *GameModel) resize(width, height int) {
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	m.width = width
	m.height = height

	// Log box: border and padding on both sides; panel: border only
	m.viewport.Width = max(width-statusWidth-2-4, minLogWidth)
	// Borders, input line and help line
	m.viewport.Height = max(height-4, minLogLines)
	m.input.Width = max(width-lipgloss.Width(m.input.Prompt)-2, 10)
	m.help.Width = width
	m.refresh()
}

func (m *GameModel) refresh() {
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

// Init starts the cursor blink and the play clock.
func (m GameModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tickCmd())
}

// Update handles messages.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case TickMsg:
		if !m.over() {
			m.elapsed = time.Since(m.started).Truncate(time.Second)
		}
		return m, tickCmd()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKey processes keyboard input.
func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.endRound("abandoned")
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		m.endRound("abandoned")
		if m.embedded {
			m.backToMenu = true
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.over() {
		if key.Matches(msg, m.keys.Restart) {
			if err := m.startGame(); err != nil {
				m.err = err
			}
		}
		return m, nil
	}

	if key.Matches(msg, m.keys.Submit) {
		m.submit()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the game.
func (m GameModel) View() string {
	if m.quitting {
		return ""
	}

	logBox := m.styles.Log.Render(m.viewport.View())
	panel := m.styles.Panel.
		Width(statusWidth).
		Height(m.viewport.Height).
		Render(m.statusView())
	body := lipgloss.JoinHorizontal(lipgloss.Top, logBox, panel)

	var footer string
	switch {
	case m.err != nil:
		footer = m.styles.Messages[game.Damage].Render("Error: " + m.err.Error())
	case m.over():
		footer = m.styles.Muted.Render("Game over. Press r to play again.")
	default:
		footer = m.input.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		body,
		footer,
		m.styles.Help.Render(m.help.View(m.keys)),
	)
}

// statusView renders the side panel.
func (m GameModel) statusView() string {
	if m.session == nil {
		return ""
	}
	snap := m.session.Snapshot()

	row := func(label, value string) string {
		return m.styles.Label.Render(label) + value
	}

	laff := m.styles.Laff(snap.Laff.Current, snap.Laff.Max).Render(snap.Laff.String())
	// The round being played, or the last one once the game is over
	round := snap.Rounds
	if !snap.Outcome.Terminal() {
		round++
	}

	rows := []string{
		m.styles.Title.Render(snap.Map),
		"",
		row("Location", snap.Location),
		row("Respawn", snap.LastPlayground),
		row("Laff", laff),
		row("Pies", fmt.Sprintf("%d", snap.Pies)),
		row("Round", fmt.Sprintf("%d", round)),
		row("Time", m.elapsed.String()),
	}

	if snap.Outcome.Terminal() {
		rows = append(rows, "", m.styles.Messages[game.GameOver].Render(outcomeText(snap.Outcome)))
		if m.runID != "" {
			rows = append(rows, m.styles.Muted.Render("run "+m.runID[:min(8, len(m.runID))]))
		}
	}

	return strings.Join(rows, "\n")
}

func outcomeText(o game.Outcome) string {
	switch o {
	case game.LostToDamage:
		return "Went sad"
	case game.LostToBlackHole:
		return "Logged off"
	default:
		return ""
	}
}

// IsQuitting returns true if user requested to quit entirely.
func (m GameModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m GameModel) BackToMenu() bool {
	return m.backToMenu
}

// Err returns the last error the session reported, if any.
func (m GameModel) Err() error {
	return m.err
}

// Run starts a standalone Bubble Tea program for one map.
func Run(cfg GameConfig, store Recorder) error {
	model, err := NewGameModel(cfg, store, NewStyles(lipgloss.DefaultRenderer()), 0, 0)
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(GameModel); ok {
		return fm.Err()
	}
	return nil
}
