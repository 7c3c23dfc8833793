package tui

import (
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vovakirdan/toontrek/internal/config"
	"github.com/vovakirdan/toontrek/internal/game"
	"github.com/vovakirdan/toontrek/internal/registry"
	"github.com/vovakirdan/toontrek/internal/storage"
)

type fakeLedger struct {
	saved   []storage.Run
	longest map[string][]storage.Run
	err     error
}

func (f *fakeLedger) SaveRun(run storage.Run) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.saved = append(f.saved, run)
	return "0123456789abcdef", nil
}

func (f *fakeLedger) LongestRuns(mapID string, limit int) ([]storage.Run, error) {
	if f.err != nil {
		return nil, f.err
	}
	runs := f.longest[mapID]
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	down  = tea.KeyMsg{Type: tea.KeyDown}
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func plainStyles() Styles {
	return NewStyles(lipgloss.NewRenderer(io.Discard))
}

// blackHoleConfig plays the default map with every street a black hole.
func blackHoleConfig() GameConfig {
	rules := config.DefaultRules()
	rules.Bananas = 0
	rules.BlackHoles = 21
	return GameConfig{MapID: registry.DefaultMap, Rules: rules, Seed: 7, Player: "tester"}
}

func newModel(t *testing.T, cfg GameConfig, rec Recorder) GameModel {
	t.Helper()
	m, err := NewGameModel(cfg, rec, plainStyles(), 100, 30)
	if err != nil {
		t.Fatalf("NewGameModel() failed: %v", err)
	}
	return m
}

func update(t *testing.T, m GameModel, msg tea.Msg) (GameModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	gm, ok := next.(GameModel)
	if !ok {
		t.Fatalf("Update returned %T, want GameModel", next)
	}
	return gm, cmd
}

func typeLine(t *testing.T, m GameModel, line string) GameModel {
	t.Helper()
	m.input.SetValue(line)
	m, _ = update(t, m, enter)
	return m
}

func transcript(m GameModel) string {
	return strings.Join(m.lines, "\n")
}

func TestGameModelOpensFirstRound(t *testing.T) {
	m := newModel(t, blackHoleConfig(), nil)

	text := transcript(m)
	if !strings.Contains(text, "You are in Toontown Central.") {
		t.Errorf("transcript missing location line:\n%s", text)
	}
	if !strings.Contains(text, "WARNING: A black hole is nearby.") {
		t.Errorf("transcript missing warning:\n%s", text)
	}
	if m.input.Prompt != "Enter Location (Ex: Silly Street): " {
		t.Errorf("prompt = %q", m.input.Prompt)
	}
	if m.over() {
		t.Error("new game should not be over")
	}
	if !strings.Contains(m.View(), "Toontown Central") {
		t.Error("view should show the location")
	}
}

func TestGameModelRetryKeepsRound(t *testing.T) {
	m := newModel(t, blackHoleConfig(), nil)
	m = typeLine(t, m, "Nowhere")

	text := transcript(m)
	if !strings.Contains(text, "Enter Location (Ex: Silly Street): Nowhere") {
		t.Errorf("typed line should be echoed:\n%s", text)
	}
	if !strings.Contains(text, "This location is not valid.") {
		t.Errorf("missing retry message:\n%s", text)
	}
	if m.input.Value() != "" {
		t.Errorf("input should be cleared, got %q", m.input.Value())
	}
	if m.session.Snapshot().Rounds != 0 {
		t.Error("a rejected location should not finish the round")
	}
}

func TestGameModelGameOverRecordsOnce(t *testing.T) {
	ledger := &fakeLedger{}
	m := newModel(t, blackHoleConfig(), ledger)

	m = typeLine(t, m, "Silly Street")
	if !m.over() {
		t.Fatal("walking into a black hole should end the game")
	}
	if !strings.Contains(transcript(m), "END GAME.") {
		t.Errorf("missing END GAME line:\n%s", transcript(m))
	}
	if len(ledger.saved) != 1 {
		t.Fatalf("saved %d runs, want 1", len(ledger.saved))
	}

	run := ledger.saved[0]
	if run.MapID != registry.DefaultMap || run.Outcome != "black_hole" || run.Player != "tester" {
		t.Errorf("recorded run = %+v", run)
	}
	if run.Seed != 7 || run.Rounds != 1 {
		t.Errorf("seed/rounds = %d/%d, want 7/1", run.Seed, run.Rounds)
	}
	if m.runID == "" {
		t.Error("run ID should be kept for display")
	}
	if !strings.Contains(m.View(), "Game over. Press r to play again.") {
		t.Error("view should offer a restart")
	}

	// Further enters do nothing once the game is over
	m, _ = update(t, m, enter)
	if len(ledger.saved) != 1 {
		t.Errorf("saved %d runs after extra input, want 1", len(ledger.saved))
	}
}

func TestGameModelRestart(t *testing.T) {
	ledger := &fakeLedger{}
	m := newModel(t, blackHoleConfig(), ledger)

	// r is just text while playing
	m, _ = update(t, m, runeKey('r'))
	if m.input.Value() != "r" {
		t.Fatalf("input = %q, want r", m.input.Value())
	}
	if m.over() {
		t.Fatal("typing should not end the game")
	}

	m = typeLine(t, m, "Silly Street")
	first := m.session

	m, _ = update(t, m, runeKey('r'))
	if m.session == first {
		t.Fatal("restart should start a new session")
	}
	if m.over() || m.runID != "" || m.recorded {
		t.Error("restart should reset the game state")
	}
	if strings.Contains(transcript(m), "END GAME.") {
		t.Error("restart should clear the transcript")
	}
	if m.keys.Restart.Enabled() {
		t.Error("restart should be disabled while playing")
	}

	m = typeLine(t, m, "Silly Street")
	if len(ledger.saved) != 2 {
		t.Errorf("saved %d runs, want 2", len(ledger.saved))
	}
}

func TestGameModelRecorderFailure(t *testing.T) {
	ledger := &fakeLedger{err: errors.New("disk full")}
	m := newModel(t, blackHoleConfig(), ledger)

	m = typeLine(t, m, "Silly Street")
	if !m.over() {
		t.Fatal("game should be over")
	}
	if m.runID != "" {
		t.Errorf("runID = %q, want empty after a failed save", m.runID)
	}
	if m.Err() != nil {
		t.Errorf("a ledger failure should not surface as a game error: %v", m.Err())
	}
}

func TestGameModelBack(t *testing.T) {
	m := newModel(t, blackHoleConfig(), nil)
	m, cmd := update(t, m, esc)
	if !m.IsQuitting() || cmd == nil {
		t.Error("esc in a standalone game should quit")
	}

	m = newModel(t, blackHoleConfig(), nil)
	m.embedded = true
	m, cmd = update(t, m, esc)
	if !m.BackToMenu() || m.IsQuitting() {
		t.Error("esc in an embedded game should go back to the menu")
	}
	if cmd != nil {
		t.Error("going back should not quit the program")
	}
}

func TestGameModelUnknownMap(t *testing.T) {
	cfg := blackHoleConfig()
	cfg.MapID = "nowhere"
	if _, err := NewGameModel(cfg, nil, plainStyles(), 80, 24); err == nil {
		t.Error("unknown map should fail")
	}
}

func TestGameModelResize(t *testing.T) {
	m := newModel(t, blackHoleConfig(), nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 160, Height: 50})
	if m.width != 160 || m.viewport.Height != 46 {
		t.Errorf("size = %dx%d, viewport height %d", m.width, m.height, m.viewport.Height)
	}

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 10, Height: 3})
	if m.viewport.Width < minLogWidth || m.viewport.Height < minLogLines {
		t.Errorf("viewport %dx%d below minimum", m.viewport.Width, m.viewport.Height)
	}
}

func TestRecordNilRecorder(t *testing.T) {
	if id := Record(nil, nil, storage.Run{}); id != "" {
		t.Errorf("Record(nil) = %q, want empty", id)
	}
}

func TestRunFromSnapshot(t *testing.T) {
	m := newModel(t, blackHoleConfig(), nil)
	m = typeLine(t, m, "Silly Street")

	run := RunFromSnapshot("toontown", 7, "tester", m.session.Snapshot())
	want := storage.Run{
		MapID:    "toontown",
		Seed:     7,
		Outcome:  game.LostToBlackHole.String(),
		Rounds:   1,
		Moves:    0,
		PiesLeft: 3,
		LaffLeft: 17,
		Player:   "tester",
	}
	if run != want {
		t.Errorf("RunFromSnapshot() = %+v, want %+v", run, want)
	}
}

func TestMenuModel(t *testing.T) {
	ledger := &fakeLedger{longest: map[string][]storage.Run{
		registry.DefaultMap: {{Rounds: 12}},
	}}
	m := NewMenuModel(ledger, plainStyles(), 80, 24)

	if len(m.items) != len(registry.List()) {
		t.Fatalf("menu has %d items, want %d", len(m.items), len(registry.List()))
	}
	var best int
	for _, item := range m.items {
		if item.MapID == registry.DefaultMap {
			best = item.Best
		}
	}
	if best != 12 {
		t.Errorf("best for default map = %d, want 12", best)
	}
	if !strings.Contains(m.View(), "best: 12 rounds") {
		t.Error("view should show the best run")
	}

	next, _ := m.Update(down)
	m = next.(MenuModel)
	next, cmd := m.Update(enter)
	m = next.(MenuModel)
	if m.Selected() == nil || m.Selected().MapID != m.items[1].MapID {
		t.Errorf("selected = %+v, want second item", m.Selected())
	}
	if cmd == nil {
		t.Error("standalone menu should quit after a selection")
	}
}

func TestMenuModelHistoryAndQuit(t *testing.T) {
	m := NewMenuModel(nil, plainStyles(), 80, 24)
	next, _ := m.Update(tab)
	if !next.(MenuModel).WantsHistory() {
		t.Error("tab should open the history")
	}

	next, _ = m.Update(runeKey('q'))
	if !next.(MenuModel).IsQuitting() {
		t.Error("q should quit")
	}
}

func TestHistoryModel(t *testing.T) {
	maps := registry.List()
	ledger := &fakeLedger{longest: map[string][]storage.Run{
		maps[0].ID: {{Rounds: 9, Moves: 8, Outcome: "sad", Player: "a"}},
		maps[1].ID: {{Rounds: 4, Moves: 4, Outcome: "black_hole"}, {Rounds: 2, Moves: 1, Outcome: "sad"}},
	}}

	m := NewHistoryModel(ledger, plainStyles(), 120, 30)
	if len(m.rows) != 1 {
		t.Fatalf("first map rows = %d, want 1", len(m.rows))
	}
	if !strings.Contains(m.View(), "Went sad") {
		t.Error("view should describe the outcome")
	}

	next, _ := m.Update(tab)
	m = next.(HistoryModel)
	if m.mapCursor != 1 || len(m.rows) != 2 {
		t.Errorf("after tab: cursor %d rows %d", m.mapCursor, len(m.rows))
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	next, _ = next.(HistoryModel).Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = next.(HistoryModel)
	if m.mapCursor != len(maps)-1 {
		t.Errorf("shift+tab should wrap, cursor = %d", m.mapCursor)
	}

	next, _ = m.Update(esc)
	if !next.(HistoryModel).IsGoingBack() {
		t.Error("esc should go back")
	}
}

func TestHistoryModelEmptyAndError(t *testing.T) {
	m := NewHistoryModel(nil, plainStyles(), 60, 20)
	if !strings.Contains(m.View(), "No runs recorded yet.") {
		t.Error("empty history should say so")
	}

	m = NewHistoryModel(&fakeLedger{err: errors.New("locked")}, plainStyles(), 60, 20)
	if !strings.Contains(m.View(), "locked") {
		t.Error("load errors should be shown")
	}
}

func TestSessionModelFlow(t *testing.T) {
	cfg := blackHoleConfig()
	cfg.MapID = ""
	m := NewSessionModel(cfg, nil, plainStyles(), 100, 30)

	step := func(msg tea.Msg) tea.Cmd {
		t.Helper()
		next, cmd := m.Update(msg)
		m = next.(SessionModel)
		return cmd
	}

	step(enter)
	if m.screen != screenGame {
		t.Fatalf("screen = %v, want game", m.screen)
	}
	if m.game.cfg.MapID != m.menu.items[0].MapID || m.game.cfg.Player != "tester" {
		t.Errorf("game config = %+v", m.game.cfg)
	}

	step(esc)
	if m.screen != screenMenu || m.quitting {
		t.Fatalf("screen = %v quitting = %v", m.screen, m.quitting)
	}

	step(tab)
	if m.screen != screenHistory {
		t.Fatalf("screen = %v, want history", m.screen)
	}
	step(esc)
	if m.screen != screenMenu {
		t.Fatalf("screen = %v, want menu", m.screen)
	}

	if cmd := step(runeKey('q')); cmd == nil || !m.quitting {
		t.Error("q on the menu should end the session")
	}
}

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)))
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })
	return sr
}

func spanAttr(span sdktrace.ReadOnlySpan, k attribute.Key) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if kv.Key == k {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestGameModelTracesRounds(t *testing.T) {
	sr := recordSpans(t)
	m := newModel(t, blackHoleConfig(), nil)

	if len(sr.Started()) != 1 || len(sr.Ended()) != 0 {
		t.Fatalf("started/ended = %d/%d, want an open round span", len(sr.Started()), len(sr.Ended()))
	}

	m = typeLine(t, m, "Nowhere")
	if len(sr.Ended()) != 0 {
		t.Fatal("a rejected location should keep the round open")
	}

	m = typeLine(t, m, "Silly Street")
	ended := sr.Ended()
	if len(ended) != 1 {
		t.Fatalf("ended %d spans, want 1", len(ended))
	}
	span := ended[0]
	if span.Name() != "game.round" {
		t.Errorf("span name = %q", span.Name())
	}
	if v, ok := spanAttr(span, "outcome"); !ok || v.AsString() != "black_hole" {
		t.Errorf("outcome attribute = %v", v.Emit())
	}
	if v, ok := spanAttr(span, "round"); !ok || v.AsInt64() != 1 {
		t.Errorf("round attribute = %v", v.Emit())
	}

	// Restarting opens a span for the new game
	m, _ = update(t, m, runeKey('r'))
	if len(sr.Started()) != 2 {
		t.Fatalf("started %d spans after restart, want 2", len(sr.Started()))
	}

	// Leaving mid-round closes it
	_, _ = update(t, m, esc)
	ended = sr.Ended()
	if len(ended) != 2 {
		t.Fatalf("ended %d spans after leaving, want 2", len(ended))
	}
	if v, _ := spanAttr(ended[1], "outcome"); v.AsString() != "abandoned" {
		t.Errorf("outcome attribute = %q, want abandoned", v.AsString())
	}
}
