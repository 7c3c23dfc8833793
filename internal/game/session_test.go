package game

import (
	"bytes"
	"errors"
	"math/rand"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/zyedidia/generic/mapset"

	"github.com/vovakirdan/toontrek/internal/config"
	"github.com/vovakirdan/toontrek/internal/toonmap"
)

// newTestSession builds a session on the default map and then replaces the
// random hazards so scenarios are fully controlled.
func newTestSession(t *testing.T, rules config.Rules, cog string, bananas, holes []string) *Session {
	t.Helper()
	s, err := NewSession(defaultMap(t), rules, rand.New(rand.NewSource(1)), nil)
	if err != nil {
		t.Fatalf("NewSession() failed: %v", err)
	}
	s.cog = s.m.Node(cog)
	if s.cog == nil {
		t.Fatalf("unknown cog location %q", cog)
	}
	s.bananas = names(bananas...)
	s.blackHoles = names(holes...)
	return s
}

func names(list ...string) mapset.Set[string] {
	set := mapset.New[string]()
	for _, n := range list {
		set.Put(n)
	}
	return set
}

func texts(msgs []Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Text
	}
	return out
}

func begin(t *testing.T, s *Session) []string {
	t.Helper()
	msgs, err := s.Begin()
	if err != nil {
		t.Fatalf("Begin() failed: %v", err)
	}
	return texts(msgs)
}

func submit(t *testing.T, s *Session, input string) Step {
	t.Helper()
	step, err := s.Submit(input)
	if err != nil {
		t.Fatalf("Submit(%q) failed: %v", input, err)
	}
	return step
}

// move plays a whole round that is expected to need no pie decision.
func move(t *testing.T, s *Session, to string) Step {
	t.Helper()
	begin(t, s)
	step := submit(t, s, to)
	if !step.RoundOver {
		t.Fatalf("move to %q did not finish the round: %v", to, texts(step.Messages))
	}
	return step
}

func TestMoveToNeighbor(t *testing.T) {
	s := newTestSession(t, config.DefaultRules(), "Bossbot Headquarters", nil, nil)

	got := begin(t, s)
	want := []string{
		"You are in Toontown Central.",
		"Where would you like to go?",
		"Options --- Silly Street - Loopy Lane - Punchline Place - Goofy Speedway",
	}
	if !slices.Equal(got, want) {
		t.Errorf("Begin() = %q, want %q", got, want)
	}
	if p := s.Prompt(); p != "Enter Location (Ex: Silly Street): " {
		t.Errorf("Prompt() = %q", p)
	}

	step := submit(t, s, "Silly Street")
	if !step.RoundOver || step.Outcome != Playing {
		t.Fatalf("step = %+v, want finished round still playing", step)
	}

	snap := s.Snapshot()
	if snap.Location != "Silly Street" {
		t.Errorf("Location = %q, want Silly Street", snap.Location)
	}
	if snap.LastPlayground != "Toontown Central" {
		t.Errorf("LastPlayground = %q, want Toontown Central", snap.LastPlayground)
	}
	if snap.Moves != 1 || snap.Rounds != 1 {
		t.Errorf("Moves/Rounds = %d/%d, want 1/1", snap.Moves, snap.Rounds)
	}
	if snap.Countdown != 4 {
		t.Errorf("Countdown = %d, want 4", snap.Countdown)
	}
	if s.Prompt() != "" {
		t.Errorf("Prompt() between rounds = %q, want empty", s.Prompt())
	}
}

func TestPlaygroundUpdatesRespawn(t *testing.T) {
	s := newTestSession(t, config.DefaultRules(), "Bossbot Headquarters", nil, nil)

	move(t, s, "Goofy Speedway")
	if lp := s.Snapshot().LastPlayground; lp != "Goofy Speedway" {
		t.Errorf("LastPlayground = %q, want Goofy Speedway", lp)
	}
}

func TestInvalidLocationIsRetried(t *testing.T) {
	s := newTestSession(t, config.DefaultRules(), "Bossbot Headquarters", nil, nil)
	begin(t, s)

	for _, input := range []string{"Nowhere", "silly street", ""} {
		step := submit(t, s, input)
		if step.RoundOver {
			t.Fatalf("Submit(%q) should not finish the round", input)
		}
		want := []string{"This location is not valid.", "Please try again."}
		if got := texts(step.Messages); !slices.Equal(got, want) {
			t.Errorf("Submit(%q) = %q, want %q", input, got, want)
		}
		if step.Messages[0].Kind != Retry {
			t.Errorf("Submit(%q) kind = %v, want retry", input, step.Messages[0].Kind)
		}
	}

	if loc := s.Snapshot().Location; loc != "Toontown Central" {
		t.Errorf("invalid input moved the toon to %q", loc)
	}
	step := submit(t, s, "Loopy Lane\n")
	if !step.RoundOver {
		t.Fatal("valid input with trailing newline should finish the round")
	}
}

func TestStrictMoves(t *testing.T) {
	rules := config.DefaultRules()
	rules.StrictMoves = true
	s := newTestSession(t, rules, "Bossbot Headquarters", nil, nil)
	begin(t, s)

	step := submit(t, s, "Elm Street")
	if step.RoundOver {
		t.Fatal("non-neighbor should be rejected in strict mode")
	}
	want := []string{"Elm Street is not one tunnel away.", "Please try again."}
	if got := texts(step.Messages); !slices.Equal(got, want) {
		t.Errorf("messages = %q, want %q", got, want)
	}

	if step := submit(t, s, "Silly Street"); !step.RoundOver {
		t.Error("neighbor should be accepted in strict mode")
	}
}

func TestLenientMovesAcceptAnyLocation(t *testing.T) {
	s := newTestSession(t, config.DefaultRules(), "Bossbot Headquarters", []string{"Elm Street"}, nil)

	step := move(t, s, "Elm Street")
	if step.Outcome != Playing {
		t.Errorf("Outcome = %v, want playing", step.Outcome)
	}
	snap := s.Snapshot()
	if snap.Location != "Elm Street" {
		t.Errorf("Location = %q, want Elm Street", snap.Location)
	}
	// Hazards only trigger when they were announced one tunnel away
	if snap.Laff.Current != 17 {
		t.Errorf("Laff = %v, want 17/17", snap.Laff)
	}
}

func TestBananaTwiceGoesSad(t *testing.T) {
	s := newTestSession(t, config.DefaultRules(), "Bossbot Headquarters",
		[]string{"Silly Street", "Elm Street"}, nil)

	got := begin(t, s)
	if !slices.Contains(got, "WARNING: A banana is nearby.") {
		t.Errorf("Begin() = %q, want banana warning", got)
	}
	step := submit(t, s, "Silly Street")
	want := []string{
		"You hit a banana!",
		"Your laff has been reduced by 9.",
		"Current laff 8/17",
	}
	if got := texts(step.Messages); !slices.Equal(got, want) {
		t.Errorf("first hit = %q, want %q", got, want)
	}
	if step.Outcome != Playing || s.Snapshot().Location != "Silly Street" {
		t.Fatalf("first hit should commit the move and keep playing")
	}

	begin(t, s)
	step = submit(t, s, "Elm Street")
	if !step.RoundOver || step.Outcome != LostToDamage {
		t.Fatalf("second hit: step = %+v, want LostToDamage", step)
	}
	if got := texts(step.Messages); !slices.Contains(got, "Current laff 0/17") ||
		!slices.Contains(got, "You ran out of laff and went sad.") {
		t.Errorf("second hit messages = %q", got)
	}

	snap := s.Snapshot()
	if snap.Laff.Current != 0 {
		t.Errorf("Laff = %v, want 0/17", snap.Laff)
	}
	if snap.Location != "Silly Street" {
		t.Errorf("losing round should not move the toon, Location = %q", snap.Location)
	}
	if snap.Moves != 1 || snap.Rounds != 2 {
		t.Errorf("Moves/Rounds = %d/%d, want 1/2", snap.Moves, snap.Rounds)
	}
	if s.Outcome() != LostToDamage {
		t.Errorf("Outcome() = %v", s.Outcome())
	}

	if _, err := s.Begin(); !errors.Is(err, ErrGameOver) {
		t.Errorf("Begin() after game over = %v, want ErrGameOver", err)
	}
	if _, err := s.Submit("Silly Street"); !errors.Is(err, ErrGameOver) {
		t.Errorf("Submit() after game over = %v, want ErrGameOver", err)
	}
}

func TestBlackHoleEndsGame(t *testing.T) {
	s := newTestSession(t, config.DefaultRules(), "Bossbot Headquarters", nil, []string{"Loopy Lane"})

	got := begin(t, s)
	for _, w := range []string{"WARNING: A black hole is nearby.", "If you hit a black hole it will be game over."} {
		if !slices.Contains(got, w) {
			t.Errorf("Begin() = %q, missing %q", got, w)
		}
	}

	step := submit(t, s, "Loopy Lane")
	if step.Outcome != LostToBlackHole {
		t.Fatalf("Outcome = %v, want LostToBlackHole", step.Outcome)
	}
	if step.Messages[0].Text != "You hit a black hole and logged off!" || step.Messages[0].Kind != GameOver {
		t.Errorf("messages = %+v", step.Messages)
	}
	if loc := s.Snapshot().Location; loc != "Toontown Central" {
		t.Errorf("Location = %q, want Toontown Central", loc)
	}
}

func TestCogWithoutPiesSendsBack(t *testing.T) {
	rules := config.DefaultRules()
	rules.Pies = 0
	s := newTestSession(t, rules, "Bossbot Headquarters", nil, nil)

	move(t, s, "Silly Street")
	s.cog = s.m.Node("Elm Street")

	got := begin(t, s)
	if !slices.Contains(got, "WARNING: A cog is nearby.") {
		t.Fatalf("Begin() = %q, want cog warning", got)
	}

	step := submit(t, s, "Elm Street")
	if step.RoundOver {
		t.Fatal("moving next to a cog should ask about a pie")
	}
	want := []string{
		"Would you like to throw a pie in the tunnel in case there is a cog?",
		"You have 0 pies left.",
	}
	if got := texts(step.Messages); !slices.Equal(got, want) {
		t.Errorf("pie question = %q, want %q", got, want)
	}
	if p := s.Prompt(); p != "Throw Pie? (y or n): " {
		t.Errorf("Prompt() = %q", p)
	}

	step = submit(t, s, "Y")
	if step.RoundOver {
		t.Fatal("only lowercase y or n are accepted")
	}
	if got := texts(step.Messages); !slices.Equal(got, []string{"Not a valid input.", "Please try again."}) {
		t.Errorf("invalid answer = %q", got)
	}

	step = submit(t, s, "y")
	want = []string{
		"You were out of pies",
		"There was a cog there.",
		"You got sent back to the last playground.",
	}
	if got := texts(step.Messages); !slices.Equal(got, want) {
		t.Errorf("encounter = %q, want %q", got, want)
	}

	snap := s.Snapshot()
	if snap.Location != "Toontown Central" {
		t.Errorf("Location = %q, want Toontown Central", snap.Location)
	}
	if snap.Pies != 0 {
		t.Errorf("Pies = %d, want 0", snap.Pies)
	}
	if snap.Cog != "Elm Street" {
		t.Errorf("cog should stay put, Cog = %q", snap.Cog)
	}
}

func TestCogDeclinedSendsBack(t *testing.T) {
	s := newTestSession(t, config.DefaultRules(), "Silly Street", nil, nil)

	begin(t, s)
	submit(t, s, "Silly Street")
	step := submit(t, s, "n")
	if got := texts(step.Messages); !slices.Contains(got, "You got sent back to the last playground.") {
		t.Errorf("messages = %q", got)
	}
	snap := s.Snapshot()
	if snap.Location != "Toontown Central" || snap.Pies != 3 {
		t.Errorf("Location/Pies = %q/%d, want Toontown Central/3", snap.Location, snap.Pies)
	}
	if snap.Moves != 1 {
		t.Errorf("a redirected move still commits, Moves = %d", snap.Moves)
	}
}

func TestCogHitWithPie(t *testing.T) {
	s := newTestSession(t, config.DefaultRules(), "Silly Street", nil, nil)

	begin(t, s)
	submit(t, s, "Silly Street")
	step := submit(t, s, "y")
	if got := texts(step.Messages); !slices.Equal(got, []string{"You hit the cog."}) {
		t.Errorf("messages = %q", got)
	}

	snap := s.Snapshot()
	if snap.Location != "Silly Street" {
		t.Errorf("Location = %q, want Silly Street", snap.Location)
	}
	if snap.Pies != 2 {
		t.Errorf("Pies = %d, want 2", snap.Pies)
	}
	if n := s.m.Node(snap.Cog); n == nil || n.IsPlayground() {
		t.Errorf("cog relocated to %q, want a street", snap.Cog)
	}
	if snap.Countdown != 4 {
		t.Errorf("defeating the cog should not reset the countdown, Countdown = %d", snap.Countdown)
	}
}

func TestPieMissedTunnel(t *testing.T) {
	s := newTestSession(t, config.DefaultRules(), "Silly Street", nil, nil)

	begin(t, s)
	submit(t, s, "Loopy Lane")
	step := submit(t, s, "y")
	if len(step.Messages) != 0 {
		t.Errorf("messages = %q, want none", texts(step.Messages))
	}
	snap := s.Snapshot()
	if snap.Location != "Loopy Lane" || snap.Pies != 2 || snap.Cog != "Silly Street" {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestCogMovesEveryFiveCommittedMoves(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	s, err := NewSession(defaultMap(t), config.DefaultRules(), rand.New(rand.NewSource(7)), logger)
	if err != nil {
		t.Fatal(err)
	}
	s.bananas = names()
	s.blackHoles = names()

	targets := []string{"Goofy Speedway", "Toontown Central"}
	for i := 1; i <= 15; i++ {
		begin(t, s)
		step := submit(t, s, targets[(i-1)%2])
		if !step.RoundOver {
			// The cog wandered next to the toon; playgrounds never hold it
			step = submit(t, s, "n")
		}
		if !step.RoundOver || step.Outcome != Playing {
			t.Fatalf("round %d did not finish cleanly: %+v", i, step)
		}

		wantCountdown := 5 - i%5
		if got := s.Snapshot().Countdown; got != wantCountdown {
			t.Errorf("after move %d: Countdown = %d, want %d", i, got, wantCountdown)
		}
		if got, want := strings.Count(buf.String(), "reason=countdown"), i/5; got != want {
			t.Errorf("after move %d: cog moved %d times, want %d", i, got, want)
		}
	}
}

func TestLosingRoundDoesNotTickCountdown(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	s, err := NewSession(defaultMap(t), config.DefaultRules(), rand.New(rand.NewSource(3)), logger)
	if err != nil {
		t.Fatal(err)
	}
	s.cog = s.m.Node("Bossbot Headquarters")
	s.bananas = names()
	s.blackHoles = names("Silly Street")

	for _, to := range []string{"Goofy Speedway", "Toontown Central", "Goofy Speedway", "Toontown Central"} {
		move(t, s, to)
	}
	if got := s.Snapshot().Countdown; got != 1 {
		t.Fatalf("Countdown = %d, want 1", got)
	}

	step := move(t, s, "Silly Street")
	if step.Outcome != LostToBlackHole {
		t.Fatalf("Outcome = %v, want LostToBlackHole", step.Outcome)
	}
	snap := s.Snapshot()
	if snap.Countdown != 1 || snap.Moves != 4 || snap.Rounds != 5 {
		t.Errorf("Countdown/Moves/Rounds = %d/%d/%d, want 1/4/5", snap.Countdown, snap.Moves, snap.Rounds)
	}
	if strings.Contains(buf.String(), "reason=countdown") {
		t.Error("cog should not move on a losing round")
	}
}

func TestHazardsAreDisjointStreets(t *testing.T) {
	m := defaultMap(t)
	for seed := int64(1); seed <= 100; seed++ {
		s, err := NewSession(m, config.DefaultRules(), rand.New(rand.NewSource(seed)), nil)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		snap := s.Snapshot()
		if len(snap.Bananas) != 3 || len(snap.BlackHoles) != 3 {
			t.Fatalf("seed %d: %d bananas, %d black holes", seed, len(snap.Bananas), len(snap.BlackHoles))
		}
		for _, name := range append(slices.Clone(snap.Bananas), snap.BlackHoles...) {
			if m.Node(name).IsPlayground() {
				t.Errorf("seed %d: hazard on playground %q", seed, name)
			}
		}
		for _, name := range snap.Bananas {
			if slices.Contains(snap.BlackHoles, name) {
				t.Errorf("seed %d: %q is both a banana and a black hole", seed, name)
			}
		}
		if snap.Cog != "Bossbot Headquarters" {
			t.Errorf("seed %d: cog starts at %q", seed, snap.Cog)
		}
	}
}

func TestSameSeedSameGame(t *testing.T) {
	m := defaultMap(t)
	newGame := func() *Session {
		s, err := NewSession(m, config.DefaultRules(), rand.New(rand.NewSource(42)), nil)
		if err != nil {
			t.Fatal(err)
		}
		return s
	}
	a, b := newGame(), newGame()

	if !reflect.DeepEqual(a.Snapshot(), b.Snapshot()) {
		t.Fatalf("snapshots differ:\n%+v\n%+v", a.Snapshot(), b.Snapshot())
	}

	inputs := []string{"Goofy Speedway", "Toontown Central", "Goofy Speedway", "Toontown Central", "Goofy Speedway", "Toontown Central"}
	for _, in := range inputs {
		for _, s := range []*Session{a, b} {
			begin(t, s)
			if step := submit(t, s, in); !step.RoundOver {
				submit(t, s, "n")
			}
		}
		if !reflect.DeepEqual(a.Snapshot(), b.Snapshot()) {
			t.Fatalf("after %q snapshots differ:\n%+v\n%+v", in, a.Snapshot(), b.Snapshot())
		}
	}
}

func TestSessionMisuse(t *testing.T) {
	s := newTestSession(t, config.DefaultRules(), "Bossbot Headquarters", nil, nil)

	if _, err := s.Submit("Silly Street"); !errors.Is(err, ErrRoundNotStarted) {
		t.Errorf("Submit() before Begin() = %v, want ErrRoundNotStarted", err)
	}
	begin(t, s)
	if _, err := s.Begin(); !errors.Is(err, ErrRoundInProgress) {
		t.Errorf("second Begin() = %v, want ErrRoundInProgress", err)
	}
	if !s.Snapshot().AwaitingInput {
		t.Error("AwaitingInput should be set while a round is open")
	}
}

func TestNewSessionErrors(t *testing.T) {
	m := defaultMap(t)
	rng := rand.New(rand.NewSource(1))

	tooMany := config.DefaultRules()
	tooMany.Bananas = 15
	tooMany.BlackHoles = 15
	if _, err := NewSession(m, tooMany, rng, nil); !errors.Is(err, toonmap.ErrNotEnoughNodes) {
		t.Errorf("too many hazards: err = %v, want ErrNotEnoughNodes", err)
	}

	badStart := config.DefaultRules()
	badStart.Start = "Nowhere"
	if _, err := NewSession(m, badStart, rng, nil); err == nil {
		t.Error("unknown start should fail")
	}

	streetStart := config.DefaultRules()
	streetStart.Start = "Silly Street"
	if _, err := NewSession(m, streetStart, rng, nil); err == nil {
		t.Error("start on a street should fail")
	}

	badCog := config.DefaultRules()
	badCog.CogStart = "Nowhere"
	if _, err := NewSession(m, badCog, rng, nil); err == nil {
		t.Error("unknown cog start should fail")
	}

	playgroundCog := config.DefaultRules()
	playgroundCog.CogStart = "Donald's Dock"
	if _, err := NewSession(m, playgroundCog, rng, nil); err == nil || !strings.Contains(err.Error(), "is a playground") {
		t.Errorf("playground cog start: err = %v, want a playground error", err)
	}

	if _, err := NewSession(nil, config.DefaultRules(), rng, nil); err == nil {
		t.Error("nil map should fail")
	}
}

func TestOutcome(t *testing.T) {
	if Playing.Terminal() {
		t.Error("Playing should not be terminal")
	}
	for _, o := range []Outcome{LostToDamage, LostToBlackHole} {
		if !o.Terminal() {
			t.Errorf("%v should be terminal", o)
		}
		got, ok := ParseOutcome(o.String())
		if !ok || got != o {
			t.Errorf("ParseOutcome(%q) = %v, %v", o.String(), got, ok)
		}
	}
	if _, ok := ParseOutcome("won"); ok {
		t.Error("ParseOutcome(won) should fail")
	}
}

func defaultMap(t *testing.T) *toonmap.Map {
	t.Helper()
	topo, err := toonmap.DefaultTopology()
	if err != nil {
		t.Fatalf("DefaultTopology() failed: %v", err)
	}
	m, err := toonmap.Build(topo)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	return m
}
