// Package game implements the round engine: hazard placement, the cog,
// and the per-round state machine that moves the toon around the map.
package game

import (
	"fmt"
	"io"
	"math/rand"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/zyedidia/generic/mapset"

	"github.com/vovakirdan/toontrek/internal/config"
	"github.com/vovakirdan/toontrek/internal/toon"
	"github.com/vovakirdan/toontrek/internal/toonmap"
)

type phase int

const (
	phaseIdle phase = iota
	phaseAwaitMove
	phaseAwaitThrow
	phaseOver
)

// Session owns one game. It is not safe for concurrent use.
//
// A round is played by calling Begin, then Submit with each input line
// until the returned Step has RoundOver set.
type Session struct {
	m      *toonmap.Map
	rules  config.Rules
	rng    *rand.Rand
	logger *log.Logger

	toon       *toon.Toon
	cog        *toonmap.Node
	bananas    mapset.Set[string]
	blackHoles mapset.Set[string]

	countdown int
	rounds    int
	moves     int
	outcome   Outcome
	phase     phase

	// Per-round state, valid while a round is in flight.
	nearCog       bool
	nearBanana    bool
	nearBlackHole bool
	dest          *toonmap.Node
}

// NewSession places the toon, the cog and the hazards on m.
// Bananas are sampled first, then black holes from the remaining streets.
func NewSession(m *toonmap.Map, rules config.Rules, rng *rand.Rand, logger *log.Logger) (*Session, error) {
	if m == nil {
		return nil, fmt.Errorf("game: nil map")
	}
	if rng == nil {
		return nil, fmt.Errorf("game: nil random source")
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	start := m.Node(rules.Start)
	if start == nil {
		return nil, fmt.Errorf("game: start location %q is not on map %q", rules.Start, m.Name())
	}
	t, err := toon.New(start, rules.Pies, rules.Laff)
	if err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}

	cog := m.Node(rules.CogStart)
	if cog == nil {
		return nil, fmt.Errorf("game: cog start %q is not on map %q", rules.CogStart, m.Name())
	}
	if cog.IsPlayground() {
		return nil, fmt.Errorf("game: cog start %q is a playground", rules.CogStart)
	}

	// The cog needs somewhere to go when it relocates
	if m.Len() == len(m.Playgrounds()) {
		return nil, fmt.Errorf("game: cog cannot relocate: %w", toonmap.ErrNotEnoughNodes)
	}

	bananaNodes, err := m.RandomNodes(rng, rules.Bananas, mapset.Set[string]{})
	if err != nil {
		return nil, fmt.Errorf("game: placing bananas: %w", err)
	}
	bananas := nameSet(bananaNodes)

	holeNodes, err := m.RandomNodes(rng, rules.BlackHoles, bananas)
	if err != nil {
		return nil, fmt.Errorf("game: placing black holes: %w", err)
	}
	blackHoles := nameSet(holeNodes)

	s := &Session{
		m:          m,
		rules:      rules,
		rng:        rng,
		logger:     logger,
		toon:       t,
		cog:        cog,
		bananas:    bananas,
		blackHoles: blackHoles,
		countdown:  rules.CogMoveEvery,
		outcome:    Playing,
		phase:      phaseIdle,
	}

	logger.Debug("hazards placed",
		"map", m.Name(),
		"bananas", strings.Join(sortedNames(bananas), ", "),
		"black_holes", strings.Join(sortedNames(blackHoles), ", "),
		"cog", cog.Name(),
	)

	return s, nil
}

// Begin opens a round. It reports the toon's location, warns about hazards
// one tunnel away and lists the available tunnels.
func (s *Session) Begin() ([]Message, error) {
	switch s.phase {
	case phaseOver:
		return nil, ErrGameOver
	case phaseAwaitMove, phaseAwaitThrow:
		return nil, ErrRoundInProgress
	}

	loc := s.toon.Location()
	s.nearCog = loc.IsNeighbor(s.cog)
	s.nearBanana = s.anyNeighborIn(loc, s.bananas)
	s.nearBlackHole = s.anyNeighborIn(loc, s.blackHoles)
	s.dest = nil

	msgs := []Message{info(fmt.Sprintf("You are in %s.", loc.Name()))}
	if s.nearCog {
		msgs = append(msgs, warning("WARNING: A cog is nearby."))
	}
	if s.nearBanana {
		msgs = append(msgs, warning("WARNING: A banana is nearby."))
	}
	if s.nearBlackHole {
		msgs = append(msgs,
			warning("WARNING: A black hole is nearby."),
			warning("If you hit a black hole it will be game over."),
		)
	}
	msgs = append(msgs,
		info("Where would you like to go?"),
		info("Options "+loc.InfoTip()),
	)

	s.phase = phaseAwaitMove
	return msgs, nil
}

// Prompt returns the text shown when asking for the next input line.
// It is empty when no input is expected.
func (s *Session) Prompt() string {
	switch s.phase {
	case phaseAwaitMove:
		return fmt.Sprintf("Enter Location (Ex: %s): ", s.exampleTarget())
	case phaseAwaitThrow:
		return "Throw Pie? (y or n): "
	default:
		return ""
	}
}

// Submit feeds one line of input to the round in flight.
// Invalid input yields retry messages and leaves the state unchanged.
func (s *Session) Submit(input string) (Step, error) {
	input = strings.TrimRight(input, "\r\n")

	switch s.phase {
	case phaseOver:
		return Step{Outcome: s.outcome}, ErrGameOver
	case phaseIdle:
		return Step{Outcome: s.outcome}, ErrRoundNotStarted
	case phaseAwaitMove:
		return s.submitMove(input)
	default:
		return s.submitThrow(input)
	}
}

func (s *Session) submitMove(input string) (Step, error) {
	target := s.m.Node(input)
	if target == nil {
		return Step{Messages: retry("This location is not valid.", "Please try again."), Outcome: s.outcome}, nil
	}
	if s.rules.StrictMoves && !s.toon.Location().IsNeighbor(target) {
		msgs := retry(
			fmt.Sprintf("%s is not one tunnel away.", target.Name()),
			"Please try again.",
		)
		return Step{Messages: msgs, Outcome: s.outcome}, nil
	}

	s.dest = target
	if s.nearCog {
		s.phase = phaseAwaitThrow
		msgs := []Message{
			event("Would you like to throw a pie in the tunnel in case there is a cog?"),
			info(fmt.Sprintf("You have %d pies left.", s.toon.Pies())),
		}
		return Step{Messages: msgs, Outcome: s.outcome}, nil
	}
	return s.resolve(nil)
}

func (s *Session) submitThrow(input string) (Step, error) {
	if input != "y" && input != "n" {
		return Step{Messages: retry("Not a valid input.", "Please try again."), Outcome: s.outcome}, nil
	}

	msgs, err := s.resolveCog(input == "y")
	if err != nil {
		return Step{Messages: msgs, Outcome: s.outcome}, err
	}
	return s.resolve(msgs)
}

// resolveCog handles the pie decision. Only a destination equal to the
// cog's location counts as an encounter.
func (s *Session) resolveCog(throw bool) ([]Message, error) {
	hit := s.dest.Name() == s.cog.Name()

	var msgs []Message
	switch {
	case throw && s.toon.ThrowPie():
		if hit {
			msgs = append(msgs, event("You hit the cog."))
			if err := s.relocateCog("defeated"); err != nil {
				return msgs, err
			}
		}
	case throw:
		msgs = append(msgs, warning("You were out of pies"))
		if hit {
			msgs = append(msgs, s.sendBack()...)
		}
	default:
		if hit {
			msgs = append(msgs, s.sendBack()...)
		}
	}
	return msgs, nil
}

func (s *Session) sendBack() []Message {
	s.dest = s.toon.LastPlayground()
	return []Message{
		event("There was a cog there."),
		event("You got sent back to the last playground."),
	}
}

// resolve applies hazards at the destination, then commits the move and
// ticks the cog countdown.
func (s *Session) resolve(msgs []Message) (Step, error) {
	name := s.dest.Name()

	if s.nearBanana && s.bananas.Has(name) {
		left, total := s.toon.TakeDamage(s.rules.BananaDamage)
		msgs = append(msgs,
			damage("You hit a banana!"),
			damage(fmt.Sprintf("Your laff has been reduced by %d.", s.rules.BananaDamage)),
			info(fmt.Sprintf("Current laff %d/%d", left, total)),
		)
		if s.toon.IsSad() {
			msgs = append(msgs,
				gameOver("You ran out of laff and went sad."),
				gameOver("Better luck next time!"),
			)
			return s.finish(msgs, LostToDamage), nil
		}
	}

	if s.nearBlackHole && s.blackHoles.Has(name) {
		msgs = append(msgs,
			gameOver("You hit a black hole and logged off!"),
			gameOver("Better luck next time!"),
		)
		return s.finish(msgs, LostToBlackHole), nil
	}

	s.toon.SetLocation(s.dest)
	s.moves++
	s.rounds++
	s.phase = phaseIdle

	s.countdown--
	if s.countdown <= 0 {
		if err := s.relocateCog("countdown"); err != nil {
			return Step{Messages: msgs, RoundOver: true, Outcome: s.outcome}, err
		}
		s.countdown = s.rules.CogMoveEvery
	}

	return Step{Messages: msgs, RoundOver: true, Outcome: Playing}, nil
}

func (s *Session) finish(msgs []Message, outcome Outcome) Step {
	s.rounds++
	s.outcome = outcome
	s.phase = phaseOver
	s.logger.Debug("game over",
		"outcome", outcome,
		"rounds", s.rounds,
		"moves", s.moves,
		"location", s.dest.Name(),
	)
	return Step{Messages: msgs, RoundOver: true, Outcome: outcome}
}

// relocateCog moves the cog to a random street. Hazard locations are not
// excluded.
func (s *Session) relocateCog(reason string) error {
	nodes, err := s.m.RandomNodes(s.rng, 1, mapset.Set[string]{})
	if err != nil {
		return fmt.Errorf("game: relocating cog: %w", err)
	}
	s.logger.Debug("cog moved", "from", s.cog.Name(), "to", nodes[0].Name(), "reason", reason)
	s.cog = nodes[0]
	return nil
}

func (s *Session) anyNeighborIn(n *toonmap.Node, set mapset.Set[string]) bool {
	for _, nb := range n.Neighbors() {
		if set.Has(nb.Name()) {
			return true
		}
	}
	return false
}

func (s *Session) exampleTarget() string {
	if nbs := s.toon.Location().Neighbors(); len(nbs) > 0 {
		return nbs[0].Name()
	}
	return s.toon.LastPlayground().Name()
}

// Outcome returns the current game state.
func (s *Session) Outcome() Outcome {
	return s.outcome
}

// Snapshot is a read-only view of a session.
type Snapshot struct {
	Map            string
	Location       string
	LastPlayground string
	Pies           int
	Laff           toon.Laff
	Cog            string
	Bananas        []string // sorted
	BlackHoles     []string // sorted
	Countdown      int      // committed moves until the cog relocates
	Rounds         int      // finished rounds, including the one that ended the game
	Moves          int      // committed moves
	Outcome        Outcome
	AwaitingInput  bool
}

// Snapshot returns the current state of the session.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Map:            s.m.Name(),
		Location:       s.toon.Location().Name(),
		LastPlayground: s.toon.LastPlayground().Name(),
		Pies:           s.toon.Pies(),
		Laff:           s.toon.Laff(),
		Cog:            s.cog.Name(),
		Bananas:        sortedNames(s.bananas),
		BlackHoles:     sortedNames(s.blackHoles),
		Countdown:      s.countdown,
		Rounds:         s.rounds,
		Moves:          s.moves,
		Outcome:        s.outcome,
		AwaitingInput:  s.phase == phaseAwaitMove || s.phase == phaseAwaitThrow,
	}
}

func nameSet(nodes []*toonmap.Node) mapset.Set[string] {
	set := mapset.New[string]()
	for _, n := range nodes {
		set.Put(n.Name())
	}
	return set
}

func sortedNames(set mapset.Set[string]) []string {
	names := make([]string, 0, set.Size())
	set.Each(func(name string) {
		names = append(names, name)
	})
	slices.Sort(names)
	return names
}
