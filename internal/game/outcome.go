package game

import "errors"

// Outcome is the state of a game after a round.
type Outcome int

const (
	// Playing means the game continues.
	Playing Outcome = iota
	// LostToDamage means the toon ran out of laff.
	LostToDamage
	// LostToBlackHole means the toon walked into a black hole.
	LostToBlackHole
)

// String returns the name used in logs and the run ledger.
func (o Outcome) String() string {
	switch o {
	case Playing:
		return "playing"
	case LostToDamage:
		return "sad"
	case LostToBlackHole:
		return "black_hole"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further rounds can be played.
func (o Outcome) Terminal() bool {
	return o == LostToDamage || o == LostToBlackHole
}

// ParseOutcome is the inverse of Outcome.String.
func ParseOutcome(s string) (Outcome, bool) {
	for _, o := range []Outcome{Playing, LostToDamage, LostToBlackHole} {
		if o.String() == s {
			return o, true
		}
	}
	return Playing, false
}

var (
	// ErrRoundNotStarted is returned by Submit when Begin has not opened a round.
	ErrRoundNotStarted = errors.New("game: no round in progress")
	// ErrRoundInProgress is returned by Begin while a round awaits input.
	ErrRoundInProgress = errors.New("game: round already in progress")
	// ErrGameOver is returned once the game has reached a terminal outcome.
	ErrGameOver = errors.New("game: game is over")
)
