// Package toon provides the player-controlled character.
package toon

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/toontrek/internal/toonmap"
)

// Laff is the toon's health pool.
type Laff struct {
	Current int
	Max     int
}

// String returns the "current/max" form shown to the player.
func (l Laff) String() string {
	return fmt.Sprintf("%d/%d", l.Current, l.Max)
}

// Toon is the player character. It does no validation beyond its own
// invariants; the round engine decides which moves are legal.
type Toon struct {
	location       *toonmap.Node
	lastPlayground *toonmap.Node
	pies           int
	laff           Laff
}

// New creates a toon standing in the given playground.
func New(start *toonmap.Node, pies, maxLaff int) (*Toon, error) {
	if start == nil {
		return nil, errors.New("toon: nil start location")
	}
	if !start.IsPlayground() {
		return nil, fmt.Errorf("toon: start location %q is not a playground", start.Name())
	}
	if pies < 0 {
		return nil, fmt.Errorf("toon: negative pie count %d", pies)
	}
	if maxLaff <= 0 {
		return nil, fmt.Errorf("toon: max laff must be positive, got %d", maxLaff)
	}

	return &Toon{
		location:       start,
		lastPlayground: start,
		pies:           pies,
		laff:           Laff{Current: maxLaff, Max: maxLaff},
	}, nil
}

// Location returns the toon's current location.
func (t *Toon) Location() *toonmap.Node {
	return t.location
}

// LastPlayground returns the most recent playground visited, where the toon
// is sent back to after running into a cog.
func (t *Toon) LastPlayground() *toonmap.Node {
	return t.lastPlayground
}

// Pies returns the number of pies left.
func (t *Toon) Pies() int {
	return t.pies
}

// Laff returns the current and maximum laff.
func (t *Toon) Laff() Laff {
	return t.laff
}

// IsSad reports whether the toon has run out of laff.
func (t *Toon) IsSad() bool {
	return t.laff.Current == 0
}

// SetLocation moves the toon. Playgrounds also become the respawn point.
func (t *Toon) SetLocation(n *toonmap.Node) {
	if n.IsPlayground() {
		t.lastPlayground = n
	}
	t.location = n
}

// TakeDamage removes laff, never going below zero.
// Returns the laff remaining and the maximum.
func (t *Toon) TakeDamage(amount int) (remaining, total int) {
	if amount < 0 {
		amount = 0
	}
	if t.laff.Current >= amount {
		t.laff.Current -= amount
	} else {
		t.laff.Current = 0
	}
	return t.laff.Current, t.laff.Max
}

// ThrowPie uses up a pie. Returns false, without changing anything, when
// there are none left.
func (t *Toon) ThrowPie() bool {
	if t.pies == 0 {
		return false
	}
	t.pies--
	return true
}
