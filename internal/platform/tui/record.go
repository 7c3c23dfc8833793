package tui

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/toontrek/internal/config"
	"github.com/vovakirdan/toontrek/internal/game"
	"github.com/vovakirdan/toontrek/internal/registry"
	"github.com/vovakirdan/toontrek/internal/storage"
	"github.com/vovakirdan/toontrek/internal/toonmap"
)

// GameConfig describes the games a model starts.
type GameConfig struct {
	MapID  string
	Map    *toonmap.Map // built from MapID when nil
	Rules  config.Rules
	Seed   int64 // 0 picks a new seed for every game
	Player string
	Logger *log.Logger
}

// Recorder stores finished runs. *storage.Store implements it.
type Recorder interface {
	SaveRun(run storage.Run) (string, error)
}

func (c GameConfig) logger() *log.Logger {
	if c.Logger == nil {
		return log.New(io.Discard)
	}
	return c.Logger
}

// NewSession starts a game as described by c and returns the seed used.
func (c GameConfig) NewSession() (*game.Session, int64, error) {
	m := c.Map
	if m == nil {
		var err error
		if m, err = registry.Create(c.MapID); err != nil {
			return nil, 0, err
		}
	}

	seed := config.ResolveSeed(c.Seed)
	s, err := game.NewSession(m, c.Rules, rand.New(rand.NewSource(seed)), c.logger())
	if err != nil {
		return nil, 0, fmt.Errorf("starting game on %q: %w", c.MapID, err)
	}
	return s, seed, nil
}

// RunFromSnapshot builds the ledger entry for a finished game.
func RunFromSnapshot(mapID string, seed int64, player string, snap game.Snapshot) storage.Run {
	return storage.Run{
		MapID:    mapID,
		Seed:     seed,
		Outcome:  snap.Outcome.String(),
		Rounds:   snap.Rounds,
		Moves:    snap.Moves,
		PiesLeft: snap.Pies,
		LaffLeft: snap.Laff.Current,
		Player:   player,
	}
}

// Record saves a finished game to rec. Failures are logged and the run is
// dropped; playing never depends on the ledger.
func Record(rec Recorder, logger *log.Logger, run storage.Run) string {
	if rec == nil {
		return ""
	}
	id, err := rec.SaveRun(run)
	if err != nil {
		if logger != nil {
			logger.Warn("could not record run", "map", run.MapID, "error", err)
		}
		return ""
	}
	return id
}
