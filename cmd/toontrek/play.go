package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/toontrek/internal/config"
	"github.com/vovakirdan/toontrek/internal/platform/console"
	"github.com/vovakirdan/toontrek/internal/platform/tui"
	"github.com/vovakirdan/toontrek/internal/registry"
	"github.com/vovakirdan/toontrek/internal/storage"
	"github.com/vovakirdan/toontrek/internal/toonmap"
)

var (
	flagConfig     string
	flagDifficulty string
	flagMapFile    string
	flagPlain      bool
)

var playCmd = &cobra.Command{
	Use:   "play [map]",
	Short: "Play a map",
	Long: `Start a game on the given map. Without a map, a menu lets you pick
one and browse past runs.

Type a location name exactly as listed to walk there. When the cog is one
tunnel away you are asked whether to throw a pie (y or n).

Controls (terminal UI):
  Enter       - Submit
  PgUp/PgDn   - Scroll the log
  R           - Play again (after game over)
  Esc         - Back / quit
  Ctrl+C      - Quit

Difficulty options:
  easy     - More pies, softer bananas, slower cog
  normal   - Rules as loaded from config
  hard     - Fewer pies, more hazards, faster cog, adjacent moves only
  classic  - The classic game: 3 pies, 17 laff, any location accepted

Line mode (--plain) reads one answer per line from stdin and prints the
plain transcript. It is used automatically when stdin is not a terminal.

Examples:
  toontrek play
  toontrek play toontown --difficulty hard
  toontrek play toontown-classic --seed 42
  toontrek play --map-file ./my-town.yaml
  toontrek play --plain < moves.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom rules YAML")
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, classic")
	playCmd.Flags().StringVar(&flagMapFile, "map-file", "", "Path to a topology YAML to play instead of a built-in map")
	playCmd.Flags().BoolVar(&flagPlain, "plain", false, "Line mode: read moves from stdin, print a plain transcript")
}

func runPlay(cmd *cobra.Command, args []string) error {
	rules, err := loadRules()
	if err != nil {
		return err
	}

	gameCfg := tui.GameConfig{
		MapID:  registry.DefaultMap,
		Rules:  rules,
		Seed:   flagSeed,
		Player: os.Getenv("USER"),
		Logger: logger,
	}

	switch {
	case flagMapFile != "":
		m, mapErr := loadMapFile(flagMapFile)
		if mapErr != nil {
			return mapErr
		}
		gameCfg.MapID = "file:" + strings.TrimSuffix(filepath.Base(flagMapFile), filepath.Ext(flagMapFile))
		gameCfg.Map = m
		// Custom maps may not have the default locations
		if m.Node(gameCfg.Rules.Start) == nil && m.Start() != nil {
			gameCfg.Rules.Start = m.Start().Name()
		}
		if m.Node(gameCfg.Rules.CogStart) == nil && m.CogStart() != nil {
			gameCfg.Rules.CogStart = m.CogStart().Name()
		}
	case len(args) == 1:
		if !registry.Exists(args[0]) {
			return fmt.Errorf("unknown map %q (run 'toontrek maps' to see available maps)", args[0])
		}
		gameCfg.MapID = args[0]
	}

	store := openStore()
	if store != nil {
		defer store.Close()
	}

	plain := flagPlain || !term.IsTerminal(int(os.Stdin.Fd()))
	if plain {
		return playPlain(cmd, gameCfg, store)
	}

	if len(args) == 0 && flagMapFile == "" {
		return tui.RunSession(gameCfg, store)
	}
	// Keep the interface nil rather than holding a nil *Store
	var rec tui.Recorder
	if store != nil {
		rec = store
	}
	return tui.Run(gameCfg, rec)
}

// playPlain runs one game in line mode on stdin and stdout.
func playPlain(cmd *cobra.Command, cfg tui.GameConfig, store *storage.Store) error {
	session, seed, err := cfg.NewSession()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	in := console.NewReader(cmd.InOrStdin(), out)
	outcome, err := console.Run(cmd.Context(), session, in, console.NewWriter(out))
	switch {
	case errors.Is(err, io.EOF):
		logger.Info("input ended before the game did", "rounds", session.Snapshot().Rounds)
		return nil
	case err != nil && cmd.Context().Err() != nil:
		// Interrupted
		return nil
	case err != nil:
		return err
	}

	if outcome.Terminal() && store != nil {
		run := tui.RunFromSnapshot(cfg.MapID, seed, cfg.Player, session.Snapshot())
		if id := tui.Record(store, logger, run); id != "" {
			logger.Info("run recorded", "id", id, "rounds", run.Rounds)
		}
	}
	return nil
}

// loadRules applies --config and --difficulty to the rules search path.
func loadRules() (config.Rules, error) {
	rules, err := config.LoadRules(flagConfig)
	if err != nil {
		return config.Rules{}, err
	}
	preset, err := config.ParsePreset(flagDifficulty)
	if err != nil {
		return config.Rules{}, err
	}
	config.ApplyPreset(&rules, preset)
	if err := rules.Validate(); err != nil {
		return config.Rules{}, err
	}
	return rules, nil
}

func loadMapFile(path string) (*toonmap.Map, error) {
	topo, err := toonmap.LoadTopology(path)
	if err != nil {
		return nil, err
	}
	m, err := toonmap.Build(topo)
	if err != nil {
		return nil, fmt.Errorf("building map from %s: %w", path, err)
	}
	return m, nil
}

// openStore opens the run ledger. Games still work without it.
func openStore() *storage.Store {
	store, err := storage.Open(env.DBPath)
	if err != nil {
		logger.Warn("could not open run ledger", "path", env.DBPath, "error", err)
		return nil
	}
	return store
}
