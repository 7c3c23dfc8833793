// Package config provides YAML-based rules loading, difficulty presets and
// environment settings for toontrek.
package config

import (
	"errors"
	"fmt"
)

// Rules contains every tunable constant of a game.
type Rules struct {
	Start        string `yaml:"start"`          // Playground the toon starts in
	CogStart     string `yaml:"cog_start"`      // Location the cog starts in
	Pies         int    `yaml:"pies"`           // Pies at the start of the game
	Laff         int    `yaml:"laff"`           // Maximum (and starting) laff
	BananaDamage int    `yaml:"banana_damage"`  // Laff lost per banana
	Bananas      int    `yaml:"bananas"`        // Number of banana locations
	BlackHoles   int    `yaml:"black_holes"`    // Number of black hole locations
	CogMoveEvery int    `yaml:"cog_move_every"` // Committed moves between cog relocations
	// StrictMoves only accepts locations one tunnel away. When false any
	// location on the map is accepted, as in the classic game.
	StrictMoves bool `yaml:"strict_moves"`
}

// Validate checks the rules for values no game can run with.
func (r Rules) Validate() error {
	var errs []error
	if r.Start == "" {
		errs = append(errs, errors.New("start is empty"))
	}
	if r.CogStart == "" {
		errs = append(errs, errors.New("cog_start is empty"))
	}
	if r.Laff <= 0 {
		errs = append(errs, fmt.Errorf("laff must be positive, got %d", r.Laff))
	}
	if r.Pies < 0 {
		errs = append(errs, fmt.Errorf("pies must not be negative, got %d", r.Pies))
	}
	if r.BananaDamage < 0 {
		errs = append(errs, fmt.Errorf("banana_damage must not be negative, got %d", r.BananaDamage))
	}
	if r.Bananas < 0 || r.BlackHoles < 0 {
		errs = append(errs, fmt.Errorf("hazard counts must not be negative, got %d bananas and %d black holes", r.Bananas, r.BlackHoles))
	}
	if r.CogMoveEvery < 1 {
		errs = append(errs, fmt.Errorf("cog_move_every must be at least 1, got %d", r.CogMoveEvery))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: invalid rules: %w", errors.Join(errs...))
	}
	return nil
}

// Preset represents a named difficulty level.
type Preset string

const (
	PresetEasy    Preset = "easy"
	PresetNormal  Preset = "normal"
	PresetHard    Preset = "hard"
	PresetClassic Preset = "classic"
)

// ParsePreset converts a flag value to a Preset. Empty means normal.
func ParsePreset(s string) (Preset, error) {
	switch Preset(s) {
	case "":
		return PresetNormal, nil
	case PresetEasy, PresetNormal, PresetHard, PresetClassic:
		return Preset(s), nil
	default:
		return "", fmt.Errorf("config: unknown difficulty %q (want easy, normal, hard or classic)", s)
	}
}

// ApplyPreset modifies the rules based on a difficulty preset.
// Normal leaves loaded rules untouched; classic restores the classic game's
// constants, including lenient moves.
func ApplyPreset(r *Rules, preset Preset) {
	switch preset {
	case PresetEasy:
		r.Pies = 5
		r.BananaDamage = 6
		r.BlackHoles = 2
		r.CogMoveEvery = 7
		r.StrictMoves = true
	case PresetHard:
		r.Pies = 1
		r.Bananas = 4
		r.BlackHoles = 4
		r.CogMoveEvery = 3
		r.StrictMoves = true
	case PresetClassic:
		start, cogStart := r.Start, r.CogStart
		*r = DefaultRules()
		r.Start, r.CogStart = start, cogStart
	}
}
