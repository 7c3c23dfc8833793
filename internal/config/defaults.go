package config

import (
	_ "embed"
)

//go:embed defaults/rules.yaml
var defaultRulesYAML []byte

// DefaultRules returns the classic rules.
func DefaultRules() Rules {
	return Rules{
		Start:        "Toontown Central",
		CogStart:     "Bossbot Headquarters",
		Pies:         3,
		Laff:         17,
		BananaDamage: 9,
		Bananas:      3,
		BlackHoles:   3,
		CogMoveEvery: 5,
		StrictMoves:  false,
	}
}

// DefaultRulesYAML returns the embedded default rules file.
func DefaultRulesYAML() []byte {
	return defaultRulesYAML
}
