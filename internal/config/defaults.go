package config

import (
	_ "embed"
)

//go:embed defaults/game.yaml
var defaultGameYAML []byte

//go:embed defaults/run.yaml
var defaultRunYAML []byte

// GetDefaultYAML returns the embedded default YAML for "game" or "run".
func GetDefaultYAML(name string) []byte {
	switch name {
	case "game":
		return defaultGameYAML
	case "run":
		return defaultRunYAML
	default:
		return nil
	}
}
