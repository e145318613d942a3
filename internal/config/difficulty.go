package config

import "fmt"

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy     DifficultyPreset = "easy"
	DifficultyNormal   DifficultyPreset = "normal"
	DifficultyHard     DifficultyPreset = "hard"
	DifficultyPeaceful DifficultyPreset = "peaceful"
)

// ParseDifficulty validates a preset name. Empty means normal.
func ParseDifficulty(s string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(s); p {
	case "":
		return DifficultyNormal, nil
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyPeaceful:
		return p, nil
	default:
		return "", fmt.Errorf("config: unknown difficulty %q (want easy, normal, hard or peaceful)", s)
	}
}

// ApplyDifficulty returns a document with the preset's player and enemy
// settings merged over doc. Keys the caller set explicitly are kept.
func ApplyDifficulty(doc *Document, preset DifficultyPreset) (*Document, error) {
	m, err := doc.Map()
	if err != nil {
		return nil, err
	}

	player, _ := m["player"].(map[string]any)
	if player == nil {
		player = map[string]any{}
	}
	enemies, _ := m["enemies"].(map[string]any)
	if enemies == nil {
		enemies = map[string]any{}
	}
	setDefault := func(obj map[string]any, key string, v any) {
		if _, ok := obj[key]; !ok {
			obj[key] = v
		}
	}

	switch preset {
	case DifficultyEasy:
		setDefault(player, "init_hp", 20)
		setDefault(player, "hunger_time", 2000)
		setDefault(enemies, "appear_rate", 20)
	case DifficultyHard:
		setDefault(player, "init_hp", 8)
		setDefault(player, "hunger_time", 800)
		setDefault(enemies, "appear_rate", 70)
	case DifficultyPeaceful:
		enemies["enemies"] = []any{}
	case DifficultyNormal:
		return doc, nil
	}

	if len(player) > 0 {
		m["player"] = player
	}
	if len(enemies) > 0 {
		m["enemies"] = enemies
	}
	return FromMap(m)
}
