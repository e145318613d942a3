// Package config provides the game configuration document consumed by
// engines, YAML/JSON loading with a search path, and the YAML run
// configuration used by the headless runner.
package config

import (
	"fmt"

	"github.com/vovakirdan/rogue-gym/internal/core"
)

// Screen bounds accepted by engines.
const (
	MinWidth  = 32
	MaxWidth  = 160
	MinHeight = 16
	MaxHeight = 48
)

// GameConfig is the typed view of a configuration document with
// defaults applied.
type GameConfig struct {
	Seed        *uint64       `json:"seed,omitempty"`
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	HideDungeon bool          `json:"hide_dungeon"`
	Dungeon     DungeonConfig `json:"dungeon"`
	Enemies     EnemyConfig   `json:"enemies"`
	Player      PlayerConfig  `json:"player"`
}

// DungeonConfig defines the room layout.
type DungeonConfig struct {
	Style       string `json:"style"`
	RoomNumX    int    `json:"room_num_x"`
	RoomNumY    int    `json:"room_num_y"`
	MinRoomSize Size   `json:"min_room_size"`
	GoldRate    int    `json:"gold_rate"` // percent of rooms holding gold
	FoodRate    int    `json:"food_rate"` // percent of rooms holding food
}

// Size is a width/height pair in cells.
type Size struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// EnemyConfig defines the enemy roster.
type EnemyConfig struct {
	Enemies    []string `json:"enemies"`
	AppearRate int      `json:"appear_rate"` // percent of rooms with an enemy
}

// PlayerConfig defines the player's starting stats.
type PlayerConfig struct {
	InitHP     int `json:"init_hp"`
	InitStr    int `json:"init_str"`
	HungerTime int `json:"hunger_time"`
}

// DefaultGameConfig returns the configuration used for absent keys.
func DefaultGameConfig() GameConfig {
	return GameConfig{
		Width:       80,
		Height:      24,
		HideDungeon: true,
		Dungeon: DungeonConfig{
			Style:       "rogue",
			RoomNumX:    3,
			RoomNumY:    3,
			MinRoomSize: Size{X: 4, Y: 4},
			GoldRate:    50,
			FoodRate:    15,
		},
		Enemies: EnemyConfig{
			Enemies:    []string{"bat", "emu", "hobgoblin", "ice monster", "jackal", "kestrel", "snake"},
			AppearRate: 40,
		},
		Player: PlayerConfig{
			InitHP:     12,
			InitStr:    16,
			HungerTime: 1300,
		},
	}
}

// Validate checks the cross-field constraints the schema cannot express.
func (g GameConfig) Validate() error {
	if g.Width < MinWidth || g.Width > MaxWidth {
		return fmt.Errorf("%w: width %d outside [%d, %d]", core.ErrInvalidConfiguration, g.Width, MinWidth, MaxWidth)
	}
	if g.Height < MinHeight || g.Height > MaxHeight {
		return fmt.Errorf("%w: height %d outside [%d, %d]", core.ErrInvalidConfiguration, g.Height, MinHeight, MaxHeight)
	}
	if g.Dungeon.Style != "rogue" {
		return fmt.Errorf("%w: unknown dungeon style %q", core.ErrInvalidConfiguration, g.Dungeon.Style)
	}
	d := g.Dungeon
	if d.RoomNumX < 1 || d.RoomNumY < 1 {
		return fmt.Errorf("%w: room grid must be at least 1x1", core.ErrInvalidConfiguration)
	}
	// Each room cell needs room for the minimum room plus its walls and a
	// one-cell gutter for corridors. Rows 0 and height-1 are reserved.
	cellW := g.Width / d.RoomNumX
	cellH := (g.Height - 2) / d.RoomNumY
	if d.MinRoomSize.X+3 > cellW || d.MinRoomSize.Y+3 > cellH {
		return fmt.Errorf("%w: %dx%d rooms of min size %dx%d do not fit a %dx%d screen",
			core.ErrInvalidConfiguration, d.RoomNumX, d.RoomNumY, d.MinRoomSize.X, d.MinRoomSize.Y, g.Width, g.Height)
	}
	if g.Player.InitHP < 1 || g.Player.InitStr < 1 || g.Player.HungerTime < 1 {
		return fmt.Errorf("%w: player stats must be positive", core.ErrInvalidConfiguration)
	}
	return nil
}
