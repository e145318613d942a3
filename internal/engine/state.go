package engine

import (
	"fmt"
	"strings"
)

// Hunger levels reported in Status.Hunger.
const (
	HungerNormal = 0
	HungerHungry = 1
	HungerWeak   = 2
)

// Status holds the player statistics shown on the rogue status line.
type Status struct {
	DungeonLevel int `json:"dungeon_level"`
	Gold         int `json:"gold"`
	HPCurrent    int `json:"hp_current"`
	HPMax        int `json:"hp_max"`
	StrCurrent   int `json:"str_current"`
	StrMax       int `json:"str_max"`
	Defense      int `json:"defense"`
	PlayerLevel  int `json:"player_level"`
	Exp          int `json:"exp"`
	Hunger       int `json:"hunger"`
}

// HungerString returns the label rogue prints for the hunger level.
func (s Status) HungerString() string {
	switch s.Hunger {
	case HungerHungry:
		return "Hungry"
	case HungerWeak:
		return "Weak"
	default:
		return ""
	}
}

// String formats the status line.
func (s Status) String() string {
	line := fmt.Sprintf("Level:%2d  Gold:%-5d Hp:%3d(%d)  Str:%3d(%d)  Arm:%2d  Exp:%d/%d",
		s.DungeonLevel, s.Gold, s.HPCurrent, s.HPMax, s.StrCurrent, s.StrMax, s.Defense, s.PlayerLevel, s.Exp)
	if h := s.HungerString(); h != "" {
		line += "  " + h
	}
	return line
}

// PlayerState is the snapshot an engine produces after every keystroke.
// It must not be modified once returned.
type PlayerState struct {
	Dungeon  []string // h rows of w ASCII cells
	Status   Status
	Terminal bool
	Steps    int      // keystrokes consumed in this episode
	Visited  [][]bool // tiles the player has explored
	Symbols  *SymbolTable
}

// Height returns the number of dungeon rows.
func (s *PlayerState) Height() int { return len(s.Dungeon) }

// Width returns the number of dungeon columns.
func (s *PlayerState) Width() int {
	if len(s.Dungeon) == 0 {
		return 0
	}
	return len(s.Dungeon[0])
}

// At returns the symbol at (x, y), or ' ' out of bounds.
func (s *PlayerState) At(x, y int) byte {
	if y < 0 || y >= len(s.Dungeon) || x < 0 || x >= len(s.Dungeon[y]) {
		return ' '
	}
	return s.Dungeon[y][x]
}

// WasVisited reports whether (x, y) has been explored.
func (s *PlayerState) WasVisited(x, y int) bool {
	if y < 0 || y >= len(s.Visited) || x < 0 || x >= len(s.Visited[y]) {
		return false
	}
	return s.Visited[y][x]
}

// Equal compares dungeon grid, status and terminal flag.
func (s *PlayerState) Equal(o *PlayerState) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.Status != o.Status || s.Terminal != o.Terminal || len(s.Dungeon) != len(o.Dungeon) {
		return false
	}
	for i := range s.Dungeon {
		if s.Dungeon[i] != o.Dungeon[i] {
			return false
		}
	}
	return true
}

// String renders the dungeon followed by the status line.
func (s *PlayerState) String() string {
	var b strings.Builder
	for _, row := range s.Dungeon {
		b.WriteString(row)
		b.WriteByte('\n')
	}
	b.WriteString(s.Status.String())
	return b.String()
}
