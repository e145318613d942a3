package obs

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/rogue-gym/internal/config"
	"github.com/vovakirdan/rogue-gym/internal/core"
)

// DungeonMode selects how the dungeon grid becomes channels.
type DungeonMode int

const (
	// Symbol emits one binary channel per symbol.
	Symbol DungeonMode = iota
	// Gray emits one channel that is 1 on every non-blank cell.
	Gray
)

func (m DungeonMode) String() string {
	if m == Gray {
		return "gray"
	}
	return "symbol"
}

// ParseDungeonMode accepts "symbol" or "gray". Empty means symbol.
func ParseDungeonMode(s string) (DungeonMode, error) {
	switch strings.ToLower(s) {
	case "", "symbol":
		return Symbol, nil
	case "gray", "grey":
		return Gray, nil
	default:
		return Symbol, fmt.Errorf("%w: unknown dungeon mode %q", core.ErrInvalidConfiguration, s)
	}
}

// Policy decides which channels an observation carries. The zero value
// is symbol channels only.
type Policy struct {
	Dungeon DungeonMode
	Status  StatusFlag
	History bool
}

// Channels returns the channel count for a dungeon with the given
// number of symbols.
func (p Policy) Channels(symbols int) int {
	n := 1
	if p.Dungeon == Symbol {
		n = symbols
	}
	n += Count(p.Status)
	if p.History {
		n++
	}
	return n
}

func (p Policy) String() string {
	return fmt.Sprintf("%s+%s history=%v", p.Dungeon, p.Status, p.History)
}

// ParsePolicy builds a policy from the runner's image settings.
func ParsePolicy(c config.ImageConfig) (Policy, error) {
	mode, err := ParseDungeonMode(c.Dungeon)
	if err != nil {
		return Policy{}, err
	}
	flags, err := ParseStatusFlags(c.Status)
	if err != nil {
		return Policy{}, err
	}
	return Policy{Dungeon: mode, Status: flags, History: c.History}, nil
}
