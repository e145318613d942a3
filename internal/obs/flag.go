// Package obs turns engine snapshots into observation tensors.
package obs

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/vovakirdan/rogue-gym/internal/core"
	"github.com/vovakirdan/rogue-gym/internal/engine"
)

// StatusFlag selects status scalars that become observation channels.
type StatusFlag uint16

const (
	DungeonLevel StatusFlag = 1 << iota
	HPCurrent
	HPMax
	StrCurrent
	StrMax
	Defense
	PlayerLevel
	Exp
	Hunger
)

const (
	Empty StatusFlag = 0
	Full  StatusFlag = DungeonLevel | HPCurrent | HPMax | StrCurrent | StrMax |
		Defense | PlayerLevel | Exp | Hunger
)

// flagNames are indexed by bit position.
var flagNames = [...]string{
	"dungeon_level",
	"hp_current",
	"hp_max",
	"str_current",
	"str_max",
	"defense",
	"player_level",
	"exp",
	"hunger",
}

// Normalisation caps. Values above a cap saturate at 1.
const (
	maxDungeonLevel = 26
	maxHP           = 200
	maxStr          = 31
	maxDefense      = 20
	maxPlayerLevel  = 21
	maxExp          = 100000
)

// Count returns the number of status channels f selects.
func Count(f StatusFlag) int {
	return bits.OnesCount16(uint16(f & Full))
}

// Channels splits f into single flags in declaration order.
func Channels(f StatusFlag) []StatusFlag {
	out := make([]StatusFlag, 0, Count(f))
	for i := range flagNames {
		if b := StatusFlag(1) << i; f&b != 0 {
			out = append(out, b)
		}
	}
	return out
}

// Has reports whether every bit of o is set in f.
func (f StatusFlag) Has(o StatusFlag) bool { return f&o == o }

func (f StatusFlag) String() string {
	switch f & Full {
	case Empty:
		return "empty"
	case Full:
		return "full"
	}
	var names []string
	for i, n := range flagNames {
		if f&(1<<i) != 0 {
			names = append(names, n)
		}
	}
	return strings.Join(names, "|")
}

// ParseStatusFlag parses "full", "empty" or flag names joined by '|' or ','.
func ParseStatusFlag(s string) (StatusFlag, error) {
	var f StatusFlag
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		g, err := parseOne(strings.TrimSpace(part))
		if err != nil {
			return Empty, err
		}
		f |= g
	}
	return f, nil
}

// ParseStatusFlags parses a list of names as produced by a YAML sequence.
func ParseStatusFlags(names []string) (StatusFlag, error) {
	return ParseStatusFlag(strings.Join(names, "|"))
}

func parseOne(name string) (StatusFlag, error) {
	switch strings.ToLower(name) {
	case "", "empty":
		return Empty, nil
	case "full":
		return Full, nil
	}
	for i, n := range flagNames {
		if strings.EqualFold(n, name) {
			return 1 << i, nil
		}
	}
	return Empty, fmt.Errorf("%w: unknown status flag %q", core.ErrInvalidConfiguration, name)
}

// Value returns the normalised scalar of a single flag, in [0, 1].
func (f StatusFlag) Value(s engine.Status) float32 {
	switch f {
	case DungeonLevel:
		return ratio(s.DungeonLevel, maxDungeonLevel)
	case HPCurrent:
		return ratio(s.HPCurrent, s.HPMax)
	case HPMax:
		return ratio(s.HPMax, maxHP)
	case StrCurrent:
		return ratio(s.StrCurrent, s.StrMax)
	case StrMax:
		return ratio(s.StrMax, maxStr)
	case Defense:
		return ratio(s.Defense, maxDefense)
	case PlayerLevel:
		return ratio(s.PlayerLevel, maxPlayerLevel)
	case Exp:
		return ratio(s.Exp, maxExp)
	case Hunger:
		return ratio(s.Hunger, engine.HungerWeak)
	default:
		return 0
	}
}

func ratio(v, limit int) float32 {
	if limit <= 0 || v <= 0 {
		return 0
	}
	if v >= limit {
		return 1
	}
	return float32(v) / float32(limit)
}
