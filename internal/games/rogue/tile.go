package rogue

import "github.com/vovakirdan/rogue-gym/internal/core"

// Tile is the terrain of one dungeon cell.
type Tile uint8

const (
	TileRock Tile = iota
	TileFloor
	TileWallH
	TileWallV
	TileDoor
	TileCorridor
	TileStairs
)

// Symbol returns the byte drawn for the tile.
func (t Tile) Symbol() byte {
	switch t {
	case TileFloor:
		return '.'
	case TileWallH:
		return '-'
	case TileWallV:
		return '|'
	case TileDoor:
		return '+'
	case TileCorridor:
		return '#'
	case TileStairs:
		return '%'
	default:
		return ' '
	}
}

// Passable reports whether the player or an enemy may stand on the tile.
func (t Tile) Passable() bool {
	switch t {
	case TileFloor, TileDoor, TileCorridor, TileStairs:
		return true
	default:
		return false
	}
}

// ItemKind distinguishes floor items.
type ItemKind uint8

const (
	ItemGold ItemKind = iota
	ItemFood
)

// Item is something lying on the floor.
type Item struct {
	Kind  ItemKind
	Value int // gold amount; unused for food
}

// Symbol returns the byte drawn for the item.
func (it Item) Symbol() byte {
	if it.Kind == ItemGold {
		return '*'
	}
	return ':'
}

// directions maps movement keys to unit offsets.
var directions = map[byte]core.Point{
	'h': {X: -1, Y: 0},
	'j': {X: 0, Y: 1},
	'k': {X: 0, Y: -1},
	'l': {X: 1, Y: 0},
	'y': {X: -1, Y: -1},
	'u': {X: 1, Y: -1},
	'b': {X: -1, Y: 1},
	'n': {X: 1, Y: 1},
}

// neighbors lists the eight offsets in a fixed order so that enemy
// movement is deterministic.
var neighbors = [8]core.Point{
	{X: 0, Y: -1}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0},
	{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1},
}

// chebyshev returns the king-move distance between two points.
func chebyshev(a, b core.Point) int {
	return core.Max(core.Abs(a.X-b.X), core.Abs(a.Y-b.Y))
}
