// Package rogue implements the "rogue" engine: a small deterministic
// roguelike with a grid of rooms, corridors, gold, food, stairs and a
// configurable monster roster.
package rogue

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/vovakirdan/rogue-gym/internal/config"
	"github.com/vovakirdan/rogue-gym/internal/core"
	"github.com/vovakirdan/rogue-gym/internal/engine"
	"github.com/vovakirdan/rogue-gym/internal/registry"
)

// ID is the registry name of the engine.
const ID = "rogue"

// startDefense is the armor value the player begins with.
const startDefense = 4

// expLevels are the experience thresholds for each player level.
var expLevels = [...]int{
	10, 20, 40, 80, 160, 320, 640, 1280, 2560, 5120,
	10240, 20480, 40960, 81920, 163840, 327680, 655360, 1310720, 2621440, 5242880,
}

// End reasons reported by EndReason.
const (
	EndNone       = ""
	EndStarvation = "starvation"
	EndMaxSteps   = "max_steps"
	EndKilledBy   = "killed by "
)

func init() {
	registry.Register(ID, "Rogue", func(doc *config.Document, maxSteps int) (engine.Handle, error) {
		g, err := New(doc, maxSteps)
		if err != nil {
			return nil, err
		}
		return g, nil
	})
}

// Game is one engine instance. It is not safe for concurrent use.
type Game struct {
	doc      *config.Document
	cfg      config.GameConfig
	gen      generator
	symbols  *engine.SymbolTable
	maxSteps int

	seed        uint64
	pendingSeed *uint64
	rng         *rand.Rand

	floor    *floor
	player   core.Point
	status   engine.Status
	food     int // turns left before starvation
	turns    int
	steps    int
	terminal bool
	reason   string
	seen     [][]bool
	visited  [][]bool
	keys     []byte

	last *engine.PlayerState
}

// New builds an engine from doc and generates the first floor. A
// document without a seed gets a time-derived one. maxSteps <= 0
// disables the step limit.
func New(doc *config.Document, maxSteps int) (*Game, error) {
	if doc == nil {
		doc = config.Default()
	}
	cfg := doc.Game()
	roster, err := lookupRoster(cfg.Enemies.Enemies)
	if err != nil {
		return nil, err
	}

	seed, ok := doc.Seed()
	if !ok {
		seed = uint64(time.Now().UnixNano())
	}

	g := &Game{
		doc:      doc,
		cfg:      cfg,
		gen:      generator{cfg: cfg, roster: roster},
		symbols:  engine.NewSymbolTable(rosterLetters(roster)),
		maxSteps: max(maxSteps, 0),
		seed:     seed,
	}
	g.reset()
	return g, nil
}

// React feeds one keystroke to the game.
func (g *Game) React(key byte) (bool, error) {
	if g.terminal {
		return true, nil
	}
	if !core.IsKey(key) {
		return false, fmt.Errorf("%w: key %q", core.ErrInvalidAction, key)
	}

	g.steps++
	g.keys = append(g.keys, key)
	if g.act(key) {
		g.endTurn()
	}
	if !g.terminal && g.maxSteps > 0 && g.steps >= g.maxSteps {
		g.terminal = true
		g.reason = EndMaxSteps
	}
	g.updateVision()
	g.last = g.snapshot()
	return g.terminal, nil
}

// PreviousResult returns the latest snapshot.
func (g *Game) PreviousResult() *engine.PlayerState { return g.last }

// Reset restarts the episode from the current seed.
func (g *Game) Reset() error {
	g.reset()
	return nil
}

// SetSeed stores the seed for the next Reset.
func (g *Game) SetSeed(seed uint64) { g.pendingSeed = &seed }

// Seed returns the seed of the running episode.
func (g *Game) Seed() uint64 { return g.seed }

// DumpConfig returns the configuration keys the caller supplied.
func (g *Game) DumpConfig() ([]byte, error) { return g.doc.Dump() }

// DumpHistory returns the replayable log of the running episode.
func (g *Game) DumpHistory() ([]byte, error) {
	cfg, err := g.doc.Dump()
	if err != nil {
		return nil, err
	}
	return json.Marshal(History{
		Config:   cfg,
		Seed:     g.seed,
		MaxSteps: g.maxSteps,
		Keys:     string(g.keys),
	})
}

// ScreenSize returns the dungeon grid as (rows, columns).
func (g *Game) ScreenSize() (int, int) { return g.cfg.Height, g.cfg.Width }

// SymbolCount returns the number of distinct cell symbols.
func (g *Game) SymbolCount() int { return g.symbols.Count() }

// EndReason describes why the episode ended, or "" while it runs.
func (g *Game) EndReason() string { return g.reason }

func (g *Game) reset() {
	if g.pendingSeed != nil {
		g.seed = *g.pendingSeed
		g.pendingSeed = nil
	}
	g.rng = rand.New(rand.NewSource(int64(g.seed)))

	p := g.cfg.Player
	g.status = engine.Status{
		DungeonLevel: 1,
		HPCurrent:    p.InitHP,
		HPMax:        p.InitHP,
		StrCurrent:   p.InitStr,
		StrMax:       p.InitStr,
		Defense:      startDefense,
		PlayerLevel:  1,
	}
	g.food = p.HungerTime
	g.turns = 0
	g.steps = 0
	g.terminal = false
	g.reason = EndNone
	g.keys = nil

	g.enterFloor()
	g.last = g.snapshot()
}

// enterFloor generates the floor for the current dungeon level.
func (g *Game) enterFloor() {
	g.floor = g.gen.generate(g.rng, g.status.DungeonLevel)
	g.player = g.floor.start
	g.seen = newGrid(g.cfg.Width, g.cfg.Height)
	g.visited = newGrid(g.cfg.Width, g.cfg.Height)
	g.visited[g.player.Y][g.player.X] = true
	g.updateVision()
}

// act performs the keystroke and reports whether a turn passed.
func (g *Game) act(key byte) bool {
	switch key {
	case '.':
		return true
	case 's':
		g.reveal(g.player)
		return true
	case '>':
		if g.floor.tile(g.player) != TileStairs {
			return false
		}
		g.status.DungeonLevel++
		g.enterFloor()
		return true
	default:
		return g.move(directions[key])
	}
}

func (g *Game) move(d core.Point) bool {
	if !g.floor.canStep(g.player, d) {
		return false
	}
	to := g.player.Add(d)
	if e := g.floor.enemyAt(to); e != nil {
		g.attack(e)
		return true
	}
	g.player = to
	g.visited[to.Y][to.X] = true
	g.pickUp()
	return true
}

func (g *Game) pickUp() {
	it, ok := g.floor.items[g.player]
	if !ok {
		return
	}
	delete(g.floor.items, g.player)
	switch it.Kind {
	case ItemGold:
		g.status.Gold += it.Value
	case ItemFood:
		g.food = g.cfg.Player.HungerTime
	}
}

func (g *Game) attack(e *Enemy) {
	e.Awake = true
	if g.rng.Intn(100) >= 75 {
		return
	}
	dmg := 1 + g.rng.Intn(4) + strBonus(g.status.StrCurrent)
	e.HP -= max(dmg, 1)
	if e.HP > 0 {
		return
	}
	for i, other := range g.floor.enemies {
		if other == e {
			g.floor.enemies = append(g.floor.enemies[:i], g.floor.enemies[i+1:]...)
			break
		}
	}
	g.gainExp(e.Kind.Exp)
}

func strBonus(str int) int {
	switch {
	case str >= 18:
		return 2
	case str >= 17:
		return 1
	case str < 7:
		return -1
	default:
		return 0
	}
}

func (g *Game) gainExp(exp int) {
	g.status.Exp += exp
	for g.status.PlayerLevel-1 < len(expLevels) && g.status.Exp >= expLevels[g.status.PlayerLevel-1] {
		g.status.PlayerLevel++
		gain := 1 + g.rng.Intn(10)
		g.status.HPMax += gain
		g.status.HPCurrent += gain
	}
}

// endTurn lets the monsters act, then applies hunger and regeneration.
func (g *Game) endTurn() {
	g.turns++
	g.moveEnemies()
	if g.terminal {
		return
	}

	g.food--
	ht := g.cfg.Player.HungerTime
	switch {
	case g.food <= 0:
		g.status.HPCurrent = 0
		g.die(EndStarvation)
		return
	case g.food <= ht/8:
		g.status.Hunger = engine.HungerWeak
		g.status.StrCurrent = max(g.status.StrMax-1, 1)
	case g.food <= ht/4:
		g.status.Hunger = engine.HungerHungry
		g.status.StrCurrent = g.status.StrMax
	default:
		g.status.Hunger = engine.HungerNormal
		g.status.StrCurrent = g.status.StrMax
	}

	every := max(20-2*(g.status.PlayerLevel-1), 3)
	if g.turns%every == 0 && g.status.HPCurrent < g.status.HPMax {
		g.status.HPCurrent++
	}
}

func (g *Game) die(reason string) {
	g.terminal = true
	g.reason = reason
}

func (g *Game) moveEnemies() {
	for _, e := range g.floor.enemies {
		if g.terminal {
			return
		}
		dist := chebyshev(e.Pos, g.player)
		if !e.Awake {
			if dist <= 1 || (g.sameRoom(e.Pos) && g.rng.Intn(3) == 0) {
				e.Awake = true
			}
			continue
		}

		toPlayer := core.Point{X: g.player.X - e.Pos.X, Y: g.player.Y - e.Pos.Y}
		if dist == 1 && g.floor.canStep(e.Pos, toPlayer) {
			g.enemyAttack(e)
			continue
		}
		if e.Kind.Flits && g.rng.Intn(2) == 0 {
			if d := neighbors[g.rng.Intn(len(neighbors))]; g.enemyCanStep(e, d) {
				e.Pos = e.Pos.Add(d)
			}
			continue
		}
		g.chase(e, dist)
	}
}

// chase moves e one step closer to the player, preferring the first
// improving direction in neighbor order.
func (g *Game) chase(e *Enemy, dist int) {
	best, bestDist := core.Point{}, dist
	bestSq := sqDist(e.Pos, g.player)
	for _, d := range neighbors {
		if !g.enemyCanStep(e, d) {
			continue
		}
		to := e.Pos.Add(d)
		nd, sq := chebyshev(to, g.player), sqDist(to, g.player)
		if nd < bestDist || (nd == bestDist && sq < bestSq) {
			best, bestDist, bestSq = d, nd, sq
		}
	}
	if best != (core.Point{}) {
		e.Pos = e.Pos.Add(best)
	}
}

func sqDist(a, b core.Point) int {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

func (g *Game) enemyCanStep(e *Enemy, d core.Point) bool {
	if !g.floor.canStep(e.Pos, d) {
		return false
	}
	to := e.Pos.Add(d)
	return to != g.player && g.floor.enemyAt(to) == nil
}

func (g *Game) enemyAttack(e *Enemy) {
	if g.rng.Intn(20)+1+e.Kind.Level <= 10+g.status.Defense/2 {
		return
	}
	g.status.HPCurrent -= 1 + g.rng.Intn(e.Kind.Damage)
	if g.status.HPCurrent <= 0 {
		g.status.HPCurrent = 0
		g.die(EndKilledBy + e.Kind.Name)
	}
}

func (g *Game) sameRoom(p core.Point) bool {
	r := g.floor.roomAt(g.player)
	return r >= 0 && r == g.floor.roomAt(p)
}

// updateVision marks the player's room, or the cells around the player
// in a corridor, as seen.
func (g *Game) updateVision() {
	if r := g.floor.roomAt(g.player); r >= 0 {
		room := g.floor.rooms[r]
		for y := room.Y; y < room.Bottom(); y++ {
			for x := room.X; x < room.Right(); x++ {
				g.seen[y][x] = true
			}
		}
	}
	g.reveal(g.player)
}

// reveal marks the 3x3 neighbourhood of p as seen.
func (g *Game) reveal(p core.Point) {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			q := core.Point{X: p.X + dx, Y: p.Y + dy}
			if g.floor.inBounds(q) {
				g.seen[q.Y][q.X] = true
			}
		}
	}
}

func (g *Game) enemyVisible(e *Enemy) bool {
	return !g.cfg.HideDungeon || g.sameRoom(e.Pos) || chebyshev(e.Pos, g.player) <= 1
}

func newGrid(w, h int) [][]bool {
	grid := make([][]bool, h)
	for y := range grid {
		grid[y] = make([]bool, w)
	}
	return grid
}
