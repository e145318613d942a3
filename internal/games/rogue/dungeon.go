package rogue

import (
	"math/rand"

	"github.com/vovakirdan/rogue-gym/internal/config"
	"github.com/vovakirdan/rogue-gym/internal/core"
)

// floor is one generated dungeon level. Rows 0 and height-1 are left as
// rock: they hold the message and status lines on a real terminal.
type floor struct {
	width, height int
	tiles         [][]Tile
	rooms         []core.Rect // outer rectangles, walls included
	items         map[core.Point]Item
	enemies       []*Enemy
	stairs        core.Point
	start         core.Point
}

func newFloor(w, h int) *floor {
	tiles := make([][]Tile, h)
	for y := range tiles {
		tiles[y] = make([]Tile, w)
	}
	return &floor{
		width:  w,
		height: h,
		tiles:  tiles,
		items:  make(map[core.Point]Item),
	}
}

func (f *floor) inBounds(p core.Point) bool {
	return p.X >= 0 && p.X < f.width && p.Y >= 0 && p.Y < f.height
}

func (f *floor) tile(p core.Point) Tile {
	if !f.inBounds(p) {
		return TileRock
	}
	return f.tiles[p.Y][p.X]
}

// roomAt returns the index of the room whose walls enclose p, or -1.
func (f *floor) roomAt(p core.Point) int {
	for i, r := range f.rooms {
		if r.Contains(p.X, p.Y) {
			return i
		}
	}
	return -1
}

func (f *floor) enemyAt(p core.Point) *Enemy {
	for _, e := range f.enemies {
		if e.Pos == p {
			return e
		}
	}
	return nil
}

// canStep reports whether a unit move from p in direction d is legal
// terrain-wise. Diagonal moves may not enter or leave a doorway.
func (f *floor) canStep(p, d core.Point) bool {
	to := p.Add(d)
	if !f.tile(to).Passable() {
		return false
	}
	if d.X != 0 && d.Y != 0 {
		if f.tile(p) == TileDoor || f.tile(to) == TileDoor {
			return false
		}
	}
	return true
}

// generator builds floors from a game configuration.
type generator struct {
	cfg    config.GameConfig
	roster []EnemyKind
}

// generate lays out a new floor for the given dungeon level.
func (g *generator) generate(rng *rand.Rand, level int) *floor {
	w, h := g.cfg.Width, g.cfg.Height
	d := g.cfg.Dungeon
	f := newFloor(w, h)

	cellW := w / d.RoomNumX
	cellH := (h - 2) / d.RoomNumY

	for cy := range d.RoomNumY {
		for cx := range d.RoomNumX {
			x0, y0 := cx*cellW, 1+cy*cellH
			ow := d.MinRoomSize.X + 2 + rng.Intn(cellW-d.MinRoomSize.X-2)
			oh := d.MinRoomSize.Y + 2 + rng.Intn(cellH-d.MinRoomSize.Y-2)
			ox := x0 + rng.Intn(cellW-ow)
			oy := y0 + rng.Intn(cellH-oh)
			room := core.NewRect(ox, oy, ow, oh)
			f.rooms = append(f.rooms, room)
			f.carveRoom(room)
		}
	}

	g.connect(rng, f, d.RoomNumX, d.RoomNumY)

	f.start = f.randomFree(rng, rng.Intn(len(f.rooms)))
	f.stairs = f.randomFree(rng, rng.Intn(len(f.rooms)), f.start)
	f.tiles[f.stairs.Y][f.stairs.X] = TileStairs

	startRoom := f.roomAt(f.start)
	for i := range f.rooms {
		if rng.Intn(100) < d.GoldRate {
			p := f.randomFree(rng, i, f.start)
			f.items[p] = Item{Kind: ItemGold, Value: 2 + rng.Intn(50+10*level)}
		}
		if rng.Intn(100) < d.FoodRate {
			p := f.randomFree(rng, i, f.start)
			f.items[p] = Item{Kind: ItemFood}
		}
		if i != startRoom && len(g.roster) > 0 && rng.Intn(100) < g.cfg.Enemies.AppearRate {
			k := g.roster[rng.Intn(len(g.roster))]
			p := f.randomFree(rng, i, f.start)
			f.enemies = append(f.enemies, newEnemy(rng, k, p))
		}
	}
	return f
}

func (f *floor) carveRoom(r core.Rect) {
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			switch {
			case y == r.Y || y == r.Bottom()-1:
				f.tiles[y][x] = TileWallH
			case x == r.X || x == r.Right()-1:
				f.tiles[y][x] = TileWallV
			default:
				f.tiles[y][x] = TileFloor
			}
		}
	}
}

// randomFree picks an interior floor cell of room i that holds no item,
// enemy or stairs and is not one of the excluded points. Rooms are large
// enough that a free cell always exists.
func (f *floor) randomFree(rng *rand.Rand, i int, exclude ...core.Point) core.Point {
	in := f.rooms[i].Inset(1)
	for {
		p := core.Point{X: in.X + rng.Intn(in.W), Y: in.Y + rng.Intn(in.H)}
		if f.tiles[p.Y][p.X] != TileFloor {
			continue
		}
		if _, ok := f.items[p]; ok || f.enemyAt(p) != nil {
			continue
		}
		taken := false
		for _, e := range exclude {
			taken = taken || e == p
		}
		if !taken {
			return p
		}
	}
}

// connect joins the room grid with a random spanning tree of corridors
// plus a few extra loops.
func (g *generator) connect(rng *rand.Rand, f *floor, nx, ny int) {
	type edge struct{ a, b int }
	n := nx * ny
	visited := make([]bool, n)
	var edges []edge

	stack := []int{rng.Intn(n)}
	visited[stack[0]] = true
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		cx, cy := cur%nx, cur/nx
		var next []int
		if cx > 0 && !visited[cur-1] {
			next = append(next, cur-1)
		}
		if cx < nx-1 && !visited[cur+1] {
			next = append(next, cur+1)
		}
		if cy > 0 && !visited[cur-nx] {
			next = append(next, cur-nx)
		}
		if cy < ny-1 && !visited[cur+nx] {
			next = append(next, cur+nx)
		}
		if len(next) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		nb := next[rng.Intn(len(next))]
		visited[nb] = true
		edges = append(edges, edge{cur, nb})
		stack = append(stack, nb)
	}

	// Extra loops between right/down neighbours.
	for i := range n {
		if i%nx < nx-1 && rng.Intn(5) == 0 {
			edges = append(edges, edge{i, i + 1})
		}
		if i/nx < ny-1 && rng.Intn(5) == 0 {
			edges = append(edges, edge{i, i + nx})
		}
	}

	for _, e := range edges {
		a, b := e.a, e.b
		if a > b {
			a, b = b, a
		}
		if a/nx == b/nx {
			f.corridorH(rng, f.rooms[a], f.rooms[b])
		} else {
			f.corridorV(rng, f.rooms[a], f.rooms[b])
		}
	}
}

// corridorH joins room l to room r on its right.
func (f *floor) corridorH(rng *rand.Rand, l, r core.Rect) {
	da := core.Point{X: l.Right() - 1, Y: l.Y + 1 + rng.Intn(l.H-2)}
	db := core.Point{X: r.X, Y: r.Y + 1 + rng.Intn(r.H-2)}
	f.tiles[da.Y][da.X] = TileDoor
	f.tiles[db.Y][db.X] = TileDoor

	mx := da.X + 1 + rng.Intn(db.X-da.X-1)
	f.dig(core.Point{X: da.X + 1, Y: da.Y}, core.Point{X: mx, Y: da.Y})
	f.dig(core.Point{X: mx, Y: da.Y}, core.Point{X: mx, Y: db.Y})
	f.dig(core.Point{X: mx, Y: db.Y}, core.Point{X: db.X - 1, Y: db.Y})
}

// corridorV joins room t to room b below it.
func (f *floor) corridorV(rng *rand.Rand, t, b core.Rect) {
	da := core.Point{X: t.X + 1 + rng.Intn(t.W-2), Y: t.Bottom() - 1}
	db := core.Point{X: b.X + 1 + rng.Intn(b.W-2), Y: b.Y}
	f.tiles[da.Y][da.X] = TileDoor
	f.tiles[db.Y][db.X] = TileDoor

	my := da.Y + 1 + rng.Intn(db.Y-da.Y-1)
	f.dig(core.Point{X: da.X, Y: da.Y + 1}, core.Point{X: da.X, Y: my})
	f.dig(core.Point{X: da.X, Y: my}, core.Point{X: db.X, Y: my})
	f.dig(core.Point{X: db.X, Y: my}, core.Point{X: db.X, Y: db.Y - 1})
}

// dig lays corridor along a horizontal or vertical segment, leaving
// existing terrain untouched.
func (f *floor) dig(a, b core.Point) {
	step := core.Point{X: sign(b.X - a.X), Y: sign(b.Y - a.Y)}
	for p := a; ; p = p.Add(step) {
		if f.tiles[p.Y][p.X] == TileRock {
			f.tiles[p.Y][p.X] = TileCorridor
		}
		if p == b {
			return
		}
	}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
