package rogue

import "github.com/vovakirdan/rogue-gym/internal/engine"

// snapshot renders the current game into an immutable PlayerState.
func (g *Game) snapshot() *engine.PlayerState {
	w, h := g.cfg.Width, g.cfg.Height
	hide := g.cfg.HideDungeon

	grid := make([][]byte, h)
	for y := range grid {
		row := make([]byte, w)
		for x := range row {
			row[x] = ' '
		}
		grid[y] = row
	}

	for y := 1; y < h-1; y++ {
		for x := 0; x < w; x++ {
			if hide && !g.seen[y][x] {
				continue
			}
			grid[y][x] = g.floor.tiles[y][x].Symbol()
		}
	}
	for p, it := range g.floor.items {
		if !hide || g.seen[p.Y][p.X] {
			grid[p.Y][p.X] = it.Symbol()
		}
	}
	for _, e := range g.floor.enemies {
		if g.enemyVisible(e) {
			grid[e.Pos.Y][e.Pos.X] = e.Kind.Letter
		}
	}
	grid[g.player.Y][g.player.X] = '@'

	rows := make([]string, h)
	visited := make([][]bool, h)
	for y := range rows {
		rows[y] = string(grid[y])
		visited[y] = append([]bool(nil), g.visited[y]...)
	}

	return &engine.PlayerState{
		Dungeon:  rows,
		Status:   g.status,
		Terminal: g.terminal,
		Steps:    g.steps,
		Visited:  visited,
		Symbols:  g.symbols,
	}
}
