package obs

import (
	"fmt"

	"github.com/vovakirdan/rogue-gym/internal/core"
	"github.com/vovakirdan/rogue-gym/internal/engine"
)

var fixedTable = engine.NewSymbolTable(nil)

// Encode converts a *engine.PlayerState into a tensor. Channels are the
// dungeon channels, then one constant plane per status flag in flag
// order, then the history plane.
func Encode(v any, p Policy) (*Tensor, error) {
	s, ok := v.(*engine.PlayerState)
	if !ok || s == nil {
		return nil, fmt.Errorf("%w: cannot encode %T", core.ErrTypeMismatch, v)
	}

	symbols := s.Symbols
	if symbols == nil {
		symbols = fixedTable
	}
	h, w := s.Height(), s.Width()
	t := NewTensor(p.Channels(symbols.Count()), h, w)

	c := 0
	switch p.Dungeon {
	case Gray:
		for y, row := range s.Dungeon {
			for x := 0; x < len(row) && x < w; x++ {
				if row[x] != ' ' {
					t.Set(0, y, x, 1)
				}
			}
		}
		c = 1
	default:
		for y, row := range s.Dungeon {
			for x := 0; x < len(row) && x < w; x++ {
				if i, ok := symbols.Index(row[x]); ok {
					t.Set(i, y, x, 1)
				}
			}
		}
		c = symbols.Count()
	}

	for _, f := range Channels(p.Status) {
		t.Fill(c, f.Value(s.Status))
		c++
	}

	if p.History {
		for y := range h {
			for x := range w {
				if s.WasVisited(x, y) {
					t.Set(c, y, x, 1)
				}
			}
		}
	}
	return t, nil
}

// StatusVector returns the normalised status scalars selected by f.
func StatusVector(s *engine.PlayerState, f StatusFlag) []float32 {
	flags := Channels(f)
	out := make([]float32, len(flags))
	for i, g := range flags {
		out[i] = g.Value(s.Status)
	}
	return out
}
