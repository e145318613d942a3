package env

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/vovakirdan/rogue-gym/internal/config"
	"github.com/vovakirdan/rogue-gym/internal/engine"
	"github.com/vovakirdan/rogue-gym/internal/registry"
)

// fakeFailSeed makes the scripted engine reject every key.
const fakeFailSeed = 666

var errFakeEngine = errors.New("fake engine failure")

func init() {
	registry.Register("fake", "Scripted", func(doc *config.Document, maxSteps int) (engine.Handle, error) {
		seed, _ := doc.Seed()
		f := &fakeEngine{doc: doc, seed: seed, maxSteps: maxSteps}
		f.reset()
		return f, nil
	})
}

// fakeEngine is a scripted engine: 'l' finds 10 gold, '>' descends, 'j'
// kills the player and every other key just passes a turn.
type fakeEngine struct {
	doc      *config.Document
	seed     uint64
	pending  *uint64
	maxSteps int

	reacts   int // React calls across episodes
	steps    int
	gold     int
	level    int
	terminal bool
	keys     []byte
	last     *engine.PlayerState
}

func (f *fakeEngine) reset() {
	if f.pending != nil {
		f.seed = *f.pending
		f.pending = nil
	}
	f.steps, f.gold, f.level, f.terminal, f.keys = 0, 0, 1, false, nil
	f.snapshot()
}

func (f *fakeEngine) snapshot() {
	f.last = &engine.PlayerState{
		Dungeon:  []string{fmt.Sprintf("seed=%-4d", f.seed), fmt.Sprintf("step=%-4d", f.steps)},
		Status:   engine.Status{DungeonLevel: f.level, Gold: f.gold, HPCurrent: 1, HPMax: 1},
		Terminal: f.terminal,
		Steps:    f.steps,
		Symbols:  engine.NewSymbolTable(nil),
	}
}

func (f *fakeEngine) React(key byte) (bool, error) {
	if f.terminal {
		return true, nil
	}
	if f.seed == fakeFailSeed {
		return false, errFakeEngine
	}
	f.reacts++
	f.steps++
	f.keys = append(f.keys, key)
	switch key {
	case 'l':
		f.gold += 10
	case '>':
		f.level++
	case 'j':
		f.terminal = true
	}
	if f.maxSteps > 0 && f.steps >= f.maxSteps {
		f.terminal = true
	}
	f.snapshot()
	return f.terminal, nil
}

func (f *fakeEngine) PreviousResult() *engine.PlayerState { return f.last }

func (f *fakeEngine) Reset() error {
	f.reset()
	return nil
}

func (f *fakeEngine) SetSeed(seed uint64) { f.pending = &seed }

func (f *fakeEngine) Seed() uint64 { return f.seed }

func (f *fakeEngine) DumpConfig() ([]byte, error) { return f.doc.Dump() }

func (f *fakeEngine) DumpHistory() ([]byte, error) {
	return json.Marshal(map[string]any{"seed": f.seed, "keys": string(f.keys)})
}

func (f *fakeEngine) ScreenSize() (int, int) { return 2, 9 }

func (f *fakeEngine) SymbolCount() int { return engine.FixedSymbolCount }

func newFakeEnv(t testing.TB, seed uint64, maxSteps int) *Env {
	t.Helper()
	e, err := New(config.Default().WithSeed(seed), Options{Engine: "fake", MaxSteps: maxSteps})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return e
}

func fakeOf(e *Env) *fakeEngine { return e.ep.handle.(*fakeEngine) }
