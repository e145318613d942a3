package env

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/vovakirdan/rogue-gym/internal/config"
	"github.com/vovakirdan/rogue-gym/internal/core"
	"github.com/vovakirdan/rogue-gym/internal/engine"
	_ "github.com/vovakirdan/rogue-gym/internal/games/rogue"
)

// openNoEnemies shows the whole map, has no monsters and gold in every room.
const openNoEnemies = `{"seed": 1, "hide_dungeon": false, "enemies": {"enemies": []}, "dungeon": {"gold_rate": 100}}`

func newRogueEnv(t *testing.T, cfg string, maxSteps int) *Env {
	t.Helper()
	e, err := New(config.MustParse(cfg), Options{MaxSteps: maxSteps})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return e
}

// planPath finds the shortest keystroke path on the rendered screen from
// '@' to the nearest cell holding target. Doors may not be entered or
// left diagonally.
func planPath(s *engine.PlayerState, target byte) (string, bool) {
	passable := func(b byte) bool { return strings.IndexByte(".+#%*:", b) >= 0 }
	var start core.Point
	for y, row := range s.Dungeon {
		if x := strings.IndexByte(row, '@'); x >= 0 {
			start = core.Point{X: x, Y: y}
		}
	}

	type node struct {
		prev core.Point
		key  byte
	}
	offsets := map[byte]core.Point{
		'h': {X: -1}, 'j': {Y: 1}, 'k': {Y: -1}, 'l': {X: 1},
		'y': {X: -1, Y: -1}, 'u': {X: 1, Y: -1}, 'b': {X: -1, Y: 1}, 'n': {X: 1, Y: 1},
	}
	seen := map[core.Point]node{start: {}}
	queue := []core.Point{start}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if s.At(p.X, p.Y) == target {
			var keys []byte
			for q := p; q != start; q = seen[q].prev {
				keys = append([]byte{seen[q].key}, keys...)
			}
			return string(keys), true
		}
		for _, k := range []byte("hjklyubn") {
			d := offsets[k]
			q := p.Add(d)
			if _, ok := seen[q]; ok || !passable(s.At(q.X, q.Y)) {
				continue
			}
			if d.X != 0 && d.Y != 0 && (s.At(p.X, p.Y) == '+' || s.At(q.X, q.Y) == '+') {
				continue
			}
			seen[q] = node{prev: p, key: k}
			queue = append(queue, q)
		}
	}
	return "", false
}

func TestRewardEqualsGoldPile(t *testing.T) {
	e := newRogueEnv(t, openNoEnemies, 0)
	s, err := e.Reset()
	if err != nil {
		t.Fatal(err)
	}
	path, ok := planPath(s, '*')
	if !ok {
		t.Fatal("no reachable gold")
	}

	var total float64
	for i := 0; i < len(path); i++ {
		r, err := e.Step(core.Macro(path[i : i+1]))
		if err != nil {
			t.Fatal(err)
		}
		if i < len(path)-1 && r.Reward != 0 {
			t.Errorf("step %d picked up %v gold before the target", i, r.Reward)
		}
		total += r.Reward
	}
	gold := e.State().Status.Gold
	if gold <= 0 || total != float64(gold) {
		t.Errorf("cumulative reward %v, gold %d", total, gold)
	}
}

func TestStairBonusDescending(t *testing.T) {
	e := NewStairBonus(newRogueEnv(t, openNoEnemies, 0), 50)
	s, _ := e.Reset()

	_, _ = e.Step(core.ActionNoop)
	path, ok := planPath(s, '%')
	if !ok {
		t.Fatal("no reachable stairs")
	}
	for i := 0; i < len(path); i++ {
		r, err := e.Step(core.Macro(path[i : i+1]))
		if err != nil {
			t.Fatal(err)
		}
		if r.Reward < 0 {
			t.Errorf("walking step %d reward %v", i, r.Reward)
		}
	}
	r, err := e.Step(core.ActionDescend)
	if err != nil {
		t.Fatal(err)
	}
	if r.Reward < 50 || r.State.Status.DungeonLevel != 2 {
		t.Errorf("descending step: reward %v level %d", r.Reward, r.State.Status.DungeonLevel)
	}
}

func TestFloorLimitOnRogue(t *testing.T) {
	e := NewFloorLimit(newRogueEnv(t, openNoEnemies, 0), 2)
	s, _ := e.Reset()
	path, ok := planPath(s, '%')
	if !ok {
		t.Fatal("no reachable stairs")
	}
	r, _ := e.Step(core.Macro(path))
	if r.Done {
		t.Fatal("done before descending")
	}
	r, _ = e.Step(core.ActionDescend)
	if !r.Done {
		t.Fatal("floor 2 should end the episode")
	}
	for range 5 {
		if r, _ := e.Step(core.ActionLeft); !r.Done || r.Reward != 0 {
			t.Fatal("termination must stick until reset")
		}
	}
	if s, _ := e.Reset(); s.Status.DungeonLevel != 1 {
		t.Error("reset should return to the first floor")
	}
}

func randomKeyString(seed int64, n int) string {
	rng := rand.New(rand.NewSource(seed))
	vocab := core.Vocabulary()
	b := make([]byte, n)
	for i := range b {
		b[i] = vocab[rng.Intn(len(vocab))]
	}
	return string(b)
}

func TestDeterministicEpisodes(t *testing.T) {
	run := func() []*engine.PlayerState {
		e := newRogueEnv(t, `{"seed": 42}`, 0)
		s, _ := e.Reset()
		out := []*engine.PlayerState{s}
		for _, k := range []byte(randomKeyString(8, 300)) {
			r, err := e.Step(core.Macro(string(k)))
			if err != nil {
				t.Fatal(err)
			}
			out = append(out, r.State)
		}
		return out
	}
	a, b := run(), run()
	for i := range a {
		if !a[i].Equal(b[i]) {
			t.Fatalf("episodes diverge at step %d", i)
		}
	}
}

func TestBatchMatchesSingleEnvironments(t *testing.T) {
	seeds := []uint64{1, 2, 3}
	const maxSteps = 120
	docs := make([]*config.Document, len(seeds))
	singles := make([]*Env, len(seeds))
	for i, s := range seeds {
		docs[i] = config.MustParse(`{"hide_dungeon": true}`).WithSeed(s)
		e, err := New(docs[i], Options{MaxSteps: maxSteps})
		if err != nil {
			t.Fatal(err)
		}
		singles[i] = e
	}
	b, err := NewBatch(docs, BatchOptions{MaxSteps: maxSteps, Workers: 2})
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	keys := make([]string, len(seeds))
	for i := range seeds {
		keys[i] = randomKeyString(int64(100+i), maxSteps+20)
	}

	for step := 0; step < maxSteps+20; step++ {
		var col []byte
		for i := range seeds {
			col = append(col, keys[i][step])
		}
		br, err := b.StepString(string(col))
		if err != nil {
			t.Fatal(err)
		}
		for i, e := range singles {
			r, err := e.Step(core.Macro(col[i : i+1]))
			if err != nil {
				t.Fatal(err)
			}
			if !r.State.Equal(br.States[i]) || r.Reward != br.Rewards[i] || r.Done != br.Dones[i] {
				t.Fatalf("step %d instance %d: single and batch diverge", step, i)
			}
		}
	}
	for i, d := range b.Dones() {
		if !d {
			t.Errorf("instance %d should have hit the step budget", i)
		}
	}
}
