package env

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/rogue-gym/internal/config"
	"github.com/vovakirdan/rogue-gym/internal/core"
	"github.com/vovakirdan/rogue-gym/internal/obs"
	"github.com/vovakirdan/rogue-gym/internal/storage"
)

func TestNewDefaults(t *testing.T) {
	e, err := New(nil, Options{Engine: "fake"})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if e.MaxSteps() != DefaultMaxSteps {
		t.Errorf("MaxSteps() = %d, expected %d", e.MaxSteps(), DefaultMaxSteps)
	}
	if e.Phase() != PhaseConstructed || e.State() == nil || e.Steps() != 0 {
		t.Errorf("unexpected initial env: phase=%v state=%v steps=%d", e.Phase(), e.State(), e.Steps())
	}

	if _, err := New(nil, Options{Engine: "missing"}); err == nil {
		t.Error("unknown engine should fail")
	}
	if _, err := New(nil, Options{Engine: "fake", MaxSteps: -1}); !errors.Is(err, core.ErrInvalidConfiguration) {
		t.Errorf("negative max steps error = %v", err)
	}
}

func TestStepReward(t *testing.T) {
	e := newFakeEnv(t, 1, 0)

	r, err := e.Step(core.ActionRight)
	if err != nil {
		t.Fatal(err)
	}
	if r.Reward != 10 || r.Done {
		t.Errorf("step 'l' = reward %v done %v, expected 10 false", r.Reward, r.Done)
	}

	r, err = e.Step(core.Macro("l.l"))
	if err != nil {
		t.Fatal(err)
	}
	if r.Reward != 20 {
		t.Errorf("macro reward = %v, expected 20", r.Reward)
	}
	if r.Info["keys_consumed"] != 3 || r.Info["steps"] != 4 || e.Steps() != 4 {
		t.Errorf("info = %v, steps = %d", r.Info, e.Steps())
	}
	if e.Phase() != PhaseStepping {
		t.Errorf("phase = %v, expected stepping", e.Phase())
	}
}

func TestStepInvalidAction(t *testing.T) {
	e := newFakeEnv(t, 1, 0)
	inputs := []core.Input{core.Action(42), core.Action(-1), core.Macro("lx"), core.Macro(""), nil}
	for _, in := range inputs {
		if _, err := e.Step(in); !errors.Is(err, core.ErrInvalidAction) {
			t.Errorf("Step(%v) error = %v, expected ErrInvalidAction", in, err)
		}
	}
	if fakeOf(e).reacts != 0 || e.Steps() != 0 {
		t.Error("invalid input must not reach the engine")
	}
}

type rawKeys []byte

func (r rawKeys) Keys() ([]byte, error) { return r, nil }

func TestStepRejectsUnknownRawKey(t *testing.T) {
	e := newFakeEnv(t, 1, 0)
	if _, err := e.Step(rawKeys("lx")); !errors.Is(err, core.ErrInvalidAction) {
		t.Fatalf("Step error = %v, expected ErrInvalidAction", err)
	}
	if fakeOf(e).reacts != 0 || e.Done() || e.Phase() == PhaseTerminal {
		t.Fatal("a rejected input must leave the episode untouched")
	}
	r, err := e.Step(rawKeys("l"))
	if err != nil || r.Reward != 10 || r.Done {
		t.Errorf("retry = %+v, %v", r, err)
	}
}

func TestMacroStopsAtTerminal(t *testing.T) {
	e := newFakeEnv(t, 1, 0)
	r, err := e.Step(core.Macro("ljl"))
	if err != nil {
		t.Fatal(err)
	}
	if !r.Done || r.Reward != 10 || r.Info["keys_consumed"] != 2 {
		t.Errorf("result = %+v, expected done with reward 10 after 2 keys", r)
	}
	if e.Phase() != PhaseTerminal || e.EndReason() != "terminal" {
		t.Errorf("phase=%v reason=%q", e.Phase(), e.EndReason())
	}
}

func TestPostTerminalStep(t *testing.T) {
	e := newFakeEnv(t, 1, 0)
	first, _ := e.Step(core.ActionDown)
	if !first.Done {
		t.Fatal("'j' should end the episode")
	}
	reacts := fakeOf(e).reacts

	for range 3 {
		r, err := e.Step(core.ActionRight)
		if err != nil {
			t.Fatal(err)
		}
		if !r.Done || r.Reward != 0 || r.State != first.State {
			t.Errorf("post-terminal step = %+v, expected cached state, zero reward, done", r)
		}
	}
	if fakeOf(e).reacts != reacts {
		t.Error("post-terminal steps must not reach the engine")
	}

	s, err := e.Reset()
	if err != nil {
		t.Fatal(err)
	}
	if s.Terminal || e.Steps() != 0 || e.Phase() != PhaseStepping || e.Done() {
		t.Error("reset should start a fresh episode")
	}
	if r, _ := e.Step(core.ActionRight); r.Reward != 10 {
		t.Errorf("reward after reset = %v, expected 10", r.Reward)
	}
}

func TestSeedAppliesOnReset(t *testing.T) {
	e := newFakeEnv(t, 1, 0)
	e.Seed(5)

	if e.State().Dungeon[0] != "seed=1   " {
		t.Errorf("seed changed the running episode: %q", e.State().Dungeon[0])
	}
	if s, _ := e.EpisodeSeed(); s != 1 {
		t.Errorf("EpisodeSeed() = %d before reset", s)
	}

	s, _ := e.Reset()
	if s.Dungeon[0] != "seed=5   " {
		t.Errorf("after reset dungeon = %q, expected seed 5", s.Dungeon[0])
	}
}

func TestMaxStepsTermination(t *testing.T) {
	e := newFakeEnv(t, 1, 5)
	for i := 1; i <= 6; i++ {
		r, err := e.Step(core.ActionNoop)
		if err != nil {
			t.Fatal(err)
		}
		if r.Done != (i >= 5) {
			t.Fatalf("step %d: done = %v", i, r.Done)
		}
	}
	if e.Steps() != 5 || e.EndReason() != "max_steps" {
		t.Errorf("steps=%d reason=%q", e.Steps(), e.EndReason())
	}

	e2 := newFakeEnv(t, 1, 5)
	r, _ := e2.Step(core.Macro("...."))
	if r.Done {
		t.Fatal("done after 4 keys")
	}
	r, _ = e2.Step(core.Macro("..."))
	if !r.Done || r.Info["keys_consumed"] != 1 || e2.Steps() != 5 {
		t.Errorf("macro crossing the budget: %+v, steps=%d", r, e2.Steps())
	}
}

func TestObserve(t *testing.T) {
	e, err := New(nil, Options{Engine: "fake", Policy: obs.Policy{Status: obs.DungeonLevel}})
	if err != nil {
		t.Fatal(err)
	}

	a, err := e.Observe()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := e.Observe()
	if a != b {
		t.Error("Observe() should be cached until the state changes")
	}
	if a.Shape() != e.ObservationShape() || a.C != 18 {
		t.Errorf("shape %v, expected %v with 18 channels", a.Shape(), e.ObservationShape())
	}

	r, _ := e.Step(core.ActionNoop)
	c, _ := e.Observe()
	if c == a {
		t.Error("Observe() should re-encode after a step")
	}
	if _, err := r.Observe(obs.Policy{Dungeon: obs.Gray}); err != nil {
		t.Errorf("StepResult.Observe failed: %v", err)
	}
	if _, err := e.Encode("not a state", obs.Policy{}); !errors.Is(err, core.ErrTypeMismatch) {
		t.Errorf("Encode error = %v, expected ErrTypeMismatch", err)
	}
}

func TestConfigAndHistoryFiles(t *testing.T) {
	doc := config.MustParse(`{"seed": 3, "width": 40, "unknown": true}`)
	e, err := New(doc, Options{Engine: "fake"})
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]any{"seed": float64(3), "width": float64(40)}
	got, err := e.Config()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Config() = %v, expected %v", got, want)
	}

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "cfg.json")
	yamlPath := filepath.Join(dir, "cfg.yaml")
	if err := e.SaveConfig(jsonPath); err != nil {
		t.Fatal(err)
	}
	if err := e.SaveConfig(yamlPath); err != nil {
		t.Fatal(err)
	}

	var fromJSON map[string]any
	data, _ := os.ReadFile(jsonPath)
	if err := json.Unmarshal(data, &fromJSON); err != nil || !reflect.DeepEqual(fromJSON, want) {
		t.Errorf("saved JSON = %s (%v)", data, err)
	}
	var fromYAML map[string]any
	data, _ = os.ReadFile(yamlPath)
	if err := yaml.Unmarshal(data, &fromYAML); err != nil || fromYAML["width"] != 40 {
		t.Errorf("saved YAML = %s (%v)", data, err)
	}

	_, _ = e.Step(core.Macro("l>"))
	histPath := filepath.Join(dir, "episode.json.zst")
	if err := e.SaveHistory(histPath); err != nil {
		t.Fatal(err)
	}
	saved, err := storage.ReadHistory(histPath)
	if err != nil {
		t.Fatal(err)
	}
	live, _ := e.History()
	if string(saved) != string(live) {
		t.Errorf("history round trip: %s vs %s", saved, live)
	}
}

func TestRecord(t *testing.T) {
	e := newFakeEnv(t, 7, 0)
	if _, err := e.Reset(); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Step(core.Macro("l>lj")); err != nil {
		t.Fatal(err)
	}

	rec, err := e.Record(75)
	if err != nil {
		t.Fatalf("Record() failed: %v", err)
	}
	if rec.Engine != "fake" || rec.Seed != 7 || rec.Reward != 75 {
		t.Errorf("record identity = %+v", rec)
	}
	if rec.Steps != 4 || rec.Gold != 20 || rec.DungeonLevel != 2 || rec.EndReason != "terminal" {
		t.Errorf("record outcome = %+v", rec)
	}
	var hist map[string]any
	if err := json.Unmarshal(rec.History, &hist); err != nil || hist["keys"] != "l>lj" {
		t.Errorf("record history = %s (%v)", rec.History, err)
	}
}
