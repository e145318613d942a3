package env

import (
	"errors"
	"testing"

	"github.com/vovakirdan/rogue-gym/internal/config"
	"github.com/vovakirdan/rogue-gym/internal/core"
	"github.com/vovakirdan/rogue-gym/internal/obs"
)

func seededDocs(seeds ...uint64) []*config.Document {
	docs := make([]*config.Document, len(seeds))
	for i, s := range seeds {
		docs[i] = config.Default().WithSeed(s)
	}
	return docs
}

func newFakeBatch(t *testing.T, workers int, seeds ...uint64) *Batch {
	t.Helper()
	b, err := NewBatch(seededDocs(seeds...), BatchOptions{Engine: "fake", Workers: workers})
	if err != nil {
		t.Fatalf("NewBatch() failed: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestBatchStepString(t *testing.T) {
	b := newFakeBatch(t, 0, 1, 2, 3)

	r, err := b.StepString("l.j")
	if err != nil {
		t.Fatal(err)
	}
	wantRewards := []float64{10, 0, 0}
	wantDones := []bool{false, false, true}
	for i := range 3 {
		if r.Rewards[i] != wantRewards[i] || r.Dones[i] != wantDones[i] {
			t.Errorf("instance %d: reward %v done %v", i, r.Rewards[i], r.Dones[i])
		}
		if r.Infos[i] == nil || len(r.Infos[i]) != 0 {
			t.Errorf("instance %d: info should be an empty map, got %v", i, r.Infos[i])
		}
	}
	terminal := r.States[2]

	r, err = b.Step([]core.Action{core.ActionRight, core.ActionRight, core.ActionRight})
	if err != nil {
		t.Fatal(err)
	}
	if r.Rewards[0] != 10 || r.Rewards[1] != 10 {
		t.Errorf("live instances rewards = %v", r.Rewards)
	}
	if r.Rewards[2] != 0 || !r.Dones[2] || r.States[2] != terminal {
		t.Error("a terminal instance must stay terminal with zero reward")
	}

	states, err := b.Reset()
	if err != nil {
		t.Fatal(err)
	}
	for i, s := range states {
		if s.Terminal || s.Steps != 0 || b.Dones()[i] {
			t.Errorf("instance %d not reset", i)
		}
	}
}

func TestBatchInvalidInput(t *testing.T) {
	b := newFakeBatch(t, 0, 1, 2)

	for _, keys := range []string{"l", "lll", "lx"} {
		if _, err := b.StepString(keys); !errors.Is(err, core.ErrInvalidAction) {
			t.Errorf("StepString(%q) error = %v, expected ErrInvalidAction", keys, err)
		}
	}
	if _, err := b.Step([]core.Action{core.ActionNoop, 77}); !errors.Is(err, core.ErrInvalidAction) {
		t.Errorf("Step with a bad index error = %v", err)
	}
	if _, err := b.StepKeys([]byte(".."), []bool{true}); err == nil {
		t.Error("short hold mask should fail")
	}
	if err := b.Seed([]uint64{1}); err == nil {
		t.Error("seed count mismatch should fail")
	}
}

func TestBatchStepKeysRejectsUnknownKey(t *testing.T) {
	b := newFakeBatch(t, 0, 1, 2)

	_, err := b.StepKeys([]byte{'x', 'l'}, nil)
	var ie *InstanceError
	if !errors.As(err, &ie) || ie.Index != 0 || !errors.Is(err, core.ErrInvalidAction) {
		t.Fatalf("StepKeys error = %v, expected ErrInvalidAction for instance 0", err)
	}
	for i, s := range b.States() {
		if s.Steps != 0 || b.Dones()[i] {
			t.Errorf("instance %d moved or ended after a rejected call", i)
		}
	}

	r, err := b.StepString("..")
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	for i := range 2 {
		if r.Dones[i] || r.States[i].Steps != 1 {
			t.Errorf("instance %d after retry: done %v steps %d", i, r.Dones[i], r.States[i].Steps)
		}
	}

	if _, err := b.StepKeys([]byte{'x', 'l'}, []bool{true, false}); err != nil {
		t.Errorf("a held instance's key should be ignored, got %v", err)
	}
	if _, err := b.StepKeys([]byte(".."), []bool{true}); !errors.Is(err, core.ErrInvalidAction) {
		t.Errorf("short hold mask error = %v, expected ErrInvalidAction", err)
	}
}

func TestBatchInstanceError(t *testing.T) {
	b := newFakeBatch(t, 2, 1, fakeFailSeed, 3, fakeFailSeed)

	_, err := b.StepString("....")
	var ie *InstanceError
	if !errors.As(err, &ie) {
		t.Fatalf("error = %v, expected *InstanceError", err)
	}
	if ie.Index != 1 || !errors.Is(err, errFakeEngine) {
		t.Errorf("InstanceError = %v, expected index 1 wrapping the engine error", ie)
	}
}

func TestBatchSeedAppliesOnReset(t *testing.T) {
	b := newFakeBatch(t, 0, 1, 2)
	if err := b.Seed([]uint64{7, 8}); err != nil {
		t.Fatal(err)
	}
	if b.States()[0].Dungeon[0] != "seed=1   " {
		t.Error("seeding must not touch running episodes")
	}
	states, _ := b.Reset()
	if states[0].Dungeon[0] != "seed=7   " || states[1].Dungeon[0] != "seed=8   " {
		t.Errorf("after reset: %q %q", states[0].Dungeon[0], states[1].Dungeon[0])
	}
}

func TestBatchWorkerCountInvariant(t *testing.T) {
	seeds := []uint64{1, 2, 3, 4, 5}
	wide := newFakeBatch(t, 0, seeds...)
	narrow := newFakeBatch(t, 2, seeds...)

	for _, keys := range []string{"l>.jl", ".....", "lllll", ">>>>>"} {
		a, errA := wide.StepString(keys)
		b, errB := narrow.StepString(keys)
		if errA != nil || errB != nil {
			t.Fatalf("step failed: %v %v", errA, errB)
		}
		for i := range seeds {
			if !a.States[i].Equal(b.States[i]) || a.Rewards[i] != b.Rewards[i] || a.Dones[i] != b.Dones[i] {
				t.Errorf("keys %q instance %d differs between worker layouts", keys, i)
			}
		}
	}
}

func TestBatchObserveAndConfigs(t *testing.T) {
	b, err := NewBatch(seededDocs(1, 2), BatchOptions{Engine: "fake", Policy: obs.Policy{Dungeon: obs.Gray, History: true}})
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	tensors, err := b.Observe()
	if err != nil {
		t.Fatal(err)
	}
	if len(tensors) != 2 || tensors[0].C != 2 {
		t.Errorf("Observe() returned %d tensors", len(tensors))
	}

	cfgs, err := b.Configs()
	if err != nil {
		t.Fatal(err)
	}
	if string(cfgs[0]) != `{"seed":1}` || string(cfgs[1]) != `{"seed":2}` {
		t.Errorf("Configs() = %s, %s", cfgs[0], cfgs[1])
	}
	if h, err := b.Histories(); err != nil || len(h) != 2 {
		t.Errorf("Histories() = %v, %v", h, err)
	}
	if b.SymbolCounts()[0] != 17 || b.ScreenSizes()[1] != [2]int{2, 9} {
		t.Error("wrong instance metadata")
	}
}

func TestBatchClose(t *testing.T) {
	b, err := NewBatch(seededDocs(1), BatchOptions{Engine: "fake"})
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
	if _, err := b.StepString("."); !errors.Is(err, ErrClosed) {
		t.Errorf("step after close error = %v, expected ErrClosed", err)
	}
}

func TestNewBatchErrors(t *testing.T) {
	if _, err := NewBatch(nil, BatchOptions{Engine: "fake"}); !errors.Is(err, core.ErrInvalidConfiguration) {
		t.Errorf("empty batch error = %v", err)
	}
	if _, err := NewBatch(seededDocs(1), BatchOptions{Engine: "fake", MaxSteps: -1}); !errors.Is(err, core.ErrInvalidConfiguration) {
		t.Errorf("negative max steps error = %v", err)
	}
	_, err := NewBatch(seededDocs(1, 2), BatchOptions{Engine: "missing"})
	var ie *InstanceError
	if !errors.As(err, &ie) || ie.Index != 0 {
		t.Errorf("unknown engine error = %v", err)
	}
}

func TestBatchShaping(t *testing.T) {
	b := newFakeBatch(t, 0, 1, 2)
	shaped := NewBatchStairBonus(NewBatchFloorLimit(b, 2), 50)

	r, err := shaped.StepString(">l")
	if err != nil {
		t.Fatal(err)
	}
	if r.Rewards[0] != 50 || !r.Dones[0] || r.Rewards[1] != 10 || r.Dones[1] {
		t.Errorf("first step: rewards %v dones %v", r.Rewards, r.Dones)
	}
	held := r.States[0]

	r, err = shaped.Step([]core.Action{core.ActionRight, core.ActionDescend})
	if err != nil {
		t.Fatal(err)
	}
	if r.Rewards[0] != 0 || !r.Dones[0] || r.States[0] != held {
		t.Errorf("held instance: reward %v done %v", r.Rewards[0], r.Dones[0])
	}
	if r.Rewards[1] != 50 || !r.Dones[1] {
		t.Errorf("second instance: reward %v done %v", r.Rewards[1], r.Dones[1])
	}
	if b.States()[0].Status.Gold != 0 {
		t.Error("held instance's engine should not have been stepped")
	}

	if _, err := shaped.Reset(); err != nil {
		t.Fatal(err)
	}
	r, _ = shaped.StepString(">>")
	if r.Rewards[0] != 50 || r.Rewards[1] != 50 {
		t.Errorf("after reset rewards %v", r.Rewards)
	}
	if err := shaped.Seed([]uint64{3, 4}); err != nil {
		t.Error(err)
	}
}

func TestBatchRecords(t *testing.T) {
	b := newFakeBatch(t, 1, 1, 2)
	if _, err := b.StepString("lj"); err != nil {
		t.Fatal(err)
	}

	recs, err := b.Records([]float64{10, 0})
	if err != nil {
		t.Fatalf("Records() failed: %v", err)
	}
	if recs[0].Seed != 1 || recs[0].Gold != 10 || recs[0].Reward != 10 || recs[0].EndReason != "" {
		t.Errorf("record 0 = %+v", recs[0])
	}
	if recs[1].Seed != 2 || recs[1].Steps != 1 || recs[1].EndReason != "terminal" || recs[1].Engine != "fake" {
		t.Errorf("record 1 = %+v", recs[1])
	}
	if len(recs[1].History) == 0 {
		t.Error("record should carry the history")
	}

	if _, err := b.Records([]float64{1}); !errors.Is(err, core.ErrInvalidConfiguration) {
		t.Errorf("short rewards error = %v", err)
	}
}
