package env

import (
	"testing"

	"github.com/vovakirdan/rogue-gym/internal/core"
)

func TestStairBonus(t *testing.T) {
	e := NewStairBonus(newFakeEnv(t, 1, 0), 50)

	steps := []struct {
		in   core.Macro
		want float64
	}{
		{".", 0},
		{"l", 10},
		{">", 50},
		{".", 0},
		{">l", 60},
	}
	for i, s := range steps {
		r, err := e.Step(s.in)
		if err != nil {
			t.Fatal(err)
		}
		if r.Reward != s.want {
			t.Errorf("step %d (%q): reward %v, expected %v", i, s.in, r.Reward, s.want)
		}
	}

	if _, err := e.Reset(); err != nil {
		t.Fatal(err)
	}
	if r, _ := e.Step(core.ActionDescend); r.Reward != 50 {
		t.Errorf("bonus after reset = %v, expected 50", r.Reward)
	}
}

func TestFloorLimitSticky(t *testing.T) {
	inner := newFakeEnv(t, 1, 0)
	e := NewFloorLimit(inner, 2)

	r, _ := e.Step(core.ActionRight)
	if r.Done {
		t.Fatal("done before reaching the target floor")
	}
	r, _ = e.Step(core.ActionDescend)
	if !r.Done {
		t.Fatal("reaching floor 2 should end the episode")
	}
	reached := r.State
	reacts := fakeOf(inner).reacts

	for range 3 {
		r, err := e.Step(core.ActionRight)
		if err != nil {
			t.Fatal(err)
		}
		if !r.Done || r.Reward != 0 || r.State != reached {
			t.Errorf("after the limit: %+v", r)
		}
	}
	if fakeOf(inner).reacts != reacts {
		t.Error("held steps must not reach the engine")
	}
	if _, err := e.Step(core.Action(99)); err == nil {
		t.Error("invalid input should still be rejected")
	}

	if _, err := e.Reset(); err != nil {
		t.Fatal(err)
	}
	if r, _ := e.Step(core.ActionRight); r.Done || r.Reward != 10 {
		t.Errorf("after reset: %+v", r)
	}
}

func TestShapingCompositionOrder(t *testing.T) {
	chains := map[string]Environment{
		"bonus inside":  NewFloorLimit(NewStairBonus(newFakeEnv(t, 1, 0), 50), 2),
		"bonus outside": NewStairBonus(NewFloorLimit(newFakeEnv(t, 1, 0), 2), 50),
	}
	for name, e := range chains {
		t.Run(name, func(t *testing.T) {
			r, _ := e.Step(core.ActionNoop)
			if r.Reward != 0 || r.Done {
				t.Fatalf("no-op step: %+v", r)
			}
			r, _ = e.Step(core.ActionDescend)
			if r.Reward != 50 || !r.Done {
				t.Errorf("descending step: reward %v done %v, expected 50 true", r.Reward, r.Done)
			}
			r, _ = e.Step(core.ActionDescend)
			if r.Reward != 0 || !r.Done {
				t.Errorf("after the limit: reward %v done %v", r.Reward, r.Done)
			}
			if e.Unwrap() == nil {
				t.Error("Unwrap() returned nil")
			}
		})
	}
}
