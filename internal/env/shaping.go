package env

import (
	"github.com/vovakirdan/rogue-gym/internal/core"
	"github.com/vovakirdan/rogue-gym/internal/engine"
)

// StairBonus adds a bonus to the reward of every step that reaches a
// deeper dungeon level than any seen since the last reset.
type StairBonus struct {
	inner Environment
	bonus float64
	level int
}

// NewStairBonus wraps inner.
func NewStairBonus(inner Environment, bonus float64) *StairBonus {
	return &StairBonus{
		inner: inner,
		bonus: bonus,
		level: inner.Unwrap().State().Status.DungeonLevel,
	}
}

func (s *StairBonus) Reset() (*engine.PlayerState, error) {
	st, err := s.inner.Reset()
	if err != nil {
		return nil, err
	}
	s.level = st.Status.DungeonLevel
	return st, nil
}

func (s *StairBonus) Step(in core.Input) (StepResult, error) {
	r, err := s.inner.Step(in)
	if err != nil {
		return r, err
	}
	if lvl := r.State.Status.DungeonLevel; lvl > s.level {
		r.Reward += s.bonus
		s.level = lvl
	}
	return r, nil
}

func (s *StairBonus) Seed(seed uint64) { s.inner.Seed(seed) }

func (s *StairBonus) Unwrap() *Env { return s.inner.Unwrap() }

// FloorLimit ends the episode once the dungeon level reaches target.
// The termination sticks until Reset: later steps return the cached
// state with zero reward and leave the engine untouched.
type FloorLimit struct {
	inner   Environment
	target  int
	reached *engine.PlayerState
}

// NewFloorLimit wraps inner.
func NewFloorLimit(inner Environment, target int) *FloorLimit {
	return &FloorLimit{inner: inner, target: target}
}

func (f *FloorLimit) Reset() (*engine.PlayerState, error) {
	f.reached = nil
	return f.inner.Reset()
}

func (f *FloorLimit) Step(in core.Input) (StepResult, error) {
	if f.reached != nil {
		if _, err := keysOf(in); err != nil {
			return StepResult{}, err
		}
		return StepResult{
			State: f.reached,
			Done:  true,
			Info:  map[string]any{"steps": f.inner.Unwrap().Steps(), "keys_consumed": 0},
		}, nil
	}
	r, err := f.inner.Step(in)
	if err != nil {
		return r, err
	}
	if r.State.Status.DungeonLevel >= f.target {
		r.Done = true
		f.reached = r.State
	}
	return r, nil
}

func (f *FloorLimit) Seed(seed uint64) { f.inner.Seed(seed) }

func (f *FloorLimit) Unwrap() *Env { return f.inner.Unwrap() }

// BatchStairBonus applies StairBonus to every instance of a batch.
type BatchStairBonus struct {
	inner  BatchEnvironment
	bonus  float64
	levels []int
}

// NewBatchStairBonus wraps inner.
func NewBatchStairBonus(inner BatchEnvironment, bonus float64) *BatchStairBonus {
	states := inner.Unwrap().States()
	levels := make([]int, len(states))
	for i, s := range states {
		levels[i] = s.Status.DungeonLevel
	}
	return &BatchStairBonus{inner: inner, bonus: bonus, levels: levels}
}

func (s *BatchStairBonus) Reset() ([]*engine.PlayerState, error) {
	states, err := s.inner.Reset()
	if err != nil {
		return nil, err
	}
	for i, st := range states {
		s.levels[i] = st.Status.DungeonLevel
	}
	return states, nil
}

func (s *BatchStairBonus) StepKeys(keys []byte, hold []bool) (BatchResult, error) {
	r, err := s.inner.StepKeys(keys, hold)
	if err != nil {
		return r, err
	}
	for i, st := range r.States {
		if lvl := st.Status.DungeonLevel; lvl > s.levels[i] {
			r.Rewards[i] += s.bonus
			s.levels[i] = lvl
		}
	}
	return r, nil
}

func (s *BatchStairBonus) StepString(keys string) (BatchResult, error) { return StepString(s, keys) }

func (s *BatchStairBonus) Step(actions []core.Action) (BatchResult, error) {
	return StepActions(s, actions)
}

func (s *BatchStairBonus) Seed(seeds []uint64) error { return s.inner.Seed(seeds) }

func (s *BatchStairBonus) Unwrap() *Batch { return s.inner.Unwrap() }

// BatchFloorLimit applies FloorLimit to every instance of a batch. An
// instance that reached the target is held: its keystroke is not
// delivered until the batch is reset.
type BatchFloorLimit struct {
	inner   BatchEnvironment
	target  int
	reached []*engine.PlayerState
}

// NewBatchFloorLimit wraps inner.
func NewBatchFloorLimit(inner BatchEnvironment, target int) *BatchFloorLimit {
	return &BatchFloorLimit{
		inner:   inner,
		target:  target,
		reached: make([]*engine.PlayerState, inner.Unwrap().Len()),
	}
}

func (f *BatchFloorLimit) Reset() ([]*engine.PlayerState, error) {
	clear(f.reached)
	return f.inner.Reset()
}

func (f *BatchFloorLimit) StepKeys(keys []byte, hold []bool) (BatchResult, error) {
	merged := make([]bool, len(f.reached))
	for i := range merged {
		merged[i] = f.reached[i] != nil || (i < len(hold) && hold[i])
	}
	r, err := f.inner.StepKeys(keys, merged)
	if err != nil {
		return r, err
	}
	for i, st := range r.States {
		if f.reached[i] != nil {
			r.States[i] = f.reached[i]
			r.Rewards[i] = 0
			r.Dones[i] = true
			continue
		}
		if st.Status.DungeonLevel >= f.target {
			r.Dones[i] = true
			f.reached[i] = st
		}
	}
	return r, nil
}

func (f *BatchFloorLimit) StepString(keys string) (BatchResult, error) { return StepString(f, keys) }

func (f *BatchFloorLimit) Step(actions []core.Action) (BatchResult, error) {
	return StepActions(f, actions)
}

func (f *BatchFloorLimit) Seed(seeds []uint64) error { return f.inner.Seed(seeds) }

func (f *BatchFloorLimit) Unwrap() *Batch { return f.inner.Unwrap() }
