package env

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/rogue-gym/internal/core"
	"github.com/vovakirdan/rogue-gym/internal/engine"
	"github.com/vovakirdan/rogue-gym/internal/storage"
)

// episode drives one engine through the step protocol. Both Env and the
// batch workers are built on it.
type episode struct {
	handle   engine.Handle
	maxSteps int
	state    *engine.PlayerState
	steps    int
	done     bool
}

func newEpisode(h engine.Handle, maxSteps int) *episode {
	return &episode{handle: h, maxSteps: maxSteps, state: h.PreviousResult()}
}

// step issues keys in order until the engine reports terminal. A done
// episode ignores the keys and yields zero reward. Keys outside the
// vocabulary fail the call before any reaches the engine and leave the
// episode running.
func (ep *episode) step(keys []byte) (reward float64, consumed int, err error) {
	if ep.done {
		return 0, 0, nil
	}
	for _, k := range keys {
		if !core.IsKey(k) {
			return 0, 0, fmt.Errorf("%w: key %q", core.ErrInvalidAction, k)
		}
	}
	before := ep.state.Status.Gold
	terminal := false
	for _, k := range keys {
		terminal, err = ep.handle.React(k)
		if err != nil {
			err = fmt.Errorf("env: engine rejected key %q: %w", k, err)
			if errors.Is(err, core.ErrInvalidAction) {
				ep.steps += consumed
				ep.state = ep.handle.PreviousResult()
				return 0, consumed, err
			}
			ep.done = true
			return 0, consumed, err
		}
		consumed++
		if terminal {
			break
		}
	}
	ep.steps += consumed
	ep.state = ep.handle.PreviousResult()
	ep.done = terminal || ep.state.Terminal || (ep.maxSteps > 0 && ep.steps >= ep.maxSteps)
	return float64(ep.state.Status.Gold - before), consumed, nil
}

func (ep *episode) reset() error {
	if err := ep.handle.Reset(); err != nil {
		return fmt.Errorf("env: cannot reset engine: %w", err)
	}
	ep.state = ep.handle.PreviousResult()
	ep.steps = 0
	ep.done = false
	return nil
}

// endReason names why the episode ended.
func (ep *episode) endReason() string {
	if !ep.done {
		return ""
	}
	if r, ok := ep.handle.(engine.EndReasoner); ok && r.EndReason() != "" {
		return r.EndReason()
	}
	if ep.maxSteps > 0 && ep.steps >= ep.maxSteps {
		return "max_steps"
	}
	return "terminal"
}

// seed returns the running episode's seed when the engine exposes it.
func (ep *episode) seed() (uint64, bool) {
	if s, ok := ep.handle.(interface{ Seed() uint64 }); ok {
		return s.Seed(), true
	}
	return 0, false
}

func (ep *episode) history() ([]byte, error) {
	data, err := ep.handle.DumpHistory()
	if err != nil {
		return nil, fmt.Errorf("env: cannot dump history: %w", err)
	}
	return data, nil
}

// record builds the store entry for the episode.
func (ep *episode) record(engineID string, reward float64) (storage.Episode, error) {
	hist, err := ep.history()
	if err != nil {
		return storage.Episode{}, err
	}
	seed, _ := ep.seed()
	return storage.Episode{
		Engine:       engineID,
		Seed:         seed,
		Reward:       reward,
		Steps:        ep.steps,
		DungeonLevel: ep.state.Status.DungeonLevel,
		Gold:         ep.state.Status.Gold,
		EndReason:    ep.endReason(),
		History:      hist,
	}, nil
}
