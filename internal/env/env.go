// Package env exposes engines as reinforcement-learning environments:
// a single environment, reward-shaping decorators and a batched
// environment that steps many instances in parallel.
package env

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/rogue-gym/internal/config"
	"github.com/vovakirdan/rogue-gym/internal/core"
	"github.com/vovakirdan/rogue-gym/internal/engine"
	"github.com/vovakirdan/rogue-gym/internal/obs"
	"github.com/vovakirdan/rogue-gym/internal/registry"
	"github.com/vovakirdan/rogue-gym/internal/storage"
)

const (
	// DefaultEngine is used when Options.Engine is empty.
	DefaultEngine = "rogue"
	// DefaultMaxSteps is used when Options.MaxSteps is zero.
	DefaultMaxSteps = 1000
)

// Phase is the lifecycle position of an environment.
type Phase int

const (
	PhaseConstructed Phase = iota
	PhaseStepping
	PhaseTerminal
)

func (p Phase) String() string {
	switch p {
	case PhaseStepping:
		return "stepping"
	case PhaseTerminal:
		return "terminal"
	default:
		return "constructed"
	}
}

// Environment is implemented by Env and by the shaping decorators.
type Environment interface {
	Reset() (*engine.PlayerState, error)
	Step(in core.Input) (StepResult, error)
	Seed(seed uint64)
	Unwrap() *Env
}

// StepResult is the outcome of one Step call.
type StepResult struct {
	State  *engine.PlayerState
	Reward float64
	Done   bool
	Info   map[string]any
}

// Observe encodes the result's state with policy p.
func (r StepResult) Observe(p obs.Policy) (*obs.Tensor, error) {
	return obs.Encode(r.State, p)
}

// Options configures an environment.
type Options struct {
	Engine   string
	MaxSteps int
	Policy   obs.Policy
	Logger   *log.Logger
}

func (o Options) withDefaults() Options {
	if o.Engine == "" {
		o.Engine = DefaultEngine
	}
	if o.MaxSteps == 0 {
		o.MaxSteps = DefaultMaxSteps
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}

// Env is a single environment. It is not safe for concurrent use.
type Env struct {
	opts    Options
	ep      *episode
	phase   Phase
	encoded *obs.Tensor
	logger  *log.Logger
}

// New constructs the engine named by opts.Engine from doc and caches its
// first state.
func New(doc *config.Document, opts Options) (*Env, error) {
	opts = opts.withDefaults()
	if opts.MaxSteps < 0 {
		return nil, fmt.Errorf("%w: negative max steps %d", core.ErrInvalidConfiguration, opts.MaxSteps)
	}
	h, err := registry.Create(opts.Engine, doc, opts.MaxSteps)
	if err != nil {
		return nil, err
	}
	e := &Env{
		opts:   opts,
		ep:     newEpisode(h, opts.MaxSteps),
		logger: opts.Logger,
	}
	hh, ww := h.ScreenSize()
	e.logger.Debug("environment created", "engine", opts.Engine, "max_steps", opts.MaxSteps, "screen", fmt.Sprintf("%dx%d", ww, hh))
	return e, nil
}

// Reset starts a new episode, applying any pending seed.
func (e *Env) Reset() (*engine.PlayerState, error) {
	if err := e.ep.reset(); err != nil {
		return nil, err
	}
	e.phase = PhaseStepping
	e.encoded = nil
	e.logger.Debug("environment reset")
	return e.ep.state, nil
}

// Step issues the keystrokes of in. Once the episode is over, Step
// returns the cached terminal state with zero reward until Reset.
func (e *Env) Step(in core.Input) (StepResult, error) {
	keys, err := keysOf(in)
	if err != nil {
		return StepResult{}, err
	}

	if e.phase == PhaseTerminal {
		return StepResult{State: e.ep.state, Done: true, Info: e.info(0)}, nil
	}

	reward, consumed, err := e.ep.step(keys)
	e.encoded = nil
	if err != nil {
		if e.ep.done {
			e.phase = PhaseTerminal
		}
		return StepResult{}, err
	}
	e.phase = PhaseStepping
	if e.ep.done {
		e.phase = PhaseTerminal
		e.logger.Debug("episode finished", "steps", e.ep.steps, "reason", e.ep.endReason(),
			"gold", e.ep.state.Status.Gold, "level", e.ep.state.Status.DungeonLevel)
	}
	return StepResult{State: e.ep.state, Reward: reward, Done: e.ep.done, Info: e.info(consumed)}, nil
}

func keysOf(in core.Input) ([]byte, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: nil input", core.ErrInvalidAction)
	}
	keys, err := in.Keys()
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		if !core.IsKey(k) {
			return nil, fmt.Errorf("%w: key %q", core.ErrInvalidAction, k)
		}
	}
	return keys, nil
}

func (e *Env) info(consumed int) map[string]any {
	return map[string]any{"steps": e.ep.steps, "keys_consumed": consumed}
}

// Seed stores a seed that takes effect at the next Reset.
func (e *Env) Seed(seed uint64) { e.ep.handle.SetSeed(seed) }

// Unwrap returns e.
func (e *Env) Unwrap() *Env { return e }

// Phase returns the lifecycle position.
func (e *Env) Phase() Phase { return e.phase }

// State returns the cached state.
func (e *Env) State() *engine.PlayerState { return e.ep.state }

// Done reports whether the running episode is over.
func (e *Env) Done() bool { return e.ep.done }

// Steps returns the keystrokes consumed in the running episode.
func (e *Env) Steps() int { return e.ep.steps }

// MaxSteps returns the step budget.
func (e *Env) MaxSteps() int { return e.opts.MaxSteps }

// EngineID returns the registry name of the engine.
func (e *Env) EngineID() string { return e.opts.Engine }

// EndReason names why the episode ended, or "" while it runs.
func (e *Env) EndReason() string { return e.ep.endReason() }

// EpisodeSeed returns the seed of the running episode when the engine
// exposes it.
func (e *Env) EpisodeSeed() (uint64, bool) { return e.ep.seed() }

// Dungeon returns the rows of the cached dungeon grid.
func (e *Env) Dungeon() []string {
	return append([]string(nil), e.ep.state.Dungeon...)
}

// ScreenSize returns (rows, columns).
func (e *Env) ScreenSize() (int, int) { return e.ep.handle.ScreenSize() }

// SymbolCount returns the engine's symbol count.
func (e *Env) SymbolCount() int { return e.ep.handle.SymbolCount() }

// Policy returns the observation policy.
func (e *Env) Policy() obs.Policy { return e.opts.Policy }

// ObservationShape returns (channels, height, width) under the env policy.
func (e *Env) ObservationShape() [3]int {
	h, w := e.ScreenSize()
	return [3]int{e.opts.Policy.Channels(e.SymbolCount()), h, w}
}

// Observe encodes the cached state with the env policy. The tensor is
// computed once per state.
func (e *Env) Observe() (*obs.Tensor, error) {
	if e.encoded == nil {
		t, err := obs.Encode(e.ep.state, e.opts.Policy)
		if err != nil {
			return nil, err
		}
		e.encoded = t
	}
	return e.encoded, nil
}

// Encode encodes any state with an explicit policy.
func (e *Env) Encode(state any, p obs.Policy) (*obs.Tensor, error) {
	return obs.Encode(state, p)
}

// Config returns the recognized configuration keys.
func (e *Env) Config() (map[string]any, error) {
	data, err := e.ep.handle.DumpConfig()
	if err != nil {
		return nil, fmt.Errorf("env: cannot dump config: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("env: cannot decode config: %w", err)
	}
	return m, nil
}

// SaveConfig writes the configuration as JSON, or YAML for .yaml/.yml.
func (e *Env) SaveConfig(path string) error {
	m, err := e.Config()
	if err != nil {
		return err
	}
	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(m)
	default:
		data, err = json.MarshalIndent(m, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("env: cannot encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("env: cannot write config: %w", err)
	}
	return nil
}

// History returns the engine's replayable log of the running episode.
func (e *Env) History() ([]byte, error) { return e.ep.history() }

// SaveHistory writes the history to path, zstd-compressed for .zst.
func (e *Env) SaveHistory(path string) error {
	data, err := e.History()
	if err != nil {
		return err
	}
	return storage.WriteHistory(path, data)
}

// Record builds the store entry for the running episode. totalReward is
// the caller's accumulated reward, which may include shaping bonuses.
func (e *Env) Record(totalReward float64) (storage.Episode, error) {
	return e.ep.record(e.opts.Engine, totalReward)
}
