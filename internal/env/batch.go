package env

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/rogue-gym/internal/config"
	"github.com/vovakirdan/rogue-gym/internal/core"
	"github.com/vovakirdan/rogue-gym/internal/engine"
	"github.com/vovakirdan/rogue-gym/internal/obs"
	"github.com/vovakirdan/rogue-gym/internal/registry"
	"github.com/vovakirdan/rogue-gym/internal/storage"
)

// ErrClosed is returned by calls on a closed batch.
var ErrClosed = errors.New("env: batch is closed")

// InstanceError reports the failure of one batch instance.
type InstanceError struct {
	Index int
	Err   error
}

func (e *InstanceError) Error() string {
	return fmt.Sprintf("env: instance %d: %v", e.Index, e.Err)
}

func (e *InstanceError) Unwrap() error { return e.Err }

// BatchResult holds one entry per instance.
type BatchResult struct {
	States  []*engine.PlayerState
	Rewards []float64
	Dones   []bool
	Infos   []map[string]any
}

// BatchEnvironment is implemented by Batch and the batch decorators.
// StepKeys delivers keys[i] to instance i unless hold[i] is set; a held
// instance reports its cached state with zero reward. hold may be nil.
type BatchEnvironment interface {
	Reset() ([]*engine.PlayerState, error)
	StepKeys(keys []byte, hold []bool) (BatchResult, error)
	Seed(seeds []uint64) error
	Unwrap() *Batch
}

// StepString drives instance i with keys[i].
func StepString(b BatchEnvironment, keys string) (BatchResult, error) {
	n := b.Unwrap().Len()
	if len(keys) != n {
		return BatchResult{}, fmt.Errorf("%w: %d keys for %d instances", core.ErrInvalidAction, len(keys), n)
	}
	for i := 0; i < len(keys); i++ {
		if !core.IsKey(keys[i]) {
			return BatchResult{}, fmt.Errorf("%w: key %q for instance %d", core.ErrInvalidAction, keys[i], i)
		}
	}
	return b.StepKeys([]byte(keys), nil)
}

// StepActions drives instance i with actions[i].
func StepActions(b BatchEnvironment, actions []core.Action) (BatchResult, error) {
	n := b.Unwrap().Len()
	if len(actions) != n {
		return BatchResult{}, fmt.Errorf("%w: %d actions for %d instances", core.ErrInvalidAction, len(actions), n)
	}
	keys := make([]byte, n)
	for i, a := range actions {
		k, err := a.Key()
		if err != nil {
			return BatchResult{}, fmt.Errorf("instance %d: %w", i, err)
		}
		keys[i] = k
	}
	return b.StepKeys(keys, nil)
}

// BatchOptions configures a batch.
type BatchOptions struct {
	Engine   string
	MaxSteps int
	Policy   obs.Policy
	// Workers is the number of goroutines; instances are spread over
	// them round-robin. Zero means one goroutine per instance.
	Workers int
	Logger  *log.Logger
}

type opcode int

const (
	opStep opcode = iota
	opReset
	opSeed
	opConfig
	opHistory
	opRecord
)

// outcome is one instance's reply to a job.
type outcome struct {
	state  *engine.PlayerState
	reward float64
	done   bool
	data   []byte
	record storage.Episode
	err    error
}

// job is broadcast to every worker. Workers read and write only the
// indices of the instances they own.
type job struct {
	op    opcode
	keys  []byte
	hold  []bool
	seeds []uint64
	// rewards are the caller's episode totals for opRecord.
	rewards []float64
	engine  string
	out     []outcome
	wg      *sync.WaitGroup
}

type worker struct {
	owned []int
	jobs  chan job
}

// Batch steps N independent engines as one unit. Each instance belongs
// to exactly one worker goroutine for its whole life; the caller's
// goroutine only exchanges jobs and outcomes with them. Batch methods
// must not be called concurrently.
type Batch struct {
	opts    BatchOptions
	n       int
	symbols []int
	screens [][2]int
	states  []*engine.PlayerState
	dones   []bool
	workers []*worker
	exited  sync.WaitGroup
	closed  bool
	logger  *log.Logger
}

// NewBatch constructs one engine per document and starts the workers.
// The workers run until Close, so callers must Close every Batch.
func NewBatch(docs []*config.Document, opts BatchOptions) (*Batch, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: batch needs at least one instance", core.ErrInvalidConfiguration)
	}
	if opts.MaxSteps < 0 {
		return nil, fmt.Errorf("%w: negative max steps %d", core.ErrInvalidConfiguration, opts.MaxSteps)
	}
	if opts.Engine == "" {
		opts.Engine = DefaultEngine
	}
	if opts.MaxSteps == 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	n := len(docs)
	if opts.Workers <= 0 || opts.Workers > n {
		opts.Workers = n
	}

	episodes := make([]*episode, n)
	b := &Batch{
		opts:    opts,
		n:       n,
		symbols: make([]int, n),
		screens: make([][2]int, n),
		states:  make([]*engine.PlayerState, n),
		dones:   make([]bool, n),
		logger:  opts.Logger,
	}
	for i, doc := range docs {
		h, err := registry.Create(opts.Engine, doc, opts.MaxSteps)
		if err != nil {
			return nil, &InstanceError{Index: i, Err: err}
		}
		episodes[i] = newEpisode(h, opts.MaxSteps)
		b.states[i] = episodes[i].state
		b.symbols[i] = h.SymbolCount()
		hh, ww := h.ScreenSize()
		b.screens[i] = [2]int{hh, ww}
	}

	b.workers = make([]*worker, opts.Workers)
	for w := range b.workers {
		b.workers[w] = &worker{jobs: make(chan job)}
	}
	for i := range n {
		w := b.workers[i%opts.Workers]
		w.owned = append(w.owned, i)
	}
	for _, w := range b.workers {
		mine := make(map[int]*episode, len(w.owned))
		for _, i := range w.owned {
			mine[i] = episodes[i]
		}
		b.exited.Add(1)
		go b.run(w, mine)
	}

	b.logger.Debug("batch created", "engine", opts.Engine, "instances", n, "workers", opts.Workers)
	return b, nil
}

// run is the worker loop.
func (b *Batch) run(w *worker, mine map[int]*episode) {
	defer b.exited.Done()
	for j := range w.jobs {
		for _, i := range w.owned {
			j.out[i] = serve(mine[i], j, i)
		}
		j.wg.Done()
	}
}

func serve(ep *episode, j job, i int) outcome {
	switch j.op {
	case opStep:
		if j.hold != nil && j.hold[i] {
			return outcome{state: ep.state, done: ep.done}
		}
		reward, _, err := ep.step(j.keys[i : i+1])
		return outcome{state: ep.state, reward: reward, done: ep.done, err: err}
	case opReset:
		err := ep.reset()
		return outcome{state: ep.state, err: err}
	case opSeed:
		ep.handle.SetSeed(j.seeds[i])
		return outcome{state: ep.state, done: ep.done}
	case opConfig:
		data, err := ep.handle.DumpConfig()
		return outcome{state: ep.state, done: ep.done, data: data, err: err}
	case opHistory:
		data, err := ep.handle.DumpHistory()
		return outcome{state: ep.state, done: ep.done, data: data, err: err}
	case opRecord:
		rec, err := ep.record(j.engine, j.rewards[i])
		return outcome{state: ep.state, done: ep.done, record: rec, err: err}
	default:
		return outcome{state: ep.state, done: ep.done, err: fmt.Errorf("env: unknown op %d", j.op)}
	}
}

// dispatch sends j to every worker and waits for all replies. Cached
// states are refreshed from every outcome; the first failing index, if
// any, is reported.
func (b *Batch) dispatch(j job) ([]outcome, error) {
	if b.closed {
		return nil, ErrClosed
	}
	var wg sync.WaitGroup
	j.out = make([]outcome, b.n)
	j.wg = &wg
	wg.Add(len(b.workers))
	for _, w := range b.workers {
		w.jobs <- j
	}
	wg.Wait()

	var first error
	for i, o := range j.out {
		if o.state != nil {
			b.states[i] = o.state
		}
		b.dones[i] = o.done
		if o.err != nil && first == nil {
			first = &InstanceError{Index: i, Err: o.err}
		}
	}
	return j.out, first
}

// Len returns the number of instances.
func (b *Batch) Len() int { return b.n }

// Reset restarts every instance together.
func (b *Batch) Reset() ([]*engine.PlayerState, error) {
	if _, err := b.dispatch(job{op: opReset}); err != nil {
		return nil, err
	}
	b.logger.Debug("batch reset", "instances", b.n)
	return b.States(), nil
}

// StepKeys implements BatchEnvironment.
func (b *Batch) StepKeys(keys []byte, hold []bool) (BatchResult, error) {
	if len(keys) != b.n {
		return BatchResult{}, fmt.Errorf("%w: %d keys for %d instances", core.ErrInvalidAction, len(keys), b.n)
	}
	if hold != nil && len(hold) != b.n {
		return BatchResult{}, fmt.Errorf("%w: hold mask has %d entries for %d instances", core.ErrInvalidAction, len(hold), b.n)
	}
	for i, k := range keys {
		if held := hold != nil && hold[i]; !held && !core.IsKey(k) {
			return BatchResult{}, &InstanceError{Index: i, Err: fmt.Errorf("%w: key %q", core.ErrInvalidAction, k)}
		}
	}
	out, err := b.dispatch(job{op: opStep, keys: keys, hold: hold})
	if err != nil {
		return BatchResult{}, err
	}

	r := BatchResult{
		States:  make([]*engine.PlayerState, b.n),
		Rewards: make([]float64, b.n),
		Dones:   make([]bool, b.n),
		Infos:   make([]map[string]any, b.n),
	}
	for i, o := range out {
		r.States[i] = o.state
		r.Rewards[i] = o.reward
		r.Dones[i] = o.done
		r.Infos[i] = map[string]any{}
	}
	return r, nil
}

// StepString drives instance i with keys[i].
func (b *Batch) StepString(keys string) (BatchResult, error) { return StepString(b, keys) }

// Step drives instance i with actions[i].
func (b *Batch) Step(actions []core.Action) (BatchResult, error) { return StepActions(b, actions) }

// Seed stores one seed per instance, effective at the next Reset.
func (b *Batch) Seed(seeds []uint64) error {
	if len(seeds) != b.n {
		return fmt.Errorf("%w: %d seeds for %d instances", core.ErrInvalidConfiguration, len(seeds), b.n)
	}
	_, err := b.dispatch(job{op: opSeed, seeds: append([]uint64(nil), seeds...)})
	return err
}

// Unwrap returns b.
func (b *Batch) Unwrap() *Batch { return b }

// States returns the cached state of every instance.
func (b *Batch) States() []*engine.PlayerState {
	return append([]*engine.PlayerState(nil), b.states...)
}

// Dones returns the done flag of every instance.
func (b *Batch) Dones() []bool { return append([]bool(nil), b.dones...) }

// SymbolCounts returns each instance's symbol count.
func (b *Batch) SymbolCounts() []int { return append([]int(nil), b.symbols...) }

// ScreenSizes returns each instance's (rows, columns).
func (b *Batch) ScreenSizes() [][2]int { return append([][2]int(nil), b.screens...) }

// Observe encodes every cached state with the batch policy.
func (b *Batch) Observe() ([]*obs.Tensor, error) {
	out := make([]*obs.Tensor, b.n)
	for i, s := range b.states {
		t, err := obs.Encode(s, b.opts.Policy)
		if err != nil {
			return nil, &InstanceError{Index: i, Err: err}
		}
		out[i] = t
	}
	return out, nil
}

// Configs returns each instance's recognized configuration keys as JSON.
func (b *Batch) Configs() ([][]byte, error) {
	return b.collect(opConfig)
}

// Histories returns each instance's replayable history.
func (b *Batch) Histories() ([][]byte, error) {
	return b.collect(opHistory)
}

// Records builds the store entry of every instance's running episode.
// rewards holds the caller's accumulated reward per instance.
func (b *Batch) Records(rewards []float64) ([]storage.Episode, error) {
	if len(rewards) != b.n {
		return nil, fmt.Errorf("%w: %d rewards for %d instances", core.ErrInvalidConfiguration, len(rewards), b.n)
	}
	out, err := b.dispatch(job{op: opRecord, rewards: rewards, engine: b.opts.Engine})
	if err != nil {
		return nil, err
	}
	recs := make([]storage.Episode, b.n)
	for i, o := range out {
		recs[i] = o.record
	}
	return recs, nil
}

func (b *Batch) collect(op opcode) ([][]byte, error) {
	out, err := b.dispatch(job{op: op})
	if err != nil {
		return nil, err
	}
	data := make([][]byte, b.n)
	for i, o := range out {
		data[i] = o.data
	}
	return data, nil
}

// Close stops the workers. Further calls return ErrClosed.
func (b *Batch) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	for _, w := range b.workers {
		close(w.jobs)
	}
	b.exited.Wait()
	b.logger.Debug("batch closed", "instances", b.n)
	return nil
}
