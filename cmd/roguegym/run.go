package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/rogue-gym/internal/config"
	"github.com/vovakirdan/rogue-gym/internal/core"
	"github.com/vovakirdan/rogue-gym/internal/env"
	"github.com/vovakirdan/rogue-gym/internal/obs"
	"github.com/vovakirdan/rogue-gym/internal/storage"
)

var (
	flagRunConfig string
	flagEnvs      int
	flagEpisodes  int
	flagWorkers   int
	flagRunSteps  int
	flagOutDir    string
	flagNoSave    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Roll out a batch of environments with a random policy",
	Long: `Run a batch of environments headlessly. Every instance picks
uniformly random actions from the vocabulary until its episode ends.
Reward shaping and the observation policy come from the run
configuration (see configs/run.yaml).

Each finished episode is saved to the episode database unless --no-save
is given; --out also writes every history as a zstd file.

Examples:
  roguegym run
  roguegym run --envs 32 --workers 4 --episodes 10
  roguegym run --run-config ./configs/run.yaml --out ./histories`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&flagRunConfig, "run-config", "", "Path to run config YAML")
	runCmd.Flags().IntVar(&flagEnvs, "envs", 0, "Number of environments (overrides run config)")
	runCmd.Flags().IntVar(&flagEpisodes, "episodes", 0, "Episodes per environment (overrides run config)")
	runCmd.Flags().IntVar(&flagWorkers, "workers", 0, "Worker goroutines (0 = one per environment)")
	runCmd.Flags().IntVar(&flagRunSteps, "max-steps", 0, "Step limit per episode (overrides run config)")
	runCmd.Flags().StringVar(&flagOutDir, "out", "", "Directory for zstd history files")
	runCmd.Flags().BoolVar(&flagNoSave, "no-save", false, "Do not save episodes to the database")
}

// loadRunConfig merges the run config file with command line overrides.
func loadRunConfig() (config.RunConfig, error) {
	rc, err := config.LoadRun(flagRunConfig)
	if err != nil {
		return rc, err
	}
	if flagEnvs > 0 {
		rc.Envs = flagEnvs
		if len(rc.Seeds) != rc.Envs {
			rc.Seeds = nil
		}
	}
	if flagEpisodes > 0 {
		rc.Episodes = flagEpisodes
	}
	if flagRunSteps > 0 {
		rc.MaxSteps = flagRunSteps
	}
	if flagConfig != "" {
		doc, err := config.LoadFile(flagConfig)
		if err != nil {
			return rc, err
		}
		if rc.Game, err = doc.Map(); err != nil {
			return rc, err
		}
	}
	return rc, nil
}

// batchSummary aggregates one round of episodes.
type batchSummary struct {
	totalReward float64
	bestReward  float64
	maxLevel    int
	steps       int
}

func (s *batchSummary) add(rec storage.Episode) {
	s.totalReward += rec.Reward
	s.bestReward = max(s.bestReward, rec.Reward)
	s.maxLevel = max(s.maxLevel, rec.DungeonLevel)
	s.steps += rec.Steps
}

func runRun(_ *cobra.Command, _ []string) error {
	rc, err := loadRunConfig()
	if err != nil {
		return err
	}
	docs, err := rc.Documents(flagSeed)
	if err != nil {
		return err
	}
	policy, err := obs.ParsePolicy(rc.Image)
	if err != nil {
		return err
	}

	batch, err := env.NewBatch(docs, env.BatchOptions{
		Engine:   rc.Engine,
		MaxSteps: rc.MaxSteps,
		Policy:   policy,
		Workers:  flagWorkers,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	defer batch.Close()

	var be env.BatchEnvironment = batch
	if rc.Shaping.StairBonus > 0 {
		be = env.NewBatchStairBonus(be, rc.Shaping.StairBonus)
	}
	if rc.Shaping.FloorLimit > 0 {
		be = env.NewBatchFloorLimit(be, rc.Shaping.FloorLimit)
	}

	seeds := make([]uint64, len(docs))
	for i, d := range docs {
		seeds[i], _ = d.Seed()
	}
	var store *storage.Store
	if !flagNoSave {
		if store = openStore(); store != nil {
			defer store.Close()
		}
	}
	if flagOutDir != "" {
		if err := os.MkdirAll(flagOutDir, 0o755); err != nil {
			return fmt.Errorf("cannot create output directory: %w", err)
		}
	}

	tensors, err := batch.Observe()
	if err != nil {
		return err
	}
	logger.Info("starting rollout",
		"engine", rc.Engine, "envs", len(docs), "episodes", rc.Episodes,
		"max_steps", rc.MaxSteps, "policy", policy.String(), "obs_shape", tensors[0].Shape())

	rng := rand.New(rand.NewSource(int64(seeds[0])))
	start := time.Now()
	for round := range rc.Episodes {
		if round > 0 {
			for i := range seeds {
				seeds[i] += uint64(len(seeds))
			}
			if err := be.Seed(seeds); err != nil {
				return err
			}
		}
		recs, err := rollout(be, batch, rng)
		if err != nil {
			return err
		}

		var sum batchSummary
		for i, rec := range recs {
			sum.add(rec)
			if err := persist(store, rec, round, i); err != nil {
				return err
			}
		}
		logger.Info("round finished",
			"round", round+1,
			"mean_reward", sum.totalReward/float64(len(recs)),
			"best_reward", sum.bestReward,
			"max_level", sum.maxLevel,
			"steps", sum.steps)
	}
	logger.Info("rollout finished", "took", time.Since(start).Round(time.Millisecond))
	return nil
}

// rollout plays one episode on every instance with uniformly random
// actions and returns the finished records.
func rollout(be env.BatchEnvironment, batch *env.Batch, rng *rand.Rand) ([]storage.Episode, error) {
	if _, err := be.Reset(); err != nil {
		return nil, err
	}
	n := batch.Len()
	totals := make([]float64, n)
	dones := make([]bool, n)
	actions := make([]core.Action, n)
	for !allDone(dones) {
		for i := range actions {
			actions[i] = core.Action(rng.Intn(core.ActionCount))
		}
		res, err := env.StepActions(be, actions)
		if err != nil {
			return nil, err
		}
		for i := range totals {
			totals[i] += res.Rewards[i]
		}
		dones = res.Dones
	}
	return batch.Records(totals)
}

func allDone(dones []bool) bool {
	for _, d := range dones {
		if !d {
			return false
		}
	}
	return true
}

// persist saves rec to the store and, with --out, to a history file.
func persist(store *storage.Store, rec storage.Episode, round, index int) error {
	if flagOutDir != "" {
		path := filepath.Join(flagOutDir, fmt.Sprintf("episode-%03d-%03d-%d.json.zst", round, index, rec.Seed))
		if err := storage.WriteHistory(path, rec.History); err != nil {
			return err
		}
	}
	if store == nil {
		return nil
	}
	id, err := store.SaveEpisode(rec)
	if err != nil {
		logger.Warn("could not save episode", "error", err)
		return nil
	}
	logger.Debug("episode saved", "id", id, "seed", rec.Seed, "reward", rec.Reward, "reason", rec.EndReason)
	return nil
}
