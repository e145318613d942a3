package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/rogue-gym/internal/env"
	"github.com/vovakirdan/rogue-gym/internal/platform/tui"
)

var (
	flagDifficulty string
	flagEngine     string
	flagMaxSteps   int
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a dungeon in the terminal",
	Long: `Play the environment interactively. Every key is one environment
step, exactly as an agent would issue it. Finished episodes are saved to
the episode database.

Controls:
  h j k l / arrows  - Move
  y u b n           - Move diagonally
  .                 - Rest
  s                 - Search
  >                 - Descend the stairs
  r                 - New dungeon (after the episode ends)
  ?                 - Toggle help
  q / Ctrl+C        - Quit

Difficulty options:
  easy, normal, hard, peaceful

Examples:
  roguegym play
  roguegym play --seed 42
  roguegym play --difficulty hard --max-steps 2000
  roguegym play --config ./my-dungeon.yaml`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, peaceful")
	playCmd.Flags().StringVar(&flagEngine, "engine", env.DefaultEngine, "Engine to play")
	playCmd.Flags().IntVar(&flagMaxSteps, "max-steps", 10000, "Step limit per episode")
}

func runPlay(_ *cobra.Command, _ []string) error {
	doc, err := loadGame(flagDifficulty)
	if err != nil {
		return err
	}
	e, err := env.New(doc, env.Options{Engine: flagEngine, MaxSteps: flagMaxSteps, Logger: logger})
	if err != nil {
		return err
	}

	store := openStore()
	if store != nil {
		defer store.Close()
	}

	seed, _ := doc.Seed()
	logger.Debug("starting play", "engine", flagEngine, "seed", seed)
	return tui.Run(e, store, tui.WithLogger(logger))
}
