// roguegym runs the deterministic roguelike environment: interactive
// play in the terminal, headless batched rollouts, replays of recorded
// episodes and remote play over SSH or websockets.
//
// Usage:
//
//	roguegym list                 - List registered engines
//	roguegym play                 - Play in the terminal
//	roguegym run                  - Headless batched rollout with a random policy
//	roguegym replay <file|id>     - Replay a history file or stored episode
//	roguegym serve                - Serve play over SSH and/or websockets
//	roguegym episodes             - Browse stored episodes
//	roguegym config dump|validate - Inspect game configurations
//
// Global flags:
//
//	--config <path>    - Game configuration (JSON or YAML)
//	--seed <value>     - Dungeon seed (0 keeps the configuration's seed)
//	--db <path>        - Episode database (default: ~/.roguegym/episodes.db)
//	--log-level <lvl>  - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	// Import engines to register them
	_ "github.com/vovakirdan/rogue-gym/internal/games/rogue"
)

const defaultDBPath = "~/.roguegym/episodes.db"

var (
	// Global flags
	flagConfig   string
	flagSeed     uint64
	flagDBPath   string
	flagLogLevel string

	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "roguegym",
	})
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "roguegym",
	Short: "Roguelike reinforcement learning environment",
	Long: `roguegym is a deterministic, seed-driven roguelike exposed as a
reinforcement learning environment.

Available commands:
  list      - Show registered engines
  play      - Play a dungeon in the terminal
  run       - Roll out a batch of environments with a random policy
  replay    - Replay a recorded episode
  serve     - Serve play over SSH and environments over websockets
  episodes  - Browse stored episodes
  config    - Dump or validate game configurations

Environment (also read from ./.env):
  ROGUEGYM_DB         - episode database path
  ROGUEGYM_LOG_LEVEL  - log level

Examples:
  roguegym play --seed 7
  roguegym run --envs 16 --episodes 4
  roguegym replay episode.json.zst
  roguegym serve --ssh :2222 --ws :8080`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to game config (JSON or YAML)")
	rootCmd.PersistentFlags().Uint64Var(&flagSeed, "seed", 0, "Dungeon seed (0 = keep config seed)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", defaultDBPath, "Path to episode database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(episodesCmd)
	rootCmd.AddCommand(configCmd)
}

// setup loads .env and applies environment overrides for flags the user
// did not set explicitly.
func setup(cmd *cobra.Command, _ []string) error {
	for _, envFile := range []string{".env", "../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	flags := cmd.Flags()
	if v := os.Getenv("ROGUEGYM_DB"); v != "" && !flags.Changed("db") {
		flagDBPath = v
	}
	if v := os.Getenv("ROGUEGYM_LOG_LEVEL"); v != "" && !flags.Changed("log-level") {
		flagLogLevel = v
	}

	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", flagLogLevel, err)
	}
	logger.SetLevel(level)
	return nil
}
