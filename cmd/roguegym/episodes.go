package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/rogue-gym/internal/env"
	"github.com/vovakirdan/rogue-gym/internal/platform/tui"
	"github.com/vovakirdan/rogue-gym/internal/registry"
	"github.com/vovakirdan/rogue-gym/internal/storage"
)

var (
	flagEpisodesEngine string
	flagEpisodesLimit  int
	flagPlain          bool
	flagClear          bool
)

var episodesCmd = &cobra.Command{
	Use:   "episodes",
	Short: "Browse stored episodes",
	Long: `Browse the episodes saved by play, run and the SSH server, best
reward first. The interactive browser replays the selected episode on
enter; --plain prints a table and statistics instead.

Examples:
  roguegym episodes
  roguegym episodes --plain --limit 20
  roguegym episodes --clear`,
	Args: cobra.NoArgs,
	RunE: runEpisodes,
}

func init() {
	episodesCmd.Flags().StringVar(&flagEpisodesEngine, "engine", env.DefaultEngine, "Engine whose episodes to show")
	episodesCmd.Flags().IntVar(&flagEpisodesLimit, "limit", 10, "Number of episodes to print with --plain")
	episodesCmd.Flags().BoolVar(&flagPlain, "plain", false, "Print a plain table instead of the browser")
	episodesCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete every stored episode of --engine")
}

func runEpisodes(_ *cobra.Command, _ []string) error {
	if !registry.Exists(flagEpisodesEngine) {
		return fmt.Errorf("unknown engine %q (run 'roguegym list')", flagEpisodesEngine)
	}
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	switch {
	case flagClear:
		if err := store.ClearEpisodes(flagEpisodesEngine); err != nil {
			return err
		}
		logger.Info("episodes cleared", "engine", flagEpisodesEngine)
		return nil
	case flagPlain:
		return printEpisodes(store)
	}

	w, h := terminalSize()
	id, err := tui.RunEpisodes(store, w, h)
	if err != nil || id == "" {
		return err
	}
	ep, err := store.EpisodeByID(id)
	if err != nil {
		return err
	}
	if ep == nil {
		return fmt.Errorf("episode %q disappeared", id)
	}
	return tui.RunReplay(ep.History, tui.DefaultReplayRate)
}

func printEpisodes(store *storage.Store) error {
	episodes, err := store.TopEpisodes(flagEpisodesEngine, flagEpisodesLimit)
	if err != nil {
		return err
	}

	fmt.Printf("Episodes - %s\n", flagEpisodesEngine)
	fmt.Println()
	if len(episodes) == 0 {
		fmt.Println("No episodes recorded yet.")
		fmt.Println()
		fmt.Println("Run 'roguegym play' or 'roguegym run' to record some.")
		return nil
	}

	fmt.Printf("  %-4s  %-8s  %-5s  %-6s  %-6s  %-18s  %-16s  %s\n", "Rank", "Reward", "Level", "Gold", "Steps", "End", "Date", "ID")
	fmt.Printf("  %-4s  %-8s  %-5s  %-6s  %-6s  %-18s  %-16s  %s\n", "----", "------", "-----", "----", "-----", "---", "----", "--")
	for i, ep := range episodes {
		fmt.Printf("  %-4d  %-8.0f  %-5d  %-6d  %-6d  %-18s  %-16s  %s\n",
			i+1, ep.Reward, ep.DungeonLevel, ep.Gold, ep.Steps, ep.EndReason,
			ep.CreatedAt.Format("2006-01-02 15:04"), ep.ID)
	}

	stats, err := store.EpisodeStats(flagEpisodesEngine)
	if err == nil && stats != nil {
		fmt.Println()
		fmt.Printf("Episodes: %d  Best: %.0f  Mean: %.1f  Deepest level: %d  Steps: %d\n",
			stats.Count, stats.BestReward, stats.AvgReward, stats.MaxLevel, stats.TotalSteps)
	}
	return nil
}
