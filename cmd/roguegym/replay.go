package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/rogue-gym/internal/core"
	"github.com/vovakirdan/rogue-gym/internal/games/rogue"
	"github.com/vovakirdan/rogue-gym/internal/platform/gifenc"
	"github.com/vovakirdan/rogue-gym/internal/platform/tui"
	"github.com/vovakirdan/rogue-gym/internal/storage"
)

var (
	flagReplayRate int
	flagPrintFinal bool
	flagExportPath string
	flagGifPath    string
	flagGifTheme   string
	flagGifEvery   time.Duration
	flagGifMax     int
)

var replayCmd = &cobra.Command{
	Use:   "replay <file|episode-id>",
	Short: "Replay a recorded episode",
	Long: `Replay a history, either from a file written by 'run --out' or an
environment's SaveHistory (.zst files are decompressed), or from the
episode database by id.

The animated replay needs a terminal and is not available on Windows;
use --print to re-run the episode headlessly and print its final state.
--gif renders the replay to an animated GIF instead.

Examples:
  roguegym replay ./histories/episode-000-003-3.json.zst
  roguegym replay 6f1c2a0e-... --rate 30
  roguegym replay 6f1c2a0e-... --export episode.json.zst
  roguegym replay episode.json --print
  roguegym replay episode.json --gif episode.gif --gif-max -1 --gif-theme black`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().IntVar(&flagReplayRate, "rate", tui.DefaultReplayRate, "Keystrokes per second")
	replayCmd.Flags().BoolVar(&flagPrintFinal, "print", false, "Print the final state instead of animating")
	replayCmd.Flags().StringVar(&flagExportPath, "export", "", "Write the history to this file and exit")
	replayCmd.Flags().StringVar(&flagGifPath, "gif", "", "Render the replay to this GIF file and exit")
	replayCmd.Flags().StringVar(&flagGifTheme, "gif-theme", "solarized-dark", "GIF theme (white, black, solarized-light, solarized-dark)")
	replayCmd.Flags().DurationVar(&flagGifEvery, "gif-interval", gifenc.DefaultInterval, "Delay between GIF frames")
	replayCmd.Flags().IntVar(&flagGifMax, "gif-max", gifenc.DefaultMaxActions, "Keystrokes to render (-1 for all)")
}

func runReplay(_ *cobra.Command, args []string) error {
	data, err := loadHistory(args[0])
	if err != nil {
		return err
	}

	switch {
	case flagExportPath != "":
		if err := storage.WriteHistory(flagExportPath, data); err != nil {
			return err
		}
		logger.Info("history exported", "path", flagExportPath)
		return nil
	case flagGifPath != "":
		return exportGif(data)
	case flagPrintFinal:
		g, err := rogue.Replay(data)
		if err != nil {
			return err
		}
		fmt.Println(g.PreviousResult())
		fmt.Printf("seed %d, end: %s\n", g.Seed(), g.EndReason())
		return nil
	}

	if err := tui.RunReplay(data, flagReplayRate); err != nil {
		if errors.Is(err, core.ErrUnsupportedPlatform) {
			return fmt.Errorf("%w (use --print for a headless replay)", err)
		}
		return err
	}
	return nil
}

func exportGif(data []byte) error {
	theme, err := gifenc.ParseTheme(flagGifTheme)
	if err != nil {
		return err
	}
	if flagGifMax == 0 {
		return fmt.Errorf("--gif-max must be positive or -1")
	}
	n, err := gifenc.WriteFile(flagGifPath, data, gifenc.Options{
		Interval:   flagGifEvery,
		MaxActions: flagGifMax,
		Theme:      theme,
	})
	if err != nil {
		return err
	}
	logger.Info("gif written", "path", flagGifPath, "frames", n)
	return nil
}
