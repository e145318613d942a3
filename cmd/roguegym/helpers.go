package main

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/vovakirdan/rogue-gym/internal/config"
	"github.com/vovakirdan/rogue-gym/internal/storage"
)

// loadGame loads the game document from --config (or the search path),
// applies a difficulty preset and the --seed override. A document
// without a seed gets one from the clock.
func loadGame(difficulty string) (*config.Document, error) {
	doc, err := config.LoadGame(flagConfig)
	if err != nil {
		return nil, err
	}
	preset, err := config.ParseDifficulty(difficulty)
	if err != nil {
		return nil, err
	}
	if doc, err = config.ApplyDifficulty(doc, preset); err != nil {
		return nil, err
	}
	switch {
	case flagSeed != 0:
		doc = doc.WithSeed(flagSeed)
	default:
		if _, ok := doc.Seed(); !ok {
			doc = doc.WithSeed(uint64(time.Now().UnixNano()))
		}
	}
	return doc, nil
}

// openStore opens the episode database. Failures are logged and yield a
// nil store so play can continue without persistence.
func openStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open episode database", "path", flagDBPath, "error", err)
		return nil
	}
	return store
}

// terminalSize returns the size of stdout, or 80x24.
func terminalSize() (int, int) {
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		return w, h
	}
	return 80, 24
}

// loadHistory reads a history file, or the stored episode with that id
// when no such file exists.
func loadHistory(ref string) ([]byte, error) {
	if _, err := os.Stat(ref); err == nil {
		return storage.ReadHistory(ref)
	}
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	ep, err := store.EpisodeByID(ref)
	if err != nil {
		return nil, err
	}
	if ep == nil {
		return nil, fmt.Errorf("no history file or stored episode %q", ref)
	}
	return ep.History, nil
}
