// Package engine defines the contract between environments and the
// dungeon simulators they drive. Engines own their RNG, dungeon and
// keystroke history; environments only see Handle and PlayerState.
package engine

import "github.com/vovakirdan/rogue-gym/internal/config"

// Handle is one running engine instance. Handles are not safe for
// concurrent use; each belongs to a single goroutine at a time.
type Handle interface {
	// React feeds one keystroke. It reports whether the episode is over.
	// Keys sent after the terminal transition are ignored.
	React(key byte) (terminal bool, err error)

	// PreviousResult returns the snapshot produced by the last React or
	// Reset. The snapshot is immutable.
	PreviousResult() *PlayerState

	// Reset discards the running episode and regenerates the dungeon
	// from the current seed.
	Reset() error

	// SetSeed stores a seed used by the next Reset.
	SetSeed(seed uint64)

	// DumpConfig returns the recognized configuration keys as JSON.
	DumpConfig() ([]byte, error)

	// DumpHistory returns the engine's replayable keystroke log.
	DumpHistory() ([]byte, error)

	// ScreenSize returns the dungeon grid size as (rows, columns).
	ScreenSize() (h, w int)

	// SymbolCount is the number of distinct symbols a dungeon cell may hold.
	SymbolCount() int
}

// Factory constructs a handle from a configuration document. maxSteps
// bounds the number of consumed keystrokes per episode; zero means no
// limit.
type Factory func(doc *config.Document, maxSteps int) (Handle, error)

// EndReasoner is implemented by engines that can say why an episode
// ended ("starvation", "max_steps", "killed by bat", ...).
type EndReasoner interface {
	EndReason() string
}
