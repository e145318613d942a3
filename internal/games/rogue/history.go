package rogue

import (
	"encoding/json"
	"fmt"

	"github.com/vovakirdan/rogue-gym/internal/config"
)

// History is the replayable record of one episode: the configuration
// keys, the effective seed and every consumed keystroke.
type History struct {
	Config   json.RawMessage `json:"config"`
	Seed     uint64          `json:"seed"`
	MaxSteps int             `json:"max_steps,omitempty"`
	Keys     string          `json:"keys"`
}

// ParseHistory decodes a history produced by DumpHistory.
func ParseHistory(data []byte) (*History, error) {
	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("rogue: cannot parse history: %w", err)
	}
	return &h, nil
}

// NewGame builds a fresh game positioned at the start of the recorded
// episode.
func (h *History) NewGame() (*Game, error) {
	doc, err := config.Parse(h.Config)
	if err != nil {
		return nil, err
	}
	return New(doc.WithSeed(h.Seed), h.MaxSteps)
}

// Replay re-runs a recorded episode and returns the game in its final
// state.
func Replay(data []byte) (*Game, error) {
	h, err := ParseHistory(data)
	if err != nil {
		return nil, err
	}
	g, err := h.NewGame()
	if err != nil {
		return nil, err
	}
	for i := 0; i < len(h.Keys); i++ {
		if _, err := g.React(h.Keys[i]); err != nil {
			return nil, fmt.Errorf("rogue: replay key %d: %w", i, err)
		}
	}
	return g, nil
}
