package ws

import (
	"github.com/vovakirdan/rogue-gym/internal/engine"
)

// Operations a client may send.
const (
	OpReset   = "reset"
	OpStep    = "step"
	OpSeed    = "seed"
	OpObserve = "observe"
	OpConfig  = "config"
)

// Request is one client message. A step carries either an action index
// or a string of vocabulary keys.
type Request struct {
	Op     string  `json:"op"`
	Action *int    `json:"action,omitempty"`
	Keys   string  `json:"keys,omitempty"`
	Seed   *uint64 `json:"seed,omitempty"`
}

// Response answers exactly one Request. Error is set instead of the
// state fields when the request failed; the connection stays usable.
type Response struct {
	Op          string         `json:"op"`
	Dungeon     []string       `json:"dungeon,omitempty"`
	Status      *engine.Status `json:"status,omitempty"`
	Reward      float64        `json:"reward"`
	Done        bool           `json:"done"`
	Steps       int            `json:"steps"`
	EndReason   string         `json:"end_reason,omitempty"`
	Shape       []int          `json:"shape,omitempty"`
	Observation []float32      `json:"observation,omitempty"`
	Config      map[string]any `json:"config,omitempty"`
	Error       string         `json:"error,omitempty"`
}
