package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vovakirdan/rogue-gym/internal/core"
)

// recognizedKeys are the top-level keys engines understand. Anything else
// in a document is tolerated and dropped.
var recognizedKeys = map[string]bool{
	"seed":         true,
	"width":        true,
	"height":       true,
	"hide_dungeon": true,
	"dungeon":      true,
	"enemies":      true,
	"player":       true,
}

// Document is an immutable, validated game configuration. It remembers
// which recognized keys the caller supplied so Dump reproduces exactly
// that subset.
type Document struct {
	raw  map[string]json.RawMessage
	game GameConfig
}

// Parse decodes and validates a JSON configuration document.
func Parse(data []byte) (*Document, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		data = []byte("{}")
	}

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidConfiguration, err)
	}
	sch, err := gameSchema()
	if err != nil {
		return nil, fmt.Errorf("config: cannot compile schema: %w", err)
	}
	if err := sch.Validate(generic); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidConfiguration, err)
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidConfiguration, err)
	}
	raw := make(map[string]json.RawMessage, len(all))
	for k, v := range all {
		if recognizedKeys[k] {
			raw[k] = append(json.RawMessage(nil), v...)
		}
	}

	game := DefaultGameConfig()
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidConfiguration, err)
	}
	if err := game.Validate(); err != nil {
		return nil, err
	}

	return &Document{raw: raw, game: game}, nil
}

// FromMap builds a document from a decoded JSON/YAML object.
func FromMap(m map[string]any) (*Document, error) {
	if m == nil {
		return Default(), nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidConfiguration, err)
	}
	return Parse(data)
}

// MustParse is Parse for literals known to be valid; it panics otherwise.
func MustParse(s string) *Document {
	d, err := Parse([]byte(s))
	if err != nil {
		panic(err)
	}
	return d
}

// Default returns the empty document: every key takes its default.
func Default() *Document {
	return &Document{raw: map[string]json.RawMessage{}, game: DefaultGameConfig()}
}

// Game returns the typed configuration with defaults applied.
func (d *Document) Game() GameConfig {
	g := d.game
	g.Enemies.Enemies = append([]string(nil), d.game.Enemies.Enemies...)
	if d.game.Seed != nil {
		s := *d.game.Seed
		g.Seed = &s
	}
	return g
}

// Seed returns the configured seed, if any.
func (d *Document) Seed() (uint64, bool) {
	if d.game.Seed == nil {
		return 0, false
	}
	return *d.game.Seed, true
}

// Dump returns the recognized keys the caller supplied, as JSON.
func (d *Document) Dump() ([]byte, error) {
	return json.Marshal(d.raw)
}

// Map returns the dumped document as a generic object.
func (d *Document) Map() (map[string]any, error) {
	data, err := d.Dump()
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Clone returns a deep copy sharing no memory with d.
func (d *Document) Clone() *Document {
	raw := make(map[string]json.RawMessage, len(d.raw))
	for k, v := range d.raw {
		raw[k] = append(json.RawMessage(nil), v...)
	}
	return &Document{raw: raw, game: d.Game()}
}

// WithSeed returns a copy of d whose seed is set to seed.
func (d *Document) WithSeed(seed uint64) *Document {
	c := d.Clone()
	c.game.Seed = &seed
	c.raw["seed"] = json.RawMessage(fmt.Sprintf("%d", seed))
	return c
}
