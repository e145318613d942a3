package config

import "fmt"

// RunConfig drives the headless batch runner.
type RunConfig struct {
	Engine   string         `yaml:"engine"`
	Envs     int            `yaml:"envs"`
	MaxSteps int            `yaml:"max_steps"`
	Episodes int            `yaml:"episodes"`
	Seeds    []uint64       `yaml:"seeds"`
	Image    ImageConfig    `yaml:"image"`
	Shaping  ShapingConfig  `yaml:"shaping"`
	Game     map[string]any `yaml:"game"`
}

// ImageConfig selects the observation encoding by name.
type ImageConfig struct {
	Dungeon string   `yaml:"dungeon"` // "symbol" or "gray"
	Status  []string `yaml:"status"`  // flag names, "full" or "empty"
	History bool     `yaml:"history"`
}

// ShapingConfig enables reward shaping decorators. Zero disables.
type ShapingConfig struct {
	StairBonus float64 `yaml:"stair_bonus"`
	FloorLimit int     `yaml:"floor_limit"`
}

// DefaultRunConfig returns the built-in runner configuration.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Engine:   "rogue",
		Envs:     8,
		MaxSteps: 1000,
		Episodes: 1,
		Image: ImageConfig{
			Dungeon: "symbol",
			Status:  []string{"full"},
		},
		Shaping: ShapingConfig{StairBonus: 50},
	}
}

// withDefaults fills zero values from DefaultRunConfig.
func (c RunConfig) withDefaults() RunConfig {
	def := DefaultRunConfig()
	if c.Engine == "" {
		c.Engine = def.Engine
	}
	if c.Envs <= 0 {
		c.Envs = def.Envs
	}
	if c.MaxSteps <= 0 {
		c.MaxSteps = def.MaxSteps
	}
	if c.Episodes <= 0 {
		c.Episodes = def.Episodes
	}
	if c.Image.Dungeon == "" {
		c.Image.Dungeon = def.Image.Dungeon
	}
	return c
}

// Documents expands the run configuration into one game document per
// environment. Seeds, when given, override the game seed per instance;
// otherwise instance i gets base seed + i.
func (c RunConfig) Documents(base uint64) ([]*Document, error) {
	doc, err := FromMap(c.Game)
	if err != nil {
		return nil, err
	}
	if len(c.Seeds) > 0 && len(c.Seeds) != c.Envs {
		return nil, fmt.Errorf("config: %d seeds given for %d environments", len(c.Seeds), c.Envs)
	}
	if s, ok := doc.Seed(); ok && base == 0 {
		base = s
	}
	docs := make([]*Document, c.Envs)
	for i := range docs {
		seed := base + uint64(i)
		if len(c.Seeds) > 0 {
			seed = c.Seeds[i]
		}
		docs[i] = doc.WithSeed(seed)
	}
	return docs, nil
}
