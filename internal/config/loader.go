package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a game configuration from a .json, .yaml or .yml file.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	doc, err := decode(path, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return doc, nil
}

// decode picks the decoder from the file extension.
func decode(path string, data []byte) (*Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return Parse(data)
	}
}

// ParseYAML converts a YAML document into a validated Document.
func ParseYAML(data []byte) (*Document, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("config: yaml: %w", err)
	}
	return FromMap(m)
}

// LoadGame loads the game configuration.
// Search order: customPath -> ~/.roguegym/configs/game.yaml -> ./configs/game.yaml -> embedded default
func LoadGame(customPath string) (*Document, error) {
	if customPath != "" {
		return LoadFile(customPath)
	}

	if userCfgPath := userConfigPath("game.yaml"); userCfgPath != "" {
		if doc, err := LoadFile(userCfgPath); err == nil {
			return doc, nil
		}
	}

	if doc, err := LoadFile(filepath.Join("configs", "game.yaml")); err == nil {
		return doc, nil
	}

	doc, err := ParseYAML(defaultGameYAML)
	if err != nil {
		return Default(), nil // Fallback to hardcoded if embed fails
	}
	return doc, nil
}

// LoadRun loads the runner configuration.
// Search order: customPath -> ~/.roguegym/configs/run.yaml -> ./configs/run.yaml -> embedded default
func LoadRun(customPath string) (RunConfig, error) {
	var cfg RunConfig

	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg.withDefaults(), nil
	}

	if userCfgPath := userConfigPath("run.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return cfg.withDefaults(), nil
			}
		}
	}

	if data, err := os.ReadFile(filepath.Join("configs", "run.yaml")); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return cfg.withDefaults(), nil
		}
	}

	if err := yaml.Unmarshal(defaultRunYAML, &cfg); err != nil {
		return DefaultRunConfig(), nil
	}
	return cfg.withDefaults(), nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".roguegym", "configs", filename)
}
