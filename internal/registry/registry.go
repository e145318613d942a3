// Package registry provides a global registry for engine factories.
// Engines register themselves in init() functions, allowing environments
// and the CLI to discover and instantiate engines without hardcoded
// dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/rogue-gym/internal/config"
	"github.com/vovakirdan/rogue-gym/internal/engine"
)

// EngineInfo contains metadata about a registered engine.
type EngineInfo struct {
	ID    string
	Title string
}

var (
	factories = make(map[string]engine.Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds an engine factory to the registry.
// Typically called from an engine's init() function.
// Panics if an engine with the same ID is already registered.
func Register(id, title string, f engine.Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: engine %q already registered", id))
	}

	factories[id] = f
	titles[id] = title
}

// List returns information about all registered engines, sorted by ID.
func List() []EngineInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]EngineInfo, 0, len(factories))
	for id := range factories {
		result = append(result, EngineInfo{
			ID:    id,
			Title: titles[id],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates an engine by its ID. The document is cloned so the
// engine never aliases the caller's copy.
// Returns an error if the engine ID is not registered.
func Create(id string, doc *config.Document, maxSteps int) (engine.Handle, error) {
	mu.RLock()
	f, ok := factories[id]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("registry: unknown engine %q", id)
	}
	if doc == nil {
		doc = config.Default()
	}

	return f(doc.Clone(), maxSteps)
}

// Exists checks if an engine with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
