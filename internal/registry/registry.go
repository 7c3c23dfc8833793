// Package registry provides a global registry of map factories.
// Maps register themselves in init() functions, allowing the CLI and the
// SSH server to list and build maps by ID.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/toontrek/internal/toonmap"
)

// DefaultMap is the map played when none is named.
const DefaultMap = "toontown"

// MapInfo contains metadata about a registered map.
type MapInfo struct {
	ID    string
	Title string
}

// Factory builds a fresh map. Maps are immutable once built, but each
// call returns its own instance.
type Factory func() (*toonmap.Map, error)

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a map factory to the registry.
// Panics if a map with the same ID is already registered.
func Register(id, title string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: map %q already registered", id))
	}

	factories[id] = f
	titles[id] = title
}

// List returns information about all registered maps, sorted by ID.
func List() []MapInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]MapInfo, 0, len(factories))
	for id := range factories {
		result = append(result, MapInfo{
			ID:    id,
			Title: titles[id],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create builds a map by its ID.
// Returns an error if the map ID is not registered or fails to build.
func Create(id string) (*toonmap.Map, error) {
	mu.RLock()
	f, ok := factories[id]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("registry: unknown map %q", id)
	}

	m, err := f()
	if err != nil {
		return nil, fmt.Errorf("registry: building map %q: %w", id, err)
	}
	return m, nil
}

// Exists checks if a map with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
