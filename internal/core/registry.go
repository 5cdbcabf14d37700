package core

import (
	"fmt"
	"sort"
	"sync"
)

// RowFunc converts a record into values ordered like its definition's Columns.
// Values should be pgtype values so both stores can bind them.
type RowFunc func(rec Record) ([]any, error)

// CollectionDefinition describes how records of one collection are stored.
type CollectionDefinition struct {
	Name    Collection
	Label   string   // Display name: "Trips"
	Columns []string // Database columns in Row order
	Row     RowFunc
}

var (
	registry   = make(map[Collection]CollectionDefinition)
	registryMu sync.RWMutex
)

// Register adds a collection definition to the registry.
// Panics if a collection with the same name is already registered.
func Register(def CollectionDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Name]; exists {
		panic(fmt.Sprintf("collection already registered: %s", def.Name))
	}
	registry[def.Name] = def
}

// Get returns a collection definition by name.
// Returns false if not found.
func Get(name Collection) (CollectionDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[name]
	return def, ok
}

// All returns all registered collection definitions sorted by name.
func All() []CollectionDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]CollectionDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// CollectionCount returns the number of registered collections.
func CollectionCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered collections.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[Collection]CollectionDefinition)
}
