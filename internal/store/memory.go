package store

import (
	"slices"
	"time"

	"github.com/temirov/repohq/internal/repository"
)

// MemoryStore keeps configuration and cache in memory.
type MemoryStore struct {
	Config Config
	Cache  Cache
	Clock  func() time.Time
	// Saves counts SaveCache calls.
	Saves int
}

// NewMemoryStore constructs a MemoryStore serving config and an empty, never-saved cache.
func NewMemoryStore(config Config) *MemoryStore {
	return &MemoryStore{Config: config, Clock: time.Now}
}

// LoadConfig returns the held configuration.
func (memoryStore *MemoryStore) LoadConfig() (Config, error) {
	return memoryStore.Config, nil
}

// LoadCache returns a copy of the held cache.
func (memoryStore *MemoryStore) LoadCache() (Cache, error) {
	cache := memoryStore.Cache
	cache.Repositories = slices.Clone(cache.Repositories)
	return cache, nil
}

// SaveCache replaces the held cache.
func (memoryStore *MemoryStore) SaveCache(repositories []repository.Repository) error {
	clock := memoryStore.Clock
	if clock == nil {
		clock = time.Now
	}
	memoryStore.Cache = Cache{Timestamp: clock().UTC(), Repositories: slices.Clone(repositories), Exists: true}
	memoryStore.Saves++
	return nil
}
