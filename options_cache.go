package builderopts

import "sync"

// ProgramCache stores compiled expression programs keyed by expression.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// WithProgramCache registers a program cache on the Options wrapper.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *optionsConfig) {
		cfg.programCache = cache
	}
}

// MemoryProgramCache is a concurrency-safe ProgramCache. Generator rules are
// a small fixed set, so entries are never evicted.
type MemoryProgramCache struct {
	mu      sync.RWMutex
	entries map[string]any
}

// NewMemoryProgramCache returns an empty cache.
func NewMemoryProgramCache() *MemoryProgramCache {
	return &MemoryProgramCache{entries: map[string]any{}}
}

func (c *MemoryProgramCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.entries[key]
	return value, ok
}

func (c *MemoryProgramCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = map[string]any{}
	}
	c.entries[key] = value
}

// Len reports the number of cached programs.
func (c *MemoryProgramCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
