package state

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps values in process memory. It is intended for tests,
// examples and headless runs that do not need persistence.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore returns a store seeded with a copy of initial.
func NewMemoryStore(initial map[string]string) *MemoryStore {
	values := make(map[string]string, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return &MemoryStore{values: values}
}

func (s *MemoryStore) Load(_ context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrKeyRequired
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *MemoryStore) Save(ctx context.Context, key, value string) error {
	return s.SaveAll(ctx, Entry{Key: key, Value: value})
}

func (s *MemoryStore) SaveAll(_ context.Context, entries ...Entry) error {
	for _, e := range entries {
		if e.Key == "" {
			return ErrKeyRequired
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = map[string]string{}
	}
	for _, e := range entries {
		s.values[e.Key] = e.Value
	}
	return nil
}

func (s *MemoryStore) Keys(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.values), nil
}

// Snapshot returns a copy of every stored value.
func (s *MemoryStore) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
