package state

import (
	"context"
	"strings"
	"sync"

	builderopts "github.com/goliatone/go-builder-options"
)

// Boolean encodings written by Settings.
const (
	ValueTrue  = "true"
	ValueFalse = "false"
)

// Settings adapts a Store to the boolean settings contract. Values are written
// as the literals "true" and "false"; any stored value other than "true"
// (case-insensitive) reads false.
type Settings struct {
	store Store
	// mu serializes batches so two sessions cannot interleave the writes of
	// one choice group.
	mu sync.Mutex
}

var (
	_ builderopts.SettingsStore = (*Settings)(nil)
	_ builderopts.BatchSetter   = (*Settings)(nil)
	_ builderopts.ValueLookup   = (*Settings)(nil)
)

// NewSettings wraps store.
func NewSettings(store Store) (*Settings, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	return &Settings{store: store}, nil
}

// Store returns the wrapped store.
func (s *Settings) Store() Store { return s.store }

func (s *Settings) IsTrue(ctx context.Context, key string) (bool, error) {
	value, _, err := s.Lookup(ctx, key)
	return value, err
}

func (s *Settings) Lookup(ctx context.Context, key string) (bool, bool, error) {
	raw, ok, err := s.store.Load(ctx, key)
	if err != nil || !ok {
		return false, false, err
	}
	return strings.EqualFold(strings.TrimSpace(raw), ValueTrue), true, nil
}

func (s *Settings) SetValue(ctx context.Context, key string, value bool) error {
	return s.SetValues(ctx, builderopts.Assignment{Key: key, Value: value})
}

// SetValues writes every assignment. Stores implementing BatchStore receive a
// single call; others are written entry by entry under the same lock.
func (s *Settings) SetValues(ctx context.Context, assignments ...builderopts.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}
	// Entries written one by one clear before they set, so a failure part way
	// never leaves two identities of a group true.
	entries := make([]Entry, 0, len(assignments))
	for _, a := range assignments {
		if !a.Value {
			entries = append(entries, Entry{Key: a.Key, Value: ValueFalse})
		}
	}
	for _, a := range assignments {
		if a.Value {
			entries = append(entries, Entry{Key: a.Key, Value: ValueTrue})
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if batch, ok := s.store.(BatchStore); ok {
		return batch.SaveAll(ctx, entries...)
	}
	for _, e := range entries {
		if err := s.store.Save(ctx, e.Key, e.Value); err != nil {
			return err
		}
	}
	return nil
}

func encodeBool(value bool) string {
	if value {
		return ValueTrue
	}
	return ValueFalse
}
