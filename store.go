package builderopts

import (
	"context"
	"fmt"
	"sort"
)

// SettingsStore persists settings as string-encoded booleans keyed by
// OptionID.Key. A key that was never written reads false.
type SettingsStore interface {
	IsTrue(ctx context.Context, key string) (bool, error)
	SetValue(ctx context.Context, key string, value bool) error
}

// Assignment is one key/value write.
type Assignment struct {
	Key   string
	Value bool
}

// BatchSetter is implemented by stores able to apply several writes as one
// unit. Choice groups use it so concurrent writers cannot interleave.
type BatchSetter interface {
	SetValues(ctx context.Context, assignments ...Assignment) error
}

// ValueLookup is implemented by stores that can tell an absent key apart from
// one persisted false.
type ValueLookup interface {
	Lookup(ctx context.Context, key string) (value bool, ok bool, err error)
}

// StoreError wraps a settings store failure with the operation and key.
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("builderopts: store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func wrapStoreError(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Key: key, Err: err}
}

func readOption(ctx context.Context, store SettingsStore, id OptionID) (bool, error) {
	value, err := store.IsTrue(ctx, id.Key())
	return value, wrapStoreError("read", id.Key(), err)
}

func writeAssignments(ctx context.Context, store SettingsStore, assignments []Assignment) error {
	if len(assignments) == 0 {
		return nil
	}
	if batch, ok := store.(BatchSetter); ok {
		if err := batch.SetValues(ctx, assignments...); err != nil {
			return wrapStoreError("write", assignments[0].Key, err)
		}
		return nil
	}
	for _, a := range clearingFirst(assignments) {
		if err := store.SetValue(ctx, a.Key, a.Value); err != nil {
			return wrapStoreError("write", a.Key, err)
		}
	}
	return nil
}

// clearingFirst orders false assignments before true ones, keeping relative
// order otherwise. A sequential write that stops part way can then only leave
// a choice group with fewer identities set, never more.
func clearingFirst(assignments []Assignment) []Assignment {
	out := make([]Assignment, 0, len(assignments))
	for _, a := range assignments {
		if !a.Value {
			out = append(out, a)
		}
	}
	for _, a := range assignments {
		if a.Value {
			out = append(out, a)
		}
	}
	return out
}

// Values holds the resolved boolean of every identity keyed by OptionID.Name.
type Values map[string]bool

// Enabled reports the resolved value for id.
func (v Values) Enabled(id OptionID) bool {
	return v[id.Name()]
}

// Snapshot converts the values into the map form consumed by rule evaluators.
func (v Values) Snapshot() map[string]any {
	out := make(map[string]any, len(v))
	for name, value := range v {
		out[name] = value
	}
	return out
}

// Names returns the value names sorted alphabetically.
func (v Values) Names() []string {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ReadValues reads the current value of every identity in catalogue. This is
// the generator side of the write-through protocol.
func ReadValues(ctx context.Context, store SettingsStore, catalogue Catalogue) (Values, error) {
	if store == nil {
		return nil, fmt.Errorf("builderopts: settings store is required")
	}
	ids := catalogue.Options()
	values := make(Values, len(ids))
	for _, id := range ids {
		value, err := readOption(ctx, store, id)
		if err != nil {
			return nil, err
		}
		values[id.Name()] = value
	}
	return values, nil
}
