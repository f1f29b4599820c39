package state

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	builderopts "github.com/goliatone/go-builder-options"
)

func newSettings(t *testing.T, initial map[string]string) (*Settings, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore(initial)
	settings, err := NewSettings(store)
	if err != nil {
		t.Fatalf("new settings: %v", err)
	}
	return settings, store
}

func TestSettingsEncoding(t *testing.T) {
	ctx := context.Background()
	settings, store := newSettings(t, map[string]string{
		"upper":   "TRUE",
		"garbage": "yes",
	})

	tests := []struct {
		key     string
		value   bool
		present bool
	}{
		{key: "upper", value: true, present: true},
		{key: "garbage", value: false, present: true},
		{key: "absent", value: false, present: false},
	}
	for _, tt := range tests {
		value, present, err := settings.Lookup(ctx, tt.key)
		if err != nil {
			t.Fatalf("lookup %s: %v", tt.key, err)
		}
		if value != tt.value || present != tt.present {
			t.Fatalf("%s: expected (%v,%v), got (%v,%v)", tt.key, tt.value, tt.present, value, present)
		}
	}

	if err := settings.SetValue(ctx, "GenerateInnerBuilder.withJavadoc", true); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := settings.SetValue(ctx, "GenerateInnerBuilder.finalFields", false); err != nil {
		t.Fatalf("set: %v", err)
	}
	snapshot := store.Snapshot()
	if snapshot["GenerateInnerBuilder.withJavadoc"] != "true" || snapshot["GenerateInnerBuilder.finalFields"] != "false" {
		t.Fatalf("expected literal encodings, got %v", snapshot)
	}
	if on, err := settings.IsTrue(ctx, "GenerateInnerBuilder.withJavadoc"); err != nil || !on {
		t.Fatalf("expected read-your-writes, got %v %v", on, err)
	}
}

func TestNewSettingsRequiresStore(t *testing.T) {
	if _, err := NewSettings(nil); !errors.Is(err, ErrStoreRequired) {
		t.Fatalf("expected ErrStoreRequired, got %v", err)
	}
}

type plainStore struct {
	mu     sync.Mutex
	values map[string]string
	saves  int
	order  []string
	failOn string
}

func (s *plainStore) Load(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *plainStore) Save(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = append(s.order, key)
	if key == s.failOn {
		return errors.New("disk full")
	}
	if s.values == nil {
		s.values = map[string]string{}
	}
	s.values[key] = value
	s.saves++
	return nil
}

func (s *plainStore) Keys(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.values), nil
}

func TestSettingsSetValuesWithoutBatchStore(t *testing.T) {
	store := &plainStore{}
	settings, err := NewSettings(store)
	if err != nil {
		t.Fatalf("new settings: %v", err)
	}
	err = settings.SetValues(context.Background(),
		builderopts.Assignment{Key: "a", Value: true},
		builderopts.Assignment{Key: "b", Value: false},
	)
	if err != nil {
		t.Fatalf("set values: %v", err)
	}
	if store.saves != 2 {
		t.Fatalf("expected one save per entry, got %d", store.saves)
	}
	if diff := cmp.Diff(map[string]string{"a": "true", "b": "false"}, store.values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestSettingsSetValuesClearsBeforeSetting(t *testing.T) {
	with := builderopts.WithNotation.Key()
	set := builderopts.SetNotation.Key()
	store := &plainStore{values: map[string]string{set: ValueTrue}, failOn: with}
	settings, err := NewSettings(store)
	if err != nil {
		t.Fatalf("new settings: %v", err)
	}

	err = settings.SetValues(context.Background(),
		builderopts.Assignment{Key: with, Value: true},
		builderopts.Assignment{Key: set, Value: false},
	)
	if err == nil {
		t.Fatalf("expected the failing key to surface an error")
	}
	if diff := cmp.Diff([]string{set, with}, store.order); diff != "" {
		t.Fatalf("write order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]string{set: ValueFalse}, store.values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestConcurrentChoiceWritesStayExclusive(t *testing.T) {
	ctx := context.Background()
	settings, _ := newSettings(t, nil)
	with := builderopts.WithNotation.Key()
	set := builderopts.SetNotation.Key()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = settings.SetValues(ctx,
				builderopts.Assignment{Key: with, Value: i%2 == 0},
				builderopts.Assignment{Key: set, Value: i%2 == 1},
			)
		}(i)
	}
	wg.Wait()

	w, _ := settings.IsTrue(ctx, with)
	s, _ := settings.IsTrue(ctx, set)
	if w == s {
		t.Fatalf("expected exactly one prefix persisted true, got with=%v set=%v", w, s)
	}
}
