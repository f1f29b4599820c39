package state

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMemoryStoreLoadSave(t *testing.T) {
	ctx := context.Background()
	initial := map[string]string{"a": "1"}
	store := NewMemoryStore(initial)
	initial["a"] = "mutated"

	if value, ok, err := store.Load(ctx, "a"); err != nil || !ok || value != "1" {
		t.Fatalf("expected seeded value, got %q %v %v", value, ok, err)
	}
	if _, ok, err := store.Load(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := store.Save(ctx, "b", "2"); err != nil {
		t.Fatalf("save: %v", err)
	}
	keys, err := store.Keys(ctx)
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, keys); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestMemoryStoreRejectsEmptyKey(t *testing.T) {
	store := NewMemoryStore(nil)
	if err := store.SaveAll(context.Background(), Entry{Key: "a", Value: "1"}, Entry{}); !errors.Is(err, ErrKeyRequired) {
		t.Fatalf("expected ErrKeyRequired, got %v", err)
	}
	if len(store.Snapshot()) != 0 {
		t.Fatalf("rejected batch must not be partially applied")
	}
	if _, _, err := store.Load(context.Background(), ""); !errors.Is(err, ErrKeyRequired) {
		t.Fatalf("expected ErrKeyRequired, got %v", err)
	}
}
