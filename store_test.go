package builderopts

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type batchStore struct {
	*fakeStore
	batches [][]Assignment
	err     error
}

func (s *batchStore) SetValues(_ context.Context, assignments ...Assignment) error {
	if s.err != nil {
		return s.err
	}
	s.batches = append(s.batches, append([]Assignment(nil), assignments...))
	for _, a := range assignments {
		s.values[a.Key] = a.Value
	}
	return nil
}

func TestWriteAssignmentsPrefersBatch(t *testing.T) {
	ctx := context.Background()
	store := &batchStore{fakeStore: newFakeStore(nil)}
	assignments := []Assignment{
		{Key: WithNotation.Key(), Value: true},
		{Key: SetNotation.Key(), Value: false},
	}
	if err := writeAssignments(ctx, store, assignments); err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(store.batches) != 1 || store.writes != 0 {
		t.Fatalf("expected one batch and no single writes, got %d batches %d writes", len(store.batches), store.writes)
	}
	if diff := cmp.Diff(assignments, store.batches[0]); diff != "" {
		t.Fatalf("batch mismatch (-want +got):\n%s", diff)
	}

	store.err = errors.New("locked")
	err := writeAssignments(ctx, store, assignments)
	var storeErr *StoreError
	if !errors.As(err, &storeErr) || storeErr.Op != "write" || storeErr.Key != WithNotation.Key() {
		t.Fatalf("expected write StoreError, got %v", err)
	}
}

func TestWriteAssignmentsSequentialStopsOnFailure(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(nil)
	if err := writeAssignments(ctx, store, nil); err != nil || store.writes != 0 {
		t.Fatalf("empty write should be a no-op, got %v after %d writes", err, store.writes)
	}

	assignments := []Assignment{
		{Key: FinalSetters.Key(), Value: true},
		{Key: WithJavadoc.Key(), Value: true},
	}
	if err := writeAssignments(ctx, store, assignments); err != nil {
		t.Fatalf("write: %v", err)
	}
	if store.writes != 2 || !store.values[WithJavadoc.Key()] {
		t.Fatalf("expected both keys written, got %v", store.values)
	}

	boom := errors.New("read-only")
	store.writeErr = boom
	err := writeAssignments(ctx, store, assignments)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped failure, got %v", err)
	}
	if store.writes != 3 {
		t.Fatalf("expected writes to stop at the first failure, got %d", store.writes)
	}
}

func TestWriteAssignmentsClearsBeforeSetting(t *testing.T) {
	store := newFakeStore(map[string]bool{SetNotation.Key(): true})
	store.failKey = WithNotation.Key()
	err := writeAssignments(context.Background(), store, []Assignment{
		{Key: WithNotation.Key(), Value: true},
		{Key: SetNotation.Key(), Value: false},
	})
	if err == nil {
		t.Fatalf("expected failure on %s", WithNotation.Key())
	}
	if diff := cmp.Diff(map[string]bool{SetNotation.Key(): false}, store.snapshot()); diff != "" {
		t.Fatalf("store mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreError(t *testing.T) {
	cause := errors.New("denied")
	err := wrapStoreError("read", FinalSetters.Key(), cause)
	want := `builderopts: store read "GenerateInnerBuilder.finalSetters": denied`
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected unwrap to reach cause")
	}
	if wrapStoreError("read", "k", nil) != nil {
		t.Fatalf("nil error must stay nil")
	}
	var nilErr *StoreError
	if nilErr.Error() != "<nil>" || nilErr.Unwrap() != nil {
		t.Fatalf("nil receiver should be safe")
	}
}

func TestValuesSnapshot(t *testing.T) {
	values := Values{"withJavadoc": true, "finalSetters": false}
	want := map[string]any{"withJavadoc": true, "finalSetters": false}
	if diff := cmp.Diff(want, values.Snapshot()); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"finalSetters", "withJavadoc"}, values.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if !values.Enabled(WithJavadoc) || values.Enabled(CopyConstructor) {
		t.Fatalf("unexpected Enabled results")
	}
}
