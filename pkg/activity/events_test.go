package activity

import (
	"context"
	"testing"
)

func TestBuildOptionChangedEventCarriesKeyAndValues(t *testing.T) {
	meta := map[string]any{"source": "checkbox"}
	event := BuildOptionChangedEvent(OptionChangeInput{
		SessionID: " sess ",
		Key:       "GenerateInnerBuilder.finalSetters",
		Caption:   "Generate builder methods for final fields",
		OldValue:  false,
		NewValue:  true,
		Metadata:  meta,
	})

	if event.Verb != VerbOptionChanged || event.ObjectType != ObjectTypeOption {
		t.Fatalf("unexpected verb/object: %+v", event)
	}
	if event.ObjectID != "GenerateInnerBuilder.finalSetters" || event.SessionID != "sess" {
		t.Fatalf("unexpected ids: %+v", event)
	}
	if event.Metadata["old_value"] != false || event.Metadata["new_value"] != true {
		t.Fatalf("expected old/new values, got %v", event.Metadata)
	}
	if event.Metadata["source"] != "checkbox" || event.Metadata["caption"] == nil {
		t.Fatalf("expected metadata merged, got %v", event.Metadata)
	}
	if _, ok := meta["key"]; ok {
		t.Fatalf("input metadata must not be mutated")
	}
}

func TestBuildOptionChangedEventFallsBackToObjectType(t *testing.T) {
	event := BuildOptionChangedEvent(OptionChangeInput{})
	if event.ObjectID != ObjectTypeOption {
		t.Fatalf("expected fallback object id, got %q", event.ObjectID)
	}
}

func TestBuildSelectionEvents(t *testing.T) {
	confirmed := BuildSelectionConfirmedEvent(SelectionInput{SessionID: "s-1", Candidates: 3, Selected: 2})
	if confirmed.Verb != VerbSelectionConfirmed || confirmed.ObjectID != "s-1" {
		t.Fatalf("unexpected confirmed event: %+v", confirmed)
	}
	if confirmed.Metadata["candidates"] != 3 || confirmed.Metadata["selected"] != 2 {
		t.Fatalf("expected counts in metadata, got %v", confirmed.Metadata)
	}

	cancelled := BuildSelectionCancelledEvent(SelectionInput{})
	if cancelled.Verb != VerbSelectionCancelled || cancelled.ObjectID != ObjectTypeSelection {
		t.Fatalf("unexpected cancelled event: %+v", cancelled)
	}
}

func TestBuiltEventsPassHooks(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{capture}

	if err := hooks.Notify(context.Background(), BuildOptionChangedEvent(OptionChangeInput{Key: "k"})); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if err := hooks.Notify(context.Background(), BuildSelectionCancelledEvent(SelectionInput{})); err != nil {
		t.Fatalf("notify: %v", err)
	}
	verbs := capture.Verbs()
	if len(verbs) != 2 || verbs[0] != VerbOptionChanged || verbs[1] != VerbSelectionCancelled {
		t.Fatalf("unexpected verbs %v", verbs)
	}
}
