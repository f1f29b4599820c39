package activity

import (
	"strings"
	"time"
)

// Verbs and object types emitted by the selection flow.
const (
	VerbOptionChanged      = "builder.option.changed"
	VerbSelectionConfirmed = "builder.selection.confirmed"
	VerbSelectionCancelled = "builder.selection.cancelled"

	ObjectTypeOption    = "builder.option"
	ObjectTypeSelection = "builder.selection"
)

// OptionChangeInput describes a write-through of one setting.
type OptionChangeInput struct {
	SessionID  string
	Key        string
	Caption    string
	OldValue   any
	NewValue   any
	Metadata   map[string]any
	OccurredAt time.Time
}

// SelectionInput describes the end of a selection session.
type SelectionInput struct {
	SessionID  string
	Candidates int
	Selected   int
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildOptionChangedEvent constructs the event for an option write. The
// storage key doubles as object ID.
func BuildOptionChangedEvent(input OptionChangeInput) Event {
	metadata := cloneMap(input.Metadata)
	metadata = ensureMetadata(metadata)
	metadata["key"] = strings.TrimSpace(input.Key)
	if input.Caption != "" {
		metadata["caption"] = input.Caption
	}
	if input.OldValue != nil {
		metadata["old_value"] = input.OldValue
	}
	if input.NewValue != nil {
		metadata["new_value"] = input.NewValue
	}
	objectID := strings.TrimSpace(input.Key)
	if objectID == "" {
		objectID = ObjectTypeOption
	}
	return Event{
		Verb:       VerbOptionChanged,
		ObjectType: ObjectTypeOption,
		ObjectID:   objectID,
		SessionID:  strings.TrimSpace(input.SessionID),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

// BuildSelectionConfirmedEvent constructs the event for a confirmed session.
func BuildSelectionConfirmedEvent(input SelectionInput) Event {
	return buildSelectionEvent(VerbSelectionConfirmed, input)
}

// BuildSelectionCancelledEvent constructs the event for a cancelled or
// aborted session.
func BuildSelectionCancelledEvent(input SelectionInput) Event {
	return buildSelectionEvent(VerbSelectionCancelled, input)
}

func buildSelectionEvent(verb string, input SelectionInput) Event {
	metadata := ensureMetadata(cloneMap(input.Metadata))
	metadata["candidates"] = input.Candidates
	metadata["selected"] = input.Selected

	sessionID := strings.TrimSpace(input.SessionID)
	objectID := sessionID
	if objectID == "" {
		objectID = ObjectTypeSelection
	}
	return Event{
		Verb:       verb,
		ObjectType: ObjectTypeSelection,
		ObjectID:   objectID,
		SessionID:  sessionID,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
