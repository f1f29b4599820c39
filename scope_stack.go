package builderopts

import (
	"errors"
	"fmt"
	"sort"

	"github.com/goliatone/go-builder-options/layering"
)

// Scope names a source of option values. Higher priorities win.
type Scope struct {
	Name     string
	Label    string
	Priority int
}

// Well-known scope names used by the settings resolver.
const (
	ScopeDefaults = "defaults"
	ScopeSettings = "settings"
)

// NewScope returns a scope with an optional human label.
func NewScope(name string, priority int, label ...string) Scope {
	scope := Scope{Name: name, Priority: priority}
	if len(label) > 0 {
		scope.Label = label[0]
	}
	return scope
}

// DefaultsScope is the weakest scope: catalogue defaults, every identity false.
func DefaultsScope() Scope {
	return NewScope(ScopeDefaults, 0, "Catalogue defaults")
}

// SettingsScope holds values persisted by earlier selection sessions.
func SettingsScope() Scope {
	return NewScope(ScopeSettings, 100, "Persisted settings")
}

// Layer pairs a scope with the values it contributes.
type Layer[T any] struct {
	Scope      Scope
	Snapshot   T
	SnapshotID string
}

// NewLayer detaches snapshot from the caller before storing it.
func NewLayer[T any](scope Scope, snapshot T, snapshotID ...string) Layer[T] {
	layer := Layer[T]{Scope: scope, Snapshot: layering.Clone(snapshot)}
	if len(snapshotID) > 0 {
		layer.SnapshotID = snapshotID[0]
	}
	return layer
}

var (
	// ErrScopeNameRequired indicates a layer without a scope name.
	ErrScopeNameRequired = errors.New("builderopts: scope name must be provided")
	// ErrDuplicateScopeName indicates two layers share a scope name.
	ErrDuplicateScopeName = errors.New("builderopts: scope names must be unique")
	// ErrPriorityOrder indicates two layers share a priority.
	ErrPriorityOrder = errors.New("builderopts: scope priorities must be distinct")
	// ErrEmptyStack is returned when merging a stack with no layers.
	ErrEmptyStack = errors.New("builderopts: stack must include at least one layer")
)

// Stack is an immutable set of layers ordered strongest first.
type Stack[T any] struct {
	layers []Layer[T]
}

// NewStack validates the layers and orders them by descending priority.
func NewStack[T any](layers ...Layer[T]) (*Stack[T], error) {
	names := make(map[string]struct{}, len(layers))
	ordered := make([]Layer[T], 0, len(layers))
	for _, layer := range layers {
		if layer.Scope.Name == "" {
			return nil, ErrScopeNameRequired
		}
		if _, dup := names[layer.Scope.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateScopeName, layer.Scope.Name)
		}
		names[layer.Scope.Name] = struct{}{}
		ordered = append(ordered, cloneLayer(layer))
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Scope.Priority > ordered[j].Scope.Priority
	})
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1].Scope.Priority == ordered[i].Scope.Priority {
			return nil, fmt.Errorf("%w: %s and %s share %d", ErrPriorityOrder,
				ordered[i-1].Scope.Name, ordered[i].Scope.Name, ordered[i].Scope.Priority)
		}
	}
	return &Stack[T]{layers: ordered}, nil
}

// Len reports the number of layers.
func (s *Stack[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.layers)
}

// Layers returns detached copies of the layers, strongest first.
func (s *Stack[T]) Layers() []Layer[T] {
	if s.Len() == 0 {
		return nil
	}
	out := make([]Layer[T], len(s.layers))
	for i, layer := range s.layers {
		out[i] = cloneLayer(layer)
	}
	return out
}

// Merge folds the layers into one value and returns it wrapped with the
// provenance needed by ResolveWithTrace.
func (s *Stack[T]) Merge(opts ...Option) (*Options[T], error) {
	if s.Len() == 0 {
		return nil, ErrEmptyStack
	}
	snapshots := make([]T, len(s.layers))
	provenance := make([]layerSnapshot, len(s.layers))
	for i, layer := range s.layers {
		snapshots[i] = layering.Clone(layer.Snapshot)
		provenance[i] = layerSnapshot{
			scope:      layer.Scope,
			snapshot:   layering.Clone(layer.Snapshot),
			snapshotID: layer.SnapshotID,
		}
	}
	options := New(layering.MergeLayers(snapshots...), opts...)
	options.layers = provenance
	return options, nil
}

func cloneLayer[T any](layer Layer[T]) Layer[T] {
	layer.Snapshot = layering.Clone(layer.Snapshot)
	return layer
}

type layerSnapshot struct {
	scope      Scope
	snapshot   any
	snapshotID string
}
