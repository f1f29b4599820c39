package builderopts

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrPathNotFound is returned when no layer provides a traced path.
var ErrPathNotFound = errors.New("builderopts: path not found")

// Trace reports which layers were consulted for a path and which one won.
type Trace struct {
	Path   string       `json:"path"`
	Source string       `json:"source,omitempty"`
	Layers []Provenance `json:"layers"`
}

// Provenance is one layer's contribution to a traced path.
type Provenance struct {
	Scope      Scope  `json:"scope"`
	SnapshotID string `json:"snapshot_id,omitempty"`
	Value      any    `json:"value,omitempty"`
	Found      bool   `json:"found"`
}

// ToJSON serialises the trace for logs.
func (t Trace) ToJSON() ([]byte, error) {
	return json.Marshal(t)
}

// TraceFromJSON parses a payload produced by ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	var trace Trace
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, fmt.Errorf("builderopts: decode trace: %w", err)
	}
	return trace, nil
}

// ResolveWithTrace returns the effective value at path (dot separated) and
// the provenance of every layer. For resolved settings the path is an option
// name such as "withNotation", and Source tells whether the value was
// persisted or fell back to the catalogue default.
func (o *Options[T]) ResolveWithTrace(path string) (any, Trace, error) {
	trace := Trace{Path: path}
	if path == "" {
		return nil, trace, fmt.Errorf("builderopts: trace path must not be empty")
	}
	if len(o.layers) == 0 {
		value, ok := lookupPath(o.Value, path)
		if !ok {
			return nil, trace, fmt.Errorf("%w: %s", ErrPathNotFound, path)
		}
		return value, trace, nil
	}

	var (
		value any
		found bool
	)
	for _, layer := range o.layers {
		layerValue, ok := lookupPath(layer.snapshot, path)
		entry := Provenance{Scope: layer.scope, SnapshotID: layer.snapshotID, Found: ok}
		if ok {
			entry.Value = layerValue
			if !found {
				value, found = layerValue, true
				trace.Source = layer.scope.Name
			}
		}
		trace.Layers = append(trace.Layers, entry)
	}
	if !found {
		return nil, trace, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	return value, trace, nil
}

func lookupPath(root any, path string) (any, bool) {
	current := reflect.ValueOf(root)
	for _, segment := range strings.Split(path, ".") {
		current = indirect(current)
		if !current.IsValid() {
			return nil, false
		}
		switch current.Kind() {
		case reflect.Map:
			if current.Type().Key().Kind() != reflect.String {
				return nil, false
			}
			next := current.MapIndex(reflect.ValueOf(segment).Convert(current.Type().Key()))
			if !next.IsValid() {
				return nil, false
			}
			current = next
		case reflect.Struct:
			next := current.FieldByNameFunc(func(name string) bool {
				return strings.EqualFold(name, segment)
			})
			if !next.IsValid() || !next.CanInterface() {
				return nil, false
			}
			current = next
		default:
			return nil, false
		}
	}
	current = indirect(current)
	if !current.IsValid() {
		return nil, false
	}
	return current.Interface(), true
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}
