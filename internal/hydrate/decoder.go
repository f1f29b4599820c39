// Package hydrate decodes resolved option snapshots into typed structs.
package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Context identifies where a snapshot came from.
type Context struct {
	Source string
}

// PreHook rewrites the snapshot before decoding.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook adjusts or validates the decoded value.
type PostHook[T any] func(Context, *T) error

// DecoderOption configures a Decoder.
type DecoderOption[T any] func(*Decoder[T])

// Decoder converts map snapshots into T through encoding/json struct tags.
type Decoder[T any] struct {
	pre    []PreHook
	post   []PostHook[T]
	strict bool
}

// WithPreHook runs hook before decoding.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.pre = append(d.pre, hook)
		}
	}
}

// WithPostHook runs hook after decoding.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.post = append(d.post, hook)
		}
	}
}

// WithStrict rejects snapshot keys that T does not declare.
func WithStrict[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.strict = true
	}
}

// NewDecoder builds a Decoder.
func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode converts snapshot into T. The snapshot itself is never modified.
func (d *Decoder[T]) Decode(ctx Context, snapshot map[string]any) (T, error) {
	var zero T
	if snapshot == nil {
		return zero, fmt.Errorf("hydrate: %s snapshot is nil", ctx.Source)
	}
	current := make(map[string]any, len(snapshot))
	for key, value := range snapshot {
		current[key] = value
	}
	for _, hook := range d.pre {
		next, err := hook(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: %s pre-hook: %w", ctx.Source, err)
		}
		if next != nil {
			current = next
		}
	}

	payload, err := json.Marshal(current)
	if err != nil {
		return zero, fmt.Errorf("hydrate: encode %s snapshot: %w", ctx.Source, err)
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	if d.strict {
		dec.DisallowUnknownFields()
	}
	var result T
	if err := dec.Decode(&result); err != nil {
		return zero, fmt.Errorf("hydrate: decode %s snapshot: %w", ctx.Source, err)
	}

	for _, hook := range d.post {
		if err := hook(ctx, &result); err != nil {
			return zero, fmt.Errorf("hydrate: %s post-hook: %w", ctx.Source, err)
		}
	}
	return result, nil
}
