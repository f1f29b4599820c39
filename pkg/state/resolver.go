package state

import (
	"context"
	"fmt"

	builderopts "github.com/goliatone/go-builder-options"
)

// Resolver layers persisted settings over catalogue defaults.
type Resolver struct {
	Settings  builderopts.ValueLookup
	Catalogue builderopts.Catalogue
	// SnapshotID labels the settings layer in traces, e.g. a file path.
	SnapshotID string
}

// Resolve returns the effective value of every catalogue identity keyed by
// option name. Identities never persisted come from the defaults layer,
// which ResolveWithTrace reports as the source. Rules evaluated on the result
// can call the GeneratorFunctions helpers.
func (r Resolver) Resolve(ctx context.Context, opts ...builderopts.Option) (*builderopts.Options[map[string]any], error) {
	if r.Settings == nil {
		return nil, ErrStoreRequired
	}
	catalogue := r.Catalogue
	if len(catalogue) == 0 {
		catalogue = builderopts.DefaultCatalogue()
	}

	defaults := map[string]any{}
	persisted := map[string]any{}
	for _, id := range catalogue.Options() {
		defaults[id.Name()] = false
		value, ok, err := r.Settings.Lookup(ctx, id.Key())
		if err != nil {
			return nil, fmt.Errorf("state: load %q: %w", id.Key(), err)
		}
		if ok {
			persisted[id.Name()] = value
		}
	}

	stack, err := builderopts.NewStack(
		builderopts.NewLayer(builderopts.DefaultsScope(), defaults),
		builderopts.NewLayer(builderopts.SettingsScope(), persisted, r.SnapshotID),
	)
	if err != nil {
		return nil, fmt.Errorf("state: stack: %w", err)
	}
	opts = append(append([]builderopts.Option(nil), opts...), builderopts.WithGeneratorFunctions())
	return stack.Merge(opts...)
}

// ResolveSettings resolves and hydrates the typed generator settings.
func (r Resolver) ResolveSettings(ctx context.Context) (builderopts.GeneratorSettings, error) {
	resolved, err := r.Resolve(ctx)
	if err != nil {
		return builderopts.GeneratorSettings{}, err
	}
	return builderopts.DecodeGeneratorSettings(resolved.Value)
}
