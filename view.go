package builderopts

import (
	"context"
	"fmt"
)

// OptionView is the render-agnostic state of one descriptor inside a session.
// UI layers bind widgets to it; every change is written through to the store.
type OptionView interface {
	Option() Descriptor
	Accept(ViewVisitor) error
}

// ViewVisitor handles every OptionView variant.
type ViewVisitor interface {
	VisitToggleView(*ToggleView) error
	VisitChoiceView(*ChoiceView) error
}

// ToggleView binds a Toggle to its current boolean.
type ToggleView struct {
	core       *sessionCore
	descriptor Toggle
	value      bool
}

func (v *ToggleView) Option() Descriptor { return v.descriptor }

// Toggle returns the bound descriptor.
func (v *ToggleView) Toggle() Toggle { return v.descriptor }

// Value returns the current boolean.
func (v *ToggleView) Value() bool {
	v.core.mu.Lock()
	defer v.core.mu.Unlock()
	return v.value
}

// Set persists value immediately. A store failure aborts the session.
func (v *ToggleView) Set(ctx context.Context, value bool) error {
	key := v.descriptor.Option().Key()
	return v.core.writeThrough(ctx, func(prior priorValues) writePlan {
		plan := writePlan{
			assignments: []Assignment{{Key: key, Value: value}},
			commit:      func() { v.value = value },
		}
		if old := prior.value(key, v.value); old != value {
			plan.changes = []optionChange{{key: key, caption: v.descriptor.Caption(), oldValue: old, newValue: value}}
		}
		return plan
	})
}

func (v *ToggleView) Accept(visitor ViewVisitor) error { return visitor.VisitToggleView(v) }

// ChoiceView binds a Choice to its currently selected label.
type ChoiceView struct {
	core       *sessionCore
	descriptor Choice
	selected   string
}

func (v *ChoiceView) Option() Descriptor { return v.descriptor }

// Choice returns the bound descriptor.
func (v *ChoiceView) Choice() Choice { return v.descriptor }

// Labels returns the selectable labels in presentation order.
func (v *ChoiceView) Labels() []string { return v.descriptor.Labels() }

// Selected returns the current label.
func (v *ChoiceView) Selected() string {
	v.core.mu.Lock()
	defer v.core.mu.Unlock()
	return v.selected
}

// Select persists label: its identity becomes true and every other identity
// of the group false. The sentinel only clears the group. Unknown labels are
// rejected with ErrUnknownLabel and leave the session untouched.
//
// The false assignments are written before the single true one, so a store
// that fails part way leaves the group cleared rather than with two
// identities set.
func (v *ChoiceView) Select(ctx context.Context, label string) error {
	chosen, ok := v.descriptor.Lookup(label)
	if !ok {
		return fmt.Errorf("%w: %q for %q", ErrUnknownLabel, label, v.descriptor.Caption())
	}
	return v.core.writeThrough(ctx, func(prior priorValues) writePlan {
		previous, _ := v.descriptor.Lookup(v.selected)
		plan := writePlan{commit: func() { v.selected = chosen.Label }}
		var enable *Assignment
		for _, alt := range v.descriptor.alternatives {
			if alt.IsNone() {
				continue
			}
			key := alt.Option.Key()
			value := alt.Label == chosen.Label
			if value {
				enable = &Assignment{Key: key, Value: true}
			} else {
				plan.assignments = append(plan.assignments, Assignment{Key: key, Value: false})
			}
			old := prior.value(key, alt.Label == previous.Label)
			if old != value {
				plan.changes = append(plan.changes, optionChange{
					key:      key,
					caption:  v.descriptor.Caption(),
					oldValue: old,
					newValue: value,
				})
			}
		}
		if enable != nil {
			plan.assignments = append(plan.assignments, *enable)
		}
		return plan
	})
}

func (v *ChoiceView) Accept(visitor ViewVisitor) error { return visitor.VisitChoiceView(v) }

// viewBuilder seeds views from the store while the session is being built.
type viewBuilder struct {
	ctx   context.Context
	store SettingsStore
	core  *sessionCore
	views []OptionView
}

func (b *viewBuilder) VisitToggle(t Toggle) error {
	value, err := readOption(b.ctx, b.store, t.Option())
	if err != nil {
		return err
	}
	b.views = append(b.views, &ToggleView{core: b.core, descriptor: t, value: value})
	return nil
}

func (b *viewBuilder) VisitChoice(c Choice) error {
	selected, err := resolveChoice(b.ctx, b.store, c)
	if err != nil {
		return err
	}
	b.views = append(b.views, &ChoiceView{core: b.core, descriptor: c, selected: selected})
	return nil
}

// resolveChoice returns the label of the first alternative whose identity is
// persisted true, or the group default.
func resolveChoice(ctx context.Context, store SettingsStore, c Choice) (string, error) {
	for _, alt := range c.alternatives {
		if alt.IsNone() {
			continue
		}
		on, err := readOption(ctx, store, alt.Option)
		if err != nil {
			return "", err
		}
		if on {
			return alt.Label, nil
		}
	}
	return c.DefaultLabel(), nil
}
