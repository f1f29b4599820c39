package builderopts

import "fmt"

// NoneLabel is the label of the choice alternative that activates nothing.
const NoneLabel = "None"

// Descriptor is the immutable definition of one configurable setting. The set
// of variants is closed: Toggle and Choice.
type Descriptor interface {
	Caption() string
	Shortcut() rune
	Tooltip() string
	// Accept dispatches to the visitor method matching the variant.
	Accept(DescriptorVisitor) error

	sealed()
}

// DescriptorVisitor handles every Descriptor variant. Implementations fail to
// compile when a variant is added, which keeps consumers exhaustive.
type DescriptorVisitor interface {
	VisitToggle(Toggle) error
	VisitChoice(Choice) error
}

// DescriptorOption configures optional descriptor metadata.
type DescriptorOption func(*descriptorConfig)

type descriptorConfig struct {
	tooltip string
}

// WithTooltip attaches help text shown next to the setting.
func WithTooltip(text string) DescriptorOption {
	return func(cfg *descriptorConfig) {
		cfg.tooltip = text
	}
}

func applyDescriptorOptions(opts []DescriptorOption) descriptorConfig {
	cfg := descriptorConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

type caption struct {
	text     string
	shortcut rune
	tooltip  string
}

func (c caption) Caption() string { return c.text }
func (c caption) Shortcut() rune  { return c.shortcut }
func (c caption) Tooltip() string { return c.tooltip }

// Toggle is a binary setting backed by exactly one identity.
type Toggle struct {
	caption
	option OptionID
}

// NewToggle builds a Toggle. It panics when id is not a valid identity.
func NewToggle(id OptionID, text string, shortcut rune, opts ...DescriptorOption) Toggle {
	if !id.Valid() {
		panic(fmt.Sprintf("builderopts: toggle %q has invalid option %s", text, id))
	}
	cfg := applyDescriptorOptions(opts)
	return Toggle{
		caption: caption{text: text, shortcut: shortcut, tooltip: cfg.tooltip},
		option:  id,
	}
}

// Option returns the identity persisted by the toggle.
func (t Toggle) Option() OptionID { return t.option }

func (t Toggle) Accept(v DescriptorVisitor) error { return v.VisitToggle(t) }

func (Toggle) sealed() {}

// Alternative is one labelled entry of a Choice. Option is NoOption for the
// sentinel entry.
type Alternative struct {
	Label  string
	Option OptionID
}

// None returns the sentinel alternative.
func None() Alternative {
	return Alternative{Label: NoneLabel}
}

// Alt pairs label with id.
func Alt(label string, id OptionID) Alternative {
	return Alternative{Label: label, Option: id}
}

// IsNone reports whether the alternative activates no identity.
func (a Alternative) IsNone() bool {
	return a.Option == NoOption
}

// Choice is a group of mutually exclusive alternatives; exactly one label is
// selected at any time.
type Choice struct {
	caption
	alternatives []Alternative
}

// NewChoice builds a Choice keeping the order of alternatives. A malformed
// group (no alternatives, blank or duplicate labels, an identity listed twice
// or an invalid identity) is a programming error and panics.
func NewChoice(text string, shortcut rune, alternatives []Alternative, opts ...DescriptorOption) Choice {
	if len(alternatives) == 0 {
		panic(fmt.Sprintf("builderopts: choice %q has no alternatives", text))
	}
	labels := make(map[string]struct{}, len(alternatives))
	options := make(map[OptionID]struct{}, len(alternatives))
	for _, alt := range alternatives {
		if alt.Label == "" {
			panic(fmt.Sprintf("builderopts: choice %q has a blank label", text))
		}
		if _, dup := labels[alt.Label]; dup {
			panic(fmt.Sprintf("builderopts: choice %q repeats label %q", text, alt.Label))
		}
		labels[alt.Label] = struct{}{}
		if alt.IsNone() {
			continue
		}
		if !alt.Option.Valid() {
			panic(fmt.Sprintf("builderopts: choice %q label %q has invalid option %s", text, alt.Label, alt.Option))
		}
		if _, dup := options[alt.Option]; dup {
			panic(fmt.Sprintf("builderopts: choice %q repeats option %s", text, alt.Option))
		}
		options[alt.Option] = struct{}{}
	}
	cfg := applyDescriptorOptions(opts)
	return Choice{
		caption:      caption{text: text, shortcut: shortcut, tooltip: cfg.tooltip},
		alternatives: append([]Alternative(nil), alternatives...),
	}
}

// Alternatives returns a copy of the labelled entries in presentation order.
func (c Choice) Alternatives() []Alternative {
	return append([]Alternative(nil), c.alternatives...)
}

// Labels returns the labels in presentation order.
func (c Choice) Labels() []string {
	out := make([]string, len(c.alternatives))
	for i, alt := range c.alternatives {
		out[i] = alt.Label
	}
	return out
}

// Lookup finds the alternative carrying label.
func (c Choice) Lookup(label string) (Alternative, bool) {
	for _, alt := range c.alternatives {
		if alt.Label == label {
			return alt, true
		}
	}
	return Alternative{}, false
}

// Options returns the identities of the group, skipping the sentinel.
func (c Choice) Options() []OptionID {
	out := make([]OptionID, 0, len(c.alternatives))
	for _, alt := range c.alternatives {
		if !alt.IsNone() {
			out = append(out, alt.Option)
		}
	}
	return out
}

// DefaultLabel is selected when no identity of the group is persisted true:
// the first sentinel label, or the first label for groups without one.
func (c Choice) DefaultLabel() string {
	for _, alt := range c.alternatives {
		if alt.IsNone() {
			return alt.Label
		}
	}
	if len(c.alternatives) == 0 {
		return ""
	}
	return c.alternatives[0].Label
}

func (c Choice) Accept(v DescriptorVisitor) error { return v.VisitChoice(c) }

func (Choice) sealed() {}
