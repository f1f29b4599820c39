package builderopts

import (
	"errors"
	"fmt"
)

// ErrDuplicateOption indicates two descriptors of a catalogue claim the same identity.
var ErrDuplicateOption = errors.New("builderopts: option claimed by more than one descriptor")

// Catalogue is the ordered set of descriptors presented to the user. Order is
// presentation order only.
type Catalogue []Descriptor

// NewCatalogue validates that every identity is owned by a single descriptor.
func NewCatalogue(descriptors ...Descriptor) (Catalogue, error) {
	seen := make(map[OptionID]int, len(descriptors))
	for i, d := range descriptors {
		if d == nil {
			return nil, fmt.Errorf("builderopts: descriptor %d is nil", i)
		}
		for _, id := range descriptorOptions(d) {
			if prev, ok := seen[id]; ok {
				return nil, fmt.Errorf("%w: %s (descriptors %d and %d)", ErrDuplicateOption, id, prev, i)
			}
			seen[id] = i
		}
	}
	return append(Catalogue(nil), descriptors...), nil
}

// DefaultCatalogue returns the builder generator settings. It performs no
// store access and returns equal values on every call.
func DefaultCatalogue() Catalogue {
	prefixes := []Alternative{
		None(),
		Alt("'with'", WithNotation),
		Alt("'set'", SetNotation),
	}
	catalogue, err := NewCatalogue(
		NewToggle(FinalSetters, "Generate builder methods for final fields", 'f'),
		NewToggle(MakeFieldsFinal, "Make original fields final for builder methods", 'm'),
		NewToggle(NewBuilderMethod, "Generate static newBuilder() method", 'n'),
		NewToggle(CopyConstructor, "Generate builder copy constructor", 'o'),
		NewChoice("Prefix for builder methods", 'p', prefixes,
			WithTooltip("Generate builder methods that start with the select prefix or None, for example: "+
				"builder.withName(String name)")),
		NewToggle(JSR305Annotations, "Add JSR-305 @Nonnull annotation", 'j',
			WithTooltip("Add @Nonnull annotations to generated methods and parameters, for example: "+
				"@Nonnull public Builder withName(@Nonnull String name) { ... }")),
		NewToggle(FindbugsAnnotation, "Add Findbugs @NonNull annotation", 'b',
			WithTooltip("Add @NonNull annotations to generated methods and parameters, for example: "+
				"@NonNull public Builder withName(@NonNull String name) { ... }")),
		NewToggle(WithJavadoc, "Add Javadoc", 'c',
			WithTooltip("Add Javadoc to generated builder class and methods")),
	)
	if err != nil {
		panic(err)
	}
	return catalogue
}

// Options lists every identity referenced by the catalogue in presentation order.
func (c Catalogue) Options() []OptionID {
	var out []OptionID
	for _, d := range c {
		out = append(out, descriptorOptions(d)...)
	}
	return out
}

// Toggles returns the toggle descriptors in order.
func (c Catalogue) Toggles() []Toggle {
	var out []Toggle
	for _, d := range c {
		if t, ok := d.(Toggle); ok {
			out = append(out, t)
		}
	}
	return out
}

// Choices returns the choice descriptors in order.
func (c Catalogue) Choices() []Choice {
	var out []Choice
	for _, d := range c {
		if ch, ok := d.(Choice); ok {
			out = append(out, ch)
		}
	}
	return out
}

// Descriptor returns the descriptor that owns id.
func (c Catalogue) Descriptor(id OptionID) (Descriptor, bool) {
	for _, d := range c {
		for _, owned := range descriptorOptions(d) {
			if owned == id {
				return d, true
			}
		}
	}
	return nil, false
}

type optionCollector struct {
	ids []OptionID
}

func (o *optionCollector) VisitToggle(t Toggle) error {
	o.ids = append(o.ids, t.Option())
	return nil
}

func (o *optionCollector) VisitChoice(c Choice) error {
	o.ids = append(o.ids, c.Options()...)
	return nil
}

func descriptorOptions(d Descriptor) []OptionID {
	collector := &optionCollector{}
	_ = d.Accept(collector)
	return collector.ids
}
