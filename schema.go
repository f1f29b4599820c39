package builderopts

import "fmt"

// SchemaFormat names the shape of SchemaDocument.Document.
type SchemaFormat string

const (
	// SchemaFormatDescriptors is a []FieldDescriptor.
	SchemaFormatDescriptors SchemaFormat = "descriptors"
	// SchemaFormatOpenAPI is an OpenAPI 3 document as map[string]any.
	SchemaFormatOpenAPI SchemaFormat = "openapi"
)

// SchemaDocument is a generated description of a catalogue.
type SchemaDocument struct {
	Format   SchemaFormat
	Document any
}

// SchemaGenerator renders a catalogue into a schema document.
type SchemaGenerator interface {
	Generate(Catalogue) (SchemaDocument, error)
}

// FieldDescriptor describes one persisted identity.
type FieldDescriptor struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Caption  string `json:"caption"`
	Tooltip  string `json:"tooltip,omitempty"`
	Shortcut string `json:"shortcut,omitempty"`
	// Group is the caption of the owning choice, empty for toggles.
	Group string `json:"group,omitempty"`
	Label string `json:"label,omitempty"`
}

// Schema renders c with generator, or with the descriptor generator when none
// is given.
func (c Catalogue) Schema(generator ...SchemaGenerator) (SchemaDocument, error) {
	gen := DefaultSchemaGenerator()
	if len(generator) > 0 && generator[0] != nil {
		gen = generator[0]
	}
	doc, err := gen.Generate(c)
	if err != nil {
		return SchemaDocument{}, fmt.Errorf("builderopts: generate schema: %w", err)
	}
	return doc, nil
}

// DefaultSchemaGenerator returns the FieldDescriptor generator.
func DefaultSchemaGenerator() SchemaGenerator {
	return descriptorGenerator{}
}

type descriptorGenerator struct{}

func (descriptorGenerator) Generate(c Catalogue) (SchemaDocument, error) {
	fields := &fieldCollector{fields: []FieldDescriptor{}}
	for _, d := range c {
		if err := d.Accept(fields); err != nil {
			return SchemaDocument{}, err
		}
	}
	return SchemaDocument{Format: SchemaFormatDescriptors, Document: fields.fields}, nil
}

type fieldCollector struct {
	fields []FieldDescriptor
}

func (f *fieldCollector) VisitToggle(t Toggle) error {
	f.fields = append(f.fields, FieldDescriptor{
		Key:      t.Option().Key(),
		Name:     t.Option().Name(),
		Type:     "bool",
		Caption:  t.Caption(),
		Tooltip:  t.Tooltip(),
		Shortcut: shortcutString(t.Shortcut()),
	})
	return nil
}

func (f *fieldCollector) VisitChoice(c Choice) error {
	for _, alt := range c.Alternatives() {
		if alt.IsNone() {
			continue
		}
		f.fields = append(f.fields, FieldDescriptor{
			Key:      alt.Option.Key(),
			Name:     alt.Option.Name(),
			Type:     "bool",
			Caption:  c.Caption(),
			Tooltip:  c.Tooltip(),
			Shortcut: shortcutString(c.Shortcut()),
			Group:    c.Caption(),
			Label:    alt.Label,
		})
	}
	return nil
}

func shortcutString(r rune) string {
	if r == 0 {
		return ""
	}
	return string(r)
}
