// Package openapi renders a builder option catalogue as an OpenAPI 3 document
// describing the payload that stores the options.
package openapi

import (
	builderopts "github.com/goliatone/go-builder-options"
)

// ExtensionChoiceGroups lists mutually exclusive properties on the component
// schema. At most one property of a group may be true.
const ExtensionChoiceGroups = "x-choice-groups"

// ExtensionStorageKey carries the persisted settings key of a property.
const ExtensionStorageKey = "x-storage-key"

type generator struct {
	cfg generatorConfig
}

// NewGenerator constructs a catalogue to OpenAPI generator.
func NewGenerator(opts ...GeneratorOption) builderopts.SchemaGenerator {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return generator{cfg: cfg}
}

func (g generator) Generate(c builderopts.Catalogue) (builderopts.SchemaDocument, error) {
	props := &propertyBuilder{properties: map[string]any{}}
	for _, d := range c {
		if err := d.Accept(props); err != nil {
			return builderopts.SchemaDocument{}, err
		}
	}

	component := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props.properties,
	}
	if len(props.groups) > 0 {
		component[ExtensionChoiceGroups] = props.groups
	}

	document := map[string]any{
		"openapi": g.cfg.version,
		"info":    g.info(),
		"paths":   g.paths(),
		"components": map[string]any{
			"schemas": map[string]any{g.cfg.component: component},
		},
	}
	if err := validateDocument(document); err != nil {
		return builderopts.SchemaDocument{}, err
	}
	return builderopts.SchemaDocument{Format: builderopts.SchemaFormatOpenAPI, Document: document}, nil
}

func (g generator) info() map[string]any {
	out := map[string]any{
		"title":   g.cfg.info.title,
		"version": g.cfg.info.version,
	}
	if g.cfg.info.description != "" {
		out["description"] = g.cfg.info.description
	}
	return out
}

func (g generator) paths() map[string]any {
	responses := make(map[string]any, len(g.cfg.responses))
	for status, description := range g.cfg.responses {
		responses[status] = map[string]any{"description": description}
	}
	op := map[string]any{
		"operationId": g.cfg.operation.id,
		"requestBody": map[string]any{
			"required": true,
			"content": map[string]any{
				g.cfg.contentType: map[string]any{
					"schema": map[string]any{"$ref": "#/components/schemas/" + g.cfg.component},
				},
			},
		},
		"responses": responses,
	}
	if g.cfg.operation.summary != "" {
		op["summary"] = g.cfg.operation.summary
	}
	return map[string]any{
		g.cfg.operation.path: map[string]any{g.cfg.operation.method: op},
	}
}

type propertyBuilder struct {
	properties map[string]any
	groups     []any
}

func (b *propertyBuilder) VisitToggle(t builderopts.Toggle) error {
	b.properties[t.Option().Name()] = property(t.Option(), t.Caption(), t.Tooltip())
	return nil
}

func (b *propertyBuilder) VisitChoice(c builderopts.Choice) error {
	alternatives := make([]any, 0, len(c.Alternatives()))
	for _, alt := range c.Alternatives() {
		entry := map[string]any{"label": alt.Label}
		if !alt.IsNone() {
			entry["property"] = alt.Option.Name()
			b.properties[alt.Option.Name()] = property(alt.Option, c.Caption()+": "+alt.Label, c.Tooltip())
		}
		alternatives = append(alternatives, entry)
	}
	b.groups = append(b.groups, map[string]any{
		"caption":      c.Caption(),
		"default":      c.DefaultLabel(),
		"alternatives": alternatives,
	})
	return nil
}

func property(id builderopts.OptionID, title, description string) map[string]any {
	out := map[string]any{
		"type":              "boolean",
		"default":           false,
		"title":             title,
		ExtensionStorageKey: id.Key(),
	}
	if description != "" {
		out["description"] = description
	}
	return out
}
