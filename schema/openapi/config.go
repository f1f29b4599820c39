package openapi

import "strings"

type generatorConfig struct {
	version     string
	info        info
	operation   operation
	contentType string
	component   string
	responses   map[string]string
}

type info struct {
	title       string
	version     string
	description string
}

type operation struct {
	path    string
	method  string
	id      string
	summary string
}

func defaultConfig() generatorConfig {
	return generatorConfig{
		version: "3.0.3",
		info: info{
			title:   "Builder Generator Options",
			version: "1.0.0",
		},
		operation: operation{
			path:   "/builder-options",
			method: "put",
			id:     "putBuilderOptions",
		},
		contentType: "application/json",
		component:   "BuilderOptions",
		responses:   map[string]string{"204": "Settings stored"},
	}
}

// GeneratorOption configures the OpenAPI generator.
type GeneratorOption func(*generatorConfig)

// WithOpenAPIVersion overrides the document version (default 3.0.3).
func WithOpenAPIVersion(version string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if version != "" {
			cfg.version = version
		}
	}
}

// WithInfo sets the info block. Empty values keep the defaults.
func WithInfo(title, version, description string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if title != "" {
			cfg.info.title = title
		}
		if version != "" {
			cfg.info.version = version
		}
		cfg.info.description = description
	}
}

// WithOperation sets the operation that accepts the options payload.
func WithOperation(path, method, operationID, summary string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if path != "" {
			cfg.operation.path = path
		}
		if method != "" {
			cfg.operation.method = strings.ToLower(method)
		}
		if operationID != "" {
			cfg.operation.id = operationID
		}
		cfg.operation.summary = summary
	}
}

// WithContentType sets the request body media type.
func WithContentType(contentType string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if contentType != "" {
			cfg.contentType = contentType
		}
	}
}

// WithComponentName names the schema published under components.schemas.
func WithComponentName(name string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if name != "" {
			cfg.component = name
		}
	}
}

// WithResponse adds or replaces a response description for status.
func WithResponse(status, description string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if status == "" {
			return
		}
		if cfg.responses == nil {
			cfg.responses = map[string]string{}
		}
		cfg.responses[status] = description
	}
}
