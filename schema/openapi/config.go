package openapi

import (
	"strings"
)

// Component names the generator publishes under components/schemas.
const (
	StyleComponent = "UserStyle"
	ErrorComponent = "ValidationError"
)

type generatorConfig struct {
	openAPIVersion string
	info           openapiInfo
	path           string
	update         operationConfig
	read           operationConfig
	contentType    string
	rootComponent  string
	extensions     bool
}

type openapiInfo struct {
	Title       string
	Version     string
	Description string
}

type operationConfig struct {
	Method      string
	OperationID string
	Summary     string
	Responses   map[string]responseConfig
	disabled    bool
}

// responseConfig describes one status. Body names a component the response
// carries; empty means no content.
type responseConfig struct {
	Description string
	Body        string
}

func defaultGeneratorConfig() generatorConfig {
	return generatorConfig{
		openAPIVersion: "3.0.3",
		info: openapiInfo{
			Title:   "Watch Face Style",
			Version: "1.0.0",
		},
		path: "/userstyle",
		update: operationConfig{
			Method:      "put",
			OperationID: "updateUserStyle",
			Summary:     "Replace the active style",
			Responses: map[string]responseConfig{
				"204": {Description: "Style accepted"},
				"422": {Description: "Style rejected", Body: ErrorComponent},
			},
		},
		read: operationConfig{
			Method:      "get",
			OperationID: "getUserStyle",
			Summary:     "Read the active style",
			Responses: map[string]responseConfig{
				"200": {Description: "Active style", Body: StyleComponent},
			},
		},
		contentType:   "application/json",
		rootComponent: StyleComponent,
		extensions:    true,
	}
}

// GeneratorOption configures the OpenAPI generator behaviour.
type GeneratorOption func(*generatorConfig)

// WithOpenAPIVersion overrides the OpenAPI version string (default: 3.0.3).
func WithOpenAPIVersion(version string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if version == "" {
			return
		}
		cfg.openAPIVersion = version
	}
}

// InfoOption configures optional fields on the OpenAPI info section.
type InfoOption func(*openapiInfo)

// WithInfoDescription sets the info description.
func WithInfoDescription(description string) InfoOption {
	return func(info *openapiInfo) {
		info.Description = description
	}
}

// WithInfo configures the info block. Empty strings keep the defaults.
func WithInfo(title, version string, opts ...InfoOption) GeneratorOption {
	return func(cfg *generatorConfig) {
		if title != "" {
			cfg.info.Title = title
		}
		if version != "" {
			cfg.info.Version = version
		}
		for _, opt := range opts {
			if opt != nil {
				opt(&cfg.info)
			}
		}
	}
}

// WithPath sets the resource path both operations live under.
func WithPath(path string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if path != "" {
			cfg.path = path
		}
	}
}

// OperationOption configures optional operation metadata.
type OperationOption func(*operationConfig)

// WithOperationSummary attaches a summary to the operation.
func WithOperationSummary(summary string) OperationOption {
	return func(operation *operationConfig) {
		operation.Summary = summary
	}
}

// WithResponse registers or overrides the response for status. An empty
// body component leaves the response without content.
func WithResponse(status, description, body string) OperationOption {
	return func(operation *operationConfig) {
		if status == "" {
			return
		}
		if operation.Responses == nil {
			operation.Responses = map[string]responseConfig{}
		}
		resp := operation.Responses[status]
		if description != "" {
			resp.Description = description
		}
		resp.Body = body
		operation.Responses[status] = resp
	}
}

// WithUpdateOperation configures the operation that accepts a style. Empty
// inputs keep the defaults.
func WithUpdateOperation(method, operationID string, opts ...OperationOption) GeneratorOption {
	return func(cfg *generatorConfig) {
		configureOperation(&cfg.update, method, operationID, opts)
	}
}

// WithReadOperation configures the operation that returns the active style.
func WithReadOperation(method, operationID string, opts ...OperationOption) GeneratorOption {
	return func(cfg *generatorConfig) {
		configureOperation(&cfg.read, method, operationID, opts)
	}
}

// WithoutReadOperation drops the read operation from the document.
func WithoutReadOperation() GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.read.disabled = true
	}
}

func configureOperation(operation *operationConfig, method, operationID string, opts []OperationOption) {
	if method != "" {
		operation.Method = strings.ToLower(method)
	}
	if operationID != "" {
		operation.OperationID = operationID
	}
	for _, opt := range opts {
		if opt != nil {
			opt(operation)
		}
	}
}

// WithContentType sets the media type of request and response bodies.
func WithContentType(contentType string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if contentType == "" {
			return
		}
		cfg.contentType = contentType
	}
}

// WithRootComponent publishes the style schema under components with name
// and references it from every body. An empty name inlines it.
func WithRootComponent(name string) GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.rootComponent = name
	}
}

// WithDescriptions toggles the x-userstyle extension carrying kind, layers,
// ordinal and option metadata on every property.
func WithDescriptions(include bool) GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.extensions = include
	}
}
