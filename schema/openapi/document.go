package openapi

import (
	"fmt"
	"sort"

	userstyle "github.com/goliatone/go-userstyle"
)

// documentBuilder lays out one resource path with an update operation taking
// the style as request body and an optional read operation returning it.
type documentBuilder struct {
	config      generatorConfig
	registry    *componentRegistry
	style       map[string]any
	fingerprint string
	refs        map[string]any
}

func newDocumentBuilder(config generatorConfig, style map[string]any, fingerprint string) *documentBuilder {
	return &documentBuilder{
		config:      config,
		registry:    newComponentRegistry(),
		style:       style,
		fingerprint: fingerprint,
		refs:        map[string]any{},
	}
}

func (b *documentBuilder) build() (map[string]any, error) {
	if b.style == nil {
		return nil, fmt.Errorf("openapi: style schema cannot be nil")
	}
	b.refs[StyleComponent] = b.style
	if b.config.rootComponent != "" {
		b.refs[StyleComponent] = map[string]any{"$ref": b.registry.register(b.config.rootComponent, b.style)}
	}

	path := map[string]any{}
	update, err := b.operation(b.config.update, true)
	if err != nil {
		return nil, err
	}
	path[b.config.update.Method] = update
	if !b.config.read.disabled {
		if b.config.read.Method == b.config.update.Method {
			return nil, fmt.Errorf("openapi: read and update share method %q", b.config.read.Method)
		}
		read, err := b.operation(b.config.read, false)
		if err != nil {
			return nil, err
		}
		path[b.config.read.Method] = read
	}

	document := map[string]any{
		"openapi": b.config.openAPIVersion,
		"info":    b.info(),
		"paths":   map[string]any{b.config.path: path},
	}
	if components := b.registry.componentsMap(); components != nil {
		document["components"] = map[string]any{"schemas": components}
	}
	if err := validateDocument(document); err != nil {
		return nil, err
	}
	return document, nil
}

func (b *documentBuilder) info() map[string]any {
	info := map[string]any{
		"title":   b.config.info.Title,
		"version": b.config.info.Version,
	}
	if b.config.info.Description != "" {
		info["description"] = b.config.info.Description
	}
	if b.fingerprint != "" {
		info["x-userstyle-fingerprint"] = b.fingerprint
	}
	return info
}

func (b *documentBuilder) operation(cfg operationConfig, withBody bool) (map[string]any, error) {
	if cfg.Method == "" {
		return nil, fmt.Errorf("openapi: operation %q has no method", cfg.OperationID)
	}
	operationID := cfg.OperationID
	if operationID == "" {
		operationID = cfg.Method + ":" + b.config.path
	}

	statuses := make([]string, 0, len(cfg.Responses))
	for status := range cfg.Responses {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	responses := make(map[string]any, len(statuses))
	for _, status := range statuses {
		resp := cfg.Responses[status]
		entry := map[string]any{"description": resp.Description}
		if resp.Body != "" {
			schema, err := b.bodySchema(resp.Body)
			if err != nil {
				return nil, err
			}
			entry["content"] = b.content(schema)
		}
		responses[status] = entry
	}

	operation := map[string]any{
		"operationId": operationID,
		"responses":   responses,
	}
	if cfg.Summary != "" {
		operation["summary"] = cfg.Summary
	}
	if withBody {
		operation["requestBody"] = map[string]any{
			"required": true,
			"content":  b.content(b.refs[StyleComponent]),
		}
	}
	return operation, nil
}

func (b *documentBuilder) content(schema any) map[string]any {
	return map[string]any{
		b.config.contentType: map[string]any{"schema": schema},
	}
}

// bodySchema resolves a response body component, registering the error
// component the first time it is used.
func (b *documentBuilder) bodySchema(name string) (any, error) {
	if schema, ok := b.refs[name]; ok {
		return schema, nil
	}
	if name != ErrorComponent {
		return nil, fmt.Errorf("openapi: unknown body component %q", name)
	}
	ref := map[string]any{"$ref": b.registry.register(ErrorComponent, errorSchema())}
	b.refs[name] = ref
	return ref, nil
}

// errorSchema mirrors userstyle.ValidationError for update rejections.
func errorSchema() map[string]any {
	codes := userstyle.UpdateErrorCodes()
	enum := make([]any, len(codes))
	for i, code := range codes {
		enum[i] = string(code)
	}
	return map[string]any{
		"type":     "object",
		"required": []any{"code"},
		"properties": map[string]any{
			"code":      map[string]any{"type": "string", "enum": enum},
			"settingId": map[string]any{"type": "string"},
			"message":   map[string]any{"type": "string"},
		},
	}
}

func validateDocument(document map[string]any) error {
	if document == nil {
		return fmt.Errorf("openapi: document cannot be nil")
	}
	if version, _ := document["openapi"].(string); version == "" {
		return fmt.Errorf("openapi: document missing version string")
	}
	info, _ := document["info"].(map[string]any)
	if info == nil {
		return fmt.Errorf("openapi: document missing info section")
	}
	if title, _ := info["title"].(string); title == "" {
		return fmt.Errorf("openapi: info.title must be set")
	}
	if version, _ := info["version"].(string); version == "" {
		return fmt.Errorf("openapi: info.version must be set")
	}
	paths, _ := document["paths"].(map[string]any)
	if len(paths) == 0 {
		return fmt.Errorf("openapi: document must define at least one path")
	}
	for pathKey, pathValue := range paths {
		pathItem, _ := pathValue.(map[string]any)
		if len(pathItem) == 0 {
			return fmt.Errorf("openapi: path %q missing operations", pathKey)
		}
		for method, operationValue := range pathItem {
			operation, _ := operationValue.(map[string]any)
			if operation == nil {
				return fmt.Errorf("openapi: operation %s %s invalid payload", method, pathKey)
			}
			if _, ok := operation["operationId"].(string); !ok {
				return fmt.Errorf("openapi: operation %s %s missing operationId", method, pathKey)
			}
			if responses, _ := operation["responses"].(map[string]any); len(responses) == 0 {
				return fmt.Errorf("openapi: operation %s %s missing responses", method, pathKey)
			}
		}
	}
	return nil
}
