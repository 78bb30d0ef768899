package openapi

import (
	userstyle "github.com/goliatone/go-userstyle"
)

type generator struct {
	config generatorConfig
}

// NewGenerator constructs a generator that describes a style schema as the
// body of an update operation and a read operation on one resource path.
func NewGenerator(opts ...GeneratorOption) userstyle.SchemaGenerator {
	config := defaultGeneratorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&config)
		}
	}
	return generator{config: config}
}

func (g generator) Generate(schema *userstyle.UserStyleSchema) (userstyle.SchemaDocument, error) {
	fingerprint := ""
	if schema != nil {
		fingerprint = schema.Fingerprint()
	}
	root := styleSchema(userstyle.DescribeSchema(schema), g.config.extensions)
	document, err := newDocumentBuilder(g.config, root, fingerprint).build()
	if err != nil {
		return userstyle.SchemaDocument{}, err
	}
	return userstyle.SchemaDocument{
		Format:      userstyle.SchemaFormatOpenAPI,
		Fingerprint: fingerprint,
		Document:    document,
	}, nil
}

// styleSchema maps each setting to a property typed the way the wire values
// of its kind are written in flavor documents.
func styleSchema(descriptors []userstyle.SettingDescriptor, extensions bool) map[string]any {
	properties := make(map[string]any, len(descriptors))
	for _, desc := range descriptors {
		properties[desc.ID] = propertySchema(desc, extensions)
	}
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
}

func propertySchema(desc userstyle.SettingDescriptor, extensions bool) map[string]any {
	property := map[string]any{
		"title":   desc.DisplayName,
		"default": desc.Default,
	}
	if desc.Description != "" {
		property["description"] = desc.Description
	}

	switch desc.Kind {
	case userstyle.KindBoolean.String():
		property["type"] = "boolean"
	case userstyle.KindDoubleRange.String():
		property["type"] = "number"
		property["format"] = "double"
		property["minimum"] = desc.Min
		property["maximum"] = desc.Max
	case userstyle.KindLongRange.String():
		property["type"] = "integer"
		property["format"] = "int64"
		property["minimum"] = desc.Min
		property["maximum"] = desc.Max
	case userstyle.KindList.String(), userstyle.KindComplicationSlots.String():
		property["type"] = "string"
		enum := make([]any, len(desc.Options))
		for i, option := range desc.Options {
			enum[i] = option.ID
		}
		property["enum"] = enum
	default:
		property["type"] = "string"
		property["format"] = "byte"
		delete(property, "default")
	}

	if extensions {
		property["x-userstyle"] = extension(desc)
	}
	return property
}

func extension(desc userstyle.SettingDescriptor) map[string]any {
	ext := map[string]any{
		"kind":      desc.Kind,
		"ordinal":   desc.Ordinal,
		"layers":    desc.Layers,
		"hasParent": desc.HasParent,
	}
	if desc.MaxBytes > 0 {
		ext["maxBytes"] = desc.MaxBytes
	}
	if len(desc.Options) > 0 {
		options := make([]any, len(desc.Options))
		for i, option := range desc.Options {
			entry := map[string]any{"id": option.ID}
			if option.DisplayName != "" {
				entry["title"] = option.DisplayName
			}
			if len(option.Children) > 0 {
				entry["children"] = append([]string(nil), option.Children...)
			}
			if len(option.Slots) > 0 {
				entry["slots"] = append([]int(nil), option.Slots...)
			}
			options[i] = entry
		}
		ext["options"] = options
	}
	return ext
}
