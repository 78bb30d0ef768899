package openapi

import (
	"encoding/json"
	"testing"

	userstyle "github.com/goliatone/go-userstyle"
)

func TestNewGeneratorOptions(t *testing.T) {
	custom := NewGenerator(
		WithOpenAPIVersion("3.1.0"),
		WithInfo("Analog Face", "2.0.0", WithInfoDescription("analog face style")),
		WithPath("/faces/analog/style"),
		WithUpdateOperation("POST", "setAnalogStyle", WithOperationSummary("Set style"), WithResponse("201", "Created", "")),
		WithReadOperation("", "fetchAnalogStyle"),
		WithContentType("application/x-www-form-urlencoded"),
		WithRootComponent(""),
		WithDescriptions(false),
	)

	internal, ok := custom.(generator)
	if !ok {
		t.Fatalf("expected generator implementation, got %T", custom)
	}
	cfg := internal.config

	if cfg.openAPIVersion != "3.1.0" || cfg.path != "/faces/analog/style" {
		t.Fatalf("unexpected version or path: %+v", cfg)
	}
	if cfg.info.Title != "Analog Face" || cfg.info.Description != "analog face style" {
		t.Fatalf("unexpected info %+v", cfg.info)
	}
	if cfg.update.Method != "post" || cfg.update.OperationID != "setAnalogStyle" || cfg.update.Summary != "Set style" {
		t.Fatalf("unexpected update operation %+v", cfg.update)
	}
	if got := cfg.update.Responses["201"].Description; got != "Created" {
		t.Fatalf("expected response description Created, got %q", got)
	}
	if got := cfg.update.Responses["422"].Body; got != ErrorComponent {
		t.Fatalf("expected default 422 response to remain configured, got %q", got)
	}
	if cfg.read.Method != "get" || cfg.read.OperationID != "fetchAnalogStyle" {
		t.Fatalf("unexpected read operation %+v", cfg.read)
	}
	if cfg.rootComponent != "" || cfg.extensions {
		t.Fatalf("expected inline root without extensions, got %+v", cfg)
	}
}

func TestGeneratorDescribesEveryKind(t *testing.T) {
	schema := testSchema(t)

	doc, err := NewGenerator().Generate(schema)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if doc.Format != userstyle.SchemaFormatOpenAPI {
		t.Fatalf("expected openapi format, got %q", doc.Format)
	}
	if doc.Fingerprint != schema.Fingerprint() {
		t.Fatalf("expected fingerprint %s, got %s", schema.Fingerprint(), doc.Fingerprint)
	}

	document := doc.Document.(map[string]any)
	body := requestSchema(t, document, "/userstyle", "put")
	if ref, _ := body["$ref"].(string); ref != "#/components/schemas/UserStyle" {
		t.Fatalf("expected component reference, got %v", body)
	}
	root := document["components"].(map[string]any)["schemas"].(map[string]any)["UserStyle"].(map[string]any)
	properties := root["properties"].(map[string]any)

	cases := []struct {
		id       string
		typeName string
		format   string
	}{
		{"show_ticks", "boolean", ""},
		{"hand_width", "number", "double"},
		{"minute_step", "integer", "int64"},
		{"color", "string", ""},
		{string(userstyle.CustomValueSettingID), "string", "byte"},
	}
	for _, tc := range cases {
		t.Run(tc.id, func(t *testing.T) {
			property, ok := properties[tc.id].(map[string]any)
			if !ok {
				t.Fatalf("expected property %s, got %v", tc.id, properties)
			}
			if property["type"] != tc.typeName {
				t.Fatalf("expected type %s, got %v", tc.typeName, property["type"])
			}
			if tc.format != "" && property["format"] != tc.format {
				t.Fatalf("expected format %s, got %v", tc.format, property["format"])
			}
			if _, ok := property["x-userstyle"].(map[string]any); !ok {
				t.Fatalf("expected x-userstyle extension, got %v", property)
			}
		})
	}

	color := properties["color"].(map[string]any)
	enum := color["enum"].([]any)
	if len(enum) != 2 || enum[0] != "red" || enum[1] != "blue" {
		t.Fatalf("unexpected enum %v", enum)
	}
	if color["default"] != "red" {
		t.Fatalf("expected default red, got %v", color["default"])
	}
	width := properties["hand_width"].(map[string]any)
	if width["minimum"] != 1.0 || width["maximum"] != 4.0 || width["default"] != 2.0 {
		t.Fatalf("unexpected range bounds %v", width)
	}

	if _, err := json.Marshal(document); err != nil {
		t.Fatalf("document not serialisable: %v", err)
	}
}

func TestGeneratorInlineRootWithoutExtensions(t *testing.T) {
	doc, err := NewGenerator(WithRootComponent(""), WithDescriptions(false)).Generate(testSchema(t))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	document := doc.Document.(map[string]any)
	schemas := document["components"].(map[string]any)["schemas"].(map[string]any)
	if _, ok := schemas[StyleComponent]; ok || len(schemas) != 1 {
		t.Fatalf("expected only the error component, got %v", schemas)
	}
	body := requestSchema(t, document, "/userstyle", "put")
	properties := body["properties"].(map[string]any)
	if _, ok := properties["show_ticks"].(map[string]any)["x-userstyle"]; ok {
		t.Fatalf("expected extensions disabled")
	}
}

func TestGeneratorReadOperationAndRejections(t *testing.T) {
	schema := testSchema(t)
	doc, err := NewGenerator().Generate(schema)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	document := doc.Document.(map[string]any)
	if got := document["info"].(map[string]any)["x-userstyle-fingerprint"]; got != schema.Fingerprint() {
		t.Fatalf("expected fingerprint in info, got %v", got)
	}

	path := document["paths"].(map[string]any)["/userstyle"].(map[string]any)
	read := path["get"].(map[string]any)
	if read["operationId"] != "getUserStyle" {
		t.Fatalf("unexpected read operation %v", read)
	}
	if _, ok := read["requestBody"]; ok {
		t.Fatalf("expected read operation without request body")
	}
	ok200 := read["responses"].(map[string]any)["200"].(map[string]any)
	if ref := responseSchema(t, ok200)["$ref"]; ref != "#/components/schemas/UserStyle" {
		t.Fatalf("expected style reference, got %v", ref)
	}

	rejected := path["put"].(map[string]any)["responses"].(map[string]any)["422"].(map[string]any)
	if ref := responseSchema(t, rejected)["$ref"]; ref != "#/components/schemas/ValidationError" {
		t.Fatalf("expected error reference, got %v", ref)
	}
	if _, ok := path["put"].(map[string]any)["responses"].(map[string]any)["204"].(map[string]any)["content"]; ok {
		t.Fatalf("expected 204 without content")
	}
	errSchema := document["components"].(map[string]any)["schemas"].(map[string]any)[ErrorComponent].(map[string]any)
	code := errSchema["properties"].(map[string]any)["code"].(map[string]any)
	enum := code["enum"].([]any)
	if len(enum) != 2 || enum[0] != string(userstyle.ErrCodeUnknownSetting) || enum[1] != string(userstyle.ErrCodeKindMismatch) {
		t.Fatalf("unexpected error codes %v", enum)
	}

	doc, err = NewGenerator(WithoutReadOperation()).Generate(schema)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	path = doc.Document.(map[string]any)["paths"].(map[string]any)["/userstyle"].(map[string]any)
	if _, ok := path["get"]; ok || len(path) != 1 {
		t.Fatalf("expected update operation only, got %v", path)
	}

	if _, err := NewGenerator(WithReadOperation("PUT", "")).Generate(schema); err == nil {
		t.Fatalf("expected method clash error")
	}
	if _, err := NewGenerator(WithUpdateOperation("", "", WithResponse("409", "Conflict", "Missing"))).Generate(schema); err == nil {
		t.Fatalf("expected unknown body component error")
	}
}

func TestGeneratorNilSchema(t *testing.T) {
	doc, err := NewGenerator().Generate(nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if doc.Fingerprint != "" {
		t.Fatalf("expected empty fingerprint, got %q", doc.Fingerprint)
	}
}

func TestValidateDocumentRejectsIncomplete(t *testing.T) {
	if err := validateDocument(nil); err == nil {
		t.Fatalf("expected nil document error")
	}
	if err := validateDocument(map[string]any{"openapi": "3.0.3"}); err == nil {
		t.Fatalf("expected missing info error")
	}
}

func TestSanitizeComponentName(t *testing.T) {
	registry := newComponentRegistry()
	first := registry.register("user style", map[string]any{})
	second := registry.register("user style", map[string]any{})
	if first != "#/components/schemas/user_style" || second != "#/components/schemas/user_style1" {
		t.Fatalf("unexpected references %q %q", first, second)
	}
	if got := sanitizeComponentName("9face"); got != "_9face" {
		t.Fatalf("expected leading underscore, got %q", got)
	}
}

func requestSchema(t *testing.T, document map[string]any, path, method string) map[string]any {
	t.Helper()
	paths := document["paths"].(map[string]any)
	operation, ok := paths[path].(map[string]any)[method].(map[string]any)
	if !ok {
		t.Fatalf("expected %s %s operation, got %v", method, path, paths)
	}
	content := operation["requestBody"].(map[string]any)["content"].(map[string]any)
	return content["application/json"].(map[string]any)["schema"].(map[string]any)
}

func responseSchema(t *testing.T, response map[string]any) map[string]any {
	t.Helper()
	content, ok := response["content"].(map[string]any)
	if !ok {
		t.Fatalf("expected response content, got %v", response)
	}
	return content["application/json"].(map[string]any)["schema"].(map[string]any)
}

func testSchema(t *testing.T) *userstyle.UserStyleSchema {
	t.Helper()
	ticks, err := userstyle.NewBooleanSetting("show_ticks", userstyle.Text("Ticks"), userstyle.LayerBase, true)
	must(t, err)
	width, err := userstyle.NewDoubleRangeSetting("hand_width", userstyle.Text("Hand width"), userstyle.LayerBase, 1, 4, 2)
	must(t, err)
	step, err := userstyle.NewLongRangeSetting("minute_step", userstyle.Text("Minute step"), userstyle.LayerBase, 1, 15, 5)
	must(t, err)
	red, err := userstyle.NewListOption(userstyle.OptionID("red"), userstyle.Text("Red"))
	must(t, err)
	blue, err := userstyle.NewListOption(userstyle.OptionID("blue"), userstyle.Text("Blue"))
	must(t, err)
	color, err := userstyle.NewListSetting("color", userstyle.Text("Color"), userstyle.LayerBase, []*userstyle.ListOption{red, blue}, 0)
	must(t, err)
	custom, err := userstyle.NewCustomValueSetting(userstyle.LayerBase, []byte("seed"))
	must(t, err)

	schema, err := userstyle.NewUserStyleSchema([]userstyle.Setting{ticks, width, step, color, custom})
	must(t, err)
	return schema
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
