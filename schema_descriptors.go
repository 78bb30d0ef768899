package userstyle

// SchemaFormat identifies the representation a schema document encodes.
type SchemaFormat string

const (
	// SchemaFormatDescriptors is a flat list of SettingDescriptor values.
	SchemaFormatDescriptors SchemaFormat = "descriptors"
	// SchemaFormatOpenAPI is an OpenAPI 3 document.
	SchemaFormatOpenAPI SchemaFormat = "openapi"
)

// SchemaDocument is a generated description of a schema. Document must be
// JSON-serialisable.
type SchemaDocument struct {
	Format      SchemaFormat
	Fingerprint string
	Document    any
}

// SchemaGenerator describes a UserStyleSchema for editors and companion apps.
// Implementations must be safe for concurrent use.
type SchemaGenerator interface {
	Generate(schema *UserStyleSchema) (SchemaDocument, error)
}

// SettingDescriptor is the editor-facing summary of one setting.
type SettingDescriptor struct {
	ID          string             `json:"id"`
	Kind        string             `json:"kind"`
	Ordinal     int                `json:"ordinal"`
	DisplayName string             `json:"display_name"`
	Description string             `json:"description,omitempty"`
	Layers      string             `json:"layers"`
	Default     any                `json:"default"`
	Options     []OptionDescriptor `json:"options,omitempty"`
	Min         any                `json:"min,omitempty"`
	Max         any                `json:"max,omitempty"`
	MaxBytes    int                `json:"max_bytes,omitempty"`
	HasParent   bool               `json:"has_parent"`
}

// OptionDescriptor summarises a declared list or complication option.
type OptionDescriptor struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name,omitempty"`
	Children    []string `json:"children,omitempty"`
	Slots       []int    `json:"slots,omitempty"`
}

// DefaultSchemaGenerator returns the descriptor-based generator.
func DefaultSchemaGenerator() SchemaGenerator {
	return descriptorGenerator{}
}

type descriptorGenerator struct{}

func (descriptorGenerator) Generate(schema *UserStyleSchema) (SchemaDocument, error) {
	if schema == nil {
		return SchemaDocument{Format: SchemaFormatDescriptors, Document: []SettingDescriptor{}}, nil
	}
	return SchemaDocument{
		Format:      SchemaFormatDescriptors,
		Fingerprint: schema.Fingerprint(),
		Document:    DescribeSchema(schema),
	}, nil
}

// DescribeSchema returns one descriptor per setting in declaration order.
func DescribeSchema(schema *UserStyleSchema) []SettingDescriptor {
	if schema == nil {
		return nil
	}
	out := make([]SettingDescriptor, 0, schema.Len())
	for _, setting := range schema.Settings() {
		out = append(out, describeSetting(schema, setting))
	}
	return out
}

func describeSetting(schema *UserStyleSchema, setting Setting) SettingDescriptor {
	ordinal := schema.Ordinal(setting)
	desc := SettingDescriptor{
		ID:          string(setting.ID()),
		Kind:        setting.Kind().String(),
		Ordinal:     ordinal,
		DisplayName: resolveText(setting.DisplayName(), ordinal),
		Description: resolveText(setting.Description(), ordinal),
		Layers:      setting.AffectedLayers().String(),
		Default:     setting.DefaultOption().Value(),
		HasParent:   schema.HasParent(setting),
	}

	switch typed := setting.(type) {
	case *DoubleRangeSetting:
		desc.Min, desc.Max = typed.Min(), typed.Max()
	case *LongRangeSetting:
		desc.Min, desc.Max = typed.Min(), typed.Max()
	case *CustomValueSetting:
		desc.MaxBytes = MaxOptionIDLength
	case *LargeCustomValueSetting:
		desc.MaxBytes = MaxLargeOptionIDLength
	case *ListSetting:
		for _, option := range typed.ListOptions() {
			desc.Options = append(desc.Options, OptionDescriptor{
				ID:          option.ID().String(),
				DisplayName: resolveText(option.DisplayName(), ordinal),
				Children:    settingIDs(option.ChildSettings()),
			})
		}
		desc.Default = setting.DefaultOption().ID().String()
	case *ComplicationSlotsSetting:
		for _, option := range typed.SlotOptions() {
			var slots []int
			for _, overlay := range option.Overlays() {
				slots = append(slots, overlay.SlotID)
			}
			desc.Options = append(desc.Options, OptionDescriptor{
				ID:          option.ID().String(),
				DisplayName: resolveText(option.DisplayName(), ordinal),
				Slots:       slots,
			})
		}
		desc.Default = setting.DefaultOption().ID().String()
	}
	return desc
}

func settingIDs(settings []Setting) []string {
	if len(settings) == 0 {
		return nil
	}
	ids := make([]string, len(settings))
	for i, setting := range settings {
		ids[i] = string(setting.ID())
	}
	return ids
}
