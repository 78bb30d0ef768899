package userstyle

// ComplicationSlotsSetting selects which complication slot overlays apply.
// Its affected layers always include LayerComplications.
type ComplicationSlotsSetting struct {
	settingBase
}

// NewComplicationSlotsSetting builds a complication slots setting.
func NewComplicationSlotsSetting(id SettingID, displayName DisplayText, layers WatchFaceLayer, options []*ComplicationSlotsOption, defaultIndex int, attrs ...SettingAttr) (*ComplicationSlotsSetting, error) {
	if !layers.Has(LayerComplications) {
		return nil, newValidationError(ErrCodeInvalidLayers, string(id), "affected layers %s must include complications", layers)
	}
	generic := make([]Option, 0, len(options))
	for i, option := range options {
		if option == nil {
			return nil, newValidationError(ErrCodeMissingField, string(id), "option %d is nil", i)
		}
		generic = append(generic, option)
	}
	base, err := newSettingBase(KindComplicationSlots, id, displayName, layers, generic, defaultIndex, attrs)
	if err != nil {
		return nil, err
	}
	return &ComplicationSlotsSetting{settingBase: base}, nil
}

// SlotOptions returns the typed options in order.
func (s *ComplicationSlotsSetting) SlotOptions() []*ComplicationSlotsOption {
	out := make([]*ComplicationSlotsOption, 0, len(s.options))
	for _, option := range s.options {
		out = append(out, option.(*ComplicationSlotsOption))
	}
	return out
}
