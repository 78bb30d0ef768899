package userstyle

// ActiveSettings lists the settings reachable from the roots when following
// the options selected in style, in depth-first order. Settings missing from
// style follow their default option.
func (s *UserStyleSchema) ActiveSettings(style *UserStyle) []Setting {
	var active []Setting
	seen := make(map[Setting]struct{}, len(s.settings))
	var walk func(Setting)
	walk = func(setting Setting) {
		if _, ok := seen[setting]; ok {
			return
		}
		seen[setting] = struct{}{}
		active = append(active, setting)
		for _, child := range s.selected(style, setting).ChildSettings() {
			walk(child)
		}
	}
	for _, root := range s.roots {
		walk(root)
	}
	return active
}

// ActiveComplicationSlotsSetting finds the complication slots setting
// reachable under style. Schema validation guarantees at most one is, so the
// first match wins.
func (s *UserStyleSchema) ActiveComplicationSlotsSetting(style *UserStyle) (*ComplicationSlotsSetting, bool) {
	var find func([]Setting) *ComplicationSlotsSetting
	find = func(settings []Setting) *ComplicationSlotsSetting {
		for _, setting := range settings {
			if slots, ok := setting.(*ComplicationSlotsSetting); ok {
				return slots
			}
			if found := find(s.selected(style, setting).ChildSettings()); found != nil {
				return found
			}
		}
		return nil
	}
	found := find(s.roots)
	return found, found != nil
}

// ComplicationSlotsOptionFor returns the option selected for the active
// complication slots setting.
func (s *UserStyleSchema) ComplicationSlotsOptionFor(style *UserStyle) (*ComplicationSlotsOption, bool) {
	setting, ok := s.ActiveComplicationSlotsSetting(style)
	if !ok {
		return nil, false
	}
	option, ok := s.selected(style, setting).(*ComplicationSlotsOption)
	return option, ok
}

func (s *UserStyleSchema) selected(style *UserStyle, setting Setting) Option {
	if style != nil {
		if option, ok := style.Get(setting); ok {
			return option
		}
	}
	return setting.DefaultOption()
}
