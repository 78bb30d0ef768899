package userstyle

// MutableUserStyle is a short-lived staging buffer for edits. It is not safe
// for concurrent use; convert it with ToUserStyle before sharing.
type MutableUserStyle struct {
	selections map[Setting]Option
	order      []Setting
}

// Len reports the number of selections.
func (m *MutableUserStyle) Len() int { return len(m.order) }

// Get returns the staged option for setting.
func (m *MutableUserStyle) Get(setting Setting) (Option, bool) {
	option, ok := m.selections[setting]
	return option, ok
}

// GetByID scans for a setting with id.
func (m *MutableUserStyle) GetByID(id SettingID) (Option, bool) {
	if setting, ok := m.settingByID(id); ok {
		return m.selections[setting], true
	}
	return nil, false
}

// Set stages option for setting. The setting must already be part of the
// style and the option must match its kind.
func (m *MutableUserStyle) Set(setting Setting, option Option) error {
	if setting == nil {
		return newValidationError(ErrCodeUnknownSetting, "", "setting is nil")
	}
	if _, ok := m.selections[setting]; !ok {
		return newValidationError(ErrCodeUnknownSetting, string(setting.ID()), "setting is not part of this style")
	}
	if err := checkAssignment(setting, option); err != nil {
		return err
	}
	m.selections[setting] = option
	return nil
}

// SetByID resolves optionID through the setting's OptionForID and stages it.
func (m *MutableUserStyle) SetByID(id SettingID, optionID OptionID) error {
	setting, ok := m.settingByID(id)
	if !ok {
		return newValidationError(ErrCodeUnknownSetting, string(id), "setting is not part of this style")
	}
	m.selections[setting] = setting.OptionForID(optionID)
	return nil
}

// Settings returns the staged settings in order.
func (m *MutableUserStyle) Settings() []Setting {
	return append([]Setting(nil), m.order...)
}

// ToUserStyle freezes the staged selections into a new UserStyle.
func (m *MutableUserStyle) ToUserStyle() *UserStyle {
	style := newUserStyle(m.order, len(m.order))
	for setting, option := range m.selections {
		style.selections[setting] = option
	}
	return style
}

func (m *MutableUserStyle) settingByID(id SettingID) (Setting, bool) {
	for _, setting := range m.order {
		if setting.ID() == id {
			return setting, true
		}
	}
	return nil, false
}
