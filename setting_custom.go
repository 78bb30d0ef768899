package userstyle

const (
	// CustomValueSettingID is the fixed id of every CustomValueSetting.
	CustomValueSettingID SettingID = "CustomValue"
	// LargeCustomValueSettingID is the fixed id of every LargeCustomValueSetting.
	LargeCustomValueSettingID SettingID = "LargeCustomValue"
)

// CustomValueSetting carries an opaque application payload. The platform
// never interprets it, so any id is a valid option.
type CustomValueSetting struct {
	settingBase
}

// NewCustomValueSetting builds the schema's custom value setting with
// defaultValue as its single option.
func NewCustomValueSetting(layers WatchFaceLayer, defaultValue []byte, attrs ...SettingAttr) (*CustomValueSetting, error) {
	option, err := NewCustomValueOption(defaultValue)
	if err != nil {
		return nil, withSettingID(err, CustomValueSettingID)
	}
	base, err := newSettingBase(KindCustomValue, CustomValueSettingID, Text(""), layers, []Option{option}, 0, attrs)
	if err != nil {
		return nil, err
	}
	return &CustomValueSetting{settingBase: base}, nil
}

// OptionForID echoes id back as a new option. Only ids over the size limit
// fall back to the default.
func (s *CustomValueSetting) OptionForID(id OptionID) Option {
	option, err := NewCustomValueOption(id)
	if err != nil {
		return s.DefaultOption()
	}
	return option
}

// LargeCustomValueSetting is a CustomValueSetting with a larger payload bound.
type LargeCustomValueSetting struct {
	settingBase
}

// NewLargeCustomValueSetting builds the schema's large custom value setting.
func NewLargeCustomValueSetting(layers WatchFaceLayer, defaultValue []byte, attrs ...SettingAttr) (*LargeCustomValueSetting, error) {
	option, err := NewLargeCustomValueOption(defaultValue)
	if err != nil {
		return nil, withSettingID(err, LargeCustomValueSettingID)
	}
	base, err := newSettingBase(KindLargeCustomValue, LargeCustomValueSettingID, Text(""), layers, []Option{option}, 0, attrs)
	if err != nil {
		return nil, err
	}
	return &LargeCustomValueSetting{settingBase: base}, nil
}

func (s *LargeCustomValueSetting) OptionForID(id OptionID) Option {
	option, err := NewLargeCustomValueOption(id)
	if err != nil {
		return s.DefaultOption()
	}
	return option
}

func withSettingID(err error, id SettingID) error {
	if verr, ok := err.(*ValidationError); ok && verr.SettingID == "" {
		clone := *verr
		clone.SettingID = string(id)
		return &clone
	}
	return err
}
