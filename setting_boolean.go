package userstyle

// BooleanSetting toggles between the canonical BooleanTrue and BooleanFalse
// options.
type BooleanSetting struct {
	settingBase
}

// NewBooleanSetting builds a boolean setting whose options are
// [BooleanTrue, BooleanFalse].
func NewBooleanSetting(id SettingID, displayName DisplayText, layers WatchFaceLayer, defaultValue bool, attrs ...SettingAttr) (*BooleanSetting, error) {
	defaultIndex := 1
	if defaultValue {
		defaultIndex = 0
	}
	base, err := newSettingBase(KindBoolean, id, displayName, layers, []Option{BooleanTrue, BooleanFalse}, defaultIndex, attrs)
	if err != nil {
		return nil, err
	}
	return &BooleanSetting{settingBase: base}, nil
}

// DefaultValue reports the default selection.
func (s *BooleanSetting) DefaultValue() bool {
	return s.defaultIndex == 0
}
