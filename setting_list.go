package userstyle

// ListSetting offers a closed list of options. Options may activate child
// settings, forming a multi-level editor tree.
type ListSetting struct {
	settingBase
}

// NewListSetting builds a list setting from options in display order.
func NewListSetting(id SettingID, displayName DisplayText, layers WatchFaceLayer, options []*ListOption, defaultIndex int, attrs ...SettingAttr) (*ListSetting, error) {
	generic := make([]Option, 0, len(options))
	for i, option := range options {
		if option == nil {
			return nil, newValidationError(ErrCodeMissingField, string(id), "option %d is nil", i)
		}
		generic = append(generic, option)
	}
	base, err := newSettingBase(KindList, id, displayName, layers, generic, defaultIndex, attrs)
	if err != nil {
		return nil, err
	}
	return &ListSetting{settingBase: base}, nil
}

// ListOptions returns the typed options in order.
func (s *ListSetting) ListOptions() []*ListOption {
	out := make([]*ListOption, 0, len(s.options))
	for _, option := range s.options {
		out = append(out, option.(*ListOption))
	}
	return out
}
