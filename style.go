package userstyle

import (
	"sort"
	"strings"
)

// UserStyle is an immutable selection of one option per setting.
type UserStyle struct {
	selections map[Setting]Option
	order      []Setting
}

func newUserStyle(order []Setting, size int) *UserStyle {
	return &UserStyle{
		selections: make(map[Setting]Option, size),
		order:      append([]Setting(nil), order...),
	}
}

// NewUserStyle builds a style from explicit pairs. Every option must match its
// setting's kind. Iteration follows setting id order.
func NewUserStyle(selections map[Setting]Option) (*UserStyle, error) {
	order := make([]Setting, 0, len(selections))
	for setting, option := range selections {
		if err := checkAssignment(setting, option); err != nil {
			return nil, err
		}
		order = append(order, setting)
	}
	sort.Slice(order, func(i, j int) bool { return order[i].ID() < order[j].ID() })

	style := newUserStyle(order, len(selections))
	for setting, option := range selections {
		style.selections[setting] = option
	}
	return style, nil
}

// NewUserStyleFromData resolves data against schema. Every schema setting
// gets exactly one entry; ids missing from data take the default and keys the
// schema does not know are dropped.
func NewUserStyleFromData(data UserStyleData, schema *UserStyleSchema) *UserStyle {
	style := newUserStyle(schema.settings, len(schema.settings))
	for _, setting := range schema.settings {
		raw, ok := data[string(setting.ID())]
		if !ok {
			style.selections[setting] = setting.DefaultOption()
			continue
		}
		style.selections[setting] = setting.OptionForID(raw)
	}
	return style
}

func checkAssignment(setting Setting, option Option) error {
	if setting == nil {
		return newValidationError(ErrCodeUnknownSetting, "", "setting is nil")
	}
	if option == nil {
		return newValidationError(ErrCodeKindMismatch, string(setting.ID()), "option is nil")
	}
	if option.Kind() != setting.Kind() {
		return newValidationError(ErrCodeKindMismatch, string(setting.ID()), "%s option %s assigned to %s setting", option.Kind(), option, setting.Kind())
	}
	return nil
}

// Len reports the number of selections.
func (s *UserStyle) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Get returns the option selected for setting, matched by identity.
func (s *UserStyle) Get(setting Setting) (Option, bool) {
	if s == nil || setting == nil {
		return nil, false
	}
	option, ok := s.selections[setting]
	return option, ok
}

// GetByID scans for a setting with id. Prefer Get when the setting is at hand.
func (s *UserStyle) GetByID(id SettingID) (Option, bool) {
	if setting, ok := s.SettingByID(id); ok {
		return s.selections[setting], true
	}
	return nil, false
}

// SettingByID scans for the setting with id.
func (s *UserStyle) SettingByID(id SettingID) (Setting, bool) {
	if s == nil {
		return nil, false
	}
	for _, setting := range s.order {
		if setting.ID() == id {
			return setting, true
		}
	}
	return nil, false
}

// Settings returns the style's settings in iteration order.
func (s *UserStyle) Settings() []Setting {
	if s == nil {
		return nil
	}
	return append([]Setting(nil), s.order...)
}

// Range calls fn for each selection in order until fn returns false.
func (s *UserStyle) Range(fn func(Setting, Option) bool) {
	if s == nil {
		return
	}
	for _, setting := range s.order {
		if !fn(setting, s.selections[setting]) {
			return
		}
	}
}

// ToUserStyleData converts the style to its wire form.
func (s *UserStyle) ToUserStyleData() UserStyleData {
	data := make(UserStyleData, s.Len())
	s.Range(func(setting Setting, option Option) bool {
		data[string(setting.ID())] = option.ID()
		return true
	})
	return data
}

// Equal reports whether both styles select options with equal ids for the
// same setting instances.
func (s *UserStyle) Equal(other *UserStyle) bool {
	if s.Len() != other.Len() {
		return false
	}
	for setting, option := range s.selectionsOrEmpty() {
		theirs, ok := other.Get(setting)
		if !ok || theirs.key() != option.key() {
			return false
		}
	}
	return true
}

func (s *UserStyle) selectionsOrEmpty() map[Setting]Option {
	if s == nil {
		return nil
	}
	return s.selections
}

// Mutable returns a staging copy for edits.
func (s *UserStyle) Mutable() *MutableUserStyle {
	m := &MutableUserStyle{
		selections: make(map[Setting]Option, s.Len()),
		order:      s.Settings(),
	}
	for setting, option := range s.selectionsOrEmpty() {
		m.selections[setting] = option
	}
	return m
}

// Merge overlays overrides onto s. Overrides are matched by setting id; ids s
// lacks, cross-kind entries and option ids the base setting does not accept
// are ignored. It returns nil when the result would equal s.
func (s *UserStyle) Merge(overrides *UserStyle) *UserStyle {
	if s == nil || overrides.Len() == 0 {
		return nil
	}

	byID := make(map[SettingID]Setting, len(s.order))
	for _, setting := range s.order {
		byID[setting.ID()] = setting
	}

	var merged *UserStyle
	overrides.Range(func(setting Setting, option Option) bool {
		target, ok := byID[setting.ID()]
		if !ok || target.Kind() != option.Kind() {
			return true
		}
		current := s.selections[target]
		if current != nil && current.key() == option.key() {
			return true
		}
		resolved := target.OptionForID(option.ID())
		if !resolved.ID().Equal(option.ID()) {
			return true
		}
		if current != nil && resolved.key() == current.key() {
			return true
		}
		if merged == nil {
			merged = newUserStyle(s.order, len(s.order))
			for k, v := range s.selections {
				merged.selections[k] = v
			}
		}
		merged.selections[target] = resolved
		return true
	})
	return merged
}

// MergeUserStyles is Merge as a function.
func MergeUserStyles(base, overrides *UserStyle) *UserStyle {
	return base.Merge(overrides)
}

func (s *UserStyle) String() string {
	var b strings.Builder
	b.WriteByte('[')
	i := 0
	s.Range(func(setting Setting, option Option) bool {
		if i > 0 {
			b.WriteString(", ")
		}
		i++
		b.WriteString(string(setting.ID()))
		b.WriteString(" : ")
		b.WriteString(option.String())
		return true
	})
	b.WriteByte(']')
	return b.String()
}
