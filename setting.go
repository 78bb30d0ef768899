package userstyle

import (
	"unicode/utf8"
)

// MaxSettingIDLength is the maximum number of characters in a setting id.
const MaxSettingIDLength = 40

// SettingID names a setting. It is unique within a schema.
type SettingID string

func (id SettingID) String() string { return string(id) }

// Setting is a named, typed collection of options with a default. The set of
// implementations is closed; dispatch on Kind.
type Setting interface {
	ID() SettingID
	Kind() SettingKind
	DisplayName() DisplayText
	Description() DisplayText
	Icon() Icon
	EditorData() *EditorData
	AffectedLayers() WatchFaceLayer
	// Options returns a copy of the declared options in order.
	Options() []Option
	DefaultOptionIndex() int
	DefaultOption() Option
	// OptionForID resolves a wire option id. Unknown or malformed ids fall
	// back to the default option; range and custom settings accept values
	// beyond the declared options.
	OptionForID(id OptionID) Option
	// EstimateWireSizeInBytes sums id, text and icon sizes, rejecting icons
	// outside bounds.
	EstimateWireSizeInBytes(bounds IconBounds) (int, error)

	base() *settingBase
}

// SettingAttr configures optional fields shared by every setting kind.
type SettingAttr func(*settingBase)

// WithDescription sets the localized description.
func WithDescription(text DisplayText) SettingAttr {
	return func(s *settingBase) {
		s.description = text
	}
}

// WithIcon sets the setting icon sent over the wire.
func WithIcon(icon Icon) SettingAttr {
	return func(s *settingBase) {
		s.icon = icon
	}
}

// WithEditorData attaches editor-only overrides.
func WithEditorData(data *EditorData) SettingAttr {
	return func(s *settingBase) {
		s.editorData = data
	}
}

type settingBase struct {
	id           SettingID
	kind         SettingKind
	displayName  DisplayText
	description  DisplayText
	icon         Icon
	editorData   *EditorData
	layers       WatchFaceLayer
	options      []Option
	defaultIndex int
	index        map[string]int
}

func newSettingBase(kind SettingKind, id SettingID, displayName DisplayText, layers WatchFaceLayer, options []Option, defaultIndex int, attrs []SettingAttr) (settingBase, error) {
	s := settingBase{
		id:           id,
		kind:         kind,
		displayName:  displayName,
		layers:       layers,
		defaultIndex: defaultIndex,
	}
	for _, attr := range attrs {
		if attr != nil {
			attr(&s)
		}
	}

	settingID := string(id)
	if id == "" {
		return settingBase{}, newValidationError(ErrCodeInvalidID, settingID, "setting id is required")
	}
	if n := utf8.RuneCountInString(settingID); n > MaxSettingIDLength {
		return settingBase{}, newValidationError(ErrCodeInvalidID, settingID, "setting id has %d characters, max %d", n, MaxSettingIDLength)
	}
	if len(options) == 0 {
		return settingBase{}, newValidationError(ErrCodeEmptyOptions, settingID, "setting has no options")
	}
	if defaultIndex < 0 || defaultIndex >= len(options) {
		return settingBase{}, newValidationError(ErrCodeDefaultOutOfRange, settingID, "default index %d outside [0, %d)", defaultIndex, len(options))
	}

	s.options = make([]Option, 0, len(options))
	s.index = make(map[string]int, len(options))
	for i, option := range options {
		if option == nil {
			return settingBase{}, newValidationError(ErrCodeMissingField, settingID, "option %d is nil", i)
		}
		if _, dup := s.index[option.key()]; dup {
			return settingBase{}, newValidationError(ErrCodeDuplicateOptionID, settingID, "option id %s declared twice", option)
		}
		s.index[option.key()] = i
		s.options = append(s.options, option)
	}
	return s, nil
}

func (s *settingBase) base() *settingBase             { return s }
func (s *settingBase) ID() SettingID                  { return s.id }
func (s *settingBase) Kind() SettingKind              { return s.kind }
func (s *settingBase) DisplayName() DisplayText       { return s.displayName }
func (s *settingBase) Description() DisplayText       { return s.description }
func (s *settingBase) Icon() Icon                     { return s.icon }
func (s *settingBase) EditorData() *EditorData        { return s.editorData }
func (s *settingBase) AffectedLayers() WatchFaceLayer { return s.layers }
func (s *settingBase) DefaultOptionIndex() int        { return s.defaultIndex }
func (s *settingBase) DefaultOption() Option          { return s.options[s.defaultIndex] }

func (s *settingBase) Options() []Option {
	return append([]Option(nil), s.options...)
}

// OptionForID matches declared options exactly and falls back to the default.
func (s *settingBase) OptionForID(id OptionID) Option {
	if option, ok := s.declared(id); ok {
		return option
	}
	return s.DefaultOption()
}

func (s *settingBase) declared(id OptionID) (Option, bool) {
	if i, ok := s.index[string(id)]; ok {
		return s.options[i], true
	}
	return nil, false
}

func (s *settingBase) owns(option Option) bool {
	if option == nil {
		return false
	}
	_, ok := s.index[option.key()]
	return ok
}

func (s *settingBase) EstimateWireSizeInBytes(bounds IconBounds) (int, error) {
	return s.estimateWireSize(bounds, 0)
}

// estimateWireSize resolves display text with the setting's schema ordinal;
// 0 outside a schema.
func (s *settingBase) estimateWireSize(bounds IconBounds, ordinal int) (int, error) {
	settingID := string(s.id)
	size := len(settingID) + len(resolveText(s.displayName, ordinal)) + len(resolveText(s.description, ordinal))
	iconSize, err := bounds.check(settingID, s.icon)
	if err != nil {
		return 0, err
	}
	size += iconSize
	for _, option := range s.options {
		optionSize, err := option.estimateWireSize(settingID, bounds, ordinal)
		if err != nil {
			return 0, err
		}
		size += optionSize
	}
	return size, nil
}

// childSettings lists every child declared by any option, in option order.
func (s *settingBase) childSettings() []Setting {
	var children []Setting
	for _, option := range s.options {
		children = append(children, option.ChildSettings()...)
	}
	return children
}
