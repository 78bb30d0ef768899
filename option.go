package userstyle

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"math"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxOptionIDLength bounds option ids for every kind except LargeCustomValue.
	MaxOptionIDLength = 1024
	// MaxLargeOptionIDLength bounds LargeCustomValue option ids.
	MaxLargeOptionIDLength = 125000
)

// SettingKind tags the closed set of setting variants. An option carries the
// kind of the setting that may own it.
type SettingKind uint8

const (
	KindBoolean SettingKind = iota + 1
	KindDoubleRange
	KindLongRange
	KindList
	KindComplicationSlots
	KindCustomValue
	KindLargeCustomValue
)

func (k SettingKind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindDoubleRange:
		return "double_range"
	case KindLongRange:
		return "long_range"
	case KindList:
		return "list"
	case KindComplicationSlots:
		return "complication_slots"
	case KindCustomValue:
		return "custom_value"
	case KindLargeCustomValue:
		return "large_custom_value"
	default:
		return "unknown"
	}
}

func (k SettingKind) customValue() bool {
	return k == KindCustomValue || k == KindLargeCustomValue
}

// OptionID is the opaque identity of an option. Equality is by bytes.
type OptionID []byte

// Equal reports whether both ids hold the same bytes.
func (id OptionID) Equal(other OptionID) bool {
	return bytes.Equal(id, other)
}

// String renders printable ids as text and anything else as hex.
func (id OptionID) String() string {
	if utf8.Valid(id) {
		printable := true
		for _, r := range string(id) {
			if !unicode.IsPrint(r) {
				printable = false
				break
			}
		}
		if printable {
			return string(id)
		}
	}
	return "0x" + hex.EncodeToString(id)
}

// Option is one concrete choice for a setting. The set of implementations is
// closed; dispatch on Kind.
type Option interface {
	ID() OptionID
	Kind() SettingKind
	// ChildSettings lists the settings activated when this option is selected.
	ChildSettings() []Setting
	// Value exposes the option payload for rules and descriptors.
	Value() any
	String() string

	key() string
	estimateWireSize(settingID string, bounds IconBounds, ordinal int) (int, error)
}

type optionBase struct {
	id string
}

func (o optionBase) ID() OptionID             { return OptionID(o.id) }
func (o optionBase) key() string              { return o.id }
func (o optionBase) String() string           { return OptionID(o.id).String() }
func (o optionBase) ChildSettings() []Setting { return nil }

func (o optionBase) estimateWireSize(string, IconBounds, int) (int, error) {
	return len(o.id), nil
}

// BooleanOption is one of the two canonical boolean options.
type BooleanOption struct {
	optionBase
	value bool
}

var (
	BooleanTrue  = &BooleanOption{optionBase: optionBase{id: "\x01"}, value: true}
	BooleanFalse = &BooleanOption{optionBase: optionBase{id: "\x00"}, value: false}
)

// BooleanOptionFor returns the canonical option for value.
func BooleanOptionFor(value bool) *BooleanOption {
	if value {
		return BooleanTrue
	}
	return BooleanFalse
}

func (o *BooleanOption) Kind() SettingKind { return KindBoolean }
func (o *BooleanOption) Value() any        { return o.value }

// Bool returns the option's value.
func (o *BooleanOption) Bool() bool { return o.value }

func (o *BooleanOption) String() string {
	if o.value {
		return "true"
	}
	return "false"
}

// DoubleRangeOption wraps a float64; its id is the 8-byte big-endian
// IEEE-754 encoding of the value.
type DoubleRangeOption struct {
	optionBase
	value float64
}

// NewDoubleRangeOption builds the option for value.
func NewDoubleRangeOption(value float64) *DoubleRangeOption {
	return &DoubleRangeOption{optionBase: optionBase{id: string(EncodeDouble(value))}, value: value}
}

func (o *DoubleRangeOption) Kind() SettingKind { return KindDoubleRange }
func (o *DoubleRangeOption) Value() any        { return o.value }
func (o *DoubleRangeOption) Float64() float64  { return o.value }

// LongRangeOption wraps an int64; its id is the 8-byte big-endian encoding.
type LongRangeOption struct {
	optionBase
	value int64
}

// NewLongRangeOption builds the option for value.
func NewLongRangeOption(value int64) *LongRangeOption {
	return &LongRangeOption{optionBase: optionBase{id: string(EncodeLong(value))}, value: value}
}

func (o *LongRangeOption) Kind() SettingKind { return KindLongRange }
func (o *LongRangeOption) Value() any        { return o.value }
func (o *LongRangeOption) Int64() int64      { return o.value }

// EncodeDouble returns the option id bytes for a double range value.
func EncodeDouble(value float64) OptionID {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, math.Float64bits(value))
	return buf
}

// EncodeLong returns the option id bytes for a long range value.
func EncodeLong(value int64) OptionID {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(value))
	return buf
}

func decodeDouble(id OptionID) (float64, bool) {
	if len(id) != 8 {
		return 0, false
	}
	value := math.Float64frombits(binary.BigEndian.Uint64(id))
	if math.IsNaN(value) {
		return 0, false
	}
	return value, true
}

func decodeLong(id OptionID) (int64, bool) {
	if len(id) != 8 {
		return 0, false
	}
	return int64(binary.BigEndian.Uint64(id)), true
}

// OptionAttr configures optional presentation data on list and complication
// slot options.
type OptionAttr func(*optionAttrs)

type optionAttrs struct {
	screenReaderName DisplayText
	icon             Icon
	editorData       *EditorData
	children         []Setting
}

// WithScreenReaderName sets the accessibility label.
func WithScreenReaderName(text DisplayText) OptionAttr {
	return func(a *optionAttrs) {
		a.screenReaderName = text
	}
}

// WithOptionIcon sets the icon sent over the wire.
func WithOptionIcon(icon Icon) OptionAttr {
	return func(a *optionAttrs) {
		a.icon = icon
	}
}

// WithOptionEditorData attaches editor-only overrides.
func WithOptionEditorData(data *EditorData) OptionAttr {
	return func(a *optionAttrs) {
		a.editorData = data
	}
}

// WithChildSettings activates children when the list option is selected.
func WithChildSettings(children ...Setting) OptionAttr {
	return func(a *optionAttrs) {
		a.children = append(a.children, children...)
	}
}

func applyOptionAttrs(attrs []OptionAttr) optionAttrs {
	cfg := optionAttrs{}
	for _, attr := range attrs {
		if attr != nil {
			attr(&cfg)
		}
	}
	return cfg
}

func checkOptionID(id OptionID, max int) error {
	if len(id) > max {
		return newValidationError(ErrCodeOptionTooLarge, "", "option id is %d bytes, max %d", len(id), max)
	}
	return nil
}

type presentation struct {
	displayName      DisplayText
	screenReaderName DisplayText
	icon             Icon
	editorData       *EditorData
}

func (p presentation) DisplayName() DisplayText      { return p.displayName }
func (p presentation) ScreenReaderName() DisplayText { return p.screenReaderName }
func (p presentation) Icon() Icon                    { return p.icon }
func (p presentation) EditorData() *EditorData       { return p.editorData }

func (p presentation) wireSize(settingID string, bounds IconBounds, ordinal int) (int, error) {
	size := len(resolveText(p.displayName, ordinal)) + len(resolveText(p.screenReaderName, ordinal))
	iconSize, err := bounds.check(settingID, p.icon)
	if err != nil {
		return 0, err
	}
	return size + iconSize, nil
}

// ListOption is an entry of a ListSetting. Selecting it activates its child
// settings.
type ListOption struct {
	optionBase
	presentation
	children []Setting
}

// NewListOption builds a list entry.
func NewListOption(id OptionID, displayName DisplayText, attrs ...OptionAttr) (*ListOption, error) {
	if err := checkOptionID(id, MaxOptionIDLength); err != nil {
		return nil, err
	}
	cfg := applyOptionAttrs(attrs)
	children := make([]Setting, 0, len(cfg.children))
	for _, child := range cfg.children {
		if child != nil {
			children = append(children, child)
		}
	}
	return &ListOption{
		optionBase: optionBase{id: string(id)},
		presentation: presentation{
			displayName:      displayName,
			screenReaderName: cfg.screenReaderName,
			icon:             cfg.icon,
			editorData:       cfg.editorData,
		},
		children: children,
	}, nil
}

func (o *ListOption) Kind() SettingKind { return KindList }
func (o *ListOption) Value() any        { return o.id }

func (o *ListOption) ChildSettings() []Setting {
	if len(o.children) == 0 {
		return nil
	}
	return append([]Setting(nil), o.children...)
}

func (o *ListOption) estimateWireSize(settingID string, bounds IconBounds, ordinal int) (int, error) {
	size, err := o.wireSize(settingID, bounds, ordinal)
	if err != nil {
		return 0, err
	}
	return len(o.id) + size, nil
}

// Bounds is a rectangle in unit-square coordinates.
type Bounds struct {
	Left, Top, Right, Bottom float64
}

// ComplicationSlotOverlay overrides one complication slot while its owning
// option is selected. Nil fields leave the slot's own configuration alone.
type ComplicationSlotOverlay struct {
	SlotID                      int
	Enabled                     *bool
	Bounds                      *Bounds
	AccessibilityTraversalIndex *int
	Name                        DisplayText
	ScreenReaderName            DisplayText
}

// ComplicationSlotsOption selects a set of slot overlays.
type ComplicationSlotsOption struct {
	optionBase
	presentation
	overlays []ComplicationSlotOverlay
}

// NewComplicationSlotsOption builds a complication slots option. Slot ids must
// be unique within the option and child settings are not supported.
func NewComplicationSlotsOption(id OptionID, displayName DisplayText, overlays []ComplicationSlotOverlay, attrs ...OptionAttr) (*ComplicationSlotsOption, error) {
	if err := checkOptionID(id, MaxOptionIDLength); err != nil {
		return nil, err
	}
	cfg := applyOptionAttrs(attrs)
	if len(cfg.children) > 0 {
		return nil, newValidationError(ErrCodeUnexpectedChildren, "", "complication slots option %s cannot have child settings", OptionID(id))
	}
	seen := make(map[int]struct{}, len(overlays))
	for _, overlay := range overlays {
		if _, dup := seen[overlay.SlotID]; dup {
			return nil, newValidationError(ErrCodeDuplicateSlotOverlay, "", "slot %d overlaid twice in option %s", overlay.SlotID, OptionID(id))
		}
		seen[overlay.SlotID] = struct{}{}
	}
	return &ComplicationSlotsOption{
		optionBase: optionBase{id: string(id)},
		presentation: presentation{
			displayName:      displayName,
			screenReaderName: cfg.screenReaderName,
			icon:             cfg.icon,
			editorData:       cfg.editorData,
		},
		overlays: append([]ComplicationSlotOverlay(nil), overlays...),
	}, nil
}

func (o *ComplicationSlotsOption) Kind() SettingKind { return KindComplicationSlots }
func (o *ComplicationSlotsOption) Value() any        { return o.id }

// Overlays returns the slot overlays in declaration order.
func (o *ComplicationSlotsOption) Overlays() []ComplicationSlotOverlay {
	return append([]ComplicationSlotOverlay(nil), o.overlays...)
}

func (o *ComplicationSlotsOption) estimateWireSize(settingID string, bounds IconBounds, ordinal int) (int, error) {
	size, err := o.wireSize(settingID, bounds, ordinal)
	if err != nil {
		return 0, err
	}
	for _, overlay := range o.overlays {
		size += len(resolveText(overlay.Name, ordinal)) + len(resolveText(overlay.ScreenReaderName, ordinal))
	}
	return len(o.id) + size, nil
}

// CustomValueOption carries an application-owned payload as its id.
type CustomValueOption struct {
	optionBase
}

// NewCustomValueOption wraps value, which must fit MaxOptionIDLength.
func NewCustomValueOption(value []byte) (*CustomValueOption, error) {
	if err := checkOptionID(value, MaxOptionIDLength); err != nil {
		return nil, err
	}
	return &CustomValueOption{optionBase{id: string(value)}}, nil
}

func (o *CustomValueOption) Kind() SettingKind { return KindCustomValue }
func (o *CustomValueOption) Value() any        { return []byte(o.id) }

// Bytes returns a copy of the payload.
func (o *CustomValueOption) Bytes() []byte { return []byte(o.id) }

// LargeCustomValueOption is a CustomValueOption allowing up to
// MaxLargeOptionIDLength bytes.
type LargeCustomValueOption struct {
	optionBase
}

// NewLargeCustomValueOption wraps value, which must fit MaxLargeOptionIDLength.
func NewLargeCustomValueOption(value []byte) (*LargeCustomValueOption, error) {
	if err := checkOptionID(value, MaxLargeOptionIDLength); err != nil {
		return nil, err
	}
	return &LargeCustomValueOption{optionBase{id: string(value)}}, nil
}

func (o *LargeCustomValueOption) Kind() SettingKind { return KindLargeCustomValue }
func (o *LargeCustomValueOption) Value() any        { return []byte(o.id) }
func (o *LargeCustomValueOption) Bytes() []byte     { return []byte(o.id) }
