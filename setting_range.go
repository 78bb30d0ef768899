package userstyle

import "math"

// DoubleRangeSetting selects any float64 in [min, max]. Only the bounds and
// the default are enumerated as options.
type DoubleRangeSetting struct {
	settingBase
	min, max, def float64
}

// NewDoubleRangeSetting requires min < max and min <= defaultValue <= max.
func NewDoubleRangeSetting(id SettingID, displayName DisplayText, layers WatchFaceLayer, min, max, defaultValue float64, attrs ...SettingAttr) (*DoubleRangeSetting, error) {
	if math.IsNaN(min) || math.IsNaN(max) || !(min < max) {
		return nil, newValidationError(ErrCodeInvalidRange, string(id), "range [%v, %v] is empty", min, max)
	}
	if math.IsNaN(defaultValue) || defaultValue < min || defaultValue > max {
		return nil, newValidationError(ErrCodeDefaultOutOfRange, string(id), "default %v outside [%v, %v]", defaultValue, min, max)
	}

	options, defaultIndex := rangeOptions(min == defaultValue, max == defaultValue,
		NewDoubleRangeOption(min), NewDoubleRangeOption(defaultValue), NewDoubleRangeOption(max))
	base, err := newSettingBase(KindDoubleRange, id, displayName, layers, options, defaultIndex, attrs)
	if err != nil {
		return nil, err
	}
	return &DoubleRangeSetting{settingBase: base, min: min, max: max, def: defaultValue}, nil
}

func (s *DoubleRangeSetting) Min() float64          { return s.min }
func (s *DoubleRangeSetting) Max() float64          { return s.max }
func (s *DoubleRangeSetting) DefaultValue() float64 { return s.def }

// OptionForID decodes any in-range value into a fresh option.
func (s *DoubleRangeSetting) OptionForID(id OptionID) Option {
	if option, ok := s.declared(id); ok {
		return option
	}
	value, ok := decodeDouble(id)
	if !ok || value < s.min || value > s.max {
		return s.DefaultOption()
	}
	return NewDoubleRangeOption(value)
}

// LongRangeSetting selects any int64 in [min, max].
type LongRangeSetting struct {
	settingBase
	min, max, def int64
}

// NewLongRangeSetting requires min < max and min <= defaultValue <= max.
func NewLongRangeSetting(id SettingID, displayName DisplayText, layers WatchFaceLayer, min, max, defaultValue int64, attrs ...SettingAttr) (*LongRangeSetting, error) {
	if min >= max {
		return nil, newValidationError(ErrCodeInvalidRange, string(id), "range [%d, %d] is empty", min, max)
	}
	if defaultValue < min || defaultValue > max {
		return nil, newValidationError(ErrCodeDefaultOutOfRange, string(id), "default %d outside [%d, %d]", defaultValue, min, max)
	}

	options, defaultIndex := rangeOptions(min == defaultValue, max == defaultValue,
		NewLongRangeOption(min), NewLongRangeOption(defaultValue), NewLongRangeOption(max))
	base, err := newSettingBase(KindLongRange, id, displayName, layers, options, defaultIndex, attrs)
	if err != nil {
		return nil, err
	}
	return &LongRangeSetting{settingBase: base, min: min, max: max, def: defaultValue}, nil
}

func (s *LongRangeSetting) Min() int64          { return s.min }
func (s *LongRangeSetting) Max() int64          { return s.max }
func (s *LongRangeSetting) DefaultValue() int64 { return s.def }

// OptionForID decodes any in-range value into a fresh option.
func (s *LongRangeSetting) OptionForID(id OptionID) Option {
	if option, ok := s.declared(id); ok {
		return option
	}
	value, ok := decodeLong(id)
	if !ok || value < s.min || value > s.max {
		return s.DefaultOption()
	}
	return NewLongRangeOption(value)
}

// rangeOptions lays out [min, max] or [min, default, max].
func rangeOptions(atMin, atMax bool, min, def, max Option) ([]Option, int) {
	switch {
	case atMin:
		return []Option{min, max}, 0
	case atMax:
		return []Option{min, max}, 1
	default:
		return []Option{min, def, max}, 1
	}
}
