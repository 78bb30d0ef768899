package userstyle

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
)

func TestSettingConstructionErrors(t *testing.T) {
	red := listOption(t, "red")

	cases := []struct {
		name  string
		build func() error
		code  ErrorCode
	}{
		{"empty id", func() error {
			_, err := NewBooleanSetting("", Text("x"), LayerBase, true)
			return err
		}, ErrCodeInvalidID},
		{"id too long", func() error {
			_, err := NewBooleanSetting(SettingID(strings.Repeat("x", MaxSettingIDLength+1)), Text("x"), LayerBase, true)
			return err
		}, ErrCodeInvalidID},
		{"no options", func() error {
			_, err := NewListSetting("color", Text("Color"), LayerBase, nil, 0)
			return err
		}, ErrCodeEmptyOptions},
		{"default index", func() error {
			_, err := NewListSetting("color", Text("Color"), LayerBase, []*ListOption{red}, 1)
			return err
		}, ErrCodeDefaultOutOfRange},
		{"duplicate option", func() error {
			_, err := NewListSetting("color", Text("Color"), LayerBase, []*ListOption{red, listOption(t, "red")}, 0)
			return err
		}, ErrCodeDuplicateOptionID},
		{"nil option", func() error {
			_, err := NewListSetting("color", Text("Color"), LayerBase, []*ListOption{red, nil}, 0)
			return err
		}, ErrCodeMissingField},
		{"empty double range", func() error {
			_, err := NewDoubleRangeSetting("hands", Text("Hands"), LayerBase, 1, 1, 1)
			return err
		}, ErrCodeInvalidRange},
		{"nan double range", func() error {
			_, err := NewDoubleRangeSetting("hands", Text("Hands"), LayerBase, math.NaN(), 1, 0.5)
			return err
		}, ErrCodeInvalidRange},
		{"double default outside", func() error {
			_, err := NewDoubleRangeSetting("hands", Text("Hands"), LayerBase, 0, 1, 2)
			return err
		}, ErrCodeDefaultOutOfRange},
		{"long range inverted", func() error {
			_, err := NewLongRangeSetting("steps", Text("Steps"), LayerBase, 10, 1, 5)
			return err
		}, ErrCodeInvalidRange},
		{"long default outside", func() error {
			_, err := NewLongRangeSetting("steps", Text("Steps"), LayerBase, 1, 10, 11)
			return err
		}, ErrCodeDefaultOutOfRange},
		{"complications without layer", func() error {
			_, err := NewComplicationSlotsSetting("slots", Text("Slots"), LayerBase, []*ComplicationSlotsOption{slotsOption(t, "a")}, 0)
			return err
		}, ErrCodeInvalidLayers},
		{"option id too large", func() error {
			_, err := NewListOption(OptionID(bytes.Repeat([]byte{'x'}, MaxOptionIDLength+1)), Text("x"))
			return err
		}, ErrCodeOptionTooLarge},
		{"duplicate overlay", func() error {
			_, err := NewComplicationSlotsOption(OptionID("a"), Text("a"), []ComplicationSlotOverlay{{SlotID: 1}, {SlotID: 1}})
			return err
		}, ErrCodeDuplicateSlotOverlay},
		{"complication option children", func() error {
			child := must(NewBooleanSetting("child", Text("Child"), LayerBase, true))
			_, err := NewComplicationSlotsOption(OptionID("a"), Text("a"), nil, WithChildSettings(child))
			return err
		}, ErrCodeUnexpectedChildren},
		{"custom value too large", func() error {
			_, err := NewCustomValueSetting(LayerBase, bytes.Repeat([]byte{1}, MaxOptionIDLength+1))
			return err
		}, ErrCodeOptionTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.build()
			expectCode(t, err, tc.code)
			if !errors.Is(err, ErrInvalidSchema) {
				t.Fatalf("expected ErrInvalidSchema, got %v", err)
			}
		})
	}
}

func TestCustomValueSizeErrorCarriesSettingID(t *testing.T) {
	_, err := NewCustomValueSetting(LayerBase, bytes.Repeat([]byte{1}, MaxOptionIDLength+1))
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.SettingID != string(CustomValueSettingID) {
		t.Fatalf("expected setting id %s on error, got %v", CustomValueSettingID, err)
	}
}

func TestBooleanSettingOptions(t *testing.T) {
	setting := must(NewBooleanSetting("ticks", Text("Ticks"), LayerBase, false))
	options := setting.Options()
	if len(options) != 2 || options[0] != Option(BooleanTrue) || options[1] != Option(BooleanFalse) {
		t.Fatalf("unexpected options %v", options)
	}
	if setting.DefaultValue() || setting.DefaultOption() != Option(BooleanFalse) {
		t.Fatalf("expected false default")
	}
	if got := setting.OptionForID(OptionID{1}); got != Option(BooleanTrue) {
		t.Fatalf("expected TRUE for id 0x01, got %v", got)
	}
	if got := setting.OptionForID(OptionID("yes")); got != Option(BooleanFalse) {
		t.Fatalf("expected default for unknown id, got %v", got)
	}
}

func TestDoubleRangeOptionForID(t *testing.T) {
	setting := must(NewDoubleRangeSetting("hands", Text("Hands"), LayerBase, 0.0, 1.0, 0.75))

	if got := setting.OptionForID(EncodeDouble(0.3)).Value(); got != 0.3 {
		t.Fatalf("expected 0.3, got %v", got)
	}
	if got := setting.OptionForID(EncodeDouble(5.0)).Value(); got != 0.75 {
		t.Fatalf("expected default 0.75 for out of range id, got %v", got)
	}
	if got := setting.OptionForID(EncodeDouble(math.NaN())).Value(); got != 0.75 {
		t.Fatalf("expected default for NaN, got %v", got)
	}
	if got := setting.OptionForID(OptionID{1, 2, 3}).Value(); got != 0.75 {
		t.Fatalf("expected default for malformed id, got %v", got)
	}
	if got := setting.OptionForID(EncodeDouble(1.0)); got != setting.Options()[2] {
		t.Fatalf("expected the declared max option, got %v", got)
	}
}

func TestRangeOptionLayout(t *testing.T) {
	cases := []struct {
		name        string
		def         int64
		wantLen     int
		wantDefault int
		wantValues  []int64
	}{
		{"interior", 5, 3, 1, []int64{0, 5, 10}},
		{"at min", 0, 2, 0, []int64{0, 10}},
		{"at max", 10, 2, 1, []int64{0, 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setting := must(NewLongRangeSetting("steps", Text("Steps"), LayerBase, 0, 10, tc.def))
			options := setting.Options()
			if len(options) != tc.wantLen {
				t.Fatalf("expected %d options, got %d", tc.wantLen, len(options))
			}
			for i, want := range tc.wantValues {
				if got := options[i].(*LongRangeOption).Int64(); got != want {
					t.Fatalf("option %d = %d, want %d", i, got, want)
				}
			}
			if setting.DefaultOptionIndex() != tc.wantDefault {
				t.Fatalf("expected default index %d, got %d", tc.wantDefault, setting.DefaultOptionIndex())
			}
			if setting.DefaultValue() != tc.def {
				t.Fatalf("expected default value %d, got %d", tc.def, setting.DefaultValue())
			}
		})
	}
}

func TestLongRangeOptionForID(t *testing.T) {
	setting := must(NewLongRangeSetting("steps", Text("Steps"), LayerBase, -5, 5, 0))
	if got := setting.OptionForID(EncodeLong(-3)).Value(); got != int64(-3) {
		t.Fatalf("expected -3, got %v", got)
	}
	if got := setting.OptionForID(EncodeLong(6)).Value(); got != int64(0) {
		t.Fatalf("expected default for out of range, got %v", got)
	}
}

func TestListOptionForIDFallsBack(t *testing.T) {
	setting := colorSetting(t)
	if got := setting.OptionForID(OptionID("blue")); got != setting.Options()[1] {
		t.Fatalf("expected blue option, got %v", got)
	}
	if got := setting.OptionForID(OptionID("purple")); got != setting.DefaultOption() {
		t.Fatalf("expected default option, got %v", got)
	}
	if got := setting.ListOptions(); len(got) != 3 || got[2].ID().String() != "green" {
		t.Fatalf("unexpected typed options %v", got)
	}
}

func TestCustomValueEchoesAnyID(t *testing.T) {
	setting := must(NewCustomValueSetting(LayerBase, []byte{1, 2, 3}))
	if setting.ID() != CustomValueSettingID {
		t.Fatalf("expected fixed id, got %s", setting.ID())
	}

	got := setting.OptionForID(OptionID{9, 9})
	value, ok := got.Value().([]byte)
	if !ok || !bytes.Equal(value, []byte{9, 9}) {
		t.Fatalf("expected echoed value [9 9], got %v", got.Value())
	}
	if got == setting.DefaultOption() {
		t.Fatalf("expected a fresh option, not the default")
	}

	oversized := setting.OptionForID(bytes.Repeat([]byte{7}, MaxOptionIDLength+1))
	if oversized != setting.DefaultOption() {
		t.Fatalf("expected default for oversized id")
	}

	large := must(NewLargeCustomValueSetting(LayerBase, nil))
	payload := bytes.Repeat([]byte{7}, MaxOptionIDLength+1)
	if got := large.OptionForID(payload).Value().([]byte); !bytes.Equal(got, payload) {
		t.Fatalf("expected large payload echoed")
	}
}

func TestEstimateWireSizeInBytes(t *testing.T) {
	setting := colorSetting(t)
	// "color" + "Color" + (red, red) + (blue, blue) + (green, green)
	size, err := setting.EstimateWireSizeInBytes(IconBounds{})
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if size != 34 {
		t.Fatalf("expected 34 bytes, got %d", size)
	}
}

func TestEstimateWireSizeChecksIcons(t *testing.T) {
	icon := fakeIcon{ref: "res/hand", size: 100, width: 64, height: 32}
	option := must(NewListOption(OptionID("a"), Text("A"), WithOptionIcon(icon)))
	setting := must(NewListSetting("shape", Text("Shape"), LayerBase, []*ListOption{option}, 0))

	size, err := setting.EstimateWireSizeInBytes(IconBounds{})
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if size != len("shape")+len("Shape")+len("a")+len("A")+100 {
		t.Fatalf("unexpected size %d", size)
	}

	_, err = setting.EstimateWireSizeInBytes(IconBounds{MaxWidth: 48})
	expectCode(t, err, ErrCodeIconTooLarge)

	_, err = setting.EstimateWireSizeInBytes(IconBounds{MaxHeight: 16})
	expectCode(t, err, ErrCodeIconTooLarge)

	broken := must(NewBooleanSetting("ticks", Text("Ticks"), LayerBase, true, WithIcon(fakeIcon{err: errIconBroken})))
	_, err = broken.EstimateWireSizeInBytes(IconBounds{})
	expectCode(t, err, ErrCodeIconTooLarge)
	if !errors.Is(err, errIconBroken) {
		t.Fatalf("expected icon error to unwrap, got %v", err)
	}
}

func TestSettingAttrs(t *testing.T) {
	editor := &EditorData{Icon: fakeIcon{ref: "editor"}}
	setting := must(NewBooleanSetting("ticks", Text("Ticks"), LayerBase|LayerComplicationsOverlay, true,
		WithDescription(Text("Show hour ticks")),
		WithEditorData(editor),
	))
	if setting.Description().Resolve(0) != "Show hour ticks" {
		t.Fatalf("unexpected description %q", setting.Description().Resolve(0))
	}
	if setting.EditorData() != editor {
		t.Fatalf("expected editor data attached")
	}
	if !setting.AffectedLayers().Has(LayerComplicationsOverlay) || setting.AffectedLayers().Has(LayerComplications) {
		t.Fatalf("unexpected layers %s", setting.AffectedLayers())
	}
	if got := setting.AffectedLayers().String(); got != "base|complications_overlay" {
		t.Fatalf("unexpected layer string %q", got)
	}
}

func TestOptionIDString(t *testing.T) {
	if got := OptionID("red").String(); got != "red" {
		t.Fatalf("expected printable id, got %q", got)
	}
	if got := BooleanTrue.ID().String(); got != "0x01" {
		t.Fatalf("expected hex id, got %q", got)
	}
	if !EncodeLong(7).Equal(NewLongRangeOption(7).ID()) {
		t.Fatalf("expected encoded ids to match")
	}
}
