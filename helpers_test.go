package userstyle

import (
	"errors"
	"testing"
)

// must unwraps fixture constructors. A failure here is a broken fixture, not
// a behaviour under test.
func must[T any](value T, err error) T {
	if err != nil {
		panic(err)
	}
	return value
}

func listOption(t *testing.T, id string, children ...Setting) *ListOption {
	t.Helper()
	return must(NewListOption(OptionID(id), Text(id), WithChildSettings(children...)))
}

func slotsOption(t *testing.T, id string, overlays ...ComplicationSlotOverlay) *ComplicationSlotsOption {
	t.Helper()
	return must(NewComplicationSlotsOption(OptionID(id), Text(id), overlays))
}

func colorSetting(t *testing.T) *ListSetting {
	t.Helper()
	options := []*ListOption{listOption(t, "red"), listOption(t, "blue"), listOption(t, "green")}
	return must(NewListSetting("color", Text("Color"), LayerBase, options, 0))
}

// faceFixture is a small schema with one setting of each common kind.
type faceFixture struct {
	schema *UserStyleSchema
	color  *ListSetting
	ticks  *BooleanSetting
	hands  *DoubleRangeSetting
	steps  *LongRangeSetting
}

func newFaceFixture(t *testing.T) faceFixture {
	t.Helper()
	f := faceFixture{
		color: colorSetting(t),
		ticks: must(NewBooleanSetting("ticks", Text("Ticks"), LayerBase, true)),
		hands: must(NewDoubleRangeSetting("hands", Text("Hand length"), LayerBase, 0, 1, 0.75)),
		steps: must(NewLongRangeSetting("steps", Text("Step goal"), LayerComplications, 1000, 20000, 8000)),
	}
	f.schema = must(NewUserStyleSchema([]Setting{f.color, f.ticks, f.hands, f.steps}))
	return f
}

type fakeIcon struct {
	ref           string
	size          int
	width, height int
	err           error
}

func (i fakeIcon) Ref() string { return i.ref }

func (i fakeIcon) WireSize() (int, error) { return i.size, i.err }

func (i fakeIcon) Dimensions() (int, int, error) { return i.width, i.height, i.err }

func expectCode(t *testing.T, err error, code ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if !IsCode(err, code) {
		t.Fatalf("expected code %s, got %v", code, err)
	}
}

var errIconBroken = errors.New("icon unavailable")
