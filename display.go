package userstyle

import (
	"fmt"
	"strings"
)

// DisplayText is localized text owned by the resource collaborator. The
// ordinal is the 1-based position of the owning setting within its schema;
// implementations that do not need it ignore it.
type DisplayText interface {
	Resolve(ordinal int) string
}

// Text is a DisplayText that always resolves to itself.
type Text string

// Resolve implements DisplayText.
func (t Text) Resolve(int) string { return string(t) }

// IndexedText formats Format with the owning setting's ordinal, producing
// labels such as "Complication 2".
type IndexedText struct {
	Format string
}

// Resolve implements DisplayText.
func (t IndexedText) Resolve(ordinal int) string {
	if !strings.Contains(t.Format, "%") {
		return t.Format
	}
	return fmt.Sprintf(t.Format, ordinal)
}

func resolveText(text DisplayText, ordinal int) string {
	if text == nil {
		return ""
	}
	return text.Resolve(ordinal)
}

// Icon is an opaque image reference resolved by the platform. The core only
// asks for its wire size and pixel dimensions.
type Icon interface {
	// Ref identifies the icon source (for example a resource name). It feeds
	// the schema digest instead of the pixel content.
	Ref() string
	WireSize() (int, error)
	Dimensions() (width, height int, err error)
}

// IconBounds caps icon dimensions during wire size estimation. Zero values
// disable the corresponding check.
type IconBounds struct {
	MaxWidth  int
	MaxHeight int
}

func (b IconBounds) check(settingID string, icon Icon) (int, error) {
	if icon == nil {
		return 0, nil
	}
	size, err := icon.WireSize()
	if err != nil {
		return 0, &ValidationError{Code: ErrCodeIconTooLarge, SettingID: settingID, Message: "icon size unavailable", Err: err}
	}
	width, height, err := icon.Dimensions()
	if err != nil {
		return 0, &ValidationError{Code: ErrCodeIconTooLarge, SettingID: settingID, Message: "icon dimensions unavailable", Err: err}
	}
	if b.MaxWidth > 0 && width > b.MaxWidth {
		return 0, newValidationError(ErrCodeIconTooLarge, settingID, "icon %q width %d exceeds %d", icon.Ref(), width, b.MaxWidth)
	}
	if b.MaxHeight > 0 && height > b.MaxHeight {
		return 0, newValidationError(ErrCodeIconTooLarge, settingID, "icon %q height %d exceeds %d", icon.Ref(), height, b.MaxHeight)
	}
	return size, nil
}

func iconRef(icon Icon) string {
	if icon == nil {
		return ""
	}
	return icon.Ref()
}

// EditorData carries editor-only overrides. It is never sent over the wire.
type EditorData struct {
	Icon Icon
}

// WatchFaceLayer flags the rendering layers a setting affects.
type WatchFaceLayer uint8

const (
	LayerBase WatchFaceLayer = 1 << iota
	LayerComplications
	LayerComplicationsOverlay

	AllLayers = LayerBase | LayerComplications | LayerComplicationsOverlay
)

// Has reports whether every flag in other is set.
func (l WatchFaceLayer) Has(other WatchFaceLayer) bool {
	return l&other == other
}

func (l WatchFaceLayer) String() string {
	if l == 0 {
		return "none"
	}
	var parts []string
	if l.Has(LayerBase) {
		parts = append(parts, "base")
	}
	if l.Has(LayerComplications) {
		parts = append(parts, "complications")
	}
	if l.Has(LayerComplicationsOverlay) {
		parts = append(parts, "complications_overlay")
	}
	return strings.Join(parts, "|")
}
