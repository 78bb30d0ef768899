package userstyle

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// SchemaOption configures schema construction.
type SchemaOption func(*schemaConfig)

type schemaConfig struct {
	legacyComplications bool
	iconBounds          *IconBounds
}

// WithLegacyComplicationValidation limits the schema to one complication
// slots setting overall instead of one per active branch. Older platforms
// cannot resolve hierarchical selections.
func WithLegacyComplicationValidation() SchemaOption {
	return func(cfg *schemaConfig) {
		cfg.legacyComplications = true
	}
}

// WithIconBounds rejects schemas containing icons larger than bounds.
func WithIconBounds(bounds IconBounds) SchemaOption {
	return func(cfg *schemaConfig) {
		b := bounds
		cfg.iconBounds = &b
	}
}

// UserStyleSchema is an immutable, validated catalog of settings. Settings
// form a forest through their options' child settings.
type UserStyleSchema struct {
	settings  []Setting
	byID      map[SettingID]Setting
	ordinals  map[Setting]int
	hasParent map[Setting]bool
	roots     []Setting
	legacy    bool
}

// NewUserStyleSchema validates settings and builds a schema. Any violation
// fails the whole build.
func NewUserStyleSchema(settings []Setting, opts ...SchemaOption) (*UserStyleSchema, error) {
	cfg := schemaConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	schema := &UserStyleSchema{
		settings:  make([]Setting, 0, len(settings)),
		byID:      make(map[SettingID]Setting, len(settings)),
		ordinals:  make(map[Setting]int, len(settings)),
		hasParent: make(map[Setting]bool, len(settings)),
		legacy:    cfg.legacyComplications,
	}

	customCount := 0
	for i, setting := range settings {
		if setting == nil {
			return nil, newValidationError(ErrCodeMissingField, "", "setting %d is nil", i)
		}
		if _, dup := schema.byID[setting.ID()]; dup {
			return nil, newValidationError(ErrCodeDuplicateSettingID, string(setting.ID()), "setting id declared twice")
		}
		if setting.Kind().customValue() {
			customCount++
		}
		schema.byID[setting.ID()] = setting
		schema.ordinals[setting] = i + 1
		schema.settings = append(schema.settings, setting)
	}

	// Second pass: parent links are derived once every setting is known.
	for _, setting := range schema.settings {
		for _, child := range setting.base().childSettings() {
			if _, ok := schema.ordinals[child]; !ok {
				return nil, newValidationError(ErrCodeDanglingChild, string(setting.ID()), "child setting %q is not part of the schema", child.ID())
			}
			schema.hasParent[child] = true
		}
	}
	for _, setting := range schema.settings {
		if !schema.hasParent[setting] {
			schema.roots = append(schema.roots, setting)
		}
	}
	if err := schema.checkAcyclic(); err != nil {
		return nil, err
	}

	if customCount > 1 {
		return nil, newValidationError(ErrCodeMultipleCustomValue, "", "schema declares %d custom value settings, max 1", customCount)
	}
	if err := schema.checkComplicationSlots(); err != nil {
		return nil, err
	}

	if cfg.iconBounds != nil {
		if _, err := schema.EstimateWireSizeInBytes(*cfg.iconBounds); err != nil {
			return nil, err
		}
	}
	return schema, nil
}

func (s *UserStyleSchema) checkAcyclic() error {
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[Setting]int, len(s.settings))
	var visit func(Setting) error
	visit = func(setting Setting) error {
		switch state[setting] {
		case visiting:
			return newValidationError(ErrCodeCyclicHierarchy, string(setting.ID()), "setting is its own ancestor")
		case done:
			return nil
		}
		state[setting] = visiting
		for _, child := range setting.base().childSettings() {
			if err := visit(child); err != nil {
				return err
			}
		}
		state[setting] = done
		return nil
	}
	for _, setting := range s.settings {
		if err := visit(setting); err != nil {
			return err
		}
	}
	return nil
}

func (s *UserStyleSchema) checkComplicationSlots() error {
	if s.legacy {
		count := 0
		for _, setting := range s.settings {
			if setting.Kind() == KindComplicationSlots {
				count++
			}
		}
		if count > 1 {
			return newValidationError(ErrCodeMultipleComplicationSet, "", "legacy schemas allow one complication slots setting, found %d", count)
		}
		return nil
	}

	memo := make(map[Setting]int, len(s.settings))
	var reachable func(Setting) int
	reachable = func(setting Setting) int {
		if n, ok := memo[setting]; ok {
			return n
		}
		n := 0
		if setting.Kind() == KindComplicationSlots {
			n = 1
		}
		widest := 0
		for _, option := range setting.base().options {
			branch := 0
			for _, child := range option.ChildSettings() {
				branch += reachable(child)
			}
			if branch > widest {
				widest = branch
			}
		}
		n += widest
		memo[setting] = n
		return n
	}

	count := 0
	for _, root := range s.roots {
		count += reachable(root)
	}
	if count > 1 {
		return newValidationError(ErrCodeMultipleComplicationSet, "", "up to %d complication slots settings can be active at once, max 1", count)
	}
	return nil
}

// Settings returns every setting in schema order.
func (s *UserStyleSchema) Settings() []Setting {
	return append([]Setting(nil), s.settings...)
}

// RootSettings returns settings that no option lists as a child.
func (s *UserStyleSchema) RootSettings() []Setting {
	return append([]Setting(nil), s.roots...)
}

// Len reports the number of settings.
func (s *UserStyleSchema) Len() int { return len(s.settings) }

// Setting looks up a setting by id.
func (s *UserStyleSchema) Setting(id SettingID) (Setting, bool) {
	setting, ok := s.byID[id]
	return setting, ok
}

// Contains reports whether setting is this schema's instance, by identity.
func (s *UserStyleSchema) Contains(setting Setting) bool {
	if setting == nil {
		return false
	}
	_, ok := s.ordinals[setting]
	return ok
}

// HasParent reports whether some option in the schema lists setting as a child.
func (s *UserStyleSchema) HasParent(setting Setting) bool {
	return s.hasParent[setting]
}

// Ordinal returns the 1-based position of setting, or 0 when absent.
func (s *UserStyleSchema) Ordinal(setting Setting) int {
	return s.ordinals[setting]
}

// DisplayName resolves the setting's display name with its ordinal.
func (s *UserStyleSchema) DisplayName(setting Setting) string {
	if setting == nil {
		return ""
	}
	return resolveText(setting.DisplayName(), s.Ordinal(setting))
}

// LegacyComplicationValidation reports which complication rule was applied.
func (s *UserStyleSchema) LegacyComplicationValidation() bool { return s.legacy }

// DefaultStyle selects every setting's default option.
func (s *UserStyleSchema) DefaultStyle() *UserStyle {
	style := newUserStyle(s.settings, len(s.settings))
	for _, setting := range s.settings {
		style.selections[setting] = setting.DefaultOption()
	}
	return style
}

// EstimateWireSizeInBytes sums every setting's estimate, resolving indexed
// display text with each setting's ordinal.
func (s *UserStyleSchema) EstimateWireSizeInBytes(bounds IconBounds) (int, error) {
	total := 0
	for _, setting := range s.settings {
		size, err := setting.base().estimateWireSize(bounds, s.Ordinal(setting))
		if err != nil {
			return 0, err
		}
		total += size
	}
	return total, nil
}

// Digest hashes every setting and option in schema order. Icons contribute
// their reference, not their pixels.
func (s *UserStyleSchema) Digest() uint64 {
	d := xxhash.New()
	w := digestWriter{d: d}
	w.int(len(s.settings))
	for _, setting := range s.settings {
		ordinal := s.Ordinal(setting)
		w.str(string(setting.ID()))
		w.int(int(setting.Kind()))
		w.str(resolveText(setting.DisplayName(), ordinal))
		w.str(resolveText(setting.Description(), ordinal))
		w.str(iconRef(setting.Icon()))
		w.int(setting.DefaultOptionIndex())
		w.int(int(setting.AffectedLayers()))
		options := setting.base().options
		w.int(len(options))
		for _, option := range options {
			w.str(option.key())
			switch typed := option.(type) {
			case *ListOption:
				w.str(resolveText(typed.displayName, ordinal))
				w.str(resolveText(typed.screenReaderName, ordinal))
				w.str(iconRef(typed.icon))
				w.int(len(typed.children))
				for _, child := range typed.children {
					w.str(string(child.ID()))
				}
			case *ComplicationSlotsOption:
				w.str(resolveText(typed.displayName, ordinal))
				w.str(resolveText(typed.screenReaderName, ordinal))
				w.str(iconRef(typed.icon))
				w.int(len(typed.overlays))
				for _, overlay := range typed.overlays {
					w.overlay(overlay, ordinal)
				}
			}
		}
	}
	return d.Sum64()
}

// Fingerprint is the hex form of Digest.
func (s *UserStyleSchema) Fingerprint() string {
	return fmt.Sprintf("%016x", s.Digest())
}

type digestWriter struct {
	d   *xxhash.Digest
	buf [8]byte
}

func (w *digestWriter) int(v int) {
	binary.BigEndian.PutUint64(w.buf[:], uint64(int64(v)))
	_, _ = w.d.Write(w.buf[:])
}

func (w *digestWriter) str(v string) {
	w.int(len(v))
	_, _ = w.d.WriteString(v)
}

func (w *digestWriter) flag(set bool, v int) {
	if !set {
		w.int(-1)
		return
	}
	w.int(v)
}

func (w *digestWriter) overlay(o ComplicationSlotOverlay, ordinal int) {
	w.int(o.SlotID)
	w.flag(o.Enabled != nil, boolInt(o.Enabled))
	w.flag(o.AccessibilityTraversalIndex != nil, derefInt(o.AccessibilityTraversalIndex))
	if o.Bounds != nil {
		w.str(fmt.Sprintf("%g,%g,%g,%g", o.Bounds.Left, o.Bounds.Top, o.Bounds.Right, o.Bounds.Bottom))
	} else {
		w.str("")
	}
	w.str(resolveText(o.Name, ordinal))
	w.str(resolveText(o.ScreenReaderName, ordinal))
}

func boolInt(v *bool) int {
	if v != nil && *v {
		return 1
	}
	return 0
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
