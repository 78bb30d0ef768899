package userstyle

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/goliatone/go-userstyle/internal/hydrate"
)

// ComplicationPolicy describes the default data sources for one slot. The
// core carries it without interpreting it.
type ComplicationPolicy struct {
	Primary        string `json:"primary,omitempty" toml:"primary"`
	Secondary      string `json:"secondary,omitempty" toml:"secondary"`
	SystemFallback int    `json:"system_fallback,omitempty" toml:"system_fallback"`
	DataType       string `json:"data_type,omitempty" toml:"data_type"`
}

// UserStyleFlavor is a named preset: a style in wire form plus per-slot
// complication defaults.
type UserStyleFlavor struct {
	ID                   string
	Style                UserStyleData
	ComplicationDefaults map[int]ComplicationPolicy
}

// NewUserStyleFlavor snapshots style into a flavor.
func NewUserStyleFlavor(id string, style *UserStyle, defaults map[int]ComplicationPolicy) UserStyleFlavor {
	flavor := UserStyleFlavor{
		ID:    id,
		Style: style.ToUserStyleData(),
	}
	if len(defaults) > 0 {
		flavor.ComplicationDefaults = make(map[int]ComplicationPolicy, len(defaults))
		for slot, policy := range defaults {
			flavor.ComplicationDefaults[slot] = policy
		}
	}
	return flavor
}

// Resolve builds the flavor's style against schema.
func (f UserStyleFlavor) Resolve(schema *UserStyleSchema) *UserStyle {
	return NewUserStyleFromData(f.Style, schema)
}

// SlotIDs returns the slots with complication defaults in ascending order.
func (f UserStyleFlavor) SlotIDs() []int {
	ids := make([]int, 0, len(f.ComplicationDefaults))
	for id := range f.ComplicationDefaults {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Validate checks that every entry names a schema setting and an option id
// the setting accepts as-is.
func (f UserStyleFlavor) Validate(schema *UserStyleSchema) error {
	if f.ID == "" {
		return newValidationError(ErrCodeInvalidFlavor, "", "flavor id is required")
	}
	for _, key := range f.Style.Keys() {
		setting, ok := schema.Setting(SettingID(key))
		if !ok {
			return newValidationError(ErrCodeInvalidFlavor, key, "flavor %q references unknown setting", f.ID)
		}
		raw := f.Style[key]
		if setting.OptionForID(raw).key() != string(raw) {
			return newValidationError(ErrCodeInvalidFlavor, key, "flavor %q selects unknown option %s", f.ID, OptionID(raw))
		}
	}
	return nil
}

// UserStyleFlavors is an ordered collection of presets.
type UserStyleFlavors struct {
	Flavors []UserStyleFlavor
}

// Validate checks each flavor independently.
func (c UserStyleFlavors) Validate(schema *UserStyleSchema) error {
	for _, flavor := range c.Flavors {
		if err := flavor.Validate(schema); err != nil {
			return err
		}
	}
	return nil
}

// Flavor looks up a preset by id.
func (c UserStyleFlavors) Flavor(id string) (UserStyleFlavor, bool) {
	for _, flavor := range c.Flavors {
		if flavor.ID == id {
			return flavor, true
		}
	}
	return UserStyleFlavor{}, false
}

type flavorDocument struct {
	Flavors []flavorEntry `json:"flavors"`
}

type flavorEntry struct {
	ID            string                        `json:"id"`
	Style         map[string]any                `json:"style"`
	Complications map[string]ComplicationPolicy `json:"complications"`
}

// DecodeFlavors decodes presets from a loosely typed payload:
//
//	{"flavors": [{"id": "night", "style": {"color": "red", "hands": 0.4},
//	  "complications": {"1": {"primary": "weather"}}}]}
//
// Style values are typed by the schema: booleans, numbers for range settings,
// option id strings for list and complication settings, and raw strings for
// custom values. The result is validated against schema.
func DecodeFlavors(payload map[string]any, schema *UserStyleSchema) (UserStyleFlavors, error) {
	return decodeFlavors(hydrate.Context{Source: "payload"}, payload, schema)
}

// ParseFlavorsTOML reads presets from a TOML document with [[flavors]] tables.
func ParseFlavorsTOML(data []byte, schema *UserStyleSchema) (UserStyleFlavors, error) {
	doc, err := flavorDecoder().DecodeTOML(hydrate.Context{Source: "toml"}, data)
	if err != nil {
		var perr *hydrate.ParseError
		if errors.As(err, &perr) {
			return UserStyleFlavors{}, &ValidationError{Code: ErrCodeMalformedData, Message: "parse flavors toml", Err: err}
		}
		return UserStyleFlavors{}, &ValidationError{Code: ErrCodeInvalidFlavor, Message: "decode flavors", Err: err}
	}
	return buildFlavors(doc, schema)
}

func flavorDecoder() *hydrate.Decoder[flavorDocument] {
	return hydrate.NewDecoder[flavorDocument](
		hydrate.WithUseNumber[flavorDocument](),
		hydrate.WithDisallowUnknownFields[flavorDocument](),
		hydrate.WithPostHook[flavorDocument](requireFlavorIDs),
	)
}

func decodeFlavors(ctx hydrate.Context, payload map[string]any, schema *UserStyleSchema) (UserStyleFlavors, error) {
	doc, err := flavorDecoder().Decode(ctx, payload)
	if err != nil {
		return UserStyleFlavors{}, &ValidationError{Code: ErrCodeInvalidFlavor, Message: "decode flavors", Err: err}
	}
	return buildFlavors(doc, schema)
}

func buildFlavors(doc flavorDocument, schema *UserStyleSchema) (UserStyleFlavors, error) {
	out := UserStyleFlavors{Flavors: make([]UserStyleFlavor, 0, len(doc.Flavors))}
	for _, entry := range doc.Flavors {
		flavor := UserStyleFlavor{ID: entry.ID, Style: make(UserStyleData, len(entry.Style))}
		for key, value := range entry.Style {
			setting, ok := schema.Setting(SettingID(key))
			if !ok {
				return UserStyleFlavors{}, newValidationError(ErrCodeInvalidFlavor, key, "flavor %q references unknown setting", entry.ID)
			}
			raw, err := optionIDFromValue(setting, value)
			if err != nil {
				return UserStyleFlavors{}, &ValidationError{Code: ErrCodeInvalidFlavor, SettingID: key, Message: fmt.Sprintf("flavor %q", entry.ID), Err: err}
			}
			flavor.Style[key] = raw
		}
		if len(entry.Complications) > 0 {
			flavor.ComplicationDefaults = make(map[int]ComplicationPolicy, len(entry.Complications))
			for slot, policy := range entry.Complications {
				id, err := strconv.Atoi(slot)
				if err != nil {
					return UserStyleFlavors{}, newValidationError(ErrCodeInvalidFlavor, "", "flavor %q slot %q is not an integer", entry.ID, slot)
				}
				flavor.ComplicationDefaults[id] = policy
			}
		}
		out.Flavors = append(out.Flavors, flavor)
	}

	if err := out.Validate(schema); err != nil {
		return UserStyleFlavors{}, err
	}
	return out, nil
}

func requireFlavorIDs(_ hydrate.Context, doc *flavorDocument) error {
	for i, entry := range doc.Flavors {
		if entry.ID == "" {
			return fmt.Errorf("flavor %d has no id", i)
		}
	}
	return nil
}

func optionIDFromValue(setting Setting, value any) (OptionID, error) {
	switch setting.Kind() {
	case KindBoolean:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", value)
		}
		return BooleanOptionFor(b).ID(), nil
	case KindDoubleRange:
		n, ok := value.(json.Number)
		if !ok {
			return nil, fmt.Errorf("expected number, got %T", value)
		}
		f, err := n.Float64()
		if err != nil {
			return nil, err
		}
		return EncodeDouble(f), nil
	case KindLongRange:
		n, ok := value.(json.Number)
		if !ok {
			return nil, fmt.Errorf("expected integer, got %T", value)
		}
		i, err := n.Int64()
		if err != nil {
			f, ferr := n.Float64()
			if ferr != nil || f != math.Trunc(f) {
				return nil, fmt.Errorf("expected integer, got %s", n)
			}
			i = int64(f)
		}
		return EncodeLong(i), nil
	default:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", value)
		}
		return OptionID(s), nil
	}
}
