package userstyle

import (
	"encoding/json"

	"github.com/goliatone/go-userstyle/layering"
)

// Trace reports how each layer of a resolved stack treated one setting.
type Trace struct {
	SettingID string       `json:"setting_id"`
	Selected  string       `json:"selected"`
	Layers    []Provenance `json:"layers"`
}

// Provenance details one layer's contribution to a traced setting. Ignored
// marks a value the layer carried that did not name a valid option.
type Provenance struct {
	Scope      Scope  `json:"scope"`
	SnapshotID string `json:"snapshot_id,omitempty"`
	Value      []byte `json:"value,omitempty"`
	Found      bool   `json:"found"`
	Ignored    bool   `json:"ignored,omitempty"`
	Winner     bool   `json:"winner,omitempty"`
}

// Trace lists every layer's value for id, strongest first.
func (r *ResolvedStyle) Trace(id SettingID) Trace {
	key := string(id)
	trace := Trace{SettingID: key, Layers: make([]Provenance, 0, len(r.layers))}
	if option, ok := r.style.GetByID(id); ok {
		trace.Selected = option.String()
	}

	raw := make([]UserStyleData, len(r.layers))
	for i := range r.layers {
		raw[i] = r.layers[i].Data
	}
	hits := layering.Lookup(key, raw...)
	winner := layering.Winner(key, r.accepted...)
	for i, hit := range hits {
		layer := r.layers[i]
		_, valid := r.accepted[i][key]
		trace.Layers = append(trace.Layers, Provenance{
			Scope:      layer.Scope.clone(),
			SnapshotID: layer.SnapshotID,
			Value:      hit.Value,
			Found:      hit.Found && valid,
			Ignored:    hit.Found && !valid,
			Winner:     i == winner,
		})
	}
	return trace
}

// ToJSON serialises the trace for logging or transport.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON parses a payload produced by ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}
