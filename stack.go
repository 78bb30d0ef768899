package userstyle

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/goliatone/go-userstyle/layering"
	"github.com/goliatone/go-userstyle/pkg/activity"
)

// Recommended priorities for the canonical style layers. Higher numbers win.
const (
	ScopePriorityDefaults = 100
	ScopePriorityFlavor   = 200
	ScopePriorityUser     = 300
	ScopePriorityPreview  = 400
)

// Scope names a precedence bucket in a style stack.
type Scope struct {
	Name     string         `json:"name"`
	Label    string         `json:"label,omitempty"`
	Priority int            `json:"priority"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ScopeOption configures a Scope.
type ScopeOption func(*scopeConfig)

type scopeConfig struct {
	label    string
	metadata map[string]any
}

// WithScopeLabel sets a human-friendly label on the scope.
func WithScopeLabel(label string) ScopeOption {
	return func(cfg *scopeConfig) {
		cfg.label = label
	}
}

// WithScopeMetadata attaches a copy of metadata to the scope.
func WithScopeMetadata(metadata map[string]any) ScopeOption {
	return func(cfg *scopeConfig) {
		cfg.metadata = copyMetadata(metadata)
	}
}

// NewScope builds a Scope. Validation is deferred to NewStyleStack.
func NewScope(name string, priority int, opts ...ScopeOption) Scope {
	cfg := scopeConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return Scope{
		Name:     name,
		Label:    cfg.label,
		Priority: priority,
		Metadata: copyMetadata(cfg.metadata),
	}
}

func (s Scope) clone() Scope {
	s.Metadata = copyMetadata(s.Metadata)
	return s
}

func (s Scope) isZero() bool {
	return s.Name == "" && s.Label == "" && s.Priority == 0 && len(s.Metadata) == 0
}

func (s Scope) activityContext(snapshotID string) activity.ScopeContext {
	return activity.ScopeContext{
		Name:       s.Name,
		Label:      s.Label,
		Priority:   s.Priority,
		Metadata:   copyMetadata(s.Metadata),
		SnapshotID: snapshotID,
	}
}

// StyleLayer pairs a scope with the wire data captured for it. A nil value
// for a setting id means the layer leaves that setting to weaker layers.
type StyleLayer struct {
	Scope      Scope
	Data       UserStyleData
	SnapshotID string
}

// LayerOption configures a StyleLayer.
type LayerOption func(*StyleLayer)

// WithSnapshotID records the persisted snapshot the layer was loaded from.
func WithSnapshotID(id string) LayerOption {
	return func(layer *StyleLayer) {
		layer.SnapshotID = id
	}
}

// NewStyleLayer copies scope and data into a layer.
func NewStyleLayer(scope Scope, data UserStyleData, opts ...LayerOption) StyleLayer {
	layer := StyleLayer{
		Scope: scope.clone(),
		Data:  data.Clone(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&layer)
		}
	}
	return layer
}

// FlavorLayer wraps a flavor's style data in the canonical flavor scope.
func FlavorLayer(flavor UserStyleFlavor) StyleLayer {
	scope := NewScope("flavor", ScopePriorityFlavor,
		WithScopeLabel("Flavor"),
		WithScopeMetadata(map[string]any{"flavor": flavor.ID}),
	)
	return NewStyleLayer(scope, flavor.Style)
}

func (l StyleLayer) clone() StyleLayer {
	return StyleLayer{
		Scope:      l.Scope.clone(),
		Data:       l.Data.Clone(),
		SnapshotID: l.SnapshotID,
	}
}

var (
	// ErrScopeNameRequired indicates a layer without a scope name.
	ErrScopeNameRequired = errors.New("userstyle: scope name must be provided")
	// ErrDuplicateScopeName indicates two layers share a scope name.
	ErrDuplicateScopeName = errors.New("userstyle: scope names must be unique")
	// ErrPriorityOrder indicates two layers share a priority.
	ErrPriorityOrder = errors.New("userstyle: scope priorities must be strictly ordered")
	// ErrEmptyStack indicates Resolve was called on a stack without layers.
	ErrEmptyStack = errors.New("userstyle: stack must include at least one layer")
)

// StyleStack is an immutable set of style layers ordered from strongest to
// weakest.
type StyleStack struct {
	layers []StyleLayer
}

// NewStyleStack validates layers and sorts them strongest first.
func NewStyleStack(layers ...StyleLayer) (*StyleStack, error) {
	seen := make(map[string]struct{}, len(layers))
	copied := make([]StyleLayer, len(layers))
	for i, layer := range layers {
		if layer.Scope.Name == "" {
			return nil, ErrScopeNameRequired
		}
		if _, ok := seen[layer.Scope.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateScopeName, layer.Scope.Name)
		}
		seen[layer.Scope.Name] = struct{}{}
		copied[i] = layer.clone()
	}

	sort.SliceStable(copied, func(i, j int) bool {
		return copied[i].Scope.Priority > copied[j].Scope.Priority
	})
	for i := 1; i < len(copied); i++ {
		if copied[i-1].Scope.Priority == copied[i].Scope.Priority {
			return nil, fmt.Errorf("%w: %d", ErrPriorityOrder, copied[i].Scope.Priority)
		}
	}
	return &StyleStack{layers: copied}, nil
}

// Layers returns copies of the layers, strongest first.
func (s *StyleStack) Layers() []StyleLayer {
	if s == nil || len(s.layers) == 0 {
		return nil
	}
	out := make([]StyleLayer, len(s.layers))
	for i := range s.layers {
		out[i] = s.layers[i].clone()
	}
	return out
}

// Len returns the number of layers.
func (s *StyleStack) Len() int {
	if s == nil {
		return 0
	}
	return len(s.layers)
}

// With returns a new stack with layer added.
func (s *StyleStack) With(layer StyleLayer) (*StyleStack, error) {
	return NewStyleStack(append(s.Layers(), layer)...)
}

// ResolveOption configures stack resolution.
type ResolveOption func(*resolveConfig)

type resolveConfig struct {
	logger  Logger
	emitter *activity.Emitter
	event   activity.StyleEventInput
}

// WithResolveLogger records the resolution.
func WithResolveLogger(logger Logger) ResolveOption {
	return func(cfg *resolveConfig) {
		cfg.logger = logger
	}
}

// WithResolveActivity emits one userstyle.layer.applied event per layer that
// supplied at least one selection. input carries the identity fields.
func WithResolveActivity(hooks activity.Hooks, input activity.StyleEventInput) ResolveOption {
	return func(cfg *resolveConfig) {
		cfg.emitter = activity.NewEmitter(hooks, activity.Config{Enabled: true, Channel: input.Channel})
		cfg.event = input
	}
}

// Resolve merges the layers over schema defaults. Values that do not name a
// valid option of their setting, and ids the schema does not know, are
// skipped so a weaker layer can supply the setting instead.
func (s *StyleStack) Resolve(ctx context.Context, schema *UserStyleSchema, opts ...ResolveOption) (*ResolvedStyle, error) {
	if s == nil || len(s.layers) == 0 {
		return nil, ErrEmptyStack
	}
	if schema == nil {
		return nil, newValidationError(ErrCodeMissingField, "", "schema is required")
	}
	cfg := resolveConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	filtered := make([]UserStyleData, len(s.layers))
	for i, layer := range s.layers {
		filtered[i] = acceptedData(layer.Data, schema)
	}
	merged := layering.MergeLayers(filtered...)
	resolved := &ResolvedStyle{
		style:    NewUserStyleFromData(merged, schema),
		schema:   schema,
		layers:   s.Layers(),
		accepted: filtered,
	}

	contributed := resolved.contributions()
	var emitErr error
	for i, layer := range s.layers {
		if len(contributed[i]) == 0 || !cfg.emitter.Enabled() {
			continue
		}
		input := cfg.event
		input.Schema = schema.Fingerprint()
		input.Changed = contributed[i]
		input.Scope = layer.Scope.activityContext(layer.SnapshotID)
		input.Metadata = copyMetadata(cfg.event.Metadata)
		if err := cfg.emitter.Emit(ctx, activity.BuildStyleLayerAppliedEvent(input)); err != nil {
			emitErr = errors.Join(emitErr, err)
		}
	}

	loggerOrNoop(cfg.logger).LogEvent(LogEvent{
		Component: "stack",
		Message:   "style stack resolved",
		Fields: map[string]any{
			"layers": len(s.layers),
			"schema": schema.Fingerprint(),
		},
		Err:      emitErr,
		Duration: time.Since(start),
	})
	return resolved, nil
}

// acceptedData keeps the entries of data that resolve to themselves.
func acceptedData(data UserStyleData, schema *UserStyleSchema) UserStyleData {
	if len(data) == 0 {
		return nil
	}
	out := make(UserStyleData, len(data))
	for key, value := range data {
		setting, ok := schema.Setting(SettingID(key))
		if !ok || value == nil {
			continue
		}
		if !setting.OptionForID(value).ID().Equal(value) {
			continue
		}
		out[key] = append([]byte{}, value...)
	}
	return out
}

// ResolvedStyle is the outcome of resolving a stack against a schema.
type ResolvedStyle struct {
	style    *UserStyle
	schema   *UserStyleSchema
	layers   []StyleLayer
	accepted []UserStyleData
}

// Style returns the merged style.
func (r *ResolvedStyle) Style() *UserStyle { return r.style }

// Layers returns copies of the contributing layers, strongest first.
func (r *ResolvedStyle) Layers() []StyleLayer {
	out := make([]StyleLayer, len(r.layers))
	for i := range r.layers {
		out[i] = r.layers[i].clone()
	}
	return out
}

// Source returns the scope that supplied the setting, or false when the
// schema default was used.
func (r *ResolvedStyle) Source(id SettingID) (Scope, bool) {
	winner := layering.Winner(string(id), r.accepted...)
	if winner < 0 {
		return Scope{}, false
	}
	return r.layers[winner].Scope.clone(), true
}

func (r *ResolvedStyle) contributions() [][]string {
	out := make([][]string, len(r.layers))
	for _, setting := range r.schema.Settings() {
		id := string(setting.ID())
		if winner := layering.Winner(id, r.accepted...); winner >= 0 {
			out[winner] = append(out[winner], id)
		}
	}
	return out
}

func copyMetadata(origin map[string]any) map[string]any {
	if len(origin) == 0 {
		return nil
	}
	out := make(map[string]any, len(origin))
	for key, value := range origin {
		out[key] = value
	}
	return out
}
