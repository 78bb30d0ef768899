package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	userstyle "github.com/goliatone/go-userstyle"
)

var ErrETagMismatch = errors.New("state: etag mismatch")

// Ref identifies one persisted style layer of one watch face instance. An
// empty scope name means the user layer.
type Ref struct {
	WatchFace string
	Instance  string
	Scope     userstyle.Scope
}

// Meta is storage-owned metadata used for audit and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads and saves one encoded style for a single Ref.
type Store interface {
	Load(ctx context.Context, ref Ref) (blob []byte, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, blob []byte, meta Meta) (Meta, error)
}

// Mutator edits a staged style.
type Mutator func(*userstyle.MutableUserStyle) error

// Resolver orchestrates loads, layering and saves against a Store.
type Resolver struct {
	Store Store
	// Now defaults to time.Now.
	Now func() time.Time
}

// Identifier returns the canonical storage key watchface/instance/scope.
func (r Ref) Identifier() (string, error) {
	watchFace := strings.TrimSpace(r.WatchFace)
	if watchFace == "" {
		return "", fmt.Errorf("state: watch face is required")
	}
	instance := strings.TrimSpace(r.Instance)
	if instance == "" {
		return "", fmt.Errorf("state: instance is required for watch face %q", watchFace)
	}
	return fmt.Sprintf("%s/%s/%s", watchFace, instance, r.scopeName()), nil
}

func (r Ref) scopeName() string {
	if r.Scope.Name == "" {
		return "user"
	}
	return r.Scope.Name
}

func (r Ref) scope() userstyle.Scope {
	if r.Scope.Name == "" {
		return userstyle.NewScope("user", userstyle.ScopePriorityUser, userstyle.WithScopeLabel("User"))
	}
	return r.Scope
}

// Load decodes the style stored for ref. A missing record resolves to the
// schema defaults with empty Meta.
func (r Resolver) Load(ctx context.Context, ref Ref, schema *userstyle.UserStyleSchema) (*userstyle.UserStyle, Meta, error) {
	if err := r.check(ref, schema); err != nil {
		return nil, Meta{}, err
	}
	blob, meta, ok, err := r.Store.Load(ctx, ref)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("state: load %q: %w", r.key(ref), err)
	}
	if !ok {
		return schema.DefaultStyle(), Meta{}, nil
	}
	style, err := userstyle.DecodeUserStyle(blob, schema)
	if err != nil {
		return nil, meta, fmt.Errorf("state: decode %q: %w", r.key(ref), err)
	}
	return style, meta, nil
}

// Resolve loads one layer per scope for the instance and merges them over
// the schema defaults. Scopes without a stored record are skipped; an unnamed
// scope means the user scope, as in Ref.
func (r Resolver) Resolve(ctx context.Context, watchFace, instance string, schema *userstyle.UserStyleSchema, scopes ...userstyle.Scope) (*userstyle.ResolvedStyle, error) {
	if len(scopes) == 0 {
		return nil, fmt.Errorf("state: at least one scope is required")
	}
	layers := make([]userstyle.StyleLayer, 0, len(scopes)+1)
	canonical := make([]userstyle.Scope, len(scopes))
	for i, scope := range scopes {
		if scope.Name == "defaults" {
			return nil, fmt.Errorf("state: scope name %q is reserved", "defaults")
		}
		ref := Ref{WatchFace: watchFace, Instance: instance, Scope: scope}
		scope = ref.scope()
		canonical[i] = scope
		if err := r.check(ref, schema); err != nil {
			return nil, err
		}
		blob, meta, ok, err := r.Store.Load(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("state: load %q: %w", r.key(ref), err)
		}
		if !ok {
			continue
		}
		data, err := userstyle.DecodeUserStyleData(blob)
		if err != nil {
			return nil, fmt.Errorf("state: decode %q: %w", r.key(ref), err)
		}
		layers = append(layers, userstyle.NewStyleLayer(scope, data, userstyle.WithSnapshotID(meta.SnapshotID)))
	}

	defaults := userstyle.NewScope("defaults", defaultsPriority(canonical), userstyle.WithScopeLabel("Defaults"))
	layers = append(layers, userstyle.NewStyleLayer(defaults, schema.DefaultStyle().ToUserStyleData()))

	stack, err := userstyle.NewStyleStack(layers...)
	if err != nil {
		return nil, fmt.Errorf("state: stack: %w", err)
	}
	return stack.Resolve(ctx, schema)
}

// defaultsPriority picks a priority below every scope.
func defaultsPriority(scopes []userstyle.Scope) int {
	lowest := scopes[0].Priority
	for _, scope := range scopes[1:] {
		if scope.Priority < lowest {
			lowest = scope.Priority
		}
	}
	return lowest - 1
}

// Mutate loads the style for ref, applies fn and saves the result. A non-empty
// meta.ETag must match the stored ETag. Each save gets a new SnapshotID and
// an ETag derived from the encoded bytes.
func (r Resolver) Mutate(ctx context.Context, ref Ref, meta Meta, schema *userstyle.UserStyleSchema, fn Mutator) (*userstyle.UserStyle, Meta, error) {
	if err := r.check(ref, schema); err != nil {
		return nil, Meta{}, err
	}
	if fn == nil {
		return nil, Meta{}, fmt.Errorf("state: mutator is required")
	}

	style, loadedMeta, err := r.Load(ctx, ref, schema)
	if err != nil {
		return nil, Meta{}, err
	}
	if meta.ETag != "" && loadedMeta.ETag != "" && meta.ETag != loadedMeta.ETag {
		return nil, loadedMeta, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, meta.ETag, loadedMeta.ETag)
	}

	staged := style.Mutable()
	if err := fn(staged); err != nil {
		return nil, loadedMeta, err
	}
	next := staged.ToUserStyle()
	blob, err := userstyle.EncodeUserStyle(next)
	if err != nil {
		return nil, loadedMeta, fmt.Errorf("state: encode %q: %w", r.key(ref), err)
	}

	saveMeta := mergeMeta(loadedMeta, meta)
	saveMeta.SnapshotID = uuid.NewString()
	saveMeta.ETag = ETag(blob)
	saveMeta.UpdatedAt = r.now()
	savedMeta, err := r.Store.Save(ctx, ref, blob, saveMeta)
	if err != nil {
		return nil, loadedMeta, fmt.Errorf("state: save %q: %w", r.key(ref), err)
	}
	return next, savedMeta, nil
}

// Layer loads ref as a stack layer in its scope.
func (r Resolver) Layer(ctx context.Context, ref Ref) (userstyle.StyleLayer, bool, error) {
	if r.Store == nil {
		return userstyle.StyleLayer{}, false, fmt.Errorf("state: store is required")
	}
	blob, meta, ok, err := r.Store.Load(ctx, ref)
	if err != nil || !ok {
		return userstyle.StyleLayer{}, false, err
	}
	data, err := userstyle.DecodeUserStyleData(blob)
	if err != nil {
		return userstyle.StyleLayer{}, false, fmt.Errorf("state: decode %q: %w", r.key(ref), err)
	}
	return userstyle.NewStyleLayer(ref.scope(), data, userstyle.WithSnapshotID(meta.SnapshotID)), true, nil
}

// ETag fingerprints an encoded style.
func ETag(blob []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(blob))
}

func (r Resolver) check(ref Ref, schema *userstyle.UserStyleSchema) error {
	if r.Store == nil {
		return fmt.Errorf("state: store is required")
	}
	if schema == nil {
		return fmt.Errorf("state: schema is required")
	}
	_, err := ref.Identifier()
	return err
}

func (r Resolver) key(ref Ref) string {
	key, err := ref.Identifier()
	if err != nil {
		return ref.WatchFace
	}
	return key
}

func (r Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func mergeMeta(base, override Meta) Meta {
	out := base
	if !override.UpdatedAt.IsZero() {
		out.UpdatedAt = override.UpdatedAt
	}
	if override.Extra != nil {
		out.Extra = override.Extra
	}
	return out
}
