package state_test

import (
	"context"
	"testing"

	userstyle "github.com/goliatone/go-userstyle"
	"github.com/goliatone/go-userstyle/pkg/state"
)

type fixture struct {
	schema *userstyle.UserStyleSchema
	color  *userstyle.ListSetting
	ticks  *userstyle.BooleanSetting
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	red, err := userstyle.NewListOption(userstyle.OptionID("red"), userstyle.Text("Red"))
	if err != nil {
		t.Fatalf("option: %v", err)
	}
	blue, err := userstyle.NewListOption(userstyle.OptionID("blue"), userstyle.Text("Blue"))
	if err != nil {
		t.Fatalf("option: %v", err)
	}
	green, err := userstyle.NewListOption(userstyle.OptionID("green"), userstyle.Text("Green"))
	if err != nil {
		t.Fatalf("option: %v", err)
	}
	color, err := userstyle.NewListSetting("color", userstyle.Text("Color"), userstyle.LayerBase, []*userstyle.ListOption{red, blue, green}, 0)
	if err != nil {
		t.Fatalf("setting: %v", err)
	}
	ticks, err := userstyle.NewBooleanSetting("ticks", userstyle.Text("Ticks"), userstyle.LayerBase, true)
	if err != nil {
		t.Fatalf("setting: %v", err)
	}
	schema, err := userstyle.NewUserStyleSchema([]userstyle.Setting{color, ticks})
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	return fixture{schema: schema, color: color, ticks: ticks}
}

func TestResolverLoadMissingReturnsDefaults(t *testing.T) {
	fx := newFixture(t)
	resolver := state.Resolver{Store: state.NewMemoryStore()}

	style, meta, err := resolver.Load(context.Background(), faceRef, fx.schema)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !style.Equal(fx.schema.DefaultStyle()) {
		t.Fatalf("expected default style, got %s", style)
	}
	if meta.SnapshotID != "" || meta.ETag != "" {
		t.Fatalf("expected empty meta, got %+v", meta)
	}
}

func TestResolverLoadRejectsCorruptBlob(t *testing.T) {
	fx := newFixture(t)
	store := state.NewMemoryStore()
	if _, err := store.Save(context.Background(), faceRef, []byte{0, 0, 0, 1}, state.Meta{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	_, _, err := state.Resolver{Store: store}.Load(context.Background(), faceRef, fx.schema)
	if !userstyle.IsCode(err, userstyle.ErrCodeMalformedData) {
		t.Fatalf("expected malformed data error, got %v", err)
	}
}

func TestResolverResolveLayersScopes(t *testing.T) {
	fx := newFixture(t)
	store := state.NewMemoryStore()
	resolver := state.Resolver{Store: store}
	ctx := context.Background()

	flavor := userstyle.NewScope("flavor", userstyle.ScopePriorityFlavor)
	user := userstyle.NewScope("user", userstyle.ScopePriorityUser)
	preview := userstyle.NewScope("preview", userstyle.ScopePriorityPreview)

	_, flavorMeta, err := resolver.Mutate(ctx, state.Ref{WatchFace: "analog", Instance: "face-1", Scope: flavor}, state.Meta{}, fx.schema, func(m *userstyle.MutableUserStyle) error {
		if err := m.SetByID("color", userstyle.OptionID("green")); err != nil {
			return err
		}
		return m.SetByID("ticks", userstyle.BooleanFalse.ID())
	})
	if err != nil {
		t.Fatalf("mutate flavor: %v", err)
	}
	_, userMeta, err := resolver.Mutate(ctx, state.Ref{WatchFace: "analog", Instance: "face-1", Scope: user}, state.Meta{}, fx.schema, func(m *userstyle.MutableUserStyle) error {
		return m.SetByID("color", userstyle.OptionID("blue"))
	})
	if err != nil {
		t.Fatalf("mutate user: %v", err)
	}

	resolved, err := resolver.Resolve(ctx, "analog", "face-1", fx.schema, flavor, user, preview)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	// The user layer stores a full style, so it wins every setting it saved.
	if option, _ := resolved.Style().Get(fx.color); option.ID().String() != "blue" {
		t.Fatalf("expected user color, got %v", option)
	}
	source, ok := resolved.Source("color")
	if !ok || source.Name != "user" {
		t.Fatalf("expected user source, got %+v", source)
	}

	trace := resolved.Trace("color")
	if len(trace.Layers) != 3 {
		t.Fatalf("expected user, flavor and defaults layers, got %d", len(trace.Layers))
	}
	if trace.Layers[0].SnapshotID != userMeta.SnapshotID || !trace.Layers[0].Winner {
		t.Fatalf("expected user layer to win with its snapshot, got %+v", trace.Layers[0])
	}
	if trace.Layers[1].SnapshotID != flavorMeta.SnapshotID || !trace.Layers[1].Found {
		t.Fatalf("expected flavor layer to carry a value, got %+v", trace.Layers[1])
	}
	if trace.Layers[2].Scope.Name != "defaults" {
		t.Fatalf("expected defaults layer last, got %+v", trace.Layers[2])
	}
}

func TestResolverResolveValidatesScopes(t *testing.T) {
	fx := newFixture(t)
	resolver := state.Resolver{Store: state.NewMemoryStore()}

	if _, err := resolver.Resolve(context.Background(), "analog", "face-1", fx.schema); err == nil {
		t.Fatalf("expected error without scopes")
	}
	if _, err := resolver.Resolve(context.Background(), "analog", "face-1", fx.schema, userstyle.NewScope("defaults", 1)); err == nil {
		t.Fatalf("expected reserved scope error")
	}

	resolved, err := resolver.Resolve(context.Background(), "analog", "face-1", fx.schema, userstyle.NewScope("user", userstyle.ScopePriorityUser))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !resolved.Style().Equal(fx.schema.DefaultStyle()) {
		t.Fatalf("expected defaults when nothing is stored")
	}
}

func TestResolverLayer(t *testing.T) {
	fx := newFixture(t)
	store := state.NewMemoryStore()
	resolver := state.Resolver{Store: store}

	if _, ok, err := resolver.Layer(context.Background(), faceRef); ok || err != nil {
		t.Fatalf("expected missing layer, got ok=%v err=%v", ok, err)
	}
	_, meta, err := resolver.Mutate(context.Background(), faceRef, state.Meta{}, fx.schema, func(*userstyle.MutableUserStyle) error { return nil })
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	layer, ok, err := resolver.Layer(context.Background(), faceRef)
	if err != nil || !ok {
		t.Fatalf("layer: ok=%v err=%v", ok, err)
	}
	if layer.Scope.Name != "user" || layer.Scope.Priority != userstyle.ScopePriorityUser || layer.SnapshotID != meta.SnapshotID {
		t.Fatalf("unexpected layer %+v", layer)
	}
}

func TestResolverResolveUnnamedScopeIsUser(t *testing.T) {
	fx := newFixture(t)
	resolver := state.Resolver{Store: state.NewMemoryStore()}

	_, _, err := resolver.Mutate(context.Background(), faceRef, state.Meta{}, fx.schema, func(m *userstyle.MutableUserStyle) error {
		return m.SetByID("color", userstyle.OptionID("blue"))
	})
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}

	resolved, err := resolver.Resolve(context.Background(), faceRef.WatchFace, faceRef.Instance, fx.schema, userstyle.Scope{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if option, _ := resolved.Style().Get(fx.color); option.ID().String() != "blue" {
		t.Fatalf("expected stored user color, got %v", option)
	}
	source, ok := resolved.Source("color")
	if !ok || source.Name != "user" || source.Priority != userstyle.ScopePriorityUser {
		t.Fatalf("expected user scope source, got %+v ok=%v", source, ok)
	}
}
