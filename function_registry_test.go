package userstyle

import (
	"reflect"
	"testing"
)

func TestFunctionRegistryRegister(t *testing.T) {
	registry := NewFunctionRegistry()
	identity := func(args ...any) (any, error) { return args[0], nil }

	if err := registry.Register("Tint", identity); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register("tint", identity); err == nil {
		t.Fatalf("expected case-insensitive duplicate to fail")
	}
	if err := registry.Register("", identity); err == nil {
		t.Fatalf("expected empty name to fail")
	}
	if err := registry.Register("nil", nil); err == nil {
		t.Fatalf("expected nil function to fail")
	}
	if err := registry.Register("alpha", identity); err != nil {
		t.Fatalf("register: %v", err)
	}

	if got := registry.Names(); !reflect.DeepEqual(got, []string{"Tint", "alpha"}) {
		t.Fatalf("unexpected names %v", got)
	}
	got, err := registry.Call("TINT", "red")
	if err != nil || got != "red" {
		t.Fatalf("expected case-insensitive call, got %v, %v", got, err)
	}
	if _, err := registry.Call("missing"); err == nil {
		t.Fatalf("expected unknown function error")
	}
}

func TestFunctionRegistryClone(t *testing.T) {
	registry := NewFunctionRegistry()
	_ = registry.Register("one", func(...any) (any, error) { return 1, nil })

	clone := registry.Clone()
	_ = clone.Register("two", func(...any) (any, error) { return 2, nil })

	if len(registry.Names()) != 1 || len(clone.Names()) != 2 {
		t.Fatalf("expected clone to be independent: %v vs %v", registry.Names(), clone.Names())
	}

	var nilRegistry *FunctionRegistry
	if nilRegistry.Clone() != nil || nilRegistry.Names() != nil {
		t.Fatalf("expected nil registry helpers to be nil-safe")
	}
	if _, err := nilRegistry.Call("one"); err == nil {
		t.Fatalf("expected error calling a nil registry")
	}
}

func TestDefaultFunctions(t *testing.T) {
	registry := DefaultFunctions()
	cases := []struct {
		name string
		args []any
		want any
	}{
		{"clamp", []any{1.5, 0.0, 1.0}, 1.0},
		{"clamp", []any{int64(-2), 0, 10}, 0.0},
		{"lerp", []any{0, 100, 0.25}, 25.0},
		{"step", []any{0.5, 0.4}, 0.0},
		{"step", []any{0.5, 0.5}, 1.0},
	}
	for _, tc := range cases {
		got, err := registry.Call(tc.name, tc.args...)
		if err != nil {
			t.Fatalf("%s%v: %v", tc.name, tc.args, err)
		}
		if got != tc.want {
			t.Fatalf("%s%v: expected %v, got %v", tc.name, tc.args, tc.want, got)
		}
	}

	if _, err := registry.Call("clamp", 1.0); err == nil {
		t.Fatalf("expected arity error")
	}
	if _, err := registry.Call("lerp", "a", 1, 2); err == nil {
		t.Fatalf("expected type error")
	}
	if _, err := registry.Call("step", 1, "x"); err == nil {
		t.Fatalf("expected type error")
	}
}
