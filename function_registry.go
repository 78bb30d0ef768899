package userstyle

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
)

// Function is a helper callable from style rules.
type Function func(args ...any) (any, error)

// FunctionRegistry stores rule helpers keyed by case-insensitive name.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
	names     map[string]string
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions: make(map[string]Function),
		names:     make(map[string]string),
	}
}

// Register stores fn under name guarding against duplicates.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if fn == nil {
		return fmt.Errorf("userstyle: function %q is nil", name)
	}
	if name == "" {
		return fmt.Errorf("userstyle: function name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]Function)
		r.names = make(map[string]string)
	}
	key := strings.ToLower(name)
	if _, exists := r.functions[key]; exists {
		return fmt.Errorf("userstyle: function %q already registered", name)
	}
	r.functions[key] = fn
	r.names[key] = name
	return nil
}

// Clone returns a shallow copy of the registry.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FunctionRegistry{
		functions: make(map[string]Function, len(r.functions)),
		names:     make(map[string]string, len(r.names)),
	}
	for key, fn := range r.functions {
		clone.functions[key] = fn
		clone.names[key] = r.names[key]
	}
	return clone
}

// merge returns a copy of r extended with extra's functions. Names r already
// holds keep r's function.
func (r *FunctionRegistry) merge(extra *FunctionRegistry) *FunctionRegistry {
	if extra == nil {
		return r.Clone()
	}
	if r == nil {
		return extra.Clone()
	}
	merged := r.Clone()
	extra.mu.RLock()
	defer extra.mu.RUnlock()
	for key, fn := range extra.functions {
		if _, exists := merged.functions[key]; exists {
			continue
		}
		merged.functions[key] = fn
		merged.names[key] = extra.names[key]
	}
	return merged
}

// Call executes the function registered for name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("userstyle: function registry is nil")
	}
	r.mu.RLock()
	fn := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("userstyle: function %q not registered", name)
	}
	return fn(args...)
}

// Names returns registered names, as first spelled, sorted alphabetically.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.names))
	for _, name := range r.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithFunctionRegistry makes registry's helpers available to rules. Built-in
// evaluators passed to WithEvaluator receive them too; other evaluators make
// evaluation fail with ErrFunctionsUnsupported.
func WithFunctionRegistry(registry *FunctionRegistry) RulesOption {
	return func(cfg *rulesConfig) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers fn under name for the rules. Duplicate names
// keep the first registration.
func WithCustomFunction(name string, fn Function) RulesOption {
	return func(cfg *rulesConfig) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		_ = cfg.functions.Register(name, fn)
	}
}

// DefaultFunctions returns helpers commonly needed by watch face rules:
// clamp(value, min, max), lerp(a, b, t) and step(edge, x).
func DefaultFunctions() *FunctionRegistry {
	registry := NewFunctionRegistry()
	_ = registry.Register("clamp", func(args ...any) (any, error) {
		if len(args) != 3 {
			return nil, fmt.Errorf("clamp expects 3 arguments, got %d", len(args))
		}
		v, lo, hi, err := floats3(args)
		if err != nil {
			return nil, err
		}
		return math.Min(math.Max(v, lo), hi), nil
	})
	_ = registry.Register("lerp", func(args ...any) (any, error) {
		if len(args) != 3 {
			return nil, fmt.Errorf("lerp expects 3 arguments, got %d", len(args))
		}
		a, b, t, err := floats3(args)
		if err != nil {
			return nil, err
		}
		return a + (b-a)*t, nil
	})
	_ = registry.Register("step", func(args ...any) (any, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("step expects 2 arguments, got %d", len(args))
		}
		edge, ok1 := toFloat(args[0])
		x, ok2 := toFloat(args[1])
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("step expects numbers")
		}
		if x < edge {
			return 0.0, nil
		}
		return 1.0, nil
	})
	return registry
}

func floats3(args []any) (float64, float64, float64, error) {
	var out [3]float64
	for i, arg := range args[:3] {
		f, ok := toFloat(arg)
		if !ok {
			return 0, 0, 0, fmt.Errorf("argument %d is %T, want number", i, arg)
		}
		out[i] = f
	}
	return out[0], out[1], out[2], nil
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}
