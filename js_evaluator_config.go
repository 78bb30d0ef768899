package userstyle

// DefaultJSMaxCallStack bounds recursion inside a style rule. Rules are
// single expressions over a style snapshot; deep stacks mean a runaway helper.
const DefaultJSMaxCallStack = 256

// jsEvaluatorConfig is shared by the goja build and the stub so callers can
// configure the engine without build tags.
type jsEvaluatorConfig struct {
	cache        ProgramCache
	registry     *FunctionRegistry
	maxCallStack int
}

// JSEvaluatorOption configures the JavaScript rule engine.
type JSEvaluatorOption func(*jsEvaluatorConfig)

// JSWithProgramCache reuses compiled rule programs across evaluations.
func JSWithProgramCache(cache ProgramCache) JSEvaluatorOption {
	return func(cfg *jsEvaluatorConfig) {
		cfg.cache = cache
	}
}

// JSWithFunctionRegistry exposes registry helpers to rules as globals and
// through call(name, ...args).
func JSWithFunctionRegistry(registry *FunctionRegistry) JSEvaluatorOption {
	return func(cfg *jsEvaluatorConfig) {
		cfg.registry = registry.Clone()
	}
}

// JSWithMaxCallStack overrides DefaultJSMaxCallStack. Non-positive depths
// are ignored.
func JSWithMaxCallStack(depth int) JSEvaluatorOption {
	return func(cfg *jsEvaluatorConfig) {
		if depth > 0 {
			cfg.maxCallStack = depth
		}
	}
}

func applyJSEvaluatorOptions(opts []JSEvaluatorOption) jsEvaluatorConfig {
	cfg := jsEvaluatorConfig{maxCallStack: DefaultJSMaxCallStack}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
