package userstyle

import (
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"
)

var (
	ErrNoEvaluator = errors.New("userstyle: evaluator not configured")
	// ErrFunctionsUnsupported is returned when rule functions are configured
	// alongside an evaluator that cannot receive them.
	ErrFunctionsUnsupported = errors.New("userstyle: evaluator does not accept rule functions")
)

// RuleContext carries inputs needed when evaluating an expression.
type RuleContext struct {
	Snapshot  map[string]any
	Now       *time.Time
	Args      map[string]any
	Metadata  map[string]any
	Scope     Scope
	ScopeName string
}

func (ctx RuleContext) withDefaults() RuleContext {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	if ctx.Snapshot == nil {
		ctx.Snapshot = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) withDefaultScope(scope Scope) RuleContext {
	if ctx.Scope.isZero() && !scope.isZero() {
		ctx.Scope = scope.clone()
	}
	if ctx.ScopeName == "" && ctx.Scope.Name != "" {
		ctx.ScopeName = ctx.Scope.Name
	}
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	if ctx.Now == nil {
		return time.Now()
	}
	return *ctx.Now
}

func (ctx RuleContext) scopeLabel() string {
	if ctx.Scope.Name != "" {
		return ctx.Scope.Name
	}
	if ctx.ScopeName != "" {
		return ctx.ScopeName
	}
	return "unknown"
}

func (ctx RuleContext) scopeBinding() map[string]any {
	if !ctx.Scope.isZero() {
		binding := map[string]any{
			"name":     ctx.Scope.Name,
			"label":    ctx.Scope.Label,
			"priority": ctx.Scope.Priority,
		}
		if len(ctx.Scope.Metadata) > 0 {
			binding["metadata"] = copyMetadata(ctx.Scope.Metadata)
		}
		return binding
	}
	if ctx.ScopeName == "" {
		return nil
	}
	return map[string]any{"name": ctx.ScopeName}
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}

// ruleBinder is implemented by the built-in engines so Rules can hand them
// its program cache and functions.
type ruleBinder interface {
	bind(cache ProgramCache, functions *FunctionRegistry) Evaluator
}

type engineNamer interface {
	engine() string
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	if named, ok := e.(engineNamer); ok {
		return named.engine()
	}
	return "custom"
}

// RulesOption configures a Rules instance.
type RulesOption func(*rulesConfig)

type rulesConfig struct {
	evaluator    Evaluator
	programCache ProgramCache
	functions    *FunctionRegistry
	logger       Logger
	scope        Scope
}

// WithEvaluator selects the expression engine. The default is expr.
func WithEvaluator(e Evaluator) RulesOption {
	return func(cfg *rulesConfig) {
		cfg.evaluator = e
	}
}

// WithProgramCache shares compiled programs across evaluations. A built-in
// evaluator passed to WithEvaluator keeps its own cache when it has one.
func WithProgramCache(cache ProgramCache) RulesOption {
	return func(cfg *rulesConfig) {
		cfg.programCache = cache
	}
}

// WithRulesLogger records one event per evaluation.
func WithRulesLogger(logger Logger) RulesOption {
	return func(cfg *rulesConfig) {
		cfg.logger = logger
	}
}

// WithRulesScope sets the scope bound to contexts that carry none.
func WithRulesScope(scope Scope) RulesOption {
	return func(cfg *rulesConfig) {
		cfg.scope = scope.clone()
	}
}

// Rules evaluates expressions over a style's selections. Each setting id is
// bound to its selected value: bool for boolean settings, float64 and int64
// for ranges, the option id string for list and complication settings, and
// []byte for custom values. The whole snapshot is also bound as "style".
type Rules struct {
	cfg       rulesConfig
	once      sync.Once
	evaluator Evaluator
	err       error
}

// NewRules builds a rule evaluator.
func NewRules(opts ...RulesOption) *Rules {
	cfg := rulesConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Rules{cfg: cfg}
}

func (r *Rules) resolveEvaluator() (Evaluator, error) {
	r.once.Do(func() {
		if r.cfg.evaluator != nil {
			r.evaluator = r.cfg.evaluator
			if r.cfg.functions == nil && r.cfg.programCache == nil {
				return
			}
			binder, ok := r.cfg.evaluator.(ruleBinder)
			if !ok {
				if r.cfg.functions != nil {
					r.err = fmt.Errorf("%w: %s", ErrFunctionsUnsupported, evaluatorEngineName(r.cfg.evaluator))
				}
				return
			}
			r.evaluator = binder.bind(r.cfg.programCache, r.cfg.functions)
			return
		}
		var exprOpts []ExprEvaluatorOption
		if r.cfg.programCache != nil {
			exprOpts = append(exprOpts, ExprWithProgramCache(r.cfg.programCache))
		}
		if r.cfg.functions != nil {
			exprOpts = append(exprOpts, ExprWithFunctionRegistry(r.cfg.functions))
		}
		r.evaluator = NewExprEvaluator(exprOpts...)
	})
	if r.err != nil {
		return nil, r.err
	}
	if r.evaluator == nil {
		return nil, ErrNoEvaluator
	}
	return r.evaluator, nil
}

// Engine names the evaluator in use.
func (r *Rules) Engine() string {
	evaluator, err := r.resolveEvaluator()
	if err != nil {
		return "unknown"
	}
	return evaluatorEngineName(evaluator)
}

// Evaluate runs expr against style.
func (r *Rules) Evaluate(style *UserStyle, expr string) (any, error) {
	return r.EvaluateWith(RuleContext{}, style, expr)
}

// EvaluateWith runs expr with ctx. A nil ctx.Snapshot is filled from style.
func (r *Rules) EvaluateWith(ctx RuleContext, style *UserStyle, expr string) (any, error) {
	if expr == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	evaluator, err := r.resolveEvaluator()
	if err != nil {
		return nil, err
	}
	if ctx.Snapshot == nil {
		ctx.Snapshot = StyleSnapshot(style)
	}
	ctx = ctx.withDefaults().withDefaultScope(r.cfg.scope)

	start := time.Now()
	value, evalErr := evaluator.Evaluate(ctx, expr)
	evalErr = wrapEvaluationError(evaluatorEngineName(evaluator), expr, ctx.scopeLabel(), evalErr)
	r.log(evaluator, expr, ctx, time.Since(start), evalErr)
	if evalErr != nil {
		return nil, evalErr
	}
	return value, nil
}

// Bool evaluates expr and requires a boolean result.
func (r *Rules) Bool(style *UserStyle, expr string) (bool, error) {
	value, err := r.Evaluate(style, expr)
	if err != nil {
		return false, err
	}
	b, ok := value.(bool)
	if !ok {
		return false, &EvaluationError{Engine: r.Engine(), Expr: expr, Scope: "unknown", Err: fmt.Errorf("result is %T, want bool", value)}
	}
	return b, nil
}

// Compile prepares expr for repeated evaluation.
func (r *Rules) Compile(expr string, opts ...CompileOption) (*StyleRule, error) {
	if expr == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	evaluator, err := r.resolveEvaluator()
	if err != nil {
		return nil, err
	}
	compiled, err := evaluator.Compile(expr, opts...)
	if err != nil {
		return nil, wrapEvaluationError(evaluatorEngineName(evaluator), expr, r.cfg.scope.Name, err)
	}
	return &StyleRule{rules: r, evaluator: evaluator, compiled: compiled, expr: expr}, nil
}

func (r *Rules) log(evaluator Evaluator, expr string, ctx RuleContext, duration time.Duration, err error) {
	loggerOrNoop(r.cfg.logger).LogEvent(LogEvent{
		Component: "rules",
		Message:   "rule evaluated",
		Fields: map[string]any{
			"engine": evaluatorEngineName(evaluator),
			"expr":   expr,
			"scope":  ctx.scopeLabel(),
		},
		Err:      err,
		Duration: duration,
	})
}

// StyleRule is a compiled expression bound to its Rules.
type StyleRule struct {
	rules     *Rules
	evaluator Evaluator
	compiled  CompiledRule
	expr      string
}

// Expression returns the source expression.
func (r *StyleRule) Expression() string { return r.expr }

// Evaluate runs the compiled rule against style.
func (r *StyleRule) Evaluate(style *UserStyle) (any, error) {
	return r.EvaluateWith(RuleContext{}, style)
}

// EvaluateWith runs the compiled rule with ctx.
func (r *StyleRule) EvaluateWith(ctx RuleContext, style *UserStyle) (any, error) {
	if ctx.Snapshot == nil {
		ctx.Snapshot = StyleSnapshot(style)
	}
	ctx = ctx.withDefaults().withDefaultScope(r.rules.cfg.scope)
	start := time.Now()
	value, err := r.compiled.Evaluate(ctx)
	err = wrapEvaluationError(evaluatorEngineName(r.evaluator), r.expr, ctx.scopeLabel(), err)
	r.rules.log(r.evaluator, r.expr, ctx, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return value, nil
}

// StyleSnapshot maps setting ids to the typed values of the selected options.
func StyleSnapshot(style *UserStyle) map[string]any {
	snapshot := make(map[string]any, style.Len())
	style.Range(func(setting Setting, option Option) bool {
		snapshot[string(setting.ID())] = option.Value()
		return true
	})
	return snapshot
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// bindings merges the snapshot with the reserved names every engine exposes.
func bindings(ctx RuleContext) map[string]any {
	env := make(map[string]any, len(ctx.Snapshot)+5)
	for key, value := range ctx.Snapshot {
		if identifierPattern.MatchString(key) {
			env[key] = value
		}
	}
	env["style"] = ctx.Snapshot
	env["now"] = ctx.timestamp()
	env["args"] = ctx.Args
	env["metadata"] = ctx.Metadata
	if binding := ctx.scopeBinding(); binding != nil {
		env["scope"] = binding
	}
	return env
}
