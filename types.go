package tokens

import (
	"time"
)

// RuleContext carries inputs needed when evaluating a lint expression.
type RuleContext struct {
	// Snapshot holds the variables exposed to the expression, normally the
	// binding of a single flattened row.
	Snapshot any
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
	// Rule names the rule being evaluated, used in errors and log events.
	Rule string
}

func (ctx RuleContext) withDefaultNow() RuleContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx RuleContext) withDefaultMaps() RuleContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) withDefaults() RuleContext {
	return ctx.withDefaultNow().withDefaultMaps()
}

func (ctx RuleContext) ruleLabel() string {
	if ctx.Rule != "" {
		return ctx.Rule
	}
	return "adhoc"
}

func (ctx RuleContext) snapshotMap() map[string]any {
	if m, ok := ctx.Snapshot.(map[string]any); ok {
		return m
	}
	return map[string]any{}
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

type compileConfig struct {
	variables []string
}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}

// CompileWithVariables declares the snapshot variables an expression may
// reference. Typed engines such as CEL need them at compile time.
func CompileWithVariables(names ...string) CompileOption {
	return compileOptionFunc(func(cfg *compileConfig) {
		cfg.variables = append(cfg.variables, names...)
	})
}

func applyCompileOptions(opts []CompileOption) compileConfig {
	cfg := compileConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt.applyCompileOption(&cfg)
		}
	}
	return cfg
}

// engineNamer is implemented by the built-in evaluators.
type engineNamer interface {
	engineName() string
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	if named, ok := e.(engineNamer); ok {
		return named.engineName()
	}
	return "custom"
}
