//go:build js_eval

package tokens

import (
	"fmt"
	"time"

	"github.com/dop251/goja"
)

type jsEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
	timeout  time.Duration
}

// NewJSEvaluator constructs an Evaluator backed by goja.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	cfg := applyJSEvaluatorOptions(opts)
	return &jsEvaluator{
		cache:    cfg.cache,
		registry: cfg.registry,
		timeout:  cfg.timeout,
	}
}

func (e *jsEvaluator) engineName() string { return "js" }

func (e *jsEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("js", fmt.Errorf("expression must not be empty"))
	}
	ctx = ctx.withDefaults()
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, wrapEvaluationError("js", expression, ctx.ruleLabel(), err)
	}
	value, err := e.run(ctx, program)
	if err != nil {
		return nil, wrapEvaluationError("js", expression, ctx.ruleLabel(), err)
	}
	return value, nil
}

func (e *jsEvaluator) Compile(expression string, _ ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("js", fmt.Errorf("expression must not be empty"))
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, wrapEvaluationError("js", expression, "", err)
	}
	return &jsCompiledRule{
		evaluator:  e,
		expression: expression,
		program:    program,
	}, nil
}

func (e *jsEvaluator) loadOrCompile(expression string) (*goja.Program, error) {
	key := "js:" + expression
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(*goja.Program); ok {
				return program, nil
			}
		}
	}
	program, err := goja.Compile("", wrapJSExpression(expression), false)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}

// run executes program in a fresh runtime; goja runtimes are not safe for
// concurrent use.
func (e *jsEvaluator) run(ctx RuleContext, program *goja.Program) (any, error) {
	vm := goja.New()
	if err := e.injectContext(vm, ctx); err != nil {
		return nil, err
	}
	timer := time.AfterFunc(e.timeout, func() {
		vm.Interrupt("rule evaluation timed out")
	})
	defer timer.Stop()
	value, err := vm.RunProgram(program)
	if err != nil {
		return nil, err
	}
	return value.Export(), nil
}

func (e *jsEvaluator) injectContext(vm *goja.Runtime, ctx RuleContext) error {
	bindings := map[string]any{
		"now":      ctx.timestamp(),
		"args":     ctx.Args,
		"metadata": ctx.Metadata,
		"rule":     ctx.ruleLabel(),
	}
	for key, value := range ctx.snapshotMap() {
		bindings[key] = value
	}
	if e.registry != nil {
		bindings["call"] = func(name string, arguments ...any) (any, error) {
			return e.registry.Call(name, arguments...)
		}
		for _, name := range e.registry.Names() {
			fn := name
			bindings[fn] = func(arguments ...any) (any, error) {
				return e.registry.Call(fn, arguments...)
			}
		}
	}
	for key, value := range bindings {
		if err := vm.Set(key, value); err != nil {
			return err
		}
	}
	return nil
}

func wrapJSExpression(expression string) string {
	return fmt.Sprintf("(function(){ return (%s); })()", expression)
}

type jsCompiledRule struct {
	evaluator  *jsEvaluator
	expression string
	program    *goja.Program
}

func (r *jsCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	if r.evaluator == nil {
		return nil, wrapEvaluatorError("js", fmt.Errorf("compiled rule missing evaluator"))
	}
	value, err := r.evaluator.run(ctx.withDefaults(), r.program)
	if err != nil {
		return nil, wrapEvaluationError("js", r.expression, ctx.ruleLabel(), err)
	}
	return value, nil
}

func jsEvaluatorAvailable() bool {
	return true
}
