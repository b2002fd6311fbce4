package tokens

import (
	"fmt"
	"sort"
	"strings"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// CELEvaluatorOption configures the CEL evaluator.
type CELEvaluatorOption func(*celEvaluator)

// CELWithProgramCache wires a ProgramCache into the CEL evaluator.
func CELWithProgramCache(cache ProgramCache) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.cache = cache
	}
}

// CELWithFunctionRegistry wires a FunctionRegistry into the CEL evaluator.
// Registered functions are exposed with one and two dynamic arguments.
func CELWithFunctionRegistry(registry *FunctionRegistry) CELEvaluatorOption {
	return func(e *celEvaluator) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

// builtin CEL variables, always declared.
var celContextVariables = map[string]struct{}{
	"now": {}, "args": {}, "metadata": {}, "rule": {},
}

type celProgram struct {
	env     *celgo.Env
	program celgo.Program
}

type celEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewCELEvaluator constructs an Evaluator backed by cel-go.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) engineName() string { return "cel" }

func (e *celEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("cel", fmt.Errorf("expression must not be empty"))
	}
	ctx = ctx.withDefaults()
	snapshot := ctx.snapshotMap()
	program, err := e.loadOrCompile(expression, snapshotKeys(snapshot))
	if err != nil {
		return nil, wrapEvaluationError("cel", expression, ctx.ruleLabel(), err)
	}
	return e.run(program, ctx, snapshot)
}

// Compile type-checks expression. Snapshot variables must be declared with
// CompileWithVariables; otherwise compilation is deferred to the first
// evaluation, when the snapshot keys are known.
func (e *celEvaluator) Compile(expression string, opts ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("cel", fmt.Errorf("expression must not be empty"))
	}
	cfg := applyCompileOptions(opts)
	rule := &celCompiledRule{evaluator: e, expression: expression}
	if len(cfg.variables) > 0 {
		program, err := e.loadOrCompile(expression, cfg.variables)
		if err != nil {
			return nil, wrapEvaluationError("cel", expression, "", err)
		}
		rule.program = program
	}
	return rule, nil
}

func (e *celEvaluator) run(program *celProgram, ctx RuleContext, snapshot map[string]any) (any, error) {
	out, _, err := program.program.Eval(e.activation(ctx, snapshot))
	if err != nil {
		return nil, err
	}
	return out.Value(), nil
}

func (e *celEvaluator) loadOrCompile(expression string, variables []string) (*celProgram, error) {
	variables = normalizeVariables(variables)
	key := "cel:" + strings.Join(variables, ",") + ":" + expression
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(*celProgram); ok {
				return program, nil
			}
		}
	}

	env, err := e.buildEnv(variables)
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, err
	}

	bundle := &celProgram{
		env:     env,
		program: prg,
	}
	if e.cache != nil {
		e.cache.Set(key, bundle)
	}
	return bundle, nil
}

func (e *celEvaluator) buildEnv(variables []string) (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		celgo.Variable("now", celgo.TimestampType),
		celgo.Variable("args", celgo.DynType),
		celgo.Variable("metadata", celgo.DynType),
		celgo.Variable("rule", celgo.StringType),
	}
	for _, name := range variables {
		opts = append(opts, celgo.Variable(name, celgo.DynType))
	}
	for _, name := range e.registry.Names() {
		opts = append(opts, celgo.Function(name,
			celgo.Overload(name+"_dyn", []*celgo.Type{celgo.DynType}, celgo.DynType,
				celgo.UnaryBinding(func(arg ref.Val) ref.Val {
					return e.call(name, arg)
				})),
			celgo.Overload(name+"_dyn_dyn", []*celgo.Type{celgo.DynType, celgo.DynType}, celgo.DynType,
				celgo.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
					return e.call(name, lhs, rhs)
				})),
		))
	}
	return celgo.NewEnv(opts...)
}

func (e *celEvaluator) activation(ctx RuleContext, snapshot map[string]any) map[string]any {
	activation := map[string]any{
		"now":      ctx.timestamp(),
		"args":     ctx.Args,
		"metadata": ctx.Metadata,
		"rule":     ctx.ruleLabel(),
	}
	for key, value := range snapshot {
		if _, reserved := celContextVariables[key]; reserved {
			continue
		}
		activation[key] = value
	}
	return activation
}

func (e *celEvaluator) call(name string, values ...ref.Val) ref.Val {
	args := make([]any, 0, len(values))
	for _, val := range values {
		args = append(args, val.Value())
	}
	result, err := e.registry.Call(name, args...)
	if err != nil {
		return types.NewErr("%s", err.Error())
	}
	if result == nil {
		return types.NullValue
	}
	return types.DefaultTypeAdapter.NativeToValue(result)
}

type celCompiledRule struct {
	evaluator  *celEvaluator
	expression string
	program    *celProgram
}

func (r *celCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	if r.evaluator == nil {
		return nil, wrapEvaluatorError("cel", fmt.Errorf("compiled rule missing evaluator"))
	}
	ctx = ctx.withDefaults()
	snapshot := ctx.snapshotMap()
	program := r.program
	if program == nil {
		var err error
		program, err = r.evaluator.loadOrCompile(r.expression, snapshotKeys(snapshot))
		if err != nil {
			return nil, wrapEvaluationError("cel", r.expression, ctx.ruleLabel(), err)
		}
	}
	out, err := r.evaluator.run(program, ctx, snapshot)
	if err != nil {
		return nil, wrapEvaluationError("cel", r.expression, ctx.ruleLabel(), err)
	}
	return out, nil
}

func snapshotKeys(snapshot map[string]any) []string {
	keys := make([]string, 0, len(snapshot))
	for key := range snapshot {
		keys = append(keys, key)
	}
	return keys
}

func normalizeVariables(names []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, reserved := celContextVariables[name]; reserved {
			continue
		}
		if _, dup := seen[name]; dup || name == "" {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
