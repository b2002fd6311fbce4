package tokens

import (
	"errors"
	"fmt"
	"time"
)

var ErrNoEvaluator = errors.New("tokens: evaluator not configured")

// Evaluate executes expr against ctx using the rule set's evaluator. It is the
// ad-hoc counterpart of Check and is handy for trying a rule expression
// against a single row before adding it to the configuration.
func (s *RuleSet) Evaluate(ctx RuleContext, expr string) (any, error) {
	if expr == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	if s == nil || s.evaluator == nil {
		return nil, ErrNoEvaluator
	}
	ctx = ctx.withDefaults()
	start := time.Now()
	value, err := s.evaluator.Evaluate(ctx, expr)
	s.logEvaluation(expr, ctx, time.Since(start), err)
	if err != nil {
		return nil, wrapEvaluationError(evaluatorEngineName(s.evaluator), expr, ctx.ruleLabel(), err)
	}
	return value, nil
}

// EvaluateRow runs expr with row bound as the snapshot.
func (s *RuleSet) EvaluateRow(row Row, expr string) (any, error) {
	return s.Evaluate(RuleContext{Snapshot: RowBinding(row)}, expr)
}

func (s *RuleSet) run(compiled compiledRule, ctx RuleContext) (bool, error) {
	ctx = ctx.withDefaults()
	start := time.Now()
	value, err := compiled.program.Evaluate(ctx)
	engine := evaluatorEngineName(s.evaluator)
	if err == nil {
		if _, ok := value.(bool); !ok {
			err = fmt.Errorf("rule must return a boolean, got %T", value)
		}
	}
	err = wrapEvaluationError(engine, compiled.rule.Expr, ctx.ruleLabel(), err)
	s.logEvaluation(compiled.rule.Expr, ctx, time.Since(start), err)
	if err != nil {
		return false, err
	}
	return value.(bool), nil
}

func (s *RuleSet) logEvaluation(expr string, ctx RuleContext, duration time.Duration, err error) {
	s.logger.LogEvaluation(EvaluatorLogEvent{
		Engine:   evaluatorEngineName(s.evaluator),
		Expr:     expr,
		Rule:     ctx.ruleLabel(),
		Duration: duration,
		Err:      err,
	})
}

func resolveEvaluator(cfg ruleConfig) (Evaluator, error) {
	if cfg.evaluator != nil {
		return cfg.evaluator, nil
	}
	var exprOpts []ExprEvaluatorOption
	if cfg.programCache != nil {
		exprOpts = append(exprOpts, ExprWithProgramCache(cfg.programCache))
	}
	if cfg.functions != nil {
		exprOpts = append(exprOpts, ExprWithFunctionRegistry(cfg.functions))
	}
	defaultEvaluator := NewExprEvaluator(exprOpts...)
	if defaultEvaluator == nil {
		return nil, ErrNoEvaluator
	}
	return defaultEvaluator, nil
}

// NewEvaluatorByName builds one of the bundled evaluators: "expr" (default),
// "cel" or "js". The js engine requires the js_eval build tag.
func NewEvaluatorByName(name string, cache ProgramCache, registry *FunctionRegistry) (Evaluator, error) {
	switch name {
	case "", "expr":
		return NewExprEvaluator(ExprWithProgramCache(cache), ExprWithFunctionRegistry(registry)), nil
	case "cel":
		return NewCELEvaluator(CELWithProgramCache(cache), CELWithFunctionRegistry(registry)), nil
	case "js":
		if !jsEvaluatorAvailable() {
			return nil, fmt.Errorf("%w: js engine requires the js_eval build tag", ErrNoEvaluator)
		}
		return NewJSEvaluator(JSWithProgramCache(cache), JSWithFunctionRegistry(registry)), nil
	default:
		return nil, fmt.Errorf("%w: unknown engine %q", ErrNoEvaluator, name)
	}
}
