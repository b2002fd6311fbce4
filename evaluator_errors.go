package tokens

import (
	"errors"
	"fmt"
	"strings"
)

// EvaluationError reports a lint rule expression that failed to compile or
// run, or that did not return a boolean. Path is the token row the rule was
// checking; it is empty for compile errors and ad-hoc evaluations.
type EvaluationError struct {
	Engine string
	Expr   string
	Rule   string
	Path   string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString("tokens: ")
	if e.Rule != "" {
		fmt.Fprintf(&b, "rule=%s ", e.Rule)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, "path=%s ", e.Path)
	}
	fmt.Fprintf(&b, "%s evaluator %s: %v", e.Engine, describeExpression(e.Expr), e.Err)
	return b.String()
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

const maxExprLen = 60

// describeExpression quotes expr for error messages, eliding the middle of
// long expressions.
func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	if len(expr) > maxExprLen {
		half := maxExprLen / 2
		expr = expr[:half] + "..." + expr[len(expr)-half:]
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) || strings.HasPrefix(err.Error(), "tokens:") {
		return err
	}
	return fmt.Errorf("tokens: %s evaluator: %w", engine, err)
}

// wrapEvaluationError attaches engine, expression and rule to err, filling
// only the fields an existing EvaluationError left empty.
func wrapEvaluationError(engine, expr, rule string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		return &EvaluationError{Engine: engine, Expr: expr, Rule: rule, Err: err}
	}
	if evalErr.Engine == "" {
		evalErr.Engine = engine
	}
	if evalErr.Expr == "" {
		evalErr.Expr = expr
	}
	if evalErr.Rule == "" {
		evalErr.Rule = rule
	}
	return evalErr
}

// atRow records the token path a rule failed on.
func atRow(err error, path string) error {
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Path == "" {
			evalErr.Path = path
		}
		return evalErr
	}
	return &EvaluationError{Path: path, Err: err}
}
