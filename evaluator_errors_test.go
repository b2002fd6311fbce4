package tokens

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapEvaluationErrorCreatesMetadata(t *testing.T) {
	base := errors.New("boom")
	err := wrapEvaluationError("expr", "value != nil && missing", "no-missing", base)

	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", err)
	}
	if evalErr.Engine != "expr" {
		t.Fatalf("expected engine expr, got %q", evalErr.Engine)
	}
	if evalErr.Expr != "value != nil && missing" {
		t.Fatalf("expected expression metadata, got %q", evalErr.Expr)
	}
	if evalErr.Rule != "no-missing" {
		t.Fatalf("expected rule metadata, got %q", evalErr.Rule)
	}
	if !errors.Is(evalErr.Err, base) {
		t.Fatalf("wrapped error should unwrap to base error")
	}
	if !strings.Contains(err.Error(), "rule=no-missing") {
		t.Fatalf("expected rule in message, got %q", err.Error())
	}
}

func TestWrapEvaluationErrorAugmentsExisting(t *testing.T) {
	base := errors.New("compile failure")
	existing := &EvaluationError{
		Engine: "expr",
		Err:    base,
	}

	err := wrapEvaluationError("cel", "type == 'color'", "colors", existing)
	if !errors.Is(err, base) {
		t.Fatalf("expected base error to unwrap")
	}
	if existing.Engine != "expr" {
		t.Fatalf("existing engine should not be overwritten, got %q", existing.Engine)
	}
	if existing.Expr != "type == 'color'" {
		t.Fatalf("expression should be filled, got %q", existing.Expr)
	}
	if existing.Rule != "colors" {
		t.Fatalf("rule should be filled, got %q", existing.Rule)
	}
}

func TestWrapEvaluatorErrorKeepsPrefixedErrors(t *testing.T) {
	prefixed := errors.New("tokens: already described")
	if got := wrapEvaluatorError("expr", prefixed); got != prefixed {
		t.Fatalf("expected prefixed error untouched, got %v", got)
	}
	wrapped := wrapEvaluatorError("cel", errors.New("bad"))
	if wrapped.Error() != "tokens: cel evaluator: bad" {
		t.Fatalf("unexpected message %q", wrapped.Error())
	}
}

func TestAtRowRecordsTokenPath(t *testing.T) {
	err := atRow(wrapEvaluationError("cel", "unitOf(value) == 'px'", "px-only", errors.New("no such overload")), "space.md")

	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", err)
	}
	if evalErr.Path != "space.md" {
		t.Fatalf("expected path space.md, got %q", evalErr.Path)
	}
	want := `tokens: rule=px-only path=space.md cel evaluator expr="unitOf(value) == 'px'": no such overload`
	if err.Error() != want {
		t.Fatalf("unexpected message\nwant: %s\n got: %s", want, err.Error())
	}

	again := atRow(err, "space.lg")
	if !errors.As(again, &evalErr) || evalErr.Path != "space.md" {
		t.Fatalf("first recorded path must stick, got %q", evalErr.Path)
	}

	plain := atRow(errors.New("boom"), "color.brand")
	if !errors.As(plain, &evalErr) || evalErr.Path != "color.brand" {
		t.Fatalf("plain errors should be wrapped with the path, got %v", plain)
	}
}

func TestDescribeExpressionElidesLongExpressions(t *testing.T) {
	long := strings.Repeat("a", 40) + strings.Repeat("b", 40)
	got := describeExpression(long)
	want := `expr="` + strings.Repeat("a", 30) + "..." + strings.Repeat("b", 30) + `"`
	if got != want {
		t.Fatalf("unexpected description %s", got)
	}
	if describeExpression("") != "expr=<empty>" {
		t.Fatalf("empty expression should be marked")
	}
}
