package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tokens/layering"
)

func ruleRows() []Row {
	return []Row{
		{Path: "color.brand", Layer: layering.LayerCore, Type: "color", Value: "#ff0000"},
		{Path: "space.sm", Layer: layering.LayerCore, Type: "dimension", Value: "4px"},
		{Path: "space.md", Layer: layering.LayerBU, Type: "dimension", Value: "1.5rem"},
		{Path: "space.lg", Layer: layering.LayerBU, Type: "dimension", Value: "{space.md}", Resolved: "1.5rem"},
	}
}

func TestRuleSetCheckWithEngines(t *testing.T) {
	rules := map[string]Rule{
		"expr": {
			Name:    "px-only",
			Expr:    `unitOf(effective) in args.units`,
			Message: "Use px.",
			Types:   []string{"dimension"},
			Args:    map[string]any{"units": []any{"px"}},
		},
		"cel": {
			Name:    "px-only",
			Expr:    `tokenType != "dimension" || unitOf(effective) == "px"`,
			Message: "Use px.",
		},
	}
	want := Issues{
		{Path: "space.md", Message: "[px-only] Use px.", Severity: SeverityError},
		{Path: "space.lg", Message: "[px-only] Use px.", Severity: SeverityError},
	}

	for engine, rule := range rules {
		t.Run(engine, func(t *testing.T) {
			evaluator, err := NewEvaluatorByName(engine, NewTTLProgramCache(time.Minute, 16), DefaultFunctionRegistry())
			if err != nil {
				t.Fatalf("NewEvaluatorByName: %v", err)
			}
			set, err := NewRuleSet([]Rule{rule}, WithEvaluator(evaluator))
			if err != nil {
				t.Fatalf("NewRuleSet: %v", err)
			}
			issues, err := set.Check(context.Background(), ruleRows())
			if err != nil {
				t.Fatalf("Check: %v", err)
			}
			if diff := cmp.Diff(want, issues); diff != "" {
				t.Fatalf("issues mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRuleSetWarningSeverityAndDefaultMessage(t *testing.T) {
	set, err := NewRuleSet([]Rule{{
		Name:     "no-core-refs",
		Expr:     `!(layer == "core" && reference)`,
		Severity: SeverityWarning,
	}})
	if err != nil {
		t.Fatalf("NewRuleSet: %v", err)
	}
	rows := append(ruleRows(), Row{Path: "color.alias", Layer: layering.LayerCore, Type: "color", Value: "{color.brand}"})
	issues, err := set.Check(context.Background(), rows)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	want := Issues{{Path: "color.alias", Message: "[no-core-refs] Rule expression returned false.", Severity: SeverityWarning}}
	if diff := cmp.Diff(want, issues); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
	if issues.HasErrors() {
		t.Fatalf("warnings must not count as errors")
	}
}

func TestRuleSetNonBooleanResult(t *testing.T) {
	set, err := NewRuleSet([]Rule{{Name: "raw", Expr: "value"}})
	if err != nil {
		t.Fatalf("NewRuleSet: %v", err)
	}
	_, err = set.Check(context.Background(), ruleRows())
	if err == nil {
		t.Fatalf("expected error for non-boolean rule")
	}
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", err)
	}
	if evalErr.Rule != "raw" || evalErr.Path != "color.brand" {
		t.Fatalf("rule = %q path = %q", evalErr.Rule, evalErr.Path)
	}
	if !strings.Contains(err.Error(), "path=color.brand") {
		t.Fatalf("expected path in message, got %q", err.Error())
	}
}

func TestNewRuleSetRejectsBadRules(t *testing.T) {
	tests := map[string][]Rule{
		"empty name":   {{Name: " ", Expr: "true"}},
		"duplicate":    {{Name: "a", Expr: "true"}, {Name: "a", Expr: "false"}},
		"empty expr":   {{Name: "a", Expr: ""}},
		"syntax error": {{Name: "a", Expr: "path ==="}},
	}
	for name, rules := range tests {
		if _, err := NewRuleSet(rules); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestRuleSetNames(t *testing.T) {
	set, err := NewRuleSet([]Rule{{Name: "b", Expr: "true"}, {Name: " a ", Expr: "true"}})
	if err != nil {
		t.Fatalf("NewRuleSet: %v", err)
	}
	if diff := cmp.Diff([]string{"b", "a"}, set.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if set.Len() != 2 {
		t.Fatalf("Len = %d", set.Len())
	}
	var empty *RuleSet
	if empty.Len() != 0 || empty.Names() != nil {
		t.Fatalf("nil rule set should be empty")
	}
	issues, err := empty.Check(context.Background(), ruleRows())
	if issues != nil || err != nil {
		t.Fatalf("nil rule set Check = %v, %v", issues, err)
	}
}

func TestEvaluateRow(t *testing.T) {
	set, err := NewRuleSet(nil)
	if err != nil {
		t.Fatalf("NewRuleSet: %v", err)
	}
	row := Row{Path: "space.md", Type: "dimension", Value: json.Number("1.5")}
	got, err := set.EvaluateRow(row, "value * 2")
	if err != nil {
		t.Fatalf("EvaluateRow: %v", err)
	}
	if got != 3.0 {
		t.Fatalf("value * 2 = %v (%T)", got, got)
	}
	got, err = set.EvaluateRow(ruleRows()[3], `refTarget(value) + ":" + string(reference)`)
	if err != nil {
		t.Fatalf("EvaluateRow: %v", err)
	}
	if got != "space.md:true" {
		t.Fatalf("got %v", got)
	}
	if _, err := set.EvaluateRow(row, ""); err == nil {
		t.Fatalf("expected error for empty expression")
	}
}

func TestRowBinding(t *testing.T) {
	binding := RowBinding(Row{
		Path:     "space.lg",
		Layer:    layering.LayerBU,
		File:     "/tokens/acme/tokens.json",
		Type:     "number",
		Value:    "{space.md}",
		Resolved: json.Number("8"),
	})
	want := map[string]any{
		"path":        "space.lg",
		"layer":       "bu",
		"file":        "/tokens/acme/tokens.json",
		"tokenType":   "number",
		"value":       "{space.md}",
		"resolved":    8.0,
		"effective":   8.0,
		"description": "",
		"reference":   true,
	}
	if diff := cmp.Diff(want, binding); diff != "" {
		t.Fatalf("binding mismatch (-want +got):\n%s", diff)
	}
}

func TestFunctionRegistry(t *testing.T) {
	registry := DefaultFunctionRegistry()
	if diff := cmp.Diff([]string{"isHexColor", "isReference", "refTarget", "unitOf"}, registry.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if err := registry.Register("UNITOF", fnUnitOf); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}

	tests := []struct {
		name string
		arg  any
		want any
	}{
		{"unitof", "12rem", "rem"},
		{"unitOf", "50%", "%"},
		{"unitOf", "12", ""},
		{"unitOf", 4.0, ""},
		{"isHexColor", "#A0b1C2", true},
		{"isHexColor", "red", false},
		{"isReference", "{a.b}", true},
		{"isReference", "a.b", false},
		{"refTarget", "{a.b}", "a.b"},
		{"refTarget", "plain", ""},
	}
	for _, tt := range tests {
		got, err := registry.Call(tt.name, tt.arg)
		if err != nil {
			t.Errorf("%s(%v): %v", tt.name, tt.arg, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s(%v) = %v, want %v", tt.name, tt.arg, got, tt.want)
		}
	}

	if _, err := registry.Call("unitOf"); err == nil {
		t.Fatalf("expected arity error")
	}
	if _, err := registry.Call("missing", 1); err == nil || !strings.Contains(err.Error(), "not registered") {
		t.Fatalf("expected not registered error, got %v", err)
	}

	clone := registry.Clone()
	if err := clone.Register("extra", func(args ...any) (any, error) { return true, nil }); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if len(registry.Names()) != 4 {
		t.Fatalf("clone registration leaked into original")
	}
}

func TestCustomFunctionInRule(t *testing.T) {
	set, err := NewRuleSet([]Rule{{
		Name: "short-paths",
		Expr: `depth(path) <= 2`,
	}}, WithCustomFunction("depth", func(args ...any) (any, error) {
		s, _ := args[0].(string)
		return strings.Count(s, ".") + 1, nil
	}))
	if err != nil {
		t.Fatalf("NewRuleSet: %v", err)
	}
	rows := []Row{{Path: "a.b"}, {Path: "a.b.c"}}
	issues, err := set.Check(context.Background(), rows)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(issues) != 1 || issues[0].Path != "a.b.c" {
		t.Fatalf("issues = %+v", issues)
	}
}

func TestTTLProgramCache(t *testing.T) {
	cache := NewTTLProgramCache(0, 0)
	if _, ok := cache.Get("missing"); ok {
		t.Fatalf("unexpected hit")
	}
	cache.Set("k", 1)
	if got, ok := cache.Get("k"); !ok || got != 1 {
		t.Fatalf("Get = %v, %v", got, ok)
	}
	if cache.Len() != 1 {
		t.Fatalf("Len = %d", cache.Len())
	}
	cache.Purge()
	if cache.Len() != 0 {
		t.Fatalf("Purge left %d entries", cache.Len())
	}

	small := NewTTLProgramCache(time.Minute, 1)
	small.Set("a", 1)
	small.Set("b", 2)
	if _, ok := small.Get("a"); ok {
		t.Fatalf("expected eviction past capacity")
	}
}

func TestRuleSetSharesProgramCache(t *testing.T) {
	cache := NewTTLProgramCache(time.Minute, 8)
	if _, err := NewRuleSet([]Rule{{Name: "a", Expr: "path != ''"}}, WithProgramCache(cache)); err != nil {
		t.Fatalf("NewRuleSet: %v", err)
	}
	if _, ok := cache.Get("expr:path != ''"); !ok {
		t.Fatalf("compiled program not cached")
	}
}

func TestNewEvaluatorByName(t *testing.T) {
	for _, name := range []string{"", "expr", "cel"} {
		if _, err := NewEvaluatorByName(name, nil, nil); err != nil {
			t.Errorf("%q: %v", name, err)
		}
	}
	if _, err := NewEvaluatorByName("lua", nil, nil); !errors.Is(err, ErrNoEvaluator) {
		t.Fatalf("unknown engine error = %v", err)
	}
	if !jsEvaluatorAvailable() {
		if _, err := NewEvaluatorByName("js", nil, nil); !errors.Is(err, ErrNoEvaluator) {
			t.Fatalf("js without build tag = %v", err)
		}
	}
}
