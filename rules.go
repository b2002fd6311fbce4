package tokens

import (
	"context"
	"fmt"
	"strings"
)

// Rule is an expression lint check evaluated against every flattened row
// whose type matches Types (all rows when Types is empty). A rule passes when
// its expression returns true.
type Rule struct {
	Name     string
	Expr     string
	Message  string
	Severity Severity
	Types    []string
	Args     map[string]any
}

// Variables bound for every row. "tokenType" carries the row's $type;
// "effective" is the resolved value when present, else the raw value.
var rowVariables = []string{
	"path", "layer", "file", "tokenType", "value", "resolved",
	"effective", "description", "reference",
}

// RowBinding converts a row into the variables a rule expression sees.
func RowBinding(row Row) map[string]any {
	value := bindingValue(row.Value)
	resolved := bindingValue(row.Resolved)
	effective := value
	if row.Resolved != nil {
		effective = resolved
	}
	return map[string]any{
		"path":        row.Path,
		"layer":       string(row.Layer),
		"file":        row.File,
		"tokenType":   row.Type,
		"value":       value,
		"resolved":    resolved,
		"effective":   effective,
		"description": row.Description,
		"reference":   row.IsReference(),
	}
}

// RuleOption configures a RuleSet.
type RuleOption func(*ruleConfig)

type ruleConfig struct {
	evaluator    Evaluator
	programCache ProgramCache
	functions    *FunctionRegistry
	logger       EvaluatorLogger
}

// WithEvaluator configures the evaluator rules are compiled with. The
// default is an expr evaluator sharing the rule set's cache and functions.
func WithEvaluator(e Evaluator) RuleOption {
	return func(cfg *ruleConfig) {
		cfg.evaluator = e
	}
}

type compiledRule struct {
	rule    Rule
	program CompiledRule
	types   map[string]struct{}
}

func (c compiledRule) applies(row Row) bool {
	if len(c.types) == 0 {
		return true
	}
	_, ok := c.types[row.Type]
	return ok
}

// RuleSet is a compiled, immutable list of rules. It is safe for concurrent
// use when the evaluator is.
type RuleSet struct {
	evaluator Evaluator
	logger    EvaluatorLogger
	rules     []compiledRule
}

// NewRuleSet validates and compiles rules.
func NewRuleSet(rules []Rule, opts ...RuleOption) (*RuleSet, error) {
	cfg := ruleConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.functions == nil {
		cfg.functions = DefaultFunctionRegistry()
	}
	if cfg.programCache == nil {
		cfg.programCache = NewTTLProgramCache(0, 0)
	}
	if cfg.logger == nil {
		cfg.logger = noopEvaluatorLogger{}
	}
	evaluator, err := resolveEvaluator(cfg)
	if err != nil {
		return nil, err
	}

	set := &RuleSet{evaluator: evaluator, logger: cfg.logger}
	seen := map[string]struct{}{}
	for _, rule := range rules {
		rule.Name = strings.TrimSpace(rule.Name)
		if rule.Name == "" {
			return nil, fmt.Errorf("tokens: rule name must not be empty")
		}
		if _, dup := seen[rule.Name]; dup {
			return nil, fmt.Errorf("tokens: rule %q declared twice", rule.Name)
		}
		seen[rule.Name] = struct{}{}
		if strings.TrimSpace(rule.Expr) == "" {
			return nil, fmt.Errorf("tokens: rule %q: expression must not be empty", rule.Name)
		}
		if rule.Severity == "" {
			rule.Severity = SeverityError
		}
		program, err := evaluator.Compile(rule.Expr, CompileWithVariables(rowVariables...))
		if err != nil {
			return nil, wrapEvaluationError(evaluatorEngineName(evaluator), rule.Expr, rule.Name, err)
		}
		compiled := compiledRule{rule: rule, program: program}
		if len(rule.Types) > 0 {
			compiled.types = make(map[string]struct{}, len(rule.Types))
			for _, t := range rule.Types {
				compiled.types[t] = struct{}{}
			}
		}
		set.rules = append(set.rules, compiled)
	}
	return set, nil
}

// Len returns the number of compiled rules.
func (s *RuleSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Names lists the rule names in declaration order.
func (s *RuleSet) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.rules))
	for i, rule := range s.rules {
		names[i] = rule.rule.Name
	}
	return names
}

// Check evaluates every rule against every matching row. Failed rules become
// issues; an expression that errors or does not return a boolean aborts the
// check and is returned alongside the issues gathered so far.
func (s *RuleSet) Check(ctx context.Context, rows []Row) (Issues, error) {
	if s == nil || len(s.rules) == 0 {
		return nil, nil
	}
	var issues Issues
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return issues, err
		}
		binding := RowBinding(row)
		for _, compiled := range s.rules {
			if !compiled.applies(row) {
				continue
			}
			ok, err := s.run(compiled, RuleContext{
				Snapshot: binding,
				Args:     compiled.rule.Args,
				Metadata: map[string]any{"severity": string(compiled.rule.Severity)},
				Rule:     compiled.rule.Name,
			})
			if err != nil {
				return issues, atRow(err, row.Path)
			}
			if !ok {
				issues = append(issues, Issue{
					Path:     row.Path,
					Message:  ruleMessage(compiled.rule),
					Severity: compiled.rule.Severity,
				})
			}
		}
	}
	return issues, nil
}

func ruleMessage(rule Rule) string {
	message := rule.Message
	if message == "" {
		message = "Rule expression returned false."
	}
	return fmt.Sprintf("[%s] %s", rule.Name, message)
}
