// Package config loads the optional tokens.hcl project file that sits next
// to a tokens directory. It selects the rule evaluator, the log settings and
// the expression lint rules run by validation.
//
//	evaluator  = "expr"
//	log_level  = "info"
//	log_format = "text"
//
//	rule "spacing-in-px" {
//	  expr     = "unitOf(value) == args.unit"
//	  message  = "Spacing must use px."
//	  severity = "warning"
//	  types    = ["dimension"]
//	  args     = { unit = "px" }
//	}
package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	tokens "github.com/goliatone/go-tokens"
	"github.com/goliatone/go-tokens/internal/ctxlog"
	"github.com/goliatone/go-tokens/pkg/storage"
)

// FileName is the conventional config file name.
const FileName = "tokens.hcl"

// Config is the decoded project configuration.
type Config struct {
	Evaluator  string
	LogLevel   string
	LogFormat  string
	CorePrefix string
	Rules      []tokens.Rule
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Evaluator:  "expr",
		LogLevel:   "info",
		LogFormat:  "text",
		CorePrefix: tokens.DefaultCorePrefix,
	}
}

type fileRoot struct {
	Evaluator  string       `hcl:"evaluator,optional"`
	LogLevel   string       `hcl:"log_level,optional"`
	LogFormat  string       `hcl:"log_format,optional"`
	CorePrefix string       `hcl:"core_prefix,optional"`
	Rules      []*ruleBlock `hcl:"rule,block"`
	Remain     hcl.Body     `hcl:",remain"`
}

type ruleBlock struct {
	Name     string         `hcl:"name,label"`
	Expr     string         `hcl:"expr"`
	Message  string         `hcl:"message,optional"`
	Severity string         `hcl:"severity,optional"`
	Types    []string       `hcl:"types,optional"`
	Args     hcl.Expression `hcl:"args,optional"`
}

// Load reads path from store. A missing file yields Default.
func Load(ctx context.Context, store storage.Storage, path string) (*Config, error) {
	logger := ctxlog.FromContext(ctx)
	data, err := store.ReadFile(ctx, path)
	if err != nil {
		if storage.IsNotExist(err) {
			logger.Debug("No project config found, using defaults.", "path", path)
			return Default(), nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	logger.Debug("Project config loaded.", "path", path, "rules", len(cfg.Rules), "evaluator", cfg.Evaluator)
	return cfg, nil
}

// Parse decodes HCL source. filename is only used in diagnostics.
func Parse(data []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: parse %s: %w", filename, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("config: decode %s: %w", filename, diags)
	}

	cfg := Default()
	if root.Evaluator != "" {
		cfg.Evaluator = strings.ToLower(root.Evaluator)
	}
	if root.LogLevel != "" {
		cfg.LogLevel = root.LogLevel
	}
	if root.LogFormat != "" {
		cfg.LogFormat = strings.ToLower(root.LogFormat)
	}
	if root.CorePrefix != "" {
		cfg.CorePrefix = root.CorePrefix
	}
	for _, block := range root.Rules {
		rule, err := translateRule(block)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", filename, err)
		}
		cfg.Rules = append(cfg.Rules, rule)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", filename, err)
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Evaluator {
	case "expr", "cel", "js":
	default:
		return fmt.Errorf("unknown evaluator %q (want expr, cel or js)", c.Evaluator)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log_format %q (want text or json)", c.LogFormat)
	}
	return nil
}

func translateRule(block *ruleBlock) (tokens.Rule, error) {
	rule := tokens.Rule{
		Name:    block.Name,
		Expr:    block.Expr,
		Message: block.Message,
		Types:   block.Types,
	}
	switch strings.ToLower(block.Severity) {
	case "", "error":
		rule.Severity = tokens.SeverityError
	case "warning", "warn":
		rule.Severity = tokens.SeverityWarning
	default:
		return tokens.Rule{}, fmt.Errorf("rule %q: unknown severity %q", block.Name, block.Severity)
	}
	if block.Args != nil {
		val, diags := block.Args.Value(nil)
		if diags.HasErrors() {
			return tokens.Rule{}, fmt.Errorf("rule %q: args: %w", block.Name, diags)
		}
		native, err := ctyToNative(val)
		if err != nil {
			return tokens.Rule{}, fmt.Errorf("rule %q: args: %w", block.Name, err)
		}
		if native != nil {
			args, ok := native.(map[string]any)
			if !ok {
				return tokens.Rule{}, fmt.Errorf("rule %q: args must be an object", block.Name)
			}
			rule.Args = args
		}
	}
	return rule, nil
}

// ctyToNative converts a cty.Value into plain Go values.
func ctyToNative(val cty.Value) (any, error) {
	if !val.IsKnown() || val.IsNull() {
		return nil, nil
	}
	ty := val.Type()
	if ty.IsPrimitiveType() {
		switch ty {
		case cty.String:
			return val.AsString(), nil
		case cty.Number:
			f, _ := val.AsBigFloat().Float64()
			return f, nil
		case cty.Bool:
			return val.True(), nil
		default:
			return nil, fmt.Errorf("unsupported primitive type: %s", ty.FriendlyName())
		}
	}
	if ty.IsObjectType() || ty.IsMapType() {
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			native, err := ctyToNative(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = native
		}
		return out, nil
	}
	if ty.IsTupleType() || ty.IsListType() || ty.IsSetType() {
		out := []any{}
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			native, err := ctyToNative(v)
			if err != nil {
				return nil, err
			}
			out = append(out, native)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported type: %s", ty.FriendlyName())
}
