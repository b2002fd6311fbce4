package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/docopt/docopt-go"

	tokens "github.com/goliatone/go-tokens"
	"github.com/goliatone/go-tokens/export"
	"github.com/goliatone/go-tokens/internal/config"
	"github.com/goliatone/go-tokens/internal/ctxlog"
	"github.com/goliatone/go-tokens/internal/logging"
	"github.com/goliatone/go-tokens/pkg/storage"
	"github.com/goliatone/go-tokens/schema/jsonschema"
)

const TokenCtlVersion = "0.1.0"

const usage = `Inspect and edit layered design tokens.

The tokens directory is discovered upward from the working directory
unless --root or --pick is given.

Usage:
    tokenctl units [options]
    tokenctl flatten <bu> [options]
    tokenctl validate <bu> [options]
    tokenctl trace <bu> <path> [options]
    tokenctl export <bu> [--format=<format>] [--resolved] [--out=<file>] [options]
    tokenctl schema <bu> [--strict] [--out=<file>] [options]
    tokenctl set <bu> <path> <value> [--type=<type>] [--description=<text>] [--override] [options]
    tokenctl bump-version <bu> [options]
    tokenctl -h | --help
    tokenctl --version

Options:
    -h --help              Show this screen.
    --version              Show version.
    --root=<dir>           Tokens directory.
    --pick                 Ask for the project folder on the terminal.
    --store=<bolt-file>    Use a bbolt store instead of the filesystem.
    --config=<file>        Project configuration [default: tokens.hcl].
    --log-level=<level>    Override the configured log level.
    --json                 Print JSON instead of text.
    --format=<format>      css, scss, js or ts [default: css].
    --resolved             Export resolved values instead of variable links.
    --out=<file>           Write output to a file instead of stdout.
    --strict               Pin every token's $type in the schema.
    --type=<type>          Token $type for new tokens.
    --description=<text>   Token $description.
    --override             Write the value to the business unit even when core owns it.`

// errValidation is returned when validation reports errors, so the process
// exits non-zero without printing the error twice.
var errValidation = errors.New("validation reported errors")

func main() {
	opts, err := docopt.ParseArgs(usage, os.Args[1:], TokenCtlVersion)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		if !errors.Is(err, errValidation) {
			fmt.Fprintln(os.Stderr, "tokenctl:", err)
		}
		os.Exit(1)
	}
}

type app struct {
	opts   docopt.Opts
	out    io.Writer
	store  storage.Storage
	root   string
	engine *tokens.Engine
	logger *slog.Logger
}

func run(ctx context.Context, opts docopt.Opts, out io.Writer) error {
	a := &app{opts: opts, out: out}

	cfg, err := config.Load(ctx, storage.NewOS(), optString(opts, "--config"))
	if err != nil {
		return err
	}
	level := cfg.LogLevel
	if override := optString(opts, "--log-level"); override != "" {
		level = override
	}
	a.logger = logging.New(level, cfg.LogFormat, os.Stderr)
	ctx = ctxlog.WithLogger(ctx, a.logger)

	closeStore, err := a.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	rules, err := buildRules(cfg, a.logger)
	if err != nil {
		return err
	}
	a.engine = tokens.New(a.store,
		tokens.WithLogger(a.logger),
		tokens.WithRuleSet(rules),
		tokens.WithCorePrefix(cfg.CorePrefix),
	)
	if a.root, err = a.tokenRoot(ctx); err != nil {
		return err
	}

	switch {
	case optBool(opts, "units"):
		return a.units(ctx)
	case optBool(opts, "flatten"):
		return a.flatten(ctx)
	case optBool(opts, "validate"):
		return a.validate(ctx)
	case optBool(opts, "trace"):
		return a.trace(ctx)
	case optBool(opts, "export"):
		return a.export(ctx)
	case optBool(opts, "schema"):
		return a.schema(ctx)
	case optBool(opts, "set"):
		return a.set(ctx)
	case optBool(opts, "bump-version"):
		return a.bumpVersion(ctx)
	}
	return nil
}

func buildRules(cfg *config.Config, logger *slog.Logger) (*tokens.RuleSet, error) {
	cache := tokens.NewTTLProgramCache(0, 0)
	evaluator, err := tokens.NewEvaluatorByName(cfg.Evaluator, cache, tokens.DefaultFunctionRegistry())
	if err != nil {
		return nil, err
	}
	return tokens.NewRuleSet(cfg.Rules,
		tokens.WithEvaluator(evaluator),
		tokens.WithEvaluatorLogger(tokens.SlogEvaluatorLogger{Logger: logger}),
	)
}

func (a *app) openStore() (func(), error) {
	file := optString(a.opts, "--store")
	if file == "" {
		a.store = storage.NewOS()
		return func() {}, nil
	}
	bolt, err := storage.OpenBolt(file)
	if err != nil {
		return nil, err
	}
	a.store = bolt
	return func() {
		if err := bolt.Close(); err != nil {
			a.logger.Warn("Closing store failed.", "file", file, "error", err)
		}
	}, nil
}

func (a *app) tokenRoot(ctx context.Context) (string, error) {
	if root := optString(a.opts, "--root"); root != "" {
		return root, nil
	}
	if optBool(a.opts, "--pick") {
		root, ok, err := tokens.PickTokenRoot(ctx, a.store, newTerminalPicker())
		if err != nil {
			return "", err
		}
		if !ok {
			return "", errors.New("no folder selected")
		}
		return root, nil
	}
	start := "/"
	if _, isOS := a.store.(*storage.OS); isOS {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		start = wd
	}
	return tokens.DiscoverTokenRoot(ctx, a.store, start)
}

func (a *app) load(ctx context.Context) (*tokens.LoadResult, error) {
	return a.engine.Load(ctx, a.root, optString(a.opts, "<bu>"))
}

func (a *app) units(ctx context.Context) error {
	units, err := a.engine.BusinessUnits(ctx, a.root)
	if err != nil {
		return err
	}
	if optBool(a.opts, "--json") {
		return a.printJSON(units)
	}
	names := tokens.LoadDisplayNames(ctx, a.store, a.root)
	for _, unit := range units {
		version, ok, err := tokens.ReadVersion(ctx, a.store, a.root, unit.Name)
		if err != nil {
			a.logger.Warn("Version unreadable.", "bu", unit.Name, "error", err)
		}
		if !ok {
			version = "-"
		}
		fmt.Fprintf(a.out, "%s\t%s\t%s\n", unit.Name, unit.DisplayName(names), version)
	}
	return nil
}

func (a *app) flatten(ctx context.Context) error {
	result, err := a.load(ctx)
	if err != nil {
		return err
	}
	if optBool(a.opts, "--json") {
		return a.printJSON(result.Rows)
	}
	for _, row := range result.Rows {
		value := fmt.Sprint(row.Value)
		if row.Resolved != nil {
			value = fmt.Sprintf("%v -> %v", row.Value, row.Resolved)
		}
		fmt.Fprintf(a.out, "%s\t%s\t%s\t%s\n", row.Path, row.Type, row.Layer, value)
	}
	return nil
}

func (a *app) validate(ctx context.Context) error {
	result, err := a.load(ctx)
	if err != nil {
		return err
	}
	issues, err := a.engine.Validate(ctx, result)
	if err != nil {
		return err
	}
	if err := a.printIssues(issues); err != nil {
		return err
	}
	if issues.HasErrors() {
		return errValidation
	}
	return nil
}

func (a *app) printIssues(issues tokens.Issues) error {
	if optBool(a.opts, "--json") {
		if issues == nil {
			issues = tokens.Issues{}
		}
		return a.printJSON(issues)
	}
	for _, issue := range issues {
		line := fmt.Sprintf("%s\t%s\t%s", issue.Severity, issue.Path, issue.Message)
		if len(issue.Suggestions) > 0 {
			line += " (did you mean " + strings.Join(issue.Suggestions, ", ") + "?)"
		}
		fmt.Fprintln(a.out, line)
	}
	fmt.Fprintf(a.out, "%d error(s), %d warning(s)\n", len(issues.Errors()), len(issues.Warnings()))
	return nil
}

func (a *app) trace(ctx context.Context) error {
	result, err := a.load(ctx)
	if err != nil {
		return err
	}
	trace := result.Trace(optString(a.opts, "<path>"))
	if optBool(a.opts, "--json") {
		return a.printJSON(trace)
	}
	for _, layer := range trace.Layers {
		marker := " "
		if layer.Effective {
			marker = "*"
		}
		value := "-"
		if layer.Found {
			data, _ := json.Marshal(layer.Value)
			value = string(data)
		}
		fmt.Fprintf(a.out, "%s %s\t%s\t%s\n", marker, layer.Source.Layer, layer.Source.File, value)
	}
	return nil
}

func (a *app) export(ctx context.Context) error {
	format, err := export.ParseFormat(optString(a.opts, "--format"))
	if err != nil {
		return err
	}
	result, err := a.load(ctx)
	if err != nil {
		return err
	}
	var renderOpts []export.Option
	if optBool(a.opts, "--resolved") {
		renderOpts = append(renderOpts, export.WithResolvedValues())
	}
	rendered, err := export.Render(result.Rows, format, renderOpts...)
	if err != nil {
		return err
	}
	return a.emit(ctx, []byte(rendered))
}

func (a *app) schema(ctx context.Context) error {
	result, err := a.load(ctx)
	if err != nil {
		return err
	}
	var genOpts []jsonschema.GeneratorOption
	genOpts = append(genOpts, jsonschema.WithTitle(result.BU+" design tokens"))
	if optBool(a.opts, "--strict") {
		genOpts = append(genOpts, jsonschema.WithStrictTypes())
	}
	data, err := jsonschema.NewGenerator(genOpts...).Marshal(result.Merged)
	if err != nil {
		return err
	}
	return a.emit(ctx, data)
}

func (a *app) set(ctx context.Context) error {
	session, err := a.engine.Open(ctx, a.root, optString(a.opts, "<bu>"))
	if err != nil {
		return err
	}
	path := optString(a.opts, "<path>")
	edit := tokens.TokenEdit{
		Value:       parseValue(optString(a.opts, "<value>")),
		Type:        optString(a.opts, "--type"),
		Description: optString(a.opts, "--description"),
	}
	if optBool(a.opts, "--override") {
		err = session.Override(ctx, path, edit)
	} else {
		err = session.Set(ctx, path, edit)
	}
	if err != nil {
		return err
	}
	saved, issues, err := session.Save(ctx)
	if errors.Is(err, tokens.ErrValidationFailed) {
		if printErr := a.printIssues(issues); printErr != nil {
			return printErr
		}
		return errValidation
	}
	if err != nil {
		return err
	}
	for _, file := range saved.Written {
		fmt.Fprintln(a.out, "wrote", file)
	}
	return nil
}

func (a *app) bumpVersion(ctx context.Context) error {
	next, err := tokens.BumpVersion(ctx, a.store, a.root, optString(a.opts, "<bu>"))
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, next.String())
	return nil
}

func (a *app) emit(ctx context.Context, data []byte) error {
	file := optString(a.opts, "--out")
	if file == "" {
		_, err := a.out.Write(data)
		return err
	}
	return storage.NewOS().WriteFile(ctx, file, data)
}

func (a *app) printJSON(value any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

// parseValue reads a command line value as JSON when it is a number, a
// boolean or a quoted string, and as a plain string otherwise.
func parseValue(raw string) any {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil || dec.More() {
		return raw
	}
	switch value.(type) {
	case string, json.Number, bool:
		return value
	default:
		return raw
	}
}

func optString(opts docopt.Opts, key string) string {
	value, _ := opts[key].(string)
	return value
}

func optBool(opts docopt.Opts, key string) bool {
	value, _ := opts.Bool(key)
	return value
}
