package tokens

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/goliatone/go-tokens/internal/ctxlog"
	"github.com/goliatone/go-tokens/pkg/activity"
	"github.com/goliatone/go-tokens/pkg/storage"
)

// Engine loads, validates and saves layered token workspaces. It holds no
// per-workspace state: every Load reads fresh from storage, and edits live
// in a caller-owned Session.
type Engine struct {
	store      storage.Storage
	logger     *slog.Logger
	rules      *RuleSet
	emitter    *activity.Emitter
	hooks      activity.Hooks
	newID      func() string
	corePrefix string
}

// Option configures an Engine.
type Option func(*engineConfig)

type engineConfig struct {
	logger          *slog.Logger
	rules           *RuleSet
	activityHooks   activity.Hooks
	activityChannel string
	newID           func() string
	corePrefix      string
}

// New constructs an engine over store.
func New(store storage.Storage, opts ...Option) *Engine {
	cfg := engineConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.newID == nil {
		cfg.newID = uuid.NewString
	}
	if cfg.corePrefix == "" {
		cfg.corePrefix = DefaultCorePrefix
	}
	return &Engine{
		store:      store,
		logger:     cfg.logger,
		rules:      cfg.rules,
		hooks:      cfg.activityHooks,
		newID:      cfg.newID,
		corePrefix: cfg.corePrefix,
		emitter: activity.NewEmitter(cfg.activityHooks, activity.Config{
			Enabled: true,
			Channel: cfg.activityChannel,
			NewID:   cfg.newID,
		}),
	}
}

// WithLogger sets the engine logger. Without one the logger carried by the
// call context is used, if any.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *engineConfig) {
		cfg.logger = logger
	}
}

// WithRuleSet adds expression lint rules to Engine.Validate.
func WithRuleSet(rules *RuleSet) Option {
	return func(cfg *engineConfig) {
		cfg.rules = rules
	}
}

// WithIDGenerator replaces the UUID generator used for load and event IDs.
func WithIDGenerator(fn func() string) Option {
	return func(cfg *engineConfig) {
		cfg.newID = fn
	}
}

// WithCorePrefix changes the directory prefix that marks core layers.
func WithCorePrefix(prefix string) Option {
	return func(cfg *engineConfig) {
		cfg.corePrefix = prefix
	}
}

// Storage returns the storage the engine reads and writes.
func (e *Engine) Storage() storage.Storage {
	return e.store
}

// Rules returns the configured rule set, possibly nil.
func (e *Engine) Rules() *RuleSet {
	return e.rules
}

func (e *Engine) log(ctx context.Context) *slog.Logger {
	if e.logger != nil {
		return e.logger
	}
	return ctxlog.FromContext(ctx)
}

// BusinessUnits lists the business units of tokensRoot.
func (e *Engine) BusinessUnits(ctx context.Context, tokensRoot string) ([]BusinessUnit, error) {
	return discoverBusinessUnits(ctx, e.store, tokensRoot, e.corePrefix)
}

// Core lists the core directories of tokensRoot.
func (e *Engine) Core(ctx context.Context, tokensRoot string) ([]CoreEntry, error) {
	return discoverCore(ctx, e.store, tokensRoot, e.corePrefix)
}

// Validate runs the structural validator over the merged tree, then the
// configured lint rules over the rows.
func (e *Engine) Validate(ctx context.Context, result *LoadResult) (Issues, error) {
	issues := Validate(result.Merged, result.Merged)
	ruleIssues, err := e.rules.Check(ctx, result.Rows)
	issues = append(issues, ruleIssues...)
	e.log(ctx).Debug("Validation finished.",
		"bu", result.BU,
		"errors", len(issues.Errors()),
		"warnings", len(issues.Warnings()),
	)
	return issues, err
}
