package tokens

import (
	"context"
	"log/slog"
	"time"
)

// EvaluatorLogEvent describes an evaluation attempt for logging.
type EvaluatorLogEvent struct {
	Engine   string
	Expr     string
	Rule     string
	Duration time.Duration
	Err      error
}

// EvaluatorLogger records evaluator events.
type EvaluatorLogger interface {
	LogEvaluation(EvaluatorLogEvent)
}

// EvaluatorLoggerFunc adapts a function to EvaluatorLogger.
type EvaluatorLoggerFunc func(EvaluatorLogEvent)

// LogEvaluation implements EvaluatorLogger.
func (f EvaluatorLoggerFunc) LogEvaluation(event EvaluatorLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopEvaluatorLogger struct{}

func (noopEvaluatorLogger) LogEvaluation(EvaluatorLogEvent) {}

// SlogEvaluatorLogger writes evaluations to a slog.Logger. Successful runs
// are logged at debug level, failures at warn.
type SlogEvaluatorLogger struct {
	Logger *slog.Logger
}

// LogEvaluation implements EvaluatorLogger.
func (l SlogEvaluatorLogger) LogEvaluation(event EvaluatorLogEvent) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []slog.Attr{
		slog.String("engine", event.Engine),
		slog.String("rule", event.Rule),
		slog.String("expr", event.Expr),
		slog.Duration("duration", event.Duration),
	}
	if event.Err != nil {
		attrs = append(attrs, slog.Any("error", event.Err))
		logger.LogAttrs(context.Background(), slog.LevelWarn, "Rule evaluation failed", attrs...)
		return
	}
	logger.LogAttrs(context.Background(), slog.LevelDebug, "Rule evaluated", attrs...)
}

// WithEvaluatorLogger attaches an evaluator logger to the rule set.
func WithEvaluatorLogger(logger EvaluatorLogger) RuleOption {
	return func(cfg *ruleConfig) {
		if logger == nil {
			cfg.logger = noopEvaluatorLogger{}
			return
		}
		cfg.logger = logger
	}
}
