package tokens

import "time"

const defaultJSTimeout = 250 * time.Millisecond

type jsEvaluatorConfig struct {
	cache    ProgramCache
	registry *FunctionRegistry
	timeout  time.Duration
}

// JSEvaluatorOption configures the JS evaluator.
type JSEvaluatorOption func(*jsEvaluatorConfig)

// JSWithProgramCache applies a ProgramCache to the JS evaluator.
func JSWithProgramCache(cache ProgramCache) JSEvaluatorOption {
	return func(cfg *jsEvaluatorConfig) {
		cfg.cache = cache
	}
}

// JSWithFunctionRegistry applies a FunctionRegistry to the JS evaluator.
func JSWithFunctionRegistry(registry *FunctionRegistry) JSEvaluatorOption {
	return func(cfg *jsEvaluatorConfig) {
		if registry == nil {
			return
		}
		cfg.registry = registry.Clone()
	}
}

// JSWithTimeout bounds a single rule evaluation. A runaway script is
// interrupted once the timeout elapses.
func JSWithTimeout(timeout time.Duration) JSEvaluatorOption {
	return func(cfg *jsEvaluatorConfig) {
		if timeout > 0 {
			cfg.timeout = timeout
		}
	}
}

func applyJSEvaluatorOptions(opts []JSEvaluatorOption) jsEvaluatorConfig {
	cfg := jsEvaluatorConfig{timeout: defaultJSTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
