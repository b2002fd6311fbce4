package tokens

import (
	"context"

	"github.com/goliatone/go-tokens/pkg/activity"
)

// WithActivityHooks attaches activity hooks notified on loads, saves and
// edits. Nil hooks are dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := hooks.Clone()
	return func(cfg *engineConfig) {
		cfg.activityHooks = normalized
	}
}

// WithActivityChannel sets the channel stamped on emitted events.
func WithActivityChannel(channel string) Option {
	return func(cfg *engineConfig) {
		cfg.activityChannel = channel
	}
}

// ActivityHooks returns a copy of the configured hooks.
func (e *Engine) ActivityHooks() activity.Hooks {
	if e == nil {
		return nil
	}
	return e.hooks.Clone()
}

// emit forwards event to the hooks. Hook failures are logged and never fail
// the engine operation that produced the event.
func (e *Engine) emit(ctx context.Context, event activity.Event) {
	if !e.emitter.Enabled() {
		return
	}
	if err := e.emitter.Emit(ctx, event); err != nil {
		e.log(ctx).Warn("Activity hook failed.", "verb", event.Verb, "error", err)
	}
}
