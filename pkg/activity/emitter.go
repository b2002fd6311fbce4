package activity

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// DefaultChannel is applied to events emitted without a channel.
const DefaultChannel = "tokens"

// Config controls activity emission defaults.
type Config struct {
	Enabled bool
	Channel string
	// NewID generates event IDs. Defaults to random UUIDs.
	NewID func() string
}

// Emitter fans out events to hooks while applying defaults.
type Emitter struct {
	hooks   Hooks
	enabled bool
	channel string
	newID   func() string
}

// NewEmitter constructs an emitter from hooks and configuration.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	channel := strings.TrimSpace(cfg.Channel)
	if channel == "" {
		channel = DefaultChannel
	}
	newID := cfg.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	normalized := hooks.Clone()
	return &Emitter{
		hooks:   normalized,
		enabled: cfg.Enabled && len(normalized) > 0,
		channel: channel,
		newID:   newID,
	}
}

// Enabled reports whether emissions should be attempted.
func (e *Emitter) Enabled() bool {
	return e != nil && e.enabled && len(e.hooks) > 0
}

// Emit forwards the event to all hooks, filling the channel and ID when
// missing.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.channel
	}
	if strings.TrimSpace(event.ID) == "" {
		event.ID = e.newID()
	}
	return e.hooks.Notify(ctx, event)
}
