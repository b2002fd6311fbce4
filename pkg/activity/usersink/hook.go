// Package usersink forwards token activity events to a go-users
// ActivitySink so workspace edits land in the same audit trail as user
// actions.
package usersink

import (
	"context"
	"strings"

	"github.com/goliatone/go-tokens/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook adapts activity events to a go-users ActivitySink.
type Hook struct {
	Sink usertypes.ActivitySink
	// Verbs restricts forwarding to the listed verbs. Empty forwards all.
	Verbs []string
	// DefaultActorID is used when an event carries no parsable actor.
	DefaultActorID uuid.UUID
}

// Notify maps the event into an ActivityRecord and forwards it to the sink.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}

	normalized := activity.NormalizeEvent(event)
	if normalized.Verb == "" || normalized.ObjectType == "" || normalized.ObjectID == "" {
		return nil
	}
	if !h.accepts(normalized.Verb) {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	actor := parseUUID(normalized.ActorID)
	if actor == uuid.Nil {
		actor = h.DefaultActorID
	}

	record := usertypes.ActivityRecord{
		ActorID:    actor,
		UserID:     parseUUID(normalized.UserID),
		TenantID:   parseUUID(normalized.TenantID),
		Verb:       normalized.Verb,
		ObjectType: normalized.ObjectType,
		ObjectID:   normalized.ObjectID,
		Channel:    normalized.Channel,
		Data:       normalized.Metadata,
		OccurredAt: normalized.OccurredAt,
	}
	if normalized.ID != "" {
		if record.Data == nil {
			record.Data = map[string]any{}
		}
		record.Data["event_id"] = normalized.ID
	}

	return h.Sink.Log(ctx, record)
}

func (h Hook) accepts(verb string) bool {
	if len(h.Verbs) == 0 {
		return true
	}
	for _, candidate := range h.Verbs {
		if candidate == verb {
			return true
		}
	}
	return false
}

func parseUUID(input string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(input))
	if err != nil {
		return uuid.Nil
	}
	return id
}
