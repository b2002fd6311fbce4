package activity

import (
	"strings"
	"time"
)

// Verbs emitted by the token engine.
const (
	VerbLoaded       = "tokens.loaded"
	VerbSaved        = "tokens.saved"
	VerbFileWritten  = "tokens.file.written"
	VerbTokenUpdated = "tokens.token.updated"
	VerbTokenDeleted = "tokens.token.deleted"
)

// Object types carried by token events.
const (
	ObjectWorkspace = "tokens.workspace"
	ObjectFile      = "tokens.file"
	ObjectToken     = "tokens.token"
)

// TokenEventInput describes the fields shared by token lifecycle events.
type TokenEventInput struct {
	ActorID      string
	UserID       string
	TenantID     string
	Channel      string
	TokensRoot   string
	BusinessUnit string
	// LoadID ties the event to the load that produced the edited tree.
	LoadID     string
	Path       string
	File       string
	Layer      string
	OldValue   any
	NewValue   any
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildLoadedEvent describes a completed workspace load.
func BuildLoadedEvent(input TokenEventInput) Event {
	return buildTokenEvent(VerbLoaded, ObjectWorkspace, workspaceID(input), input)
}

// BuildSavedEvent describes a completed workspace save.
func BuildSavedEvent(input TokenEventInput) Event {
	return buildTokenEvent(VerbSaved, ObjectWorkspace, workspaceID(input), input)
}

// BuildFileWrittenEvent describes a single token file written during a save.
func BuildFileWrittenEvent(input TokenEventInput) Event {
	return buildTokenEvent(VerbFileWritten, ObjectFile, input.File, input)
}

// BuildTokenUpdatedEvent describes an edit to one token.
func BuildTokenUpdatedEvent(input TokenEventInput) Event {
	return buildTokenEvent(VerbTokenUpdated, ObjectToken, input.Path, input)
}

// BuildTokenDeletedEvent describes a token removal.
func BuildTokenDeletedEvent(input TokenEventInput) Event {
	return buildTokenEvent(VerbTokenDeleted, ObjectToken, input.Path, input)
}

func workspaceID(input TokenEventInput) string {
	bu := strings.TrimSpace(input.BusinessUnit)
	root := strings.TrimSpace(input.TokensRoot)
	switch {
	case root != "" && bu != "":
		return root + "#" + bu
	case bu != "":
		return bu
	default:
		return root
	}
}

func buildTokenEvent(verb, objectType, objectID string, input TokenEventInput) Event {
	metadata := cloneMap(input.Metadata)
	set := func(key string, value any) {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata[key] = value
	}
	if input.BusinessUnit != "" {
		set("business_unit", input.BusinessUnit)
	}
	if input.TokensRoot != "" {
		set("tokens_root", input.TokensRoot)
	}
	if input.LoadID != "" {
		set("load_id", input.LoadID)
	}
	if input.Path != "" {
		set("path", input.Path)
	}
	if input.File != "" {
		set("file", input.File)
	}
	if input.Layer != "" {
		set("layer", input.Layer)
	}
	if input.OldValue != nil {
		set("old_value", input.OldValue)
	}
	if input.NewValue != nil {
		set("new_value", input.NewValue)
	}

	objectID = strings.TrimSpace(objectID)
	if objectID == "" {
		objectID = objectType
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}
