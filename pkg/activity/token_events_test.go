package activity

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuildTokenUpdatedEvent(t *testing.T) {
	event := BuildTokenUpdatedEvent(TokenEventInput{
		ActorID:      " actor ",
		BusinessUnit: "acme",
		Path:         "color.brand",
		File:         "tokens/acme/tokens.json",
		Layer:        "bu",
		OldValue:     "#000",
		NewValue:     "#fff",
	})

	if event.Verb != VerbTokenUpdated || event.ObjectType != ObjectToken || event.ObjectID != "color.brand" {
		t.Fatalf("unexpected event identity: %+v", event)
	}
	if event.ActorID != "actor" {
		t.Fatalf("expected trimmed actor, got %q", event.ActorID)
	}
	want := map[string]any{
		"business_unit": "acme",
		"path":          "color.brand",
		"file":          "tokens/acme/tokens.json",
		"layer":         "bu",
		"old_value":     "#000",
		"new_value":     "#fff",
	}
	if diff := cmp.Diff(want, event.Metadata); diff != "" {
		t.Fatalf("metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildWorkspaceEventsUseRootAndUnit(t *testing.T) {
	loaded := BuildLoadedEvent(TokenEventInput{TokensRoot: "/ws/tokens", BusinessUnit: "acme", LoadID: "load-1"})
	if loaded.ObjectID != "/ws/tokens#acme" || loaded.ObjectType != ObjectWorkspace {
		t.Fatalf("unexpected loaded event: %+v", loaded)
	}
	if loaded.Metadata["load_id"] != "load-1" {
		t.Fatalf("expected load id metadata, got %+v", loaded.Metadata)
	}

	saved := BuildSavedEvent(TokenEventInput{})
	if saved.ObjectID != ObjectWorkspace {
		t.Fatalf("expected object type fallback id, got %q", saved.ObjectID)
	}
	if saved.Metadata != nil {
		t.Fatalf("expected no metadata, got %+v", saved.Metadata)
	}
}

func TestBuildFileWrittenEvent(t *testing.T) {
	event := BuildFileWrittenEvent(TokenEventInput{File: "tokens/_core/base.json", Layer: "core"})
	if event.Verb != VerbFileWritten || event.ObjectType != ObjectFile || event.ObjectID != "tokens/_core/base.json" {
		t.Fatalf("unexpected event: %+v", event)
	}
}
