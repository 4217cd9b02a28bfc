package track

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewEventFromAttrsLiftsWellKnownKeys(t *testing.T) {
	createdAt := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	ev := NewEventFromAttrs(Attrs{
		"session_id": "s1",
		"name":       "Page View",
		"path":       "/welcome",
		"created_at": createdAt,
		"referrer":   "https://example.com",
		"duration":   1200,
	})

	if ev.SessionID != "s1" {
		t.Errorf("expected session id s1, got %q", ev.SessionID)
	}
	if ev.Name != "Page View" {
		t.Errorf("expected name Page View, got %q", ev.Name)
	}
	if ev.Path != "/welcome" {
		t.Errorf("expected path /welcome, got %q", ev.Path)
	}
	if !ev.CreatedAt.Equal(createdAt) {
		t.Errorf("expected created_at %v, got %v", createdAt, ev.CreatedAt)
	}
	if ev.EventID == uuid.Nil {
		t.Error("expected a generated event id")
	}

	if len(ev.Meta) != 2 {
		t.Fatalf("expected 2 meta keys, got %d: %v", len(ev.Meta), ev.Meta)
	}
	if ev.Meta.String("referrer") != "https://example.com" {
		t.Errorf("expected referrer in meta, got %v", ev.Meta)
	}
	if _, ok := ev.Meta["session_id"]; ok {
		t.Error("lifted keys must not leak into meta")
	}
}

func TestNewEventFromAttrsDefaultsCreatedAt(t *testing.T) {
	before := time.Now().UTC()
	ev := NewEventFromAttrs(Attrs{"session_id": "s1", "name": "X"})
	after := time.Now().UTC()

	if ev.CreatedAt.Before(before) || ev.CreatedAt.After(after) {
		t.Errorf("expected created_at defaulted to now, got %v", ev.CreatedAt)
	}
	if ev.Meta != nil {
		t.Errorf("expected nil meta when no extra keys, got %v", ev.Meta)
	}
}

func TestNewEventFromAttrsUniqueEventIDs(t *testing.T) {
	a := NewEventFromAttrs(Attrs{"session_id": "s1", "name": "X"})
	b := NewEventFromAttrs(Attrs{"session_id": "s1", "name": "X"})
	if a.EventID == b.EventID {
		t.Error("expected distinct event ids per call")
	}
}
