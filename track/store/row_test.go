package store

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/getpup/pupmetrics/track"
)

func TestSessionRowFromAttrs(t *testing.T) {
	startedAt := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	row, err := SessionRowFromAttrs(track.Attrs{
		"id":         "s1",
		"hostname":   "example.com",
		"entry_path": "/welcome",
		"referrer":   "https://ref.example",
		"user_agent": "Mozilla/5.0",
		"started_at": startedAt,
		"metadata":   map[string]interface{}{"plan": "pro"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if row.ID != "s1" {
		t.Errorf("expected id s1, got %q", row.ID)
	}
	if row.Hostname != "example.com" || row.EntryPath != "/welcome" {
		t.Errorf("unexpected row: %+v", row)
	}
	if !row.StartedAt.Equal(startedAt) {
		t.Errorf("expected started_at %v, got %v", startedAt, row.StartedAt)
	}

	var meta map[string]interface{}
	if err := json.Unmarshal(row.Metadata, &meta); err != nil {
		t.Fatalf("metadata is not valid JSON: %v", err)
	}
	if meta["plan"] != "pro" {
		t.Errorf("expected metadata plan=pro, got %v", meta)
	}
}

func TestSessionRowFromAttrsDefaultsTimestamps(t *testing.T) {
	before := time.Now().UTC()
	row, err := SessionRowFromAttrs(track.Attrs{"id": "s1"})
	after := time.Now().UTC()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if row.StartedAt.Before(before) || row.StartedAt.After(after) {
		t.Errorf("expected started_at defaulted to now, got %v", row.StartedAt)
	}
	if row.LastSeenAt.Before(before) || row.LastSeenAt.After(after) {
		t.Errorf("expected last_seen_at defaulted to now, got %v", row.LastSeenAt)
	}
	if row.Metadata != nil {
		t.Errorf("expected nil metadata when absent, got %s", row.Metadata)
	}
}

func TestSessionRowFromAttrsMissingID(t *testing.T) {
	_, err := SessionRowFromAttrs(track.Attrs{"hostname": "example.com"})
	if !errors.Is(err, ErrMissingSessionID) {
		t.Errorf("expected ErrMissingSessionID, got %v", err)
	}

	_, err = SessionRowFromAttrs(track.Attrs{"id": ""})
	if !errors.Is(err, ErrMissingSessionID) {
		t.Errorf("expected ErrMissingSessionID for empty id, got %v", err)
	}
}

func TestValidateEvent(t *testing.T) {
	valid := &track.Event{SessionID: "s1", Name: "Page View"}
	if err := ValidateEvent(valid); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	noSession := &track.Event{Name: "Page View"}
	if err := ValidateEvent(noSession); !errors.Is(err, ErrMissingSessionID) {
		t.Errorf("expected ErrMissingSessionID, got %v", err)
	}

	noName := &track.Event{SessionID: "s1"}
	if err := ValidateEvent(noName); !errors.Is(err, ErrMissingEventName) {
		t.Errorf("expected ErrMissingEventName, got %v", err)
	}
}

func TestEventMetaJSON(t *testing.T) {
	empty := &track.Event{SessionID: "s1", Name: "X"}
	data, err := EventMetaJSON(empty)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data != nil {
		t.Errorf("expected nil for empty meta, got %s", data)
	}

	withMeta := &track.Event{
		SessionID: "s1",
		Name:      "X",
		Meta:      track.Attrs{"button": "signup"},
	}
	data, err = EventMetaJSON(withMeta)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var meta map[string]interface{}
	if err := json.Unmarshal(data, &meta); err != nil {
		t.Fatalf("meta is not valid JSON: %v", err)
	}
	if meta["button"] != "signup" {
		t.Errorf("expected button=signup, got %v", meta)
	}
}
