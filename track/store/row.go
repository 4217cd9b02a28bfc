package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/getpup/pupmetrics/track"
)

// SessionRow is the normalized column set shared by the SQL gateways.
// The id column is the upsert conflict target; which of the remaining
// columns are replaced on conflict is configured per gateway.
type SessionRow struct {
	ID         string
	Hostname   string
	EntryPath  string
	Referrer   string
	UserAgent  string
	Metadata   []byte
	StartedAt  time.Time
	LastSeenAt time.Time
}

// SessionRowFromAttrs validates and normalizes a session attribute map.
// Returns ErrMissingSessionID when the id attribute is absent or empty.
func SessionRowFromAttrs(attrs track.Attrs) (SessionRow, error) {
	id := attrs.SessionID()
	if id == "" {
		return SessionRow{}, ErrMissingSessionID
	}

	now := time.Now().UTC()
	row := SessionRow{
		ID:         id,
		Hostname:   attrs.String("hostname"),
		EntryPath:  attrs.String("entry_path"),
		Referrer:   attrs.String("referrer"),
		UserAgent:  attrs.String("user_agent"),
		StartedAt:  timeAttr(attrs, "started_at", now),
		LastSeenAt: timeAttr(attrs, "last_seen_at", now),
	}

	if v, ok := attrs["metadata"]; ok {
		data, err := json.Marshal(v)
		if err != nil {
			return SessionRow{}, fmt.Errorf("failed to encode session metadata: %w", err)
		}
		row.Metadata = data
	}

	return row, nil
}

// ValidateEvent checks that a pre-validated record still satisfies the
// gateway contract before it is written.
func ValidateEvent(event *track.Event) error {
	if event.SessionID == "" {
		return ErrMissingSessionID
	}
	if event.Name == "" {
		return ErrMissingEventName
	}
	return nil
}

// EventMetaJSON encodes an event's Meta map for the meta column.
// Returns nil for an empty map so the column stays NULL.
func EventMetaJSON(event *track.Event) ([]byte, error) {
	if len(event.Meta) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(event.Meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event meta: %w", err)
	}
	return data, nil
}

func timeAttr(attrs track.Attrs, key string, fallback time.Time) time.Time {
	if v, ok := attrs[key]; ok {
		if t, ok := v.(time.Time); ok {
			return t
		}
	}
	return fallback
}
