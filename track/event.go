package track

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a validated analytics event ready to be written.
// Events are value objects without identity until persisted.
type Event struct {
	// CreatedAt is when the event occurred
	CreatedAt time.Time

	// SessionID references the session this event belongs to.
	// The referenced session row must exist before the event is written.
	SessionID string

	// Name identifies the event type (e.g. "Page View")
	Name string

	// Path is the URL path the event was recorded on (optional)
	Path string

	// Meta contains any additional event attributes
	Meta Attrs

	// EventID is a unique identifier for this event
	EventID uuid.UUID
}

// wellKnownEventKeys are attribute keys lifted into dedicated Event fields.
// Everything else lands in Meta.
var wellKnownEventKeys = map[string]bool{
	AttrSessionID: true,
	"name":        true,
	"path":        true,
	"created_at":  true,
}

// NewEventFromAttrs builds an Event from a raw attribute map.
// This is the build-from-attrs write path; pre-validated records skip it.
//
// The session_id, name, path and created_at keys map onto the corresponding
// fields; remaining keys are collected into Meta. A missing created_at
// defaults to the current time. No validation happens here - the storage
// gateway rejects events that lack a session_id or name.
func NewEventFromAttrs(attrs Attrs) *Event {
	ev := &Event{
		EventID:   uuid.New(),
		SessionID: attrs.String(AttrSessionID),
		Name:      attrs.String("name"),
		Path:      attrs.String("path"),
		CreatedAt: time.Now().UTC(),
	}

	if v, ok := attrs["created_at"]; ok {
		if t, ok := v.(time.Time); ok {
			ev.CreatedAt = t
		}
	}

	for k, v := range attrs {
		if wellKnownEventKeys[k] {
			continue
		}
		if ev.Meta == nil {
			ev.Meta = make(Attrs)
		}
		ev.Meta[k] = v
	}

	return ev
}
