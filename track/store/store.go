// Package store provides the storage gateway abstraction the write-behind
// queue hands its sessions and events to.
package store

import (
	"context"
	"errors"

	"github.com/getpup/pupmetrics/track"
)

var (
	// ErrMissingSessionID indicates a session upsert without an id attribute,
	// or an event without a session_id reference.
	ErrMissingSessionID = errors.New("missing session id")

	// ErrMissingEventName indicates an event write without a name.
	ErrMissingEventName = errors.New("missing event name")

	// ErrDuplicateEvent indicates an event insert that collided on event_id.
	ErrDuplicateEvent = errors.New("duplicate event id")
)

// Gateway defines the write surface of a storage backend.
//
// UpsertSession must be keyed on the session id: inserting a new row when the
// id is unseen, and on conflict replacing only the backend's configured
// update columns while retaining first-write values for the rest.
//
// InsertEvent is the raw path: it builds a validated record from the
// attribute map before writing. InsertEventRecord is the direct path for
// records that were already validated upstream.
//
// Implementations report failures as errors; callers decide the retry
// policy. The write-behind queue deliberately drops failed items.
type Gateway interface {
	// UpsertSession inserts or updates a session row keyed on its id.
	UpsertSession(ctx context.Context, attrs track.Attrs) error

	// InsertEvent builds an event from raw attributes and writes it.
	InsertEvent(ctx context.Context, attrs track.Attrs) error

	// InsertEventRecord writes a pre-validated event as-is.
	InsertEventRecord(ctx context.Context, event *track.Event) error
}
