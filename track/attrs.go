// Package track provides core types and interfaces for web-analytics ingestion.
package track

// AttrID is the attribute key that carries a session's identifier.
const AttrID = "id"

// AttrSessionID is the attribute key that links an event to its session.
const AttrSessionID = "session_id"

// Attrs is an arbitrary key-value attribute map describing a session or a
// raw (not yet validated) event. Insertion order is irrelevant.
type Attrs map[string]interface{}

// String returns the string value stored under key, or "" if the key is
// absent or holds a non-string value.
func (a Attrs) String(key string) string {
	if v, ok := a[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// SessionID resolves the session identifier of a session attribute map.
// Returns "" when no usable id is present.
func (a Attrs) SessionID() string {
	return a.String(AttrID)
}

// EventSessionID resolves the session reference of a raw event attribute map.
// Returns "" when no usable session_id is present.
func (a Attrs) EventSessionID() string {
	return a.String(AttrSessionID)
}

// Clone returns a shallow copy of the attribute map.
// The queue clones on enqueue so callers may reuse their maps.
func (a Attrs) Clone() Attrs {
	if a == nil {
		return nil
	}
	c := make(Attrs, len(a))
	for k, v := range a {
		c[k] = v
	}
	return c
}
