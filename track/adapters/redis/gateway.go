// Package redis provides a Redis storage gateway for analytics ingestion.
//
// Sessions are stored as hashes keyed on the session id; events are appended
// to a per-session list, preserving write order. The upsert contract is
// enforced with a Lua script: the first write for an id sets every field,
// later writes replace only the configured update fields, so first-write
// values (entry path, started_at) are retained just like the SQL gateways.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/getpup/pupmetrics/track"
	"github.com/getpup/pupmetrics/track/store"
)

// upsertScript applies a session write. ARGV[1] is the length of the
// full-field group; ARGV[2..split+1] are field/value pairs written on first
// sight, ARGV[split+2..] the pairs replaced on every write.
// Returns 1 when the session was created, 0 when updated.
const upsertScript = `
local key = KEYS[1]
local split = tonumber(ARGV[1])
if redis.call('EXISTS', key) == 1 then
  for i = split + 2, #ARGV, 2 do
    redis.call('HSET', key, ARGV[i], ARGV[i+1])
  end
  return 0
end
for i = 2, #ARGV, 2 do
  redis.call('HSET', key, ARGV[i], ARGV[i+1])
end
return 1
`

// GatewayConfig contains configuration for the Redis gateway.
// Configuration is immutable after construction.
type GatewayConfig struct {
	// Logger is an optional logger for observability.
	// If nil, logging is disabled (zero overhead).
	Logger track.Logger

	// KeyPrefix namespaces every key written by the gateway.
	KeyPrefix string

	// UpdateFields are the session hash fields replaced when an upsert hits
	// an existing session. Fields not listed keep their first-write values.
	UpdateFields []string
}

// DefaultGatewayConfig returns the default configuration.
func DefaultGatewayConfig() GatewayConfig {
	return GatewayConfig{
		KeyPrefix:    "pupmetrics:",
		UpdateFields: []string{"user_agent", "metadata", "last_seen_at"},
		Logger:       nil, // No logging by default
	}
}

// GatewayOption is a functional option for configuring a Gateway.
type GatewayOption func(*GatewayConfig)

// WithLogger sets a logger for the gateway.
func WithLogger(logger track.Logger) GatewayOption {
	return func(c *GatewayConfig) { c.Logger = logger }
}

// WithKeyPrefix sets the key namespace prefix.
func WithKeyPrefix(prefix string) GatewayOption {
	return func(c *GatewayConfig) { c.KeyPrefix = prefix }
}

// WithUpdateFields sets the fields replaced on session upsert conflicts.
func WithUpdateFields(fields ...string) GatewayOption {
	return func(c *GatewayConfig) { c.UpdateFields = fields }
}

// Gateway is a Redis-backed storage gateway.
type Gateway struct {
	client redis.Cmdable
	config GatewayConfig
}

// NewGateway creates a Redis gateway using the given client.
// Any go-redis client (single node, cluster, ring) satisfies redis.Cmdable.
func NewGateway(client redis.Cmdable, opts ...GatewayOption) *Gateway {
	config := DefaultGatewayConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return &Gateway{client: client, config: config}
}

var _ store.Gateway = (*Gateway)(nil)

// SessionKey returns the hash key for a session id.
func (g *Gateway) SessionKey(id string) string {
	return fmt.Sprintf("%ssession:%s", g.config.KeyPrefix, id)
}

// EventsKey returns the list key holding a session's events.
func (g *Gateway) EventsKey(sessionID string) string {
	return fmt.Sprintf("%ssession:%s:events", g.config.KeyPrefix, sessionID)
}

// UpsertSession implements store.Gateway.
func (g *Gateway) UpsertSession(ctx context.Context, attrs track.Attrs) error {
	row, err := store.SessionRowFromAttrs(attrs)
	if err != nil {
		return err
	}

	fields := map[string]string{
		"id":           row.ID,
		"hostname":     row.Hostname,
		"entry_path":   row.EntryPath,
		"referrer":     row.Referrer,
		"user_agent":   row.UserAgent,
		"metadata":     string(row.Metadata),
		"started_at":   row.StartedAt.Format("2006-01-02T15:04:05.999999Z07:00"),
		"last_seen_at": row.LastSeenAt.Format("2006-01-02T15:04:05.999999Z07:00"),
	}

	update := make(map[string]bool, len(g.config.UpdateFields))
	for _, f := range g.config.UpdateFields {
		update[f] = true
	}

	var full, replace []interface{}
	for field, value := range fields {
		if update[field] {
			replace = append(replace, field, value)
		} else {
			full = append(full, field, value)
		}
	}

	args := make([]interface{}, 0, 1+len(full)+len(replace))
	args = append(args, len(full))
	args = append(args, full...)
	args = append(args, replace...)

	created, err := g.client.Eval(ctx, upsertScript, []string{g.SessionKey(row.ID)}, args...).Result()
	if err != nil {
		return fmt.Errorf("failed to upsert session %s: %w", row.ID, err)
	}

	if g.config.Logger != nil {
		g.config.Logger.Debug(ctx, "session upserted",
			"session_id", row.ID,
			"created", created)
	}
	return nil
}

// InsertEvent implements store.Gateway by building the record from raw
// attributes and writing it.
func (g *Gateway) InsertEvent(ctx context.Context, attrs track.Attrs) error {
	return g.InsertEventRecord(ctx, track.NewEventFromAttrs(attrs))
}

// InsertEventRecord implements store.Gateway.
func (g *Gateway) InsertEventRecord(ctx context.Context, event *track.Event) error {
	if err := store.ValidateEvent(event); err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", event.EventID, err)
	}

	if err := g.client.RPush(ctx, g.EventsKey(event.SessionID), payload).Err(); err != nil {
		return fmt.Errorf("failed to insert event %s: %w", event.EventID, err)
	}

	if g.config.Logger != nil {
		g.config.Logger.Debug(ctx, "event inserted",
			"event_id", event.EventID,
			"session_id", event.SessionID,
			"name", event.Name)
	}
	return nil
}
