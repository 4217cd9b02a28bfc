// Package mysql provides a MySQL/MariaDB storage gateway for analytics ingestion.
package mysql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/getpup/pupmetrics/track"
	"github.com/getpup/pupmetrics/track/store"
)

// GatewayConfig contains configuration for the MySQL gateway.
// Configuration is immutable after construction.
type GatewayConfig struct {
	// Logger is an optional logger for observability.
	// If nil, logging is disabled (zero overhead).
	Logger track.Logger

	// SessionsTable is the name of the sessions table
	SessionsTable string

	// EventsTable is the name of the events table
	EventsTable string

	// UpdateColumns are the session columns replaced when an upsert hits an
	// existing row. Columns not listed keep their first-write values.
	UpdateColumns []string
}

// DefaultGatewayConfig returns the default configuration.
func DefaultGatewayConfig() GatewayConfig {
	return GatewayConfig{
		SessionsTable: "sessions",
		EventsTable:   "events",
		UpdateColumns: []string{"user_agent", "metadata", "last_seen_at"},
		Logger:        nil, // No logging by default
	}
}

// GatewayOption is a functional option for configuring a Gateway.
type GatewayOption func(*GatewayConfig)

// WithLogger sets a logger for the gateway.
func WithLogger(logger track.Logger) GatewayOption {
	return func(c *GatewayConfig) { c.Logger = logger }
}

// WithSessionsTable sets a custom sessions table name.
func WithSessionsTable(tableName string) GatewayOption {
	return func(c *GatewayConfig) { c.SessionsTable = tableName }
}

// WithEventsTable sets a custom events table name.
func WithEventsTable(tableName string) GatewayOption {
	return func(c *GatewayConfig) { c.EventsTable = tableName }
}

// WithUpdateColumns sets the on-conflict replace columns for session upserts.
func WithUpdateColumns(columns ...string) GatewayOption {
	return func(c *GatewayConfig) { c.UpdateColumns = columns }
}

// Gateway is a MySQL-backed storage gateway.
type Gateway struct {
	db     track.DBTX
	config GatewayConfig
}

// NewGateway creates a MySQL gateway bound to the given database handle.
func NewGateway(db track.DBTX, opts ...GatewayOption) *Gateway {
	config := DefaultGatewayConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return &Gateway{db: db, config: config}
}

var _ store.Gateway = (*Gateway)(nil)

// UpsertSession implements store.Gateway using ON DUPLICATE KEY UPDATE.
// Only the configured update columns are replaced on conflict.
func (g *Gateway) UpsertSession(ctx context.Context, attrs track.Attrs) error {
	row, err := store.SessionRowFromAttrs(attrs)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, hostname, entry_path, referrer, user_agent, metadata, started_at, last_seen_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE %s
	`, g.config.SessionsTable, duplicateKeyClause(g.config.UpdateColumns))

	_, err = g.db.ExecContext(ctx, query,
		row.ID,
		row.Hostname,
		row.EntryPath,
		row.Referrer,
		row.UserAgent,
		row.Metadata,
		row.StartedAt,
		row.LastSeenAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert session %s: %w", row.ID, err)
	}

	if g.config.Logger != nil {
		g.config.Logger.Debug(ctx, "session upserted", "session_id", row.ID)
	}
	return nil
}

// duplicateKeyClause builds the ON DUPLICATE KEY UPDATE assignments.
// MySQL requires at least one assignment, so an empty column list degrades
// to the self-assignment no-op.
func duplicateKeyClause(columns []string) string {
	if len(columns) == 0 {
		return "id = id"
	}
	assignments := make([]string, len(columns))
	for i, col := range columns {
		assignments[i] = fmt.Sprintf("%s = VALUES(%s)", col, col)
	}
	return strings.Join(assignments, ", ")
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
	meta, err := store.EventMetaJSON(event)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (event_id, session_id, name, path, meta, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, g.config.EventsTable)

	_, err = g.db.ExecContext(ctx, query,
		event.EventID.String(),
		event.SessionID,
		event.Name,
		event.Path,
		meta,
		event.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			if g.config.Logger != nil {
				g.config.Logger.Error(ctx, "duplicate event id",
					"event_id", event.EventID,
					"session_id", event.SessionID)
			}
			return store.ErrDuplicateEvent
		}
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

// IsUniqueViolation checks if an error is a MySQL duplicate entry error (1062).
// This is exported for testing purposes.
func IsUniqueViolation(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}
