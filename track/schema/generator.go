// Package schema provides SQL schema generation for the analytics tables.
package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config configures schema generation.
type Config struct {
	// OutputFolder is the directory where the schema file will be written
	OutputFolder string

	// OutputFilename is the name of the schema file
	OutputFilename string

	// SessionsTable is the name of the sessions table
	SessionsTable string

	// EventsTable is the name of the events table
	EventsTable string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	timestamp := time.Now().Format("20060102150405")
	return Config{
		OutputFolder:   "migrations",
		OutputFilename: fmt.Sprintf("%s_init_analytics.sql", timestamp),
		SessionsTable:  "sessions",
		EventsTable:    "events",
	}
}

// GeneratePostgres generates a PostgreSQL schema file.
func GeneratePostgres(config *Config) error {
	return writeFile(config, PostgresSQL(config))
}

// GenerateMySQL generates a MySQL schema file.
func GenerateMySQL(config *Config) error {
	return writeFile(config, MySQLSQL(config))
}

// GenerateSQLite generates a SQLite schema file.
func GenerateSQLite(config *Config) error {
	return writeFile(config, SQLiteSQL(config))
}

func writeFile(config *Config, sql string) error {
	// Ensure output folder exists
	if err := os.MkdirAll(config.OutputFolder, 0o755); err != nil {
		return fmt.Errorf("failed to create output folder: %w", err)
	}

	outputPath := filepath.Join(config.OutputFolder, config.OutputFilename)
	if err := os.WriteFile(outputPath, []byte(sql), 0o600); err != nil {
		return fmt.Errorf("failed to write schema file: %w", err)
	}

	return nil
}

// PostgresSQL returns the PostgreSQL DDL for the analytics tables.
func PostgresSQL(config *Config) string {
	return fmt.Sprintf(`-- Analytics Schema
-- Generated: %s

-- Sessions table; one row per visitor session, upserted keyed on id
CREATE TABLE IF NOT EXISTS %s (
    id TEXT PRIMARY KEY,
    hostname TEXT,
    entry_path TEXT,
    referrer TEXT,
    user_agent TEXT,
    metadata JSONB,
    started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    last_seen_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Events table; append-only, each row references its session
CREATE TABLE IF NOT EXISTS %s (
    position BIGSERIAL PRIMARY KEY,
    event_id UUID NOT NULL UNIQUE,
    session_id TEXT NOT NULL REFERENCES %s (id),
    name TEXT NOT NULL,
    path TEXT,
    meta JSONB,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Index for per-session event reads
CREATE INDEX IF NOT EXISTS idx_%s_session
    ON %s (session_id, position);

-- Index for event name queries
CREATE INDEX IF NOT EXISTS idx_%s_name
    ON %s (name, created_at);
`,
		time.Now().Format(time.RFC3339),
		config.SessionsTable,
		config.EventsTable,
		config.SessionsTable,
		config.EventsTable,
		config.EventsTable,
		config.EventsTable,
		config.EventsTable,
	)
}

// MySQLSQL returns the MySQL DDL for the analytics tables.
func MySQLSQL(config *Config) string {
	return fmt.Sprintf(`-- Analytics Schema
-- Generated: %s

CREATE TABLE IF NOT EXISTS %s (
    id VARCHAR(255) PRIMARY KEY,
    hostname TEXT,
    entry_path TEXT,
    referrer TEXT,
    user_agent TEXT,
    metadata JSON,
    started_at DATETIME(6) NOT NULL,
    last_seen_at DATETIME(6) NOT NULL
) ENGINE=InnoDB;

CREATE TABLE IF NOT EXISTS %s (
    position BIGINT AUTO_INCREMENT PRIMARY KEY,
    event_id CHAR(36) NOT NULL UNIQUE,
    session_id VARCHAR(255) NOT NULL,
    name VARCHAR(255) NOT NULL,
    path TEXT,
    meta JSON,
    created_at DATETIME(6) NOT NULL,

    CONSTRAINT fk_%s_session FOREIGN KEY (session_id) REFERENCES %s (id),
    INDEX idx_%s_session (session_id, position),
    INDEX idx_%s_name (name, created_at)
) ENGINE=InnoDB;
`,
		time.Now().Format(time.RFC3339),
		config.SessionsTable,
		config.EventsTable,
		config.EventsTable,
		config.SessionsTable,
		config.EventsTable,
		config.EventsTable,
	)
}

// SQLiteSQL returns the SQLite DDL for the analytics tables.
func SQLiteSQL(config *Config) string {
	return fmt.Sprintf(`-- Analytics Schema
-- Generated: %s

CREATE TABLE IF NOT EXISTS %s (
    id TEXT PRIMARY KEY,
    hostname TEXT,
    entry_path TEXT,
    referrer TEXT,
    user_agent TEXT,
    metadata TEXT,
    started_at TEXT NOT NULL,
    last_seen_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS %s (
    position INTEGER PRIMARY KEY AUTOINCREMENT,
    event_id TEXT NOT NULL UNIQUE,
    session_id TEXT NOT NULL REFERENCES %s (id),
    name TEXT NOT NULL,
    path TEXT,
    meta TEXT,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_%s_session
    ON %s (session_id, position);

CREATE INDEX IF NOT EXISTS idx_%s_name
    ON %s (name, created_at);
`,
		time.Now().Format(time.RFC3339),
		config.SessionsTable,
		config.EventsTable,
		config.SessionsTable,
		config.EventsTable,
		config.EventsTable,
		config.EventsTable,
		config.EventsTable,
	)
}
