package schema

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	if config.OutputFolder != "migrations" {
		t.Errorf("expected migrations folder, got %q", config.OutputFolder)
	}
	if !strings.HasSuffix(config.OutputFilename, "_init_analytics.sql") {
		t.Errorf("expected timestamped filename, got %q", config.OutputFilename)
	}
	if config.SessionsTable != "sessions" || config.EventsTable != "events" {
		t.Errorf("unexpected table names: %+v", config)
	}
}

func TestPostgresSQL(t *testing.T) {
	config := DefaultConfig()
	sql := PostgresSQL(&config)

	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS sessions",
		"CREATE TABLE IF NOT EXISTS events",
		"id TEXT PRIMARY KEY",
		"event_id UUID NOT NULL UNIQUE",
		"session_id TEXT NOT NULL REFERENCES sessions (id)",
		"position BIGSERIAL PRIMARY KEY",
		"idx_events_session",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("expected %q in postgres schema", want)
		}
	}
}

func TestMySQLSQL(t *testing.T) {
	config := DefaultConfig()
	sql := MySQLSQL(&config)

	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS sessions",
		"ENGINE=InnoDB",
		"position BIGINT AUTO_INCREMENT PRIMARY KEY",
		"FOREIGN KEY (session_id) REFERENCES sessions (id)",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("expected %q in mysql schema", want)
		}
	}
}

func TestSQLiteSQL(t *testing.T) {
	config := DefaultConfig()
	sql := SQLiteSQL(&config)

	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS sessions",
		"position INTEGER PRIMARY KEY AUTOINCREMENT",
		"session_id TEXT NOT NULL REFERENCES sessions (id)",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("expected %q in sqlite schema", want)
		}
	}
}

func TestCustomTableNames(t *testing.T) {
	config := DefaultConfig()
	config.SessionsTable = "visits"
	config.EventsTable = "hits"

	sql := PostgresSQL(&config)
	if !strings.Contains(sql, "CREATE TABLE IF NOT EXISTS visits") {
		t.Errorf("expected custom sessions table in schema")
	}
	if !strings.Contains(sql, "REFERENCES visits (id)") {
		t.Errorf("expected foreign key against custom sessions table")
	}
	if !strings.Contains(sql, "CREATE TABLE IF NOT EXISTS hits") {
		t.Errorf("expected custom events table in schema")
	}
	if strings.Contains(sql, "sessions") || strings.Contains(sql, " events ") {
		t.Errorf("default table names leaked into customized schema")
	}
}

func TestGenerateSQLiteWritesFile(t *testing.T) {
	dir := t.TempDir()
	config := Config{
		OutputFolder:   filepath.Join(dir, "migrations"),
		OutputFilename: "init.sql",
		SessionsTable:  "sessions",
		EventsTable:    "events",
	}

	if err := GenerateSQLite(&config); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(config.OutputFolder, "init.sql"))
	if err != nil {
		t.Fatalf("schema file not written: %v", err)
	}
	if !strings.Contains(string(data), "CREATE TABLE IF NOT EXISTS sessions") {
		t.Errorf("schema file missing sessions DDL")
	}
}
