// Command schema-gen generates SQL schema files for the analytics tables.
//
// Usage:
//
//	go run github.com/getpup/pupmetrics/cmd/schema-gen -output migrations -filename init.sql
//
// Or with go generate:
//
//	//go:generate go run github.com/getpup/pupmetrics/cmd/schema-gen -output migrations
//
// Generate schemas for different database adapters:
//
//	go run github.com/getpup/pupmetrics/cmd/schema-gen -adapter postgres -output migrations
//	go run github.com/getpup/pupmetrics/cmd/schema-gen -adapter mysql -output migrations
//	go run github.com/getpup/pupmetrics/cmd/schema-gen -adapter sqlite -output migrations
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/getpup/pupmetrics/track/schema"
)

func main() {
	var (
		adapter        = flag.String("adapter", "postgres", "Database adapter: postgres, mysql, or sqlite")
		outputFolder   = flag.String("output", "migrations", "Output folder for schema file")
		outputFilename = flag.String("filename", "", "Output filename (default: timestamp-based)")
		sessionsTable  = flag.String("sessions-table", "sessions", "Name of sessions table")
		eventsTable    = flag.String("events-table", "events", "Name of events table")
	)

	flag.Parse()

	config := schema.DefaultConfig()
	config.OutputFolder = *outputFolder
	config.SessionsTable = *sessionsTable
	config.EventsTable = *eventsTable

	if *outputFilename != "" {
		config.OutputFilename = *outputFilename
	}

	var err error
	switch *adapter {
	case "postgres":
		err = schema.GeneratePostgres(&config)
	case "mysql":
		err = schema.GenerateMySQL(&config)
	case "sqlite":
		err = schema.GenerateSQLite(&config)
	default:
		fmt.Fprintf(os.Stderr, "Error: unsupported adapter '%s'. Supported adapters are: postgres, mysql, sqlite\n", *adapter)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating schema: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Schema written to %s/%s\n", config.OutputFolder, config.OutputFilename)
}
