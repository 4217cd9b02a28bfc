// Package pupmetrics provides asynchronous web-analytics ingestion for Go applications.
//
// This package serves as the main entry point for the pupmetrics library.
// For the core functionality, see the track package and its subpackages:
//
//	track                  - Core types and interfaces
//	track/store            - Storage gateway abstraction
//	track/queue            - Write-behind queue with session/event dependency resolution
//	track/adapters/postgres - PostgreSQL gateway
//	track/adapters/mysql    - MySQL gateway
//	track/adapters/sqlite   - SQLite gateway
//	track/adapters/redis    - Redis gateway
//	track/schema           - Schema generation
//	track/telemetry        - Prometheus instrumentation
//
// Quick Start:
//
//  1. Generate the schema:
//     go run github.com/getpup/pupmetrics/cmd/schema-gen -adapter sqlite -output migrations
//
//  2. Wire a gateway and queue:
//     gateway := sqlite.NewGateway(db)
//     q := queue.New(gateway)
//     defer q.Close()
//
//  3. Enqueue from request handlers (non-blocking):
//     q.EnqueueSession(track.Attrs{"id": sessionID, "hostname": host})
//     q.EnqueueEvent(track.Attrs{"session_id": sessionID, "name": "Page View"})
//
// The background timer flushes pending work in batches; sessions are always
// written before the events that reference them. See the examples directory
// for complete working examples.
package pupmetrics

// Version returns the current version of the library.
func Version() string {
	return "0.1.0-dev"
}
