// Package telemetry exposes Prometheus instrumentation for the write-behind
// queue. Collectors are package-level and registered eagerly; if no metrics
// endpoint is exposed the registration is harmless.
//
// All metrics are global with bounded cardinality - no per-session or
// per-event labels.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	sessionsWrittenTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pupmetrics_sessions_written_total",
		Help: "Total session rows successfully written to the storage gateway",
	})
	eventsWrittenTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pupmetrics_events_written_total",
		Help: "Total event rows successfully written to the storage gateway",
	})
	sessionWriteFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pupmetrics_session_write_failures_total",
		Help: "Total session writes dropped after a gateway failure",
	})
	eventWriteFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pupmetrics_event_write_failures_total",
		Help: "Total event writes dropped after a gateway failure",
	})
	ackEvictionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pupmetrics_ack_evictions_total",
		Help: "Total session ids evicted from the acknowledgment cache",
	})
	flushCyclesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pupmetrics_flush_cycles_total",
		Help: "Total flush cycles executed (timer-driven and manual)",
	})
	sessionsPerFlush = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pupmetrics_sessions_per_flush",
		Help:    "Distribution of session rows written per flush cycle",
		Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128, 256, 512, 1024},
	})
	pendingSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pupmetrics_pending_sessions",
		Help: "Session ids currently waiting in the pending FIFO",
	})
	pendingEvents = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pupmetrics_pending_events",
		Help: "Events currently pending, including events blocked on an unacknowledged session",
	})
	ackCacheSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pupmetrics_ack_cache_size",
		Help: "Session ids currently held in the acknowledgment cache",
	})
)

func init() {
	prometheus.MustRegister(
		sessionsWrittenTotal,
		eventsWrittenTotal,
		sessionWriteFailuresTotal,
		eventWriteFailuresTotal,
		ackEvictionsTotal,
		flushCyclesTotal,
		sessionsPerFlush,
		pendingSessions,
		pendingEvents,
		ackCacheSize,
	)
}

// ObserveFlush records the outcome of one flush cycle.
func ObserveFlush(sessionsWritten, eventsWritten int) {
	flushCyclesTotal.Inc()
	sessionsWrittenTotal.Add(float64(sessionsWritten))
	eventsWrittenTotal.Add(float64(eventsWritten))
	if sessionsWritten > 0 {
		sessionsPerFlush.Observe(float64(sessionsWritten))
	}
}

// ObserveSessionWriteFailures records dropped session writes.
func ObserveSessionWriteFailures(n int) {
	if n > 0 {
		sessionWriteFailuresTotal.Add(float64(n))
	}
}

// ObserveEventWriteFailures records dropped event writes.
func ObserveEventWriteFailures(n int) {
	if n > 0 {
		eventWriteFailuresTotal.Add(float64(n))
	}
}

// ObserveAckEvictions records acknowledgment-cache evictions.
func ObserveAckEvictions(n int) {
	if n > 0 {
		ackEvictionsTotal.Add(float64(n))
	}
}

// SetBacklog publishes the queue's current backlog gauges.
func SetBacklog(sessions, events, acked int) {
	pendingSessions.Set(float64(sessions))
	pendingEvents.Set(float64(events))
	ackCacheSize.Set(float64(acked))
}

// Handler returns an http.Handler serving the default Prometheus registry.
// Mount it wherever the host application exposes /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
