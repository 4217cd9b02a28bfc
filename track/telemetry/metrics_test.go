package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveFlushIncrementsCounters(t *testing.T) {
	cyclesBefore := testutil.ToFloat64(flushCyclesTotal)
	sessionsBefore := testutil.ToFloat64(sessionsWrittenTotal)
	eventsBefore := testutil.ToFloat64(eventsWrittenTotal)

	ObserveFlush(3, 7)

	if got := testutil.ToFloat64(flushCyclesTotal) - cyclesBefore; got != 1 {
		t.Errorf("expected 1 flush cycle recorded, got %v", got)
	}
	if got := testutil.ToFloat64(sessionsWrittenTotal) - sessionsBefore; got != 3 {
		t.Errorf("expected 3 sessions recorded, got %v", got)
	}
	if got := testutil.ToFloat64(eventsWrittenTotal) - eventsBefore; got != 7 {
		t.Errorf("expected 7 events recorded, got %v", got)
	}
}

func TestFailureObserversIgnoreZero(t *testing.T) {
	sessionBefore := testutil.ToFloat64(sessionWriteFailuresTotal)
	eventBefore := testutil.ToFloat64(eventWriteFailuresTotal)
	evictBefore := testutil.ToFloat64(ackEvictionsTotal)

	ObserveSessionWriteFailures(0)
	ObserveEventWriteFailures(0)
	ObserveAckEvictions(0)

	if got := testutil.ToFloat64(sessionWriteFailuresTotal); got != sessionBefore {
		t.Errorf("zero failures must not move the counter, got %v", got)
	}
	if got := testutil.ToFloat64(eventWriteFailuresTotal); got != eventBefore {
		t.Errorf("zero failures must not move the counter, got %v", got)
	}
	if got := testutil.ToFloat64(ackEvictionsTotal); got != evictBefore {
		t.Errorf("zero evictions must not move the counter, got %v", got)
	}

	ObserveSessionWriteFailures(2)
	if got := testutil.ToFloat64(sessionWriteFailuresTotal) - sessionBefore; got != 2 {
		t.Errorf("expected 2 failures recorded, got %v", got)
	}
}

func TestSetBacklogPublishesGauges(t *testing.T) {
	SetBacklog(5, 12, 90)

	if got := testutil.ToFloat64(pendingSessions); got != 5 {
		t.Errorf("expected pending sessions gauge 5, got %v", got)
	}
	if got := testutil.ToFloat64(pendingEvents); got != 12 {
		t.Errorf("expected pending events gauge 12, got %v", got)
	}
	if got := testutil.ToFloat64(ackCacheSize); got != 90 {
		t.Errorf("expected ack cache gauge 90, got %v", got)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	ObserveFlush(1, 1)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, name := range []string{
		"pupmetrics_sessions_written_total",
		"pupmetrics_events_written_total",
		"pupmetrics_flush_cycles_total",
		"pupmetrics_pending_sessions",
		"pupmetrics_ack_cache_size",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("expected %s in /metrics output", name)
		}
	}
}
