// Package queue implements the asynchronous write-behind queue that decouples
// session/event ingestion from storage writes.
//
// The queue guarantees that a session's row exists before any event
// referencing it is written, even when sessions and events arrive out of
// order from many concurrent producers. Pending work is drained by a
// periodic, batched flush; session ids confirmed written are remembered in a
// bounded acknowledgment cache so later events can be released.
//
// All queue state is owned by a single goroutine. Enqueue calls are
// fire-and-forget messages into the actor's inbox and never touch storage;
// Flush and Stats are synchronous request/reply round-trips. Storage write
// failures are dropped without retry - the design trades delivery guarantees
// for throughput and simplicity.
package queue

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/getpup/pupmetrics/track"
	"github.com/getpup/pupmetrics/track/store"
	"github.com/getpup/pupmetrics/track/telemetry"
)

// Config contains configuration for the write-behind queue.
// Configuration is immutable after construction.
type Config struct {
	// Logger is an optional logger for observability.
	// If nil, logging is disabled (zero overhead).
	Logger track.Logger

	// FlushInterval is how often the background timer triggers a bounded
	// flush. Zero or negative disables the timer; flushes must then be
	// driven manually.
	FlushInterval time.Duration

	// BatchSize bounds the sessions and events processed per timer flush.
	BatchSize int

	// MaxAckCacheSize caps the acknowledgment cache. When exceeded, the
	// oldest-inserted entries are evicted down to 90% of this value.
	MaxAckCacheSize int

	// InboxSize is the capacity of the actor's command inbox.
	InboxSize int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		FlushInterval:   100 * time.Millisecond,
		BatchSize:       50,
		MaxAckCacheSize: 10000,
		InboxSize:       1024,
		Logger:          nil, // No logging by default
	}
}

// Option is a functional option for configuring a Queue.
type Option func(*Config)

// WithLogger sets a logger for the queue.
func WithLogger(logger track.Logger) Option {
	return func(c *Config) { c.Logger = logger }
}

// WithFlushInterval sets the background flush interval.
func WithFlushInterval(d time.Duration) Option {
	return func(c *Config) { c.FlushInterval = d }
}

// WithBatchSize sets the per-cycle batch bound.
func WithBatchSize(n int) Option {
	return func(c *Config) { c.BatchSize = n }
}

// WithMaxAckCacheSize sets the acknowledgment cache cap.
func WithMaxAckCacheSize(n int) Option {
	return func(c *Config) { c.MaxAckCacheSize = n }
}

// WithInboxSize sets the actor inbox capacity.
func WithInboxSize(n int) Option {
	return func(c *Config) { c.InboxSize = n }
}

// Stats is a read-only snapshot of the queue's backlog.
type Stats struct {
	// PendingSessions counts entries in the pending-session FIFO.
	// Duplicate entries for a re-enqueued id are included.
	PendingSessions int

	// BufferedSessions counts distinct session attribute maps awaiting write.
	BufferedSessions int

	// PendingEvents counts events awaiting write, including events blocked
	// on a session that has not been acknowledged.
	PendingEvents int

	// AckedSessions counts session ids currently held in the
	// acknowledgment cache.
	AckedSessions int
}

// FlushResult reports what a single flush call accomplished.
type FlushResult struct {
	SessionsWritten int
	EventsWritten   int
	SessionFailures int
	EventFailures   int
}

// pendingEvent is the tagged pending-event variant: either raw attributes
// that still need the build-from-attrs path, or a pre-validated record that
// is written as-is.
type pendingEvent struct {
	attrs  track.Attrs
	record *track.Event
}

func (p pendingEvent) sessionID() string {
	if p.record != nil {
		return p.record.SessionID
	}
	return p.attrs.EventSessionID()
}

type cmdKind int

const (
	cmdEnqueueSession cmdKind = iota
	cmdEnqueueEvent
	cmdEnqueueRecord
	cmdFlush
	cmdStats
)

type command struct {
	kind       cmdKind
	attrs      track.Attrs
	record     *track.Event
	ctx        context.Context
	limit      int
	flushReply chan FlushResult
	statsReply chan Stats
}

// Queue is the write-behind queue. Create one with New; it starts its actor
// goroutine immediately and runs until Close.
type Queue struct {
	config  Config
	gateway store.Gateway
	cmds    chan command
	stop    chan struct{}
	done    chan struct{}
	closed  uint32

	// Actor-owned state. Touched only by run().
	sessions     map[string]track.Attrs
	sessionOrder []string
	events       []pendingEvent
	acks         *ackCache
}

// New creates a queue writing through the given gateway and starts its
// background actor and flush timer.
func New(gateway store.Gateway, opts ...Option) *Queue {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.InboxSize <= 0 {
		config.InboxSize = DefaultConfig().InboxSize
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}

	q := &Queue{
		config:   config,
		gateway:  gateway,
		cmds:     make(chan command, config.InboxSize),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		sessions: make(map[string]track.Attrs),
		acks:     newAckCache(config.MaxAckCacheSize),
	}
	go q.run()
	return q
}

// EnqueueSession buffers a session attribute map for asynchronous upsert.
// The map must carry the session id under the "id" key. Re-enqueueing an id
// that is still pending overwrites its attributes in place (last-enqueued
// wins) without granting it a second write slot. Never blocks on storage.
func (q *Queue) EnqueueSession(attrs track.Attrs) {
	q.send(command{kind: cmdEnqueueSession, attrs: attrs.Clone()})
}

// EnqueueEvent buffers a raw event attribute map for asynchronous insert.
// The map must be resolvable to a session_id; the event stays pending until
// that session has been acknowledged as written. Never blocks on storage.
func (q *Queue) EnqueueEvent(attrs track.Attrs) {
	q.send(command{kind: cmdEnqueueEvent, attrs: attrs.Clone()})
}

// EnqueueEventRecord buffers a pre-validated event record. At flush time it
// is dispatched to the gateway's direct-insert path instead of being rebuilt
// from attributes. Never blocks on storage.
func (q *Queue) EnqueueEventRecord(event *track.Event) {
	q.send(command{kind: cmdEnqueueRecord, record: event})
}

// Flush synchronously runs one flush cycle and returns what it wrote.
//
// limit <= 0 drains everything currently pending, terminating once only
// events blocked on unacknowledged sessions remain. limit = n bounds each
// phase to n items inspected, leaving the remainder for the next cycle.
// Sessions are always fully processed (up to the bound) before any events.
func (q *Queue) Flush(ctx context.Context, limit int) FlushResult {
	reply := make(chan FlushResult, 1)
	if !q.send(command{kind: cmdFlush, ctx: ctx, limit: limit, flushReply: reply}) {
		return FlushResult{}
	}
	select {
	case res := <-reply:
		return res
	case <-q.done:
		return FlushResult{}
	}
}

// FlushAll drains everything currently pending. See Flush.
func (q *Queue) FlushAll(ctx context.Context) FlushResult {
	return q.Flush(ctx, 0)
}

// Stats returns a snapshot of the queue's backlog.
func (q *Queue) Stats() Stats {
	reply := make(chan Stats, 1)
	if !q.send(command{kind: cmdStats, statsReply: reply}) {
		return Stats{}
	}
	select {
	case s := <-reply:
		return s
	case <-q.done:
		return Stats{}
	}
}

// Close runs a final drain-all flush and stops the actor. Safe to call
// multiple times. Enqueues issued after Close are discarded.
func (q *Queue) Close() {
	if !atomic.CompareAndSwapUint32(&q.closed, 0, 1) {
		<-q.done
		return
	}
	close(q.stop)
	<-q.done
}

// send delivers a command to the actor, reporting false if the queue has
// shut down. A full inbox applies backpressure to the caller; the send
// itself never performs I/O.
func (q *Queue) send(cmd command) bool {
	select {
	case <-q.done:
		return false
	default:
	}
	select {
	case q.cmds <- cmd:
		return true
	case <-q.done:
		return false
	}
}

// run is the actor loop. All mutation of pending sessions, pending events
// and the acknowledgment cache happens here, so no locking is needed.
func (q *Queue) run() {
	defer close(q.done)

	var tick <-chan time.Time
	if q.config.FlushInterval > 0 {
		ticker := time.NewTicker(q.config.FlushInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case cmd := <-q.cmds:
			q.handle(cmd)
		case <-tick:
			q.flush(context.Background(), q.config.BatchSize)
		case <-q.stop:
			q.drainInbox()
			q.flush(context.Background(), 0)
			return
		}
	}
}

// drainInbox consumes commands already buffered at shutdown so enqueues
// accepted before Close still make the final flush. Flush/stats round-trips
// get an immediate empty reply instead of executing.
func (q *Queue) drainInbox() {
	for {
		select {
		case cmd := <-q.cmds:
			switch cmd.kind {
			case cmdFlush:
				cmd.flushReply <- FlushResult{}
			case cmdStats:
				cmd.statsReply <- q.stats()
			default:
				q.handle(cmd)
			}
		default:
			return
		}
	}
}

func (q *Queue) handle(cmd command) {
	switch cmd.kind {
	case cmdEnqueueSession:
		q.enqueueSession(cmd.attrs)
	case cmdEnqueueEvent:
		q.events = append(q.events, pendingEvent{attrs: cmd.attrs})
	case cmdEnqueueRecord:
		q.events = append(q.events, pendingEvent{record: cmd.record})
	case cmdFlush:
		cmd.flushReply <- q.flush(cmd.ctx, cmd.limit)
	case cmdStats:
		cmd.statsReply <- q.stats()
	}
}

func (q *Queue) enqueueSession(attrs track.Attrs) {
	id := attrs.SessionID()
	if id == "" {
		if q.config.Logger != nil {
			q.config.Logger.Error(context.Background(), "session enqueued without id, dropping")
		}
		return
	}
	// Last-enqueued wins: overwrite the buffered attributes. The order
	// sequence may accumulate duplicate entries for the id; the second
	// dequeue finds no buffered attributes and is a no-op.
	q.sessions[id] = attrs
	q.sessionOrder = append(q.sessionOrder, id)
}

func (q *Queue) stats() Stats {
	return Stats{
		PendingSessions:  len(q.sessionOrder),
		BufferedSessions: len(q.sessions),
		PendingEvents:    len(q.events),
		AckedSessions:    q.acks.Len(),
	}
}

// flush runs one cycle: session phase first, then the event phase, so every
// cycle re-establishes "session rows exist before their events".
func (q *Queue) flush(ctx context.Context, limit int) FlushResult {
	var res FlushResult

	for {
		q.flushSessions(ctx, limit, &res)
		if limit > 0 || len(q.sessionOrder) == 0 {
			break
		}
	}
	q.flushEvents(ctx, limit, &res)

	telemetry.ObserveFlush(res.SessionsWritten, res.EventsWritten)
	telemetry.ObserveSessionWriteFailures(res.SessionFailures)
	telemetry.ObserveEventWriteFailures(res.EventFailures)
	telemetry.SetBacklog(len(q.sessionOrder), len(q.events), q.acks.Len())

	if q.config.Logger != nil {
		q.config.Logger.Debug(ctx, "flush cycle complete",
			"sessions_written", res.SessionsWritten,
			"events_written", res.EventsWritten,
			"session_failures", res.SessionFailures,
			"event_failures", res.EventFailures,
			"pending_sessions", len(q.sessionOrder),
			"pending_events", len(q.events))
	}

	return res
}

// flushSessions dequeues up to limit ids from the pending FIFO and upserts
// the ones whose attributes are still buffered. Ids whose attributes were
// already consumed under an earlier duplicate entry are skipped. On write
// failure the session is dropped - not retried, not re-queued.
func (q *Queue) flushSessions(ctx context.Context, limit int, res *FlushResult) {
	n := len(q.sessionOrder)
	if limit > 0 && limit < n {
		n = limit
	}
	if n == 0 {
		return
	}

	batch := q.sessionOrder[:n]
	q.sessionOrder = q.sessionOrder[n:]

	var acked []string
	for _, id := range batch {
		attrs, ok := q.sessions[id]
		if !ok {
			continue // superseded duplicate entry, already flushed
		}
		delete(q.sessions, id)

		if err := q.gateway.UpsertSession(ctx, attrs); err != nil {
			res.SessionFailures++
			if q.config.Logger != nil {
				q.config.Logger.Error(ctx, "session upsert failed, dropping",
					"session_id", id,
					"error", err)
			}
			continue
		}
		res.SessionsWritten++
		acked = append(acked, id)
	}

	for _, id := range acked {
		q.acks.Add(id)
	}
	if evicted := q.acks.Evict(); evicted > 0 {
		telemetry.ObserveAckEvictions(evicted)
		if q.config.Logger != nil {
			q.config.Logger.Debug(ctx, "acknowledgment cache trimmed",
				"evicted", evicted,
				"size", q.acks.Len())
		}
	}
}

// flushEvents scans the pending-event FIFO once, in arrival order. Events
// whose session is acknowledged are written and removed; the rest keep their
// relative order for the next cycle. With a positive limit the scan inspects
// at most limit items, leaving the tail untouched.
func (q *Queue) flushEvents(ctx context.Context, limit int, res *FlushResult) {
	n := len(q.events)
	if limit > 0 && limit < n {
		n = limit
	}
	if n == 0 {
		return
	}

	remaining := make([]pendingEvent, 0, len(q.events)-n)
	for i := 0; i < n; i++ {
		ev := q.events[i]
		if !q.acks.Contains(ev.sessionID()) {
			remaining = append(remaining, ev)
			continue
		}

		var err error
		if ev.record != nil {
			err = q.gateway.InsertEventRecord(ctx, ev.record)
		} else {
			err = q.gateway.InsertEvent(ctx, ev.attrs)
		}
		if err != nil {
			res.EventFailures++
			if q.config.Logger != nil {
				q.config.Logger.Error(ctx, "event insert failed, dropping",
					"session_id", ev.sessionID(),
					"error", err)
			}
			continue
		}
		res.EventsWritten++
	}

	remaining = append(remaining, q.events[n:]...)
	q.events = remaining
}
