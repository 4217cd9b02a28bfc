package queue

// ackCache tracks session ids that have been durably written through the
// gateway, paired with an insertion-order sequence used purely for eviction.
//
// It is a bounded least-recently-inserted cache, not a correctness-critical
// structure beyond the current process: on restart it starts empty, and the
// only invariant it backs is "never write an event whose session this queue
// has not itself confirmed written". Lookups do not refresh an entry's
// position - eviction is strictly by insertion order.
type ackCache struct {
	ids   map[string]struct{}
	order []string
	max   int
}

func newAckCache(max int) *ackCache {
	return &ackCache{
		ids: make(map[string]struct{}),
		max: max,
	}
}

// Contains reports whether the session id is acknowledged.
func (c *ackCache) Contains(id string) bool {
	_, ok := c.ids[id]
	return ok
}

// Add records a newly acknowledged session id. Re-adding a present id is a
// no-op so the order sequence stays free of duplicates.
func (c *ackCache) Add(id string) {
	if _, ok := c.ids[id]; ok {
		return
	}
	c.ids[id] = struct{}{}
	c.order = append(c.order, id)
}

// Len returns the number of acknowledged session ids.
func (c *ackCache) Len() int {
	return len(c.ids)
}

// Evict trims the cache to 90% of its maximum size once the maximum is
// exceeded, removing the oldest-inserted entries first. The 10% hysteresis
// gap keeps a steady inflow from triggering an eviction on every flush.
// Returns the number of entries evicted.
func (c *ackCache) Evict() int {
	if c.max <= 0 || len(c.ids) <= c.max {
		return 0
	}

	target := c.max * 9 / 10
	evicted := 0
	for len(c.ids) > target && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.ids, oldest)
		evicted++
	}
	return evicted
}
