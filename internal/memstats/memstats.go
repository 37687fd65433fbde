// Package memstats backs the MEM command (spec.md §4.5): byte-level
// counters layered on top of a kvstore.Store's own capacity accounting.
package memstats

import "sync"

// Counters tracks memory-usage counters beyond what a Store exposes
// directly. It is safe for concurrent use, though in the single-executor
// design only the executor goroutine ever touches it.
type Counters struct {
	mu     sync.Mutex
	peak   uint64
	total  uint64
	allocs uint64
	frees  uint64
}

// New returns a zeroed Counters.
func New() *Counters {
	return &Counters{}
}

// Observe records the current live byte usage, updating the running peak if
// it is a new high.
func (c *Counters) Observe(liveBytes uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if liveBytes > c.peak {
		c.peak = liveBytes
	}
}

// RecordAlloc records that size bytes were allocated for a new or
// type-changed object.
func (c *Counters) RecordAlloc(size uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.total += size
	c.allocs++
}

// RecordFree records that an object was freed (a removal, or the old side
// of a type-changing update).
func (c *Counters) RecordFree() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.frees++
}

// Snapshot is a point-in-time read of all counters, for the MEM command's
// response.
type Snapshot struct {
	Live   uint64
	Peak   uint64
	Total  uint64
	Allocs uint64
	Frees  uint64
}

// Snapshot returns the current counter values; liveBytes comes from the
// caller's Store (InitialCapacity - CapRemaining), since Counters itself
// does not hold a reference to the Store.
func (c *Counters) Snapshot(liveBytes uint64) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		Live:   liveBytes,
		Peak:   c.peak,
		Total:  c.total,
		Allocs: c.allocs,
		Frees:  c.frees,
	}
}

// ResetPeak zeroes the peak counter.
func (c *Counters) ResetPeak() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.peak = 0
}

// ResetTotal zeroes the cumulative allocation-byte counter.
func (c *Counters) ResetTotal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total = 0
}

// ResetCount zeroes both the alloc and free operation counters.
func (c *Counters) ResetCount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.allocs = 0
	c.frees = 0
}
