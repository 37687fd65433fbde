package kvstore

// fakeClock is a deterministic, strictly-increasing Clock for tests,
// mirroring the teacher's injectable-clock test harness
// (internal/testutil.Clock) but returning integer microseconds instead of
// formatted timestamps.
type fakeClock struct {
	now int64
}

func newFakeClock() *fakeClock { return &fakeClock{now: 1000} }

func (c *fakeClock) NowMicros() int64 {
	c.now++
	return c.now
}
