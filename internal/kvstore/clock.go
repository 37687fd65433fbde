package kvstore

import "time"

// Clock supplies the microsecond timestamps Store stamps onto object
// metadata. Grounded on the teacher's injectable-clock pattern
// (internal/testutil.Clock) so tests can assert monotonic LastAccess
// behavior without sleeping.
type Clock interface {
	NowMicros() int64
}

// systemClock is the production Clock, backed by the wall clock.
type systemClock struct{}

func (systemClock) NowMicros() int64 { return time.Now().UnixMicro() }

// SystemClock returns the default, real-time Clock.
func SystemClock() Clock { return systemClock{} }
