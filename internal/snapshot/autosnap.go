package snapshot

import (
	"context"
	"time"
)

// Ticks is the channel type the autosnap worker sends on. It carries no
// payload: the receiving executor alone knows the current modification
// count and time since the last save, and decides whether this tick is due
// for an actual Save. Routing the decision there, rather than letting this
// worker read the Store directly, is what keeps the Store confined to a
// single goroutine (spec.md §5) even though a background timer drives it.
type Ticks <-chan struct{}

// RunAutosnapTicker sends on out once per interval until ctx is canceled,
// then closes out. interval should be small relative to the configured
// autosnap delay (spec.md suggests checking roughly once a second); the
// executor applies the actual delay/count thresholds.
func RunAutosnapTicker(ctx context.Context, interval time.Duration, out chan<- struct{}) {
	defer close(out)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			select {
			case out <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// DueConfig is the autosnap threshold pair from configuration: a save is
// triggered only once both the elapsed-time and modification-count
// thresholds are met.
type DueConfig struct {
	Delay time.Duration
	Count uint64
}

// Due reports whether an autosnap tick should result in an actual Save,
// given the time of the last save and the modification count accumulated
// since then.
func Due(cfg DueConfig, sinceLastSave time.Duration, modsSinceLastSave uint64) bool {
	return sinceLastSave >= cfg.Delay && modsSinceLastSave >= cfg.Count
}
