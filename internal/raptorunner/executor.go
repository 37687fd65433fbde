package raptorunner

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"raptodb/internal/kvstore"
	"raptodb/internal/resolver"
	"raptodb/internal/snapshot"
)

// Executor is the single goroutine that owns the Store: it drains Jobs
// from the queue, dispatches them through a Resolver, writes responses
// back, and applies the autosnap threshold check on each timer tick. No
// other goroutine may call into store or engine while this is running.
type Executor struct {
	resolver *resolver.Resolver
	queue    *WorkQueue
	store    *kvstore.Store
	engine   *snapshot.Engine
	mods     *atomic.Uint64
	saveCfg  snapshot.DueConfig
	logger   *zap.Logger
	now      func() time.Time

	onShutdown func()

	lastSave     time.Time
	lastSaveMods uint64
}

// NewExecutor builds an Executor. onShutdown is invoked once, from inside
// Run, the moment a DOWN command resolves; the caller uses it to stop
// accepting new connections and unwind the rest of the server.
func NewExecutor(
	res *resolver.Resolver,
	queue *WorkQueue,
	store *kvstore.Store,
	engine *snapshot.Engine,
	mods *atomic.Uint64,
	saveCfg snapshot.DueConfig,
	logger *zap.Logger,
	onShutdown func(),
) *Executor {
	return &Executor{
		resolver:   res,
		queue:      queue,
		store:      store,
		engine:     engine,
		mods:       mods,
		saveCfg:    saveCfg,
		logger:     logger,
		now:        time.Now,
		onShutdown: onShutdown,
	}
}

// Run drains jobs and ticks until the queue is closed and drained. It
// returns once that happens, which is the executor's half of graceful
// shutdown.
func (e *Executor) Run(ticks <-chan struct{}) {
	jobs := make(chan Job)
	go pump(e.queue, jobs)

	e.lastSave = e.now()

	for {
		select {
		case job, ok := <-jobs:
			if !ok {
				return
			}
			e.handle(job)
		case _, ok := <-ticks:
			if !ok {
				ticks = nil // stop selecting a closed channel
				continue
			}
			e.maybeAutosnap()
		}
	}
}

func (e *Executor) handle(job Job) {
	result, err := e.resolver.Resolve(job.Query)
	if err != nil {
		if writeErr := job.Client.WriteFrame([]byte("ERR: " + resolver.Phrase(err))); writeErr != nil {
			e.logger.Debug("writing error response failed",
				zap.Uint64("session", job.Client.ID), zap.Error(writeErr))
		}
		return
	}

	if result.Shutdown {
		e.logger.Info("DOWN received, shutting down")
		if e.onShutdown != nil {
			e.onShutdown()
		}
		return
	}

	if err := job.Client.WriteFrame(result.Body); err != nil {
		e.logger.Debug("writing response failed",
			zap.Uint64("session", job.Client.ID), zap.Error(err))
	}
}

func (e *Executor) maybeAutosnap() {
	if e.engine == nil {
		return
	}

	now := e.now()
	mods := e.mods.Load()

	if !snapshot.Due(e.saveCfg, now.Sub(e.lastSave), mods-e.lastSaveMods) {
		return
	}

	if err := e.engine.Save(e.store); err != nil {
		e.logger.Warn("autosnap save failed", zap.Error(err))
		// A failed autosnap is logged, not fatal (spec.md §4.3); the next
		// tick will simply retry once the thresholds are met again.
		return
	}

	e.lastSave = now
	e.lastSaveMods = mods
}
