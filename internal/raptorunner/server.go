package raptorunner

import (
	"context"
	"net"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"raptodb/internal/kvstore"
	"raptodb/internal/resolver"
	"raptodb/internal/snapshot"
)

// DefaultDeadline is the per-frame read/write deadline applied when
// configuration leaves it at zero, spec.md §5's "5000ms default".
const DefaultDeadline = 5000 * time.Millisecond

// Config is the subset of resolved server settings raptorunner needs.
// internal/config produces the CLI-facing superset; the binary translates.
type Config struct {
	Addr         string
	TLS          bool
	AuthPass     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	SaveDelay    time.Duration
	SaveCount    uint64
}

// Server owns the listener, the session registry, the work queue, and the
// executor goroutine. Everything except the executor may run on multiple
// goroutines concurrently; the executor alone touches store and engine.
type Server struct {
	cfg      Config
	store    *kvstore.Store
	resolver *resolver.Resolver
	engine   *snapshot.Engine
	mods     *atomic.Uint64
	logger   *zap.Logger

	nextID   atomic.Uint64
	sessions *SessionRegistry
	queue    *WorkQueue
}

// New builds a Server. mods is the shared modification counter the
// Resolver increments on every successful command and the executor reads
// to decide whether an autosnap tick is due.
func New(
	cfg Config,
	store *kvstore.Store,
	res *resolver.Resolver,
	engine *snapshot.Engine,
	mods *atomic.Uint64,
	logger *zap.Logger,
) *Server {
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultDeadline
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultDeadline
	}

	return &Server{
		cfg:      cfg,
		store:    store,
		resolver: res,
		engine:   engine,
		mods:     mods,
		logger:   logger,
		sessions: NewSessionRegistry(),
		queue:    NewWorkQueue(),
	}
}

// Serve listens on cfg.Addr and runs the accept loop, the executor, and
// the autosnap ticker until ctx is canceled or a client sends DOWN. It
// blocks until the executor has drained the queue and returned; after DOWN,
// the final snapshot has already been taken by then. A ctx cancellation
// takes no snapshot.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}

	execCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ticks := make(chan struct{})
	go snapshot.RunAutosnapTicker(execCtx, time.Second, ticks)

	exec := NewExecutor(s.resolver, s.queue, s.store, s.engine, s.mods,
		snapshot.DueConfig{Delay: s.cfg.SaveDelay, Count: s.cfg.SaveCount},
		s.logger,
		func() {
			cancel()
			_ = ln.Close()
			s.sessions.CloseAll()
		},
	)

	execDone := make(chan struct{})
	go func() {
		defer close(execDone)
		exec.Run(ticks)
	}()

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	s.logger.Info("listening", zap.String("addr", ln.Addr().String()))

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-execCtx.Done():
				s.queue.Close()
				<-execDone
				return nil
			default:
				return err
			}
		}

		go s.handleConnection(conn)
	}
}
