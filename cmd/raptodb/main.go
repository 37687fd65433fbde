// Command raptodb runs the Rapto key-value server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"go.uber.org/zap"

	"raptodb/internal/config"
	"raptodb/internal/kvstore"
	"raptodb/internal/logging"
	"raptodb/internal/memstats"
	"raptodb/internal/raptorunner"
	"raptodb/internal/resolver"
	"raptodb/internal/snapshot"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, errOut *os.File) int {
	if len(args) == 0 || args[0] != "server" {
		fmt.Fprintln(errOut, "usage: raptodb server --name NAME [--addr IP:PORT] [--db-path PATH]")
		fmt.Fprintln(errOut, "                       [--verbose silent|warnings|noisy] [--save DELAY COUNT]")
		fmt.Fprintln(errOut, "                       [--tls] [--auth PASSWORD] [--db-size BYTES] [--config FILE]")
		return 1
	}

	cfg, err := config.Parse(args[1:])
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	logger, err := logging.New(cfg.Verbose)
	if err != nil {
		fmt.Fprintln(errOut, "error: building logger:", err)
		return 1
	}
	defer logger.Sync() //nolint:errcheck

	store := kvstore.New(cfg.DBSize)
	engine := snapshot.NewEngine(cfg.StoragePath)

	loaded, err := engine.Load(store)
	if err != nil {
		logger.Error("loading snapshot failed", zap.String("path", cfg.StoragePath), zap.Error(err))
		return 1
	}
	logger.Info("snapshot loaded", zap.Int("objects", loaded), zap.String("path", cfg.StoragePath))

	mem := memstats.New()

	var mods atomic.Uint64
	res := resolver.New(store, engine, mem, kvstore.SystemClock(), cfg.Name, &mods)

	srv := raptorunner.New(raptorunner.Config{
		Addr:         cfg.Addr,
		TLS:          cfg.TLS,
		AuthPass:     cfg.AuthPass,
		ReadTimeout:  raptorunner.DefaultDeadline,
		WriteTimeout: raptorunner.DefaultDeadline,
		SaveDelay:    cfg.SaveDelay,
		SaveCount:    cfg.SaveCount,
	}, store, res, engine, &mods, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting", zap.String("name", cfg.Name), zap.String("addr", cfg.Addr), zap.Bool("tls", cfg.TLS))

	if err := srv.Serve(ctx); err != nil {
		logger.Error("server exited with error", zap.Error(err))
		return 1
	}

	logger.Info("shutdown complete")
	return 0
}
