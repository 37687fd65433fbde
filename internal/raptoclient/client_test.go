package raptoclient

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"raptodb/internal/kvstore"
	"raptodb/internal/memstats"
	"raptodb/internal/raptorunner"
	"raptodb/internal/resolver"
)

func startTestServer(t *testing.T, cfg raptorunner.Config) string {
	t.Helper()

	store := kvstore.New(1 << 20)
	var mods atomic.Uint64
	res := resolver.New(store, nil, memstats.New(), kvstore.SystemClock(), "testdb", &mods)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	cfg.Addr = addr
	srv := raptorunner.New(cfg, store, res, nil, &mods, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go srv.Serve(ctx)

	return addr
}

func waitDialable(t *testing.T, addr string) {
	t.Helper()
	for i := 0; i < 50; i++ {
		conn, err := net.Dial("tcp", addr)
		if err == nil {
			conn.Close()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("server never became dialable at %s", addr)
}

func TestClient_PlainPingRoundTrip(t *testing.T) {
	t.Parallel()

	addr := startTestServer(t, raptorunner.Config{})
	waitDialable(t, addr)

	c, err := Dial(Options{Addr: addr, DisplayName: "tester", FrameTimeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	resp, err := c.Send("PING")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if resp != "pong" {
		t.Fatalf("response = %q, want pong", resp)
	}
}

func TestClient_EncryptedRoundTrip(t *testing.T) {
	t.Parallel()

	addr := startTestServer(t, raptorunner.Config{TLS: true})
	waitDialable(t, addr)

	c, err := Dial(Options{Addr: addr, TLS: true, DisplayName: "tester", FrameTimeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	if _, err := c.Send("SSET name Alice"); err != nil {
		t.Fatalf("SSET: %v", err)
	}
	resp, err := c.Send("GET name")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp != `"Alice"` {
		t.Fatalf("response = %q, want \"Alice\"", resp)
	}
}

func TestClient_AuthRejectsWrongPassword(t *testing.T) {
	t.Parallel()

	addr := startTestServer(t, raptorunner.Config{TLS: true, AuthPass: "secret"})
	waitDialable(t, addr)

	_, err := Dial(Options{Addr: addr, TLS: true, AuthPass: "wrong", DisplayName: "tester", FrameTimeout: 2 * time.Second})
	if err != ErrAuthFailed {
		t.Fatalf("err = %v, want ErrAuthFailed", err)
	}
}

func TestClient_AuthAcceptsCorrectPassword(t *testing.T) {
	t.Parallel()

	addr := startTestServer(t, raptorunner.Config{TLS: true, AuthPass: "secret"})
	waitDialable(t, addr)

	c, err := Dial(Options{Addr: addr, TLS: true, AuthPass: "secret", DisplayName: "tester", FrameTimeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	resp, err := c.Send("PING")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if resp != "pong" {
		t.Fatalf("response = %q, want pong", resp)
	}
}
