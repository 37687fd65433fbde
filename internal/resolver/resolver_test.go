package resolver

import (
	"sync/atomic"
	"testing"

	"raptodb/internal/kvstore"
	"raptodb/internal/memstats"
	"raptodb/internal/query"
)

func newTestResolver(t *testing.T, capacity uint64) (*Resolver, *kvstore.Store) {
	t.Helper()
	st := kvstore.New(capacity)
	var mods atomic.Uint64
	r := New(st, nil, memstats.New(), kvstore.SystemClock(), "testdb", &mods)
	return r, st
}

func mustResolve(t *testing.T, r *Resolver, line string) string {
	t.Helper()
	q, err := query.Parse(1, []byte(line))
	if err != nil {
		t.Fatalf("Parse(%q): %v", line, err)
	}
	res, err := r.Resolve(q)
	if err != nil {
		t.Fatalf("Resolve(%q): %v (%s)", line, err, Phrase(err))
	}
	return string(res.Body)
}

func resolveErr(t *testing.T, r *Resolver, line string) error {
	t.Helper()
	q, err := query.Parse(1, []byte(line))
	if err != nil {
		t.Fatalf("Parse(%q): %v", line, err)
	}
	_, err = r.Resolve(q)
	return err
}

// TestScenario1 mirrors spec.md §8 scenario 1.
func TestScenario1_StringRoundTrip(t *testing.T) {
	t.Parallel()
	r, _ := newTestResolver(t, 1<<20)

	if got := mustResolve(t, r, "SSET name Alice"); got != "OK" {
		t.Fatalf("SSET = %q, want OK", got)
	}
	if got := mustResolve(t, r, "GET name"); got != `"Alice"` {
		t.Fatalf("GET = %q, want \"Alice\"", got)
	}
	if got := mustResolve(t, r, "TYPE name"); got != "string" {
		t.Fatalf("TYPE = %q, want string", got)
	}
	if got := mustResolve(t, r, "LEN name"); got != "5" {
		t.Fatalf("LEN = %q, want 5", got)
	}
}

// TestScenario2 mirrors spec.md §8 scenario 2.
func TestScenario2_IntegerUpdate(t *testing.T) {
	t.Parallel()
	r, _ := newTestResolver(t, 1<<20)

	mustResolve(t, r, "ISET x 10")
	if got := mustResolve(t, r, "UPDATE x 3"); got != "OK" {
		t.Fatalf("UPDATE = %q, want OK", got)
	}
	if got := mustResolve(t, r, "GET x"); got != "13" {
		t.Fatalf("GET x = %q, want 13", got)
	}

	err := resolveErr(t, r, "UPDATE x 0.5")
	if err == nil || Phrase(err) != "incompatible types" {
		t.Fatalf("UPDATE x 0.5 err = %v, want incompatible types", err)
	}
}

// TestScenario3 mirrors spec.md §8 scenario 3.
func TestScenario3_DecimalUpdate(t *testing.T) {
	t.Parallel()
	r, _ := newTestResolver(t, 1<<20)

	mustResolve(t, r, "DSET y 1.0")
	if got := mustResolve(t, r, "GET y"); got != "1.0" {
		t.Fatalf("GET y = %q, want 1.0", got)
	}
	mustResolve(t, r, "UPDATE y 0.5")
	if got := mustResolve(t, r, "GET y"); got != "1.5" {
		t.Fatalf("GET y = %q, want 1.5", got)
	}
}

// TestScenario4 mirrors spec.md §8 scenario 4.
func TestScenario4_ListPromotionOrder(t *testing.T) {
	t.Parallel()
	r, _ := newTestResolver(t, 1<<20)

	mustResolve(t, r, "ISET a 1")
	mustResolve(t, r, "ISET b 2")
	mustResolve(t, r, "ISET c 3")

	if got := mustResolve(t, r, "LIST"); got != "c b a" {
		t.Fatalf("LIST = %q, want %q", got, "c b a")
	}

	mustResolve(t, r, "GET a")

	if got := mustResolve(t, r, "LIST"); got != "c a b" {
		t.Fatalf("LIST after GET a = %q, want %q", got, "c a b")
	}
}

func TestGet_KeyNotFound(t *testing.T) {
	t.Parallel()
	r, _ := newTestResolver(t, 1<<20)

	err := resolveErr(t, r, "GET missing")
	if err == nil || Phrase(err) != "key not found" {
		t.Fatalf("err = %v, want key not found", err)
	}
}

func TestList_EmptyStoreIsError(t *testing.T) {
	t.Parallel()
	r, _ := newTestResolver(t, 1<<20)

	err := resolveErr(t, r, "LIST")
	if err == nil || Phrase(err) != "no keys found." {
		t.Fatalf("err = %v, want no keys found.", err)
	}
}

func TestCheck_ReturnsZeroOrOne(t *testing.T) {
	t.Parallel()
	r, _ := newTestResolver(t, 1<<20)

	if got := mustResolve(t, r, "CHECK missing"); got != "0" {
		t.Fatalf("CHECK missing = %q, want 0", got)
	}

	mustResolve(t, r, "ISET k 1")
	if got := mustResolve(t, r, "CHECK k"); got != "1" {
		t.Fatalf("CHECK k = %q, want 1", got)
	}
}

func TestCommandNotFound(t *testing.T) {
	t.Parallel()
	r, _ := newTestResolver(t, 1<<20)

	err := resolveErr(t, r, "BOGUS")
	if err == nil || Phrase(err) != "command does not exist" {
		t.Fatalf("err = %v, want command does not exist", err)
	}
}

func TestRename(t *testing.T) {
	t.Parallel()
	r, _ := newTestResolver(t, 1<<20)

	mustResolve(t, r, "ISET old 1")
	if got := mustResolve(t, r, "RENAME old new"); got != "OK" {
		t.Fatalf("RENAME = %q, want OK", got)
	}
	if got := mustResolve(t, r, "GET new"); got != "1" {
		t.Fatalf("GET new = %q, want 1", got)
	}

	mustResolve(t, r, "ISET taken 2")
	err := resolveErr(t, r, "RENAME new taken")
	if err == nil || Phrase(err) != "new name correspond to existent key" {
		t.Fatalf("err = %v, want new name correspond to existent key", err)
	}
}

func TestFreqAndLast(t *testing.T) {
	t.Parallel()
	r, _ := newTestResolver(t, 1<<20)

	mustResolve(t, r, "ISET k 1")

	if got := mustResolve(t, r, "FREQ k 42"); got != "42" {
		t.Fatalf("FREQ k 42 = %q, want 42", got)
	}
	if got := mustResolve(t, r, "LAST k 7"); got != "7" {
		t.Fatalf("LAST k 7 = %q, want 7", got)
	}
}

func TestDumpRestoreRoundTrip(t *testing.T) {
	t.Parallel()
	r, _ := newTestResolver(t, 1<<20)

	mustResolve(t, r, "ISET k 1")

	q, err := query.Parse(1, []byte("DUMP k"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	res, err := r.Resolve(q)
	if err != nil {
		t.Fatalf("DUMP: %v", err)
	}

	mustResolve(t, r, "DEL k")
	if err := resolveErr(t, r, "GET k"); Phrase(err) != "key not found" {
		t.Fatalf("expected k removed")
	}

	restoreQ, err := query.Parse(1, append([]byte("RESTORE "), res.Body...))
	if err != nil {
		t.Fatalf("Parse restore: %v", err)
	}
	if _, err := r.Resolve(restoreQ); err != nil {
		t.Fatalf("RESTORE: %v", err)
	}

	if got := mustResolve(t, r, "GET k"); got != "1" {
		t.Fatalf("GET k after RESTORE = %q, want 1", got)
	}
}

func TestErase(t *testing.T) {
	t.Parallel()
	r, _ := newTestResolver(t, 1<<20)

	mustResolve(t, r, "ISET a 1")
	mustResolve(t, r, "ISET b 2")
	mustResolve(t, r, "ERASE")

	if got := mustResolve(t, r, "COUNT"); got != "0" {
		t.Fatalf("COUNT after ERASE = %q, want 0", got)
	}
}

func TestDown_SignalsShutdown(t *testing.T) {
	t.Parallel()
	r, _ := newTestResolver(t, 1<<20)

	q, err := query.Parse(1, []byte("DOWN"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	res, err := r.Resolve(q)
	if err != nil {
		t.Fatalf("Resolve(DOWN): %v", err)
	}
	if !res.Shutdown {
		t.Fatal("DOWN did not signal shutdown")
	}
}

func TestExceededSpaceLimit(t *testing.T) {
	t.Parallel()
	r, _ := newTestResolver(t, 4)

	err := resolveErr(t, r, "ISET k 1")
	if err == nil || Phrase(err) != "excedeed db space limit." {
		t.Fatalf("err = %v, want excedeed db space limit.", err)
	}
}
