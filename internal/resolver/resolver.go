package resolver

import (
	"strconv"
	"sync/atomic"

	"raptodb/internal/kvstore"
	"raptodb/internal/memstats"
	"raptodb/internal/object"
	"raptodb/internal/query"
	"raptodb/internal/snapshot"
)

// Result is what a successful Resolve call produces: a response body, and
// whether this was the DOWN command, which carries no response and signals
// the caller to shut down after any pending snapshot completes.
type Result struct {
	Body     []byte
	Shutdown bool
}

// Resolver dispatches parsed queries against a single Store. It is not safe
// for concurrent use: per spec.md §5 it is driven by exactly one executor
// goroutine, the same one that owns the Store.
type Resolver struct {
	store   *kvstore.Store
	engine  *snapshot.Engine // nil when persistence is disabled
	mem     *memstats.Counters
	clock   kvstore.Clock
	dbName  string
	mods    *atomic.Uint64 // modification counter observed by the autosnap worker
}

// New constructs a Resolver. engine may be nil to disable persistence
// commands (SAVE becomes a no-op success, matching a server run without
// --db-path... in practice the server always configures one, but Resolver
// itself does not assume that).
func New(store *kvstore.Store, engine *snapshot.Engine, mem *memstats.Counters, clock kvstore.Clock, dbName string, mods *atomic.Uint64) *Resolver {
	return &Resolver{store: store, engine: engine, mem: mem, clock: clock, dbName: dbName, mods: mods}
}

// Resolve executes one query and returns its response, or a resolver error
// whose wire phrase is obtained via Phrase.
func (r *Resolver) Resolve(q query.Query) (Result, error) {
	result, err := r.dispatch(q)
	if err != nil {
		return Result{}, err
	}

	if r.mods != nil {
		r.mods.Add(1)
	}

	return result, nil
}

func (r *Resolver) dispatch(q query.Query) (Result, error) {
	switch q.Command {
	case "PING":
		return okResult([]byte("pong")), nil
	case "ISET":
		return r.setTyped(q.Args, object.TagInteger)
	case "DSET":
		return r.setTyped(q.Args, object.TagDecimal)
	case "SSET":
		return r.setTyped(q.Args, object.TagString)
	case "UPDATE":
		return r.update(q.Args)
	case "RENAME":
		return r.rename(q.Args)
	case "GET":
		return r.get(q.Args)
	case "TYPE":
		return r.typeOf(q.Args)
	case "CHECK":
		return r.check(q.Args)
	case "COUNT":
		return okResult([]byte(strconv.Itoa(r.store.Len()))), nil
	case "LIST":
		return r.list()
	case "TOUCH":
		return r.touch(q.Args)
	case "HEAD":
		return r.moveCommand(q.Args, r.store.SwapWithHead)
	case "TAIL":
		return r.moveCommand(q.Args, r.store.SwapWithTail)
	case "SHEAD":
		return r.moveCommand(q.Args, r.store.MoveToHead)
	case "STAIL":
		return r.moveCommand(q.Args, r.store.MoveToTail)
	case "SORT":
		r.store.Prefetch()
		return okResult([]byte("OK")), nil
	case "FREQ":
		return r.counterCommand(q.Args, true)
	case "LAST":
		return r.counterCommand(q.Args, false)
	case "IDLE":
		return r.idle(q.Args)
	case "LEN":
		return r.lenOf(q.Args)
	case "SIZE":
		return r.sizeOf(q.Args)
	case "MEM":
		return r.memCommand(q.Args)
	case "DB":
		return r.dbCommand(q.Args)
	case "DUMP":
		return r.dump(q.Args)
	case "RESTORE":
		return r.restore(q.Args)
	case "ERASE":
		return r.erase()
	case "DEL":
		return r.del(q.Args)
	case "SAVE":
		return r.save()
	case "COPY":
		return r.copy(q.Args)
	case "DOWN":
		return r.down()
	default:
		return Result{}, ErrCommandNotFound
	}
}

func okResult(body []byte) Result { return Result{Body: body} }
