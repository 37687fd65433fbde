package snapshot

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"sync"

	"raptodb/internal/fs"
	"raptodb/internal/kvstore"
	"raptodb/internal/object"
)

// lockSuffix names the advisory lock file Engine takes alongside the
// snapshot itself. It is separate from path so the lock survives across
// the atomic rename Save performs on path.
const lockSuffix = ".lock"

// snapshotPerm is the file mode Save creates or replaces the snapshot with.
const snapshotPerm = 0o644

// Engine persists a Store to a single path. Save calls are serialized by an
// internal mutex so that a client-triggered SAVE and the autosnap worker's
// trigger can never race each other onto the same file (spec.md §9 open
// question 3); the worker still only ever signals the executor, which is
// the sole goroutine touching the Store itself (see raptorunner.Executor).
// An flock-backed FileLocker additionally guards the path against a second
// raptodb process pointed at the same file, which the in-process mutex
// cannot see. Reads and writes go through an fs.FS so tests can substitute
// fs.NewChaos to exercise disk-failure paths without touching a real disk.
type Engine struct {
	path   string
	mu     sync.Mutex
	fsImpl fs.FS
	locker *fs.FileLocker
}

// NewEngine returns an Engine writing to and reading from path.
func NewEngine(path string) *Engine {
	return newEngine(path, fs.NewReal())
}

// newEngine builds an Engine over an arbitrary fs.FS, letting tests inject
// fs.NewChaos to simulate disk failures during Save and Load.
func newEngine(path string, fsImpl fs.FS) *Engine {
	return &Engine{path: path, fsImpl: fsImpl, locker: fs.NewFileLocker(fsImpl)}
}

// Save writes every live object in st to the snapshot path, cold end first,
// as an atomic whole-file replace. A failure leaves the previous snapshot,
// if any, untouched.
func (e *Engine) Save(st *kvstore.Store) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, err := e.locker.Lock(e.path + lockSuffix)
	if err != nil {
		return err
	}
	defer lock.Close()

	var buf bytes.Buffer

	for i := 0; i < st.Len(); i++ {
		obj := st.ObjectAt(i)

		raw, err := object.Serialize(obj)
		if err != nil {
			return err
		}

		payload, err := encodeFrame(raw)
		if err != nil {
			return err
		}

		var lenPrefix [8]byte
		binary.LittleEndian.PutUint64(lenPrefix[:], uint64(len(payload)))

		buf.Write(lenPrefix[:])
		buf.Write(payload)
	}

	return e.fsImpl.WriteFileAtomic(e.path, buf.Bytes(), snapshotPerm)
}

// Load reads the snapshot at path into st, appending objects in file order
// (cold end first, matching Save) and then re-sorting via st.Prefetch so
// the in-memory LRU order reflects recorded access times rather than file
// order. It returns the number of objects loaded. A missing file is not an
// error: Load returns (0, nil), matching an empty store.
func (e *Engine) Load(st *kvstore.Store) (int, error) {
	lock, err := e.locker.RLock(e.path + lockSuffix)
	if err != nil {
		return 0, err
	}
	defer lock.Close()

	f, err := e.fsImpl.Open(e.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	count := 0

	for {
		var lenPrefix [8]byte
		_, err := io.ReadFull(r, lenPrefix[:])
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return count, ErrCorrupt
		}

		frameLen := binary.LittleEndian.Uint64(lenPrefix[:])
		if frameLen == 0 {
			break
		}

		remaining := st.CapRemaining()
		if frameLen > remaining/worstCaseExpansion {
			return count, ErrFrameTooLarge
		}

		payload := make([]byte, frameLen)
		if _, err := io.ReadFull(r, payload); err != nil {
			return count, ErrCorrupt
		}

		raw, err := decodeFrame(payload, int(frameLen)*worstCaseExpansion)
		if err != nil {
			return count, err
		}

		obj, err := object.Deserialize(raw)
		if err != nil {
			return count, ErrCorrupt
		}

		if err := st.AppendLoaded(obj); err != nil {
			return count, err
		}

		count++
	}

	st.Prefetch()

	return count, nil
}
