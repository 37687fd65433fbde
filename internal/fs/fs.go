// Package fs abstracts the filesystem so snapshot persistence can be driven
// against either the real disk ([Real]) or a fault-injecting double
// ([Chaos]) without the caller knowing which.
package fs

import (
	"io"
	"os"
)

// File is an open file descriptor, satisfied by [os.File]. It composes with
// any stdlib function taking an [io.Reader], [io.Writer], [io.Seeker], or
// [io.Closer].
type File interface {
	io.ReadWriteCloser
	io.Seeker

	// Fd backs low-level operations like syscall.Flock.
	Fd() uintptr

	Stat() (os.FileInfo, error)
	Sync() error
}

// Locker is a held file lock; call [Locker.Close] to release it.
type Locker interface {
	io.Closer
}

// FS is the set of filesystem operations raptodb needs for snapshot I/O.
// [Real] wraps the os package directly; [Chaos] and [StrictTestFS] wrap
// another FS to add fault injection or test-failure detection.
type FS interface {
	Open(path string) (File, error)
	Create(path string) (File, error)

	// OpenFile mirrors [os.OpenFile]'s flag/perm combination for callers
	// that need more than Open/Create offer.
	OpenFile(path string, flag int, perm os.FileMode) (File, error)

	ReadFile(path string) ([]byte, error)

	// WriteFileAtomic writes via a temp file + rename so a crash mid-write
	// never leaves a partial file at path.
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error

	ReadDir(path string) ([]os.DirEntry, error)
	MkdirAll(path string, perm os.FileMode) error
	Stat(path string) (os.FileInfo, error)

	// Exists reports (false, nil) for a missing path rather than treating
	// os.ErrNotExist as an error.
	Exists(path string) (bool, error)

	Remove(path string) error
	RemoveAll(path string) error
	Rename(oldpath, newpath string) error

	// Lock acquires an exclusive cross-process lock on path, blocking
	// until acquired or until it times out.
	Lock(path string) (Locker, error)
}

var _ File = (*os.File)(nil)
