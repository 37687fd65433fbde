package fs

import (
	"errors"
	iofs "io/fs"
	"sync"
)

// InjectedError wraps a manufactured error rather than one that came from
// the real filesystem, so errors.Is/As still work against it.
//
// A *fs.PathError registered through markInjectedPathError also counts as
// injected. [Chaos] does not use either mechanism: its faults are
// [ChaosError] values, which IsInjected does not recognize.
type InjectedError struct {
	Err error
}

func (e *InjectedError) Error() string {
	return e.Err.Error()
}

func (e *InjectedError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the underlying error is a timeout.
func (e *InjectedError) Timeout() bool {
	t, ok := e.Err.(timeout)

	return ok && t.Timeout()
}

// IsInjected reports whether err, or anything it wraps, is an
// [InjectedError] or a *fs.PathError registered by markInjectedPathError.
func IsInjected(err error) bool {
	if err == nil {
		return false
	}

	var injected *InjectedError
	if errors.As(err, &injected) {
		return true
	}

	var pathErr *iofs.PathError
	if errors.As(err, &pathErr) {
		_, ok := injectedPathErrors.Load(pathErr)

		return ok
	}

	return false
}

type timeout interface {
	Timeout() bool
}

var injectedPathErrors sync.Map // map[*fs.PathError]struct{}

func markInjectedPathError(err *iofs.PathError) {
	injectedPathErrors.Store(err, struct{}{})
}

// inject wraps err in an InjectedError, unless it's already one.
func inject(err error) error {
	if IsInjected(err) {
		return err
	}

	return &InjectedError{Err: err}
}
