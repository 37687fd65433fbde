// Package transport implements spec.md §4.4 layer A (length-prefixed
// framing) and layer D (password authentication over the encrypted
// channel).
package transport

import "errors"

// Sentinel errors.
var (
	// ErrFrameSize indicates a frame's declared length fell outside the
	// permitted [1, 512 MiB] range.
	//
	// Recovery: the connection is no longer trustworthy framing-wise and
	// should be closed.
	ErrFrameSize = errors.New("transport: frame size out of bounds")

	// ErrAuthFailed indicates the password presented by a client did not
	// match the configured password.
	ErrAuthFailed = errors.New("transport: authentication failed")
)
