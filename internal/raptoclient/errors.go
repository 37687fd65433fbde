package raptoclient

import "errors"

// Sentinel errors a Dial or Send can return.
var (
	// ErrVersionMismatch indicates the server rejected our protocol version.
	// Dial and Send do not return it: the server's compatible-version reply
	// is not told apart from other frames.
	ErrVersionMismatch = errors.New("raptoclient: server rejected protocol version")

	// ErrUnexpectedToken indicates the server sent a handshake or auth
	// token other than the one the protocol requires at that step.
	ErrUnexpectedToken = errors.New("raptoclient: unexpected protocol token")

	// ErrAuthFailed indicates the server rejected the configured password.
	ErrAuthFailed = errors.New("raptoclient: authentication failed")
)
