// Package query parses the plaintext command line carried inside a
// transport frame into a structured Query, per spec.md §4.5.
package query

import "errors"

// Sentinel errors.
var (
	// ErrEmptyQuery indicates a frame decoded to zero bytes or whitespace
	// only - there is no command to dispatch.
	ErrEmptyQuery = errors.New("query: empty query")
)
