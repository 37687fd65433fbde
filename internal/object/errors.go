// Package object implements the Rapto Object record: a keyed, typed value
// with access metadata, and its canonical binary serialization.
package object

import "errors"

// Sentinel errors returned by the codec.
//
// Callers should use [errors.Is] to check error types.
var (
	// ErrTypeOverflow indicates a key or string value exceeds its encoded
	// length limit (key: 255 bytes, string: 2^32-1 bytes).
	//
	// Recovery: reject the write; the object is never constructed.
	ErrTypeOverflow = errors.New("object: type overflow")

	// ErrEndOfStream indicates the input was truncated mid-record.
	//
	// Recovery: treat as a decode failure; do not retry with the same bytes.
	ErrEndOfStream = errors.New("object: end of stream")

	// ErrUnsupportedType indicates an unknown field tag byte was read.
	//
	// Recovery: treat as a decode failure (§4.1 "the codec does not
	// validate metadata semantically; callers do" — the tag IS validated).
	ErrUnsupportedType = errors.New("object: unsupported type")
)
