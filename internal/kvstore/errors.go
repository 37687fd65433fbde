// Package kvstore implements the capacity-bounded, transposition-ordered
// object sequence described in spec.md §4.2.
package kvstore

import "errors"

// Sentinel errors returned by Store operations.
var (
	// ErrExceededSpaceLimit indicates an insertion or type-changing update
	// would make cap_remaining underflow. The store is left unchanged.
	ErrExceededSpaceLimit = errors.New("kvstore: exceeded space limit")

	// ErrKeyNotFound indicates a key-addressed operation found no matching
	// key.
	ErrKeyNotFound = errors.New("kvstore: key not found")

	// ErrKeyReplacementExist indicates Rename's new key already names a
	// live object.
	ErrKeyReplacementExist = errors.New("kvstore: key replacement exists")

	// ErrIndexOutOfRange indicates RemoveAt was called with an index
	// outside [0, Len()).
	ErrIndexOutOfRange = errors.New("kvstore: index out of range")
)
