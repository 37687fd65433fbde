// Package snapshot implements spec.md §4.3: persisting a kvstore.Store to a
// single file of length-prefixed, LZ4-compressed object frames, and loading
// it back.
package snapshot

import "errors"

// Sentinel errors.
var (
	// ErrCorrupt indicates a frame's declared length could not be
	// satisfied by the remaining file content, or its payload failed to
	// decompress or deserialize.
	//
	// Recovery: the snapshot file is unusable; start with an empty store
	// or restore from a backup.
	ErrCorrupt = errors.New("snapshot: corrupt frame")

	// ErrFrameTooLarge indicates a frame's declared compressed length,
	// expanded by LZ4's worst-case ratio, would exceed the store's
	// remaining capacity - the admission gate of spec.md §4.3.
	ErrFrameTooLarge = errors.New("snapshot: frame exceeds store capacity")
)
