// Package resolver implements the command dispatcher of spec.md §4.5: it
// takes a parsed query.Query and executes it against a kvstore.Store (and,
// for persistence commands, a snapshot.Engine), producing the textual
// response or resolver error spec.md §7 defines.
package resolver

import (
	"errors"

	"raptodb/internal/kvstore"
	"raptodb/internal/object"
)

// Sentinel errors specific to the resolver. Store/object/snapshot errors
// are mapped to their wire phrases alongside these in Phrase.
var (
	// ErrCommandNotFound indicates the upper-cased command word matched no
	// entry in the dispatch table.
	ErrCommandNotFound = errors.New("resolver: command does not exist")

	// ErrMissingTokens indicates a command's argument string did not
	// contain as many tokens as required.
	ErrMissingTokens = errors.New("resolver: tokens missing")

	// ErrMismatchType indicates an argument could not be interpreted as
	// the type the command requires (e.g. UPDATE against a string, or a
	// non-numeric value to ISET/DSET).
	ErrMismatchType = errors.New("resolver: incompatible types")

	// ErrInvalidMetadata indicates a metadata computation (IDLE) would
	// underflow, meaning last_access is somehow in the future relative to
	// now.
	ErrInvalidMetadata = errors.New("resolver: metadata is corrupted")

	// ErrNoKeysFound indicates LIST was invoked against an empty store.
	ErrNoKeysFound = errors.New("resolver: no keys found")

	// ErrUnknownArgument indicates a MEM or DB sub-command token was not
	// recognized.
	ErrUnknownArgument = errors.New("resolver: invalid argument")

	// ErrSaveFailed wraps a snapshot.Engine.Save failure.
	ErrSaveFailed = errors.New("resolver: persistent saving is failed")

	// ErrInvalidObject wraps an object codec failure encountered while
	// handling RESTORE or COPY.
	ErrInvalidObject = errors.New("resolver: serialized object is invalid")
)

// Phrase maps any error a Resolve call can return to its fixed wire
// phrase (spec.md §7). Unrecognized errors fall back to "unknown".
func Phrase(err error) string {
	switch {
	case errors.Is(err, ErrCommandNotFound):
		return "command does not exist"
	case errors.Is(err, ErrMissingTokens):
		return "tokens missing"
	case errors.Is(err, ErrMismatchType):
		return "incompatible types"
	case errors.Is(err, object.ErrTypeOverflow):
		return "value too large for type"
	case errors.Is(err, kvstore.ErrKeyNotFound):
		return "key not found"
	case errors.Is(err, kvstore.ErrKeyReplacementExist):
		return "new name correspond to existent key"
	case errors.Is(err, ErrSaveFailed):
		return "persistent saving is failed"
	case errors.Is(err, ErrInvalidObject):
		return "serialized object is invalid."
	case errors.Is(err, ErrInvalidMetadata):
		return "metadata is corrupted."
	case errors.Is(err, ErrNoKeysFound):
		return "no keys found."
	case errors.Is(err, ErrUnknownArgument):
		return "invalid argument."
	case errors.Is(err, kvstore.ErrExceededSpaceLimit):
		return "excedeed db space limit."
	default:
		return "unknown"
	}
}
