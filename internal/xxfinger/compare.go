// Package xxfinger implements the "advanced compare" used throughout Rapto
// for key and command-name equality (§4.2, GLOSSARY "Advanced compare"):
// a length check, then direct byte comparison for short inputs, then an
// xxHash-gated comparison for long ones.
package xxfinger

import (
	"bytes"

	"github.com/cespare/xxhash/v2"
)

// directCompareLimit is the inclusive length threshold below which Equal
// compares bytes directly instead of fingerprinting first.
const directCompareLimit = 16

// Equal reports whether a and b hold the same bytes, per §4.2's advanced
// compare: unequal lengths short-circuit to false; lengths <= 16 compare
// directly; longer inputs are first compared by xxHash64 fingerprint (the
// pack's xxHash64, standing in for the spec's xxHash3 — no XXH3
// implementation is available in this module's dependency pack) and only
// on a fingerprint match are the raw bytes compared, to avoid paying for a
// full byte compare on every hash collision candidate.
func Equal(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}

	if len(a) <= directCompareLimit {
		return bytes.Equal(a, b)
	}

	if xxhash.Sum64(a) != xxhash.Sum64(b) {
		return false
	}

	return bytes.Equal(a, b)
}

// Fingerprint returns the xxHash64 fingerprint of b. The Store does not call
// it; its key search goes through Equal.
func Fingerprint(b []byte) uint64 {
	return xxhash.Sum64(b)
}
