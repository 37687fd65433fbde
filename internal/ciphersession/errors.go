// Package ciphersession implements the AEAD cipher state and the
// server-driven handshake of spec.md §4.4 layers B and C: ChaCha20-Poly1305
// encryption with an incrementing nonce, and a confidentiality-only (NOT
// MITM-resistant) key exchange.
package ciphersession

import "errors"

// Sentinel errors.
var (
	// ErrDecryptionFail indicates a frame was too short to contain a
	// nonce+tag, or AEAD verification failed.
	ErrDecryptionFail = errors.New("ciphersession: decryption failed")

	// ErrHandshakeFail indicates the server-driven handshake did not
	// complete (a required token was missing or malformed).
	ErrHandshakeFail = errors.New("ciphersession: handshake failed")
)
