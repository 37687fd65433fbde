package ciphersession

import (
	"crypto/rand"

	"golang.org/x/crypto/curve25519"
)

// KeyPair is an X25519 scalar and its basepoint-multiplied public value.
type KeyPair struct {
	Priv [32]byte
	Pub  [32]byte
}

// GenerateKeyPair produces a fresh X25519 key pair. Only Pub ever reaches
// the wire; see ServerHandshake for why Priv goes otherwise unused.
func GenerateKeyPair() (KeyPair, error) {
	var kp KeyPair
	if _, err := rand.Read(kp.Priv[:]); err != nil {
		return kp, err
	}

	pub, err := curve25519.X25519(kp.Priv[:], curve25519.Basepoint)
	if err != nil {
		return kp, err
	}
	copy(kp.Pub[:], pub)

	return kp, nil
}

// ServerHello is the payload the server sends in reply to the client's
// public key: the real session shared_key and starting nonce, encrypted
// directly under the client's raw public key bytes (spec.md §4.4 layer C
// step 4). There is no server public key on the wire.
type ServerHello struct {
	Sealed []byte // shared_key || nonce, encrypted under clientPub
}

// ServerHandshake runs the server side of the handshake given the client's
// public key. Per spec.md §4.4 layer C step 4, the client's 32-byte public
// key is used directly as a symmetric AEAD key to wrap the real session
// shared_key - the server performs no Diffie-Hellman computation of its own
// and never puts a public key on the wire. This is the "TLS-shaped but not
// MITM-resistant" exchange spec.md §9 calls out: the wrapping key is the
// same bytes that travelled in the clear as the client's "public key", so
// an active attacker who substitutes it in transit recovers shared_key
// outright. The protocol is implemented exactly as specified rather than
// hardened into real ECDH, since hardening it would break wire
// compatibility with the handshake spec.md documents.
func ServerHandshake(clientPub [32]byte) (ServerHello, *Cipher, error) {
	sharedKey, nonce, err := RandomKeyAndNonce()
	if err != nil {
		return ServerHello{}, nil, err
	}

	plaintext := make([]byte, 0, KeySize+NonceSize)
	plaintext = append(plaintext, sharedKey[:]...)
	plaintext = append(plaintext, nonce[:]...)

	bootCipher := NewCipher(clientPub, [NonceSize]byte{})
	sealed, err := bootCipher.Encrypt(plaintext)
	if err != nil {
		return ServerHello{}, nil, err
	}

	return ServerHello{Sealed: sealed}, NewCipher(sharedKey, nonce), nil
}

// ClientHandshake runs the client side: given the same public key it sent
// the server and the ServerHello received in reply, it recovers the session
// Cipher by decrypting Sealed under its own public key bytes - the same
// value the server used to wrap shared_key. It returns ErrHandshakeFail if
// decryption does not verify.
func ClientHandshake(clientPub [32]byte, hello ServerHello) (*Cipher, error) {
	plaintext, err := Decrypt(clientPub, hello.Sealed)
	if err != nil {
		return nil, ErrHandshakeFail
	}
	if len(plaintext) != KeySize+NonceSize {
		return nil, ErrHandshakeFail
	}

	var sharedKey [KeySize]byte
	var nonce [NonceSize]byte
	copy(sharedKey[:], plaintext[:KeySize])
	copy(nonce[:], plaintext[KeySize:])

	return NewCipher(sharedKey, nonce), nil
}
