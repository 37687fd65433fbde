package transport

import "crypto/subtle"

// CheckPassword compares a client-presented password against the
// configured one in constant time. An empty configured password means
// authentication is disabled: any (including empty) presented password is
// accepted.
func CheckPassword(configured, presented []byte) bool {
	if len(configured) == 0 {
		return true
	}

	if len(configured) != len(presented) {
		return false
	}

	return subtle.ConstantTimeCompare(configured, presented) == 1
}
