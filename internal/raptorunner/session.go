package raptorunner

import (
	"sync"

	"raptodb/internal/ciphersession"
	"raptodb/internal/transport"
)

// Session is one connected client: a strictly increasing id assigned at
// accept time, its peer address, an optional display name, the framed
// stream it talks over, and the AEAD cipher state if the handshake ran
// (nil otherwise). The connection's own goroutine reads from Stream; the
// executor writes each response body through WriteFrame, which encrypts
// with Cipher and writes to Stream (spec.md §5).
type Session struct {
	ID          uint64
	RemoteAddr  string
	DisplayName string

	Stream *transport.Stream
	Cipher *ciphersession.Cipher
}

// WriteFrame sends payload as one frame, encrypting it first if the
// session negotiated a Cipher.
func (s *Session) WriteFrame(payload []byte) error {
	if s.Cipher != nil {
		encrypted, err := s.Cipher.Encrypt(payload)
		if err != nil {
			return err
		}
		payload = encrypted
	}

	return s.Stream.WriteFrame(payload)
}

// ReadFrame reads one frame, decrypting it first if the session negotiated
// a Cipher.
func (s *Session) ReadFrame() ([]byte, error) {
	frame, err := s.Stream.ReadFrame()
	if err != nil {
		return nil, err
	}

	if s.Cipher != nil {
		return s.Cipher.Decrypt(frame)
	}

	return frame, nil
}

// SessionRegistry tracks the currently connected clients by id. Nothing in
// the command table exposes a "list connections" operation; the server
// uses the registry to close every open connection on DOWN (CloseAll).
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[uint64]*Session
}

// NewSessionRegistry returns an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[uint64]*Session)}
}

// Register adds sess to the registry.
func (r *SessionRegistry) Register(sess *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sess.ID] = sess
}

// Unregister removes the session with the given id, if present.
func (r *SessionRegistry) Unregister(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Count returns the number of currently registered sessions.
func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CloseAll closes every registered session's stream, unblocking any
// connection goroutine parked in a read. Used on DOWN: the executor has
// already taken its final snapshot and stopped accepting, so no new
// sessions can appear underneath this.
func (r *SessionRegistry) CloseAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, sess := range r.sessions {
		_ = sess.Stream.Close()
	}
}
