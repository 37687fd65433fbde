package transport

import (
	"encoding/binary"
	"io"
	"net"
	"time"
)

const (
	// MinFrameSize is the smallest permitted frame payload.
	MinFrameSize = 1

	// MaxFrameSize is the largest permitted frame payload, 512 MiB.
	MaxFrameSize = 512 * 1024 * 1024
)

// WriteFrame writes an 8-byte little-endian length prefix followed by
// payload. payload must be within [MinFrameSize, MaxFrameSize].
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) < MinFrameSize || len(payload) > MaxFrameSize {
		return ErrFrameSize
	}

	var lenPrefix [8]byte
	binary.LittleEndian.PutUint64(lenPrefix[:], uint64(len(payload)))

	if _, err := w.Write(lenPrefix[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// ReadFrame reads one length-prefixed frame from r, rejecting a declared
// length outside [MinFrameSize, MaxFrameSize] before attempting to read the
// body.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenPrefix [8]byte
	if _, err := io.ReadFull(r, lenPrefix[:]); err != nil {
		return nil, err
	}

	n := binary.LittleEndian.Uint64(lenPrefix[:])
	if n < MinFrameSize || n > MaxFrameSize {
		return nil, ErrFrameSize
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}

	return payload, nil
}

// Stream wraps a net.Conn with per-operation read/write deadlines, so a
// stalled peer cannot pin an executor goroutine indefinitely. A zero
// timeout disables the deadline for that direction.
type Stream struct {
	conn         net.Conn
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewStream wraps conn with the given deadlines.
func NewStream(conn net.Conn, readTimeout, writeTimeout time.Duration) *Stream {
	return &Stream{conn: conn, readTimeout: readTimeout, writeTimeout: writeTimeout}
}

// Conn returns the underlying connection.
func (s *Stream) Conn() net.Conn { return s.conn }

// ReadFrame applies the read deadline, then reads one frame.
func (s *Stream) ReadFrame() ([]byte, error) {
	if s.readTimeout > 0 {
		if err := s.conn.SetReadDeadline(time.Now().Add(s.readTimeout)); err != nil {
			return nil, err
		}
	}
	return ReadFrame(s.conn)
}

// WriteFrame applies the write deadline, then writes one frame.
func (s *Stream) WriteFrame(payload []byte) error {
	if s.writeTimeout > 0 {
		if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
			return err
		}
	}
	return WriteFrame(s.conn, payload)
}

// Close closes the underlying connection.
func (s *Stream) Close() error { return s.conn.Close() }
