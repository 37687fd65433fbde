package raptorunner

import (
	"errors"
	"net"

	"go.uber.org/zap"

	"raptodb/internal/ciphersession"
	"raptodb/internal/query"
	"raptodb/internal/resolver"
	"raptodb/internal/transport"
)

// ProtocolVersion is the literal first frame a client must send, byte for
// byte, before anything else happens on the connection.
const ProtocolVersion = "raptodb-1"

// Handshake and auth tokens, exchanged as literal ASCII frames (spec.md
// §4.4 layers C and D).
const (
	tokenSendPK       = "send-pk"
	tokenSendSK       = "send-sk"
	tokenRecvdSK      = "recvd-sk"
	tokenSendAuthPass = "send-authpass"
	tokenAuthOK       = "recvd-authpass:OK"
	tokenAuthNO       = "recvd-authpass:NO"
)

func (s *Server) handleConnection(conn net.Conn) {
	id := s.nextID.Add(1)
	stream := transport.NewStream(conn, s.cfg.ReadTimeout, s.cfg.WriteTimeout)
	sess := &Session{ID: id, Stream: stream, RemoteAddr: conn.RemoteAddr().String()}

	defer stream.Close()

	if !s.negotiateVersion(sess) {
		return
	}

	if s.cfg.TLS {
		if err := s.serverHandshake(sess); err != nil {
			s.logger.Warn("handshake failed", zap.Uint64("session", id), zap.Error(err))
			_ = stream.WriteFrame([]byte("tls-handshake-fail"))
			return
		}
	}

	if s.cfg.AuthPass != "" {
		ok, err := s.authenticate(sess)
		if err != nil {
			s.logger.Warn("auth exchange failed", zap.Uint64("session", id), zap.Error(err))
			return
		}
		if !ok {
			return
		}
	}

	nameFrame, err := sess.ReadFrame()
	if err != nil {
		return
	}
	sess.DisplayName = string(nameFrame)

	s.sessions.Register(sess)
	defer s.sessions.Unregister(sess.ID)

	s.logger.Info("client connected",
		zap.Uint64("session", id), zap.String("name", sess.DisplayName), zap.String("addr", sess.RemoteAddr))

	s.readLoop(sess)
}

// negotiateVersion reads the mandatory first frame and checks it against
// ProtocolVersion byte for byte, replying with the compatible-version
// phrase on mismatch.
func (s *Server) negotiateVersion(sess *Session) bool {
	versionFrame, err := sess.Stream.ReadFrame()
	if err != nil {
		return false
	}

	if string(versionFrame) != ProtocolVersion {
		_ = sess.Stream.WriteFrame([]byte("compatible-version=" + ProtocolVersion))
		return false
	}

	return true
}

// serverHandshake runs the server side of the handshake (spec.md §4.4
// layer C) and, on success, installs sess.Cipher. The client's public key
// doubles as the symmetric key wrapping shared_key; see
// ciphersession.ServerHandshake for why that is the specified behavior and
// not a bug.
func (s *Server) serverHandshake(sess *Session) error {
	if err := sess.Stream.WriteFrame([]byte(tokenSendPK)); err != nil {
		return err
	}

	pubFrame, err := sess.Stream.ReadFrame()
	if err != nil {
		return err
	}
	if len(pubFrame) != 32 {
		return ciphersession.ErrHandshakeFail
	}

	var clientPub [32]byte
	copy(clientPub[:], pubFrame)

	if err := sess.Stream.WriteFrame([]byte(tokenSendSK)); err != nil {
		return err
	}

	hello, cipher, err := ciphersession.ServerHandshake(clientPub)
	if err != nil {
		return err
	}

	if err := sess.Stream.WriteFrame(hello.Sealed); err != nil {
		return err
	}

	ack, err := sess.Stream.ReadFrame()
	if err != nil {
		return err
	}
	if string(ack) != tokenRecvdSK {
		return ciphersession.ErrHandshakeFail
	}

	sess.Cipher = cipher

	return nil
}

// authenticate runs the password challenge (spec.md §4.4 layer D), over
// the AEAD channel serverHandshake just installed. It reports false,
// without error, when the client presented the wrong password (the
// connection is always closed by the caller in that case too).
func (s *Server) authenticate(sess *Session) (bool, error) {
	if err := sess.WriteFrame([]byte(tokenSendAuthPass)); err != nil {
		return false, err
	}

	presented, err := sess.ReadFrame()
	if err != nil {
		return false, err
	}

	if !transport.CheckPassword([]byte(s.cfg.AuthPass), presented) {
		_ = sess.WriteFrame([]byte(tokenAuthNO))
		return false, nil
	}

	return true, sess.WriteFrame([]byte(tokenAuthOK))
}

// readLoop parses and enqueues query frames until the connection closes or
// a non-recoverable I/O error occurs.
func (s *Server) readLoop(sess *Session) {
	for {
		payload, err := sess.ReadFrame()
		if err != nil {
			if isRecoverable(err) {
				continue
			}
			return
		}

		q, err := query.Parse(sess.ID, payload)
		if err != nil {
			_ = sess.WriteFrame([]byte("ERR: " + resolver.Phrase(err)))
			continue
		}

		s.queue.Push(Job{Client: sess, Query: q})
	}
}

// isRecoverable reports whether a read error should leave the connection
// open for the next frame (a per-frame timeout, or a frame with an invalid
// declared length) rather than ending it, per spec.md §4.5.
func isRecoverable(err error) bool {
	if errors.Is(err, transport.ErrFrameSize) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return false
}
