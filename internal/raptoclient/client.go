// Package raptoclient implements the client side of the wire protocol
// spec.md §4 describes: version negotiation, the optional AEAD handshake
// and password challenge, and framed command/response exchange. It backs
// the raptoctl REPL, and is factored out of it so the protocol logic isn't
// tangled with terminal I/O.
package raptoclient

import (
	"net"
	"time"

	"raptodb/internal/ciphersession"
	"raptodb/internal/raptorunner"
	"raptodb/internal/transport"
)

// Wire tokens, mirroring the literal ASCII frames raptorunner's connection
// handler expects (spec.md §4.4 layers C and D).
const (
	tokenSendPK       = "send-pk"
	tokenSendSK       = "send-sk"
	tokenRecvdSK      = "recvd-sk"
	tokenSendAuthPass = "send-authpass"
	tokenAuthOK       = "recvd-authpass:OK"
	tokenAuthNO       = "recvd-authpass:NO"
)

// Options configures Dial.
type Options struct {
	Addr         string
	TLS          bool
	AuthPass     string
	DisplayName  string
	DialTimeout  time.Duration
	FrameTimeout time.Duration
}

// Client is one connection to a raptodb server, past the handshake and
// ready to send commands.
type Client struct {
	stream *transport.Stream
	cipher *ciphersession.Cipher
}

// Dial connects to opts.Addr and runs the full connection preamble:
// version announce, optional handshake, optional password auth, display name.
func Dial(opts Options) (*Client, error) {
	conn, err := net.DialTimeout("tcp", opts.Addr, opts.DialTimeout)
	if err != nil {
		return nil, err
	}

	stream := transport.NewStream(conn, opts.FrameTimeout, opts.FrameTimeout)
	c := &Client{stream: stream}

	if err := stream.WriteFrame([]byte(raptorunner.ProtocolVersion)); err != nil {
		conn.Close()
		return nil, err
	}

	if opts.TLS {
		if err := c.clientHandshake(); err != nil {
			conn.Close()
			return nil, err
		}
	}

	if opts.AuthPass != "" {
		if err := c.authenticate(opts.AuthPass); err != nil {
			conn.Close()
			return nil, err
		}
	}

	if err := c.writeFrame([]byte(opts.DisplayName)); err != nil {
		conn.Close()
		return nil, err
	}

	return c, nil
}

func (c *Client) clientHandshake() error {
	tok, err := c.stream.ReadFrame()
	if err != nil {
		return err
	}
	if string(tok) != tokenSendPK {
		return ErrUnexpectedToken
	}

	kp, err := ciphersession.GenerateKeyPair()
	if err != nil {
		return err
	}

	if err := c.stream.WriteFrame(kp.Pub[:]); err != nil {
		return err
	}

	tok2, err := c.stream.ReadFrame()
	if err != nil {
		return err
	}
	if string(tok2) != tokenSendSK {
		return ErrUnexpectedToken
	}

	helloWire, err := c.stream.ReadFrame()
	if err != nil {
		return err
	}

	hello := ciphersession.ServerHello{Sealed: helloWire}

	cipher, err := ciphersession.ClientHandshake(kp.Pub, hello)
	if err != nil {
		return err
	}

	if err := c.stream.WriteFrame([]byte(tokenRecvdSK)); err != nil {
		return err
	}

	c.cipher = cipher

	return nil
}

func (c *Client) authenticate(password string) error {
	tok, err := c.readFrame()
	if err != nil {
		return err
	}
	if string(tok) != tokenSendAuthPass {
		return ErrUnexpectedToken
	}

	if err := c.writeFrame([]byte(password)); err != nil {
		return err
	}

	resp, err := c.readFrame()
	if err != nil {
		return err
	}

	switch string(resp) {
	case tokenAuthOK:
		return nil
	case tokenAuthNO:
		return ErrAuthFailed
	default:
		return ErrUnexpectedToken
	}
}

func (c *Client) writeFrame(payload []byte) error {
	if c.cipher != nil {
		encrypted, err := c.cipher.Encrypt(payload)
		if err != nil {
			return err
		}
		payload = encrypted
	}

	return c.stream.WriteFrame(payload)
}

func (c *Client) readFrame() ([]byte, error) {
	frame, err := c.stream.ReadFrame()
	if err != nil {
		return nil, err
	}

	if c.cipher != nil {
		return c.cipher.Decrypt(frame)
	}

	return frame, nil
}

// Send submits one command line and returns the server's response body
// verbatim (including a leading "ERR: " on failure responses).
func (c *Client) Send(line string) (string, error) {
	if err := c.writeFrame([]byte(line)); err != nil {
		return "", err
	}

	resp, err := c.readFrame()
	if err != nil {
		return "", err
	}

	return string(resp), nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.stream.Close()
}
