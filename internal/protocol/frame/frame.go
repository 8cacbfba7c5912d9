// Package frame moves whole protocol frames across a stream
// connection, composing the header codec with bounded I/O.
//
// Ownership boundary:
// - header-then-payload receive sequencing
// - per-transfer deadline application
// - validation policy application on received headers
package frame

import (
	"net"
	"time"

	"github.com/csbwire/csbwire/internal/netio"
	"github.com/csbwire/csbwire/internal/protocol"
)

// Options bound one frame transfer.
type Options struct {
	// Timeout bounds the header read and the payload read
	// independently; a non-positive value leaves the transfer untimed.
	Timeout time.Duration
	// Validate applies the wire contract to received headers. When
	// off, the declared length is still used to size the payload
	// read but nothing else is checked.
	Validate bool
}

// Recv reads one complete frame from conn: the fixed header first,
// then the declared payload. A validation failure is reported before
// any payload byte is read, leaving the stream positioned at the
// undelivered payload; callers must treat the stream as
// desynchronized and close it.
func Recv(conn net.Conn, opts Options) (protocol.Frame, error) {
	var hdr [protocol.HeaderSize]byte
	if err := netio.ReadFull(conn, hdr[:], opts.Timeout); err != nil {
		return protocol.Frame{}, err
	}

	h, err := protocol.ParseHeader(hdr[:])
	if err != nil {
		return protocol.Frame{}, err
	}
	if opts.Validate {
		if err := h.Validate(); err != nil {
			return protocol.Frame{}, err
		}
	}

	payload := make([]byte, h.Length)
	if h.Length > 0 {
		if err := netio.ReadFull(conn, payload, opts.Timeout); err != nil {
			return protocol.Frame{}, err
		}
	}
	return protocol.Frame{Type: h.Type, Payload: payload}, nil
}

// Send writes one frame to conn as a single bounded transfer.
func Send(conn net.Conn, t protocol.MessageType, payload []byte, opts Options) error {
	buf, err := protocol.EncodeFrame(t, payload)
	if err != nil {
		return err
	}
	return netio.WriteFull(conn, buf, opts.Timeout)
}
