// Package netio provides deadline-bounded exact-length reads and
// writes over a stream connection, classifying failures so callers
// can tell a timeout from a peer close from any other transport
// error.
package netio

import (
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"time"
)

var (
	ErrTimeout    = errors.New("netio: i/o timeout")
	ErrPeerClosed = errors.New("netio: peer closed connection")
)

// ReadFull reads exactly len(buf) bytes from conn. A positive timeout
// bounds the whole transfer through the connection read deadline; a
// non-positive timeout clears any armed deadline and relies on the
// transport's own blocking behavior.
func ReadFull(conn net.Conn, buf []byte, timeout time.Duration) error {
	if err := conn.SetReadDeadline(deadline(timeout)); err != nil {
		return fmt.Errorf("netio: set read deadline: %w", err)
	}
	if _, err := io.ReadFull(conn, buf); err != nil {
		return classify(err)
	}
	return nil
}

// WriteFull writes all of b to conn under the same bounding rules as
// ReadFull. Partial transfers below the deadline are retried by the
// transport; a short write that still returns nil from the transport
// is surfaced as io.ErrShortWrite.
func WriteFull(conn net.Conn, b []byte, timeout time.Duration) error {
	if err := conn.SetWriteDeadline(deadline(timeout)); err != nil {
		return fmt.Errorf("netio: set write deadline: %w", err)
	}
	n, err := conn.Write(b)
	if err != nil {
		return classify(err)
	}
	if n != len(b) {
		return io.ErrShortWrite
	}
	return nil
}

func deadline(timeout time.Duration) time.Time {
	if timeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(timeout)
}

// classify maps raw transport failures onto the netio sentinels. EOF
// during an exact-length transfer means the peer went away mid-frame,
// the same condition ECONNRESET and EPIPE report.
func classify(err error) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrTimeout
	}
	switch {
	case errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EPIPE):
		return ErrPeerClosed
	}
	return err
}
