// csbprobe drives the wire protocol by hand to observe how a server
// behaves under malformed and boundary input. Scenarios print what
// the server actually did; the exit status reflects whether the probe
// itself ran, not whether the observed behavior was the strict one.
package main

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/csbwire/csbwire/internal/logging"
	"github.com/csbwire/csbwire/internal/netio"
	"github.com/csbwire/csbwire/internal/protocol"
	"github.com/csbwire/csbwire/internal/protocol/frame"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:9090", "server address")
	scenario := flag.String("scenario", "ping", "probe scenario: ping|unknown-type|bad-magic|oversize|truncated|flood|idle")
	count := flag.Int("count", 10, "requests to send in the flood scenario")
	timeout := flag.Duration("timeout", 5*time.Second, "per-call I/O deadline")
	wait := flag.Duration("wait", 90*time.Second, "longest the waiting scenarios watch for a server-side close")
	flag.Parse()

	logging.ConfigureRuntime()

	if err := runScenario(*scenario, *addr, *count, *timeout, *wait); err != nil {
		fmt.Fprintf(os.Stderr, "csbprobe: %v\n", err)
		os.Exit(1)
	}
}

func runScenario(scenario, addr string, count int, timeout, wait time.Duration) error {
	switch scenario {
	case "ping":
		return probePing(addr, timeout)
	case "unknown-type":
		return probeUnknownType(addr, timeout)
	case "bad-magic":
		return probeBadMagic(addr, timeout)
	case "oversize":
		return probeOversize(addr, timeout, wait)
	case "truncated":
		return probeTruncated(addr, timeout, wait)
	case "flood":
		return probeFlood(addr, count, timeout)
	case "idle":
		return probeIdle(addr, wait)
	default:
		return fmt.Errorf("unknown scenario %q", scenario)
	}
}

func dial(addr string, timeout time.Duration) (net.Conn, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}
	return conn, nil
}

func opts(timeout time.Duration) frame.Options {
	return frame.Options{Timeout: timeout, Validate: true}
}

// probePing is the conformance baseline: one well-formed request, one
// reply.
func probePing(addr string, timeout time.Duration) error {
	conn, err := dial(addr, timeout)
	if err != nil {
		return err
	}
	defer conn.Close()

	start := time.Now()
	if err := frame.Send(conn, protocol.MsgReqPing, []byte("ping"), opts(timeout)); err != nil {
		return err
	}
	resp, err := frame.Recv(conn, opts(timeout))
	if err != nil {
		return err
	}
	fmt.Printf("reply %s %q in %v\n", resp.Type, resp.Payload, time.Since(start).Round(time.Millisecond))
	return nil
}

// probeUnknownType sends an out-of-set request type. Both profiles
// answer with an error frame; only a strict server hangs up afterwards,
// so a follow-up ping tells them apart.
func probeUnknownType(addr string, timeout time.Duration) error {
	conn, err := dial(addr, timeout)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := frame.Send(conn, protocol.MessageType(999), nil, opts(timeout)); err != nil {
		return err
	}
	resp, err := frame.Recv(conn, frame.Options{Timeout: timeout})
	if err != nil {
		return fmt.Errorf("no error reply: %w", err)
	}
	fmt.Printf("reply %s %q\n", resp.Type, resp.Payload)

	if err := frame.Send(conn, protocol.MsgReqPing, []byte("ping"), opts(timeout)); err != nil {
		fmt.Println("profile strict: session closed after the error reply")
		return nil
	}
	resp, err = frame.Recv(conn, opts(timeout))
	if errors.Is(err, netio.ErrPeerClosed) {
		fmt.Println("profile strict: session closed after the error reply")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("profile permissive: session continued, follow-up reply %s %q\n", resp.Type, resp.Payload)
	return nil
}

// probeBadMagic sends a ping under a corrupted magic. A validating
// server closes without replying; with validation off the magic is
// never checked and the ping is served.
func probeBadMagic(addr string, timeout time.Duration) error {
	conn, err := dial(addr, timeout)
	if err != nil {
		return err
	}
	defer conn.Close()

	hdr := protocol.EncodeHeader(protocol.Header{Magic: 0xDEADBEEF, Type: protocol.MsgReqPing})
	if err := netio.WriteFull(conn, hdr, timeout); err != nil {
		return err
	}
	resp, err := frame.Recv(conn, frame.Options{Timeout: timeout})
	switch {
	case errors.Is(err, netio.ErrPeerClosed):
		fmt.Println("server closed without a reply")
	case err == nil:
		fmt.Printf("server served the frame anyway: %s %q\n", resp.Type, resp.Payload)
	default:
		fmt.Printf("recv failed: %v\n", err)
	}
	return nil
}

// probeOversize declares a payload above the wire cap and sends no
// payload bytes. A validating server rejects the header and closes; a
// permissive one sits in the payload read until its own limits fire.
func probeOversize(addr string, timeout, wait time.Duration) error {
	conn, err := dial(addr, timeout)
	if err != nil {
		return err
	}
	defer conn.Close()

	hdr := protocol.EncodeHeader(protocol.Header{
		Magic:  protocol.Magic,
		Type:   protocol.MsgReqEcho,
		Length: protocol.MaxPayloadLen + 1,
	})
	if err := netio.WriteFull(conn, hdr, timeout); err != nil {
		return err
	}
	start := time.Now()
	err = netio.ReadFull(conn, make([]byte, 1), wait)
	switch {
	case errors.Is(err, netio.ErrPeerClosed):
		fmt.Printf("server closed after %v\n", time.Since(start).Round(time.Millisecond))
	case errors.Is(err, netio.ErrTimeout):
		fmt.Printf("server still open after %v\n", wait)
	case err == nil:
		fmt.Println("server started a reply to an oversize declaration")
	default:
		fmt.Printf("recv failed: %v\n", err)
	}
	return nil
}

// probeTruncated sends half a header and stops. Bounded reads close
// the session at the server's deadline; an untimed server holds on.
func probeTruncated(addr string, timeout, wait time.Duration) error {
	conn, err := dial(addr, timeout)
	if err != nil {
		return err
	}
	defer conn.Close()

	hdr := protocol.EncodeHeader(protocol.Header{Magic: protocol.Magic, Type: protocol.MsgReqPing})
	if err := netio.WriteFull(conn, hdr[:protocol.HeaderSize/2], timeout); err != nil {
		return err
	}
	start := time.Now()
	err = netio.ReadFull(conn, make([]byte, 1), wait)
	switch {
	case errors.Is(err, netio.ErrPeerClosed):
		fmt.Printf("server closed after %v\n", time.Since(start).Round(time.Millisecond))
	case errors.Is(err, netio.ErrTimeout):
		fmt.Printf("server still open after %v\n", wait)
	default:
		fmt.Printf("recv failed: %v\n", err)
	}
	return nil
}

// probeFlood pushes pings through one session until the server hangs
// up. Against a request ceiling the reply count lands exactly on the
// configured limit.
func probeFlood(addr string, count int, timeout time.Duration) error {
	conn, err := dial(addr, timeout)
	if err != nil {
		return err
	}
	defer conn.Close()

	for served := 0; served < count; served++ {
		if err := frame.Send(conn, protocol.MsgReqPing, []byte("ping"), opts(timeout)); err != nil {
			fmt.Printf("session closed after %d replies\n", served)
			return nil
		}
		if _, err := frame.Recv(conn, opts(timeout)); err != nil {
			fmt.Printf("session closed after %d replies\n", served)
			return nil
		}
	}
	fmt.Printf("%d requests served, session still open\n", count)
	return nil
}

// probeIdle opens a session and sends nothing. The server's read
// deadline or session guard decides when it hangs up.
func probeIdle(addr string, wait time.Duration) error {
	conn, err := dial(addr, wait)
	if err != nil {
		return err
	}
	defer conn.Close()

	start := time.Now()
	err = netio.ReadFull(conn, make([]byte, 1), wait)
	switch {
	case errors.Is(err, netio.ErrPeerClosed):
		fmt.Printf("server closed the idle session after %v\n", time.Since(start).Round(time.Millisecond))
	case errors.Is(err, netio.ErrTimeout):
		fmt.Printf("server kept the idle session past %v\n", wait)
	default:
		fmt.Printf("recv failed: %v\n", err)
	}
	return nil
}
