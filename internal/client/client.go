// Package client implements the command side of the session protocol:
// one connection, one in-flight request at a time, typed helpers per
// request kind. Retries are a caller concern.
package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/csbwire/csbwire/internal/config"
	"github.com/csbwire/csbwire/internal/protocol"
	"github.com/csbwire/csbwire/internal/protocol/frame"
)

var (
	ErrAddressRequired    = errors.New("client: server address required")
	ErrRemoteError        = errors.New("client: server reported error")
	ErrUnexpectedResponse = errors.New("client: unexpected response type")
)

// Liveness probe payload; the server acknowledges with its own marker.
const pingPayload = "ping"

type Config struct {
	Address string
	Robust  config.Robustness
}

func DefaultConfig() Config {
	return Config{
		Robust: config.ClientDefaults(),
	}
}

// Client is a single-connection command issuer. Methods serialize; one
// request is in flight at a time.
type Client struct {
	cfg    Config
	conn   net.Conn
	opts   frame.Options
	logger zerolog.Logger

	mu        sync.Mutex
	closeOnce sync.Once
}

// Dial connects to the session endpoint named by cfg.Address.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Address) == "" {
		return nil, ErrAddressRequired
	}
	cfg.Robust = cfg.Robust.WithDefaults()

	dialer := net.Dialer{Timeout: cfg.Robust.FrameTimeout()}
	conn, err := dialer.DialContext(ctx, "tcp", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.Address, err)
	}
	return &Client{
		cfg:  cfg,
		conn: conn,
		opts: frame.Options{
			Timeout:  cfg.Robust.FrameTimeout(),
			Validate: cfg.Robust.ValidateHeaders,
		},
		logger: log.With().Str("component", "client").Str("server", cfg.Address).Logger(),
	}, nil
}

// Ping sends a liveness probe and returns the acknowledgment string.
func (c *Client) Ping(ctx context.Context) (string, error) {
	resp, err := c.roundTrip(ctx, protocol.MsgReqPing, []byte(pingPayload), protocol.MsgRespPing)
	if err != nil {
		return "", err
	}
	return string(resp), nil
}

// Sysinfo asks the server for its one-line host summary.
func (c *Client) Sysinfo(ctx context.Context) (string, error) {
	resp, err := c.roundTrip(ctx, protocol.MsgReqSysinfo, nil, protocol.MsgRespSysinfo)
	if err != nil {
		return "", err
	}
	return string(resp), nil
}

// Echo sends payload and returns the server's copy verbatim.
func (c *Client) Echo(ctx context.Context, payload []byte) ([]byte, error) {
	return c.roundTrip(ctx, protocol.MsgReqEcho, payload, protocol.MsgRespEcho)
}

// Close is safe to call more than once.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
	})
	return err
}

// roundTrip writes one request and reads one reply, enforcing the expected
// response type. An error-kind reply surfaces as ErrRemoteError carrying
// the server's diagnostic.
func (c *Client) roundTrip(ctx context.Context, reqType protocol.MessageType, payload []byte, want protocol.MessageType) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts := c.callOpts(ctx)

	start := time.Now()
	if err := frame.Send(c.conn, reqType, payload, opts); err != nil {
		return nil, fmt.Errorf("send %s: %w", reqType, err)
	}
	resp, err := frame.Recv(c.conn, opts)
	if err != nil {
		return nil, fmt.Errorf("recv reply to %s: %w", reqType, err)
	}

	switch resp.Type {
	case want:
		c.logger.Debug().
			Str("type", reqType.String()).
			Int("response_bytes", len(resp.Payload)).
			Dur("duration", time.Since(start)).
			Msg("command round trip")
		return resp.Payload, nil
	case protocol.MsgRespError:
		return nil, fmt.Errorf("%w: %s", ErrRemoteError, string(resp.Payload))
	default:
		return nil, fmt.Errorf("%w: got %s, want %s", ErrUnexpectedResponse, resp.Type, want)
	}
}

// callOpts narrows the configured I/O timeout to the context deadline when
// the deadline is sooner.
func (c *Client) callOpts(ctx context.Context) frame.Options {
	opts := c.opts
	deadline, ok := ctx.Deadline()
	if !ok {
		return opts
	}
	remain := time.Until(deadline)
	if remain <= 0 {
		remain = time.Millisecond
	}
	if opts.Timeout <= 0 || remain < opts.Timeout {
		opts.Timeout = remain
	}
	return opts
}
